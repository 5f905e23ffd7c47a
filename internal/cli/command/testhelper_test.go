package command

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const (
	devicePath       = "/token/json/2/device/new"
	userPath         = "/token/json/2/user/new"
	discoveryPath    = "/service/json/1/document-storage"
	docsPath         = "/document-storage/json/2/docs"
	uploadReqPath    = "/document-storage/json/2/upload/request"
	updateStatusPath = "/document-storage/json/2/upload/update-status"
	deletePath       = "/document-storage/json/2/delete"
	blobPath         = "/blob/upload"
)

// recordedRequest is what a mock handler saw.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// mockServer stands in for the token, discovery and storage services.
type mockServer struct {
	*httptest.Server
	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []recordedRequest
}

// newMockServer creates a new mock server, closed when the test ends.
func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	m := &mockServer{
		handlers: make(map[string]http.HandlerFunc),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		m.mu.Lock()
		m.requests = append(m.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		handler, ok := m.handlers[r.URL.Path]
		m.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(m.Close)
	return m
}

// handle registers a handler for an exact path.
func (m *mockServer) handle(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// requestsTo returns the requests received for path.
func (m *mockServer) requestsTo(path string) []recordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []recordedRequest
	for _, r := range m.requests {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// textResponse writes a plain-text response.
func textResponse(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

// jsonResponse writes a JSON response.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// withUserToken serves a user token for any device token.
func (m *mockServer) withUserToken(token string) {
	m.handle(userPath, textResponse(http.StatusOK, token))
}

// itemsOK answers update-status and delete calls with success.
func itemsOK(w http.ResponseWriter, r *http.Request) {
	var items []struct{ ID string }
	json.NewDecoder(r.Body).Decode(&items)

	results := make([]map[string]any, 0, len(items))
	for _, it := range items {
		results = append(results, map[string]any{"ID": it.ID, "Success": true, "Message": ""})
	}
	jsonResponse(w, http.StatusOK, results)
}

// registeredConfig is a config file for a paired device whose storage host
// is the mock server.
func registeredConfig(server *mockServer) string {
	return "device_id: dev-1\n" +
		"device_token: device-token-0123456789\n" +
		"storage_host: " + server.URL + "\n"
}

// cliResult is the outcome of one CLI run.
type cliResult struct {
	stdout     string
	stderr     string
	err        error
	configPath string
}

// runCLI runs rmcloud-cli against server with the given config file
// contents. The token service and discovery endpoints point at server.
func runCLI(t *testing.T, server *mockServer, configContent string, args ...string) cliResult {
	t.Helper()
	return runCLIWithInput(t, server, configContent, "", args...)
}

// runCLIWithInput is runCLI with stdin.
func runCLIWithInput(t *testing.T, server *mockServer, configContent, stdin string, args ...string) cliResult {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "cli.yaml")
	if configContent != "" {
		if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}

	var stdout, stderr bytes.Buffer
	app := App()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr

	argv := []string{
		"rmcloud-cli",
		"--config", configPath,
		"--auth-url", server.URL,
		"--discovery-url", server.URL + discoveryPath,
	}
	argv = append(argv, args...)

	err := app.Run(argv)
	return cliResult{
		stdout:     stdout.String(),
		stderr:     stderr.String(),
		err:        err,
		configPath: configPath,
	}
}

// readConfigFile returns the config file written by a run.
func readConfigFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	return string(data)
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
