package rmcloud

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/rmcloud-go/pkg/ident"
)

func TestDocs_NoOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/document-storage/json/2/docs", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))

		w.Write([]byte(`[
			{"ID":"d1","Version":3,"Type":"DocumentType","VissibleName":"Notes","Parent":"f1","CurrentPage":2,"Bookmarked":true,"Success":true},
			{"ID":"f1","Version":1,"Type":"CollectionType","VissibleName":"Folder","Parent":""}
		]`))
	}))
	defer server.Close()

	docs, err := NewClient().Docs(context.Background(), server.URL, "user-token", nil)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, Document{
		ID:          "d1",
		Version:     3,
		Success:     true,
		Type:        DocumentType,
		VisibleName: "Notes",
		CurrentPage: 2,
		Bookmarked:  true,
		Parent:      "f1",
	}, docs[0])
	assert.Equal(t, CollectionType, docs[1].Type)
	assert.Equal(t, "Folder", docs[1].VisibleName)
}

func TestDocs_WithOptions(t *testing.T) {
	tests := []struct {
		name      string
		opts      *DocsOptions
		wantQuery string
	}{
		{"id and blob", &DocsOptions{ID: "d1", WithBlob: true}, "doc=d1&withBlob=true"},
		{"id without blob", &DocsOptions{ID: "d1"}, "doc=d1&withBlob=false"},
		{"blob only", &DocsOptions{WithBlob: true}, "withBlob=true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantQuery, r.URL.RawQuery)
				w.Write([]byte(`[{"ID":"d1","BlobURLGet":"https://x/get"}]`))
			}))
			defer server.Close()

			docs, err := NewClient().Docs(context.Background(), server.URL, "user-token", tt.opts)
			require.NoError(t, err)
			require.Len(t, docs, 1)
			assert.Equal(t, "https://x/get", docs[0].BlobURLGet)
		})
	}
}

func TestDocs_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer server.Close()

	_, err := NewClient().Docs(context.Background(), server.URL, "user-token", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse response")
}

func uploadRequestServer(t *testing.T, body string, seen *[]uploadRequestItem) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/document-storage/json/2/upload/request", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestUploadRequest_Success(t *testing.T) {
	var seen []uploadRequestItem
	server := uploadRequestServer(t, `[{"ID":"ignored","Success":true,"BlobURLPut":"https://x/blob"}]`, &seen)

	slot, err := NewClient().UploadRequest(context.Background(), server.URL, "user-token")
	require.NoError(t, err)

	assert.True(t, ident.Valid(slot.DocID), "doc id %q", slot.DocID)
	assert.Equal(t, "https://x/blob", slot.UploadURL)

	require.Len(t, seen, 1)
	assert.Equal(t, slot.DocID, seen[0].ID)
	assert.Equal(t, DocumentType, seen[0].Type)
	assert.Equal(t, 1, seen[0].Version)
}

func TestUploadRequest_Failures(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		want        error
		wantDetails string
	}{
		{
			name:        "item failed",
			body:        `[{"Success":false,"Message":"quota exceeded"}]`,
			want:        ErrUploadRequestFailed,
			wantDetails: "quota exceeded",
		},
		{
			name:        "failure wins over count",
			body:        `[{"Success":true,"BlobURLPut":"https://x/1"},{"Success":false,"Message":"second failed"}]`,
			want:        ErrUploadRequestFailed,
			wantDetails: "second failed",
		},
		{
			name:        "two items",
			body:        `[{"Success":true,"BlobURLPut":"https://x/1"},{"Success":true,"BlobURLPut":"https://x/2"}]`,
			want:        ErrUnexpectedUploadURLCount,
			wantDetails: "got 2",
		},
		{
			name:        "no items",
			body:        `[]`,
			want:        ErrUnexpectedUploadURLCount,
			wantDetails: "got 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := uploadRequestServer(t, tt.body, nil)

			slot, err := NewClient().UploadRequest(context.Background(), server.URL, "user-token")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, UploadSlot{}, slot)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.wantDetails, e.Details)
		})
	}
}

func TestUploadBlob(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Empty(t, r.Header.Get("Authorization"))
			assert.Equal(t, int64(7), r.ContentLength)
			data, _ := io.ReadAll(r.Body)
			assert.Equal(t, "zipdata", string(data))
		}))
		defer server.Close()

		err := NewClient().UploadBlob(context.Background(), server.URL+"/blob?sig=abc", strings.NewReader("zipdata"), 7)
		require.NoError(t, err)
	})

	t.Run("empty body has a zero length", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.TransferEncoding)
			assert.Equal(t, int64(0), r.ContentLength)
		}))
		defer server.Close()

		body := io.MultiReader(strings.NewReader(""))
		err := NewClient().UploadBlob(context.Background(), server.URL, body, 0)
		require.NoError(t, err)
	})

	t.Run("unknown size is chunked", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, []string{"chunked"}, r.TransferEncoding)
			data, _ := io.ReadAll(r.Body)
			assert.Equal(t, "zipdata", string(data))
		}))
		defer server.Close()

		body := io.MultiReader(strings.NewReader("zipdata"))
		err := NewClient().UploadBlob(context.Background(), server.URL, body, -1)
		require.NoError(t, err)
	})

	t.Run("rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("SignatureDoesNotMatch"))
		}))
		defer server.Close()

		err := NewClient().UploadBlob(context.Background(), server.URL, strings.NewReader("zipdata"), 7)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrBlobUploadFailed)
		assert.Equal(t, http.StatusForbidden, StatusCode(err))
		assert.Contains(t, err.Error(), "SignatureDoesNotMatch")
	})
}

func TestUpdateStatus(t *testing.T) {
	var seen []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/document-storage/json/2/upload/update-status", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&seen))

		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`[{"Success":false,"Message":"left to the caller"}]`))
	}))
	defer server.Close()

	modified := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	resp, err := NewClient().UpdateStatus(context.Background(), server.URL, "user-token", DocumentMetadata{
		ID:           "d1",
		Version:      2,
		DateModified: modified,
		Type:         DocumentType,
		VisibleName:  "Notes",
		CurrentPage:  4,
		Bookmarked:   true,
		Parent:       "",
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	// The response is handed back untouched.
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "left to the caller")

	require.Len(t, seen, 1)
	assert.Equal(t, map[string]any{
		"ID":             "d1",
		"Version":        float64(2),
		"ModifiedClient": "2024-05-01T12:30:00Z",
		"Type":           "DocumentType",
		"VissibleName":   "Notes",
		"CurrentPage":    float64(4),
		"Bookmarked":     true,
		"Parent":         "",
	}, seen[0])
}

func TestDeleteItem(t *testing.T) {
	var seen []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/document-storage/json/2/delete", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&seen))
		w.Write([]byte(`[{"ID":"d1","Success":true}]`))
	}))
	defer server.Close()

	resp, err := NewClient().DeleteItem(context.Background(), server.URL, "user-token", "d1", 5)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []map[string]any{{"ID": "d1", "Version": float64(5)}}, seen)
}
