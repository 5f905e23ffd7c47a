package confloader

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	DeviceToken string `koanf:"device_token"`
	StorageHost string `koanf:"storage_host"`
	Output      string `koanf:"output"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func unmarshalTest(t *testing.T, l *Loader) testConfig {
	t.Helper()
	var cfg testConfig
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	return cfg
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(
		WithEnvPrefix("TEST_"),
		WithConfigFile("/path/to/cli.yaml"),
	)

	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "TEST_")
	}
	if l.filePath != "/path/to/cli.yaml" {
		t.Errorf("filePath = %q, want %q", l.filePath, "/path/to/cli.yaml")
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeConfig(t, "device_token: abc\nstorage_host: https://host.example\n")

	l := NewLoader()
	if err := l.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	cfg := unmarshalTest(t, l)
	if got := cfg.DeviceToken; got != "abc" {
		t.Errorf("device_token = %q, want %q", got, "abc")
	}
	if got := cfg.StorageHost; got != "https://host.example" {
		t.Errorf("storage_host = %q, want %q", got, "https://host.example")
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	if err := NewLoader().LoadFile("/nonexistent/cli.yaml"); err == nil {
		t.Error("LoadFile() should fail for a missing file")
	}
}

func TestLoader_LoadFile_Empty(t *testing.T) {
	if err := NewLoader().LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") error = %v", err)
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	t.Setenv("RMCLOUD_STORAGE_HOST", "https://env.example")

	l := NewLoader()
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if got := unmarshalTest(t, l).StorageHost; got != "https://env.example" {
		t.Errorf("storage_host = %q, want %q", got, "https://env.example")
	}
}

func TestLoader_LoadEnv_CustomPrefix(t *testing.T) {
	t.Setenv("RMTEST_OUTPUT", "json")

	l := NewLoader(WithEnvPrefix("RMTEST_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if got := unmarshalTest(t, l).Output; got != "json" {
		t.Errorf("output = %q, want %q", got, "json")
	}
}

func TestLoader_LoadMap_SkipsEmptyStrings(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{"output": "yaml"}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}
	if err := l.LoadMap(map[string]any{"output": ""}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	if got := unmarshalTest(t, l).Output; got != "yaml" {
		t.Errorf("output = %q, want %q", got, "yaml")
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	path := writeConfig(t, "device_token: from-file\nstorage_host: https://file.example\noutput: table\n")
	t.Setenv("RMCLOUD_STORAGE_HOST", "https://env.example")

	l := NewLoader(WithConfigFile(path))
	cfg := testConfig{Output: "default"}
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DeviceToken != "from-file" {
		t.Errorf("DeviceToken = %q, want from-file", cfg.DeviceToken)
	}
	if cfg.StorageHost != "https://env.example" {
		t.Errorf("StorageHost = %q, env should override file", cfg.StorageHost)
	}
	if cfg.Output != "table" {
		t.Errorf("Output = %q, file should override default", cfg.Output)
	}
}

func TestLoader_Load_KeepsDefaults(t *testing.T) {
	l := NewLoader(WithEnvPrefix("RMCLOUD_UNSET_PREFIX_"))
	cfg := testConfig{Output: "table"}
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output != "table" {
		t.Errorf("Output = %q, want default kept", cfg.Output)
	}
}

func TestMapProvider_ReadBytes(t *testing.T) {
	if _, err := (mapProvider{}).ReadBytes(); err != ErrReadBytesNotSupported {
		t.Errorf("ReadBytes() error = %v, want ErrReadBytesNotSupported", err)
	}
}
