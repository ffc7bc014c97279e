package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DevAPI != defaultDevAPI || cfg.ProdAPI != defaultProdAPI {
		t.Fatalf("APIs = %q/%q, want %q/%q", cfg.DevAPI, cfg.ProdAPI, defaultDevAPI, defaultProdAPI)
	}
	if cfg.PushBackend != BackendWebSocket {
		t.Fatalf("PushBackend = %q, want %q", cfg.PushBackend, BackendWebSocket)
	}
	if cfg.ResyncEvery != 0 {
		t.Fatalf("ResyncEvery = %v, want 0", cfg.ResyncEvery)
	}

	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.Log.File != wantLog {
		t.Fatalf("Log.File = %q, want %q", cfg.Log.File, wantLog)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
dev_api = "  http://127.0.0.1:5020  "
prod_api = "http://lab-pi:5000"
host_pattern = "^(localhost|dev-.*)$"
theme = "Slate"
resync_seconds = 30

[push]
backend = " MQTT "

[mqtt]
broker = "tcp://broker:1883"
topic_prefix = "lab/led/"

[log]
file = "  ~/logs/ticontrol.log  "
level = "debug"
max_backups = 7
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DevAPI != "http://127.0.0.1:5020" {
		t.Fatalf("DevAPI = %q, want %q", cfg.DevAPI, "http://127.0.0.1:5020")
	}
	if cfg.ProdAPI != "http://lab-pi:5000" {
		t.Fatalf("ProdAPI = %q", cfg.ProdAPI)
	}
	if cfg.ResyncEvery != 30*time.Second {
		t.Fatalf("ResyncEvery = %v, want 30s", cfg.ResyncEvery)
	}
	if cfg.PushBackend != BackendMQTT {
		t.Fatalf("PushBackend = %q, want %q", cfg.PushBackend, BackendMQTT)
	}
	if cfg.PushPath != defaultPushPath {
		t.Fatalf("PushPath = %q, want %q", cfg.PushPath, defaultPushPath)
	}
	if cfg.MQTT.TopicPrefix != "lab/led" {
		t.Fatalf("TopicPrefix = %q, want lab/led", cfg.MQTT.TopicPrefix)
	}
	if cfg.MQTT.ClientID != defaultMQTTClient {
		t.Fatalf("ClientID = %q, want %q", cfg.MQTT.ClientID, defaultMQTTClient)
	}
	if !strings.HasPrefix(cfg.Log.File, home) {
		t.Fatalf("Log.File = %q, want it under HOME %q", cfg.Log.File, home)
	}
	if cfg.Log.Level != "debug" || cfg.Log.MaxBackups != 7 || cfg.Log.MaxSizeMB != defaultMaxSizeMB {
		t.Fatalf("Log = %#v, want level=debug backups=7 size=%d", cfg.Log, defaultMaxSizeMB)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
dev_api = "   "
host_pattern = ""
theme = ""
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DevAPI != defaultDevAPI {
		t.Fatalf("DevAPI = %q, want %q", cfg.DevAPI, defaultDevAPI)
	}
	if cfg.HostPattern != defaultHostPattern {
		t.Fatalf("HostPattern = %q, want %q", cfg.HostPattern, defaultHostPattern)
	}
	if cfg.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", cfg.Theme, defaultTheme)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`dev_api = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestSelectAPI(t *testing.T) {
	cfg := Default()
	cfg.DevAPI = "http://dev"
	cfg.ProdAPI = "http://prod"

	tests := []struct {
		name    string
		pattern string
		host    string
		want    string
	}{
		{"default pattern matches localhost", "", "localhost", "http://dev"},
		{"default pattern substring", "", "my-localhost-box", "http://dev"},
		{"production host", "", "lab-pi", "http://prod"},
		{"custom anchored pattern", "^dev-", "dev-bench", "http://dev"},
		{"custom anchored miss", "^dev-", "bench-dev-", "http://prod"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg
			c.HostPattern = tt.pattern
			got, err := c.SelectAPI(tt.host)
			if err != nil {
				t.Fatalf("SelectAPI returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("SelectAPI(%q) = %q, want %q", tt.host, got, tt.want)
			}
		})
	}
}

func TestSelectAPI_InvalidPattern(t *testing.T) {
	cfg := Default()
	cfg.HostPattern = "(["
	_, err := cfg.SelectAPI("localhost")
	if !errors.Is(err, ErrInvalidPattern) {
		t.Fatalf("SelectAPI error = %v, want ErrInvalidPattern", err)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
