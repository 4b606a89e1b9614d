package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Port)
	}
	if cfg.StoreBackend != BackendSQLite || cfg.SQLitePath == "" {
		t.Errorf("Expected persistent sqlite backend, got %s at %q", cfg.StoreBackend, cfg.SQLitePath)
	}
	if cfg.MetricsAddr != "127.0.0.1:9090" {
		t.Errorf("Expected loopback metrics listener, got %q", cfg.MetricsAddr)
	}
	if cfg.StorageKey != "secret_social_app_data_v2" {
		t.Errorf("Expected versioned storage key, got %s", cfg.StorageKey)
	}
	if cfg.UnlockCode != "99999" {
		t.Errorf("Expected unlock code 99999, got %s", cfg.UnlockCode)
	}
	if cfg.AssistantTimeout != 30*time.Second {
		t.Errorf("Expected 30s assistant timeout, got %v", cfg.AssistantTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("METRICS_ADDR", "")
	t.Setenv("API_KEY", "fallback-key")
	t.Setenv("GEMINI_API_KEY", "primary-key")
	t.Setenv("ASSISTANT_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT_AUTH", "7")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("Expected 2 trimmed origins, got %v", cfg.AllowedOrigins)
	}
	if cfg.StoreBackend != BackendMemory {
		t.Errorf("Expected memory backend, got %s", cfg.StoreBackend)
	}
	if cfg.MetricsAddr != "" {
		t.Errorf("Expected empty METRICS_ADDR to disable the listener, got %q", cfg.MetricsAddr)
	}
	if cfg.AssistantAPIKey != "primary-key" {
		t.Errorf("Expected GEMINI_API_KEY to win, got %s", cfg.AssistantAPIKey)
	}
	if cfg.AssistantTimeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %v", cfg.AssistantTimeout)
	}
	if cfg.RateLimitAuth != 7 {
		t.Errorf("Expected auth limit 7, got %v", cfg.RateLimitAuth)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: "7000"
metrics_addr: ":9100"
unlock_code: "1234"
store:
  backend: pebble
  pebble_path: /tmp/vault
assistant:
  model: test-model
  timeout: 2s
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Port != "7000" {
		t.Errorf("Expected port 7000, got %s", cfg.Port)
	}
	if cfg.MetricsAddr != ":9100" {
		t.Errorf("Expected metrics addr :9100, got %s", cfg.MetricsAddr)
	}
	if cfg.UnlockCode != "1234" {
		t.Errorf("Expected unlock code 1234, got %s", cfg.UnlockCode)
	}
	if cfg.StoreBackend != BackendPebble || cfg.PebblePath != "/tmp/vault" {
		t.Errorf("Expected pebble at /tmp/vault, got %s at %s", cfg.StoreBackend, cfg.PebblePath)
	}
	if cfg.AssistantModel != "test-model" || cfg.AssistantTimeout != 2*time.Second {
		t.Errorf("Expected test-model/2s, got %s/%v", cfg.AssistantModel, cfg.AssistantTimeout)
	}
	// untouched keys keep defaults
	if cfg.StorageKey != "secret_social_app_data_v2" {
		t.Errorf("Expected default storage key, got %s", cfg.StorageKey)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: \"7000\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "7001" {
		t.Errorf("Expected env port 7001, got %s", cfg.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty port", func(c *Config) { c.Port = "" }, true},
		{"non-digit unlock code", func(c *Config) { c.UnlockCode = "12a" }, true},
		{"unknown backend", func(c *Config) { c.StoreBackend = "etcd" }, true},
		{"postgres without dsn", func(c *Config) { c.StoreBackend = BackendPostgres }, true},
		{"postgres with dsn", func(c *Config) {
			c.StoreBackend = BackendPostgres
			c.PostgresDSN = "postgres://localhost/calcvault"
		}, false},
		{"zero timeout", func(c *Config) { c.AssistantTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsSilent(t *testing.T) {
	for _, level := range []string{"silent", "off"} {
		cfg := DefaultConfig()
		cfg.LogLevel = level
		if !cfg.IsSilent() {
			t.Errorf("Expected %s to be silent", level)
		}
	}
}
