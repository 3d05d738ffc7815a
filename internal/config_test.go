package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/jarvis/pkg/config"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestStoreConfig_RequiresOneBackend(t *testing.T) {
	cfg := StoreConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty store config should fail")
	}
	cfg.CacheDir = "./cache"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("cache-only store should pass: %v", err)
	}
}

func TestHUDConfig_RejectsUnsafeUserKey(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.HUD.UserKey = "../etc/passwd"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("path-like user key should fail")
	}
	if !strings.HasPrefix(err.Error(), "hud:") {
		t.Errorf("error = %q, want hud: prefix", err)
	}
}

func TestNLUConfig_UnknownPersona(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.NLU.Persona = "ULTRON"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown persona should fail")
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	cfg := HTTPConfig{Port: 70000}
	if err := cfg.Validate(); err == nil {
		t.Fatal("out of range port should fail")
	}
	cfg.Port = 9090
	if got := cfg.Address(); got != ":9090" {
		t.Errorf("address = %q, want %q", got, ":9090")
	}
}

func TestLoadYAMLOverDefaults(t *testing.T) {
	t.Setenv("JARVIS_TEST_KEY", "gsk_secret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
app:
  http:
    port: 9000
nlu:
  api_key: ${JARVIS_TEST_KEY}
  persona: FRIDAY
  timeout: 5s
hud:
  user_key: tony
  sse_throttle: 100ms
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.HTTP.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.App.HTTP.Port)
	}
	if cfg.NLU.APIKey != "gsk_secret" {
		t.Errorf("api key = %q, want expanded env value", cfg.NLU.APIKey)
	}
	if cfg.NLU.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.NLU.Timeout)
	}
	if cfg.HUD.SSEThrottle != 100*time.Millisecond {
		t.Errorf("sse throttle = %v, want 100ms", cfg.HUD.SSEThrottle)
	}
	if cfg.Store.SQLitePath != "./jarvis.db" {
		t.Errorf("sqlite path = %q, default should survive", cfg.Store.SQLitePath)
	}
}
