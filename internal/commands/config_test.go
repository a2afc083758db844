package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diogo/askchat/internal/config"
)

func TestConfigShowPrecedence(t *testing.T) {
	te := newTestEnv(t)

	cfg := config.DefaultConfig()
	cfg.BaseURL = "http://from-file.test"
	cfg.Mode = "ask"
	if err := config.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}
	te.env[config.EnvBaseURL] = "http://from-env.test"

	out, _, err := te.run(nil, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, `"base_url": "http://from-env.test"`) {
		t.Errorf("env did not override the file:\n%s", out)
	}
	if !strings.Contains(out, `"mode": "ask"`) {
		t.Errorf("file mode lost:\n%s", out)
	}

	out, _, err = te.run(nil, "config", "show", "--url", "http://from-flag.test", "--timeout", "1500ms")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, `"base_url": "http://from-flag.test"`) {
		t.Errorf("flag did not override env:\n%s", out)
	}
	if !strings.Contains(out, `"timeout_seconds": 2`) {
		t.Errorf("timeout not rounded up to seconds:\n%s", out)
	}
}

func TestConfigPath(t *testing.T) {
	te := newTestEnv(t)

	out, _, err := te.run(nil, "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	want := filepath.Join(te.home, ".askchat", "config.json")
	if strings.TrimSpace(out) != want {
		t.Errorf("path = %q, want %q", strings.TrimSpace(out), want)
	}
}

func TestConfigInit(t *testing.T) {
	te := newTestEnv(t)
	path := filepath.Join(te.home, ".askchat", "config.json")

	if _, _, err := te.run(nil, "config", "init"); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if _, _, err := te.run(nil, "config", "init"); err == nil {
		t.Error("Expected init to refuse overwriting an existing file")
	}
	if _, _, err := te.run(nil, "config", "init", "--force"); err != nil {
		t.Errorf("config init --force failed: %v", err)
	}
}
