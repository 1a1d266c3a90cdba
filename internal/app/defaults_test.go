package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("HEALTHTRACK_CONFIG_PATH", "/custom/healthtrack.toml")
		t.Setenv("HEALTHTRACK_HOME", "/custom/ht")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		want := map[string]string{
			"config_path": "/custom/healthtrack.toml",
			"base_dir":    "/custom/ht",
			"log_dir":     "/custom/ht/log",
			"env_file":    "/custom/ht/.env",
		}
		for k, v := range want {
			if defaults[k] != v {
				t.Errorf("%s = %q, want %q", k, defaults[k], v)
			}
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("HEALTHTRACK_CONFIG_PATH", "")
		t.Setenv("HEALTHTRACK_HOME", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()
		if want := filepath.Join(homeDir, ".config", "healthtrack.toml"); defaults["config_path"] != want {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], want)
		}
		wantBase := filepath.Join(homeDir, ".local", "share", "healthtrack")
		if defaults["base_dir"] != wantBase {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], wantBase)
		}
		if want := filepath.Join(wantBase, "log"); defaults["log_dir"] != want {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], want)
		}
	})
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("HEALTHTRACK_TEST_A=from-file\nHEALTHTRACK_TEST_B=from-file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HEALTHTRACK_TEST_A", "")
	os.Unsetenv("HEALTHTRACK_TEST_A")
	t.Setenv("HEALTHTRACK_TEST_B", "from-env")

	if err := LoadEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := os.Getenv("HEALTHTRACK_TEST_A"); got != "from-file" {
		t.Errorf("HEALTHTRACK_TEST_A = %q, want from-file", got)
	}
	if got := os.Getenv("HEALTHTRACK_TEST_B"); got != "from-env" {
		t.Errorf("HEALTHTRACK_TEST_B = %q, want from-env", got)
	}
}
