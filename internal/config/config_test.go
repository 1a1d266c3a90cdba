package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := NewConfig("profile-abc", "/home/user/.local/share/healthtrack")
	original.Vaults = append(original.Vaults, VaultConfig{
		Type:           "minio",
		Name:           "nas",
		MinioEndpoint:  "nas.local:9000",
		MinioBucket:    "exports",
		MinioAccessKey: "key",
		MinioSecretKey: "secret",
	})
	original.Notify = NotifyConfig{Type: "telegram", TelegramToken: "tok", TelegramChatID: 42}
	original.Sync.RemoteURL = "https://health.example.com"
	original.Insights.BPStage2 = 20

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.ProfileID != original.ProfileID {
		t.Errorf("ProfileID = %q, want %q", got.ProfileID, original.ProfileID)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if len(got.Vaults) != 2 {
		t.Fatalf("len(Vaults) = %d, want 2", len(got.Vaults))
	}
	if got.Vaults[1].MinioEndpoint != "nas.local:9000" {
		t.Errorf("Vaults[1].MinioEndpoint = %q, want %q", got.Vaults[1].MinioEndpoint, "nas.local:9000")
	}
	if got.Database != original.Database {
		t.Errorf("Database = %+v, want %+v", got.Database, original.Database)
	}
	if got.Notify != original.Notify {
		t.Errorf("Notify = %+v, want %+v", got.Notify, original.Notify)
	}
	if got.Sync != original.Sync {
		t.Errorf("Sync = %+v, want %+v", got.Sync, original.Sync)
	}
	if got.Reminders != original.Reminders {
		t.Errorf("Reminders = %+v, want %+v", got.Reminders, original.Reminders)
	}
	if got.Insights.BPStage2 != 20 {
		t.Errorf("Insights.BPStage2 = %v, want 20", got.Insights.BPStage2)
	}
}

func TestManager_Read_Defaults(t *testing.T) {
	m := &Manager{}
	got, err := m.Read(strings.NewReader(`profile_id = "p1"
[database]
type = "memory"
`))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.Reminders != DefaultReminders() {
		t.Errorf("Reminders = %+v, want defaults", got.Reminders)
	}
	if got.Insights != DefaultInsights() {
		t.Errorf("Insights = %+v, want defaults", got.Insights)
	}
	if got.Database.Seed {
		t.Error("Database.Seed = true, want false when not set")
	}
}

func TestManager_Read_Invalid(t *testing.T) {
	m := &Manager{}
	if _, err := m.Read(strings.NewReader("profile_id = ")); err == nil {
		t.Fatal("Read() expected error for malformed TOML")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("p-1", "/data/ht")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"ProfileID", cfg.ProfileID, "p-1"},
		{"BaseDir", cfg.BaseDir, "/data/ht"},
		{"LogDir", cfg.LogDir, "/data/ht/log"},
		{"Database.DataDir", cfg.Database.DataDir, "/data/ht/db"},
		{"Vaults[0].FSVaultRoot", cfg.Vaults[0].FSVaultRoot, "/data/ht/vault"},
		{"Encryption.PublicKeyPath", cfg.Encryption.PublicKeyPath, "/data/ht/keys/healthtrack.pub"},
		{"Encryption.PrivateKeyPath", cfg.Encryption.PrivateKeyPath, "/data/ht/keys/healthtrack.key"},
		{"Notify.Type", cfg.Notify.Type, "log"},
		{"Reminders.Schedule", cfg.Reminders.Schedule, "@every 1m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	env := map[string]string{
		"HEALTHTRACK_TELEGRAM_TOKEN":   "tg-token",
		"HEALTHTRACK_TELEGRAM_CHAT_ID": "-1001",
		"HEALTHTRACK_DISCORD_TOKEN":    "dc-token",
		"HEALTHTRACK_SYNC_URL":         "http://remote:8080",
		"HEALTHTRACK_MINIO_ACCESS_KEY": "ak",
		"HEALTHTRACK_MINIO_SECRET_KEY": "sk",
	}
	getenv := func(k string) string { return env[k] }

	t.Run("overrides secrets", func(t *testing.T) {
		cfg := NewConfig("p", "/tmp/ht")
		cfg.Vaults = append(cfg.Vaults, VaultConfig{Type: "minio", Name: "nas"})

		if err := cfg.ApplyEnv(getenv); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}
		if cfg.Notify.TelegramToken != "tg-token" {
			t.Errorf("TelegramToken = %q", cfg.Notify.TelegramToken)
		}
		if cfg.Notify.TelegramChatID != -1001 {
			t.Errorf("TelegramChatID = %d, want -1001", cfg.Notify.TelegramChatID)
		}
		if cfg.Notify.DiscordToken != "dc-token" {
			t.Errorf("DiscordToken = %q", cfg.Notify.DiscordToken)
		}
		if cfg.Sync.RemoteURL != "http://remote:8080" {
			t.Errorf("Sync.RemoteURL = %q", cfg.Sync.RemoteURL)
		}
		if cfg.Vaults[1].MinioAccessKey != "ak" || cfg.Vaults[1].MinioSecretKey != "sk" {
			t.Errorf("minio keys = %q/%q, want ak/sk", cfg.Vaults[1].MinioAccessKey, cfg.Vaults[1].MinioSecretKey)
		}
		if cfg.Vaults[0].MinioAccessKey != "" {
			t.Error("filesystem vault should not receive minio keys")
		}
	})

	t.Run("invalid chat id", func(t *testing.T) {
		cfg := NewConfig("p", "/tmp/ht")
		err := cfg.ApplyEnv(func(k string) string {
			if k == "HEALTHTRACK_TELEGRAM_CHAT_ID" {
				return "not-a-number"
			}
			return ""
		})
		if err == nil {
			t.Fatal("ApplyEnv() expected error for invalid chat id")
		}
	})
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "healthtrack.toml")
		cfg := NewConfig("p1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("config file not created: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("mode = %v, want 0600", info.Mode().Perm())
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "healthtrack.toml")
		cfg := NewConfig("p1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "healthtrack.toml")
		cfg := NewConfig("read-test", dir)
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.ProfileID != "read-test" {
			t.Errorf("ProfileID = %q, want %q", got.ProfileID, "read-test")
		}
		if got.Database.Type != "memory" {
			t.Errorf("Database.Type = %q, want memory", got.Database.Type)
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		if _, err := ReadFromFile("/nonexistent/path/healthtrack.toml"); err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
