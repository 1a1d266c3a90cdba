package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for healthtrack.
type Config struct {
	ProfileID  string           `toml:"profile_id"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	LogLevel   string           `toml:"log_level,omitempty"` // "debug", "info" (default), "warn" or "error"
	Database   DatabaseConfig   `toml:"database"`
	Vaults     []VaultConfig    `toml:"vaults"`
	Encryption EncryptionConfig `toml:"encryption"`
	Notify     NotifyConfig     `toml:"notify"`
	Sync       SyncConfig       `toml:"sync"`
	Server     ServerConfig     `toml:"server"`
	Reminders  RemindersConfig  `toml:"reminders"`
	Insights   InsightsConfig   `toml:"insights"`
}

// DatabaseConfig selects the store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
	Seed    bool   `toml:"seed"`               // write sample data into a freshly created store
}

// VaultConfig represents configuration for an export vault backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type"` // "memory", "filesystem", "s3" or "minio"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Prefix    string `toml:"s3_prefix,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3Endpoint  string `toml:"s3_endpoint,omitempty"` // for S3-compatible services; enables path-style addressing
	S3AccessKey string `toml:"s3_access_key,omitempty"`
	S3SecretKey string `toml:"s3_secret_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`

	// MinIO-specific fields (only used when Type == "minio")
	MinioEndpoint  string `toml:"minio_endpoint,omitempty"`
	MinioBucket    string `toml:"minio_bucket,omitempty"`
	MinioPrefix    string `toml:"minio_prefix,omitempty"`
	MinioAccessKey string `toml:"minio_access_key,omitempty"`
	MinioSecretKey string `toml:"minio_secret_key,omitempty"`
	MinioUseSSL    bool   `toml:"minio_use_ssl,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used for encrypted exports.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// NotifyConfig selects where reminder notifications go.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type NotifyConfig struct {
	Type string `toml:"type"` // "log" (default), "telegram", "discord" or "none"

	TelegramToken  string `toml:"telegram_token,omitempty"`
	TelegramChatID int64  `toml:"telegram_chat_id,omitempty"`

	DiscordToken     string `toml:"discord_token,omitempty"`
	DiscordChannelID string `toml:"discord_channel_id,omitempty"`
}

// SyncConfig points the outbox at a remote healthtrack server. An empty
// RemoteURL disables syncing.
type SyncConfig struct {
	RemoteURL      string `toml:"remote_url,omitempty"`
	TimeoutSeconds int    `toml:"timeout_seconds,omitempty"`
}

// ServerConfig configures `healthtrack serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// RemindersConfig configures the reminder daemon.
type RemindersConfig struct {
	Schedule      string `toml:"schedule"`       // cron spec for the check, e.g. "@every 1m"
	PendingWindow int    `toml:"pending_window"` // minutes after a dose time during which it is pending
	SnoozeMinutes int    `toml:"snooze_minutes"`
}

// InsightsConfig holds the health score penalty weights.
type InsightsConfig struct {
	AdherenceThreshold float64 `toml:"adherence_threshold"`
	AdherenceFactor    float64 `toml:"adherence_factor"`
	AdherenceCap       float64 `toml:"adherence_cap"`
	BPElevated         float64 `toml:"bp_elevated"`
	BPStage1           float64 `toml:"bp_stage1"`
	BPStage2           float64 `toml:"bp_stage2"`
	HeartRate          float64 `toml:"heart_rate"`
	WeightChange       float64 `toml:"weight_change"`
}

// NewConfig creates a new Config with the provided values and defaults for
// everything else.
func NewConfig(profileID, baseDir string) *Config {
	return &Config{
		ProfileID: profileID,
		BaseDir:   baseDir,
		LogDir:    filepath.Join(baseDir, "log"),
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
			Seed:    true,
		},
		Vaults: []VaultConfig{
			{Type: "filesystem", Name: "local", FSVaultRoot: filepath.Join(baseDir, "vault")},
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "healthtrack.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "healthtrack.key"),
		},
		Notify:    NotifyConfig{Type: "log"},
		Sync:      SyncConfig{TimeoutSeconds: 10},
		Server:    ServerConfig{Addr: "127.0.0.1:8080"},
		Reminders: DefaultReminders(),
		Insights:  DefaultInsights(),
	}
}

// DefaultReminders returns the reminder settings used when the config
// leaves them out.
func DefaultReminders() RemindersConfig {
	return RemindersConfig{Schedule: "@every 1m", PendingWindow: 30, SnoozeMinutes: 15}
}

// DefaultInsights returns the standard health score weights.
func DefaultInsights() InsightsConfig {
	return InsightsConfig{
		AdherenceThreshold: 90,
		AdherenceFactor:    0.5,
		AdherenceCap:       45,
		BPElevated:         5,
		BPStage1:           10,
		BPStage2:           15,
		HeartRate:          10,
		WeightChange:       5,
	}
}

// ApplyEnv overrides secrets and endpoints from environment variables so
// they can stay out of the config file. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setFromEnv(&c.Notify.TelegramToken, getenv("HEALTHTRACK_TELEGRAM_TOKEN"))
	setFromEnv(&c.Notify.DiscordToken, getenv("HEALTHTRACK_DISCORD_TOKEN"))
	setFromEnv(&c.Sync.RemoteURL, getenv("HEALTHTRACK_SYNC_URL"))
	if v := getenv("HEALTHTRACK_TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid HEALTHTRACK_TELEGRAM_CHAT_ID: %w", err)
		}
		c.Notify.TelegramChatID = id
	}
	for i := range c.Vaults {
		v := &c.Vaults[i]
		switch v.Type {
		case "minio":
			setFromEnv(&v.MinioAccessKey, getenv("HEALTHTRACK_MINIO_ACCESS_KEY"))
			setFromEnv(&v.MinioSecretKey, getenv("HEALTHTRACK_MINIO_SECRET_KEY"))
		case "s3":
			setFromEnv(&v.S3AccessKey, getenv("HEALTHTRACK_S3_ACCESS_KEY"))
			setFromEnv(&v.S3SecretKey, getenv("HEALTHTRACK_S3_SECRET_KEY"))
		}
	}
	return nil
}

func setFromEnv(field *string, value string) {
	if value != "" {
		*field = value
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader. Sections missing from
// the input keep their defaults.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	cfg := Config{
		Reminders: DefaultReminders(),
		Insights:  DefaultInsights(),
	}
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// 0600: the file may hold bot tokens and storage keys
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes a new config file at path. It refuses to overwrite one.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
