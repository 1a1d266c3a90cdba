package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"healthtrack/internal/config"
	"healthtrack/internal/database"
	"healthtrack/internal/encryption"
	"healthtrack/internal/health"
	"healthtrack/internal/insights"
	"healthtrack/internal/interactions"
	"healthtrack/internal/notify"
	"healthtrack/internal/outbox"
	"healthtrack/internal/reminders"
	"healthtrack/internal/report"
	"healthtrack/internal/server"
	"healthtrack/internal/vault"
)

// categoryMemoSize bounds the checker's name-to-category cache.
const categoryMemoSize = 256

// App sits between the CLI and the health service. It builds every
// dependency from config, records mutating commands in the operation
// history, and releases the store and log file on Close.
type App struct {
	cfg       *config.Config
	store     *database.SQLiteStore
	vault     health.Vault
	encryptor health.Encryptor
	queue     *outbox.Queue
	service   *health.Service
	clock     health.Clock
	logger    health.Logger
	op        *Operation
	logFile   *os.File

	scheduler *reminders.Scheduler
}

// NewApp creates a fully wired App for one CLI command. The caller must call
// Close when done.
func NewApp(ctx context.Context, cfg *config.Config, op *Operation) (*App, error) {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	opID := time.Now().UTC().Format("20060102T150405Z")
	l, logFile, err := newLogger(cfg.LogDir, opID, level)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: l}

	a, err := build(ctx, cfg, op, logger)
	if err != nil {
		logFile.Close()
		return nil, err
	}
	a.logFile = logFile
	return a, nil
}

func build(ctx context.Context, cfg *config.Config, op *Operation, logger health.Logger) (*App, error) {
	var v health.Vault
	if len(cfg.Vaults) > 0 {
		var err error
		v, err = vault.NewVaultFromConfig(ctx, cfg.Vaults[0])
		if err != nil {
			return nil, fmt.Errorf("creating vault: %w", err)
		}
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	catalog, err := interactions.Default()
	if err != nil {
		return nil, fmt.Errorf("loading interaction catalog: %w", err)
	}
	checker, err := interactions.NewChecker(catalog, categoryMemoSize)
	if err != nil {
		return nil, fmt.Errorf("creating interaction checker: %w", err)
	}

	clock := health.RealClock{}
	idgen := health.UUIDGenerator{}

	store, err := database.NewStoreFromConfig(cfg.Database, cfg.ProfileID, clock)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	var queue *outbox.Queue
	var ob health.Outbox
	if cfg.Sync.RemoteURL != "" {
		queue = outbox.NewQueue(store, clock, idgen, logger)
		ob = queue
	}

	engine := insights.NewEngine(penalties(cfg.Insights))
	svc := health.NewService(store, checker, engine, ob, logger, clock, idgen)

	return &App{
		cfg:       cfg,
		store:     store,
		vault:     v,
		encryptor: enc,
		queue:     queue,
		service:   svc,
		clock:     clock,
		logger:    logger,
		op:        op,
	}, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return level, nil
}

func penalties(c config.InsightsConfig) insights.Penalties {
	return insights.Penalties{
		AdherenceThreshold: c.AdherenceThreshold,
		AdherenceFactor:    c.AdherenceFactor,
		AdherenceCap:       c.AdherenceCap,
		BPElevated:         c.BPElevated,
		BPStage1:           c.BPStage1,
		BPStage2:           c.BPStage2,
		HeartRate:          c.HeartRate,
		WeightChange:       c.WeightChange,
	}
}

// Logger returns the command's logger.
func (a *App) Logger() health.Logger { return a.logger }

// Service returns the health service for commands that only read.
func (a *App) Service() *health.Service { return a.service }

// Edit records the command in the operation history and returns the
// service for commands that change data.
func (a *App) Edit() (*health.Service, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	return a.service, nil
}

// Fail marks the command as failed in the operation history.
func (a *App) Fail() { a.op.Fail() }

func (a *App) persistOperation() error {
	if a.op.Persisted() {
		return nil
	}
	rec, err := a.store.CreateOperation(a.op.Name, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("recording operation: %w", err)
	}
	a.op.ID = rec.ID
	return nil
}

// GetHistory returns the most recent recorded operations.
func (a *App) GetHistory(limit int) ([]*health.Operation, error) {
	return a.service.GetHistory(limit)
}

// Export writes the export document to w, encrypted to the configured
// public key when encrypt is set.
func (a *App) Export(w io.Writer, encrypt bool) error {
	if !encrypt {
		return a.service.Export(w)
	}
	if !a.encryptor.IsConfigured() {
		return errors.New("encryption keys not set up: run `healthtrack keys init`")
	}
	var buf bytes.Buffer
	if err := a.service.Export(&buf); err != nil {
		return err
	}
	if err := a.encryptor.Encrypt(&buf, w); err != nil {
		return fmt.Errorf("encrypting export: %w", err)
	}
	return nil
}

// ExportToVault uploads the export to the first configured vault. The
// upload is versioned with this command's operation id. It refuses to
// replace an export written by a later operation unless force is set.
func (a *App) ExportToVault(ctx context.Context, encrypt, force bool) error {
	if a.vault == nil {
		return errors.New("no vaults configured")
	}

	remote, err := a.vault.GetExportVersion(ctx, a.cfg.ProfileID)
	if err != nil {
		return fmt.Errorf("checking vault export version: %w", err)
	}
	local, err := a.store.MaxOperationID()
	if err != nil {
		return fmt.Errorf("checking local version: %w", err)
	}
	if remote > local && !force {
		return fmt.Errorf("vault export is newer than local data (local=%d, remote=%d): import from the vault or use --force", local, remote)
	}

	if err := a.persistOperation(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := a.Export(&buf, encrypt); err != nil {
		return err
	}
	size := int64(buf.Len())
	if err := a.vault.PutExport(ctx, a.cfg.ProfileID, &buf, size, a.op.ID); err != nil {
		return fmt.Errorf("uploading export: %w", err)
	}
	a.logger.Info("export uploaded", "profile", a.cfg.ProfileID, "version", a.op.ID, "bytes", size, "encrypted", encrypt)
	return nil
}

// NeedsPassphrase reports whether data is an encrypted export.
func NeedsPassphrase(data []byte) bool {
	return encryption.IsEncrypted(data)
}

// Import replaces stored data with an export document, decrypting it with
// passphrase first if it is encrypted. It reports whether the import
// succeeded; the reason for a failure is logged.
func (a *App) Import(data []byte, passphrase string) bool {
	if err := a.importData(data, passphrase); err != nil {
		a.op.Fail()
		a.logger.Error("import failed", "error", err)
		return false
	}
	return true
}

func (a *App) importData(data []byte, passphrase string) error {
	if err := a.persistOperation(); err != nil {
		return err
	}
	if encryption.IsEncrypted(data) {
		if !a.encryptor.IsConfigured() {
			return errors.New("export is encrypted but no keys are set up")
		}
		dc, err := a.encryptor.Unlock(passphrase)
		if err != nil {
			return fmt.Errorf("unlocking private key: %w", err)
		}
		var plain bytes.Buffer
		if err := dc.Decrypt(bytes.NewReader(data), &plain); err != nil {
			return fmt.Errorf("decrypting export: %w", err)
		}
		data = plain.Bytes()
	}
	return a.service.Import(bytes.NewReader(data))
}

// FetchFromVault downloads the stored export for this profile.
func (a *App) FetchFromVault(ctx context.Context) ([]byte, error) {
	if a.vault == nil {
		return nil, errors.New("no vaults configured")
	}
	var buf bytes.Buffer
	if err := a.vault.GetExport(ctx, a.cfg.ProfileID, &buf); err != nil {
		return nil, fmt.Errorf("downloading export: %w", err)
	}
	return buf.Bytes(), nil
}

// ValidateVault checks that the first vault is reachable and writable.
func (a *App) ValidateVault(ctx context.Context) error {
	if a.vault == nil {
		return errors.New("no vaults configured")
	}
	return a.vault.ValidateSetup(ctx)
}

// PendingActions returns the number of actions waiting to be synced.
func (a *App) PendingActions() (int, error) {
	if a.queue == nil {
		return 0, nil
	}
	pending, err := a.queue.Pending()
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}

// Sync replays queued actions against the configured remote server.
func (a *App) Sync(ctx context.Context) (outbox.Result, error) {
	if a.queue == nil {
		return outbox.Result{}, errors.New("sync.remote_url is not configured")
	}
	timeout := time.Duration(a.cfg.Sync.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	t := outbox.NewHTTPTransport(a.cfg.Sync.RemoteURL, timeout)
	if err := t.Ping(ctx); err != nil {
		return outbox.Result{}, fmt.Errorf("remote server unavailable: %w", err)
	}
	return a.queue.Sync(ctx, t)
}

// Scheduler returns the reminder scheduler, creating the configured
// notifier on first use.
func (a *App) Scheduler() (*reminders.Scheduler, error) {
	if a.scheduler != nil {
		return a.scheduler, nil
	}
	n, err := notify.NewNotifierFromConfig(a.cfg.Notify, a.logger)
	if err != nil {
		return nil, fmt.Errorf("creating notifier: %w", err)
	}
	s, err := reminders.NewScheduler(a.service, n, a.cfg.Reminders, a.logger, a.clock)
	if err != nil {
		return nil, err
	}
	a.scheduler = s
	return s, nil
}

// RunReminders checks reminders on the configured schedule until ctx is
// done.
func (a *App) RunReminders(ctx context.Context) error {
	s, err := a.Scheduler()
	if err != nil {
		return err
	}
	return s.Run(ctx)
}

// Serve runs the HTTP API until ctx is done. With withReminders the
// reminder scheduler runs alongside it.
func (a *App) Serve(ctx context.Context, withReminders bool) error {
	var rem server.ReminderSource
	var s *reminders.Scheduler
	if withReminders {
		var err error
		if s, err = a.Scheduler(); err != nil {
			return err
		}
		rem = s
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	remErr := make(chan error, 1)
	if s != nil {
		go func() {
			err := s.Run(ctx)
			if err != nil {
				cancel()
			}
			remErr <- err
		}()
	} else {
		remErr <- nil
	}

	srvErr := server.New(a.service, rem, a.logger).Serve(ctx, a.cfg.Server.Addr)
	cancel()
	if err := <-remErr; err != nil {
		return fmt.Errorf("reminders: %w", err)
	}
	return srvErr
}

// Report writes a PDF health report covering the named range.
func (a *App) Report(w io.Writer, rangeName string) error {
	data, err := report.Collect(a.service, rangeName)
	if err != nil {
		return err
	}
	return report.WritePDF(w, data)
}

// SetupKeys generates the export key pair. It refuses to replace existing
// keys.
func (a *App) SetupKeys(passphrase string) error {
	if a.encryptor.IsConfigured() {
		return errors.New("encryption keys already exist")
	}
	if strings.TrimSpace(passphrase) == "" {
		return errors.New("passphrase must not be empty")
	}
	if err := a.encryptor.Setup(passphrase); err != nil {
		return fmt.Errorf("setting up keys: %w", err)
	}
	return nil
}

// KeysConfigured reports whether export keys exist.
func (a *App) KeysConfigured() bool {
	return a.encryptor.IsConfigured()
}

// Backup writes a consistent copy of the database file to path.
func (a *App) Backup(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	return a.store.BackupTo(path)
}

// Close finishes the operation record if one was written and closes the
// store and log file.
func (a *App) Close() error {
	var firstErr error
	if a.op.Persisted() {
		if err := a.store.FinishOperation(a.op.ID, a.op.Status); err != nil {
			firstErr = fmt.Errorf("finishing operation: %w", err)
		}
	}
	if err := a.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
