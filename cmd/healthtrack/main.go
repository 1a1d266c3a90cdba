package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"healthtrack/internal/app"
	"healthtrack/internal/config"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		os.Exit(1)
	}
}

// loadConfig reads the .env file and the config file at their default
// locations.
func loadConfig() (*config.Config, map[string]string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, nil, fmt.Errorf("getting defaults: %w", err)
	}
	if err := app.LoadEnv(".env", defaults["env_file"]); err != nil {
		return nil, nil, err
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, nil, err
	}
	return cfg, defaults, nil
}

// newApp reads the config and creates an App for cmd. The caller must
// defer a.Close().
func newApp(cmd *cobra.Command, args []string) (*app.App, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	name := strings.TrimPrefix(cmd.CommandPath(), rootCmd.Name()+" ")
	a, err := app.NewApp(cmd.Context(), cfg, app.NewOperation(name, strings.Join(args, " ")))
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// withApp runs fn against a fresh App and marks the operation failed when
// fn returns an error.
func withApp(cmd *cobra.Command, args []string, fn func(a *app.App) error) error {
	a, err := newApp(cmd, args)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := fn(a); err != nil {
		a.Fail()
		return err
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:           "healthtrack",
	Short:         "Personal health tracker",
	SilenceErrors: true,
	SilenceUsage:  true,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}

		profileID := uuid.New().String()
		cfg := config.NewConfig(profileID, defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return err
		}

		printSuccess("Configuration initialized at %s", defaults["config_path"])
		printInfo("Profile ID: %s", profileID)
		printInfo("Base Dir:   %s", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, defaults, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Profile ID: %s\n", cfg.ProfileID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Database:   %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		for i, v := range cfg.Vaults {
			fmt.Printf("Vault %d:    %s (%s)\n", i, v.Name, v.Type)
		}
		fmt.Printf("Notify:     %s\n", orDefault(cfg.Notify.Type, "log"))
		fmt.Printf("Sync:       %s\n", orDefault(cfg.Sync.RemoteURL, "disabled"))
		fmt.Printf("Server:     %s\n", cfg.Server.Addr)
		fmt.Printf("Reminders:  %s (window %dm, snooze %dm)\n", cfg.Reminders.Schedule, cfg.Reminders.PendingWindow, cfg.Reminders.SnoozeMinutes)
		return nil
	},
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(configCmd)
}
