package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"healthtrack/internal/app"
	"healthtrack/internal/insights"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show adherence, vital trends and the health score",
	RunE: func(cmd *cobra.Command, args []string) error {
		rangeName, _ := cmd.Flags().GetString("range")
		asJSON, _ := cmd.Flags().GetBool("json")
		return withApp(cmd, args, func(a *app.App) error {
			rep, err := a.Service().Analytics(rangeName)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(rep)
			}
			printReport(rep)
			return nil
		})
	},
}

// penaltyLine formats a deduction; Points already carries its sign.
func penaltyLine(p insights.Penalty) string {
	return fmt.Sprintf("  %g  %s", p.Points, p.Reason)
}

func printReport(rep *insights.Report) {
	fmt.Printf("Health score: %d (%s), last %d days\n", rep.Score.Score, rep.Score.Description, rep.Days)
	fmt.Printf("Adherence:    %d%%\n", rep.Adherence)
	for _, p := range rep.Score.Penalties {
		fmt.Println(penaltyLine(p))
	}

	fmt.Println("\nTrends:")
	for _, v := range []insights.VitalTrend{rep.Trends.BloodPressure, rep.Trends.HeartRate, rep.Trends.Weight, rep.Trends.Temperature, rep.Trends.Glucose} {
		if !v.HasData() {
			fmt.Printf("  %-15s  not enough readings\n", v.Type)
			continue
		}
		fmt.Printf("  %-15s  %-10s  %s\n", v.Type, v.Trend, v.Summary)
	}

	if len(rep.Insights) > 0 {
		fmt.Println("\nInsights:")
		for _, in := range rep.Insights {
			fmt.Printf("  [%s] %s: %s\n", in.Severity, in.Title, in.Message)
		}
	}
	if len(rep.Recommendations) > 0 {
		fmt.Println("\nRecommendations:")
		for _, r := range rep.Recommendations {
			fmt.Printf("  [%s] %s\n", r.Priority, r.Title)
			for _, act := range r.Actions {
				fmt.Printf("      - %s\n", act)
			}
		}
	}
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a PDF health report",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		rangeName, _ := cmd.Flags().GetString("range")
		return withApp(cmd, args, func(a *app.App) error {
			var buf bytes.Buffer
			if err := a.Report(&buf, rangeName); err != nil {
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0600); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			printSuccess("Report written to %s (%s)", out, humanize.Bytes(uint64(buf.Len())))
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all data as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		file, _ := f.GetString("file")
		toVault, _ := f.GetBool("vault")
		encrypt, _ := f.GetBool("encrypt")
		force, _ := f.GetBool("force")

		return withApp(cmd, args, func(a *app.App) error {
			if toVault {
				if err := a.ExportToVault(cmd.Context(), encrypt, force); err != nil {
					return err
				}
				printSuccess("Export uploaded to vault")
				return nil
			}

			var buf bytes.Buffer
			if err := a.Export(&buf, encrypt); err != nil {
				return err
			}
			if file == "" {
				_, err := io.Copy(os.Stdout, &buf)
				return err
			}
			size := buf.Len()
			if err := os.WriteFile(file, buf.Bytes(), 0600); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			printSuccess("Exported to %s (%s)", file, humanize.Bytes(uint64(size)))
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import [FILE]",
	Short: "Replace data with an export (from a file, stdin or the vault)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fromVault, _ := cmd.Flags().GetBool("vault")
		decrypt, _ := cmd.Flags().GetBool("decrypt")
		if fromVault == (len(args) == 1) {
			return errors.New("give either a FILE or --vault")
		}

		return withApp(cmd, args, func(a *app.App) error {
			var data []byte
			var err error
			switch {
			case fromVault:
				data, err = a.FetchFromVault(cmd.Context())
			case args[0] == "-":
				data, err = io.ReadAll(os.Stdin)
			default:
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			encrypted := app.NeedsPassphrase(data)
			if decrypt && !encrypted {
				return errors.New("export is not encrypted")
			}
			var passphrase string
			if encrypted {
				if passphrase, err = readPassphrase("Passphrase: ", false); err != nil {
					return err
				}
			}
			if !a.Import(data, passphrase) {
				return errors.New("import failed; see the log for details")
			}
			printSuccess("Data imported (%s)", humanize.Bytes(uint64(len(data))))
			return nil
		})
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay queued actions against the remote server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, args, func(a *app.App) error {
			pending, err := a.PendingActions()
			if err != nil {
				return err
			}
			if pending == 0 {
				printInfo("Nothing to sync.")
				return nil
			}
			res, err := a.Sync(cmd.Context())
			if err != nil {
				return err
			}
			if res.Failed > 0 {
				printInfo("%d action(s) synced, %d still queued: %v", res.Sent, res.Failed, res.Err)
				return nil
			}
			printSuccess("%d action(s) synced", res.Sent)
			return nil
		})
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		withReminders, _ := cmd.Flags().GetBool("reminders")
		return withApp(cmd, args, func(a *app.App) error {
			return a.Serve(cmd.Context(), withReminders)
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View the history of commands that changed data",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withApp(cmd, args, func(a *app.App) error {
			ops, err := a.GetHistory(limit)
			if err != nil {
				return err
			}
			if len(ops) == 0 {
				printInfo("No operations recorded.")
				return nil
			}
			for _, op := range ops {
				duration := ""
				if op.FinishedAt != nil {
					duration = op.FinishedAt.Sub(op.StartedAt).Truncate(time.Millisecond).String()
				}
				fmt.Printf("#%d  %-15s  %-14s  %-8s  %-8s  %s\n",
					op.ID,
					op.Name,
					humanize.Time(op.StartedAt),
					op.Status,
					duration,
					op.Parameters,
				)
			}
			return nil
		})
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup FILE",
	Short: "Copy the database file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, args, func(a *app.App) error {
			if err := a.Backup(args[0]); err != nil {
				return err
			}
			printSuccess("Database copied to %s", args[0])
			return nil
		})
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage export encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the export key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, args, func(a *app.App) error {
			if a.KeysConfigured() {
				return errors.New("encryption keys already exist")
			}
			passphrase, err := readPassphrase("New passphrase: ", true)
			if err != nil {
				return err
			}
			if err := a.SetupKeys(passphrase); err != nil {
				return err
			}
			printSuccess("Encryption keys created")
			printInfo("Keep the passphrase safe; encrypted exports cannot be read without it.")
			return nil
		})
	},
}

// readPassphrase takes the passphrase from HEALTHTRACK_PASSPHRASE, the
// terminal without echo, or the first line of stdin, in that order.
func readPassphrase(prompt string, confirm bool) (string, error) {
	if p := os.Getenv("HEALTHTRACK_PASSPHRASE"); p != "" {
		return p, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	p, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if confirm {
		fmt.Fprint(os.Stderr, "Confirm passphrase: ")
		again, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		if !bytes.Equal(p, again) {
			return "", errors.New("passphrases do not match")
		}
	}
	return string(p), nil
}

func init() {
	insightsCmd.Flags().StringP("range", "r", "30d", "Time range: 7d, 30d, 90d or 1y")
	insightsCmd.Flags().Bool("json", false, "Print the full report as JSON")

	reportCmd.Flags().StringP("out", "o", "health-report.pdf", "Output file")
	reportCmd.Flags().StringP("range", "r", "30d", "Time range: 7d, 30d, 90d or 1y")

	exportCmd.Flags().String("file", "", "Write to this file instead of stdout")
	exportCmd.Flags().Bool("vault", false, "Upload to the configured vault")
	exportCmd.Flags().Bool("encrypt", false, "Encrypt with the export public key")
	exportCmd.Flags().Bool("force", false, "Overwrite a newer export in the vault")

	importCmd.Flags().Bool("vault", false, "Download the export from the configured vault")
	importCmd.Flags().Bool("decrypt", false, "Require an encrypted export; encryption is otherwise detected")

	serveCmd.Flags().Bool("reminders", true, "Also run the reminder scheduler")

	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")

	keysCmd.AddCommand(keysInitCmd)

	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(keysCmd)
}
