package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"healthtrack/internal/app"
	"healthtrack/internal/model"
	"healthtrack/internal/reminders"
)

var reminderCmd = &cobra.Command{
	Use:   "reminder",
	Short: "Medication and custom reminders",
}

var reminderListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show today's reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, args, func(a *app.App) error {
			s, err := a.Scheduler()
			if err != nil {
				return err
			}
			rs, err := s.Today()
			if err != nil {
				return err
			}
			if len(rs) == 0 {
				printInfo("No reminders today.")
				return nil
			}
			for _, r := range rs {
				detail := r.Dosage
				if r.Custom {
					detail = r.Message
				}
				fmt.Printf("%s  %-9s  %-20s  %s\n", r.Time, r.Status, r.Name, detail)
			}
			printInfo("%d taken, %d missed, %d pending, %d upcoming",
				reminders.Count(rs, reminders.StatusTaken),
				reminders.Count(rs, reminders.StatusMissed),
				reminders.Count(rs, reminders.StatusPending),
				reminders.Count(rs, reminders.StatusUpcoming))
			return nil
		})
	},
}

var reminderAddCmd = &cobra.Command{
	Use:   "add TITLE HH:MM",
	Short: "Add a daily custom reminder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, _ := cmd.Flags().GetString("message")
		return withApp(cmd, args, func(a *app.App) error {
			svc, err := a.Edit()
			if err != nil {
				return err
			}
			r, err := svc.AddCustomReminder(model.CustomReminder{
				Title:            args[0],
				Time:             args[1],
				Message:          msg,
				SoundEnabled:     true,
				VibrationEnabled: true,
			})
			if err != nil {
				return err
			}
			printSuccess("Reminder %q set for %s every day (%s)", r.Title, r.Time, r.ID)
			return nil
		})
	},
}

var reminderDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a custom reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, args, func(a *app.App) error {
			svc, err := a.Edit()
			if err != nil {
				return err
			}
			ok, err := svc.DeleteCustomReminder(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no reminder with id %s", args[0])
			}
			printSuccess("Deleted reminder %s", args[0])
			return nil
		})
	},
}

var reminderRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Send reminder notifications until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, args, func(a *app.App) error {
			printInfo("Checking reminders; press Ctrl-C to stop.")
			return a.RunReminders(cmd.Context())
		})
	},
}

func init() {
	reminderAddCmd.Flags().StringP("message", "m", "", "Notification text")

	reminderCmd.AddCommand(reminderListCmd)
	reminderCmd.AddCommand(reminderAddCmd)
	reminderCmd.AddCommand(reminderDeleteCmd)
	reminderCmd.AddCommand(reminderRunCmd)

	rootCmd.AddCommand(reminderCmd)
}
