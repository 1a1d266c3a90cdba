package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"healthtrack/internal/app"
	"healthtrack/internal/model"
)

var medCmd = &cobra.Command{
	Use:   "med",
	Short: "Manage medications",
}

var medAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a medication",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		m := model.Medication{Name: args[0], Active: true}
		m.Dosage, _ = f.GetString("dosage")
		m.Frequency, _ = f.GetString("frequency")
		m.Times, _ = f.GetStringSlice("time")
		m.Instructions, _ = f.GetString("instructions")
		m.Condition, _ = f.GetString("condition")
		m.PrescribedBy, _ = f.GetString("prescribed-by")
		m.Stock, _ = f.GetInt("stock")

		return withApp(cmd, args, func(a *app.App) error {
			svc, err := a.Edit()
			if err != nil {
				return err
			}
			created, err := svc.AddMedication(m)
			if err != nil {
				return err
			}
			printSuccess("Added %s (%s)", created.Name, created.ID)

			warnings, err := svc.Warnings(created.ID)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				printInfo("%s: %s", w.Title, w.Message)
			}
			return nil
		})
	},
}

var medListCmd = &cobra.Command{
	Use:   "list",
	Short: "List medications",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		return withApp(cmd, args, func(a *app.App) error {
			var meds []model.Medication
			var err error
			if all {
				meds, err = a.Service().Medications()
			} else {
				meds, err = a.Service().ActiveMedications()
			}
			if err != nil {
				return err
			}
			if len(meds) == 0 {
				printInfo("No medications.")
				return nil
			}
			for _, m := range meds {
				state := ""
				if !m.Active {
					state = "  [paused]"
				}
				fmt.Printf("%s  %-20s  %-10s  %s%s\n", m.ID, m.Name, m.Dosage, strings.Join(m.Times, ","), state)
			}
			return nil
		})
	},
}

var medUpdateCmd = &cobra.Command{
	Use:   "update ID KEY=VALUE|KEY:=JSON...",
	Short: "Change fields of a medication",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := buildPatch(nil, model.Medication{}, args[1:])
		if err != nil {
			return err
		}
		return withApp(cmd, args, func(a *app.App) error {
			svc, err := a.Edit()
			if err != nil {
				return err
			}
			m, err := svc.UpdateMedication(args[0], patch)
			if err != nil {
				return err
			}
			if m == nil {
				return fmt.Errorf("no medication with id %s", args[0])
			}
			printSuccess("Updated %s", m.Name)
			return nil
		})
	},
}

var medDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a medication",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, args, func(a *app.App) error {
			svc, err := a.Edit()
			if err != nil {
				return err
			}
			ok, err := svc.DeleteMedication(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no medication with id %s", args[0])
			}
			printSuccess("Deleted medication %s", args[0])
			return nil
		})
	},
}

var medTakeCmd = &cobra.Command{
	Use:   "take ID HH:MM",
	Short: "Mark a scheduled dose as taken",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, args, func(a *app.App) error {
			svc, err := a.Edit()
			if err != nil {
				return err
			}
			rec, err := svc.MarkTaken(args[0], args[1])
			if err != nil {
				return err
			}
			printSuccess("Dose at %s marked as taken on %s", rec.Time, rec.Date)
			return nil
		})
	},
}

func setActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, args, func(a *app.App) error {
				svc, err := a.Edit()
				if err != nil {
					return err
				}
				m, err := svc.SetMedicationActive(args[0], active)
				if err != nil {
					return err
				}
				if m == nil {
					return fmt.Errorf("no medication with id %s", args[0])
				}
				if active {
					printSuccess("Resumed %s", m.Name)
				} else {
					printSuccess("Paused %s", m.Name)
				}
				return nil
			})
		},
	}
}

var warningsCmd = &cobra.Command{
	Use:   "warnings",
	Short: "Check active medications for interactions and duplicates",
	RunE: func(cmd *cobra.Command, args []string) error {
		medID, _ := cmd.Flags().GetString("med")
		return withApp(cmd, args, func(a *app.App) error {
			warnings, err := a.Service().Warnings(medID)
			if err != nil {
				return err
			}
			if len(warnings) == 0 {
				printSuccess("No interactions found.")
				return nil
			}
			for _, w := range warnings {
				fmt.Printf("[%s] %s\n  %s\n  %s\n", strings.ToUpper(string(w.Severity)), w.Title, w.Message, w.Advice)
			}
			return nil
		})
	},
}

func init() {
	medAddCmd.Flags().StringP("dosage", "d", "", "Dose, e.g. 500mg")
	medAddCmd.Flags().StringP("frequency", "f", "", "How often, e.g. twice daily")
	medAddCmd.Flags().StringSliceP("time", "t", nil, "Scheduled time of day as HH:MM (repeatable)")
	medAddCmd.Flags().String("instructions", "", "How to take it")
	medAddCmd.Flags().String("condition", "", "Condition it treats")
	medAddCmd.Flags().String("prescribed-by", "", "Prescribing doctor")
	medAddCmd.Flags().Int("stock", 0, "Doses on hand")
	medListCmd.Flags().BoolP("all", "a", false, "Include paused medications")

	medCmd.AddCommand(medAddCmd)
	medCmd.AddCommand(medListCmd)
	medCmd.AddCommand(medUpdateCmd)
	medCmd.AddCommand(medDeleteCmd)
	medCmd.AddCommand(medTakeCmd)
	medCmd.AddCommand(setActiveCmd("pause", "Pause a medication", false))
	medCmd.AddCommand(setActiveCmd("resume", "Resume a paused medication", true))

	warningsCmd.Flags().String("med", "", "Only report interactions involving this medication id")

	rootCmd.AddCommand(medCmd)
	rootCmd.AddCommand(warningsCmd)
}
