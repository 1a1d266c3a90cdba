package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"healthtrack/internal/app"
	"healthtrack/internal/health"
)

// documentCmd builds the show and set subcommands for a singleton document.
func documentCmd[T any](use, short string, get func(*health.Service) (*T, error), update func(*health.Service, json.RawMessage) (*T, error)) *cobra.Command {
	parent := &cobra.Command{Use: use, Short: short}

	parent.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the " + use,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, args, func(a *app.App) error {
				doc, err := get(a.Service())
				if err != nil {
					return err
				}
				if doc == nil {
					printInfo("No %s saved yet.", use)
					return nil
				}
				return printJSON(doc)
			})
		},
	})

	parent.AddCommand(&cobra.Command{
		Use:   "set KEY=VALUE|KEY:=JSON...",
		Short: "Change fields of the " + use,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, args, func(a *app.App) error {
				svc, err := a.Edit()
				if err != nil {
					return err
				}
				current, err := get(svc)
				if err != nil {
					return err
				}
				var base []byte
				if current != nil {
					if base, err = json.Marshal(current); err != nil {
						return err
					}
				}
				patch, err := buildPatch(base, *new(T), args)
				if err != nil {
					return err
				}
				if _, err := update(svc, patch); err != nil {
					return err
				}
				printSuccess("Saved %s", use)
				return nil
			})
		},
	})
	return parent
}

func init() {
	rootCmd.AddCommand(documentCmd("profile", "View and edit your profile",
		(*health.Service).Profile, (*health.Service).UpdateProfile))
	rootCmd.AddCommand(documentCmd("medical-id", "View and edit your emergency medical ID",
		(*health.Service).MedicalID, (*health.Service).UpdateMedicalID))
	rootCmd.AddCommand(documentCmd("settings", "View and edit notification and reminder settings",
		(*health.Service).Settings, (*health.Service).UpdateSettings))
}
