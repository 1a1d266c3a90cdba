package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"healthtrack/internal/app"
	"healthtrack/internal/model"
)

var vitalCmd = &cobra.Command{
	Use:   "vital",
	Short: "Log and list vital signs",
}

var vitalAddCmd = &cobra.Command{
	Use:   "add TYPE",
	Short: "Log a reading (blood_pressure, glucose, weight, temperature, heart_rate)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		v := model.VitalReading{Type: model.VitalType(args[0])}
		v.Value, _ = f.GetFloat64("value")
		v.Systolic, _ = f.GetFloat64("systolic")
		v.Diastolic, _ = f.GetFloat64("diastolic")
		v.Unit, _ = f.GetString("unit")
		v.Date, _ = f.GetString("date")
		v.Time, _ = f.GetString("time")
		v.Notes, _ = f.GetString("notes")

		return withApp(cmd, args, func(a *app.App) error {
			svc, err := a.Edit()
			if err != nil {
				return err
			}
			created, err := svc.AddVital(v)
			if err != nil {
				return err
			}
			printSuccess("Logged %s %s on %s %s", created.Type, readingValue(*created), created.Date, created.Time)
			return nil
		})
	},
}

var vitalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List readings",
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, _ := cmd.Flags().GetString("type")
		return withApp(cmd, args, func(a *app.App) error {
			if typ != "" {
				if _, err := model.ParseVitalType(typ); err != nil {
					return err
				}
			}
			vitals, err := a.Service().Vitals(model.VitalType(typ))
			if err != nil {
				return err
			}
			if len(vitals) == 0 {
				printInfo("No readings.")
				return nil
			}
			for _, v := range vitals {
				fmt.Printf("%s %-5s  %-15s  %s\n", v.Date, v.Time, v.Type, readingValue(v))
			}
			return nil
		})
	},
}

func readingValue(v model.VitalReading) string {
	if v.Type == model.BloodPressure {
		return fmt.Sprintf("%g/%g %s", v.Systolic, v.Diastolic, v.Unit)
	}
	return fmt.Sprintf("%g %s", v.Value, v.Unit)
}

var apptCmd = &cobra.Command{
	Use:   "appt",
	Short: "Manage appointments",
}

var apptAddCmd = &cobra.Command{
	Use:   "add DOCTOR YYYY-MM-DD HH:MM",
	Short: "Book an appointment",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		appt := model.Appointment{DoctorName: args[0], Date: args[1], Time: args[2]}
		appt.Specialty, _ = f.GetString("specialty")
		appt.Location, _ = f.GetString("location")
		appt.Purpose, _ = f.GetString("purpose")
		appt.Notes, _ = f.GetString("notes")

		return withApp(cmd, args, func(a *app.App) error {
			svc, err := a.Edit()
			if err != nil {
				return err
			}
			created, err := svc.BookAppointment(appt)
			if err != nil {
				return err
			}
			printSuccess("Booked %s on %s at %s (%s)", created.DoctorName, created.Date, created.Time, created.ID)
			return nil
		})
	},
}

var apptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List appointments",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, args, func(a *app.App) error {
			appts, err := a.Service().Appointments()
			if err != nil {
				return err
			}
			if len(appts) == 0 {
				printInfo("No appointments.")
				return nil
			}
			for _, ap := range appts {
				fmt.Printf("%s  %s %s  %-20s  %-10s  %s\n", ap.ID, ap.Date, ap.Time, ap.DoctorName, ap.Status, ap.Location)
			}
			return nil
		})
	},
}

var apptUpdateCmd = &cobra.Command{
	Use:   "update ID KEY=VALUE|KEY:=JSON...",
	Short: "Change fields of an appointment, e.g. status=completed",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := buildPatch(nil, model.Appointment{}, args[1:])
		if err != nil {
			return err
		}
		return withApp(cmd, args, func(a *app.App) error {
			svc, err := a.Edit()
			if err != nil {
				return err
			}
			ap, err := svc.UpdateAppointment(args[0], patch)
			if err != nil {
				return err
			}
			if ap == nil {
				return fmt.Errorf("no appointment with id %s", args[0])
			}
			printSuccess("Updated appointment with %s", ap.DoctorName)
			return nil
		})
	},
}

var apptDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an appointment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, args, func(a *app.App) error {
			svc, err := a.Edit()
			if err != nil {
				return err
			}
			ok, err := svc.DeleteAppointment(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no appointment with id %s", args[0])
			}
			printSuccess("Deleted appointment %s", args[0])
			return nil
		})
	},
}

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Manage emergency contacts",
}

var contactAddCmd = &cobra.Command{
	Use:   "add NAME PHONE",
	Short: "Add an emergency contact",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		c := model.EmergencyContact{Name: args[0], Phone: args[1]}
		c.Relationship, _ = f.GetString("relationship")
		c.Email, _ = f.GetString("email")
		c.IsPrimary, _ = f.GetBool("primary")

		return withApp(cmd, args, func(a *app.App) error {
			svc, err := a.Edit()
			if err != nil {
				return err
			}
			created, err := svc.AddContact(c)
			if err != nil {
				return err
			}
			printSuccess("Added contact %s (%s)", created.Name, created.ID)
			return nil
		})
	},
}

var contactListCmd = &cobra.Command{
	Use:   "list",
	Short: "List emergency contacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, args, func(a *app.App) error {
			contacts, err := a.Service().Contacts()
			if err != nil {
				return err
			}
			if len(contacts) == 0 {
				printInfo("No emergency contacts.")
				return nil
			}
			for _, c := range contacts {
				primary := ""
				if c.IsPrimary {
					primary = "  [primary]"
				}
				fmt.Printf("%s  %-20s  %-15s  %s%s\n", c.ID, c.Name, c.Phone, c.Relationship, primary)
			}
			return nil
		})
	},
}

var contactDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an emergency contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, args, func(a *app.App) error {
			svc, err := a.Edit()
			if err != nil {
				return err
			}
			ok, err := svc.DeleteContact(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no contact with id %s", args[0])
			}
			printSuccess("Deleted contact %s", args[0])
			return nil
		})
	},
}

func init() {
	vitalAddCmd.Flags().Float64("value", 0, "Reading value")
	vitalAddCmd.Flags().Float64("systolic", 0, "Systolic pressure (blood_pressure only)")
	vitalAddCmd.Flags().Float64("diastolic", 0, "Diastolic pressure (blood_pressure only)")
	vitalAddCmd.Flags().String("unit", "", "Unit; defaults to the type's unit")
	vitalAddCmd.Flags().String("date", "", "Date as YYYY-MM-DD; defaults to today")
	vitalAddCmd.Flags().String("time", "", "Time as HH:MM; defaults to now")
	vitalAddCmd.Flags().String("notes", "", "Notes")
	vitalListCmd.Flags().String("type", "", "Only list readings of this type")
	vitalCmd.AddCommand(vitalAddCmd)
	vitalCmd.AddCommand(vitalListCmd)

	apptAddCmd.Flags().String("specialty", "", "Doctor's specialty")
	apptAddCmd.Flags().String("location", "", "Where")
	apptAddCmd.Flags().String("purpose", "", "Reason for the visit")
	apptAddCmd.Flags().String("notes", "", "Notes")
	apptCmd.AddCommand(apptAddCmd)
	apptCmd.AddCommand(apptListCmd)
	apptCmd.AddCommand(apptUpdateCmd)
	apptCmd.AddCommand(apptDeleteCmd)

	contactAddCmd.Flags().String("relationship", "", "Relationship to you")
	contactAddCmd.Flags().String("email", "", "Email address")
	contactAddCmd.Flags().Bool("primary", false, "Mark as the primary contact")
	contactCmd.AddCommand(contactAddCmd)
	contactCmd.AddCommand(contactListCmd)
	contactCmd.AddCommand(contactDeleteCmd)

	rootCmd.AddCommand(vitalCmd)
	rootCmd.AddCommand(apptCmd)
	rootCmd.AddCommand(contactCmd)
}
