package health_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"healthtrack/internal/health"
	"healthtrack/internal/model"
	"healthtrack/internal/testutil"
)

func TestService_ApplyAction(t *testing.T) {
	env := testutil.NewTestEnv(t)
	action := model.PendingAction{
		ID:      "a-1",
		Type:    model.ActionVitalLogged,
		Payload: json.RawMessage(`{"id":"remote-1","type":"weight","value":180,"unit":"lbs","date":"2024-01-14"}`),
	}

	applied, err := env.Service.ApplyAction(action)
	if err != nil || !applied {
		t.Fatalf("ApplyAction() = %v, %v; want true", applied, err)
	}
	applied, err = env.Service.ApplyAction(action)
	if err != nil || applied {
		t.Fatalf("second ApplyAction() = %v, %v; want false", applied, err)
	}

	vitals, _ := env.Service.Vitals(model.Weight)
	if len(vitals) != 1 || vitals[0].ID != "remote-1" {
		t.Errorf("vitals = %+v, want the one replayed reading", vitals)
	}

	tests := []struct {
		name   string
		action model.PendingAction
	}{
		{"unknown type", model.PendingAction{ID: "a-2", Type: "refill_ordered", Payload: json.RawMessage(`{}`)}},
		{"bad payload", model.PendingAction{ID: "a-3", Type: model.ActionMedicationTaken, Payload: json.RawMessage(`"nope"`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.Service.ApplyAction(tt.action); !errors.Is(err, health.ErrInvalid) {
				t.Errorf("ApplyAction() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestService_Documents(t *testing.T) {
	env := testutil.NewTestEnv(t)
	svc := env.Service

	if p, err := svc.Profile(); err != nil || p != nil {
		t.Fatalf("Profile() = %+v, %v; want nil before first write", p, err)
	}
	if _, err := svc.UpdateProfile(json.RawMessage(`{"firstName":"Sam","lastName":"Park"}`)); err != nil {
		t.Fatal(err)
	}
	p, err := svc.UpdateProfile(json.RawMessage(`{"lastName":"Kim"}`))
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if p.FirstName != "Sam" || p.LastName != "Kim" {
		t.Errorf("profile = %+v, want merged", p)
	}

	env.Clock.Advance(90 * time.Minute)
	id, err := svc.UpdateMedicalID(json.RawMessage(`{"bloodType":"A-"}`))
	if err != nil {
		t.Fatalf("UpdateMedicalID() error = %v", err)
	}
	if id.BloodType != "A-" || !id.LastUpdated.Equal(env.Clock.Now()) {
		t.Errorf("medical id = %+v", id)
	}

	s, err := svc.UpdateSettings(json.RawMessage(`{"reminderSettings":{"snoozeTime":10}}`))
	if err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if s.ReminderSettings.SnoozeTime != 10 {
		t.Errorf("snoozeTime = %d, want 10", s.ReminderSettings.SnoozeTime)
	}
}

func TestService_Records(t *testing.T) {
	env := testutil.NewTestEnv(t)
	svc := env.Service

	t.Run("custom reminders", func(t *testing.T) {
		r, err := svc.AddCustomReminder(model.CustomReminder{Title: " Stretch ", Time: "15:00"})
		if err != nil {
			t.Fatalf("AddCustomReminder() error = %v", err)
		}
		if r.Title != "Stretch" || !r.Created.Equal(testutil.FixedTime) {
			t.Errorf("reminder = %+v", r)
		}
		ok, err := svc.DeleteCustomReminder(r.ID)
		if err != nil || !ok {
			t.Errorf("DeleteCustomReminder() = %v, %v", ok, err)
		}
	})

	t.Run("vitals", func(t *testing.T) {
		g, err := svc.AddVital(model.VitalReading{Type: model.Glucose, Value: 105})
		if err != nil {
			t.Fatalf("AddVital() error = %v", err)
		}
		if g.Unit != "mg/dL" || g.Date != "2024-01-15" || g.Time != "10:30" {
			t.Errorf("glucose = %+v", g)
		}
		if _, err := svc.AddVital(model.VitalReading{Type: model.Weight, Value: 170, Unit: "kg"}); err != nil {
			t.Fatal(err)
		}
		glucose, _ := svc.Vitals(model.Glucose)
		if len(glucose) != 1 {
			t.Errorf("len(Vitals(glucose)) = %d, want 1", len(glucose))
		}
	})

	t.Run("appointments", func(t *testing.T) {
		a, err := svc.BookAppointment(model.Appointment{DoctorName: "Dr. Lee", Date: "2024-02-01", Time: "09:00", Status: "completed"})
		if err != nil {
			t.Fatalf("BookAppointment() error = %v", err)
		}
		if a.Status != model.AppointmentScheduled {
			t.Errorf("Status = %q, want scheduled", a.Status)
		}
		u, err := svc.UpdateAppointment(a.ID, json.RawMessage(`{"status":"completed"}`))
		if err != nil || u == nil || u.Status != model.AppointmentCompleted {
			t.Errorf("UpdateAppointment() = %+v, %v", u, err)
		}
		for _, patch := range []string{`{"status":"bogus"}`, `{"date":"never"}`, `{"doctorName":""}`} {
			if _, err := svc.UpdateAppointment(a.ID, json.RawMessage(patch)); !errors.Is(err, health.ErrInvalid) {
				t.Errorf("UpdateAppointment(%s) error = %v, want ErrInvalid", patch, err)
			}
		}
		appts, _ := svc.Appointments()
		if len(appts) != 1 || appts[0].Status != model.AppointmentCompleted || appts[0].Date != "2024-02-01" {
			t.Errorf("stored appointments = %+v, want the completed one unchanged", appts)
		}
		if len(env.Outbox.Actions) == 0 || env.Outbox.Actions[len(env.Outbox.Actions)-1].Type != model.ActionAppointmentBooked {
			t.Errorf("outbox = %+v, want appointment_booked last", env.Outbox.Actions)
		}
	})

	t.Run("contacts", func(t *testing.T) {
		c, err := svc.AddContact(model.EmergencyContact{Name: "Jane", Phone: "555-0100"})
		if err != nil {
			t.Fatalf("AddContact() error = %v", err)
		}
		u, err := svc.UpdateContact(c.ID, json.RawMessage(`{"relationship":"sister"}`))
		if err != nil || u == nil || u.Relationship != "sister" {
			t.Errorf("UpdateContact() = %+v, %v", u, err)
		}
		if _, err := svc.UpdateContact(c.ID, json.RawMessage(`{"phone":" "}`)); !errors.Is(err, health.ErrInvalid) {
			t.Errorf("UpdateContact(empty phone) error = %v, want ErrInvalid", err)
		}
		ok, _ := svc.DeleteContact(c.ID)
		if !ok {
			t.Error("DeleteContact() = false")
		}
	})
}
