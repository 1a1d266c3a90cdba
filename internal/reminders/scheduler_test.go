package reminders_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"healthtrack/internal/config"
	"healthtrack/internal/health"
	"healthtrack/internal/model"
	"healthtrack/internal/reminders"
	"healthtrack/internal/testutil"
)

func newScheduler(t *testing.T, times ...string) (*reminders.Scheduler, *testutil.Env, *testutil.RecordingNotifier, string) {
	t.Helper()

	env := testutil.NewTestEnv(t)
	med, err := env.Service.AddMedication(model.Medication{
		Name:         "Metformin",
		Dosage:       "500mg",
		Instructions: "Take with meals",
		Times:        times,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("AddMedication() error = %v", err)
	}

	notifier := &testutil.RecordingNotifier{}
	s, err := reminders.NewScheduler(env.Service, notifier, config.DefaultReminders(), health.NewNopLogger(), env.Clock)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	return s, env, notifier, med.ID
}

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	env := testutil.NewTestEnv(t)
	cfg := config.DefaultReminders()
	cfg.Schedule = "every minute please"

	if _, err := reminders.NewScheduler(env.Service, &testutil.RecordingNotifier{}, cfg, health.NewNopLogger(), env.Clock); err == nil {
		t.Fatal("NewScheduler() expected error for invalid schedule")
	}
}

func TestScheduler_Check(t *testing.T) {
	ctx := context.Background()
	s, env, notifier, medID := newScheduler(t, "10:15", "10:45", "07:00")

	if err := s.Check(ctx); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	sent := notifier.Notifications()
	if len(sent) != 1 {
		t.Fatalf("sent %d notifications, want 1 (10:15 only): %+v", len(sent), sent)
	}
	n := sent[0]
	if n.Title != "Metformin" || n.Body != "500mg - Take with meals" || n.Tag != "medication-reminder" {
		t.Errorf("notification = %+v", n)
	}
	if n.ReminderID != medID+"_10:15" {
		t.Errorf("ReminderID = %q", n.ReminderID)
	}
	if len(n.Actions) != 2 || n.Actions[0] != health.ActionTake || n.Actions[1] != health.ActionSnooze {
		t.Errorf("Actions = %+v", n.Actions)
	}

	t.Run("same dose is not notified twice", func(t *testing.T) {
		if err := s.Check(ctx); err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if got := len(notifier.Notifications()); got != 1 {
			t.Errorf("sent %d notifications, want 1", got)
		}
	})

	t.Run("next dose comes due", func(t *testing.T) {
		env.Clock.Advance(20 * time.Minute)
		if err := s.Check(ctx); err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		sent := notifier.Notifications()
		if len(sent) != 2 || sent[1].ReminderID != medID+"_10:45" {
			t.Errorf("notifications = %+v, want 10:45 second", sent)
		}
	})
}

func TestScheduler_Check_TakenDoseIsSilent(t *testing.T) {
	s, env, notifier, medID := newScheduler(t, "10:15")

	if _, err := env.Service.MarkTaken(medID, "10:15"); err != nil {
		t.Fatalf("MarkTaken() error = %v", err)
	}
	if err := s.Check(context.Background()); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if got := notifier.Notifications(); len(got) != 0 {
		t.Errorf("notifications = %+v, want none", got)
	}
}

func TestScheduler_Check_Disabled(t *testing.T) {
	s, env, notifier, _ := newScheduler(t, "10:15")

	patch := json.RawMessage(`{"notifications":{"medicationReminders":false}}`)
	if _, err := env.Service.UpdateSettings(patch); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if err := s.Check(context.Background()); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if got := notifier.Notifications(); len(got) != 0 {
		t.Errorf("notifications = %+v, want none when reminders are off", got)
	}
}

func TestScheduler_Check_RetriesFailedDelivery(t *testing.T) {
	ctx := context.Background()
	s, _, notifier, _ := newScheduler(t, "10:15")

	notifier.Err = errors.New("network down")
	if err := s.Check(ctx); err != nil {
		t.Fatalf("Check() error = %v, want delivery failure to be logged only", err)
	}

	notifier.Err = nil
	if err := s.Check(ctx); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if got := len(notifier.Notifications()); got != 1 {
		t.Errorf("sent %d notifications after retry, want 1", got)
	}
}

func TestScheduler_HandleAction(t *testing.T) {
	ctx := context.Background()

	t.Run("take marks the dose", func(t *testing.T) {
		s, env, _, medID := newScheduler(t, "10:15")

		if err := s.HandleAction(ctx, "take", medID+"_10:15"); err != nil {
			t.Fatalf("HandleAction() error = %v", err)
		}
		history, err := env.Service.MedicationHistory()
		if err != nil {
			t.Fatalf("MedicationHistory() error = %v", err)
		}
		if len(history) != 1 || history[0].Time != "10:15" || history[0].Date != "2024-01-15" {
			t.Errorf("history = %+v", history)
		}

		today, err := s.Today()
		if err != nil {
			t.Fatalf("Today() error = %v", err)
		}
		if today[0].Status != reminders.StatusTaken {
			t.Errorf("status = %s, want taken", today[0].Status)
		}
	})

	t.Run("snooze notifies again later", func(t *testing.T) {
		s, env, notifier, medID := newScheduler(t, "10:15")
		id := medID + "_10:15"

		if err := s.Check(ctx); err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if err := s.HandleAction(ctx, "snooze", id); err != nil {
			t.Fatalf("HandleAction() error = %v", err)
		}

		env.Clock.Advance(10 * time.Minute)
		if err := s.Check(ctx); err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if got := len(notifier.Notifications()); got != 1 {
			t.Fatalf("sent %d notifications before snooze ends, want 1", got)
		}

		env.Clock.Advance(5 * time.Minute)
		if err := s.Check(ctx); err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		sent := notifier.Notifications()
		if len(sent) != 2 {
			t.Fatalf("sent %d notifications, want 2", len(sent))
		}
		if sent[1].Title != "Snoozed reminder" || sent[1].ReminderID != id || sent[1].Body != "500mg - Take with meals" {
			t.Errorf("snoozed notification = %+v", sent[1])
		}
	})

	t.Run("snooze uses settings", func(t *testing.T) {
		s, env, notifier, medID := newScheduler(t, "10:15")
		if _, err := env.Service.UpdateSettings(json.RawMessage(`{"notifications":{"medicationReminders":true},"reminderSettings":{"snoozeTime":5}}`)); err != nil {
			t.Fatalf("UpdateSettings() error = %v", err)
		}
		if err := s.HandleAction(ctx, "snooze", medID+"_10:15"); err != nil {
			t.Fatalf("HandleAction() error = %v", err)
		}
		if err := s.Check(ctx); err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		env.Clock.Advance(5 * time.Minute)
		if err := s.Check(ctx); err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if got := len(notifier.Notifications()); got != 2 {
			t.Errorf("sent %d notifications, want due + snoozed", got)
		}
	})

	t.Run("errors", func(t *testing.T) {
		s, _, _, medID := newScheduler(t, "10:15")

		tests := []struct {
			name   string
			action string
			id     string
		}{
			{"unknown action", "ignore", medID + "_10:15"},
			{"bad id", "take", "nounderscore"},
			{"unknown medication", "take", "missing_10:15"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if err := s.HandleAction(ctx, tt.action, tt.id); err == nil {
					t.Errorf("HandleAction(%q, %q) expected error", tt.action, tt.id)
				}
			})
		}
	})

	t.Run("take on custom reminder is a dismissal", func(t *testing.T) {
		s, env, _, _ := newScheduler(t)
		if err := s.HandleAction(ctx, "take", "custom_c1"); err != nil {
			t.Fatalf("HandleAction() error = %v", err)
		}
		history, _ := env.Service.MedicationHistory()
		if len(history) != 0 {
			t.Errorf("history = %+v, want none", history)
		}
	})
}

func TestScheduler_Run(t *testing.T) {
	s, _, notifier, _ := newScheduler(t, "10:15")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	for len(notifier.Notifications()) == 0 {
		select {
		case <-deadline:
			t.Fatal("Run() sent no notification")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}
