package reminders

import (
	"testing"
	"time"

	"healthtrack/internal/model"
)

func TestSchedule(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	meds := []model.Medication{
		{ID: "1", Name: "Metformin", Dosage: "500mg", Instructions: "Take with meals", Times: []string{"08:00", "11:01"}},
		{ID: "2", Name: "Lisinopril", Dosage: "10mg", Times: []string{"09:00", "10:45", "bad"}},
		{ID: "3", Name: "Vitamin D3", Dosage: "1000 IU", Times: []string{"11:00"}},
	}
	custom := []model.CustomReminder{{ID: "c1", Title: "Drink water", Time: "10:40", Message: "Glass of water"}}
	history := []model.HistoryRecord{
		{ID: "h1", MedicationID: "1", Time: "08:00", Date: "2024-01-15"},
		{ID: "h2", MedicationID: "2", Time: "09:00", Date: "2024-01-14"},
	}

	got := Schedule(meds, custom, history, now, 30*time.Minute)

	want := []struct {
		id     string
		status Status
	}{
		{"1_08:00", StatusTaken},
		{"2_09:00", StatusMissed},
		{"custom_c1", StatusPending},
		{"2_10:45", StatusPending},
		{"3_11:00", StatusPending},
		{"1_11:01", StatusUpcoming},
	}
	if len(got) != len(want) {
		t.Fatalf("len(Schedule) = %d, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].ID != w.id || got[i].Status != w.status {
			t.Errorf("reminder[%d] = %s/%s, want %s/%s", i, got[i].ID, got[i].Status, w.id, w.status)
		}
	}

	if got[1].Instructions != "Take as prescribed" {
		t.Errorf("default instructions = %q", got[1].Instructions)
	}
	if got[0].Instructions != "Take with meals" {
		t.Errorf("instructions = %q", got[0].Instructions)
	}
	if !got[2].Custom || got[2].Message != "Glass of water" {
		t.Errorf("custom reminder = %+v", got[2])
	}
	if want := time.Date(2024, 1, 15, 10, 45, 0, 0, time.UTC); !got[3].At.Equal(want) {
		t.Errorf("At = %v, want %v", got[3].At, want)
	}
	if n := Count(got, StatusPending); n != 3 {
		t.Errorf("Count(pending) = %d, want 3", n)
	}
}

func TestSchedule_DoseAtNowIsUpcoming(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	meds := []model.Medication{{ID: "1", Name: "A", Times: []string{"10:30"}}}

	got := Schedule(meds, nil, nil, now, 30*time.Minute)
	if len(got) != 1 || got[0].Status != StatusUpcoming {
		t.Errorf("Schedule = %+v, want one upcoming reminder", got)
	}
}

func TestParseReminderID(t *testing.T) {
	tests := []struct {
		id         string
		wantMed    string
		wantClock  string
		wantCustom bool
		wantOK     bool
	}{
		{"1_08:00", "1", "08:00", false, true},
		{"med_with_underscores_21:30", "med_with_underscores", "21:30", false, true},
		{"custom_abc", "abc", "", true, true},
		{"custom_", "", "", true, false},
		{"nounderscore", "", "", false, false},
		{"_08:00", "", "", false, false},
		{"1_", "", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			med, clock, custom, ok := ParseReminderID(tt.id)
			if ok != tt.wantOK || custom != tt.wantCustom {
				t.Fatalf("ParseReminderID(%q) ok=%v custom=%v, want ok=%v custom=%v", tt.id, ok, custom, tt.wantOK, tt.wantCustom)
			}
			if !ok {
				return
			}
			if med != tt.wantMed || clock != tt.wantClock {
				t.Errorf("ParseReminderID(%q) = %q, %q, want %q, %q", tt.id, med, clock, tt.wantMed, tt.wantClock)
			}
		})
	}
}
