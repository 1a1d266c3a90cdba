package health_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"healthtrack/internal/health"
	"healthtrack/internal/model"
	"healthtrack/internal/testutil"
)

func seed(t *testing.T, svc *health.Service) {
	t.Helper()
	med := addMed(t, svc, "Metformin", "08:00", "20:00")
	if _, err := svc.MarkTaken(med.ID, "08:00"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddVital(model.VitalReading{Type: model.BloodPressure, Systolic: 128, Diastolic: 82}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.BookAppointment(model.Appointment{DoctorName: "Dr. Lee", Date: "2024-02-01", Time: "09:00"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddContact(model.EmergencyContact{Name: "Jane", Phone: "555-0100", IsPrimary: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateProfile(json.RawMessage(`{"firstName":"Sam","bloodType":"O+"}`)); err != nil {
		t.Fatal(err)
	}
}

func exportString(t *testing.T, svc *health.Service) string {
	t.Helper()
	var buf bytes.Buffer
	if err := svc.Export(&buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	return buf.String()
}

func withoutExportDate(t *testing.T, doc string) map[string]json.RawMessage {
	t.Helper()
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &top); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	delete(top, "exportDate")
	return top
}

func TestService_ExportImport_RoundTrip(t *testing.T) {
	env := testutil.NewTestEnv(t)
	seed(t, env.Service)
	first := exportString(t, env.Service)

	if !strings.HasSuffix(first, "\n") {
		t.Error("export should end with a newline")
	}
	top := withoutExportDate(t, first)
	if string(top["schemaVersion"]) != "2" {
		t.Errorf("schemaVersion = %s, want 2", top["schemaVersion"])
	}
	if string(top["customReminders"]) != "[]" {
		t.Errorf("customReminders = %s, want []", top["customReminders"])
	}
	if _, ok := top["medicalId"]; ok {
		t.Error("unset medicalId should be omitted")
	}

	other := testutil.NewTestEnv(t)
	other.Clock.Advance(time.Hour)
	if err := other.Service.Import(strings.NewReader(first)); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	second := exportString(t, other.Service)
	if first == second {
		t.Error("exportDate should differ between exports")
	}

	a, b := withoutExportDate(t, first), withoutExportDate(t, second)
	if len(a) != len(b) {
		t.Fatalf("key count %d != %d", len(a), len(b))
	}
	for k, v := range a {
		if !bytes.Equal(v, b[k]) {
			t.Errorf("%s changed:\n%s\n%s", k, v, b[k])
		}
	}
}

func TestService_Import_Legacy(t *testing.T) {
	legacy := `{
  "medications": [
    {"id": 1, "name": "Lisinopril", "dosage": "10mg", "schedule": ["08:00"], "active": true, "stockQuantity": "30"}
  ],
  "vitals": [
    {"id": 7, "date": "2024-01-10", "time": "07:30", "bloodPressure": "120/80", "heartRate": "72"}
  ],
  "medicationHistory": [
    {"id": 3, "medicationId": 1, "time": "08:00", "timestamp": "2024-01-10T08:05:00Z"}
  ]
}`
	env := testutil.NewTestEnv(t)
	if err := env.Service.Import(strings.NewReader(legacy)); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	meds, _ := env.Service.Medications()
	if len(meds) != 1 {
		t.Fatalf("len(medications) = %d, want 1", len(meds))
	}
	if meds[0].ID != "1" || len(meds[0].Times) != 1 || meds[0].Times[0] != "08:00" || meds[0].Stock != 30 {
		t.Errorf("medication = %+v", meds[0])
	}

	vitals, _ := env.Service.Vitals("")
	if len(vitals) != 2 {
		t.Fatalf("len(vitals) = %d, want 2", len(vitals))
	}
	if vitals[0].ID != "7" || vitals[0].Type != model.BloodPressure || vitals[0].Systolic != 120 || vitals[0].Diastolic != 80 {
		t.Errorf("vitals[0] = %+v", vitals[0])
	}
	if vitals[1].ID != "7-heart_rate" || vitals[1].Type != model.HeartRate || vitals[1].Value != 72 {
		t.Errorf("vitals[1] = %+v", vitals[1])
	}

	history, _ := env.Service.MedicationHistory()
	if len(history) != 1 || history[0].Date != "2024-01-10" || history[0].MedicationID != "1" {
		t.Errorf("history = %+v", history)
	}
}

func TestService_Import_Rejected(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"medications": [`},
		{"not an object", `[1, 2]`},
		{"newer schema", `{"schemaVersion": 99, "medications": []}`},
		{"wrong shape", `{"schemaVersion": 2, "medications": {"id": "x"}}`},
		{"bad record", `{"schemaVersion": 2, "medications": [{"id": "x", "times": "08:00"}]}`},
		{"duplicate ids", `{"schemaVersion": 2, "vitals": [{"id": "v", "type": "weight", "value": 1, "date": "2024-01-01"}, {"id": "v", "type": "weight", "value": 2, "date": "2024-01-02"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewTestEnv(t)
			seed(t, env.Service)
			before := exportString(t, env.Service)

			err := env.Service.Import(strings.NewReader(tt.doc))
			if !errors.Is(err, health.ErrInvalid) {
				t.Fatalf("Import() error = %v, want ErrInvalid", err)
			}
			if after := exportString(t, env.Service); after != before {
				t.Error("rejected import changed stored data")
			}
		})
	}
}

func TestService_Import_KeepsAbsentKeys(t *testing.T) {
	env := testutil.NewTestEnv(t)
	seed(t, env.Service)

	if err := env.Service.Import(strings.NewReader(`{"schemaVersion": 2, "appointments": [], "userProfile": null}`)); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	appts, _ := env.Service.Appointments()
	if len(appts) != 0 {
		t.Errorf("appointments = %+v, want replaced with empty list", appts)
	}
	meds, _ := env.Service.Medications()
	if len(meds) != 1 {
		t.Errorf("len(medications) = %d, want untouched", len(meds))
	}
	profile, _ := env.Service.Profile()
	if profile == nil || profile.FirstName != "Sam" {
		t.Errorf("profile = %+v, want untouched", profile)
	}
}

func TestService_Clear(t *testing.T) {
	env := testutil.NewTestEnv(t)
	seed(t, env.Service)

	if err := env.Service.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	meds, _ := env.Service.Medications()
	vitals, _ := env.Service.Vitals("")
	if len(meds) != 0 || len(vitals) != 0 {
		t.Errorf("after Clear() meds = %d, vitals = %d", len(meds), len(vitals))
	}
	profile, err := env.Service.Profile()
	if err != nil || profile != nil {
		t.Errorf("Profile() = %+v, %v; want nil", profile, err)
	}
}
