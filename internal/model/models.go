package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// SchemaVersion is the current record format. Records written by older
// releases (and exports from the browser app, which carry no version) are
// version 1 and get upgraded when loaded.
const SchemaVersion = 2

// Collection names an ordered list of records in the store.
type Collection string

const (
	Medications       Collection = "medications"
	Appointments      Collection = "appointments"
	Vitals            Collection = "vitals"
	EmergencyContacts Collection = "emergency_contacts"
	MedicationHistory Collection = "medication_history"
	CustomReminders   Collection = "custom_reminders"
	PendingActions    Collection = "pending_actions"
)

// AllCollections lists every collection in export order.
var AllCollections = []Collection{
	Medications,
	Appointments,
	Vitals,
	EmergencyContacts,
	MedicationHistory,
	CustomReminders,
	PendingActions,
}

// DocumentKey names a singleton document in the store.
type DocumentKey string

const (
	ProfileDoc   DocumentKey = "user_profile"
	SettingsDoc  DocumentKey = "settings"
	MedicalIDDoc DocumentKey = "medical_id"
)

// Record is implemented by every entity stored in a collection.
type Record interface {
	RecordID() string
}

// Date and clock formats used by the stored records.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Medication is a prescribed drug or supplement with a daily schedule.
type Medication struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Dosage       string   `json:"dosage"`
	Frequency    string   `json:"frequency"`
	Times        []string `json:"times"`
	Instructions string   `json:"instructions,omitempty"`
	Condition    string   `json:"condition,omitempty"`
	Stock        int      `json:"stock"`
	PrescribedBy string   `json:"prescribedBy,omitempty"`
	Type         string   `json:"type,omitempty"`
	Active       bool     `json:"active"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      *string  `json:"endDate"`
}

func (m Medication) RecordID() string { return m.ID }

// DosesPerDay is the number of scheduled times of day.
func (m Medication) DosesPerDay() int { return len(m.Times) }

// HistoryRecord logs a dose marked as taken.
type HistoryRecord struct {
	ID           string    `json:"id"`
	MedicationID string    `json:"medicationId"`
	Time         string    `json:"time"`
	Date         string    `json:"date"`
	Timestamp    time.Time `json:"timestamp"`
}

func (h HistoryRecord) RecordID() string { return h.ID }

// VitalType tags the kind of measurement in a VitalReading.
type VitalType string

const (
	BloodPressure VitalType = "blood_pressure"
	Glucose       VitalType = "glucose"
	Weight        VitalType = "weight"
	Temperature   VitalType = "temperature"
	HeartRate     VitalType = "heart_rate"
)

// VitalTypes lists every supported vital type.
var VitalTypes = []VitalType{BloodPressure, Glucose, Weight, Temperature, HeartRate}

// ParseVitalType validates a vital type tag.
func ParseVitalType(s string) (VitalType, error) {
	for _, t := range VitalTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown vital type: %q", s)
}

// DefaultUnit returns the unit the analytics thresholds assume.
func (t VitalType) DefaultUnit() string {
	switch t {
	case BloodPressure:
		return "mmHg"
	case Glucose:
		return "mg/dL"
	case Weight:
		return "lbs"
	case Temperature:
		return "°F"
	case HeartRate:
		return "bpm"
	}
	return ""
}

// VitalReading is a single measurement. Blood pressure uses Systolic and
// Diastolic; every other type uses Value.
type VitalReading struct {
	ID        string    `json:"id"`
	Type      VitalType `json:"type"`
	Systolic  float64   `json:"systolic,omitempty"`
	Diastolic float64   `json:"diastolic,omitempty"`
	Value     float64   `json:"value,omitempty"`
	Unit      string    `json:"unit,omitempty"`
	Date      string    `json:"date"`
	Time      string    `json:"time,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

func (v VitalReading) RecordID() string { return v.ID }

// Primary returns the number trends are computed on: systolic for blood
// pressure, Value otherwise.
func (v VitalReading) Primary() float64 {
	if v.Type == BloodPressure {
		return v.Systolic
	}
	return v.Value
}

// TakenAt combines Date and Time in loc. A missing time means midnight.
func (v VitalReading) TakenAt(loc *time.Location) (time.Time, error) {
	clock := v.Time
	if clock == "" {
		clock = "00:00"
	}
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, v.Date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing reading time %q %q: %w", v.Date, v.Time, err)
	}
	return t, nil
}

// Appointment statuses.
const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

// Appointment is a visit with a doctor.
type Appointment struct {
	ID         string `json:"id"`
	DoctorID   string `json:"doctorId,omitempty"`
	DoctorName string `json:"doctorName"`
	Specialty  string `json:"specialty,omitempty"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Location   string `json:"location,omitempty"`
	Purpose    string `json:"purpose,omitempty"`
	Status     string `json:"status"`
	Notes      string `json:"notes,omitempty"`
}

func (a Appointment) RecordID() string { return a.ID }

// EmergencyContact is someone to call in an emergency.
type EmergencyContact struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
	IsPrimary    bool   `json:"isPrimary"`
}

func (c EmergencyContact) RecordID() string { return c.ID }

// CustomReminder is a user-defined daily reminder not tied to a medication.
type CustomReminder struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Time             string    `json:"time"`
	Message          string    `json:"message,omitempty"`
	SoundEnabled     bool      `json:"soundEnabled"`
	VibrationEnabled bool      `json:"vibrationEnabled"`
	Created          time.Time `json:"created"`
}

func (r CustomReminder) RecordID() string { return r.ID }

// ActionType identifies what a queued offline action replays.
type ActionType string

const (
	ActionMedicationTaken   ActionType = "medication_taken"
	ActionVitalLogged       ActionType = "vital_logged"
	ActionAppointmentBooked ActionType = "appointment_booked"
)

// PendingAction is an action waiting to be replayed against the remote.
// Payload holds the record the action created.
type PendingAction struct {
	ID        string          `json:"id"`
	Type      ActionType      `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

func (p PendingAction) RecordID() string { return p.ID }

// Profile is the user's personal details.
type Profile struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	DateOfBirth      string `json:"dateOfBirth"`
	Gender           string `json:"gender"`
	Address          string `json:"address"`
	Height           string `json:"height"`
	Weight           string `json:"weight"`
	BloodType        string `json:"bloodType"`
	PrimaryDoctor    string `json:"primaryDoctor"`
	Conditions       string `json:"conditions"`
	Allergies        string `json:"allergies"`
	Insurance        string `json:"insurance"`
	EmergencyContact string `json:"emergencyContact"`
}

// Settings holds notification, privacy and reminder preferences.
type Settings struct {
	Notifications struct {
		MedicationReminders  bool `json:"medicationReminders"`
		RefillReminders      bool `json:"refillReminders"`
		AppointmentReminders bool `json:"appointmentReminders"`
		EmailNotifications   bool `json:"emailNotifications"`
	} `json:"notifications"`
	Privacy struct {
		ShareWithProviders bool `json:"shareWithProviders"`
		Analytics          bool `json:"analytics"`
	} `json:"privacy"`
	ReminderSettings struct {
		SnoozeTime    int `json:"snoozeTime"`
		AdvanceNotice int `json:"advanceNotice"`
	} `json:"reminderSettings"`
}

// MedicalID is the emergency card shown to first responders.
type MedicalID struct {
	FullName          string    `json:"fullName"`
	DateOfBirth       string    `json:"dateOfBirth"`
	BloodType         string    `json:"bloodType"`
	Height            string    `json:"height"`
	Weight            string    `json:"weight"`
	OrganDonor        string    `json:"organDonor"`
	EmergencyName     string    `json:"emergencyName"`
	EmergencyPhone    string    `json:"emergencyPhone"`
	EmergencyRelation string    `json:"emergencyRelation"`
	Conditions        string    `json:"conditions"`
	Allergies         string    `json:"allergies"`
	Medications       string    `json:"medications"`
	AdditionalInfo    string    `json:"additionalInfo"`
	LastUpdated       time.Time `json:"lastUpdated"`
}
