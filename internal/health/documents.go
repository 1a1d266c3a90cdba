package health

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"healthtrack/internal/model"
)

// Profile returns the user profile, or nil if it was never set.
func (s *Service) Profile() (*model.Profile, error) {
	return getDocument[model.Profile](s.store, model.ProfileDoc)
}

// UpdateProfile merges patch into the profile.
func (s *Service) UpdateProfile(patch json.RawMessage) (*model.Profile, error) {
	return updateDocument[model.Profile](s.store, model.ProfileDoc, patch, nil)
}

// Settings returns the settings, or nil if they were never set.
func (s *Service) Settings() (*model.Settings, error) {
	return getDocument[model.Settings](s.store, model.SettingsDoc)
}

// UpdateSettings merges patch into the settings. Nested objects are
// replaced whole.
func (s *Service) UpdateSettings(patch json.RawMessage) (*model.Settings, error) {
	return updateDocument[model.Settings](s.store, model.SettingsDoc, patch, nil)
}

// MedicalID returns the emergency medical card, or nil if it was never set.
func (s *Service) MedicalID() (*model.MedicalID, error) {
	return getDocument[model.MedicalID](s.store, model.MedicalIDDoc)
}

// UpdateMedicalID merges patch into the medical card and stamps
// lastUpdated.
func (s *Service) UpdateMedicalID(patch json.RawMessage) (*model.MedicalID, error) {
	now := s.clock.Now()
	return updateDocument(s.store, model.MedicalIDDoc, patch, func(m *model.MedicalID) {
		m.LastUpdated = now
	})
}

// CustomReminders returns user-defined reminders in insertion order.
func (s *Service) CustomReminders() ([]model.CustomReminder, error) {
	return listRecords[model.CustomReminder](s.store, model.CustomReminders)
}

// AddCustomReminder stores a daily reminder at the given HH:MM time.
func (s *Service) AddCustomReminder(r model.CustomReminder) (*model.CustomReminder, error) {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return nil, fmt.Errorf("%w: reminder title is required", ErrInvalid)
	}
	if _, err := time.Parse(model.ClockLayout, r.Time); err != nil {
		return nil, fmt.Errorf("%w: invalid time %q: want HH:MM", ErrInvalid, r.Time)
	}
	r.ID = s.idgen.New()
	r.Created = s.clock.Now()
	if err := insertRecord(s.store, model.CustomReminders, r); err != nil {
		return nil, err
	}
	s.logger.Info("custom reminder added", "id", r.ID, "time", r.Time)
	return &r, nil
}

// DeleteCustomReminder removes a custom reminder.
func (s *Service) DeleteCustomReminder(id string) (bool, error) {
	ok, err := s.store.Delete(model.CustomReminders, id)
	if err != nil {
		return false, fmt.Errorf("deleting reminder %s: %w", id, err)
	}
	return ok, nil
}
