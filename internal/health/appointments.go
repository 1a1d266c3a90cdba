package health

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"healthtrack/internal/model"
)

// Appointments returns every appointment in insertion order.
func (s *Service) Appointments() ([]model.Appointment, error) {
	return listRecords[model.Appointment](s.store, model.Appointments)
}

// BookAppointment stores a new appointment with status scheduled.
func (s *Service) BookAppointment(a model.Appointment) (*model.Appointment, error) {
	a.Status = model.AppointmentScheduled
	if err := validateAppointment(&a); err != nil {
		return nil, err
	}
	a.ID = s.idgen.New()

	if err := insertRecord(s.store, model.Appointments, a); err != nil {
		return nil, err
	}
	if err := s.outbox.Enqueue(model.ActionAppointmentBooked, a); err != nil {
		s.logger.Warn("failed to queue action", "type", model.ActionAppointmentBooked, "error", err)
	}

	s.logger.Info("appointment booked", "id", a.ID, "doctor", a.DoctorName, "date", a.Date)
	return &a, nil
}

func validateAppointment(a *model.Appointment) error {
	a.DoctorName = strings.TrimSpace(a.DoctorName)
	if a.DoctorName == "" {
		return fmt.Errorf("%w: doctor name is required", ErrInvalid)
	}
	if _, err := time.Parse(model.DateLayout+" "+model.ClockLayout, a.Date+" "+a.Time); err != nil {
		return fmt.Errorf("%w: invalid date or time %q %q", ErrInvalid, a.Date, a.Time)
	}
	switch a.Status {
	case model.AppointmentScheduled, model.AppointmentCompleted, model.AppointmentCancelled:
	default:
		return fmt.Errorf("%w: unknown appointment status %q", ErrInvalid, a.Status)
	}
	return nil
}

// UpdateAppointment merges patch into the stored appointment. An invalid
// date, time or status rejects the whole update. Returns nil if the
// appointment does not exist.
func (s *Service) UpdateAppointment(id string, patch json.RawMessage) (*model.Appointment, error) {
	a, err := updateRecord(s.store, model.Appointments, id, patch, validateAppointment)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, nil
	}
	s.logger.Info("appointment updated", "id", id)
	return a, nil
}

// DeleteAppointment removes the appointment with the id.
func (s *Service) DeleteAppointment(id string) (bool, error) {
	ok, err := s.store.Delete(model.Appointments, id)
	if err != nil {
		return false, fmt.Errorf("deleting appointment %s: %w", id, err)
	}
	if ok {
		s.logger.Info("appointment deleted", "id", id)
	}
	return ok, nil
}

// Contacts returns the emergency contacts in insertion order.
func (s *Service) Contacts() ([]model.EmergencyContact, error) {
	return listRecords[model.EmergencyContact](s.store, model.EmergencyContacts)
}

// AddContact stores a new emergency contact.
func (s *Service) AddContact(c model.EmergencyContact) (*model.EmergencyContact, error) {
	if err := validateContact(&c); err != nil {
		return nil, err
	}
	c.ID = s.idgen.New()
	if err := insertRecord(s.store, model.EmergencyContacts, c); err != nil {
		return nil, err
	}
	s.logger.Info("contact added", "id", c.ID)
	return &c, nil
}

// UpdateContact merges patch into the stored contact. Returns nil if it
// does not exist.
func (s *Service) UpdateContact(id string, patch json.RawMessage) (*model.EmergencyContact, error) {
	return updateRecord(s.store, model.EmergencyContacts, id, patch, validateContact)
}

func validateContact(c *model.EmergencyContact) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" || strings.TrimSpace(c.Phone) == "" {
		return fmt.Errorf("%w: contact name and phone are required", ErrInvalid)
	}
	return nil
}

// DeleteContact removes the contact with the id.
func (s *Service) DeleteContact(id string) (bool, error) {
	ok, err := s.store.Delete(model.EmergencyContacts, id)
	if err != nil {
		return false, fmt.Errorf("deleting contact %s: %w", id, err)
	}
	return ok, nil
}
