package health

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/sjson"

	"healthtrack/internal/insights"
	"healthtrack/internal/interactions"
	"healthtrack/internal/model"
)

// Service is the orchestration layer over the store, the interaction
// checker and the insight engine. It is what the CLI, the HTTP API and the
// reminder daemon call.
type Service struct {
	store   Store
	checker *interactions.Checker
	engine  *insights.Engine
	outbox  Outbox
	logger  Logger
	clock   Clock
	idgen   IDGenerator
}

// NewService creates a Service. outbox may be nil when actions are not
// replayed to a remote server.
func NewService(store Store, checker *interactions.Checker, engine *insights.Engine, outbox Outbox, logger Logger, clock Clock, idgen IDGenerator) *Service {
	if outbox == nil {
		outbox = nopOutbox{}
	}
	return &Service{
		store:   store,
		checker: checker,
		engine:  engine,
		outbox:  outbox,
		logger:  logger,
		clock:   clock,
		idgen:   idgen,
	}
}

// Medications returns every medication in insertion order.
func (s *Service) Medications() ([]model.Medication, error) {
	return listRecords[model.Medication](s.store, model.Medications)
}

// ActiveMedications returns the medications with the active flag set.
func (s *Service) ActiveMedications() ([]model.Medication, error) {
	meds, err := s.Medications()
	if err != nil {
		return nil, err
	}
	active := meds[:0]
	for _, m := range meds {
		if m.Active {
			active = append(active, m)
		}
	}
	return active, nil
}

// Medication returns one medication, or nil if there is none with the id.
func (s *Service) Medication(id string) (*model.Medication, error) {
	return getRecord[model.Medication](s.store, model.Medications, id)
}

// AddMedication validates m, stamps a new id and appends it.
func (s *Service) AddMedication(m model.Medication) (*model.Medication, error) {
	if err := validateMedication(&m); err != nil {
		return nil, err
	}
	if m.StartDate == "" {
		m.StartDate = s.clock.Now().Format(model.DateLayout)
	}
	m.ID = s.idgen.New()
	if err := insertRecord(s.store, model.Medications, m); err != nil {
		return nil, err
	}
	s.logger.Info("medication added", "id", m.ID, "name", m.Name)
	return &m, nil
}

// validateMedication trims the name and checks it and the dose times.
func validateMedication(m *model.Medication) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return fmt.Errorf("%w: medication name is required", ErrInvalid)
	}
	for _, t := range m.Times {
		if _, err := time.Parse(model.ClockLayout, t); err != nil {
			return fmt.Errorf("%w: invalid time %q: want HH:MM", ErrInvalid, t)
		}
	}
	return nil
}

// UpdateMedication merges the JSON object patch into the stored medication.
// The merged medication is validated like a new one; nothing is written if
// it fails. Returns nil if the medication does not exist.
func (s *Service) UpdateMedication(id string, patch json.RawMessage) (*model.Medication, error) {
	m, err := updateRecord(s.store, model.Medications, id, patch, validateMedication)
	if err != nil {
		return nil, err
	}
	if m != nil {
		s.logger.Info("medication updated", "id", id)
	}
	return m, nil
}

// SetMedicationActive pauses or resumes a medication.
func (s *Service) SetMedicationActive(id string, active bool) (*model.Medication, error) {
	patch, err := sjson.SetBytes([]byte(`{}`), "active", active)
	if err != nil {
		return nil, err
	}
	return s.UpdateMedication(id, patch)
}

// DeleteMedication removes the medication with the id. History records
// referring to it are kept.
func (s *Service) DeleteMedication(id string) (bool, error) {
	ok, err := s.store.Delete(model.Medications, id)
	if err != nil {
		return false, fmt.Errorf("deleting medication %s: %w", id, err)
	}
	if ok {
		s.logger.Info("medication deleted", "id", id)
	}
	return ok, nil
}

// MarkTaken records a dose of a medication at its scheduled time.
func (s *Service) MarkTaken(medicationID, scheduled string) (*model.HistoryRecord, error) {
	med, err := s.Medication(medicationID)
	if err != nil {
		return nil, err
	}
	if med == nil {
		return nil, fmt.Errorf("medication %s: %w", medicationID, ErrNotFound)
	}
	if _, err := time.Parse(model.ClockLayout, scheduled); err != nil {
		return nil, fmt.Errorf("%w: invalid time %q: want HH:MM", ErrInvalid, scheduled)
	}

	now := s.clock.Now()
	rec := model.HistoryRecord{
		ID:           s.idgen.New(),
		MedicationID: medicationID,
		Time:         scheduled,
		Date:         now.Format(model.DateLayout),
		Timestamp:    now,
	}
	if err := insertRecord(s.store, model.MedicationHistory, rec); err != nil {
		return nil, err
	}

	if err := s.outbox.Enqueue(model.ActionMedicationTaken, rec); err != nil {
		s.logger.Warn("failed to queue action", "type", model.ActionMedicationTaken, "error", err)
	}

	s.logger.Info("medication taken", "id", medicationID, "time", scheduled)
	return &rec, nil
}

// MedicationHistory returns every dose record in insertion order.
func (s *Service) MedicationHistory() ([]model.HistoryRecord, error) {
	return listRecords[model.HistoryRecord](s.store, model.MedicationHistory)
}

// Warnings checks the active medications for interactions and duplicate
// therapies. When medicationID is set, only interactions involving that
// medication are reported.
func (s *Service) Warnings(medicationID string) ([]interactions.Warning, error) {
	active, err := s.ActiveMedications()
	if err != nil {
		return nil, err
	}
	if medicationID == "" {
		return s.checker.Check(active), nil
	}

	med, err := s.Medication(medicationID)
	if err != nil {
		return nil, err
	}
	if med == nil {
		return nil, fmt.Errorf("medication %s: %w", medicationID, ErrNotFound)
	}
	return s.checker.ForMedication(*med, active), nil
}

// Analytics derives the insight report for the named range (7d, 30d, 90d,
// 1y).
func (s *Service) Analytics(rangeName string) (*insights.Report, error) {
	meds, err := s.Medications()
	if err != nil {
		return nil, err
	}
	history, err := s.MedicationHistory()
	if err != nil {
		return nil, err
	}
	vitals, err := s.Vitals("")
	if err != nil {
		return nil, err
	}
	in := insights.Input{Medications: meds, History: history, Vitals: vitals}
	return s.engine.Report(in, s.clock.Now(), insights.RangeDays(rangeName)), nil
}
