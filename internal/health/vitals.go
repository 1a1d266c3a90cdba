package health

import (
	"fmt"
	"time"

	"healthtrack/internal/model"
)

// Vitals returns readings in insertion order, filtered to typ when set.
func (s *Service) Vitals(typ model.VitalType) ([]model.VitalReading, error) {
	all, err := listRecords[model.VitalReading](s.store, model.Vitals)
	if err != nil {
		return nil, err
	}
	if typ == "" {
		return all, nil
	}
	filtered := all[:0]
	for _, v := range all {
		if v.Type == typ {
			filtered = append(filtered, v)
		}
	}
	return filtered, nil
}

// AddVital validates and stores a reading. Readings are immutable once
// stored. Missing date and time default to now; a missing unit defaults to
// the type's unit.
func (s *Service) AddVital(v model.VitalReading) (*model.VitalReading, error) {
	if _, err := model.ParseVitalType(string(v.Type)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if v.Type == model.BloodPressure {
		if v.Systolic <= 0 || v.Diastolic <= 0 {
			return nil, fmt.Errorf("%w: blood pressure needs systolic and diastolic values", ErrInvalid)
		}
		v.Value = 0
	} else if v.Value <= 0 {
		return nil, fmt.Errorf("%w: %s needs a positive value", ErrInvalid, v.Type)
	}

	now := s.clock.Now()
	if v.Date == "" {
		v.Date = now.Format(model.DateLayout)
	}
	if v.Time == "" {
		v.Time = now.Format(model.ClockLayout)
	}
	if _, err := time.Parse(model.DateLayout+" "+model.ClockLayout, v.Date+" "+v.Time); err != nil {
		return nil, fmt.Errorf("%w: invalid date or time %q %q", ErrInvalid, v.Date, v.Time)
	}
	if v.Unit == "" {
		v.Unit = v.Type.DefaultUnit()
	}

	v.ID = s.idgen.New()
	if err := insertRecord(s.store, model.Vitals, v); err != nil {
		return nil, err
	}
	if err := s.outbox.Enqueue(model.ActionVitalLogged, v); err != nil {
		s.logger.Warn("failed to queue action", "type", model.ActionVitalLogged, "error", err)
	}

	s.logger.Info("vital logged", "id", v.ID, "type", v.Type)
	return &v, nil
}
