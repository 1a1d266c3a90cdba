package health

import (
	"errors"
	"fmt"

	"healthtrack/internal/model"
)

// actionCollections maps replayed action types to the collection their
// payload record belongs in.
var actionCollections = map[model.ActionType]model.Collection{
	model.ActionMedicationTaken:   model.MedicationHistory,
	model.ActionVitalLogged:       model.Vitals,
	model.ActionAppointmentBooked: model.Appointments,
}

// ApplyAction stores the record carried by an action replayed from another
// device. Applying the same action twice is a no-op: the record id is
// already taken and the second insert is skipped. Returns true if the
// record was stored.
func (s *Service) ApplyAction(a model.PendingAction) (bool, error) {
	c, ok := actionCollections[a.Type]
	if !ok {
		return false, fmt.Errorf("%w: unknown action type %q", ErrInvalid, a.Type)
	}
	body, err := CanonicalRecord(c, a.Payload)
	if err != nil {
		return false, fmt.Errorf("%w: action %s: %w", ErrInvalid, a.ID, err)
	}
	id, err := recordID(body)
	if err != nil {
		return false, err
	}

	err = s.store.Insert(c, id, body)
	if errors.Is(err, ErrExists) {
		s.logger.Debug("action already applied", "action", a.ID, "record", id)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("applying action %s: %w", a.ID, err)
	}
	s.logger.Info("action applied", "action", a.ID, "type", a.Type, "record", id)
	return true, nil
}

// PendingActions returns the queued actions in enqueue order.
func (s *Service) PendingActions() ([]model.PendingAction, error) {
	return listRecords[model.PendingAction](s.store, model.PendingActions)
}
