package health

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tidwall/gjson"

	"healthtrack/internal/model"
)

// exportCollections maps collections to their key in the export document,
// in document order.
var exportCollections = []struct {
	c   model.Collection
	key string
}{
	{model.Medications, "medications"},
	{model.Appointments, "appointments"},
	{model.Vitals, "vitals"},
	{model.EmergencyContacts, "emergencyContacts"},
	{model.MedicationHistory, "medicationHistory"},
	{model.CustomReminders, "customReminders"},
	{model.PendingActions, "pendingActions"},
}

var exportDocuments = []struct {
	k   model.DocumentKey
	key string
}{
	{model.ProfileDoc, "userProfile"},
	{model.SettingsDoc, "settings"},
	{model.MedicalIDDoc, "medicalId"},
}

type exportFile struct {
	SchemaVersion     int               `json:"schemaVersion"`
	Medications       []json.RawMessage `json:"medications"`
	Appointments      []json.RawMessage `json:"appointments"`
	Vitals            []json.RawMessage `json:"vitals"`
	EmergencyContacts []json.RawMessage `json:"emergencyContacts"`
	MedicationHistory []json.RawMessage `json:"medicationHistory"`
	CustomReminders   []json.RawMessage `json:"customReminders"`
	PendingActions    []json.RawMessage `json:"pendingActions"`
	UserProfile       json.RawMessage   `json:"userProfile,omitempty"`
	Settings          json.RawMessage   `json:"settings,omitempty"`
	MedicalID         json.RawMessage   `json:"medicalId,omitempty"`
	ExportDate        time.Time         `json:"exportDate"`
}

// Export writes every collection and document as one indented JSON
// document stamped with the export time.
func (s *Service) Export(w io.Writer) error {
	snap, err := s.store.Export()
	if err != nil {
		return fmt.Errorf("reading store: %w", err)
	}

	list := func(c model.Collection) []json.RawMessage {
		if l := snap.Collections[c]; l != nil {
			return l
		}
		return []json.RawMessage{}
	}
	doc := exportFile{
		SchemaVersion:     model.SchemaVersion,
		Medications:       list(model.Medications),
		Appointments:      list(model.Appointments),
		Vitals:            list(model.Vitals),
		EmergencyContacts: list(model.EmergencyContacts),
		MedicationHistory: list(model.MedicationHistory),
		CustomReminders:   list(model.CustomReminders),
		PendingActions:    list(model.PendingActions),
		UserProfile:       snap.Documents[model.ProfileDoc],
		Settings:          snap.Documents[model.SettingsDoc],
		MedicalID:         snap.Documents[model.MedicalIDDoc],
		ExportDate:        s.clock.Now().UTC(),
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	if _, err := w.Write(append(out, '\n')); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	s.logger.Info("data exported", "bytes", len(out))
	return nil
}

// Import reads an export document and replaces the collections and
// documents it contains. Keys that are absent or null are left alone.
// Documents without a schemaVersion, such as exports from the browser app,
// are upgraded from the legacy format. The whole document is validated
// before anything is written, and it is applied in one transaction.
func (s *Service) Import(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading import: %w", err)
	}
	snap, err := ParseExport(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := s.store.Import(snap); err != nil {
		return fmt.Errorf("applying import: %w", err)
	}
	s.logger.Info("data imported", "collections", len(snap.Collections), "documents", len(snap.Documents))
	return nil
}

// ParseExport validates an export document and converts it into a
// snapshot in the current record format.
func ParseExport(data []byte) (*Snapshot, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("parsing import: %w", err)
	}
	if top == nil {
		return nil, errors.New("parsing import: not a JSON object")
	}

	version := 1
	if raw, ok := top["schemaVersion"]; ok {
		if err := json.Unmarshal(raw, &version); err != nil {
			return nil, fmt.Errorf("parsing schemaVersion: %w", err)
		}
		if version > model.SchemaVersion {
			return nil, fmt.Errorf("export schema version %d is newer than supported version %d", version, model.SchemaVersion)
		}
	}

	snap := &Snapshot{
		Collections: map[model.Collection][]json.RawMessage{},
		Documents:   map[model.DocumentKey]json.RawMessage{},
	}

	for _, ec := range exportCollections {
		raw, ok := top[ec.key]
		if !ok || isNull(raw) {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", ec.key, err)
		}
		records := make([]json.RawMessage, 0, len(items))
		seen := make(map[string]bool, len(items))
		for i, item := range items {
			var upgraded []json.RawMessage
			var err error
			if version < model.SchemaVersion {
				upgraded, err = UpgradeRecord(ec.c, item, i)
			} else {
				var canon json.RawMessage
				canon, err = CanonicalRecord(ec.c, item)
				upgraded = []json.RawMessage{canon}
			}
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", ec.key, i, err)
			}
			for _, rec := range upgraded {
				id, err := recordID(rec)
				if err != nil {
					return nil, fmt.Errorf("%s[%d]: %w", ec.key, i, err)
				}
				if seen[id] {
					return nil, fmt.Errorf("%s: duplicate id %q", ec.key, id)
				}
				seen[id] = true
				records = append(records, rec)
			}
		}
		snap.Collections[ec.c] = records
	}

	for _, ed := range exportDocuments {
		raw, ok := top[ed.key]
		if !ok || isNull(raw) {
			continue
		}
		canon, err := CanonicalDocument(ed.k, raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", ed.key, err)
		}
		snap.Documents[ed.k] = canon
	}

	return snap, nil
}

// Clear empties every collection and document.
func (s *Service) Clear() error {
	snap := &Snapshot{
		Collections: map[model.Collection][]json.RawMessage{},
		Documents:   map[model.DocumentKey]json.RawMessage{},
	}
	for _, c := range model.AllCollections {
		snap.Collections[c] = []json.RawMessage{}
	}
	for _, ed := range exportDocuments {
		snap.Documents[ed.k] = nil
	}
	if err := s.store.Import(snap); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}
	s.logger.Info("all data cleared")
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func recordID(raw json.RawMessage) (string, error) {
	if !gjson.ValidBytes(raw) {
		return "", errors.New("reading record id: invalid JSON")
	}
	return gjson.GetBytes(raw, "id").String(), nil
}
