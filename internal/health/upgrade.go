package health

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"healthtrack/internal/model"
)

// UpgradeRecord converts a version 1 record (numeric ids, a "schedule"
// list instead of "times", combined vital-sign entries, history without a
// date) to the current format. position is the record's index in its
// collection and names records that never had an id. A combined vitals
// entry becomes one reading per measurement, so more than one record may
// be returned.
func UpgradeRecord(c model.Collection, raw json.RawMessage, position int) ([]json.RawMessage, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decoding legacy %s record: %w", c, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("legacy %s record %d is not an object", c, position)
	}

	for _, key := range []string{"id", "medicationId", "doctorId"} {
		if n, ok := fields[key].(float64); ok {
			fields[key] = strconv.FormatFloat(n, 'f', -1, 64)
		}
	}
	if id, _ := fields["id"].(string); id == "" {
		fields["id"] = fmt.Sprintf("legacy-%d", position+1)
	}

	records := []map[string]any{fields}
	switch c {
	case model.Medications:
		if _, ok := fields["times"]; !ok {
			if schedule, ok := fields["schedule"]; ok {
				fields["times"] = schedule
			}
		}
		delete(fields, "schedule")
		if _, ok := fields["stock"]; !ok {
			if q, ok := fields["stockQuantity"]; ok {
				fields["stock"] = q
			}
		}
		delete(fields, "stockQuantity")
		numberField(fields, "stock")
	case model.MedicationHistory:
		if date, _ := fields["date"].(string); date == "" {
			if ts, _ := fields["timestamp"].(string); len(ts) >= 10 {
				fields["date"] = ts[:10]
			}
		}
	case model.PendingActions:
		if _, ok := fields["payload"]; !ok {
			if data, ok := fields["data"]; ok {
				fields["payload"] = data
			} else {
				payload := map[string]any{}
				for _, k := range []string{"medicationId", "time", "timestamp"} {
					if v, ok := fields[k]; ok {
						payload[k] = v
					}
				}
				fields["payload"] = payload
			}
		}
		delete(fields, "data")
	case model.Vitals:
		if _, ok := fields["type"]; !ok {
			records = splitCombinedVitals(fields)
		}
		for _, r := range records {
			for _, key := range []string{"systolic", "diastolic", "value"} {
				numberField(r, key)
			}
		}
	}

	out := make([]json.RawMessage, 0, len(records))
	for _, r := range records {
		body, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("encoding upgraded %s record: %w", c, err)
		}
		canon, err := CanonicalRecord(c, body)
		if err != nil {
			return nil, err
		}
		out = append(out, canon)
	}
	return out, nil
}

// splitCombinedVitals turns {bloodPressure: "120/80", heartRate: 72, ...}
// into one typed reading per measurement. The first reading keeps the
// original id; the others get the id suffixed with their type.
func splitCombinedVitals(fields map[string]any) []map[string]any {
	id, _ := fields["id"].(string)
	base := func(typ model.VitalType, first bool) map[string]any {
		r := map[string]any{"type": string(typ), "unit": typ.DefaultUnit()}
		for _, k := range []string{"date", "time", "notes"} {
			if v, ok := fields[k]; ok {
				r[k] = v
			}
		}
		r["id"] = id
		if !first {
			r["id"] = id + "-" + string(typ)
		}
		return r
	}

	var out []map[string]any
	if bp, ok := fields["bloodPressure"].(string); ok {
		if sys, dia, found := strings.Cut(bp, "/"); found {
			r := base(model.BloodPressure, len(out) == 0)
			r["systolic"] = strings.TrimSpace(sys)
			r["diastolic"] = strings.TrimSpace(dia)
			out = append(out, r)
		}
	}
	for _, m := range []struct {
		key string
		typ model.VitalType
	}{
		{"heartRate", model.HeartRate},
		{"weight", model.Weight},
		{"temperature", model.Temperature},
		{"glucose", model.Glucose},
	} {
		v, ok := fields[m.key]
		if !ok || v == nil || v == "" {
			continue
		}
		r := base(m.typ, len(out) == 0)
		r["value"] = v
		out = append(out, r)
	}
	if len(out) == 0 {
		// nothing recognizable; keep the entry so no data is dropped
		return []map[string]any{fields}
	}
	return out
}

// numberField converts a numeric string field to a number in place.
func numberField(fields map[string]any, key string) {
	s, ok := fields[key].(string)
	if !ok {
		return
	}
	if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		fields[key] = n
	}
}

// CanonicalRecord decodes raw into the collection's record type and encodes
// it again, rejecting bodies that do not fit the type and dropping unknown
// fields.
func CanonicalRecord(c model.Collection, raw json.RawMessage) (json.RawMessage, error) {
	switch c {
	case model.Medications:
		return canonical[model.Medication](c, raw)
	case model.Appointments:
		return canonical[model.Appointment](c, raw)
	case model.Vitals:
		return canonical[model.VitalReading](c, raw)
	case model.EmergencyContacts:
		return canonical[model.EmergencyContact](c, raw)
	case model.MedicationHistory:
		return canonical[model.HistoryRecord](c, raw)
	case model.CustomReminders:
		return canonical[model.CustomReminder](c, raw)
	case model.PendingActions:
		return canonical[model.PendingAction](c, raw)
	}
	return nil, fmt.Errorf("unknown collection %q", c)
}

// CanonicalDocument is CanonicalRecord for singleton documents.
func CanonicalDocument(k model.DocumentKey, raw json.RawMessage) (json.RawMessage, error) {
	switch k {
	case model.ProfileDoc:
		return canonicalAny[model.Profile](string(k), raw)
	case model.SettingsDoc:
		return canonicalAny[model.Settings](string(k), raw)
	case model.MedicalIDDoc:
		return canonicalAny[model.MedicalID](string(k), raw)
	}
	return nil, fmt.Errorf("unknown document %q", k)
}

func canonical[T model.Record](c model.Collection, raw json.RawMessage) (json.RawMessage, error) {
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decoding %s record: %w", c, err)
	}
	if rec.RecordID() == "" {
		return nil, fmt.Errorf("%s record has no id", c)
	}
	return json.Marshal(rec)
}

func canonicalAny[T any](name string, raw json.RawMessage) (json.RawMessage, error) {
	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return json.Marshal(doc)
}
