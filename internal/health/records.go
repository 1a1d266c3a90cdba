package health

import (
	"encoding/json"
	"fmt"

	"healthtrack/internal/model"
)

func listRecords[T model.Record](s Store, c model.Collection) ([]T, error) {
	raws, err := s.List(c)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c, err)
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decoding %s record: %w", c, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func getRecord[T model.Record](s Store, c model.Collection, id string) (*T, error) {
	raw, err := s.Get(c, id)
	if err != nil {
		return nil, fmt.Errorf("getting %s %s: %w", c, id, err)
	}
	if raw == nil {
		return nil, nil
	}
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decoding %s %s: %w", c, id, err)
	}
	return &rec, nil
}

func insertRecord[T model.Record](s Store, c model.Collection, rec T) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding %s record: %w", c, err)
	}
	if err := s.Insert(c, rec.RecordID(), body); err != nil {
		return fmt.Errorf("inserting %s %s: %w", c, rec.RecordID(), err)
	}
	return nil
}

// updateRecord overlays the fields of patch onto the stored record and
// runs validate on the result before anything is written. The id cannot be
// changed. Returns nil if the record does not exist.
func updateRecord[T model.Record](s Store, c model.Collection, id string, patch json.RawMessage, validate func(*T) error) (*T, error) {
	var updated T
	found, err := s.Update(c, id, func(current json.RawMessage) (json.RawMessage, error) {
		merged, err := mergeJSON(current, patch, "id")
		if err != nil {
			return nil, err
		}
		// decode into the typed record so bad field types are rejected
		// and the stored body stays canonical
		var rec T
		if err := json.Unmarshal(merged, &rec); err != nil {
			return nil, fmt.Errorf("%w: applying update: %w", ErrInvalid, err)
		}
		if validate != nil {
			if err := validate(&rec); err != nil {
				return nil, err
			}
		}
		updated = rec
		return json.Marshal(rec)
	})
	if err != nil {
		return nil, fmt.Errorf("updating %s %s: %w", c, id, err)
	}
	if !found {
		return nil, nil
	}
	return &updated, nil
}

func getDocument[T any](s Store, k model.DocumentKey) (*T, error) {
	raw, err := s.GetDocument(k)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", k, err)
	}
	if raw == nil {
		return nil, nil
	}
	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", k, err)
	}
	return &doc, nil
}

// updateDocument overlays patch onto a document, creating it if absent.
func updateDocument[T any](s Store, k model.DocumentKey, patch json.RawMessage, touch func(*T)) (*T, error) {
	var updated T
	err := s.UpdateDocument(k, func(current json.RawMessage) (json.RawMessage, error) {
		merged, err := mergeJSON(current, patch)
		if err != nil {
			return nil, err
		}
		var doc T
		if err := json.Unmarshal(merged, &doc); err != nil {
			return nil, fmt.Errorf("%w: applying update: %w", ErrInvalid, err)
		}
		if touch != nil {
			touch(&doc)
		}
		updated = doc
		return json.Marshal(doc)
	})
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", k, err)
	}
	return &updated, nil
}

// mergeJSON shallow-merges the top-level fields of patch over base. Fields
// named in keep are never overwritten.
func mergeJSON(base, patch json.RawMessage, keep ...string) (json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if len(base) > 0 {
		if err := json.Unmarshal(base, &fields); err != nil {
			return nil, fmt.Errorf("decoding stored record: %w", err)
		}
	}
	var updates map[string]json.RawMessage
	if err := json.Unmarshal(patch, &updates); err != nil {
		return nil, fmt.Errorf("%w: decoding update: %w", ErrInvalid, err)
	}
	if updates == nil {
		return nil, fmt.Errorf("%w: update must be a JSON object", ErrInvalid)
	}
	for _, k := range keep {
		delete(updates, k)
	}
	for k, v := range updates {
		fields[k] = v
	}
	return json.Marshal(fields)
}
