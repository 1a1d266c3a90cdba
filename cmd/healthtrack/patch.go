package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// buildPatch applies field arguments to the JSON object base. Keys may be
// dotted paths into nested objects.
//
//	key=value    a string, unless the field in shape is a number or a
//	             boolean, in which case value is parsed as JSON
//	key:=json    a raw JSON value (arrays, null, numbers into any field)
//
// shape is a record of the target type; only the JSON types of its fields
// are used.
func buildPatch(base []byte, shape any, pairs []string) (json.RawMessage, error) {
	if len(base) == 0 {
		base = []byte(`{}`)
	}
	types, err := json.Marshal(shape)
	if err != nil {
		return nil, fmt.Errorf("encoding field types: %w", err)
	}

	patch := base
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		raw := strings.HasSuffix(key, ":")
		key = strings.TrimSuffix(key, ":")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q: want key=value or key:=json", p)
		}

		if !raw && value != "" {
			switch gjson.GetBytes(types, key).Type {
			case gjson.Number, gjson.True, gjson.False:
				raw = true
			}
		}
		if raw && !gjson.Valid(value) {
			return nil, fmt.Errorf("invalid field %q: %s needs a JSON value", p, key)
		}

		if raw {
			patch, err = sjson.SetRawBytes(patch, key, []byte(value))
		} else {
			patch, err = sjson.SetBytes(patch, key, value)
		}
		if err != nil {
			return nil, fmt.Errorf("setting %s: %w", key, err)
		}
	}
	return patch, nil
}
