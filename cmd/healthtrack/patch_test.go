package main

import (
	"testing"

	"healthtrack/internal/model"
)

func TestBuildPatch(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		shape   any
		pairs   []string
		want    string
		wantErr bool
	}{
		{
			name:  "field types follow the record",
			shape: model.Medication{},
			pairs: []string{"dosage=500", "stock=30", "active=false"},
			want:  `{"dosage":"500","stock":30,"active":false}`,
		},
		{
			name:  "numeric phone stays a string",
			shape: model.EmergencyContact{},
			pairs: []string{"phone=5551234", "isPrimary=true"},
			want:  `{"phone":"5551234","isPrimary":true}`,
		},
		{
			name:  "raw json value",
			shape: model.Medication{},
			pairs: []string{`times:=["08:00","20:00"]`, "endDate:=null"},
			want:  `{"times":["08:00","20:00"],"endDate":null}`,
		},
		{
			name:  "clock time stays a string",
			shape: model.CustomReminder{},
			pairs: []string{"time=08:00"},
			want:  `{"time":"08:00"}`,
		},
		{
			name:  "nested path on existing document",
			base:  `{"notifications":{"medicationReminders":true,"refillReminders":true}}`,
			shape: model.Settings{},
			pairs: []string{"notifications.medicationReminders=false"},
			want:  `{"notifications":{"medicationReminders":false,"refillReminders":true}}`,
		},
		{
			name:  "empty value",
			shape: model.VitalReading{},
			pairs: []string{"notes="},
			want:  `{"notes":""}`,
		},
		{
			name:    "number field with text",
			shape:   model.Medication{},
			pairs:   []string{"stock=lots"},
			wantErr: true,
		},
		{
			name:    "invalid raw json",
			shape:   model.Medication{},
			pairs:   []string{"times:=[08:00]"},
			wantErr: true,
		},
		{
			name:    "missing equals",
			shape:   model.Medication{},
			pairs:   []string{"dosage"},
			wantErr: true,
		},
		{
			name:    "empty key",
			shape:   model.Medication{},
			pairs:   []string{"=x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var base []byte
			if tt.base != "" {
				base = []byte(tt.base)
			}
			got, err := buildPatch(base, tt.shape, tt.pairs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildPatch() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && string(got) != tt.want {
				t.Errorf("buildPatch() = %s, want %s", got, tt.want)
			}
		})
	}
}
