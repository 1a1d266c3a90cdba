package main

import (
	"testing"

	"healthtrack/internal/insights"
)

func TestPenaltyLine(t *testing.T) {
	tests := []struct {
		name string
		p    insights.Penalty
		want string
	}{
		{"whole points", insights.Penalty{Points: -10, Reason: "Abnormal heart rate"}, "  -10  Abnormal heart rate"},
		{"fractional points", insights.Penalty{Points: -2.5, Reason: "Missed doses"}, "  -2.5  Missed doses"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := penaltyLine(tt.p); got != tt.want {
				t.Errorf("penaltyLine() = %q, want %q", got, tt.want)
			}
		})
	}
}
