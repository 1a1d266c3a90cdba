package insights_test

import (
	"testing"

	"healthtrack/internal/insights"
	"healthtrack/internal/model"
)

func TestEngine_Score(t *testing.T) {
	engine := insights.NewEngine(insights.DefaultPenalties())
	none := insights.Trends{
		BloodPressure: insights.VitalTrend{Trend: insights.InsufficientData},
		HeartRate:     insights.VitalTrend{Trend: insights.InsufficientData},
		Weight:        insights.VitalTrend{Trend: insights.InsufficientData},
	}

	tests := []struct {
		name      string
		adherence int
		trends    insights.Trends
		want      int
		reasons   []string
	}{
		{"perfect", 95, none, 100, nil},
		{"adherence at threshold", 90, none, 100, nil},
		{"proportional adherence penalty", 60, none, 85, []string{"Low medication adherence"}},
		{"adherence penalty is capped", 0, none, 55, []string{"Low medication adherence"}},
		{
			"every signal in order",
			85,
			insights.Trends{
				BloodPressure: insights.VitalTrend{Trend: insights.Stable, Status: insights.StatusHighStage2},
				HeartRate:     insights.VitalTrend{Trend: insights.Stable, Status: insights.StatusLow},
				Weight:        insights.VitalTrend{Trend: insights.Decreasing, Status: insights.StatusSignificantChange},
			},
			68, // 100 - 2.5 - 15 - 10 - 5 = 67.5, rounds up
			[]string{"Low medication adherence", "Abnormal blood pressure", "Abnormal heart rate", "Significant weight change"},
		},
		{
			"elevated blood pressure",
			100,
			insights.Trends{BloodPressure: insights.VitalTrend{Trend: insights.Stable, Status: insights.StatusElevated}},
			95,
			[]string{"Abnormal blood pressure"},
		},
		{
			"missing heart rate data is not penalized",
			100,
			insights.Trends{HeartRate: insights.VitalTrend{Trend: insights.InsufficientData}},
			100,
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Score(tt.adherence, tt.trends)
			if got.Score != tt.want {
				t.Errorf("Score = %d, want %d", got.Score, tt.want)
			}
			if len(got.Penalties) != len(tt.reasons) {
				t.Fatalf("Penalties = %+v, want %v", got.Penalties, tt.reasons)
			}
			for i, r := range tt.reasons {
				if got.Penalties[i].Reason != r {
					t.Errorf("Penalties[%d] = %q, want %q", i, got.Penalties[i].Reason, r)
				}
				if got.Penalties[i].Points >= 0 {
					t.Errorf("Penalties[%d].Points = %v, want negative", i, got.Penalties[i].Points)
				}
			}
		})
	}
}

func TestEngine_ScoreClampsAtZero(t *testing.T) {
	p := insights.DefaultPenalties()
	p.BPStage2 = 52
	engine := insights.NewEngine(p)

	trends := insights.Trends{
		BloodPressure: insights.VitalTrend{Trend: insights.Stable, Status: insights.StatusHighStage2},
		HeartRate:     insights.VitalTrend{Trend: insights.Stable, Status: insights.StatusHigh},
		Weight:        insights.VitalTrend{Trend: insights.Increasing, Status: insights.StatusSignificantChange},
	}
	// raw score: 100 - 45 - 52 - 10 - 5 = -12
	got := engine.Score(0, trends)
	if got.Score != 0 {
		t.Errorf("Score = %d, want 0", got.Score)
	}
	if len(got.Penalties) != 4 {
		t.Errorf("len(Penalties) = %d, want 4", len(got.Penalties))
	}
	if got.Description != "Health status requires immediate attention." {
		t.Errorf("Description = %q", got.Description)
	}
}

func TestDescribe(t *testing.T) {
	tests := map[int]string{
		100: "Excellent! Keep up the great work.",
		85:  "Very good health management.",
		70:  "Good overall health status.",
		65:  "Fair health status. Some improvements needed.",
		50:  "Health status needs attention.",
		49:  "Health status requires immediate attention.",
	}
	for score, want := range tests {
		if got := insights.Describe(score); got != want {
			t.Errorf("Describe(%d) = %q, want %q", score, got, want)
		}
	}
}

func TestInsights(t *testing.T) {
	avg := func(v float64) *float64 { return &v }
	change := 6.5

	trends := insights.Trends{
		BloodPressure: insights.VitalTrend{Trend: insights.Increasing, Status: insights.StatusHighStage1, Summary: "135/85"},
		HeartRate:     insights.VitalTrend{Trend: insights.Increasing, Average: avg(104.4), Status: insights.StatusHigh},
		Weight:        insights.VitalTrend{Trend: insights.Increasing, Change: &change, Status: insights.StatusSignificantChange},
	}

	got := insights.Insights(72, trends, 30)
	wantMessages := []string{
		"Your medication adherence is 72% in the last 30 days.",
		"Your average blood pressure is 135/85 (high stage1)",
		"Your average heart rate is 104 bpm",
		"You've gained 6.5 lbs in the last 30 days.",
	}
	if len(got) != len(wantMessages) {
		t.Fatalf("Insights() = %d, want %d: %+v", len(got), len(wantMessages), got)
	}
	for i, want := range wantMessages {
		if got[i].Message != want {
			t.Errorf("Insights()[%d].Message = %q, want %q", i, got[i].Message, want)
		}
	}

	t.Run("quiet when everything is normal", func(t *testing.T) {
		if got := insights.Insights(95, insights.Trends{}, 30); len(got) != 0 {
			t.Errorf("Insights() = %+v, want none", got)
		}
	})
}

func TestRecommendations(t *testing.T) {
	t.Run("monitoring is always last", func(t *testing.T) {
		got := insights.Recommendations(100, insights.Trends{
			BloodPressure: insights.VitalTrend{Trend: insights.InsufficientData},
		})
		if len(got) != 1 || got[0].Title != "Regular Health Monitoring" {
			t.Fatalf("Recommendations() = %+v", got)
		}
		if got[0].Priority != "medium" || len(got[0].Actions) != 3 {
			t.Errorf("monitoring recommendation = %+v", got[0])
		}
	})

	t.Run("all triggers", func(t *testing.T) {
		hr := 110.0
		got := insights.Recommendations(50, insights.Trends{
			BloodPressure: insights.VitalTrend{Trend: insights.Stable, Status: insights.StatusElevated},
			HeartRate:     insights.VitalTrend{Trend: insights.Stable, Average: &hr, Status: insights.StatusHigh},
		})
		want := []string{
			"Improve Medication Adherence",
			"Blood Pressure Management",
			"Heart Rate Optimization",
			"Regular Health Monitoring",
		}
		if len(got) != len(want) {
			t.Fatalf("Recommendations() = %d, want %d", len(got), len(want))
		}
		for i, title := range want {
			if got[i].Title != title {
				t.Errorf("Recommendations()[%d] = %q, want %q", i, got[i].Title, title)
			}
		}
	})
}

func TestEngine_Report(t *testing.T) {
	engine := insights.NewEngine(insights.DefaultPenalties())
	in := insights.Input{
		Medications: []model.Medication{{ID: "m1", Times: []string{"08:00"}, Active: true}},
		Vitals: []model.VitalReading{
			bp("2024-01-10", 110, 70),
			bp("2024-01-11", 112, 72),
			bp("2024-01-12", 130, 80),
			bp("2024-01-13", 135, 85),
		},
	}

	got := engine.Report(in, now, 0)
	if got.Days != 30 {
		t.Errorf("Days = %d, want 30", got.Days)
	}
	if got.Adherence != 0 {
		t.Errorf("Adherence = %d, want 0", got.Adherence)
	}
	// adherence 45 + elevated blood pressure 5
	if got.Score.Score != 50 {
		t.Errorf("Score = %d, want 50", got.Score.Score)
	}
	if got.Trends.BloodPressure.Trend != insights.Increasing {
		t.Errorf("BloodPressure.Trend = %q", got.Trends.BloodPressure.Trend)
	}
	if n := len(got.Recommendations); n != 3 {
		t.Errorf("len(Recommendations) = %d, want 3", n)
	}
}
