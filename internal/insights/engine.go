package insights

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"healthtrack/internal/model"
)

// Penalties are the point deductions applied by the health score.
type Penalties struct {
	// AdherenceThreshold is the rate below which adherence is penalized by
	// (threshold - rate) * AdherenceFactor, capped at AdherenceCap.
	AdherenceThreshold float64
	AdherenceFactor    float64
	AdherenceCap       float64
	BPElevated         float64
	BPStage1           float64
	BPStage2           float64
	HeartRate          float64
	WeightChange       float64
}

// DefaultPenalties returns the standard score weights.
func DefaultPenalties() Penalties {
	return Penalties{
		AdherenceThreshold: 90,
		AdherenceFactor:    0.5,
		AdherenceCap:       45,
		BPElevated:         5,
		BPStage1:           10,
		BPStage2:           15,
		HeartRate:          10,
		WeightChange:       5,
	}
}

// Penalty is one itemized deduction. Points is negative.
type Penalty struct {
	Reason string  `json:"reason"`
	Points float64 `json:"points"`
}

// HealthScore is a 0-100 composite plus the deductions that produced it,
// in the order they were applied.
type HealthScore struct {
	Score       int       `json:"score"`
	Penalties   []Penalty `json:"penalties"`
	Description string    `json:"description"`
}

// Insight is a templated advisory triggered by a fixed condition.
type Insight struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}

// Recommendation is a prioritized set of suggested actions.
type Recommendation struct {
	Category    string   `json:"category"`
	Priority    string   `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

// Report bundles every derived value for one time range.
type Report struct {
	Days            int              `json:"days"`
	GeneratedAt     time.Time        `json:"generatedAt"`
	Adherence       int              `json:"adherence"`
	Trends          Trends           `json:"trends"`
	Score           HealthScore      `json:"healthScore"`
	Insights        []Insight        `json:"insights"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Input is the stored data the engine derives a report from.
type Input struct {
	Medications []model.Medication
	History     []model.HistoryRecord
	Vitals      []model.VitalReading
}

// Engine derives reports. It holds no state beyond its weights; every call
// recomputes from its inputs.
type Engine struct {
	penalties Penalties
}

// NewEngine creates an Engine with the given score weights.
func NewEngine(p Penalties) *Engine {
	return &Engine{penalties: p}
}

// Report computes adherence, trends, score, insights and recommendations
// over the days before now.
func (e *Engine) Report(in Input, now time.Time, days int) *Report {
	if days <= 0 {
		days = DefaultDays
	}
	adherence := Adherence(in.Medications, in.History, now, days)
	trends := AnalyzeAll(in.Vitals, now, days)
	return &Report{
		Days:            days,
		GeneratedAt:     now,
		Adherence:       adherence,
		Trends:          trends,
		Score:           e.Score(adherence, trends),
		Insights:        Insights(adherence, trends, days),
		Recommendations: Recommendations(adherence, trends),
	}
}

// Score starts at 100 and subtracts a penalty per abnormal signal. The
// result is rounded and clamped to [0, 100].
func (e *Engine) Score(adherence int, trends Trends) HealthScore {
	p := e.penalties
	score := 100.0
	var penalties []Penalty
	deduct := func(reason string, points float64) {
		if points <= 0 {
			return
		}
		score -= points
		penalties = append(penalties, Penalty{Reason: reason, Points: -points})
	}

	if rate := float64(adherence); rate < p.AdherenceThreshold {
		deduct("Low medication adherence", math.Min((p.AdherenceThreshold-rate)*p.AdherenceFactor, p.AdherenceCap))
	}

	switch trends.BloodPressure.Status {
	case StatusElevated:
		deduct("Abnormal blood pressure", p.BPElevated)
	case StatusHighStage1:
		deduct("Abnormal blood pressure", p.BPStage1)
	case StatusHighStage2:
		deduct("Abnormal blood pressure", p.BPStage2)
	}

	if hr := trends.HeartRate; hr.HasData() && hr.Status != StatusNormal {
		deduct("Abnormal heart rate", p.HeartRate)
	}

	if trends.Weight.Status == StatusSignificantChange {
		deduct("Significant weight change", p.WeightChange)
	}

	final := int(math.Round(score))
	final = max(0, min(100, final))
	return HealthScore{Score: final, Penalties: penalties, Description: Describe(final)}
}

// Describe returns the headline for a score.
func Describe(score int) string {
	switch {
	case score >= 90:
		return "Excellent! Keep up the great work."
	case score >= 80:
		return "Very good health management."
	case score >= 70:
		return "Good overall health status."
	case score >= 60:
		return "Fair health status. Some improvements needed."
	case score >= 50:
		return "Health status needs attention."
	}
	return "Health status requires immediate attention."
}

// Insights returns the advisories triggered by adherence and trends.
func Insights(adherence int, trends Trends, days int) []Insight {
	var out []Insight

	if adherence < 80 {
		out = append(out, Insight{
			Type:           "adherence",
			Severity:       "warning",
			Title:          "Low Medication Adherence",
			Message:        fmt.Sprintf("Your medication adherence is %d%% in the last %d days.", adherence, days),
			Recommendation: "Consider setting additional reminders or consulting your doctor.",
		})
	}

	if bp := trends.BloodPressure; bp.Trend == Increasing && bp.Status != StatusNormal {
		out = append(out, Insight{
			Type:           "vitals",
			Severity:       "warning",
			Title:          "Blood Pressure Trending Up",
			Message:        fmt.Sprintf("Your average blood pressure is %s (%s)", bp.Summary, strings.Replace(string(bp.Status), "-", " ", 1)),
			Recommendation: "Monitor your blood pressure closely and consult your doctor if it continues to rise.",
		})
	}

	if hr := trends.HeartRate; hr.Trend == Increasing && roundedAverage(hr) > 100 {
		out = append(out, Insight{
			Type:           "vitals",
			Severity:       "warning",
			Title:          "Elevated Heart Rate",
			Message:        fmt.Sprintf("Your average heart rate is %d bpm", roundedAverage(hr)),
			Recommendation: "Consider factors like stress, caffeine, or exercise. Consult your doctor if persistent.",
		})
	}

	if w := trends.Weight; w.Change != nil {
		change := math.Round(*w.Change*10) / 10
		if math.Abs(change) > 5 {
			verb := "lost"
			if change > 0 {
				verb = "gained"
			}
			out = append(out, Insight{
				Type:           "weight",
				Severity:       "info",
				Title:          "Significant Weight Change",
				Message:        fmt.Sprintf("You've %s %s lbs in the last %d days.", verb, strconv.FormatFloat(math.Abs(change), 'f', -1, 64), days),
				Recommendation: "Track your diet and exercise. Consult your doctor about significant weight changes.",
			})
		}
	}

	return out
}

// Recommendations returns prioritized suggestions. The last entry is always
// the general monitoring recommendation.
func Recommendations(adherence int, trends Trends) []Recommendation {
	var out []Recommendation

	if adherence < 80 {
		out = append(out, Recommendation{
			Category:    "medication",
			Priority:    "high",
			Title:       "Improve Medication Adherence",
			Description: "Set daily reminders and track your medication intake consistently.",
			Actions:     []string{"Enable push notifications", "Set multiple reminder times", "Use pill organizer"},
		})
	}

	if bp := trends.BloodPressure; bp.HasData() && bp.Status != StatusNormal {
		out = append(out, Recommendation{
			Category:    "lifestyle",
			Priority:    "high",
			Title:       "Blood Pressure Management",
			Description: "Focus on diet, exercise, and stress reduction to improve blood pressure.",
			Actions:     []string{"Reduce sodium intake", "Exercise regularly", "Practice stress management", "Monitor daily"},
		})
	}

	if roundedAverage(trends.HeartRate) > 100 {
		out = append(out, Recommendation{
			Category:    "lifestyle",
			Priority:    "medium",
			Title:       "Heart Rate Optimization",
			Description: "Maintain healthy heart rate through lifestyle choices.",
			Actions:     []string{"Reduce caffeine", "Practice relaxation techniques", "Regular exercise", "Adequate sleep"},
		})
	}

	return append(out, Recommendation{
		Category:    "monitoring",
		Priority:    "medium",
		Title:       "Regular Health Monitoring",
		Description: "Keep track of your vital signs and medication adherence.",
		Actions:     []string{"Log vitals weekly", "Review medication schedule", "Schedule regular check-ups"},
	})
}

func roundedAverage(v VitalTrend) int {
	if v.Average == nil {
		return 0
	}
	return int(math.Round(*v.Average))
}
