package insights

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"healthtrack/internal/model"
)

// DefaultDays is used for unknown or empty range names.
const DefaultDays = 30

var ranges = map[string]int{
	"7d":  7,
	"30d": 30,
	"90d": 90,
	"1y":  365,
}

// RangeDays converts a range name (7d, 30d, 90d, 1y) into days. Unknown
// names fall back to DefaultDays.
func RangeDays(name string) int {
	if d, ok := ranges[name]; ok {
		return d
	}
	return DefaultDays
}

// Trend is the direction of a vital series.
type Trend string

const (
	Increasing       Trend = "increasing"
	Decreasing       Trend = "decreasing"
	Stable           Trend = "stable"
	InsufficientData Trend = "insufficient-data"
)

// Status buckets a series average against fixed clinical thresholds.
type Status string

const (
	StatusNormal            Status = "normal"
	StatusElevated          Status = "elevated"
	StatusHighStage1        Status = "high-stage1"
	StatusHighStage2        Status = "high-stage2"
	StatusLow               Status = "low"
	StatusHigh              Status = "high"
	StatusAbnormal          Status = "abnormal"
	StatusStable            Status = "stable"
	StatusModerateChange    Status = "moderate-change"
	StatusSignificantChange Status = "significant-change"
)

// VitalTrend summarizes readings of one vital type in a time range.
// Average is nil when there are fewer than two readings.
type VitalTrend struct {
	Type             model.VitalType `json:"type"`
	Trend            Trend           `json:"trend"`
	Average          *float64        `json:"average"`
	AverageDiastolic *float64        `json:"averageDiastolic,omitempty"`
	Change           *float64        `json:"change,omitempty"`
	Readings         int             `json:"readings"`
	Status           Status          `json:"status,omitempty"`
	Summary          string          `json:"summary,omitempty"`
}

// HasData reports whether the series had enough readings to analyze.
func (v VitalTrend) HasData() bool { return v.Trend != "" && v.Trend != InsufficientData }

// Trends holds the analysis of every vital type.
type Trends struct {
	BloodPressure VitalTrend `json:"bloodPressure"`
	HeartRate     VitalTrend `json:"heartRate"`
	Weight        VitalTrend `json:"weight"`
	Temperature   VitalTrend `json:"temperature"`
	Glucose       VitalTrend `json:"glucose"`
}

// trendMargin is how far the second-half mean must move from the first-half
// mean before a series counts as increasing or decreasing. Types without a
// margin are always stable.
var trendMargin = map[model.VitalType]float64{
	model.BloodPressure: 5,
	model.HeartRate:     5,
	model.Glucose:       5,
	model.Weight:        2,
}

// Adherence returns round(taken/expected*100) over the days before now.
// Expected doses come from active medications only; the rate is 0 when
// nothing is expected and is not capped at 100.
func Adherence(meds []model.Medication, history []model.HistoryRecord, now time.Time, days int) int {
	expected := 0
	for _, m := range meds {
		if m.Active {
			expected += m.DosesPerDay() * days
		}
	}
	if expected == 0 {
		return 0
	}

	start := now.AddDate(0, 0, -days)
	taken := 0
	for _, h := range history {
		if !h.Timestamp.Before(start) && !h.Timestamp.After(now) {
			taken++
		}
	}
	return int(math.Round(float64(taken) / float64(expected) * 100))
}

// AnalyzeAll runs Analyze for every vital type.
func AnalyzeAll(vitals []model.VitalReading, now time.Time, days int) Trends {
	return Trends{
		BloodPressure: Analyze(vitals, model.BloodPressure, now, days),
		HeartRate:     Analyze(vitals, model.HeartRate, now, days),
		Weight:        Analyze(vitals, model.Weight, now, days),
		Temperature:   Analyze(vitals, model.Temperature, now, days),
		Glucose:       Analyze(vitals, model.Glucose, now, days),
	}
}

type timedReading struct {
	at time.Time
	model.VitalReading
}

// Analyze computes the trend of readings of typ taken in the days before
// now. Readings outside the range, of another type, or with an unparseable
// date are ignored.
func Analyze(vitals []model.VitalReading, typ model.VitalType, now time.Time, days int) VitalTrend {
	start := now.AddDate(0, 0, -days)
	var series []timedReading
	for _, v := range vitals {
		if v.Type != typ {
			continue
		}
		at, err := v.TakenAt(now.Location())
		if err != nil || at.Before(start) || at.After(now) {
			continue
		}
		series = append(series, timedReading{at: at, VitalReading: v})
	}

	result := VitalTrend{Type: typ, Trend: InsufficientData, Readings: len(series)}
	if len(series) < 2 {
		return result
	}
	sort.SliceStable(series, func(i, j int) bool { return series[i].at.Before(series[j].at) })

	values := make([]float64, len(series))
	for i, r := range series {
		values[i] = r.Primary()
	}
	avg := mean(values)
	result.Average = &avg

	mid := len(values) / 2
	result.Trend = direction(mean(values[:mid]), mean(values[mid:]), trendMargin[typ])

	switch typ {
	case model.BloodPressure:
		diastolic := make([]float64, len(series))
		for i, r := range series {
			diastolic[i] = r.Diastolic
		}
		avgD := mean(diastolic)
		result.AverageDiastolic = &avgD
		result.Status = BloodPressureStatus(avg, avgD)
		result.Summary = fmt.Sprintf("%d/%d", int(math.Round(avg)), int(math.Round(avgD)))
	case model.HeartRate:
		result.Status = HeartRateStatus(avg)
		result.Summary = strconv.Itoa(int(math.Round(avg)))
	case model.Weight:
		change := values[len(values)-1] - values[0]
		result.Change = &change
		result.Status = WeightStatus(change)
		result.Summary = strconv.FormatFloat(avg, 'f', 1, 64)
	case model.Temperature:
		result.Status = TemperatureStatus(avg)
		result.Summary = strconv.FormatFloat(avg, 'f', 1, 64)
	case model.Glucose:
		result.Status = GlucoseStatus(avg)
		result.Summary = strconv.Itoa(int(math.Round(avg)))
	}
	return result
}

func direction(first, second, margin float64) Trend {
	if margin == 0 {
		return Stable
	}
	switch {
	case second > first+margin:
		return Increasing
	case second < first-margin:
		return Decreasing
	}
	return Stable
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// BloodPressureStatus buckets an average systolic/diastolic pair.
func BloodPressureStatus(systolic, diastolic float64) Status {
	switch {
	case systolic < 120 && diastolic < 80:
		return StatusNormal
	case systolic < 130 && diastolic < 80:
		return StatusElevated
	case systolic < 140 || diastolic < 90:
		return StatusHighStage1
	}
	return StatusHighStage2
}

// HeartRateStatus is normal between 60 and 100 bpm inclusive.
func HeartRateStatus(rate float64) Status {
	switch {
	case rate >= 60 && rate <= 100:
		return StatusNormal
	case rate < 60:
		return StatusLow
	}
	return StatusHigh
}

// WeightStatus buckets the change between the earliest and latest reading.
func WeightStatus(change float64) Status {
	switch abs := math.Abs(change); {
	case abs <= 2:
		return StatusStable
	case abs > 5:
		return StatusSignificantChange
	}
	return StatusModerateChange
}

// TemperatureStatus is normal between 97 and 99 °F inclusive.
func TemperatureStatus(temp float64) Status {
	if temp >= 97 && temp <= 99 {
		return StatusNormal
	}
	return StatusAbnormal
}

// GlucoseStatus is normal between 70 and 140 mg/dL inclusive.
func GlucoseStatus(level float64) Status {
	switch {
	case level >= 70 && level <= 140:
		return StatusNormal
	case level < 70:
		return StatusLow
	}
	return StatusHigh
}
