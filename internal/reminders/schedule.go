// Package reminders builds the daily dose schedule and runs the reminder
// daemon that notifies the user when a dose is due.
package reminders

import (
	"sort"
	"strings"
	"time"

	"healthtrack/internal/model"
)

// Status is where a reminder stands today.
type Status string

const (
	StatusTaken    Status = "taken"
	StatusMissed   Status = "missed"
	StatusPending  Status = "pending"
	StatusUpcoming Status = "upcoming"
)

const (
	customPrefix        = "custom_"
	defaultInstructions = "Take as prescribed"
)

// Reminder is one scheduled dose (or custom reminder) for today.
type Reminder struct {
	ID           string    `json:"id"`
	MedicationID string    `json:"medicationId,omitempty"`
	Name         string    `json:"name"`
	Dosage       string    `json:"dosage,omitempty"`
	Time         string    `json:"time"`
	Instructions string    `json:"instructions,omitempty"`
	Message      string    `json:"message,omitempty"`
	Status       Status    `json:"status"`
	At           time.Time `json:"at"`
	Custom       bool      `json:"custom"`
}

// ReminderID is "<medicationID>_<HH:MM>".
func ReminderID(medicationID, clock string) string {
	return medicationID + "_" + clock
}

// ParseReminderID splits a reminder id. custom reports whether it names a
// custom reminder, in which case the returned id is the custom reminder's.
func ParseReminderID(id string) (medicationID, clock string, custom bool, ok bool) {
	if rest, found := strings.CutPrefix(id, customPrefix); found {
		return rest, "", true, rest != ""
	}
	i := strings.LastIndex(id, "_")
	if i <= 0 || i == len(id)-1 {
		return "", "", false, false
	}
	return id[:i], id[i+1:], false, true
}

// Schedule returns today's reminders sorted by time. A dose is taken when
// history holds a record for the medication, time and today's date. Doses
// whose time has passed are missed; doses due within window are pending;
// the rest are upcoming. Times that do not parse as HH:MM are skipped.
func Schedule(meds []model.Medication, custom []model.CustomReminder, history []model.HistoryRecord, now time.Time, window time.Duration) []Reminder {
	today := now.Format(model.DateLayout)
	taken := make(map[string]bool)
	for _, h := range history {
		if h.Date == today {
			taken[ReminderID(h.MedicationID, h.Time)] = true
		}
	}

	var out []Reminder
	for _, m := range meds {
		for _, clock := range m.Times {
			at, ok := todayAt(now, clock)
			if !ok {
				continue
			}
			r := Reminder{
				ID:           ReminderID(m.ID, clock),
				MedicationID: m.ID,
				Name:         m.Name,
				Dosage:       m.Dosage,
				Time:         clock,
				Instructions: m.Instructions,
				At:           at,
			}
			if r.Instructions == "" {
				r.Instructions = defaultInstructions
			}
			if taken[r.ID] {
				r.Status = StatusTaken
			} else {
				r.Status = status(at, now, window)
			}
			out = append(out, r)
		}
	}

	for _, c := range custom {
		at, ok := todayAt(now, c.Time)
		if !ok {
			continue
		}
		out = append(out, Reminder{
			ID:      customPrefix + c.ID,
			Name:    c.Title,
			Time:    c.Time,
			Message: c.Message,
			Status:  status(at, now, window),
			At:      at,
			Custom:  true,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}

func status(at, now time.Time, window time.Duration) Status {
	if at.Before(now) {
		return StatusMissed
	}
	if d := at.Sub(now); d > 0 && d <= window {
		return StatusPending
	}
	return StatusUpcoming
}

func todayAt(now time.Time, clock string) (time.Time, bool) {
	t, err := time.Parse(model.ClockLayout, clock)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, now.Location()), true
}

// Count returns how many reminders have status s.
func Count(rs []Reminder, s Status) int {
	n := 0
	for _, r := range rs {
		if r.Status == s {
			n++
		}
	}
	return n
}
