package reminders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"healthtrack/internal/config"
	"healthtrack/internal/health"
	"healthtrack/internal/model"
)

const (
	notificationTag = "medication-reminder"
	defaultBody     = "Time for your medication"
	snoozedTitle    = "Snoozed reminder"
)

// Service is what the scheduler needs from health.Service.
type Service interface {
	ActiveMedications() ([]model.Medication, error)
	MedicationHistory() ([]model.HistoryRecord, error)
	CustomReminders() ([]model.CustomReminder, error)
	Settings() (*model.Settings, error)
	MarkTaken(medicationID, scheduled string) (*model.HistoryRecord, error)
}

// Scheduler checks the schedule on a cron spec and sends a notification
// for each dose when it comes due. Each dose is notified at most once a
// day, plus once per snooze. Snoozes live in memory only.
type Scheduler struct {
	svc      Service
	notifier health.Notifier
	logger   health.Logger
	clock    health.Clock
	spec     string
	window   time.Duration
	snooze   time.Duration

	mu       sync.Mutex
	day      string
	notified map[string]bool
	snoozed  map[string]time.Time
}

// NewScheduler validates cfg.Schedule and returns a Scheduler.
func NewScheduler(svc Service, notifier health.Notifier, cfg config.RemindersConfig, logger health.Logger, clock health.Clock) (*Scheduler, error) {
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", cfg.Schedule, err)
	}
	if clock == nil {
		clock = health.RealClock{}
	}
	return &Scheduler{
		svc:      svc,
		notifier: notifier,
		logger:   logger,
		clock:    clock,
		spec:     cfg.Schedule,
		window:   time.Duration(cfg.PendingWindow) * time.Minute,
		snooze:   time.Duration(cfg.SnoozeMinutes) * time.Minute,
		notified: make(map[string]bool),
		snoozed:  make(map[string]time.Time),
	}, nil
}

// Today returns today's reminders for the active medications and the
// custom reminders.
func (s *Scheduler) Today() ([]Reminder, error) {
	return s.today(s.clock.Now())
}

func (s *Scheduler) today(now time.Time) ([]Reminder, error) {
	meds, err := s.svc.ActiveMedications()
	if err != nil {
		return nil, fmt.Errorf("loading medications: %w", err)
	}
	history, err := s.svc.MedicationHistory()
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	custom, err := s.svc.CustomReminders()
	if err != nil {
		return nil, fmt.Errorf("loading custom reminders: %w", err)
	}
	return Schedule(meds, custom, history, now, s.window), nil
}

// Run checks the schedule on every cron tick until ctx is done. When the
// notifier supports button presses, they are handled as well.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{s.logger})))
	if _, err := c.AddFunc(s.spec, func() {
		if err := s.Check(ctx); err != nil {
			s.logger.Error("reminder check failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("scheduling reminder check: %w", err)
	}

	if l, ok := s.notifier.(health.ActionListener); ok {
		go func() {
			if err := l.Listen(ctx, s.HandleAction); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("notification listener stopped", "error", err)
			}
		}()
	}

	s.logger.Info("reminder daemon started", "schedule", s.spec)
	if err := s.Check(ctx); err != nil {
		s.logger.Error("reminder check failed", "error", err)
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("reminder daemon stopped")
	return nil
}

// Check sends notifications for every dose that has come due since the
// last check and for every expired snooze.
func (s *Scheduler) Check(ctx context.Context) error {
	settings, err := s.svc.Settings()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if settings != nil && !settings.Notifications.MedicationReminders {
		s.logger.Debug("medication reminders disabled")
		return nil
	}

	now := s.clock.Now()
	rs, err := s.today(now)
	if err != nil {
		return err
	}

	for _, n := range s.due(rs, now) {
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.logger.Error("notification failed", "reminder", n.ReminderID, "error", err)
			s.retry(n.ReminderID, n.Title == snoozedTitle, now)
			continue
		}
		s.logger.Info("reminder sent", "reminder", n.ReminderID)
	}
	return nil
}

// due picks the notifications to send and marks them sent.
func (s *Scheduler) due(rs []Reminder, now time.Time) []health.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	if today := now.Format(model.DateLayout); s.day != today {
		s.day = today
		s.notified = make(map[string]bool)
	}

	byID := make(map[string]Reminder, len(rs))
	var out []health.Notification
	for _, r := range rs {
		byID[r.ID] = r
		if r.Status == StatusTaken {
			delete(s.snoozed, r.ID)
			continue
		}
		if s.notified[r.ID] || now.Before(r.At) || now.Sub(r.At) >= s.window {
			continue
		}
		s.notified[r.ID] = true
		out = append(out, notification(r))
	}

	for id, at := range s.snoozed {
		if now.Before(at) {
			continue
		}
		delete(s.snoozed, id)
		r, ok := byID[id]
		if ok && r.Status == StatusTaken {
			continue
		}
		n := health.Notification{Title: snoozedTitle, Body: defaultBody, Tag: notificationTag, ReminderID: id, Actions: actions(r)}
		if ok {
			n.Body = notification(r).Body
		}
		out = append(out, n)
	}
	return out
}

// retry lets a failed notification go out again on the next check.
func (s *Scheduler) retry(id string, snoozed bool, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snoozed {
		s.snoozed[id] = now
		return
	}
	delete(s.notified, id)
}

// HandleAction applies a notification button press: "take" marks the dose
// taken, "snooze" sends the reminder again later.
func (s *Scheduler) HandleAction(_ context.Context, actionID, reminderID string) error {
	medID, clock, custom, ok := ParseReminderID(reminderID)
	if !ok {
		return fmt.Errorf("invalid reminder id %q", reminderID)
	}

	switch actionID {
	case health.ActionTake.ID:
		s.mu.Lock()
		delete(s.snoozed, reminderID)
		s.mu.Unlock()
		if custom {
			s.logger.Info("custom reminder dismissed", "reminder", reminderID)
			return nil
		}
		if _, err := s.svc.MarkTaken(medID, clock); err != nil {
			return fmt.Errorf("marking %s taken: %w", reminderID, err)
		}
		return nil
	case health.ActionSnooze.ID:
		d, err := s.snoozeDuration()
		if err != nil {
			return err
		}
		until := s.clock.Now().Add(d)
		s.mu.Lock()
		s.snoozed[reminderID] = until
		s.mu.Unlock()
		s.logger.Info("reminder snoozed", "reminder", reminderID, "until", until.Format(model.ClockLayout))
		return nil
	default:
		return fmt.Errorf("unknown reminder action %q", actionID)
	}
}

// snoozeDuration prefers the user's snooze setting over the config.
func (s *Scheduler) snoozeDuration() (time.Duration, error) {
	settings, err := s.svc.Settings()
	if err != nil {
		return 0, fmt.Errorf("loading settings: %w", err)
	}
	if settings != nil && settings.ReminderSettings.SnoozeTime > 0 {
		return time.Duration(settings.ReminderSettings.SnoozeTime) * time.Minute, nil
	}
	return s.snooze, nil
}

func notification(r Reminder) health.Notification {
	n := health.Notification{
		Title:      r.Name,
		Body:       defaultBody,
		Tag:        notificationTag,
		ReminderID: r.ID,
		Actions:    actions(r),
	}
	switch {
	case r.Custom && r.Message != "":
		n.Body = r.Message
	case !r.Custom && r.Dosage != "":
		n.Body = r.Dosage + " - " + r.Instructions
	}
	return n
}

func actions(r Reminder) []health.NotificationAction {
	if r.Custom {
		return []health.NotificationAction{health.ActionSnooze}
	}
	return []health.NotificationAction{health.ActionTake, health.ActionSnooze}
}

// cronLogger adapts health.Logger to cron.Logger.
type cronLogger struct {
	logger health.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
