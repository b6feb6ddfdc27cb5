package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"hospital-hmis-server/internal/logger"
	"hospital-hmis-server/internal/models"
	"hospital-hmis-server/internal/notify"
)

// Notifier is the slice of the dispatcher the sweep needs.
type Notifier interface {
	SendEmail(ctx context.Context, to string, msg notify.EmailMessage) notify.Result
	SendSMS(ctx context.Context, phone, message string) notify.Result
	SendWhatsApp(ctx context.Context, phone, message string) notify.Result
}

// Store is the appointment access the sweep needs.
type Store interface {
	// DueDayBefore lists CONFIRMED appointments dated inside the window
	// whose day-before reminder has not been sent.
	DueDayBefore(ctx context.Context, dayStart, dayEnd time.Time) ([]models.Appointment, error)
	// DueSameDay lists CONFIRMED appointments dated inside the window that
	// already had the day-before reminder stamped before the cutoff.
	DueSameDay(ctx context.Context, dayStart, dayEnd, stampedBefore time.Time) ([]models.Appointment, error)
	// MarkReminded records the day-before reminder on the appointment.
	MarkReminded(ctx context.Context, apt *models.Appointment, at time.Time) error
	// RestampReminder records the same-day reminder on the appointment.
	RestampReminder(ctx context.Context, apt *models.Appointment, at time.Time) error
}

// Scheduler runs the hourly reminder sweep. Start is idempotent by
// construction: the first caller wins the compare-and-swap and later calls
// are no-ops.
type Scheduler struct {
	store    Store
	notifier Notifier
	log      *logger.Logger
	interval time.Duration
	now      func() time.Time
	started  atomic.Bool
}

// New creates a reminder sweep over the given store and notifier.
func New(store Store, notifier Notifier, log *logger.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		store:    store,
		notifier: notifier,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

// Start launches the ticker loop. It returns true when this call actually
// started the scheduler and false when it was already running. The loop
// stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) bool {
	if !s.started.CompareAndSwap(false, true) {
		return false
	}

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		s.log.WithComponent("scheduler").Infof("reminder scheduler started, interval %s", s.interval)
		for {
			select {
			case <-ctx.Done():
				s.log.WithComponent("scheduler").Info("reminder scheduler stopped")
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
	return true
}

// Started reports whether the ticker loop is running.
func (s *Scheduler) Started() bool {
	return s.started.Load()
}

// RunOnce executes both reminder passes, used by the ticker and by the
// manual trigger endpoint.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.runDayBeforePass(ctx)
	s.runSameDayPass(ctx)
}

// runDayBeforePass sends 24-hour reminders for tomorrow's confirmed
// appointments that have not been reminded yet.
func (s *Scheduler) runDayBeforePass(ctx context.Context) {
	now := s.now()
	dayStart := startOfDay(now.AddDate(0, 0, 1))
	dayEnd := endOfDay(dayStart)

	appointments, err := s.store.DueDayBefore(ctx, dayStart, dayEnd)
	if err != nil {
		s.log.WithComponent("scheduler").Errorf("24h reminder query failed: %v", err)
		return
	}
	s.log.WithComponent("scheduler").Infof("found %d appointments for 24h reminders", len(appointments))

	for i := range appointments {
		apt := &appointments[i]
		s.sendReminders(ctx, apt,
			notify.Reminder24hEmail(apt),
			notify.Reminder24hSMS(apt))

		if err := s.store.MarkReminded(ctx, apt, s.now()); err != nil {
			// A lost compare-and-swap means another writer touched the
			// record; the next tick picks it up again.
			s.log.WithAppointment(apt.ID).Errorf("failed to mark 24h reminder sent: %v", err)
		}
	}
}

// runSameDayPass sends 2-hour reminders for today's confirmed appointments.
// Eligibility is gated on the day-before stamp being older than 20 hours, a
// proxy for "24h reminder done, 2h reminder not yet sent"; the precise 2-3
// hour window is then filtered in-process from the combined date+time.
func (s *Scheduler) runSameDayPass(ctx context.Context) {
	now := s.now()
	dayStart := startOfDay(now)
	dayEnd := endOfDay(dayStart)
	stampedBefore := now.Add(-20 * time.Hour)

	appointments, err := s.store.DueSameDay(ctx, dayStart, dayEnd, stampedBefore)
	if err != nil {
		s.log.WithComponent("scheduler").Errorf("2h reminder query failed: %v", err)
		return
	}

	windowStart := now.Add(2 * time.Hour)
	windowEnd := now.Add(3 * time.Hour)

	sent := 0
	for i := range appointments {
		apt := &appointments[i]
		at, err := CombineDateTime(apt.Date, apt.Time)
		if err != nil {
			s.log.WithAppointment(apt.ID).Warnf("unparseable time slot %q, skipping 2h reminder: %v", apt.Time, err)
			continue
		}
		if at.Before(windowStart) || at.After(windowEnd) {
			continue
		}

		s.sendReminders(ctx, apt,
			notify.Reminder2hEmail(apt),
			notify.Reminder2hSMS(apt))

		if err := s.store.RestampReminder(ctx, apt, s.now()); err != nil {
			s.log.WithAppointment(apt.ID).Errorf("failed to stamp 2h reminder: %v", err)
		}
		sent++
	}
	s.log.WithComponent("scheduler").Infof("sent %d of %d candidate 2h reminders", sent, len(appointments))
}

// sendReminders fires all three channels for one appointment. Each channel
// is independent; failures are already logged by the dispatcher.
func (s *Scheduler) sendReminders(ctx context.Context, apt *models.Appointment, email notify.EmailMessage, sms string) {
	s.notifier.SendEmail(ctx, apt.Email, email)
	s.notifier.SendSMS(ctx, apt.Phone, sms)
	s.notifier.SendWhatsApp(ctx, apt.Phone, sms)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(dayStart time.Time) time.Time {
	return dayStart.Add(24*time.Hour - time.Nanosecond)
}

// CombineDateTime merges an appointment's date with its free-text time slot.
// Both 12-hour ("10:00 AM") and 24-hour ("14:30") forms are accepted.
func CombineDateTime(date time.Time, slot string) (time.Time, error) {
	slot = strings.TrimSpace(slot)

	var parsed time.Time
	var err error
	for _, layout := range []string{"3:04 PM", "3:04PM", "15:04"} {
		parsed, err = time.Parse(layout, strings.ToUpper(slot))
		if err == nil {
			return time.Date(date.Year(), date.Month(), date.Day(),
				parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time slot %q", slot)
}
