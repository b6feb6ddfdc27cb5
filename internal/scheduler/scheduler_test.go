package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-hmis-server/internal/logger"
	"hospital-hmis-server/internal/models"
	"hospital-hmis-server/internal/notify"
)

type fakeStore struct {
	dayBefore []models.Appointment
	sameDay   []models.Appointment

	dayBeforeWindows [][2]time.Time
	sameDayCutoffs   []time.Time
	marked           []string
	restamped        []string
}

func (f *fakeStore) DueDayBefore(ctx context.Context, dayStart, dayEnd time.Time) ([]models.Appointment, error) {
	f.dayBeforeWindows = append(f.dayBeforeWindows, [2]time.Time{dayStart, dayEnd})
	return f.dayBefore, nil
}

func (f *fakeStore) DueSameDay(ctx context.Context, dayStart, dayEnd, stampedBefore time.Time) ([]models.Appointment, error) {
	f.sameDayCutoffs = append(f.sameDayCutoffs, stampedBefore)
	return f.sameDay, nil
}

func (f *fakeStore) MarkReminded(ctx context.Context, apt *models.Appointment, at time.Time) error {
	f.marked = append(f.marked, apt.ID)
	return nil
}

func (f *fakeStore) RestampReminder(ctx context.Context, apt *models.Appointment, at time.Time) error {
	f.restamped = append(f.restamped, apt.ID)
	return nil
}

type fakeNotifier struct {
	emails   []string
	sms      []string
	whatsapp []string
}

func (f *fakeNotifier) SendEmail(ctx context.Context, to string, msg notify.EmailMessage) notify.Result {
	f.emails = append(f.emails, to)
	return notify.Result{Channel: notify.ChannelEmail, Success: true}
}

func (f *fakeNotifier) SendSMS(ctx context.Context, phone, message string) notify.Result {
	f.sms = append(f.sms, message)
	return notify.Result{Channel: notify.ChannelSMS, Success: true}
}

func (f *fakeNotifier) SendWhatsApp(ctx context.Context, phone, message string) notify.Result {
	f.whatsapp = append(f.whatsapp, message)
	return notify.Result{Channel: notify.ChannelWhatsApp, Success: true}
}

func testAppointment(id, slot string, date time.Time) models.Appointment {
	apt := models.Appointment{
		PatientName: "Asha Rao",
		Email:       "asha@example.com",
		Phone:       "9876543210",
		Department:  "Cardiology",
		Date:        date,
		Time:        slot,
		Status:      models.StatusConfirmed,
	}
	apt.ID = id
	return apt
}

func newTestScheduler(store *fakeStore, notifier *fakeNotifier, at time.Time) *Scheduler {
	s := New(store, notifier, logger.New("error"), time.Hour)
	s.now = func() time.Time { return at }
	return s
}

func TestStartIsIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(&fakeStore{}, &fakeNotifier{}, logger.New("error"), time.Hour)
	assert.False(t, s.Started())

	assert.True(t, s.Start(ctx))
	assert.False(t, s.Start(ctx), "second start must be a no-op")
	assert.False(t, s.Start(ctx))
	assert.True(t, s.Started())
}

func TestDayBeforePassMarksReminded(t *testing.T) {
	now := time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	store := &fakeStore{dayBefore: []models.Appointment{
		testAppointment("apt-1", "10:00 AM", tomorrow),
		testAppointment("apt-2", "11:30 AM", tomorrow),
	}}
	notifier := &fakeNotifier{}
	s := newTestScheduler(store, notifier, now)

	s.RunOnce(context.Background())

	// The query window is exactly tomorrow.
	require.Len(t, store.dayBeforeWindows, 1)
	assert.Equal(t, tomorrow, store.dayBeforeWindows[0][0])
	assert.True(t, store.dayBeforeWindows[0][1].Before(tomorrow.AddDate(0, 0, 1)))

	// Both appointments got all three channels and were stamped, so the
	// next sweep will not see them again.
	assert.Equal(t, []string{"apt-1", "apt-2"}, store.marked)
	assert.Len(t, notifier.emails, 2)
	assert.Len(t, notifier.sms, 2)
	assert.Len(t, notifier.whatsapp, 2)
}

func TestSameDayPassFiltersWindow(t *testing.T) {
	// 08:00 local: the send window is appointments between 10:00 and 11:00.
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	store := &fakeStore{sameDay: []models.Appointment{
		testAppointment("inside", "10:30 AM", today),
		testAppointment("too-soon", "9:00 AM", today),
		testAppointment("too-late", "3:00 PM", today),
		testAppointment("unparseable", "around noon", today),
	}}
	notifier := &fakeNotifier{}
	s := newTestScheduler(store, notifier, now)

	s.RunOnce(context.Background())

	assert.Equal(t, []string{"inside"}, store.restamped)
	require.Len(t, store.sameDayCutoffs, 1)
	assert.Equal(t, now.Add(-20*time.Hour), store.sameDayCutoffs[0])
}

func TestSameDayPassAccepts24HourSlots(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	store := &fakeStore{sameDay: []models.Appointment{
		testAppointment("military", "10:15", today),
	}}
	s := newTestScheduler(store, &fakeNotifier{}, now)

	s.RunOnce(context.Background())

	assert.Equal(t, []string{"military"}, store.restamped)
}

func TestCombineDateTime(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	cases := map[string]time.Time{
		"10:00 AM":  time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		"2:30 pm":   time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
		"2:30PM":    time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
		"14:30":     time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
		" 9:00 AM ": time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	for slot, want := range cases {
		got, err := CombineDateTime(date, slot)
		require.NoError(t, err, "slot %q", slot)
		assert.Equal(t, want, got, "slot %q", slot)
	}

	_, err := CombineDateTime(date, "half past ten")
	assert.Error(t, err)
}
