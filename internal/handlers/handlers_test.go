package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hospital-hmis-server/internal/config"
	"hospital-hmis-server/internal/logger"
	"hospital-hmis-server/internal/models"
	"hospital-hmis-server/internal/notify"
	"hospital-hmis-server/internal/scheduler"
)

// newTestDB opens a per-test in-memory database with the production schema.
// The shared-cache DSN keeps every pooled connection on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Department{},
		&models.Appointment{},
	))
	return db
}

// testDispatcher has no providers configured: every send returns a failed
// Result without touching the network, which is all the handlers require.
func testDispatcher(log *logger.Logger) *notify.Dispatcher {
	return notify.NewDispatcher(config.NotifyConfig{}, log)
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bookingBody(doctor string) gin.H {
	return gin.H{
		"patientName": "Asha Rao",
		"email":       "asha@example.com",
		"phone":       "9876543210",
		"department":  "Cardiology",
		"doctor":      doctor,
		"date":        "2026-09-01",
		"time":        "10:00 AM",
		"symptoms":    "chest pain",
	}
}

func TestCreateAppointmentSlotConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	log := logger.New("error")
	h := NewAppointmentHandler(db, &config.Config{}, testDispatcher(log), log)

	r := gin.New()
	r.POST("/api/appointments", h.CreateAppointment)

	w := doJSON(t, r, http.MethodPost, "/api/appointments", bookingBody("Dr. Sharma"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Same (doctor, date, time) while the first is still PENDING.
	w = doJSON(t, r, http.MethodPost, "/api/appointments", bookingBody("Dr. Sharma"))
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	// A different slot with the same doctor is fine.
	other := bookingBody("Dr. Sharma")
	other["time"] = "11:00 AM"
	w = doJSON(t, r, http.MethodPost, "/api/appointments", other)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestCreateAppointmentUnassignedDoctorSkipsSlotCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	log := logger.New("error")
	h := NewAppointmentHandler(db, &config.Config{}, testDispatcher(log), log)

	r := gin.New()
	r.POST("/api/appointments", h.CreateAppointment)

	for i := 0; i < 2; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/appointments", bookingBody(""))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	var count int64
	require.NoError(t, db.Model(&models.Appointment{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestAdminDeleteAppointmentIsUnconditional(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	log := logger.New("error")
	h := NewAdminHandler(db, &config.Config{}, log)

	apt := models.Appointment{
		PatientName: "Asha Rao",
		Email:       "asha@example.com",
		Phone:       "9876543210",
		Department:  "Cardiology",
		Doctor:      "Dr. Sharma",
		Date:        time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local),
		Time:        "10:00 AM",
		Status:      models.StatusConfirmed,
	}
	require.NoError(t, db.Create(&apt).Error)

	r := gin.New()
	r.DELETE("/api/admin/appointments/:id", h.DeleteAppointment)

	// Status never gates the admin delete; the row is gone outright.
	w := doJSON(t, r, http.MethodDelete, "/api/admin/appointments/"+apt.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var count int64
	require.NoError(t, db.Unscoped().Model(&models.Appointment{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	w = doJSON(t, r, http.MethodDelete, "/api/admin/appointments/"+apt.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// countingNotifier records sends for the reminder step of the end-to-end test.
type countingNotifier struct {
	emails, sms, whatsapp int
}

func (n *countingNotifier) SendEmail(ctx context.Context, to string, msg notify.EmailMessage) notify.Result {
	n.emails++
	return notify.Result{Channel: notify.ChannelEmail, Success: true}
}

func (n *countingNotifier) SendSMS(ctx context.Context, phone, message string) notify.Result {
	n.sms++
	return notify.Result{Channel: notify.ChannelSMS, Success: true}
}

func (n *countingNotifier) SendWhatsApp(ctx context.Context, phone, message string) notify.Result {
	n.whatsapp++
	return notify.Result{Channel: notify.ChannelWhatsApp, Success: true}
}

func TestBookApproveRemindFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	log := logger.New("error")
	dispatcher := testDispatcher(log)
	cfg := &config.Config{}

	aptHandler := NewAppointmentHandler(db, cfg, dispatcher, log)
	wfHandler := NewWorkflowHandler(db, cfg, dispatcher, log)

	r := gin.New()
	r.POST("/api/appointments", aptHandler.CreateAppointment)
	r.POST("/api/appointments/:id/admin-action", wfHandler.AdminAction)

	// Book for tomorrow so the real-clock day-before pass picks it up.
	body := bookingBody("Dr. Sharma")
	body["date"] = time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	w := doJSON(t, r, http.MethodPost, "/api/appointments", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var apt models.Appointment
	require.NoError(t, db.First(&apt).Error)
	assert.Equal(t, models.StatusPending, apt.Status)
	assert.Equal(t, models.PriorityNormal, apt.Priority)

	w = doJSON(t, r, http.MethodPost, "/api/appointments/"+apt.ID+"/admin-action",
		gin.H{"action": "approve", "feedback": "Arrive early"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, db.First(&apt, "id = ?", apt.ID).Error)
	assert.Equal(t, models.StatusConfirmed, apt.Status)
	assert.Equal(t, "Arrive early", apt.Notes)
	assert.False(t, apt.ForwardedToSuperAdmin)
	assert.EqualValues(t, 1, apt.Revision)

	notifier := &countingNotifier{}
	sched := scheduler.New(scheduler.NewStore(db), notifier, log, time.Hour)
	sched.RunOnce(context.Background())

	require.NoError(t, db.First(&apt, "id = ?", apt.ID).Error)
	assert.True(t, apt.ReminderSent)
	require.NotNil(t, apt.ReminderTime)
	assert.EqualValues(t, 2, apt.Revision)
	assert.Equal(t, 1, notifier.emails)
	assert.Equal(t, 1, notifier.sms)
	assert.Equal(t, 1, notifier.whatsapp)

	// Running the pass again must not re-fire the 24h reminder.
	sched.RunOnce(context.Background())
	assert.Equal(t, 1, notifier.emails)
}
