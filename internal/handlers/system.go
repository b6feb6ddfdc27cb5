package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"hospital-hmis-server/internal/logger"
	"hospital-hmis-server/internal/notify"
	"hospital-hmis-server/internal/scheduler"
	"hospital-hmis-server/internal/utils"
)

// SystemHandler exposes operational endpoints: scheduler control and
// messaging provider diagnostics.
type SystemHandler struct {
	Scheduler *scheduler.Scheduler
	Notify    *notify.Dispatcher
	Log       *logger.Logger

	// lifecycle bounds the scheduler goroutine; it outlives any single
	// request, so request contexts must not be used to start it.
	lifecycle context.Context
}

// NewSystemHandler creates a new SystemHandler. lifecycle should be the
// process-wide context so the scheduler stops on shutdown.
func NewSystemHandler(lifecycle context.Context, sched *scheduler.Scheduler, dispatcher *notify.Dispatcher, log *logger.Logger) *SystemHandler {
	return &SystemHandler{Scheduler: sched, Notify: dispatcher, Log: log, lifecycle: lifecycle}
}

// StartScheduler starts the reminder loop if it is not already running.
// Calling it repeatedly is harmless.
func (h *SystemHandler) StartScheduler(c *gin.Context) {
	if h.Scheduler.Start(h.lifecycle) {
		utils.Success(c, "Reminder scheduler started", gin.H{"running": true})
		return
	}
	utils.Success(c, "Reminder scheduler already running", gin.H{"running": true})
}

// TriggerReminders runs one reminder sweep immediately, independent of the
// ticker. Useful for testing reminder delivery without waiting an hour.
func (h *SystemHandler) TriggerReminders(c *gin.Context) {
	h.Scheduler.RunOnce(c.Request.Context())
	utils.Success(c, "Reminder sweep completed", gin.H{
		"schedulerRunning": h.Scheduler.Started(),
	})
}

// MessagingStatus reports which notification providers are configured.
func (h *SystemHandler) MessagingStatus(c *gin.Context) {
	utils.Success(c, "Messaging status", h.Notify.Status())
}

// TestMessagingRequest is the body of POST /api/test-messaging.
type TestMessagingRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Message     string `json:"message"`
}

// TestMessaging sends a test SMS and WhatsApp message to the given number
// and reports the per-channel outcome.
func (h *SystemHandler) TestMessaging(c *gin.Context) {
	var req TestMessagingRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	message := req.Message
	if message == "" {
		message = "Test message from the hospital appointment system."
	}

	ctx := c.Request.Context()
	utils.Success(c, "Test messages dispatched", gin.H{
		"sms":      h.Notify.SendSMS(ctx, req.PhoneNumber, message),
		"whatsapp": h.Notify.SendWhatsApp(ctx, req.PhoneNumber, message),
	})
}
