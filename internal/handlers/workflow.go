package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-hmis-server/internal/config"
	"hospital-hmis-server/internal/logger"
	"hospital-hmis-server/internal/models"
	"hospital-hmis-server/internal/notify"
	"hospital-hmis-server/internal/utils"
	"hospital-hmis-server/internal/workflow"
)

// WorkflowHandler owns the admin and super-admin status transitions.
type WorkflowHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Notify *notify.Dispatcher
	Log    *logger.Logger
}

// NewWorkflowHandler creates a new WorkflowHandler.
func NewWorkflowHandler(db *gorm.DB, cfg *config.Config, dispatcher *notify.Dispatcher, log *logger.Logger) *WorkflowHandler {
	return &WorkflowHandler{DB: db, Cfg: cfg, Notify: dispatcher, Log: log}
}

// pastTense maps an action verb to its past tense for response messages.
func pastTense(action string) string {
	switch action {
	case "approve":
		return "approved"
	case "reject":
		return "rejected"
	case "comment":
		return "commented on"
	default:
		return action + "ed"
	}
}

func (h *WorkflowHandler) loadAppointment(c *gin.Context) (*models.Appointment, bool) {
	id := c.Param("id")
	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &appointment, true
}

func (h *WorkflowHandler) apply(c *gin.Context, apt *models.Appointment, updates map[string]interface{}) bool {
	if err := workflow.Apply(h.DB, apt, updates); err != nil {
		if err == workflow.ErrConflict {
			utils.Conflict(c, "Appointment was modified concurrently, please retry")
		} else {
			utils.InternalServerError(c, "Failed to update appointment: "+err.Error())
		}
		return false
	}
	// Reload so the response and notifications carry the written state.
	if err := h.DB.First(apt, "id = ?", apt.ID).Error; err != nil {
		utils.InternalServerError(c, "Failed to reload appointment: "+err.Error())
		return false
	}
	return true
}

// AdminActionRequest is the body of POST /api/appointments/:id/admin-action.
type AdminActionRequest struct {
	Action   string `json:"action" binding:"required"`
	Feedback string `json:"feedback" binding:"max=500"`
}

// AdminAction approves or rejects a pending appointment and fans out
// notifications. Each channel is attempted independently; no failure blocks
// the others or the response.
func (h *WorkflowHandler) AdminAction(c *gin.Context) {
	var req AdminActionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	action, ok := workflow.ParseAdminAction(req.Action)
	if !ok {
		utils.BadRequest(c, "Invalid action: "+req.Action)
		return
	}

	appointment, ok := h.loadAppointment(c)
	if !ok {
		return
	}

	if !h.apply(c, appointment, workflow.AdminTransition(action, req.Feedback)) {
		return
	}
	h.Log.WithAppointment(appointment.ID).Infof("admin %s appointment", pastTense(string(action)))

	ctx := c.Request.Context()
	var email notify.EmailMessage
	var sms string
	if action == workflow.AdminApprove {
		email = notify.ApprovedEmail(appointment, req.Feedback)
		sms = notify.ConfirmedSMS(appointment)
	} else {
		email = notify.RejectedEmail(appointment, req.Feedback)
		sms = notify.RejectedSMS(appointment, req.Feedback)
	}

	notifications := gin.H{
		"email":    h.Notify.SendEmail(ctx, appointment.Email, email),
		"sms":      h.Notify.SendSMS(ctx, appointment.Phone, sms),
		"whatsapp": h.Notify.SendWhatsApp(ctx, appointment.Phone, sms),
	}
	if h.Cfg.Notify.AdminEmail != "" {
		notifications["adminConfirmation"] = h.Notify.SendEmail(ctx, h.Cfg.Notify.AdminEmail,
			notify.AdminActionConfirmationEmail(appointment, pastTense(string(action))))
	}

	utils.Success(c, "Appointment "+pastTense(string(action))+" successfully", gin.H{
		"appointment":   appointment,
		"notifications": notifications,
	})
}

// ForwardRequest is the body of POST /api/appointments/:id/forward.
type ForwardRequest struct {
	AdminComment string `json:"adminComment" binding:"max=500"`
}

// Forward escalates an appointment to the super admin: priority is forced
// to URGENT and prior admin notes are overwritten with the forwarding
// annotation. There is no reversal path.
func (h *WorkflowHandler) Forward(c *gin.Context) {
	var req ForwardRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, ok := h.loadAppointment(c)
	if !ok {
		return
	}

	if !h.apply(c, appointment, workflow.ForwardTransition(req.AdminComment)) {
		return
	}
	h.Log.WithAppointment(appointment.ID).Info("appointment forwarded to super admin, priority raised to URGENT")

	ctx := c.Request.Context()
	sms := notify.ForwardedSMS(appointment, req.AdminComment)
	notifications := gin.H{
		"email":    h.Notify.SendEmail(ctx, appointment.Email, notify.ForwardedEmail(appointment, req.AdminComment)),
		"sms":      h.Notify.SendSMS(ctx, appointment.Phone, sms),
		"whatsapp": h.Notify.SendWhatsApp(ctx, appointment.Phone, sms),
	}
	if h.Cfg.Notify.SuperAdminEmail != "" {
		notifications["superAdmin"] = h.Notify.SendEmail(ctx, h.Cfg.Notify.SuperAdminEmail,
			notify.ForwardedSuperAdminEmail(appointment, req.AdminComment))
	}

	utils.Success(c, "Appointment forwarded to Super Admin successfully", gin.H{
		"appointment":     appointment,
		"priorityChanged": models.PriorityUrgent,
		"notifications":   notifications,
	})
}

// SuperAdminActionRequest is the body of POST
// /api/appointments/:id/super-admin-action (and its legacy alias).
type SuperAdminActionRequest struct {
	Action   string `json:"action" binding:"required"`
	Feedback string `json:"feedback" binding:"max=500"`
}

// SuperAdminAction resolves a forwarded appointment: approve and reject
// close it, comment routes it back to the admin with status untouched.
func (h *WorkflowHandler) SuperAdminAction(c *gin.Context) {
	var req SuperAdminActionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	action, ok := workflow.ParseSuperAdminAction(req.Action)
	if !ok {
		utils.BadRequest(c, "Invalid action: "+req.Action)
		return
	}

	appointment, ok := h.loadAppointment(c)
	if !ok {
		return
	}

	if !h.apply(c, appointment, workflow.SuperAdminTransition(action, req.Feedback)) {
		return
	}
	h.Log.WithAppointment(appointment.ID).Infof("super admin %s appointment", pastTense(string(action)))

	ctx := c.Request.Context()
	notifications := gin.H{}

	switch action {
	case workflow.SuperAdminApprove, workflow.SuperAdminReject:
		approved := action == workflow.SuperAdminApprove
		notifications["email"] = h.Notify.SendEmail(ctx, appointment.Email,
			notify.SuperAdminDecisionEmail(appointment, approved, appointment.SuperAdminFeedback))
		var sms string
		if approved {
			sms = notify.ConfirmedSMS(appointment)
		} else {
			sms = notify.RejectedSMS(appointment, appointment.SuperAdminFeedback)
		}
		notifications["sms"] = h.Notify.SendSMS(ctx, appointment.Phone, sms)
		notifications["whatsapp"] = h.Notify.SendWhatsApp(ctx, appointment.Phone, sms)
		if h.Cfg.Notify.AdminEmail != "" {
			notifications["adminConfirmation"] = h.Notify.SendEmail(ctx, h.Cfg.Notify.AdminEmail,
				notify.AdminActionConfirmationEmail(appointment, pastTense(string(action))+" by super admin"))
		}
	case workflow.SuperAdminComment:
		// Comment is staff-internal: only the admin hears about it.
		if h.Cfg.Notify.AdminEmail != "" {
			notifications["adminEmail"] = h.Notify.SendEmail(ctx, h.Cfg.Notify.AdminEmail,
				notify.SuperAdminCommentEmail(appointment, appointment.SuperAdminFeedback))
		}
	}

	utils.Success(c, "Appointment "+pastTense(string(action))+" successfully", gin.H{
		"appointment":   appointment,
		"notifications": notifications,
	})
}

// GetForwardedAppointments lists appointments waiting on the super admin.
func (h *WorkflowHandler) GetForwardedAppointments(c *gin.Context) {
	var appointments []models.Appointment
	err := h.DB.
		Where("forwarded_to_super_admin = ? AND super_admin_status = ?", true, models.SuperAdminPending).
		Order("created_at desc").
		Find(&appointments).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch forwarded appointments: "+err.Error())
		return
	}

	utils.Success(c, "Forwarded appointments fetched successfully", gin.H{
		"appointments": appointments,
		"count":        len(appointments),
	})
}
