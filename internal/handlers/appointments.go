package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-hmis-server/internal/config"
	"hospital-hmis-server/internal/logger"
	"hospital-hmis-server/internal/middleware"
	"hospital-hmis-server/internal/models"
	"hospital-hmis-server/internal/notify"
	"hospital-hmis-server/internal/utils"
	"hospital-hmis-server/internal/workflow"
)

// AppointmentHandler handles booking and patient-facing appointment requests.
type AppointmentHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Notify *notify.Dispatcher
	Log    *logger.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, cfg *config.Config, dispatcher *notify.Dispatcher, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Cfg: cfg, Notify: dispatcher, Log: log}
}

// BookAppointmentRequest accepts both the patientName and the
// firstName/lastName form, and both date/preferredDate field pairs.
type BookAppointmentRequest struct {
	PatientName   string  `json:"patientName"`
	FirstName     string  `json:"firstName"`
	LastName      string  `json:"lastName"`
	Email         string  `json:"email" binding:"required,email"`
	Phone         string  `json:"phone" binding:"required,min=10"`
	Department    string  `json:"department" binding:"required"`
	Doctor        string  `json:"doctor"`
	Date          string  `json:"date"`
	PreferredDate string  `json:"preferredDate"`
	Time          string  `json:"time"`
	PreferredTime string  `json:"preferredTime"`
	Message       string  `json:"message"`
	Symptoms      string  `json:"symptoms"`
	UserID        *string `json:"userId"`
}

// CreateAppointment books a new appointment in PENDING/NORMAL state and
// fires best-effort notifications. Notification failure never fails the
// booking; it is surfaced only in the response payload.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req BookAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patientName := strings.TrimSpace(req.PatientName)
	if patientName == "" {
		patientName = strings.TrimSpace(req.FirstName + " " + req.LastName)
	}
	if patientName == "" {
		utils.BadRequest(c, "Either patientName or firstName and lastName is required")
		return
	}

	dateStr := req.Date
	if dateStr == "" {
		dateStr = req.PreferredDate
	}
	if dateStr == "" {
		utils.BadRequest(c, "Date is required")
		return
	}
	date, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD: "+err.Error())
		return
	}

	slot := req.Time
	if slot == "" {
		slot = req.PreferredTime
	}
	if slot == "" {
		slot = "9:00 AM"
	}

	symptoms := req.Symptoms
	if symptoms == "" {
		symptoms = req.Message
	}

	doctor := strings.TrimSpace(req.Doctor)
	if doctor == "" {
		doctor = models.DoctorUnassigned
	}

	// First-writer-wins slot check, only meaningful once a doctor is
	// actually assigned.
	if doctor != models.DoctorUnassigned {
		var existing models.Appointment
		err := h.DB.Where("doctor = ? AND date = ? AND time = ?", doctor, date, slot).
			Where("status IN ?", []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}).
			First(&existing).Error
		if err == nil {
			utils.BadRequest(c, "This time slot is already booked. Please choose a different time.")
			return
		}
		if err != gorm.ErrRecordNotFound {
			utils.InternalServerError(c, "Database error checking slot: "+err.Error())
			return
		}
	}

	appointment := models.Appointment{
		PatientName:      patientName,
		Email:            req.Email,
		Phone:            req.Phone,
		Department:       req.Department,
		Doctor:           doctor,
		Date:             date,
		Time:             slot,
		Symptoms:         symptoms,
		Status:           models.StatusPending,
		Priority:         models.PriorityNormal,
		SuperAdminStatus: models.SuperAdminNone,
		UserID:           req.UserID,
	}

	if err := h.DB.Create(&appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to create appointment: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	notifications := gin.H{
		"email":    h.Notify.SendEmail(ctx, appointment.Email, notify.BookedEmail(&appointment)),
		"sms":      h.Notify.SendSMS(ctx, appointment.Phone, notify.BookedSMS(&appointment)),
		"whatsapp": h.Notify.SendWhatsApp(ctx, appointment.Phone, notify.BookedSMS(&appointment)),
	}
	if h.Cfg.Notify.AdminEmail != "" {
		notifications["adminEmail"] = h.Notify.SendEmail(ctx, h.Cfg.Notify.AdminEmail, notify.NewBookingAdminEmail(&appointment))
	}

	utils.Created(c, "Appointment booked successfully", gin.H{
		"appointment":   appointment,
		"notifications": notifications,
	})
}

// GetAppointments lists appointments for the caller: admins see everything,
// everyone else sees appointments matching their account email.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	query := h.DB.Order("created_at desc")

	var appointments []models.Appointment
	if role == models.RoleAdmin || role == models.RoleSuperAdmin {
		if err := query.Find(&appointments).Error; err != nil {
			utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
			return
		}
	} else {
		var user models.User
		if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
			utils.Unauthorized(c, "User not found")
			return
		}
		// Appointments are keyed informally by email as well as by the
		// optional user ID.
		if err := query.Where("user_id = ? OR email = ?", userID, user.Email).Find(&appointments).Error; err != nil {
			utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
			return
		}
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID returns a single appointment. Admins can read any;
// others only their own.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointmentID := c.Param("id")

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)
	if role != models.RoleAdmin && role != models.RoleSuperAdmin {
		var user models.User
		if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
			utils.Unauthorized(c, "User not found")
			return
		}
		ownsByID := appointment.UserID != nil && *appointment.UserID == userID
		if !ownsByID && appointment.Email != user.Email {
			utils.Forbidden(c, "You are not authorized to view this appointment")
			return
		}
	}

	utils.Success(c, "Appointment fetched successfully", appointment)
}

// GetUserAppointments lists appointments by patient email, the informal key
// the booking flow uses for unauthenticated patients.
func (h *AppointmentHandler) GetUserAppointments(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		utils.BadRequest(c, "No email provided")
		return
	}

	var appointments []models.Appointment
	if err := h.DB.Where("email = ?", email).Order("date asc").Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}
	utils.Success(c, "Appointments fetched successfully", appointments)
}

// RescheduleRequest updates a pending appointment's schedule. The ID in the
// body is a fallback for clients that do not use the path parameter.
type RescheduleRequest struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// RescheduleAppointment lets a patient move a still-pending appointment.
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	var req RescheduleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	id := c.Param("id")
	if id == "" {
		id = req.ID
	}
	if id == "" {
		utils.BadRequest(c, "Appointment ID is required")
		return
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if appointment.Status != models.StatusPending {
		utils.BadRequest(c, "Only pending appointments can be rescheduled")
		return
	}

	updates := map[string]interface{}{}
	if req.Date != "" {
		date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
		if err != nil {
			utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD: "+err.Error())
			return
		}
		updates["date"] = date
	}
	if req.Time != "" {
		updates["time"] = req.Time
	}
	if len(updates) == 0 {
		utils.BadRequest(c, "Nothing to update")
		return
	}

	if err := workflow.Apply(h.DB, &appointment, updates); err != nil {
		if err == workflow.ErrConflict {
			utils.Conflict(c, "Appointment was modified concurrently, please retry")
		} else {
			utils.InternalServerError(c, "Failed to reschedule appointment: "+err.Error())
		}
		return
	}

	h.DB.First(&appointment, "id = ?", appointment.ID)
	utils.Success(c, "Appointment rescheduled successfully", appointment)
}

// CancelAppointment is the patient-initiated soft cancel: a status change,
// never a row delete.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		utils.BadRequest(c, "Appointment ID is required")
		return
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	updates := map[string]interface{}{"status": models.StatusCancelled}
	if err := workflow.Apply(h.DB, &appointment, updates); err != nil {
		if err == workflow.ErrConflict {
			utils.Conflict(c, "Appointment was modified concurrently, please retry")
		} else {
			utils.InternalServerError(c, "Failed to cancel appointment: "+err.Error())
		}
		return
	}

	h.DB.First(&appointment, "id = ?", appointment.ID)
	utils.Success(c, "Appointment cancelled successfully", appointment)
}
