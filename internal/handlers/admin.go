package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-hmis-server/internal/config"
	"hospital-hmis-server/internal/logger"
	"hospital-hmis-server/internal/models"
	"hospital-hmis-server/internal/utils"
	"hospital-hmis-server/internal/workflow"
)

// AdminHandler covers the admin console endpoints: raw appointment CRUD,
// user management, and dashboard stats.
type AdminHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log *logger.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *gorm.DB, cfg *config.Config, log *logger.Logger) *AdminHandler {
	return &AdminHandler{DB: db, Cfg: cfg, Log: log}
}

// GetAllAppointments returns every appointment, newest first.
func (h *AdminHandler) GetAllAppointments(c *gin.Context) {
	var appointments []models.Appointment
	if err := h.DB.Order("created_at desc").Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}
	utils.Success(c, "Appointments fetched successfully", gin.H{
		"appointments": appointments,
		"count":        len(appointments),
	})
}

// UpdateAppointmentRequest is the body of PUT /api/admin/appointments/:id.
// All fields are optional; only supplied fields are written.
type UpdateAppointmentRequest struct {
	PatientName *string `json:"patientName"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone"`
	Department  *string `json:"department"`
	Doctor      *string `json:"doctor"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Symptoms    *string `json:"symptoms"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	Notes       *string `json:"notes"`
}

// UpdateAppointment lets an admin edit arbitrary appointment fields.
// Status and priority values are normalized; unknown values are rejected
// rather than written through.
func (h *AdminHandler) UpdateAppointment(c *gin.Context) {
	var req UpdateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	updates := map[string]interface{}{}
	if req.PatientName != nil {
		updates["patient_name"] = strings.TrimSpace(*req.PatientName)
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Department != nil {
		updates["department"] = *req.Department
	}
	if req.Doctor != nil {
		doctor := strings.TrimSpace(*req.Doctor)
		if doctor == "" {
			doctor = models.DoctorUnassigned
		}
		updates["doctor"] = doctor
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			utils.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		updates["date"] = date
	}
	if req.Time != nil {
		updates["time"] = strings.TrimSpace(*req.Time)
	}
	if req.Symptoms != nil {
		updates["symptoms"] = *req.Symptoms
	}
	if req.Status != nil {
		status, ok := models.ParseAppointmentStatus(*req.Status)
		if !ok {
			utils.BadRequest(c, "Invalid status: "+*req.Status)
			return
		}
		updates["status"] = status
	}
	if req.Priority != nil {
		priority, ok := models.ParsePriority(*req.Priority)
		if !ok {
			utils.BadRequest(c, "Invalid priority: "+*req.Priority)
			return
		}
		updates["priority"] = priority
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) == 0 {
		utils.BadRequest(c, "No fields to update")
		return
	}

	if err := workflow.Apply(h.DB, &appointment, updates); err != nil {
		if err == workflow.ErrConflict {
			utils.Conflict(c, "Appointment was modified concurrently, please retry")
		} else {
			utils.InternalServerError(c, "Failed to update appointment: "+err.Error())
		}
		return
	}
	if err := h.DB.First(&appointment, "id = ?", appointment.ID).Error; err != nil {
		utils.InternalServerError(c, "Failed to reload appointment: "+err.Error())
		return
	}

	utils.Success(c, "Appointment updated successfully", gin.H{"appointment": appointment})
}

// DeleteAppointment permanently removes an appointment regardless of its
// status. This is the admin escape hatch; patients cancel via status change.
func (h *AdminHandler) DeleteAppointment(c *gin.Context) {
	id := c.Param("id")
	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Unscoped().Delete(&appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete appointment: "+err.Error())
		return
	}
	h.Log.WithAppointment(id).Warn("appointment permanently deleted by admin")

	utils.Success(c, "Appointment deleted successfully", gin.H{"id": id})
}

// GetUsers returns all user accounts without password hashes.
func (h *AdminHandler) GetUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Order("created_at desc").Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}
	sanitized := make([]models.UserSanitized, 0, len(users))
	for i := range users {
		sanitized = append(sanitized, users[i].Sanitize())
	}
	utils.Success(c, "Users fetched successfully", gin.H{
		"users": sanitized,
		"count": len(sanitized),
	})
}

// CreateUserRequest is the body of POST /api/admin/users.
type CreateUserRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
}

// CreateUser lets an admin provision an account with an explicit role.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	role, ok := models.ParseRole(req.Role)
	if !ok {
		if req.Role == "" {
			role = models.RoleUser
		} else {
			utils.BadRequest(c, "Invalid role: "+req.Role)
			return
		}
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var existing models.User
	if err := h.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	}

	user := models.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		Role:      role,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password")
		return
	}
	if err := h.DB.Create(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return
	}

	utils.Created(c, "User created successfully", gin.H{"user": user.Sanitize()})
}

// UpdateUserRequest is the body of PUT /api/admin/users/:id.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone"`
	Role      *string `json:"role"`
	Password  *string `json:"password" binding:"omitempty,min=6"`
}

// UpdateUser edits a user account; role changes are normalized.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Role != nil {
		role, ok := models.ParseRole(*req.Role)
		if !ok {
			utils.BadRequest(c, "Invalid role: "+*req.Role)
			return
		}
		user.Role = role
	}
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			utils.InternalServerError(c, "Failed to hash password")
			return
		}
	}

	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update user: "+err.Error())
		return
	}

	utils.Success(c, "User updated successfully", gin.H{"user": user.Sanitize()})
}

// DeleteUser removes a user account and revokes its refresh tokens.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	var user models.User
	if err := h.DB.First(&user, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
		utils.InternalServerError(c, "Failed to revoke tokens: "+err.Error())
		return
	}
	if err := h.DB.Unscoped().Delete(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete user: "+err.Error())
		return
	}

	utils.Success(c, "User deleted successfully", gin.H{"id": id})
}

// GetStats aggregates counts for the admin dashboard.
func (h *AdminHandler) GetStats(c *gin.Context) {
	type countRow struct {
		Key   string
		Count int64
	}

	var total int64
	if err := h.DB.Model(&models.Appointment{}).Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to compute stats: "+err.Error())
		return
	}

	byStatus := map[string]int64{}
	var statusRows []countRow
	if err := h.DB.Model(&models.Appointment{}).
		Select("status as `key`, count(*) as count").
		Group("status").Scan(&statusRows).Error; err != nil {
		utils.InternalServerError(c, "Failed to compute stats: "+err.Error())
		return
	}
	for _, row := range statusRows {
		byStatus[row.Key] = row.Count
	}

	byPriority := map[string]int64{}
	var priorityRows []countRow
	if err := h.DB.Model(&models.Appointment{}).
		Select("priority as `key`, count(*) as count").
		Group("priority").Scan(&priorityRows).Error; err != nil {
		utils.InternalServerError(c, "Failed to compute stats: "+err.Error())
		return
	}
	for _, row := range priorityRows {
		byPriority[row.Key] = row.Count
	}

	byDepartment := map[string]int64{}
	var departmentRows []countRow
	if err := h.DB.Model(&models.Appointment{}).
		Select("department as `key`, count(*) as count").
		Group("department").Scan(&departmentRows).Error; err != nil {
		utils.InternalServerError(c, "Failed to compute stats: "+err.Error())
		return
	}
	for _, row := range departmentRows {
		byDepartment[row.Key] = row.Count
	}

	var forwarded int64
	if err := h.DB.Model(&models.Appointment{}).
		Where("forwarded_to_super_admin = ? AND super_admin_status = ?", true, models.SuperAdminPending).
		Count(&forwarded).Error; err != nil {
		utils.InternalServerError(c, "Failed to compute stats: "+err.Error())
		return
	}

	utils.Success(c, "Stats fetched successfully", gin.H{
		"total":        total,
		"byStatus":     byStatus,
		"byPriority":   byPriority,
		"byDepartment": byDepartment,
		"forwarded":    forwarded,
	})
}
