package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-hmis-server/internal/logger"
	"hospital-hmis-server/internal/models"
	"hospital-hmis-server/internal/utils"
)

// DepartmentHandler serves department reference data.
type DepartmentHandler struct {
	DB  *gorm.DB
	Log *logger.Logger
}

// NewDepartmentHandler creates a new DepartmentHandler.
func NewDepartmentHandler(db *gorm.DB, log *logger.Logger) *DepartmentHandler {
	return &DepartmentHandler{DB: db, Log: log}
}

// GetDepartments lists active departments for the booking form. Public.
func (h *DepartmentHandler) GetDepartments(c *gin.Context) {
	var departments []models.Department
	if err := h.DB.Where("is_active = ?", true).Order("name asc").Find(&departments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch departments: "+err.Error())
		return
	}
	utils.Success(c, "Departments fetched successfully", gin.H{
		"departments": departments,
		"count":       len(departments),
	})
}

// CreateDepartmentRequest is the body of POST /api/departments.
type CreateDepartmentRequest struct {
	Name           string `json:"name" binding:"required"`
	Description    string `json:"description"`
	HeadDoctor     string `json:"headDoctor"`
	AvailableDays  string `json:"availableDays"`
	AvailableHours string `json:"availableHours"`
}

// CreateDepartment adds a department. Admin only; schedule fields fall back
// to the hospital-wide defaults when omitted.
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req CreateDepartmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	var existing models.Department
	if err := h.DB.Where("name = ?", name).First(&existing).Error; err == nil {
		utils.BadRequest(c, "Department already exists: "+name)
		return
	}

	department := models.Department{
		Name:           name,
		Description:    req.Description,
		HeadDoctor:     req.HeadDoctor,
		AvailableDays:  req.AvailableDays,
		AvailableHours: req.AvailableHours,
		IsActive:       true,
	}
	if department.AvailableDays == "" {
		department.AvailableDays = "Monday-Saturday"
	}
	if department.AvailableHours == "" {
		department.AvailableHours = "8:00 AM - 2:00 PM"
	}

	if err := h.DB.Create(&department).Error; err != nil {
		utils.InternalServerError(c, "Failed to create department: "+err.Error())
		return
	}

	utils.Created(c, "Department created successfully", gin.H{"department": department})
}

// defaultDepartments is the seed set for a fresh installation.
var defaultDepartments = []models.Department{
	{Name: "Cardiology", Description: "Heart and cardiovascular care", HeadDoctor: "Dr. Sharma"},
	{Name: "Neurology", Description: "Brain, spine and nervous system", HeadDoctor: "Dr. Mehta"},
	{Name: "Orthopedics", Description: "Bones, joints and musculoskeletal care", HeadDoctor: "Dr. Reddy"},
	{Name: "Pediatrics", Description: "Medical care for infants and children", HeadDoctor: "Dr. Iyer"},
	{Name: "Dermatology", Description: "Skin, hair and nail conditions", HeadDoctor: "Dr. Kapoor"},
	{Name: "General Medicine", Description: "Primary care and general consultations", HeadDoctor: "Dr. Nair"},
	{Name: "ENT", Description: "Ear, nose and throat care", HeadDoctor: "Dr. Bose"},
	{Name: "Ophthalmology", Description: "Eye care and vision services", HeadDoctor: "Dr. Rao"},
}

// Initialize seeds the default departments. Safe to call repeatedly:
// departments that already exist are left untouched.
func (h *DepartmentHandler) Initialize(c *gin.Context) {
	created := 0
	for _, d := range defaultDepartments {
		dept := d
		dept.AvailableDays = "Monday-Saturday"
		dept.AvailableHours = "8:00 AM - 2:00 PM"
		dept.IsActive = true
		result := h.DB.Where(models.Department{Name: dept.Name}).FirstOrCreate(&dept)
		if result.Error != nil {
			utils.InternalServerError(c, "Failed to seed departments: "+result.Error.Error())
			return
		}
		if result.RowsAffected > 0 {
			created++
		}
	}
	h.Log.WithComponent("departments").Infof("seeded departments, %d created", created)

	utils.Success(c, "Departments initialized successfully", gin.H{
		"created": created,
		"total":   len(defaultDepartments),
	})
}
