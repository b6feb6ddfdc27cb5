package models

import (
	"strings"
	"time"
)

// AppointmentStatus is the workflow state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCancelled AppointmentStatus = "CANCELLED"
	StatusCompleted AppointmentStatus = "COMPLETED"
)

// ParseAppointmentStatus normalizes a status string at the boundary so that
// "pending" and "PENDING" cannot diverge in the database.
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch AppointmentStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, true
	case StatusConfirmed:
		return StatusConfirmed, true
	case StatusCancelled:
		return StatusCancelled, true
	case StatusCompleted:
		return StatusCompleted, true
	}
	return "", false
}

// Priority is the escalation level of an appointment.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// ParsePriority normalizes a priority string at the boundary.
func ParsePriority(s string) (Priority, bool) {
	switch Priority(strings.ToUpper(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow, true
	case PriorityNormal:
		return PriorityNormal, true
	case PriorityHigh:
		return PriorityHigh, true
	case PriorityUrgent:
		return PriorityUrgent, true
	}
	return "", false
}

// SuperAdminStatus tracks the escalation review state after an admin forwards
// an appointment.
type SuperAdminStatus string

const (
	SuperAdminNone      SuperAdminStatus = "NONE"
	SuperAdminPending   SuperAdminStatus = "PENDING"
	SuperAdminApproved  SuperAdminStatus = "APPROVED"
	SuperAdminRejected  SuperAdminStatus = "REJECTED"
	SuperAdminCommented SuperAdminStatus = "COMMENTED"
)

// DoctorUnassigned is the placeholder stored when a booking names no doctor.
// Slot-conflict checks are skipped for this value.
const DoctorUnassigned = "To be assigned"

// Appointment represents a patient's appointment request and its progress
// through the admin / super-admin review workflow.
type Appointment struct {
	BaseModel
	PatientName string    `gorm:"size:255;not null" json:"patientName"`
	Email       string    `gorm:"size:255;not null;index" json:"email"`
	Phone       string    `gorm:"size:32;not null" json:"phone"`
	Department  string    `gorm:"size:255;not null" json:"department"`
	Doctor      string    `gorm:"size:255;default:'To be assigned'" json:"doctor"`
	Date        time.Time `gorm:"index" json:"date"`
	Time        string    `gorm:"size:50" json:"time"`
	Symptoms    string    `gorm:"type:text" json:"symptoms"`

	Status   AppointmentStatus `gorm:"size:20;default:'PENDING';index" json:"status"`
	Priority Priority          `gorm:"size:20;default:'NORMAL'" json:"priority"`
	Notes    string            `gorm:"type:text" json:"notes"`

	ForwardedToSuperAdmin bool             `gorm:"default:false;index" json:"forwardedToSuperAdmin"`
	SuperAdminStatus      SuperAdminStatus `gorm:"size:20;default:'NONE'" json:"superAdminStatus"`
	SuperAdminFeedback    string           `gorm:"type:text" json:"superAdminFeedback"`

	ReminderSent bool       `gorm:"default:false" json:"reminderSent"`
	ReminderTime *time.Time `json:"reminderTime,omitempty"`

	// Revision is an optimistic-concurrency token. Every workflow mutation
	// is a compare-and-swap on this counter; a stale write affects zero rows.
	Revision uint `gorm:"default:0" json:"revision"`

	UserID *string `gorm:"size:36;index" json:"userId,omitempty"`
	User   *User   `gorm:"foreignKey:UserID" json:"-"`
}
