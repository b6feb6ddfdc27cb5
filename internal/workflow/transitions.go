package workflow

import (
	"strings"
	"time"

	"hospital-hmis-server/internal/models"
)

// AdminAction is a triage decision taken by an admin on a pending appointment.
type AdminAction string

const (
	AdminApprove AdminAction = "approve"
	AdminReject  AdminAction = "reject"
)

// ParseAdminAction normalizes an action string from the request body.
func ParseAdminAction(s string) (AdminAction, bool) {
	switch AdminAction(strings.ToLower(strings.TrimSpace(s))) {
	case AdminApprove:
		return AdminApprove, true
	case AdminReject:
		return AdminReject, true
	}
	return "", false
}

// SuperAdminAction is a decision taken by the super admin on a forwarded
// appointment. Comment routes the appointment back to the admin without
// changing its status.
type SuperAdminAction string

const (
	SuperAdminApprove SuperAdminAction = "approve"
	SuperAdminReject  SuperAdminAction = "reject"
	SuperAdminComment SuperAdminAction = "comment"
)

// ParseSuperAdminAction normalizes an action string from the request body.
func ParseSuperAdminAction(s string) (SuperAdminAction, bool) {
	switch SuperAdminAction(strings.ToLower(strings.TrimSpace(s))) {
	case SuperAdminApprove:
		return SuperAdminApprove, true
	case SuperAdminReject:
		return SuperAdminReject, true
	case SuperAdminComment:
		return SuperAdminComment, true
	}
	return "", false
}

// MaxFeedbackLength caps admin feedback stored in notes.
const MaxFeedbackLength = 500

// AdminTransition returns the column updates for an admin approve/reject.
// The forwarding fields are deliberately untouched.
func AdminTransition(action AdminAction, feedback string) map[string]interface{} {
	status := models.StatusConfirmed
	if action == AdminReject {
		status = models.StatusCancelled
	}
	return map[string]interface{}{
		"status": status,
		"notes":  feedback,
	}
}

// ForwardTransition returns the column updates for escalating an appointment
// to the super admin. Priority is always forced to URGENT and any prior
// admin note is overwritten with the forwarding annotation.
func ForwardTransition(adminComment string) map[string]interface{} {
	notes := "Admin forwarded to Super Admin for review"
	if adminComment != "" {
		notes = "Admin forwarded: " + adminComment
	}
	return map[string]interface{}{
		"forwarded_to_super_admin": true,
		"super_admin_status":       models.SuperAdminPending,
		"super_admin_feedback":     "",
		"priority":                 models.PriorityUrgent,
		"notes":                    notes,
	}
}

// SuperAdminTransition is the single source of truth for super-admin
// decisions; every endpoint spelling maps onto this one table.
func SuperAdminTransition(action SuperAdminAction, feedback string) map[string]interface{} {
	switch action {
	case SuperAdminApprove:
		if feedback == "" {
			feedback = "Approved by Super Admin"
		}
		return map[string]interface{}{
			"status":               models.StatusConfirmed,
			"super_admin_status":   models.SuperAdminApproved,
			"super_admin_feedback": feedback,
		}
	case SuperAdminReject:
		if feedback == "" {
			feedback = "Rejected by Super Admin"
		}
		return map[string]interface{}{
			"status":               models.StatusCancelled,
			"super_admin_status":   models.SuperAdminRejected,
			"super_admin_feedback": feedback,
		}
	case SuperAdminComment:
		// Status is left untouched: the admin still owns the final decision.
		return map[string]interface{}{
			"super_admin_status":   models.SuperAdminCommented,
			"super_admin_feedback": feedback,
		}
	}
	return nil
}

// ReminderStamp returns the column updates recording that the day-before
// reminder went out.
func ReminderStamp(at time.Time) map[string]interface{} {
	return map[string]interface{}{
		"reminder_sent": true,
		"reminder_time": at,
	}
}

// ReminderRestamp returns the column updates recording the same-day reminder.
func ReminderRestamp(at time.Time) map[string]interface{} {
	return map[string]interface{}{
		"reminder_time": at,
	}
}
