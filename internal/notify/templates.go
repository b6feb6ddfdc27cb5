package notify

import (
	"fmt"
	"strings"
	"time"

	"hospital-hmis-server/internal/models"
)

const hospitalName = "Hospital Medical Information System (HMIS)"

// smsMaxLength is the single-segment GSM limit rejection reasons are
// truncated to fit.
const smsMaxLength = 160

// ShortID returns the last six characters of an appointment ID, the form
// used in SMS and WhatsApp messages.
func ShortID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}

func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// --- SMS templates ---

// BookedSMS announces a new pending booking.
func BookedSMS(a *models.Appointment) string {
	return fmt.Sprintf("%s: Apt booked! ID:%s %s %s %s %s PENDING REVIEW",
		hospitalName, ShortID(a.ID), a.PatientName, a.Department, formatDate(a.Date), a.Time)
}

// ConfirmedSMS announces an approved appointment.
func ConfirmedSMS(a *models.Appointment) string {
	urgentTag := ""
	if a.Priority == models.PriorityUrgent {
		urgentTag = "URGENT! "
	}
	return fmt.Sprintf("%s: %sAPPROVED! ID:%s %s %s %s %s Arrive 15min early with ID",
		hospitalName, urgentTag, ShortID(a.ID), a.PatientName, a.Department, formatDate(a.Date), a.Time)
}

// RejectedSMS announces a rejection, fitting the reason into the remaining
// single-segment space.
func RejectedSMS(a *models.Appointment, reason string) string {
	baseMsg := fmt.Sprintf("%s: NOT APPROVED ID:%s %s %s",
		hospitalName, ShortID(a.ID), a.PatientName, a.Department)
	endMsg := " Book new apt."

	if reason == "" {
		return baseMsg + endMsg
	}

	// A long name+department can leave too little budget to carry even a
	// truncated reason; drop it rather than slicing past zero.
	maxReasonLength := smsMaxLength - len(baseMsg) - len(" Reason:") - len(endMsg)
	if maxReasonLength <= 3 {
		return baseMsg + endMsg
	}
	if len(reason) > maxReasonLength {
		reason = reason[:maxReasonLength-3] + "..."
	}
	return baseMsg + " Reason:" + reason + endMsg
}

// ForwardedSMS tells the patient their case was escalated.
func ForwardedSMS(a *models.Appointment, adminComment string) string {
	baseMsg := fmt.Sprintf("%s: URGENT! ID:%s %s forwarded to Super Admin",
		hospitalName, ShortID(a.ID), a.PatientName)
	endMsg := " Quick review expected!"

	commentText := ""
	if adminComment != "" {
		commentText = " Note:" + adminComment
	}
	maxLength := smsMaxLength - len(baseMsg) - len(endMsg)
	if len(commentText) > maxLength {
		if maxLength <= 3 {
			commentText = ""
		} else {
			commentText = commentText[:maxLength-3] + "..."
		}
	}
	return baseMsg + commentText + endMsg
}

// Reminder24hSMS is the day-before reminder.
func Reminder24hSMS(a *models.Appointment) string {
	return fmt.Sprintf("%s: Tomorrow! ID:%s %s %s %s %s Bring ID!",
		hospitalName, ShortID(a.ID), a.PatientName, a.Department, formatDate(a.Date), a.Time)
}

// Reminder2hSMS is the same-day reminder.
func Reminder2hSMS(a *models.Appointment) string {
	return fmt.Sprintf("%s: 2hrs! ID:%s %s %s TODAY %s Leave now! Bring ID!",
		hospitalName, ShortID(a.ID), a.PatientName, a.Department, a.Time)
}

// WhatsApp reuses the SMS wording; the channel tolerates longer bodies but
// the sandbox rejects unapproved templates either way.

// --- Email templates ---

func emailShell(title, inner string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	fmt.Fprintf(&b, `<div style="background: #1e40af; color: white; padding: 20px; text-align: center;"><h1>%s</h1><h2>%s</h2></div>`, hospitalName, title)
	fmt.Fprintf(&b, `<div style="padding: 20px; background: #f9fafb;">%s</div>`, inner)
	fmt.Fprintf(&b, `<div style="background: #374151; color: white; padding: 15px; text-align: center; font-size: 12px;"><p>&copy; %d %s. All rights reserved.</p></div>`, time.Now().Year(), hospitalName)
	b.WriteString(`</div>`)
	return b.String()
}

func detailBlock(a *models.Appointment) string {
	return fmt.Sprintf(`<div style="background: white; padding: 15px; border-radius: 8px; margin: 20px 0;">
<h3 style="color: #1e40af; margin-top: 0;">Appointment Details</h3>
<p><strong>Appointment ID:</strong> #%s</p>
<p><strong>Department:</strong> %s</p>
<p><strong>Doctor:</strong> %s</p>
<p><strong>Date:</strong> %s</p>
<p><strong>Time:</strong> %s</p>
</div>`, a.ID, a.Department, a.Doctor, formatDate(a.Date), a.Time)
}

// BookedEmail confirms receipt of a new booking to the patient.
func BookedEmail(a *models.Appointment) EmailMessage {
	inner := fmt.Sprintf(`<p>Dear <strong>%s</strong>,</p>
<p>Your appointment has been <strong>successfully booked</strong> and is pending approval.</p>
%s
<p>You'll receive another email once it's reviewed. Please bring a valid ID and any relevant medical documents.</p>`,
		a.PatientName, detailBlock(a))
	return EmailMessage{
		Subject: fmt.Sprintf("Appointment Confirmation - %s (#%s)", hospitalName, ShortID(a.ID)),
		HTML:    emailShell("Appointment Confirmation", inner),
	}
}

// NewBookingAdminEmail notifies the admin inbox of a fresh request.
func NewBookingAdminEmail(a *models.Appointment) EmailMessage {
	inner := fmt.Sprintf(`<p>A new appointment request is waiting for review.</p>
%s
<p><strong>Patient:</strong> %s (%s, %s)</p>
<p><strong>Symptoms:</strong> %s</p>`,
		detailBlock(a), a.PatientName, a.Email, a.Phone, a.Symptoms)
	return EmailMessage{
		Subject: fmt.Sprintf("New Appointment Request (#%s)", ShortID(a.ID)),
		HTML:    emailShell("New Appointment Request", inner),
	}
}

// ApprovedEmail tells the patient the admin confirmed their appointment.
func ApprovedEmail(a *models.Appointment, feedback string) EmailMessage {
	note := ""
	if feedback != "" {
		note = fmt.Sprintf(`<p><strong>Note from the hospital:</strong> %s</p>`, feedback)
	}
	inner := fmt.Sprintf(`<p>Dear <strong>%s</strong>,</p>
<p>Your appointment has been <strong style="color:#059669;">approved</strong>.</p>
%s%s
<p>Please arrive 15 minutes early and bring a valid ID.</p>`,
		a.PatientName, detailBlock(a), note)
	return EmailMessage{
		Subject: fmt.Sprintf("Appointment Approved - %s (#%s)", hospitalName, ShortID(a.ID)),
		HTML:    emailShell("Appointment Approved", inner),
	}
}

// RejectedEmail tells the patient the admin declined their appointment.
func RejectedEmail(a *models.Appointment, feedback string) EmailMessage {
	reason := ""
	if feedback != "" {
		reason = fmt.Sprintf(`<p><strong>Reason:</strong> %s</p>`, feedback)
	}
	inner := fmt.Sprintf(`<p>Dear <strong>%s</strong>,</p>
<p>We're sorry — your appointment request was <strong style="color:#dc2626;">not approved</strong>.</p>
%s%s
<p>You are welcome to book a new appointment at a different time.</p>`,
		a.PatientName, detailBlock(a), reason)
	return EmailMessage{
		Subject: fmt.Sprintf("Appointment Update - %s (#%s)", hospitalName, ShortID(a.ID)),
		HTML:    emailShell("Appointment Not Approved", inner),
	}
}

// ForwardedEmail tells the patient their case went to the super admin.
func ForwardedEmail(a *models.Appointment, adminComment string) EmailMessage {
	if adminComment == "" {
		adminComment = "Your case requires additional review"
	}
	inner := fmt.Sprintf(`<p>Dear <strong>%s</strong>,</p>
<p>Your appointment has been <strong>escalated to senior staff</strong> for priority review.</p>
%s
<p><strong>Note:</strong> %s</p>
<p>Priority: <strong style="color:#dc2626;">URGENT</strong>. Expect a quick decision.</p>`,
		a.PatientName, detailBlock(a), adminComment)
	return EmailMessage{
		Subject: fmt.Sprintf("Appointment Escalated - %s (#%s)", hospitalName, ShortID(a.ID)),
		HTML:    emailShell("Appointment Escalated for Review", inner),
	}
}

// ForwardedSuperAdminEmail alerts the super admin inbox of a new escalation.
func ForwardedSuperAdminEmail(a *models.Appointment, adminComment string) EmailMessage {
	inner := fmt.Sprintf(`<p>An admin escalated an appointment for your review.</p>
%s
<p><strong>Patient:</strong> %s (%s, %s)</p>
<p><strong>Admin comment:</strong> %s</p>`,
		detailBlock(a), a.PatientName, a.Email, a.Phone, adminComment)
	return EmailMessage{
		Subject: fmt.Sprintf("URGENT: Forwarded Appointment (#%s)", ShortID(a.ID)),
		HTML:    emailShell("Forwarded Appointment", inner),
	}
}

// SuperAdminDecisionEmail tells the patient the super admin's call.
func SuperAdminDecisionEmail(a *models.Appointment, approved bool, feedback string) EmailMessage {
	if approved {
		inner := fmt.Sprintf(`<p>Dear <strong>%s</strong>,</p>
<p>Your escalated appointment has been <strong style="color:#059669;">approved by senior staff</strong>.</p>
%s
<p><strong>Feedback:</strong> %s</p>`,
			a.PatientName, detailBlock(a), feedback)
		return EmailMessage{
			Subject: fmt.Sprintf("Appointment Approved by Senior Staff - %s (#%s)", hospitalName, ShortID(a.ID)),
			HTML:    emailShell("Appointment Approved", inner),
		}
	}
	inner := fmt.Sprintf(`<p>Dear <strong>%s</strong>,</p>
<p>After senior review, your appointment request was <strong style="color:#dc2626;">not approved</strong>.</p>
%s
<p><strong>Feedback:</strong> %s</p>`,
		a.PatientName, detailBlock(a), feedback)
	return EmailMessage{
		Subject: fmt.Sprintf("Appointment Update - %s (#%s)", hospitalName, ShortID(a.ID)),
		HTML:    emailShell("Appointment Not Approved", inner),
	}
}

// AdminActionConfirmationEmail is the copy sent to the admin inbox after
// they approve or reject.
func AdminActionConfirmationEmail(a *models.Appointment, action string) EmailMessage {
	inner := fmt.Sprintf(`<p>You %s appointment #%s for %s.</p>%s`,
		action, ShortID(a.ID), a.PatientName, detailBlock(a))
	return EmailMessage{
		Subject: fmt.Sprintf("Action Confirmation: appointment %s (#%s)", action, ShortID(a.ID)),
		HTML:    emailShell("Admin Action Confirmation", inner),
	}
}

// SuperAdminCommentEmail routes the super admin's comment back to the admin
// inbox for a final decision.
func SuperAdminCommentEmail(a *models.Appointment, feedback string) EmailMessage {
	inner := fmt.Sprintf(`<p>The Super Admin commented on appointment #%s (%s) and returned it for your decision.</p>
%s
<p><strong>Comment:</strong> %s</p>`,
		ShortID(a.ID), a.PatientName, detailBlock(a), feedback)
	return EmailMessage{
		Subject: fmt.Sprintf("Super Admin Comment on Appointment (#%s)", ShortID(a.ID)),
		HTML:    emailShell("Super Admin Comment", inner),
	}
}

// Reminder24hEmail is the day-before reminder.
func Reminder24hEmail(a *models.Appointment) EmailMessage {
	inner := fmt.Sprintf(`<p>Dear <strong>%s</strong>,</p>
<p>This is a reminder that your appointment is <strong>tomorrow</strong>.</p>
%s
<p>Please arrive 15 minutes early and bring a valid ID.</p>`,
		a.PatientName, detailBlock(a))
	return EmailMessage{
		Subject: fmt.Sprintf("Reminder: Appointment Tomorrow - %s (#%s)", hospitalName, ShortID(a.ID)),
		HTML:    emailShell("Appointment Reminder", inner),
	}
}

// Reminder2hEmail is the same-day reminder.
func Reminder2hEmail(a *models.Appointment) EmailMessage {
	inner := fmt.Sprintf(`<p>Dear <strong>%s</strong>,</p>
<p>Your appointment is in about <strong>2 hours</strong>. Time to head out!</p>
%s`,
		a.PatientName, detailBlock(a))
	return EmailMessage{
		Subject: fmt.Sprintf("Reminder: Appointment in 2 Hours - %s (#%s)", hospitalName, ShortID(a.ID)),
		HTML:    emailShell("Appointment Reminder", inner),
	}
}
