package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hospital-hmis-server/internal/models"
)

func templateAppointment() *models.Appointment {
	apt := &models.Appointment{
		PatientName: "Asha Rao",
		Email:       "asha@example.com",
		Phone:       "9876543210",
		Department:  "Cardiology",
		Doctor:      "Dr. Sharma",
		Date:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Time:        "10:00 AM",
		Status:      models.StatusPending,
		Priority:    models.PriorityNormal,
	}
	apt.ID = "3f2b7c9e-0000-0000-0000-0000003f2b7c"
	return apt
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "3f2b7c", ShortID("3f2b7c9e-0000-0000-0000-0000003f2b7c"))
	assert.Equal(t, "abc", ShortID("abc"))
}

func TestRejectedSMSFitsOneSegment(t *testing.T) {
	apt := templateAppointment()
	longReason := strings.Repeat("clinic closed for renovation, ", 10)

	sms := RejectedSMS(apt, longReason)

	assert.LessOrEqual(t, len(sms), smsMaxLength)
	assert.Contains(t, sms, "...")
	assert.Contains(t, sms, "NOT APPROVED")
	assert.Contains(t, sms, ShortID(apt.ID))
	assert.True(t, strings.HasSuffix(sms, "Book new apt."))
}

func TestRejectedSMSLongNameAndDepartment(t *testing.T) {
	// Sweep department lengths so the remaining reason budget crosses every
	// small value, including the degenerate ones where no reason fits.
	for deptLen := 20; deptLen <= 40; deptLen++ {
		apt := templateAppointment()
		apt.PatientName = strings.Repeat("n", 40)
		apt.Department = strings.Repeat("d", deptLen)

		sms := RejectedSMS(apt, strings.Repeat("r", 100))

		assert.LessOrEqual(t, len(sms), smsMaxLength, "deptLen %d", deptLen)
		assert.True(t, strings.HasSuffix(sms, "Book new apt."), "deptLen %d", deptLen)
	}
}

func TestRejectedSMSShortReasonKeptVerbatim(t *testing.T) {
	sms := RejectedSMS(templateAppointment(), "no slots")
	assert.Contains(t, sms, "Reason:no slots")
	assert.NotContains(t, sms, "...")
}

func TestConfirmedSMSUrgentTag(t *testing.T) {
	apt := templateAppointment()
	assert.NotContains(t, ConfirmedSMS(apt), "URGENT!")

	apt.Priority = models.PriorityUrgent
	assert.Contains(t, ConfirmedSMS(apt), "URGENT!")
}

func TestForwardedSMSTruncatesComment(t *testing.T) {
	apt := templateAppointment()
	sms := ForwardedSMS(apt, strings.Repeat("x", 400))

	assert.LessOrEqual(t, len(sms), smsMaxLength)
	assert.True(t, strings.HasSuffix(sms, "Quick review expected!"))
}

func TestReminderSMS(t *testing.T) {
	apt := templateAppointment()
	assert.Contains(t, Reminder24hSMS(apt), "Tomorrow!")
	assert.Contains(t, Reminder2hSMS(apt), "TODAY")
	assert.Contains(t, Reminder2hSMS(apt), apt.Time)
}

func TestEmailSubjectsCarryShortID(t *testing.T) {
	apt := templateAppointment()
	short := ShortID(apt.ID)

	for name, msg := range map[string]EmailMessage{
		"booked":         BookedEmail(apt),
		"adminNew":       NewBookingAdminEmail(apt),
		"approved":       ApprovedEmail(apt, ""),
		"rejected":       RejectedEmail(apt, "no slots"),
		"forwarded":      ForwardedEmail(apt, ""),
		"forwardedSuper": ForwardedSuperAdminEmail(apt, "needs review"),
		"superDecision":  SuperAdminDecisionEmail(apt, true, "ok"),
		"superComment":   SuperAdminCommentEmail(apt, "ask for referral"),
		"reminder24h":    Reminder24hEmail(apt),
		"reminder2h":     Reminder2hEmail(apt),
	} {
		assert.Contains(t, msg.Subject, short, "template %s", name)
		assert.Contains(t, msg.HTML, apt.PatientName, "template %s", name)
	}
}

func TestRejectedEmailCarriesReason(t *testing.T) {
	msg := RejectedEmail(templateAppointment(), "clinic closed")
	assert.Contains(t, msg.HTML, "clinic closed")
	assert.Contains(t, msg.HTML, "not approved")
}
