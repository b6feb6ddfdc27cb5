package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppointmentStatus(t *testing.T) {
	for input, want := range map[string]AppointmentStatus{
		"pending":    StatusPending,
		"PENDING":    StatusPending,
		" confirmed": StatusConfirmed,
		"Cancelled":  StatusCancelled,
		"completed":  StatusCompleted,
	} {
		got, ok := ParseAppointmentStatus(input)
		require.True(t, ok, "input %q", input)
		assert.Equal(t, want, got)
	}

	for _, input := range []string{"", "approved", "canceled", "done"} {
		_, ok := ParseAppointmentStatus(input)
		assert.False(t, ok, "input %q", input)
	}
}

func TestParsePriority(t *testing.T) {
	got, ok := ParsePriority("urgent")
	require.True(t, ok)
	assert.Equal(t, PriorityUrgent, got)

	_, ok = ParsePriority("critical")
	assert.False(t, ok)
}

func TestParseRole(t *testing.T) {
	got, ok := ParseRole("super_admin")
	require.True(t, ok)
	assert.Equal(t, RoleSuperAdmin, got)

	_, ok = ParseRole("doctor")
	assert.False(t, ok)
}

func TestPasswordHashing(t *testing.T) {
	var u User
	require.NoError(t, u.SetPassword("s3cret-pass"))

	assert.NotEqual(t, "s3cret-pass", u.Password)
	assert.True(t, u.CheckPassword("s3cret-pass"))
	assert.False(t, u.CheckPassword("wrong"))
}
