package workflow

import (
	"errors"

	"gorm.io/gorm"

	"hospital-hmis-server/internal/models"
)

// ErrConflict is returned when a mutation lost the compare-and-swap because
// another writer (admin, super admin or the reminder sweep) got there first.
var ErrConflict = errors.New("appointment was modified concurrently")

// Apply writes the given column updates to the appointment, guarded by its
// revision counter. Callers must have loaded the appointment they pass in;
// on success the in-memory copy is bumped to the new revision.
func Apply(db *gorm.DB, apt *models.Appointment, updates map[string]interface{}) error {
	next := apt.Revision + 1
	updates["revision"] = next

	res := db.Model(&models.Appointment{}).
		Where("id = ? AND revision = ?", apt.ID, apt.Revision).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	apt.Revision = next
	return nil
}
