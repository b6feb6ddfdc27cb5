package scheduler

import (
	"context"
	"time"

	"gorm.io/gorm"

	"hospital-hmis-server/internal/models"
	"hospital-hmis-server/internal/workflow"
)

// gormStore implements Store against the appointment table.
type gormStore struct {
	db *gorm.DB
}

// NewStore wraps a gorm connection as the sweep's Store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DueDayBefore(ctx context.Context, dayStart, dayEnd time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.db.WithContext(ctx).
		Where("status = ?", models.StatusConfirmed).
		Where("reminder_sent = ?", false).
		Where("date BETWEEN ? AND ?", dayStart, dayEnd).
		Find(&appointments).Error
	return appointments, err
}

func (s *gormStore) DueSameDay(ctx context.Context, dayStart, dayEnd, stampedBefore time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.db.WithContext(ctx).
		Where("status = ?", models.StatusConfirmed).
		Where("reminder_sent = ?", true).
		Where("reminder_time < ?", stampedBefore).
		Where("date BETWEEN ? AND ?", dayStart, dayEnd).
		Find(&appointments).Error
	return appointments, err
}

func (s *gormStore) MarkReminded(ctx context.Context, apt *models.Appointment, at time.Time) error {
	return workflow.Apply(s.db.WithContext(ctx), apt, workflow.ReminderStamp(at))
}

func (s *gormStore) RestampReminder(ctx context.Context, apt *models.Appointment, at time.Time) error {
	return workflow.Apply(s.db.WithContext(ctx), apt, workflow.ReminderRestamp(at))
}
