package store

import (
	"context"
	"fmt"

	"shift-signup-backend/internal/model"
)

func (s *gormStore) HaveSignup(ctx context.Context, personID, slotID int64) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.PersonSlot{}).
		Where("person_id = ? AND slot_id = ?", personID, slotID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to look up signup for person %d slot %d: %w", personID, slotID, err)
	}
	return count > 0, nil
}

// TrainingEnrollments returns the person's other signups for the training
// position in the given year. A session the person was scored as not having
// passed no longer counts, so the training can be retaken.
func (s *gormStore) TrainingEnrollments(ctx context.Context, personID, positionID int64, year int, excludeSlotID int64) ([]model.Slot, error) {
	start, end := yearBounds(year)

	var slots []model.Slot
	err := s.db.WithContext(ctx).
		Joins("JOIN person_slots ON person_slots.slot_id = slots.id").
		Where("person_slots.person_id = ? AND slots.position_id = ?", personID, positionID).
		Where("slots.begins >= ? AND slots.begins < ? AND slots.id <> ?", start, end, excludeSlotID).
		Where("NOT EXISTS (SELECT 1 FROM trainee_statuses ts WHERE ts.person_id = person_slots.person_id AND ts.slot_id = slots.id AND ts.passed = ?)", false).
		Order("slots.begins, slots.id").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch training enrollments for person %d: %w", personID, err)
	}
	return slots, nil
}

// SignupsForYear returns the slots of a year the person is signed up for.
func (s *gormStore) SignupsForYear(ctx context.Context, personID int64, year int) ([]model.Slot, error) {
	start, end := yearBounds(year)

	var slots []model.Slot
	err := s.db.WithContext(ctx).Preload("Position").
		Joins("JOIN person_slots ON person_slots.slot_id = slots.id").
		Where("person_slots.person_id = ? AND slots.begins >= ? AND slots.begins < ?", personID, start, end).
		Order("slots.begins, slots.id").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch signups for person %d: %w", personID, err)
	}
	return slots, nil
}
