package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shift-signup-backend/internal/model"
	"shift-signup-backend/internal/slotlabel"
)

// ReserveReason explains why a reservation was refused.
type ReserveReason string

const (
	ReasonNone            ReserveReason = ""
	ReasonFull            ReserveReason = "full"
	ReasonAlreadySignedUp ReserveReason = "already-signed-up"
)

// Reservation is the outcome of reserving a place in a slot.
type Reservation struct {
	OK     bool
	Reason ReserveReason
	// Slot is the slot as seen after the reservation attempt.
	Slot model.Slot
	// OverCapacity is true when a forced reservation left the slot above max.
	OverCapacity bool
}

// FindSlot loads a slot together with its position.
func (s *gormStore) FindSlot(ctx context.Context, id int64) (*model.Slot, error) {
	var slot model.Slot
	if err := s.db.WithContext(ctx).Preload("Position").First(&slot, id).Error; err != nil {
		return nil, notFound(err, "slot", id)
	}
	return &slot, nil
}

// SlotsForYear lists the active slots of a year for the given positions.
func (s *gormStore) SlotsForYear(ctx context.Context, year int, positionIDs []int64) ([]model.Slot, error) {
	if len(positionIDs) == 0 {
		return []model.Slot{}, nil
	}
	start, end := yearBounds(year)

	var slots []model.Slot
	if err := s.db.WithContext(ctx).Preload("Position").
		Where("active = ? AND begins >= ? AND begins < ? AND position_id IN ?", true, start, end, positionIDs).
		Order("begins, id").
		Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch slots for %d: %w", year, err)
	}
	return slots, nil
}

// Reserve records the person in the slot and takes one unit of capacity.
//
// The capacity check and the increment are a single conditional UPDATE, so
// concurrent reservations on the same row serialize in the database and
// cannot push signed_up past max unless force is set. A refused reservation
// leaves nothing behind.
func (s *gormStore) Reserve(ctx context.Context, slotID, personID int64, force bool) (*Reservation, error) {
	db := s.db.WithContext(ctx)

	link := model.PersonSlot{PersonID: personID, SlotID: slotID}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to create signup for person %d slot %d: %w", personID, slotID, res.Error)
	}
	if res.RowsAffected == 0 {
		return &Reservation{Reason: ReasonAlreadySignedUp}, nil
	}

	q := db.Model(&model.Slot{}).Where("id = ?", slotID)
	if !force {
		q = q.Where("signed_up < max")
	}
	res = q.UpdateColumn("signed_up", gorm.Expr("signed_up + 1"))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to reserve slot %d: %w", slotID, res.Error)
	}

	if res.RowsAffected == 0 {
		if err := db.Where("person_id = ? AND slot_id = ?", personID, slotID).Delete(&model.PersonSlot{}).Error; err != nil {
			return nil, fmt.Errorf("failed to undo signup for person %d slot %d: %w", personID, slotID, err)
		}
		var slot model.Slot
		if err := db.First(&slot, slotID).Error; err != nil {
			return nil, notFound(err, "slot", slotID)
		}
		return &Reservation{Reason: ReasonFull, Slot: slot}, nil
	}

	var slot model.Slot
	if err := db.First(&slot, slotID).Error; err != nil {
		return nil, notFound(err, "slot", slotID)
	}
	return &Reservation{
		OK:           true,
		Slot:         slot,
		OverCapacity: slot.SignedUp > slot.Max,
	}, nil
}

// Release removes the person from the slot and gives the capacity back.
// It reports false, and changes nothing, when there was no signup.
func (s *gormStore) Release(ctx context.Context, slotID, personID int64) (bool, error) {
	db := s.db.WithContext(ctx)

	res := db.Where("person_id = ? AND slot_id = ?", personID, slotID).Delete(&model.PersonSlot{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete signup for person %d slot %d: %w", personID, slotID, res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	if err := db.Model(&model.Slot{}).
		Where("id = ? AND signed_up > 0", slotID).
		UpdateColumn("signed_up", gorm.Expr("signed_up - 1")).Error; err != nil {
		return false, fmt.Errorf("failed to release slot %d: %w", slotID, err)
	}
	return true, nil
}

// CreateSlot stores a new slot. A "Part N" marker in the description makes
// the slot one part of a multi-part session.
func (s *gormStore) CreateSlot(ctx context.Context, slot *model.Slot) error {
	label := slotlabel.Parse(slot.Description)
	if label.MultiPart() {
		slot.MultiPart = true
	}
	if slot.MultiPart && slot.SessionGroup == "" {
		slot.SessionGroup = label.Session
	}
	if err := s.db.WithContext(ctx).Omit("Position").Create(slot).Error; err != nil {
		return fmt.Errorf("failed to create slot: %w", err)
	}
	return nil
}
