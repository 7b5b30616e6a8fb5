package store

import (
	"context"
	"fmt"

	"shift-signup-backend/internal/model"
)

// Student is a person signed up for a training session, with the outcome
// recorded for them so far.
type Student struct {
	PersonID int64              `json:"id"`
	Callsign string             `json:"callsign"`
	Status   model.PersonStatus `json:"status"`
	Rank     *int               `json:"rank"`
	Passed   *bool              `json:"passed"`
}

// Trainer is a person signed up to teach a training session.
type Trainer struct {
	PersonID      int64                    `json:"id"`
	Callsign      string                   `json:"callsign"`
	TrainerSlotID int64                    `json:"trainer_slot_id"`
	PositionID    int64                    `json:"position_id"`
	Status        *model.TrainerAttendance `json:"status"`
}

// FindTraineeStatus returns nil when nothing has been recorded yet.
func (s *gormStore) FindTraineeStatus(ctx context.Context, personID, slotID int64) (*model.TraineeStatus, error) {
	var rows []model.TraineeStatus
	if err := s.db.WithContext(ctx).
		Where("person_id = ? AND slot_id = ?", personID, slotID).
		Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch trainee status for person %d slot %d: %w", personID, slotID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *gormStore) SaveTraineeStatus(ctx context.Context, status *model.TraineeStatus) error {
	if err := s.db.WithContext(ctx).Save(status).Error; err != nil {
		return fmt.Errorf("failed to save trainee status for person %d slot %d: %w", status.PersonID, status.SlotID, err)
	}
	return nil
}

func (s *gormStore) AddTraineeNote(ctx context.Context, note *model.TraineeNote) error {
	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		return fmt.Errorf("failed to add trainee note for person %d: %w", note.PersonID, err)
	}
	return nil
}

// SaveTrainerStatus upserts the attendance of a trainer at a session and
// reports whether anything changed.
func (s *gormStore) SaveTrainerStatus(ctx context.Context, status *model.TrainerStatus) (bool, error) {
	db := s.db.WithContext(ctx)

	var existing []model.TrainerStatus
	if err := db.Where("slot_id = ? AND person_id = ?", status.SlotID, status.PersonID).
		Limit(1).Find(&existing).Error; err != nil {
		return false, fmt.Errorf("failed to fetch trainer status for person %d slot %d: %w", status.PersonID, status.SlotID, err)
	}
	if len(existing) > 0 {
		prev := existing[0]
		if prev.Status == status.Status && prev.TrainerSlotID == status.TrainerSlotID {
			*status = prev
			return false, nil
		}
		status.ID = prev.ID
		status.CreatedAt = prev.CreatedAt
	}

	if err := db.Save(status).Error; err != nil {
		return false, fmt.Errorf("failed to save trainer status for person %d slot %d: %w", status.PersonID, status.SlotID, err)
	}
	return true, nil
}

// Students lists everyone signed up for the session ordered by callsign.
func (s *gormStore) Students(ctx context.Context, slotID int64) ([]Student, error) {
	students := []Student{}
	err := s.db.WithContext(ctx).Table("person_slots").
		Select("persons.id AS person_id, persons.callsign, persons.status, trainee_statuses.rank, trainee_statuses.passed").
		Joins("JOIN persons ON persons.id = person_slots.person_id").
		Joins("LEFT JOIN trainee_statuses ON trainee_statuses.person_id = person_slots.person_id AND trainee_statuses.slot_id = person_slots.slot_id").
		Where("person_slots.slot_id = ?", slotID).
		Order("persons.callsign").
		Scan(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch students for slot %d: %w", slotID, err)
	}
	return students, nil
}

// Trainers lists the people signed up for trainer slots that teach the
// session's training and begin at the same time.
func (s *gormStore) Trainers(ctx context.Context, session model.Slot) ([]Trainer, error) {
	trainers := []Trainer{}
	err := s.db.WithContext(ctx).Table("person_slots").
		Select("persons.id AS person_id, persons.callsign, slots.id AS trainer_slot_id, slots.position_id, trainer_statuses.status").
		Joins("JOIN slots ON slots.id = person_slots.slot_id").
		Joins("JOIN positions ON positions.id = slots.position_id").
		Joins("JOIN persons ON persons.id = person_slots.person_id").
		Joins("LEFT JOIN trainer_statuses ON trainer_statuses.person_id = person_slots.person_id AND trainer_statuses.slot_id = ?", session.ID).
		Where("positions.teaches_position_id = ? AND slots.begins = ?", session.PositionID, session.Begins).
		Order("persons.callsign").
		Scan(&trainers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trainers for slot %d: %w", session.ID, err)
	}
	return trainers, nil
}
