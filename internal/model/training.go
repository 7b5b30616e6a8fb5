package model

import "time"

// TraineeStatus holds the outcome of a person attending a training session.
type TraineeStatus struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	PersonID  int64     `gorm:"not null;uniqueIndex:idx_trainee_person_slot" json:"person_id"`
	SlotID    int64     `gorm:"not null;uniqueIndex:idx_trainee_person_slot;index" json:"slot_id"`
	Rank      *int      `json:"rank"`
	Passed    bool      `gorm:"not null;default:false" json:"passed"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TraineeNote is a free-form note a trainer left about a trainee.
type TraineeNote struct {
	ID        int64     `gorm:"primaryKey"`
	PersonID  int64     `gorm:"not null;index"`
	SlotID    int64     `gorm:"not null;index"`
	Note      string    `gorm:"type:text;not null"`
	IsLog     bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
}

// TrainerAttendance is the attendance state of a trainer at a session.
type TrainerAttendance string

const (
	TrainerPending  TrainerAttendance = "pending"
	TrainerAttended TrainerAttendance = "attended"
	TrainerNoShow   TrainerAttendance = "no-show"
)

// TrainerStatus records whether a trainer attended a session.
type TrainerStatus struct {
	ID            int64             `gorm:"primaryKey" json:"id"`
	SlotID        int64             `gorm:"not null;uniqueIndex:idx_trainer_slot_person" json:"slot_id"`
	PersonID      int64             `gorm:"not null;uniqueIndex:idx_trainer_slot_person" json:"person_id"`
	TrainerSlotID int64             `gorm:"not null" json:"trainer_slot_id"`
	Status        TrainerAttendance `gorm:"size:16" json:"status"`
	CreatedAt     time.Time         `json:"-"`
	UpdatedAt     time.Time         `json:"-"`
}

func (TraineeStatus) TableName() string { return "trainee_statuses" }
func (TraineeNote) TableName() string   { return "trainee_notes" }
func (TrainerStatus) TableName() string { return "trainer_statuses" }
