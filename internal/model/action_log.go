package model

import "time"

// ActionLog is an audit record of a change made through the engine.
type ActionLog struct {
	ID             int64     `gorm:"primaryKey"`
	PersonID       *int64    `gorm:"index"` // acting person, nil for system actions
	TargetPersonID *int64    `gorm:"index"`
	Event          string    `gorm:"size:64;not null;index"`
	Message        string    `gorm:"size:512;not null;default:''"`
	Data           string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"not null;index"`
}

const (
	EventPersonSlotAdd       = "person-slot-add"
	EventPersonSlotRemove    = "person-slot-remove"
	EventTraineeStatusCreate = "trainee-status-create"
	EventTraineeStatusUpdate = "trainee-status-update"
	EventTrainerStatusUpdate = "trainer-status-update"
)
