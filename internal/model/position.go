package model

import "time"

// PositionType identifies the kind of work a position represents.
type PositionType string

const (
	PositionFrontline PositionType = "Frontline"
	PositionTraining  PositionType = "Training"
	PositionCommand   PositionType = "Command"
	PositionLogistics PositionType = "Logistics"
	PositionOther     PositionType = "Other"
)

// Position is a type of work people can be scheduled for.
type Position struct {
	ID    int64        `gorm:"primaryKey" json:"id"`
	Title string       `gorm:"size:128;uniqueIndex;not null" json:"title"`
	Type  PositionType `gorm:"size:32;not null" json:"type"`
	// TrainingPositionID names the training that qualifies people for this
	// frontline position.
	TrainingPositionID *int64 `gorm:"index" json:"training_position_id,omitempty"`
	// TeachesPositionID is set on trainer positions and names the training
	// position they teach.
	TeachesPositionID *int64    `gorm:"index" json:"teaches_position_id,omitempty"`
	Active            bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"-"`
}

// IsTraining reports whether the position represents training sessions.
func (p Position) IsTraining() bool {
	return p.Type == PositionTraining
}

// PositionSet is the set of position IDs held by a person.
type PositionSet map[int64]struct{}

// NewPositionSet builds a set from a list of position IDs.
func NewPositionSet(ids ...int64) PositionSet {
	set := make(PositionSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports whether any of the given positions is held.
func (s PositionSet) Has(ids ...int64) bool {
	for _, id := range ids {
		if _, ok := s[id]; ok {
			return true
		}
	}
	return false
}

func (Position) TableName() string { return "positions" }
