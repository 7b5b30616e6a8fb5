package model

import "time"

// Slot is one schedulable time window for one position.
type Slot struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	PositionID  int64     `gorm:"index;not null" json:"position_id"`
	Begins      time.Time `gorm:"not null;index" json:"begins"`
	Ends        time.Time `gorm:"not null" json:"ends"`
	Description string    `gorm:"size:512" json:"description"`
	SignedUp    int       `gorm:"not null;default:0;check:signed_up >= 0" json:"signed_up"`
	Min         int       `gorm:"not null;default:0" json:"min"`
	Max         int       `gorm:"not null;default:0" json:"max"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	// MultiPart marks one part of a training offering split across several
	// slots. SessionGroup identifies the offering the part belongs to.
	MultiPart    bool      `gorm:"not null;default:false" json:"multi_part"`
	SessionGroup string    `gorm:"size:512;index" json:"session_group,omitempty"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`

	// Associations
	Position Position `gorm:"constraint:OnDelete:CASCADE" json:"position"`
}

// Year is the calendar year the slot begins in.
func (s Slot) Year() int {
	return s.Begins.Year()
}

// IsFull reports whether the slot has reached its capacity.
func (s Slot) IsFull() bool {
	return s.SignedUp >= s.Max
}

// IsCompanionOf reports whether both slots are parts of the same multi-part
// training offering.
func (s Slot) IsCompanionOf(other Slot) bool {
	return s.MultiPart && other.MultiPart &&
		s.PositionID == other.PositionID &&
		s.SessionGroup != "" && s.SessionGroup == other.SessionGroup
}

// PersonSlot is the signup association between a person and a slot.
type PersonSlot struct {
	PersonID  int64     `gorm:"primaryKey;autoIncrement:false"`
	SlotID    int64     `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Slot) TableName() string       { return "slots" }
func (PersonSlot) TableName() string { return "person_slots" }
