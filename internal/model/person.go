package model

import "time"

// PersonStatus is the account status of a person.
type PersonStatus string

const (
	StatusActive            PersonStatus = "active"
	StatusInactive          PersonStatus = "inactive"
	StatusInactiveExtension PersonStatus = "inactive extension"
	StatusRetired           PersonStatus = "retired"
	StatusNonRanger         PersonStatus = "non ranger"
	StatusAuditor           PersonStatus = "auditor"
	StatusProspective       PersonStatus = "prospective"
	StatusAlpha             PersonStatus = "alpha"
	StatusPastProspective   PersonStatus = "past prospective"
	StatusSuspended         PersonStatus = "suspended"
	StatusResigned          PersonStatus = "resigned"
	StatusBonked            PersonStatus = "bonked"
	StatusDeceased          PersonStatus = "deceased"
)

// CanWorkShifts reports whether the status belongs to the standard set of
// people who may sign up once their photo and manual review are in order.
// Auditors are handled separately since they skip the photo requirement.
func (s PersonStatus) CanWorkShifts() bool {
	switch s {
	case StatusActive, StatusInactive, StatusInactiveExtension, StatusRetired,
		StatusNonRanger, StatusProspective, StatusAlpha:
		return true
	}
	return false
}

// IsNewVolunteer reports whether the status is subject to the limited
// manual-review onboarding window.
func (s PersonStatus) IsNewVolunteer() bool {
	return s == StatusProspective || s == StatusAlpha
}

// Person is the slice of a person record the signup engine reads.
type Person struct {
	ID        int64        `gorm:"primaryKey" json:"id"`
	Callsign  string       `gorm:"size:64;uniqueIndex;not null" json:"callsign"`
	Email     string       `gorm:"size:256" json:"email"`
	Status    PersonStatus `gorm:"size:32;not null;index" json:"status"`
	CreatedAt time.Time    `json:"-"`
	UpdatedAt time.Time    `json:"-"`
}

// PersonPosition records that a person holds a position.
type PersonPosition struct {
	PersonID   int64     `gorm:"primaryKey;autoIncrement:false"`
	PositionID int64     `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt  time.Time `gorm:"not null"`
}

// PersonRole records that a person holds a role.
type PersonRole struct {
	PersonID  int64     `gorm:"primaryKey;autoIncrement:false"`
	RoleID    Role      `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Person) TableName() string         { return "persons" }
func (PersonPosition) TableName() string { return "person_positions" }
func (PersonRole) TableName() string     { return "person_roles" }
