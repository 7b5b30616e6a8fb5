package model

import "time"

// ManualReview records a person passing the yearly manual review.
type ManualReview struct {
	ID       int64     `gorm:"primaryKey"`
	PersonID int64     `gorm:"not null;index"`
	PassedAt time.Time `gorm:"not null;index"`
}

// PhotoStatus is the approval state of a person's callsign photo.
type PhotoStatus string

const (
	PhotoApproved PhotoStatus = "approved"
	PhotoMissing  PhotoStatus = "missing"
	PhotoPending  PhotoStatus = "pending"
	PhotoRejected PhotoStatus = "rejected"
)

// PersonPhoto is the locally known photo state of a person.
type PersonPhoto struct {
	PersonID  int64       `gorm:"primaryKey;autoIncrement:false"`
	Status    PhotoStatus `gorm:"size:16;not null"`
	UpdatedAt time.Time
}

func (ManualReview) TableName() string { return "manual_reviews" }
func (PersonPhoto) TableName() string  { return "person_photos" }
