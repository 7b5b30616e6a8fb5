// Package model holds the gorm models of the signup service.
package model

// All lists every model managed by the schema migration.
func All() []any {
	return []any{
		&Person{},
		&PersonPosition{},
		&PersonRole{},
		&Position{},
		&Slot{},
		&PersonSlot{},
		&ManualReview{},
		&PersonPhoto{},
		&ActionLog{},
		&TraineeStatus{},
		&TraineeNote{},
		&TrainerStatus{},
		&PushSubscription{},
	}
}
