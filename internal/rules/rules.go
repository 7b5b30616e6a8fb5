// Package rules holds the enrollment rules checked before a signup touches
// slot capacity.
package rules

import "shift-signup-backend/internal/model"

// Code is the outcome of a signup attempt, part of the external contract.
type Code string

const (
	Success            Code = "success"
	NoPosition         Code = "no-position"
	Full               Code = "full"
	AlreadySignedUp    Code = "already-signed-up"
	MultipleEnrollment Code = "multiple-enrollment"
)

// Input is everything the rules look at. It is gathered by the caller so the
// rules themselves never touch storage.
type Input struct {
	Slot model.Slot
	// PersonPositions are the positions held by the person being signed up.
	PersonPositions model.PositionSet
	// ActorRoles are the roles of the person making the request.
	ActorRoles model.RoleSet
	// Self is true when the actor is signing themselves up.
	Self bool
	// HaveSignup is true when the person is already in the slot.
	HaveSignup bool
	// Enrollments are the person's other signups for the same training
	// position in the slot's year.
	Enrollments []model.Slot
	// TrainerPositionIDs are the positions whose holders teach the slot's
	// training.
	TrainerPositionIDs []int64
	// FrontlinePositionIDs are the frontline positions that require the
	// slot's training.
	FrontlinePositionIDs []int64
}

// Decision is the result of Check.
type Decision struct {
	Allowed bool
	Code    Code
	// Force lets the reservation go past the slot's max.
	Force          bool
	FullForced     bool
	MultipleForced bool
	TrainerForced  bool
	// Conflicts are the enrollments behind a multiple-enrollment denial.
	Conflicts []model.Slot
}

// Check applies the rules in order; the first denial wins.
func Check(in Input) Decision {
	slot := in.Slot
	training := slot.Position.IsTraining()
	isTrainer := training && in.PersonPositions.Has(in.TrainerPositionIDs...)
	canForce := in.ActorRoles.CanForceSignups() || (in.Self && isTrainer)

	if !holdsPosition(in) {
		return Decision{Code: NoPosition}
	}

	full := slot.IsFull()
	if full && !canForce {
		return Decision{Code: Full}
	}

	if in.HaveSignup {
		return Decision{Code: AlreadySignedUp}
	}

	d := Decision{Allowed: true, Code: Success, Force: canForce}

	if training {
		if conflicts := conflicting(slot, in.Enrollments); len(conflicts) > 0 {
			switch {
			case in.ActorRoles.CanForceSignups():
				d.MultipleForced = true
				d.TrainerForced = isTrainer
			case isTrainer:
				d.TrainerForced = true
			default:
				return Decision{Code: MultipleEnrollment, Conflicts: conflicts}
			}
		}
	}

	d.FullForced = full
	return d
}

// holdsPosition accepts the slot's own position or, for a training slot, any
// frontline position the training qualifies people for.
func holdsPosition(in Input) bool {
	if in.PersonPositions.Has(in.Slot.PositionID) {
		return true
	}
	if in.Slot.Position.IsTraining() {
		return in.PersonPositions.Has(in.FrontlinePositionIDs...)
	}
	return false
}

// conflicting drops the enrollments that are other parts of the same
// multi-part session as slot.
func conflicting(slot model.Slot, enrollments []model.Slot) []model.Slot {
	var out []model.Slot
	for _, e := range enrollments {
		if e.ID == slot.ID || e.IsCompanionOf(slot) {
			continue
		}
		out = append(out, e)
	}
	return out
}
