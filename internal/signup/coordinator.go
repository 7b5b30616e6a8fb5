// Package signup runs signups and removals as single transactions over the
// slot registry, and records training-session outcomes.
package signup

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"shift-signup-backend/internal/eligibility"
	"shift-signup-backend/internal/model"
	"shift-signup-backend/internal/notification"
	"shift-signup-backend/internal/rules"
	"shift-signup-backend/internal/store"
)

var (
	// ErrNotEligible is returned when eligibility is enforced and the person
	// may not sign up.
	ErrNotEligible = errors.New("person is not eligible to sign up")
	// ErrNotSignedUp is returned when scoring a person who is not in the session.
	ErrNotSignedUp = errors.New("person is not signed up for the slot")
	// ErrNotTrainingSession is returned when a training operation names a
	// slot that is not a training session.
	ErrNotTrainingSession = errors.New("slot is not a training session")
)

// Evaluator computes eligibility verdicts.
type Evaluator interface {
	Evaluate(ctx context.Context, personID int64, year int, settings eligibility.Settings) (*eligibility.Verdict, error)
}

// Settings are the coordinator's configuration toggles.
type Settings struct {
	Eligibility eligibility.Settings
	// EnforceEligibility evaluates the person before a signup made by an
	// actor without an override role.
	EnforceEligibility bool
}

// Request names who is acting and who is signed up for which slot.
type Request struct {
	ActorID  int64
	PersonID int64
	SlotID   int64
}

// Result is the outcome of a signup attempt. Denials are results, not errors.
type Result struct {
	Status         rules.Code `json:"status"`
	FullForced     bool       `json:"full_forced,omitempty"`
	MultipleForced bool       `json:"multiple_forced,omitempty"`
	TrainerForced  bool       `json:"trainer_forced,omitempty"`
	SignedUp       int        `json:"signed_up"`
	// Slots lists the conflicting enrollments of a multiple-enrollment denial.
	Slots []model.Slot `json:"slots,omitempty"`
}

// Forced reports whether any override was needed.
func (r *Result) Forced() bool {
	return r.FullForced || r.MultipleForced || r.TrainerForced
}

// Coordinator is the transactional core of signups and removals.
type Coordinator struct {
	store      store.Store
	evaluator  Evaluator
	dispatcher notification.Dispatcher
	settings   Settings
	log        *zap.Logger
}

// NewCoordinator wires a coordinator to its collaborators.
func NewCoordinator(s store.Store, evaluator Evaluator, dispatcher notification.Dispatcher, settings Settings, log *zap.Logger) *Coordinator {
	return &Coordinator{
		store:      s,
		evaluator:  evaluator,
		dispatcher: dispatcher,
		settings:   settings,
		log:        log,
	}
}

// Eligibility evaluates the person for the year with the configured toggles.
func (c *Coordinator) Eligibility(ctx context.Context, personID int64, year int) (*eligibility.Verdict, error) {
	return c.evaluator.Evaluate(ctx, personID, year, c.settings.Eligibility)
}

// Signup signs the person up for the slot.
//
// Rule checks, the capacity reservation and the action log entry share one
// transaction. Notifications are dispatched only after it commits.
func (c *Coordinator) Signup(ctx context.Context, req Request) (*Result, error) {
	slot, err := c.store.FindSlot(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}
	actorRoles, err := c.actorRoles(ctx, req.ActorID)
	if err != nil {
		return nil, err
	}

	if c.settings.EnforceEligibility && !actorRoles.CanForceSignups() {
		verdict, err := c.evaluator.Evaluate(ctx, req.PersonID, slot.Year(), c.settings.Eligibility)
		if err != nil {
			return nil, err
		}
		if !verdict.SignupAllowed {
			return nil, fmt.Errorf("%w: person %d for %d", ErrNotEligible, req.PersonID, slot.Year())
		}
	}

	var (
		result  *Result
		outcome notification.Outcome
	)
	err = c.store.Transaction(ctx, func(tx store.Store) error {
		person, err := tx.FindPerson(ctx, req.PersonID)
		if err != nil {
			return err
		}
		slot, err := tx.FindSlot(ctx, req.SlotID)
		if err != nil {
			return err
		}
		in, err := c.ruleInput(ctx, tx, req, *slot, actorRoles)
		if err != nil {
			return err
		}

		decision := rules.Check(in)
		if !decision.Allowed {
			result = &Result{Status: decision.Code, SignedUp: slot.SignedUp, Slots: decision.Conflicts}
			return nil
		}

		res, err := tx.Reserve(ctx, slot.ID, person.ID, decision.Force)
		if err != nil {
			return err
		}
		if !res.OK {
			code := rules.Full
			if res.Reason == store.ReasonAlreadySignedUp {
				code = rules.AlreadySignedUp
			}
			result = &Result{Status: code, SignedUp: res.Slot.SignedUp}
			return nil
		}

		result = &Result{
			Status:         rules.Success,
			FullForced:     decision.FullForced || res.OverCapacity,
			MultipleForced: decision.MultipleForced,
			TrainerForced:  decision.TrainerForced,
			SignedUp:       res.Slot.SignedUp,
		}

		if err := tx.LogAction(ctx, store.ActionEntry{
			ActorID:  req.ActorID,
			TargetID: person.ID,
			Event:    model.EventPersonSlotAdd,
			Data: map[string]any{
				"slot_id":         slot.ID,
				"full_forced":     result.FullForced,
				"multiple_forced": result.MultipleForced,
				"trainer_forced":  result.TrainerForced,
			},
		}); err != nil {
			return err
		}

		committed := res.Slot
		committed.Position = slot.Position
		outcome = notification.Outcome{
			Committed: true,
			PersonID:  person.ID,
			Callsign:  person.Callsign,
			Slot:      committed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Status == rules.Success && result.Forced() {
		c.log.Warn("forced signup",
			zap.Int64("actor_id", req.ActorID),
			zap.Int64("person_id", req.PersonID),
			zap.Int64("slot_id", req.SlotID),
			zap.Int("signed_up", result.SignedUp),
			zap.Bool("full_forced", result.FullForced),
			zap.Bool("multiple_forced", result.MultipleForced),
			zap.Bool("trainer_forced", result.TrainerForced),
		)
	}

	if c.dispatcher != nil {
		for _, ev := range notification.Decide(outcome) {
			c.dispatcher.Dispatch(ev)
		}
	}
	return result, nil
}

// RemoveSignup takes the person out of the slot. It reports false, without
// error, when there was no such signup.
func (c *Coordinator) RemoveSignup(ctx context.Context, req Request) (bool, error) {
	var found bool
	err := c.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.FindSlot(ctx, req.SlotID); err != nil {
			return err
		}
		var err error
		found, err = tx.Release(ctx, req.SlotID, req.PersonID)
		if err != nil || !found {
			return err
		}
		return tx.LogAction(ctx, store.ActionEntry{
			ActorID:  req.ActorID,
			TargetID: req.PersonID,
			Event:    model.EventPersonSlotRemove,
			Data:     map[string]any{"slot_id": req.SlotID},
		})
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (c *Coordinator) actorRoles(ctx context.Context, actorID int64) (model.RoleSet, error) {
	if actorID == 0 {
		return model.NewRoleSet(), nil
	}
	return c.store.PersonRoles(ctx, actorID)
}

// ruleInput gathers what the enrollment rules need from the transaction.
func (c *Coordinator) ruleInput(ctx context.Context, tx store.Store, req Request, slot model.Slot, actorRoles model.RoleSet) (rules.Input, error) {
	positions, err := tx.PersonPositions(ctx, req.PersonID)
	if err != nil {
		return rules.Input{}, err
	}
	have, err := tx.HaveSignup(ctx, req.PersonID, slot.ID)
	if err != nil {
		return rules.Input{}, err
	}

	in := rules.Input{
		Slot:            slot,
		PersonPositions: positions,
		ActorRoles:      actorRoles,
		Self:            req.ActorID == req.PersonID,
		HaveSignup:      have,
	}
	if !slot.Position.IsTraining() {
		return in, nil
	}

	if in.TrainerPositionIDs, err = tx.TrainerPositionIDs(ctx, slot.PositionID); err != nil {
		return rules.Input{}, err
	}
	if in.FrontlinePositionIDs, err = tx.FrontlinePositionIDs(ctx, slot.PositionID); err != nil {
		return rules.Input{}, err
	}
	if in.Enrollments, err = tx.TrainingEnrollments(ctx, req.PersonID, slot.PositionID, slot.Year(), slot.ID); err != nil {
		return rules.Input{}, err
	}
	return in, nil
}
