package signup

import (
	"context"
	"fmt"

	"shift-signup-backend/internal/model"
	"shift-signup-backend/internal/store"
)

// ScoreRequest records how a trainee did at a session.
type ScoreRequest struct {
	ActorID  int64
	SlotID   int64
	PersonID int64
	Rank     *int
	Passed   bool
	Note     *string
}

// TrainerUpdate is the attendance of one trainer.
type TrainerUpdate struct {
	PersonID      int64
	TrainerSlotID int64
	Status        model.TrainerAttendance
}

// Roster is a training session with its students and trainers.
type Roster struct {
	Slot     model.Slot      `json:"slot"`
	Students []store.Student `json:"students"`
	Trainers []store.Trainer `json:"trainers"`
}

// Roster returns the session with everyone taking or teaching it.
func (c *Coordinator) Roster(ctx context.Context, slotID int64) (*Roster, error) {
	session, err := findSession(ctx, c.store, slotID)
	if err != nil {
		return nil, err
	}
	students, err := c.store.Students(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	trainers, err := c.store.Trainers(ctx, *session)
	if err != nil {
		return nil, err
	}
	return &Roster{Slot: *session, Students: students, Trainers: trainers}, nil
}

// ScoreTrainee records the outcome for a person signed up for the session and
// returns the refreshed student list.
func (c *Coordinator) ScoreTrainee(ctx context.Context, req ScoreRequest) ([]store.Student, error) {
	var students []store.Student
	err := c.store.Transaction(ctx, func(tx store.Store) error {
		session, err := findSession(ctx, tx, req.SlotID)
		if err != nil {
			return err
		}
		have, err := tx.HaveSignup(ctx, req.PersonID, session.ID)
		if err != nil {
			return err
		}
		if !have {
			return fmt.Errorf("%w: person %d slot %d", ErrNotSignedUp, req.PersonID, session.ID)
		}

		status, err := tx.FindTraineeStatus(ctx, req.PersonID, session.ID)
		if err != nil {
			return err
		}
		isNew := status == nil
		if isNew {
			status = &model.TraineeStatus{PersonID: req.PersonID, SlotID: session.ID}
		}

		changes := map[string]any{}
		oldRank := status.Rank
		rankChanged := !sameRank(oldRank, req.Rank)
		if isNew || rankChanged {
			changes["rank"] = req.Rank
		}
		if isNew || status.Passed != req.Passed {
			changes["passed"] = req.Passed
		}
		status.Rank = req.Rank
		status.Passed = req.Passed

		if err := tx.SaveTraineeStatus(ctx, status); err != nil {
			return err
		}

		if len(changes) > 0 {
			event := model.EventTraineeStatusCreate
			if !isNew {
				event = model.EventTraineeStatusUpdate
				changes["id"] = status.ID
			}
			changes["slot_id"] = session.ID
			if err := tx.LogAction(ctx, store.ActionEntry{
				ActorID:  req.ActorID,
				TargetID: req.PersonID,
				Event:    event,
				Data:     changes,
			}); err != nil {
				return err
			}
		}

		if rankChanged {
			if err := tx.AddTraineeNote(ctx, &model.TraineeNote{
				PersonID: req.PersonID,
				SlotID:   session.ID,
				Note:     fmt.Sprintf("rank change [%s] -> [%s]", rankLabel(oldRank), rankLabel(req.Rank)),
				IsLog:    true,
			}); err != nil {
				return err
			}
		}
		if req.Note != nil && *req.Note != "" {
			if err := tx.AddTraineeNote(ctx, &model.TraineeNote{
				PersonID: req.PersonID,
				SlotID:   session.ID,
				Note:     *req.Note,
			}); err != nil {
				return err
			}
		}

		students, err = tx.Students(ctx, session.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return students, nil
}

// UpdateTrainerStatuses records trainer attendance at the session and
// returns the refreshed trainer list.
func (c *Coordinator) UpdateTrainerStatuses(ctx context.Context, actorID, slotID int64, updates []TrainerUpdate) ([]store.Trainer, error) {
	var trainers []store.Trainer
	err := c.store.Transaction(ctx, func(tx store.Store) error {
		session, err := findSession(ctx, tx, slotID)
		if err != nil {
			return err
		}

		for _, u := range updates {
			changed, err := tx.SaveTrainerStatus(ctx, &model.TrainerStatus{
				SlotID:        session.ID,
				PersonID:      u.PersonID,
				TrainerSlotID: u.TrainerSlotID,
				Status:        u.Status,
			})
			if err != nil {
				return err
			}
			if !changed {
				continue
			}
			if err := tx.LogAction(ctx, store.ActionEntry{
				ActorID:  actorID,
				TargetID: u.PersonID,
				Event:    model.EventTrainerStatusUpdate,
				Data: map[string]any{
					"slot_id":         session.ID,
					"trainer_slot_id": u.TrainerSlotID,
					"status":          u.Status,
				},
			}); err != nil {
				return err
			}
		}

		trainers, err = tx.Trainers(ctx, *session)
		return err
	})
	if err != nil {
		return nil, err
	}
	return trainers, nil
}

func findSession(ctx context.Context, s store.Slots, slotID int64) (*model.Slot, error) {
	slot, err := s.FindSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if !slot.Position.IsTraining() {
		return nil, fmt.Errorf("%w: slot %d", ErrNotTrainingSession, slotID)
	}
	return slot, nil
}

func sameRank(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func rankLabel(rank *int) string {
	if rank == nil {
		return "no rank"
	}
	return fmt.Sprint(*rank)
}
