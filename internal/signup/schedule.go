package signup

import (
	"context"

	"shift-signup-backend/internal/model"
)

// AvailableSlot is a slot the person could sign up for.
type AvailableSlot struct {
	model.Slot
	PersonAssigned bool `json:"person_assigned"`
}

// Schedule is a person's signups for a year, optionally with the slots open
// to them.
type Schedule struct {
	Slots     []model.Slot    `json:"slots"`
	Available []AvailableSlot `json:"available,omitempty"`
}

// Schedule lists the person's signups for the year. With available set it
// also lists every active slot of a position the person holds, including the
// trainings their frontline positions require.
func (c *Coordinator) Schedule(ctx context.Context, personID int64, year int, available bool) (*Schedule, error) {
	if _, err := c.store.FindPerson(ctx, personID); err != nil {
		return nil, err
	}
	signups, err := c.store.SignupsForYear(ctx, personID, year)
	if err != nil {
		return nil, err
	}
	schedule := &Schedule{Slots: signups}
	if !available {
		return schedule, nil
	}

	held, err := c.store.PersonPositions(ctx, personID)
	if err != nil {
		return nil, err
	}
	positions, err := c.store.ListPositions(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(held))
	seen := map[int64]bool{}
	add := func(id int64) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, p := range positions {
		if !held.Has(p.ID) {
			continue
		}
		add(p.ID)
		if p.TrainingPositionID != nil {
			add(*p.TrainingPositionID)
		}
	}

	slots, err := c.store.SlotsForYear(ctx, year, ids)
	if err != nil {
		return nil, err
	}
	mine := make(map[int64]bool, len(signups))
	for _, s := range signups {
		mine[s.ID] = true
	}
	schedule.Available = make([]AvailableSlot, 0, len(slots))
	for _, s := range slots {
		schedule.Available = append(schedule.Available, AvailableSlot{Slot: s, PersonAssigned: mine[s.ID]})
	}
	return schedule, nil
}
