package notification

import (
	"fmt"
	"time"

	"shift-signup-backend/internal/model"
)

// Kind names a notification event.
type Kind string

const (
	KindSlotSignup          Kind = "slot-signup"
	KindTrainingSignup      Kind = "training-signup"
	KindTrainingSessionFull Kind = "training-session-full"
)

// Recipient addresses an event to one person or to everyone holding a role.
type Recipient struct {
	PersonID int64      `json:"person_id,omitempty"`
	Role     model.Role `json:"role,omitempty"`
}

// Event is the descriptor handed to the delivery workers.
type Event struct {
	ID        string         `json:"id"`
	Kind      Kind           `json:"kind"`
	Recipient Recipient      `json:"recipient"`
	Payload   map[string]any `json:"payload"`
}

// Outcome is what the signup coordinator knows once a signup has committed.
type Outcome struct {
	Committed bool
	PersonID  int64
	Callsign  string
	// Slot carries the counter as it was right after the increment.
	Slot model.Slot
}

// Decide returns the events a signup outcome produces: nothing for a signup
// that did not commit, otherwise one confirmation, plus a full-session alert
// to the training academy when a training slot reached its max.
func Decide(o Outcome) []Event {
	if !o.Committed {
		return nil
	}

	payload := map[string]any{
		"person_id":   o.PersonID,
		"callsign":    o.Callsign,
		"slot_id":     o.Slot.ID,
		"position_id": o.Slot.PositionID,
		"position":    o.Slot.Position.Title,
		"description": o.Slot.Description,
		"begins":      o.Slot.Begins.Format(time.RFC3339),
		"signed_up":   o.Slot.SignedUp,
		"max":         o.Slot.Max,
	}

	kind := KindSlotSignup
	if o.Slot.Position.IsTraining() {
		kind = KindTrainingSignup
	}
	events := []Event{{
		Kind:      kind,
		Recipient: Recipient{PersonID: o.PersonID},
		Payload:   payload,
	}}

	if o.Slot.Position.IsTraining() && o.Slot.SignedUp >= o.Slot.Max {
		events = append(events, Event{
			Kind:      KindTrainingSessionFull,
			Recipient: Recipient{Role: model.RoleTrainingAcademy},
			Payload:   payload,
		})
	}
	return events
}

// Message renders the push notification text for the event.
func (e Event) Message() (title, body string) {
	label := fmt.Sprint(e.Payload["description"])
	if pos, ok := e.Payload["position"].(string); ok && pos != "" {
		label = pos + " - " + label
	}
	switch e.Kind {
	case KindTrainingSignup:
		return "Training signup confirmed", fmt.Sprintf("You are signed up for %s on %v", label, e.Payload["begins"])
	case KindTrainingSessionFull:
		return "Training session full", fmt.Sprintf("%s is at %v of %v", label, e.Payload["signed_up"], e.Payload["max"])
	default:
		return "Shift signup confirmed", fmt.Sprintf("You are signed up for %s on %v", label, e.Payload["begins"])
	}
}
