package store

import (
	"context"
	"encoding/json"
	"fmt"

	"shift-signup-backend/internal/model"
)

// ActionEntry describes one action log record. Zero IDs are stored as NULL.
type ActionEntry struct {
	ActorID  int64
	TargetID int64
	Event    string
	Message  string
	Data     map[string]any
}

func (s *gormStore) LogAction(ctx context.Context, entry ActionEntry) error {
	row := model.ActionLog{
		PersonID:       optionalID(entry.ActorID),
		TargetPersonID: optionalID(entry.TargetID),
		Event:          entry.Event,
		Message:        entry.Message,
	}
	if len(entry.Data) > 0 {
		data, err := json.Marshal(entry.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal action log data: %w", err)
		}
		row.Data = string(data)
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to write action log %q: %w", entry.Event, err)
	}
	return nil
}

func optionalID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
