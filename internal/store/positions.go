package store

import (
	"context"
	"fmt"

	"shift-signup-backend/internal/model"
)

func (s *gormStore) FindPosition(ctx context.Context, id int64) (*model.Position, error) {
	var position model.Position
	if err := s.db.WithContext(ctx).First(&position, id).Error; err != nil {
		return nil, notFound(err, "position", id)
	}
	return &position, nil
}

func (s *gormStore) ListPositions(ctx context.Context) ([]model.Position, error) {
	var positions []model.Position
	if err := s.db.WithContext(ctx).Order("title").Find(&positions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch positions: %w", err)
	}
	return positions, nil
}

// TrainerPositionIDs lists the positions whose holders teach the training.
func (s *gormStore) TrainerPositionIDs(ctx context.Context, trainingPositionID int64) ([]int64, error) {
	var ids []int64
	if err := s.db.WithContext(ctx).Model(&model.Position{}).
		Where("teaches_position_id = ?", trainingPositionID).
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch trainer positions for %d: %w", trainingPositionID, err)
	}
	return ids, nil
}

// FrontlinePositionIDs lists the frontline positions that require the training.
func (s *gormStore) FrontlinePositionIDs(ctx context.Context, trainingPositionID int64) ([]int64, error) {
	var ids []int64
	if err := s.db.WithContext(ctx).Model(&model.Position{}).
		Where("training_position_id = ?", trainingPositionID).
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch frontline positions for %d: %w", trainingPositionID, err)
	}
	return ids, nil
}

// CreatePosition stores a position after checking that any training it
// references is a training position.
func (s *gormStore) CreatePosition(ctx context.Context, position *model.Position) error {
	for _, ref := range []*int64{position.TrainingPositionID, position.TeachesPositionID} {
		if ref == nil {
			continue
		}
		training, err := s.FindPosition(ctx, *ref)
		if err != nil {
			return fmt.Errorf("%w: %q references position %d: %v", ErrInvalidPosition, position.Title, *ref, err)
		}
		if !training.IsTraining() {
			return fmt.Errorf("%w: %q references %q which is not a training position", ErrInvalidPosition, position.Title, training.Title)
		}
	}
	if position.TrainingPositionID != nil && position.Type != model.PositionFrontline {
		return fmt.Errorf("%w: only frontline positions name a training prerequisite", ErrInvalidPosition)
	}

	if err := s.db.WithContext(ctx).Create(position).Error; err != nil {
		return fmt.Errorf("failed to create position %q: %w", position.Title, err)
	}
	return nil
}
