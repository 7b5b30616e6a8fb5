package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"shift-signup-backend/internal/model"
)

func (s *gormStore) FindPerson(ctx context.Context, id int64) (*model.Person, error) {
	var person model.Person
	if err := s.db.WithContext(ctx).First(&person, id).Error; err != nil {
		return nil, notFound(err, "person", id)
	}
	return &person, nil
}

func (s *gormStore) PersonPositions(ctx context.Context, personID int64) (model.PositionSet, error) {
	var ids []int64
	if err := s.db.WithContext(ctx).Model(&model.PersonPosition{}).
		Where("person_id = ?", personID).
		Pluck("position_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch positions for person %d: %w", personID, err)
	}
	return model.NewPositionSet(ids...), nil
}

func (s *gormStore) PersonRoles(ctx context.Context, personID int64) (model.RoleSet, error) {
	var ids []int64
	if err := s.db.WithContext(ctx).Model(&model.PersonRole{}).
		Where("person_id = ?", personID).
		Pluck("role_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch roles for person %d: %w", personID, err)
	}
	roles := make([]model.Role, len(ids))
	for i, id := range ids {
		roles[i] = model.Role(id)
	}
	return model.NewRoleSet(roles...), nil
}

func (s *gormStore) PersonIDsWithRole(ctx context.Context, role model.Role) ([]int64, error) {
	var ids []int64
	if err := s.db.WithContext(ctx).Model(&model.PersonRole{}).
		Where("role_id = ?", role).
		Order("person_id").
		Pluck("person_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch people with role %d: %w", role, err)
	}
	return ids, nil
}

func (s *gormStore) CreatePerson(ctx context.Context, person *model.Person) error {
	if err := s.db.WithContext(ctx).Create(person).Error; err != nil {
		return fmt.Errorf("failed to create person %q: %w", person.Callsign, err)
	}
	return nil
}

func (s *gormStore) GrantPositions(ctx context.Context, personID int64, positionIDs ...int64) error {
	if len(positionIDs) == 0 {
		return nil
	}
	rows := make([]model.PersonPosition, len(positionIDs))
	for i, id := range positionIDs {
		rows[i] = model.PersonPosition{PersonID: personID, PositionID: id}
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to grant positions to person %d: %w", personID, err)
	}
	return nil
}

func (s *gormStore) GrantRoles(ctx context.Context, personID int64, roles ...model.Role) error {
	if len(roles) == 0 {
		return nil
	}
	rows := make([]model.PersonRole, len(roles))
	for i, r := range roles {
		rows[i] = model.PersonRole{PersonID: personID, RoleID: r}
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to grant roles to person %d: %w", personID, err)
	}
	return nil
}
