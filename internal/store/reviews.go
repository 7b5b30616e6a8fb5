package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shift-signup-backend/internal/model"
)

// ManualReviews answers manual-review questions from the manual_reviews table.
type ManualReviews struct {
	db *gorm.DB
}

// NewManualReviews creates a review status source backed by db.
func NewManualReviews(db *gorm.DB) *ManualReviews {
	return &ManualReviews{db: db}
}

// PersonPassedForYear reports whether the person passed manual review in the year.
func (m *ManualReviews) PersonPassedForYear(ctx context.Context, personID int64, year int) (bool, error) {
	start, end := yearBounds(year)

	var count int64
	if err := m.db.WithContext(ctx).Model(&model.ManualReview{}).
		Where("person_id = ? AND passed_at >= ? AND passed_at < ?", personID, start, end).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to look up manual review for person %d: %w", personID, err)
	}
	return count > 0, nil
}

// ProspectiveOrAlphaRankForYear returns the 1-based position of the person in
// the order prospectives and alphas passed review in the year, or 0 when the
// person is not among them.
func (m *ManualReviews) ProspectiveOrAlphaRankForYear(ctx context.Context, personID int64, year int) (int, error) {
	order, err := m.passedNewVolunteers(ctx, year)
	if err != nil {
		return 0, err
	}
	for i, id := range order {
		if id == personID {
			return i + 1, nil
		}
	}
	return 0, nil
}

// CountPassedProspectivesAndAlphasForYear counts the prospectives and alphas
// who passed review in the year.
func (m *ManualReviews) CountPassedProspectivesAndAlphasForYear(ctx context.Context, year int) (int, error) {
	order, err := m.passedNewVolunteers(ctx, year)
	if err != nil {
		return 0, err
	}
	return len(order), nil
}

func (m *ManualReviews) passedNewVolunteers(ctx context.Context, year int) ([]int64, error) {
	start, end := yearBounds(year)

	var rows []model.ManualReview
	if err := m.db.WithContext(ctx).
		Joins("JOIN persons ON persons.id = manual_reviews.person_id").
		Where("persons.status IN ?", []model.PersonStatus{model.StatusProspective, model.StatusAlpha}).
		Where("manual_reviews.passed_at >= ? AND manual_reviews.passed_at < ?", start, end).
		Order("manual_reviews.passed_at, manual_reviews.id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to rank manual reviews for %d: %w", year, err)
	}

	seen := make(map[int64]struct{}, len(rows))
	order := make([]int64, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.PersonID]; ok {
			continue
		}
		seen[r.PersonID] = struct{}{}
		order = append(order, r.PersonID)
	}
	return order, nil
}

// PhotoStatuses reads photo approval states from the person_photos table.
type PhotoStatuses struct {
	db *gorm.DB
}

// NewPhotoStatuses creates a photo status source backed by db.
func NewPhotoStatuses(db *gorm.DB) *PhotoStatuses {
	return &PhotoStatuses{db: db}
}

// RetrieveStatus returns the person's photo state; no row means missing.
func (p *PhotoStatuses) RetrieveStatus(ctx context.Context, personID int64) (model.PhotoStatus, error) {
	var photos []model.PersonPhoto
	if err := p.db.WithContext(ctx).Where("person_id = ?", personID).Limit(1).Find(&photos).Error; err != nil {
		return "", fmt.Errorf("failed to fetch photo for person %d: %w", personID, err)
	}
	if len(photos) == 0 {
		return model.PhotoMissing, nil
	}
	return photos[0].Status, nil
}

func (s *gormStore) RecordManualReview(ctx context.Context, personID int64, passedAt time.Time) error {
	review := model.ManualReview{PersonID: personID, PassedAt: passedAt}
	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		return fmt.Errorf("failed to record manual review for person %d: %w", personID, err)
	}
	return nil
}

func (s *gormStore) SetPhotoStatus(ctx context.Context, personID int64, status model.PhotoStatus) error {
	photo := model.PersonPhoto{PersonID: personID, Status: status}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "person_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&photo).Error; err != nil {
		return fmt.Errorf("failed to set photo status for person %d: %w", personID, err)
	}
	return nil
}
