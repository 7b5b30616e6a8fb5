// Package eligibility decides whether a person may sign up for shifts in a
// given year.
package eligibility

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"shift-signup-backend/internal/model"
)

// ErrEvaluationUnavailable is returned when a collaborator needed to compute
// a verdict failed.
var ErrEvaluationUnavailable = errors.New("eligibility evaluation unavailable")

// ProviderError records which collaborator failed.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s provider: %v", ErrEvaluationUnavailable, e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() []error {
	return []error{ErrEvaluationUnavailable, e.Err}
}

// PhotoStatusProvider reports the approval state of a person's photo.
type PhotoStatusProvider interface {
	RetrieveStatus(ctx context.Context, personID int64) (model.PhotoStatus, error)
}

// ReviewStatusProvider answers manual-review questions.
type ReviewStatusProvider interface {
	PersonPassedForYear(ctx context.Context, personID int64, year int) (bool, error)
	ProspectiveOrAlphaRankForYear(ctx context.Context, personID int64, year int) (int, error)
	CountPassedProspectivesAndAlphasForYear(ctx context.Context, year int) (int, error)
}

// PersonSource looks up the person being evaluated.
type PersonSource interface {
	FindPerson(ctx context.Context, id int64) (*model.Person, error)
}

// Settings are the configuration toggles consulted by Evaluate.
type Settings struct {
	// ManualReviewDisabledAllowSignups treats every person as having passed
	// manual review.
	ManualReviewDisabledAllowSignups bool
	// ManualReviewProspectiveAlphaLimit is the number of prospectives and
	// alphas admitted through manual review per year. Zero disables the limit.
	ManualReviewProspectiveAlphaLimit int
}

// Verdict is the computed eligibility of a person for a year.
type Verdict struct {
	SignupAllowed      bool              `json:"signup_allowed"`
	CallsignApproved   bool              `json:"callsign_approved"`
	ManualReviewPassed bool              `json:"manual_review_passed"`
	PhotoStatus        model.PhotoStatus `json:"photo_status"`
	// ManualReviewWindowMissed is only set for prospectives and alphas.
	ManualReviewWindowMissed *bool `json:"manual_review_window_missed,omitempty"`
}

// Evaluator computes eligibility verdicts. Nothing is cached between calls.
type Evaluator struct {
	people  PersonSource
	photos  PhotoStatusProvider
	reviews ReviewStatusProvider
	log     *zap.Logger
}

// NewEvaluator creates an evaluator over the given collaborators.
func NewEvaluator(people PersonSource, photos PhotoStatusProvider, reviews ReviewStatusProvider, log *zap.Logger) *Evaluator {
	return &Evaluator{people: people, photos: photos, reviews: reviews, log: log}
}

// Evaluate computes the verdict for the person and year. Every sub-flag is
// computed even when an earlier one already denies the signup.
func (e *Evaluator) Evaluate(ctx context.Context, personID int64, year int, settings Settings) (*Verdict, error) {
	person, err := e.people.FindPerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	photoStatus, err := e.photos.RetrieveStatus(ctx, personID)
	if err != nil {
		return nil, e.unavailable("photo", personID, err)
	}

	verdict := &Verdict{
		PhotoStatus:      photoStatus,
		CallsignApproved: photoStatus == model.PhotoApproved,
	}

	if settings.ManualReviewDisabledAllowSignups {
		verdict.ManualReviewPassed = true
	} else {
		passed, err := e.reviews.PersonPassedForYear(ctx, personID, year)
		if err != nil {
			return nil, e.unavailable("manual review", personID, err)
		}
		verdict.ManualReviewPassed = passed
	}

	if person.Status.IsNewVolunteer() {
		missed := false
		if verdict.ManualReviewPassed && !settings.ManualReviewDisabledAllowSignups {
			missed, err = e.windowMissed(ctx, personID, year, settings.ManualReviewProspectiveAlphaLimit)
			if err != nil {
				return nil, e.unavailable("manual review", personID, err)
			}
		}
		verdict.ManualReviewWindowMissed = &missed
	}

	switch {
	case person.Status == model.StatusAuditor:
		verdict.SignupAllowed = verdict.ManualReviewPassed
	case person.Status.CanWorkShifts():
		verdict.SignupAllowed = verdict.CallsignApproved && verdict.ManualReviewPassed
	}
	if verdict.ManualReviewWindowMissed != nil && *verdict.ManualReviewWindowMissed {
		verdict.SignupAllowed = false
	}

	return verdict, nil
}

// windowMissed reports whether the person passed review after the yearly
// allowance of prospectives and alphas was used up. While the yearly count is
// within the limit nobody can have missed it, so the rank is not fetched.
func (e *Evaluator) windowMissed(ctx context.Context, personID int64, year, limit int) (bool, error) {
	if limit <= 0 {
		return false, nil
	}
	count, err := e.reviews.CountPassedProspectivesAndAlphasForYear(ctx, year)
	if err != nil {
		return false, err
	}
	if count <= limit {
		return false, nil
	}
	rank, err := e.reviews.ProspectiveOrAlphaRankForYear(ctx, personID, year)
	if err != nil {
		return false, err
	}
	return rank > limit, nil
}

func (e *Evaluator) unavailable(provider string, personID int64, err error) error {
	e.log.Warn("eligibility provider failed",
		zap.String("provider", provider),
		zap.Int64("person_id", personID),
		zap.Error(err),
	)
	return &ProviderError{Provider: provider, Err: err}
}
