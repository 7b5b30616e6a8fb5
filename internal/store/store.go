package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"shift-signup-backend/internal/model"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidPosition is returned when a position violates the catalog invariants.
	ErrInvalidPosition = errors.New("invalid position")
)

// People reads the person records, held positions and held roles.
type People interface {
	FindPerson(ctx context.Context, id int64) (*model.Person, error)
	PersonPositions(ctx context.Context, personID int64) (model.PositionSet, error)
	PersonRoles(ctx context.Context, personID int64) (model.RoleSet, error)
	PersonIDsWithRole(ctx context.Context, role model.Role) ([]int64, error)
}

// Positions reads the position catalog.
type Positions interface {
	FindPosition(ctx context.Context, id int64) (*model.Position, error)
	ListPositions(ctx context.Context) ([]model.Position, error)
	TrainerPositionIDs(ctx context.Context, trainingPositionID int64) ([]int64, error)
	FrontlinePositionIDs(ctx context.Context, trainingPositionID int64) ([]int64, error)
}

// Slots is the slot registry. Reserve and Release are the only operations
// that change a slot's signed_up counter.
type Slots interface {
	FindSlot(ctx context.Context, id int64) (*model.Slot, error)
	SlotsForYear(ctx context.Context, year int, positionIDs []int64) ([]model.Slot, error)
	Reserve(ctx context.Context, slotID, personID int64, force bool) (*Reservation, error)
	Release(ctx context.Context, slotID, personID int64) (bool, error)
}

// Signups reads the person to slot associations.
type Signups interface {
	HaveSignup(ctx context.Context, personID, slotID int64) (bool, error)
	TrainingEnrollments(ctx context.Context, personID, positionID int64, year int, excludeSlotID int64) ([]model.Slot, error)
	SignupsForYear(ctx context.Context, personID int64, year int) ([]model.Slot, error)
}

// Training reads and writes training-session outcomes.
type Training interface {
	FindTraineeStatus(ctx context.Context, personID, slotID int64) (*model.TraineeStatus, error)
	SaveTraineeStatus(ctx context.Context, status *model.TraineeStatus) error
	AddTraineeNote(ctx context.Context, note *model.TraineeNote) error
	SaveTrainerStatus(ctx context.Context, status *model.TrainerStatus) (bool, error)
	Students(ctx context.Context, slotID int64) ([]Student, error)
	Trainers(ctx context.Context, session model.Slot) ([]Trainer, error)
}

// Subscriptions manages web push subscriptions.
type Subscriptions interface {
	SaveSubscription(ctx context.Context, sub *model.PushSubscription) error
	FindSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForPeople(ctx context.Context, personIDs []int64) ([]model.PushSubscription, error)
}

// Catalog creates the reference data the engine reads: people, positions,
// slots, review outcomes and photo states.
type Catalog interface {
	CreatePerson(ctx context.Context, person *model.Person) error
	GrantPositions(ctx context.Context, personID int64, positionIDs ...int64) error
	GrantRoles(ctx context.Context, personID int64, roles ...model.Role) error
	CreatePosition(ctx context.Context, position *model.Position) error
	CreateSlot(ctx context.Context, slot *model.Slot) error
	RecordManualReview(ctx context.Context, personID int64, passedAt time.Time) error
	SetPhotoStatus(ctx context.Context, personID int64, status model.PhotoStatus) error
}

// Audit writes action log entries.
type Audit interface {
	LogAction(ctx context.Context, entry ActionEntry) error
}

// Store defines the interface for all database operations.
type Store interface {
	People
	Positions
	Slots
	Signups
	Training
	Subscriptions
	Audit
	Catalog

	// Transaction runs fn against a Store bound to a single database
	// transaction. Any error returned by fn rolls the transaction back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// yearBounds returns the half-open interval covering a calendar year.
func yearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

func notFound(err error, what string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("failed to fetch %s %v: %w", what, id, err)
}
