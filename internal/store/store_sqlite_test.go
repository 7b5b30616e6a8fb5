package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shift-signup-backend/config"
	"shift-signup-backend/internal/db"
	"shift-signup-backend/internal/model"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	return openSQLiteStore(t, &config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
}

// newSQLiteFileStore uses a database file and asks for a multi-connection pool.
func newSQLiteFileStore(t *testing.T) Store {
	t.Helper()
	return openSQLiteStore(t, &config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "signup.db"),
		MaxOpenConns: 8,
		LogLevel:     "silent",
	})
}

func openSQLiteStore(t *testing.T, cfg *config.DatabaseConfig) Store {
	t.Helper()
	gdb, err := db.Init(cfg, zap.NewNop())
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewGormStore(gdb)
}

func mustPerson(t *testing.T, s Store, callsign string, status model.PersonStatus) *model.Person {
	t.Helper()
	p := &model.Person{Callsign: callsign, Status: status}
	require.NoError(t, s.CreatePerson(context.Background(), p))
	return p
}

func mustPosition(t *testing.T, s Store, p *model.Position) *model.Position {
	t.Helper()
	require.NoError(t, s.CreatePosition(context.Background(), p))
	return p
}

func mustSlot(t *testing.T, s Store, positionID int64, begins time.Time, desc string, max int) *model.Slot {
	t.Helper()
	slot := &model.Slot{
		PositionID:  positionID,
		Begins:      begins,
		Ends:        begins.Add(4 * time.Hour),
		Description: desc,
		Max:         max,
	}
	require.NoError(t, s.CreateSlot(context.Background(), slot))
	return slot
}

var aug25 = time.Date(2026, time.August, 25, 10, 0, 0, 0, time.UTC)

func TestReserveAndRelease(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	pos := mustPosition(t, s, &model.Position{Title: "Dirt", Type: model.PositionFrontline})
	person := mustPerson(t, s, "Hubcap", model.StatusActive)
	slot := mustSlot(t, s, pos.ID, aug25, "Dirt shift", 1)

	res, err := s.Reserve(ctx, slot.ID, person.ID, false)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, 1, res.Slot.SignedUp)
	assert.False(t, res.OverCapacity)

	res, err = s.Reserve(ctx, slot.ID, person.ID, false)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, ReasonAlreadySignedUp, res.Reason)

	other := mustPerson(t, s, "Sparkle", model.StatusActive)
	res, err = s.Reserve(ctx, slot.ID, other.ID, false)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, ReasonFull, res.Reason)
	have, err := s.HaveSignup(ctx, other.ID, slot.ID)
	require.NoError(t, err)
	assert.False(t, have, "a refused reservation must leave no signup behind")

	res, err = s.Reserve(ctx, slot.ID, other.ID, true)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.True(t, res.OverCapacity)
	assert.Equal(t, 2, res.Slot.SignedUp)

	found, err := s.Release(ctx, slot.ID, person.ID)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.Release(ctx, slot.ID, person.ID)
	require.NoError(t, err)
	assert.False(t, found)

	got, err := s.FindSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SignedUp)
	assert.Equal(t, "Dirt", got.Position.Title)
}

func TestReleaseNeverGoesBelowZero(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	pos := mustPosition(t, s, &model.Position{Title: "Dirt", Type: model.PositionFrontline})
	person := mustPerson(t, s, "Hubcap", model.StatusActive)
	slot := mustSlot(t, s, pos.ID, aug25, "", 3)

	require.NoError(t, s.DB().Create(&model.PersonSlot{PersonID: person.ID, SlotID: slot.ID}).Error)

	found, err := s.Release(ctx, slot.ID, person.ID)
	require.NoError(t, err)
	assert.True(t, found)

	got, err := s.FindSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SignedUp)
}

func TestReserveConcurrentNeverExceedsMax(t *testing.T) {
	testCases := []struct {
		name string
		open func(*testing.T) Store
	}{
		{"shared memory database", newSQLiteStore},
		{"database file with a multi-connection pool", newSQLiteFileStore},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			s := tc.open(t)
			pos := mustPosition(t, s, &model.Position{Title: "Dirt", Type: model.PositionFrontline})
			slot := mustSlot(t, s, pos.ID, aug25, "", 5)

			const attempts = 20
			people := make([]*model.Person, attempts)
			for i := range people {
				people[i] = mustPerson(t, s, fmt.Sprintf("ranger-%02d", i), model.StatusActive)
			}

			var (
				wg    sync.WaitGroup
				mu    sync.Mutex
				ok    int
				full  int
				errs  []error
				start = make(chan struct{})
			)
			for _, p := range people {
				wg.Add(1)
				go func(personID int64) {
					defer wg.Done()
					<-start
					err := s.Transaction(ctx, func(tx Store) error {
						res, err := tx.Reserve(ctx, slot.ID, personID, false)
						if err != nil {
							return err
						}
						mu.Lock()
						defer mu.Unlock()
						switch {
						case res.OK:
							ok++
						case res.Reason == ReasonFull:
							full++
						}
						return nil
					})
					if err != nil {
						mu.Lock()
						errs = append(errs, err)
						mu.Unlock()
					}
				}(p.ID)
			}
			close(start)
			wg.Wait()

			assert.Empty(t, errs)
			assert.Equal(t, 5, ok)
			assert.Equal(t, attempts-5, full)

			got, err := s.FindSlot(ctx, slot.ID)
			require.NoError(t, err)
			assert.Equal(t, 5, got.SignedUp)

			var links int64
			require.NoError(t, s.DB().Model(&model.PersonSlot{}).Where("slot_id = ?", slot.ID).Count(&links).Error)
			assert.Equal(t, int64(5), links)
		})
	}
}

func TestTransactionRollsBackReservation(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	pos := mustPosition(t, s, &model.Position{Title: "Dirt", Type: model.PositionFrontline})
	person := mustPerson(t, s, "Hubcap", model.StatusActive)
	slot := mustSlot(t, s, pos.ID, aug25, "", 2)

	err := s.Transaction(ctx, func(tx Store) error {
		if _, err := tx.Reserve(ctx, slot.ID, person.ID, false); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	got, err := s.FindSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SignedUp)
	have, err := s.HaveSignup(ctx, person.ID, slot.ID)
	require.NoError(t, err)
	assert.False(t, have)
}

func TestCreateSlotDetectsParts(t *testing.T) {
	s := newSQLiteStore(t)
	training := mustPosition(t, s, &model.Position{Title: "Green Dot Training", Type: model.PositionTraining})

	part1 := mustSlot(t, s, training.ID, aug25, "Elysian Fields - Part 1", 10)
	part2 := mustSlot(t, s, training.ID, aug25.Add(24*time.Hour), "Elysian Fields - Part 2", 10)
	single := mustSlot(t, s, training.ID, aug25.Add(48*time.Hour), "Berlin", 10)

	assert.True(t, part1.MultiPart)
	assert.Equal(t, "elysian fields", part1.SessionGroup)
	assert.True(t, part1.IsCompanionOf(*part2))
	assert.False(t, single.MultiPart)
	assert.False(t, single.IsCompanionOf(*part1))
}

func TestCreatePositionValidatesReferences(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	training := mustPosition(t, s, &model.Position{Title: "Green Dot Training", Type: model.PositionTraining})
	frontline := mustPosition(t, s, &model.Position{Title: "Green Dot", Type: model.PositionFrontline, TrainingPositionID: &training.ID})

	testCases := []struct {
		name     string
		position model.Position
	}{
		{
			name:     "prerequisite is not a training",
			position: model.Position{Title: "Sanctuary", Type: model.PositionFrontline, TrainingPositionID: &frontline.ID},
		},
		{
			name:     "prerequisite does not exist",
			position: model.Position{Title: "Tow Truck", Type: model.PositionFrontline, TrainingPositionID: ptr(int64(999))},
		},
		{
			name:     "non-frontline with prerequisite",
			position: model.Position{Title: "Logistics", Type: model.PositionLogistics, TrainingPositionID: &training.ID},
		},
		{
			name:     "trainer teaches a frontline position",
			position: model.Position{Title: "Green Dot Mentor", Type: model.PositionOther, TeachesPositionID: &frontline.ID},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.CreatePosition(ctx, &tc.position)
			assert.ErrorIs(t, err, ErrInvalidPosition)
		})
	}

	ids, err := s.FrontlinePositionIDs(ctx, training.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{frontline.ID}, ids)
}

func TestTrainingEnrollments(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	training := mustPosition(t, s, &model.Position{Title: "Green Dot Training", Type: model.PositionTraining})
	person := mustPerson(t, s, "Hubcap", model.StatusActive)

	first := mustSlot(t, s, training.ID, aug25, "Berlin", 10)
	second := mustSlot(t, s, training.ID, aug25.Add(24*time.Hour), "Paris", 10)
	lastYear := mustSlot(t, s, training.ID, aug25.AddDate(-1, 0, 0), "Berlin", 10)
	target := mustSlot(t, s, training.ID, aug25.Add(48*time.Hour), "Rome", 10)

	for _, slot := range []*model.Slot{first, second, lastYear} {
		_, err := s.Reserve(ctx, slot.ID, person.ID, false)
		require.NoError(t, err)
	}

	got, err := s.TrainingEnrollments(ctx, person.ID, training.ID, 2026, target.ID)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, s.SaveTraineeStatus(ctx, &model.TraineeStatus{PersonID: person.ID, SlotID: first.ID, Passed: false}))

	got, err = s.TrainingEnrollments(ctx, person.ID, training.ID, 2026, target.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, second.ID, got[0].ID)

	got, err = s.TrainingEnrollments(ctx, person.ID, training.ID, 2026, second.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestManualReviewsRanking(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	reviews := NewManualReviews(s.DB())

	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	first := mustPerson(t, s, "First", model.StatusProspective)
	active := mustPerson(t, s, "Veteran", model.StatusActive)
	second := mustPerson(t, s, "Second", model.StatusAlpha)
	late := mustPerson(t, s, "Late", model.StatusProspective)

	require.NoError(t, s.RecordManualReview(ctx, first.ID, base))
	require.NoError(t, s.RecordManualReview(ctx, active.ID, base.Add(time.Hour)))
	require.NoError(t, s.RecordManualReview(ctx, second.ID, base.Add(2*time.Hour)))
	require.NoError(t, s.RecordManualReview(ctx, first.ID, base.Add(3*time.Hour)))
	require.NoError(t, s.RecordManualReview(ctx, late.ID, base.AddDate(-1, 0, 0)))

	count, err := reviews.CountPassedProspectivesAndAlphasForYear(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rank, err := reviews.ProspectiveOrAlphaRankForYear(ctx, second.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, rank)

	rank, err = reviews.ProspectiveOrAlphaRankForYear(ctx, active.ID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 0, rank)

	passed, err := reviews.PersonPassedForYear(ctx, active.ID, 2026)
	require.NoError(t, err)
	assert.True(t, passed)

	passed, err = reviews.PersonPassedForYear(ctx, late.ID, 2026)
	require.NoError(t, err)
	assert.False(t, passed)
}

func TestPhotoStatuses(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	photos := NewPhotoStatuses(s.DB())
	person := mustPerson(t, s, "Hubcap", model.StatusActive)

	status, err := photos.RetrieveStatus(ctx, person.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PhotoMissing, status)

	require.NoError(t, s.SetPhotoStatus(ctx, person.ID, model.PhotoPending))
	require.NoError(t, s.SetPhotoStatus(ctx, person.ID, model.PhotoApproved))

	status, err = photos.RetrieveStatus(ctx, person.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PhotoApproved, status)
}

func TestRoster(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	training := mustPosition(t, s, &model.Position{Title: "Green Dot Training", Type: model.PositionTraining})
	trainerPos := mustPosition(t, s, &model.Position{Title: "Green Dot Trainer", Type: model.PositionTraining, TeachesPositionID: &training.ID})

	session := mustSlot(t, s, training.ID, aug25, "Berlin", 10)
	teach := mustSlot(t, s, trainerPos.ID, aug25, "Berlin", 2)
	otherTime := mustSlot(t, s, trainerPos.ID, aug25.Add(time.Hour), "Berlin", 2)

	student := mustPerson(t, s, "Alpha", model.StatusAlpha)
	scored := mustPerson(t, s, "Bravo", model.StatusAlpha)
	trainer := mustPerson(t, s, "Teach", model.StatusActive)
	elsewhere := mustPerson(t, s, "Away", model.StatusActive)

	for _, pair := range [][2]int64{{session.ID, student.ID}, {session.ID, scored.ID}, {teach.ID, trainer.ID}, {otherTime.ID, elsewhere.ID}} {
		_, err := s.Reserve(ctx, pair[0], pair[1], false)
		require.NoError(t, err)
	}

	rank := 2
	require.NoError(t, s.SaveTraineeStatus(ctx, &model.TraineeStatus{PersonID: scored.ID, SlotID: session.ID, Rank: &rank, Passed: true}))

	students, err := s.Students(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Alpha", students[0].Callsign)
	assert.Nil(t, students[0].Passed)
	assert.Equal(t, "Bravo", students[1].Callsign)
	require.NotNil(t, students[1].Passed)
	assert.True(t, *students[1].Passed)
	assert.Equal(t, 2, *students[1].Rank)

	trainers, err := s.Trainers(ctx, *session)
	require.NoError(t, err)
	require.Len(t, trainers, 1)
	assert.Equal(t, trainer.ID, trainers[0].PersonID)
	assert.Equal(t, teach.ID, trainers[0].TrainerSlotID)
	assert.Nil(t, trainers[0].Status)

	changed, err := s.SaveTrainerStatus(ctx, &model.TrainerStatus{SlotID: session.ID, PersonID: trainer.ID, TrainerSlotID: teach.ID, Status: model.TrainerAttended})
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = s.SaveTrainerStatus(ctx, &model.TrainerStatus{SlotID: session.ID, PersonID: trainer.ID, TrainerSlotID: teach.ID, Status: model.TrainerAttended})
	require.NoError(t, err)
	assert.False(t, changed)

	trainers, err = s.Trainers(ctx, *session)
	require.NoError(t, err)
	require.NotNil(t, trainers[0].Status)
	assert.Equal(t, model.TrainerAttended, *trainers[0].Status)
}

func TestLogAction(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	require.NoError(t, s.LogAction(ctx, ActionEntry{
		ActorID:  1,
		TargetID: 2,
		Event:    model.EventPersonSlotAdd,
		Data:     map[string]any{"slot_id": 9, "forced": true},
	}))
	require.NoError(t, s.LogAction(ctx, ActionEntry{Event: model.EventPersonSlotRemove}))

	var rows []model.ActionLog
	require.NoError(t, s.DB().Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), *rows[0].PersonID)
	assert.Equal(t, int64(2), *rows[0].TargetPersonID)
	assert.JSONEq(t, `{"slot_id":9,"forced":true}`, rows[0].Data)
	assert.Nil(t, rows[1].PersonID)
	assert.Empty(t, rows[1].Data)
}

func TestSubscriptions(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	require.NoError(t, s.SaveSubscription(ctx, &model.PushSubscription{Endpoint: "https://push/a", PersonID: 1, P256DH: "k", Auth: "a"}))
	require.NoError(t, s.SaveSubscription(ctx, &model.PushSubscription{Endpoint: "https://push/a", PersonID: 2, P256DH: "k2", Auth: "a2"}))
	require.NoError(t, s.SaveSubscription(ctx, &model.PushSubscription{Endpoint: "https://push/b", PersonID: 3, P256DH: "k", Auth: "a"}))

	sub, err := s.FindSubscription(ctx, "https://push/a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), sub.PersonID)
	assert.Equal(t, "k2", sub.P256DH)

	subs, err := s.SubscriptionsForPeople(ctx, []int64{2, 3})
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	require.NoError(t, s.DeleteSubscription(ctx, "https://push/a"))
	_, err = s.FindSubscription(ctx, "https://push/a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindMissingRecords(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	_, err := s.FindSlot(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindPerson(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindPosition(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func ptr[T any](v T) *T { return &v }
