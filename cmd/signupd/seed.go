package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"shift-signup-backend/internal/db"
	"shift-signup-backend/internal/model"
	"shift-signup-backend/internal/store"
)

// fixture is the YAML shape accepted by the seed command. Positions refer to
// each other, and people and slots refer to positions, by title.
type fixture struct {
	Positions []struct {
		Title    string `yaml:"title" validate:"required"`
		Type     string `yaml:"type" validate:"required,oneof=Frontline Training Command Logistics Other"`
		Training string `yaml:"training"`
		Teaches  string `yaml:"teaches"`
	} `yaml:"positions" validate:"dive"`

	People []struct {
		Callsign  string     `yaml:"callsign" validate:"required"`
		Status    string     `yaml:"status" validate:"required"`
		Positions []string   `yaml:"positions"`
		Roles     []string   `yaml:"roles"`
		Photo     string     `yaml:"photo" validate:"omitempty,oneof=approved pending rejected missing"`
		Reviewed  *time.Time `yaml:"reviewed"`
	} `yaml:"people" validate:"dive"`

	Slots []struct {
		Position    string    `yaml:"position" validate:"required"`
		Begins      time.Time `yaml:"begins" validate:"required"`
		Ends        time.Time `yaml:"ends" validate:"required,gtfield=Begins"`
		Description string    `yaml:"description"`
		Min         int       `yaml:"min" validate:"min=0"`
		Max         int       `yaml:"max" validate:"min=0"`
	} `yaml:"slots" validate:"dive"`
}

var roleNames = map[string]model.Role{
	"admin":            model.RoleAdmin,
	"manage":           model.RoleManage,
	"edit-slots":       model.RoleEditSlots,
	"trainer":          model.RoleTrainer,
	"training-academy": model.RoleTrainingAcademy,
	"mentor":           model.RoleMentor,
}

func seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load people, positions and slots from a YAML fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := readFixture(file)
			if err != nil {
				return err
			}
			gormDB, err := db.Init(&a.cfg.Database, a.log)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			s := store.NewGormStore(gormDB)
			return s.Transaction(cmd.Context(), func(tx store.Store) error {
				return loadFixture(cmd.Context(), tx, fx, a.log)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "fixture file to load")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readFixture(path string) (*fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var fx fixture
	if err := yaml.NewDecoder(f).Decode(&fx); err != nil {
		return nil, fmt.Errorf("failed to decode fixture %s: %w", path, err)
	}
	if err := validator.New().Struct(&fx); err != nil {
		return nil, fmt.Errorf("invalid fixture %s: %w", path, err)
	}
	return &fx, nil
}

func loadFixture(ctx context.Context, c store.Catalog, fx *fixture, log *zap.Logger) error {
	positions := make(map[string]int64, len(fx.Positions))
	lookup := func(title string) (*int64, error) {
		if title == "" {
			return nil, nil
		}
		id, ok := positions[title]
		if !ok {
			return nil, fmt.Errorf("unknown position %q", title)
		}
		return &id, nil
	}

	for _, p := range fx.Positions {
		training, err := lookup(p.Training)
		if err != nil {
			return err
		}
		teaches, err := lookup(p.Teaches)
		if err != nil {
			return err
		}
		pos := &model.Position{
			Title:              p.Title,
			Type:               model.PositionType(p.Type),
			TrainingPositionID: training,
			TeachesPositionID:  teaches,
			Active:             true,
		}
		if err := c.CreatePosition(ctx, pos); err != nil {
			return err
		}
		positions[p.Title] = pos.ID
	}

	for _, p := range fx.People {
		person := &model.Person{Callsign: p.Callsign, Status: model.PersonStatus(p.Status)}
		if err := c.CreatePerson(ctx, person); err != nil {
			return err
		}

		ids := make([]int64, 0, len(p.Positions))
		for _, title := range p.Positions {
			id, err := lookup(title)
			if err != nil {
				return err
			}
			ids = append(ids, *id)
		}
		if err := c.GrantPositions(ctx, person.ID, ids...); err != nil {
			return err
		}

		roles := make([]model.Role, 0, len(p.Roles))
		for _, name := range p.Roles {
			role, ok := roleNames[name]
			if !ok {
				return fmt.Errorf("unknown role %q for %s", name, p.Callsign)
			}
			roles = append(roles, role)
		}
		if err := c.GrantRoles(ctx, person.ID, roles...); err != nil {
			return err
		}

		if p.Photo != "" {
			if err := c.SetPhotoStatus(ctx, person.ID, model.PhotoStatus(p.Photo)); err != nil {
				return err
			}
		}
		if p.Reviewed != nil {
			if err := c.RecordManualReview(ctx, person.ID, *p.Reviewed); err != nil {
				return err
			}
		}
	}

	for _, sl := range fx.Slots {
		id, err := lookup(sl.Position)
		if err != nil {
			return err
		}
		slot := &model.Slot{
			PositionID:  *id,
			Begins:      sl.Begins,
			Ends:        sl.Ends,
			Description: sl.Description,
			Min:         sl.Min,
			Max:         sl.Max,
			Active:      true,
		}
		if err := c.CreateSlot(ctx, slot); err != nil {
			return err
		}
	}

	log.Info("fixture loaded",
		zap.Int("positions", len(fx.Positions)),
		zap.Int("people", len(fx.People)),
		zap.Int("slots", len(fx.Slots)),
	)
	return nil
}
