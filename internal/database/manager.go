package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/intervia/server/internal/model"
)

type DatabaseManager struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB) *DatabaseManager {
	m := &DatabaseManager{
		db:     db,
		logger: slog.With("logger", "dbm"),
	}

	return m
}

func (mm *DatabaseManager) Create(s any) error {
	if mm == nil || mm.db == nil {
		return nil
	}

	err := mm.db.Create(s).Error

	if err != nil {
		mm.logger.Error("error create object", slog.Any("error", err))
	}

	return err
}

func (mm *DatabaseManager) Save(s any) error {
	if mm == nil || mm.db == nil {
		return nil
	}

	err := mm.db.Save(s).Error

	if err != nil {
		mm.logger.Error("error saving object", slog.Any("error", err))
	}

	return err
}

// ForceSave is a full-replace upsert keyed on the primary key. Used for
// availability records, which have no merge semantics.
func (mm *DatabaseManager) ForceSave(s any) error {
	if mm == nil || mm.db == nil {
		return nil
	}

	err := mm.db.Clauses(clause.OnConflict{UpdateAll: true}).Save(s).Error

	if err != nil {
		mm.logger.Error("error saving object", slog.Any("error", err))
	}

	return err
}

func (mm *DatabaseManager) MissionQuery() *MissionQuery {
	return NewMissionQuery(mm.db)
}

func (mm *DatabaseManager) ChallengeQuery() *ChallengeQuery {
	return NewChallengeQuery(mm.db)
}

func (mm *DatabaseManager) UserQuery() *UserQuery {
	return NewUserQuery(mm.db)
}

func (mm *DatabaseManager) AvailabilityQuery() *AvailabilityQuery {
	return NewAvailabilityQuery(mm.db)
}

func (mm *DatabaseManager) ChangeQuery() *ChangeQuery {
	return NewChangeQuery(mm.db)
}

func (mm *DatabaseManager) Migrate() error {
	if mm == nil || mm.db == nil {
		return fmt.Errorf("no database")
	}

	if err := mm.db.AutoMigrate(
		&model.User{},
		&model.Mission{},
		&model.Challenge{},
		&model.Availability{},
		&model.Change{},
	); err != nil {
		return err
	}

	return nil
}
