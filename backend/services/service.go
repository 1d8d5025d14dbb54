// Package services holds the workflow rules of the admissions backend.
//
// Every operation that mutates state checks the caller's capabilities first
// and only then touches the database. Operations that write more than one
// row run inside a single transaction.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"time"

	"admissions/backend/config"
	"admissions/backend/identity"
	"admissions/backend/models"
	"admissions/backend/permissions"
	"admissions/backend/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Services struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Identity identity.Exchanger
	Logger   *log.Logger
	// Now is the clock used for deadline checks.
	Now func() time.Time
}

func New(db *gorm.DB, cfg *config.Config, exchanger identity.Exchanger, logger *log.Logger) *Services {
	if logger == nil {
		logger = log.New(os.Stdout, "[Admissions] ", log.LstdFlags)
	}
	return &Services{
		DB:       db,
		Cfg:      cfg,
		Identity: exchanger,
		Logger:   logger,
		Now:      time.Now,
	}
}

func (s *Services) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Services) db(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}

// guard fails with a forbidden error unless actor holds caps combined by mode.
func guard(actor *models.UserProfile, mode permissions.Mode, caps ...permissions.Capability) error {
	if actor == nil {
		return utils.UnauthorizedErr("Unauthorized")
	}
	if !permissions.Check(actor.Privilege, mode, caps...) {
		return utils.ForbiddenErr("Requires " + permissions.Describe(mode, caps...))
	}
	return nil
}

func requireCap(actor *models.UserProfile, c permissions.Capability) error {
	return guard(actor, permissions.AllOf, c)
}

// transaction runs fn in a database transaction and maps whatever it returns
// to an AppError. Internal failures are logged with their cause.
func (s *Services) transaction(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	err := s.db(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		appErr = utils.Internal("Could not complete "+op, err)
	}
	if appErr.Kind == utils.KindInternal {
		s.Logger.Printf("%s: %v", op, appErr.Cause)
	}
	return appErr
}

// fail logs internal errors from non-transactional reads.
func (s *Services) fail(op string, err error) error {
	if err == nil {
		return nil
	}
	if utils.KindOf(err) == utils.KindInternal {
		s.Logger.Printf("%s: %v", op, err)
	}
	return err
}

// scoped applies the soft-delete filter unless includeDeleted is set.
func scoped(db *gorm.DB, includeDeleted bool) *gorm.DB {
	if includeDeleted {
		return db.Unscoped()
	}
	return db
}

// liveEnrollmentIDs selects the ids of enrollment cycles that are not deleted.
// Children of a deleted cycle are filtered through it, so they disappear with
// the cycle and come back on restore.
func liveEnrollmentIDs(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).Model(&models.EnrollmentCycle{}).Select("id")
}

func liveCourseIDs(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).Model(&models.Course{}).
		Select("id").
		Where("enrollment_id IN (?)", liveEnrollmentIDs(db))
}

// inLiveEnrollment restricts a query on a table with enrollment_id to live cycles.
func inLiveEnrollment(db *gorm.DB) *gorm.DB {
	return db.Where("enrollment_id IN (?)", liveEnrollmentIDs(db))
}

func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func findByID[T any](db *gorm.DB, resource string, id uint, includeDeleted bool) (*T, error) {
	if id == 0 {
		return nil, utils.NotFoundErr(resource)
	}
	var row T
	if err := scoped(db, includeDeleted).First(&row, id).Error; err != nil {
		return nil, utils.DBError(resource, err)
	}
	return &row, nil
}

// jsonField validates a free-form JSON payload. Empty input yields nil.
func jsonField(field string, raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, utils.FieldError(field, "must be valid JSON")
	}
	return datatypes.JSON(raw), nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
