package services

import (
	"context"
	"strings"
	"time"

	"admissions/backend/models"
	"admissions/backend/permissions"
	"admissions/backend/utils"

	"gorm.io/gorm"
)

type EnrollmentInput struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	PictureURL  *string    `json:"picture_url"`
	OpenStatus  *bool      `json:"open_status"`
	EndAt       *time.Time `json:"end_at"`
}

// ListEnrollments returns enrollment cycles, newest first. Listing soft-deleted
// cycles requires manage_enrollment.
func (s *Services) ListEnrollments(ctx context.Context, actor *models.UserProfile, search string, includeDeleted bool) ([]models.EnrollmentCycle, error) {
	if includeDeleted {
		if err := requireCap(actor, permissions.ManageEnrollment); err != nil {
			return nil, err
		}
	}
	query := scoped(s.db(ctx), includeDeleted).Model(&models.EnrollmentCycle{})
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	var enrollments []models.EnrollmentCycle
	if err := query.Order("id DESC").Find(&enrollments).Error; err != nil {
		return nil, s.fail("list enrollments", utils.DBError("Enrollment", err))
	}
	return enrollments, nil
}

func (s *Services) GetEnrollment(ctx context.Context, id uint) (*models.EnrollmentCycle, error) {
	enrollment, err := findByID[models.EnrollmentCycle](s.db(ctx), "Enrollment", id, false)
	return enrollment, s.fail("get enrollment", err)
}

func (s *Services) CreateEnrollment(ctx context.Context, actor *models.UserProfile, in EnrollmentInput) (*models.EnrollmentCycle, error) {
	if err := requireCap(actor, permissions.ManageEnrollment); err != nil {
		return nil, err
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, utils.FieldError("name", "is required")
	}
	enrollment := &models.EnrollmentCycle{OpenStatus: true}
	in.apply(enrollment)
	if err := s.db(ctx).Create(enrollment).Error; err != nil {
		return nil, s.fail("create enrollment", utils.Internal("Could not create enrollment", err))
	}
	return enrollment, nil
}

func (in EnrollmentInput) apply(e *models.EnrollmentCycle) {
	setString(&e.Name, in.Name)
	setString(&e.Description, in.Description)
	setString(&e.PictureURL, in.PictureURL)
	if in.OpenStatus != nil {
		e.OpenStatus = *in.OpenStatus
	}
	if in.EndAt != nil {
		end := in.EndAt.UTC()
		e.EndAt = &end
	}
}

func (s *Services) UpdateEnrollment(ctx context.Context, actor *models.UserProfile, id uint, in EnrollmentInput) (*models.EnrollmentCycle, error) {
	if err := requireCap(actor, permissions.ManageEnrollment); err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, utils.FieldError("name", "cannot be empty")
	}
	var enrollment *models.EnrollmentCycle
	err := s.transaction(ctx, "update enrollment", func(tx *gorm.DB) error {
		var err error
		enrollment, err = findByID[models.EnrollmentCycle](forUpdate(tx), "Enrollment", id, false)
		if err != nil {
			return err
		}
		in.apply(enrollment)
		return tx.Save(enrollment).Error
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

// DeleteEnrollments soft-deletes every listed cycle, or none if any id is unknown.
func (s *Services) DeleteEnrollments(ctx context.Context, actor *models.UserProfile, ids []uint) error {
	if err := requireCap(actor, permissions.ManageEnrollment); err != nil {
		return err
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		return utils.FieldError("ids", "at least one id is required")
	}
	return s.transaction(ctx, "delete enrollments", func(tx *gorm.DB) error {
		var live int64
		if err := tx.Model(&models.EnrollmentCycle{}).Where("id IN ?", ids).Count(&live).Error; err != nil {
			return err
		}
		if int(live) != len(ids) {
			return utils.NotFoundErr("Enrollment")
		}
		return tx.Where("id IN ?", ids).Delete(&models.EnrollmentCycle{}).Error
	})
}

// RestoreEnrollment clears the soft-delete mark. Restoring a live cycle is a no-op.
func (s *Services) RestoreEnrollment(ctx context.Context, actor *models.UserProfile, id uint) (*models.EnrollmentCycle, error) {
	if err := requireCap(actor, permissions.ManageEnrollment); err != nil {
		return nil, err
	}
	var enrollment *models.EnrollmentCycle
	err := s.transaction(ctx, "restore enrollment", func(tx *gorm.DB) error {
		var err error
		enrollment, err = findByID[models.EnrollmentCycle](tx, "Enrollment", id, true)
		if err != nil {
			return err
		}
		if !enrollment.IsDeleted() {
			return nil
		}
		if err := tx.Unscoped().Model(enrollment).Update("deleted_at", nil).Error; err != nil {
			return err
		}
		enrollment.DeletedAt = gorm.DeletedAt{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

type EnrollmentStats struct {
	EnrollmentID uint                             `json:"enrollment_id"`
	Name         string                           `json:"name"`
	Candidates   int64                            `json:"candidates"`
	ByStatus     map[models.CandidacyStatus]int64 `json:"by_status"`
	Interviews   int64                            `json:"interviews"`
	Scored       int64                            `json:"scored"`
	AverageScore float64                          `json:"average_score"`
	Activities   int64                            `json:"activities"`
	Courses      int64                            `json:"courses"`
}

// EnrollmentStats summarises one cycle for managers.
func (s *Services) EnrollmentStats(ctx context.Context, actor *models.UserProfile, id uint) (*EnrollmentStats, error) {
	if err := guard(actor, permissions.AnyOf, permissions.ManageEnrollment, permissions.ManageInterview); err != nil {
		return nil, err
	}
	db := s.db(ctx)
	enrollment, err := findByID[models.EnrollmentCycle](db, "Enrollment", id, false)
	if err != nil {
		return nil, s.fail("enrollment stats", err)
	}

	stats := &EnrollmentStats{
		EnrollmentID: enrollment.ID,
		Name:         enrollment.Name,
		ByStatus:     make(map[models.CandidacyStatus]int64, len(models.CandidacyStatuses)),
	}
	for _, status := range models.CandidacyStatuses {
		stats.ByStatus[status] = 0
	}

	var rows []struct {
		Status models.CandidacyStatus
		Total  int64
	}
	if err := db.Model(&models.Candidacy{}).
		Select("status, COUNT(*) AS total").
		Where("enrollment_id = ?", id).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, s.fail("enrollment stats", utils.DBError("Candidacy", err))
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Total
		stats.Candidates += row.Total
	}

	var scores struct {
		Interviews   int64
		Scored       int64
		AverageScore *float64
	}
	if err := db.Model(&models.InterviewRecord{}).
		Select("COUNT(*) AS interviews, COUNT(scored_at) AS scored, AVG(CASE WHEN scored_at IS NOT NULL THEN score END) AS average_score").
		Where("enrollment_id = ?", id).
		Scan(&scores).Error; err != nil {
		return nil, s.fail("enrollment stats", utils.DBError("Interview", err))
	}
	stats.Interviews = scores.Interviews
	stats.Scored = scores.Scored
	if scores.AverageScore != nil {
		stats.AverageScore = *scores.AverageScore
	}

	if err := db.Model(&models.Activity{}).Where("enrollment_id = ?", id).Count(&stats.Activities).Error; err != nil {
		return nil, s.fail("enrollment stats", utils.DBError("Activity", err))
	}
	if err := db.Model(&models.Course{}).Where("enrollment_id = ?", id).Count(&stats.Courses).Error; err != nil {
		return nil, s.fail("enrollment stats", utils.DBError("Course", err))
	}
	return stats, nil
}
