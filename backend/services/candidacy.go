package services

import (
	"context"
	"encoding/json"
	"errors"

	"admissions/backend/models"
	"admissions/backend/permissions"
	"admissions/backend/utils"

	"gorm.io/gorm"
)

// transitions lists the statuses reachable from each candidacy status through
// interview assignment. Terminal statuses have no entry.
var transitions = map[models.CandidacyStatus][]models.CandidacyStatus{
	models.StatusRegistered: {models.StatusUnderInterview},
	models.StatusUnderInterview: {
		models.StatusUnderInterview,
		models.StatusAccepted,
		models.StatusObserver,
		models.StatusRefused,
	},
}

// CanTransition reports whether an interview assignment may move a candidacy from one status to another.
func CanTransition(from, to models.CandidacyStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type RegistrationInput struct {
	Province *string         `json:"province"`
	SubField json.RawMessage `json:"sub_field"`
}

// Register records the caller's registration for an open enrollment cycle.
// Resubmitting overwrites the profile sub-fields and leaves the candidacy
// status as it is. The returned flag is true when a candidacy was created.
func (s *Services) Register(ctx context.Context, actor *models.UserProfile, enrollmentID uint, in RegistrationInput) (*models.Candidacy, bool, error) {
	if actor == nil {
		return nil, false, utils.UnauthorizedErr("Unauthorized")
	}
	subField, err := jsonField("sub_field", in.SubField)
	if err != nil {
		return nil, false, err
	}

	var (
		candidacy *models.Candidacy
		created   bool
	)
	err = s.transaction(ctx, "register", func(tx *gorm.DB) error {
		enrollment, err := findByID[models.EnrollmentCycle](tx, "Enrollment", enrollmentID, false)
		if err != nil {
			return err
		}
		if !enrollment.AcceptsRegistrations(s.now()) {
			return utils.Conflict("Enrollment is closed")
		}

		// Locking the profile serialises concurrent registrations of the same user.
		user, err := findByID[models.UserProfile](forUpdate(tx), "User", actor.ID, false)
		if err != nil {
			return err
		}
		setString(&user.Province, in.Province)
		if subField != nil {
			user.SubField = subField
		}
		if err := tx.Save(user).Error; err != nil {
			return err
		}

		var existing models.Candidacy
		err = tx.Where("user_id = ? AND enrollment_id = ?", user.ID, enrollment.ID).
			Order("id ASC").
			First(&existing).Error
		switch {
		case err == nil:
			candidacy = &existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			candidacy = &models.Candidacy{
				UserID:       user.ID,
				EnrollmentID: enrollment.ID,
				Status:       models.StatusRegistered,
			}
			if err := tx.Create(candidacy).Error; err != nil {
				return err
			}
			created = true
		default:
			return err
		}
		candidacy.User = user
		candidacy.Enrollment = enrollment
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return candidacy, created, nil
}

// EnrollmentStatus pairs an enrollment cycle with the caller's candidacy status in it.
type EnrollmentStatus struct {
	Enrollment  models.EnrollmentCycle `json:"enrollment"`
	Status      models.CandidacyStatus `json:"status"`
	CandidacyID uint                   `json:"candidacy_id,omitempty"`
}

// MyCandidacies lists every live enrollment cycle with the caller's status,
// "none" where the caller has not registered.
func (s *Services) MyCandidacies(ctx context.Context, actor *models.UserProfile) ([]EnrollmentStatus, error) {
	if actor == nil {
		return nil, utils.UnauthorizedErr("Unauthorized")
	}
	db := s.db(ctx)

	var enrollments []models.EnrollmentCycle
	if err := db.Order("id DESC").Find(&enrollments).Error; err != nil {
		return nil, s.fail("my candidacies", utils.DBError("Enrollment", err))
	}
	var candidacies []models.Candidacy
	if err := db.Where("user_id = ?", actor.ID).Order("id ASC").Find(&candidacies).Error; err != nil {
		return nil, s.fail("my candidacies", utils.DBError("Candidacy", err))
	}
	byEnrollment := make(map[uint]models.Candidacy, len(candidacies))
	for _, c := range candidacies {
		if _, ok := byEnrollment[c.EnrollmentID]; !ok {
			byEnrollment[c.EnrollmentID] = c
		}
	}

	result := make([]EnrollmentStatus, 0, len(enrollments))
	for _, e := range enrollments {
		item := EnrollmentStatus{Enrollment: e, Status: models.StatusNone}
		if c, ok := byEnrollment[e.ID]; ok {
			item.Status = c.Status
			item.CandidacyID = c.ID
		}
		result = append(result, item)
	}
	return result, nil
}

// ListCandidacies returns the candidacies of one enrollment cycle, optionally
// filtered by status, with the candidate profiles.
func (s *Services) ListCandidacies(ctx context.Context, actor *models.UserProfile, enrollmentID uint, status models.CandidacyStatus) ([]models.Candidacy, error) {
	if err := guard(actor, permissions.AnyOf, permissions.ManageInterview, permissions.ManageEnrollment); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, utils.FieldError("status", "unknown status")
	}
	db := s.db(ctx)
	if _, err := findByID[models.EnrollmentCycle](db, "Enrollment", enrollmentID, false); err != nil {
		return nil, s.fail("list candidacies", err)
	}
	query := db.Preload("User").Where("enrollment_id = ?", enrollmentID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var candidacies []models.Candidacy
	if err := query.Order("id ASC").Find(&candidacies).Error; err != nil {
		return nil, s.fail("list candidacies", utils.DBError("Candidacy", err))
	}
	return candidacies, nil
}

// DeleteCandidacy removes a candidacy for good, together with its interview records.
func (s *Services) DeleteCandidacy(ctx context.Context, actor *models.UserProfile, id uint) error {
	if err := requireCap(actor, permissions.ManageEnrollment); err != nil {
		return err
	}
	return s.transaction(ctx, "delete candidacy", func(tx *gorm.DB) error {
		candidacy, err := findByID[models.Candidacy](forUpdate(tx), "Candidacy", id, false)
		if err != nil {
			return err
		}
		if err := tx.Where("candidacy_id = ?", candidacy.ID).Delete(&models.InterviewRecord{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(candidacy).Error
	})
}
