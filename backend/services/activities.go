package services

import (
	"context"
	"errors"
	"time"

	"admissions/backend/models"
	"admissions/backend/permissions"
	"admissions/backend/utils"

	"gorm.io/gorm"
)

type ActivityInput struct {
	EnrollmentID *uint      `json:"enrollment_id"`
	Name         *string    `json:"name"`
	Description  *string    `json:"description"`
	PictureURL   *string    `json:"picture_url"`
	Limit        *int       `json:"limit"`
	EndAt        *time.Time `json:"end_at"`
}

func (in ActivityInput) apply(a *models.Activity) {
	setString(&a.Name, in.Name)
	setString(&a.Description, in.Description)
	setString(&a.PictureURL, in.PictureURL)
	if in.Limit != nil {
		a.Limit = *in.Limit
	}
	if in.EndAt != nil {
		a.EndAt = in.EndAt.UTC()
	}
}

// attending counts attending signups per activity id.
func attending(db *gorm.DB, activityIDs ...uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(activityIDs))
	if len(activityIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		ActivityID uint
		Total      int64
	}
	err := db.Model(&models.ActivitySignup{}).
		Select("activity_id, COUNT(*) AS total").
		Where("activity_id IN ? AND attending = ?", activityIDs, true).
		Group("activity_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ActivityID] = row.Total
	}
	return counts, nil
}

// ListActivities returns activities with their peopleCount, soonest closing first.
// An enrollmentID of 0 lists every cycle.
func (s *Services) ListActivities(ctx context.Context, enrollmentID uint) ([]models.Activity, error) {
	db := s.db(ctx)
	query := inLiveEnrollment(db.Model(&models.Activity{}))
	if enrollmentID != 0 {
		query = query.Where("enrollment_id = ?", enrollmentID)
	}
	var activities []models.Activity
	if err := query.Order("end_at ASC, id ASC").Find(&activities).Error; err != nil {
		return nil, s.fail("list activities", utils.DBError("Activity", err))
	}

	ids := make([]uint, len(activities))
	for i, a := range activities {
		ids[i] = a.ID
	}
	counts, err := attending(db, ids...)
	if err != nil {
		return nil, s.fail("list activities", utils.DBError("Activity", err))
	}
	for i := range activities {
		activities[i].PeopleCount = counts[activities[i].ID]
	}
	return activities, nil
}

func (s *Services) GetActivity(ctx context.Context, id uint) (*models.Activity, error) {
	db := s.db(ctx)
	activity, err := findByID[models.Activity](inLiveEnrollment(db), "Activity", id, false)
	if err != nil {
		return nil, s.fail("get activity", err)
	}
	counts, err := attending(db, activity.ID)
	if err != nil {
		return nil, s.fail("get activity", utils.DBError("Activity", err))
	}
	activity.PeopleCount = counts[activity.ID]
	return activity, nil
}

func (s *Services) CreateActivity(ctx context.Context, actor *models.UserProfile, in ActivityInput) (*models.Activity, error) {
	if err := requireCap(actor, permissions.ManageActivity); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if in.EnrollmentID == nil {
		fields["enrollment_id"] = "is required"
	}
	if blank(in.Name) {
		fields["name"] = "is required"
	}
	if in.EndAt == nil {
		fields["end_at"] = "is required"
	}
	if in.Limit != nil && *in.Limit <= 0 {
		fields["limit"] = "must be positive"
	}
	if len(fields) > 0 {
		return nil, utils.Validation("Invalid activity", fields)
	}

	activity := &models.Activity{EnrollmentID: *in.EnrollmentID, Limit: models.DefaultActivityLimit}
	in.apply(activity)
	err := s.transaction(ctx, "create activity", func(tx *gorm.DB) error {
		if _, err := findByID[models.EnrollmentCycle](tx, "Enrollment", activity.EnrollmentID, false); err != nil {
			return err
		}
		return tx.Create(activity).Error
	})
	if err != nil {
		return nil, err
	}
	return activity, nil
}

// UpdateActivity never drops existing signups. Lowering the limit below the
// current attendance only blocks new signups.
func (s *Services) UpdateActivity(ctx context.Context, actor *models.UserProfile, id uint, in ActivityInput) (*models.Activity, error) {
	if err := requireCap(actor, permissions.ManageActivity); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if in.Name != nil && blank(in.Name) {
		fields["name"] = "cannot be empty"
	}
	if in.Limit != nil && *in.Limit <= 0 {
		fields["limit"] = "must be positive"
	}
	if len(fields) > 0 {
		return nil, utils.Validation("Invalid activity", fields)
	}

	var activity *models.Activity
	err := s.transaction(ctx, "update activity", func(tx *gorm.DB) error {
		var err error
		activity, err = findByID[models.Activity](forUpdate(tx), "Activity", id, false)
		if err != nil {
			return err
		}
		if in.EnrollmentID != nil && *in.EnrollmentID != activity.EnrollmentID {
			if _, err := findByID[models.EnrollmentCycle](tx, "Enrollment", *in.EnrollmentID, false); err != nil {
				return err
			}
			activity.EnrollmentID = *in.EnrollmentID
		}
		in.apply(activity)
		if err := tx.Save(activity).Error; err != nil {
			return err
		}
		counts, err := attending(tx, activity.ID)
		if err != nil {
			return err
		}
		activity.PeopleCount = counts[activity.ID]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activity, nil
}

func (s *Services) DeleteActivity(ctx context.Context, actor *models.UserProfile, id uint) error {
	if err := requireCap(actor, permissions.ManageActivity); err != nil {
		return err
	}
	return s.transaction(ctx, "delete activity", func(tx *gorm.DB) error {
		activity, err := findByID[models.Activity](tx, "Activity", id, false)
		if err != nil {
			return err
		}
		return tx.Delete(activity).Error
	})
}

// SignUp marks the caller as attending. Activities of a deleted enrollment
// cycle are not found. The activity row stays locked while
// attendance is counted so that concurrent signups cannot exceed the limit.
// Signing up again while attending is a no-op.
func (s *Services) SignUp(ctx context.Context, actor *models.UserProfile, activityID uint) (*models.Activity, error) {
	if actor == nil {
		return nil, utils.UnauthorizedErr("Unauthorized")
	}
	var activity *models.Activity
	err := s.transaction(ctx, "sign up", func(tx *gorm.DB) error {
		var err error
		activity, err = findByID[models.Activity](inLiveEnrollment(forUpdate(tx)), "Activity", activityID, false)
		if err != nil {
			return err
		}

		var signup models.ActivitySignup
		err = tx.Where("user_id = ? AND activity_id = ?", actor.ID, activity.ID).First(&signup).Error
		found := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		counts, err := attending(tx, activity.ID)
		if err != nil {
			return err
		}
		activity.PeopleCount = counts[activity.ID]
		if found && signup.Attending {
			return nil
		}

		if !s.now().Before(activity.EndAt) {
			return utils.Conflict("Activity signup has closed")
		}
		if activity.PeopleCount >= int64(activity.Limit) {
			return utils.Conflict("Activity is full")
		}

		if found {
			if err := tx.Model(&signup).Update("attending", true).Error; err != nil {
				return err
			}
		} else {
			signup = models.ActivitySignup{UserID: actor.ID, ActivityID: activity.ID, Attending: true}
			if err := tx.Create(&signup).Error; err != nil {
				return err
			}
		}
		activity.PeopleCount++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activity, nil
}

// Withdraw marks the caller as not attending. Without a prior signup it does nothing.
func (s *Services) Withdraw(ctx context.Context, actor *models.UserProfile, activityID uint) (*models.Activity, error) {
	if actor == nil {
		return nil, utils.UnauthorizedErr("Unauthorized")
	}
	var activity *models.Activity
	err := s.transaction(ctx, "withdraw", func(tx *gorm.DB) error {
		var err error
		activity, err = findByID[models.Activity](inLiveEnrollment(forUpdate(tx)), "Activity", activityID, false)
		if err != nil {
			return err
		}
		err = tx.Model(&models.ActivitySignup{}).
			Where("user_id = ? AND activity_id = ? AND attending = ?", actor.ID, activity.ID, true).
			Update("attending", false).Error
		if err != nil {
			return err
		}
		counts, err := attending(tx, activity.ID)
		if err != nil {
			return err
		}
		activity.PeopleCount = counts[activity.ID]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activity, nil
}

// ListSignups returns the attending signups of an activity with the attendee profiles.
func (s *Services) ListSignups(ctx context.Context, actor *models.UserProfile, activityID uint) ([]models.ActivitySignup, error) {
	if err := requireCap(actor, permissions.ManageActivity); err != nil {
		return nil, err
	}
	db := s.db(ctx)
	if _, err := findByID[models.Activity](db, "Activity", activityID, false); err != nil {
		return nil, s.fail("list signups", err)
	}
	var signups []models.ActivitySignup
	if err := db.Preload("User").
		Where("activity_id = ? AND attending = ?", activityID, true).
		Order("id ASC").
		Find(&signups).Error; err != nil {
		return nil, s.fail("list signups", utils.DBError("Signup", err))
	}
	return signups, nil
}
