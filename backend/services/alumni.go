package services

import (
	"context"

	"admissions/backend/models"
	"admissions/backend/permissions"
	"admissions/backend/utils"

	"gorm.io/gorm"
)

// fellowsOf selects users sharing at least one enrollment cycle with userID.
func fellowsOf(db *gorm.DB, userID uint) *gorm.DB {
	mine := db.Model(&models.Candidacy{}).Select("enrollment_id").Where("user_id = ?", userID)
	return db.Model(&models.Candidacy{}).
		Select("user_id").
		Where("enrollment_id IN (?) AND user_id <> ?", mine, userID)
}

// ListFellows returns everyone who registered in a cycle the caller registered in.
// Contact details stay private: only the fellow view is returned.
func (s *Services) ListFellows(ctx context.Context, actor *models.UserProfile) ([]models.FellowView, error) {
	if actor == nil {
		return nil, utils.UnauthorizedErr("Unauthorized")
	}
	db := s.db(ctx)
	var users []models.UserProfile
	if err := db.Where("id IN (?)", fellowsOf(db, actor.ID)).Order("id ASC").Find(&users).Error; err != nil {
		return nil, s.fail("list fellows", utils.DBError("User", err))
	}
	fellows := make([]models.FellowView, len(users))
	for i, u := range users {
		fellows[i] = u.FellowView()
	}
	return fellows, nil
}

// GetFellow returns one profile if it is a fellow of the caller. Holders of
// manage_fellow can read any profile.
func (s *Services) GetFellow(ctx context.Context, actor *models.UserProfile, id uint) (*models.FellowView, error) {
	if actor == nil {
		return nil, utils.UnauthorizedErr("Unauthorized")
	}
	db := s.db(ctx)
	user, err := findByID[models.UserProfile](db, "User", id, false)
	if err != nil {
		return nil, s.fail("get fellow", err)
	}
	fellow := user.FellowView()
	if user.ID == actor.ID || permissions.Has(actor.Privilege, permissions.ManageFellow) {
		return &fellow, nil
	}
	var shared int64
	if err := db.Model(&models.Candidacy{}).
		Where("user_id = ? AND user_id IN (?)", id, fellowsOf(db, actor.ID)).
		Count(&shared).Error; err != nil {
		return nil, s.fail("get fellow", utils.DBError("User", err))
	}
	if shared == 0 {
		return nil, utils.ForbiddenErr("Not a fellow")
	}
	return &fellow, nil
}
