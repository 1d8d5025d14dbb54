package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"admissions/backend/identity"
	"admissions/backend/models"
	"admissions/backend/permissions"
	"admissions/backend/utils"

	"gorm.io/gorm"
)

// ProfileInput is a partial profile update; nil fields are left unchanged.
type ProfileInput struct {
	NickName  *string         `json:"nick_name"`
	AvatarURL *string         `json:"avatar_url"`
	Gender    *int            `json:"gender"`
	Phone     *string         `json:"phone"`
	BirthDate *time.Time      `json:"birth_date"`
	WeChat    *string         `json:"wechat"`
	Mail      *string         `json:"mail"`
	Country   *string         `json:"country"`
	Province  *string         `json:"province"`
	City      *string         `json:"city"`
	Kind      *string         `json:"kind"`
	SubField  json.RawMessage `json:"sub_field"`
}

func (in ProfileInput) apply(u *models.UserProfile) error {
	fields := map[string]string{}
	if in.Gender != nil && (*in.Gender < 0 || *in.Gender > 2) {
		fields["gender"] = "must be 0, 1 or 2"
	}
	if in.Mail != nil && *in.Mail != "" && !strings.Contains(*in.Mail, "@") {
		fields["mail"] = "must be an email address"
	}
	subField, err := jsonField("sub_field", in.SubField)
	if err != nil {
		fields["sub_field"] = "must be valid JSON"
	}
	if len(fields) > 0 {
		return utils.Validation("Invalid profile", fields)
	}

	setString(&u.NickName, in.NickName)
	setString(&u.AvatarURL, in.AvatarURL)
	setString(&u.Phone, in.Phone)
	setString(&u.WeChat, in.WeChat)
	setString(&u.Mail, in.Mail)
	setString(&u.Country, in.Country)
	setString(&u.Province, in.Province)
	setString(&u.City, in.City)
	setString(&u.Kind, in.Kind)
	if in.Gender != nil {
		u.Gender = *in.Gender
	}
	if in.BirthDate != nil {
		u.BirthDate = in.BirthDate
	}
	if subField != nil {
		u.SubField = subField
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// Login exchanges a login code for an identity and returns the matching
// profile, creating it on first login. Soft-deleted profiles cannot log in.
func (s *Services) Login(ctx context.Context, code string) (*models.UserProfile, bool, error) {
	if strings.TrimSpace(code) == "" {
		return nil, false, utils.FieldError("code", "is required")
	}
	externalID, err := s.Identity.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCode) {
			return nil, false, utils.UnauthorizedErr("Invalid login code")
		}
		return nil, false, s.fail("login", utils.Internal("Identity provider unavailable", err))
	}

	user, err := s.findByIdentity(ctx, externalID)
	if err == nil {
		if user.IsDeleted() {
			return nil, false, utils.ForbiddenErr("Account is disabled")
		}
		return user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, s.fail("login", utils.DBError("User", err))
	}

	user = &models.UserProfile{Identity: externalID}
	if s.isBootstrapAdmin(externalID) {
		user.Privilege = permissions.Grant(0, permissions.All()...)
	}
	if err := s.db(ctx).Create(user).Error; err != nil {
		// A concurrent first login may have created the profile already.
		existing, findErr := s.findByIdentity(ctx, externalID)
		if findErr != nil {
			return nil, false, s.fail("login", utils.Internal("Could not create user", err))
		}
		return existing, false, nil
	}
	s.Logger.Printf("created profile %d", user.ID)
	return user, true, nil
}

func (s *Services) findByIdentity(ctx context.Context, externalID string) (*models.UserProfile, error) {
	var user models.UserProfile
	if err := s.db(ctx).Unscoped().Where("identity = ?", externalID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Services) isBootstrapAdmin(externalID string) bool {
	if s.Cfg == nil {
		return false
	}
	for _, id := range s.Cfg.AdminIdentities {
		if id == externalID {
			return true
		}
	}
	return false
}

// GetProfile returns a live profile by id.
func (s *Services) GetProfile(ctx context.Context, id uint) (*models.UserProfile, error) {
	return findByID[models.UserProfile](s.db(ctx), "User", id, false)
}

func (s *Services) UpdateOwnProfile(ctx context.Context, actor *models.UserProfile, in ProfileInput) (*models.UserProfile, error) {
	if actor == nil {
		return nil, utils.UnauthorizedErr("Unauthorized")
	}
	return s.updateProfile(ctx, actor.ID, in)
}

func (s *Services) updateProfile(ctx context.Context, id uint, in ProfileInput) (*models.UserProfile, error) {
	var user *models.UserProfile
	err := s.transaction(ctx, "update profile", func(tx *gorm.DB) error {
		var err error
		user, err = findByID[models.UserProfile](forUpdate(tx), "User", id, false)
		if err != nil {
			return err
		}
		if err := in.apply(user); err != nil {
			return err
		}
		return tx.Save(user).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

var userAdmin = []permissions.Capability{permissions.SetManager, permissions.ManageFellow}

func (s *Services) ListUsers(ctx context.Context, actor *models.UserProfile, includeDeleted bool) ([]models.UserProfile, error) {
	if err := guard(actor, permissions.AnyOf, userAdmin...); err != nil {
		return nil, err
	}
	var users []models.UserProfile
	if err := scoped(s.db(ctx), includeDeleted).Order("id ASC").Find(&users).Error; err != nil {
		return nil, s.fail("list users", utils.DBError("User", err))
	}
	return users, nil
}

func (s *Services) UpdateUser(ctx context.Context, actor *models.UserProfile, id uint, in ProfileInput) (*models.UserProfile, error) {
	if err := guard(actor, permissions.AnyOf, userAdmin...); err != nil {
		return nil, err
	}
	return s.updateProfile(ctx, id, in)
}

// DeleteUser soft-deletes a profile. The profile can no longer log in until restored.
func (s *Services) DeleteUser(ctx context.Context, actor *models.UserProfile, id uint) error {
	if err := guard(actor, permissions.AnyOf, userAdmin...); err != nil {
		return err
	}
	if actor.ID == id {
		return utils.Conflict("Cannot delete your own account")
	}
	return s.transaction(ctx, "delete user", func(tx *gorm.DB) error {
		user, err := findByID[models.UserProfile](tx, "User", id, false)
		if err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
}

func (s *Services) RestoreUser(ctx context.Context, actor *models.UserProfile, id uint) (*models.UserProfile, error) {
	if err := guard(actor, permissions.AnyOf, userAdmin...); err != nil {
		return nil, err
	}
	var user *models.UserProfile
	err := s.transaction(ctx, "restore user", func(tx *gorm.DB) error {
		var err error
		user, err = findByID[models.UserProfile](tx, "User", id, true)
		if err != nil {
			return err
		}
		if !user.IsDeleted() {
			return nil
		}
		if err := tx.Unscoped().Model(user).Update("deleted_at", nil).Error; err != nil {
			return err
		}
		user.DeletedAt = gorm.DeletedAt{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListManagers returns every live profile holding at least one capability.
func (s *Services) ListManagers(ctx context.Context, actor *models.UserProfile) ([]models.UserProfile, error) {
	if err := guard(actor, permissions.AnyOf, permissions.SetManager, permissions.IsManager); err != nil {
		return nil, err
	}
	var users []models.UserProfile
	if err := s.db(ctx).Where("privilege <> 0").Order("id ASC").Find(&users).Error; err != nil {
		return nil, s.fail("list managers", utils.DBError("User", err))
	}
	return users, nil
}

// ChangePrivileges grants and revokes capabilities on the stored mask.
// Bits not named in either list are preserved.
func (s *Services) ChangePrivileges(ctx context.Context, actor *models.UserProfile, id uint, grant, revoke []permissions.Capability) (*models.UserProfile, error) {
	if err := requireCap(actor, permissions.SetManager); err != nil {
		return nil, err
	}
	if len(grant) == 0 && len(revoke) == 0 {
		return nil, utils.FieldError("grant", "grant or revoke is required")
	}
	for _, g := range grant {
		for _, r := range revoke {
			if g == r {
				return nil, utils.FieldError("revoke", g.String()+" is both granted and revoked")
			}
		}
	}

	var user *models.UserProfile
	err := s.transaction(ctx, "change privileges", func(tx *gorm.DB) error {
		var err error
		user, err = findByID[models.UserProfile](forUpdate(tx), "User", id, false)
		if err != nil {
			return err
		}
		mask := permissions.Revoke(permissions.Grant(user.Privilege, grant...), revoke...)
		if err := tx.Model(user).Update("privilege", mask).Error; err != nil {
			return err
		}
		user.Privilege = mask
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Printf("user %d changed privileges of %d to %v", actor.ID, id, permissions.Names(user.Privilege))
	return user, nil
}

// DemoteManager clears every capability of a profile. The profile itself is kept.
func (s *Services) DemoteManager(ctx context.Context, actor *models.UserProfile, id uint) error {
	if err := requireCap(actor, permissions.SetManager); err != nil {
		return err
	}
	if actor.ID == id {
		return utils.Conflict("Cannot remove your own privileges")
	}
	return s.transaction(ctx, "demote manager", func(tx *gorm.DB) error {
		user, err := findByID[models.UserProfile](forUpdate(tx), "User", id, false)
		if err != nil {
			return err
		}
		return tx.Model(user).Update("privilege", 0).Error
	})
}
