package controllers

import (
	"admissions/backend/config"
	"admissions/backend/permissions"
	"admissions/backend/services"
	"admissions/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Svc *services.Services
	Cfg *config.Config
}

func NewUserController(svc *services.Services, cfg *config.Config) *UserController {
	return &UserController{Svc: svc, Cfg: cfg}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the authenticated user's profile with decoded capabilities
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	user := actor(c)
	if user == nil {
		return utils.RespondError(c, utils.UnauthorizedErr("Unauthorized"))
	}
	return utils.OK(c, fiber.Map{
		"profile":      user,
		"capabilities": permissions.Names(user.Privilege),
	})
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Updates the authenticated user's contact and registration fields. Omitted fields are kept.
// @Tags users
// @Accept json
// @Produce json
// @Param input body services.ProfileInput true "Profile update data"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	var input services.ProfileInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}
	user, err := uc.Svc.UpdateOwnProfile(c.UserContext(), actor(c), input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, user)
}

// MyEnrollments godoc
// @Summary List enrollments with my status
// @Description Every live enrollment cycle with the caller's candidacy status, "none" when not registered
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /user/enrollments [get]
func (uc *UserController) MyEnrollments(c *fiber.Ctx) error {
	list, err := uc.Svc.MyCandidacies(c.UserContext(), actor(c))
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, list)
}

func (uc *UserController) ListUsers(c *fiber.Ctx) error {
	users, err := uc.Svc.ListUsers(c.UserContext(), actor(c), c.QueryBool("include_deleted"))
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, users)
}

func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	var input services.ProfileInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}
	user, err := uc.Svc.UpdateUser(c.UserContext(), actor(c), id, input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, user)
}

func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	if err := uc.Svc.DeleteUser(c.UserContext(), actor(c), id); err != nil {
		return utils.RespondError(c, err)
	}
	return utils.NoContent(c)
}

func (uc *UserController) RestoreUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	user, err := uc.Svc.RestoreUser(c.UserContext(), actor(c), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, user)
}
