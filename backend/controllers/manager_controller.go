package controllers

import (
	"admissions/backend/permissions"
	"admissions/backend/services"
	"admissions/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ManagerController struct {
	Svc *services.Services
}

func NewManagerController(svc *services.Services) *ManagerController {
	return &ManagerController{Svc: svc}
}

type PrivilegeRequest struct {
	Grant  []string `json:"grant" example:"manage_interview"`
	Revoke []string `json:"revoke" example:"manage_lessons"`
}

// ListManagers godoc
// @Summary List managers
// @Description Profiles holding at least one capability
// @Tags managers
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/managers [get]
func (mc *ManagerController) ListManagers(c *fiber.Ctx) error {
	users, err := mc.Svc.ListManagers(c.UserContext(), actor(c))
	if err != nil {
		return utils.RespondError(c, err)
	}
	result := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		result = append(result, fiber.Map{
			"profile":      u,
			"capabilities": permissions.Names(u.Privilege),
		})
	}
	return utils.OK(c, result)
}

// ChangePrivileges godoc
// @Summary Grant or revoke capabilities
// @Description Capabilities are named or given by bit number. Bits not listed are kept.
// @Tags managers
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param input body PrivilegeRequest true "Capabilities to grant and revoke"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/managers/{id}/privileges [put]
func (mc *ManagerController) ChangePrivileges(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	var input PrivilegeRequest
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}

	fields := map[string]string{}
	grant, err := permissions.FromNames(input.Grant)
	if err != nil {
		fields["grant"] = err.Error()
	}
	revoke, err := permissions.FromNames(input.Revoke)
	if err != nil {
		fields["revoke"] = err.Error()
	}
	if len(fields) > 0 {
		return utils.RespondError(c, utils.Validation("Invalid capabilities", fields))
	}

	user, err := mc.Svc.ChangePrivileges(c.UserContext(), actor(c), id, grant, revoke)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, fiber.Map{
		"profile":      user,
		"capabilities": permissions.Names(user.Privilege),
	})
}

func (mc *ManagerController) DemoteManager(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	if err := mc.Svc.DemoteManager(c.UserContext(), actor(c), id); err != nil {
		return utils.RespondError(c, err)
	}
	return utils.NoContent(c)
}
