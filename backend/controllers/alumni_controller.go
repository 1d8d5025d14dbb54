package controllers

import (
	"admissions/backend/services"
	"admissions/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AlumniController struct {
	Svc *services.Services
}

func NewAlumniController(svc *services.Services) *AlumniController {
	return &AlumniController{Svc: svc}
}

// ListFellows godoc
// @Summary List fellows
// @Description Everyone who registered in an enrollment cycle the caller registered in
// @Tags alumni
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /alumni [get]
func (ac *AlumniController) ListFellows(c *fiber.Ctx) error {
	fellows, err := ac.Svc.ListFellows(c.UserContext(), actor(c))
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, fellows)
}

func (ac *AlumniController) GetFellow(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	fellow, err := ac.Svc.GetFellow(c.UserContext(), actor(c), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, fellow)
}
