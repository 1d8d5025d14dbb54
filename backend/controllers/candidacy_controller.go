package controllers

import (
	"admissions/backend/models"
	"admissions/backend/services"
	"admissions/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CandidacyController struct {
	Svc *services.Services
}

func NewCandidacyController(svc *services.Services) *CandidacyController {
	return &CandidacyController{Svc: svc}
}

// ListCandidacies godoc
// @Summary List candidacies of an enrollment cycle
// @Tags candidacies
// @Produce json
// @Param enrollment_id query int true "Enrollment ID"
// @Param status query string false "registered, under_interview, accepted, observer or refused"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/candidacies [get]
func (cc *CandidacyController) ListCandidacies(c *fiber.Ctx) error {
	enrollmentID, err := queryID(c, "enrollment_id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	if enrollmentID == 0 {
		return utils.RespondError(c, utils.FieldError("enrollment_id", "is required"))
	}
	status := models.CandidacyStatus(c.Query("status"))
	candidacies, err := cc.Svc.ListCandidacies(c.UserContext(), actor(c), enrollmentID, status)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, candidacies)
}

func (cc *CandidacyController) DeleteCandidacy(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	if err := cc.Svc.DeleteCandidacy(c.UserContext(), actor(c), id); err != nil {
		return utils.RespondError(c, err)
	}
	return utils.NoContent(c)
}
