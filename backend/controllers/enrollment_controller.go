package controllers

import (
	"admissions/backend/services"
	"admissions/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type EnrollmentController struct {
	Svc *services.Services
}

func NewEnrollmentController(svc *services.Services) *EnrollmentController {
	return &EnrollmentController{Svc: svc}
}

// ListEnrollments godoc
// @Summary List enrollment cycles
// @Description Public listing, newest first. Admins may pass include_deleted=true on the admin route.
// @Tags enrollments
// @Produce json
// @Param search query string false "Match in name or description"
// @Success 200 {object} utils.SuccessResponse
// @Router /enrollments [get]
func (ec *EnrollmentController) ListEnrollments(c *fiber.Ctx) error {
	enrollments, err := ec.Svc.ListEnrollments(c.UserContext(), actor(c), c.Query("search"), c.QueryBool("include_deleted"))
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, enrollments)
}

func (ec *EnrollmentController) GetEnrollment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	enrollment, err := ec.Svc.GetEnrollment(c.UserContext(), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, enrollment)
}

// Register godoc
// @Summary Register for an enrollment cycle
// @Description Creates the caller's candidacy or updates the registration data of an existing one. The status is never moved back.
// @Tags enrollments
// @Accept json
// @Produce json
// @Param id path int true "Enrollment ID"
// @Param input body services.RegistrationInput true "Registration data"
// @Success 200 {object} utils.SuccessResponse
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /enrollments/{id}/register [post]
func (ec *EnrollmentController) Register(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	var input services.RegistrationInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}
	candidacy, created, err := ec.Svc.Register(c.UserContext(), actor(c), id, input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.CreatedOrOK(c, created, candidacy)
}

// CreateEnrollment godoc
// @Summary Create an enrollment cycle
// @Tags enrollments
// @Accept json
// @Produce json
// @Param input body services.EnrollmentInput true "Enrollment data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/enrollments [post]
func (ec *EnrollmentController) CreateEnrollment(c *fiber.Ctx) error {
	var input services.EnrollmentInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}
	enrollment, err := ec.Svc.CreateEnrollment(c.UserContext(), actor(c), input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Created(c, enrollment)
}

func (ec *EnrollmentController) UpdateEnrollment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	var input services.EnrollmentInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}
	enrollment, err := ec.Svc.UpdateEnrollment(c.UserContext(), actor(c), id, input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, enrollment)
}

// DeleteEnrollment soft-deletes the cycle named in the path.
func (ec *EnrollmentController) DeleteEnrollment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	if err := ec.Svc.DeleteEnrollments(c.UserContext(), actor(c), []uint{id}); err != nil {
		return utils.RespondError(c, err)
	}
	return utils.NoContent(c)
}

// DeleteEnrollments soft-deletes every cycle listed in the body.
func (ec *EnrollmentController) DeleteEnrollments(c *fiber.Ctx) error {
	var input idsInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}
	if err := ec.Svc.DeleteEnrollments(c.UserContext(), actor(c), input.IDs); err != nil {
		return utils.RespondError(c, err)
	}
	return utils.NoContent(c)
}

func (ec *EnrollmentController) RestoreEnrollment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	enrollment, err := ec.Svc.RestoreEnrollment(c.UserContext(), actor(c), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, enrollment)
}

func (ec *EnrollmentController) Stats(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	stats, err := ec.Svc.EnrollmentStats(c.UserContext(), actor(c), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, stats)
}
