package controllers

import (
	"admissions/backend/services"
	"admissions/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ActivityController struct {
	Svc *services.Services
}

func NewActivityController(svc *services.Services) *ActivityController {
	return &ActivityController{Svc: svc}
}

// ListActivities возвращает мероприятия с числом записавшихся (peopleCount)
func (ac *ActivityController) ListActivities(c *fiber.Ctx) error {
	enrollmentID, err := queryID(c, "enrollment_id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	activities, err := ac.Svc.ListActivities(c.UserContext(), enrollmentID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, activities)
}

func (ac *ActivityController) GetActivity(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	activity, err := ac.Svc.GetActivity(c.UserContext(), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, activity)
}

// SignUp godoc
// @Summary Sign up for an activity
// @Description Fails with 409 when the activity is full or its signup has closed. Signing up twice is a no-op.
// @Tags activities
// @Produce json
// @Param id path int true "Activity ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /activities/{id}/signup [post]
func (ac *ActivityController) SignUp(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	activity, err := ac.Svc.SignUp(c.UserContext(), actor(c), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, activity)
}

// Withdraw отменяет запись; без записи ничего не делает
func (ac *ActivityController) Withdraw(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	activity, err := ac.Svc.Withdraw(c.UserContext(), actor(c), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, activity)
}

// CreateActivity godoc
// @Summary Create an activity
// @Description limit defaults to 100, end_at is required
// @Tags activities
// @Accept json
// @Produce json
// @Param input body services.ActivityInput true "Activity data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/activities [post]
func (ac *ActivityController) CreateActivity(c *fiber.Ctx) error {
	var input services.ActivityInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}
	activity, err := ac.Svc.CreateActivity(c.UserContext(), actor(c), input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Created(c, activity)
}

func (ac *ActivityController) UpdateActivity(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	var input services.ActivityInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}
	activity, err := ac.Svc.UpdateActivity(c.UserContext(), actor(c), id, input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, activity)
}

func (ac *ActivityController) DeleteActivity(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	if err := ac.Svc.DeleteActivity(c.UserContext(), actor(c), id); err != nil {
		return utils.RespondError(c, err)
	}
	return utils.NoContent(c)
}

func (ac *ActivityController) ListSignups(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	signups, err := ac.Svc.ListSignups(c.UserContext(), actor(c), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, signups)
}
