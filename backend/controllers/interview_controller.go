package controllers

import (
	"admissions/backend/services"
	"admissions/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type InterviewController struct {
	Svc *services.Services
}

func NewInterviewController(svc *services.Services) *InterviewController {
	return &InterviewController{Svc: svc}
}

// ListInterviews godoc
// @Summary List interviews
// @Description Interview managers get every candidate of the enrollment with full profiles and records.
// @Description Interviewers get their own records with the candidate narrowed to province and sub_field.
// @Tags interviews
// @Produce json
// @Param enrollment_id query int false "Enrollment ID, required for managers"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /interviews [get]
func (ic *InterviewController) ListInterviews(c *fiber.Ctx) error {
	enrollmentID, err := queryID(c, "enrollment_id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	listing, err := ic.Svc.ListInterviews(c.UserContext(), actor(c), enrollmentID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, listing)
}

// ScoreInterview godoc
// @Summary Score an interview
// @Description Only the assigned interviewer can score. The candidacy status is not changed.
// @Tags interviews
// @Accept json
// @Produce json
// @Param id path int true "Interview record ID"
// @Param input body services.ScoreInput true "Score (0-100) and review"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /interviews/{id} [put]
func (ic *InterviewController) ScoreInterview(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	var input services.ScoreInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}
	record, err := ic.Svc.ScoreInterview(c.UserContext(), actor(c), id, input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, record)
}

// AssignInterview godoc
// @Summary Assign interviewers to a candidate
// @Description Updates the candidate profile, moves the candidacy to the given status and creates one record per interviewer in a single transaction.
// @Tags interviews
// @Accept json
// @Produce json
// @Param input body services.AssignInput true "Assignment"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/interviews [post]
func (ic *InterviewController) AssignInterview(c *fiber.Ctx) error {
	var input services.AssignInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}
	result, err := ic.Svc.AssignInterview(c.UserContext(), actor(c), input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Created(c, result)
}

func (ic *InterviewController) DeleteInterviews(c *fiber.Ctx) error {
	var input idsInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}
	if err := ic.Svc.DeleteInterviews(c.UserContext(), actor(c), input.IDs); err != nil {
		return utils.RespondError(c, err)
	}
	return utils.NoContent(c)
}
