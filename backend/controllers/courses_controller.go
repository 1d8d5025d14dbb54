package controllers

import (
	"admissions/backend/services"
	"admissions/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CoursesController struct {
	Svc *services.Services
}

func NewCoursesController(svc *services.Services) *CoursesController {
	return &CoursesController{Svc: svc}
}

// ListCourses godoc
// @Summary List courses
// @Tags courses
// @Produce json
// @Param enrollment_id query int false "Only courses of this enrollment"
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /courses [get]
func (cc *CoursesController) ListCourses(c *fiber.Ctx) error {
	enrollmentID, err := queryID(c, "enrollment_id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	courses, err := cc.Svc.ListCourses(c.UserContext(), enrollmentID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, courses)
}

// GetUserCourses godoc
// @Summary List my courses
// @Description Courses of every enrollment where the caller was accepted or kept as an observer
// @Tags courses
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /courses/mine [get]
func (cc *CoursesController) GetUserCourses(c *fiber.Ctx) error {
	courses, err := cc.Svc.MyCourses(c.UserContext(), actor(c))
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, courses)
}

// GetCourseDetails godoc
// @Summary Get a course with its sections and lessons
// @Description Lessons are sorted by their order field within each section
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id} [get]
func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	course, err := cc.Svc.GetCourseTree(c.UserContext(), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, course)
}

func (cc *CoursesController) ListSections(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	sections, err := cc.Svc.ListSections(c.UserContext(), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, sections)
}

func (cc *CoursesController) ListLessons(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	lessons, err := cc.Svc.ListLessons(c.UserContext(), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, lessons)
}

// CreateCourse godoc
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Param input body services.CourseInput true "Course data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/courses [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var input services.CourseInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}
	course, err := cc.Svc.CreateCourse(c.UserContext(), actor(c), input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Created(c, course)
}

func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	var input services.CourseInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}
	course, err := cc.Svc.UpdateCourse(c.UserContext(), actor(c), id, input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, course)
}

func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	if err := cc.Svc.DeleteCourse(c.UserContext(), actor(c), id); err != nil {
		return utils.RespondError(c, err)
	}
	return utils.NoContent(c)
}

func (cc *CoursesController) CreateSection(c *fiber.Ctx) error {
	var input services.SectionInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}
	section, err := cc.Svc.CreateSection(c.UserContext(), actor(c), input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Created(c, section)
}

func (cc *CoursesController) UpdateSection(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	var input services.SectionInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}
	section, err := cc.Svc.UpdateSection(c.UserContext(), actor(c), id, input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, section)
}

func (cc *CoursesController) DeleteSection(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	if err := cc.Svc.DeleteSection(c.UserContext(), actor(c), id); err != nil {
		return utils.RespondError(c, err)
	}
	return utils.NoContent(c)
}

// CreateLesson godoc
// @Summary Create a lesson
// @Description The order value is stored as given; other lessons are not renumbered
// @Tags courses
// @Accept json
// @Produce json
// @Param input body services.LessonInput true "Lesson data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/lessons [post]
func (cc *CoursesController) CreateLesson(c *fiber.Ctx) error {
	var input services.LessonInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}
	lesson, err := cc.Svc.CreateLesson(c.UserContext(), actor(c), input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Created(c, lesson)
}

func (cc *CoursesController) UpdateLesson(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	var input services.LessonInput
	if err := parseBody(c, &input); err != nil {
		return utils.RespondError(c, err)
	}
	lesson, err := cc.Svc.UpdateLesson(c.UserContext(), actor(c), id, input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.OK(c, lesson)
}

func (cc *CoursesController) DeleteLesson(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	if err := cc.Svc.DeleteLesson(c.UserContext(), actor(c), id); err != nil {
		return utils.RespondError(c, err)
	}
	return utils.NoContent(c)
}
