package services

import (
	"context"
	"testing"

	"admissions/backend/models"
	"admissions/backend/permissions"
	"admissions/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLessonsSortedByOrder(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	enrollment := newEnrollment(t, svc)
	teacher := newUser(t, svc, permissions.ManageLessons)

	course, err := svc.CreateCourse(ctx, teacher, CourseInput{EnrollmentID: &enrollment.ID, Name: ptr("Philosophy")})
	require.NoError(t, err)
	section, err := svc.CreateSection(ctx, teacher, SectionInput{CourseID: &course.ID, Name: ptr("Ethics")})
	require.NoError(t, err)

	for _, order := range []int{3, 1, 2} {
		_, err := svc.CreateLesson(ctx, teacher, LessonInput{
			SectionID: &section.ID,
			Order:     ptr(order),
			Title:     ptr("Lesson"),
		})
		require.NoError(t, err)
	}

	lessons, err := svc.ListLessons(ctx, section.ID)
	require.NoError(t, err)
	require.Len(t, lessons, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{lessons[0].Order, lessons[1].Order, lessons[2].Order})

	tree, err := svc.GetCourseTree(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, tree.Sections, 1)
	require.Len(t, tree.Sections[0].Lessons, 3)
	assert.Equal(t, 1, tree.Sections[0].Lessons[0].Order)
	assert.Equal(t, 3, tree.Sections[0].Lessons[2].Order)
}

func TestLessonTiesKeepCreationOrder(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	enrollment := newEnrollment(t, svc)
	teacher := newUser(t, svc, permissions.ManageLessons)

	course, err := svc.CreateCourse(ctx, teacher, CourseInput{EnrollmentID: &enrollment.ID, Name: ptr("Logic")})
	require.NoError(t, err)
	section, err := svc.CreateSection(ctx, teacher, SectionInput{CourseID: &course.ID, Name: ptr("Syllogisms")})
	require.NoError(t, err)

	for _, title := range []string{"b", "a", "c"} {
		_, err := svc.CreateLesson(ctx, teacher, LessonInput{SectionID: &section.ID, Order: ptr(5), Title: ptr(title)})
		require.NoError(t, err)
	}
	lessons, err := svc.ListLessons(ctx, section.ID)
	require.NoError(t, err)
	require.Len(t, lessons, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{lessons[0].Title, lessons[1].Title, lessons[2].Title})

	updated, err := svc.UpdateLesson(ctx, teacher, lessons[2].ID, LessonInput{Order: ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, "c", updated.Title)

	lessons, err = svc.ListLessons(ctx, section.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5, 5}, []int{lessons[0].Order, lessons[1].Order, lessons[2].Order})
}

func TestContentRequiresManageLessons(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	enrollment := newEnrollment(t, svc)
	student := newUser(t, svc)

	_, err := svc.CreateCourse(ctx, student, CourseInput{EnrollmentID: &enrollment.ID, Name: ptr("Art")})
	requireKind(t, err, utils.KindForbidden)

	teacher := newUser(t, svc, permissions.ManageLessons)
	_, err = svc.CreateCourse(ctx, teacher, CourseInput{Name: ptr("")})
	requireKind(t, err, utils.KindValidation)
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "enrollment_id")
	assert.Contains(t, appErr.Fields, "name")

	missing := uint(404)
	_, err = svc.CreateSection(ctx, teacher, SectionInput{CourseID: &missing, Name: ptr("Intro")})
	requireKind(t, err, utils.KindNotFound)
}

func TestDeleteCourseHidesIt(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	enrollment := newEnrollment(t, svc)
	teacher := newUser(t, svc, permissions.ManageLessons)

	course, err := svc.CreateCourse(ctx, teacher, CourseInput{EnrollmentID: &enrollment.ID, Name: ptr("History")})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCourse(ctx, teacher, course.ID))

	courses, err := svc.ListCourses(ctx, enrollment.ID)
	require.NoError(t, err)
	assert.Empty(t, courses)

	_, err = svc.GetCourseTree(ctx, course.ID)
	requireKind(t, err, utils.KindNotFound)
}

func TestMyCoursesFollowAdmission(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	enrollment := newEnrollment(t, svc)
	other := newEnrollment(t, svc)
	admin := newUser(t, svc, permissions.ManageLessons, permissions.ManageInterview)
	student := newUser(t, svc)

	_, err := svc.CreateCourse(ctx, admin, CourseInput{EnrollmentID: &enrollment.ID, Name: ptr("Metaphysics")})
	require.NoError(t, err)
	_, err = svc.CreateCourse(ctx, admin, CourseInput{EnrollmentID: &other.ID, Name: ptr("Aesthetics")})
	require.NoError(t, err)

	c, _, err := svc.Register(ctx, student, enrollment.ID, RegistrationInput{})
	require.NoError(t, err)

	mine, err := svc.MyCourses(ctx, student)
	require.NoError(t, err)
	assert.Empty(t, mine)

	_, err = svc.AssignInterview(ctx, admin, AssignInput{CandidacyID: c.ID})
	require.NoError(t, err)
	_, err = svc.AssignInterview(ctx, admin, AssignInput{CandidacyID: c.ID, Status: models.StatusObserver})
	require.NoError(t, err)

	mine, err = svc.MyCourses(ctx, student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Metaphysics", mine[0].Name)
}
