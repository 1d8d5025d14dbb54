package services

import (
	"context"
	"testing"
	"time"

	"admissions/backend/permissions"
	"admissions/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftDeleteAndRestoreEnrollment(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	admin := newUser(t, svc, permissions.ManageEnrollment)

	created, err := svc.CreateEnrollment(ctx, admin, EnrollmentInput{
		Name:        ptr(" 2024 Autumn "),
		Description: ptr("Philosophy school"),
		PictureURL:  ptr("https://example.org/a.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2024 Autumn", created.Name)
	assert.True(t, created.OpenStatus)

	require.NoError(t, svc.DeleteEnrollments(ctx, admin, []uint{created.ID}))

	list, err := svc.ListEnrollments(ctx, nil, "", false)
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = svc.GetEnrollment(ctx, created.ID)
	requireKind(t, err, utils.KindNotFound)

	withDeleted, err := svc.ListEnrollments(ctx, admin, "", true)
	require.NoError(t, err)
	require.Len(t, withDeleted, 1)
	assert.True(t, withDeleted[0].IsDeleted())

	restored, err := svc.RestoreEnrollment(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted())

	list, err = svc.ListEnrollments(ctx, nil, "", false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "2024 Autumn", list[0].Name)
	assert.Equal(t, "Philosophy school", list[0].Description)
	assert.Equal(t, "https://example.org/a.png", list[0].PictureURL)

	again, err := svc.RestoreEnrollment(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
}

func TestDeleteEnrollmentsAllOrNothing(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	admin := newUser(t, svc, permissions.ManageEnrollment)
	first := newEnrollment(t, svc)

	requireKind(t, svc.DeleteEnrollments(ctx, admin, []uint{first.ID, 77}), utils.KindNotFound)
	list, err := svc.ListEnrollments(ctx, nil, "", false)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	requireKind(t, svc.DeleteEnrollments(ctx, newUser(t, svc), []uint{first.ID}), utils.KindForbidden)
	requireKind(t, svc.DeleteEnrollments(ctx, admin, nil), utils.KindValidation)
}

func TestListEnrollmentsSearchAndVisibility(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	admin := newUser(t, svc, permissions.ManageEnrollment)

	_, err := svc.CreateEnrollment(ctx, admin, EnrollmentInput{Name: ptr("Summer camp")})
	require.NoError(t, err)
	_, err = svc.CreateEnrollment(ctx, admin, EnrollmentInput{Name: ptr("Winter school"), Description: ptr("Camp in the mountains")})
	require.NoError(t, err)
	_, err = svc.CreateEnrollment(ctx, admin, EnrollmentInput{Name: ptr("Spring seminar")})
	require.NoError(t, err)

	found, err := svc.ListEnrollments(ctx, nil, "CAMP", false)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Winter school", found[0].Name)

	_, err = svc.ListEnrollments(ctx, newUser(t, svc), "", true)
	requireKind(t, err, utils.KindForbidden)

	_, err = svc.CreateEnrollment(ctx, admin, EnrollmentInput{Name: ptr("  ")})
	requireKind(t, err, utils.KindValidation)
}

func TestUpdateEnrollmentClosesRegistration(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	admin := newUser(t, svc, permissions.ManageEnrollment)
	enrollment := newEnrollment(t, svc)

	updated, err := svc.UpdateEnrollment(ctx, admin, enrollment.ID, EnrollmentInput{OpenStatus: ptr(false)})
	require.NoError(t, err)
	assert.False(t, updated.OpenStatus)
	assert.Equal(t, enrollment.Name, updated.Name)

	_, _, err = svc.Register(ctx, newUser(t, svc), enrollment.ID, RegistrationInput{})
	requireKind(t, err, utils.KindConflict)

	_, err = svc.UpdateEnrollment(ctx, admin, enrollment.ID, EnrollmentInput{Name: ptr("")})
	requireKind(t, err, utils.KindValidation)
}

func TestDeletedEnrollmentHidesChildren(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	admin := newUser(t, svc, permissions.ManageEnrollment, permissions.ManageActivity, permissions.ManageLessons)
	member := newUser(t, svc)

	closing := newEnrollment(t, svc)
	other := newEnrollment(t, svc)
	endAt := clock.Add(24 * time.Hour)

	activity, err := svc.CreateActivity(ctx, admin, ActivityInput{EnrollmentID: &closing.ID, Name: ptr("Retreat"), EndAt: &endAt})
	require.NoError(t, err)
	kept, err := svc.CreateActivity(ctx, admin, ActivityInput{EnrollmentID: &other.ID, Name: ptr("Lecture"), EndAt: &endAt})
	require.NoError(t, err)
	course, err := svc.CreateCourse(ctx, admin, CourseInput{EnrollmentID: &closing.ID, Name: ptr("Metaphysics")})
	require.NoError(t, err)
	section, err := svc.CreateSection(ctx, admin, SectionInput{CourseID: &course.ID, Name: ptr("Being")})
	require.NoError(t, err)
	_, err = svc.CreateLesson(ctx, admin, LessonInput{SectionID: &section.ID, Title: ptr("Substance")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEnrollments(ctx, admin, []uint{closing.ID}))

	activities, err := svc.ListActivities(ctx, 0)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, kept.ID, activities[0].ID)

	_, err = svc.GetActivity(ctx, activity.ID)
	requireKind(t, err, utils.KindNotFound)
	_, err = svc.SignUp(ctx, member, activity.ID)
	requireKind(t, err, utils.KindNotFound)
	_, err = svc.Withdraw(ctx, member, activity.ID)
	requireKind(t, err, utils.KindNotFound)

	courses, err := svc.ListCourses(ctx, closing.ID)
	require.NoError(t, err)
	assert.Empty(t, courses)
	_, err = svc.GetCourseTree(ctx, course.ID)
	requireKind(t, err, utils.KindNotFound)
	_, err = svc.ListSections(ctx, course.ID)
	requireKind(t, err, utils.KindNotFound)
	_, err = svc.ListLessons(ctx, section.ID)
	requireKind(t, err, utils.KindNotFound)

	_, err = svc.RestoreEnrollment(ctx, admin, closing.ID)
	require.NoError(t, err)

	activities, err = svc.ListActivities(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, activities, 2)
	signedUp, err := svc.SignUp(ctx, member, activity.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, signedUp.PeopleCount)

	tree, err := svc.GetCourseTree(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, tree.Sections, 1)
	require.Len(t, tree.Sections[0].Lessons, 1)
	lessons, err := svc.ListLessons(ctx, section.ID)
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
}
