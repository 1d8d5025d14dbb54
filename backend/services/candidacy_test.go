package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"admissions/backend/models"
	"admissions/backend/permissions"
	"admissions/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(models.StatusRegistered, models.StatusUnderInterview))
	assert.False(t, CanTransition(models.StatusRegistered, models.StatusAccepted))
	assert.False(t, CanTransition(models.StatusRegistered, models.StatusRegistered))
	for _, to := range []models.CandidacyStatus{models.StatusUnderInterview, models.StatusAccepted, models.StatusObserver, models.StatusRefused} {
		assert.True(t, CanTransition(models.StatusUnderInterview, to), to)
	}
	for _, from := range []models.CandidacyStatus{models.StatusAccepted, models.StatusObserver, models.StatusRefused} {
		for _, to := range models.CandidacyStatuses {
			assert.False(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestRegisterCreatesThenKeepsCandidacy(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	enrollment := newEnrollment(t, svc)
	candidate := newUser(t, svc)

	c, created, err := svc.Register(ctx, candidate, enrollment.ID, RegistrationInput{
		Province: ptr("Sichuan"),
		SubField: json.RawMessage(`{"school":"No. 7 High"}`),
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.StatusRegistered, c.Status)
	assert.Equal(t, "Sichuan", c.User.Province)

	require.NoError(t, svc.DB.Model(&models.Candidacy{}).Where("id = ?", c.ID).Update("status", models.StatusUnderInterview).Error)

	again, created, err := svc.Register(ctx, candidate, enrollment.ID, RegistrationInput{
		SubField: json.RawMessage(`{"school":"No. 9 High"}`),
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, c.ID, again.ID)
	assert.Equal(t, models.StatusUnderInterview, again.Status)
	assert.JSONEq(t, `{"school":"No. 9 High"}`, string(again.User.SubField))

	var count int64
	require.NoError(t, svc.DB.Model(&models.Candidacy{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRegisterRejectsClosedEnrollment(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	candidate := newUser(t, svc)

	closed := newEnrollment(t, svc)
	require.NoError(t, svc.DB.Model(closed).Update("open_status", false).Error)
	_, _, err := svc.Register(ctx, candidate, closed.ID, RegistrationInput{})
	requireKind(t, err, utils.KindConflict)

	expired := newEnrollment(t, svc)
	past := clock.Add(-time.Hour)
	require.NoError(t, svc.DB.Model(expired).Update("end_at", past).Error)
	_, _, err = svc.Register(ctx, candidate, expired.ID, RegistrationInput{})
	requireKind(t, err, utils.KindConflict)

	_, _, err = svc.Register(ctx, candidate, 999, RegistrationInput{})
	requireKind(t, err, utils.KindNotFound)

	_, _, err = svc.Register(ctx, candidate, expired.ID, RegistrationInput{SubField: json.RawMessage(`{broken`)})
	requireKind(t, err, utils.KindValidation)
}

func TestMyCandidaciesReportsNone(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	first := newEnrollment(t, svc)
	second := newEnrollment(t, svc)
	candidate := newUser(t, svc)

	_, _, err := svc.Register(ctx, candidate, first.ID, RegistrationInput{})
	require.NoError(t, err)

	list, err := svc.MyCandidacies(ctx, candidate)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].Enrollment.ID)
	assert.Equal(t, models.StatusNone, list[0].Status)
	assert.Equal(t, first.ID, list[1].Enrollment.ID)
	assert.Equal(t, models.StatusRegistered, list[1].Status)
}

func TestAcceptanceRequiresInterviewStep(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	enrollment := newEnrollment(t, svc)
	manager := newUser(t, svc, permissions.ManageInterview)
	interviewer := newUser(t, svc, permissions.ParticipateInterview)
	candidate := newUser(t, svc)

	c, _, err := svc.Register(ctx, candidate, enrollment.ID, RegistrationInput{})
	require.NoError(t, err)

	_, err = svc.AssignInterview(ctx, manager, AssignInput{CandidacyID: c.ID, Status: models.StatusAccepted})
	requireKind(t, err, utils.KindConflict)

	_, err = svc.AssignInterview(ctx, interviewer, AssignInput{CandidacyID: c.ID})
	requireKind(t, err, utils.KindForbidden)

	res, err := svc.AssignInterview(ctx, manager, AssignInput{
		CandidacyID:  c.ID,
		Interviewers: []uint{interviewer.ID, interviewer.ID},
		Profile:      ProfileInput{City: ptr("Chengdu")},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderInterview, res.Candidacy.Status)
	require.Len(t, res.Records, 1)
	assert.Equal(t, interviewer.ID, res.Records[0].InterviewerID)
	assert.Equal(t, candidate.ID, res.Records[0].IntervieweeID)
	assert.Equal(t, enrollment.ID, res.Records[0].EnrollmentID)
	assert.Equal(t, "Chengdu", res.Candidacy.User.City)

	res, err = svc.AssignInterview(ctx, manager, AssignInput{CandidacyID: c.ID, Status: models.StatusAccepted})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, res.Candidacy.Status)

	_, err = svc.AssignInterview(ctx, manager, AssignInput{CandidacyID: c.ID, Status: models.StatusRefused})
	requireKind(t, err, utils.KindConflict)

	_, _, err = svc.Register(ctx, candidate, enrollment.ID, RegistrationInput{})
	require.NoError(t, err)
	var stored models.Candidacy
	require.NoError(t, svc.DB.First(&stored, c.ID).Error)
	assert.Equal(t, models.StatusAccepted, stored.Status)
}

func TestAssignInterviewRollsBack(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	enrollment := newEnrollment(t, svc)
	manager := newUser(t, svc, permissions.ManageInterview)
	interviewer := newUser(t, svc, permissions.ParticipateInterview)
	bystander := newUser(t, svc)
	candidate := newUser(t, svc)

	c, _, err := svc.Register(ctx, candidate, enrollment.ID, RegistrationInput{})
	require.NoError(t, err)

	cases := map[string][]uint{
		"unknown interviewer":    {interviewer.ID, 4242},
		"ineligible interviewer": {interviewer.ID, bystander.ID},
		"self interview":         {candidate.ID},
	}
	for name, ids := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.AssignInterview(ctx, manager, AssignInput{
				CandidacyID:  c.ID,
				Interviewers: ids,
				Profile:      ProfileInput{City: ptr("Lhasa")},
			})
			requireKind(t, err, utils.KindValidation)

			var stored models.Candidacy
			require.NoError(t, svc.DB.First(&stored, c.ID).Error)
			assert.Equal(t, models.StatusRegistered, stored.Status)

			var profile models.UserProfile
			require.NoError(t, svc.DB.First(&profile, candidate.ID).Error)
			assert.Empty(t, profile.City)

			var records int64
			require.NoError(t, svc.DB.Model(&models.InterviewRecord{}).Count(&records).Error)
			assert.Zero(t, records)
		})
	}
}

func TestDeleteCandidacyRemovesRecords(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	enrollment := newEnrollment(t, svc)
	admin := newUser(t, svc, permissions.ManageEnrollment, permissions.ManageInterview)
	interviewer := newUser(t, svc, permissions.ParticipateInterview)
	candidate := newUser(t, svc)

	c, _, err := svc.Register(ctx, candidate, enrollment.ID, RegistrationInput{})
	require.NoError(t, err)
	_, err = svc.AssignInterview(ctx, admin, AssignInput{CandidacyID: c.ID, Interviewers: []uint{interviewer.ID}})
	require.NoError(t, err)

	require.Error(t, svc.DeleteCandidacy(ctx, interviewer, c.ID))
	require.NoError(t, svc.DeleteCandidacy(ctx, admin, c.ID))

	var count int64
	require.NoError(t, svc.DB.Unscoped().Model(&models.Candidacy{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, svc.DB.Model(&models.InterviewRecord{}).Count(&count).Error)
	assert.Zero(t, count)

	requireKind(t, svc.DeleteCandidacy(ctx, admin, c.ID), utils.KindNotFound)
}

func TestListCandidaciesFiltersByStatus(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	enrollment := newEnrollment(t, svc)
	manager := newUser(t, svc, permissions.ManageInterview)
	first := newUser(t, svc)
	second := newUser(t, svc)

	c1, _, err := svc.Register(ctx, first, enrollment.ID, RegistrationInput{})
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, second, enrollment.ID, RegistrationInput{})
	require.NoError(t, err)
	_, err = svc.AssignInterview(ctx, manager, AssignInput{CandidacyID: c1.ID})
	require.NoError(t, err)

	all, err := svc.ListCandidacies(ctx, manager, enrollment.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	interviewing, err := svc.ListCandidacies(ctx, manager, enrollment.ID, models.StatusUnderInterview)
	require.NoError(t, err)
	require.Len(t, interviewing, 1)
	assert.Equal(t, first.ID, interviewing[0].User.ID)

	_, err = svc.ListCandidacies(ctx, manager, enrollment.ID, "pending")
	requireKind(t, err, utils.KindValidation)

	_, err = svc.ListCandidacies(ctx, first, enrollment.ID, "")
	requireKind(t, err, utils.KindForbidden)
}
