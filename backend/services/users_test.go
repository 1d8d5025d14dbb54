package services

import (
	"context"
	"encoding/json"
	"testing"

	"admissions/backend/models"
	"admissions/backend/permissions"
	"admissions/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginCreatesProfileOnce(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	user, created, err := svc.Login(ctx, "openid-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Zero(t, user.Privilege)

	again, created, err := svc.Login(ctx, "openid-1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)

	_, _, err = svc.Login(ctx, "   ")
	requireKind(t, err, utils.KindValidation)
}

func TestLoginBootstrapsAdmin(t *testing.T) {
	svc := setupServices(t)
	admin, _, err := svc.Login(context.Background(), "root")
	require.NoError(t, err)
	assert.True(t, permissions.HasAll(admin.Privilege, permissions.All()...))
}

func TestDisabledAccountCannotLogin(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	admin := newUser(t, svc, permissions.SetManager)

	user, _, err := svc.Login(ctx, "openid-2")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteUser(ctx, admin, user.ID))

	_, _, err = svc.Login(ctx, "openid-2")
	requireKind(t, err, utils.KindForbidden)
	_, err = svc.GetProfile(ctx, user.ID)
	requireKind(t, err, utils.KindNotFound)

	_, err = svc.RestoreUser(ctx, admin, user.ID)
	require.NoError(t, err)
	back, created, err := svc.Login(ctx, "openid-2")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, back.ID)

	requireKind(t, svc.DeleteUser(ctx, admin, admin.ID), utils.KindConflict)
}

func TestChangePrivilegesKeepsOtherBits(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	admin := newUser(t, svc, permissions.SetManager)
	target := newUser(t, svc, permissions.ManageLessons, permissions.ManageActivity)

	updated, err := svc.ChangePrivileges(ctx, admin, target.ID, []permissions.Capability{permissions.ManageInterview}, nil)
	require.NoError(t, err)
	assert.Equal(t, target.Privilege|permissions.ManageInterview.Bit(), updated.Privilege)
	assert.True(t, permissions.HasAll(updated.Privilege, permissions.ManageLessons, permissions.ManageActivity, permissions.ManageInterview))

	updated, err = svc.ChangePrivileges(ctx, admin, target.ID, nil, []permissions.Capability{permissions.ManageLessons})
	require.NoError(t, err)
	assert.False(t, permissions.Has(updated.Privilege, permissions.ManageLessons))
	assert.True(t, permissions.HasAll(updated.Privilege, permissions.ManageActivity, permissions.ManageInterview))

	var stored models.UserProfile
	require.NoError(t, svc.DB.First(&stored, target.ID).Error)
	assert.Equal(t, updated.Privilege, stored.Privilege)

	_, err = svc.ChangePrivileges(ctx, admin, target.ID,
		[]permissions.Capability{permissions.ManageFellow},
		[]permissions.Capability{permissions.ManageFellow})
	requireKind(t, err, utils.KindValidation)

	_, err = svc.ChangePrivileges(ctx, target, admin.ID, []permissions.Capability{permissions.ManageFellow}, nil)
	requireKind(t, err, utils.KindForbidden)
}

func TestManagers(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	admin := newUser(t, svc, permissions.SetManager)
	teacher := newUser(t, svc, permissions.ManageLessons)
	newUser(t, svc)

	managers, err := svc.ListManagers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, managers, 2)

	require.NoError(t, svc.DemoteManager(ctx, admin, teacher.ID))
	managers, err = svc.ListManagers(ctx, admin)
	require.NoError(t, err)
	require.Len(t, managers, 1)
	assert.Equal(t, admin.ID, managers[0].ID)

	requireKind(t, svc.DemoteManager(ctx, admin, admin.ID), utils.KindConflict)
	_, err = svc.ListManagers(ctx, teacher)
	requireKind(t, err, utils.KindForbidden)
}

func TestUpdateOwnProfileValidates(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	user := newUser(t, svc)

	_, err := svc.UpdateOwnProfile(ctx, user, ProfileInput{Gender: ptr(3), Mail: ptr("nope")})
	requireKind(t, err, utils.KindValidation)
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Len(t, appErr.Fields, 2)

	updated, err := svc.UpdateOwnProfile(ctx, user, ProfileInput{NickName: ptr(" Sophia "), Mail: ptr("s@example.org")})
	require.NoError(t, err)
	assert.Equal(t, "Sophia", updated.NickName)
	assert.Equal(t, "s@example.org", updated.Mail)
	assert.Equal(t, "Zhejiang", updated.Province)
}

func TestFellows(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()
	shared := newEnrollment(t, svc)
	elsewhere := newEnrollment(t, svc)
	me := newUser(t, svc)
	classmate := newUser(t, svc)
	stranger := newUser(t, svc)

	for _, reg := range []struct {
		user       *models.UserProfile
		enrollment *models.EnrollmentCycle
	}{{me, shared}, {classmate, shared}, {stranger, elsewhere}} {
		_, _, err := svc.Register(ctx, reg.user, reg.enrollment.ID, RegistrationInput{})
		require.NoError(t, err)
	}

	fellows, err := svc.ListFellows(ctx, me)
	require.NoError(t, err)
	require.Len(t, fellows, 1)
	assert.Equal(t, classmate.ID, fellows[0].ID)
	assert.Equal(t, "Zhejiang", fellows[0].Province)

	got, err := svc.GetFellow(ctx, me, classmate.ID)
	require.NoError(t, err)
	assert.Equal(t, classmate.ID, got.ID)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	var exposed map[string]any
	require.NoError(t, json.Unmarshal(raw, &exposed))
	for _, private := range []string{"phone", "mail", "birth_date", "wechat", "sub_field", "privilege"} {
		assert.NotContains(t, exposed, private)
	}

	_, err = svc.GetFellow(ctx, me, stranger.ID)
	requireKind(t, err, utils.KindForbidden)

	alumniAdmin := newUser(t, svc, permissions.ManageFellow)
	_, err = svc.GetFellow(ctx, alumniAdmin, stranger.ID)
	require.NoError(t, err)
}
