package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrimhub/internal/apperr"
	"scrimhub/internal/models"
)

const platformOwnerUID = "owner-1"

func newModerationHarness() (*ModerationService, *fakeUserStatusStore, *fakeProvider) {
	users := newFakeUserStatusStore()
	users.users[platformOwnerUID] = models.User{UID: platformOwnerUID, Role: models.RoleOwner}
	users.users["admin-1"] = models.User{UID: "admin-1", Role: models.RoleAdmin}
	users.users["mod-1"] = models.User{UID: "mod-1", Role: models.RoleModerator}
	users.users["mod-2"] = models.User{UID: "mod-2", Role: models.RoleModerator}
	users.users["player-1"] = models.User{UID: "player-1", Role: models.RolePlayer}
	users.users["player-2"] = models.User{UID: "player-2", Role: models.RolePlayer}

	provider := newFakeProvider()
	svc := NewModerationService(users, provider, platformOwnerUID, zerolog.Nop())
	return svc, users, provider
}

func TestModerationOwnerIsUntouchable(t *testing.T) {
	svc, _, provider := newModerationHarness()

	for _, callerUID := range []string{"admin-1", "mod-1"} {
		caller := models.Caller{UID: callerUID, Role: models.RoleAdmin}
		for _, disabled := range []bool{true, false} {
			_, err := svc.SetUserStatus(context.Background(), caller, SetUserStatusInput{
				TargetUID: platformOwnerUID, Disabled: disabled,
			})
			assert.True(t, apperr.IsKind(err, apperr.PermissionDenied),
				"caller=%s disabled=%v", callerUID, disabled)
		}
	}
	assert.Zero(t, provider.calls)
}

func TestModerationSelfTarget(t *testing.T) {
	svc, _, _ := newModerationHarness()

	_, err := svc.SetUserStatus(context.Background(), models.Caller{UID: "admin-1", Role: models.RoleAdmin},
		SetUserStatusInput{TargetUID: "admin-1", Disabled: true})
	assert.True(t, apperr.IsKind(err, apperr.FailedPrecondition))
}

func TestModerationModeratorCannotTouchStaff(t *testing.T) {
	svc, _, _ := newModerationHarness()
	caller := models.Caller{UID: "mod-1", Role: models.RoleModerator}

	for _, target := range []string{"admin-1", "mod-2"} {
		for _, disabled := range []bool{true, false} {
			_, err := svc.SetUserStatus(context.Background(), caller, SetUserStatusInput{
				TargetUID: target, Disabled: disabled,
			})
			assert.True(t, apperr.IsKind(err, apperr.PermissionDenied),
				"target=%s disabled=%v", target, disabled)
		}
	}
}

func TestModerationModeratorBanAsymmetry(t *testing.T) {
	svc, users, provider := newModerationHarness()
	caller := models.Caller{UID: "mod-1", Role: models.RoleModerator}

	// Moderators cannot ban anyone.
	_, err := svc.SetUserStatus(context.Background(), caller, SetUserStatusInput{
		TargetUID: "player-1", Disabled: true,
	})
	assert.True(t, apperr.IsKind(err, apperr.PermissionDenied))
	assert.Zero(t, provider.calls)

	// But they can lift a ban from a non-staff account.
	users.users["player-1"] = models.User{UID: "player-1", Role: models.RolePlayer, Disabled: true}
	result, err := svc.SetUserStatus(context.Background(), caller, SetUserStatusInput{
		TargetUID: "player-1", Disabled: false,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, provider.disabled["player-1"])
	assert.False(t, users.users["player-1"].Disabled)
	assert.Nil(t, users.users["player-1"].BanUntil)
}

func TestModerationAdminTimedBan(t *testing.T) {
	svc, users, provider := newModerationHarness()
	caller := models.Caller{UID: "admin-1", Role: models.RoleAdmin}
	hours := 24
	reason := "toxic chat"

	result, err := svc.SetUserStatus(context.Background(), caller, SetUserStatusInput{
		TargetUID: "player-1", Disabled: true, DurationHours: &hours, Reason: &reason,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "banned until")

	require.NotNil(t, result.BanUntil)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), *result.BanUntil, time.Minute)

	assert.True(t, provider.disabled["player-1"])
	banned := users.users["player-1"]
	assert.True(t, banned.Disabled)
	require.NotNil(t, banned.BanUntil)
	require.NotNil(t, banned.BannedBy)
	assert.Equal(t, "admin-1", *banned.BannedBy)

	require.Len(t, users.changes, 1)
	require.NotNil(t, users.changes[0].DurationHours)
	assert.Equal(t, 24, *users.changes[0].DurationHours)
}

func TestModerationAdminPermanentBan(t *testing.T) {
	svc, users, _ := newModerationHarness()
	caller := models.Caller{UID: "admin-1", Role: models.RoleAdmin}

	result, err := svc.SetUserStatus(context.Background(), caller, SetUserStatusInput{
		TargetUID: "player-2", Disabled: true,
	})
	require.NoError(t, err)
	assert.Contains(t, result.Message, "banned permanently")
	assert.Nil(t, result.BanUntil)
	assert.Nil(t, users.users["player-2"].BanUntil)
}

func TestModerationDurationValidation(t *testing.T) {
	svc, _, _ := newModerationHarness()
	caller := models.Caller{UID: "admin-1", Role: models.RoleAdmin}

	for _, hours := range []int{0, -1, 24*365 + 1} {
		h := hours
		_, err := svc.SetUserStatus(context.Background(), caller, SetUserStatusInput{
			TargetUID: "player-1", Disabled: true, DurationHours: &h,
		})
		assert.True(t, apperr.IsKind(err, apperr.InvalidArgument), "hours=%d", hours)
	}
}

func TestModerationTargetNotFound(t *testing.T) {
	svc, _, _ := newModerationHarness()

	_, err := svc.SetUserStatus(context.Background(), models.Caller{UID: "admin-1", Role: models.RoleAdmin},
		SetUserStatusInput{TargetUID: "ghost", Disabled: true})
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestModerationProfileFailureAfterProviderUpdate(t *testing.T) {
	svc, users, provider := newModerationHarness()
	users.applyErr = errors.New("connection reset")

	_, err := svc.SetUserStatus(context.Background(), models.Caller{UID: "admin-1", Role: models.RoleAdmin},
		SetUserStatusInput{TargetUID: "player-1", Disabled: true})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Internal))

	// The provider flag was already flipped before the profile write failed.
	assert.Equal(t, 1, provider.calls)
	assert.True(t, provider.disabled["player-1"])
}

func TestModerationProviderFailureStopsEverything(t *testing.T) {
	svc, users, provider := newModerationHarness()
	provider.err = errors.New("identity provider unavailable")

	_, err := svc.SetUserStatus(context.Background(), models.Caller{UID: "admin-1", Role: models.RoleAdmin},
		SetUserStatusInput{TargetUID: "player-1", Disabled: true})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Internal))
	assert.Empty(t, users.changes)
	assert.False(t, users.users["player-1"].Disabled)
}
