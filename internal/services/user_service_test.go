package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/twohearts/wedding-api/internal/models"
	apperrors "github.com/twohearts/wedding-api/pkg/errors"
)

func newTestUserService(t *testing.T, env *testEnv) *UserService {
	t.Helper()

	svc, err := NewUserService(env.db)
	require.NoError(t, err)
	return svc
}

func TestUserServiceGet(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestUserService(t, env)

	group := seedGroup(t, env.db, "The Riveras", "RIVERA23")
	user := seedUser(t, env.db, "alex@example.com", "secret-pass", true, &group.ID)

	got, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, "alex@example.com", got.Email)
	require.NotNil(t, got.Group)
	require.Equal(t, "The Riveras", got.Group.FriendlyName)

	_, err = svc.Get(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceFindOrphaned(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestUserService(t, env)

	group := seedGroup(t, env.db, "The Riveras", "RIVERA23", "Alex Rivera")
	seated := seedUser(t, env.db, "alex@example.com", "secret-pass", true, &group.ID)
	unseated := seedUser(t, env.db, "sam@example.com", "secret-pass", true, &group.ID)
	require.NoError(t, env.db.Model(&group.Guests[0]).Update("user_id", seated.ID).Error)

	all, err := svc.Find(context.Background(), "", false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	orphaned, err := svc.Find(context.Background(), "", true)
	require.NoError(t, err)
	require.Len(t, orphaned, 1)
	require.Equal(t, unseated.ID, orphaned[0].ID)
}

func TestUserServiceUpdate(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestUserService(t, env)

	admin := seedAdmin(t, env.db, "admin@example.com")
	user := seedUser(t, env.db, "alex@example.com", "secret-pass", true, nil)

	newFirst := "Alexandra"
	promote := true
	updated, err := svc.Update(context.Background(), admin, user.ID, UpdateUserInput{
		FirstName: &newFirst,
		Admin:     &promote,
	})
	require.NoError(t, err)
	require.Equal(t, "Alexandra", updated.FirstName)

	var fresh models.User
	require.NoError(t, env.db.Take(&fresh, "id = ?", user.ID).Error)
	require.True(t, fresh.Admin)
}

func TestUserServiceUpdateCannotChangeOwnAdminFlag(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestUserService(t, env)

	admin := seedAdmin(t, env.db, "admin@example.com")

	demote := false
	_, err := svc.Update(context.Background(), admin, admin.ID, UpdateUserInput{Admin: &demote})
	require.NoError(t, err)

	var fresh models.User
	require.NoError(t, env.db.Take(&fresh, "id = ?", admin.ID).Error)
	require.True(t, fresh.Admin)
}

func TestUserServiceUpdateEmailConflict(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestUserService(t, env)

	admin := seedAdmin(t, env.db, "admin@example.com")
	seedUser(t, env.db, "taken@example.com", "secret-pass", true, nil)
	user := seedUser(t, env.db, "alex@example.com", "secret-pass", true, nil)

	taken := "taken@example.com"
	_, err := svc.Update(context.Background(), admin, user.ID, UpdateUserInput{Email: &taken})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 409, appErr.StatusCode)
}

func TestUserServiceUpdateProfileIgnoresAdminFlag(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestUserService(t, env)

	user := seedUser(t, env.db, "alex@example.com", "secret-pass", true, nil)

	promote := true
	newLast := "Riviera"
	_, err := svc.UpdateProfile(context.Background(), user, UpdateUserInput{
		LastName: &newLast,
		Admin:    &promote,
	})
	require.NoError(t, err)

	var fresh models.User
	require.NoError(t, env.db.Take(&fresh, "id = ?", user.ID).Error)
	require.Equal(t, "Riviera", fresh.LastName)
	require.False(t, fresh.Admin)
}

func TestUserServiceDeleteFreesGuestSeat(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestUserService(t, env)

	group := seedGroup(t, env.db, "The Riveras", "RIVERA23", "Alex Rivera")
	user := seedUser(t, env.db, "alex@example.com", "secret-pass", true, &group.ID)
	require.NoError(t, env.db.Model(&group.Guests[0]).Update("user_id", user.ID).Error)

	require.NoError(t, svc.Delete(context.Background(), user.ID))

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", user.ID).Count(&count).Error)
	require.Zero(t, count)

	var guest models.Guest
	require.NoError(t, env.db.Take(&guest, "id = ?", group.Guests[0].ID).Error)
	require.Nil(t, guest.UserID)
}

func TestUserServiceDeleteUnknown(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestUserService(t, env)

	err := svc.Delete(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, ErrUserNotFound)
}
