package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/twohearts/wedding-api/internal/models"
)

func newTestMenuService(t *testing.T, env *testEnv) *MenuService {
	t.Helper()

	svc, err := NewMenuService(env.db)
	require.NoError(t, err)
	return svc
}

func TestMenuServiceListOrdersByCourse(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestMenuService(t, env)

	_, err := svc.Create(context.Background(), CreateMenuItemInput{Course: models.CourseMain, Name: "Beef"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateMenuItemInput{Course: models.CourseDessert, Name: "Tart"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateMenuItemInput{Course: models.CourseMain, Name: "Aubergine"})
	require.NoError(t, err)

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "Tart", items[0].Name)
	require.Equal(t, "Aubergine", items[1].Name)
	require.Equal(t, "Beef", items[2].Name)
}

func TestMenuServiceUpdate(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestMenuService(t, env)

	item, err := svc.Create(context.Background(), CreateMenuItemInput{
		Course: models.CourseStarter,
		Name:   "Soup",
	})
	require.NoError(t, err)

	vegetarian := true
	description := "Roasted tomato soup"
	updated, err := svc.Update(context.Background(), item.ID, UpdateMenuItemInput{
		Vegetarian:  &vegetarian,
		Description: &description,
	})
	require.NoError(t, err)
	require.Equal(t, "Soup", updated.Name)

	var fresh models.MenuItem
	require.NoError(t, env.db.Take(&fresh, "id = ?", item.ID).Error)
	require.True(t, fresh.Vegetarian)
	require.Equal(t, "Roasted tomato soup", fresh.Description)
}

func TestMenuServiceUpdateUnknown(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestMenuService(t, env)

	name := "Ghost dish"
	_, err := svc.Update(context.Background(), "00000000-0000-0000-0000-000000000000",
		UpdateMenuItemInput{Name: &name})
	require.ErrorIs(t, err, ErrMenuItemNotFound)
}

func TestMenuServiceDeleteClearsGuestChoices(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestMenuService(t, env)

	group := seedGroup(t, env.db, "The Riveras", "RIVERA23", "Alex Rivera")
	item, err := svc.Create(context.Background(), CreateMenuItemInput{Course: models.CourseMain, Name: "Beef"})
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&group.Guests[0]).Updates(map[string]any{
		"is_coming":      true,
		"main_course_id": item.ID,
	}).Error)

	require.NoError(t, svc.Delete(context.Background(), item.ID))

	var guest models.Guest
	require.NoError(t, env.db.Take(&guest, "id = ?", group.Guests[0].ID).Error)
	require.True(t, guest.IsComing)
	require.Nil(t, guest.MainCourseID)

	require.ErrorIs(t, svc.Delete(context.Background(), item.ID), ErrMenuItemNotFound)
}
