package todo_test

import (
	"context"
	"testing"

	"github.com/raminkz/gotodo/internal/testutil"
	"github.com/raminkz/gotodo/internal/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_List(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	ctx := context.Background()

	alice := testutil.CreateTestUser(t, tc.DB, "alice@test.com")
	bob := testutil.CreateTestUser(t, tc.DB, "bob@test.com")

	testutil.CreateTestTask(t, tc.DB, alice, "buy milk")
	testutil.CreateTestTask(t, tc.DB, alice, "walk the dog")
	testutil.CreateTestTask(t, tc.DB, bob, "buy stamps")

	t.Run("returns everything by default", func(t *testing.T) {
		tasks, total, err := tc.TaskStore.List(ctx, todo.ListParams{Limit: 20})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Len(t, tasks, 3)
	})

	t.Run("filters by owner", func(t *testing.T) {
		tasks, total, err := tc.TaskStore.List(ctx, todo.ListParams{
			OwnerID: alice.Profile.ID,
			Limit:   20,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		for _, task := range tasks {
			assert.Equal(t, alice.Profile.ID, task.ProfileID)
		}
	})

	t.Run("filters by exact title", func(t *testing.T) {
		_, total, err := tc.TaskStore.List(ctx, todo.ListParams{Title: "buy milk", Limit: 20})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("searches across title and owner email", func(t *testing.T) {
		_, total, err := tc.TaskStore.List(ctx, todo.ListParams{Search: "buy", Limit: 20})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)

		_, total, err = tc.TaskStore.List(ctx, todo.ListParams{Search: "bob@", Limit: 20})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("paginates with a fixed window", func(t *testing.T) {
		tasks, total, err := tc.TaskStore.List(ctx, todo.ListParams{Limit: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Len(t, tasks, 2)

		tasks, _, err = tc.TaskStore.List(ctx, todo.ListParams{Offset: 2, Limit: 2})
		require.NoError(t, err)
		assert.Len(t, tasks, 1)
	})

	t.Run("orders by creation date ascending", func(t *testing.T) {
		tasks, _, err := tc.TaskStore.List(ctx, todo.ListParams{Ordering: "created_at", Limit: 20})
		require.NoError(t, err)
		require.Len(t, tasks, 3)
		for i := 1; i < len(tasks); i++ {
			assert.False(t, tasks[i].CreatedAt.Before(tasks[i-1].CreatedAt))
		}
	})
}

func TestStore_CreateGetUpdateDelete(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	ctx := context.Background()

	owner := testutil.CreateTestUser(t, tc.DB, "owner@test.com")

	task, err := tc.TaskStore.Create(ctx, owner.Profile.ID, "test")
	require.NoError(t, err)
	assert.False(t, task.Complete)
	assert.Equal(t, owner.Profile.ID, task.ProfileID)

	got, err := tc.TaskStore.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "test", got.Title)
	require.NotNil(t, got.Profile, "owner profile is preloaded")
	assert.Equal(t, owner.ID, got.Profile.UserID)

	got.Complete = true
	require.NoError(t, tc.TaskStore.Update(ctx, got))

	got, err = tc.TaskStore.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.Complete)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	require.NoError(t, tc.TaskStore.Delete(ctx, task.ID))
	_, err = tc.TaskStore.Get(ctx, task.ID)
	assert.ErrorIs(t, err, todo.ErrTaskNotFound)

	err = tc.TaskStore.Delete(ctx, task.ID)
	assert.ErrorIs(t, err, todo.ErrTaskNotFound)
}

func TestStore_PurgeCompleted(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	ctx := context.Background()

	owner := testutil.CreateTestUser(t, tc.DB, "purge@test.com")

	done := testutil.CreateTestTask(t, tc.DB, owner, "done")
	done.Complete = true
	require.NoError(t, tc.TaskStore.Update(ctx, done))
	testutil.CreateTestTask(t, tc.DB, owner, "pending")

	count, err := tc.TaskStore.PurgeCompleted(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// Only the completed row went away.
	_, err = tc.TaskStore.Get(ctx, done.ID)
	assert.ErrorIs(t, err, todo.ErrTaskNotFound)
	_, total, err := tc.TaskStore.List(ctx, todo.ListParams{Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	// Idempotent with nothing left to purge.
	count, err = tc.TaskStore.PurgeCompleted(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}
