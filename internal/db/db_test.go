package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/todo/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "nested", FileName))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestFreshDatabaseHasNoTasks(t *testing.T) {
	database := openTestDB(t)

	tasks, present, err := database.LoadTasks(context.Background())
	require.NoError(t, err)
	assert.False(t, present)
	assert.Nil(t, tasks)
}

func TestReplaceAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	seed := models.Seed()
	seed = append(seed, models.Task{
		ID: 99, Text: "No date", Category: models.CategoryShopping, Priority: models.PriorityLow,
		Subtasks: []models.Subtask{}, Tags: []string{"dup", "dup"},
	})
	require.NoError(t, database.ReplaceTasks(ctx, seed))

	got, present, err := database.LoadTasks(ctx)
	require.NoError(t, err)
	assert.True(t, present)
	assert.True(t, seed.Equal(got), "got %+v", got)
	assert.Nil(t, got[3].DueDate)
	assert.Equal(t, models.NewDate(2023, time.June, 30), *got[0].DueDate)
}

func TestReplaceDropsRemovedTasks(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	require.NoError(t, database.ReplaceTasks(ctx, models.Seed()))
	require.NoError(t, database.ReplaceTasks(ctx, models.Seed()[2:]))

	got, _, err := database.LoadTasks(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Exercise", got[0].Text)

	var orphans int
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM subtasks WHERE task_id <> 3").Scan(&orphans))
	assert.Zero(t, orphans)
}

func TestSavedEmptyCollectionIsPresent(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	require.NoError(t, database.ReplaceTasks(ctx, models.Collection{}))
	got, present, err := database.LoadTasks(ctx)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Empty(t, got)
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	v, err := database.GetSetting(ctx, "theme")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, database.SetSetting(ctx, "theme", "dark"))
	require.NoError(t, database.SetSetting(ctx, "theme", "light"))
	v, err = database.GetSetting(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light", v)
}
