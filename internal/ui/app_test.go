package ui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/todo/internal/engine"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/ui/styles"
	"github.com/tgienger/todo/internal/ui/views"
	"github.com/tgienger/todo/internal/view"
)

func newTestApp(t *testing.T, settings Settings) *App {
	t.Helper()
	t.Cleanup(func() { styles.SetTheme(styles.Dark.Name) })
	a := NewApp(Options{
		Store:    engine.New(models.Seed(), engine.WithIDs(&engine.CounterIDs{})),
		Settings: settings,
		Theme:    "dark",
	})
	a.Init()
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	return a
}

func TestAppRestoresSavedView(t *testing.T) {
	settings := NewMemorySettings()
	ctx := context.Background()
	require.NoError(t, settings.SetSetting(ctx, settingViewSpec,
		`{"status":"completed","category":"Work","search":"","sort":"priority"}`))
	require.NoError(t, settings.SetSetting(ctx, settingTheme, "light"))

	a := newTestApp(t, settings)
	assert.Equal(t, view.Spec{
		Status:   view.StatusCompleted,
		Category: view.OnlyCategory(models.CategoryWork),
		Sort:     view.SortPriority,
	}, a.taskList.Spec())
	assert.Equal(t, styles.Light.Name, styles.Current.Name)
}

func TestAppIgnoresBadSavedView(t *testing.T) {
	settings := NewMemorySettings()
	ctx := context.Background()
	require.NoError(t, settings.SetSetting(ctx, settingViewSpec, `{"status":"someday","sort":"random"`))

	a := newTestApp(t, settings)
	assert.Equal(t, view.DefaultSpec(), a.taskList.Spec())
}

func TestAppSavesViewChanges(t *testing.T) {
	settings := NewMemorySettings()
	a := newTestApp(t, settings)

	spec := view.DefaultSpec()
	spec.Sort = view.SortAlphabetical
	a.Update(views.SpecChanged{Spec: spec})

	b := newTestApp(t, settings)
	assert.Equal(t, spec, b.taskList.Spec())
}

func TestAppTogglesTheme(t *testing.T) {
	settings := NewMemorySettings()
	a := newTestApp(t, settings)
	require.Equal(t, styles.Dark.Name, styles.Current.Name)

	a.Update(views.ToggleTheme{})
	assert.Equal(t, styles.Light.Name, styles.Current.Name)
	saved, err := settings.GetSetting(context.Background(), settingTheme)
	require.NoError(t, err)
	assert.Equal(t, "light", saved)
}

func TestAppSwitchesViews(t *testing.T) {
	a := newTestApp(t, nil)

	a.Update(views.OpenTask{ID: 1})
	assert.Equal(t, ViewSubtasks, a.currentView)
	assert.Contains(t, a.View(), "Learn React")

	a.Update(views.BackToTasks{})
	assert.Equal(t, ViewTasks, a.currentView)
	assert.Nil(t, a.subtasks)
	assert.Contains(t, a.View(), "Exercise")
}
