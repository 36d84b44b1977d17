package views

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/tgienger/todo/internal/engine"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/view"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m tea.Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyMsg(k))
	}
	return cmd
}

func taskIDs(tasks []models.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func newTaskList(t *testing.T) (*TaskListView, *engine.Store) {
	t.Helper()
	store := engine.New(models.Seed(), engine.WithIDs(&engine.CounterIDs{}))
	v := NewTaskListView(store, view.NewComputer(language.Und), view.DefaultSpec())
	v.now = func() time.Time { return time.Date(2024, time.May, 10, 9, 0, 0, 0, time.UTC) }
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 60})
	v.Init()
	return v, store
}

func TestTaskListStartsWithDefaultView(t *testing.T) {
	v, _ := newTaskList(t)

	assert.Equal(t, []int64{2, 3, 1}, taskIDs(v.tasks))
	assert.Equal(t, view.Stats{Total: 3, Active: 2, Completed: 1}, v.stats)
	assert.Contains(t, v.View(), "Build a todo app")
}

func TestTaskListCyclesStatusFilter(t *testing.T) {
	v, _ := newTaskList(t)

	cmd := press(v, "s")
	assert.Equal(t, view.StatusActive, v.spec.Status)
	assert.Equal(t, []int64{3, 1}, taskIDs(v.tasks))
	require.NotNil(t, cmd)
	assert.Equal(t, SpecChanged{Spec: v.spec}, cmd())

	press(v, "s")
	assert.Equal(t, []int64{2}, taskIDs(v.tasks))
}

func TestTaskListToggleCompleted(t *testing.T) {
	v, store := newTaskList(t)
	press(v, "s") // active only: [3, 1]

	press(v, "x")
	got, _ := store.Get(3)
	assert.True(t, got.Completed)
	assert.Equal(t, []int64{1}, taskIDs(v.tasks))
	assert.Equal(t, 1, v.stats.Active)
}

func TestTaskListSortAndCategory(t *testing.T) {
	v, _ := newTaskList(t)

	press(v, "o")
	assert.Equal(t, view.SortPriority, v.spec.Sort)
	assert.Equal(t, []int64{1, 2, 3}, taskIDs(v.tasks))

	press(v, "c")
	assert.Equal(t, view.OnlyCategory(models.CategoryWork), v.spec.Category)
	assert.Equal(t, []int64{1, 2}, taskIDs(v.tasks))
}

func TestTaskListSearch(t *testing.T) {
	v, _ := newTaskList(t)

	press(v, "/", "FIT")
	assert.Equal(t, FocusSearchInput, v.focus)
	assert.Equal(t, "FIT", v.spec.Search)
	assert.Equal(t, []int64{3}, taskIDs(v.tasks))

	// Hotkeys are typed, not run, while searching
	press(v, "q")
	assert.Equal(t, "FITq", v.spec.Search)
	assert.Empty(t, v.tasks)

	press(v, "enter", "esc")
	assert.Equal(t, FocusTaskList, v.focus)
	assert.Empty(t, v.spec.Search)
	assert.Len(t, v.tasks, 3)
}

func TestTaskListAddTask(t *testing.T) {
	v, store := newTaskList(t)

	press(v, "n")
	require.True(t, v.adding)
	press(v, "Buy milk", "tab", "right", "right", "tab", "right", "tab", "tomorrow", "tab", "dairy, , errands")
	press(v, "ctrl+s")

	require.False(t, v.adding, v.addErr)
	require.Equal(t, 4, store.Len())
	added := store.Snapshot()[3]
	assert.Equal(t, "Buy milk", added.Text)
	assert.Equal(t, models.CategoryShopping, added.Category)
	assert.Equal(t, models.PriorityHigh, added.Priority)
	assert.Equal(t, models.NewDate(2024, time.May, 11), *added.DueDate)
	assert.Equal(t, []string{"dairy", "errands"}, added.Tags)

	sel, ok := v.selected()
	require.True(t, ok)
	assert.Equal(t, added.ID, sel.ID)
}

func TestTaskListRejectsBlankTask(t *testing.T) {
	v, store := newTaskList(t)

	press(v, "n", "   ", "ctrl+s")
	assert.True(t, v.adding)
	assert.NotEmpty(t, v.addErr)
	assert.Equal(t, 3, store.Len())

	press(v, "esc")
	assert.False(t, v.adding)
}

func TestTaskListDeleteConfirm(t *testing.T) {
	v, store := newTaskList(t)

	press(v, "d", "n")
	assert.Equal(t, 3, store.Len())

	press(v, "d")
	assert.Contains(t, v.View(), "Build a todo app")
	press(v, "y")
	assert.Equal(t, 2, store.Len())
	_, ok := store.Get(2)
	assert.False(t, ok)
	assert.Equal(t, []int64{3, 1}, taskIDs(v.tasks))
}

func TestTaskListOpenAndTheme(t *testing.T) {
	v, _ := newTaskList(t)

	cmd := press(v, "down", "enter")
	require.NotNil(t, cmd)
	assert.Equal(t, OpenTask{ID: 3}, cmd())

	cmd = press(v, "T")
	require.NotNil(t, cmd)
	assert.Equal(t, ToggleTheme{}, cmd())
}

func newSubtasks(t *testing.T, taskID int64) (*SubtaskView, *engine.Store) {
	t.Helper()
	store := engine.New(models.Seed(), engine.WithIDs(&engine.CounterIDs{}))
	v := NewSubtaskView(store, taskID)
	v.Init()
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return v, store
}

func TestSubtaskToggle(t *testing.T) {
	v, store := newSubtasks(t, 1)
	assert.Contains(t, v.View(), "Subtasks (1/2)")

	press(v, "down", "x")
	task, _ := store.Get(1)
	assert.True(t, task.Subtasks[1].Completed)
	assert.Contains(t, v.View(), "Subtasks (2/2)")

	press(v, "D")
	task, _ = store.Get(1)
	assert.True(t, task.Completed)
	assert.True(t, task.Subtasks[0].Completed, "task toggle leaves subtasks alone")
}

func TestSubtaskAddAndDelete(t *testing.T) {
	v, store := newSubtasks(t, 3)

	press(v, "n", "   ", "enter")
	assert.NotEmpty(t, v.createErr)

	press(v, "esc", "n", "Stretch", "enter", "esc")
	task, _ := store.Get(3)
	require.Len(t, task.Subtasks, 3)
	assert.Equal(t, "Stretch", task.Subtasks[2].Text)
	assert.Greater(t, task.Subtasks[2].ID, int64(32))

	// The new subtask stays selected
	press(v, "d", "y")
	task, _ = store.Get(3)
	require.Len(t, task.Subtasks, 2)
	assert.Equal(t, []int64{31, 32}, []int64{task.Subtasks[0].ID, task.Subtasks[1].ID})
}

func TestSubtaskViewLeavesWhenTaskIsGone(t *testing.T) {
	store := engine.New(models.Seed())
	v := NewSubtaskView(store, 2)
	store.Delete(2)

	cmd := v.Init()
	require.NotNil(t, cmd)
	assert.Equal(t, BackToTasks{}, cmd())

	v2, _ := newSubtasks(t, 2)
	cmd = press(v2, "esc")
	require.NotNil(t, cmd)
	assert.Equal(t, BackToTasks{}, cmd())
}
