package ui

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"

	"github.com/tgienger/todo/internal/engine"
	"github.com/tgienger/todo/internal/ui/styles"
	"github.com/tgienger/todo/internal/ui/views"
	"github.com/tgienger/todo/internal/view"
)

// Currently active view
type View int

const (
	ViewTasks View = iota
	ViewSubtasks
)

// Options configures the application
type Options struct {
	Store    *engine.Store
	Settings Settings
	// Language orders titles in the alphabetical sort
	Language language.Tag
	// Theme is used when no theme has been saved yet
	Theme  string
	Logger *slog.Logger
}

type App struct {
	store       *engine.Store
	settings    Settings
	log         *slog.Logger
	currentView View
	taskList    *views.TaskListView
	subtasks    *views.SubtaskView
	width       int
	height      int
}

// Creates a new application. The saved theme and view selection are
// restored from settings.
func NewApp(opts Options) *App {
	a := &App{
		store:    opts.Store,
		settings: opts.Settings,
		log:      opts.Logger,
	}
	if a.settings == nil {
		a.settings = NewMemorySettings()
	}
	if a.log == nil {
		a.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	theme := a.getSetting(settingTheme)
	if theme == "" || !styles.SetTheme(theme) {
		styles.SetTheme(opts.Theme)
	}

	a.taskList = views.NewTaskListView(a.store, view.NewComputer(opts.Language), a.loadSpec())
	return a
}

func (a *App) getSetting(key string) string {
	v, err := a.settings.GetSetting(context.Background(), key)
	if err != nil {
		a.log.Warn("read setting", "key", key, "error", err)
		return ""
	}
	return v
}

func (a *App) setSetting(key, value string) {
	if err := a.settings.SetSetting(context.Background(), key, value); err != nil {
		a.log.Warn("save setting", "key", key, "error", err)
	}
}

// loadSpec returns the last saved view selection, or the default one
func (a *App) loadSpec() view.Spec {
	spec := view.DefaultSpec()
	raw := a.getSetting(settingViewSpec)
	if raw == "" {
		return spec
	}
	var saved view.Spec
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		a.log.Warn("discarding saved view", "error", err)
		return spec
	}
	if st, err := view.ParseStatus(string(saved.Status)); err == nil {
		spec.Status = st
	}
	if c, err := view.ParseCategoryFilter(string(saved.Category)); err == nil {
		spec.Category = c
	}
	if k, err := view.ParseSortKey(string(saved.Sort)); err == nil {
		spec.Sort = k
	}
	spec.Search = saved.Search
	return spec
}

func (a *App) saveSpec(spec view.Spec) {
	b, err := json.Marshal(spec)
	if err != nil {
		return
	}
	a.setSetting(settingViewSpec, string(b))
}

func (a *App) Init() tea.Cmd {
	return a.taskList.Init()
}

func (a *App) openTask(id int64) tea.Cmd {
	a.currentView = ViewSubtasks
	a.subtasks = views.NewSubtaskView(a.store, id)

	// Initialize subtask view with window size
	return tea.Batch(
		a.subtasks.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Always update task list size since it persists
		a.taskList.Update(msg)

	case views.OpenTask:
		return a, a.openTask(msg.ID)

	case views.BackToTasks:
		a.currentView = ViewTasks
		a.subtasks = nil
		return a, a.taskList.Init()

	case views.SpecChanged:
		a.saveSpec(msg.Spec)
		return a, nil

	case views.ToggleTheme:
		a.setSetting(settingTheme, styles.Toggle())
		a.taskList.Update(views.ThemeChanged{})
		if a.subtasks != nil {
			a.subtasks.Update(views.ThemeChanged{})
		}
		return a, nil
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewTasks:
		_, cmd = a.taskList.Update(msg)
	case ViewSubtasks:
		_, cmd = a.subtasks.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewSubtasks:
		if a.subtasks != nil {
			return a.subtasks.View()
		}
	}
	return a.taskList.View()
}
