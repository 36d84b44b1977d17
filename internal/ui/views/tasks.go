package views

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/todo/internal/engine"
	"github.com/tgienger/todo/internal/input"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/ui/keys"
	"github.com/tgienger/todo/internal/ui/styles"
	"github.com/tgienger/todo/internal/view"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// FocusArea represents which part of the UI has focus
type FocusArea int

const (
	FocusSearchInput FocusArea = iota
	FocusTaskList
)

// Add form fields, in tab order
const (
	addFieldText = iota
	addFieldCategory
	addFieldPriority
	addFieldDue
	addFieldTags
	addFieldSave
	addFieldCount
)

// OpenTask asks the app to show a task's subtasks
type OpenTask struct {
	ID int64
}

// SpecChanged reports a new filter, search or sort selection
type SpecChanged struct {
	Spec view.Spec
}

// ToggleTheme asks the app to switch between light and dark
type ToggleTheme struct{}

// ThemeChanged tells views to rebuild their styles
type ThemeChanged struct{}

// TaskListView shows the filtered and sorted task list
type TaskListView struct {
	store    *engine.Store
	computer *view.Computer
	spec     view.Spec
	tasks    []models.Task
	stats    view.Stats
	styles   *styles.Styles
	keys     keys.KeyMap
	now      func() time.Time

	width  int
	height int

	// UI state
	focus       FocusArea
	cursor      int
	scrollY     int
	searchInput textinput.Model

	// Task creation
	adding      bool
	addText     textinput.Model
	addDue      textinput.Model
	addTags     textinput.Model
	addCategory int // index into models.Categories()
	addPriority int // index into models.Priorities()
	addFocusIdx int
	addErr      string

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

// NewTaskListView creates the task list, starting from spec
func NewTaskListView(store *engine.Store, computer *view.Computer, spec view.Spec) *TaskListView {
	search := textinput.New()
	search.Placeholder = "Search tasks or tags..."
	search.CharLimit = 100
	search.SetValue(spec.Search)

	addText := textinput.New()
	addText.Placeholder = "What needs to be done?"
	addText.CharLimit = 200

	addDue := textinput.New()
	addDue.Placeholder = "YYYY-MM-DD, today, tomorrow"
	addDue.CharLimit = 20

	addTags := textinput.New()
	addTags.Placeholder = "comma, separated, tags"
	addTags.CharLimit = 200

	return &TaskListView{
		store:       store,
		computer:    computer,
		spec:        spec,
		styles:      styles.NewStyles(),
		keys:        keys.DefaultKeyMap(),
		now:         time.Now,
		focus:       FocusTaskList,
		searchInput: search,
		addText:     addText,
		addDue:      addDue,
		addTags:     addTags,
	}
}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	v.refresh()
	return nil
}

// Spec returns the current view selection
func (v *TaskListView) Spec() view.Spec {
	return v.spec
}

// refresh recomputes the visible tasks. It runs inside Update because the
// store is only ever touched from the event loop.
func (v *TaskListView) refresh() {
	r := v.computer.View(v.store, v.spec)
	v.tasks = r.Tasks
	v.stats = r.Stats
	if v.cursor >= len(v.tasks) {
		v.cursor = max(0, len(v.tasks)-1)
	}
	v.ensureVisible()
}

func (v *TaskListView) specChanged() tea.Msg {
	return SpecChanged{Spec: v.spec}
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ensureVisible()
		return v, nil

	case ThemeChanged:
		v.styles = styles.NewStyles()
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.adding {
			return v.updateAdding(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle search input typing first - don't process hotkeys while typing
	if v.focus == FocusSearchInput {
		switch {
		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Tab):
			v.searchInput.Blur()
			v.focus = FocusTaskList
			return v, nil
		default:
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			if v.searchInput.Value() == v.spec.Search {
				return v, cmd
			}
			v.spec.Search = v.searchInput.Value()
			v.cursor, v.scrollY = 0, 0
			v.refresh()
			return v, tea.Batch(cmd, v.specChanged)
		}
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		if v.spec.Search != "" {
			v.searchInput.Reset()
			v.spec.Search = ""
			v.refresh()
			return v, v.specChanged
		}
		return v, nil

	case key.Matches(msg, v.keys.Tab), key.Matches(msg, v.keys.Search):
		v.focus = FocusSearchInput
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if t, ok := v.selected(); ok {
			return v, func() tea.Msg { return OpenTask{ID: t.ID} }
		}
		return v, nil

	case key.Matches(msg, v.keys.Toggle):
		if t, ok := v.selected(); ok {
			v.store.ToggleCompleted(t.ID)
			v.refresh()
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.startAdd()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Delete):
		if t, ok := v.selected(); ok {
			v.confirmingDelete = true
			v.deleteTargetID = t.ID
			v.deleteTargetName = t.Text
		}
		return v, nil

	case key.Matches(msg, v.keys.Status):
		v.spec.Status = v.spec.Status.Next()
		return v, v.applySpec()

	case key.Matches(msg, v.keys.Category):
		v.spec.Category = v.spec.Category.Next()
		return v, v.applySpec()

	case key.Matches(msg, v.keys.Sort):
		v.spec.Sort = v.spec.Sort.Next()
		return v, v.applySpec()

	case key.Matches(msg, v.keys.Theme):
		return v, func() tea.Msg { return ToggleTheme{} }

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

func (v *TaskListView) applySpec() tea.Cmd {
	v.cursor, v.scrollY = 0, 0
	v.refresh()
	return v.specChanged
}

func (v *TaskListView) selected() (models.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.tasks) {
		return models.Task{}, false
	}
	return v.tasks[v.cursor], true
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.store.Delete(v.deleteTargetID)
		v.confirmingDelete = false
		v.refresh()
		return v, nil
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.adding = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.saveTask()

	case key.Matches(msg, v.keys.Tab):
		v.addFocusIdx = (v.addFocusIdx + 1) % addFieldCount
		v.updateAddFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.addFocusIdx = (v.addFocusIdx + addFieldCount - 1) % addFieldCount
		v.updateAddFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.addFocusIdx == addFieldSave {
			return v, v.saveTask()
		}
		v.addFocusIdx++
		v.updateAddFocus()
		return v, nil
	}

	// Category and priority are pickers: left/right or space cycles
	if v.addFocusIdx == addFieldCategory || v.addFocusIdx == addFieldPriority {
		step := 0
		switch msg.String() {
		case "right", "l", " ":
			step = 1
		case "left", "h":
			step = -1
		}
		if v.addFocusIdx == addFieldCategory {
			n := len(models.Categories())
			v.addCategory = (v.addCategory + step + n) % n
		} else {
			n := len(models.Priorities())
			v.addPriority = (v.addPriority + step + n) % n
		}
		return v, nil
	}

	var cmd tea.Cmd
	switch v.addFocusIdx {
	case addFieldText:
		v.addText, cmd = v.addText.Update(msg)
	case addFieldDue:
		v.addDue, cmd = v.addDue.Update(msg)
	case addFieldTags:
		v.addTags, cmd = v.addTags.Update(msg)
	}
	return v, cmd
}

func (v *TaskListView) startAdd() {
	v.adding = true
	v.addFocusIdx = addFieldText
	v.addErr = ""
	v.addText.Reset()
	v.addDue.Reset()
	v.addTags.Reset()
	v.addCategory = 0
	if c, err := models.ParseCategory(string(v.spec.Category)); err == nil {
		v.addCategory = slices.Index(models.Categories(), c)
	}
	v.addPriority = slices.Index(models.Priorities(), models.PriorityMedium)
	v.updateAddFocus()
}

func (v *TaskListView) updateAddFocus() {
	v.addText.Blur()
	v.addDue.Blur()
	v.addTags.Blur()

	switch v.addFocusIdx {
	case addFieldText:
		v.addText.Focus()
	case addFieldDue:
		v.addDue.Focus()
	case addFieldTags:
		v.addTags.Focus()
	}
}

func (v *TaskListView) saveTask() tea.Cmd {
	form := input.TaskForm{
		Text:     v.addText.Value(),
		Category: string(models.Categories()[v.addCategory]),
		Priority: string(models.Priorities()[v.addPriority]),
		Due:      v.addDue.Value(),
		Tags:     v.addTags.Value(),
	}
	in, err := form.Build(v.now())
	if err != nil {
		v.addErr = err.Error()
		return nil
	}

	id := v.store.Create(in)
	v.adding = false
	v.refresh()
	if i := slices.IndexFunc(v.tasks, func(t models.Task) bool { return t.ID == id }); i >= 0 {
		v.cursor = i
		v.ensureVisible()
	}
	return nil
}

func (v *TaskListView) ensureVisible() {
	visibleItems := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

// visibleItems is how many tasks fit; each task is 2 lines + 1 margin
func (v *TaskListView) visibleItems() int {
	availableHeight := v.height - 12
	if availableHeight < 3 {
		availableHeight = 3
	}
	return max(availableHeight/3, 1)
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.adding {
		return v.renderAddForm()
	}

	var b strings.Builder

	// Header with stats, search and view controls
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")

	// Task list
	b.WriteString(v.renderTaskList())

	// Help
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func statusLabel(f view.StatusFilter) string {
	switch f {
	case view.StatusActive:
		return "Active"
	case view.StatusCompleted:
		return "Completed"
	default:
		return "All"
	}
}

func (v *TaskListView) renderStats() string {
	s := v.styles
	stat := func(label string, n int) string {
		return s.Stat.Render(label + " " + s.StatValue.Render(fmt.Sprint(n)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left,
		stat("Total", v.stats.Total),
		stat("Active", v.stats.Active),
		stat("Completed", v.stats.Completed),
	)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	isNarrow := contentWidth < 60

	// Search input - dynamic width
	searchStyle := s.Input
	if v.focus == FocusSearchInput {
		searchStyle = s.InputFocused
	}
	searchWidth := clamp(contentWidth-4, 10, 74)
	searchBox := searchStyle.Width(searchWidth).Render(v.searchInput.View())

	statusBtn := s.Button.Render(statusLabel(v.spec.Status))
	categoryBtn := s.Button.Render(v.spec.Category.Label())
	sortBtn := s.Button.Render("↕ " + v.spec.Sort.Label())

	var controls string
	if isNarrow {
		controls = lipgloss.JoinVertical(lipgloss.Left, statusBtn, categoryBtn, sortBtn)
	} else {
		controls = lipgloss.JoinHorizontal(lipgloss.Center, statusBtn, " ", categoryBtn, " ", sortBtn)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Todo"),
		v.renderStats(),
		"",
		searchBox,
		controls,
	)
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles

	if len(v.tasks) == 0 {
		if v.stats.Total == 0 {
			return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
		}
		return s.TitleMuted.Render("No tasks match the current filters.")
	}

	var items []string
	endIdx := min(v.scrollY+v.visibleItems(), len(v.tasks))

	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, v.renderTaskItem(v.tasks[i], i == v.cursor && v.focus == FocusTaskList))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// taskMeta renders the second line of a task: category, priority, due
// date, subtask progress and tags
func (v *TaskListView) taskMeta(task models.Task) string {
	s := v.styles
	parts := []string{
		s.Category.Render(string(task.Category)),
		s.Priority(task.Priority),
	}
	if task.DueDate != nil {
		parts = append(parts, s.Due.Render("due "+task.DueDate.Format()))
	}
	if len(task.Subtasks) > 0 {
		parts = append(parts, s.TitleMuted.Render(fmt.Sprintf("%d/%d subtasks", task.CompletedSubtasks(), len(task.Subtasks))))
	}
	line := strings.Join(parts, s.TitleMuted.Render(" • "))
	for _, tag := range task.Tags {
		line += " " + s.Tag.Render("#"+tag)
	}
	return line
}

func (v *TaskListView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	text := task.Text
	if task.Completed {
		text = s.Done.Render(text)
	}
	titleLine := checkbox(task.Completed) + " " + text

	var lineStyle lipgloss.Style
	if selected {
		lineStyle = s.ListSelected.Width(width)
	} else {
		lineStyle = s.ListItem.Width(width)
	}

	// Return two-line item with margin
	return lipgloss.JoinVertical(lipgloss.Left,
		lineStyle.Render(titleLine),
		lineStyle.Render("    "+v.taskMeta(task)),
	) + "\n"
}

// picker renders a row of options with the chosen one highlighted
func (v *TaskListView) picker(opts []string, chosen int, focused bool) string {
	s := v.styles
	var out []string
	for i, o := range opts {
		switch {
		case i == chosen && focused:
			out = append(out, s.ButtonPrimary.Render(o))
		case i == chosen:
			out = append(out, s.Title.Padding(0, 2).Render(o))
		default:
			out = append(out, s.TitleMuted.Padding(0, 2).Render(o))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, out...)
}

func (v *TaskListView) renderAddForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	fieldStyle := func(idx int) lipgloss.Style {
		if v.addFocusIdx == idx {
			return s.InputFocused
		}
		return s.Input
	}
	btnStyle := s.Button
	if v.addFocusIdx == addFieldSave {
		btnStyle = s.ButtonFocused
	}

	var categories, priorities []string
	for _, c := range models.Categories() {
		categories = append(categories, string(c))
	}
	for _, p := range models.Priorities() {
		priorities = append(priorities, string(p))
	}

	// Dynamic input width based on content width
	inputWidth := clamp(contentWidth-6, 20, 50)

	rows := []string{
		s.Title.Render("New Task"),
		"",
		"Task:",
		fieldStyle(addFieldText).Width(inputWidth).Render(v.addText.View()),
		"",
		"Category:",
		fieldStyle(addFieldCategory).Width(inputWidth).Render(v.picker(categories, v.addCategory, v.addFocusIdx == addFieldCategory)),
		"",
		"Priority:",
		fieldStyle(addFieldPriority).Width(inputWidth).Render(v.picker(priorities, v.addPriority, v.addFocusIdx == addFieldPriority)),
		"",
		"Due date:",
		fieldStyle(addFieldDue).Width(inputWidth).Render(v.addDue.View()),
		"",
		"Tags:",
		fieldStyle(addFieldTags).Width(inputWidth).Render(v.addTags.View()),
		"",
		btnStyle.Render(" Add Task "),
	}
	if v.addErr != "" {
		rows = append(rows, "", s.Error.Width(inputWidth).Render(v.addErr))
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • ←→: choose • Ctrl+S: save • Esc: cancel"))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)

	// Center within content width, then center that in terminal
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}

	k := v.styles.HelpKey.Render
	return v.styles.Help.Render(
		fmt.Sprintf("%s subtasks • %s done • %s new • %s del • %s search • %s status • %s category • %s sort • %s theme • %s quit",
			k("↵"), k("space"), k("n"), k("d"), k("/"), k("s"), k("c"), k("o"), k("T"), k("q"),
		),
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↵") + "      subtasks",
		s.HelpKey.Render("space") + "  toggle done",
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("d") + "      delete task",
		s.HelpKey.Render("/") + "      search",
		s.HelpKey.Render("s") + "      cycle status filter",
		s.HelpKey.Render("c") + "      cycle category filter",
		s.HelpKey.Render("o") + "      cycle sort order",
		s.HelpKey.Render("T") + "      light/dark theme",
		s.HelpKey.Render("esc") + "    clear search",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderDeleteConfirm() string {
	return renderConfirm(v.styles, v.width, v.height, "Delete Task?", v.deleteTargetName)
}

// renderConfirm draws a yes/no dialog
func renderConfirm(s *styles.Styles, width, height int, title, target string) string {
	contentWidth := styles.ContentWidth(width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(s.Theme.Error).Render(title),
		"",
		s.TitleMuted.Width(clamp(contentWidth-10, 10, 60)).Align(lipgloss.Center).Render(target),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, width, height)
}
