package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/todo/internal/engine"
	"github.com/tgienger/todo/internal/input"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/ui/keys"
	"github.com/tgienger/todo/internal/ui/styles"
)

type subtaskItem struct {
	subtask models.Subtask
}

func (i subtaskItem) Title() string       { return i.subtask.Text }
func (i subtaskItem) Description() string { return "" }
func (i subtaskItem) FilterValue() string { return i.subtask.Text }

type subtaskDelegate struct {
	styles *styles.Styles
	width  int
}

func (d subtaskDelegate) Height() int                               { return 1 }
func (d subtaskDelegate) Spacing() int                              { return 0 }
func (d subtaskDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d subtaskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(subtaskItem)
	if !ok {
		return
	}

	width := max(d.width-4, 20)
	lineStyle := d.styles.ListItem.Width(width)
	if index == m.Index() {
		lineStyle = d.styles.ListSelected.Width(width)
	}

	text := it.subtask.Text
	if it.subtask.Completed {
		text = d.styles.Done.Render(text)
	}
	fmt.Fprint(w, lineStyle.Render(checkbox(it.subtask.Completed)+" "+text))
}

// BackToTasks signals to go back to the task list
type BackToTasks struct{}

// SubtaskView shows one task and manages its subtasks
type SubtaskView struct {
	store            *engine.Store
	taskID           int64
	task             models.Task
	list             list.Model
	delegate         *subtaskDelegate
	styles           *styles.Styles
	keys             keys.KeyMap
	width            int
	height           int
	creating         bool
	createErr        string
	newText          textinput.Model
	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

// NewSubtaskView creates the detail view for taskID
func NewSubtaskView(store *engine.Store, taskID int64) *SubtaskView {
	s := styles.NewStyles()

	newText := textinput.New()
	newText.Placeholder = "Subtask"
	newText.CharLimit = 200

	// Setup custom delegate
	delegate := &subtaskDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowPagination(true)

	return &SubtaskView{
		store:    store,
		taskID:   taskID,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		newText:  newText,
	}
}

func (v *SubtaskView) Init() tea.Cmd {
	return v.reload()
}

// reload re-reads the task from the store. A task that no longer exists
// sends the user back to the list.
func (v *SubtaskView) reload() tea.Cmd {
	t, ok := v.store.Get(v.taskID)
	if !ok {
		return func() tea.Msg { return BackToTasks{} }
	}
	v.task = t
	items := make([]list.Item, len(t.Subtasks))
	for i, st := range t.Subtasks {
		items[i] = subtaskItem{subtask: st}
	}
	cmd := v.list.SetItems(items)
	if n := len(items); n > 0 && v.list.Index() >= n {
		v.list.Select(n - 1)
	}
	return cmd
}

func (v *SubtaskView) selected() (models.Subtask, bool) {
	item, ok := v.list.SelectedItem().(subtaskItem)
	return item.subtask, ok
}

func (v *SubtaskView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		// Use content width (capped at MaxWidth) for internal layout
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, max(msg.Height-14, 3))
		return v, nil

	case ThemeChanged:
		v.styles = styles.NewStyles()
		v.delegate.styles = v.styles
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

		if v.creating {
			return v.updateCreating(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return BackToTasks{} }
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.createErr = ""
			v.newText.Reset()
			v.newText.Focus()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Toggle), key.Matches(msg, v.keys.Enter):
			if st, ok := v.selected(); ok {
				v.store.ToggleSubtaskCompleted(v.taskID, st.ID)
				return v, v.reload()
			}
			return v, nil
		case msg.String() == "D":
			v.store.ToggleCompleted(v.taskID)
			return v, v.reload()
		case key.Matches(msg, v.keys.Delete):
			if st, ok := v.selected(); ok {
				v.confirmingDelete = true
				v.deleteTargetID = st.ID
				v.deleteTargetName = st.Text
				return v, nil
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *SubtaskView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.store.DeleteSubtask(v.taskID, v.deleteTargetID)
		v.confirmingDelete = false
		return v, v.reload()
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *SubtaskView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		v.newText.Blur()
		return v, nil

	case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Save):
		text, err := input.SubtaskText(v.newText.Value())
		if err != nil {
			v.createErr = "Subtask text must not be blank"
			return v, nil
		}
		if _, ok := v.store.AddSubtask(v.taskID, text); !ok {
			return v, func() tea.Msg { return BackToTasks{} }
		}
		// Stay in the form so several subtasks can be added in a row
		v.newText.Reset()
		v.createErr = ""
		cmd := v.reload()
		v.list.Select(len(v.list.Items()) - 1)
		return v, cmd
	}

	var cmd tea.Cmd
	v.newText, cmd = v.newText.Update(msg)
	return v, cmd
}

// View renders the view
func (v *SubtaskView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return renderConfirm(v.styles, v.width, v.height, "Delete Subtask?", v.deleteTargetName)
	}

	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	textWidth := clamp(contentWidth-6, 20, 70)
	labelStyle := s.TitleMuted

	title := v.task.Text
	if v.task.Completed {
		title = s.Done.Render(title)
	}

	due := "None"
	if v.task.DueDate != nil {
		due = v.task.DueDate.Format()
	}

	var tagStrs []string
	for _, tag := range v.task.Tags {
		tagStrs = append(tagStrs, s.Tag.Render("#"+tag))
	}
	tagsLine := "None"
	if len(tagStrs) > 0 {
		tagsLine = strings.Join(tagStrs, "")
	}

	var subtasks string
	if len(v.list.Items()) == 0 {
		subtasks = s.TitleMuted.Render("No subtasks. Press 'n' to add one.")
	} else {
		subtasks = v.list.View()
	}

	rows := []string{
		s.Title.Width(textWidth).Render(checkbox(v.task.Completed) + " " + title),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render("Category ")+s.Category.Render(string(v.task.Category)),
			"   ",
			labelStyle.Render("Priority ")+s.Priority(v.task.Priority),
			"   ",
			labelStyle.Render("Due ")+due,
		),
		labelStyle.Render("Tags ") + tagsLine,
		"",
		labelStyle.Render(fmt.Sprintf("Subtasks (%d/%d)", v.task.CompletedSubtasks(), len(v.task.Subtasks))),
		subtasks,
	}

	if v.creating {
		rows = append(rows, "", s.InputFocused.Width(clamp(contentWidth-6, 20, 50)).Render(v.newText.View()))
		if v.createErr != "" {
			rows = append(rows, s.Error.Render(v.createErr))
		}
		rows = append(rows, s.TitleMuted.Render("↵: add • Esc: done"))
	} else {
		rows = append(rows, v.renderHelp())
	}

	content := lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return styles.CenterView(content, v.width, v.height)
}

func (v *SubtaskView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	k := v.styles.HelpKey.Render
	return v.styles.Help.Render(
		fmt.Sprintf("%s toggle • %s new • %s del • %s task done • %s back • %s quit",
			k("space"), k("n"), k("d"), k("D"), k("esc"), k("q"),
		),
	)
}

func (v *SubtaskView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("space") + "  toggle subtask",
		s.HelpKey.Render("n") + "      new subtask",
		s.HelpKey.Render("d") + "      delete subtask",
		s.HelpKey.Render("D") + "      toggle task done",
		s.HelpKey.Render("esc") + "    back to tasks",
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
