package view

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tgienger/todo/internal/models"
)

// epoch stands in for a missing due date when sorting by date, so tasks
// without a date come before every dated task from 1970 on.
var epoch = models.NewDate(1970, time.January, 1)

// Stats are counts over the whole collection, independent of any Spec
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

// Result is the ordered tasks to display plus collection stats
type Result struct {
	Tasks []models.Task
	Stats Stats
}

// Compute filters and sorts c according to s using root collation for
// alphabetical order. c is not modified.
func Compute(c models.Collection, s Spec) Result {
	return ComputeIn(language.Und, c, s)
}

// ComputeIn is Compute with alphabetical order following the collation rules
// of lang.
func ComputeIn(lang language.Tag, c models.Collection, s Spec) Result {
	return Result{
		Tasks: sortTasks(lang, filterTasks(c, s), s.Sort),
		Stats: StatsOf(c),
	}
}

// StatsOf counts tasks in c
func StatsOf(c models.Collection) Stats {
	st := Stats{Total: len(c)}
	for _, t := range c {
		if t.Completed {
			st.Completed++
		}
	}
	st.Active = st.Total - st.Completed
	return st
}

// Matches reports whether t passes every filter in s
func Matches(t models.Task, s Spec) bool {
	return s.Status.matches(t) && s.Category.matches(t) && newMatcher(s.Search).match(t)
}

func filterTasks(c models.Collection, s Spec) []models.Task {
	m := newMatcher(s.Search)
	out := make([]models.Task, 0, len(c))
	for _, t := range c {
		if s.Status.matches(t) && s.Category.matches(t) && m.match(t) {
			out = append(out, t)
		}
	}
	return out
}

// matcher does case-insensitive substring search over text and tags
type matcher struct {
	fold cases.Caser
	term string
}

func newMatcher(term string) matcher {
	m := matcher{fold: cases.Fold()}
	m.term = m.fold.String(term)
	return m
}

func (m matcher) match(t models.Task) bool {
	if m.term == "" {
		return true
	}
	if strings.Contains(m.fold.String(t.Text), m.term) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(m.fold.String(tag), m.term) {
			return true
		}
	}
	return false
}

func sortTasks(lang language.Tag, tasks []models.Task, key SortKey) []models.Task {
	switch key {
	case SortPriority:
		slices.SortStableFunc(tasks, func(a, b models.Task) int {
			return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
		})
	case SortAlphabetical:
		col := collate.New(lang)
		slices.SortStableFunc(tasks, func(a, b models.Task) int {
			return col.CompareString(a.Text, b.Text)
		})
	default:
		slices.SortStableFunc(tasks, func(a, b models.Task) int {
			return cmp.Compare(dueKey(a), dueKey(b))
		})
	}
	return tasks
}

// dueKey is the number of days from the epoch to the due date
func dueKey(t models.Task) int {
	if t.DueDate == nil {
		return 0
	}
	return t.DueDate.DaysSince(epoch.Date)
}
