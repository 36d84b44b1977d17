package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Category is one of the fixed task categories
type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryShopping Category = "Shopping"
	CategoryHealth   Category = "Health"
)

var categories = []Category{CategoryWork, CategoryPersonal, CategoryShopping, CategoryHealth}

// Categories returns every category in display order
func Categories() []Category {
	return slices.Clone(categories)
}

// Valid reports whether c is one of the fixed categories
func (c Category) Valid() bool {
	return slices.Contains(categories, c)
}

// ParseCategory resolves a category name case-insensitively
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Priority is the importance of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Priorities returns every priority, lowest first
func Priorities() []Priority {
	return slices.Clone(priorities)
}

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	return slices.Contains(priorities, p)
}

// Rank orders priorities for display: high is 0, medium 1, low 2
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// ParsePriority resolves a priority name case-insensitively
func ParsePriority(s string) (Priority, error) {
	s = strings.TrimSpace(s)
	for _, p := range priorities {
		if strings.EqualFold(string(p), s) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// Subtask is a checklist item owned by exactly one task
type Subtask struct {
	ID        int64  `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// Task represents a single to-do item
type Task struct {
	ID        int64     `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Completed bool      `json:"completed" yaml:"completed"`
	Category  Category  `json:"category" yaml:"category"`
	DueDate   *Date     `json:"dueDate" yaml:"dueDate"` // nil when the task has no due date
	Priority  Priority  `json:"priority" yaml:"priority"`
	Subtasks  []Subtask `json:"subtasks" yaml:"subtasks"`
	Tags      []string  `json:"tags" yaml:"tags"`
}

// Subtask returns the subtask with the given id
func (t Task) Subtask(id int64) (Subtask, bool) {
	for _, s := range t.Subtasks {
		if s.ID == id {
			return s, true
		}
	}
	return Subtask{}, false
}

// CompletedSubtasks counts finished subtasks
func (t Task) CompletedSubtasks() int {
	n := 0
	for _, s := range t.Subtasks {
		if s.Completed {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the task
func (t Task) Clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	c.Subtasks = slices.Clone(t.Subtasks)
	c.Tags = slices.Clone(t.Tags)
	return c
}

// Equal reports structural equality. A nil and an empty slice compare equal.
func (t Task) Equal(o Task) bool {
	if t.ID != o.ID || t.Text != o.Text || t.Completed != o.Completed ||
		t.Category != o.Category || t.Priority != o.Priority {
		return false
	}
	if (t.DueDate == nil) != (o.DueDate == nil) {
		return false
	}
	if t.DueDate != nil && *t.DueDate != *o.DueDate {
		return false
	}
	return slices.Equal(t.Subtasks, o.Subtasks) && slices.Equal(t.Tags, o.Tags)
}

// Collection is the ordered task list in insertion order.
// Collections handed out by the engine are snapshots and must not be modified.
type Collection []Task

// Find returns the task with the given id and its position
func (c Collection) Find(id int64) (Task, int, bool) {
	for i, t := range c {
		if t.ID == id {
			return t, i, true
		}
	}
	return Task{}, -1, false
}

// Clone returns a deep copy of the collection
func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	out := make(Collection, len(c))
	for i, t := range c {
		out[i] = t.Clone()
	}
	return out
}

// Equal reports structural equality, element by element
func (c Collection) Equal(o Collection) bool {
	return slices.EqualFunc(c, o, Task.Equal)
}

// MaxID returns the largest task or subtask id in the collection, or 0
func (c Collection) MaxID() int64 {
	var maxID int64
	for _, t := range c {
		maxID = max(maxID, t.ID)
		for _, s := range t.Subtasks {
			maxID = max(maxID, s.ID)
		}
	}
	return maxID
}

// ErrDuplicateID is reported by Validate when an id is used twice
var ErrDuplicateID = errors.New("duplicate id")

// Validate checks that task ids are unique and that every subtask id is
// unique across the whole collection. Subtask ids may not reuse a task id
// either, since both come from one id source.
func (c Collection) Validate() error {
	tasks := make(map[int64]bool, len(c))
	for _, t := range c {
		if tasks[t.ID] {
			return fmt.Errorf("task %d: %w", t.ID, ErrDuplicateID)
		}
		tasks[t.ID] = true
	}
	subs := map[int64]bool{}
	for _, t := range c {
		for _, s := range t.Subtasks {
			if subs[s.ID] || tasks[s.ID] {
				return fmt.Errorf("subtask %d of task %d: %w", s.ID, t.ID, ErrDuplicateID)
			}
			subs[s.ID] = true
		}
	}
	return nil
}
