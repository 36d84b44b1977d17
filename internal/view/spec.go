package view

import (
	"fmt"
	"strings"

	"github.com/tgienger/todo/internal/models"
)

// StatusFilter selects tasks by completion
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusActive    StatusFilter = "active"
	StatusCompleted StatusFilter = "completed"
)

var statuses = []StatusFilter{StatusAll, StatusActive, StatusCompleted}

// ParseStatus parses a status filter name
func ParseStatus(s string) (StatusFilter, error) {
	for _, st := range statuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status filter %q (want all, active or completed)", s)
}

// Next cycles to the following status filter
func (f StatusFilter) Next() StatusFilter {
	return cycle(statuses, f)
}

func (f StatusFilter) matches(t models.Task) bool {
	switch f {
	case StatusActive:
		return !t.Completed
	case StatusCompleted:
		return t.Completed
	default:
		return true
	}
}

// CategoryFilter is either CategoryAll or one of the task categories
type CategoryFilter string

// CategoryAll disables category filtering
const CategoryAll CategoryFilter = "all"

// OnlyCategory filters to a single category
func OnlyCategory(c models.Category) CategoryFilter {
	return CategoryFilter(c)
}

// ParseCategoryFilter accepts "all" or a category name
func ParseCategoryFilter(s string) (CategoryFilter, error) {
	if strings.EqualFold(strings.TrimSpace(s), string(CategoryAll)) {
		return CategoryAll, nil
	}
	c, err := models.ParseCategory(s)
	if err != nil {
		return "", err
	}
	return OnlyCategory(c), nil
}

// Next cycles through all, then each category in order
func (f CategoryFilter) Next() CategoryFilter {
	opts := []CategoryFilter{CategoryAll}
	for _, c := range models.Categories() {
		opts = append(opts, OnlyCategory(c))
	}
	return cycle(opts, f)
}

// Label is the display name of the filter
func (f CategoryFilter) Label() string {
	if f == CategoryAll || f == "" {
		return "All Categories"
	}
	return string(f)
}

func (f CategoryFilter) matches(t models.Task) bool {
	return f == CategoryAll || f == "" || models.Category(f) == t.Category
}

// SortKey picks the display order
type SortKey string

const (
	SortDueDate      SortKey = "dueDate"
	SortPriority     SortKey = "priority"
	SortAlphabetical SortKey = "alphabetical"
)

var sortKeys = []SortKey{SortDueDate, SortPriority, SortAlphabetical}

// ParseSortKey parses a sort key. "due" is accepted for dueDate.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "due") {
		return SortDueDate, nil
	}
	for _, k := range sortKeys {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q (want dueDate, priority or alphabetical)", s)
}

// Next cycles to the following sort key
func (k SortKey) Next() SortKey {
	return cycle(sortKeys, k)
}

// Label is the display name of the sort key
func (k SortKey) Label() string {
	switch k {
	case SortPriority:
		return "Priority"
	case SortAlphabetical:
		return "Alphabetical"
	default:
		return "Due Date"
	}
}

// Spec is everything that controls which tasks are shown and in what order
type Spec struct {
	Status   StatusFilter   `json:"status"`
	Category CategoryFilter `json:"category"`
	Search   string         `json:"search"`
	Sort     SortKey        `json:"sort"`
}

// DefaultSpec shows every task ordered by due date
func DefaultSpec() Spec {
	return Spec{Status: StatusAll, Category: CategoryAll, Sort: SortDueDate}
}

func cycle[T comparable](opts []T, cur T) T {
	for i, o := range opts {
		if o == cur {
			return opts[(i+1)%len(opts)]
		}
	}
	return opts[0]
}
