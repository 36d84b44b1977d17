package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/tgienger/todo/internal/models"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrTaskNotFound    = fmt.Errorf("task %w", ErrNotFound)
	ErrSubtaskNotFound = fmt.Errorf("subtask %w", ErrNotFound)
)

// NewTask holds the caller-supplied fields of a task being created.
// Tags must already be trimmed with blanks removed.
type NewTask struct {
	Text     string
	Category models.Category
	DueDate  *models.Date
	Priority models.Priority
	Tags     []string
}

// The functions below are the collection transitions. None of them modifies
// its input: the result is a new collection in which only the affected task is
// replaced. On a not-found error the input collection is returned unchanged.

// Create appends a new task with no subtasks
func Create(c models.Collection, id int64, in NewTask) models.Collection {
	t := models.Task{
		ID:       id,
		Text:     in.Text,
		Category: in.Category,
		Priority: in.Priority,
		Subtasks: []models.Subtask{},
		Tags:     slices.Clone(in.Tags),
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate.Ptr()
	}
	out := make(models.Collection, 0, len(c)+1)
	out = append(out, c...)
	return append(out, t)
}

// Delete removes a task together with its subtasks
func Delete(c models.Collection, id int64) (models.Collection, error) {
	_, i, ok := c.Find(id)
	if !ok {
		return c, fmt.Errorf("delete %d: %w", id, ErrTaskNotFound)
	}
	out := make(models.Collection, 0, len(c)-1)
	out = append(out, c[:i]...)
	return append(out, c[i+1:]...), nil
}

// ToggleCompleted flips a task's completed flag. Subtasks are left alone.
func ToggleCompleted(c models.Collection, id int64) (models.Collection, error) {
	return updateTask(c, id, func(t models.Task) (models.Task, error) {
		t.Completed = !t.Completed
		return t, nil
	})
}

// AddSubtask appends an incomplete subtask to a task
func AddSubtask(c models.Collection, taskID, subID int64, text string) (models.Collection, error) {
	return updateTask(c, taskID, func(t models.Task) (models.Task, error) {
		subs := make([]models.Subtask, 0, len(t.Subtasks)+1)
		subs = append(subs, t.Subtasks...)
		t.Subtasks = append(subs, models.Subtask{ID: subID, Text: text})
		return t, nil
	})
}

// ToggleSubtaskCompleted flips one subtask's completed flag
func ToggleSubtaskCompleted(c models.Collection, taskID, subID int64) (models.Collection, error) {
	return updateTask(c, taskID, func(t models.Task) (models.Task, error) {
		i := slices.IndexFunc(t.Subtasks, func(s models.Subtask) bool { return s.ID == subID })
		if i < 0 {
			return t, fmt.Errorf("toggle %d/%d: %w", taskID, subID, ErrSubtaskNotFound)
		}
		subs := slices.Clone(t.Subtasks)
		subs[i].Completed = !subs[i].Completed
		t.Subtasks = subs
		return t, nil
	})
}

// DeleteSubtask removes one subtask from a task
func DeleteSubtask(c models.Collection, taskID, subID int64) (models.Collection, error) {
	return updateTask(c, taskID, func(t models.Task) (models.Task, error) {
		i := slices.IndexFunc(t.Subtasks, func(s models.Subtask) bool { return s.ID == subID })
		if i < 0 {
			return t, fmt.Errorf("delete %d/%d: %w", taskID, subID, ErrSubtaskNotFound)
		}
		subs := make([]models.Subtask, 0, len(t.Subtasks)-1)
		subs = append(subs, t.Subtasks[:i]...)
		t.Subtasks = append(subs, t.Subtasks[i+1:]...)
		return t, nil
	})
}

// updateTask replaces the task with the given id by fn's result
func updateTask(c models.Collection, id int64, fn func(models.Task) (models.Task, error)) (models.Collection, error) {
	t, i, ok := c.Find(id)
	if !ok {
		return c, fmt.Errorf("task %d: %w", id, ErrTaskNotFound)
	}
	updated, err := fn(t)
	if err != nil {
		return c, err
	}
	out := slices.Clone(c)
	out[i] = updated
	return out, nil
}
