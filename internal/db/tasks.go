package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tgienger/todo/internal/models"
)

// savedAtKey marks that a collection has been written at least once, so an
// empty saved collection can be told apart from a fresh database.
const savedAtKey = "tasks_saved_at"

// LoadTasks returns all tasks in insertion order with their subtasks and
// tags. present is false when no collection has ever been saved.
func (db *DB) LoadTasks(ctx context.Context) (tasks models.Collection, present bool, err error) {
	savedAt, err := db.GetSetting(ctx, savedAtKey)
	if err != nil {
		return nil, false, err
	}
	if savedAt == "" {
		return nil, false, nil
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, text, completed, category, due_date, priority
		FROM tasks
		ORDER BY position
	`)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	tasks = models.Collection{}
	for rows.Next() {
		var t models.Task
		var due sql.NullString
		if err := rows.Scan(&t.ID, &t.Text, &t.Completed, &t.Category, &due, &t.Priority); err != nil {
			return nil, false, err
		}
		if due.Valid {
			d, err := models.ParseDate(due.String)
			if err != nil {
				return nil, false, fmt.Errorf("task %d: %w", t.ID, err)
			}
			t.DueDate = &d
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	// Load subtasks and tags for each task
	for i := range tasks {
		subs, err := db.getSubtasks(ctx, tasks[i].ID)
		if err != nil {
			return nil, false, err
		}
		tasks[i].Subtasks = subs

		tags, err := db.getTaskTags(ctx, tasks[i].ID)
		if err != nil {
			return nil, false, err
		}
		tasks[i].Tags = tags
	}

	return tasks, true, nil
}

// ReplaceTasks overwrites the stored collection with tasks in one transaction
func (db *DB) ReplaceTasks(ctx context.Context, tasks models.Collection) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// subtasks and task_tags go with their tasks via ON DELETE CASCADE
	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return err
	}

	for pos, t := range tasks {
		var due any
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (id, position, text, completed, category, due_date, priority)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, t.ID, pos, t.Text, t.Completed, string(t.Category), due, string(t.Priority))
		if err != nil {
			return fmt.Errorf("insert task %d: %w", t.ID, err)
		}
		if err := insertSubtasks(ctx, tx, t); err != nil {
			return err
		}
		if err := insertTaskTags(ctx, tx, t); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, savedAtKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	return tx.Commit()
}

// getSubtasks returns a task's subtasks in insertion order
func (db *DB) getSubtasks(ctx context.Context, taskID int64) ([]models.Subtask, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, text, completed
		FROM subtasks
		WHERE task_id = ?
		ORDER BY position
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []models.Subtask{}
	for rows.Next() {
		var s models.Subtask
		if err := rows.Scan(&s.ID, &s.Text, &s.Completed); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func insertSubtasks(ctx context.Context, tx *sql.Tx, t models.Task) error {
	for pos, s := range t.Subtasks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO subtasks (task_id, position, id, text, completed) VALUES (?, ?, ?, ?, ?)
		`, t.ID, pos, s.ID, s.Text, s.Completed)
		if err != nil {
			return fmt.Errorf("insert subtask %d of task %d: %w", s.ID, t.ID, err)
		}
	}
	return nil
}
