package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tgienger/todo/internal/models"
)

// getTaskTags returns all tags for a task in the order they were given
func (db *DB) getTaskTags(ctx context.Context, taskID int64) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT tag FROM task_tags
		WHERE task_id = ?
		ORDER BY position
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func insertTaskTags(ctx context.Context, tx *sql.Tx, t models.Task) error {
	for pos, tag := range t.Tags {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO task_tags (task_id, position, tag) VALUES (?, ?, ?)
		`, t.ID, pos, tag)
		if err != nil {
			return fmt.Errorf("insert tag %q of task %d: %w", tag, t.ID, err)
		}
	}
	return nil
}
