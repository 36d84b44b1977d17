package persist

import (
	"context"

	"github.com/tgienger/todo/internal/db"
	"github.com/tgienger/todo/internal/models"
)

// SQLiteAdapter stores the collection in the app database
type SQLiteAdapter struct {
	db *db.DB
}

// NewSQLiteAdapter wraps an open database
func NewSQLiteAdapter(database *db.DB) *SQLiteAdapter {
	return &SQLiteAdapter{db: database}
}

func (s *SQLiteAdapter) Load(ctx context.Context) (models.Collection, bool, error) {
	return s.db.LoadTasks(ctx)
}

func (s *SQLiteAdapter) Save(ctx context.Context, c models.Collection) error {
	return s.db.ReplaceTasks(ctx, c)
}
