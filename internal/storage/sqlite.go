package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/todo-list/pkg/models"
	_ "modernc.org/sqlite"
)

const taskSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id                INTEGER PRIMARY KEY,
	position          INTEGER NOT NULL,
	title             TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	category          TEXT,
	priority          TEXT NOT NULL,
	due_date          TEXT,
	status            TEXT NOT NULL,
	creation_date     TEXT NOT NULL,
	modification_date TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_position ON tasks(position);
`

// sqliteTaskFile stores tasks in a SQLite database. Rows carry a position
// column so the collection order survives a round trip. Each Save replaces
// the whole table in one transaction.
type sqliteTaskFile struct {
	path string
}

func (f *sqliteTaskFile) Path() string { return f.path }

// openTaskDB opens the database at path and applies the schema.
func openTaskDB(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, taskSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return db, nil
}

func (f *sqliteTaskFile) Load() ([]models.Task, error) {
	if _, err := os.Stat(f.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading %s: %w", f.path, err)
	}

	ctx := context.Background()
	db, err := openTaskDB(ctx, f.path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", f.path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT id, title, description, category, priority, due_date, status, creation_date, modification_date
		FROM tasks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("loading %s: querying tasks: %w", f.path, err)
	}
	defer rows.Close()

	var records []models.TaskRecord
	for rows.Next() {
		var rec models.TaskRecord
		var category, dueDate sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Description, &category, &rec.Priority,
			&dueDate, &rec.Status, &rec.CreationDate, &rec.ModificationDate); err != nil {
			return nil, fmt.Errorf("loading %s: scanning task: %w", f.path, err)
		}
		if category.Valid {
			rec.Category = &category.String
		}
		if dueDate.Valid {
			rec.DueDate = &dueDate.String
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading %s: iterating tasks: %w", f.path, err)
	}
	return decodeRecords(f.path, records)
}

func (f *sqliteTaskFile) Save(tasks []models.Task) error {
	ctx := context.Background()
	db, err := openTaskDB(ctx, f.path)
	if err != nil {
		return fmt.Errorf("saving %s: %w", f.path, err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving %s: beginning transaction: %w", f.path, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("saving %s: clearing tasks: %w", f.path, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (id, position, title, description, category, priority, due_date, status, creation_date, modification_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("saving %s: preparing insert: %w", f.path, err)
	}
	defer stmt.Close()

	for i, rec := range encodeRecords(tasks) {
		if _, err := stmt.ExecContext(ctx, rec.ID, i, rec.Title, rec.Description, nullable(rec.Category),
			rec.Priority, nullable(rec.DueDate), rec.Status, rec.CreationDate, rec.ModificationDate); err != nil {
			return fmt.Errorf("saving %s: inserting task %d: %w", f.path, rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("saving %s: committing: %w", f.path, err)
	}
	return nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
