// Package state keeps portsql's local state in a SQLite database: the
// domain constants table behind [:get_constant] and the shell's statement
// history. The schema is managed with goose migrations.
package state

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/portsql/pkg/adapter"
	"github.com/leapstack-labs/portsql/pkg/constants"
	"github.com/leapstack-labs/portsql/pkg/db"

	_ "github.com/leapstack-labs/portsql/pkg/adapters/sqlite" // state database
)

// DefaultPath is the state database location relative to the project root.
const DefaultPath = ".portsql/state.db"

// timeLayout is the text form of [:now] on SQLite.
const timeLayout = "2006-01-02 15:04:05"

// Store is an open state database.
type Store struct {
	db     *db.Database
	path   string
	logger *slog.Logger
}

// Open opens the state database at path. Use ":memory:" for a throwaway
// store. The schema is not migrated; call Migrate.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	d, err := db.Open(ctx, adapter.Config{Type: "sqlite", Path: path}, db.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	return &Store{db: d, path: path, logger: logger}, nil
}

// Close closes the state database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path.
func (s *Store) Path() string { return s.path }

// --- Constants ---

// ImportConstants stores every constant of t, replacing existing codes.
func (s *Store) ImportConstants(ctx context.Context, t *constants.Table) (int, error) {
	sets := make([]map[string]any, 0, t.Len())
	for _, name := range t.Names() {
		c, err := t.Code(name)
		if err != nil {
			return 0, err
		}
		sets = append(sets, map[string]any{
			"name":        c.Name,
			"code":        c.Value,
			"description": c.Description,
		})
	}
	_, err := s.db.Cursor().ExecMany(ctx, `
		INSERT INTO portsql_constants (name, code, description, updated_at)
		VALUES (:name, :code, :description, [:now])
		ON CONFLICT (name) DO UPDATE SET
			code = excluded.code,
			description = excluded.description,
			updated_at = excluded.updated_at`, sets)
	if err != nil {
		return 0, fmt.Errorf("failed to import constants: %w", err)
	}
	s.logger.Debug("constants imported", slog.Int("count", len(sets)))
	return len(sets), nil
}

// Constants returns the stored constants as a table.
func (s *Store) Constants(ctx context.Context) (*constants.Table, error) {
	rows, err := s.db.Query(ctx, "SELECT name, code, description FROM portsql_constants ORDER BY name", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read constants: %w", err)
	}
	codes := make([]constants.Code, 0, len(rows))
	for _, r := range rows {
		code, err := constants.ToInt(r.Values[1])
		if err != nil {
			return nil, fmt.Errorf("constant %v: %w", r.Values[0], err)
		}
		codes = append(codes, constants.Code{
			Name:        asString(r.Values[0]),
			Value:       code,
			Description: asString(r.Values[2]),
		})
	}
	return constants.New(codes...), nil
}

// DeleteConstant removes a constant. It reports whether it existed.
func (s *Store) DeleteConstant(ctx context.Context, name string) (bool, error) {
	res, err := s.db.Execute(ctx, "DELETE FROM portsql_constants WHERE name = :name", map[string]any{"name": name})
	if err != nil {
		return false, fmt.Errorf("failed to delete constant: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// --- History ---

// Entry is one statement run from the shell.
type Entry struct {
	ID         string
	Dialect    string
	Statement  string
	Translated string
	Error      string
	ExecutedAt time.Time
}

// RecordHistory appends e to the history. ID is assigned when empty.
func (s *Store) RecordHistory(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.Execute(ctx, `
		INSERT INTO portsql_history (id, dialect, statement, translated, error, executed_at)
		VALUES (:id, :dialect, :statement, :translated, :error, [:now])`,
		map[string]any{
			"id":         e.ID,
			"dialect":    e.Dialect,
			"statement":  e.Statement,
			"translated": e.Translated,
			"error":      e.Error,
		})
	if err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}
	return nil
}

// History returns up to limit entries, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, dialect, statement, translated, error, executed_at
		FROM portsql_history
		ORDER BY executed_at DESC, rowid DESC
		LIMIT :limit`, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		e := Entry{
			ID:         asString(r.Values[0]),
			Dialect:    asString(r.Values[1]),
			Statement:  asString(r.Values[2]),
			Translated: asString(r.Values[3]),
			Error:      asString(r.Values[4]),
		}
		if t, err := time.Parse(timeLayout, asString(r.Values[5])); err == nil {
			e.ExecutedAt = t
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}
