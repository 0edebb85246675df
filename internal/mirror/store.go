package mirror

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mirrorcat/gameversions/internal/catalog"
)

// Store owns the two mirrored catalog tables in a local SQLite file.
type Store struct {
	db   *sqlx.DB
	path string
}

// Open constructs a Store backed by the SQLite database at the provided
// path, creating the file if absent.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve sqlite path: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", abs)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// The write handle is serialized by the refresh coordinator already.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &Store{db: db, path: abs}, nil
}

// Close releases the underlying database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS versions (
                id INT PRIMARY KEY,
                gameVersionTypeID INT,
                name TEXT,
                slug TEXT
        );`,
	`CREATE TABLE IF NOT EXISTS versionTypes (
                id INT PRIMARY KEY,
                name TEXT,
                slug TEXT
        );`,
}

// EnsureSchema creates the mirror tables if absent. Idempotent; called
// once at startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("mirror store not initialised")
	}
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for i, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("execute schema statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// ReplaceAll swaps in a complete new snapshot of both tables inside one
// transaction. Any failure rolls the whole transaction back, leaving the
// previous snapshot intact.
func (s *Store) ReplaceAll(ctx context.Context, versions []catalog.Version, types []catalog.VersionType) error {
	if s == nil || s.db == nil {
		return errors.New("mirror store not initialised")
	}
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM versions`); err != nil {
			return fmt.Errorf("clear versions: %w", err)
		}
		for _, entry := range versions {
			if _, err := tx.ExecContext(ctx, `INSERT INTO versions VALUES (?, ?, ?, ?)`,
				entry.ID, entry.GameVersionTypeID, entry.Name, entry.Slug); err != nil {
				return fmt.Errorf("insert version %d: %w", entry.ID, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM versionTypes`); err != nil {
			return fmt.Errorf("clear version types: %w", err)
		}
		for _, entry := range types {
			if _, err := tx.ExecContext(ctx, `INSERT INTO versionTypes VALUES (?, ?, ?)`,
				entry.ID, entry.Name, entry.Slug); err != nil {
				return fmt.Errorf("insert version type %d: %w", entry.ID, err)
			}
		}
		return nil
	})
}

// Query executes caller-supplied SQL over a fresh read-only connection and
// returns the decoded rows. Prepare failures are caller-class syntax
// errors, iteration failures are caller-class execution errors; anything
// before prepare is an internal store failure.
func (s *Store) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("mirror store not initialised")
	}
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", s.path)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open read-only connection: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("open read-only connection: %w", err)
	}

	stmt, err := db.PreparexContext(ctx, query)
	if err != nil {
		return nil, &QueryError{Kind: QuerySyntax, Err: err}
	}
	defer stmt.Close()

	rows, err := stmt.QueryxContext(ctx, args...)
	if err != nil {
		return nil, &QueryError{Kind: QueryExecution, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{Kind: QueryExecution, Err: err}
	}

	out := make([]Row, 0)
	for rows.Next() {
		cells, err := rows.SliceScan()
		if err != nil {
			return nil, &QueryError{Kind: QueryExecution, Err: err}
		}
		row := newRow(len(cols))
		for i, name := range cols {
			row.set(name, decodeValue(cells[i]))
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Kind: QueryExecution, Err: err}
	}
	return out, nil
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
