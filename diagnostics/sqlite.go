package diagnostics

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fatih/structs"
	// Registers the pure Go "sqlite" driver.
	_ "github.com/glebarez/go-sqlite"
	"github.com/rs/xid"
)

// DefaultDBName returns a fresh database file name for a recording.
func DefaultDBName() string {
	return "propjson_diagnostics_" + xid.New().String() + ".sqlite3"
}

type sqliteBackend struct {
	db     *sql.DB
	ownsDB bool
}

// NewSQLiteRecorder creates a Recorder writing into the SQLite file at path.
// An empty path picks DefaultDBName. Existing files are appended to.
func NewSQLiteRecorder(path string, opts ...RecorderOption) (*Recorder, error) {
	if path == "" {
		path = DefaultDBName()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open diagnostics database %s: %w", path, err)
	}

	r, err := newRecorder(&sqliteBackend{db: db, ownsDB: true}, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}

	return r, nil
}

// NewSQLiteRecorderWithDB creates a Recorder writing into an open database.
// Closing the Recorder leaves db open.
func NewSQLiteRecorderWithDB(
	db *sql.DB,
	opts ...RecorderOption,
) (*Recorder, error) {
	return newRecorder(&sqliteBackend{db: db}, opts...)
}

func (b *sqliteBackend) createTable(ctx context.Context) error {
	columns := structs.Names(Entry{})
	query := `CREATE TABLE IF NOT EXISTS ` + TableName +
		` (` + "\n\t" + strings.Join(columns, ", \n\t") + "\n" + `);`

	_, err := b.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("create table %s: %w", TableName, err)
	}

	return nil
}

func (b *sqliteBackend) insert(ctx context.Context, entries []Entry) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	placeholders := make([]string, len(structs.Names(Entry{})))
	for i := range placeholders {
		placeholders[i] = "?"
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+TableName+
		" VALUES ("+strings.Join(placeholders, ", ")+")")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, structs.Values(e)...); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (b *sqliteBackend) close() error {
	if !b.ownsDB {
		return nil
	}

	return b.db.Close()
}
