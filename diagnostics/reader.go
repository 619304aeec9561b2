package diagnostics

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fatih/structs"
)

// QueryParams narrows a query.
type QueryParams struct {
	// Session restricts results to one recording session when set.
	Session string

	// Kind restricts results to one diagnostic kind when set.
	Kind string

	// Limit is the maximum number of entries returned, 0 for no limit.
	Limit int

	// Offset is the number of entries skipped.
	Offset int
}

// Reader reads recorded diagnostics back from SQLite.
type Reader struct {
	db     *sql.DB
	ownsDB bool
}

// NewReader opens the SQLite file at path.
func NewReader(path string) (*Reader, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open diagnostics database %s: %w", path, err)
	}

	return &Reader{db: db, ownsDB: true}, nil
}

// NewReaderWithDB reads from an open database.
func NewReaderWithDB(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// Sessions lists the recorded session ids.
func (r *Reader) Sessions(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT Session FROM "+TableName+" ORDER BY Session")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}

		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// Query returns the matching entries in recording order and the total number
// of matches ignoring Limit and Offset.
func (r *Reader) Query(
	ctx context.Context,
	params QueryParams,
) ([]Entry, int, error) {
	var (
		conds []string
		args  []any
	)

	if params.Session != "" {
		conds = append(conds, "Session = ?")
		args = append(args, params.Session)
	}

	if params.Kind != "" {
		conds = append(conds, "Kind = ?")
		args = append(args, params.Kind)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int

	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+TableName+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT " + strings.Join(structs.Names(Entry{}), ", ") +
		" FROM " + TableName + where + " ORDER BY Session, Seq"

	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", params.Limit, params.Offset)
	} else if params.Offset > 0 {
		query += fmt.Sprintf(" LIMIT -1 OFFSET %d", params.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry

		err := rows.Scan(&e.Session, &e.Seq, &e.Time,
			&e.Kind, &e.Type, &e.Property, &e.Message)
		if err != nil {
			return nil, 0, err
		}

		entries = append(entries, e)
	}

	return entries, total, rows.Err()
}

// Close releases the database.
func (r *Reader) Close() error {
	if !r.ownsDB {
		return nil
	}

	return r.db.Close()
}
