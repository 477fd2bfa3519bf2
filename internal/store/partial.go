// internal/store/partial.go
//
// Dynamic partial-update executor.
//
// Context
// -------
// Admin PATCH endpoints persist only the columns a client actually sent.
// The diff extractor (internal/patch) produces a column→value map; this
// helper turns that map into one parameterised
//
//	UPDATE <table> SET col1 = ?, col2 = ? WHERE id = ?
//
// statement.  Columns are emitted in sorted order so the generated SQL is
// deterministic and unit-testable with sqlmock.
//
// Safety
// ------
// Column names are interpolated into the statement text, which is only
// acceptable because field maps are built exclusively from compile-time
// struct tags (see patch.Fields).  checkColumn rejects anything that is not
// a plain lower-case identifier as a second line of defence.
//
// Notes
// -----
// • An empty map is a no-op by contract: no SQL is issued, (false, nil) is
//   returned.  Issuing `UPDATE t SET WHERE id = ?` would be invalid SQL.
// • Oxford commas, two spaces after periods.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/atelier-cms/atelier/internal/metrics"
)

// ErrNoRowsAffected reports that the UPDATE executed cleanly but matched no
// row: the entity vanished between the caller's existence check and the
// write.  Callers surface it distinctly from a plain execution error.
var ErrNoRowsAffected = errors.New("store: update affected no rows")

// Execer is the slice of *sql.DB, *sql.Tx, *sqlx.DB, and *sqlx.Tx that the
// executor needs, so the same call works inside or outside a transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// PartialUpdate writes exactly the columns in fields to the row of table
// identified by id.  It returns (false, nil) when fields is empty, and
// (true, nil) when exactly one row was updated.
func PartialUpdate(ctx context.Context, ex Execer, table string, id any, fields map[string]any) (bool, error) {
	if len(fields) == 0 {
		return false, nil
	}

	cols := make([]string, 0, len(fields))
	for col := range fields {
		if err := checkColumn(col); err != nil {
			return false, err
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(table)
	b.WriteString(" SET ")

	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(col)
		b.WriteString(" = ?")
		args = append(args, fields[col])
	}
	b.WriteString(" WHERE id = ?")
	args = append(args, id)

	res, err := ex.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return false, fmt.Errorf("store: partial update %s: %w", table, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: partial update %s: %w", table, err)
	}
	if n == 0 {
		return false, ErrNoRowsAffected
	}

	metrics.PartialUpdatesTotal.WithLabelValues(table).Inc()
	return true, nil
}

// checkColumn accepts lower-case snake_case identifiers only.
func checkColumn(col string) error {
	if col == "" {
		return errors.New("store: empty column name")
	}
	for _, r := range col {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
		default:
			return fmt.Errorf("store: invalid column name %q", col)
		}
	}
	return nil
}
