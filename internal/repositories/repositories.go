// package repositories provides persistence layer implementations for the collection.
//
// Each repository implements models.Repository[T] for a specific entity type,
// handling CRUD operations and sequence generation.
package repositories

import (
	"database/sql"
	"fmt"
)

// querier is satisfied by both [sql.DB] and [sql.Tx] so repositories can run inside a caller's transaction.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers provide stable listing order for entities independent of their ids.
// They are NOT exposed over the wire but used internally for sorting.
func NextSequence(q querier, table string) (int, error) {
	sequenceTable := table + "_sequence"

	var sequence int
	err := q.QueryRow(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1 RETURNING value", sequenceTable)).Scan(&sequence)
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	return sequence, nil
}
