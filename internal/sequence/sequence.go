// Package sequence allocates globally unique, strictly increasing application
// ids from a named counter row. The increment and read happen in one
// statement so concurrent callers can never observe the same value.
package sequence

import (
	"context"
	"database/sql"
	"fmt"

	"seva/pkg/platform/tx"
)

// CounterApplicationID is the sole counter this system allocates from.
const CounterApplicationID = "application_id"

// Allocator hands out the next value of a named counter.
type Allocator interface {
	Next(ctx context.Context) (int64, error)
}

// PostgresAllocator increments the id_sequence row. When the context carries
// a transaction it joins it, so a rolled-back create never surfaces a
// half-consumed id alongside partial state.
type PostgresAllocator struct {
	db   *sql.DB
	name string
}

// NewPostgres constructs an allocator for the application id counter.
func NewPostgres(db *sql.DB) *PostgresAllocator {
	return &PostgresAllocator{db: db, name: CounterApplicationID}
}

func (a *PostgresAllocator) Next(ctx context.Context) (int64, error) {
	// Single UPDATE..RETURNING: the row lock serializes concurrent callers
	// and no caller can read another caller's post-increment value.
	query := `
		UPDATE id_sequence
		SET value = value + 1
		WHERE name = $1
		RETURNING value
	`
	var value int64
	if err := tx.Resolve(ctx, a.db).QueryRowContext(ctx, query, a.name).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("sequence counter %q is not seeded", a.name)
		}
		return 0, fmt.Errorf("next %s: %w", a.name, err)
	}
	return value, nil
}
