package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"seva/pkg/platform/tx"
)

// PostgresSink persists audit events in the audit_events table. It joins a
// caller transaction when one is bound to the context, so an audit row never
// outlives a rolled-back mutation.
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink constructs a PostgreSQL-backed audit sink.
func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Append(ctx context.Context, event Event) error {
	var detail []byte
	if event.Detail != nil {
		var err error
		detail, err = json.Marshal(event.Detail)
		if err != nil {
			return fmt.Errorf("marshal audit detail: %w", err)
		}
	}
	query := `
		INSERT INTO audit_events (id, action, subject, actor, request_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.Resolve(ctx, s.db).ExecContext(ctx, query,
		event.ID, event.Action, event.Subject,
		nullString(event.Actor), nullString(event.RequestID),
		detail, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
