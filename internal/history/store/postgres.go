// Package store persists the search-history ledger.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"seva/internal/history/models"
	"seva/pkg/platform/tx"
)

// Filter narrows history listings. Zero values mean "no filter".
type Filter struct {
	UserID  string
	Aadhaar string
}

// listLimit caps every history read.
const listLimit = 50

// PostgresStore persists search-history entries.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed history store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const entryColumns = `
	id, user_id, aadhar_number, ip_address, user_agent, service_name,
	pan_number, status, is_pan_visible, search_date`

func scanEntry(row interface{ Scan(dest ...any) error }) (*models.Entry, error) {
	var (
		e       models.Entry
		ip      sql.NullString
		agent   sql.NullString
		service sql.NullString
		pan     sql.NullString
	)
	err := row.Scan(&e.ID, &e.UserID, &e.Aadhaar, &ip, &agent, &service,
		&pan, &e.Status, &e.Visible, &e.SearchedAt)
	if err != nil {
		return nil, err
	}
	e.IPAddress = ip.String
	e.UserAgent = agent.String
	e.Service = service.String
	if pan.Valid {
		e.PANNumber = &pan.String
	}
	return &e, nil
}

// Append inserts a new ledger entry and fills its id and timestamp.
func (s *PostgresStore) Append(ctx context.Context, e *models.Entry) error {
	query := `
		INSERT INTO pan_search_history
			(user_id, aadhar_number, ip_address, user_agent, service_name, status, is_pan_visible)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, search_date
	`
	err := tx.Resolve(ctx, s.db).QueryRowContext(ctx, query,
		e.UserID, e.Aadhaar, nullString(e.IPAddress), nullString(e.UserAgent),
		nullString(e.Service), e.Status, e.Visible,
	).Scan(&e.ID, &e.SearchedAt)
	if err != nil {
		return fmt.Errorf("append history entry: %w", err)
	}
	return nil
}

// List returns entries matching the filter, newest first, capped at 50.
func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM pan_search_history`
	var (
		conds string
		args  []any
	)
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = fmt.Sprintf(" WHERE user_id = $%d", len(args))
	}
	if filter.Aadhaar != "" {
		args = append(args, filter.Aadhaar)
		if conds == "" {
			conds = fmt.Sprintf(" WHERE aadhar_number = $%d", len(args))
		} else {
			conds += fmt.Sprintf(" AND aadhar_number = $%d", len(args))
		}
	}
	query += conds + fmt.Sprintf(" ORDER BY search_date DESC LIMIT %d", listLimit)

	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []*models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

// Stamp caches the resolved PAN number, status and visibility on one entry.
func (s *PostgresStore) Stamp(ctx context.Context, id int64, pan string, status string, visible bool) error {
	query := `
		UPDATE pan_search_history
		SET pan_number = $1, status = $2, is_pan_visible = $3
		WHERE id = $4
	`
	if _, err := tx.Resolve(ctx, s.db).ExecContext(ctx, query, pan, status, visible, id); err != nil {
		return fmt.Errorf("stamp history entry: %w", err)
	}
	return nil
}

// MarkCompletedByAadhaar force-completes every entry for an Aadhaar number
// when its application is assigned a PAN number. Runs inside the caller's
// transaction so the record update and the ledger sync commit together.
func (s *PostgresStore) MarkCompletedByAadhaar(ctx context.Context, aadhaar, pan string) error {
	query := `
		UPDATE pan_search_history
		SET pan_number = $1, status = $2, is_pan_visible = TRUE
		WHERE aadhar_number = $3
	`
	if _, err := tx.Resolve(ctx, s.db).ExecContext(ctx, query, pan, "completed", aadhaar); err != nil {
		return fmt.Errorf("mark history completed: %w", err)
	}
	return nil
}

// RevealMatched stamps and reveals every entry whose most recent matching
// application is active or completed. Returns the number of affected rows.
func (s *PostgresStore) RevealMatched(ctx context.Context) (int64, error) {
	// DISTINCT ON picks the most recently created application per Aadhaar,
	// so re-submissions never resurrect a stale status.
	query := `
		UPDATE pan_search_history h
		SET is_pan_visible = TRUE,
		    pan_number = 'PAN' || a.application_id,
		    status = a.status
		FROM (
			SELECT DISTINCT ON (aadhar) aadhar, application_id, status
			FROM applications
			WHERE aadhar IS NOT NULL
			ORDER BY aadhar, created_at DESC
		) a
		WHERE h.aadhar_number = a.aadhar
		  AND a.status IN ('completed', 'active')
	`
	res, err := tx.Resolve(ctx, s.db).ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("reveal history entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reveal history entries: %w", err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
