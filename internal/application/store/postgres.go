package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"seva/internal/application/models"
	"seva/pkg/platform/sentinel"
	"seva/pkg/platform/tx"
)

// uniqueViolation is the postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// PostgresStore persists applications and their LL test results.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed application store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const appColumns = `
	a.id, a.application_id, a.type, a.name, a.mobile, a.aadhar, a.pan_number,
	a.app_no, a.dob, a.password, a.wallet_bal, a.status, a.text_feed,
	a.document_status, a.created_at`

const testColumns = `
	r.test_score, r.test_status, r.examiner_remarks, r.test_date`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app       models.Application
		aadhaar   sql.NullString
		pan       sql.NullString
		appNo     sql.NullString
		dob       sql.NullTime
		textFeed  sql.NullString
		docStatus sql.NullString

		testScore   sql.NullInt64
		testStatus  sql.NullString
		remarks     sql.NullString
		testDate    sql.NullTime
	)
	err := row.Scan(
		&app.RowID, &app.ID, &app.Kind, &app.Name, &app.Mobile, &aadhaar, &pan,
		&appNo, &dob, &app.Password, &app.WalletBalance, &app.Status, &textFeed,
		&docStatus, &app.CreatedAt,
		&testScore, &testStatus, &remarks, &testDate,
	)
	if err != nil {
		return nil, err
	}
	app.Aadhaar = aadhaar.String
	if pan.Valid {
		app.PANNumber = &pan.String
	}
	if appNo.Valid {
		app.AppNo = &appNo.String
	}
	if dob.Valid {
		app.DOB = &dob.Time
	}
	if textFeed.Valid {
		app.TextFeed = &textFeed.String
	}
	if docStatus.Valid {
		app.DocumentStatus = &docStatus.String
	}
	if testStatus.Valid {
		result := &models.TestResult{
			ApplicationID: app.ID,
			Score:         int(testScore.Int64),
			Status:        models.TestStatus(testStatus.String),
		}
		if remarks.Valid {
			result.ExaminerRemarks = &remarks.String
		}
		if testDate.Valid {
			result.TestDate = &testDate.Time
		}
		app.TestResult = result
	}
	return &app, nil
}

// Create inserts the application row. The caller must have assigned the
// sequence-allocated id.
func (s *PostgresStore) Create(ctx context.Context, app *models.Application) error {
	query := `
		INSERT INTO applications
			(application_id, type, name, mobile, aadhar, pan_number, app_no, dob,
			 password, wallet_bal, status, text_feed, document_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at
	`
	err := tx.Resolve(ctx, s.db).QueryRowContext(ctx, query,
		app.ID, app.Kind, app.Name, app.Mobile, nullString(app.Aadhaar),
		app.PANNumber, app.AppNo, app.DOB, app.Password, app.WalletBalance,
		app.Status, app.TextFeed, app.DocumentStatus,
	).Scan(&app.RowID, &app.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("create application: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// CreateTestResult inserts the paired pending test result for an LL
// application.
func (s *PostgresStore) CreateTestResult(ctx context.Context, applicationID int64) error {
	query := `INSERT INTO ll_test_results (application_id, test_status) VALUES ($1, $2)`
	if _, err := tx.Resolve(ctx, s.db).ExecContext(ctx, query, applicationID, models.TestStatusPending); err != nil {
		return fmt.Errorf("create test result: %w", err)
	}
	return nil
}

// GetByID returns the application with its test result when one exists.
func (s *PostgresStore) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	query := `
		SELECT ` + appColumns + `, ` + testColumns + `
		FROM applications a
		LEFT JOIN ll_test_results r ON a.application_id = r.application_id
		WHERE a.application_id = $1
	`
	app, err := scanApplication(tx.Resolve(ctx, s.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

// List returns applications matching the filter, newest id first.
func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]*models.Application, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		conds = append(conds, fmt.Sprintf("a.type = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(a.name ILIKE $%d OR a.aadhar ILIKE $%d OR a.mobile ILIKE $%d OR a.application_id::text ILIKE $%d)",
			n, n, n, n))
	}

	query := `
		SELECT ` + appColumns + `, ` + testColumns + `
		FROM applications a
		LEFT JOIN ll_test_results r ON a.application_id = r.application_id`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY a.application_id DESC"

	return s.queryApplications(ctx, query, args...)
}

// ListLL returns LL applications with their test results, newest first.
func (s *PostgresStore) ListLL(ctx context.Context, filter LLFilter) ([]*models.Application, error) {
	args := []any{models.KindLL}
	conds := []string{"a.type = $1"}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(a.app_no ILIKE $%d OR a.name ILIKE $%d OR a.mobile ILIKE $%d OR a.application_id::text ILIKE $%d)",
			n, n, n, n))
	}

	query := `
		SELECT ` + appColumns + `, ` + testColumns + `
		FROM applications a
		LEFT JOIN ll_test_results r ON a.application_id = r.application_id
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY a.created_at DESC`

	return s.queryApplications(ctx, query, args...)
}

func (s *PostgresStore) queryApplications(ctx context.Context, query string, args ...any) ([]*models.Application, error) {
	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// LatestByAadhaar returns the most recently created application for an
// Aadhaar number, or sentinel.ErrNotFound.
func (s *PostgresStore) LatestByAadhaar(ctx context.Context, aadhaar string) (*models.Application, error) {
	query := `
		SELECT ` + appColumns + `, ` + testColumns + `
		FROM applications a
		LEFT JOIN ll_test_results r ON a.application_id = r.application_id
		WHERE a.aadhar = $1
		ORDER BY a.created_at DESC
		LIMIT 1
	`
	app, err := scanApplication(tx.Resolve(ctx, s.db).QueryRowContext(ctx, query, aadhaar))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("latest application by aadhaar: %w", err)
	}
	return app, nil
}

// ExistsLLAppNo reports whether an LL application already uses appNo.
func (s *PostgresStore) ExistsLLAppNo(ctx context.Context, appNo string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM applications WHERE app_no = $1 AND type = $2)`
	var exists bool
	if err := tx.Resolve(ctx, s.db).QueryRowContext(ctx, query, appNo, models.KindLL).Scan(&exists); err != nil {
		return false, fmt.Errorf("check app_no: %w", err)
	}
	return exists, nil
}

// Update applies the patch to one application and reports whether a row
// matched. Column names come exclusively from the service's allow-list;
// values are bound parameters.
func (s *PostgresStore) Update(ctx context.Context, id int64, patch Patch) (bool, error) {
	if patch.Empty() {
		return false, fmt.Errorf("empty patch")
	}
	assignments := make([]string, len(patch.columns))
	for i, col := range patch.columns {
		assignments[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	args := append([]any{}, patch.values...)
	args = append(args, id)

	query := fmt.Sprintf("UPDATE applications SET %s WHERE application_id = $%d",
		strings.Join(assignments, ", "), len(args))
	res, err := tx.Resolve(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return false, fmt.Errorf("update application: %w", sentinel.ErrConflict)
		}
		return false, fmt.Errorf("update application: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update application: %w", err)
	}
	return n > 0, nil
}

// UpdateStatus sets the lifecycle status of one application.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id int64, status models.Status) error {
	query := `UPDATE applications SET status = $1 WHERE application_id = $2`
	res, err := tx.Resolve(ctx, s.db).ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("update status: %w", err)
	} else if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// UpdateTestResult writes the test outcome for an LL application.
func (s *PostgresStore) UpdateTestResult(ctx context.Context, id int64, score int, status models.TestStatus, remarks string) error {
	query := `
		UPDATE ll_test_results
		SET test_score = $1, test_status = $2, examiner_remarks = $3, test_date = CURRENT_DATE
		WHERE application_id = $4
	`
	res, err := tx.Resolve(ctx, s.db).ExecContext(ctx, query, score, status, nullString(remarks), id)
	if err != nil {
		return fmt.Errorf("update test result: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("update test result: %w", err)
	} else if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Delete removes one application. The LL test result row cascades.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := tx.Resolve(ctx, s.db).ExecContext(ctx, `DELETE FROM applications WHERE application_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete application: %w", err)
	} else if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// CountByKind counts applications, optionally restricted to one kind.
func (s *PostgresStore) CountByKind(ctx context.Context, kind models.Kind) (int, error) {
	var (
		count int
		err   error
	)
	if kind == "" {
		err = tx.Resolve(ctx, s.db).QueryRowContext(ctx,
			`SELECT COUNT(*) FROM applications`).Scan(&count)
	} else {
		err = tx.Resolve(ctx, s.db).QueryRowContext(ctx,
			`SELECT COUNT(*) FROM applications WHERE type = $1`, kind).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return count, nil
}

// CountLLByStatus counts LL applications with the given lifecycle status.
func (s *PostgresStore) CountLLByStatus(ctx context.Context, status models.Status) (int, error) {
	var count int
	err := tx.Resolve(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM applications WHERE type = $1 AND status = $2`,
		models.KindLL, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count ll applications: %w", err)
	}
	return count, nil
}

// CountLLPassed counts LL applications whose test result is passed.
func (s *PostgresStore) CountLLPassed(ctx context.Context) (int, error) {
	var count int
	err := tx.Resolve(ctx, s.db).QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM ll_test_results r
		JOIN applications a ON r.application_id = a.application_id
		WHERE a.type = $1 AND r.test_status = $2`,
		models.KindLL, models.TestStatusPassed).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count passed tests: %w", err)
	}
	return count, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
