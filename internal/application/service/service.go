// Package service owns the application domain rules: creation defaults,
// partial-update validation, and the status reconciliation triggers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"seva/internal/application/cache"
	"seva/internal/application/models"
	"seva/internal/application/store"
	"seva/internal/audit"
	"seva/internal/platform/metrics"
	dErrors "seva/pkg/domain-errors"
	"seva/pkg/platform/sentinel"
)

// Store is the application persistence surface the service depends on.
type Store interface {
	Create(ctx context.Context, app *models.Application) error
	CreateTestResult(ctx context.Context, applicationID int64) error
	GetByID(ctx context.Context, id int64) (*models.Application, error)
	List(ctx context.Context, filter store.Filter) ([]*models.Application, error)
	ListLL(ctx context.Context, filter store.LLFilter) ([]*models.Application, error)
	ExistsLLAppNo(ctx context.Context, appNo string) (bool, error)
	Update(ctx context.Context, id int64, patch store.Patch) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status models.Status) error
	UpdateTestResult(ctx context.Context, id int64, score int, status models.TestStatus, remarks string) error
	Delete(ctx context.Context, id int64) error
	CountByKind(ctx context.Context, kind models.Kind) (int, error)
	CountLLByStatus(ctx context.Context, status models.Status) (int, error)
	CountLLPassed(ctx context.Context) (int, error)
}

// Sequence allocates application ids.
type Sequence interface {
	Next(ctx context.Context) (int64, error)
}

// HistorySyncer force-completes search-history entries when a PAN number is
// assigned. Implemented by the history store; called inside the update
// transaction.
type HistorySyncer interface {
	MarkCompletedByAadhaar(ctx context.Context, aadhaar, pan string) error
}

// TxRunner scopes a function to one atomic transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuditPublisher records mutating operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

/// Submission-time defaults carried over from the legacy intake flow: the
// kiosk collects only the key fields, the rest are filled by the back office.
const (
	defaultMobile  = "9876543210"
	defaultAadhaar = "000000000000"
)

// Service orchestrates application records.
type Service struct {
	stores  Store
	seq     Sequence
	history HistorySyncer
	txr     TxRunner
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor AuditPublisher
	stats   *cache.Cache
}

// Option configures optional collaborators.
type Option func(*Service)

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAuditPublisher attaches the audit publisher.
func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditor = p }
}

// WithStatsCache attaches the redis stats cache.
func WithStatsCache(c *cache.Cache) Option {
	return func(s *Service) { s.stats = c }
}

// New constructs a Service.
func New(stores Store, seq Sequence, history HistorySyncer, txr TxRunner, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{stores: stores, seq: seq, history: history, txr: txr, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePAN submits a PAN application for a 12-digit Aadhaar number. The id
// allocation and the insert share one transaction, so a failed insert never
// consumes a visible id.
func (s *Service) CreatePAN(ctx context.Context, aadhaar string) (*models.Application, error) {
	if err := models.ValidateAadhaar(aadhaar); err != nil {
		return nil, err
	}

	var app *models.Application
	err := s.txr.RunInTx(ctx, func(ctx context.Context) error {
		id, err := s.seq.Next(ctx)
		if err != nil {
			return err
		}
		app = &models.Application{
			ID:       id,
			Kind:     models.KindPAN,
			Name:     fmt.Sprintf("User %d", id),
			Mobile:   defaultMobile,
			Aadhaar:  aadhaar,
			Password: fmt.Sprintf("PAN%d", id),
			Status:   models.StatusPending,
		}
		return s.stores.Create(ctx, app)
	})
	if err != nil {
		return nil, s.storeError(ctx, "create pan application", err)
	}

	s.metrics.IncApplicationsCreated(string(models.KindPAN))
	s.emit(ctx, audit.ActionApplicationCreated, fmt.Sprintf("application:%d", app.ID), nil)
	return app, nil
}

// CreateLL submits a learner's licence application and its paired pending
// test result in one transaction.
func (s *Service) CreateLL(ctx context.Context, appNo, dob, password string) (*models.Application, error) {
	appNo = strings.TrimSpace(appNo)
	if appNo == "" || dob == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "all fields are required: appNo, dob, password")
	}
	parsedDOB, err := models.ParseDOB(dob)
	if err != nil {
		return nil, err
	}
	if parsedDOB == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "all fields are required: appNo, dob, password")
	}

	exists, err := s.stores.ExistsLLAppNo(ctx, appNo)
	if err != nil {
		return nil, s.storeError(ctx, "check ll app number", err)
	}
	if exists {
		return nil, dErrors.New(dErrors.CodeBadRequest, "application number already exists")
	}

	docStatus := string(models.StatusPending)
	var app *models.Application
	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		id, err := s.seq.Next(ctx)
		if err != nil {
			return err
		}
		app = &models.Application{
			ID:             id,
			Kind:           models.KindLL,
			Name:           fmt.Sprintf("User %d", id),
			Mobile:         defaultMobile,
			Aadhaar:        defaultAadhaar,
			AppNo:          &appNo,
			DOB:            parsedDOB,
			Password:       password,
			Status:         models.StatusPending,
			DocumentStatus: &docStatus,
		}
		if err := s.stores.Create(ctx, app); err != nil {
			return err
		}
		return s.stores.CreateTestResult(ctx, app.ID)
	})
	if err != nil {
		// The partial unique index closes the check-then-insert race.
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "application number already exists")
		}
		return nil, s.storeError(ctx, "create ll application", err)
	}
	app.TestResult = &models.TestResult{ApplicationID: app.ID, Status: models.TestStatusPending}

	s.metrics.IncApplicationsCreated(string(models.KindLL))
	s.emit(ctx, audit.ActionApplicationCreated, fmt.Sprintf("application:%d", app.ID), nil)
	return app, nil
}

// Get returns one application by id.
func (s *Service) Get(ctx context.Context, id int64) (*models.Application, error) {
	app, err := s.stores.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, s.storeError(ctx, "get application", err)
	}
	return app, nil
}

// List returns applications filtered by kind and search term, newest first.
// Unrecognized kind values mean "all".
func (s *Service) List(ctx context.Context, kind, search string) ([]*models.Application, error) {
	filter := store.Filter{Search: strings.TrimSpace(search)}
	switch models.Kind(kind) {
	case models.KindPAN, models.KindLL:
		filter.Kind = models.Kind(kind)
	}
	apps, err := s.stores.List(ctx, filter)
	if err != nil {
		return nil, s.storeError(ctx, "list applications", err)
	}
	return apps, nil
}

// ListLL returns LL applications with their test results.
func (s *Service) ListLL(ctx context.Context, search, status string) ([]*models.Application, error) {
	filter := store.LLFilter{Search: strings.TrimSpace(search)}
	if status != "" && status != "all" {
		filter.Status = models.Status(status)
	}
	apps, err := s.stores.ListLL(ctx, filter)
	if err != nil {
		return nil, s.storeError(ctx, "list ll applications", err)
	}
	return apps, nil
}

// Delete removes one application; its test result cascades. History entries
// are append-only and deliberately survive.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.stores.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return s.storeError(ctx, "delete application", err)
	}
	s.emit(ctx, audit.ActionApplicationDeleted, fmt.Sprintf("application:%d", id), nil)
	return nil
}

const (
	statsCacheKey   = "seva:stats"
	llStatsCacheKey = "seva:ll-stats"
)

// Stats returns application counts by kind. The count queries run
// concurrently; results are cached briefly when redis is configured.
func (s *Service) Stats(ctx context.Context) (*store.Stats, error) {
	var cached store.Stats
	if s.stats.Get(ctx, statsCacheKey, &cached) {
		return &cached, nil
	}

	var out store.Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.Total, err = s.stores.CountByKind(gctx, ""); return })
	g.Go(func() (err error) { out.PAN, err = s.stores.CountByKind(gctx, models.KindPAN); return })
	g.Go(func() (err error) { out.LL, err = s.stores.CountByKind(gctx, models.KindLL); return })
	if err := g.Wait(); err != nil {
		return nil, s.storeError(ctx, "stats", err)
	}

	s.stats.Set(ctx, statsCacheKey, &out)
	return &out, nil
}

// LLStats returns LL application counts by lifecycle and test outcome.
func (s *Service) LLStats(ctx context.Context) (*store.LLStats, error) {
	var cached store.LLStats
	if s.stats.Get(ctx, llStatsCacheKey, &cached) {
		return &cached, nil
	}

	var out store.LLStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.Total, err = s.stores.CountByKind(gctx, models.KindLL); return })
	g.Go(func() (err error) { out.Pending, err = s.stores.CountLLByStatus(gctx, models.StatusPending); return })
	g.Go(func() (err error) { out.Active, err = s.stores.CountLLByStatus(gctx, models.StatusActive); return })
	g.Go(func() (err error) { out.Passed, err = s.stores.CountLLPassed(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, s.storeError(ctx, "ll stats", err)
	}

	s.stats.Set(ctx, llStatsCacheKey, &out)
	return &out, nil
}

// emit records an audit event; failures are logged, never returned. The
// publisher runs outside any transaction so a failed sink cannot roll back a
// committed mutation.
func (s *Service) emit(ctx context.Context, action, subject string, detail map[string]any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, audit.Event{Action: action, Subject: subject, Detail: detail}); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}

// storeError logs the store failure and returns the caller-safe internal
// error.
func (s *Service) storeError(ctx context.Context, op string, err error) error {
	s.logger.ErrorContext(ctx, op, "error", err)
	return dErrors.Wrap(err, dErrors.CodeInternal, op)
}
