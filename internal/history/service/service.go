// Package service owns the search-history ledger rules: session assignment,
// lazy re-sync against the latest application, the visibility gate, and the
// privileged bulk reveal.
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	appmodels "seva/internal/application/models"
	"seva/internal/audit"
	"seva/internal/history/models"
	"seva/internal/history/store"
	"seva/internal/platform/metrics"
	dErrors "seva/pkg/domain-errors"
	"seva/pkg/platform/sentinel"
)

// Store is the ledger persistence surface.
type Store interface {
	Append(ctx context.Context, e *models.Entry) error
	List(ctx context.Context, filter store.Filter) ([]*models.Entry, error)
	Stamp(ctx context.Context, id int64, pan string, status string, visible bool) error
	RevealMatched(ctx context.Context) (int64, error)
}

// ApplicationResolver finds the most recent application for an Aadhaar
// number. Implemented by the application store.
type ApplicationResolver interface {
	LatestByAadhaar(ctx context.Context, aadhaar string) (*appmodels.Application, error)
}

// AuditPublisher records mutating operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// RequestMeta carries requester network and agent metadata into the ledger.
type RequestMeta struct {
	IPAddress string
	UserAgent string
	// Service is a readable rendering of the user agent (browser on OS),
	// derived at the transport layer.
	Service string
	// HeaderSessionID is the X-Session-ID header value, used when the body
	// carries no session id.
	HeaderSessionID string
}

// Recorded is the result of recording one lookup.
type Recorded struct {
	Entry       *models.Entry
	SessionID   string
	Application *appmodels.Application
}

// Service orchestrates the search-history ledger.
type Service struct {
	stores     Store
	apps       ApplicationResolver
	adminToken string
	logger     *slog.Logger
	metrics    *metrics.Metrics
	auditor    AuditPublisher
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

// New constructs a Service. An empty adminToken disables RevealAll.
func New(stores Store, apps ApplicationResolver, adminToken string, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{stores: stores, apps: apps, adminToken: adminToken, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record appends a lookup to the ledger. The entry starts pending and
// hidden; when an application already exists for the Aadhaar it is stamped
// with the generated PAN number and the application's status in the same
// call.
func (s *Service) Record(ctx context.Context, aadhaar, sessionID string, meta RequestMeta) (*Recorded, error) {
	if err := models.ValidateAadhaar(aadhaar); err != nil {
		return nil, err
	}

	if sessionID == "" {
		sessionID = meta.HeaderSessionID
	}
	if sessionID == "" {
		sessionID = "session_" + uuid.NewString()
	}

	entry := &models.Entry{
		UserID:    sessionID,
		Aadhaar:   aadhaar,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Service:   meta.Service,
		Status:    string(appmodels.StatusPending),
		Visible:   false,
	}
	if err := s.stores.Append(ctx, entry); err != nil {
		return nil, s.storeError(ctx, "record search", err)
	}

	recorded := &Recorded{Entry: entry, SessionID: sessionID}
	app, err := s.apps.LatestByAadhaar(ctx, aadhaar)
	switch {
	case err == nil:
		pan := generatedPAN(app)
		visible := app.Status == appmodels.StatusCompleted
		if err := s.stores.Stamp(ctx, entry.ID, pan, string(app.Status), visible); err != nil {
			return nil, s.storeError(ctx, "stamp search entry", err)
		}
		entry.PANNumber = &pan
		entry.Status = string(app.Status)
		entry.Visible = visible
		recorded.Application = app
	case errors.Is(err, sentinel.ErrNotFound):
		// No application yet; the entry stays pending until a later read.
	default:
		return nil, s.storeError(ctx, "resolve application", err)
	}

	s.metrics.IncSearchesRecorded()
	s.emit(ctx, audit.ActionHistoryRecorded, "aadhaar:"+aadhaar,
		map[string]any{"session_id": sessionID, "history_id": entry.ID})
	return recorded, nil
}

// List returns ledger entries, lazily re-syncing any entry whose cached PAN
// number or status no longer matches the most recent application for its
// Aadhaar. Visibility follows the application status: only completed
// applications open the gate.
func (s *Service) List(ctx context.Context, sessionID, aadhaar string) ([]*models.Entry, error) {
	filter := store.Filter{UserID: sessionID, Aadhaar: aadhaar}
	entries, err := s.stores.List(ctx, filter)
	if err != nil {
		return nil, s.storeError(ctx, "list history", err)
	}

	resynced := false
	for _, e := range entries {
		app, err := s.apps.LatestByAadhaar(ctx, e.Aadhaar)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return nil, s.storeError(ctx, "resolve application", err)
		}
		pan := generatedPAN(app)
		visible := app.Status == appmodels.StatusCompleted
		stale := e.PANNumber == nil || *e.PANNumber != pan ||
			e.Status != string(app.Status) || e.Visible != visible
		if !stale {
			continue
		}
		if err := s.stores.Stamp(ctx, e.ID, pan, string(app.Status), visible); err != nil {
			return nil, s.storeError(ctx, "sync history entry", err)
		}
		resynced = true
	}

	if resynced {
		entries, err = s.stores.List(ctx, filter)
		if err != nil {
			return nil, s.storeError(ctx, "list history", err)
		}
	}
	return entries, nil
}

// RevealAll is the privileged bulk reveal: every entry whose most recent
// matching application is active or completed becomes visible. The supplied
// token must match the configured admin credential; an empty configured
// credential disables the operation.
func (s *Service) RevealAll(ctx context.Context, token string) (int64, error) {
	if s.adminToken == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "unauthorized")
	}

	count, err := s.stores.RevealMatched(ctx)
	if err != nil {
		return 0, s.storeError(ctx, "reveal history", err)
	}

	s.metrics.AddEntriesRevealed(count)
	s.emit(ctx, audit.ActionPANRevealed, "history", map[string]any{"count": count})
	return count, nil
}

// generatedPAN renders the document number derived from an application id.
func generatedPAN(app *appmodels.Application) string {
	return fmt.Sprintf("PAN%d", app.ID)
}

func (s *Service) emit(ctx context.Context, action, subject string, detail map[string]any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, audit.Event{Action: action, Subject: subject, Detail: detail}); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}

func (s *Service) storeError(ctx context.Context, op string, err error) error {
	s.logger.ErrorContext(ctx, op, "error", err)
	return dErrors.Wrap(err, dErrors.CodeInternal, op)
}
