// Package handler exposes the search-history ledger endpoints. They are
// POST-heavy because the citizen portal submits lookups and reads through
// the same form pipeline.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mssola/useragent"

	appmodels "seva/internal/application/models"
	"seva/internal/history/models"
	"seva/internal/history/service"
	"seva/internal/platform/middleware"
	dErrors "seva/pkg/domain-errors"
	"seva/pkg/platform/httputil"
)

const displayDateLayout = "02/01/2006, 15:04"

// Service defines the history operations the handler drives.
type Service interface {
	Record(ctx context.Context, aadhaar, sessionID string, meta service.RequestMeta) (*service.Recorded, error)
	List(ctx context.Context, sessionID, aadhaar string) ([]*models.Entry, error)
	RevealAll(ctx context.Context, token string) (int64, error)
}

// Handler handles search-history endpoints.
type Handler struct {
	logger  *slog.Logger
	history Service
}

// New creates a new history Handler.
func New(history Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, history: history}
}

// Register registers the history routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/pan-history/store", h.handleStore)
	r.Post("/api/pan-history/get", h.handleGet)
	r.Post("/api/admin/reveal-pan", h.handleReveal)
}

type storeRequest struct {
	Aadhar string `json:"aadhar"`
	UserID string `json:"userId"`
}

func (h *Handler) handleStore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req storeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	rec, err := h.history.Record(ctx, req.Aadhar, req.UserID, requestMeta(r))
	if err != nil {
		h.writeError(ctx, w, "store search history", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "History stored successfully",
		"sessionId":   rec.SessionID,
		"historyId":   rec.Entry.ID,
		"application": toMatchedApplication(rec.Application),
	})
}

type getRequest struct {
	UserID string `json:"userId"`
	Aadhar string `json:"aadhar"`
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req getRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	entries, err := h.history.List(ctx, req.UserID, req.Aadhar)
	if err != nil {
		h.writeError(ctx, w, "get search history", err)
		return
	}

	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntry(e))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"history": out,
		"count":   len(out),
	})
}

type revealRequest struct {
	AdminKey string `json:"adminKey"`
}

func (h *Handler) handleReveal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req revealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	count, err := h.history.RevealAll(ctx, req.AdminKey)
	if err != nil {
		h.writeError(ctx, w, "reveal search history", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Updated %d records", count),
		"count":   count,
	})
}

type entryResponse struct {
	ID           int64  `json:"id"`
	Aadhar       string `json:"aadhar"`
	PANNumber    string `json:"panNumber"`
	ServiceName  string `json:"serviceName"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	IsPANVisible bool   `json:"isPanVisible"`
}

func toEntry(e *models.Entry) entryResponse {
	return entryResponse{
		ID:           e.ID,
		Aadhar:       models.FormatAadhaar(e.Aadhaar),
		PANNumber:    e.DisplayPAN(),
		ServiceName:  e.Service,
		Date:         e.SearchedAt.Format(displayDateLayout),
		Status:       e.Status,
		IsPANVisible: e.Visible,
	}
}

// toMatchedApplication renders the compact application summary the store
// endpoint returns alongside the recorded entry.
func toMatchedApplication(app *appmodels.Application) map[string]any {
	if app == nil {
		return nil
	}
	return map[string]any{
		"application_id": app.ID,
		"status":         string(app.Status),
		"text_feed":      app.TextFeed,
	}
}

// requestMeta extracts the requester metadata stored with each ledger entry.
func requestMeta(r *http.Request) service.RequestMeta {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ip = host
	}

	ua := r.UserAgent()
	svc := ""
	if ua != "" {
		parsed := useragent.New(ua)
		browser, _ := parsed.Browser()
		if browser != "" {
			svc = browser
			if parsed.OS() != "" {
				svc += " on " + parsed.OS()
			}
		}
	}

	return service.RequestMeta{
		IPAddress:       ip,
		UserAgent:       ua,
		Service:         svc,
		HeaderSessionID: r.Header.Get("X-Session-ID"),
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, op,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, op,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
