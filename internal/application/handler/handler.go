// Package handler exposes the application record endpoints consumed by the
// back-office dashboard. The wire shapes mirror the legacy admin console, so
// field names stay camelCase and dates render as YYYY-MM-DD.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"seva/internal/application/models"
	"seva/internal/application/store"
	"seva/internal/platform/middleware"
	dErrors "seva/pkg/domain-errors"
	"seva/pkg/platform/httputil"
)

// Service defines the application operations the handler drives.
type Service interface {
	CreatePAN(ctx context.Context, aadhaar string) (*models.Application, error)
	CreateLL(ctx context.Context, appNo, dob, password string) (*models.Application, error)
	Get(ctx context.Context, id int64) (*models.Application, error)
	List(ctx context.Context, kind, search string) ([]*models.Application, error)
	ListLL(ctx context.Context, search, status string) ([]*models.Application, error)
	Update(ctx context.Context, id int64, fields map[string]any) (*models.Application, error)
	UpdateTestResult(ctx context.Context, id int64, score int, status, remarks string) (*models.Application, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*store.Stats, error)
	LLStats(ctx context.Context) (*store.LLStats, error)
}

// Handler handles application record endpoints.
type Handler struct {
	logger *slog.Logger
	apps   Service
}

// New creates a new application Handler.
func New(apps Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, apps: apps}
}

// Register registers the application routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/submit-pan", h.handleSubmitPAN)
	r.Get("/api/applications", h.handleListApplications)
	r.Get("/api/applications/{id}", h.handleGetApplication)
	r.Put("/api/applications/{id}", h.handleUpdateApplication)
	r.Delete("/api/applications/{id}", h.handleDeleteApplication)
	r.Get("/api/stats", h.handleStats)

	r.Post("/api/submit-ll", h.handleSubmitLL)
	r.Get("/api/ll-applications", h.handleListLL)
	r.Put("/api/ll-applications/{id}/test-result", h.handleUpdateTestResult)
	r.Get("/api/ll-stats", h.handleLLStats)
}

type submitPANRequest struct {
	Aadhar string `json:"aadhar"`
}

func (h *Handler) handleSubmitPAN(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req submitPANRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	app, err := h.apps.CreatePAN(ctx, req.Aadhar)
	if err != nil {
		h.writeError(ctx, w, "submit pan application", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Application submitted successfully",
		"application": toApplication(app),
	})
}

func (h *Handler) handleListApplications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	apps, err := h.apps.List(ctx, r.URL.Query().Get("type"), r.URL.Query().Get("search"))
	if err != nil {
		h.writeError(ctx, w, "list applications", err)
		return
	}

	out := make([]applicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, toApplication(app))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	app, err := h.apps.Get(ctx, id)
	if err != nil {
		h.writeError(ctx, w, "get application", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toApplication(app))
}

func (h *Handler) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	app, err := h.apps.Update(ctx, id, fields)
	if err != nil {
		h.writeError(ctx, w, "update application", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"application": toApplication(app),
	})
}

func (h *Handler) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.apps.Delete(ctx, id); err != nil {
		h.writeError(ctx, w, "delete application", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Application deleted successfully",
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.apps.Stats(ctx)
	if err != nil {
		h.writeError(ctx, w, "stats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

type submitLLRequest struct {
	AppNo    string `json:"appNo"`
	DOB      string `json:"dob"`
	Password string `json:"password"`
}

func (h *Handler) handleSubmitLL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req submitLLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	app, err := h.apps.CreateLL(ctx, req.AppNo, req.DOB, req.Password)
	if err != nil {
		h.writeError(ctx, w, "submit ll application", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "LL application submitted successfully",
		"application": toLLApplication(app),
	})
}

func (h *Handler) handleListLL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	apps, err := h.apps.ListLL(ctx, r.URL.Query().Get("search"), r.URL.Query().Get("status"))
	if err != nil {
		h.writeError(ctx, w, "list ll applications", err)
		return
	}

	out := make([]llApplicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, toLLApplication(app))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

type testResultRequest struct {
	TestScore       int    `json:"testScore"`
	TestStatus      string `json:"testStatus"`
	ExaminerRemarks string `json:"examinerRemarks"`
}

func (h *Handler) handleUpdateTestResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req testResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	app, err := h.apps.UpdateTestResult(ctx, id, req.TestScore, req.TestStatus, req.ExaminerRemarks)
	if err != nil {
		h.writeError(ctx, w, "update test result", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Test result updated successfully",
		"application": toLLApplication(app),
	})
}

func (h *Handler) handleLLStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.apps.LLStats(ctx)
	if err != nil {
		h.writeError(ctx, w, "ll stats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

// pathID parses the {id} path parameter. Non-numeric ids read as "no such
// application" rather than a malformed request, matching what the dashboard
// expects.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "application not found"))
		return 0, false
	}
	return id, true
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
