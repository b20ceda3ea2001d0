package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"seva/internal/application/handler/mocks"
	"seva/internal/application/models"
	"seva/internal/application/store"
	dErrors "seva/pkg/domain-errors"
)

func setup(t *testing.T) (*mocks.MockService, http.Handler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	r := chi.NewRouter()
	New(svc, slog.Default()).Register(r)
	return svc, r
}

func doJSON(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func panApp() *models.Application {
	return &models.Application{
		ID:        10000001,
		Kind:      models.KindPAN,
		Name:      "User 10000001",
		Mobile:    "9876543210",
		Aadhaar:   "123456789012",
		Password:  "PAN10000001",
		Status:    models.StatusPending,
		CreatedAt: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestHandler_SubmitPAN(t *testing.T) {
	svc, h := setup(t)

	svc.EXPECT().CreatePAN(gomock.Any(), "123456789012").Return(panApp(), nil)

	rec := doJSON(t, h, http.MethodPost, "/api/submit-pan", map[string]string{"aadhar": "123456789012"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	app := body["application"].(map[string]any)
	assert.Equal(t, float64(10000001), app["id"])
	assert.Equal(t, "pan", app["type"])
	assert.Equal(t, "2024-03-15", app["date"])
	assert.Nil(t, app["panNumber"])
}

func TestHandler_SubmitPAN_InvalidAadhaar(t *testing.T) {
	svc, h := setup(t)

	svc.EXPECT().CreatePAN(gomock.Any(), "123").
		Return(nil, dErrors.New(dErrors.CodeValidation, "invalid Aadhaar number: must be 12 digits"))

	rec := doJSON(t, h, http.MethodPost, "/api/submit-pan", map[string]string{"aadhar": "123"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decode(t, rec)["error"])
}

func TestHandler_SubmitPAN_MalformedBody(t *testing.T) {
	_, h := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/api/submit-pan", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ListApplications(t *testing.T) {
	svc, h := setup(t)

	svc.EXPECT().List(gomock.Any(), "pan", "rahul").Return([]*models.Application{panApp()}, nil)

	rec := doJSON(t, h, http.MethodGet, "/api/applications?type=pan&search=rahul", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "123456789012", out[0]["aadhar"])
}

func TestHandler_ListApplications_Empty(t *testing.T) {
	svc, h := setup(t)

	svc.EXPECT().List(gomock.Any(), "", "").Return(nil, nil)

	rec := doJSON(t, h, http.MethodGet, "/api/applications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandler_GetApplication(t *testing.T) {
	svc, h := setup(t)

	svc.EXPECT().Get(gomock.Any(), int64(10000001)).Return(panApp(), nil)

	rec := doJSON(t, h, http.MethodGet, "/api/applications/10000001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(10000001), decode(t, rec)["id"])
}

func TestHandler_GetApplication_NotFound(t *testing.T) {
	svc, h := setup(t)

	svc.EXPECT().Get(gomock.Any(), int64(42)).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "application not found"))

	rec := doJSON(t, h, http.MethodGet, "/api/applications/42", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_GetApplication_NonNumericID(t *testing.T) {
	_, h := setup(t)

	rec := doJSON(t, h, http.MethodGet, "/api/applications/abc", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_UpdateApplication(t *testing.T) {
	svc, h := setup(t)

	pan := "ABCDE1234F"
	updated := panApp()
	updated.PANNumber = &pan
	updated.Status = models.StatusCompleted

	svc.EXPECT().Update(gomock.Any(), int64(10000001),
		map[string]any{"panNumber": "ABCDE1234F", "status": "completed"}).Return(updated, nil)

	rec := doJSON(t, h, http.MethodPut, "/api/applications/10000001",
		map[string]any{"panNumber": "ABCDE1234F", "status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	app := body["application"].(map[string]any)
	assert.Equal(t, "ABCDE1234F", app["panNumber"])
	assert.Equal(t, "completed", app["status"])
}

func TestHandler_DeleteApplication(t *testing.T) {
	svc, h := setup(t)

	svc.EXPECT().Delete(gomock.Any(), int64(10000001)).Return(nil)

	rec := doJSON(t, h, http.MethodDelete, "/api/applications/10000001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Application deleted successfully", decode(t, rec)["message"])
}

func TestHandler_Stats(t *testing.T) {
	svc, h := setup(t)

	svc.EXPECT().Stats(gomock.Any()).Return(&store.Stats{Total: 10, PAN: 7, LL: 3}, nil)

	rec := doJSON(t, h, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":10,"pan":7,"ll":3}`, rec.Body.String())
}

func TestHandler_SubmitLL(t *testing.T) {
	svc, h := setup(t)

	appNo := "LL2024001"
	dob := time.Date(1999, 4, 12, 0, 0, 0, 0, time.UTC)
	doc := "pending"
	app := &models.Application{
		ID: 10000002, Kind: models.KindLL, Name: "User 10000002",
		Mobile: "9876543210", Aadhaar: "000000000000",
		AppNo: &appNo, DOB: &dob, Password: "secret",
		Status: models.StatusPending, DocumentStatus: &doc,
		CreatedAt:  time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		TestResult: &models.TestResult{ApplicationID: 10000002, Status: models.TestStatusPending},
	}
	svc.EXPECT().CreateLL(gomock.Any(), "LL2024001", "1999-04-12", "secret").Return(app, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/submit-ll",
		map[string]string{"appNo": "LL2024001", "dob": "1999-04-12", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	out := body["application"].(map[string]any)
	assert.Equal(t, "LL2024001", out["appNo"])
	assert.Equal(t, "1999-04-12", out["dob"])
	assert.Equal(t, "pending", out["testStatus"])
	assert.Equal(t, "pending", out["documentStatus"])
}

func TestHandler_ListLL(t *testing.T) {
	svc, h := setup(t)

	svc.EXPECT().ListLL(gomock.Any(), "LL2024", "active").Return(nil, nil)

	rec := doJSON(t, h, http.MethodGet, "/api/ll-applications?search=LL2024&status=active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandler_UpdateTestResult(t *testing.T) {
	svc, h := setup(t)

	remarks := "good drive"
	app := &models.Application{
		ID: 10000002, Kind: models.KindLL, Status: models.StatusActive,
		CreatedAt: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		TestResult: &models.TestResult{
			ApplicationID: 10000002, Score: 85,
			Status: models.TestStatusPassed, ExaminerRemarks: &remarks,
		},
	}
	svc.EXPECT().UpdateTestResult(gomock.Any(), int64(10000002), 85, "passed", "good drive").Return(app, nil)

	rec := doJSON(t, h, http.MethodPut, "/api/ll-applications/10000002/test-result",
		map[string]any{"testScore": 85, "testStatus": "passed", "examinerRemarks": "good drive"})
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)["application"].(map[string]any)
	assert.Equal(t, float64(85), out["testScore"])
	assert.Equal(t, "passed", out["testStatus"])
	assert.Equal(t, "active", out["status"])
}

func TestHandler_UpdateTestResult_InvalidStatus(t *testing.T) {
	svc, h := setup(t)

	svc.EXPECT().UpdateTestResult(gomock.Any(), int64(10000002), 0, "aced", "").
		Return(nil, dErrors.New(dErrors.CodeValidation, "invalid test status"))

	rec := doJSON(t, h, http.MethodPut, "/api/ll-applications/10000002/test-result",
		map[string]any{"testStatus": "aced"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_LLStats(t *testing.T) {
	svc, h := setup(t)

	svc.EXPECT().LLStats(gomock.Any()).
		Return(&store.LLStats{Total: 5, Pending: 2, Active: 2, Passed: 3}, nil)

	rec := doJSON(t, h, http.MethodGet, "/api/ll-stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":5,"pending":2,"active":2,"passed":3}`, rec.Body.String())
}

func TestHandler_InternalErrorRedacted(t *testing.T) {
	svc, h := setup(t)

	svc.EXPECT().Stats(gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeInternal, "pq: connection refused"))

	rec := doJSON(t, h, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "internal_error", body["error"])
	assert.NotContains(t, rec.Body.String(), "connection refused")
}
