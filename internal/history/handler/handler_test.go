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

	appmodels "seva/internal/application/models"
	"seva/internal/history/handler/mocks"
	"seva/internal/history/models"
	"seva/internal/history/service"
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

func post(t *testing.T, h http.Handler, target string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
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

func TestHandler_Store(t *testing.T) {
	svc, h := setup(t)

	feed := "documents verified"
	rec := &service.Recorded{
		Entry:     &models.Entry{ID: 7},
		SessionID: "sess-1",
		Application: &appmodels.Application{
			ID: 10000001, Status: appmodels.StatusCompleted, TextFeed: &feed,
		},
	}
	svc.EXPECT().Record(gomock.Any(), "123456789012", "sess-1", gomock.Any()).
		DoAndReturn(func(_ any, _, _ string, meta service.RequestMeta) (*service.Recorded, error) {
			assert.Equal(t, "203.0.113.9", meta.IPAddress)
			assert.Contains(t, meta.Service, "Firefox")
			return rec, nil
		})

	w := post(t, h, "/api/pan-history/store",
		map[string]string{"aadhar": "123456789012", "userId": "sess-1"},
		map[string]string{
			"X-Forwarded-For": "203.0.113.9",
			"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0",
		})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "sess-1", body["sessionId"])
	assert.Equal(t, float64(7), body["historyId"])
	app := body["application"].(map[string]any)
	assert.Equal(t, float64(10000001), app["application_id"])
	assert.Equal(t, "completed", app["status"])
}

func TestHandler_Store_NoApplication(t *testing.T) {
	svc, h := setup(t)

	svc.EXPECT().Record(gomock.Any(), "123456789012", "", gomock.Any()).
		Return(&service.Recorded{Entry: &models.Entry{ID: 8}, SessionID: "session_x"}, nil)

	w := post(t, h, "/api/pan-history/store", map[string]string{"aadhar": "123456789012"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w)["application"])
}

func TestHandler_Store_InvalidAadhaar(t *testing.T) {
	svc, h := setup(t)

	svc.EXPECT().Record(gomock.Any(), "123", "", gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeValidation, "invalid Aadhaar number"))

	w := post(t, h, "/api/pan-history/store", map[string]string{"aadhar": "123"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Get(t *testing.T) {
	svc, h := setup(t)

	pan := "PAN10000001"
	searched := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	entries := []*models.Entry{
		{ID: 1, Aadhaar: "123456789012", PANNumber: &pan, Service: "Chrome on Linux",
			Status: "completed", Visible: true, SearchedAt: searched},
		{ID: 2, Aadhaar: "123456789012", PANNumber: &pan,
			Status: "pending", Visible: false, SearchedAt: searched},
	}
	svc.EXPECT().List(gomock.Any(), "sess-1", "").Return(entries, nil)

	w := post(t, h, "/api/pan-history/get", map[string]string{"userId": "sess-1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(2), body["count"])
	history := body["history"].([]any)

	visible := history[0].(map[string]any)
	assert.Equal(t, "1234 5678 9012", visible["aadhar"])
	assert.Equal(t, "PAN10000001", visible["panNumber"])
	assert.Equal(t, "15/03/2024, 14:30", visible["date"])

	hidden := history[1].(map[string]any)
	assert.Equal(t, "•••••••••", hidden["panNumber"])
	assert.Equal(t, false, hidden["isPanVisible"])
}

func TestHandler_Get_Empty(t *testing.T) {
	svc, h := setup(t)

	svc.EXPECT().List(gomock.Any(), "", "").Return(nil, nil)

	w := post(t, h, "/api/pan-history/get", map[string]string{}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(0), body["count"])
	assert.NotNil(t, body["history"])
}

func TestHandler_Reveal(t *testing.T) {
	svc, h := setup(t)

	svc.EXPECT().RevealAll(gomock.Any(), "letmein").Return(int64(4), nil)

	w := post(t, h, "/api/admin/reveal-pan", map[string]string{"adminKey": "letmein"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(4), body["count"])
	assert.Equal(t, "Updated 4 records", body["message"])
}

func TestHandler_Reveal_Unauthorized(t *testing.T) {
	svc, h := setup(t)

	svc.EXPECT().RevealAll(gomock.Any(), "guess").
		Return(int64(0), dErrors.New(dErrors.CodeUnauthorized, "unauthorized"))

	w := post(t, h, "/api/admin/reveal-pan", map[string]string{"adminKey": "guess"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
