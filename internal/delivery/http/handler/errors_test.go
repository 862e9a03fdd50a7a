package handler

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"panda-service/internal/delivery/http/middleware"
	"panda-service/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveInternalError(t *testing.T, err error) (*httptest.ResponseRecorder, *test.Hook) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)
	hook := test.NewLocal(log)

	h := middleware.NewLoggingMiddleware(log).Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		internalError(log, w, r, err, "Failed to get patient")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/1", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.NotEmpty(t, hook.AllEntries())
	return rec, hook
}

func TestInternalError_LogsThroughInjectedLoggerWithRequestID(t *testing.T) {
	rec, hook := serveInternalError(t, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to get patient")

	entry := hook.AllEntries()[0]
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "req-42", entry.Data["request_id"])
	assert.Equal(t, "/api/v1/patients/1", entry.Data["path"])
	assert.Contains(t, entry.Message, assert.AnError.Error())
}

func TestInternalError_CorruptRecord(t *testing.T) {
	rec, hook := serveInternalError(t, fmt.Errorf("scan: %w", entity.ErrDataIntegrity))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Stored record is corrupt")

	entry := hook.AllEntries()[0]
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "req-42", entry.Data["request_id"])
	assert.Contains(t, entry.Message, "Stored record is corrupt")
}
