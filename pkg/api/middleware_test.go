package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestConversionIDMiddleware(t *testing.T) {
	var seen string
	handler := conversionIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(ConversionIDHeader)
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	id := w.Header().Get(ConversionIDHeader)
	require.NotEmpty(t, id)
	assert.Equal(t, id, seen)
	_, err := ksuid.Parse(id)
	assert.NoError(t, err)

	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, httptest.NewRequest("GET", "/test", nil))
	assert.NotEqual(t, id, w2.Header().Get(ConversionIDHeader))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := conversionIDMiddleware(requestLogger(zap.New(core))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		})))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/brew", nil))

	entries := logs.FilterMessage("request").AllUntimed()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "POST", ctx["method"])
	assert.Equal(t, "/brew", ctx["path"])
	assert.Equal(t, int64(http.StatusTeapot), ctx["status"])
	assert.Equal(t, int64(15), ctx["bytes"])
	assert.Equal(t, w.Header().Get(ConversionIDHeader), ctx["conversion_id"])
}

func TestSendHelpers(t *testing.T) {
	w := httptest.NewRecorder()
	sendError(w, "boom", http.StatusBadRequest)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":false,"error":"boom"}`, w.Body.String())

	w = httptest.NewRecorder()
	sendSuccess(w, map[string]int{"n": 1})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"n":1}}`, w.Body.String())
}
