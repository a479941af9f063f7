package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/taskforge/task-gateway/internal/config"
	"github.com/taskforge/task-gateway/internal/gateway"
)

const testUserID = "9b2d7a40-1c1e-4f3a-8d52-3f0b6a1c2d4e"

func newTestRouter(t *testing.T, upstream http.HandlerFunc) http.Handler {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	cfg := config.Default().Upstream
	cfg.BaseURL = srv.URL
	cfg.MaxRetries = 0
	cfg.Backoff = []time.Duration{0}

	gw := gateway.NewClient(cfg)
	t.Cleanup(gw.Close)
	return newRouter(gw)
}

func TestRouter_QueryRouteDelegatesToGateway(t *testing.T) {
	var gotMethod, gotPath string
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/query", strings.NewReader(`{"status":"pending"}`))
	req.Header.Set("X-User-ID", testUserID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/tasks/", gotPath)

	body := gjson.Parse(rec.Body.String())
	assert.True(t, body.Get("success").Bool())
	assert.True(t, body.Get("data.tasks").IsArray())
}

func TestRouter_PathParamForwarded(t *testing.T) {
	taskID := "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	var gotPath string
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":200,"success":true,"message":"deleted","data":null}`))
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/"+taskID, nil)
	req.Header.Set("X-User-ID", testUserID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/tasks/"+taskID+"/", gotPath)
}

func TestRouter_InvalidUserIDRejectedUpFront(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/", nil)
	req.Header.Set("X-User-ID", "nope")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := gjson.Parse(rec.Body.String())
	assert.False(t, body.Get("success").Bool())
	assert.Contains(t, body.Get("message").String(), "user_id")
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", gjson.Parse(rec.Body.String()).Get("status").String())
}
