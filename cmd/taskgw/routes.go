package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/taskforge/task-gateway/internal/gateway"
	"github.com/taskforge/task-gateway/internal/rewrite"
)

// newRouter exposes the stable logical task routes. Each handler only
// extracts (method, logicalPath, userId, body, query, pathParams) and
// delegates to the gateway client; translation lives entirely behind it.
func newRouter(gw *gateway.Client) http.Handler {
	s := &server{gw: gw}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1/tasks", func(r chi.Router) {
		r.Post("/", s.proxy(rewrite.MethodPost, "tasks"))
		r.Get("/", s.proxy(rewrite.MethodGet, "tasks"))
		r.Post("/query", s.proxy(rewrite.MethodPost, "tasks/query"))
		r.Post("/top3/query", s.proxy(rewrite.MethodPost, "tasks/top3/query"))
		r.Post("/focus-status", s.proxy(rewrite.MethodPost, "tasks/focus-status"))
		r.Get("/pomodoro-count", s.proxy(rewrite.MethodGet, "tasks/pomodoro-count"))
		r.Get("/daily/{date}", s.proxy(rewrite.MethodGet, "tasks/daily/{date}", "date"))
		r.Get("/{task_id}", s.proxy(rewrite.MethodGet, "tasks/{task_id}", "task_id"))
		r.Put("/{task_id}", s.proxy(rewrite.MethodPut, "tasks/{task_id}", "task_id"))
		r.Delete("/{task_id}", s.proxy(rewrite.MethodDelete, "tasks/{task_id}", "task_id"))
		r.Post("/{task_id}/complete", s.proxy(rewrite.MethodPost, "tasks/{task_id}/complete", "task_id"))
	})

	return r
}

type server struct {
	gw *gateway.Client
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]string{"status": "ok"}
	if !s.gw.Healthy(r.Context()) {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}
	writeJSON(w, status, body)
}

// proxy builds a handler for one logical route. paramNames are the chi URL
// parameters to forward as pathParams.
func (s *server) proxy(method rewrite.Method, logicalPath string, paramNames ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := gateway.CallRequest{
			Method:      method,
			LogicalPath: logicalPath,
			UserID:      r.Header.Get("X-User-ID"),
		}

		if len(paramNames) > 0 {
			req.PathParams = make(map[string]string, len(paramNames))
			for _, name := range paramNames {
				req.PathParams[name] = chi.URLParam(r, name)
			}
		}

		if q := r.URL.Query(); len(q) > 0 {
			req.Query = make(map[string]any, len(q))
			for k := range q {
				req.Query[k] = q.Get(k)
			}
		}

		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req.Body); err != nil {
				writeJSON(w, http.StatusBadRequest, &gateway.CallResponse{
					Code: http.StatusBadRequest, Message: "invalid JSON body",
				})
				return
			}
		}

		resp, err := s.gw.Call(r.Context(), req)
		if err != nil {
			// Identifier validation failure: the one error that crosses
			// the façade, always before any upstream I/O.
			writeJSON(w, http.StatusBadRequest, &gateway.CallResponse{
				Code: http.StatusBadRequest, Message: err.Error(),
			})
			return
		}
		writeJSON(w, httpStatus(resp.Code), resp)
	}
}

// httpStatus clamps a business code into a usable HTTP status line.
func httpStatus(code int) int {
	if code >= 100 && code <= 599 {
		return code
	}
	return http.StatusOK
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("writing response")
	}
}
