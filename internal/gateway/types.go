// Package gateway is the client façade over the task microservice.
//
// FILES:
//   - client.go:    GatewayClient façade and call orchestration
//   - transport.go: pooled HTTP transport with bounded retries
//   - errors.go:    typed failure taxonomy
//   - validate.go:  identifier precondition checks
//   - health.go:    TTL-cached upstream health probe
//   - types.go:     call request/response shapes
package gateway

import (
	"encoding/json"

	"github.com/taskforge/task-gateway/internal/rewrite"
)

// CallRequest describes one logical call as supplied by a route handler.
// Constructed fresh per call; never retained after Call returns.
type CallRequest struct {
	Method      rewrite.Method
	LogicalPath string
	UserID      string
	PathParams  map[string]string
	Body        map[string]any
	Query       map[string]any
}

// CallResponse is the normalized envelope, the only shape handlers ever
// see. Success mirrors the business code: true exactly when the code is in
// the 2xx range.
type CallResponse struct {
	Code    int             `json:"code"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}
