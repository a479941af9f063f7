// Package config - defaults.go centralizes magic numbers and default values.
//
// DESIGN: All default values that appear in multiple places should be defined here.
// This makes configuration more maintainable and auditable.
package config

import "time"

// =============================================================================
// UPSTREAM TASK SERVICE
// =============================================================================

// DefaultTaskServiceBaseURL is the upstream task microservice base URL.
const DefaultTaskServiceBaseURL = "http://task-service:8200"

// DefaultUserAgent identifies gateway traffic in upstream access logs.
const DefaultUserAgent = "task-gateway/1.0"

// =============================================================================
// TIMEOUTS
// =============================================================================

// DefaultConnectTimeout is the TCP dial timeout.
const DefaultConnectTimeout = 5 * time.Second

// DefaultReadTimeout bounds the wait for upstream response headers.
const DefaultReadTimeout = 30 * time.Second

// DefaultWriteTimeout bounds the request write (TLS handshake included).
const DefaultWriteTimeout = 10 * time.Second

// DefaultPoolTimeout is how long a call may wait for a pooled connection
// before giving up.
const DefaultPoolTimeout = 10 * time.Second

// =============================================================================
// RETRY POLICY
// =============================================================================

// DefaultMaxRetries is the number of retries after the initial attempt.
// Only transport-level failures are retried; HTTP error statuses are not.
const DefaultMaxRetries = 3

// DefaultBackoffSchedule returns the per-attempt retry delays.
// The last entry repeats when attempts exceed the schedule length.
// No jitter: the upstream is a single fixed instance, not a balanced pool.
func DefaultBackoffSchedule() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// =============================================================================
// CONNECTION POOL
// =============================================================================

// DefaultMaxConnections caps total outstanding connections to the upstream.
const DefaultMaxConnections = 100

// DefaultMaxKeepAlive caps idle keep-alive connections retained in the pool.
const DefaultMaxKeepAlive = 20

// DefaultIdleConnTimeout is how long an idle connection stays pooled.
const DefaultIdleConnTimeout = 90 * time.Second

// =============================================================================
// HEALTH PROBE
// =============================================================================

// DefaultHealthCacheTTL is how long a health probe result is reused before
// the upstream is asked again.
const DefaultHealthCacheTTL = 30 * time.Second

// =============================================================================
// DIAGNOSTICS
// =============================================================================

// MaxErrorBodyLen limits upstream body length embedded in error messages.
const MaxErrorBodyLen = 500

// =============================================================================
// SERVER (demo binary)
// =============================================================================

// DefaultServerAddr is the listen address for the demo service binary.
const DefaultServerAddr = ":8080"
