package gateway

import (
	"context"
	"net/http"
	"time"
)

// Healthy probes the upstream health endpoint, reusing the cached result
// within the configured TTL. The cache is explicit client state guarded by
// its own lock, shared safely across concurrent callers.
func (c *Client) Healthy(ctx context.Context) bool {
	c.healthMu.RLock()
	if !c.healthAt.IsZero() && time.Since(c.healthAt) < c.cfg.HealthCacheTTL {
		ok := c.healthOK
		c.healthMu.RUnlock()
		return ok
	}
	c.healthMu.RUnlock()

	res, gwErr := c.transport.do(ctx, http.MethodGet, "health/", nil, nil)
	ok := gwErr == nil && res.StatusCode == http.StatusOK

	c.healthMu.Lock()
	c.healthOK = ok
	c.healthAt = time.Now()
	c.healthMu.Unlock()

	return ok
}
