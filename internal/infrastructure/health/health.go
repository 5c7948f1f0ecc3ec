// Package health probes the dependencies of the client: the platform API
// and the draft store.
package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/microempresa/portal-client/internal/api"
)

const defaultTimeout = 3 * time.Second

// Probe returns nil when the dependency is usable.
type Probe func(ctx context.Context) error

// Check is one named probe.
type Check struct {
	Name  string
	Probe Probe
}

type DependencyStatus struct {
	Status  string        `json:"status"`
	Error   string        `json:"error,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

// Report is the readiness of every dependency. Status is "ok" or "degraded".
type Report struct {
	Status       string                      `json:"status"`
	Dependencies map[string]DependencyStatus `json:"dependencies"`
}

func (r Report) Healthy() bool { return r.Status == "ok" }

// Checker runs a fixed set of checks under a shared timeout.
type Checker struct {
	checks  []Check
	timeout time.Duration
	logger  zerolog.Logger
}

func NewChecker(logger zerolog.Logger, timeout time.Duration, checks ...Check) *Checker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Checker{checks: checks, timeout: timeout, logger: logger}
}

// Readiness runs every check in order. A failing check does not stop the
// others.
func (c *Checker) Readiness(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	deps := make(map[string]DependencyStatus, len(c.checks))
	healthy := true
	for _, chk := range c.checks {
		start := time.Now()
		err := chk.Probe(ctx)
		st := DependencyStatus{Status: "ok", Elapsed: time.Since(start)}
		if err != nil {
			st.Status = "unhealthy"
			st.Error = err.Error()
			healthy = false
			c.logger.Warn().Err(err).Str("dependency", chk.Name).Msg("dependency check failed")
		}
		deps[chk.Name] = st
	}

	status := "ok"
	if !healthy {
		status = "degraded"
	}
	return Report{Status: status, Dependencies: deps}
}

// APIProbe asks the API for the current session. Any answer below 500 means
// the API is up, an anonymous 401 included.
func APIProbe(c *api.Client) Probe {
	return func(ctx context.Context) error {
		resp, err := c.Do(ctx, "health", http.MethodGet, "/api/me", nil)
		if err != nil {
			return err
		}
		if resp.Meta.Status >= http.StatusInternalServerError {
			return fmt.Errorf("api answered %d", resp.Meta.Status)
		}
		return nil
	}
}

// Pinger is anything with a liveness ping, such as a draft store.
type Pinger interface {
	Ping(ctx context.Context) error
}

func StoreProbe(p Pinger) Probe {
	return p.Ping
}
