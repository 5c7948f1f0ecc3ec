package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/ports"
)

// DashboardCache holds the dashboard of the current identity in a single slot.
// Each Refresh bumps a generation; a response is stored only if no newer
// refresh started while it was in flight.
type DashboardCache struct {
	gw     ports.DashboardGateway
	logger zerolog.Logger

	mu       sync.Mutex
	gen      uint64
	key      string
	identity *domain.Identity
	data     *domain.Dashboard
	lastErr  error
}

func NewDashboardCache(gw ports.DashboardGateway, logger zerolog.Logger) *DashboardCache {
	return &DashboardCache{gw: gw, logger: logger}
}

// Refresh fetches the dashboard for identity. A nil identity clears the slot.
func (c *DashboardCache) Refresh(ctx context.Context, identity *domain.Identity) (*domain.Dashboard, error) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.identity = identity
	if identity == nil {
		c.key, c.data, c.lastErr = "", nil, nil
		c.mu.Unlock()
		return nil, nil
	}
	c.key = identity.Key() + "|" + identity.Role.String()
	c.mu.Unlock()

	dash, err := c.gw.FetchDashboard(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.logger.Debug().Uint64("generation", gen).Msg("dropping superseded dashboard response")
		return c.data, c.lastErr
	}
	if err != nil {
		c.data, c.lastErr = nil, err
		c.logger.Warn().Err(err).Msg("dashboard fetch failed")
		return nil, err
	}
	c.data, c.lastErr = dash, nil
	return dash, nil
}

// Invalidate refetches for the identity the slot currently belongs to.
func (c *DashboardCache) Invalidate(ctx context.Context) (*domain.Dashboard, error) {
	c.mu.Lock()
	identity := c.identity
	c.mu.Unlock()
	return c.Refresh(ctx, identity)
}

// Snapshot returns the cached dashboard and the error of the last fetch.
func (c *DashboardCache) Snapshot() (*domain.Dashboard, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data, c.lastErr
}

// Key identifies whose dashboard is cached, empty when the slot is clear.
func (c *DashboardCache) Key() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.key
}

// Ensure returns the cached dashboard, fetching it when the slot is empty.
func (c *DashboardCache) Ensure(ctx context.Context) (*domain.Dashboard, error) {
	if dash, _ := c.Snapshot(); dash != nil {
		return dash, nil
	}
	return c.Invalidate(ctx)
}

func (c *DashboardCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.key, c.identity, c.data, c.lastErr = "", nil, nil, nil
}
