package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/ports"
)

// PendingItem is a signup awaiting review with its proof resolved to a link.
type PendingItem struct {
	domain.PendingSignup
	ProofLink string
}

// ReviewQueue lists signups waiting for approval and records decisions.
type ReviewQueue struct {
	onboarding ports.OnboardingGateway
	session    *Session
	cache      *DashboardCache
	apiBase    string
	logger     zerolog.Logger
}

func NewReviewQueue(onboarding ports.OnboardingGateway, session *Session, cache *DashboardCache, apiBase string, logger zerolog.Logger) *ReviewQueue {
	return &ReviewQueue{onboarding: onboarding, session: session, cache: cache, apiBase: apiBase, logger: logger}
}

func (q *ReviewQueue) List(ctx context.Context) ([]PendingItem, error) {
	if _, err := q.session.Require(domain.RoleAdmin); err != nil {
		return nil, err
	}
	pending, err := q.onboarding.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]PendingItem, 0, len(pending))
	for _, p := range pending {
		items = append(items, PendingItem{PendingSignup: p, ProofLink: p.ProofLink(q.apiBase)})
	}
	return items, nil
}

// Approve activates the business and reloads the queue.
func (q *ReviewQueue) Approve(ctx context.Context, tenantID int) (string, []PendingItem, error) {
	return q.decide(ctx, "approve", tenantID, q.onboarding.Approve, "Approved.")
}

// Reject turns the signup down and reloads the queue.
func (q *ReviewQueue) Reject(ctx context.Context, tenantID int) (string, []PendingItem, error) {
	return q.decide(ctx, "reject", tenantID, q.onboarding.Reject, "Rejected.")
}

func (q *ReviewQueue) decide(ctx context.Context, action string, tenantID int, call func(context.Context, int) (string, error), fallback string) (string, []PendingItem, error) {
	if _, err := q.session.Require(domain.RoleAdmin); err != nil {
		return "", nil, err
	}
	msg, err := call(ctx, tenantID)
	if err != nil {
		q.logger.Info().Err(err).Str("action", action).Int("tenant_id", tenantID).Msg("review decision failed")
		return "", nil, err
	}
	q.logger.Info().Str("action", action).Int("tenant_id", tenantID).Msg("review decision recorded")
	if _, err := q.cache.Invalidate(ctx); err != nil {
		q.logger.Warn().Err(err).Msg("dashboard reload failed")
	}
	items, err := q.List(ctx)
	if err != nil {
		return orDefault(msg, fallback), nil, err
	}
	return orDefault(msg, fallback), items, nil
}
