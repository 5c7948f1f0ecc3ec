package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/ports"
)

func (c *Client) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	return c.plans(ctx, "plan_list", "/api/plans")
}

func (c *Client) ListAllPlans(ctx context.Context) ([]domain.Plan, error) {
	return c.plans(ctx, "plan_list_admin", "/api/admin/plans")
}

func (c *Client) plans(ctx context.Context, op, path string) ([]domain.Plan, error) {
	var body struct {
		Plans []domain.Plan `json:"plans"`
	}
	if _, err := c.call(ctx, op, http.MethodGet, path, nil, &body); err != nil {
		return nil, err
	}
	return body.Plans, nil
}

func (c *Client) CreatePlan(ctx context.Context, in ports.PlanInput) (string, error) {
	return c.message(ctx, "plan_create", http.MethodPost, "/api/admin/plans", in)
}

func (c *Client) UpdatePlan(ctx context.Context, id int, in ports.PlanInput) (string, error) {
	return c.message(ctx, "plan_update", http.MethodPatch, fmt.Sprintf("/api/admin/plans/%d", id), in)
}

func (c *Client) SetPlanStatus(ctx context.Context, id int, status domain.Status) (string, error) {
	return c.message(ctx, "plan_status", http.MethodPatch, fmt.Sprintf("/api/admin/plans/%d", id), map[string]string{"estado": string(status)})
}

func (c *Client) DeletePlan(ctx context.Context, id int) (string, error) {
	return c.message(ctx, "plan_delete", http.MethodDelete, fmt.Sprintf("/api/admin/plans/%d", id), nil)
}

func (c *Client) message(ctx context.Context, op, method, path string, in any) (string, error) {
	var ans messageOnly
	if _, err := c.call(ctx, op, method, path, in, &ans); err != nil {
		return "", err
	}
	return ans.Message, nil
}

// Compile-time checks that the client satisfies every gateway port.
var (
	_ ports.AuthGateway       = (*Client)(nil)
	_ ports.AccountGateway    = (*Client)(nil)
	_ ports.DashboardGateway  = (*Client)(nil)
	_ ports.PlanGateway       = (*Client)(nil)
	_ ports.OnboardingGateway = (*Client)(nil)
)
