package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/ports"
)

func (c *Client) UpdateAdmin(ctx context.Context, id int, in ports.AdminUpdate) (*domain.AdminProfile, error) {
	var body struct {
		Admin domain.AdminProfile `json:"admin"`
	}
	if _, err := c.call(ctx, "admin_update", http.MethodPut, fmt.Sprintf("/api/admins/%d", id), in, &body); err != nil {
		return nil, err
	}
	return &body.Admin, nil
}

func (c *Client) ActivateAdmin(ctx context.Context, id int) error {
	_, err := c.call(ctx, "admin_activate", http.MethodPatch, fmt.Sprintf("/api/admins/%d/activate", id), nil, nil)
	return err
}

// DeactivateAdmin is a DELETE on the platform; the account is kept inactive.
func (c *Client) DeactivateAdmin(ctx context.Context, id int) error {
	_, err := c.call(ctx, "admin_deactivate", http.MethodDelete, fmt.Sprintf("/api/admins/%d", id), nil, nil)
	return err
}

func (c *Client) UpdateBusiness(ctx context.Context, tenantID int, in ports.BusinessUpdate) (*domain.BusinessProfile, error) {
	var body struct {
		Business domain.BusinessProfile `json:"microempresa"`
	}
	if _, err := c.call(ctx, "business_update", http.MethodPut, fmt.Sprintf("/api/microempresas/%d", tenantID), in, &body); err != nil {
		return nil, err
	}
	return &body.Business, nil
}

func (c *Client) ActivateBusiness(ctx context.Context, tenantID int) error {
	_, err := c.call(ctx, "business_activate", http.MethodPatch, fmt.Sprintf("/api/microempresas/%d/activate", tenantID), nil, nil)
	return err
}

func (c *Client) DeactivateBusiness(ctx context.Context, tenantID int) error {
	_, err := c.call(ctx, "business_deactivate", http.MethodPatch, fmt.Sprintf("/api/microempresas/%d/deactivate", tenantID), nil, nil)
	return err
}

func (c *Client) UpdateCustomer(ctx context.Context, id int, in ports.CustomerUpdate) (*domain.CustomerProfile, error) {
	var body struct {
		Customer domain.CustomerProfile `json:"cliente"`
	}
	if _, err := c.call(ctx, "customer_update", http.MethodPut, fmt.Sprintf("/api/clientes/%d", id), in, &body); err != nil {
		return nil, err
	}
	return &body.Customer, nil
}

func (c *Client) ActivateCustomer(ctx context.Context, id int) error {
	_, err := c.call(ctx, "customer_activate", http.MethodPatch, fmt.Sprintf("/api/clientes/%d/activate", id), nil, nil)
	return err
}

func (c *Client) DeactivateCustomer(ctx context.Context, id int) error {
	_, err := c.call(ctx, "customer_deactivate", http.MethodPatch, fmt.Sprintf("/api/clientes/%d/deactivate", id), nil, nil)
	return err
}

func (c *Client) ListCustomers(ctx context.Context) ([]domain.CustomerProfile, error) {
	var body struct {
		Customers []domain.CustomerProfile `json:"clientes"`
	}
	if _, err := c.call(ctx, "customer_list", http.MethodGet, "/api/clientes", nil, &body); err != nil {
		return nil, err
	}
	return body.Customers, nil
}

func (c *Client) CreateCustomer(ctx context.Context, in ports.CustomerCreate) error {
	_, err := c.call(ctx, "customer_create", http.MethodPost, "/api/clientes", in, nil)
	return err
}

type dashboardBody struct {
	Role          string                   `json:"role"`
	Counts        domain.DashboardCounts   `json:"counts"`
	Admins        []domain.AdminProfile    `json:"admins"`
	Microempresas json.RawMessage          `json:"microempresas"`
	Clientes      []domain.CustomerProfile `json:"clientes"`
	Microempresa  *domain.BusinessProfile  `json:"microempresa"`
}

// FetchDashboard decodes the role-shaped dashboard. The "microempresas" list
// holds full business records for administrators and summaries for customers.
func (c *Client) FetchDashboard(ctx context.Context) (*domain.Dashboard, error) {
	var body dashboardBody
	if _, err := c.call(ctx, "dashboard", http.MethodGet, "/api/dashboard", nil, &body); err != nil {
		return nil, err
	}
	role, err := domain.ParseRole(body.Role)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	d := &domain.Dashboard{
		Role:      role,
		Counts:    body.Counts,
		Admins:    body.Admins,
		Customers: body.Clientes,
		Business:  body.Microempresa,
	}
	if len(body.Microempresas) > 0 && string(body.Microempresas) != "null" {
		switch role {
		case domain.RoleAdmin:
			err = json.Unmarshal(body.Microempresas, &d.Businesses)
		case domain.RoleCustomer:
			err = json.Unmarshal(body.Microempresas, &d.Shops)
		}
		if err != nil {
			return nil, fmt.Errorf("dashboard: decode microempresas: %w", err)
		}
	}
	return d, nil
}
