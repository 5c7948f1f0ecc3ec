package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/ports"
)

// sessionBody is shared by login, register, guest-login, me and switch-role.
type sessionBody struct {
	User           json.RawMessage `json:"user"`
	Role           *string         `json:"role"`
	AvailableRoles []string        `json:"available_roles"`
	SelectRole     bool            `json:"select_role"`
	Roles          []string        `json:"roles"`
}

func (b sessionBody) payload() (*ports.SessionPayload, error) {
	if b.Role == nil || *b.Role == "" {
		return &ports.SessionPayload{}, nil
	}
	role, err := domain.ParseRole(*b.Role)
	if err != nil {
		return nil, err
	}
	profile, err := domain.DecodeProfile(role, b.User)
	if err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &ports.SessionPayload{
		Role:           role,
		Profile:        profile,
		AvailableRoles: domain.ParseRoles(b.AvailableRoles),
	}, nil
}

func (c *Client) session(ctx context.Context, op, method, path string, in any) (*ports.SessionPayload, error) {
	var body sessionBody
	if _, err := c.call(ctx, op, method, path, in, &body); err != nil {
		return nil, err
	}
	p, err := body.payload()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (c *Client) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	var body sessionBody
	if _, err := c.call(ctx, "login", http.MethodPost, "/api/login", in, &body); err != nil {
		return nil, err
	}
	if body.SelectRole {
		return &ports.LoginResult{SelectRole: true, Roles: domain.ParseRoles(body.Roles)}, nil
	}
	p, err := body.payload()
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &ports.LoginResult{Session: p}, nil
}

func (c *Client) Register(ctx context.Context, in ports.RegisterInput) (*ports.SessionPayload, error) {
	return c.session(ctx, "register", http.MethodPost, "/api/register", in)
}

func (c *Client) GuestLogin(ctx context.Context) (*ports.SessionPayload, error) {
	return c.session(ctx, "guest_login", http.MethodPost, "/api/guest-login", nil)
}

func (c *Client) FetchSession(ctx context.Context) (*ports.SessionPayload, error) {
	return c.session(ctx, "me", http.MethodGet, "/api/me", nil)
}

func (c *Client) SwitchRole(ctx context.Context, role domain.Role) (*ports.SessionPayload, error) {
	return c.session(ctx, "switch_role", http.MethodPost, "/api/switch-role", map[string]string{"role": role.String()})
}

// Logout ends the server session and drops local cookies even when the
// server could not be reached.
func (c *Client) Logout(ctx context.Context) error {
	defer c.ResetCookies()
	_, err := c.call(ctx, "logout", http.MethodPost, "/api/logout", nil, nil)
	return err
}

type resetRequest struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

type resetAnswer struct {
	Message    string   `json:"message"`
	Role       string   `json:"role"`
	SelectRole bool     `json:"select_role"`
	Roles      []string `json:"roles"`
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string, role domain.Role) (*ports.PasswordResetResult, error) {
	var ans resetAnswer
	in := resetRequest{Email: email, Role: role.String()}
	if _, err := c.call(ctx, "password_reset_request", http.MethodPost, "/api/password-reset/request", in, &ans); err != nil {
		return nil, err
	}
	out := &ports.PasswordResetResult{
		Message:    ans.Message,
		SelectRole: ans.SelectRole,
		Roles:      domain.ParseRoles(ans.Roles),
	}
	if r, err := domain.ParseRole(ans.Role); err == nil {
		out.Role = r
	}
	return out, nil
}

func (c *Client) ConfirmPasswordReset(ctx context.Context, in ports.PasswordResetConfirm) (string, error) {
	var ans messageOnly
	if _, err := c.call(ctx, "password_reset_confirm", http.MethodPost, "/api/password-reset/confirm", in, &ans); err != nil {
		return "", err
	}
	return ans.Message, nil
}
