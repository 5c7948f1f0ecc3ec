package ports

import (
	"context"

	"github.com/microempresa/portal-client/internal/core/domain"
)

// SessionPayload is what the API returns for an established session.
type SessionPayload struct {
	Role           domain.Role
	Profile        domain.Profile
	AvailableRoles []domain.Role
}

// Identity converts the payload, nil when nobody is signed in.
func (p *SessionPayload) Identity() *domain.Identity {
	if p == nil || p.Profile == nil || !p.Role.Valid() {
		return nil
	}
	return &domain.Identity{Role: p.Role, Profile: p.Profile, AvailableRoles: p.AvailableRoles}
}

type LoginInput struct {
	Username string      `json:"username" validate:"required"`
	Password string      `json:"password" validate:"required"`
	Role     domain.Role `json:"role,omitempty"`
}

// LoginResult is either a session or a request to pick one of Roles.
type LoginResult struct {
	Session    *SessionPayload
	SelectRole bool
	Roles      []domain.Role
}

// RegisterInput covers self-registration of administrators and customers.
type RegisterInput struct {
	Role            domain.Role `json:"role" validate:"required"`
	Name            string      `json:"nombre" validate:"required"`
	PaternalSurname string      `json:"apellido_paterno" validate:"required"`
	MaternalSurname string      `json:"apellido_materno"`
	Email           string      `json:"email" validate:"required,email"`
	Password        string      `json:"password" validate:"required,min=6"`
	LegalName       string      `json:"razon_social,omitempty"`
	IsCompany       bool        `json:"es_empresa,omitempty"`
}

// PasswordResetResult is either a confirmation or a role choice.
type PasswordResetResult struct {
	Message    string
	Role       domain.Role
	SelectRole bool
	Roles      []domain.Role
}

type PasswordResetConfirm struct {
	Email       string      `json:"email" validate:"required,email"`
	Role        domain.Role `json:"role,omitempty"`
	Token       string      `json:"token" validate:"required"`
	NewPassword string      `json:"new_password" validate:"required"`
}

// AuthGateway is the authentication surface of the platform API.
type AuthGateway interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Register(ctx context.Context, in RegisterInput) (*SessionPayload, error)
	GuestLogin(ctx context.Context) (*SessionPayload, error)
	// FetchSession returns a payload with a nil profile when anonymous.
	FetchSession(ctx context.Context) (*SessionPayload, error)
	SwitchRole(ctx context.Context, role domain.Role) (*SessionPayload, error)
	Logout(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string, role domain.Role) (*PasswordResetResult, error)
	ConfirmPasswordReset(ctx context.Context, in PasswordResetConfirm) (string, error)
}
