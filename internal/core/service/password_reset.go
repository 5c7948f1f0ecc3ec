package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/ports"
)

// ResetRequest is the outcome of asking for a reset token: either a message
// or the roles the email is registered under.
type ResetRequest struct {
	Message string
	Roles   []domain.Role
}

func (r ResetRequest) NeedsRole() bool { return len(r.Roles) > 0 }

type resetEmail struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordReset drives the two-step reset flow. The email and role survive
// restarts between requesting the token and confirming it.
type PasswordReset struct {
	auth   ports.AuthGateway
	drafts *Drafts
	logger zerolog.Logger
}

func NewPasswordReset(auth ports.AuthGateway, drafts *Drafts, logger zerolog.Logger) *PasswordReset {
	return &PasswordReset{auth: auth, drafts: drafts, logger: logger}
}

// Request asks the server to email a reset token.
func (p *PasswordReset) Request(ctx context.Context, email string, role domain.Role) (*ResetRequest, error) {
	email = strings.TrimSpace(email)
	if err := validate.Struct(resetEmail{Email: email}); err != nil {
		return nil, domain.NewValidationError("email", "enter a valid email")
	}
	res, err := p.auth.RequestPasswordReset(ctx, email, role)
	if err != nil {
		return nil, err
	}
	if res.SelectRole {
		return &ResetRequest{Message: "This email belongs to several accounts; choose one.", Roles: res.Roles}, nil
	}
	if role == "" {
		role = res.Role
	}
	if err := p.drafts.SavePasswordReset(ctx, PasswordResetDraft{Email: email, Role: role}); err != nil {
		p.logger.Warn().Err(err).Msg("could not keep password reset draft")
	}
	return &ResetRequest{Message: orDefault(res.Message, "A reset token was sent to your email.")}, nil
}

// Pending returns the draft left by Request, or an empty one.
func (p *PasswordReset) Pending(ctx context.Context) (PasswordResetDraft, error) {
	d, err := p.drafts.LoadPasswordReset(ctx)
	if err != nil {
		return PasswordResetDraft{}, err
	}
	return *d, nil
}

// Confirm sets the new password. A confirmation mismatch is refused before
// anything is sent.
func (p *PasswordReset) Confirm(ctx context.Context, token, newPassword, confirm string) (string, error) {
	if newPassword != confirm {
		return "", domain.NewValidationError("confirm", "passwords do not match")
	}
	draft, err := p.Pending(ctx)
	if err != nil {
		return "", err
	}
	in := ports.PasswordResetConfirm{
		Email:       draft.Email,
		Role:        draft.Role,
		Token:       strings.TrimSpace(token),
		NewPassword: newPassword,
	}
	if in.Email == "" {
		return "", domain.NewValidationError("email", "request a reset token first")
	}
	if err := validate.Struct(in); err != nil {
		return "", err
	}
	msg, err := p.auth.ConfirmPasswordReset(ctx, in)
	if err != nil {
		return "", err
	}
	if err := p.drafts.ClearPasswordReset(ctx); err != nil {
		p.logger.Warn().Err(err).Msg("could not clear password reset draft")
	}
	return orDefault(msg, "Password updated."), nil
}
