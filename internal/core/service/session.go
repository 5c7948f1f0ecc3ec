package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/ports"
)

// SessionState is where the client is in the authentication flow.
type SessionState int

const (
	StateAnonymous SessionState = iota
	StateSelectingRole
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateSelectingRole:
		return "selecting-role"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// LoginOutcome is either a signed-in identity or the list of roles the
// account may sign in as.
type LoginOutcome struct {
	Identity *domain.Identity
	Roles    []domain.Role
}

func (o LoginOutcome) NeedsRole() bool { return o.Identity == nil && len(o.Roles) > 0 }

// Session owns the current identity. Every successful transition refreshes
// the dashboard cache; leaving the session clears it.
type Session struct {
	auth   ports.AuthGateway
	cache  *DashboardCache
	logger zerolog.Logger

	mu       sync.Mutex
	identity *domain.Identity
	pending  *ports.LoginInput
	roles    []domain.Role
}

func NewSession(auth ports.AuthGateway, cache *DashboardCache, logger zerolog.Logger) *Session {
	return &Session{auth: auth, cache: cache, logger: logger}
}

// LoadIdentity asks the server who is signed in. An unauthorized answer is
// an anonymous session, not an error.
func (s *Session) LoadIdentity(ctx context.Context) (*domain.Identity, error) {
	payload, err := s.auth.FetchSession(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			s.become(ctx, nil)
			return nil, nil
		}
		return nil, err
	}
	identity := payload.Identity()
	s.become(ctx, identity)
	return identity, nil
}

// Login signs in. When the credentials map to several accounts the session
// moves to role selection and keeps the credentials in memory for ChooseRole.
func (s *Session) Login(ctx context.Context, username, password string, role domain.Role) (*LoginOutcome, error) {
	in := ports.LoginInput{Username: strings.TrimSpace(username), Password: password, Role: role}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	res, err := s.auth.Login(ctx, in)
	if err != nil {
		s.logger.Info().Err(err).Str("username", in.Username).Msg("login failed")
		return nil, err
	}
	if res.SelectRole {
		s.mu.Lock()
		s.pending = &in
		s.roles = append([]domain.Role(nil), res.Roles...)
		s.mu.Unlock()
		return &LoginOutcome{Roles: res.Roles}, nil
	}
	identity := res.Session.Identity()
	if identity == nil {
		return nil, domain.ErrUnauthorized
	}
	s.become(ctx, identity)
	return &LoginOutcome{Identity: identity}, nil
}

// PendingRoles lists the roles offered by the last login, if one is pending.
func (s *Session) PendingRoles() []domain.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Role(nil), s.roles...)
}

// ChooseRole completes a login that required a role choice.
func (s *Session) ChooseRole(ctx context.Context, role domain.Role) (*domain.Identity, error) {
	s.mu.Lock()
	pending := s.pending
	s.mu.Unlock()
	if pending == nil {
		return nil, domain.ErrRoleSelectionRequired
	}
	if !role.Valid() {
		return nil, domain.NewValidationError("role", "choose one of the offered roles")
	}
	out, err := s.Login(ctx, pending.Username, pending.Password, role)
	if err != nil {
		return nil, err
	}
	if out.NeedsRole() {
		return nil, domain.ErrRoleSelectionRequired
	}
	return out.Identity, nil
}

func (s *Session) GuestLogin(ctx context.Context) (*domain.Identity, error) {
	payload, err := s.auth.GuestLogin(ctx)
	if err != nil {
		return nil, err
	}
	identity := payload.Identity()
	if identity == nil {
		return nil, domain.ErrUnauthorized
	}
	s.become(ctx, identity)
	return identity, nil
}

// Register self-registers an administrator or a customer. Businesses go
// through the signup wizard.
func (s *Session) Register(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error) {
	if in.Role == domain.RoleBusiness {
		return nil, domain.NewValidationError("role", "businesses sign up through the registration wizard")
	}
	if !in.Role.Valid() {
		return nil, domain.NewValidationError("role", "choose a role to register")
	}
	in.Email = strings.TrimSpace(in.Email)
	in.LegalName = strings.TrimSpace(in.LegalName)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.IsCompany && in.LegalName == "" {
		return nil, domain.NewValidationError("razon_social", "legal name is required for a company")
	}
	payload, err := s.auth.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	identity := payload.Identity()
	s.become(ctx, identity)
	return identity, nil
}

// SwitchRole moves the session to another role of the same account. On
// failure the current identity is kept.
func (s *Session) SwitchRole(ctx context.Context, role domain.Role) (*domain.Identity, error) {
	current := s.Identity()
	if current == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if role == current.Role {
		return current, nil
	}
	payload, err := s.auth.SwitchRole(ctx, role)
	if err != nil {
		return nil, err
	}
	identity := payload.Identity()
	if identity == nil {
		return nil, domain.ErrUnauthorized
	}
	s.become(ctx, identity)
	return identity, nil
}

// Logout always ends in an anonymous session, whatever the server answers.
func (s *Session) Logout(ctx context.Context) {
	if err := s.auth.Logout(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("logout request failed")
	}
	s.mu.Lock()
	s.identity, s.pending, s.roles = nil, nil, nil
	s.mu.Unlock()
	s.cache.Clear()
}

// ApplyProfile swaps in an updated profile of the current role.
func (s *Session) ApplyProfile(p domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil || p == nil || p.Role() != s.identity.Role {
		return
	}
	next := *s.identity
	next.Profile = p
	s.identity = &next
}

// Identity returns the signed-in identity, nil when anonymous.
func (s *Session) Identity() *domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.identity != nil:
		return StateAuthenticated
	case s.pending != nil:
		return StateSelectingRole
	default:
		return StateAnonymous
	}
}

// Require returns the identity if it has one of roles. With no roles any
// signed-in identity passes.
func (s *Session) Require(roles ...domain.Role) (*domain.Identity, error) {
	identity := s.Identity()
	if identity == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if len(roles) == 0 {
		return identity, nil
	}
	for _, r := range roles {
		if identity.Role == r {
			return identity, nil
		}
	}
	return nil, domain.ErrForbidden
}

func (s *Session) become(ctx context.Context, identity *domain.Identity) {
	s.mu.Lock()
	s.identity = identity
	s.pending, s.roles = nil, nil
	s.mu.Unlock()
	if identity != nil {
		s.logger.Debug().Str("role", identity.Role.String()).Str("account", identity.Key()).Msg("session established")
	}
	// Fetch failures stay in the cache and surface on the dashboard screen.
	_, _ = s.cache.Refresh(ctx, identity)
}
