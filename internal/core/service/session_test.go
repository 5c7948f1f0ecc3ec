package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/ports"
)

var (
	dualRoles   = []domain.Role{domain.RoleAdmin, domain.RoleCustomer}
	customerRow = domain.CustomerProfile{ID: 5, Name: "Ana", PaternalSurname: "Rojas", Email: "ana@portal.bo"}
)

func newTestSession(auth *stubAuth) (*Session, *stubDashboard) {
	dash := staticDashboard(adminDashboard())
	return NewSession(auth, NewDashboardCache(dash, zerolog.Nop()), zerolog.Nop()), dash
}

func TestSession_LoginWithTwoRolesAsksForRole(t *testing.T) {
	auth := &stubAuth{login: func(in ports.LoginInput) (*ports.LoginResult, error) {
		if in.Role == "" {
			return &ports.LoginResult{SelectRole: true, Roles: dualRoles}, nil
		}
		return &ports.LoginResult{Session: &ports.SessionPayload{Role: in.Role, Profile: customerRow, AvailableRoles: dualRoles}}, nil
	}}
	s, dash := newTestSession(auth)
	ctx := context.Background()

	out, err := s.Login(ctx, "ana", "secreto1", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !out.NeedsRole() || len(out.Roles) != 2 {
		t.Fatalf("expected a role choice, got %+v", out)
	}
	if s.State() != StateSelectingRole || s.Identity() != nil {
		t.Fatalf("expected role selection state, got %v", s.State())
	}
	if dash.calls != 0 {
		t.Fatalf("dashboard must not load before a role is chosen")
	}

	identity, err := s.ChooseRole(ctx, domain.RoleCustomer)
	if err != nil {
		t.Fatalf("ChooseRole: %v", err)
	}
	if identity.Role != domain.RoleCustomer || s.State() != StateAuthenticated {
		t.Fatalf("unexpected identity %+v state %v", identity, s.State())
	}
	if last := auth.loginCalls[len(auth.loginCalls)-1]; last.Username != "ana" || last.Password != "secreto1" || last.Role != domain.RoleCustomer {
		t.Fatalf("ChooseRole must replay the pending credentials, got %+v", last)
	}
	if dash.calls != 1 {
		t.Fatalf("expected dashboard refresh after sign-in, calls=%d", dash.calls)
	}
}

func TestSession_LoginValidatesBeforeRequest(t *testing.T) {
	auth := &stubAuth{}
	s, _ := newTestSession(auth)
	_, err := s.Login(context.Background(), "  ", "x", "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(auth.loginCalls) != 0 {
		t.Fatalf("no request expected")
	}
}

func TestSession_ChooseRoleWithoutPendingLogin(t *testing.T) {
	s, _ := newTestSession(&stubAuth{})
	if _, err := s.ChooseRole(context.Background(), domain.RoleAdmin); !errors.Is(err, domain.ErrRoleSelectionRequired) {
		t.Fatalf("expected ErrRoleSelectionRequired, got %v", err)
	}
}

func TestSession_LoadIdentityAnonymous(t *testing.T) {
	auth := &stubAuth{fetch: func() (*ports.SessionPayload, error) {
		return nil, &domain.APIError{Status: http.StatusUnauthorized, Kind: domain.ErrUnauthorized}
	}}
	s, _ := newTestSession(auth)
	identity, err := s.LoadIdentity(context.Background())
	if err != nil || identity != nil || s.State() != StateAnonymous {
		t.Fatalf("expected anonymous session, got %v %v", identity, err)
	}
}

func TestSession_SwitchRoleFailureKeepsIdentity(t *testing.T) {
	auth := &stubAuth{
		fetch: func() (*ports.SessionPayload, error) {
			return &ports.SessionPayload{Role: domain.RoleAdmin, Profile: adminSelf, AvailableRoles: dualRoles}, nil
		},
		switchRole: func(domain.Role) (*ports.SessionPayload, error) {
			return nil, &domain.APIError{Status: http.StatusForbidden, Message: "rol no disponible", Kind: domain.ErrForbidden}
		},
	}
	s, _ := newTestSession(auth)
	ctx := context.Background()
	if _, err := s.LoadIdentity(ctx); err != nil {
		t.Fatalf("LoadIdentity: %v", err)
	}
	if _, err := s.SwitchRole(ctx, domain.RoleCustomer); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if got := s.Identity(); got == nil || got.Role != domain.RoleAdmin {
		t.Fatalf("identity changed after failed switch: %+v", got)
	}
}

func TestSession_SwitchRoleSuccess(t *testing.T) {
	auth := &stubAuth{
		fetch: func() (*ports.SessionPayload, error) {
			return &ports.SessionPayload{Role: domain.RoleAdmin, Profile: adminSelf, AvailableRoles: dualRoles}, nil
		},
		switchRole: func(r domain.Role) (*ports.SessionPayload, error) {
			return &ports.SessionPayload{Role: r, Profile: customerRow, AvailableRoles: dualRoles}, nil
		},
	}
	s, dash := newTestSession(auth)
	ctx := context.Background()
	_, _ = s.LoadIdentity(ctx)
	identity, err := s.SwitchRole(ctx, domain.RoleCustomer)
	if err != nil || identity.Role != domain.RoleCustomer {
		t.Fatalf("SwitchRole: %+v %v", identity, err)
	}
	if dash.calls != 2 {
		t.Fatalf("expected a dashboard refresh per transition, calls=%d", dash.calls)
	}
}

func TestSession_LogoutAlwaysClears(t *testing.T) {
	auth := &stubAuth{
		fetch:  func() (*ports.SessionPayload, error) { return adminPayload(), nil },
		logout: func() error { return errors.New("cannot reach the server") },
	}
	s, _ := newTestSession(auth)
	ctx := context.Background()
	_, _ = s.LoadIdentity(ctx)

	s.Logout(ctx)
	if s.Identity() != nil || s.State() != StateAnonymous {
		t.Fatalf("expected anonymous after logout")
	}
	if got, _ := s.cache.Snapshot(); got != nil {
		t.Fatalf("dashboard cache survived logout")
	}
}

func TestSession_RegisterRejectsBusinessRole(t *testing.T) {
	auth := &stubAuth{}
	s, _ := newTestSession(auth)
	_, err := s.Register(context.Background(), ports.RegisterInput{
		Role: domain.RoleBusiness, Name: "Sol", PaternalSurname: "Q", Email: "sol@pan.bo", Password: "secreto1",
	})
	if !errors.Is(err, domain.ErrValidation) || auth.registerCalls != 0 {
		t.Fatalf("expected client-side rejection, got %v (calls=%d)", err, auth.registerCalls)
	}
}

func TestSession_RegisterCompanyNeedsLegalName(t *testing.T) {
	auth := &stubAuth{register: func(in ports.RegisterInput) (*ports.SessionPayload, error) {
		return &ports.SessionPayload{Role: in.Role, Profile: customerRow}, nil
	}}
	s, _ := newTestSession(auth)
	in := ports.RegisterInput{
		Role: domain.RoleCustomer, Name: "Ana", PaternalSurname: "Rojas", Email: "ana@portal.bo", Password: "secreto1", IsCompany: true,
	}
	if _, err := s.Register(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	in.LegalName = "Rojas SRL"
	identity, err := s.Register(context.Background(), in)
	if err != nil || identity == nil || identity.Role != domain.RoleCustomer {
		t.Fatalf("Register: %+v %v", identity, err)
	}
}

func TestSession_ApplyProfileIgnoresOtherRoles(t *testing.T) {
	s, _ := signedInAdmin(t, staticDashboard(adminDashboard()))
	s.ApplyProfile(customerRow)
	if _, ok := s.Identity().Profile.(domain.AdminProfile); !ok {
		t.Fatalf("customer profile must not replace an admin identity")
	}
	renamed := adminSelf
	renamed.Name = "Anita"
	s.ApplyProfile(renamed)
	if got := s.Identity().DisplayName(); got != "Anita Rojas" {
		t.Fatalf("profile not applied, display name %q", got)
	}
}

func TestSession_Require(t *testing.T) {
	s, _ := newTestSession(&stubAuth{})
	if _, err := s.Require(domain.RoleAdmin); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	s, _ = signedInAdmin(t, staticDashboard(adminDashboard()))
	if _, err := s.Require(domain.RoleBusiness); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	id, err := s.Require()
	if err != nil || id == nil || id.Role != domain.RoleAdmin {
		t.Fatalf("any role should pass with no roles given: %+v %v", id, err)
	}
}
