package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory key/value store
// ---------------------------------------------------------------------------

type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	setErr error
}

func newMemStore() *memStore { return &memStore{data: make(map[string][]byte)} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return nil, ports.ErrKeyNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memStore) Ping(context.Context) error { return nil }

func (m *memStore) raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	return string(b), ok
}

// ---------------------------------------------------------------------------
// Gateway stubs: every method delegates to an optional function field
// ---------------------------------------------------------------------------

type stubAuth struct {
	login         func(ports.LoginInput) (*ports.LoginResult, error)
	register      func(ports.RegisterInput) (*ports.SessionPayload, error)
	guest         func() (*ports.SessionPayload, error)
	fetch         func() (*ports.SessionPayload, error)
	switchRole    func(domain.Role) (*ports.SessionPayload, error)
	logout        func() error
	resetRequest  func(email string, role domain.Role) (*ports.PasswordResetResult, error)
	resetConfirm  func(ports.PasswordResetConfirm) (string, error)
	loginCalls    []ports.LoginInput
	registerCalls int
}

func (s *stubAuth) Login(_ context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	s.loginCalls = append(s.loginCalls, in)
	return s.login(in)
}

func (s *stubAuth) Register(_ context.Context, in ports.RegisterInput) (*ports.SessionPayload, error) {
	s.registerCalls++
	return s.register(in)
}

func (s *stubAuth) GuestLogin(context.Context) (*ports.SessionPayload, error) { return s.guest() }

func (s *stubAuth) FetchSession(context.Context) (*ports.SessionPayload, error) { return s.fetch() }

func (s *stubAuth) SwitchRole(_ context.Context, r domain.Role) (*ports.SessionPayload, error) {
	return s.switchRole(r)
}

func (s *stubAuth) Logout(context.Context) error {
	if s.logout == nil {
		return nil
	}
	return s.logout()
}

func (s *stubAuth) RequestPasswordReset(_ context.Context, email string, role domain.Role) (*ports.PasswordResetResult, error) {
	return s.resetRequest(email, role)
}

func (s *stubAuth) ConfirmPasswordReset(_ context.Context, in ports.PasswordResetConfirm) (string, error) {
	return s.resetConfirm(in)
}

type stubDashboard struct {
	mu    sync.Mutex
	calls int
	fetch func(call int) (*domain.Dashboard, error)
}

func (s *stubDashboard) FetchDashboard(context.Context) (*domain.Dashboard, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()
	return s.fetch(call)
}

type stubAccounts struct {
	calls     []string
	failWith  error
	customers []domain.CustomerProfile
	created   []ports.CustomerCreate
	updates   []ports.CustomerUpdate
	admin     *domain.AdminProfile
	business  *domain.BusinessProfile
	adminIn   []ports.AdminUpdate
	bizIn     []ports.BusinessUpdate
}

func (s *stubAccounts) record(call string) error {
	s.calls = append(s.calls, call)
	return s.failWith
}

func (s *stubAccounts) UpdateAdmin(_ context.Context, _ int, in ports.AdminUpdate) (*domain.AdminProfile, error) {
	s.adminIn = append(s.adminIn, in)
	if err := s.record("UpdateAdmin"); err != nil {
		return nil, err
	}
	if s.admin != nil {
		return s.admin, nil
	}
	return &domain.AdminProfile{}, nil
}

func (s *stubAccounts) ActivateAdmin(context.Context, int) error   { return s.record("ActivateAdmin") }
func (s *stubAccounts) DeactivateAdmin(context.Context, int) error { return s.record("DeactivateAdmin") }

func (s *stubAccounts) UpdateBusiness(_ context.Context, _ int, in ports.BusinessUpdate) (*domain.BusinessProfile, error) {
	s.bizIn = append(s.bizIn, in)
	if err := s.record("UpdateBusiness"); err != nil {
		return nil, err
	}
	if s.business != nil {
		return s.business, nil
	}
	return &domain.BusinessProfile{}, nil
}

func (s *stubAccounts) ActivateBusiness(context.Context, int) error { return s.record("ActivateBusiness") }
func (s *stubAccounts) DeactivateBusiness(context.Context, int) error {
	return s.record("DeactivateBusiness")
}

func (s *stubAccounts) UpdateCustomer(_ context.Context, id int, in ports.CustomerUpdate) (*domain.CustomerProfile, error) {
	s.updates = append(s.updates, in)
	if err := s.record("UpdateCustomer"); err != nil {
		return nil, err
	}
	return &domain.CustomerProfile{ID: id, Name: in.Name, PaternalSurname: in.PaternalSurname, MaternalSurname: in.MaternalSurname, LegalName: in.LegalName}, nil
}

func (s *stubAccounts) ActivateCustomer(context.Context, int) error { return s.record("ActivateCustomer") }
func (s *stubAccounts) DeactivateCustomer(context.Context, int) error {
	return s.record("DeactivateCustomer")
}

func (s *stubAccounts) ListCustomers(context.Context) ([]domain.CustomerProfile, error) {
	if err := s.record("ListCustomers"); err != nil {
		return nil, err
	}
	return s.customers, nil
}

func (s *stubAccounts) CreateCustomer(_ context.Context, in ports.CustomerCreate) error {
	s.created = append(s.created, in)
	return s.record("CreateCustomer")
}

type stubPlans struct {
	plans     []domain.Plan
	listCalls int
	inputs    []ports.PlanInput
	calls     []string
	failWith  error
	block     chan struct{}
	started   chan struct{}
}

func (s *stubPlans) ListPlans(context.Context) ([]domain.Plan, error) {
	s.listCalls++
	if s.failWith != nil {
		return nil, s.failWith
	}
	return s.plans, nil
}

func (s *stubPlans) ListAllPlans(context.Context) ([]domain.Plan, error) {
	s.calls = append(s.calls, "ListAllPlans")
	return s.plans, s.failWith
}

func (s *stubPlans) CreatePlan(_ context.Context, in ports.PlanInput) (string, error) {
	if s.block != nil {
		if s.started != nil {
			s.started <- struct{}{}
		}
		<-s.block
	}
	s.inputs = append(s.inputs, in)
	s.calls = append(s.calls, "CreatePlan")
	return "", s.failWith
}

func (s *stubPlans) UpdatePlan(_ context.Context, _ int, in ports.PlanInput) (string, error) {
	s.inputs = append(s.inputs, in)
	s.calls = append(s.calls, "UpdatePlan")
	return "Plan actualizado", s.failWith
}

func (s *stubPlans) SetPlanStatus(_ context.Context, _ int, st domain.Status) (string, error) {
	s.calls = append(s.calls, "SetPlanStatus:"+string(st))
	return "", s.failWith
}

func (s *stubPlans) DeletePlan(context.Context, int) (string, error) {
	s.calls = append(s.calls, "DeletePlan")
	return "Plan desactivado", s.failWith
}

type stubOnboarding struct {
	start       func(call int, in ports.StartSignup) (*domain.StartResult, error)
	submit      func(ports.SubmitProof) (string, error)
	status      func(signupID int) (*domain.OnboardingStatus, error)
	pending     []domain.PendingSignup
	decideErr   error
	startCalls  []ports.StartSignup
	submitCalls int
	statusCalls int
	decisions   []string
}

func (s *stubOnboarding) StartSignup(_ context.Context, in ports.StartSignup) (*domain.StartResult, error) {
	s.startCalls = append(s.startCalls, in)
	return s.start(len(s.startCalls), in)
}

func (s *stubOnboarding) SubmitProof(_ context.Context, in ports.SubmitProof) (string, error) {
	s.submitCalls++
	return s.submit(in)
}

func (s *stubOnboarding) SignupStatus(_ context.Context, id int) (*domain.OnboardingStatus, error) {
	s.statusCalls++
	return s.status(id)
}

func (s *stubOnboarding) ListPending(context.Context) ([]domain.PendingSignup, error) {
	return s.pending, nil
}

func (s *stubOnboarding) Approve(_ context.Context, tenantID int) (string, error) {
	s.decisions = append(s.decisions, "approve")
	return "", s.decideErr
}

func (s *stubOnboarding) Reject(_ context.Context, tenantID int) (string, error) {
	s.decisions = append(s.decisions, "reject")
	return "Rechazado", s.decideErr
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

var (
	adminSelf  = domain.AdminProfile{ID: 1, Name: "Ana", PaternalSurname: "Rojas", Email: "ana@portal.bo", Status: domain.StatusActive}
	adminOther = domain.AdminProfile{ID: 2, Name: "Luis", PaternalSurname: "Vega", Email: "luis@portal.bo", Status: domain.StatusActive}
	adminOff   = domain.AdminProfile{ID: 3, Name: "Rita", PaternalSurname: "Paz", Email: "rita@portal.bo", Status: domain.StatusInactive}
)

func adminPayload() *ports.SessionPayload {
	return &ports.SessionPayload{Role: domain.RoleAdmin, Profile: adminSelf, AvailableRoles: []domain.Role{domain.RoleAdmin}}
}

func customerPayload() *ports.SessionPayload {
	c := domain.CustomerProfile{ID: 5, Name: "Ana", PaternalSurname: "Rojas", MaternalSurname: "Paz", Email: "ana@portal.bo"}
	return &ports.SessionPayload{Role: domain.RoleCustomer, Profile: c, AvailableRoles: []domain.Role{domain.RoleCustomer}}
}

func businessPayload() *ports.SessionPayload {
	b := domain.BusinessProfile{
		TenantID:     10,
		Name:         "Panadería Sol",
		Address:      "Av. Busch 123",
		OpeningHours: "08:00 - 18:00",
		StoreType:    domain.StorePhysical,
		OwnerName:    "Marta",
		Email:        "sol@pan.bo",
		Status:       domain.StatusActive,
	}
	return &ports.SessionPayload{Role: domain.RoleBusiness, Profile: b, AvailableRoles: []domain.Role{domain.RoleBusiness}}
}

func adminDashboard() *domain.Dashboard {
	return &domain.Dashboard{
		Role:   domain.RoleAdmin,
		Admins: []domain.AdminProfile{adminSelf, adminOther, adminOff},
		Businesses: []domain.BusinessProfile{
			{TenantID: 10, Name: "Panadería Sol", OwnerName: "Marta", OwnerPaternalSurname: "Quispe", Email: "sol@pan.bo", Status: domain.StatusActive},
			{TenantID: 11, Name: "Ferretería Norte", Email: "norte@fe.bo", Status: "pendiente"},
		},
		Customers: []domain.CustomerProfile{
			{ID: 100, TenantID: 10, Name: "Carla", PaternalSurname: "Mendez", MaternalSurname: "Lopez", Email: "carla@mail.bo", Status: domain.StatusActive},
			{ID: 101, TenantID: 11, Name: "Jorge", PaternalSurname: "Arce", MaternalSurname: "Sosa", LegalName: "Arce SRL", IsCompany: true, Email: "jorge@arce.bo", Status: domain.StatusInactive},
		},
	}
}

// signedInAdmin returns a session already authenticated as adminSelf.
func signedInAdmin(t interface{ Fatalf(string, ...any) }, dash *stubDashboard) (*Session, *DashboardCache) {
	return sessionAs(t, adminPayload(), dash)
}

func sessionAs(t interface{ Fatalf(string, ...any) }, payload *ports.SessionPayload, dash *stubDashboard) (*Session, *DashboardCache) {
	cache := NewDashboardCache(dash, zerolog.Nop())
	auth := &stubAuth{fetch: func() (*ports.SessionPayload, error) { return payload, nil }}
	s := NewSession(auth, cache, zerolog.Nop())
	if _, err := s.LoadIdentity(context.Background()); err != nil {
		t.Fatalf("LoadIdentity: %v", err)
	}
	return s, cache
}

func staticDashboard(d *domain.Dashboard) *stubDashboard {
	return &stubDashboard{fetch: func(int) (*domain.Dashboard, error) { return d, nil }}
}
