package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/ports"
)

// Directory is the administrator's view over every account on the platform.
// Rows come from the dashboard snapshot; mutations reload it.
type Directory struct {
	accounts ports.AccountGateway
	session  *Session
	cache    *DashboardCache
	logger   zerolog.Logger
}

func NewDirectory(accounts ports.AccountGateway, session *Session, cache *DashboardCache, logger zerolog.Logger) *Directory {
	return &Directory{accounts: accounts, session: session, cache: cache, logger: logger}
}

// AdminRow is an administrator with the actions the current admin may take.
type AdminRow struct {
	domain.AdminProfile
	CanDeactivate bool
	CanActivate   bool
}

// AdminActions decides which toggle an admin row offers to the admin with
// id self. An admin never gets to deactivate their own row.
func AdminActions(self int, a domain.AdminProfile) (canDeactivate, canActivate bool) {
	if a.Status.IsActive() {
		return a.ID != self, false
	}
	return false, true
}

// CustomerFilter narrows the customer list. TenantID 0 matches every business.
type CustomerFilter struct {
	Query    string
	TenantID int
}

func (d *Directory) dashboard(ctx context.Context) (*domain.Identity, *domain.Dashboard, error) {
	identity, err := d.session.Require(domain.RoleAdmin)
	if err != nil {
		return nil, nil, err
	}
	dash, err := d.cache.Ensure(ctx)
	if err != nil {
		return nil, nil, err
	}
	if dash == nil || dash.Role != domain.RoleAdmin {
		return nil, nil, fmt.Errorf("%w: dashboard is not an administrator view", domain.ErrForbidden)
	}
	return identity, dash, nil
}

func (d *Directory) Admins(ctx context.Context, query string) ([]AdminRow, error) {
	identity, dash, err := d.dashboard(ctx)
	if err != nil {
		return nil, err
	}
	self := adminID(identity)
	rows := make([]AdminRow, 0, len(dash.Admins))
	for _, a := range dash.Admins {
		if !matchesQuery(query, a.FullName(), a.Email, a.Username) {
			continue
		}
		row := AdminRow{AdminProfile: a}
		row.CanDeactivate, row.CanActivate = AdminActions(self, a)
		rows = append(rows, row)
	}
	return rows, nil
}

func (d *Directory) Businesses(ctx context.Context, query string) ([]domain.BusinessProfile, error) {
	_, dash, err := d.dashboard(ctx)
	if err != nil {
		return nil, err
	}
	return FilterRows(dash.Businesses, func(b domain.BusinessProfile) bool {
		return matchesQuery(query, b.Name, b.OwnerFullName(), b.Email)
	}), nil
}

// Customers filters by exact tenant and by a substring over name, email,
// legal name, tenant id and business name.
func (d *Directory) Customers(ctx context.Context, f CustomerFilter) ([]domain.CustomerProfile, error) {
	_, dash, err := d.dashboard(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(dash.Businesses))
	for _, b := range dash.Businesses {
		names[b.TenantID] = b.Name
	}
	return FilterRows(dash.Customers, func(c domain.CustomerProfile) bool {
		if f.TenantID != 0 && c.TenantID != f.TenantID {
			return false
		}
		tenant := ""
		if c.TenantID != 0 {
			tenant = strconv.Itoa(c.TenantID)
		}
		business := c.BusinessName
		if business == "" {
			business = names[c.TenantID]
		}
		return matchesQuery(f.Query, c.FullName(), c.Email, c.LegalName, tenant, business)
	}), nil
}

// ToggleAdmin activates an inactive admin or deactivates an active one.
func (d *Directory) ToggleAdmin(ctx context.Context, id int) (domain.Status, error) {
	identity, dash, err := d.dashboard(ctx)
	if err != nil {
		return "", err
	}
	row, ok := find(dash.Admins, func(a domain.AdminProfile) bool { return a.ID == id })
	if !ok {
		return "", fmt.Errorf("admin %d: %w", id, domain.ErrNotFound)
	}
	canDeactivate, _ := AdminActions(adminID(identity), row)
	if row.Status.IsActive() {
		if !canDeactivate {
			return "", domain.ErrSelfDeactivation
		}
		return d.toggle(ctx, "admin", id, domain.StatusInactive, d.accounts.DeactivateAdmin)
	}
	return d.toggle(ctx, "admin", id, domain.StatusActive, d.accounts.ActivateAdmin)
}

func (d *Directory) ToggleBusiness(ctx context.Context, tenantID int) (domain.Status, error) {
	_, dash, err := d.dashboard(ctx)
	if err != nil {
		return "", err
	}
	row, ok := find(dash.Businesses, func(b domain.BusinessProfile) bool { return b.TenantID == tenantID })
	if !ok {
		return "", fmt.Errorf("business %d: %w", tenantID, domain.ErrNotFound)
	}
	if row.Status.IsActive() {
		return d.toggle(ctx, "business", tenantID, domain.StatusInactive, d.accounts.DeactivateBusiness)
	}
	return d.toggle(ctx, "business", tenantID, domain.StatusActive, d.accounts.ActivateBusiness)
}

func (d *Directory) ToggleCustomer(ctx context.Context, id int) (domain.Status, error) {
	_, dash, err := d.dashboard(ctx)
	if err != nil {
		return "", err
	}
	row, ok := find(dash.Customers, func(c domain.CustomerProfile) bool { return c.ID == id })
	if !ok {
		return "", fmt.Errorf("customer %d: %w", id, domain.ErrNotFound)
	}
	if row.Status.IsActive() {
		return d.toggle(ctx, "customer", id, domain.StatusInactive, d.accounts.DeactivateCustomer)
	}
	return d.toggle(ctx, "customer", id, domain.StatusActive, d.accounts.ActivateCustomer)
}

// CustomerEditor edits customer rows inline, email included.
func (d *Directory) CustomerEditor() *Editor[CustomerForm] {
	return NewEditor(d.updateCustomer)
}

// BeginCustomerEdit opens an editor on a customer row from the snapshot.
func (d *Directory) BeginCustomerEdit(ctx context.Context, id int) (*Editor[CustomerForm], error) {
	_, dash, err := d.dashboard(ctx)
	if err != nil {
		return nil, err
	}
	row, ok := find(dash.Customers, func(c domain.CustomerProfile) bool { return c.ID == id })
	if !ok {
		return nil, fmt.Errorf("customer %d: %w", id, domain.ErrNotFound)
	}
	ed := d.CustomerEditor()
	ed.Begin(id, CustomerFormFrom(row))
	return ed, nil
}

func (d *Directory) updateCustomer(ctx context.Context, id int, form CustomerForm) error {
	form = form.normalized()
	form.Password = ""
	if err := form.check(true); err != nil {
		return err
	}
	if _, err := d.accounts.UpdateCustomer(ctx, id, form.update(true)); err != nil {
		return err
	}
	d.reload(ctx)
	return nil
}

func (d *Directory) toggle(ctx context.Context, kind string, id int, next domain.Status, call func(context.Context, int) error) (domain.Status, error) {
	if err := call(ctx, id); err != nil {
		d.logger.Info().Err(err).Str("kind", kind).Int("id", id).Msg("status change failed")
		return "", err
	}
	d.logger.Debug().Str("kind", kind).Int("id", id).Str("status", string(next)).Msg("status changed")
	d.reload(ctx)
	return next, nil
}

func (d *Directory) reload(ctx context.Context) {
	if _, err := d.cache.Invalidate(ctx); err != nil {
		d.logger.Warn().Err(err).Msg("dashboard reload failed")
	}
}

func adminID(identity *domain.Identity) int {
	if p, ok := identity.Profile.(domain.AdminProfile); ok {
		return p.ID
	}
	return 0
}

func find[T any](rows []T, match func(T) bool) (T, bool) {
	for _, r := range rows {
		if match(r) {
			return r, true
		}
	}
	var zero T
	return zero, false
}
