package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/ports"
)

// CustomerBook is a business's own customer list.
type CustomerBook struct {
	accounts ports.AccountGateway
	session  *Session
	cache    *DashboardCache
	logger   zerolog.Logger
}

func NewCustomerBook(accounts ports.AccountGateway, session *Session, cache *DashboardCache, logger zerolog.Logger) *CustomerBook {
	return &CustomerBook{accounts: accounts, session: session, cache: cache, logger: logger}
}

// CustomerQuery filters the book. Inactive customers are hidden unless All.
type CustomerQuery struct {
	Query string
	All   bool
}

func (b *CustomerBook) List(ctx context.Context, q CustomerQuery) ([]domain.CustomerProfile, error) {
	if _, err := b.session.Require(domain.RoleBusiness); err != nil {
		return nil, err
	}
	customers, err := b.accounts.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	return FilterRows(customers, func(c domain.CustomerProfile) bool {
		if !q.All && !c.Status.IsActive() {
			return false
		}
		return matchesQuery(q.Query, c.Name, c.PaternalSurname, c.MaternalSurname, c.FullName(), c.Email, c.LegalName)
	}), nil
}

// Register creates a customer. This is the only flow that asks for a password.
func (b *CustomerBook) Register(ctx context.Context, form CustomerForm) error {
	if _, err := b.session.Require(domain.RoleBusiness); err != nil {
		return err
	}
	form = form.normalized()
	if err := form.check(true); err != nil {
		return err
	}
	if form.Password == "" {
		return domain.NewValidationError("password", "password is required")
	}
	err := b.accounts.CreateCustomer(ctx, ports.CustomerCreate{
		Name:            form.Name,
		PaternalSurname: form.PaternalSurname,
		MaternalSurname: form.MaternalSurname,
		Email:           form.Email,
		Password:        form.Password,
		IsCompany:       form.IsCompany,
		LegalName:       form.LegalName,
		IsGeneric:       form.IsGeneric,
	})
	if err != nil {
		return err
	}
	b.logger.Debug().Str("email", form.Email).Msg("customer registered")
	b.reload(ctx)
	return nil
}

// Editor edits customers inline. The password is never sent from here.
func (b *CustomerBook) Editor() *Editor[CustomerForm] {
	return NewEditor(b.update)
}

// BeginEdit opens an editor on one of the business's customers.
func (b *CustomerBook) BeginEdit(ctx context.Context, id int) (*Editor[CustomerForm], error) {
	row, err := b.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	ed := b.Editor()
	ed.Begin(id, CustomerFormFrom(row))
	return ed, nil
}

// Toggle flips a customer between active and inactive.
func (b *CustomerBook) Toggle(ctx context.Context, id int) (domain.Status, error) {
	row, err := b.lookup(ctx, id)
	if err != nil {
		return "", err
	}
	if row.Status.IsActive() {
		if err := b.accounts.DeactivateCustomer(ctx, id); err != nil {
			return "", err
		}
		b.reload(ctx)
		return domain.StatusInactive, nil
	}
	if err := b.accounts.ActivateCustomer(ctx, id); err != nil {
		return "", err
	}
	b.reload(ctx)
	return domain.StatusActive, nil
}

func (b *CustomerBook) update(ctx context.Context, id int, form CustomerForm) error {
	form = form.normalized()
	form.Password = ""
	if err := form.check(true); err != nil {
		return err
	}
	if _, err := b.accounts.UpdateCustomer(ctx, id, form.update(true)); err != nil {
		return err
	}
	b.reload(ctx)
	return nil
}

func (b *CustomerBook) lookup(ctx context.Context, id int) (domain.CustomerProfile, error) {
	all, err := b.List(ctx, CustomerQuery{All: true})
	if err != nil {
		return domain.CustomerProfile{}, err
	}
	row, ok := find(all, func(c domain.CustomerProfile) bool { return c.ID == id })
	if !ok {
		return domain.CustomerProfile{}, fmt.Errorf("customer %d: %w", id, domain.ErrNotFound)
	}
	return row, nil
}

func (b *CustomerBook) reload(ctx context.Context) {
	if _, err := b.cache.Invalidate(ctx); err != nil {
		b.logger.Warn().Err(err).Msg("dashboard reload failed")
	}
}
