package service

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/ports"
)

// ProfileForm is the editable profile of the signed-in account. Which fields
// matter depends on Role.
type ProfileForm struct {
	Role domain.Role

	// Administrator and customer.
	Name            string
	PaternalSurname string
	MaternalSurname string

	// Business.
	BusinessName         string
	LogoURL              string
	StoreType            domain.StoreType
	Address              string
	Hours                domain.Hours
	OwnerName            string
	OwnerPaternalSurname string
	OwnerMaternalSurname string

	// Customer.
	IsCompany bool
	LegalName string

	// Password is sent only when filled in.
	Password string
}

// FormFor derives the profile form of an identity. A business whose stored
// address and hours look like the online placeholders comes back as virtual
// with the physical fields empty.
func FormFor(identity *domain.Identity) ProfileForm {
	if identity == nil {
		return ProfileForm{}
	}
	f := ProfileForm{Role: identity.Role}
	switch p := identity.Profile.(type) {
	case domain.AdminProfile:
		f.Name, f.PaternalSurname, f.MaternalSurname = p.Name, p.PaternalSurname, p.MaternalSurname
	case domain.BusinessProfile:
		f.BusinessName = p.Name
		f.LogoURL = p.LogoURL
		f.OwnerName = p.OwnerName
		f.OwnerPaternalSurname = p.OwnerPaternalSurname
		f.OwnerMaternalSurname = p.OwnerMaternalSurname
		f.StoreType = domain.StorePhysical
		if p.IsVirtual() {
			f.StoreType = domain.StoreVirtual
			break
		}
		f.Address = p.Address
		f.Hours, _ = domain.ParseHours(p.OpeningHours)
	case domain.CustomerProfile:
		f.Name, f.PaternalSurname, f.MaternalSurname = p.Name, p.PaternalSurname, p.MaternalSurname
		f.LegalName = p.LegalName
		f.IsCompany = p.LegalName != ""
	}
	return f
}

// SetField assigns a field by its wire name.
func (f *ProfileForm) SetField(name, value string) error {
	switch name {
	case "nombre":
		if f.Role == domain.RoleBusiness {
			f.BusinessName = value
		} else {
			f.Name = value
		}
	case "apellido_paterno":
		f.PaternalSurname = value
	case "apellido_materno":
		f.MaternalSurname = value
	case "logo_url":
		f.LogoURL = value
	case "tipo_tienda":
		t, err := domain.ParseStoreType(value)
		if err != nil {
			return err
		}
		f.StoreType = t
	case "direccion":
		f.Address = value
	case "horario_inicio":
		f.Hours.Opens = value
	case "horario_fin":
		f.Hours.Closes = value
	case "nombre_propietario":
		f.OwnerName = value
	case "apellido_paterno_propietario":
		f.OwnerPaternalSurname = value
	case "apellido_materno_propietario":
		f.OwnerMaternalSurname = value
	case "razon_social":
		f.LegalName = value
	case "es_empresa":
		f.IsCompany = parseFlag(value)
	case "password":
		f.Password = value
	default:
		return domain.NewValidationError(name, "unknown field "+name)
	}
	return nil
}

// ProfileEditor saves the signed-in account's profile, merges the result
// back into the session and reloads the dashboard.
type ProfileEditor struct {
	accounts ports.AccountGateway
	session  *Session
	cache    *DashboardCache
	logger   zerolog.Logger

	saving sync.Mutex
}

func NewProfileEditor(accounts ports.AccountGateway, session *Session, cache *DashboardCache, logger zerolog.Logger) *ProfileEditor {
	return &ProfileEditor{accounts: accounts, session: session, cache: cache, logger: logger}
}

// Form returns the profile form of the current identity.
func (e *ProfileEditor) Form() (ProfileForm, error) {
	identity := e.session.Identity()
	if identity == nil {
		return ProfileForm{}, domain.ErrNotAuthenticated
	}
	return FormFor(identity), nil
}

func (e *ProfileEditor) Save(ctx context.Context, f ProfileForm) (domain.Profile, error) {
	if !e.saving.TryLock() {
		return nil, domain.ErrSubmissionInFlight
	}
	defer e.saving.Unlock()

	identity := e.session.Identity()
	if identity == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if f.Role != identity.Role {
		return nil, domain.NewValidationError("role", "the form belongs to another role")
	}
	updated, err := domain.OnRole(identity.Role,
		func() profileResult { return e.saveAdmin(ctx, identity, f) },
		func() profileResult { return e.saveBusiness(ctx, identity, f) },
		func() profileResult { return e.saveCustomer(ctx, identity, f) },
	).unpack()
	if err != nil {
		return nil, err
	}
	e.session.ApplyProfile(updated)
	e.logger.Debug().Str("account", identity.Key()).Msg("profile saved")
	if _, err := e.cache.Refresh(ctx, e.session.Identity()); err != nil {
		e.logger.Warn().Err(err).Msg("dashboard reload failed")
	}
	return updated, nil
}

type profileResult struct {
	profile domain.Profile
	err     error
}

func (r profileResult) unpack() (domain.Profile, error) { return r.profile, r.err }

func (e *ProfileEditor) saveAdmin(ctx context.Context, identity *domain.Identity, f ProfileForm) profileResult {
	in := ports.AdminUpdate{
		Name:            strings.TrimSpace(f.Name),
		PaternalSurname: strings.TrimSpace(f.PaternalSurname),
		MaternalSurname: strings.TrimSpace(f.MaternalSurname),
		Password:        f.Password,
	}
	if err := validate.Struct(in); err != nil {
		return profileResult{err: err}
	}
	p, err := e.accounts.UpdateAdmin(ctx, adminID(identity), in)
	if err != nil {
		return profileResult{err: err}
	}
	if p.ID == 0 {
		merged, _ := identity.Profile.(domain.AdminProfile)
		merged.Name, merged.PaternalSurname, merged.MaternalSurname = in.Name, in.PaternalSurname, in.MaternalSurname
		return profileResult{profile: merged}
	}
	return profileResult{profile: *p}
}

func (e *ProfileEditor) saveBusiness(ctx context.Context, identity *domain.Identity, f ProfileForm) profileResult {
	current, _ := identity.Profile.(domain.BusinessProfile)
	storeType := f.StoreType.Normalize()
	if err := domain.ValidateStore(storeType, f.Address, f.Hours); err != nil {
		return profileResult{err: err}
	}
	address, hours := domain.StoreLocation(storeType, f.Address, f.Hours)
	in := ports.BusinessUpdate{
		Name:                 strings.TrimSpace(f.BusinessName),
		LogoURL:              strings.TrimSpace(f.LogoURL),
		Address:              address,
		OpeningHours:         hours,
		OwnerName:            strings.TrimSpace(f.OwnerName),
		OwnerPaternalSurname: strings.TrimSpace(f.OwnerPaternalSurname),
		OwnerMaternalSurname: strings.TrimSpace(f.OwnerMaternalSurname),
		StoreType:            storeType,
		Password:             f.Password,
	}
	if err := validate.Struct(in); err != nil {
		return profileResult{err: err}
	}
	p, err := e.accounts.UpdateBusiness(ctx, current.TenantID, in)
	if err != nil {
		return profileResult{err: err}
	}
	if p.TenantID == 0 {
		merged := current
		merged.Name, merged.LogoURL, merged.StoreType = in.Name, in.LogoURL, in.StoreType
		merged.Address, merged.OpeningHours = in.Address, in.OpeningHours
		merged.OwnerName, merged.OwnerPaternalSurname, merged.OwnerMaternalSurname = in.OwnerName, in.OwnerPaternalSurname, in.OwnerMaternalSurname
		return profileResult{profile: merged}
	}
	return profileResult{profile: *p}
}

func (e *ProfileEditor) saveCustomer(ctx context.Context, identity *domain.Identity, f ProfileForm) profileResult {
	current, _ := identity.Profile.(domain.CustomerProfile)
	if current.IsGuest() {
		return profileResult{err: domain.NewValidationError("id_cliente", "guest sessions have no profile to edit")}
	}
	form := CustomerForm{
		Name:            f.Name,
		PaternalSurname: f.PaternalSurname,
		MaternalSurname: f.MaternalSurname,
		IsCompany:       f.IsCompany,
		LegalName:       f.LegalName,
		IsGeneric:       current.IsGeneric,
		Password:        f.Password,
	}.normalized()
	if form.IsCompany && form.LegalName == "" {
		return profileResult{err: domain.NewValidationError("razon_social", "legal name is required for a company")}
	}
	in := form.update(false)
	in.IsGeneric = nil
	p, err := e.accounts.UpdateCustomer(ctx, current.ID, in)
	if err != nil {
		return profileResult{err: err}
	}
	if p.ID == 0 {
		merged := current
		merged.Name, merged.PaternalSurname, merged.MaternalSurname = in.Name, in.PaternalSurname, in.MaternalSurname
		merged.LegalName, merged.IsCompany = in.LegalName, form.IsCompany
		return profileResult{profile: merged}
	}
	return profileResult{profile: *p}
}
