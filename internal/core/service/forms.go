package service

import (
	"strings"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/ports"
	"github.com/microempresa/portal-client/internal/validation"
)

var validate = validation.New()

// CustomerForm is the editable shape of a customer record, shared by the
// admin directory, the business customer book and the customer profile.
type CustomerForm struct {
	Name            string
	PaternalSurname string
	MaternalSurname string
	Email           string
	IsCompany       bool
	LegalName       string
	IsGeneric       bool
	// Password is asked only when a business registers a customer.
	Password string
}

func CustomerFormFrom(c domain.CustomerProfile) CustomerForm {
	return CustomerForm{
		Name:            c.Name,
		PaternalSurname: c.PaternalSurname,
		MaternalSurname: c.MaternalSurname,
		Email:           c.Email,
		IsCompany:       c.LegalName != "",
		LegalName:       c.LegalName,
		IsGeneric:       c.IsGeneric,
	}
}

// SetField assigns a field by its wire name.
func (f *CustomerForm) SetField(name, value string) error {
	switch name {
	case "nombre":
		f.Name = value
	case "apellido_paterno":
		f.PaternalSurname = value
	case "apellido_materno":
		f.MaternalSurname = value
	case "email":
		f.Email = value
	case "razon_social":
		f.LegalName = value
	case "es_empresa":
		f.IsCompany = parseFlag(value)
	case "es_generico":
		f.IsGeneric = parseFlag(value)
	case "password":
		f.Password = value
	default:
		return domain.NewValidationError(name, "unknown field "+name)
	}
	return nil
}

func parseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "si", "sí", "yes":
		return true
	}
	return false
}

// normalized trims every text field and drops the legal name of a person.
func (f CustomerForm) normalized() CustomerForm {
	f.Name = strings.TrimSpace(f.Name)
	f.PaternalSurname = strings.TrimSpace(f.PaternalSurname)
	f.MaternalSurname = strings.TrimSpace(f.MaternalSurname)
	f.Email = strings.TrimSpace(f.Email)
	f.LegalName = strings.TrimSpace(f.LegalName)
	if !f.IsCompany {
		f.LegalName = ""
	}
	return f
}

// check applies the record rules in the order the screens report them.
func (f CustomerForm) check(requireEmail bool) error {
	if f.Name == "" || f.PaternalSurname == "" || f.MaternalSurname == "" {
		return domain.NewValidationError("nombre", "fill in the name and both surnames")
	}
	if requireEmail && f.Email == "" {
		return domain.NewValidationError("email", "email is required")
	}
	if f.IsCompany && f.LegalName == "" {
		return domain.NewValidationError("razon_social", "legal name is required for a company")
	}
	return nil
}

func (f CustomerForm) update(withEmail bool) ports.CustomerUpdate {
	company, generic := f.IsCompany, f.IsGeneric
	in := ports.CustomerUpdate{
		Name:            f.Name,
		PaternalSurname: f.PaternalSurname,
		MaternalSurname: f.MaternalSurname,
		LegalName:       f.LegalName,
		IsCompany:       &company,
		IsGeneric:       &generic,
		Password:        f.Password,
	}
	if withEmail {
		in.Email = f.Email
	}
	return in
}

// matchesQuery is a case-insensitive substring match over the given fields.
func matchesQuery(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// FilterRows keeps the rows accepted by keep.
func FilterRows[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
