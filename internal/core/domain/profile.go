package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Status is the lifecycle flag the platform keeps on every account and plan.
type Status string

const (
	StatusActive   Status = "activo"
	StatusInactive Status = "inactivo"
)

func (s Status) IsActive() bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(StatusActive))
}

func (s Status) IsInactive() bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(StatusInactive))
}

// Profile is the role-specific account record. Implemented only by
// AdminProfile, BusinessProfile and CustomerProfile.
type Profile interface {
	Role() Role
	profile()
}

type AdminProfile struct {
	ID              int    `json:"id_su"`
	Username        string `json:"username,omitempty"`
	Name            string `json:"nombre"`
	PaternalSurname string `json:"apellido_paterno"`
	MaternalSurname string `json:"apellido_materno"`
	Email           string `json:"email"`
	Status          Status `json:"estado,omitempty"`
}

func (AdminProfile) Role() Role { return RoleAdmin }
func (AdminProfile) profile()   {}

func (p AdminProfile) FullName() string {
	return joinName(p.Name, p.PaternalSurname, p.MaternalSurname)
}

type BusinessProfile struct {
	TenantID             int       `json:"tenant_id"`
	Name                 string    `json:"nombre"`
	LogoURL              string    `json:"logo_url,omitempty"`
	Address              string    `json:"direccion,omitempty"`
	OpeningHours         string    `json:"horario_atencion,omitempty"`
	StoreType            StoreType `json:"tipo_tienda,omitempty"`
	OwnerName            string    `json:"nombre_propietario,omitempty"`
	OwnerPaternalSurname string    `json:"apellido_paterno_propietario,omitempty"`
	OwnerMaternalSurname string    `json:"apellido_materno_propietario,omitempty"`
	Email                string    `json:"email"`
	Status               Status    `json:"estado,omitempty"`
}

func (BusinessProfile) Role() Role { return RoleBusiness }
func (BusinessProfile) profile()   {}

func (p BusinessProfile) OwnerFullName() string {
	return joinName(p.OwnerName, p.OwnerPaternalSurname, p.OwnerMaternalSurname)
}

// IsVirtual reports whether the stored address and hours describe an online
// store: either they carry the virtual placeholders or the hours are not a
// HH:MM - HH:MM range.
func (p BusinessProfile) IsVirtual() bool {
	if _, ok := ParseHours(p.OpeningHours); !ok {
		return true
	}
	return looksVirtual(p.Address, p.OpeningHours)
}

type CustomerProfile struct {
	ID              int    `json:"id_cliente"`
	TenantID        int    `json:"tenant_id,omitempty"`
	BusinessName    string `json:"microempresa_nombre,omitempty"`
	Username        string `json:"username,omitempty"`
	Name            string `json:"nombre"`
	PaternalSurname string `json:"apellido_paterno"`
	MaternalSurname string `json:"apellido_materno"`
	LegalName       string `json:"razon_social,omitempty"`
	IsCompany       bool   `json:"es_empresa,omitempty"`
	IsGeneric       bool   `json:"es_generico,omitempty"`
	Email           string `json:"email"`
	Status          Status `json:"estado,omitempty"`
}

func (CustomerProfile) Role() Role { return RoleCustomer }
func (CustomerProfile) profile()   {}

func (p CustomerProfile) FullName() string {
	return joinName(p.Name, p.PaternalSurname, p.MaternalSurname)
}

// IsGuest reports a guest session: a customer without an account id.
func (p CustomerProfile) IsGuest() bool { return p.ID == 0 }

// UnmarshalJSON accepts both "id_cliente" and "id" for the customer key.
func (p *CustomerProfile) UnmarshalJSON(b []byte) error {
	type plain CustomerProfile
	var aux struct {
		plain
		AltID int `json:"id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = CustomerProfile(aux.plain)
	if p.ID == 0 {
		p.ID = aux.AltID
	}
	if p.LegalName != "" && !p.IsCompany {
		p.IsCompany = true
	}
	return nil
}

// DecodeProfile decodes a raw user object according to role.
func DecodeProfile(role Role, raw json.RawMessage) (Profile, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch role {
	case RoleAdmin:
		var p AdminProfile
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case RoleBusiness:
		var p BusinessProfile
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case RoleCustomer:
		var p CustomerProfile
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
}

// Identity is the authenticated session as the client sees it.
type Identity struct {
	Role           Role
	Profile        Profile
	AvailableRoles []Role
}

// Key identifies the account behind the identity, used to key cached data.
func (id *Identity) Key() string {
	if id == nil || id.Profile == nil {
		return ""
	}
	switch p := id.Profile.(type) {
	case AdminProfile:
		return "su:" + strconv.Itoa(p.ID)
	case BusinessProfile:
		return "me:" + strconv.Itoa(p.TenantID)
	case CustomerProfile:
		if p.IsGuest() {
			return "guest"
		}
		return "cl:" + strconv.Itoa(p.ID)
	}
	return ""
}

// DisplayName is the business name for businesses and the full name for
// everyone else, falling back to the username and then to "User".
func (id *Identity) DisplayName() string {
	if id == nil || id.Profile == nil {
		return "User"
	}
	switch p := id.Profile.(type) {
	case BusinessProfile:
		return firstNonEmpty(p.Name, "User")
	case AdminProfile:
		return firstNonEmpty(p.FullName(), p.Username, "User")
	case CustomerProfile:
		return firstNonEmpty(p.FullName(), p.Username, "User")
	}
	return "User"
}

// Initials are the first two characters of the display name, upper-cased.
func (id *Identity) Initials() string {
	runes := []rune(id.DisplayName())
	if len(runes) > 2 {
		runes = runes[:2]
	}
	for i, r := range runes {
		runes[i] = unicode.ToUpper(r)
	}
	return string(runes)
}

// AvatarURL is the business logo; other roles have none.
func (id *Identity) AvatarURL() string {
	if id == nil {
		return ""
	}
	if p, ok := id.Profile.(BusinessProfile); ok {
		return p.LogoURL
	}
	return ""
}

// CanSwitchTo reports whether r is one of the roles available to the account.
func (id *Identity) CanSwitchTo(r Role) bool {
	if id == nil {
		return false
	}
	for _, avail := range id.AvailableRoles {
		if avail == r {
			return true
		}
	}
	return false
}

func joinName(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
