package domain

import (
	"fmt"
	"strings"
)

// Role is one of the three platform personas. The set is closed.
type Role string

const (
	RoleAdmin    Role = "super_usuario"
	RoleBusiness Role = "microempresa"
	RoleCustomer Role = "cliente"
)

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleBusiness, RoleCustomer}

// ParseRole accepts the wire value of a role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(strings.ToLower(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleBusiness, RoleCustomer:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// Label is the human-facing name of the role.
func (r Role) Label() string {
	return OnRole(r,
		func() string { return "Administrator" },
		func() string { return "Business" },
		func() string { return "Customer" },
	)
}

// OnRole dispatches on r with one branch per role. Every call site has to
// handle all three roles. An invalid role yields the zero value of T.
func OnRole[T any](r Role, admin, business, customer func() T) T {
	switch r {
	case RoleAdmin:
		return admin()
	case RoleBusiness:
		return business()
	case RoleCustomer:
		return customer()
	}
	var zero T
	return zero
}

// ParseRoles converts wire role names, skipping unknown values.
func ParseRoles(values []string) []Role {
	out := make([]Role, 0, len(values))
	for _, v := range values {
		if r, err := ParseRole(v); err == nil {
			out = append(out, r)
		}
	}
	return out
}

// MenuItem is one navigation entry offered to a role.
type MenuItem struct {
	Key   string
	Label string
	// Command is the CLI command that opens the screen.
	Command string
}

// MenuFor returns the navigation offered to a role.
func MenuFor(r Role) []MenuItem {
	return OnRole(r,
		func() []MenuItem {
			return []MenuItem{
				{Key: "dashboard", Label: "Dashboard", Command: "dashboard"},
				{Key: "planes", Label: "Plans", Command: "plans list"},
				{Key: "pendientes", Label: "Businesses awaiting approval", Command: "pending list"},
				{Key: "microempresas", Label: "Businesses", Command: "businesses list"},
				{Key: "clientes", Label: "Customers", Command: "customers list"},
				{Key: "superusuarios", Label: "Administrators", Command: "admins list"},
				{Key: "perfil", Label: "Profile", Command: "profile show"},
			}
		},
		func() []MenuItem {
			return []MenuItem{
				{Key: "dashboard", Label: "Dashboard", Command: "dashboard"},
				{Key: "clientes", Label: "Customer management", Command: "my-customers list"},
				{Key: "mi-empresa", Label: "My business", Command: "profile show"},
			}
		},
		func() []MenuItem {
			return []MenuItem{
				{Key: "dashboard", Label: "Dashboard", Command: "dashboard"},
				{Key: "microempresas", Label: "Businesses", Command: "dashboard"},
				{Key: "perfil", Label: "Profile", Command: "profile show"},
			}
		},
	)
}
