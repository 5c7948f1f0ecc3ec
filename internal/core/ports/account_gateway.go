package ports

import (
	"context"

	"github.com/microempresa/portal-client/internal/core/domain"
)

// AdminUpdate is the administrator profile patch. Password is sent only when set.
type AdminUpdate struct {
	Name            string `json:"nombre" validate:"required"`
	PaternalSurname string `json:"apellido_paterno" validate:"required"`
	MaternalSurname string `json:"apellido_materno"`
	Password        string `json:"password,omitempty" validate:"omitempty,min=6"`
}

// BusinessUpdate is the business profile patch.
type BusinessUpdate struct {
	Name                 string           `json:"nombre" validate:"required"`
	LogoURL              string           `json:"logo_url" validate:"omitempty,url"`
	Address              string           `json:"direccion"`
	OpeningHours         string           `json:"horario_atencion"`
	OwnerName            string           `json:"nombre_propietario" validate:"required"`
	OwnerPaternalSurname string           `json:"apellido_paterno_propietario" validate:"required"`
	OwnerMaternalSurname string           `json:"apellido_materno_propietario"`
	StoreType            domain.StoreType `json:"tipo_tienda"`
	Password             string           `json:"password,omitempty" validate:"omitempty,min=6"`
}

// CustomerUpdate is the customer record patch used by the profile screen and
// the customer directories. Email is omitted from the profile screen.
type CustomerUpdate struct {
	Name            string `json:"nombre"`
	PaternalSurname string `json:"apellido_paterno"`
	MaternalSurname string `json:"apellido_materno"`
	Email           string `json:"email,omitempty"`
	LegalName       string `json:"razon_social"`
	IsCompany       *bool  `json:"es_empresa,omitempty"`
	IsGeneric       *bool  `json:"es_generico,omitempty"`
	Password        string `json:"password,omitempty"`
}

// CustomerCreate registers a customer under the signed-in business.
type CustomerCreate struct {
	Name            string `json:"nombre"`
	PaternalSurname string `json:"apellido_paterno"`
	MaternalSurname string `json:"apellido_materno"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	IsCompany       bool   `json:"es_empresa"`
	LegalName       string `json:"razon_social"`
	IsGeneric       bool   `json:"es_generico"`
}

// AccountGateway manages platform accounts. Activation endpoints differ per
// entity kind, so each kind has its own pair.
type AccountGateway interface {
	UpdateAdmin(ctx context.Context, id int, in AdminUpdate) (*domain.AdminProfile, error)
	ActivateAdmin(ctx context.Context, id int) error
	DeactivateAdmin(ctx context.Context, id int) error

	UpdateBusiness(ctx context.Context, tenantID int, in BusinessUpdate) (*domain.BusinessProfile, error)
	ActivateBusiness(ctx context.Context, tenantID int) error
	DeactivateBusiness(ctx context.Context, tenantID int) error

	UpdateCustomer(ctx context.Context, id int, in CustomerUpdate) (*domain.CustomerProfile, error)
	ActivateCustomer(ctx context.Context, id int) error
	DeactivateCustomer(ctx context.Context, id int) error

	// ListCustomers and CreateCustomer are scoped to the signed-in business.
	ListCustomers(ctx context.Context) ([]domain.CustomerProfile, error)
	CreateCustomer(ctx context.Context, in CustomerCreate) error
}

// DashboardGateway serves the role-shaped dashboard of the current session.
type DashboardGateway interface {
	FetchDashboard(ctx context.Context) (*domain.Dashboard, error)
}
