package ports

import (
	"context"
	"io"

	"github.com/microempresa/portal-client/internal/core/domain"
)

// PlanInput creates or fully updates a plan.
type PlanInput struct {
	Name     string        `json:"nombre" validate:"required"`
	Price    float64       `json:"precio" validate:"gte=0"`
	Status   domain.Status `json:"estado,omitempty" validate:"omitempty,oneof=activo inactivo"`
	Features []string      `json:"caracteristicas"`
}

// PlanGateway covers the public plan list and plan administration.
type PlanGateway interface {
	ListPlans(ctx context.Context) ([]domain.Plan, error)
	ListAllPlans(ctx context.Context) ([]domain.Plan, error)
	CreatePlan(ctx context.Context, in PlanInput) (string, error)
	UpdatePlan(ctx context.Context, id int, in PlanInput) (string, error)
	SetPlanStatus(ctx context.Context, id int, status domain.Status) (string, error)
	// DeletePlan is a logical deactivation.
	DeletePlan(ctx context.Context, id int) (string, error)
}

// StartSignup is the first wizard step payload. A zero SignupID creates a new
// signup; otherwise the existing one is updated.
type StartSignup struct {
	SignupID             int              `json:"signup_id,omitempty"`
	StoreType            domain.StoreType `json:"tipo_tienda"`
	Name                 string           `json:"nombre"`
	LogoURL              string           `json:"logo_url"`
	Address              string           `json:"direccion"`
	OpeningHours         string           `json:"horario_atencion"`
	OwnerName            string           `json:"nombre_propietario"`
	OwnerPaternalSurname string           `json:"apellido_paterno_propietario"`
	OwnerMaternalSurname string           `json:"apellido_materno_propietario"`
	Email                string           `json:"email"`
	Password             string           `json:"password,omitempty"`
}

// Attachment is an uploaded file.
type Attachment struct {
	Name    string
	Content io.Reader
}

type SubmitProof struct {
	SignupID int
	PlanID   int
	File     Attachment
}

// OnboardingGateway is the business signup and review surface.
type OnboardingGateway interface {
	StartSignup(ctx context.Context, in StartSignup) (*domain.StartResult, error)
	SubmitProof(ctx context.Context, in SubmitProof) (string, error)
	SignupStatus(ctx context.Context, signupID int) (*domain.OnboardingStatus, error)

	ListPending(ctx context.Context) ([]domain.PendingSignup, error)
	Approve(ctx context.Context, tenantID int) (string, error)
	Reject(ctx context.Context, tenantID int) (string, error)
}
