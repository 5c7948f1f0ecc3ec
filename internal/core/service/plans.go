package service

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/ports"
)

const minFeatureSlots = 2

// PlanForm is the create and edit buffer of a plan. Price stays text until
// submit so a half-typed value is kept as entered.
type PlanForm struct {
	Name     string
	Price    string
	Status   domain.Status
	Features []string
}

func NewPlanForm() PlanForm {
	return PlanForm{Status: domain.StatusActive, Features: make([]string, minFeatureSlots)}
}

func PlanFormFrom(p domain.Plan) PlanForm {
	f := PlanForm{
		Name:     p.Name,
		Price:    strconv.FormatFloat(float64(p.Price), 'f', -1, 64),
		Status:   p.Status,
		Features: append([]string(nil), p.Features...),
	}
	if f.Status == "" {
		f.Status = domain.StatusActive
	}
	if len(f.Features) == 0 {
		f.Features = make([]string, minFeatureSlots)
	}
	return f
}

func (f *PlanForm) SetFeature(i int, value string) {
	for len(f.Features) <= i {
		f.Features = append(f.Features, "")
	}
	f.Features[i] = value
}

func (f *PlanForm) AddFeature() { f.Features = append(f.Features, "") }

// RemoveFeature drops slot i. Removing the last one leaves two empty slots.
func (f *PlanForm) RemoveFeature(i int) {
	if i < 0 || i >= len(f.Features) {
		return
	}
	f.Features = append(f.Features[:i:i], f.Features[i+1:]...)
	if len(f.Features) == 0 {
		f.Features = make([]string, minFeatureSlots)
	}
}

func (f PlanForm) input() (ports.PlanInput, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	if err != nil {
		return ports.PlanInput{}, domain.NewValidationError("precio", "price must be a number")
	}
	in := ports.PlanInput{
		Name:     strings.TrimSpace(f.Name),
		Price:    price,
		Status:   f.Status,
		Features: domain.NormalizeFeatures(f.Features),
	}
	if err := validate.Struct(in); err != nil {
		return ports.PlanInput{}, err
	}
	return in, nil
}

// PlanAdmin is the administrator's plan catalogue.
type PlanAdmin struct {
	plans   ports.PlanGateway
	session *Session
	logger  zerolog.Logger

	creating sync.Mutex
}

func NewPlanAdmin(plans ports.PlanGateway, session *Session, logger zerolog.Logger) *PlanAdmin {
	return &PlanAdmin{plans: plans, session: session, logger: logger}
}

// List returns every plan, inactive ones included.
func (a *PlanAdmin) List(ctx context.Context) ([]domain.Plan, error) {
	if _, err := a.session.Require(domain.RoleAdmin); err != nil {
		return nil, err
	}
	return a.plans.ListAllPlans(ctx)
}

// Create adds a plan. A second call while one is saving is refused.
func (a *PlanAdmin) Create(ctx context.Context, form PlanForm) (string, error) {
	if !a.creating.TryLock() {
		return "", domain.ErrSubmissionInFlight
	}
	defer a.creating.Unlock()
	if _, err := a.session.Require(domain.RoleAdmin); err != nil {
		return "", err
	}
	if form.Status == "" {
		form.Status = domain.StatusActive
	}
	in, err := form.input()
	if err != nil {
		return "", err
	}
	msg, err := a.plans.CreatePlan(ctx, in)
	if err != nil {
		return "", err
	}
	a.logger.Info().Str("plan", in.Name).Msg("plan created")
	return orDefault(msg, "Plan created."), nil
}

// Update replaces a plan with the form contents.
func (a *PlanAdmin) Update(ctx context.Context, id int, form PlanForm) (string, error) {
	if _, err := a.session.Require(domain.RoleAdmin); err != nil {
		return "", err
	}
	in, err := form.input()
	if err != nil {
		return "", err
	}
	msg, err := a.plans.UpdatePlan(ctx, id, in)
	if err != nil {
		return "", err
	}
	return orDefault(msg, "Plan updated."), nil
}

// Editor edits one plan row at a time.
func (a *PlanAdmin) Editor() *Editor[PlanForm] {
	return NewEditor(func(ctx context.Context, id int, form PlanForm) error {
		_, err := a.Update(ctx, id, form)
		return err
	})
}

// Deactivate is a logical delete; the plan stays listed as inactive.
func (a *PlanAdmin) Deactivate(ctx context.Context, id int) (string, error) {
	if _, err := a.session.Require(domain.RoleAdmin); err != nil {
		return "", err
	}
	msg, err := a.plans.DeletePlan(ctx, id)
	if err != nil {
		return "", err
	}
	return orDefault(msg, "Plan deactivated."), nil
}

func (a *PlanAdmin) Activate(ctx context.Context, id int) (string, error) {
	if _, err := a.session.Require(domain.RoleAdmin); err != nil {
		return "", err
	}
	msg, err := a.plans.SetPlanStatus(ctx, id, domain.StatusActive)
	if err != nil {
		return "", err
	}
	return orDefault(msg, "Plan activated."), nil
}

func orDefault(msg, fallback string) string {
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}
