package service

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/microempresa/portal-client/internal/core/domain"
	"github.com/microempresa/portal-client/internal/core/ports"
)

// Step is one screen of the business signup wizard, named by its path segment.
type Step string

const (
	StepDetails Step = "datos"
	StepPlan    Step = "plan"
	StepPayment Step = "pago"
	StepWaiting Step = "espera"
)

var Steps = []Step{StepDetails, StepPlan, StepPayment, StepWaiting}

func ParseStep(s string) (Step, error) {
	for _, st := range Steps {
		if string(st) == strings.ToLower(strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", domain.NewValidationError("step", "step must be one of datos, plan, pago, espera")
}

// Outcome is where the wizard ended up after an action, with the message to
// show and whatever the step needs to render.
type Outcome struct {
	Step    Step
	Message string
	Plans   []domain.Plan
	Status  *domain.OnboardingStatus
	Draft   domain.WizardDraft
}

// Wizard runs the business signup flow. Its draft is persisted after every
// change; the password is kept in memory only.
type Wizard struct {
	onboarding ports.OnboardingGateway
	plans      ports.PlanGateway
	drafts     *Drafts
	logger     zerolog.Logger
	now        func() time.Time

	submitting sync.Mutex

	mu    sync.Mutex
	draft *domain.WizardDraft
}

func NewWizard(onboarding ports.OnboardingGateway, plans ports.PlanGateway, drafts *Drafts, logger zerolog.Logger) *Wizard {
	return &Wizard{onboarding: onboarding, plans: plans, drafts: drafts, logger: logger, now: time.Now}
}

// Draft returns a copy of the current draft.
func (w *Wizard) Draft(ctx context.Context) (domain.WizardDraft, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, err := w.current(ctx)
	if err != nil {
		return domain.WizardDraft{}, err
	}
	return *d, nil
}

// Enter runs the entry rules of a step.
func (w *Wizard) Enter(ctx context.Context, step Step) (*Outcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, err := w.current(ctx)
	if err != nil {
		return nil, err
	}
	switch step {
	case StepPlan:
		return w.planOutcome(ctx, d, ""), nil
	case StepPayment:
		out := w.outcome(StepPayment, d, "")
		if msg := paymentPrecondition(d); msg != "" {
			out.Message = msg
		}
		return out, nil
	case StepWaiting:
		return w.enterWaiting(ctx, d), nil
	default:
		return w.outcome(StepDetails, d, ""), nil
	}
}

// SetField edits the details form and saves the draft.
func (w *Wizard) SetField(ctx context.Context, name, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, err := w.current(ctx)
	if err != nil {
		return err
	}
	if err := d.Form.SetField(name, value); err != nil {
		return err
	}
	if name == "password" {
		return nil
	}
	return w.save(ctx, d)
}

// SubmitDetails creates the signup, or updates it when one is already stored.
// A signup the server no longer knows is recreated from the same form.
func (w *Wizard) SubmitDetails(ctx context.Context) (*Outcome, error) {
	if !w.submitting.TryLock() {
		return nil, domain.ErrSubmissionInFlight
	}
	defer w.submitting.Unlock()
	w.mu.Lock()
	defer w.mu.Unlock()

	d, err := w.current(ctx)
	if err != nil {
		return nil, err
	}
	form := trimForm(d.Form)
	if err := validate.Struct(form); err != nil {
		return nil, err
	}
	if err := domain.ValidateStore(form.StoreType, form.Address, form.Hours); err != nil {
		return nil, err
	}
	if !d.HasSignup() && form.Password == "" {
		return nil, domain.NewValidationError("password", "password is required")
	}

	address, hours := domain.StoreLocation(form.StoreType, form.Address, form.Hours)
	in := ports.StartSignup{
		SignupID:             d.SignupID,
		StoreType:            form.StoreType.Normalize(),
		Name:                 form.Name,
		LogoURL:              form.LogoURL,
		Address:              address,
		OpeningHours:         hours,
		OwnerName:            form.OwnerName,
		OwnerPaternalSurname: form.OwnerPaternalSurname,
		OwnerMaternalSurname: form.OwnerMaternalSurname,
		Email:                form.Email,
		Password:             form.Password,
	}

	res, err := w.onboarding.StartSignup(ctx, in)
	if errors.Is(err, domain.ErrSignupNotFound) && in.SignupID != 0 {
		w.logger.Info().Int("signup_id", in.SignupID).Msg("stored signup unknown to the server, creating a new one")
		d.ForgetIdentifiers()
		if err := w.save(ctx, d); err != nil {
			return nil, err
		}
		in.SignupID = 0
		res, err = w.onboarding.StartSignup(ctx, in)
	}
	if err != nil {
		return nil, err
	}

	d.SignupID = res.SignupID
	d.TenantID = res.TenantID
	d.Email = form.Email
	d.Form = form
	if err := w.save(ctx, d); err != nil {
		return nil, err
	}
	return w.outcome(StepPlan, d, orDefault(res.Message, "Saved. Now choose a plan.")), nil
}

// LoadPlans fetches the active plans; nothing is cached between calls.
func (w *Wizard) LoadPlans(ctx context.Context) ([]domain.Plan, error) {
	plans, err := w.plans.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	return domain.ActivePlans(plans), nil
}

// SelectPlan stores the plan's id, name and price.
func (w *Wizard) SelectPlan(ctx context.Context, plan domain.Plan) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, err := w.current(ctx)
	if err != nil {
		return err
	}
	d.PlanID = plan.ID
	d.PlanName = plan.Name
	d.PlanPrice = plan.Price
	return w.save(ctx, d)
}

// SelectPlanByID picks one of the active plans by id.
func (w *Wizard) SelectPlanByID(ctx context.Context, id int) (domain.Plan, error) {
	plans, err := w.LoadPlans(ctx)
	if err != nil {
		return domain.Plan{}, err
	}
	plan, ok := find(plans, func(p domain.Plan) bool { return p.ID == id })
	if !ok {
		return domain.Plan{}, domain.NewValidationError("id_plan", "that plan is not available")
	}
	return plan, w.SelectPlan(ctx, plan)
}

// ContinueToPayment moves to the payment step once a plan is chosen.
func (w *Wizard) ContinueToPayment(ctx context.Context) (*Outcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, err := w.current(ctx)
	if err != nil {
		return nil, err
	}
	if !d.HasPlan() {
		return nil, domain.NewValidationError("id_plan", "select a plan to continue")
	}
	return w.outcome(StepPayment, d, ""), nil
}

// SubmitProof uploads the payment proof and moves to the waiting step.
func (w *Wizard) SubmitProof(ctx context.Context, file ports.Attachment) (*Outcome, error) {
	if !w.submitting.TryLock() {
		return nil, domain.ErrSubmissionInFlight
	}
	defer w.submitting.Unlock()
	w.mu.Lock()
	defer w.mu.Unlock()

	d, err := w.current(ctx)
	if err != nil {
		return nil, err
	}
	if msg := paymentPrecondition(d); msg != "" {
		return nil, domain.NewValidationError("signup_id", msg)
	}
	content, err := nonEmpty(file.Content)
	if err != nil {
		return nil, err
	}
	file.Content = content

	msg, err := w.onboarding.SubmitProof(ctx, ports.SubmitProof{SignupID: d.SignupID, PlanID: d.PlanID, File: file})
	if errors.Is(err, domain.ErrSignupNotFound) {
		w.logger.Info().Int("signup_id", d.SignupID).Msg("payment proof sent for an unknown signup")
		return nil, domain.ErrSignupExpired
	}
	if err != nil {
		return nil, err
	}

	out := w.enterWaiting(ctx, d)
	if out.Step == StepWaiting {
		out.Message = orDefault(msg, "Sent. Your account is waiting for validation.")
	}
	return out, nil
}

// RefreshStatus asks the server for the signup status without moving.
func (w *Wizard) RefreshStatus(ctx context.Context) (*domain.OnboardingStatus, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, err := w.current(ctx)
	if err != nil {
		return nil, err
	}
	if !d.HasSignup() {
		return nil, domain.NewValidationError("signup_id", "no registration started")
	}
	return w.onboarding.SignupStatus(ctx, d.SignupID)
}

// Reset discards everything the wizard persisted.
func (w *Wizard) Reset(ctx context.Context) (*Outcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.drafts.ClearWizard(ctx); err != nil {
		return nil, err
	}
	w.draft = domain.NewWizardDraft()
	return w.outcome(StepDetails, w.draft, ""), nil
}

// PaymentQR is the payload shown as a QR code on the payment step.
func (w *Wizard) PaymentQR(ctx context.Context) (domain.PaymentQR, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, err := w.current(ctx)
	if err != nil {
		return domain.PaymentQR{}, err
	}
	return domain.PaymentQRFor(d, w.now()), nil
}

// enterWaiting applies the waiting step's entry redirects.
func (w *Wizard) enterWaiting(ctx context.Context, d *domain.WizardDraft) *Outcome {
	if !d.HasSignup() {
		return w.outcome(StepDetails, d, "")
	}
	status, err := w.onboarding.SignupStatus(ctx, d.SignupID)
	if errors.Is(err, domain.ErrSignupNotFound) {
		w.logger.Info().Int("signup_id", d.SignupID).Msg("signup unknown to the server, discarding wizard state")
		if err := w.drafts.ClearWizard(ctx); err != nil {
			w.logger.Warn().Err(err).Msg("could not clear wizard draft")
		}
		w.draft = domain.NewWizardDraft()
		return w.outcome(StepDetails, w.draft, "")
	}
	if err != nil {
		return w.outcome(StepDetails, d, domain.UserMessage(err, "Could not check the registration status."))
	}
	if !status.HasProof || status.State.IsEarly() {
		if status.HasPlan() {
			out := w.outcome(StepPayment, d, "")
			out.Status = status
			return out
		}
		out := w.planOutcome(ctx, d, "")
		out.Status = status
		return out
	}
	out := w.outcome(StepWaiting, d, "")
	out.Status = status
	return out
}

func (w *Wizard) planOutcome(ctx context.Context, d *domain.WizardDraft, msg string) *Outcome {
	out := w.outcome(StepPlan, d, msg)
	plans, err := w.LoadPlans(ctx)
	if err != nil {
		out.Message = domain.UserMessage(err, "Could not load plans.")
		return out
	}
	out.Plans = plans
	return out
}

func (w *Wizard) outcome(step Step, d *domain.WizardDraft, msg string) *Outcome {
	return &Outcome{Step: step, Message: msg, Draft: *d}
}

// current loads the draft on first use. Callers hold w.mu.
func (w *Wizard) current(ctx context.Context) (*domain.WizardDraft, error) {
	if w.draft != nil {
		return w.draft, nil
	}
	d, err := w.drafts.LoadWizard(ctx)
	if err != nil {
		return nil, err
	}
	w.draft = d
	return d, nil
}

func (w *Wizard) save(ctx context.Context, d *domain.WizardDraft) error {
	return w.drafts.SaveWizard(ctx, d)
}

func paymentPrecondition(d *domain.WizardDraft) string {
	switch {
	case !d.HasSignup():
		return "No registration started. Go back to step 1."
	case !d.HasPlan():
		return "Select a plan (step 2)."
	}
	return ""
}

// nonEmpty refuses a missing or zero-length attachment without losing the
// byte it peeks at.
func nonEmpty(r io.Reader) (io.Reader, error) {
	missing := domain.NewValidationError("file", "attach the payment proof (PDF, JPG or PNG)")
	if r == nil {
		return nil, missing
	}
	br := bufio.NewReader(r)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, missing
		}
		return nil, err
	}
	return br, nil
}

func trimForm(f domain.BusinessForm) domain.BusinessForm {
	f.StoreType = f.StoreType.Normalize()
	f.Name = strings.TrimSpace(f.Name)
	f.LogoURL = strings.TrimSpace(f.LogoURL)
	f.Address = strings.TrimSpace(f.Address)
	f.Hours.Opens = strings.TrimSpace(f.Hours.Opens)
	f.Hours.Closes = strings.TrimSpace(f.Hours.Closes)
	f.OwnerName = strings.TrimSpace(f.OwnerName)
	f.OwnerPaternalSurname = strings.TrimSpace(f.OwnerPaternalSurname)
	f.OwnerMaternalSurname = strings.TrimSpace(f.OwnerMaternalSurname)
	f.Email = strings.TrimSpace(f.Email)
	return f
}
