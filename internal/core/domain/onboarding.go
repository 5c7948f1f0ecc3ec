package domain

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"
)

// SignupState is the server-side lifecycle of a business signup.
type SignupState string

const (
	SignupDraft        SignupState = "borrador"
	SignupPlanSelected SignupState = "plan_seleccionado"
	SignupWaiting      SignupState = "en_espera"
	SignupApproved     SignupState = "aprobado"
	SignupRejected     SignupState = "rechazado"
)

// Normalize lower-cases and trims the wire value.
func (s SignupState) Normalize() SignupState {
	return SignupState(strings.ToLower(strings.TrimSpace(string(s))))
}

// IsEarly reports a signup that has not reached review yet.
func (s SignupState) IsEarly() bool {
	n := s.Normalize()
	return n == SignupDraft || n == SignupPlanSelected
}

// StartResult is returned when signup details are created or updated.
type StartResult struct {
	SignupID int    `json:"signup_id"`
	TenantID int    `json:"tenant_id"`
	Message  string `json:"message"`
	// Created is true when the server created a new signup (201).
	Created bool `json:"-"`
}

// OnboardingStatus is the server's view of a signup.
type OnboardingStatus struct {
	SignupID int         `json:"signup_id"`
	TenantID int         `json:"tenant_id"`
	PlanID   int         `json:"id_plan"`
	State    SignupState `json:"estado"`
	Message  string      `json:"message"`
	HasProof bool        `json:"tiene_comprobante"`
}

func (s OnboardingStatus) HasPlan() bool { return s.PlanID != 0 }

// PendingSignup is one row of the administrator review queue.
type PendingSignup struct {
	TenantID       int             `json:"tenant_id"`
	SubscriptionID int             `json:"suscripcion_id"`
	State          SignupState     `json:"estado"`
	Business       BusinessProfile `json:"microempresa"`
	Plan           struct {
		Name  string `json:"nombre"`
		Price Price  `json:"precio"`
	} `json:"plan"`
	ProofURL    string `json:"proof_url,omitempty"`
	ProofAltURL string `json:"comprobante_url,omitempty"`
	ProofPath   string `json:"comprobante_path,omitempty"`
}

// ProofRef is whichever proof reference the server filled in.
func (p PendingSignup) ProofRef() string {
	return firstNonEmpty(p.ProofURL, p.ProofAltURL, p.ProofPath)
}

// ProofLink resolves the proof reference against the API base. Absolute
// http(s) links are kept, paths are joined onto the base.
func (p PendingSignup) ProofLink(base string) string {
	return ResolveProofLink(base, p.ProofRef())
}

func ResolveProofLink(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return ref
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(ref, "/")
}

// BusinessForm is the signup details form. The password never leaves memory:
// it is excluded from every serialized draft.
type BusinessForm struct {
	StoreType            StoreType `json:"tipo_tienda"`
	Name                 string    `json:"nombre" validate:"required"`
	LogoURL              string    `json:"logo_url" validate:"omitempty,url"`
	Address              string    `json:"direccion"`
	Hours                Hours     `json:"horario"`
	OwnerName            string    `json:"nombre_propietario" validate:"required"`
	OwnerPaternalSurname string    `json:"apellido_paterno_propietario" validate:"required"`
	OwnerMaternalSurname string    `json:"apellido_materno_propietario"`
	Email                string    `json:"email" validate:"required,email"`
	Password             string    `json:"-"`
}

// SetField assigns a form field by its wire name. Switching to a virtual store
// clears the physical-only fields.
func (f *BusinessForm) SetField(name, value string) error {
	switch name {
	case "tipo_tienda":
		t, err := ParseStoreType(value)
		if err != nil {
			return err
		}
		f.StoreType = t
		if t == StoreVirtual {
			f.Address = ""
			f.Hours = Hours{}
		}
	case "nombre":
		f.Name = value
	case "logo_url":
		f.LogoURL = value
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
	case "email":
		f.Email = value
	case "password":
		f.Password = value
	default:
		return NewValidationError(name, "unknown field "+name)
	}
	return nil
}

// WizardDraftVersion tags the persisted draft schema. Drafts written under any
// other version are discarded.
const WizardDraftVersion = 2

// WizardDraft is everything the signup wizard persists between sessions.
type WizardDraft struct {
	Version   int          `json:"version"`
	SignupID  int          `json:"signup_id,omitempty"`
	TenantID  int          `json:"tenant_id,omitempty"`
	Email     string       `json:"email,omitempty"`
	PlanID    int          `json:"plan_id,omitempty"`
	PlanName  string       `json:"plan_name,omitempty"`
	PlanPrice Price        `json:"plan_price,omitempty"`
	Form      BusinessForm `json:"form"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewWizardDraft is an empty draft for a physical store.
func NewWizardDraft() *WizardDraft {
	return &WizardDraft{
		Version: WizardDraftVersion,
		Form:    BusinessForm{StoreType: StorePhysical},
	}
}

// ForgetIdentifiers drops the signup, tenant and plan keys but keeps the form.
func (d *WizardDraft) ForgetIdentifiers() {
	d.SignupID = 0
	d.TenantID = 0
	d.PlanID = 0
	d.PlanName = ""
	d.PlanPrice = 0
}

func (d *WizardDraft) HasSignup() bool { return d.SignupID != 0 }
func (d *WizardDraft) HasPlan() bool   { return d.PlanID != 0 }

// PaymentQR is the payload encoded in the payment QR code.
type PaymentQR struct {
	App      string    `json:"app"`
	TenantID *int      `json:"tenant_id"`
	SignupID *int      `json:"signup_id"`
	PlanID   *int      `json:"plan_id"`
	Plan     *string   `json:"plan"`
	Amount   *string   `json:"amount"`
	Email    *string   `json:"email"`
	Time     time.Time `json:"ts"`
}

const paymentQRApp = "microempresa-saas"

// PaymentQRFor builds the QR payload from a draft. Missing values are null.
func PaymentQRFor(d *WizardDraft, now time.Time) PaymentQR {
	q := PaymentQR{App: paymentQRApp, Time: now.UTC()}
	if tenant := d.TenantID; tenant != 0 {
		q.TenantID = &tenant
	}
	if signup := d.SignupID; signup != 0 {
		q.SignupID = &signup
	}
	if plan := d.PlanID; plan != 0 {
		q.PlanID = &plan
	}
	if d.PlanName != "" {
		name := d.PlanName
		q.Plan = &name
	}
	if d.PlanPrice != 0 {
		amount := d.PlanPrice.String()
		q.Amount = &amount
	}
	email := strings.TrimSpace(firstNonEmpty(d.Email, d.Form.Email))
	if email != "" {
		q.Email = &email
	}
	return q
}

func (q PaymentQR) Encode() (string, error) {
	b, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
