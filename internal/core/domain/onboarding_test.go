package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestResolveProofLink(t *testing.T) {
	base := "http://api.local:5000/"
	tests := []struct {
		ref  string
		want string
	}{
		{ref: "", want: ""},
		{ref: "https://cdn.example.com/p.pdf", want: "https://cdn.example.com/p.pdf"},
		{ref: "/api/uploads/p.pdf", want: "http://api.local:5000/api/uploads/p.pdf"},
		{ref: "api/uploads/p.pdf", want: "http://api.local:5000/api/uploads/p.pdf"},
	}
	for _, tt := range tests {
		if got := ResolveProofLink(base, tt.ref); got != tt.want {
			t.Errorf("ResolveProofLink(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestPendingSignup_ProofRefPrecedence(t *testing.T) {
	var p PendingSignup
	if err := json.Unmarshal([]byte(`{"tenant_id":3,"comprobante_path":"uploads/a.png","plan":{"nombre":"Pro","precio":"49.90"}}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.ProofRef() != "uploads/a.png" {
		t.Fatalf("unexpected proof ref %q", p.ProofRef())
	}
	if p.Plan.Price != 49.90 {
		t.Fatalf("price not decoded from string: %v", p.Plan.Price)
	}
}

func TestPlan_UnmarshalLegacyFeatures(t *testing.T) {
	var p Plan
	if err := json.Unmarshal([]byte(`{"id_plan":1,"nombre":"Basic","precio":10,"estado":"activo","features":["a","b"]}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(p.Features) != 2 || !p.IsActive() {
		t.Fatalf("unexpected plan: %+v", p)
	}
}

func TestActivePlans(t *testing.T) {
	plans := []Plan{{ID: 1, Status: "activo"}, {ID: 2, Status: "inactivo"}, {ID: 3, Status: "ACTIVO"}}
	got := ActivePlans(plans)
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("unexpected active plans: %+v", got)
	}
}

func TestNormalizeFeatures(t *testing.T) {
	got := NormalizeFeatures([]string{" envíos ", "", "   ", "soporte"})
	if strings.Join(got, "|") != "envíos|soporte" {
		t.Fatalf("unexpected features: %v", got)
	}
}

func TestPaymentQRFor(t *testing.T) {
	d := NewWizardDraft()
	d.SignupID = 11
	d.TenantID = 4
	d.PlanID = 2
	d.PlanName = "Pro"
	d.PlanPrice = 49.9
	d.Form.Email = " owner@shop.bo "

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	payload, err := PaymentQRFor(d, ts).Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(payload), &got); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if got["app"] != "microempresa-saas" || got["signup_id"] != float64(11) || got["amount"] != "49.90" || got["email"] != "owner@shop.bo" {
		t.Fatalf("unexpected payload: %v", got)
	}

	empty, _ := PaymentQRFor(NewWizardDraft(), ts).Encode()
	if !strings.Contains(empty, `"signup_id":null`) {
		t.Fatalf("missing values should be null: %s", empty)
	}
}

func TestWizardDraft_ForgetIdentifiersKeepsForm(t *testing.T) {
	d := NewWizardDraft()
	d.SignupID, d.TenantID, d.PlanID, d.PlanName = 1, 2, 3, "Pro"
	d.Form.Name = "Tienda"
	d.ForgetIdentifiers()
	if d.HasSignup() || d.HasPlan() || d.TenantID != 0 || d.PlanName != "" {
		t.Fatalf("identifiers not cleared: %+v", d)
	}
	if d.Form.Name != "Tienda" {
		t.Fatalf("form must survive: %+v", d.Form)
	}
}

func TestBusinessForm_PasswordNeverSerialized(t *testing.T) {
	d := NewWizardDraft()
	d.Form.Password = "s3cret"
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "s3cret") {
		t.Fatalf("password leaked into draft: %s", b)
	}
}
