package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/microempresa/portal-client/internal/core/domain"
)

type sampleForm struct {
	Name  string `json:"nombre" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Logo  string `json:"logo_url" validate:"omitempty,url"`
	Pass  string `json:"password" validate:"omitempty,min=6"`
}

func TestValidator_Struct_OK(t *testing.T) {
	v := New()
	if err := v.Struct(sampleForm{Name: "Ana", Email: "ana@shop.bo"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidator_Struct_UsesJSONNames(t *testing.T) {
	v := New()
	err := v.Struct(sampleForm{Email: "nope", Logo: "not a url", Pass: "123"})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *domain.ValidationError, got %T %v", err, err)
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("validation errors must match ErrValidation")
	}
	if ve.Field != "nombre" {
		t.Fatalf("first failing field should be nombre, got %q", ve.Field)
	}
	for _, want := range []string{"nombre is required", "email must be a valid email", "logo_url must be a valid URL", "password must be at least 6"} {
		if !strings.Contains(ve.Message, want) {
			t.Errorf("message %q missing %q", ve.Message, want)
		}
	}
}
