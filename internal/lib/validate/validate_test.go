package validate

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Email string `validate:"required,email"`
	Count int    `validate:"gt=0"`
}

func TestStruct(t *testing.T) {
	if err := Struct(&sample{Email: "a@b.test", Count: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := Struct(&sample{Email: "not-an-email", Count: 0})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "email failed 'email'") {
		t.Errorf("message should name the email field: %v", err)
	}
	if !strings.Contains(err.Error(), "count failed 'gt'") {
		t.Errorf("message should name the count field: %v", err)
	}
	if strings.Contains(err.Error(), "not-an-email") {
		t.Errorf("message must not echo values: %v", err)
	}
}

func TestVar(t *testing.T) {
	if err := Var("ops@school.test", "email"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Var("nope", "email"); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}
