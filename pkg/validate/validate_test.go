package validate_test

import (
	"testing"

	"github.com/shashiranjanraj/kapee/pkg/validate"
)

type registerInput struct {
	Name     string `json:"Name"     validate:"nullable,max=100"`
	Email    string `json:"Email"    validate:"required,email"`
	Password string `json:"Password" validate:"required,min=2"`
	Role     string `json:"Role"     validate:"nullable,in=user|admin"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(registerInput{Email: "ada@example.com", Password: "p1"})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(registerInput{})
	if _, ok := errs["Email"]; !ok {
		t.Error("expected Email to be required")
	}
	if _, ok := errs["Password"]; !ok {
		t.Error("expected Password to be required")
	}
	if _, ok := errs["Name"]; ok {
		t.Error("nullable Name must be skipped when empty")
	}
}

func TestEmailRule(t *testing.T) {
	errs := validate.Struct(registerInput{Email: "not-an-email", Password: "xx"})
	if _, ok := errs["Email"]; !ok {
		t.Error("expected email validation error")
	}
}

func TestInRule(t *testing.T) {
	errs := validate.Struct(registerInput{Email: "a@x.com", Password: "xx", Role: "root"})
	if _, ok := errs["Role"]; !ok {
		t.Error("expected Role=root to be rejected")
	}
	errs = validate.Struct(registerInput{Email: "a@x.com", Password: "xx", Role: "admin"})
	if validate.HasErrors(errs) {
		t.Errorf("expected Role=admin to pass, got %v", errs)
	}
}

func TestPointerPresenceAndBounds(t *testing.T) {
	type in struct {
		Quantity *int `json:"quantity" validate:"required,gte=0"`
	}

	if errs := validate.Struct(in{}); !validate.HasErrors(errs) {
		t.Error("expected missing quantity to fail")
	}

	zero := 0
	if errs := validate.Struct(in{Quantity: &zero}); validate.HasErrors(errs) {
		t.Errorf("expected explicit zero to pass, got %v", errs)
	}

	neg := -1
	if errs := validate.Struct(in{Quantity: &neg}); !validate.HasErrors(errs) {
		t.Error("expected negative quantity to fail")
	}
}

func TestObjectID(t *testing.T) {
	type in struct {
		ID string `json:"id" validate:"required,objectid"`
	}
	if errs := validate.Struct(in{ID: "64b7f0c2a1b2c3d4e5f60718"}); validate.HasErrors(errs) {
		t.Errorf("expected valid id, got %v", errs)
	}
	if errs := validate.Struct(in{ID: "xyz"}); !validate.HasErrors(errs) {
		t.Error("expected invalid id to fail")
	}
}
