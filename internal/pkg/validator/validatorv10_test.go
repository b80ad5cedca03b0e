package validator

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Email      string `validate:"required,email"`
	Tenant     string `validate:"omitempty,tenant"`
	PassCode   string `validate:"omitempty,passcode"`
	MaxRetries int    `validate:"gte=0"`
}

func TestV10Validator(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	tests := []struct {
		name       string
		in         sample
		wantFields []string
	}{
		{name: "valid", in: sample{Email: "a@b.test", Tenant: "acme_01", PassCode: "012345"}},
		{name: "empty tenant allowed", in: sample{Email: "a@b.test"}},
		{name: "missing email", in: sample{}, wantFields: []string{"email"}},
		{name: "bad tenant", in: sample{Email: "a@b.test", Tenant: "acme corp"}, wantFields: []string{"tenant"}},
		{name: "tenant too long", in: sample{Email: "a@b.test", Tenant: strings.Repeat("t", 65)}, wantFields: []string{"tenant"}},
		{name: "non numeric code", in: sample{Email: "a@b.test", PassCode: "12ab"}, wantFields: []string{"pass_code"}},
		{name: "negative", in: sample{Email: "a@b.test", MaxRetries: -1}, wantFields: []string{"max_retries"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			err := v.Validate(tt.in)

			// Assert
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verr V10ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected V10ValidationError, got %v", err)
			}
			for _, f := range tt.wantFields {
				if verr.Values()[f] == "" {
					t.Fatalf("missing field %q in %v", f, verr)
				}
			}
		})
	}
}

func TestV10Validator_TenantMessage(t *testing.T) {
	// Arrange
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	// Act
	err = v.Validate(sample{Email: "a@b.test", Tenant: "no spaces"})

	// Assert
	var verr V10ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected V10ValidationError, got %v", err)
	}
	if !strings.Contains(verr["tenant"], "letters, digits") {
		t.Fatalf("unexpected message %q", verr["tenant"])
	}
}
