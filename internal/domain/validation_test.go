package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateCPF(t *testing.T) {
	tests := []struct {
		name    string
		cpf     string
		wantErr bool
	}{
		{"valid digits", "12345678901", false},
		{"valid with formatting", "123.456.789-01", false},
		{"too short", "1234567890", true},
		{"too long", "123456789012", true},
		{"empty", "", true},
		{"letters only", "abcdefghijk", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCPF(tt.cpf)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCPF(%q) error = %v, wantErr %v", tt.cpf, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCPF) {
				t.Fatalf("expected ErrInvalidCPF, got %v", err)
			}
		})
	}
}

func TestNormalizeCPF(t *testing.T) {
	if got := NormalizeCPF("123.456.789-01"); got != "12345678901" {
		t.Fatalf("NormalizeCPF() = %q", got)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Str0ng!pass", false},
		{"too short", "S1!a", true},
		{"no uppercase", "str0ng!pass", true},
		{"no lowercase", "STR0NG!PASS", true},
		{"no digit", "Strong!pass", true},
		{"no special character", "Str0ngpass", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestValidateBankCode(t *testing.T) {
	for _, code := range []string{"1", "33", "341"} {
		if err := ValidateBankCode(code); err != nil {
			t.Fatalf("ValidateBankCode(%q) unexpected error: %v", code, err)
		}
	}
	for _, code := range []string{"", "1234", "33a", "-1"} {
		if err := ValidateBankCode(code); err == nil {
			t.Fatalf("ValidateBankCode(%q) expected error", code)
		}
	}
}

func TestCheckValidate(t *testing.T) {
	valid := func() *Check {
		return &Check{
			BankAccountID: 1,
			PartyID:       2,
			Operation:     OperationPayable,
			Number:        "000123",
			Value:         decimal.NewFromInt(100),
			Status:        StatusUpcoming,
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Check)
		wantErr error
	}{
		{"missing account", func(c *Check) { c.BankAccountID = 0 }, ErrAccountNotFound},
		{"missing party", func(c *Check) { c.PartyID = 0 }, ErrPartyNotFound},
		{"blank number", func(c *Check) { c.Number = "   " }, ErrEmptyNumber},
		{"zero value", func(c *Check) { c.Value = decimal.Zero }, ErrInvalidValue},
		{"negative value", func(c *Check) { c.Value = decimal.NewFromInt(-5) }, ErrInvalidValue},
		{"bad operation", func(c *Check) { c.Operation = "transfer" }, ErrInvalidOperation},
		{"unset status blocks save", func(c *Check) { c.Status = StatusUnset }, ErrStatusUnset},
		{"unknown status", func(c *Check) { c.Status = "perdido" }, ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
