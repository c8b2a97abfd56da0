package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidCPF      = errors.New("invalid CPF")
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrPasswordTooWeak = errors.New("password does not meet requirements")
	ErrInvalidBankCode = errors.New("invalid bank code")
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrEmptyNumber     = errors.New("check number cannot be empty")
)

// Validation constants
const (
	CPFLength         = 11
	MaxBankCodeLength = 3
	MinPasswordLength = 8
	MaxNameLength     = 255
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nonDigitRegex = regexp.MustCompile(`\D`)
	bankCodeRegex = regexp.MustCompile(`^[0-9]{1,3}$`)
)

// NormalizeCPF strips formatting characters from a CPF, keeping digits only.
func NormalizeCPF(cpf string) string {
	return nonDigitRegex.ReplaceAllString(cpf, "")
}

// ValidateCPF validates a CPF after stripping formatting.
func ValidateCPF(cpf string) error {
	digits := NormalizeCPF(cpf)

	if len(digits) != CPFLength {
		return fmt.Errorf("%w: must contain %d digits", ErrInvalidCPF, CPFLength)
	}

	return nil
}

// ValidateEmail validates email format.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidatePassword validates password strength: minimum length plus at least
// one uppercase letter, one lowercase letter, one digit and one special
// character.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooWeak, MinPasswordLength)
	}

	hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
	hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	hasSpecial := regexp.MustCompile(`[^a-zA-Z0-9]`).MatchString(password)

	if !hasUpper || !hasLower || !hasNumber || !hasSpecial {
		return fmt.Errorf("%w: must contain uppercase, lowercase, numbers and a special character", ErrPasswordTooWeak)
	}

	return nil
}

// ValidateBankCode validates a numeric bank code of up to three digits.
func ValidateBankCode(code string) error {
	if !bankCodeRegex.MatchString(strings.TrimSpace(code)) {
		return fmt.Errorf("%w: must be numeric with at most %d digits", ErrInvalidBankCode, MaxBankCodeLength)
	}

	return nil
}

// ValidateName validates a display name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return ErrEmptyName
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrEmptyName, MaxNameLength)
	}

	return nil
}

// Validate checks a check's fields before submission. An unset status blocks
// the save; the caller is expected to run DeriveStatus first and ask the user
// to resolve the status when derivation yields unset.
func (c *Check) Validate() error {
	if c.BankAccountID == 0 {
		return ErrAccountNotFound
	}
	if c.PartyID == 0 {
		return ErrPartyNotFound
	}
	if strings.TrimSpace(c.Number) == "" {
		return ErrEmptyNumber
	}
	if c.Value.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidValue
	}
	if !c.Operation.IsValid() {
		return ErrInvalidOperation
	}
	if c.Status == StatusUnset {
		return ErrStatusUnset
	}
	if !c.Status.IsValid() {
		return ErrInvalidStatus
	}

	return nil
}
