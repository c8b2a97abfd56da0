package main

import (
	"testing"
	"time"

	"github.com/chequelab/carteira/internal/domain"
)

func TestNormalizeSearchQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"joão", "joão"},
		{"pesquisa-joão_pereira", "joão pereira"},
		{"a_pagar", "a pagar"},
		{"pesquisa-150.50", "150.50"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeSearchQuery(tt.in); got != tt.want {
			t.Fatalf("normalizeSearchQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	parsed, err := parseDate("2026-03-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Year() != 2026 || parsed.Month() != time.March || parsed.Day() != 10 {
		t.Fatalf("unexpected date: %v", parsed)
	}

	if _, err := parseDate("10/03/2026"); err == nil {
		t.Fatal("expected error for wrong layout")
	}
}

func TestBuildCheckDerivesStatus(t *testing.T) {
	future := time.Now().AddDate(0, 1, 0).Format(dateLayout)
	past := time.Now().AddDate(0, -1, 0).Format(dateLayout)
	today := time.Now().Format(dateLayout)

	check, err := buildCheck(1, 2, "a_pagar", "42", "150,50", today, future, "", "", "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if check.Status != domain.StatusUpcoming {
		t.Fatalf("expected upcoming, got %q", check.Status)
	}
	if check.Value.String() != "150.5" {
		t.Fatalf("expected comma folded to decimal point, got %s", check.Value)
	}

	check, err = buildCheck(1, 2, "a_receber", "42", "10", today, past, "", "", "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if check.Status != domain.StatusOverdue {
		t.Fatalf("expected overdue, got %q", check.Status)
	}

	// No dates: the status cannot be derived and the check is refused.
	if _, err := buildCheck(1, 2, "a_pagar", "42", "10", today, "", "", "", "", false); err == nil {
		t.Fatal("expected error without due or payment date")
	}

	// Devolvido overrides the derivation.
	check, err = buildCheck(1, 2, "a_pagar", "42", "10", today, past, "", "", "", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if check.Status != domain.StatusReturned {
		t.Fatalf("expected returned, got %q", check.Status)
	}
}

func TestBuildCheckRejectsBadInput(t *testing.T) {
	today := time.Now().Format(dateLayout)
	future := time.Now().AddDate(0, 1, 0).Format(dateLayout)

	if _, err := buildCheck(1, 2, "a_pagar", "42", "abc", today, future, "", "", "", false); err == nil {
		t.Fatal("expected error for non-numeric value")
	}
	if _, err := buildCheck(1, 2, "transferencia", "42", "10", today, future, "", "", "", false); err == nil {
		t.Fatal("expected error for unknown operation")
	}
	if _, err := buildCheck(0, 2, "a_pagar", "42", "10", today, future, "", "", "", false); err == nil {
		t.Fatal("expected error without bank account")
	}
}

func TestFormatValue(t *testing.T) {
	check, err := buildCheck(1, 2, "a_pagar", "42", "150,5", time.Now().Format(dateLayout),
		time.Now().AddDate(0, 1, 0).Format(dateLayout), "", "", "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := formatValue(check.Value); got != "R$ 150.50" {
		t.Fatalf("formatValue = %q", got)
	}
}
