package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckStatus is the lifecycle state of a check.
type CheckStatus string

const (
	// StatusUpcoming marks a check whose due date is still ahead.
	StatusUpcoming CheckStatus = "a vencer"

	// StatusOverdue marks a check whose due date has passed without payment.
	StatusOverdue CheckStatus = "vencido"

	// StatusPaid marks a check with a recorded payment date.
	StatusPaid CheckStatus = "pago"

	// StatusReturned marks a bounced check. Never derived, only set manually.
	StatusReturned CheckStatus = "devolvido"

	// StatusUnset means no status could be derived. A check cannot be
	// submitted while unset.
	StatusUnset CheckStatus = ""
)

// IsValid checks if the status is one of the persisted statuses.
func (s CheckStatus) IsValid() bool {
	switch s {
	case StatusUpcoming, StatusOverdue, StatusPaid, StatusReturned:
		return true
	}
	return false
}

// CheckOperation distinguishes payable from receivable checks.
type CheckOperation string

const (
	OperationPayable    CheckOperation = "a_pagar"
	OperationReceivable CheckOperation = "a_receber"
)

// IsValid checks if the operation is a known operation kind.
func (o CheckOperation) IsValid() bool {
	return o == OperationPayable || o == OperationReceivable
}

// Check is a bank check tracked through its lifecycle.
type Check struct {
	ID            int64           `json:"id"`
	BankAccountID int64           `json:"id_conta_bancaria"`
	PartyID       int64           `json:"id_responsavel"`
	Operation     CheckOperation  `json:"operacao"`
	Number        string          `json:"numero"`
	Value         decimal.Decimal `json:"valor"`
	IssuedAt      time.Time       `json:"data_emissao"`
	DueAt         *time.Time      `json:"data_vencimento"`
	PaidAt        *time.Time      `json:"data_pagamento"`
	Recipient     *string         `json:"destinatario"`
	Description   *string         `json:"descricao"`
	Status        CheckStatus     `json:"status"`
	CreatedBy     int64           `json:"criado_por"`
}

// DeriveStatus computes a check's status from its due and payment dates.
// Overdue wins over paid, paid wins over upcoming; with neither date set the
// status is unset and the check needs manual resolution before it can be
// saved. The derivation runs only while a check is being edited; a persisted
// status is authoritative and is not recomputed on read.
func DeriveStatus(dueAt, paidAt *time.Time, now time.Time) CheckStatus {
	today := startOfDay(now)

	if dueAt != nil && endOfDay(*dueAt).Before(today) {
		return StatusOverdue
	}
	if paidAt != nil {
		return StatusPaid
	}
	if dueAt != nil {
		return StatusUpcoming
	}
	return StatusUnset
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// DateField selects which check date the range filter applies to.
type DateField string

const (
	FilterByIssueDate DateField = "emissao"
	FilterByDueDate   DateField = "vencimento"
)

// IsValid checks if the field is a known filter field.
func (f DateField) IsValid() bool {
	return f == FilterByIssueDate || f == FilterByDueDate
}

// DateRange scopes check retrieval to an inclusive date window over one of
// the check's date fields.
type DateRange struct {
	Start time.Time
	End   time.Time
	Field DateField
}

// Contains reports whether the check falls inside the range. A check without
// a due date never matches a due-date filter.
func (r DateRange) Contains(c *Check) bool {
	var at time.Time
	switch r.Field {
	case FilterByDueDate:
		if c.DueAt == nil {
			return false
		}
		at = *c.DueAt
	default:
		at = c.IssuedAt
	}

	day := startOfDay(at)
	return !day.Before(startOfDay(r.Start)) && !day.After(endOfDay(r.End))
}
