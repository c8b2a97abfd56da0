package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SearchIndex resolves the references a check search needs: the responsible
// party's name and the bank account's number for each check.
type SearchIndex struct {
	parties  map[int64]*ResponsibleParty
	accounts map[int64]*BankAccount
}

// NewSearchIndex builds a lookup index over parties and accounts.
func NewSearchIndex(parties []*ResponsibleParty, accounts []*BankAccount) *SearchIndex {
	idx := &SearchIndex{
		parties:  make(map[int64]*ResponsibleParty, len(parties)),
		accounts: make(map[int64]*BankAccount, len(accounts)),
	}
	for _, p := range parties {
		idx.parties[p.ID] = p
	}
	for _, a := range accounts {
		idx.accounts[a.ID] = a
	}
	return idx
}

// SearchChecks filters an already-fetched check list by a free-text query.
// A query that parses as a number matches against check number, value or
// account number substrings; anything else matches case-insensitively against
// the responsible party's name, the status text, or the operation kind (with
// spaces folded to underscores, mirroring how deep links encode searches).
func SearchChecks(checks []*Check, query string, idx *SearchIndex) []*Check {
	if strings.TrimSpace(query) == "" {
		return checks
	}

	numeric := strings.ReplaceAll(query, ",", ".")
	if isNumeric(numeric) {
		asDecimal, parseErr := decimal.NewFromString(numeric)
		return filterChecks(checks, func(c *Check) bool {
			if strings.Contains(c.Number, numeric) {
				return true
			}
			// "150.50" and "150.5" are the same amount, so compare values
			// as well as substrings.
			if strings.Contains(c.Value.String(), numeric) || (parseErr == nil && c.Value.Equal(asDecimal)) {
				return true
			}
			if acc, ok := idx.accounts[c.BankAccountID]; ok {
				return strings.Contains(acc.Number, numeric)
			}
			return false
		})
	}

	lower := strings.ToLower(query)
	underscored := strings.ReplaceAll(lower, " ", "_")
	return filterChecks(checks, func(c *Check) bool {
		if party, ok := idx.parties[c.PartyID]; ok {
			if strings.Contains(strings.ToLower(party.Name), lower) {
				return true
			}
		}
		if strings.Contains(strings.ToLower(string(c.Status)), lower) {
			return true
		}
		return strings.Contains(strings.ToLower(string(c.Operation)), underscored)
	})
}

func filterChecks(checks []*Check, keep func(*Check) bool) []*Check {
	out := make([]*Check, 0, len(checks))
	for _, c := range checks {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// isNumeric mirrors the permissive numeric test used for search input: the
// whole string must parse as a decimal number.
func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}

	dots := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.':
			dots++
			if dots > 1 {
				return false
			}
		case (r == '-' || r == '+') && i == 0:
		default:
			return false
		}
	}
	return s != "." && s != "-" && s != "+"
}
