package domain

import "github.com/shopspring/decimal"

// Summary aggregates a fetched check list for the dashboard: counts and
// totals split by operation kind and by status.
type Summary struct {
	PayableCount    int
	PayableTotal    decimal.Decimal
	ReceivableCount int
	ReceivableTotal decimal.Decimal

	ByStatus map[CheckStatus]StatusTotal
}

// StatusTotal is the count and value total for one status bucket.
type StatusTotal struct {
	Count int
	Total decimal.Decimal
}

// Summarize aggregates checks into a Summary. Pure; operates on whatever
// slice the caller passes, typically the currently filtered list.
func Summarize(checks []*Check) Summary {
	s := Summary{
		PayableTotal:    decimal.Zero,
		ReceivableTotal: decimal.Zero,
		ByStatus:        make(map[CheckStatus]StatusTotal),
	}

	for _, c := range checks {
		switch c.Operation {
		case OperationPayable:
			s.PayableCount++
			s.PayableTotal = s.PayableTotal.Add(c.Value)
		case OperationReceivable:
			s.ReceivableCount++
			s.ReceivableTotal = s.ReceivableTotal.Add(c.Value)
		}

		bucket := s.ByStatus[c.Status]
		bucket.Count++
		bucket.Total = bucket.Total.Add(c.Value)
		s.ByStatus[c.Status] = bucket
	}

	return s
}

// Balance is the receivable total minus the payable total.
func (s Summary) Balance() decimal.Decimal {
	return s.ReceivableTotal.Sub(s.PayableTotal)
}
