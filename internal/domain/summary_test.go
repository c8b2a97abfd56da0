package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	checks := []*Check{
		{Operation: OperationPayable, Status: StatusUpcoming, Value: decimal.NewFromFloat(100.50)},
		{Operation: OperationPayable, Status: StatusOverdue, Value: decimal.NewFromInt(200)},
		{Operation: OperationReceivable, Status: StatusPaid, Value: decimal.NewFromInt(500)},
	}

	s := Summarize(checks)

	assert.Equal(t, 2, s.PayableCount)
	assert.True(t, s.PayableTotal.Equal(decimal.NewFromFloat(300.50)), "payable total = %s", s.PayableTotal)
	assert.Equal(t, 1, s.ReceivableCount)
	assert.True(t, s.ReceivableTotal.Equal(decimal.NewFromInt(500)))
	assert.True(t, s.Balance().Equal(decimal.NewFromFloat(199.50)), "balance = %s", s.Balance())

	assert.Equal(t, 1, s.ByStatus[StatusOverdue].Count)
	assert.True(t, s.ByStatus[StatusOverdue].Total.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, 1, s.ByStatus[StatusPaid].Count)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)

	assert.Zero(t, s.PayableCount)
	assert.True(t, s.PayableTotal.IsZero())
	assert.True(t, s.Balance().IsZero())
	assert.Empty(t, s.ByStatus)
}
