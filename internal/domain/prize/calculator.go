package prize

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	MinCommissionPercent = 1
	MaxCommissionPercent = 99
)

// Calculator turns a participant count into a payout. Each participant
// contributes 100 minus the commission.
type Calculator struct {
	share decimal.Decimal
}

func NewCalculator(commissionPercent int) (Calculator, error) {
	if err := ValidateCommission(commissionPercent); err != nil {
		return Calculator{}, err
	}
	return Calculator{share: decimal.NewFromInt(int64(100 - commissionPercent))}, nil
}

func ValidateCommission(commissionPercent int) error {
	if commissionPercent < MinCommissionPercent || commissionPercent > MaxCommissionPercent {
		return fmt.Errorf("commission percentage must be within [%d,%d], got %d", MinCommissionPercent, MaxCommissionPercent, commissionPercent)
	}
	return nil
}

// Prize panics on a negative count.
func (c Calculator) Prize(participants int) decimal.Decimal {
	if participants < 0 {
		panic(fmt.Sprintf("prize: negative participant count %d", participants))
	}
	return c.share.Mul(decimal.NewFromInt(int64(participants)))
}

// Sum adds prizes exactly for each count.
func (c Calculator) Sum(counts ...int) decimal.Decimal {
	total := decimal.Zero
	for _, n := range counts {
		total = total.Add(c.Prize(n))
	}
	return total
}
