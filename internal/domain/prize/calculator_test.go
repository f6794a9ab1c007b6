package prize

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewCalculator_CommissionBounds(t *testing.T) {
	for _, c := range []int{-5, 0, 100, 250} {
		if _, err := NewCalculator(c); err == nil {
			t.Fatalf("expected commission %d to be rejected", c)
		}
	}
	for _, c := range []int{1, 10, 99} {
		if _, err := NewCalculator(c); err != nil {
			t.Fatalf("commission %d: %v", c, err)
		}
	}
}

func TestCalculator_Prize(t *testing.T) {
	tests := []struct {
		commission int
		players    int
		want       int64
	}{
		{commission: 10, players: 0, want: 0},
		{commission: 10, players: 1, want: 90},
		{commission: 10, players: 2, want: 180},
		{commission: 1, players: 1000, want: 99000},
		{commission: 99, players: 7, want: 7},
	}

	for _, tt := range tests {
		calc, err := NewCalculator(tt.commission)
		if err != nil {
			t.Fatalf("new calculator: %v", err)
		}
		got := calc.Prize(tt.players)
		if !got.Equal(decimal.NewFromInt(tt.want)) {
			t.Fatalf("prize(%d, %d): got=%s want=%d", tt.players, tt.commission, got, tt.want)
		}
	}
}

func TestCalculator_SumIsExact(t *testing.T) {
	calc, err := NewCalculator(33)
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}

	counts := make([]int, 10000)
	for i := range counts {
		counts[i] = 3
	}
	got := calc.Sum(counts...)
	if want := decimal.NewFromInt(67 * 3 * 10000); !got.Equal(want) {
		t.Fatalf("sum: got=%s want=%s", got, want)
	}
}

func TestCalculator_PrizePanicsOnNegativeCount(t *testing.T) {
	calc, _ := NewCalculator(10)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	calc.Prize(-1)
}
