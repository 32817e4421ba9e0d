package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/AvavSam/split-bills/internal/models"
	"github.com/AvavSam/split-bills/internal/money"
)

func balance(userID, amount string) models.UserBalance {
	return models.UserBalance{UserID: userID, DisplayName: userID, Balance: money.MustParse(amount)}
}

func TestSettlements(t *testing.T) {
	tests := []struct {
		name     string
		balances []models.UserBalance
		want     []models.Settlement
	}{
		{
			name:     "two members single transfer",
			balances: []models.UserBalance{balance("alice", "100"), balance("bob", "-100")},
			want: []models.Settlement{
				{FromUserID: "bob", ToUserID: "alice", Amount: money.MustParse("100")},
			},
		},
		{
			name: "largest debtor pays largest creditor first",
			balances: []models.UserBalance{
				balance("alice", "150"), balance("bob", "-100"), balance("charlie", "-50"),
			},
			want: []models.Settlement{
				{FromUserID: "bob", ToUserID: "alice", Amount: money.MustParse("100")},
				{FromUserID: "charlie", ToUserID: "alice", Amount: money.MustParse("50")},
			},
		},
		{
			name: "four members three transfers",
			balances: []models.UserBalance{
				balance("a", "130"), balance("b", "40"), balance("c", "-10"), balance("d", "-160"),
			},
			want: []models.Settlement{
				{FromUserID: "d", ToUserID: "a", Amount: money.MustParse("130")},
				{FromUserID: "d", ToUserID: "b", Amount: money.MustParse("30")},
				{FromUserID: "c", ToUserID: "b", Amount: money.MustParse("10")},
			},
		},
		{
			name: "all zero no transfers",
			balances: []models.UserBalance{
				balance("a", "0"), balance("b", "0"), balance("c", "0"),
			},
			want: nil,
		},
		{
			name:     "epsilon boundary still settles",
			balances: []models.UserBalance{balance("a", "0.01"), balance("b", "-0.01")},
			want: []models.Settlement{
				{FromUserID: "b", ToUserID: "a", Amount: money.MustParse("0.01")},
			},
		},
		{
			name: "sub-epsilon members are skipped",
			balances: []models.UserBalance{
				balance("a", "0.005"), balance("b", "-0.005"), balance("c", "0"),
			},
			want: nil,
		},
		{
			name: "equal balances keep input order",
			balances: []models.UserBalance{
				balance("a", "50"), balance("b", "50"), balance("c", "-50"), balance("d", "-50"),
			},
			want: []models.Settlement{
				{FromUserID: "c", ToUserID: "a", Amount: money.MustParse("50")},
				{FromUserID: "d", ToUserID: "b", Amount: money.MustParse("50")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Settlements(tt.balances)
			if err != nil {
				t.Fatalf("Settlements() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d settlements, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i].FromUserID != tt.want[i].FromUserID ||
					got[i].ToUserID != tt.want[i].ToUserID ||
					!got[i].Amount.Equal(tt.want[i].Amount) {
					t.Errorf("settlement[%d] = %s->%s %s, want %s->%s %s",
						i, got[i].FromUserID, got[i].ToUserID, money.Format(got[i].Amount),
						tt.want[i].FromUserID, tt.want[i].ToUserID, money.Format(tt.want[i].Amount))
				}
			}
		})
	}
}

func TestSettlementsCompleteness(t *testing.T) {
	balances := []models.UserBalance{
		balance("a", "83.12"), balance("b", "-20.45"), balance("c", "17.33"),
		balance("d", "-100.00"), balance("e", "20.00"),
	}

	plan, err := Settlements(balances)
	if err != nil {
		t.Fatalf("Settlements() error = %v", err)
	}

	// Transfer count bound: at most N-1 for N non-zero members.
	if len(plan) > len(balances)-1 {
		t.Errorf("emitted %d transfers, want at most %d", len(plan), len(balances)-1)
	}

	// Each creditor receives exactly their positive balance; each debtor pays
	// exactly the magnitude of their negative balance.
	received := make(map[string]decimal.Decimal)
	paid := make(map[string]decimal.Decimal)
	for _, s := range plan {
		if !s.Amount.IsPositive() {
			t.Errorf("non-positive settlement amount %s", money.Format(s.Amount))
		}
		received[s.ToUserID] = received[s.ToUserID].Add(s.Amount)
		paid[s.FromUserID] = paid[s.FromUserID].Add(s.Amount)
	}
	for _, b := range balances {
		switch {
		case b.Balance.IsPositive():
			if !received[b.UserID].Equal(b.Balance) {
				t.Errorf("%s received %s, want %s", b.UserID,
					money.Format(received[b.UserID]), money.Format(b.Balance))
			}
		case b.Balance.IsNegative():
			if !paid[b.UserID].Equal(b.Balance.Neg()) {
				t.Errorf("%s paid %s, want %s", b.UserID,
					money.Format(paid[b.UserID]), money.Format(b.Balance.Neg()))
			}
		}
	}

	// Applying the plan drives every balance to within epsilon of zero.
	after := make(map[string]decimal.Decimal, len(balances))
	for _, b := range balances {
		after[b.UserID] = b.Balance
	}
	for _, s := range plan {
		after[s.FromUserID] = after[s.FromUserID].Add(s.Amount)
		after[s.ToUserID] = after[s.ToUserID].Sub(s.Amount)
	}
	for id, b := range after {
		if !money.Settled(b) {
			t.Errorf("%s left with %s after applying plan", id, money.Format(b))
		}
	}
}

func TestSettlementsUnbalancedInput(t *testing.T) {
	// Money appears from nowhere: conservation is violated and the planner
	// must say so instead of dropping the residue.
	balances := []models.UserBalance{balance("a", "100"), balance("b", "-40")}

	_, err := Settlements(balances)
	if err == nil {
		t.Fatal("expected error for unbalanced input")
	}
	if !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("error = %v, want ErrInvariantViolation", err)
	}
}
