package ledger

import (
	"testing"

	"github.com/AvavSam/split-bills/internal/models"
	"github.com/AvavSam/split-bills/internal/money"
)

func shareAmounts(t *testing.T, shares []models.ExpenseShare) map[string]string {
	t.Helper()
	out := make(map[string]string, len(shares))
	for _, s := range shares {
		out[s.UserID] = money.Format(s.Amount)
	}
	return out
}

func TestSplitEqually(t *testing.T) {
	tests := []struct {
		name         string
		total        string
		participants []string
		want         map[string]string
		wantErr      bool
	}{
		{
			name:         "even division",
			total:        "90",
			participants: []string{"alice", "bob", "charlie"},
			want:         map[string]string{"alice": "30.00", "bob": "30.00", "charlie": "30.00"},
		},
		{
			name:         "remainder goes to first participant",
			total:        "100",
			participants: []string{"alice", "bob", "charlie"},
			want:         map[string]string{"alice": "33.34", "bob": "33.33", "charlie": "33.33"},
		},
		{
			name:         "two way odd cent",
			total:        "0.03",
			participants: []string{"alice", "bob"},
			want:         map[string]string{"alice": "0.01", "bob": "0.02"},
		},
		{
			name:         "no participants",
			total:        "10",
			participants: nil,
			wantErr:      true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := SplitEqually(money.MustParse(tt.total), tt.participants)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitEqually() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			got := shareAmounts(t, shares)
			for userID, amount := range tt.want {
				if got[userID] != amount {
					t.Errorf("share[%s] = %s, want %s", userID, got[userID], amount)
				}
			}

			// Produced shares must satisfy the exact-sum invariant.
			e := models.Expense{Total: money.Round2(money.MustParse(tt.total)), Shares: shares}
			if err := ValidateShares(&e); err != nil {
				t.Errorf("produced shares violate invariant: %v", err)
			}
		})
	}
}

func TestSplitItems(t *testing.T) {
	// Pizza 20 shared by alice+bob, salad 10 for alice alone; 3 of tax on a
	// 30 subtotal scales every share by 33/30.
	items := []Item{
		{Description: "Pizza", Amount: money.MustParse("20"), Assigned: []string{"alice", "bob"}},
		{Description: "Salad", Amount: money.MustParse("10"), Assigned: []string{"alice"}},
	}

	shares, err := SplitItems(items, money.MustParse("33"), money.MustParse("30"), []string{"alice", "bob"})
	if err != nil {
		t.Fatalf("SplitItems() error = %v", err)
	}

	got := shareAmounts(t, shares)
	if got["alice"] != "22.00" {
		t.Errorf("alice share = %s, want 22.00", got["alice"])
	}
	if got["bob"] != "11.00" {
		t.Errorf("bob share = %s, want 11.00", got["bob"])
	}

	e := models.Expense{Total: money.MustParse("33"), Shares: shares}
	if err := ValidateShares(&e); err != nil {
		t.Errorf("produced shares violate invariant: %v", err)
	}
}

func TestSplitItemsRemainderToFirst(t *testing.T) {
	// 10 split across three equal items leaves a cent; it lands on the first
	// participant in input order.
	items := []Item{
		{Description: "Drink", Amount: money.MustParse("10"), Assigned: []string{"alice", "bob", "charlie"}},
	}

	shares, err := SplitItems(items, money.MustParse("10"), money.MustParse("10"), []string{"alice", "bob", "charlie"})
	if err != nil {
		t.Fatalf("SplitItems() error = %v", err)
	}

	got := shareAmounts(t, shares)
	if got["alice"] != "3.34" || got["bob"] != "3.33" || got["charlie"] != "3.33" {
		t.Errorf("shares = %v, want alice=3.34 bob=3.33 charlie=3.33", got)
	}
}

func TestSplitItemsErrors(t *testing.T) {
	items := []Item{{Description: "X", Amount: money.MustParse("5"), Assigned: []string{"alice"}}}

	if _, err := SplitItems(items, money.MustParse("5"), money.Zero, []string{"alice"}); err == nil {
		t.Error("expected error for zero subtotal")
	}
	if _, err := SplitItems(items, money.MustParse("5"), money.MustParse("5"), nil); err == nil {
		t.Error("expected error for no participants")
	}
	if _, err := SplitItems(
		[]Item{{Description: "X", Amount: money.MustParse("5"), Assigned: []string{"mallory"}}},
		money.MustParse("5"), money.MustParse("5"), []string{"alice"},
	); err == nil {
		t.Error("expected error for assignment to non-participant")
	}

	// No items falls back to an equal split.
	shares, err := SplitItems(nil, money.MustParse("9"), money.MustParse("9"), []string{"alice", "bob", "charlie"})
	if err != nil {
		t.Fatalf("SplitItems() error = %v", err)
	}
	got := shareAmounts(t, shares)
	if got["alice"] != "3.00" || got["bob"] != "3.00" || got["charlie"] != "3.00" {
		t.Errorf("shares = %v, want equal 3.00", got)
	}
}
