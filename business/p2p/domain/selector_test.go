package domain

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/p2p-arbitrage/internal/apperror"
)

func ad(id string, min, max, price string) Advertisement {
	return Advertisement{
		Side:                   SideSell,
		Price:                  decimal.RequireFromString(price),
		MinTransactionQuantity: decimal.RequireFromString(min),
		MaxTransactionQuantity: decimal.RequireFromString(max),
		AdvertiserID:           id,
		AdvertiserName:         "merchant-" + id,
	}
}

func TestSelectBuy(t *testing.T) {
	tests := []struct {
		name    string
		ads     []Advertisement
		wantID  string
		wantErr bool
	}{
		{name: "empty", ads: nil, wantErr: true},
		{name: "single", ads: []Advertisement{ad("a", "1", "10", "1.05")}, wantID: "a"},
		{
			// head wins even when a later ad is cheaper
			name:   "head not cheapest",
			ads:    []Advertisement{ad("a", "1", "10", "1.09"), ad("b", "1", "10", "1.01")},
			wantID: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectBuy(tt.ads)
			if tt.wantErr {
				if apperror.GetCode(err) != apperror.CodeNoAdvertisementFound {
					t.Fatalf("expected NO_ADVERTISEMENT_FOUND, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.AdvertiserID != tt.wantID {
				t.Errorf("selected %s, want %s", got.AdvertiserID, tt.wantID)
			}
		})
	}
}

func TestSelectSell(t *testing.T) {
	windows := []Advertisement{
		ad("first", "1", "10", "350"),
		ad("second", "20", "30", "351"),
		ad("third", "5", "50", "360"),
	}

	tests := []struct {
		name    string
		ads     []Advertisement
		target  string
		wantID  string
		wantErr bool
	}{
		{name: "first eligible in order wins", ads: windows, target: "25", wantID: "second"},
		{name: "only first matches", ads: windows, target: "3", wantID: "first"},
		{name: "overlap resolved by order", ads: windows, target: "7", wantID: "first"},
		{name: "equal to min is excluded", ads: windows, target: "20", wantID: "third"},
		{name: "equal to max is excluded", ads: []Advertisement{ad("x", "1", "10", "1")}, target: "10", wantErr: true},
		{name: "equal to min only ad", ads: []Advertisement{ad("x", "1", "10", "1")}, target: "1", wantErr: true},
		{name: "outside all windows", ads: windows, target: "75", wantErr: true},
		{name: "empty", ads: nil, target: "1", wantErr: true},
		{name: "fractional target", ads: []Advertisement{ad("x", "100", "100000", "352")}, target: "142.8571428571428571", wantID: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectSell(tt.ads, decimal.RequireFromString(tt.target))
			if tt.wantErr {
				if apperror.GetCode(err) != apperror.CodeNoAdvertisementFound {
					t.Fatalf("expected NO_ADVERTISEMENT_FOUND, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.AdvertiserID != tt.wantID {
				t.Errorf("selected %s, want %s", got.AdvertiserID, tt.wantID)
			}
		})
	}
}

// TestSelectSell_MatchesLinearScan checks the selector against a reference
// scan over random order books.
func TestSelectSell_MatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		n := rng.Intn(6)
		ads := make([]Advertisement, n)
		for j := range ads {
			lo := rng.Intn(50)
			hi := lo + rng.Intn(50)
			ads[j] = Advertisement{
				MinTransactionQuantity: decimal.NewFromInt(int64(lo)),
				MaxTransactionQuantity: decimal.NewFromInt(int64(hi)),
				AdvertiserID:           string(rune('a' + j)),
			}
		}
		target := decimal.NewFromInt(int64(rng.Intn(100)))

		wantIdx := -1
		for j, a := range ads {
			if a.MinTransactionQuantity.LessThan(target) && target.LessThan(a.MaxTransactionQuantity) {
				wantIdx = j
				break
			}
		}

		got, err := SelectSell(ads, target)
		if wantIdx < 0 {
			if err == nil {
				t.Fatalf("case %d: expected no match, got %s", i, got.AdvertiserID)
			}
			continue
		}
		if err != nil {
			t.Fatalf("case %d: unexpected error %v", i, err)
		}
		if got.AdvertiserID != ads[wantIdx].AdvertiserID {
			t.Fatalf("case %d: got %s, want %s", i, got.AdvertiserID, ads[wantIdx].AdvertiserID)
		}
	}
}

func TestSearchQuery_Validate(t *testing.T) {
	valid := SearchQuery{
		Side:          SideBuy,
		Amount:        decimal.NewFromInt(150),
		PaymentMethod: "Wise",
		Currency:      "GBP",
		Asset:         "USDT",
	}

	tests := []struct {
		name    string
		mutate  func(*SearchQuery)
		wantErr bool
	}{
		{"valid", func(q *SearchQuery) {}, false},
		{"bad side", func(q *SearchQuery) { q.Side = "HOLD" }, true},
		{"zero amount", func(q *SearchQuery) { q.Amount = decimal.Zero }, true},
		{"negative amount", func(q *SearchQuery) { q.Amount = decimal.NewFromInt(-1) }, true},
		{"blank payment method", func(q *SearchQuery) { q.PaymentMethod = " " }, true},
		{"blank currency", func(q *SearchQuery) { q.Currency = "" }, true},
		{"blank asset", func(q *SearchQuery) { q.Asset = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid
			tt.mutate(&q)
			if err := q.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
