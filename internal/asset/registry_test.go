package asset

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefaultRegistry_Lookup(t *testing.T) {
	r := DefaultRegistry()

	usdt, ok := r.Get(" usdt ")
	if !ok {
		t.Fatal("USDT should be registered")
	}
	if usdt.Name() != "Tether" || usdt.IsFiat() {
		t.Errorf("unexpected USDT metadata: %s %v", usdt.Name(), usdt.Kind())
	}

	pkr := r.Lookup("PKR", KindFiat)
	if got := pkr.Format(decimal.RequireFromString("52500")); got != "52500.00 PKR" {
		t.Errorf("Format() = %q", got)
	}

	unknown := r.Lookup("xyz", KindCrypto)
	if unknown.Symbol() != "XYZ" || unknown.Decimals() != 8 || unknown.Name() != "XYZ" {
		t.Errorf("unexpected ad-hoc asset: %s/%d/%s", unknown.Symbol(), unknown.Decimals(), unknown.Name())
	}
}

func TestRegistry_Symbols(t *testing.T) {
	r := NewRegistry()
	r.Register(New("PKR", "", 2, KindFiat))
	r.Register(New("GBP", "", 2, KindFiat))
	r.Register(New("USDT", "", 2, KindCrypto))

	fiat := r.Symbols(KindFiat)
	if len(fiat) != 2 || fiat[0] != "GBP" || fiat[1] != "PKR" {
		t.Errorf("Symbols(fiat) = %v", fiat)
	}
	if r.Count() != 3 {
		t.Errorf("Count() = %d", r.Count())
	}
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate symbol")
		}
	}()

	r := NewRegistry()
	r.Register(New("GBP", "", 2, KindFiat))
	r.Register(New("gbp", "", 2, KindFiat))
}
