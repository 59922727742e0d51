package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestExchangeRate_Convert(t *testing.T) {
	rate := ExchangeRate{From: "GBP", To: "PKR", Rate: decimal.RequireFromString("350.2567")}

	got := rate.Convert(decimal.RequireFromString("150.5"))

	assert.Equal(t, "52713.63335", got.String(), "conversion must not round")
	assert.Equal(t, "GBP/PKR", rate.Pair())
}
