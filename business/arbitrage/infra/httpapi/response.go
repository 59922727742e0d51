package httpapi

import (
	"github.com/shopspring/decimal"

	"github.com/fd1az/p2p-arbitrage/business/arbitrage/domain"
)

// resultsResponse is the flat document served on /get-results. The bought
// amount keeps its historical "boughtUSDT" key whatever the asset.
type resultsResponse struct {
	BuyPrice           *decimal.Decimal    `json:"buyPrice,omitempty"`
	BoughtAsset        *decimal.Decimal    `json:"boughtUSDT,omitempty"`
	BuyAdvID           string              `json:"buyAdvId,omitempty"`
	BuyAdvertiser      string              `json:"buyAdvertiser,omitempty"`
	SellPrice          *decimal.Decimal    `json:"sellPrice,omitempty"`
	SoldCurrencyAmount *decimal.Decimal    `json:"soldCurrencyAmount,omitempty"`
	SellAdvID          string              `json:"sellAdvId,omitempty"`
	SellAdvertiser     string              `json:"sellAdvertiser,omitempty"`
	FiatRate           *decimal.Decimal    `json:"fiatRate,omitempty"`
	FiatTotalAmount    *decimal.Decimal    `json:"fiatTotalAmount,omitempty"`
	Profit             *decimal.Decimal    `json:"profit,omitempty"`
	Summary            []string            `json:"summary,omitempty"`
	Error              *domain.ErrorRecord `json:"error,omitempty"`
}

func newResultsResponse(outcome domain.Outcome) resultsResponse {
	if outcome.Failed() {
		return resultsResponse{Error: outcome.Error}
	}

	res := outcome.Result
	bought := res.BoughtAssetAmount.Round(2)
	return resultsResponse{
		BuyPrice:           &res.BuyPrice,
		BoughtAsset:        &bought,
		BuyAdvID:           res.BuyAdvertiserID,
		BuyAdvertiser:      res.BuyAdvertiserName,
		SellPrice:          &res.SellPrice,
		SoldCurrencyAmount: &res.SoldCurrencyAmount,
		SellAdvID:          res.SellAdvertiserID,
		SellAdvertiser:     res.SellAdvertiserName,
		FiatRate:           &res.FiatRate,
		FiatTotalAmount:    &res.FiatTotalAmount,
		Profit:             &res.Profit,
		Summary:            res.Summary,
	}
}
