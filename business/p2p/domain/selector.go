package domain

import (
	"github.com/shopspring/decimal"

	"github.com/fd1az/p2p-arbitrage/internal/apperror"
)

// The selectors trust the order returned by the order book: Binance ranks
// advertisements best price first, so neither policy re-sorts.

// SelectBuy returns the head of ads.
func SelectBuy(ads []Advertisement) (Advertisement, error) {
	if len(ads) == 0 {
		return Advertisement{}, apperror.New(apperror.CodeNoAdvertisementFound,
			apperror.WithContext("buy side order book is empty"))
	}
	return ads[0], nil
}

// SelectSell returns the first advertisement, in order, whose transaction
// window strictly contains target. Later matches are never considered.
func SelectSell(ads []Advertisement, target decimal.Decimal) (Advertisement, error) {
	for _, ad := range ads {
		if ad.Accepts(target) {
			return ad, nil
		}
	}
	return Advertisement{}, apperror.New(apperror.CodeNoAdvertisementFound,
		apperror.WithContext("no sell advertisement accepts quantity "+target.StringFixed(2)))
}
