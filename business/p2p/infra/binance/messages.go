// Package binance implements the MarketProvider port against the Binance P2P
// advertisement search API.
package binance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fd1az/p2p-arbitrage/business/p2p/domain"
)

// successCode is the code Binance puts in every successful envelope.
const successCode = "000000"

// SearchRequest is the body of the advertisement search endpoint.
type SearchRequest struct {
	ProMerchantAds bool     `json:"proMerchantAds"`
	Page           int      `json:"page"`
	Rows           int      `json:"rows"`
	PayTypes       []string `json:"payTypes"`
	Countries      []string `json:"countries"`
	PublisherType  *string  `json:"publisherType"`
	Asset          string   `json:"asset"`
	Fiat           string   `json:"fiat"`
	TradeType      string   `json:"tradeType"`
	TransAmount    string   `json:"transAmount"`
}

// SearchResponse is the envelope returned by the search endpoint, both for
// results and for embedded failures.
type SearchResponse struct {
	Code          string     `json:"code"`
	Message       *string    `json:"message"`
	MessageDetail *string    `json:"messageDetail"`
	Data          []AdRecord `json:"data"`
	Total         int        `json:"total"`
	Success       *bool      `json:"success"`
}

// Failed reports whether the envelope signals a business failure.
func (r *SearchResponse) Failed() bool {
	if r.Success != nil && !*r.Success {
		return true
	}
	return r.Code != "" && r.Code != successCode
}

// ErrorMessage returns the most specific message Binance supplied.
func (r *SearchResponse) ErrorMessage() string {
	if r.MessageDetail != nil && *r.MessageDetail != "" {
		return *r.MessageDetail
	}
	if r.Message != nil && *r.Message != "" {
		return *r.Message
	}
	return "request failed"
}

// AdRecord is one row of the search result.
type AdRecord struct {
	Adv        Adv        `json:"adv"`
	Advertiser Advertiser `json:"advertiser"`
}

// Adv holds the advertisement terms. Binance encodes numbers as strings.
type Adv struct {
	AdvNo                  string `json:"advNo"`
	TradeType              string `json:"tradeType"`
	Asset                  string `json:"asset"`
	FiatUnit               string `json:"fiatUnit"`
	Price                  string `json:"price"`
	SurplusAmount          string `json:"surplusAmount"`
	TradableQuantity       string `json:"tradableQuantity"`
	MinSingleTransQuantity string `json:"minSingleTransQuantity"`
	MaxSingleTransQuantity string `json:"maxSingleTransQuantity"`
}

// Advertiser identifies the merchant behind an advertisement.
type Advertiser struct {
	UserNo   string `json:"userNo"`
	NickName string `json:"nickName"`
}

// ToDomain converts the record, rejecting non-numeric or non-positive prices.
func (r AdRecord) ToDomain(side domain.Side) (domain.Advertisement, error) {
	price, err := decimal.NewFromString(r.Adv.Price)
	if err != nil {
		return domain.Advertisement{}, fmt.Errorf("price %q: %w", r.Adv.Price, err)
	}
	if !price.IsPositive() {
		return domain.Advertisement{}, fmt.Errorf("price %q is not positive", r.Adv.Price)
	}

	minQty, err := decimal.NewFromString(r.Adv.MinSingleTransQuantity)
	if err != nil {
		return domain.Advertisement{}, fmt.Errorf("minSingleTransQuantity %q: %w", r.Adv.MinSingleTransQuantity, err)
	}

	maxQty, err := decimal.NewFromString(r.Adv.MaxSingleTransQuantity)
	if err != nil {
		return domain.Advertisement{}, fmt.Errorf("maxSingleTransQuantity %q: %w", r.Adv.MaxSingleTransQuantity, err)
	}

	available := r.Adv.TradableQuantity
	if available == "" {
		available = r.Adv.SurplusAmount
	}
	availableQty := decimal.Zero
	if available != "" {
		if availableQty, err = decimal.NewFromString(available); err != nil {
			return domain.Advertisement{}, fmt.Errorf("tradableQuantity %q: %w", available, err)
		}
	}

	return domain.Advertisement{
		Side:                   side,
		Price:                  price,
		MinTransactionQuantity: minQty,
		MaxTransactionQuantity: maxQty,
		AvailableQuantity:      availableQty,
		AdvertiserID:           r.Advertiser.UserNo,
		AdvertiserName:         r.Advertiser.NickName,
	}, nil
}
