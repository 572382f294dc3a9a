// Package oracle quotes the ETH/USD rate and derives the minting fee from it.
package oracle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/01moynul/mintverse-golang/internal/apperror"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// FeePrecision is the number of decimal places the minting fee keeps.
const FeePrecision = 4

// PriceFetcher returns the current price of one ETH in USD.
type PriceFetcher interface {
	ETHUSD(ctx context.Context) (decimal.Decimal, error)
}

// PriceFetcherFunc adapts a function to the PriceFetcher interface.
type PriceFetcherFunc func(ctx context.Context) (decimal.Decimal, error)

func (f PriceFetcherFunc) ETHUSD(ctx context.Context) (decimal.Decimal, error) {
	return f(ctx)
}

// HTTPFetcher reads a cryptocompare-style {"USD": 3120.55} document.
type HTTPFetcher struct {
	client *http.Client
	url    string
}

func NewHTTPFetcher(client *http.Client, url string, timeout time.Duration) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPFetcher{client: client, url: url}
}

func (f *HTTPFetcher) ETHUSD(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch eth price: %v: %w", err, apperror.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("price oracle returned %d: %w", resp.StatusCode, apperror.ErrUpstreamUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return decimal.Zero, fmt.Errorf("read price response: %v: %w", err, apperror.ErrUpstreamUnavailable)
	}

	usd := gjson.GetBytes(body, "USD")
	if usd.Type != gjson.Number {
		return decimal.Zero, fmt.Errorf("price response has no USD quote: %w", apperror.ErrUpstreamUnavailable)
	}
	price, err := decimal.NewFromString(usd.Raw)
	if err != nil || !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("invalid USD quote %q: %w", usd.Raw, apperror.ErrUpstreamUnavailable)
	}
	return price, nil
}

// Quoter converts the fixed USD minting fee into ETH at the current rate.
type Quoter struct {
	prices PriceFetcher
	usdFee decimal.Decimal
}

func NewQuoter(prices PriceFetcher, usdFee decimal.Decimal) *Quoter {
	return &Quoter{prices: prices, usdFee: usdFee}
}

// MintingFee returns usdFee / ETHUSD rounded to FeePrecision places.
func (q *Quoter) MintingFee(ctx context.Context) (decimal.Decimal, error) {
	price, err := q.prices.ETHUSD(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return MintingFee(q.usdFee, price)
}

// MintingFee is the pure conversion used by Quoter.
func MintingFee(usdFee, ethUSD decimal.Decimal) (decimal.Decimal, error) {
	if !ethUSD.IsPositive() {
		return decimal.Zero, fmt.Errorf("eth price %s: %w", ethUSD, apperror.ErrUpstreamUnavailable)
	}
	return usdFee.DivRound(ethUSD, FeePrecision+4).Round(FeePrecision), nil
}
