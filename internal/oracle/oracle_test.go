package oracle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/01moynul/mintverse-golang/internal/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ETH", r.URL.Query().Get("fsym"))
		w.Write([]byte(`{"USD": 2500.00}`))
	}))
	defer server.Close()

	f := NewHTTPFetcher(server.Client(), server.URL+"/data/price?fsym=ETH&tsyms=USD", time.Second)
	price, err := f.ETHUSD(context.Background())
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(2500)))
}

func TestHTTPFetcherUpstreamErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"missing field": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"Response":"Error","Message":"rate limit"}`))
		},
		"zero price": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"USD": 0}`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(handler)
			defer server.Close()

			_, err := NewHTTPFetcher(server.Client(), server.URL, time.Second).ETHUSD(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrUpstreamUnavailable))
		})
	}
}

func TestHTTPFetcherUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewHTTPFetcher(nil, url, 200*time.Millisecond).ETHUSD(context.Background())
	assert.ErrorIs(t, err, apperror.ErrUpstreamUnavailable)
}

func TestMintingFee(t *testing.T) {
	fee, err := MintingFee(decimal.NewFromInt(400), decimal.NewFromInt(2500))
	require.NoError(t, err)
	assert.Equal(t, "0.16", fee.String())

	fee, err = MintingFee(decimal.NewFromInt(400), decimal.RequireFromString("3000"))
	require.NoError(t, err)
	assert.Equal(t, "0.1333", fee.String())

	_, err = MintingFee(decimal.NewFromInt(400), decimal.Zero)
	assert.ErrorIs(t, err, apperror.ErrUpstreamUnavailable)
}

func TestQuoterPropagatesFetchError(t *testing.T) {
	q := NewQuoter(PriceFetcherFunc(func(context.Context) (decimal.Decimal, error) {
		return decimal.Zero, apperror.ErrUpstreamUnavailable
	}), decimal.NewFromInt(400))

	_, err := q.MintingFee(context.Background())
	assert.ErrorIs(t, err, apperror.ErrUpstreamUnavailable)
}
