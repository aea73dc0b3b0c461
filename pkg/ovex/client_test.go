package ovex

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ovex/pkg/core"
)

const feesBody = `[
	{"currency":"btc","type":"coin","fee":{"value":"0.0005","type":"fixed"}},
	{"currency":"zar","type":"fiat","fee":{"value":8.5,"type":"fixed"}}
]`

type recorded struct {
	Method string
	Path   string
	Query  url.Values
	Body   string
	Header http.Header
}

type fakeExchange struct {
	*httptest.Server
	mu    sync.Mutex
	calls []recorded
}

func newFakeExchange(t *testing.T, routes map[string]string) *fakeExchange {
	t.Helper()
	fx := &fakeExchange{}
	fx.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fx.mu.Lock()
		fx.calls = append(fx.calls, recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Body:   string(body),
			Header: r.Header.Clone(),
		})
		fx.mu.Unlock()

		resp, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":2001,"message":"not found"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(resp))
	}))
	t.Cleanup(fx.Close)
	return fx
}

func (fx *fakeExchange) last(t *testing.T) recorded {
	t.Helper()
	fx.mu.Lock()
	defer fx.mu.Unlock()
	require.NotEmpty(t, fx.calls)
	return fx.calls[len(fx.calls)-1]
}

func (fx *fakeExchange) count() int {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	return len(fx.calls)
}

func newTestClient(t *testing.T, fx *fakeExchange, creds *core.Credentials) *Client {
	t.Helper()
	config := core.DefaultConfig().
		WithBaseURL(fx.URL + "/api/v2").
		WithCredentials(creds).
		WithTimeout(2 * time.Second)
	c, err := New(config)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func signedClient(t *testing.T, fx *fakeExchange) *Client {
	return newTestClient(t, fx, core.NewCredentials("key-id", "secret"))
}

func decimal(t *testing.T, s string) *apd.Decimal {
	t.Helper()
	d, _, err := apd.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestNew_InvalidConfig(t *testing.T) {
	c, err := New(core.DefaultConfig().WithBaseURL("not a url"))
	assert.Nil(t, c)
	assert.True(t, core.IsConfigurationError(err))
}

func TestGetFeeWithdraw(t *testing.T) {
	fx := newFakeExchange(t, map[string]string{"GET /api/v2/fees/withdraw": feesBody})
	c := signedClient(t, fx)

	fees, err := c.GetFeeWithdraw(context.Background())

	require.NoError(t, err)
	require.Len(t, fees, 2)
	btcFee := fees["btc"].Value
	assert.Equal(t, "0.0005", btcFee.Text('f'))
	assert.Equal(t, "fiat", fees["zar"].CurrencyType)
	zarFee := fees["zar"].Value
	assert.Equal(t, "8.5", zarFee.Text('f'))

	req := fx.last(t)
	assert.Equal(t, "key-id", req.Header.Get("X-Auth-Apikey"))
	assert.NotEmpty(t, req.Header.Get("X-Auth-Signature"))
}

func TestGetFeeWithdrawFor(t *testing.T) {
	fx := newFakeExchange(t, map[string]string{"GET /api/v2/fees/withdraw": feesBody})
	c := signedClient(t, fx)

	fee, err := c.GetFeeWithdrawFor(context.Background(), "BTC")

	require.NoError(t, err)
	assert.Equal(t, "btc", fee.Currency)
	assert.Equal(t, "fixed", fee.FeeType)
}

func TestGetFeeDepositFor_UnknownCurrency(t *testing.T) {
	fx := newFakeExchange(t, map[string]string{"GET /api/v2/fees/deposit": feesBody})
	c := signedClient(t, fx)

	_, err := c.GetFeeDepositFor(context.Background(), "doge")

	assert.True(t, core.IsValidationError(err))
	assert.True(t, core.IsErrorCode(err, core.ErrCodeUnknownCurrency))
}

func TestGetFeeDeposit_MalformedListing(t *testing.T) {
	fx := newFakeExchange(t, map[string]string{"GET /api/v2/fees/deposit": `{"btc":"0.1"}`})
	c := signedClient(t, fx)

	_, err := c.GetFeeDeposit(context.Background())

	assert.True(t, core.IsProtocolError(err))
}

func TestGetQuoteRFQ(t *testing.T) {
	fx := newFakeExchange(t, map[string]string{"GET /api/v2/rfq/get_quote": `{"quote_token":"tok","rate":"1000000"}`})
	c := signedClient(t, fx)

	result, err := c.GetQuoteRFQ(context.Background(), QuoteRequest{
		Market:     "BTCZAR",
		Side:       "Sell",
		FromAmount: decimal(t, "0.01"),
	})

	require.NoError(t, err)
	assert.Equal(t, "tok", result.(map[string]any)["quote_token"])

	q := fx.last(t).Query
	assert.Equal(t, "btczar", q.Get("market"))
	assert.Equal(t, "sell", q.Get("side"))
	assert.Equal(t, "0.01", q.Get("from_amount"))
	assert.False(t, q.Has("to_amount"))
}

func TestGetQuoteRFQ_Defaults(t *testing.T) {
	fx := newFakeExchange(t, map[string]string{"GET /api/v2/rfq/get_quote": `{}`})
	c := signedClient(t, fx)

	_, err := c.GetQuoteRFQ(context.Background(), QuoteRequest{ToAmount: decimal(t, "1")})
	require.NoError(t, err)

	q := fx.last(t).Query
	assert.Equal(t, "btczar", q.Get("market"))
	assert.Equal(t, "buy", q.Get("side"))
	assert.Equal(t, "1", q.Get("to_amount"))
	assert.False(t, q.Has("from_amount"))
}

func TestGetQuoteRFQ_Validation(t *testing.T) {
	fx := newFakeExchange(t, nil)
	c := signedClient(t, fx)

	tests := []struct {
		name string
		req  QuoteRequest
	}{
		{"both amounts", QuoteRequest{FromAmount: decimal(t, "100"), ToAmount: decimal(t, "0.001")}},
		{"neither amount", QuoteRequest{}},
		{"zero amount", QuoteRequest{FromAmount: decimal(t, "0")}},
		{"negative amount", QuoteRequest{FromAmount: decimal(t, "-5")}},
		{"unknown market", QuoteRequest{Market: "dogezar", FromAmount: decimal(t, "1")}},
		{"unknown side", QuoteRequest{Side: "hold", FromAmount: decimal(t, "1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.GetQuoteRFQ(context.Background(), tt.req)
			assert.True(t, core.IsValidationError(err))
		})
	}
	assert.Equal(t, 0, fx.count())
}

func TestGetTrades(t *testing.T) {
	fx := newFakeExchange(t, map[string]string{"GET /api/v2/rfq/trades": `[]`})
	c := signedClient(t, fx)

	_, err := c.GetTrades(context.Background(), TradesQuery{})
	require.NoError(t, err)
	q := fx.last(t).Query
	assert.Equal(t, "50", q.Get("limit"))
	assert.Equal(t, "desc", q.Get("order_by"))
	assert.False(t, q.Has("timestamp"))
	assert.False(t, q.Has("from"))
	assert.False(t, q.Has("to"))

	ts, from := int64(1700000000), int64(42)
	_, err = c.GetTrades(context.Background(), TradesQuery{Limit: 10, OrderBy: "ASC", Timestamp: &ts, From: &from})
	require.NoError(t, err)
	q = fx.last(t).Query
	assert.Equal(t, "10", q.Get("limit"))
	assert.Equal(t, "asc", q.Get("order_by"))
	assert.Equal(t, "1700000000", q.Get("timestamp"))
	assert.Equal(t, "42", q.Get("from"))
	assert.False(t, q.Has("to"))
}

func TestGetTrades_Validation(t *testing.T) {
	fx := newFakeExchange(t, nil)
	c := signedClient(t, fx)

	_, err := c.GetTrades(context.Background(), TradesQuery{Limit: -1})
	assert.True(t, core.IsValidationError(err))

	_, err = c.GetTrades(context.Background(), TradesQuery{OrderBy: "random"})
	assert.True(t, core.IsValidationError(err))

	assert.Equal(t, 0, fx.count())
}

func TestAcceptQuote(t *testing.T) {
	fx := newFakeExchange(t, map[string]string{"POST /api/v2/rfq/accept_quote": `{"state":"done"}`})
	c := signedClient(t, fx)

	result, err := c.AcceptQuote(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, "done", result.(map[string]any)["state"])
	req := fx.last(t)
	assert.Equal(t, `{"quote_token":"abc"}`, req.Body)
	assert.Empty(t, req.Query)

	_, err = c.AcceptQuote(context.Background(), " ")
	assert.True(t, core.IsValidationError(err))
}

func TestGetWithdraws(t *testing.T) {
	fx := newFakeExchange(t, map[string]string{"GET /api/v2/withdraws": `[]`})
	c := signedClient(t, fx)

	_, err := c.GetWithdraws(context.Background(), WithdrawsQuery{Currency: "ZAR"})
	require.NoError(t, err)

	q := fx.last(t).Query
	assert.Equal(t, "ZAR", q.Get("currency"))
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "100", q.Get("limit"))
}

func TestGetWithdraws_Validation(t *testing.T) {
	fx := newFakeExchange(t, nil)
	c := signedClient(t, fx)

	tests := []struct {
		name  string
		query WithdrawsQuery
	}{
		{"missing currency", WithdrawsQuery{}},
		{"negative page", WithdrawsQuery{Currency: "btc", Page: -1}},
		{"limit too large", WithdrawsQuery{Currency: "btc", Limit: 1001}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.GetWithdraws(context.Background(), tt.query)
			assert.True(t, core.IsValidationError(err))
		})
	}
	assert.Equal(t, 0, fx.count())
}

func TestGetDeposits(t *testing.T) {
	fx := newFakeExchange(t, map[string]string{"GET /api/v2/deposits": `[]`})
	c := signedClient(t, fx)

	_, err := c.GetDeposits(context.Background(), DepositsQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "limit=10", fx.last(t).Query.Encode())

	_, err = c.GetDeposits(context.Background(), DepositsQuery{Currency: "btc", State: "accepted"})
	require.NoError(t, err)
	assert.Equal(t, "currency=btc&state=accepted", fx.last(t).Query.Encode())
}

func TestGetDepositInfoAndAddress(t *testing.T) {
	fx := newFakeExchange(t, map[string]string{
		"GET /api/v2/deposit":         `{"txid":"0xabc"}`,
		"GET /api/v2/deposit_address": `{"address":"bc1q"}`,
	})
	c := signedClient(t, fx)

	_, err := c.GetDepositInfo(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", fx.last(t).Query.Get("txid"))

	_, err = c.GetDepositAddress(context.Background(), "btc")
	require.NoError(t, err)
	assert.Equal(t, "btc", fx.last(t).Query.Get("currency"))

	_, err = c.GetDepositInfo(context.Background(), "")
	assert.True(t, core.IsValidationError(err))
	_, err = c.GetDepositAddress(context.Background(), "")
	assert.True(t, core.IsValidationError(err))
}

func TestGetCurrencies_Anonymous(t *testing.T) {
	fx := newFakeExchange(t, map[string]string{"GET /api/v2/currencies": `[{"id":"btc"}]`})
	c := newTestClient(t, fx, nil)

	result, err := c.GetCurrencies(context.Background(), "Coin")

	require.NoError(t, err)
	assert.Len(t, result, 1)
	req := fx.last(t)
	assert.Equal(t, "coin", req.Query.Get("type"))
	assert.Empty(t, req.Header.Get("X-Auth-Apikey"))

	_, err = c.GetCurrencies(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, fx.last(t).Query)

	_, err = c.GetCurrencies(context.Background(), "token")
	assert.True(t, core.IsValidationError(err))
}

func TestGetCurrencyInfo(t *testing.T) {
	fx := newFakeExchange(t, map[string]string{"GET /api/v2/currencies/btc": `{"id":"btc"}`})
	c := newTestClient(t, fx, nil)

	result, err := c.GetCurrencyInfo(context.Background(), "btc")

	require.NoError(t, err)
	assert.Equal(t, "btc", result.(map[string]any)["id"])
	assert.Empty(t, fx.last(t).Query)

	_, err = c.GetCurrencyInfo(context.Background(), "")
	assert.True(t, core.IsValidationError(err))
}

func TestGetAccounts(t *testing.T) {
	fx := newFakeExchange(t, map[string]string{"GET /api/v2/accounts": `[]`})
	c := signedClient(t, fx)

	_, err := c.GetAccounts(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, fx.last(t).Query)

	_, err = c.GetAccounts(context.Background(), "zar")
	require.NoError(t, err)
	assert.Equal(t, "zar", fx.last(t).Query.Get("currency"))
}

func TestSignedEndpoint_WithoutCredentials(t *testing.T) {
	fx := newFakeExchange(t, map[string]string{"GET /api/v2/accounts": `[]`})
	c := newTestClient(t, fx, nil)

	_, err := c.GetAccounts(context.Background(), "")

	assert.True(t, core.IsConfigurationError(err))
	assert.Equal(t, 0, fx.count())
}

func TestEndpoint_APIError(t *testing.T) {
	fx := newFakeExchange(t, nil)
	c := signedClient(t, fx)

	_, err := c.GetDepositAddress(context.Background(), "btc")

	assert.True(t, core.IsAPIError(err))
	assert.True(t, core.IsErrorCode(err, "2001"))
}
