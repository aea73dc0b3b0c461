package ovex

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"ovex/pkg/client"
	"ovex/pkg/core"
)

// Client exposes the OVEX endpoints. It is safe for concurrent use.
type Client struct {
	base     *client.Client
	protocol core.Protocol
	logger   zerolog.Logger
}

// New creates an endpoint client backed by a new base client.
func New(config *core.Config, opts ...client.Option) (*Client, error) {
	base, err := client.New(config, opts...)
	if err != nil {
		return nil, err
	}
	return NewWithClient(base), nil
}

// NewWithClient wraps an existing base client.
func NewWithClient(base *client.Client) *Client {
	return &Client{
		base:     base,
		protocol: NewProtocol(),
		logger:   base.Logger(),
	}
}

// Close releases the underlying base client.
func (c *Client) Close() error {
	return c.base.Close()
}

// Base returns the underlying base client for calls not covered here.
func (c *Client) Base() *client.Client {
	return c.base
}

func (c *Client) do(ctx context.Context, op core.Operation, params core.Params) (any, error) {
	req, err := c.protocol.BuildRequest(op, params)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Stringer("op", op).Msg("calling endpoint")

	return c.base.Execute(ctx, req)
}

// GetFeeWithdraw returns the withdrawal fees of every currency, keyed by
// lower-case currency symbol.
func (c *Client) GetFeeWithdraw(ctx context.Context) (map[string]Fee, error) {
	return c.fees(ctx, core.OpGetFeeWithdraw)
}

// GetFeeWithdrawFor returns the withdrawal fee of one currency.
func (c *Client) GetFeeWithdrawFor(ctx context.Context, symbol string) (Fee, error) {
	return c.feeFor(ctx, core.OpGetFeeWithdraw, symbol)
}

// GetFeeDeposit returns the deposit fees of every currency, keyed by
// lower-case currency symbol.
func (c *Client) GetFeeDeposit(ctx context.Context) (map[string]Fee, error) {
	return c.fees(ctx, core.OpGetFeeDeposit)
}

// GetFeeDepositFor returns the deposit fee of one currency.
func (c *Client) GetFeeDepositFor(ctx context.Context, symbol string) (Fee, error) {
	return c.feeFor(ctx, core.OpGetFeeDeposit, symbol)
}

func (c *Client) fees(ctx context.Context, op core.Operation) (map[string]Fee, error) {
	body, err := c.do(ctx, op, nil)
	if err != nil {
		return nil, err
	}
	return feesFrom(body)
}

func (c *Client) feeFor(ctx context.Context, op core.Operation, symbol string) (Fee, error) {
	symbol, err := required("symbol", symbol)
	if err != nil {
		return Fee{}, err
	}

	fees, err := c.fees(ctx, op)
	if err != nil {
		return Fee{}, err
	}

	fee, ok := fees[strings.ToLower(symbol)]
	if !ok {
		return Fee{}, core.NewValidationError(core.ErrCodeUnknownCurrency,
			fmt.Sprintf("no fee listed for %q", symbol), nil)
	}
	return fee, nil
}

// GetQuoteRFQ requests an all-inclusive quote for trading between the two
// currencies of a market. Arguments are validated before any request is sent.
func (c *Client) GetQuoteRFQ(ctx context.Context, q QuoteRequest) (any, error) {
	q, err := q.normalize()
	if err != nil {
		return nil, err
	}
	return c.do(ctx, core.OpGetQuote, q.params())
}

// GetTrades lists RfQ trades.
func (c *Client) GetTrades(ctx context.Context, q TradesQuery) (any, error) {
	q, err := q.normalize()
	if err != nil {
		return nil, err
	}
	return c.do(ctx, core.OpGetTrades, q.params())
}

// AcceptQuote executes the quote identified by token.
func (c *Client) AcceptQuote(ctx context.Context, token string) (any, error) {
	token, err := required("quote_token", token)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, core.OpAcceptQuote, core.Params{"quote_token": token})
}

// GetWithdraws lists withdrawals of one currency.
func (c *Client) GetWithdraws(ctx context.Context, q WithdrawsQuery) (any, error) {
	q, err := q.normalize()
	if err != nil {
		return nil, err
	}
	return c.do(ctx, core.OpGetWithdraws, q.params())
}

// GetDeposits lists deposits.
func (c *Client) GetDeposits(ctx context.Context, q DepositsQuery) (any, error) {
	q, err := q.normalize()
	if err != nil {
		return nil, err
	}
	return c.do(ctx, core.OpGetDeposits, q.params())
}

// GetDepositInfo returns the deposit with transaction id txid.
func (c *Client) GetDepositInfo(ctx context.Context, txid string) (any, error) {
	txid, err := required("txid", txid)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, core.OpGetDepositInfo, core.Params{"txid": txid})
}

// GetDepositAddress returns the deposit address for currency.
func (c *Client) GetDepositAddress(ctx context.Context, currency string) (any, error) {
	currency, err := required("currency", currency)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, core.OpGetDepositAddress, core.Params{"currency": currency})
}

// GetCurrencies lists currencies. currencyType is optional and must be
// "coin" or "fiat" when given. No credentials are needed.
func (c *Client) GetCurrencies(ctx context.Context, currencyType string) (any, error) {
	currencyType = strings.ToLower(strings.TrimSpace(currencyType))
	switch currencyType {
	case "", CurrencyTypeCoin, CurrencyTypeFiat:
	default:
		return nil, core.NewValidationError(core.ErrCodeInvalidParam,
			fmt.Sprintf("type must be %q or %q, got %q", CurrencyTypeCoin, CurrencyTypeFiat, currencyType), nil)
	}
	return c.do(ctx, core.OpGetCurrencies, core.Params{"type": optional(currencyType)})
}

// GetCurrencyInfo returns one currency. No credentials are needed.
func (c *Client) GetCurrencyInfo(ctx context.Context, id string) (any, error) {
	id, err := required("id", id)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, core.OpGetCurrencyInfo, core.Params{"id": id})
}

// GetAccounts lists account balances, optionally for one currency.
func (c *Client) GetAccounts(ctx context.Context, currency string) (any, error) {
	return c.do(ctx, core.OpGetAccounts, core.Params{"currency": optional(strings.TrimSpace(currency))})
}
