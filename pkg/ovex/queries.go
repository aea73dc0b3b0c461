package ovex

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/go-playground/validator/v10"

	"ovex/pkg/core"
)

// Markets supported by the RfQ endpoints.
const (
	MarketBTCZAR  = "btczar"
	MarketETHZAR  = "ethzar"
	MarketTUSDZAR = "tusdzar"
	MarketUSDTZAR = "usdtzar"
)

// Quote sides.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Currency types accepted by GetCurrencies.
const (
	CurrencyTypeCoin = "coin"
	CurrencyTypeFiat = "fiat"
)

const (
	defaultMarket        = MarketBTCZAR
	defaultSide          = SideBuy
	defaultTradesLimit   = 50
	defaultTradesOrder   = "desc"
	defaultWithdrawPage  = 1
	defaultWithdrawLimit = 100
)

var validate = validator.New()

// QuoteRequest asks for an all-inclusive quote. Exactly one of FromAmount
// and ToAmount must be set; a zero amount counts as unset.
//
// For market btczar with side buy, FromAmount is in ZAR and ToAmount in BTC.
// With side sell the units swap.
type QuoteRequest struct {
	Market     string       `validate:"oneof=btczar ethzar tusdzar usdtzar"`
	Side       string       `validate:"oneof=buy sell"`
	FromAmount *apd.Decimal `validate:"-"`
	ToAmount   *apd.Decimal `validate:"-"`
}

func (q QuoteRequest) normalize() (QuoteRequest, error) {
	q.Market = strings.ToLower(strings.TrimSpace(q.Market))
	if q.Market == "" {
		q.Market = defaultMarket
	}
	q.Side = strings.ToLower(strings.TrimSpace(q.Side))
	if q.Side == "" {
		q.Side = defaultSide
	}

	if err := validate.Struct(q); err != nil {
		return q, validationError(err)
	}

	from, to := amountSet(q.FromAmount), amountSet(q.ToAmount)
	if from == to {
		return q, core.NewValidationError(core.ErrCodeInvalidParam,
			"specify either from_amount or to_amount", nil)
	}
	for name, d := range map[string]*apd.Decimal{"from_amount": q.FromAmount, "to_amount": q.ToAmount} {
		if d != nil && d.Negative && !d.IsZero() {
			return q, core.NewValidationError(core.ErrCodeInvalidParam,
				fmt.Sprintf("%s must be positive", name), nil)
		}
	}
	if !from {
		q.FromAmount = nil
	}
	if !to {
		q.ToAmount = nil
	}
	return q, nil
}

func (q QuoteRequest) params() core.Params {
	return core.Params{
		"market":      q.Market,
		"side":        q.Side,
		"from_amount": q.FromAmount,
		"to_amount":   q.ToAmount,
	}
}

func amountSet(d *apd.Decimal) bool {
	return d != nil && !d.IsZero()
}

// TradesQuery filters RfQ trades. Zero values select the defaults
// (limit 50, newest first).
type TradesQuery struct {
	Limit   int    `validate:"gte=0"`
	OrderBy string `validate:"omitempty,oneof=asc desc"`
	// Timestamp restricts results to trades executed before this Unix time in seconds.
	Timestamp *int64
	// From restricts results to trades created after this trade id.
	From *int64
	// To restricts results to trades created before this trade id.
	To *int64
}

func (q TradesQuery) normalize() (TradesQuery, error) {
	q.OrderBy = strings.ToLower(strings.TrimSpace(q.OrderBy))
	if err := validate.Struct(q); err != nil {
		return q, validationError(err)
	}
	if q.Limit == 0 {
		q.Limit = defaultTradesLimit
	}
	if q.OrderBy == "" {
		q.OrderBy = defaultTradesOrder
	}
	return q, nil
}

func (q TradesQuery) params() core.Params {
	return core.Params{
		"limit":     q.Limit,
		"order_by":  q.OrderBy,
		"timestamp": q.Timestamp,
		"from":      q.From,
		"to":        q.To,
	}
}

// WithdrawsQuery pages through the withdrawals of one currency.
type WithdrawsQuery struct {
	Currency string `validate:"required"`
	// Page defaults to 1.
	Page int `validate:"gte=0"`
	// Limit defaults to 100 and may not exceed 1000.
	Limit int `validate:"gte=0,lte=1000"`
}

func (q WithdrawsQuery) normalize() (WithdrawsQuery, error) {
	q.Currency = strings.TrimSpace(q.Currency)
	if err := validate.Struct(q); err != nil {
		return q, validationError(err)
	}
	if q.Page == 0 {
		q.Page = defaultWithdrawPage
	}
	if q.Limit == 0 {
		q.Limit = defaultWithdrawLimit
	}
	return q, nil
}

func (q WithdrawsQuery) params() core.Params {
	return core.Params{
		"currency": q.Currency,
		"page":     q.Page,
		"limit":    q.Limit,
	}
}

// DepositsQuery filters deposits. All fields are optional.
type DepositsQuery struct {
	Currency string
	Limit    int `validate:"gte=0"`
	State    string
}

func (q DepositsQuery) normalize() (DepositsQuery, error) {
	q.Currency = strings.TrimSpace(q.Currency)
	q.State = strings.TrimSpace(q.State)
	if err := validate.Struct(q); err != nil {
		return q, validationError(err)
	}
	return q, nil
}

func (q DepositsQuery) params() core.Params {
	params := core.Params{
		"currency": optional(q.Currency),
		"state":    optional(q.State),
	}
	if q.Limit > 0 {
		params["limit"] = q.Limit
	}
	return params
}

// optional maps an empty string to an absent parameter.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func required(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", core.NewValidationError(core.ErrCodeInvalidParam,
			fmt.Sprintf("%s is required", name), nil)
	}
	return value, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg := fmt.Sprintf("%s failed %q validation", strings.ToLower(fe.Field()), fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s failed %q validation (%s)", strings.ToLower(fe.Field()), fe.Tag(), fe.Param())
		}
		return core.NewValidationError(core.ErrCodeInvalidParam, msg, err)
	}
	return core.NewValidationError(core.ErrCodeInvalidParam, "invalid arguments", err)
}
