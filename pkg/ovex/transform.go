package ovex

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"

	"ovex/pkg/core"
)

// Fee is the fee schedule of one currency.
type Fee struct {
	Currency     string
	CurrencyType string
	Value        apd.Decimal
	FeeType      string
}

// MarshalJSON renders the value as a decimal string.
func (f Fee) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(struct {
		Currency     string `json:"currency"`
		CurrencyType string `json:"currency_type"`
		Value        string `json:"fee"`
		FeeType      string `json:"fee_type"`
	}{f.Currency, f.CurrencyType, f.Value.Text('f'), f.FeeType})
}

// KeyBy turns a decoded JSON list of objects into a map keyed by the string
// value of field. It fails with a protocol error if body is not a list, an
// element is not an object, or an element lacks a string field.
func KeyBy(body any, field string) (map[string]map[string]any, error) {
	items, ok := body.([]any)
	if !ok {
		return nil, core.NewProtocolError(0, fmt.Sprintf("expected a list, got %T", body), nil, nil)
	}

	out := make(map[string]map[string]any, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, core.NewProtocolError(0, fmt.Sprintf("element %d: expected an object, got %T", i, item), nil, nil)
		}
		key, ok := obj[field].(string)
		if !ok {
			return nil, core.NewProtocolError(0, fmt.Sprintf("element %d: missing string field %q", i, field), nil, nil)
		}
		out[key] = obj
	}
	return out, nil
}

// feesFrom projects a fee listing into Fee values keyed by currency.
func feesFrom(body any) (map[string]Fee, error) {
	records, err := KeyBy(body, "currency")
	if err != nil {
		return nil, err
	}

	fees := make(map[string]Fee, len(records))
	for currency, rec := range records {
		fee, err := parseFee(currency, rec)
		if err != nil {
			return nil, err
		}
		fees[currency] = fee
	}
	return fees, nil
}

func parseFee(currency string, rec map[string]any) (Fee, error) {
	detail, ok := rec["fee"].(map[string]any)
	if !ok {
		return Fee{}, core.NewProtocolError(0, fmt.Sprintf("%s: fee is not an object", currency), nil, nil)
	}

	value, err := parseDecimal(detail["value"])
	if err != nil {
		return Fee{}, core.NewProtocolError(0, fmt.Sprintf("%s: invalid fee value", currency), nil, err)
	}

	fee := Fee{Currency: currency}
	fee.Value.Set(value)
	fee.CurrencyType, _ = rec["type"].(string)
	fee.FeeType, _ = detail["type"].(string)
	return fee, nil
}

func parseDecimal(v any) (*apd.Decimal, error) {
	switch val := v.(type) {
	case json.Number:
		d, _, err := apd.NewFromString(val.String())
		return d, err
	case string:
		d, _, err := apd.NewFromString(val)
		return d, err
	default:
		return nil, fmt.Errorf("unexpected decimal type %T", v)
	}
}
