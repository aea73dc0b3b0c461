package ovex

import (
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strings"

	"ovex/pkg/core"
)

// endpoint describes how an operation maps onto the REST API.
type endpoint struct {
	Method      string
	Path        string
	RequireAuth bool
}

var endpoints = map[core.Operation]endpoint{
	core.OpGetFeeWithdraw:    {http.MethodGet, "/fees/withdraw", true},
	core.OpGetFeeDeposit:     {http.MethodGet, "/fees/deposit", true},
	core.OpGetQuote:          {http.MethodGet, "/rfq/get_quote", true},
	core.OpGetTrades:         {http.MethodGet, "/rfq/trades", true},
	core.OpAcceptQuote:       {http.MethodPost, "/rfq/accept_quote", true},
	core.OpGetWithdraws:      {http.MethodGet, "/withdraws", true},
	core.OpGetDeposits:       {http.MethodGet, "/deposits", true},
	core.OpGetDepositInfo:    {http.MethodGet, "/deposit", true},
	core.OpGetDepositAddress: {http.MethodGet, "/deposit_address", true},
	core.OpGetCurrencies:     {http.MethodGet, "/currencies", false},
	core.OpGetCurrencyInfo:   {http.MethodGet, "/currencies/{id}", false},
	core.OpGetAccounts:       {http.MethodGet, "/accounts", true},
}

// Protocol turns operations and their parameters into requests.
type Protocol struct{}

var _ core.Protocol = (*Protocol)(nil)

// NewProtocol creates a new OVEX protocol instance.
func NewProtocol() *Protocol {
	return &Protocol{}
}

// Name returns the protocol identifier "ovex".
func (p *Protocol) Name() string {
	return "ovex"
}

// Version returns the API version served under the base URL.
func (p *Protocol) Version() string {
	return "2"
}

// SupportedOperations returns the operations this protocol can build.
func (p *Protocol) SupportedOperations() []core.Operation {
	ops := make([]core.Operation, 0, len(endpoints))
	for op := core.OpGetFeeWithdraw; op <= core.OpGetAccounts; op++ {
		if _, ok := endpoints[op]; ok {
			ops = append(ops, op)
		}
	}
	return ops
}

// BuildRequest constructs the request for op. Path placeholders such as
// {id} are filled from params, escaped, and removed from the parameter set.
func (p *Protocol) BuildRequest(op core.Operation, params core.Params) (*core.Request, error) {
	ep, ok := endpoints[op]
	if !ok {
		return nil, core.NewValidationError(core.ErrCodeInvalidParam,
			fmt.Sprintf("unsupported operation: %s", op), nil)
	}

	remaining := maps.Clone(params)

	path := ep.Path
	for strings.Contains(path, "{") {
		start := strings.Index(path, "{")
		end := strings.Index(path[start:], "}")
		if end < 0 {
			return nil, core.NewValidationError(core.ErrCodeInvalidPath, "unterminated path placeholder", nil)
		}
		name := path[start+1 : start+end]

		value := ""
		if v, ok := remaining[name]; ok && v != nil {
			value = core.FormatParam(v)
		}
		if strings.TrimSpace(value) == "" {
			return nil, core.NewValidationError(core.ErrCodeInvalidParam,
				fmt.Sprintf("%s is required", name), nil)
		}
		delete(remaining, name)

		path = path[:start] + url.PathEscape(value) + path[start+end+1:]
	}

	return core.NewRequest(ep.Method, path).
		SetParams(remaining).
		SetRequireAuth(ep.RequireAuth), nil
}
