package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperation_String(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		want string
	}{
		{"fee_withdraw", OpGetFeeWithdraw, "GET_FEE_WITHDRAW"},
		{"fee_deposit", OpGetFeeDeposit, "GET_FEE_DEPOSIT"},
		{"get_quote", OpGetQuote, "GET_QUOTE"},
		{"get_trades", OpGetTrades, "GET_TRADES"},
		{"accept_quote", OpAcceptQuote, "ACCEPT_QUOTE"},
		{"get_withdraws", OpGetWithdraws, "GET_WITHDRAWS"},
		{"get_deposits", OpGetDeposits, "GET_DEPOSITS"},
		{"get_deposit_info", OpGetDepositInfo, "GET_DEPOSIT_INFO"},
		{"get_deposit_address", OpGetDepositAddress, "GET_DEPOSIT_ADDRESS"},
		{"get_currencies", OpGetCurrencies, "GET_CURRENCIES"},
		{"get_currency_info", OpGetCurrencyInfo, "GET_CURRENCY_INFO"},
		{"get_accounts", OpGetAccounts, "GET_ACCOUNTS"},
		{"out_of_range", Operation(99), "UNKNOWN"},
		{"negative", Operation(-1), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.String())
		})
	}
}
