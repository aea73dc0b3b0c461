package core

// Operation identifies an OVEX API endpoint.
type Operation int

// Operation constants define all supported endpoints.
const (
	// OpGetFeeWithdraw lists withdrawal fees for every currency.
	OpGetFeeWithdraw Operation = iota
	// OpGetFeeDeposit lists deposit fees for every currency.
	OpGetFeeDeposit
	// OpGetQuote requests an all-inclusive RfQ quote.
	OpGetQuote
	// OpGetTrades lists RfQ trades.
	OpGetTrades
	// OpAcceptQuote executes a previously issued quote.
	OpAcceptQuote
	// OpGetWithdraws lists withdrawals of one currency.
	OpGetWithdraws
	// OpGetDeposits lists deposits.
	OpGetDeposits
	// OpGetDepositInfo retrieves one deposit by transaction id.
	OpGetDepositInfo
	// OpGetDepositAddress retrieves the deposit address of a currency.
	OpGetDepositAddress
	// OpGetCurrencies lists currencies.
	OpGetCurrencies
	// OpGetCurrencyInfo retrieves one currency.
	OpGetCurrencyInfo
	// OpGetAccounts lists account balances.
	OpGetAccounts
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	names := [...]string{
		"GET_FEE_WITHDRAW",
		"GET_FEE_DEPOSIT",
		"GET_QUOTE",
		"GET_TRADES",
		"ACCEPT_QUOTE",
		"GET_WITHDRAWS",
		"GET_DEPOSITS",
		"GET_DEPOSIT_INFO",
		"GET_DEPOSIT_ADDRESS",
		"GET_CURRENCIES",
		"GET_CURRENCY_INFO",
		"GET_ACCOUNTS",
	}
	if o < 0 || int(o) >= len(names) {
		return "UNKNOWN"
	}
	return names[o]
}
