package service

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Business-rule errors carry the exact figures the caller needs to correct
// the input. They abort the settlement transaction and are mapped to 4xx
// responses by the handlers; they are never recovered silently.

// InsufficientStockError is returned when a decrement would oversell.
type InsufficientStockError struct {
	Product   string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.Product, e.Requested, e.Available)
}

// PaymentsMismatchError is returned when payment entries do not sum to the
// document total within the 0.01 tolerance.
type PaymentsMismatchError struct {
	Expected decimal.Decimal
	Got      decimal.Decimal
}

func (e *PaymentsMismatchError) Error() string {
	return fmt.Sprintf("payments sum %s does not match document total %s",
		e.Got.StringFixed(2), e.Expected.StringFixed(2))
}

// CreditLimitExceededError reports the remaining headroom on a customer
// account whose charge was rejected.
type CreditLimitExceededError struct {
	Account   string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *CreditLimitExceededError) Error() string {
	return fmt.Sprintf("credit limit exceeded on %s: requested %s, available %s",
		e.Account, e.Requested.StringFixed(2), e.Available.StringFixed(2))
}

// AccountInactiveError is returned when a posting targets a deactivated
// ledger account.
type AccountInactiveError struct {
	Account string
}

func (e *AccountInactiveError) Error() string {
	return fmt.Sprintf("ledger account %s is inactive", e.Account)
}
