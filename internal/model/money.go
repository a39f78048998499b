package model

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// Amounts are stored as NUMERIC(12,2).
const (
	MoneyScale         = 2
	MoneyIntegerDigits = 10
)

// MaxMoney is the smallest amount that no longer fits the column.
var MaxMoney = decimal.New(1, MoneyIntegerDigits)

// Plain digits only: no sign, no exponent, at most two decimals.
var moneyPattern = regexp.MustCompile(`^\d{1,10}(\.\d{1,2})?$`)

var (
	errMoneyFormat = errors.New("must be a plain number with at most 2 decimal places")
	errMoneyRange  = fmt.Errorf("must be less than %s", MaxMoney.String())
)

// ParseMoney parses a client-supplied amount. The format is checked before
// any arithmetic so exponent forms like 1e400 never reach the decimal package.
func ParseMoney(s string) (decimal.Decimal, error) {
	if !moneyPattern.MatchString(s) {
		return decimal.Zero, errMoneyFormat
	}
	return decimal.NewFromString(s)
}

// CheckMoney reports whether d can be stored without rounding or overflow.
// The exponent is bounded first; rescaling an extreme exponent is costly.
func CheckMoney(d decimal.Decimal) error {
	if d.IsZero() {
		return nil
	}
	exp := d.Exponent()
	if exp >= MoneyIntegerDigits {
		return errMoneyRange
	}
	if exp < -(MoneyScale + 2*MoneyIntegerDigits) {
		return errMoneyFormat
	}
	if !d.Equal(d.Truncate(MoneyScale)) {
		return errMoneyFormat
	}
	if d.Abs().GreaterThanOrEqual(MaxMoney) {
		return errMoneyRange
	}
	return nil
}
