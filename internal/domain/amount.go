package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Bounds on accepted amounts. Balances take the smallest exponent of any
// amount applied to them, so these also bound the size of a balance.
const (
	maxAmountLiteral = 64
	maxAmountScale   = 18
	maxAmountDigits  = 38
)

// IsMissing reports whether a raw JSON field was absent or explicitly null.
func IsMissing(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// ParseAmount parses a JSON number of any sign. Literals longer than
// maxAmountLiteral, or outside maxAmountScale/maxAmountDigits, are rejected.
func ParseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	num, ok := jsonNumber(raw)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: amount is not a number", ErrInvalidRequest)
	}

	amount, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if !inRange(amount) {
		return decimal.Zero, fmt.Errorf("%w: amount %s is out of range", ErrInvalidRequest, num)
	}

	return amount, nil
}

// ParseWholeAmount accepts only integer literals greater than zero.
// 5.0 and 5e0 are rejected even though they are numerically whole. Without a
// fraction or exponent the literal length alone bounds the value.
func ParseWholeAmount(raw json.RawMessage) (decimal.Decimal, error) {
	num, ok := jsonNumber(raw)
	if !ok || bytes.ContainsAny([]byte(num), ".eE") {
		return decimal.Zero, ErrInvalidAmount
	}

	amount, err := decimal.NewFromString(num)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	return amount, nil
}

// jsonNumber returns the literal if raw is a valid JSON number.
func jsonNumber(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || len(trimmed) > maxAmountLiteral {
		return "", false
	}

	c := trimmed[0]
	if c != '-' && (c < '0' || c > '9') {
		return "", false
	}

	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err != nil {
		return "", false
	}

	return num.String(), true
}

// inRange reports whether amount has at most maxAmountScale fractional digits
// and maxAmountDigits integer digits.
func inRange(amount decimal.Decimal) bool {
	exp := int64(amount.Exponent())
	if exp < -maxAmountScale {
		return false
	}
	return int64(amount.NumDigits())+exp <= maxAmountDigits
}
