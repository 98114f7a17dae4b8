package disbursement

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bonesdao/onboarding/internal/domain"
)

// ParseAmount parses a human-entered amount. It must be a positive decimal.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidAmount, raw)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: must be greater than zero", domain.ErrInvalidAmount)
	}
	return amount, nil
}

// ToBaseUnits converts an amount to the smallest unit of an asset with the given decimals.
// Amounts finer than the asset allows are rejected instead of rounded.
func ToBaseUnits(amount decimal.Decimal, decimals uint8) (*big.Int, error) {
	shifted := amount.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("%w: %s has more than %d fractional digits", domain.ErrInvalidAmount, amount.String(), decimals)
	}
	return shifted.BigInt(), nil
}

// FromBaseUnits converts base units back to a human amount
func FromBaseUnits(units *big.Int, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(units, -int32(decimals))
}
