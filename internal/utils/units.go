// internal/utils/units.go
package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/javajoker/kpay-backend/internal/models"
)

// DefaultDecimals is the implied precision of Kpay and factory-created tokens.
const DefaultDecimals = 18

// ParseUnits converts a human amount such as "1.5" into base units.
func ParseUnits(human string, decimals int32) (models.Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(human))
	if err != nil {
		return models.Amount{}, fmt.Errorf("%w: %q", models.ErrInvalidAmount, human)
	}
	if d.IsNegative() {
		return models.Amount{}, fmt.Errorf("%w: negative", models.ErrInvalidAmount)
	}
	scaled := d.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return models.Amount{}, fmt.Errorf("%w: more than %d decimals", models.ErrInvalidAmount, decimals)
	}
	return models.AmountFromBig(scaled.BigInt()), nil
}

// FormatUnits renders base units as a human amount without trailing zeros.
func FormatUnits(a models.Amount, decimals int32) string {
	return decimal.NewFromBigInt(a.Big(), -decimals).String()
}

// MustParseUnits is for constants and tests.
func MustParseUnits(human string) models.Amount {
	a, err := ParseUnits(human, DefaultDecimals)
	if err != nil {
		panic(err)
	}
	return a
}
