// internal/models/amount.go
package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Amount is a non-negative integer quantity of token base units. The zero
// value is 0. Amounts are immutable; arithmetic returns a new value.
type Amount struct {
	v *big.Int
}

var ErrInvalidAmount = errors.New("invalid amount")

// MaxAmount is 2^256-1, the largest representable quantity.
var MaxAmount = Amount{v: new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))}

func NewAmount(n int64) Amount {
	if n < 0 {
		n = 0
	}
	return Amount{v: big.NewInt(n)}
}

func AmountFromBig(b *big.Int) Amount {
	if b == nil || b.Sign() < 0 {
		return Amount{}
	}
	return Amount{v: new(big.Int).Set(b)}
}

// ParseAmount reads a base-10 integer string of base units.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if b.Sign() < 0 {
		return Amount{}, fmt.Errorf("%w: negative", ErrInvalidAmount)
	}
	if b.Cmp(MaxAmount.v) > 0 {
		return Amount{}, fmt.Errorf("%w: exceeds 2^256-1", ErrInvalidAmount)
	}
	return Amount{v: b}, nil
}

func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Big() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.v)
}

// Add returns a+b. The result may exceed MaxAmount; see Overflows.
func (a Amount) Add(b Amount) Amount {
	return Amount{v: new(big.Int).Add(a.Big(), b.Big())}
}

func (a Amount) Overflows() bool {
	return a.v != nil && a.v.Cmp(MaxAmount.v) > 0
}

// Sub returns a-b. Callers check Cmp first; an underflow clamps to zero.
func (a Amount) Sub(b Amount) Amount {
	r := new(big.Int).Sub(a.Big(), b.Big())
	if r.Sign() < 0 {
		return Amount{}
	}
	return Amount{v: r}
}

func (a Amount) Cmp(b Amount) int {
	return a.Big().Cmp(b.Big())
}

func (a Amount) LessThan(b Amount) bool {
	return a.Cmp(b) < 0
}

func (a Amount) IsZero() bool {
	return a.v == nil || a.v.Sign() == 0
}

func (a Amount) String() string {
	if a.v == nil {
		return "0"
	}
	return a.v.String()
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts both "123" and 123.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

func (a *Amount) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case nil:
		*a = Amount{}
		return nil
	case []byte:
		s = string(v)
	case string:
		s = v
	case int64:
		*a = NewAmount(v)
		return nil
	default:
		return fmt.Errorf("%w: unsupported source type %T", ErrInvalidAmount, value)
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// GormDBDataType keeps full uint256 precision: numeric on PostgreSQL, text
// elsewhere (SQLite would coerce large numerics to REAL).
func (Amount) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "numeric(78,0)"
	}
	return "text"
}
