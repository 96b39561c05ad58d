package Finance

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Integer | constraints.Float
}

// Finite returns v, or 0 when v is NaN or infinite.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Parse reads a user-entered number. Anything that does not parse is 0.
func Parse(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return Finite(v)
}

// Clamp coerces negative and non-finite values to 0.
func Clamp[T Number](v T) T {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) || v < 0 {
		return 0
	}
	return v
}

// Sum adds values exactly in decimal and returns the nearest float.
func Sum[T Number](values ...T) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(Finite(float64(v))))
	}
	return total.InexactFloat64()
}

// Diff returns a - b computed in decimal.
func Diff(a, b float64) float64 {
	return decimal.NewFromFloat(Finite(a)).Sub(decimal.NewFromFloat(Finite(b))).InexactFloat64()
}

// Mul returns a * b computed in decimal.
func Mul(a, b float64) float64 {
	return decimal.NewFromFloat(Finite(a)).Mul(decimal.NewFromFloat(Finite(b))).InexactFloat64()
}

// Amount is a financial request field. It accepts JSON numbers and numeric
// strings; null and anything unparseable decode to 0.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*a = 0
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*a = 0
			return nil
		}
		*a = Amount(Parse(s))
	default:
		*a = Amount(Parse(string(b)))
	}
	return nil
}

// Float returns the amount as a finite float64.
func (a Amount) Float() float64 {
	return Finite(float64(a))
}

// FloatPtr returns nil for a nil amount, the finite value otherwise.
func FloatPtr(a *Amount) *float64 {
	if a == nil {
		return nil
	}
	v := a.Float()
	return &v
}
