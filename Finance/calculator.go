package Finance

import "errors"

var ErrProfitExceedsOrder = errors.New("profit cannot exceed total order value")

// Field names a trip-entry input the calculator reacts to.
type Field string

const (
	FieldMaterialPrice   Field = "material_price"
	FieldTripsCount      Field = "trips_count"
	FieldTotalOrderValue Field = "total_order_value"
	FieldProfit          Field = "profit"
	FieldTotalExpense    Field = "total_expense"
)

// ParseField reports whether raw names a known calculator field.
func ParseField(raw string) (Field, bool) {
	switch f := Field(raw); f {
	case FieldMaterialPrice, FieldTripsCount, FieldTotalOrderValue, FieldProfit, FieldTotalExpense:
		return f, true
	}
	return "", false
}

// Draft is the financial part of a trip while it is being entered.
type Draft struct {
	MaterialPrice   float64 `json:"material_price"`
	TripsCount      float64 `json:"trips_count"`
	TotalOrderValue float64 `json:"total_order_value"`
	Profit          float64 `json:"profit"`
	TotalExpense    float64 `json:"total_expense"`
}

// Apply records one edited field and recomputes what depends on it.
// The last edit wins: an order value typed by hand replaces price*count
// until price or count change again.
func (d Draft) Apply(field Field, raw string) Draft {
	d = d.clamped()
	v := Clamp(Parse(raw))

	switch field {
	case FieldMaterialPrice:
		d.MaterialPrice = v
		d.TotalOrderValue = Mul(d.MaterialPrice, d.TripsCount)
	case FieldTripsCount:
		d.TripsCount = v
		d.TotalOrderValue = Mul(d.MaterialPrice, d.TripsCount)
	case FieldTotalOrderValue:
		d.TotalOrderValue = v
	case FieldProfit:
		d.Profit = v
	case FieldTotalExpense:
		d.TotalExpense = v
		return d
	default:
		return d
	}

	d.TotalExpense = Diff(d.TotalOrderValue, d.Profit)
	return d
}

func (d Draft) clamped() Draft {
	d.MaterialPrice = Clamp(d.MaterialPrice)
	d.TripsCount = Clamp(d.TripsCount)
	d.TotalOrderValue = Clamp(d.TotalOrderValue)
	d.Profit = Clamp(d.Profit)
	d.TotalExpense = Clamp(d.TotalExpense)
	return d
}

// Normalize applies the entry rules to a complete submission before it is stored.
// When orderGiven is false the order value is price*count. Total expense is
// always order value minus profit.
func Normalize(d Draft, orderGiven bool) (Draft, error) {
	d = d.clamped()

	if !orderGiven {
		d.TotalOrderValue = Mul(d.MaterialPrice, d.TripsCount)
	}
	if d.Profit > d.TotalOrderValue {
		return d, ErrProfitExceedsOrder
	}

	d.TotalExpense = Diff(d.TotalOrderValue, d.Profit)
	return d, nil
}
