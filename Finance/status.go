package Finance

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusReceived Status = "received"
)

// ParseStatus maps a submitted payment status to a Status, defaulting to pending.
func ParseStatus(raw string) Status {
	if strings.EqualFold(strings.TrimSpace(raw), string(StatusReceived)) {
		return StatusReceived
	}
	return StatusPending
}

// OrderValue picks total_order_value, then the legacy amount column, then 0.
func OrderValue(total, legacy *float64) float64 {
	switch {
	case total != nil:
		return Finite(*total)
	case legacy != nil:
		return Finite(*legacy)
	default:
		return 0
	}
}

// DeriveStatus is received when the payments cover the order value. A tie is received.
func DeriveStatus(orderValue float64, payments []float64) Status {
	return Settle(orderValue, payments).Status
}

// Settlement is the read-time view of how far a trip has been paid.
type Settlement struct {
	OrderValue float64 `json:"order_value"`
	Paid       float64 `json:"paid_amount"`
	Balance    float64 `json:"balance"`
	Status     Status  `json:"status"`
}

func Settle(orderValue float64, payments []float64) Settlement {
	order := decimal.NewFromFloat(Finite(orderValue))
	paid := decimal.NewFromFloat(Sum(payments...))

	status := StatusPending
	if paid.GreaterThanOrEqual(order) {
		status = StatusReceived
	}

	return Settlement{
		OrderValue: order.InexactFloat64(),
		Paid:       paid.InexactFloat64(),
		Balance:    order.Sub(paid).InexactFloat64(),
		Status:     status,
	}
}
