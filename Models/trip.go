package Models

import (
	"github.com/vishwajeetguru/smart-truck-manager/Finance"
	"gorm.io/datatypes"
)

// Trip is one hauling job. Status is only the value submitted at creation;
// the settled status is always derived from Payments.
type Trip struct {
	Base
	TruckID         string         `gorm:"type:varchar(36);index;not null" json:"truck_id"`
	Truck           *Truck         `gorm:"foreignKey:TruckID" json:"truck,omitempty"`
	TripDate        datatypes.Date `gorm:"index" json:"trip_date"`
	Supplier        string         `json:"supplier"`
	Client          string         `json:"client"`
	Location        string         `json:"location"`
	Material        string         `json:"material"`
	MaterialPrice   float64        `json:"material_price"`
	TripsCount      float64        `json:"trips_count"`
	TotalOrderValue *float64       `json:"total_order_value"`
	Amount          *float64       `json:"-"`
	Profit          float64        `json:"profit"`
	TotalExpense    float64        `json:"total_expense"`
	Remark          string         `json:"remark"`
	Status          string         `gorm:"size:20" json:"-"`
	Payments        []Payment      `gorm:"foreignKey:TripID" json:"payments,omitempty"`
}

// OrderValue falls back to the legacy amount column for old rows.
func (t Trip) OrderValue() float64 {
	return Finance.OrderValue(t.TotalOrderValue, t.Amount)
}

// Settlement derives paid amount, balance and status from the loaded payments.
func (t Trip) Settlement() Finance.Settlement {
	amounts := make([]float64, len(t.Payments))
	for i, p := range t.Payments {
		amounts[i] = p.Amount
	}
	return Finance.Settle(t.OrderValue(), amounts)
}

// Draft returns the financial fields in calculator form.
func (t Trip) Draft() Finance.Draft {
	return Finance.Draft{
		MaterialPrice:   t.MaterialPrice,
		TripsCount:      t.TripsCount,
		TotalOrderValue: t.OrderValue(),
		Profit:          t.Profit,
		TotalExpense:    t.TotalExpense,
	}
}

// SetDraft stores normalized financial fields back on the trip.
func (t *Trip) SetDraft(d Finance.Draft) {
	order := d.TotalOrderValue
	t.MaterialPrice = d.MaterialPrice
	t.TripsCount = d.TripsCount
	t.TotalOrderValue = &order
	t.Profit = d.Profit
	t.TotalExpense = d.TotalExpense
}

const (
	PaymentModeCash = "cash"
	PaymentModeUPI  = "upi"
	PaymentModeBank = "bank"
)

type Payment struct {
	Base
	TripID      string         `gorm:"type:varchar(36);index;not null" json:"trip_id"`
	Trip        *Trip          `gorm:"foreignKey:TripID" json:"trip,omitempty"`
	Amount      float64        `json:"amount"`
	PaymentDate datatypes.Date `json:"payment_date"`
	Mode        string         `gorm:"size:20" json:"mode"`
}
