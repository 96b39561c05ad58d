package Models

import (
	"gorm.io/datatypes"
)

// Expense categories that the dashboard groups together.
const (
	CategoryTyre    = "Tyre"
	CategoryRepair  = "Repair"
	CategoryService = "Service"
	CategorySalary  = "Salary"
	CategoryOther   = "Other"
)

// Expense is a general truck expense. Append-only.
type Expense struct {
	Base
	TruckID     string         `gorm:"type:varchar(36);index;not null" json:"truck_id"`
	Truck       *Truck         `gorm:"foreignKey:TruckID" json:"truck,omitempty"`
	Amount      float64        `json:"amount"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	ExpenseDate datatypes.Date `gorm:"index" json:"expense_date"`
}

// FuelExpense is a fuel purchase. Append-only.
type FuelExpense struct {
	Serial
	OwnerID     string         `gorm:"type:varchar(36);index;not null" json:"owner_id"`
	TruckID     string         `gorm:"type:varchar(36);index;not null" json:"truck_id"`
	Truck       *Truck         `gorm:"foreignKey:TruckID" json:"truck,omitempty"`
	PumpID      *uint          `json:"pump_id"`
	Pump        *PetrolPump    `gorm:"foreignKey:PumpID" json:"pump,omitempty"`
	ExpenseDate datatypes.Date `gorm:"index" json:"expense_date"`
	Amount      float64        `json:"amount"`
	Liters      float64        `json:"liters"`
	FilledBy    string         `json:"filled_by"`
	DriverID    *string        `gorm:"type:varchar(36)" json:"driver_id"`
	Driver      *Driver        `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	ReceiptURL  string         `json:"receipt_url"`
}

// Rate is the price per liter, 0 when liters is 0.
func (f FuelExpense) Rate() float64 {
	if f.Liters <= 0 {
		return 0
	}
	return f.Amount / f.Liters
}
