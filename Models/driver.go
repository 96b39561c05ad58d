package Models

import (
	"errors"
	"strings"

	"gorm.io/datatypes"
)

var ErrPrimaryMobileRequired = errors.New("primary mobile number is required")

type Driver struct {
	Base
	OwnerID         string  `gorm:"type:varchar(36);index;not null" json:"owner_id"`
	TruckID         *string `gorm:"type:varchar(36);index" json:"truck_id"`
	Truck           *Truck  `gorm:"foreignKey:TruckID" json:"truck,omitempty"`
	Name            string  `gorm:"not null" json:"name"`
	LicenseNumber   string  `json:"license_number"`
	MobilePrimary   string  `gorm:"not null" json:"mobile_primary"`
	MobileSecondary string  `json:"mobile_secondary"`
	BloodGroup      string  `json:"blood_group"`
	Salary          float64 `json:"salary"`
	Advance         float64 `json:"advance"`
	PhotoURL        string  `json:"photo_url"`
	DocumentURL     string  `json:"document_url"`
}

// Mobiles lists the non-empty numbers, primary first.
func (d Driver) Mobiles() []string {
	out := make([]string, 0, 2)
	for _, m := range []string{d.MobilePrimary, d.MobileSecondary} {
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}

// SetMobiles keeps at most two numbers. The first is required.
func (d *Driver) SetMobiles(mobiles []string) error {
	cleaned := make([]string, 0, 2)
	for _, m := range mobiles {
		if m = strings.TrimSpace(m); m != "" {
			cleaned = append(cleaned, m)
		}
	}
	if len(cleaned) == 0 {
		return ErrPrimaryMobileRequired
	}
	d.MobilePrimary = cleaned[0]
	d.MobileSecondary = ""
	if len(cleaned) > 1 {
		d.MobileSecondary = cleaned[1]
	}
	return nil
}

const (
	DriverPaymentSalary  = "salary"
	DriverPaymentAdvance = "advance"
	DriverPaymentBonus   = "bonus"
	DriverPaymentOther   = "other"
)

// DriverPayment is a ledger entry. Advance entries also move Driver.Advance.
type DriverPayment struct {
	Base
	OwnerID     string         `gorm:"type:varchar(36);index;not null" json:"owner_id"`
	DriverID    string         `gorm:"type:varchar(36);index;not null" json:"driver_id"`
	Amount      float64        `json:"amount"`
	PaymentDate datatypes.Date `json:"payment_date"`
	PaymentType string         `gorm:"size:20" json:"payment_type"`
	Remark      string         `json:"remark"`
}
