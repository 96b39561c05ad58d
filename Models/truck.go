package Models

type Truck struct {
	Base
	OwnerID     string `gorm:"type:varchar(36);index;not null" json:"owner_id"`
	TruckNumber string `gorm:"not null" json:"truck_number"`
	Model       string `json:"model"`
	FuelType    string `json:"fuel_type"`
}

// Number returns the truck number, "" for a nil truck.
func (t *Truck) Number() string {
	if t == nil {
		return ""
	}
	return t.TruckNumber
}
