package Models

type Supplier struct {
	Serial
	OwnerID string `gorm:"type:varchar(36);index;not null" json:"owner_id"`
	Name    string `gorm:"not null" json:"name"`
	Address string `json:"address"`
	Mobile  string `gorm:"not null" json:"mobile"`
}

type Material struct {
	Serial
	OwnerID string `gorm:"type:varchar(36);index;not null" json:"owner_id"`
	Name    string `gorm:"not null" json:"name"`
}

type PetrolPump struct {
	Serial
	OwnerID  string `gorm:"type:varchar(36);index;not null" json:"owner_id"`
	Name     string `gorm:"not null" json:"name"`
	Location string `json:"location"`
}
