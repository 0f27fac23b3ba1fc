package models

// Product is the only persisted entity: a sellable item identified by its
// barcode. Barcode never changes after creation.
type Product struct {
	ID      uint    `gorm:"primaryKey"                   json:"id"`
	Barcode string  `gorm:"size:12;uniqueIndex;not null" json:"barcode"`
	Name    string  `gorm:"size:100;not null"            json:"name"`
	Price   float64 `gorm:"not null"                     json:"price"`
	Stock   int     `gorm:"not null;default:0"           json:"stock"`
}

// TableName pins the table name regardless of naming strategy.
func (Product) TableName() string { return "products" }
