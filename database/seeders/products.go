package seeders

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/inventory/app/models"
)

func init() {
	Register("products", seedProducts)
}

var demoProducts = []models.Product{
	{Barcode: "400000000001", Name: "Ballpoint pen", Price: 1.20, Stock: 250},
	{Barcode: "400000000002", Name: "A4 notebook", Price: 3.50, Stock: 80},
	{Barcode: "400000000003", Name: "Desk lamp", Price: 24.99, Stock: 12},
	{Barcode: "400000000004", Name: "USB-C cable", Price: 7.00, Stock: 40},
	{Barcode: "400000000005", Name: "Stapler", Price: 9.95, Stock: 0},
}

// seedProducts inserts the demo catalogue, skipping barcodes that already
// exist so it can run repeatedly.
func seedProducts(db *gorm.DB) error {
	rows := append([]models.Product(nil), demoProducts...)
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "barcode"}},
		DoNothing: true,
	}).Create(&rows).Error
}
