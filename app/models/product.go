package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. sku is unique across products.
type Product struct {
	ID          uint            `gorm:"column:product_id;primaryKey;autoIncrement"`
	Title       string          `gorm:"size:32;not null"`
	SKU         string          `gorm:"column:sku;size:32;not null;uniqueIndex"`
	Description *string         `gorm:"size:1024"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0.00"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Product) TableName() string { return "product" }

// Barcode ties one barcode to a product. Position records the order the
// caller supplied the barcodes in.
type Barcode struct {
	ProductID uint   `gorm:"primaryKey;autoIncrement:false"`
	Barcode   string `gorm:"primaryKey;size:32;index"`
	Position  uint   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Barcode) TableName() string { return "product_barcode" }

// All lists the models migrated on boot.
func All() []any {
	return []any{&Product{}, &Barcode{}}
}
