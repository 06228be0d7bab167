package services

import (
	"math"
	"strings"
	"time"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/pkg/collection"
)

// fieldNames is the allow-list of names a client may request, in the order
// used when no fields are requested.
var fieldNames = []string{
	"productId",
	"title",
	"sku",
	"barcodes",
	"description",
	"attributes",
	"price",
	"created",
	"lastUpdated",
}

// fieldColumns maps each allowed name to its storage column. Names mapped to
// "" are accepted but never selected.
var fieldColumns = map[string]string{
	"productId":   "product_id",
	"title":       "title",
	"sku":         "sku",
	"barcodes":    "",
	"description": "description",
	"attributes":  "",
	"price":       "price",
	"created":     "created_at",
	"lastUpdated": "updated_at",
}

// Projection is the parsed form of the fields query parameter.
type Projection struct {
	// Names holds the allow-listed names that map to a column, in request
	// order.
	Names []string
	// Barcodes tells whether the barcode list is attached to each record.
	Barcodes bool
}

// Project parses a comma separated field list. Unknown names are dropped
// silently; an empty list selects everything.
func Project(fields string) Projection {
	requested := fieldNames
	if fields != "" {
		requested = strings.Split(fields, ",")
	}

	p := Projection{Barcodes: fields == ""}
	for _, name := range requested {
		if name == "barcode" || name == "barcodes" {
			p.Barcodes = true
		}
	}
	p.Names = collection.Unique(collection.Filter(requested, func(name string) bool {
		return fieldColumns[name] != ""
	}))
	return p
}

// Columns returns the storage columns to select. The identifier is always
// included since barcode hydration and de-duplication key on it.
func (p Projection) Columns() []string {
	cols := []string{"product_id"}
	for _, name := range p.Names {
		if col := fieldColumns[name]; col != "product_id" {
			cols = append(cols, col)
		}
	}
	return cols
}

// Record renders the projected fields of product as a response object.
func (p Projection) Record(product models.Product) map[string]any {
	rec := make(map[string]any, len(p.Names)+1)
	for _, name := range p.Names {
		switch name {
		case "productId":
			rec[name] = product.ID
		case "title":
			rec[name] = product.Title
		case "sku":
			rec[name] = product.SKU
		case "description":
			rec[name] = product.Description
		case "price":
			rec[name] = product.Price.StringFixed(2)
		case "created":
			rec[name] = epochSeconds(product.CreatedAt)
		case "lastUpdated":
			rec[name] = epochSeconds(product.UpdatedAt)
		}
	}
	return rec
}

// epochSeconds rounds t to the nearest whole second since the Unix epoch.
func epochSeconds(t time.Time) int64 {
	return int64(math.Round(float64(t.UnixMilli()) / 1000))
}
