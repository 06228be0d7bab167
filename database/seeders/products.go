package seeders

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/catalog/app/services"
)

func init() {
	Register("products", SeedProducts)
}

type sample struct {
	title, sku, description, price string
	barcodes                       []string
}

var samples = []sample{
	{"Arabica Beans 1kg", "COF-ARA-1000", "Medium roast whole beans", "24.90", []string{"4006381333931", "4006381333948"}},
	{"Green Tea 50 bags", "TEA-GRN-050", "Sencha tea bags", "6.49", []string{"5012345678900"}},
	{"Oat Milk 1l", "MLK-OAT-1000", "", "2.19", []string{"7311041013663"}},
	{"Dark Chocolate 100g", "CHO-DRK-100", "70% cocoa", "3.75", nil},
}

// SeedProducts creates the sample products. Products whose sku already
// exists are left alone, so the seeder can be run repeatedly.
func SeedProducts(ctx context.Context, products *services.ProductService) error {
	for _, s := range samples {
		in := services.ProductInput{Title: s.title, SKU: s.sku, Price: s.price}
		if s.description != "" {
			desc := s.description
			in.Description = &desc
		}
		if s.barcodes != nil {
			in.Barcodes = &services.Barcodes{Codes: s.barcodes, Valid: true}
		}

		_, err := products.Create(ctx, in)
		var conflict *services.ConflictError
		if err != nil && !errors.As(err, &conflict) {
			return err
		}
	}
	return nil
}
