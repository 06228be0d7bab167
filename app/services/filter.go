package services

import (
	"strconv"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/pkg/collection"
	"github.com/shashiranjanraj/catalog/pkg/orm"
)

const defaultLimit = 10

// ListParams carries the raw query parameters of a product listing. Empty
// strings mean "not given".
type ListParams struct {
	Start   string
	Num     string
	SKU     string
	Barcode string
	Fields  string
}

// listFilter is the validated form of ListParams.
type listFilter struct {
	offset  int
	limit   int
	sku     string
	barcode string
}

// parseListFilter turns the 1-based start into an offset and validates num.
// A start that is not a number is treated as absent.
func parseListFilter(p ListParams) (listFilter, error) {
	f := listFilter{limit: defaultLimit, sku: p.SKU, barcode: p.Barcode}

	if start, err := strconv.Atoi(p.Start); err == nil && start-1 > 0 {
		f.offset = start - 1
	}

	if p.Num != "" {
		num, err := strconv.Atoi(p.Num)
		if err != nil || num < 0 {
			return f, invalid("num must be a non-negative integer, got %q", p.Num)
		}
		f.limit = num
	}
	return f, nil
}

// primary reports whether the paged listing runs. A barcode lookup on its
// own replaces it; combined with sku both run.
func (f listFilter) primary() bool {
	return f.barcode == "" || f.sku != ""
}

func (f listFilter) primaryQuery(columns []string) orm.Query {
	q := orm.NewQuery().Select(columns...).OrderBy("product_id").Page(f.offset, f.limit)
	if f.sku != "" {
		q = q.Where("sku", f.sku)
	}
	return q
}

func barcodeOwnersQuery(barcode string) orm.Query {
	return orm.NewQuery().Where("barcode", barcode).OrderBy("product_id", "position")
}

func productsByIDQuery(ids []uint, columns []string) orm.Query {
	return orm.WhereIn(orm.NewQuery(), "product_id", ids).Select(columns...).OrderBy("product_id")
}

func barcodesOfQuery(ids []uint) orm.Query {
	return orm.WhereIn(orm.NewQuery(), "product_id", ids).OrderBy("product_id", "position")
}

// appendUnique appends the products of extra whose identifier is not yet in
// list.
func appendUnique(list, extra []models.Product) []models.Product {
	return collection.UniqueBy(append(list, extra...), productID)
}

func productIDs(products []models.Product) []uint {
	return collection.Map(products, productID)
}

func productID(p models.Product) uint { return p.ID }

// groupBarcodes indexes barcode rows by product, keeping row order.
func groupBarcodes(rows []models.Barcode) map[uint][]string {
	return collection.GroupBy(rows,
		func(b models.Barcode) uint { return b.ProductID },
		func(b models.Barcode) string { return b.Barcode })
}
