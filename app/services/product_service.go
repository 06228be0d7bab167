package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/app/repositories"
	"github.com/shashiranjanraj/catalog/pkg/cache"
	"github.com/shashiranjanraj/catalog/pkg/collection"
	"github.com/shashiranjanraj/catalog/pkg/logger"
	"github.com/shashiranjanraj/catalog/pkg/metrics"
	"github.com/shashiranjanraj/catalog/pkg/orm"
)

// Barcodes is the barcodes value of a request body. Valid is false when the
// client sent something other than a list of strings.
type Barcodes struct {
	Codes []string
	Valid bool
}

// ProductInput is the writable part of a product. Empty strings and a nil
// Description or Barcodes mean the client did not provide the field.
type ProductInput struct {
	Title       string
	SKU         string
	Description *string
	Price       string
	Barcodes    *Barcodes
}

// ProductList is the listing response.
type ProductList struct {
	TotalCount int64            `json:"totalCount"`
	Items      []map[string]any `json:"items"`
}

// ProductService implements the product resource on top of a Store.
type ProductService struct {
	store    repositories.Store
	cache    cache.Store
	cacheTTL time.Duration

	// generations counts invalidations per product id (*atomic.Uint64) so a
	// read that raced an update does not leave its record in the cache.
	generations sync.Map
}

// NewProductService wires the service. A nil cache disables response
// caching.
func NewProductService(store repositories.Store, c cache.Store, ttl time.Duration) *ProductService {
	if c == nil {
		c = cache.Nop{}
	}
	return &ProductService{store: store, cache: c, cacheTTL: ttl}
}

// Ping checks that the backing store answers.
func (s *ProductService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Create stores a new product with its barcodes and returns its identifier.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (uint, error) {
	if err := checkCreate(in); err != nil {
		return 0, err
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return 0, err
	}

	product := models.Product{
		Title:       in.Title,
		SKU:         in.SKU,
		Description: in.Description,
		Price:       price,
	}

	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		if err := ensureSKUFree(ctx, tx, in.SKU, 0); err != nil {
			return err
		}
		if err := tx.Products().Insert(ctx, &product); err != nil {
			if errors.Is(err, orm.ErrDuplicateKey) {
				return &ConflictError{SKU: in.SKU}
			}
			return storeErr("create product", err)
		}
		if in.Barcodes != nil {
			return insertBarcodes(ctx, tx, product.ID, in.Barcodes)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	metrics.RecordMutation("create")
	logger.WithCtx(ctx).Info("product created", "product_id", product.ID, "sku", product.SKU)
	return product.ID, nil
}

// RetrieveOne returns the projected fields of one product.
func (s *ProductService) RetrieveOne(ctx context.Context, rawID, fields string) (map[string]any, error) {
	id, ok := parseID(rawID)
	if !ok {
		return nil, productNotFound(rawID)
	}

	key := cacheKey(id, fields)
	var cached map[string]any
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	gen := s.generation(id)
	seen := gen.Load()

	proj := Project(fields)
	product, err := s.store.Products().FindOne(ctx,
		orm.NewQuery().Where("product_id", id).Select(proj.Columns()...))
	if errors.Is(err, orm.ErrNotFound) {
		return nil, productNotFound(rawID)
	}
	if err != nil {
		return nil, storeErr("retrieve product", err)
	}

	rec := proj.Record(product)
	if proj.Barcodes {
		rows, err := s.store.Barcodes().FindMany(ctx, barcodesOfQuery([]uint{id}))
		if err != nil {
			return nil, storeErr("retrieve barcodes", err)
		}
		codes := groupBarcodes(rows)[id]
		if codes == nil {
			codes = []string{}
		}
		rec["barcodes"] = codes
	}

	s.remember(ctx, key, rec, gen, seen)
	return rec, nil
}

// RetrieveMany lists products. totalCount always counts every product,
// whatever the filters.
func (s *ProductService) RetrieveMany(ctx context.Context, p ListParams) (ProductList, error) {
	f, err := parseListFilter(p)
	if err != nil {
		return ProductList{}, err
	}
	proj := Project(p.Fields)
	columns := proj.Columns()

	total, err := s.store.Products().Count(ctx, orm.NewQuery())
	if err != nil {
		return ProductList{}, storeErr("count products", err)
	}

	var products []models.Product
	if f.primary() {
		products, err = s.store.Products().FindMany(ctx, f.primaryQuery(columns))
		if err != nil {
			return ProductList{}, storeErr("list products", err)
		}
	}

	if f.barcode != "" {
		owners, err := s.store.Barcodes().FindMany(ctx, barcodeOwnersQuery(f.barcode))
		if err != nil {
			return ProductList{}, storeErr("resolve barcode", err)
		}
		ids := collection.Map(owners, func(b models.Barcode) uint { return b.ProductID })
		extra, err := s.store.Products().FindMany(ctx, productsByIDQuery(ids, columns))
		if err != nil {
			return ProductList{}, storeErr("list products by barcode", err)
		}
		products = appendUnique(products, extra)
	}

	var codes map[uint][]string
	if proj.Barcodes && len(products) > 0 {
		rows, err := s.store.Barcodes().FindMany(ctx, barcodesOfQuery(productIDs(products)))
		if err != nil {
			return ProductList{}, storeErr("list barcodes", err)
		}
		codes = groupBarcodes(rows)
	}

	items := make([]map[string]any, 0, len(products))
	for _, product := range products {
		rec := proj.Record(product)
		if proj.Barcodes {
			list := codes[product.ID]
			if list == nil {
				list = []string{}
			}
			rec["barcodes"] = list
		}
		items = append(items, rec)
	}

	return ProductList{TotalCount: total, Items: items}, nil
}

// Update applies the provided fields and reports whether the product row
// was modified. Barcode replacement does not affect the result.
func (s *ProductService) Update(ctx context.Context, rawID string, in ProductInput) (bool, error) {
	id, ok := parseID(rawID)
	if !ok {
		return false, productNotFound(rawID)
	}

	var updated bool
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.Products().FindOne(ctx, byID(id)); err != nil {
			if errors.Is(err, orm.ErrNotFound) {
				return productNotFound(rawID)
			}
			return storeErr("update product", err)
		}

		if err := checkUpdate(in); err != nil {
			return err
		}
		price, err := parsePrice(in.Price)
		if err != nil {
			return err
		}

		columns := map[string]any{}
		if in.Title != "" {
			columns["title"] = in.Title
		}
		if in.SKU != "" {
			if err := ensureSKUFree(ctx, tx, in.SKU, id); err != nil {
				return err
			}
			columns["sku"] = in.SKU
		}
		if in.Description != nil && *in.Description != "" {
			columns["description"] = *in.Description
		}
		if !price.IsZero() {
			columns["price"] = price
		}

		if in.Barcodes != nil {
			if _, err := tx.Barcodes().Delete(ctx, byID(id)); err != nil {
				return storeErr("delete barcodes", err)
			}
			if err := insertBarcodes(ctx, tx, id, in.Barcodes); err != nil {
				return err
			}
		}

		// Nothing but barcodes (or only falsy fields) leaves the row alone.
		if len(columns) == 0 {
			return nil
		}
		columns["updated_at"] = time.Now()
		n, err := tx.Products().Update(ctx, byID(id), columns)
		if err != nil {
			if errors.Is(err, orm.ErrDuplicateKey) {
				return &ConflictError{SKU: in.SKU}
			}
			return storeErr("update product", err)
		}
		updated = n == 1
		return nil
	})
	if err != nil {
		return false, err
	}

	s.forget(ctx, id)
	metrics.RecordMutation("update")
	logger.WithCtx(ctx).Info("product updated", "product_id", id, "modified", updated)
	return updated, nil
}

// Delete removes a product and its barcodes.
func (s *ProductService) Delete(ctx context.Context, rawID string) error {
	id, ok := parseID(rawID)
	if !ok {
		return productDoesNotExist(rawID)
	}

	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.Products().FindOne(ctx, byID(id)); err != nil {
			if errors.Is(err, orm.ErrNotFound) {
				return productDoesNotExist(rawID)
			}
			return storeErr("delete product", err)
		}
		if _, err := tx.Products().Delete(ctx, byID(id)); err != nil {
			return storeErr("delete product", err)
		}
		if _, err := tx.Barcodes().Delete(ctx, byID(id)); err != nil {
			return storeErr("delete barcodes", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.forget(ctx, id)
	metrics.RecordMutation("delete")
	logger.WithCtx(ctx).Info("product deleted", "product_id", id)
	return nil
}

// remember caches rec unless the product was invalidated since the read
// that produced it. An invalidation landing between Set and the second check
// is caught by deleting the entry again.
func (s *ProductService) remember(ctx context.Context, key string, rec map[string]any, gen *atomic.Uint64, seen uint64) {
	if gen.Load() != seen {
		return
	}
	if err := s.cache.Set(ctx, key, rec, s.cacheTTL); err != nil {
		logger.WithCtx(ctx).Warn("product cache set failed", "key", key, "error", err)
		return
	}
	if gen.Load() != seen {
		if err := s.cache.DeletePrefix(ctx, key); err != nil {
			logger.WithCtx(ctx).Warn("product cache invalidation failed", "key", key, "error", err)
		}
	}
}

func (s *ProductService) generation(id uint) *atomic.Uint64 {
	if g, ok := s.generations.Load(id); ok {
		return g.(*atomic.Uint64)
	}
	g, _ := s.generations.LoadOrStore(id, new(atomic.Uint64))
	return g.(*atomic.Uint64)
}

func (s *ProductService) forget(ctx context.Context, id uint) {
	s.generation(id).Add(1)
	if err := s.cache.DeletePrefix(ctx, cacheKey(id, "")); err != nil {
		logger.WithCtx(ctx).Warn("product cache invalidation failed", "product_id", id, "error", err)
	}
}

// ensureSKUFree fails with ConflictError when a product other than except
// holds sku. except is 0 on create.
func ensureSKUFree(ctx context.Context, tx repositories.Store, sku string, except uint) error {
	q := orm.NewQuery().Where("sku", sku).Select("product_id")
	if except != 0 {
		q = q.Not("product_id", except)
	}
	_, err := tx.Products().FindOne(ctx, q)
	switch {
	case err == nil:
		return &ConflictError{SKU: sku}
	case errors.Is(err, orm.ErrNotFound):
		return nil
	default:
		return storeErr("check sku", err)
	}
}

// insertBarcodes stores the barcode set of a product in the order given.
// Duplicates within the set are left to the primary key to reject.
func insertBarcodes(ctx context.Context, tx repositories.Store, id uint, b *Barcodes) error {
	if !b.Valid {
		return invalid("barcodes must be a list of strings")
	}
	rows := make([]models.Barcode, len(b.Codes))
	for i, code := range b.Codes {
		rows[i] = models.Barcode{ProductID: id, Barcode: code, Position: uint(i)}
	}
	if err := tx.Barcodes().BulkInsert(ctx, rows); err != nil {
		return storeErr("insert barcodes", err)
	}
	return nil
}

func byID(id uint) orm.Query {
	return orm.NewQuery().Where("product_id", id)
}

// parseID accepts only positive decimal identifiers; anything else cannot
// name a stored product.
func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func parsePrice(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, invalid("price %q is not a number", raw)
	}
	return price.Round(2), nil
}

func cacheKey(id uint, fields string) string {
	return fmt.Sprintf("product:%d:%s", id, fields)
}
