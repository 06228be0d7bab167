package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/app/repositories"
	"github.com/shashiranjanraj/catalog/pkg/cache"
	"github.com/shashiranjanraj/catalog/pkg/database"
)

func newService(t *testing.T, c cache.Store) *ProductService {
	t.Helper()
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, models.All()...))
	t.Cleanup(func() { _ = database.Close(db) })
	return NewProductService(repositories.NewStore(db), c, time.Minute)
}

func strPtr(s string) *string { return &s }

func codes(list ...string) *Barcodes { return &Barcodes{Codes: list, Valid: true} }

func mustCreate(t *testing.T, svc *ProductService, in ProductInput) uint {
	t.Helper()
	id, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	return id
}

func TestCreateAndRetrieveOne(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	id := mustCreate(t, svc, ProductInput{
		Title:       "Espresso beans",
		SKU:         "ESP-1",
		Description: strPtr("dark roast"),
		Price:       "12.5",
		Barcodes:    codes("400", "100", "300"),
	})
	assert.NotZero(t, id)

	rec, err := svc.RetrieveOne(ctx, fmt.Sprint(id), "")
	require.NoError(t, err)
	assert.Equal(t, id, rec["productId"])
	assert.Equal(t, "Espresso beans", rec["title"])
	assert.Equal(t, "ESP-1", rec["sku"])
	assert.Equal(t, "12.50", rec["price"])
	assert.Equal(t, []string{"400", "100", "300"}, rec["barcodes"])
	assert.IsType(t, int64(0), rec["created"])
	assert.IsType(t, int64(0), rec["lastUpdated"])
}

func TestCreateValidation(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	for _, in := range []ProductInput{
		{SKU: "A"},
		{Title: "A"},
		{Title: "A", SKU: "A", Price: "cheap"},
		{Title: strings.Repeat("t", 33), SKU: "A"},
		{Title: "A", SKU: strings.Repeat("s", 33)},
	} {
		_, err := svc.Create(ctx, in)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	}
}

func TestCreateDuplicateSKU(t *testing.T) {
	svc := newService(t, nil)
	mustCreate(t, svc, ProductInput{Title: "One", SKU: "DUP"})

	_, err := svc.Create(context.Background(), ProductInput{Title: "Two", SKU: "DUP"})
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "SKU 'DUP' already exists", cerr.Message())
}

func TestCreateWithInvalidBarcodesLeavesNothingBehind(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, ProductInput{Title: "One", SKU: "X", Barcodes: &Barcodes{}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	list, err := svc.RetrieveMany(ctx, ListParams{})
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)
}

func TestCreateWithDuplicateBarcodeIsStoreError(t *testing.T) {
	svc := newService(t, nil)

	_, err := svc.Create(context.Background(), ProductInput{Title: "One", SKU: "X", Barcodes: codes("1", "1")})
	var serr *StoreError
	assert.ErrorAs(t, err, &serr)
}

func TestRetrieveOneProjection(t *testing.T) {
	svc := newService(t, nil)
	id := mustCreate(t, svc, ProductInput{Title: "Tea", SKU: "T-1", Barcodes: codes("9")})

	rec, err := svc.RetrieveOne(context.Background(), fmt.Sprint(id), "title,nope")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Tea"}, rec)

	rec, err = svc.RetrieveOne(context.Background(), fmt.Sprint(id), "sku,barcodes")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"sku": "T-1", "barcodes": []string{"9"}}, rec)
}

func TestRetrieveOneNotFound(t *testing.T) {
	svc := newService(t, nil)

	for _, id := range []string{"42", "abc", "0"} {
		_, err := svc.RetrieveOne(context.Background(), id, "")
		var nerr *NotFoundError
		require.ErrorAs(t, err, &nerr)
		assert.Equal(t, fmt.Sprintf("Can't find product (%s)", id), nerr.Message())
	}
}

func TestRetrieveManyPagingAndTotal(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		mustCreate(t, svc, ProductInput{Title: fmt.Sprintf("P%d", i), SKU: fmt.Sprintf("S%d", i)})
	}

	list, err := svc.RetrieveMany(ctx, ListParams{Start: "2", Num: "2", Fields: "title"})
	require.NoError(t, err)
	assert.EqualValues(t, 5, list.TotalCount)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "P2", list.Items[0]["title"])
	assert.Equal(t, "P3", list.Items[1]["title"])

	list, err = svc.RetrieveMany(ctx, ListParams{SKU: "S4"})
	require.NoError(t, err)
	assert.EqualValues(t, 5, list.TotalCount)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "P4", list.Items[0]["title"])
	assert.Equal(t, []string{}, list.Items[0]["barcodes"])

	list, err = svc.RetrieveMany(ctx, ListParams{SKU: "none"})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.NotNil(t, list.Items)
}

func TestRetrieveManyDefaultsToTenItems(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	for i := 1; i <= 12; i++ {
		mustCreate(t, svc, ProductInput{Title: fmt.Sprintf("P%d", i), SKU: fmt.Sprintf("S%d", i)})
	}

	list, err := svc.RetrieveMany(ctx, ListParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 12, list.TotalCount)
	require.Len(t, list.Items, 10)
	assert.Equal(t, "P1", list.Items[0]["title"])
	assert.Equal(t, "P10", list.Items[9]["title"])

	list, err = svc.RetrieveMany(ctx, ListParams{Num: "0"})
	require.NoError(t, err)
	assert.EqualValues(t, 12, list.TotalCount)
	assert.Empty(t, list.Items)
}

func TestRetrieveManyProjectsExactKeys(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	a := mustCreate(t, svc, ProductInput{Title: "A", SKU: "A", Price: "1.50", Barcodes: codes("1")})
	b := mustCreate(t, svc, ProductInput{Title: "B", SKU: "B", Description: strPtr("bee")})

	list, err := svc.RetrieveMany(ctx, ListParams{Fields: "productId,title"})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, map[string]any{"productId": a, "title": "A"}, list.Items[0])
	assert.Equal(t, map[string]any{"productId": b, "title": "B"}, list.Items[1])
}

func TestRetrieveManyBarcode(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	a := mustCreate(t, svc, ProductInput{Title: "A", SKU: "A", Barcodes: codes("shared", "a1")})
	b := mustCreate(t, svc, ProductInput{Title: "B", SKU: "B", Barcodes: codes("b1", "shared")})
	mustCreate(t, svc, ProductInput{Title: "C", SKU: "C"})

	list, err := svc.RetrieveMany(ctx, ListParams{Barcode: "shared", Fields: "productId,barcodes"})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, a, list.Items[0]["productId"])
	assert.Equal(t, []string{"shared", "a1"}, list.Items[0]["barcodes"])
	assert.Equal(t, b, list.Items[1]["productId"])
	assert.Equal(t, []string{"b1", "shared"}, list.Items[1]["barcodes"])

	// sku and barcode together: the sku match first, barcode owners after it
	// without repeating it.
	list, err = svc.RetrieveMany(ctx, ListParams{SKU: "B", Barcode: "shared", Fields: "sku"})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "B", list.Items[0]["sku"])
	assert.Equal(t, "A", list.Items[1]["sku"])
}

func TestRetrieveManyRejectsBadNum(t *testing.T) {
	svc := newService(t, nil)

	_, err := svc.RetrieveMany(context.Background(), ListParams{Num: "many"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpdate(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	id := mustCreate(t, svc, ProductInput{Title: "Old", SKU: "U-1", Price: "1.00", Barcodes: codes("x")})
	key := fmt.Sprint(id)

	ok, err := svc.Update(ctx, key, ProductInput{Title: "New", Price: "2.25", Barcodes: codes("y", "z")})
	require.NoError(t, err)
	assert.True(t, ok)

	rec, err := svc.RetrieveOne(ctx, key, "")
	require.NoError(t, err)
	assert.Equal(t, "New", rec["title"])
	assert.Equal(t, "U-1", rec["sku"])
	assert.Equal(t, "2.25", rec["price"])
	assert.Equal(t, []string{"y", "z"}, rec["barcodes"])

	// falsy values are ignored, barcodes untouched when absent
	ok, err = svc.Update(ctx, key, ProductInput{Description: strPtr(""), Price: "0"})
	require.NoError(t, err)
	assert.False(t, ok)

	rec, err = svc.RetrieveOne(ctx, key, "")
	require.NoError(t, err)
	assert.Equal(t, "2.25", rec["price"])
	assert.Nil(t, rec["description"])
	assert.Equal(t, []string{"y", "z"}, rec["barcodes"])
}

func TestUpdateBarcodesOnlyLeavesRowUnmodified(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	id := mustCreate(t, svc, ProductInput{Title: "T", SKU: "S", Barcodes: codes("x")})
	key := fmt.Sprint(id)

	before, err := svc.RetrieveOne(ctx, key, "lastUpdated")
	require.NoError(t, err)

	ok, err := svc.Update(ctx, key, ProductInput{Barcodes: codes("y")})
	require.NoError(t, err)
	assert.False(t, ok)

	rec, err := svc.RetrieveOne(ctx, key, "title,barcodes,lastUpdated")
	require.NoError(t, err)
	assert.Equal(t, "T", rec["title"])
	assert.Equal(t, []string{"y"}, rec["barcodes"])
	assert.Equal(t, before["lastUpdated"], rec["lastUpdated"])

	ok, err = svc.Update(ctx, key, ProductInput{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateClearsBarcodesWithEmptyList(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	id := mustCreate(t, svc, ProductInput{Title: "T", SKU: "S", Barcodes: codes("x")})

	_, err := svc.Update(ctx, fmt.Sprint(id), ProductInput{Barcodes: codes()})
	require.NoError(t, err)

	rec, err := svc.RetrieveOne(ctx, fmt.Sprint(id), "barcodes")
	require.NoError(t, err)
	assert.Equal(t, []string{}, rec["barcodes"])
}

func TestUpdateErrors(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	mustCreate(t, svc, ProductInput{Title: "A", SKU: "A"})
	b := mustCreate(t, svc, ProductInput{Title: "B", SKU: "B", Barcodes: codes("keep")})
	key := fmt.Sprint(b)

	_, err := svc.Update(ctx, "999", ProductInput{Title: "x"})
	var nerr *NotFoundError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "Can't find product (999)", nerr.Message())

	_, err = svc.Update(ctx, key, ProductInput{SKU: "A"})
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)

	ok, err := svc.Update(ctx, key, ProductInput{SKU: "B"})
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Update(ctx, key, ProductInput{Title: "changed", Barcodes: &Barcodes{}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.Update(ctx, key, ProductInput{Title: strings.Repeat("t", 33)})
	require.ErrorAs(t, err, &verr)

	rec, err := svc.RetrieveOne(ctx, key, "title,barcodes")
	require.NoError(t, err)
	assert.Equal(t, "B", rec["title"])
	assert.Equal(t, []string{"keep"}, rec["barcodes"])
}

func TestDelete(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	id := mustCreate(t, svc, ProductInput{Title: "T", SKU: "S", Barcodes: codes("x")})
	key := fmt.Sprint(id)

	require.NoError(t, svc.Delete(ctx, key))

	_, err := svc.RetrieveOne(ctx, key, "")
	var nerr *NotFoundError
	require.ErrorAs(t, err, &nerr)

	err = svc.Delete(ctx, key)
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, fmt.Sprintf("Product with productId (%d) does not exist", id), nerr.Message())

	// barcode rows went with the product
	list, err := svc.RetrieveMany(ctx, ListParams{Barcode: "x"})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestRetrieveOneIsCachedUntilUpdate(t *testing.T) {
	mem := cache.NewMemory(time.Hour)
	defer mem.Close()
	svc := newService(t, mem)
	ctx := context.Background()
	id := mustCreate(t, svc, ProductInput{Title: "Before", SKU: "C"})
	key := fmt.Sprint(id)

	rec, err := svc.RetrieveOne(ctx, key, "title")
	require.NoError(t, err)
	assert.Equal(t, "Before", rec["title"])
	assert.Equal(t, 1, mem.Len())

	rec, err = svc.RetrieveOne(ctx, key, "title")
	require.NoError(t, err)
	assert.Equal(t, "Before", rec["title"])

	_, err = svc.Update(ctx, key, ProductInput{Title: "After"})
	require.NoError(t, err)
	assert.Zero(t, mem.Len())

	rec, err = svc.RetrieveOne(ctx, key, "title")
	require.NoError(t, err)
	assert.Equal(t, "After", rec["title"])

	require.NoError(t, svc.Delete(ctx, key))
	assert.Zero(t, mem.Len())
}

// staleOnSet runs hook once, just before the first Set reaches the store.
type staleOnSet struct {
	cache.Store
	hook func()
}

func (c *staleOnSet) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if hook := c.hook; hook != nil {
		c.hook = nil
		hook()
	}
	return c.Store.Set(ctx, key, v, ttl)
}

func TestRetrieveOneDoesNotCacheAcrossConcurrentUpdate(t *testing.T) {
	mem := cache.NewMemory(time.Hour)
	defer mem.Close()
	racing := &staleOnSet{Store: mem}
	svc := newService(t, racing)
	ctx := context.Background()
	id := mustCreate(t, svc, ProductInput{Title: "Before", SKU: "R"})
	key := fmt.Sprint(id)

	// the update commits after the read but before its record is cached
	racing.hook = func() {
		_, err := svc.Update(ctx, key, ProductInput{Title: "After"})
		require.NoError(t, err)
	}

	rec, err := svc.RetrieveOne(ctx, key, "title")
	require.NoError(t, err)
	assert.Equal(t, "Before", rec["title"])
	assert.Zero(t, mem.Len())

	rec, err = svc.RetrieveOne(ctx, key, "title")
	require.NoError(t, err)
	assert.Equal(t, "After", rec["title"])
}
