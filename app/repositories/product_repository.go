package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/pkg/database"
	"github.com/shashiranjanraj/catalog/pkg/orm"
)

// Store groups the repositories the product service works with. Inside
// Transaction every repository is bound to the same transaction handle.
type Store interface {
	Products() *orm.Repo[models.Product]
	Barcodes() *orm.Repo[models.Barcode]
	Transaction(ctx context.Context, fn func(Store) error) error
	Ping(ctx context.Context) error
}

type gormStore struct {
	db       *gorm.DB
	products *orm.Repo[models.Product]
	barcodes *orm.Repo[models.Barcode]
}

// NewStore returns a Store backed by db.
func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:       db,
		products: orm.NewRepo[models.Product](db),
		barcodes: orm.NewRepo[models.Barcode](db),
	}
}

func (s *gormStore) Products() *orm.Repo[models.Product] { return s.products }
func (s *gormStore) Barcodes() *orm.Repo[models.Barcode] { return s.barcodes }

// Transaction commits when fn returns nil and rolls back otherwise.
func (s *gormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return orm.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *gormStore) Ping(ctx context.Context) error {
	return database.Ping(ctx, s.db)
}
