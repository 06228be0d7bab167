package orm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/catalog/pkg/metrics"
)

type tabler interface {
	TableName() string
}

// Repo runs Queries against the table of model T.
type Repo[T any] struct {
	db    *gorm.DB
	table string
}

// NewRepo binds a repository to db, which may be a transaction handle.
func NewRepo[T any](db *gorm.DB) *Repo[T] {
	var zero T
	table := fmt.Sprintf("%T", zero)
	if t, ok := any(&zero).(tabler); ok {
		table = t.TableName()
	}
	return &Repo[T]{db: db, table: table}
}

func (r *Repo[T]) session(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(new(T))
}

// FindOne returns the first row matching q, or ErrNotFound.
func (r *Repo[T]) FindOne(ctx context.Context, q Query) (T, error) {
	defer metrics.ObserveDBQuery("select", r.table, time.Now())

	var out T
	if q.empty() {
		return out, ErrNotFound
	}

	res := q.apply(r.session(ctx)).Limit(1).Find(&out)
	if res.Error != nil {
		return out, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return out, ErrNotFound
	}
	return out, nil
}

// FindMany returns every row matching q in the query's order.
func (r *Repo[T]) FindMany(ctx context.Context, q Query) ([]T, error) {
	defer metrics.ObserveDBQuery("select", r.table, time.Now())

	out := []T{}
	if q.empty() {
		return out, nil
	}
	if err := q.apply(r.session(ctx)).Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// Count ignores the column list and paging of q.
func (r *Repo[T]) Count(ctx context.Context, q Query) (int64, error) {
	defer metrics.ObserveDBQuery("count", r.table, time.Now())

	if q.empty() {
		return 0, nil
	}
	var n int64
	if err := q.scope(r.session(ctx)).Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

// Insert creates v and fills in generated columns.
func (r *Repo[T]) Insert(ctx context.Context, v *T) error {
	defer metrics.ObserveDBQuery("insert", r.table, time.Now())
	return translate(r.db.WithContext(ctx).Create(v).Error)
}

// BulkInsert creates every row of vs in a single statement.
func (r *Repo[T]) BulkInsert(ctx context.Context, vs []T) error {
	if len(vs) == 0 {
		return nil
	}
	defer metrics.ObserveDBQuery("insert", r.table, time.Now())
	return translate(r.db.WithContext(ctx).Create(&vs).Error)
}

// Update sets columns on every row matching q and returns the number of
// rows the store reports as modified.
func (r *Repo[T]) Update(ctx context.Context, q Query, columns map[string]any) (int64, error) {
	defer metrics.ObserveDBQuery("update", r.table, time.Now())

	if q.empty() || len(columns) == 0 {
		return 0, nil
	}
	res := q.scope(r.session(ctx)).Updates(columns)
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes every row matching q. A Query without criteria is refused
// so a missing predicate cannot wipe the table.
func (r *Repo[T]) Delete(ctx context.Context, q Query) (int64, error) {
	defer metrics.ObserveDBQuery("delete", r.table, time.Now())

	if len(q.criteria) == 0 {
		return 0, gorm.ErrMissingWhereClause
	}
	if q.empty() {
		return 0, nil
	}
	res := q.scope(r.db.WithContext(ctx)).Delete(new(T))
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return res.RowsAffected, nil
}

// Transaction runs fn inside a database transaction. fn must only use the
// handle it is given; the transaction commits when fn returns nil and rolls
// back otherwise.
func Transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// translate maps driver-specific failures onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err.Error()) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}

func isDuplicate(msg string) bool {
	msg = strings.ToLower(msg)
	for _, marker := range []string{
		"unique constraint failed",    // sqlite
		"duplicate entry",             // mysql
		"duplicate key value",         // postgres
		"cannot insert duplicate key", // sqlserver
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
