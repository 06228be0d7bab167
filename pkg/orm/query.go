// Package orm is a small criteria layer over GORM.
//
// Repositories describe what they want with a Query and let Repo turn it
// into SQL:
//
//	q := orm.NewQuery().Where("sku", sku).Not("product_id", id)
//	p, err := products.FindOne(ctx, q)
package orm

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned by FindOne when no row matches.
var ErrNotFound = errors.New("orm: record not found")

// ErrDuplicateKey is returned by writes that violate a unique or primary key.
var ErrDuplicateKey = errors.New("orm: duplicate key")

// Op is a comparison operator understood by Criteria.
type Op string

const (
	Eq Op = "="
	Ne Op = "<>"
	In Op = "IN"
)

// Criteria is a single column predicate. Criteria in a Query are ANDed.
type Criteria struct {
	Field  string
	Op     Op
	Value  any
	Values []any
}

// Query describes which rows and columns an operation touches. The zero
// value matches every row and selects every column.
type Query struct {
	criteria []Criteria
	columns  []string
	order    []string
	offset   int
	limit    int
	paged    bool
}

func NewQuery() Query { return Query{} }

func (q Query) with(c Criteria) Query {
	q.criteria = append(append([]Criteria(nil), q.criteria...), c)
	return q
}

// Where adds field = value.
func (q Query) Where(field string, value any) Query {
	return q.with(Criteria{Field: field, Op: Eq, Value: value})
}

// Not adds field <> value.
func (q Query) Not(field string, value any) Query {
	return q.with(Criteria{Field: field, Op: Ne, Value: value})
}

// WhereIn adds field IN (values...). An empty list matches nothing.
func WhereIn[V any](q Query, field string, values []V) Query {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return q.with(Criteria{Field: field, Op: In, Values: vs})
}

// Select restricts the returned columns.
func (q Query) Select(columns ...string) Query {
	q.columns = append([]string(nil), columns...)
	return q
}

func (q Query) OrderBy(columns ...string) Query {
	q.order = append(append([]string(nil), q.order...), columns...)
	return q
}

// Page skips offset rows and returns at most limit rows.
func (q Query) Page(offset, limit int) Query {
	q.offset, q.limit, q.paged = offset, limit, true
	return q
}

func (q Query) Criteria() []Criteria { return q.criteria }

// empty reports whether the query can be answered without touching the
// store, which is the case for an IN over an empty list.
func (q Query) empty() bool {
	for _, c := range q.criteria {
		if c.Op == In && len(c.Values) == 0 {
			return true
		}
	}
	return false
}

func (q Query) scope(db *gorm.DB) *gorm.DB {
	for _, c := range q.criteria {
		col := clause.Column{Name: c.Field}
		switch c.Op {
		case Ne:
			db = db.Where(clause.Neq{Column: col, Value: c.Value})
		case In:
			db = db.Where(clause.IN{Column: col, Values: c.Values})
		default:
			db = db.Where(clause.Eq{Column: col, Value: c.Value})
		}
	}
	return db
}

func (q Query) apply(db *gorm.DB) *gorm.DB {
	db = q.scope(db)
	if len(q.columns) > 0 {
		db = db.Select(q.columns)
	}
	for _, o := range q.order {
		db = db.Order(o)
	}
	if q.paged {
		db = db.Offset(q.offset).Limit(q.limit)
	}
	return db
}
