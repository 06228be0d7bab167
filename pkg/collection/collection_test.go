package collection_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/catalog/pkg/collection"
)

type row struct {
	id   int
	code string
}

func TestMap(t *testing.T) {
	got := collection.Map([]int{1, 2, 3}, strconv.Itoa)
	assert.Equal(t, []string{"1", "2", "3"}, got)
	assert.Empty(t, collection.Map([]int(nil), strconv.Itoa))
}

func TestFilter(t *testing.T) {
	even := func(n int) bool { return n%2 == 0 }
	assert.Equal(t, []int{2, 4}, collection.Filter([]int{1, 2, 3, 4}, even))
	assert.Nil(t, collection.Filter([]int{1, 3}, even))
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, collection.Unique([]string{"b", "a", "b", "c", "a"}))
}

func TestUniqueBy_FirstWins(t *testing.T) {
	rows := []row{{1, "x"}, {2, "y"}, {1, "z"}}
	got := collection.UniqueBy(rows, func(r row) int { return r.id })
	assert.Equal(t, []row{{1, "x"}, {2, "y"}}, got)
}

func TestGroupBy(t *testing.T) {
	rows := []row{{1, "a"}, {2, "b"}, {1, "c"}}
	got := collection.GroupBy(rows,
		func(r row) int { return r.id },
		func(r row) string { return r.code })
	assert.Equal(t, map[int][]string{1: {"a", "c"}, 2: {"b"}}, got)
}
