package pathtree

import (
	"testing"

	"dataimport/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestFilterMatch(t *testing.T) {
	cases := []struct {
		name   string
		filter Filter
		path   string
		want   bool
	}{
		{"zero value", Filter{}, "a/b.csv", true},
		{"all", Filter{Type: TypeAll}, "a/b.json", true},
		{"type hit", Filter{Type: "csv"}, "a/B.CSV", true},
		{"type miss", Filter{Type: "csv"}, "a/b.json", false},
		{"type is a suffix", Filter{Type: "csv"}, "a/csv/readme.txt", false},
		{"query substring", Filter{Query: "sales"}, "reports/Sales_2024.csv", true},
		{"query is trimmed", Filter{Query: "  sales "}, "reports/sales.csv", true},
		{"query miss", Filter{Query: "orders"}, "reports/sales.csv", false},
		{"both", Filter{Type: "json", Query: "rep"}, "reports/x.json", true},
		{"both type miss", Filter{Type: "json", Query: "rep"}, "reports/x.csv", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Match(tc.path))
		})
	}
}

func TestFilterActive(t *testing.T) {
	assert.False(t, Filter{}.Active())
	assert.False(t, Filter{Type: TypeAll, Query: "  "}.Active())
	assert.True(t, Filter{Type: "csv"}.Active())
	assert.True(t, Filter{Query: "x"}.Active())
}

func TestFilterApplyKeepsOrder(t *testing.T) {
	items := model.ItemsFromPaths([]string{"b.csv", "a.json", "c.csv"})

	got := Filter{Type: "csv"}.Apply(items)

	assert.Equal(t, []string{"b.csv", "c.csv"}, model.Paths(got))
	assert.Len(t, items, 3, "input is not modified")
}

func TestNextType(t *testing.T) {
	assert.Equal(t, "csv", NextType(TypeAll))
	assert.Equal(t, TypeAll, NextType("txt"))
	assert.Equal(t, TypeAll, NextType("bogus"))
}
