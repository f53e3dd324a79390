package compose_test

import (
	"fmt"
	"testing"
	"time"

	"newsdesk/compose"
	"newsdesk/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(value string) *time.Time {
	t, err := time.Parse("2006-01-02T15:04", value)
	if err != nil {
		panic(err)
	}
	return &t
}

func ids(items []models.Item) []string {
	return lo.Map(items, func(item models.Item, _ int) string { return item.ID })
}

func itemsOf(n int) []models.Item {
	items := make([]models.Item, n)
	for i := range items {
		items[i] = models.Item{ID: fmt.Sprintf("item-%d", i)}
	}
	return items
}

func TestFilterCatalogByTag(t *testing.T) {
	items := []models.Item{
		{ID: "1", Tags: []string{"A"}},
		{ID: "2", Tags: []string{"B"}},
		{ID: "3", Tags: []string{"A", "B"}},
	}

	filtered := compose.FilterCatalog(items, models.CriteriaSet{Tags: []string{"A"}})

	assert.Equal(t, []string{"1", "3"}, ids(filtered))
}

func TestFilterCatalogEmptyCriteriaIsIdentity(t *testing.T) {
	items := []models.Item{
		{ID: "1", Tags: []string{"A"}},
		{ID: "2"},
	}

	filtered := compose.FilterCatalog(items, models.CriteriaSet{})

	require.Len(t, filtered, len(items))
	assert.Same(t, &items[0], &filtered[0])
	assert.Equal(t, items, filtered)
}

func TestFilterCatalogEmptyInput(t *testing.T) {
	filtered := compose.FilterCatalog(nil, models.CriteriaSet{Tags: []string{"A"}})

	assert.Empty(t, filtered)
}

func TestSplitTwoColumn(t *testing.T) {
	tests := []struct {
		name  string
		items []models.Item
		left  []string
		right []string
	}{
		{
			name:  "empty",
			items: nil,
			left:  []string{},
			right: []string{},
		},
		{
			name:  "single",
			items: itemsOf(1),
			left:  []string{"item-0"},
			right: []string{},
		},
		{
			name:  "odd count",
			items: itemsOf(5),
			left:  []string{"item-0", "item-2", "item-4"},
			right: []string{"item-1", "item-3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right := compose.SplitTwoColumn(tt.items)
			assert.Equal(t, tt.left, ids(left))
			assert.Equal(t, tt.right, ids(right))
		})
	}
}

func TestCountSinceScenario(t *testing.T) {
	criteria := models.CriteriaSet{Sources: []string{"Wire"}}
	items := []models.Item{
		{ID: "today", Source: "Wire", PublishedAt: at("2026-01-15T08:00")},
		{ID: "yesterday", Source: "Wire", PublishedAt: at("2026-01-14T23:00")},
		{ID: "undated", Source: "Wire"},
		{ID: "other", Source: "Other", PublishedAt: at("2026-01-15T09:00")},
	}

	reference := compose.StartOfDay(*at("2026-01-15T17:30"))

	assert.Equal(t, *at("2026-01-15T00:00"), reference)
	assert.Equal(t, 1, compose.CountSince(items, criteria, reference))
}

func TestCountSinceIncludesReferenceInstant(t *testing.T) {
	items := []models.Item{{ID: "1", PublishedAt: at("2026-01-15T00:00")}}

	assert.Equal(t, 1, compose.CountSince(items, models.CriteriaSet{}, *at("2026-01-15T00:00")))
}

func TestSortByRecency(t *testing.T) {
	items := []models.Item{
		{ID: "undated-1"},
		{ID: "old", PublishedAt: at("2026-01-01T10:00")},
		{ID: "new", PublishedAt: at("2026-01-03T10:00")},
		{ID: "undated-2"},
		{ID: "mid", PublishedAt: at("2026-01-02T10:00")},
	}

	sorted := compose.SortByRecency(items)

	assert.Equal(t, []string{"new", "mid", "old", "undated-1", "undated-2"}, ids(sorted))
	assert.Equal(t, "undated-1", items[0].ID, "input must not be reordered")
}

func TestDedupe(t *testing.T) {
	items := []models.Item{
		{ID: "a", Title: "first"},
		{ID: "b"},
		{ID: "a", Title: "second"},
	}

	deduped := compose.Dedupe(items)

	assert.Equal(t, []string{"a", "b"}, ids(deduped))
	assert.Equal(t, "first", deduped[0].Title)
}

func TestFeatured(t *testing.T) {
	_, ok := compose.Featured([]models.Item{{ID: "undated"}})
	assert.False(t, ok)

	featured, ok := compose.Featured([]models.Item{
		{ID: "old", PublishedAt: at("2026-01-01T10:00")},
		{ID: "new", PublishedAt: at("2026-01-03T10:00")},
	})
	require.True(t, ok)
	assert.Equal(t, "new", featured.ID)
}

func TestPaginate(t *testing.T) {
	items := itemsOf(5)

	page := compose.Paginate(items, "", 2)
	assert.Equal(t, []string{"item-0", "item-1"}, ids(page.Items))
	require.NotNil(t, page.Cursor)
	assert.Equal(t, "item-1", *page.Cursor)

	page = compose.Paginate(items, *page.Cursor, 2)
	assert.Equal(t, []string{"item-2", "item-3"}, ids(page.Items))
	require.NotNil(t, page.Cursor)

	page = compose.Paginate(items, *page.Cursor, 2)
	assert.Equal(t, []string{"item-4"}, ids(page.Items))
	assert.Nil(t, page.Cursor)

	page = compose.Paginate(items, "unknown", 0)
	assert.Len(t, page.Items, 5)
	assert.Nil(t, page.Cursor)

	page = compose.Paginate(items, "item-4", 2)
	assert.Empty(t, page.Items)
	assert.Nil(t, page.Cursor)
}

func genItems() gopter.Gen {
	return gen.SliceOf(gen.Int64Range(-1, 100)).Map(func(offsets []int64) []models.Item {
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		items := make([]models.Item, len(offsets))
		for i, offset := range offsets {
			items[i] = models.Item{ID: fmt.Sprintf("item-%d", i), Source: "Wire"}
			if offset >= 0 {
				published := base.Add(time.Duration(offset) * time.Hour)
				items[i].PublishedAt = &published
			}
		}
		return items
	})
}

func TestCompositionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("two column split interleaves by position", prop.ForAll(
		func(items []models.Item) bool {
			left, right := compose.SplitTwoColumn(items)
			if len(left)+len(right) != len(items) {
				return false
			}
			for k := range left {
				if left[k].ID != items[2*k].ID {
					return false
				}
			}
			for k := range right {
				if right[k].ID != items[2*k+1].ID {
					return false
				}
			}
			return true
		},
		genItems(),
	))

	properties.Property("count since never grows as the reference moves forward", prop.ForAll(
		func(items []models.Item, a, b int64) bool {
			base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			earlier := base.Add(time.Duration(min(a, b)) * time.Hour)
			later := base.Add(time.Duration(max(a, b)) * time.Hour)
			criteria := models.CriteriaSet{Sources: []string{"wire"}}
			return compose.CountSince(items, criteria, later) <= compose.CountSince(items, criteria, earlier)
		},
		genItems(),
		gen.Int64Range(-10, 110),
		gen.Int64Range(-10, 110),
	))

	properties.Property("empty criteria returns the same items", prop.ForAll(
		func(items []models.Item) bool {
			filtered := compose.FilterCatalog(items, models.CriteriaSet{})
			if len(filtered) != len(items) {
				return false
			}
			return len(items) == 0 || &filtered[0] == &items[0]
		},
		genItems(),
	))

	properties.TestingRun(t)
}
