// Package compose turns a slice of the catalog into layout ready output:
// filtered and ordered item lists, two column layouts and badge counts.
//
// Every function here is pure and safe to call concurrently.
package compose

import (
	"slices"
	"time"

	"newsdesk/models"
	"newsdesk/query"

	"github.com/samber/lo"
)

// FilterCatalog keeps the items matching criteria, in their original order.
// Empty criteria return items itself, not a copy.
func FilterCatalog(items []models.Item, criteria models.CriteriaSet) []models.Item {
	matcher := query.Compile(criteria)
	if matcher.Unconstrained() {
		return items
	}

	return lo.Filter(items, func(item models.Item, _ int) bool {
		return matcher.Match(item)
	})
}

// SplitTwoColumn deals items into two columns by position: even indexes go
// left and odd indexes go right.
func SplitTwoColumn(items []models.Item) (left, right []models.Item) {
	left = make([]models.Item, 0, (len(items)+1)/2)
	right = make([]models.Item, 0, len(items)/2)

	for i, item := range items {
		if i%2 == 0 {
			left = append(left, item)
		} else {
			right = append(right, item)
		}
	}

	return left, right
}

// CountSince counts items matching criteria that were published at or after
// reference. Items without a publish date are never counted.
func CountSince(items []models.Item, criteria models.CriteriaSet, reference time.Time) int {
	matcher := query.Compile(criteria)

	return lo.CountBy(items, func(item models.Item) bool {
		return item.PublishedSince(reference) && matcher.Match(item)
	})
}

// StartOfDay returns midnight of t's day in t's location
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// SortByRecency returns a copy of items ordered newest first. Undated items
// go last, and ties keep their original order.
func SortByRecency(items []models.Item) []models.Item {
	sorted := append([]models.Item{}, items...)

	slices.SortStableFunc(sorted, func(a, b models.Item) int {
		switch {
		case a.PublishedAt == nil && b.PublishedAt == nil:
			return 0
		case a.PublishedAt == nil:
			return 1
		case b.PublishedAt == nil:
			return -1
		}
		return b.PublishedAt.Compare(*a.PublishedAt)
	})

	return sorted
}

// Dedupe drops every item whose id was already seen earlier in the slice
func Dedupe(items []models.Item) []models.Item {
	return lo.UniqBy(items, func(item models.Item) string {
		return item.ID
	})
}

// Featured returns the most recently published item
func Featured(items []models.Item) (models.Item, bool) {
	sorted := SortByRecency(items)
	if len(sorted) == 0 || sorted[0].PublishedAt == nil {
		return models.Item{}, false
	}
	return sorted[0], true
}
