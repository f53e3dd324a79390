package query

import (
	"newsdesk/models"
)

// FilterStrategy decides whether an item passes one dimension of a criteria set
type FilterStrategy interface {
	// Match reports whether the item satisfies the filter
	Match(item models.Item) bool
}

// SearchTarget is anything that can be found by free text search
type SearchTarget interface {
	SearchTerms() []string
}
