package compose

import (
	"newsdesk/models"

	"github.com/samber/lo"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Paginate returns up to limit items following the item whose id is cursor.
// An empty or unknown cursor starts from the beginning. The returned cursor
// is nil when there are no more items.
func Paginate(items []models.Item, cursor string, limit int) models.FeedPage {
	if limit < 1 || limit > MaxPageSize {
		limit = DefaultPageSize
	}

	start := 0
	if cursor != "" {
		if _, i, ok := lo.FindIndexOf(items, func(item models.Item) bool { return item.ID == cursor }); ok {
			start = i + 1
		}
	}

	// Take one extra item to find out whether there is a next page
	end := min(start+limit+1, len(items))
	page := append([]models.Item{}, items[start:end]...)

	var nextCursor *string
	if len(page) > limit {
		page = page[:limit]
		next := page[len(page)-1].ID
		nextCursor = &next
	}

	return models.FeedPage{
		Items:  page,
		Cursor: nextCursor,
	}
}
