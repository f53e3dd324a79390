package feeds

import (
	"slices"

	"newsdesk/models"
	"newsdesk/query"

	"github.com/samber/lo"
	"golang.org/x/text/language"
)

// SortFeeds orders feeds in place. The sort is stable, so ties keep the
// order the feeds were given in.
func SortFeeds(feeds []models.Feed, order SortOrder, locale language.Tag) {
	switch order {
	case SortAlphabetical:
		collator := query.NewCollator(locale)
		slices.SortStableFunc(feeds, func(a, b models.Feed) int {
			return collator.CompareString(a.Name, b.Name)
		})
	case SortCreator:
		slices.SortStableFunc(feeds, func(a, b models.Feed) int {
			switch {
			case a.IsDefault == b.IsDefault:
				return 0
			case a.IsDefault:
				return -1
			default:
				return 1
			}
		})
	default:
		slices.SortStableFunc(feeds, func(a, b models.Feed) int {
			return b.UpdatedAt.Compare(a.UpdatedAt)
		})
	}
}

// PinnedFirst moves pinned feeds ahead of unpinned ones, keeping the order
// within each group
func PinnedFirst(feeds []models.Feed) []models.Feed {
	pinned := lo.Filter(feeds, func(f models.Feed, _ int) bool { return f.IsPinned })
	unpinned := lo.Filter(feeds, func(f models.Feed, _ int) bool { return !f.IsPinned })

	return append(pinned, unpinned...)
}
