package query

import (
	"newsdesk/models"
)

// Matcher is a compiled criteria set. Only constrained dimensions carry a
// filter, and an item must pass all of them.
type Matcher struct {
	filters []FilterStrategy
}

// Compile prepares the criteria for repeated matching
func Compile(criteria models.CriteriaSet) *Matcher {
	m := &Matcher{filters: make([]FilterStrategy, 0, 3)}
	if len(criteria.Tags) > 0 {
		m.AddFilter(NewTagFilter(criteria.Tags))
	}
	if len(criteria.Journalists) > 0 {
		m.AddFilter(NewJournalistFilter(criteria.Journalists))
	}
	if len(criteria.Sources) > 0 {
		m.AddFilter(NewSourceFilter(criteria.Sources))
	}
	return m
}

func (m *Matcher) AddFilter(filter FilterStrategy) {
	m.filters = append(m.filters, filter)
}

// Unconstrained is true when the matcher accepts every item
func (m *Matcher) Unconstrained() bool {
	return len(m.filters) == 0
}

func (m *Matcher) Match(item models.Item) bool {
	for _, filter := range m.filters {
		if !filter.Match(item) {
			return false
		}
	}
	return true
}

// Matches reports whether the item satisfies the criteria. Dimensions are
// combined with AND, values within a dimension with OR.
func Matches(item models.Item, criteria models.CriteriaSet) bool {
	return Compile(criteria).Match(item)
}

// MatchesText reports whether a search text selects the target. Empty text
// selects everything.
func MatchesText(target SearchTarget, text string) bool {
	if Fold(text) == "" {
		return true
	}
	for _, term := range target.SearchTerms() {
		if ContainsFold(term, text) {
			return true
		}
	}
	return false
}

var _ FilterStrategy = (*Matcher)(nil)
