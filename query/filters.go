package query

import (
	"newsdesk/models"
)

// TagFilter keeps items carrying at least one of the tags. Tags are canonical
// tokens and compare exactly.
type TagFilter struct {
	tags map[string]struct{}
}

func NewTagFilter(tags []string) *TagFilter {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return &TagFilter{tags: set}
}

func (f *TagFilter) Match(item models.Item) bool {
	for _, tag := range item.Tags {
		if _, ok := f.tags[tag]; ok {
			return true
		}
	}
	return false
}

// JournalistFilter keeps items written by one of the journalists
type JournalistFilter struct {
	names map[string]struct{}
}

func NewJournalistFilter(journalists []string) *JournalistFilter {
	return &JournalistFilter{names: foldSet(journalists)}
}

func (f *JournalistFilter) Match(item models.Item) bool {
	_, ok := f.names[Fold(item.Author)]
	return ok
}

// SourceFilter keeps items published by one of the sources
type SourceFilter struct {
	names map[string]struct{}
}

func NewSourceFilter(sources []string) *SourceFilter {
	return &SourceFilter{names: foldSet(sources)}
}

func (f *SourceFilter) Match(item models.Item) bool {
	_, ok := f.names[Fold(item.Source)]
	return ok
}

func foldSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[Fold(v)] = struct{}{}
	}
	return set
}

var _ FilterStrategy = (*TagFilter)(nil)
var _ FilterStrategy = (*JournalistFilter)(nil)
var _ FilterStrategy = (*SourceFilter)(nil)
