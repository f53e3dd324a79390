package models

import "time"

// Item is one piece of content in the catalog
type Item struct {
	ID          string     `json:"id" toml:"id"`
	Title       string     `json:"title" toml:"title"`
	Author      string     `json:"author" toml:"author"`
	Source      string     `json:"source" toml:"source"`
	Tags        []string   `json:"tags" toml:"tags"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" toml:"published_at"`
	Summary     string     `json:"summary,omitempty" toml:"summary"`
	URL         string     `json:"url,omitempty" toml:"url"`
	ImageURL    string     `json:"imageUrl,omitempty" toml:"image_url"`
}

// PublishedSince reports whether the item was published at or after ref.
// Items without a publish date are treated as infinitely old.
func (i Item) PublishedSince(ref time.Time) bool {
	return i.PublishedAt != nil && !i.PublishedAt.Before(ref)
}

// CriteriaSet restricts items by tag, journalist and source. An empty
// dimension places no constraint on the item.
type CriteriaSet struct {
	Tags        []string `json:"tags" toml:"tags"`
	Journalists []string `json:"journalists" toml:"journalists"`
	Sources     []string `json:"sources" toml:"sources"`
}

// IsEmpty is true when no dimension is constrained
func (c CriteriaSet) IsEmpty() bool {
	return len(c.Tags) == 0 && len(c.Journalists) == 0 && len(c.Sources) == 0
}

// Terms returns every value across all dimensions, sources first
func (c CriteriaSet) Terms() []string {
	terms := make([]string, 0, len(c.Sources)+len(c.Journalists)+len(c.Tags))
	terms = append(terms, c.Sources...)
	terms = append(terms, c.Journalists...)
	return append(terms, c.Tags...)
}

// Clone returns a copy that shares no backing arrays with c
func (c CriteriaSet) Clone() CriteriaSet {
	return CriteriaSet{
		Tags:        append([]string(nil), c.Tags...),
		Journalists: append([]string(nil), c.Journalists...),
		Sources:     append([]string(nil), c.Sources...),
	}
}

// Feed is a named subscription over the catalog
type Feed struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Criteria    CriteriaSet `json:"criteria"`
	IsPinned    bool        `json:"isPinned"`
	IsDefault   bool        `json:"isDefault"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Algorithm is a reusable, user-named filter preset
type Algorithm struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Criteria   CriteriaSet `json:"criteria"`
	IsSelected bool        `json:"isSelected"`
}

// Folder groups saved items by explicit assignment
type Folder struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Icon    string   `json:"icon"`
	ItemIDs []string `json:"itemIds"`
}

type StateEvent struct {
	State     string    `json:"state"`
	ItemCount int       `json:"itemCount"`
	Time      time.Time `json:"time"`
}

type FeedPage struct {
	Items  []Item  `json:"items"`
	Cursor *string `json:"cursor"`
}

type TwoColumnResponse struct {
	Left  []Item `json:"left"`
	Right []Item `json:"right"`
}

type CountResponse struct {
	FeedID string `json:"feedId"`
	Since  string `json:"since"`
	Count  int    `json:"count"`
}

// SearchTerms lists the texts a feed can be found by
func (f Feed) SearchTerms() []string {
	return append([]string{f.Name}, f.Criteria.Terms()...)
}

func (a Algorithm) SearchTerms() []string {
	return append([]string{a.Name}, a.Criteria.Terms()...)
}
