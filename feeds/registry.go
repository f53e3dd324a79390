// Package feeds owns the user's feeds, algorithms and folders
package feeds

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"newsdesk/models"
	"newsdesk/query"

	"github.com/google/uuid"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

// SortOrder selects how List orders feeds before the pinned partition
type SortOrder string

const (
	SortRecent       SortOrder = "recent"
	SortAlphabetical SortOrder = "alphabetical"
	// SortCreator only distinguishes the default feed from the rest
	SortCreator SortOrder = "creator"
)

// ParseSortOrder converts user input to a SortOrder. Empty input is recent.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortRecent:
		return SortRecent, nil
	case SortAlphabetical:
		return SortAlphabetical, nil
	case SortCreator:
		return SortCreator, nil
	}
	return "", &ValidationError{Field: "sort", Message: fmt.Sprintf("unknown sort order %q", s)}
}

// Option configures a registry
type Option func(*options)

type options struct {
	clock  Clock
	locale language.Tag
	newID  func() string
}

func WithClock(clock Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithLocale sets the locale used for alphabetical ordering
func WithLocale(locale language.Tag) Option {
	return func(o *options) { o.locale = locale }
}

func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

func buildOptions(opts []Option) options {
	o := options{
		clock:  SystemClock{},
		locale: language.English,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Registry is the ordered set of feeds. It always contains exactly one
// default feed and is the only mutator of the feeds it holds.
type Registry struct {
	mu    sync.RWMutex
	feeds []models.Feed
	opts  options
}

// NewRegistry creates a registry holding the given default feed
func NewRegistry(defaultFeed models.Feed, opts ...Option) *Registry {
	r := &Registry{opts: buildOptions(opts)}

	defaultFeed.IsDefault = true
	defaultFeed.Criteria = defaultFeed.Criteria.Clone()
	if defaultFeed.ID == "" {
		defaultFeed.ID = r.opts.newID()
	}
	if strings.TrimSpace(defaultFeed.Name) == "" {
		defaultFeed.Name = "For You"
	}
	if defaultFeed.UpdatedAt.IsZero() {
		defaultFeed.UpdatedAt = r.opts.clock.Now()
	}
	r.feeds = []models.Feed{defaultFeed}

	return r
}

// Create adds a new feed at the end of the registry
func (r *Registry) Create(name, description string, criteria models.CriteriaSet) (models.Feed, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Feed{}, &ValidationError{Field: "name", Message: "feed name must not be empty"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	feed := models.Feed{
		ID:          r.opts.newID(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Criteria:    criteria.Clone(),
		UpdatedAt:   r.opts.clock.Now(),
	}
	r.feeds = append(r.feeds, feed)

	log.WithFields(log.Fields{
		"id":   feed.ID,
		"name": feed.Name,
	}).Info("Created feed")

	return cloneFeed(feed), nil
}

// Add inserts a feed restored from configuration, keeping its id and flags.
// A default feed replaces the registry's current default in place.
func (r *Registry) Add(feed models.Feed) (models.Feed, error) {
	feed.Name = strings.TrimSpace(feed.Name)
	if feed.Name == "" {
		return models.Feed{}, &ValidationError{Field: "name", Message: "feed name must not be empty"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if feed.ID == "" {
		feed.ID = r.opts.newID()
	}
	if r.indexOf(feed.ID) >= 0 {
		return models.Feed{}, &ValidationError{Field: "id", Message: fmt.Sprintf("feed %q already exists", feed.ID)}
	}
	if feed.UpdatedAt.IsZero() {
		feed.UpdatedAt = r.opts.clock.Now()
	}
	feed.Criteria = feed.Criteria.Clone()

	if feed.IsDefault {
		i := r.defaultIndex()
		r.feeds[i] = feed
		return cloneFeed(feed), nil
	}

	r.feeds = append(r.feeds, feed)
	return cloneFeed(feed), nil
}

// Update applies mutate to a copy of the feed and stores the result. The id
// and default flag cannot be changed.
func (r *Registry) Update(id string, mutate func(*models.Feed)) (models.Feed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.Feed{}, &NotFoundError{Kind: "feed", ID: id}
	}

	updated := r.feeds[i]
	updated.Criteria = updated.Criteria.Clone()
	mutate(&updated)

	updated.ID = r.feeds[i].ID
	updated.IsDefault = r.feeds[i].IsDefault
	updated.Name = strings.TrimSpace(updated.Name)
	if updated.Name == "" {
		return models.Feed{}, &ValidationError{Field: "name", Message: "feed name must not be empty"}
	}
	updated.UpdatedAt = r.opts.clock.Now()

	r.feeds[i] = updated
	return cloneFeed(updated), nil
}

// Rename is a convenience wrapper around Update
func (r *Registry) Rename(id, name string) (models.Feed, error) {
	return r.Update(id, func(f *models.Feed) { f.Name = name })
}

// SetCriteria replaces the feed's criteria
func (r *Registry) SetCriteria(id string, criteria models.CriteriaSet) (models.Feed, error) {
	return r.Update(id, func(f *models.Feed) { f.Criteria = criteria.Clone() })
}

// TogglePin flips the pinned flag without touching UpdatedAt
func (r *Registry) TogglePin(id string) (models.Feed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.Feed{}, &NotFoundError{Kind: "feed", ID: id}
	}
	r.feeds[i].IsPinned = !r.feeds[i].IsPinned

	return cloneFeed(r.feeds[i]), nil
}

// Remove deletes a feed. The default feed cannot be removed.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return &NotFoundError{Kind: "feed", ID: id}
	}
	if r.feeds[i].IsDefault {
		return &ValidationError{Field: "id", Message: "the default feed cannot be removed"}
	}
	r.feeds = slices.Delete(r.feeds, i, i+1)

	log.WithFields(log.Fields{
		"id": id,
	}).Info("Removed feed")

	return nil
}

func (r *Registry) Get(id string) (models.Feed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.Feed{}, &NotFoundError{Kind: "feed", ID: id}
	}
	return cloneFeed(r.feeds[i]), nil
}

// Default returns the always present default feed
func (r *Registry) Default() models.Feed {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return cloneFeed(r.feeds[r.defaultIndex()])
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.feeds)
}

// All returns copies of the feeds in registry order
func (r *Registry) All() []models.Feed {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Map(r.feeds, func(f models.Feed, _ int) models.Feed {
		return cloneFeed(f)
	})
}

// List filters feeds by search text, orders them and moves pinned feeds to
// the front. The registry itself is left untouched.
func (r *Registry) List(searchText string, order SortOrder) []models.Feed {
	matched := lo.Filter(r.All(), func(f models.Feed, _ int) bool {
		return query.MatchesText(f, searchText)
	})

	SortFeeds(matched, order, r.opts.locale)

	return PinnedFirst(matched)
}

func (r *Registry) indexOf(id string) int {
	for i, f := range r.feeds {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) defaultIndex() int {
	for i, f := range r.feeds {
		if f.IsDefault {
			return i
		}
	}
	// NewRegistry guarantees a default feed
	panic("feeds: registry has no default feed")
}

// cloneFeed detaches the criteria slices from the registry's copy
func cloneFeed(feed models.Feed) models.Feed {
	feed.Criteria = feed.Criteria.Clone()
	return feed
}
