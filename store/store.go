// Package store is the aggregate root: it owns the catalog, the feed,
// algorithm and folder registries and the recency state, and answers the
// queries the UI layer issues.
package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"newsdesk/catalog"
	"newsdesk/compose"
	"newsdesk/feeds"
	"newsdesk/models"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// snapshot is swapped as a whole so readers never see a catalog that does
// not belong to the state next to it
type snapshot struct {
	state    State
	catalog  *catalog.Catalog
	featured *models.Item
	loadErr  error
}

// flight is one shared fetch and the callers waiting for it
type flight struct {
	key     string
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	waiters int
}

// RetryConfig bounds how often a failing fetch is retried before the store
// gives up and degrades to an empty catalog
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

type Option func(*Store)

func WithClock(clock feeds.Clock) Option {
	return func(s *Store) { s.clock = clock }
}

func WithRegistry(registry *feeds.Registry) Option {
	return func(s *Store) { s.feeds = registry }
}

func WithAlgorithms(algorithms *feeds.Algorithms) Option {
	return func(s *Store) { s.algorithms = algorithms }
}

func WithFolders(folders *feeds.Folders) Option {
	return func(s *Store) { s.folders = folders }
}

func WithRetry(retry RetryConfig) Option {
	return func(s *Store) { s.retry = retry }
}

type Store struct {
	fetcher    Fetcher
	clock      feeds.Clock
	retry      RetryConfig
	feeds      *feeds.Registry
	algorithms *feeds.Algorithms
	folders    *feeds.Folders

	loads       singleflight.Group
	flightMu    sync.Mutex
	flight      *flight
	current     atomic.Pointer[snapshot]
	broadcaster *Broadcaster

	mu         sync.RWMutex
	lastViewed *models.Item
}

// New creates an idle store with an empty catalog. Nothing is fetched until
// Load is called.
func New(fetcher Fetcher, opts ...Option) *Store {
	s := &Store{
		fetcher:     fetcher,
		clock:       feeds.SystemClock{},
		broadcaster: NewBroadcaster(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.feeds == nil {
		s.feeds = feeds.NewRegistry(models.Feed{}, feeds.WithClock(s.clock))
	}
	if s.algorithms == nil {
		s.algorithms = feeds.NewAlgorithms()
	}
	if s.folders == nil {
		s.folders = feeds.NewFolders()
	}

	s.current.Store(&snapshot{state: Idle, catalog: catalog.Empty()})
	return s
}

// Load fetches the catalog and swaps it in. Calls made while a fetch is in
// flight wait for that fetch instead of starting another one. A caller whose
// context ends stops waiting and gets the context error; the fetch itself is
// only cancelled once every waiting caller has given up.
//
// A failed fetch leaves the store Ready with an empty catalog; the cause is
// kept in LastLoadError. A cancelled fetch restores the state from before
// the load.
func (s *Store) Load(ctx context.Context) error {
	f, result, err := s.join(ctx)
	if err != nil {
		return err
	}

	select {
	case res := <-result:
		s.leave(f, false)
		if res.Shared {
			loadsCoalesced.Inc()
		}
		return res.Err
	case <-ctx.Done():
		s.leave(f, true)
		return ctx.Err()
	}
}

// join attaches the caller to the fetch in flight, starting one when there
// is none. The fetch context keeps the values of the caller that started it
// but not its cancellation. A fetch cancelled by its last waiter is left to
// unwind before a new one starts.
func (s *Store) join(ctx context.Context) (*flight, <-chan singleflight.Result, error) {
	for {
		s.flightMu.Lock()
		f := s.flight
		if f != nil && f.ctx.Err() != nil {
			s.flightMu.Unlock()
			select {
			case <-f.done:
				continue
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			}
		}

		if f == nil {
			fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
			f = &flight{key: uuid.NewString(), ctx: fctx, cancel: cancel, done: make(chan struct{})}
			s.flight = f
		}
		f.waiters++

		// Joined under flightMu so the fetch cannot finish between the check and DoChan
		result := s.loads.DoChan(f.key, func() (interface{}, error) {
			defer f.cancel()
			err := s.load(f.ctx)

			s.flightMu.Lock()
			s.flight = nil
			close(f.done)
			s.flightMu.Unlock()

			return nil, err
		})
		s.flightMu.Unlock()

		return f, result, nil
	}
}

// leave detaches a caller. The last caller to give up cancels the fetch.
func (s *Store) leave(f *flight, gaveUp bool) {
	s.flightMu.Lock()
	defer s.flightMu.Unlock()

	f.waiters--
	if gaveUp && f.waiters == 0 {
		f.cancel()
	}
}

func (s *Store) load(ctx context.Context) error {
	prev := s.current.Load()
	s.swap(&snapshot{
		state:    Loading,
		catalog:  prev.catalog,
		featured: prev.featured,
		loadErr:  prev.loadErr,
	})

	loadsTotal.Inc()
	start := time.Now()
	items, err := s.fetch(ctx)
	loadDuration.Observe(time.Since(start).Seconds())

	if ctx.Err() != nil {
		log.WithFields(log.Fields{
			"state": prev.state,
			"error": ctx.Err(),
		}).Warn("Catalog load cancelled, keeping previous catalog")
		s.swap(prev)
		return ctx.Err()
	}

	next := &snapshot{state: Ready}
	if err != nil {
		loadFailures.Inc()
		log.WithFields(log.Fields{
			"error": err,
		}).Warn("Catalog load failed, continuing with an empty catalog")
		next.catalog = catalog.Empty()
		next.loadErr = err
	} else {
		next.catalog = catalog.New(items)
		if featured, ok := compose.Featured(next.catalog.Items()); ok {
			next.featured = &featured
		}
	}

	catalogSize.Set(float64(next.catalog.Len()))
	s.swap(next)

	log.WithFields(log.Fields{
		"items":    next.catalog.Len(),
		"duration": time.Since(start),
	}).Info("Catalog loaded")

	return nil
}

func (s *Store) fetch(ctx context.Context) ([]models.Item, error) {
	b := backoff.NewExponentialBackOff()
	if s.retry.InitialInterval > 0 {
		b.InitialInterval = s.retry.InitialInterval
	}
	if s.retry.MaxInterval > 0 {
		b.MaxInterval = s.retry.MaxInterval
	}
	b.MaxElapsedTime = 0 // Bounded by MaxRetries instead

	attempt := 0
	return backoff.RetryWithData(func() ([]models.Item, error) {
		attempt++
		items, err := s.fetcher.FetchCatalog(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			log.WithFields(log.Fields{
				"attempt": attempt,
				"error":   err,
			}).Warn("Catalog fetch failed")
		}
		return items, err
	}, backoff.WithContext(backoff.WithMaxRetries(b, s.retry.MaxRetries), ctx))
}

func (s *Store) swap(next *snapshot) {
	s.current.Store(next)
	s.broadcaster.Broadcast(models.StateEvent{
		State:     next.state.String(),
		ItemCount: next.catalog.Len(),
		Time:      s.clock.Now(),
	})
}

// State returns the current load state
func (s *Store) State() State {
	return s.current.Load().state
}

// LastLoadError returns the cause of the last failed load, or nil when the
// last load succeeded
func (s *Store) LastLoadError() error {
	return s.current.Load().loadErr
}

// Items returns the catalog in catalog order
func (s *Store) Items() []models.Item {
	return s.current.Load().catalog.Items()
}

func (s *Store) Item(id string) (models.Item, error) {
	item, ok := s.current.Load().catalog.Get(id)
	if !ok {
		return models.Item{}, &feeds.NotFoundError{Kind: "item", ID: id}
	}
	return item, nil
}

// Featured returns the newest dated item of the current catalog
func (s *Store) Featured() (models.Item, bool) {
	featured := s.current.Load().featured
	if featured == nil {
		return models.Item{}, false
	}
	return *featured, true
}

// RecordRead remembers the item the user viewed last
func (s *Store) RecordRead(item models.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastViewed = &item
	log.WithFields(log.Fields{
		"id": item.ID,
	}).Info("Recorded read")
}

func (s *Store) LastViewed() (models.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastViewed == nil {
		return models.Item{}, false
	}
	return *s.lastViewed, true
}

func (s *Store) ListFeeds(searchText string, order feeds.SortOrder) []models.Feed {
	return s.feeds.List(searchText, order)
}

func (s *Store) CreateFeed(name, description string, criteria models.CriteriaSet) (models.Feed, error) {
	return s.feeds.Create(name, description, criteria)
}

func (s *Store) TogglePin(feedID string) (models.Feed, error) {
	return s.feeds.TogglePin(feedID)
}

func (s *Store) RenameFeed(feedID, name string) (models.Feed, error) {
	return s.feeds.Rename(feedID, name)
}

// EditFeedCriteria replaces what a feed matches and bumps its UpdatedAt
func (s *Store) EditFeedCriteria(feedID string, criteria models.CriteriaSet) (models.Feed, error) {
	return s.feeds.SetCriteria(feedID, criteria)
}

// SaveToFolder assigns an item of the current catalog to a folder
func (s *Store) SaveToFolder(folderID, itemID string) (models.Folder, error) {
	if !s.current.Load().catalog.Contains(itemID) {
		return models.Folder{}, &feeds.NotFoundError{Kind: "item", ID: itemID}
	}
	return s.folders.Assign(folderID, itemID)
}

// FilteredItems returns the catalog items matching criteria in catalog order
func (s *Store) FilteredItems(criteria models.CriteriaSet) []models.Item {
	return compose.FilterCatalog(s.Items(), criteria)
}

// FeedItems returns the items of a feed, newest first
func (s *Store) FeedItems(feedID string) ([]models.Item, error) {
	feed, err := s.feeds.Get(feedID)
	if err != nil {
		return nil, err
	}
	return compose.SortByRecency(s.FilteredItems(feed.Criteria)), nil
}

// HomeItems applies the selected algorithms to the catalog
func (s *Store) HomeItems() []models.Item {
	return s.FilteredItems(s.algorithms.Combined())
}

func (s *Store) TwoColumnLayout(items []models.Item) (left, right []models.Item) {
	return compose.SplitTwoColumn(compose.Dedupe(items))
}

// NewCount counts the feed's items published at or after reference
func (s *Store) NewCount(feed models.Feed, reference time.Time) int {
	return compose.CountSince(s.Items(), feed.Criteria, reference)
}

// NewToday counts the feed's items published since the start of today
func (s *Store) NewToday(feed models.Feed) int {
	return s.NewCount(feed, compose.StartOfDay(s.clock.Now()))
}

// Subscribe returns a channel receiving every state change until
// Unsubscribe is called with the returned key
func (s *Store) Subscribe(buffer int) (string, <-chan models.StateEvent) {
	return s.broadcaster.AddClient(buffer)
}

func (s *Store) Unsubscribe(key string) {
	s.broadcaster.RemoveClient(key)
}

// Close releases all subscribers
func (s *Store) Close() {
	s.broadcaster.Shutdown()
}

func (s *Store) Feeds() *feeds.Registry {
	return s.feeds
}

func (s *Store) Algorithms() *feeds.Algorithms {
	return s.algorithms
}

func (s *Store) Folders() *feeds.Folders {
	return s.folders
}

// IsNotFound reports whether err is caused by an unknown id
func IsNotFound(err error) bool {
	return errors.Is(err, feeds.ErrNotFound)
}
