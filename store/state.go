package store

import (
	"context"

	"newsdesk/models"
)

// State is the load lifecycle of a Store
type State int32

const (
	Idle State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// Fetcher supplies the catalog. It is the only place a Store waits on I/O.
type Fetcher interface {
	FetchCatalog(ctx context.Context) ([]models.Item, error)
}

// FetcherFunc adapts a function to a Fetcher
type FetcherFunc func(ctx context.Context) ([]models.Item, error)

func (f FetcherFunc) FetchCatalog(ctx context.Context) ([]models.Item, error) {
	return f(ctx)
}
