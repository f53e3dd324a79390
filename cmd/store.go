package cmd

import (
	"fmt"

	"newsdesk/config"
	"newsdesk/feeds"
	"newsdesk/store"

	"github.com/urfave/cli/v2"
)

// openStore builds a store from the configuration file named by the --config
// flag. The catalog is not loaded yet.
func openStore(ctx *cli.Context, opts ...store.Option) (*store.Store, error) {
	path := ctx.String("config")

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	set, err := feeds.InitializeFeeds(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize feeds: %w", err)
	}

	opts = append([]store.Option{
		store.WithRegistry(set.Feeds),
		store.WithAlgorithms(set.Algorithms),
		store.WithFolders(set.Folders),
	}, opts...)

	return store.New(&config.CatalogSource{Path: path}, opts...), nil
}

// loadStore opens the store and loads its catalog. A catalog that failed to
// load is reported as an error since there is nothing to show.
func loadStore(ctx *cli.Context) (*store.Store, error) {
	s, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.Load(ctx.Context); err != nil {
		return nil, err
	}
	if err := s.LastLoadError(); err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	return s, nil
}
