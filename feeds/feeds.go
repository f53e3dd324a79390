package feeds

import (
	"fmt"

	"newsdesk/config"
	"newsdesk/models"
	"newsdesk/query"

	log "github.com/sirupsen/logrus"
)

// Set holds the registries built from a configuration file
type Set struct {
	Feeds      *Registry
	Algorithms *Algorithms
	Folders    *Folders
}

// InitializeFeeds builds the feed, algorithm and folder registries declared
// in the configuration. Without a feed marked default, a "For You" feed
// matching everything becomes the default.
func InitializeFeeds(cfg *config.TomlConfig, opts ...Option) (*Set, error) {
	opts = append([]Option{WithLocale(query.ParseLocale(cfg.Locale))}, opts...)

	registry := NewRegistry(models.Feed{Name: "For You"}, opts...)
	for _, feedCfg := range cfg.Feeds {
		_, err := registry.Add(models.Feed{
			ID:          feedCfg.Id,
			Name:        feedCfg.DisplayName,
			Description: feedCfg.Description,
			Criteria:    feedCfg.Criteria(),
			IsPinned:    feedCfg.Pinned,
			IsDefault:   feedCfg.Default,
			UpdatedAt:   feedCfg.UpdatedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("feed %q: %w", feedCfg.Id, err)
		}
	}

	algorithms := NewAlgorithms(opts...)
	for _, algCfg := range cfg.Algorithms {
		_, err := algorithms.Add(models.Algorithm{
			ID:         algCfg.Id,
			Name:       algCfg.DisplayName,
			Criteria:   algCfg.Criteria(),
			IsSelected: algCfg.Selected,
		})
		if err != nil {
			return nil, fmt.Errorf("algorithm %q: %w", algCfg.Id, err)
		}
	}

	folders := NewFolders(opts...)
	for _, folderCfg := range cfg.Folders {
		_, err := folders.Add(models.Folder{
			ID:      folderCfg.Id,
			Name:    folderCfg.Name,
			Icon:    folderCfg.Icon,
			ItemIDs: folderCfg.Items,
		})
		if err != nil {
			return nil, fmt.Errorf("folder %q: %w", folderCfg.Id, err)
		}
	}

	log.WithFields(log.Fields{
		"feeds":      registry.Len(),
		"algorithms": len(algorithms.List()),
		"folders":    len(folders.List()),
	}).Info("Initialized feeds")

	return &Set{
		Feeds:      registry,
		Algorithms: algorithms,
		Folders:    folders,
	}, nil
}
