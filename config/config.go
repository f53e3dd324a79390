package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"newsdesk/models"

	"github.com/BurntSushi/toml"
)

// TomlFeed represents feed configuration
type TomlFeed struct {
	Id          string    `toml:"id"`
	DisplayName string    `toml:"display_name"`
	Description string    `toml:"description"`
	Pinned      bool      `toml:"pinned"`
	Default     bool      `toml:"default"`
	UpdatedAt   time.Time `toml:"updated_at"`
	Tags        []string  `toml:"tags,omitempty"`
	Journalists []string  `toml:"journalists,omitempty"`
	Sources     []string  `toml:"sources,omitempty"`
}

func (f TomlFeed) Criteria() models.CriteriaSet {
	return models.CriteriaSet{Tags: f.Tags, Journalists: f.Journalists, Sources: f.Sources}
}

// TomlAlgorithm represents a named filter preset
type TomlAlgorithm struct {
	Id          string   `toml:"id"`
	DisplayName string   `toml:"display_name"`
	Selected    bool     `toml:"selected"`
	Tags        []string `toml:"tags,omitempty"`
	Journalists []string `toml:"journalists,omitempty"`
	Sources     []string `toml:"sources,omitempty"`
}

func (a TomlAlgorithm) Criteria() models.CriteriaSet {
	return models.CriteriaSet{Tags: a.Tags, Journalists: a.Journalists, Sources: a.Sources}
}

// TomlFolder represents a folder and the items saved in it
type TomlFolder struct {
	Id    string   `toml:"id"`
	Name  string   `toml:"name"`
	Icon  string   `toml:"icon"`
	Items []string `toml:"items,omitempty"` // References to item ids
}

// TomlConfig represents the top-level configuration
type TomlConfig struct {
	Locale     string          `toml:"locale"`
	Feeds      []TomlFeed      `toml:"feeds"`
	Algorithms []TomlAlgorithm `toml:"algorithms"`
	Folders    []TomlFolder    `toml:"folders"`
	Items      []models.Item   `toml:"items"` // Seed catalog
}

func LoadConfig(path string) (*TomlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return ParseConfig(data)
}

func ParseConfig(data []byte) (*TomlConfig, error) {
	var config TomlConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate checks ids are unique per section and that at most one feed is
// marked as default
func (c *TomlConfig) Validate() error {
	defaults := 0
	feedIds := map[string]bool{}
	for i, feed := range c.Feeds {
		if strings.TrimSpace(feed.DisplayName) == "" {
			return fmt.Errorf("feeds[%d]: display_name is required", i)
		}
		if err := checkUnique(feedIds, "feed", feed.Id); err != nil {
			return err
		}
		if feed.Default {
			defaults++
		}
	}
	if defaults > 1 {
		return fmt.Errorf("only one feed can be the default, found %d", defaults)
	}

	algorithmIds := map[string]bool{}
	for i, algorithm := range c.Algorithms {
		if strings.TrimSpace(algorithm.DisplayName) == "" {
			return fmt.Errorf("algorithms[%d]: display_name is required", i)
		}
		if err := checkUnique(algorithmIds, "algorithm", algorithm.Id); err != nil {
			return err
		}
	}

	folderIds := map[string]bool{}
	for i, folder := range c.Folders {
		if strings.TrimSpace(folder.Name) == "" {
			return fmt.Errorf("folders[%d]: name is required", i)
		}
		if err := checkUnique(folderIds, "folder", folder.Id); err != nil {
			return err
		}
	}

	itemIds := map[string]bool{}
	for i, item := range c.Items {
		if item.ID == "" {
			return fmt.Errorf("items[%d]: id is required", i)
		}
		if err := checkUnique(itemIds, "item", item.ID); err != nil {
			return err
		}
	}

	return nil
}

// Empty ids are generated later and never collide
func checkUnique(seen map[string]bool, kind, id string) error {
	if id == "" {
		return nil
	}
	if seen[id] {
		return fmt.Errorf("duplicate %s id %q", kind, id)
	}
	seen[id] = true
	return nil
}

// CatalogSource serves the seed catalog of a configuration file. The file is
// read again on every fetch, so edits show up on the next load.
type CatalogSource struct {
	Path string
}

func (s *CatalogSource) FetchCatalog(ctx context.Context) ([]models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(s.Path)
	if err != nil {
		return nil, err
	}

	return cfg.Items, nil
}
