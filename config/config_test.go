package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"newsdesk/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := config.LoadConfig("newsdesk.toml")
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.Locale)
	require.Len(t, cfg.Feeds, 4)
	assert.True(t, cfg.Feeds[0].Default)
	assert.True(t, cfg.Feeds[1].Pinned)
	assert.Equal(t, []string{"technology", "ai"}, cfg.Feeds[1].Criteria().Tags)
	assert.Len(t, cfg.Algorithms, 2)
	assert.Equal(t, []string{"a3"}, cfg.Folders[0].Items)

	require.Len(t, cfg.Items, 6)
	assert.Equal(t, "José Álvarez", cfg.Items[1].Author)
	require.NotNil(t, cfg.Items[0].PublishedAt)
	assert.Equal(t, 2026, cfg.Items[0].PublishedAt.Year())
	assert.Nil(t, cfg.Items[4].PublishedAt)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "error reading config file")
}

func TestParseConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		data string
		err  string
	}{
		{
			name: "invalid toml",
			data: `feeds = [`,
			err:  "error parsing config file",
		},
		{
			name: "feed without name",
			data: "[[feeds]]\nid = \"a\"\n",
			err:  "display_name is required",
		},
		{
			name: "duplicate feed id",
			data: "[[feeds]]\nid = \"a\"\ndisplay_name = \"A\"\n[[feeds]]\nid = \"a\"\ndisplay_name = \"B\"\n",
			err:  `duplicate feed id "a"`,
		},
		{
			name: "two default feeds",
			data: "[[feeds]]\ndisplay_name = \"A\"\ndefault = true\n[[feeds]]\ndisplay_name = \"B\"\ndefault = true\n",
			err:  "only one feed can be the default",
		},
		{
			name: "item without id",
			data: "[[items]]\ntitle = \"x\"\n",
			err:  "items[0]: id is required",
		},
		{
			name: "duplicate item id",
			data: "[[items]]\nid = \"x\"\n[[items]]\nid = \"x\"\n",
			err:  `duplicate item id "x"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.ParseConfig([]byte(tt.data))
			assert.ErrorContains(t, err, tt.err)
		})
	}
}

func TestCatalogSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[items]]\nid = \"x\"\ntitle = \"First\"\n"), 0o644))

	source := &config.CatalogSource{Path: path}
	items, err := source.FetchCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "First", items[0].Title)

	require.NoError(t, os.WriteFile(path, []byte("[[items]]\nid = \"x\"\n[[items]]\nid = \"y\"\n"), 0o644))
	items, err = source.FetchCatalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = source.FetchCatalog(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
