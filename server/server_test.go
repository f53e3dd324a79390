package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"newsdesk/feeds"
	"newsdesk/models"
	"newsdesk/server"
	"newsdesk/store"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(value string) *time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return &t
}

var sampleItems = []models.Item{
	{ID: "1", Title: "Morning wire", Source: "Wire", Author: "Ann", Tags: []string{"A"}, PublishedAt: at("2026-01-15T08:00:00Z")},
	{ID: "2", Title: "Late edition", Source: "Daily", Author: "Bo", Tags: []string{"B"}, PublishedAt: at("2026-01-14T23:00:00Z")},
	{ID: "3", Title: "Undated", Source: "Wire", Author: "Cy", Tags: []string{"A", "B"}},
}

func newTestApp(t *testing.T) (*fiber.App, *store.Store) {
	t.Helper()

	clock := feeds.ClockFunc(func() time.Time { return *at("2026-01-15T12:00:00Z") })

	registry := feeds.NewRegistry(models.Feed{ID: "for-you", Name: "For You"}, feeds.WithClock(clock))
	_, err := registry.Add(models.Feed{
		ID:       "wire",
		Name:     "Wire",
		Criteria: models.CriteriaSet{Sources: []string{"Wire"}},
	})
	require.NoError(t, err)

	algorithms := feeds.NewAlgorithms()
	_, err = algorithms.Add(models.Algorithm{
		ID:         "only-a",
		Name:       "Only A",
		Criteria:   models.CriteriaSet{Tags: []string{"A"}},
		IsSelected: true,
	})
	require.NoError(t, err)

	folders := feeds.NewFolders()
	_, err = folders.Add(models.Folder{ID: "later", Name: "Later", Icon: "bookmark"})
	require.NoError(t, err)

	fetcher := store.FetcherFunc(func(ctx context.Context) ([]models.Item, error) {
		return sampleItems, nil
	})
	s := store.New(fetcher,
		store.WithClock(clock),
		store.WithRegistry(registry),
		store.WithAlgorithms(algorithms),
		store.WithFolders(folders),
	)
	require.NoError(t, s.Load(context.Background()))
	t.Cleanup(s.Close)

	return server.Server(&server.ServerConfig{Store: s}), s
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var value T
	require.NoError(t, json.Unmarshal(data, &value), string(data))
	return value
}

func itemIDs(items []models.Item) []string {
	return lo.Map(items, func(item models.Item, _ int) string { return item.ID })
}

func TestState(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := do(t, app, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, status)

	state := decode[map[string]interface{}](t, body)
	assert.Equal(t, "ready", state["state"])
	assert.EqualValues(t, 3, state["itemCount"])
	assert.NotContains(t, state, "lastLoadError")
}

func TestListFeeds(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name     string
		target   string
		status   int
		expected []string
	}{
		{name: "alphabetical", target: "/api/feeds?sort=alphabetical", status: http.StatusOK, expected: []string{"For You", "Wire"}},
		{name: "search by source", target: "/api/feeds?search=wire", status: http.StatusOK, expected: []string{"Wire"}},
		{name: "unknown sort", target: "/api/feeds?sort=popularity", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, http.MethodGet, tt.target, "")
			require.Equal(t, tt.status, status)
			if tt.expected == nil {
				return
			}
			feeds := decode[[]models.Feed](t, body)
			assert.Equal(t, tt.expected, lo.Map(feeds, func(f models.Feed, _ int) string { return f.Name }))
		})
	}
}

func TestCreateFeed(t *testing.T) {
	app, s := newTestApp(t)

	status, _ := do(t, app, http.MethodPost, "/api/feeds", `{"name": "   "}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := do(t, app, http.MethodPost, "/api/feeds", `{"name": "Tag B", "criteria": {"tags": ["B"]}}`)
	require.Equal(t, http.StatusCreated, status)

	feed := decode[models.Feed](t, body)
	assert.Equal(t, "Tag B", feed.Name)
	assert.NotEmpty(t, feed.ID)
	assert.Equal(t, 3, s.Feeds().Len())

	status, body = do(t, app, http.MethodGet, "/api/feeds/"+feed.ID+"/items", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"2", "3"}, itemIDs(decode[models.FeedPage](t, body).Items))
}

func TestPinAndRemoveFeed(t *testing.T) {
	app, _ := newTestApp(t)

	status, _ := do(t, app, http.MethodPost, "/api/feeds/missing/pin", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body := do(t, app, http.MethodPost, "/api/feeds/wire/pin", "")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decode[models.Feed](t, body).IsPinned)

	status, _ = do(t, app, http.MethodDelete, "/api/feeds/for-you", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodDelete, "/api/feeds/wire", "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, app, http.MethodGet, "/api/feeds/wire", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestEditFeed(t *testing.T) {
	app, s := newTestApp(t)

	status, body := do(t, app, http.MethodPut, "/api/feeds/wire/criteria", `{"tags": ["B"]}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"B"}, decode[models.Feed](t, body).Criteria.Tags)

	status, body = do(t, app, http.MethodGet, "/api/feeds/wire/items", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"2", "3"}, itemIDs(decode[models.FeedPage](t, body).Items))

	status, body = do(t, app, http.MethodPut, "/api/feeds/wire/name", `{"name": "Tag B"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Tag B", decode[models.Feed](t, body).Name)

	feed, err := s.Feeds().Get("wire")
	require.NoError(t, err)
	assert.Equal(t, "Tag B", feed.Name)

	status, _ = do(t, app, http.MethodPut, "/api/feeds/wire/name", `{"name": ""}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPut, "/api/feeds/missing/criteria", `{"tags": ["B"]}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestFeedItemsPagination(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := do(t, app, http.MethodGet, "/api/feeds/wire/items?limit=1", "")
	require.Equal(t, http.StatusOK, status)

	page := decode[models.FeedPage](t, body)
	assert.Equal(t, []string{"1"}, itemIDs(page.Items))
	require.NotNil(t, page.Cursor)
	assert.Equal(t, "1", *page.Cursor)

	status, body = do(t, app, http.MethodGet, "/api/feeds/wire/items?limit=1&cursor=1", "")
	require.Equal(t, http.StatusOK, status)

	page = decode[models.FeedPage](t, body)
	assert.Equal(t, []string{"3"}, itemIDs(page.Items))
	assert.Nil(t, page.Cursor)
}

func TestFeedCount(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name     string
		target   string
		status   int
		expected int
	}{
		{name: "start of today", target: "/api/feeds/for-you/count", status: http.StatusOK, expected: 1},
		{name: "since day", target: "/api/feeds/for-you/count?since=2026-01-14", status: http.StatusOK, expected: 2},
		{name: "since instant", target: "/api/feeds/for-you/count?since=2026-01-15T09:00:00Z", status: http.StatusOK, expected: 0},
		{name: "feed criteria", target: "/api/feeds/wire/count?since=2026-01-01", status: http.StatusOK, expected: 1},
		{name: "bad reference", target: "/api/feeds/for-you/count?since=yesterday", status: http.StatusBadRequest},
		{name: "unknown feed", target: "/api/feeds/missing/count", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, http.MethodGet, tt.target, "")
			require.Equal(t, tt.status, status)
			if tt.status != http.StatusOK {
				return
			}
			assert.Equal(t, tt.expected, decode[models.CountResponse](t, body).Count)
		})
	}
}

func TestItems(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := do(t, app, http.MethodGet, "/api/items?tags=B", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"2", "3"}, itemIDs(decode[[]models.Item](t, body)))

	status, body = do(t, app, http.MethodGet, "/api/items?sources=wire,%20daily&journalists=bo", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"2"}, itemIDs(decode[[]models.Item](t, body)))

	status, body = do(t, app, http.MethodGet, "/api/items/columns", "")
	require.Equal(t, http.StatusOK, status)
	columns := decode[models.TwoColumnResponse](t, body)
	assert.Equal(t, []string{"1", "3"}, itemIDs(columns.Left))
	assert.Equal(t, []string{"2"}, itemIDs(columns.Right))

	status, _ = do(t, app, http.MethodGet, "/api/items/missing", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRecordRead(t *testing.T) {
	app, s := newTestApp(t)

	status, _ := do(t, app, http.MethodPost, "/api/items/missing/read", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, http.MethodPost, "/api/items/2/read", "")
	require.Equal(t, http.StatusNoContent, status)

	item, ok := s.LastViewed()
	require.True(t, ok)
	assert.Equal(t, "2", item.ID)

	status, body := do(t, app, http.MethodGet, "/api/recent", "")
	require.Equal(t, http.StatusOK, status)
	recent := decode[map[string]models.Item](t, body)
	assert.Equal(t, "2", recent["lastViewed"].ID)
	assert.Equal(t, "1", recent["featured"].ID)
}

func TestHomeAndAlgorithms(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := do(t, app, http.MethodGet, "/api/home", "")
	require.Equal(t, http.StatusOK, status)
	columns := decode[models.TwoColumnResponse](t, body)
	assert.Equal(t, []string{"1"}, itemIDs(columns.Left))
	assert.Equal(t, []string{"3"}, itemIDs(columns.Right))

	status, body = do(t, app, http.MethodPost, "/api/algorithms/only-a/select", "")
	require.Equal(t, http.StatusOK, status)
	assert.False(t, decode[models.Algorithm](t, body).IsSelected)

	// Nothing selected leaves the home page unconstrained
	status, body = do(t, app, http.MethodGet, "/api/home", "")
	require.Equal(t, http.StatusOK, status)
	columns = decode[models.TwoColumnResponse](t, body)
	assert.Len(t, append(columns.Left, columns.Right...), 3)

	status, _ = do(t, app, http.MethodPost, "/api/algorithms/missing/select", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestFolders(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := do(t, app, http.MethodPut, "/api/folders/later/items/2", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"2"}, decode[models.Folder](t, body).ItemIDs)

	status, _ = do(t, app, http.MethodPut, "/api/folders/later/items/missing", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = do(t, app, http.MethodDelete, "/api/folders/later/items/2", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[models.Folder](t, body).ItemIDs)

	status, body = do(t, app, http.MethodGet, "/api/folders", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Folder](t, body), 1)
}

func TestMetricsAndUnknownRoute(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := do(t, app, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "newsdesk_store_loads_total")

	status, _ = do(t, app, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
}
