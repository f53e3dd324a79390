package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"newsdesk/compose"
	"newsdesk/feeds"
	"newsdesk/models"
	"newsdesk/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

type ServerConfig struct {
	// The store answering all queries
	Store *store.Store

	// Origins allowed to call the API from a browser
	AllowOrigins string

	// Interval between keep-alive pings on the state stream
	PingInterval time.Duration
}

type stateResponse struct {
	State         string `json:"state"`
	ItemCount     int    `json:"itemCount"`
	LastLoadError string `json:"lastLoadError,omitempty"`
}

type createFeedRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Criteria    models.CriteriaSet `json:"criteria"`
}

type renameFeedRequest struct {
	Name string `json:"name"`
}

// Returns a fiber.App instance serving the newsdesk API
func Server(config *ServerConfig) *fiber.App {
	st := config.Store
	if config.PingInterval <= 0 {
		config.PingInterval = 5 * time.Second
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return sendError(c, err)
		},
	})

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": time.Since(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())

	if config.AllowOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: config.AllowOrigins,
			AllowHeaders: "Cache-Control, Content-Type",
		}))
	}

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	api.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(currentState(st))
	})

	api.Post("/load", func(c *fiber.Ctx) error {
		if err := st.Load(c.UserContext()); err != nil {
			return sendError(c, err)
		}
		return c.JSON(currentState(st))
	})

	api.Get("/feeds", func(c *fiber.Ctx) error {
		order, err := feeds.ParseSortOrder(c.Query("sort"))
		if err != nil {
			return sendError(c, err)
		}
		return c.JSON(st.ListFeeds(c.Query("search"), order))
	})

	api.Post("/feeds", func(c *fiber.Ctx) error {
		var req createFeedRequest
		if err := c.BodyParser(&req); err != nil {
			return sendError(c, &feeds.ValidationError{Field: "body", Message: err.Error()})
		}
		feed, err := st.CreateFeed(req.Name, req.Description, req.Criteria)
		if err != nil {
			return sendError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(feed)
	})

	api.Get("/feeds/:id", func(c *fiber.Ctx) error {
		feed, err := st.Feeds().Get(c.Params("id"))
		if err != nil {
			return sendError(c, err)
		}
		return c.JSON(feed)
	})

	api.Delete("/feeds/:id", func(c *fiber.Ctx) error {
		if err := st.Feeds().Remove(c.Params("id")); err != nil {
			return sendError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	api.Put("/feeds/:id/name", func(c *fiber.Ctx) error {
		var req renameFeedRequest
		if err := c.BodyParser(&req); err != nil {
			return sendError(c, &feeds.ValidationError{Field: "body", Message: err.Error()})
		}
		feed, err := st.RenameFeed(c.Params("id"), req.Name)
		if err != nil {
			return sendError(c, err)
		}
		return c.JSON(feed)
	})

	api.Put("/feeds/:id/criteria", func(c *fiber.Ctx) error {
		var criteria models.CriteriaSet
		if err := c.BodyParser(&criteria); err != nil {
			return sendError(c, &feeds.ValidationError{Field: "body", Message: err.Error()})
		}
		feed, err := st.EditFeedCriteria(c.Params("id"), criteria)
		if err != nil {
			return sendError(c, err)
		}
		return c.JSON(feed)
	})

	api.Post("/feeds/:id/pin", func(c *fiber.Ctx) error {
		feed, err := st.TogglePin(c.Params("id"))
		if err != nil {
			return sendError(c, err)
		}
		return c.JSON(feed)
	})

	api.Get("/feeds/:id/items", func(c *fiber.Ctx) error {
		items, err := st.FeedItems(c.Params("id"))
		if err != nil {
			return sendError(c, err)
		}
		return c.JSON(compose.Paginate(items, c.Query("cursor"), parseLimit(c.Query("limit"))))
	})

	api.Get("/feeds/:id/count", func(c *fiber.Ctx) error {
		feed, err := st.Feeds().Get(c.Params("id"))
		if err != nil {
			return sendError(c, err)
		}

		since := c.Query("since")
		var count int
		if since == "" {
			count = st.NewToday(feed)
		} else {
			reference, err := parseReference(since)
			if err != nil {
				return sendError(c, err)
			}
			count = st.NewCount(feed, reference)
		}

		return c.JSON(models.CountResponse{FeedID: feed.ID, Since: since, Count: count})
	})

	api.Get("/items", func(c *fiber.Ctx) error {
		return c.JSON(st.FilteredItems(criteriaFromQuery(c)))
	})

	api.Get("/items/columns", func(c *fiber.Ctx) error {
		left, right := st.TwoColumnLayout(st.FilteredItems(criteriaFromQuery(c)))
		return c.JSON(models.TwoColumnResponse{Left: left, Right: right})
	})

	api.Get("/items/:id", func(c *fiber.Ctx) error {
		item, err := st.Item(c.Params("id"))
		if err != nil {
			return sendError(c, err)
		}
		return c.JSON(item)
	})

	api.Post("/items/:id/read", func(c *fiber.Ctx) error {
		item, err := st.Item(c.Params("id"))
		if err != nil {
			return sendError(c, err)
		}
		st.RecordRead(item)
		return c.SendStatus(fiber.StatusNoContent)
	})

	api.Get("/home", func(c *fiber.Ctx) error {
		left, right := st.TwoColumnLayout(st.HomeItems())
		return c.JSON(models.TwoColumnResponse{Left: left, Right: right})
	})

	api.Get("/recent", func(c *fiber.Ctx) error {
		resp := fiber.Map{}
		if item, ok := st.LastViewed(); ok {
			resp["lastViewed"] = item
		}
		if item, ok := st.Featured(); ok {
			resp["featured"] = item
		}
		return c.JSON(resp)
	})

	api.Get("/algorithms", func(c *fiber.Ctx) error {
		return c.JSON(st.Algorithms().List())
	})

	api.Post("/algorithms/:id/select", func(c *fiber.Ctx) error {
		algorithm, err := st.Algorithms().ToggleSelected(c.Params("id"))
		if err != nil {
			return sendError(c, err)
		}
		return c.JSON(algorithm)
	})

	api.Get("/folders", func(c *fiber.Ctx) error {
		return c.JSON(st.Folders().List())
	})

	api.Put("/folders/:id/items/:itemId", func(c *fiber.Ctx) error {
		folder, err := st.SaveToFolder(c.Params("id"), c.Params("itemId"))
		if err != nil {
			return sendError(c, err)
		}
		return c.JSON(folder)
	})

	api.Delete("/folders/:id/items/:itemId", func(c *fiber.Ctx) error {
		folder, err := st.Folders().Unassign(c.Params("id"), c.Params("itemId"))
		if err != nil {
			return sendError(c, err)
		}
		return c.JSON(folder)
	})

	api.Get("/state/sse", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("Transfer-Encoding", "chunked")

		key, events := st.Subscribe(10)
		initial := currentState(st)

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			aliveChan := time.NewTicker(config.PingInterval)
			defer aliveChan.Stop()
			defer func() {
				log.Infof("Cleaning up SSE stream for client: %s", key)
				st.Unsubscribe(key)
			}()

			if err := writeEvent(w, "state", initial); err != nil {
				log.Warnf("Failed to send initial state to client %s: %v", key, err)
				return
			}

			for {
				select {
				case <-aliveChan.C:
					if _, err := fmt.Fprintf(w, "event: ping\ndata: \n\n"); err != nil {
						log.Warnf("Failed to send ping to client %s: %v", key, err)
						return
					}
					if err := w.Flush(); err != nil {
						log.Warnf("Failed to flush ping for client %s: %v", key, err)
						return
					}

				case event, ok := <-events:
					if !ok {
						log.Warnf("State channel closed for client %s", key)
						return
					}
					if err := writeEvent(w, "state", event); err != nil {
						log.Warnf("Failed to send state event to client %s: %v", key, err)
						return
					}
				}
			}
		}))

		return nil
	})

	return app
}

func writeEvent(w *bufio.Writer, name string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	return w.Flush()
}

func currentState(st *store.Store) stateResponse {
	resp := stateResponse{
		State:     st.State().String(),
		ItemCount: len(st.Items()),
	}
	if err := st.LastLoadError(); err != nil {
		resp.LastLoadError = err.Error()
	}
	return resp
}

func sendError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	switch {
	case errors.Is(err, feeds.ErrValidation):
		status = fiber.StatusBadRequest
	case store.IsNotFound(err):
		status = fiber.StatusNotFound
	case errors.As(err, &fiberErr):
		status = fiberErr.Code
	}

	if status >= fiber.StatusInternalServerError {
		log.WithFields(log.Fields{
			"path":  c.Path(),
			"error": err,
		}).Error("Request failed")
	}

	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// criteriaFromQuery reads comma separated tags, journalists and sources
func criteriaFromQuery(c *fiber.Ctx) models.CriteriaSet {
	return models.CriteriaSet{
		Tags:        splitList(c.Query("tags")),
		Journalists: splitList(c.Query("journalists")),
		Sources:     splitList(c.Query("sources")),
	}
}

func splitList(value string) []string {
	var result []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func parseLimit(value string) int {
	limit, err := strconv.Atoi(value)
	if err != nil {
		return compose.DefaultPageSize
	}
	return limit
}

// parseReference accepts a day (start of that day in UTC) or an RFC 3339 instant
func parseReference(value string) (time.Time, error) {
	if day, err := time.Parse(time.DateOnly, value); err == nil {
		return day, nil
	}
	instant, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, &feeds.ValidationError{Field: "since", Message: fmt.Sprintf("invalid reference time %q", value)}
	}
	return instant, nil
}
