// Package catalog holds the in-memory set of content items
package catalog

import (
	"newsdesk/models"

	log "github.com/sirupsen/logrus"
)

// Catalog is an immutable, ordered set of items with unique ids. A new
// catalog is built for every load, so readers can share one without locks.
type Catalog struct {
	items []models.Item
	index map[string]int
}

// Empty returns a catalog without items
func Empty() *Catalog {
	return &Catalog{index: map[string]int{}}
}

// New builds a catalog from items in their given order. When an id occurs
// more than once the first occurrence is kept.
func New(items []models.Item) *Catalog {
	c := &Catalog{
		items: make([]models.Item, 0, len(items)),
		index: make(map[string]int, len(items)),
	}

	for _, item := range items {
		if item.ID == "" {
			log.WithFields(log.Fields{
				"title": item.Title,
			}).Warn("Skipping catalog item without id")
			continue
		}
		if _, ok := c.index[item.ID]; ok {
			log.WithFields(log.Fields{
				"id": item.ID,
			}).Warn("Skipping duplicate catalog item")
			continue
		}
		c.index[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}

	return c
}

// Items returns a copy of all items in catalog order
func (c *Catalog) Items() []models.Item {
	return append([]models.Item{}, c.items...)
}

func (c *Catalog) Get(id string) (models.Item, bool) {
	i, ok := c.index[id]
	if !ok {
		return models.Item{}, false
	}
	return c.items[i], true
}

func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

func (c *Catalog) Len() int {
	return len(c.items)
}
