package store

import (
	"sync"

	"newsdesk/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Broadcaster fans state changes out to subscribers. Slow subscribers miss
// events instead of blocking the store.
type Broadcaster struct {
	sync.RWMutex
	clients map[string]chan models.StateEvent
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]chan models.StateEvent),
	}
}

func (b *Broadcaster) Broadcast(event models.StateEvent) {
	b.RLock()
	defer b.RUnlock()

	for id, client := range b.clients {
		select {
		case client <- event: // Non-blocking send
		default:
			log.Warnf("Client channel full, skipping state event for client: %v", id)
		}
	}
}

// AddClient registers a new subscriber and returns its key and channel
func (b *Broadcaster) AddClient(buffer int) (string, <-chan models.StateEvent) {
	b.Lock()
	defer b.Unlock()

	key := uuid.NewString()
	client := make(chan models.StateEvent, buffer)
	b.clients[key] = client

	log.WithFields(log.Fields{
		"key":   key,
		"count": len(b.clients),
	}).Info("Adding client to broadcaster")

	return key, client
}

// RemoveClient unregisters and closes a subscriber channel
func (b *Broadcaster) RemoveClient(key string) {
	b.Lock()
	defer b.Unlock()

	if client, ok := b.clients[key]; ok {
		close(client)
		delete(b.clients, key)
	}

	log.WithFields(log.Fields{
		"key":   key,
		"count": len(b.clients),
	}).Info("Removed client from broadcaster")
}

func (b *Broadcaster) Shutdown() {
	log.Info("Shutting down broadcaster")
	b.Lock()
	defer b.Unlock()
	for key, client := range b.clients {
		close(client)
		delete(b.clients, key)
	}
}
