package server

import (
	"encoding/json"
	"sync"
)

// GridEvent is the payload published to a grid's subscribers.
type GridEvent struct {
	Type       string `json:"type"`
	CellID     *int   `json:"cellId,omitempty"`
	PersonName string `json:"personName,omitempty"`
}

// Broker is an in-process pub/sub for SSE events, keyed by grid ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the given grid.
func (b *Broker) Subscribe(gridID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[gridID] == nil {
		b.subs[gridID] = make(map[chan []byte]struct{})
	}
	b.subs[gridID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the grid's subscribers.
func (b *Broker) Unsubscribe(gridID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[gridID], ch)
	if len(b.subs[gridID]) == 0 {
		delete(b.subs, gridID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given grid.
func (b *Broker) Publish(gridID string, event GridEvent) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[gridID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
