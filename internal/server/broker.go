package server

import (
	"encoding/json"
	"sync"

	"github.com/playperu/molkky/internal/molkky"
)

const (
	EventState    = "state"
	EventFinished = "finished"
)

// Event is the payload published to table subscribers.
type Event struct {
	Type    string           `json:"type"`
	State   *molkky.Snapshot `json:"state,omitempty"`
	Results *molkky.Results  `json:"results,omitempty"`
	Message string           `json:"message,omitempty"`
}

// frame is an event already encoded for the wire.
type frame struct {
	Type string
	Data []byte
}

// Broker is an in-process pub/sub for table events, keyed by table code.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan frame]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan frame]struct{}),
	}
}

// Subscribe returns a channel that receives encoded events for the given table.
func (b *Broker) Subscribe(code string) chan frame {
	ch := make(chan frame, 16)
	b.mu.Lock()
	if b.subs[code] == nil {
		b.subs[code] = make(map[chan frame]struct{})
	}
	b.subs[code][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the table's subscribers.
func (b *Broker) Unsubscribe(code string, ch chan frame) {
	b.mu.Lock()
	delete(b.subs[code], ch)
	if len(b.subs[code]) == 0 {
		delete(b.subs, code)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given table.
func (b *Broker) Publish(code string, event Event) {
	data, _ := json.Marshal(event)
	f := frame{Type: event.Type, Data: data}
	b.mu.RLock()
	for ch := range b.subs[code] {
		select {
		case ch <- f:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

// Subscribers reports how many channels listen on a table.
func (b *Broker) Subscribers(code string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[code])
}
