// Package events describes the domain events emitted after catalog and cart
// mutations and the Publisher port that carries them to a broker.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	InventoryCreated = "inventory.created"
	InventoryUpdated = "inventory.updated"
	InventoryDeleted = "inventory.deleted"
	CartItemAdded    = "cart.item_added"
	CartLineUpdated  = "cart.line_updated"
	CartLineRemoved  = "cart.line_removed"
	CartCleared      = "cart.cleared"
)

// Event is the envelope published for every successful mutation.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Key        string         `json:"key,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// New builds an event keyed by the entity it concerns.
func New(eventType, key string, payload map[string]any) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Marshal encodes the event as JSON.
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Unmarshal decodes an event produced by Marshal.
func Unmarshal(body []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(body, &e)
	return e, err
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// MultiPublisher fans an event out to several publishers and joins their errors.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
