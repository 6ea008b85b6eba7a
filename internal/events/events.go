// Package events publishes domain events about investments, simulations
// and client risk ceilings.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	TypeClientCreated       = "client.created"
	TypeProfileChanged      = "client.profile_changed"
	TypeRiskAdjusted        = "client.risk_adjusted"
	TypeInvestmentRecorded  = "investment.recorded"
	TypeSimulationCompleted = "simulation.completed"
)

// Event is the envelope written to the bus
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	ClientID   uint        `json:"client_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// New stamps an event with an id and time
func New(eventType string, clientID uint, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		ClientID:   clientID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher delivers events. Publishing happens after the owning
// transaction commits; a failed publish never undoes the write.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

// NoopPublisher drops every event
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...Event) error { return nil }
func (NoopPublisher) Close() error { return nil }

// MemoryPublisher keeps events in memory, for tests and local runs
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (m *MemoryPublisher) Publish(_ context.Context, events ...Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MemoryPublisher) Close() error { return nil }

// Events returns a copy of everything published so far
func (m *MemoryPublisher) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// OfType filters published events by type
func (m *MemoryPublisher) OfType(eventType string) []Event {
	var out []Event
	for _, e := range m.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
