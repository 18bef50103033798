// Package notify publishes calculation events.
//
// The server and the CLI emit an [Event] whenever a calculation is computed,
// saved or deleted. [MQTT] sends events to a broker; [Nop] drops them. A
// failed publication is logged by the caller and never fails the
// calculation.
package notify

import (
	"context"
	"time"

	"github.com/matzehuels/tilecalc/pkg/tile"
)

// EventType names what happened to a calculation.
type EventType string

const (
	EventComputed EventType = "computed"
	EventSaved    EventType = "saved"
	EventDeleted  EventType = "deleted"
)

// Event is the payload published for a calculation.
type Event struct {
	Type                EventType    `json:"type"`
	ID                  string       `json:"id,omitempty"`
	Name                string       `json:"name,omitempty"`
	Pattern             tile.Pattern `json:"pattern,omitempty"`
	RoomAreaM2          float64      `json:"room_area_m2,omitempty"`
	TilesNeeded         int          `json:"tiles_needed,omitempty"`
	TotalTilesWithWaste int          `json:"total_tiles_with_waste,omitempty"`
	EstimatedCost       float64      `json:"estimated_cost,omitempty"`
	Timestamp           int64        `json:"timestamp"`
}

// NewEvent builds an event from a record. rec may be nil for deletions.
func NewEvent(typ EventType, id, name string, rec *tile.Record) Event {
	e := Event{Type: typ, ID: id, Name: name, Timestamp: time.Now().Unix()}
	if rec != nil {
		e.Pattern = rec.Pattern
		e.RoomAreaM2 = rec.Result.RoomAreaM2
		e.TilesNeeded = rec.Result.TilesNeeded
		e.TotalTilesWithWaste = rec.Result.TotalTilesWithWaste
		e.EstimatedCost = rec.Result.EstimatedCost
	}
	return e
}

// Notifier publishes events.
type Notifier interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error { return nil }

var _ Notifier = Nop{}
