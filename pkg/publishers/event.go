package publishers

import (
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/beer-catalog-client/pkg/model"
)

// Action names the catalog mutation an Event reports.
type Action string

const (
	ActionCreated Action = "beer.created"
	ActionUpdated Action = "beer.updated"
	ActionDeleted Action = "beer.deleted"
)

// Event represents a successful catalog mutation published downstream.
type Event struct {
	Action     Action      `json:"action"`
	BeerID     string      `json:"beer_id,omitempty"`
	Location   string      `json:"location,omitempty"`
	StatusCode int         `json:"status_code"`
	Beer       *model.Beer `json:"beer,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// NewEvent constructs an Event for the given mutation.
func NewEvent(action Action, id uuid.UUID, statusCode int, beer *model.Beer) Event {
	evt := Event{
		Action:     action,
		StatusCode: statusCode,
		Beer:       beer,
		OccurredAt: time.Now().UTC(),
	}
	if id != uuid.Nil {
		evt.BeerID = id.String()
	}
	return evt
}

// attributes returns the message attributes shared by the queue publishers.
func (e Event) attributes() map[string]string {
	attrs := map[string]string{"action": string(e.Action)}
	if e.BeerID != "" {
		attrs["beer_id"] = e.BeerID
	}
	return attrs
}
