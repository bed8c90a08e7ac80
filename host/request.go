// Package host is the boundary to the document host: serialized tables are
// wrapped in insertion requests and handed to an Inserter.
package host

import (
	"time"

	"github.com/google/uuid"

	"github.com/tsawler/tablewrap/element"
)

// Kind names the native element type a request inserts.
type Kind = element.Type

// Request asks the host to insert one native element.
type Request struct {
	ID        uuid.UUID      `json:"id"`
	Kind      Kind           `json:"kind"`
	Element   *element.Table `json:"element"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NewRequest wraps el in a request with a fresh random ID.
func NewRequest(el *element.Table) Request {
	return Request{
		ID:        uuid.New(),
		Kind:      el.Type,
		Element:   el,
		CreatedAt: time.Now().UTC(),
	}
}
