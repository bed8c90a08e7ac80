package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// ErrNoElement is returned for a request without an element.
var ErrNoElement = errors.New("request has no element")

// Inserter hands requests to the host.
type Inserter interface {
	Insert(ctx context.Context, req Request) error
}

// InserterFunc adapts a function to Inserter.
type InserterFunc func(ctx context.Context, req Request) error

// Insert calls f.
func (f InserterFunc) Insert(ctx context.Context, req Request) error {
	return f(ctx, req)
}

// JSONInserter writes each request as one line of JSON. It is safe for
// concurrent use.
type JSONInserter struct {
	mu  sync.Mutex
	enc *json.Encoder
	log zerolog.Logger
}

// NewJSONInserter returns an inserter writing to w.
func NewJSONInserter(w io.Writer, logger zerolog.Logger) *JSONInserter {
	return &JSONInserter{enc: json.NewEncoder(w), log: logger}
}

// Insert writes req unless ctx is already done.
func (j *JSONInserter) Insert(ctx context.Context, req Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.Element == nil {
		return ErrNoElement
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.enc.Encode(req); err != nil {
		j.log.Error().Err(err).Stringer("id", req.ID).Msg("insert failed")
		return fmt.Errorf("insert %s: %w", req.ID, err)
	}
	j.log.Debug().
		Stringer("id", req.ID).
		Str("kind", string(req.Kind)).
		Int("rows", req.Element.RowCount).
		Int("cols", req.Element.ColumnCount).
		Int("cells", req.Element.AnchorCount()).
		Msg("inserted element")
	return nil
}
