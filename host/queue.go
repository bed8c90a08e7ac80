package host

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tsawler/tablewrap"
	"github.com/tsawler/tablewrap/element"
)

// Queue serializes access to one table shared between goroutines. Each
// mutation runs alone against a working copy that replaces the table only
// if the mutation succeeds, so a failed batch leaves no partial edits.
type Queue struct {
	sem chan struct{} // holds the token while a caller owns the table
	w   *tablewrap.TableWrapper
	log zerolog.Logger
}

// NewQueue takes ownership of w.
func NewQueue(w *tablewrap.TableWrapper, logger zerolog.Logger) *Queue {
	return &Queue{sem: make(chan struct{}, 1), w: w, log: logger}
}

func (q *Queue) acquire(ctx context.Context) error {
	select {
	case q.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) release() { <-q.sem }

// Do runs fn with exclusive access to the table. It waits for earlier
// callers unless ctx is done first. If fn returns an error the table is
// left as it was.
func (q *Queue) Do(ctx context.Context, fn func(w *tablewrap.TableWrapper) error) error {
	if err := q.acquire(ctx); err != nil {
		return err
	}
	defer q.release()

	work := q.w.Clone()
	if err := fn(work); err != nil {
		q.log.Debug().Err(err).Msg("mutation rolled back")
		return err
	}
	q.w = work
	return nil
}

// Snapshot serializes the current table.
func (q *Queue) Snapshot(ctx context.Context) (*element.Table, error) {
	if err := q.acquire(ctx); err != nil {
		return nil, err
	}
	defer q.release()
	return q.w.ToElement(), nil
}

// Flush serializes the current table and inserts it. Mutations queued
// after the snapshot is taken do not affect the inserted element.
func (q *Queue) Flush(ctx context.Context, ins Inserter) (Request, error) {
	el, err := q.Snapshot(ctx)
	if err != nil {
		return Request{}, err
	}
	req := NewRequest(el)
	if err := ins.Insert(ctx, req); err != nil {
		return Request{}, err
	}
	q.log.Info().Stringer("id", req.ID).Msg("table flushed")
	return req, nil
}
