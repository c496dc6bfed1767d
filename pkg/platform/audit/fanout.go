package audit

import (
	"context"
	"errors"
)

// Fanout appends every event to each store in order. Reads are served by the
// first store, which should be the durable one.
type Fanout struct {
	stores []Store
}

// NewFanout builds a fan-out store. Nil stores are skipped.
func NewFanout(stores ...Store) *Fanout {
	f := &Fanout{}
	for _, s := range stores {
		if s != nil {
			f.stores = append(f.stores, s)
		}
	}
	return f
}

// Append writes to every store and joins their errors.
func (f *Fanout) Append(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range f.stores {
		if err := s.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) ListBySubject(ctx context.Context, subject string) ([]Event, error) {
	if len(f.stores) == 0 {
		return nil, nil
	}
	return f.stores[0].ListBySubject(ctx, subject)
}

func (f *Fanout) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	if len(f.stores) == 0 {
		return nil, nil
	}
	return f.stores[0].ListRecent(ctx, limit)
}
