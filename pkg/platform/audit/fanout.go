package audit

import (
	"context"

	"go.uber.org/multierr"
)

// Fanout appends every event to each store in order. A failing store does
// not stop the others; all failures are combined in the returned error.
type Fanout []Store

func (f Fanout) Append(ctx context.Context, event Event) error {
	var err error
	for _, s := range f {
		err = multierr.Append(err, s.Append(ctx, event))
	}
	return err
}
