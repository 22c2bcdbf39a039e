package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type recordingStore struct {
	events []Event
	err    error
}

func (r *recordingStore) Append(_ context.Context, e Event) error {
	r.events = append(r.events, e)
	return r.err
}

func TestFanout(t *testing.T) {
	t.Run("every store sees the event despite failures", func(t *testing.T) {
		first := &recordingStore{err: errors.New("postgres down")}
		second := &recordingStore{}
		third := &recordingStore{err: errors.New("kafka down")}

		err := Fanout{first, second, third}.Append(context.Background(), Event{Action: string(EventScanCredited)})

		require.Error(t, err)
		assert.Len(t, multierr.Errors(err), 2)
		for _, s := range []*recordingStore{first, second, third} {
			assert.Len(t, s.events, 1)
		}
	})

	t.Run("empty fanout is a no-op", func(t *testing.T) {
		assert.NoError(t, Fanout{}.Append(context.Background(), Event{}))
	})
}
