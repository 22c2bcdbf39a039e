package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "smartbin/pkg/platform/audit"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	var results kgo.ProduceResults
	for _, r := range rs {
		f.records = append(f.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func TestSink_Append(t *testing.T) {
	p := &fakeProducer{}
	sink := NewSink(p, "smartbin.audit")
	ts := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	err := sink.Append(context.Background(), audit.Event{
		ID:        "ev-1",
		Category:  audit.CategoryLedger,
		Timestamp: ts,
		UserID:    "42",
		Action:    string(audit.EventScanCredited),
		Subject:   "DB101",
	})
	require.NoError(t, err)
	require.Len(t, p.records, 1)

	rec := p.records[0]
	assert.Equal(t, "smartbin.audit", rec.Topic)
	assert.Equal(t, "42", string(rec.Key))

	var msg Message
	require.NoError(t, json.Unmarshal(rec.Value, &msg))
	assert.Equal(t, "scan_credited", msg.Action)
	assert.Equal(t, "DB101", msg.Subject)
	assert.True(t, ts.Equal(msg.Timestamp))
}

func TestSink_AppendPropagatesProduceError(t *testing.T) {
	sink := NewSink(&fakeProducer{err: errors.New("broker gone")}, "t")
	err := sink.Append(context.Background(), audit.Event{Action: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker gone")
}
