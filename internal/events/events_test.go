package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisherWritesKeyedMessages(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(w, zap.NewNop())

	e := New(TypeInvestmentRecorded, 42, map[string]string{"amount": "1000.00"})
	require.NoError(t, p.Publish(context.Background(), e))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "42", string(w.msgs[0].Key))
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)
	assert.Equal(t, TypeInvestmentRecorded, string(w.msgs[0].Headers[0].Value))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, e.ID, decoded["id"])
	assert.Equal(t, float64(42), decoded["client_id"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisherError(t *testing.T) {
	p := NewKafkaPublisherWithWriter(&fakeWriter{err: errors.New("broker down")}, zap.NewNop())
	assert.Error(t, p.Publish(context.Background(), New(TypeRiskAdjusted, 1, nil)))
	assert.NoError(t, p.Publish(context.Background()))
}

func TestMemoryPublisher(t *testing.T) {
	m := &MemoryPublisher{}
	require.NoError(t, m.Publish(context.Background(),
		New(TypeInvestmentRecorded, 1, nil),
		New(TypeRiskAdjusted, 1, nil)))

	assert.Len(t, m.Events(), 2)
	assert.Len(t, m.OfType(TypeRiskAdjusted), 1)
	assert.NotEmpty(t, m.Events()[0].ID)
}
