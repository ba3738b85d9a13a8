package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mmdatafocus/commerce_backend/models"
	"github.com/mmdatafocus/commerce_backend/repository/memstore"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	key  string
	data []byte
}

type fakePublisher struct {
	mu       sync.Mutex
	failures int
	sent     []published
}

func (p *fakePublisher) Publish(ctx context.Context, key string, data []byte) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return "", errors.New("broker unavailable")
	}
	p.sent = append(p.sent, published{key: key, data: data})
	return "msg-" + key, nil
}

type dispatcherFixture struct {
	store *memstore.Store
	pub   *fakePublisher
	d     *OutboxDispatcher
	now   time.Time
}

func newDispatcherFixture(t *testing.T, failures int) *dispatcherFixture {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	f := &dispatcherFixture{
		store: memstore.New(),
		pub:   &fakePublisher{failures: failures},
		now:   time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	f.d = NewOutboxDispatcher(f.store.Outbox(), f.pub, logger)
	f.d.Now = func() time.Time { return f.now }
	f.d.MaxAttempts = 3
	return f
}

func (f *dispatcherFixture) enqueue(t *testing.T, orderID int) {
	t.Helper()
	require.NoError(t, f.store.Outbox().Enqueue(context.Background(), &models.OutboxEvent{
		TenantId:      1,
		EventType:     "order.placed",
		AggregateType: "order",
		AggregateId:   orderID,
		Payload:       []byte(`{"order_number":"ORD-1"}`),
		CorrelationId: "corr-1",
	}))
}

func (f *dispatcherFixture) event(t *testing.T, orderID int) *models.OutboxEvent {
	t.Helper()
	events, err := f.store.Outbox().ListForAggregate(context.Background(), 1, "order", orderID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	return events[0]
}

func TestDispatchPublishesPendingEvents(t *testing.T) {
	f := newDispatcherFixture(t, 0)
	f.enqueue(t, 7)
	f.enqueue(t, 8)

	sent, err := f.d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, f.pub.sent, 2)
	assert.Equal(t, "1:order:7", f.pub.sent[0].key)

	var envelope models.EventEnvelope
	require.NoError(t, json.Unmarshal(f.pub.sent[0].data, &envelope))
	assert.Equal(t, "order.placed", envelope.EventType)
	assert.Equal(t, "corr-1", envelope.CorrelationId)
	assert.JSONEq(t, `{"order_number":"ORD-1"}`, string(envelope.Payload))

	e := f.event(t, 7)
	assert.Equal(t, models.OutboxPublishStatusSent, e.PublishStatus)
	assert.Equal(t, 1, e.PublishAttempts)
	require.NotNil(t, e.BrokerMessageId)
	assert.Equal(t, "msg-1:order:7", *e.BrokerMessageId)
	assert.Nil(t, e.LockedBy)

	sent, err = f.d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Len(t, f.pub.sent, 2)
}

func TestDispatchRetriesWithBackoff(t *testing.T) {
	f := newDispatcherFixture(t, 1)
	f.enqueue(t, 7)

	sent, err := f.d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)

	e := f.event(t, 7)
	assert.Equal(t, models.OutboxPublishStatusFailed, e.PublishStatus)
	require.NotNil(t, e.NextAttemptAt)
	assert.Equal(t, f.now.Add(5*time.Second), *e.NextAttemptAt)
	require.NotNil(t, e.LastPublishError)
	assert.Equal(t, "broker unavailable", *e.LastPublishError)

	// not yet due
	sent, err = f.d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)

	f.now = f.now.Add(5 * time.Second)
	sent, err = f.d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 2, f.event(t, 7).PublishAttempts)
}

func TestDispatchMovesPoisonEventsToDead(t *testing.T) {
	f := newDispatcherFixture(t, 100)
	f.enqueue(t, 7)

	for i := 0; i < 3; i++ {
		_, err := f.d.DispatchOnce(context.Background())
		require.NoError(t, err)
		f.now = f.now.Add(time.Hour)
	}

	e := f.event(t, 7)
	assert.Equal(t, models.OutboxPublishStatusDead, e.PublishStatus)
	assert.Equal(t, 3, e.PublishAttempts)
	assert.Empty(t, f.pub.sent)
}

func TestDispatchReclaimsStaleLocks(t *testing.T) {
	f := newDispatcherFixture(t, 0)
	f.enqueue(t, 7)

	claimed, err := f.store.Outbox().Claim(context.Background(), "crashed", f.now, f.now.Add(-time.Minute), 10, 3)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	sent, err := f.d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent, "a fresh lock is left alone")

	f.now = f.now.Add(f.d.LockTimeout)
	sent, err = f.d.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestBackoffIsCapped(t *testing.T) {
	d := NewOutboxDispatcher(nil, nil, nil)
	assert.Equal(t, 5*time.Second, d.Backoff(1))
	assert.Equal(t, 20*time.Second, d.Backoff(3))
	assert.Equal(t, 10*time.Minute, d.Backoff(12))
}
