package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	events []Event
	err    error
}

func (m *memorySink) Append(_ context.Context, event Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func TestEmitAssignsIdentity(t *testing.T) {
	sink := &memorySink{}
	p := NewPublisher(sink)

	err := p.Emit(context.Background(), Event{
		Action:  ActionApplicationCreated,
		Subject: "application:10000001",
	})
	require.NoError(t, err)
	require.Len(t, sink.events, 1)

	got := sink.events[0]
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.False(t, got.Timestamp.IsZero())
	assert.Equal(t, ActionApplicationCreated, got.Action)
}

func TestEmitFansOutToAllSinks(t *testing.T) {
	first := &memorySink{}
	second := &memorySink{}
	p := NewPublisher(first, second)

	require.NoError(t, p.Emit(context.Background(), Event{Action: ActionPANRevealed}))
	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)
}

func TestEmitAttemptsEverySinkDespiteFailure(t *testing.T) {
	boom := errors.New("broker down")
	failing := &memorySink{err: boom}
	healthy := &memorySink{}
	p := NewPublisher(failing, healthy)

	err := p.Emit(context.Background(), Event{Action: ActionApplicationDeleted})
	require.ErrorIs(t, err, boom)
	assert.Len(t, healthy.events, 1)
}

func TestNewPublisherSkipsNilSinks(t *testing.T) {
	sink := &memorySink{}
	p := NewPublisher(nil, sink, nil)

	require.NoError(t, p.Emit(context.Background(), Event{Action: ActionHistoryRecorded}))
	assert.Len(t, sink.events, 1)
}

func TestNilPublisherIsSafe(t *testing.T) {
	var p *Publisher
	require.NoError(t, p.Emit(context.Background(), Event{}))
}
