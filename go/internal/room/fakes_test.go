package room

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"github.com/mcdev12/vanish/go/internal/models"
)

type mockGateway struct {
	mock.Mock

	ttlCalls    atomic.Int32
	listCalls   atomic.Int32
	postCalls   atomic.Int32
	deleteCalls atomic.Int32
}

func (m *mockGateway) GetTTL(ctx context.Context, roomID string) (int, error) {
	m.ttlCalls.Add(1)
	args := m.Called(ctx, roomID)
	return args.Int(0), args.Error(1)
}

func (m *mockGateway) ListMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	m.listCalls.Add(1)
	args := m.Called(ctx, roomID)
	msgs, _ := args.Get(0).([]models.Message)
	return msgs, args.Error(1)
}

func (m *mockGateway) PostMessage(ctx context.Context, roomID, sender, text string) error {
	m.postCalls.Add(1)
	return m.Called(ctx, roomID, sender, text).Error(0)
}

func (m *mockGateway) DeleteRoom(ctx context.Context, roomID string) error {
	m.deleteCalls.Add(1)
	return m.Called(ctx, roomID).Error(0)
}

type fakeSubscription struct {
	events chan models.ChannelEvent
	closes atomic.Int32
}

func (s *fakeSubscription) Events() <-chan models.ChannelEvent {
	return s.events
}

func (s *fakeSubscription) Close() error {
	s.closes.Add(1)
	return nil
}

type fakeSource struct {
	mu   sync.Mutex
	subs []*fakeSubscription
	err  error
	// block, when set, holds Subscribe until it is closed.
	block chan struct{}

	attempts atomic.Int32
}

func (s *fakeSource) Subscribe(ctx context.Context, roomID string, kinds []models.EventKind) (Subscription, error) {
	s.attempts.Add(1)

	s.mu.Lock()
	err, block := s.err, s.block
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}

	sub := &fakeSubscription{events: make(chan models.ChannelEvent, 16)}
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
	return sub, nil
}

func (s *fakeSource) subscription() *fakeSubscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.subs) == 0 {
		return nil
	}
	return s.subs[len(s.subs)-1]
}

func (s *fakeSource) emit(ev models.ChannelEvent) {
	s.subscription().events <- ev
}

// leaveRecorder collects leave effects.
type leaveRecorder struct {
	mu     sync.Mutex
	leaves []Lifecycle
}

func (r *leaveRecorder) record(lc Lifecycle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaves = append(r.leaves, lc)
}

func (r *leaveRecorder) all() []Lifecycle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Lifecycle(nil), r.leaves...)
}
