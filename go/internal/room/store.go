package room

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mcdev12/vanish/go/internal/models"
	"github.com/rs/zerolog/log"
)

// FetchFunc pulls the full message list of a room.
type FetchFunc func(ctx context.Context) ([]models.Message, error)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithRefreshErrorHandler reports errors of hint-triggered refreshes.
func WithRefreshErrorHandler(fn func(error)) StoreOption {
	return func(s *Store) {
		s.onError = fn
	}
}

// WithRefreshHandler is called after every applied refresh.
func WithRefreshHandler(fn func([]models.Message)) StoreOption {
	return func(s *Store) {
		s.onRefresh = fn
	}
}

// Store holds the reconciled message list of one room.
//
// The list is only ever replaced wholesale by a full pull. Hints coalesce:
// while a refresh is in flight, any number of hints collapse into a single
// follow-up refresh.
type Store struct {
	fetch     FetchFunc
	onError   func(error)
	onRefresh func([]models.Message)

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	messages []models.Message
	inFlight bool
	pending  bool
	closed   bool
	// refreshes counts fetches started, hinted or not.
	refreshes int
}

// NewStore creates an empty store backed by fetch.
func NewStore(fetch FetchFunc, opts ...StoreOption) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		fetch:  fetch,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh performs one full pull and replaces the list.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrRoomDestroyed
	}
	s.refreshes++
	s.mu.Unlock()

	msgs, err := s.fetch(ctx)
	if err != nil {
		return fmt.Errorf("refresh messages: %w", err)
	}
	s.apply(msgs)
	return nil
}

// Hint schedules a refresh. If one is already in flight, the hint is folded
// into at most one follow-up refresh.
func (s *Store) Hint() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.inFlight {
		s.pending = true
		return
	}
	s.inFlight = true
	go s.drain()
}

func (s *Store) drain() {
	for {
		s.mu.Lock()
		s.refreshes++
		s.mu.Unlock()

		msgs, err := s.fetch(s.ctx)

		if err != nil {
			if s.ctx.Err() == nil && s.onError != nil {
				s.onError(fmt.Errorf("refresh messages: %w", err))
			}
		} else {
			s.apply(msgs)
		}

		s.mu.Lock()
		if s.pending && !s.closed {
			s.pending = false
			s.mu.Unlock()
			continue
		}
		s.inFlight = false
		s.pending = false
		s.mu.Unlock()
		return
	}
}

func (s *Store) apply(msgs []models.Message) {
	list := reconcile(msgs)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		log.Debug().Int("messages", len(list)).Msg("discarding refresh after close")
		return
	}
	s.messages = list
	s.mu.Unlock()

	if s.onRefresh != nil {
		s.onRefresh(list)
	}
}

// reconcile keys messages by id and orders them by timestamp, then id.
func reconcile(msgs []models.Message) []models.Message {
	byID := make(map[string]int, len(msgs))
	list := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if i, ok := byID[m.ID]; ok {
			list[i] = m
			continue
		}
		byID[m.ID] = len(list)
		list = append(list, m)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Before(list[j])
	})
	return list
}

// Messages returns a snapshot of the current list.
func (s *Store) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// refreshCount returns how many fetches the store has started.
func (s *Store) refreshCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

// Close drops the list and cancels any in-flight refresh; results arriving
// later are discarded.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.pending = false
	s.messages = nil
	s.mu.Unlock()
	s.cancel()
}
