package room

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/vanish/go/internal/models"
	"github.com/rs/zerolog/log"
)

// tickInterval is the cadence of the local countdown.
const tickInterval = time.Second

// Options configures a Controller. The zero value is usable.
type Options struct {
	// Clock drives the countdown. In production, use clockwork.NewRealClock(). In tests, a FakeClock.
	Clock clockwork.Clock

	// TTLResyncInterval re-fetches the TTL periodically; zero disables it.
	TTLResyncInterval time.Duration

	// RefreshAfterSend pulls the message list after a successful send
	// instead of waiting for the realtime hint.
	RefreshAfterSend bool

	// OnLeave is the "leave room" effect. It runs exactly once, on the
	// transition to StateDestroyed.
	OnLeave func(Lifecycle)

	// OnChange is called whenever countdown, messages or state changed.
	OnChange func()

	// OnError receives errors that do not end the session.
	OnError func(error)
}

// Controller owns the lifecycle of one room session. It reconciles the TTL
// countdown, the realtime event stream and user actions into a single
// Active -> Destroyed transition.
//
// Ticks, realtime events and TTL completions are all handled on the Run loop,
// one at a time. The terminal transition is a mutex-guarded check-and-set, so
// it also holds for Send and Destroy called from other goroutines.
type Controller struct {
	roomID  string
	sender  string
	gateway Gateway
	clock   clockwork.Clock
	opts    Options

	ttl    *TTLClock
	store  *Store
	bridge *Bridge

	actions chan func()
	leave   chan struct{}
	done    chan struct{}

	// ttlRequested numbers TTL fetches; ttlApplied is the newest one whose
	// sample was installed. Only the Run loop touches ttlApplied.
	ttlRequested atomic.Uint64
	ttlApplied   uint64

	mu        sync.Mutex
	lifecycle Lifecycle
	ticker    clockwork.Ticker
	resync    clockwork.Ticker
	stop      context.CancelFunc
	running   bool
	released  bool
}

// NewController creates an active session for roomID. sender is the display
// name used for outgoing messages.
func NewController(roomID, sender string, gateway Gateway, source Source, opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	c := &Controller{
		roomID:  roomID,
		sender:  sender,
		gateway: gateway,
		clock:   opts.Clock,
		opts:    opts,
		bridge:  NewBridge(source),
		actions: make(chan func()),
		leave:   make(chan struct{}),
		done:    make(chan struct{}),
	}

	c.ttl = NewTTLClock(func() {
		c.transition(CauseExpired)
	})
	c.store = NewStore(
		func(ctx context.Context) ([]models.Message, error) {
			return c.gateway.ListMessages(ctx, c.roomID)
		},
		WithRefreshErrorHandler(c.handleError),
		WithRefreshHandler(func([]models.Message) { c.changed() }),
	)

	return c
}

// RoomID returns the id of the room this session belongs to.
func (c *Controller) RoomID() string {
	return c.roomID
}

// Sender returns the display name used for outgoing messages.
func (c *Controller) Sender() string {
	return c.sender
}

// State returns the current lifecycle.
func (c *Controller) State() Lifecycle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lifecycle
}

// Countdown returns the remaining seconds and whether they are known yet.
func (c *Controller) Countdown() (int, bool) {
	return c.ttl.Remaining()
}

// Messages returns the reconciled message list.
func (c *Controller) Messages() []models.Message {
	return c.store.Messages()
}

// Done is closed once, when the session is destroyed. It is the "leave now" signal.
func (c *Controller) Done() <-chan struct{} {
	return c.leave
}

// Run acquires the ticker and the realtime subscription and processes
// signals until the session is destroyed or ctx is cancelled. All resources
// are released on return.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("run room %s: already running", c.roomID)
	}
	if c.lifecycle.State == StateDestroyed {
		c.mu.Unlock()
		return ErrRoomDestroyed
	}
	ctx, cancel := context.WithCancel(ctx)
	c.running = true
	c.stop = cancel
	c.ticker = c.clock.NewTicker(tickInterval)
	ticks := c.ticker.Chan()
	var resyncCh <-chan time.Time
	if c.opts.TTLResyncInterval > 0 {
		c.resync = c.clock.NewTicker(c.opts.TTLResyncInterval)
		resyncCh = c.resync.Chan()
	}
	c.mu.Unlock()

	defer cancel()
	defer close(c.done)
	defer c.release()

	log.Info().
		Str("room_id", c.roomID).
		Str("sender", c.sender).
		Msg("entering room")

	go c.fetchTTL(ctx)
	c.store.Hint()
	go c.subscribe(ctx)

	for {
		select {
		case <-ctx.Done():
			// release cancels ctx too; only a live session is "left".
			if c.State().Active() {
				log.Info().Str("room_id", c.roomID).Msg("leaving room view")
			}
			return nil
		case <-c.leave:
			return nil
		case <-ticks:
			c.handleTick()
		case <-resyncCh:
			go c.fetchTTL(ctx)
		case fn := <-c.actions:
			fn()
		}
	}
}

// Send posts a message. Empty or whitespace-only text is rejected without a
// network call. The message is not appended locally; it shows up through
// the next refresh.
func (c *Controller) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	if !c.State().Active() {
		return ErrRoomDestroyed
	}

	if err := c.gateway.PostMessage(ctx, c.roomID, c.sender, text); err != nil {
		if errors.Is(err, ErrRoomGone) {
			c.transition(CauseRemoteInitiated)
		}
		return fmt.Errorf("send message: %w", err)
	}

	if c.opts.RefreshAfterSend {
		c.store.Hint()
	}
	return nil
}

// Destroy deletes the room. On success the session is destroyed with
// CauseUserInitiated; on failure the state is unchanged and the caller may
// retry. Destroying an already destroyed session is a no-op.
func (c *Controller) Destroy(ctx context.Context) error {
	if !c.State().Active() {
		return nil
	}

	if err := c.gateway.DeleteRoom(ctx, c.roomID); err != nil && !errors.Is(err, ErrRoomGone) {
		return fmt.Errorf("destroy room: %w", err)
	}

	c.transition(CauseUserInitiated)
	return nil
}

// transition is the single entry point to StateDestroyed. The first caller
// wins; later callers observe StateDestroyed and do nothing.
func (c *Controller) transition(cause Cause) bool {
	c.mu.Lock()
	if c.lifecycle.State == StateDestroyed {
		c.mu.Unlock()
		return false
	}
	c.lifecycle = Lifecycle{State: StateDestroyed, Cause: cause}
	lc := c.lifecycle
	c.mu.Unlock()

	c.release()
	close(c.leave)

	log.Info().
		Str("room_id", c.roomID).
		Str("cause", cause.String()).
		Msg("room destroyed")

	if c.opts.OnLeave != nil {
		c.opts.OnLeave(lc)
	}
	c.changed()
	return true
}

// release stops the tickers and the subscription and closes the store, once.
func (c *Controller) release() {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return
	}
	c.released = true
	if c.ticker != nil {
		c.ticker.Stop()
	}
	if c.resync != nil {
		c.resync.Stop()
	}
	stop := c.stop
	c.mu.Unlock()

	if stop != nil {
		stop()
	}

	c.bridge.Unsubscribe()
	c.store.Close()
}

// post hands fn to the Run loop. It gives up once the loop is gone.
func (c *Controller) post(fn func()) {
	select {
	case c.actions <- fn:
	case <-c.done:
	case <-c.leave:
	}
}

// subscribe attaches the realtime bridge. Realtime is optional: when it is
// unavailable, expiry still closes the room.
func (c *Controller) subscribe(ctx context.Context) {
	err := c.bridge.Subscribe(ctx, c.roomID, models.AllEventKinds, c.onEvent)
	if err == nil || errors.Is(err, ErrBridgeClosed) || !c.State().Active() {
		return
	}
	log.Warn().Err(err).Str("room_id", c.roomID).Msg("realtime unavailable, relying on ttl expiry")
	c.report(err)
}

func (c *Controller) onEvent(ev models.ChannelEvent) {
	c.post(func() {
		c.handleEvent(ev)
	})
}

func (c *Controller) handleEvent(ev models.ChannelEvent) {
	if !c.State().Active() {
		return
	}

	switch ev.Kind {
	case models.EventKindNewMessage:
		c.store.Hint()
	case models.EventKindRoomDestroyed:
		c.transition(CauseRemoteInitiated)
	default:
		log.Debug().Str("kind", string(ev.Kind)).Msg("ignoring unknown room event")
	}
}

func (c *Controller) handleTick() {
	if !c.State().Active() {
		return
	}
	c.ttl.Tick()
	c.changed()
}

func (c *Controller) fetchTTL(ctx context.Context) {
	seq := c.ttlRequested.Add(1)
	ttl, err := c.gateway.GetTTL(ctx, c.roomID)
	sample := models.TTLSample{ObservedAt: c.clock.Now(), TTLSeconds: ttl}
	c.post(func() {
		c.applyTTL(seq, sample, err)
	})
}

// applyTTL installs a fresh sample. Results of fetches older than the last
// installed sample are dropped. A failed fetch leaves the countdown
// untouched; a zero sample destroys the room without waiting for a tick.
func (c *Controller) applyTTL(seq uint64, sample models.TTLSample, err error) {
	if !c.State().Active() {
		return
	}
	if seq < c.ttlApplied {
		log.Debug().
			Str("room_id", c.roomID).
			Uint64("seq", seq).
			Uint64("applied", c.ttlApplied).
			Msg("dropping stale ttl sample")
		return
	}
	if err != nil {
		c.handleError(fmt.Errorf("fetch ttl: %w", err))
		return
	}

	c.mu.Lock()
	if c.ticker != nil && !c.released {
		c.ticker.Reset(tickInterval)
	}
	c.mu.Unlock()

	if err := c.ttl.Sync(sample); err != nil {
		c.handleError(err)
		return
	}
	c.ttlApplied = seq

	log.Debug().
		Str("room_id", c.roomID).
		Int("ttl_seconds", sample.TTLSeconds).
		Msg("ttl synchronized")

	if sample.TTLSeconds == 0 {
		c.transition(CauseExpired)
		return
	}
	c.changed()
}

// handleError treats ErrRoomGone as a remote destroy and reports anything else.
func (c *Controller) handleError(err error) {
	if errors.Is(err, ErrRoomGone) {
		c.transition(CauseRemoteInitiated)
		return
	}
	log.Warn().Err(err).Str("room_id", c.roomID).Msg("room operation failed")
	c.report(err)
}

func (c *Controller) report(err error) {
	if c.opts.OnError != nil {
		c.opts.OnError(err)
	}
}

func (c *Controller) changed() {
	if c.opts.OnChange != nil {
		c.opts.OnChange()
	}
}
