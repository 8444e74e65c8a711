package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/mcdev12/vanish/go/internal/models"
	"github.com/mcdev12/vanish/go/internal/room"
)

const (
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// sessionView is the read side of a room session.
type sessionView interface {
	Messages() []models.Message
	Countdown() (int, bool)
	State() room.Lifecycle
}

// renderer prints a room session as an append-only terminal log.
type renderer struct {
	out  io.Writer
	self string

	mu        sync.Mutex
	seen      map[string]bool
	announced int
	left      bool
}

func newRenderer(out io.Writer, self string) *renderer {
	return &renderer{
		out:       out,
		self:      self,
		seen:      make(map[string]bool),
		announced: -1,
	}
}

func (r *renderer) Welcome(roomID, link string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "ROOM %s\n", roomID)
	fmt.Fprintf(r.out, "share: %s\n", link)
	fmt.Fprintf(r.out, "you are %s. type to chat, /destroy to destroy the room, /quit to leave.\n", r.self)
}

// Render prints messages not shown yet and, at announcement points, the
// self-destruct countdown.
func (r *renderer) Render(view sessionView) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.left || !view.State().Active() {
		return
	}

	for _, m := range view.Messages() {
		if r.seen[m.ID] {
			continue
		}
		r.seen[m.ID] = true
		fmt.Fprintln(r.out, formatMessage(m, r.self))
	}

	seconds, known := view.Countdown()
	if known && seconds != r.announced && shouldAnnounce(seconds) {
		r.announced = seconds
		fmt.Fprintln(r.out, formatCountdown(seconds, known))
	}
}

func (r *renderer) Error(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "! %v\n", err)
}

func (r *renderer) Left(lc room.Lifecycle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.left {
		return
	}
	r.left = true
	fmt.Fprintf(r.out, "ROOM DESTROYED (%s)\n", describeCause(lc.Cause))
}

func formatMessage(m models.Message, self string) string {
	sender := m.Sender
	if m.IsFrom(self) {
		sender = "YOU"
	}
	return fmt.Sprintf("[%s] %s: %s", m.Timestamp.Local().Format("15:04:05"), sender, m.Text)
}

func formatCountdown(seconds int, known bool) string {
	line := "SELF-DESTRUCT IN " + room.FormatCountdown(seconds, known)
	if room.Urgent(seconds, known) {
		return ansiRed + line + ansiReset
	}
	return line
}

// shouldAnnounce limits countdown output to whole minutes, every ten
// seconds of the last minute and each of the final five.
func shouldAnnounce(seconds int) bool {
	switch {
	case seconds <= 5:
		return true
	case seconds < 60:
		return seconds%10 == 0
	default:
		return seconds%60 == 0
	}
}

func describeCause(cause room.Cause) string {
	switch cause {
	case room.CauseExpired:
		return "timer expired"
	case room.CauseUserInitiated:
		return "you destroyed it"
	case room.CauseRemoteInitiated:
		return "destroyed by another participant"
	default:
		return cause.String()
	}
}
