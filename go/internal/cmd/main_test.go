package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mcdev12/vanish/go/internal/models"
	"github.com/mcdev12/vanish/go/internal/room"
)

type stubView struct {
	messages  []models.Message
	seconds   int
	known     bool
	lifecycle room.Lifecycle
}

func (v *stubView) Messages() []models.Message { return v.messages }
func (v *stubView) Countdown() (int, bool)     { return v.seconds, v.known }
func (v *stubView) State() room.Lifecycle      { return v.lifecycle }

type mockSession struct {
	mock.Mock
}

func (m *mockSession) Send(ctx context.Context, text string) error {
	return m.Called(text).Error(0)
}

func (m *mockSession) Destroy(ctx context.Context) error {
	return m.Called().Error(0)
}

func TestRenderPrintsNewMessagesOnce(t *testing.T) {
	var out bytes.Buffer
	r := newRenderer(&out, "anonymous-dog12345")
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)

	view := &stubView{messages: []models.Message{
		{ID: "1", Sender: "anonymous-dog12345", Text: "hello", Timestamp: ts},
		{ID: "2", Sender: "anonymous-hawkabcde", Text: "hi", Timestamp: ts},
	}}
	r.Render(view)
	r.Render(view)

	assert.Equal(t, "[03:04:05] YOU: hello\n[03:04:05] anonymous-hawkabcde: hi\n", out.String())
}

func TestRenderAnnouncesCountdown(t *testing.T) {
	var out bytes.Buffer
	r := newRenderer(&out, "me")

	view := &stubView{seconds: 600, known: true}
	r.Render(view)
	r.Render(view)
	view.seconds = 599
	r.Render(view)
	view.seconds = 30
	r.Render(view)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"SELF-DESTRUCT IN 10:00",
		ansiRed + "SELF-DESTRUCT IN 0:30" + ansiReset,
	}, lines)
}

func TestRenderStopsAfterLeave(t *testing.T) {
	var out bytes.Buffer
	r := newRenderer(&out, "me")

	r.Left(room.Lifecycle{State: room.StateDestroyed, Cause: room.CauseExpired})
	r.Left(room.Lifecycle{State: room.StateDestroyed, Cause: room.CauseExpired})
	r.Render(&stubView{messages: []models.Message{{ID: "1", Text: "late"}}})

	assert.Equal(t, "ROOM DESTROYED (timer expired)\n", out.String())
}

func TestShouldAnnounce(t *testing.T) {
	assert.True(t, shouldAnnounce(120))
	assert.False(t, shouldAnnounce(119))
	assert.True(t, shouldAnnounce(50))
	assert.False(t, shouldAnnounce(45))
	assert.True(t, shouldAnnounce(3))
}

func TestReadCommands(t *testing.T) {
	session := &mockSession{}
	session.On("Send", "hello there").Return(nil).Once()
	session.On("Send", "again").Return(errors.New("boom")).Once()
	session.On("Destroy").Return(nil).Once()

	var out bytes.Buffer
	quit := false
	in := strings.NewReader("hello there\n\n  \nagain\n/destroy\n/quit\nnever sent\n")

	readCommands(context.Background(), in, session, newRenderer(&out, "me"), func() { quit = true })

	session.AssertExpectations(t)
	assert.True(t, quit)
	assert.Equal(t, "! boom\n", out.String())
}

func TestReadCommandsStopsWhenDestroyed(t *testing.T) {
	session := &mockSession{}
	session.On("Send", "first").Return(room.ErrRoomDestroyed).Once()

	readCommands(context.Background(), strings.NewReader("first\nsecond\n"), session, newRenderer(&bytes.Buffer{}, "me"), func() {})

	session.AssertExpectations(t)
}

func TestShareLink(t *testing.T) {
	assert.Equal(t, "http://localhost:3000/room/abc", shareLink("http://localhost:3000/", "abc"))
}
