package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/vanish/go/internal/config"
	"github.com/mcdev12/vanish/go/internal/room"
	"github.com/mcdev12/vanish/go/internal/username"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: vanish <room-id>")
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Msg("vanish exited")
		os.Exit(1)
	}
}

// run joins one room and returns once the session ends. Every resource it
// acquires is released before it returns.
func run(roomID string, in io.Reader, out io.Writer) error {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return errors.New("room id is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, keeping info")
	}

	name, err := username.LoadOrCreate(cfg.UsernameFile)
	if err != nil {
		return fmt.Errorf("load username: %w", err)
	}

	services, err := setupServices(cfg)
	if err != nil {
		return fmt.Errorf("setup services: %w", err)
	}
	defer services.Close()

	// Context for leaving the room view
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	view := newRenderer(out, name)

	var controller *room.Controller
	controller = room.NewController(roomID, name, services.Gateway, services.Source, room.Options{
		Clock:             clockwork.NewRealClock(),
		TTLResyncInterval: cfg.Session.TTLResyncInterval,
		RefreshAfterSend:  cfg.Session.RefreshAfterSend,
		OnLeave:           view.Left,
		OnChange:          func() { view.Render(controller) },
		OnError:           view.Error,
	})

	view.Welcome(controller.RoomID(), shareLink(cfg.API.URL, controller.RoomID()))

	go readCommands(ctx, in, controller, view, stop)

	if err := controller.Run(ctx); err != nil {
		return fmt.Errorf("room %s: %w", controller.RoomID(), err)
	}

	lc := controller.State()
	log.Info().
		Str("room_id", controller.RoomID()).
		Str("sender", controller.Sender()).
		Str("state", lc.State.String()).
		Str("cause", lc.Cause.String()).
		Msg("left room")
	return nil
}

// commander is the write side of a room session.
type commander interface {
	Send(ctx context.Context, text string) error
	Destroy(ctx context.Context) error
}

// readCommands turns input lines into room actions until in ends or the
// user quits.
func readCommands(ctx context.Context, in io.Reader, session commander, view *renderer, quit func()) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit":
			quit()
			return
		case "/destroy":
			if err := session.Destroy(ctx); err != nil {
				view.Error(err)
			}
		default:
			if err := session.Send(ctx, line); err != nil {
				if errors.Is(err, room.ErrRoomDestroyed) {
					return
				}
				view.Error(err)
			}
		}
	}
}

func shareLink(baseURL, roomID string) string {
	return strings.TrimRight(baseURL, "/") + "/room/" + roomID
}
