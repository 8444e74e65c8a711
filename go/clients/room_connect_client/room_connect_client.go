package room_connect_client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"

	"github.com/mcdev12/vanish/go/internal/models"
	"github.com/mcdev12/vanish/go/internal/room"
)

// Config holds configuration for the Connect room client
type Config struct {
	BaseURL   string
	AuthToken string
	Timeout   time.Duration
	// H2C speaks cleartext HTTP/2 to servers mounted behind h2c.NewHandler.
	H2C bool
}

// DefaultConfig returns default Connect client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8080",
		Timeout: 30 * time.Second,
	}
}

// RoomConnectClient implements room.Gateway over the Connect protocol.
type RoomConnectClient struct {
	getTtl       *connect.Client[GetTtlRequest, GetTtlResponse]
	listMessages *connect.Client[ListMessagesRequest, ListMessagesResponse]
	postMessage  *connect.Client[PostMessageRequest, PostMessageResponse]
	deleteRoom   *connect.Client[DeleteRoomRequest, DeleteRoomResponse]
}

var _ room.Gateway = (*RoomConnectClient)(nil)

// NewRoomConnectClient creates a client for the room service at config.BaseURL.
func NewRoomConnectClient(config Config) *RoomConnectClient {
	return NewRoomConnectClientWithHTTP(newHTTPClient(config), config)
}

// NewRoomConnectClientWithHTTP creates a client over an existing HTTP client.
func NewRoomConnectClientWithHTTP(httpClient connect.HTTPClient, config Config) *RoomConnectClient {
	opts := []connect.ClientOption{
		connect.WithCodec(jsonCodec{}),
	}
	if config.AuthToken != "" {
		opts = append(opts, connect.WithInterceptors(authInterceptor(config.AuthToken)))
	}

	return &RoomConnectClient{
		getTtl:       connect.NewClient[GetTtlRequest, GetTtlResponse](httpClient, config.BaseURL+GetTtlProcedure, opts...),
		listMessages: connect.NewClient[ListMessagesRequest, ListMessagesResponse](httpClient, config.BaseURL+ListMessagesProcedure, opts...),
		postMessage:  connect.NewClient[PostMessageRequest, PostMessageResponse](httpClient, config.BaseURL+PostMessageProcedure, opts...),
		deleteRoom:   connect.NewClient[DeleteRoomRequest, DeleteRoomResponse](httpClient, config.BaseURL+DeleteRoomProcedure, opts...),
	}
}

func newHTTPClient(config Config) *http.Client {
	client := &http.Client{Timeout: config.Timeout}
	if config.H2C {
		client.Transport = &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
		}
	}
	return client
}

func authInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("x-auth-token", token)
			return next(ctx, req)
		}
	}
}

func (c *RoomConnectClient) GetTTL(ctx context.Context, roomID string) (int, error) {
	resp, err := c.getTtl.CallUnary(ctx, connect.NewRequest(&GetTtlRequest{RoomID: roomID}))
	if err != nil {
		return 0, mapError("get ttl", err)
	}
	return resp.Msg.Ttl, nil
}

func (c *RoomConnectClient) ListMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	resp, err := c.listMessages.CallUnary(ctx, connect.NewRequest(&ListMessagesRequest{RoomID: roomID}))
	if err != nil {
		return nil, mapError("list messages", err)
	}

	messages := make([]models.Message, 0, len(resp.Msg.Messages))
	for _, m := range resp.Msg.Messages {
		messages = append(messages, m.toModel())
	}
	return messages, nil
}

func (c *RoomConnectClient) PostMessage(ctx context.Context, roomID, sender, text string) error {
	req := &PostMessageRequest{RoomID: roomID, Sender: sender, Text: text}
	if _, err := c.postMessage.CallUnary(ctx, connect.NewRequest(req)); err != nil {
		return mapError("post message", err)
	}
	return nil
}

func (c *RoomConnectClient) DeleteRoom(ctx context.Context, roomID string) error {
	if _, err := c.deleteRoom.CallUnary(ctx, connect.NewRequest(&DeleteRoomRequest{RoomID: roomID})); err != nil {
		return mapError("delete room", err)
	}
	return nil
}

func mapError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch connect.CodeOf(err) {
	case connect.CodeNotFound:
		return fmt.Errorf("%s: %w", op, room.ErrRoomGone)
	case connect.CodeUnavailable, connect.CodeDeadlineExceeded, connect.CodeUnknown,
		connect.CodeResourceExhausted, connect.CodeAborted:
		return room.NewTransientError(op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
