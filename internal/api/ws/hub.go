package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	redisstore "github.com/gosuda/slackdone/internal/store/redis"
)

// Broker is the pub/sub transport behind the hub.
// *redisstore.PubSub satisfies this interface.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// Hub fans board events out to WebSocket clients through a Broker, so every
// server instance sees changes made through any other.
type Hub struct {
	broker         Broker
	originPatterns []string
	logger         zerolog.Logger
}

// NewHub creates a new WebSocket hub. originPatterns are passed to the
// handshake; an empty list only accepts same-origin clients.
func NewHub(broker Broker, originPatterns []string, logger zerolog.Logger) *Hub {
	return &Hub{broker: broker, originPatterns: originPatterns, logger: logger}
}

// PublishBoard announces a change to every client watching the event's list.
func (h *Hub) PublishBoard(ctx context.Context, ev BoardEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("ws.Hub.PublishBoard: %w", err)
	}
	if err := h.broker.Publish(ctx, redisstore.BoardChannel(ev.WorkspaceID, ev.ListID), payload); err != nil {
		return fmt.Errorf("ws.Hub.PublishBoard: %w", err)
	}
	return nil
}

// ServeBoard streams events of one list to a WebSocket client.
// Route: /ws/board/{workspaceID}/{listID}.
func (h *Hub) ServeBoard(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")
	listID := chi.URLParam(r, "listID")
	if workspaceID == "" || listID == "" {
		http.Error(w, "workspace and list id are required", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		h.logger.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	// The client never sends data; CloseRead handles control frames and
	// cancels ctx when the peer goes away.
	ctx := conn.CloseRead(r.Context())
	channel := redisstore.BoardChannel(workspaceID, listID)

	messages, cleanup, err := h.broker.Subscribe(ctx, channel)
	if err != nil {
		h.logger.Error().Err(err).Str("channel", channel).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, ok := <-messages:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
				h.logger.Debug().Err(err).Msg("websocket write")
				return
			}
		}
	}
}
