package http

import (
	"log/slog"
	"net/http"
	"time"

	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/ports"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	// writeTimeout bounds a single frame write to a slow client.
	writeTimeout = 10 * time.Second

	// pingInterval keeps the connection alive through idle stretches
	// between position updates.
	pingInterval = 30 * time.Second
)

// WSPositionUpdate mirrors messages sent over the delivery WebSocket.
type WSPositionUpdate struct {
	Type       string       `json:"type"` // "position_update" or "phase_change"
	DeliveryID string       `json:"deliveryId"`
	Timestamp  time.Time    `json:"timestamp"`
	Position   *LocationDTO `json:"position,omitempty"`
	Phase      *string      `json:"phase,omitempty"`
	IntervalMs int64        `json:"intervalMs"`
}

// StreamHandler upgrades GET /ws/deliveries/:id to a WebSocket and forwards
// live events for that delivery. Subscription starts with the next published
// event; reconnecting clients fetch a snapshot via the REST API first.
type StreamHandler struct {
	subscriber ports.EventSubscriber
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewStreamHandler creates a handler bridging the event fan-out to WebSocket clients.
func NewStreamHandler(subscriber ports.EventSubscriber, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		subscriber: subscriber,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin enforcement belongs to the gateway in front of us.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger.With("component", "ws_stream"),
	}
}

// Stream handles GET /ws/deliveries/:id.
func (h *StreamHandler) Stream(ctx echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid delivery id: "+err.Error())
	}

	events, cancel, err := h.subscriber.Subscribe(ctx.Request().Context(), deliveryID)
	if err != nil {
		return mapDomainError(ctx, err, "Failed to subscribe to delivery events")
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		// Upgrade has already written its own error response.
		return nil
	}
	defer conn.Close()

	// Read pump: discard client frames, notice the close handshake.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	log := h.logger.With("delivery_id", deliveryID.String())
	log.InfoContext(ctx.Request().Context(), "Observer connected")

	for {
		select {
		case event, ok := <-events:
			if !ok {
				// Topic retired: delivery reached a terminal state.
				deadline := time.Now().Add(writeTimeout)
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "delivery completed"),
					deadline)
				return nil
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if writeErr := conn.WriteJSON(toWSMessage(event)); writeErr != nil {
				log.InfoContext(ctx.Request().Context(), "Observer write failed, dropping connection",
					"error", writeErr)
				return nil
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if pingErr := conn.WriteMessage(websocket.PingMessage, nil); pingErr != nil {
				return nil
			}

		case <-closed:
			log.InfoContext(ctx.Request().Context(), "Observer disconnected")
			return nil

		case <-ctx.Request().Context().Done():
			return nil
		}
	}
}

func toWSMessage(event delivery.PositionUpdateEvent) WSPositionUpdate {
	msg := WSPositionUpdate{
		Type:       "position_update",
		DeliveryID: event.DeliveryID.String(),
		Timestamp:  event.Timestamp,
		Position:   locationToDTO(event.Position),
		IntervalMs: event.Interval.Milliseconds(),
	}

	if event.Phase != nil {
		msg.Type = "phase_change"
		phase := event.Phase.String()
		msg.Phase = &phase
	}

	return msg
}
