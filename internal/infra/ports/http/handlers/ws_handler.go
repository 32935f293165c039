package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/lingopeer/lingopeer/internal/application/config"
	"github.com/lingopeer/lingopeer/internal/application/constant"
	"github.com/lingopeer/lingopeer/internal/application/metric"
	"github.com/lingopeer/lingopeer/internal/infra/appctx"
	"github.com/lingopeer/lingopeer/internal/room"
)

// Application close code for a capacity rejection, distinguishable from
// normal closure on the client side.
const closeRoomFull = 4001

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

type WebSocketHandler struct {
	upgrader   *websocket.Upgrader
	dispatcher *room.Dispatcher
}

func NewWebSocketHandler(cfg *config.Config, dispatcher *room.Dispatcher) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				return r.Header.Get("Origin") == cfg.Domain
			},
		},
		dispatcher: dispatcher,
	}
}

func (h *WebSocketHandler) Handle(c echo.Context) error {
	if !websocket.IsWebSocketUpgrade(c.Request()) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "websocket upgrade required"})
	}

	identity, ok := appctx.IdentityFrom(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing identity"})
	}

	roomID := c.QueryParam("room")
	if roomID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "room is required"})
	}

	capacityHint, _ := strconv.Atoi(c.QueryParam("capacity"))

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("WebSocket upgrade error", slog.Any(constant.Error, err))
		return err
	}
	defer ws.Close()

	metric.IncrementWSActiveConnections()
	defer metric.DecrementWSActiveConnections()

	sink := room.NewConnSink(ws)

	actor, err := h.dispatcher.Admit(room.AdmitRequest{
		ParticipantID: identity.ParticipantID,
		Name:          identity.DisplayName,
		RoomID:        roomID,
		CapacityHint:  capacityHint,
		Sink:          sink,
	})
	if err != nil {
		h.reject(ws, identity.ParticipantID, roomID, err)
		return nil
	}
	defer actor.Remove(identity.ParticipantID)

	if err := ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return nil
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	go keepalive(c, sink)

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("WebSocket read error",
					slog.String(constant.ParticipantID, identity.ParticipantID),
					slog.Any(constant.Error, err),
				)
			}
			return nil
		}

		actor.HandleMessage(identity.ParticipantID, msg)
	}
}

func (h *WebSocketHandler) reject(ws *websocket.Conn, participantID, roomID string, err error) {
	slog.Info("admission rejected",
		slog.String(constant.RoomID, roomID),
		slog.String(constant.ParticipantID, participantID),
		slog.Any(constant.Error, err),
	)

	code := websocket.ClosePolicyViolation
	reason := "admission rejected"
	if errors.Is(err, room.ErrRoomFull) {
		code = closeRoomFull
		reason = "room full"
	}

	deadline := time.Now().Add(time.Second)
	_ = ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}

func keepalive(c echo.Context, sink *room.ConnSink) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := sink.Ping(); err != nil {
				return
			}
		case <-c.Request().Context().Done():
			return
		}
	}
}
