package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/forgo/huddle/api/internal/metrics"
	"github.com/forgo/huddle/api/internal/model"
	"github.com/forgo/huddle/api/internal/service"
)

const (
	chatWriteWait  = 10 * time.Second
	chatPongWait   = 60 * time.Second
	chatPingPeriod = (chatPongWait * 9) / 10
	chatMaxFrame   = 4096
)

// ChatHandler upgrades connections and pumps frames between a websocket
// and the chat hub.
type ChatHandler struct {
	hub      *service.ChatHub
	upgrader websocket.Upgrader
}

// NewChatHandler creates a chat handler. Browser upgrades are only
// accepted from allowedOrigins; "*" allows any origin.
func NewChatHandler(hub *service.ChatHub, allowedOrigins []string) *ChatHandler {
	return &ChatHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		// Same-host pages are always allowed
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

// Connect handles GET /chat?activityId=
func (h *ChatHandler) Connect(w http.ResponseWriter, r *http.Request) {
	activityID := r.URL.Query().Get("activityId")
	if activityID == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{{Field: "activityId", Message: "is required"}}))
		return
	}

	client, err := h.hub.Join(r.Context(), activityID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the client
		h.hub.Leave(client)
		slog.WarnContext(r.Context(), "chat upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer func() { _ = conn.Close() }()

	metrics.ChatConnected(1)
	defer metrics.ChatConnected(-1)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writePump(conn, client)
	}()

	h.readPump(r, conn, client)
	h.hub.Leave(client)
	<-writerDone
}

// readPump posts every inbound frame until the peer goes away. It runs on
// the request goroutine so the caller's identity stays in the context.
func (h *ChatHandler) readPump(r *http.Request, conn *websocket.Conn, client *service.ChatClient) {
	ctx := r.Context()
	conn.SetReadLimit(chatMaxFrame)
	_ = conn.SetReadDeadline(time.Now().Add(chatPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(chatPongWait))
	})

	for {
		var in model.ChatInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.DebugContext(ctx, "chat connection lost",
					slog.String("activity_id", client.ActivityID),
					slog.String("error", err.Error()),
				)
			}
			return
		}
		in.ActivityID = client.ActivityID

		_, err := service.Send(ctx, "chat.post", in, h.hub.Post)
		var verr *model.ValidationError
		switch {
		case errors.As(err, &verr):
			slog.DebugContext(ctx, "chat frame rejected", slog.String("error", verr.Error()))
		case err != nil:
			slog.ErrorContext(ctx, "chat post failed",
				slog.String("activity_id", client.ActivityID),
				slog.String("error", err.Error()),
			)
			return
		}
	}
}

// writePump is the only writer on conn. It exits when the client's channel
// closes or a write fails.
func (h *ChatHandler) writePump(conn *websocket.Conn, client *service.ChatClient) {
	ticker := time.NewTicker(chatPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.Messages:
			_ = conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				_ = conn.Close()
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}
