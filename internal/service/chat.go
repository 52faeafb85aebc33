package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/forgo/huddle/api/internal/database"
	"github.com/forgo/huddle/api/internal/model"
	"github.com/forgo/huddle/api/internal/pubsub"
)

// Chat delivery outcomes reported to the observer
const (
	ChatDelivered   = "delivered"
	ChatDropped     = "dropped"
	ChatRelayed     = "relayed"
	ChatRelayFailed = "relay_failed"
)

const defaultChatBuffer = 100

var errHubClosed = errors.New("chat hub closed")

// ChatClient is one connection subscribed to an activity's chat
type ChatClient struct {
	ID         string
	ActivityID string
	Username   string
	Messages   chan *model.ChatMessage
	Done       chan struct{}
}

// ChatActivityLookup checks that an activity exists
type ChatActivityLookup interface {
	GetByID(ctx context.Context, id string) (*model.Activity, error)
}

// ChatBackplane fans messages out to other API instances
type ChatBackplane interface {
	Publish(ctx context.Context, env pubsub.Envelope) error
}

// ChatHub fans chat messages out to every client of an activity. Delivery
// is at-most-once: a client whose buffer is full misses the message, and
// nothing is stored for clients that connect later.
type ChatHub struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]*ChatClient // activityID -> clientID -> client
	closed bool

	activities ChatActivityLookup
	users      UserLookup
	accessor   UserAccessor
	backplane  ChatBackplane
	origin     string
	buffer     int
	observer   func(outcome string)
	now        func() time.Time

	dropped atomic.Uint64
}

// ChatHubConfig holds configuration for the chat hub
type ChatHubConfig struct {
	Activities ChatActivityLookup
	Users      UserLookup
	Accessor   UserAccessor
	Backplane  ChatBackplane // optional
	BufferSize int           // per client, defaults to 100
	Observer   func(outcome string)
	Now        func() time.Time
}

// NewChatHub creates a new chat hub
func NewChatHub(cfg ChatHubConfig) *ChatHub {
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = defaultChatBuffer
	}
	observer := cfg.Observer
	if observer == nil {
		observer = func(string) {}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &ChatHub{
		rooms:      make(map[string]map[string]*ChatClient),
		activities: cfg.Activities,
		users:      cfg.Users,
		accessor:   cfg.Accessor,
		backplane:  cfg.Backplane,
		origin:     uuid.NewString(),
		buffer:     buffer,
		observer:   observer,
		now:        now,
	}
}

// Origin identifies this hub on the backplane
func (h *ChatHub) Origin() string {
	return h.origin
}

// Join subscribes the caller to an activity's chat
func (h *ChatHub) Join(ctx context.Context, activityID string) (*ChatClient, error) {
	username := h.accessor.Username(ctx)
	if username == "" {
		return nil, ErrUnauthenticated
	}

	_, err := h.activities.GetByID(ctx, activityID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}

	client := &ChatClient{
		ID:         uuid.NewString(),
		ActivityID: activityID,
		Username:   username,
		Messages:   make(chan *model.ChatMessage, h.buffer),
		Done:       make(chan struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, errHubClosed
	}
	if h.rooms[activityID] == nil {
		h.rooms[activityID] = make(map[string]*ChatClient)
	}
	h.rooms[activityID][client.ID] = client
	return client, nil
}

// Leave removes a client and closes its channels
func (h *ChatHub) Leave(client *ChatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.ActivityID]
	if !ok {
		return
	}
	if _, ok := room[client.ID]; ok {
		close(client.Done)
		close(client.Messages)
		delete(room, client.ID)
	}
	if len(room) == 0 {
		delete(h.rooms, client.ActivityID)
	}
}

// Post stamps a comment with the caller's identity and broadcasts it
func (h *ChatHub) Post(ctx context.Context, in model.ChatInbound) (model.Result[*model.ChatMessage], error) {
	user, err := currentUser(ctx, h.accessor, h.users)
	if err != nil {
		return model.Result[*model.ChatMessage]{}, err
	}

	msg := &model.ChatMessage{
		ID:          uuid.NewString(),
		ActivityID:  in.ActivityID,
		Body:        in.Body,
		Username:    user.UserName,
		DisplayName: user.DisplayName,
		Image:       user.MainPhotoURL(),
		CreatedAt:   h.now().UTC(),
	}
	h.deliver(msg)

	if h.backplane != nil {
		if err := h.backplane.Publish(ctx, pubsub.Envelope{Origin: h.origin, Message: *msg}); err != nil {
			h.observer(ChatRelayFailed)
			slog.WarnContext(ctx, "failed to relay chat message", "activity_id", in.ActivityID, "error", err)
		}
	}
	return model.Success(msg), nil
}

// Relay delivers a message received from another instance. Messages this
// hub published itself are ignored.
func (h *ChatHub) Relay(env pubsub.Envelope) {
	if env.Origin == h.origin {
		return
	}
	msg := env.Message
	h.observer(ChatRelayed)
	h.deliver(&msg)
}

func (h *ChatHub) deliver(msg *model.ChatMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[msg.ActivityID] {
		select {
		case client.Messages <- msg:
			h.observer(ChatDelivered)
		default:
			h.dropped.Add(1)
			h.observer(ChatDropped)
		}
	}
}

// ClientCount returns the number of clients connected to an activity
func (h *ChatHub) ClientCount(activityID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[activityID])
}

// Dropped returns how many deliveries were skipped because a buffer was full
func (h *ChatHub) Dropped() uint64 {
	return h.dropped.Load()
}

// Close disconnects every client. Later joins fail.
func (h *ChatHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for activityID, room := range h.rooms {
		for _, client := range room {
			close(client.Done)
			close(client.Messages)
		}
		delete(h.rooms, activityID)
	}
}
