package model

import "time"

const MaxChatBodyLength = 2000

// ChatMessage is a comment broadcast to everyone connected to an activity.
// Messages are not persisted.
type ChatMessage struct {
	ID          string    `json:"id"`
	ActivityID  string    `json:"activityId"`
	Body        string    `json:"body"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Image       *string   `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ChatInbound is a frame sent by a chat client. ActivityID is taken from
// the connection, never from the frame.
type ChatInbound struct {
	ActivityID string `json:"-" validate:"required"`
	Body       string `json:"body" validate:"notblank,max=2000"`
}

func (c ChatInbound) Validate() []FieldError {
	return ValidateStruct(c)
}
