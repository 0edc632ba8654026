package dto

import "messenger-api/enum"

// Event is a server push frame sent over the websocket hub.
type Event struct {
	Type enum.EventType `json:"type"`
	Data any            `json:"data"`
}

type TypingEvent struct {
	SenderID string `json:"senderId"`
	Typing   bool   `json:"typing"`
}

type PresenceEvent struct {
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}

type MessageReadEvent struct {
	ReaderID string `json:"readerId"`
	Updated  int64  `json:"updated"`
	ReadAt   string `json:"readAt"`
}

type MessageDeletedEvent struct {
	MessageID string `json:"messageId"`
	SenderID  string `json:"senderId"`
}
