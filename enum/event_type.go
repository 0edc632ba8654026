package enum

type EventType string

const (
	EventMessageNew      EventType = "message:new"
	EventMessageRead     EventType = "message:read"
	EventMessageReaction EventType = "message:reaction"
	EventMessageUpdated  EventType = "message:updated"
	EventMessageDeleted  EventType = "message:deleted"
	EventContactNew      EventType = "contact:new"
	EventPresence        EventType = "presence"
	EventTyping          EventType = "typing"
)
