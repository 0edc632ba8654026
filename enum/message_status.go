package enum

type MessageStatus string

const (
	MessageStatusSent MessageStatus = "sent"
	MessageStatusRead MessageStatus = "read"
)
