package req

type MessageRequest struct {
	ReceiverID string `json:"receiverId" validate:"required"`
	Text       string `json:"text" validate:"max=4096"`
	Image      string `json:"image" validate:"omitempty,url"`
}

type EditMessageRequest struct {
	Text string `json:"text" validate:"max=4096"`
}

type MessageReadRequest struct {
	ContactID string `json:"contactId" validate:"required"`
}

type ReactionRequest struct {
	MessageID string `json:"messageId" validate:"required"`
	Reaction  string `json:"reaction" validate:"required,max=32"`
}

// TypingRequest is the only frame a websocket client sends.
type TypingRequest struct {
	Type       string `json:"type"`
	ReceiverID string `json:"receiverId"`
	Typing     bool   `json:"typing"`
}
