package res

type ReactionResponse struct {
	Emoji  string `json:"emoji"`
	UserID string `json:"userId"`
}

type MessageResponse struct {
	ID         string             `json:"id"`
	SenderID   string             `json:"senderId"`
	ReceiverID string             `json:"receiverId"`
	Text       string             `json:"text"`
	Image      string             `json:"image,omitempty"`
	Status     string             `json:"status"`
	ReadAt     string             `json:"readAt,omitempty"`
	Reactions  []ReactionResponse `json:"reactions"`
	CreatedAt  string             `json:"createdAt"`
	UpdatedAt  string             `json:"updatedAt"`
}

type MessageReadResponse struct {
	Updated int64 `json:"updated"`
}

type UploadResponse struct {
	URL string `json:"url"`
}
