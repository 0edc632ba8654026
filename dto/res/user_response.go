package res

type UserResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Bio        string `json:"bio"`
	Avatar     string `json:"avatar,omitempty"`
	IsVerified bool   `json:"isVerified"`
	CreatedAt  string `json:"createdAt"`
}

type ContactResponse struct {
	UserResponse
	LastMessage *MessageResponse `json:"lastMessage,omitempty"`
	UnreadCount int64            `json:"unreadCount"`
}
