package entity

import (
	"time"

	"messenger-api/enum"
)

type Message struct {
	BaseEntity
	SenderID   string             `json:"senderId" gorm:"type:varchar(36);not null;index:idx_message_pair"`
	ReceiverID string             `json:"receiverId" gorm:"type:varchar(36);not null;index:idx_message_pair"`
	Text       string             `json:"text" gorm:"type:text"`
	Image      string             `json:"image,omitempty" gorm:"type:text"`
	Status     enum.MessageStatus `json:"status" gorm:"type:varchar(20);default:'sent'"`
	ReadAt     *time.Time         `json:"readAt,omitempty"`

	Reactions []Reaction `json:"reactions" gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE;"`
}

// Reaction holds one emoji per (message, user).
type Reaction struct {
	BaseEntity
	MessageID string `json:"messageId" gorm:"type:varchar(36);not null;uniqueIndex:idx_reaction_message_user"`
	UserID    string `json:"userId" gorm:"type:varchar(36);not null;uniqueIndex:idx_reaction_message_user"`
	Emoji     string `json:"emoji" gorm:"type:varchar(32);not null"`
}
