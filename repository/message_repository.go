package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"messenger-api/entity"
	"messenger-api/enum"
)

type MessageRepository struct {
	Repository[entity.Message]
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{}
}

func conversation(db *gorm.DB, userA, userB string) *gorm.DB {
	return db.Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userA, userB, userB, userA,
	)
}

// FindConversation returns every message exchanged between the two users,
// oldest first.
func (repository MessageRepository) FindConversation(ctx context.Context, db *gorm.DB, userA, userB string) ([]entity.Message, error) {
	var messages []entity.Message
	err := conversation(db.WithContext(ctx), userA, userB).
		Preload("Reactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// FindLastMessages returns the newest message of each conversation between
// ownerID and contactIDs, keyed by contact id. Contacts without messages are
// absent from the map.
func (repository MessageRepository) FindLastMessages(ctx context.Context, db *gorm.DB, ownerID string, contactIDs []string) (map[string]*entity.Message, error) {
	latest := make(map[string]*entity.Message, len(contactIDs))
	if len(contactIDs) == 0 {
		return latest, nil
	}

	ranked := db.Model(&entity.Message{}).
		Select("id, ROW_NUMBER() OVER (PARTITION BY CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END ORDER BY created_at DESC, id DESC) AS rn", ownerID).
		Where("(sender_id = ? AND receiver_id IN ?) OR (receiver_id = ? AND sender_id IN ?)", ownerID, contactIDs, ownerID, contactIDs)
	newest := db.Table("(?) AS ranked", ranked).Select("id").Where("rn = 1")

	var messages []entity.Message
	err := db.WithContext(ctx).
		Preload("Reactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id IN (?)", newest).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	for i := range messages {
		message := &messages[i]
		if message.SenderID == ownerID {
			latest[message.ReceiverID] = message
		} else {
			latest[message.SenderID] = message
		}
	}
	return latest, nil
}

// CountUnreadBySender counts, per sender, the messages receiverID has not
// read yet. Senders with nothing unread are absent from the map.
func (repository MessageRepository) CountUnreadBySender(ctx context.Context, db *gorm.DB, receiverID string, senderIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(senderIDs))
	if len(senderIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		SenderID string
		Unread   int64
	}
	err := db.WithContext(ctx).
		Model(&entity.Message{}).
		Select("sender_id, COUNT(*) AS unread").
		Where("receiver_id = ? AND read_at IS NULL AND sender_id IN ?", receiverID, senderIDs).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.SenderID] = row.Unread
	}
	return counts, nil
}

// MarkRead stamps every unread message from sender to receiver. Messages
// already read keep their original readAt.
func (repository MessageRepository) MarkRead(ctx context.Context, db *gorm.DB, senderID, receiverID string, readAt time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Model(&entity.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND read_at IS NULL", senderID, receiverID).
		Updates(map[string]any{
			"read_at": readAt,
			"status":  enum.MessageStatusRead,
		})
	return result.RowsAffected, result.Error
}

func (repository MessageRepository) FindByIdWithReactions(ctx context.Context, db *gorm.DB, id string) (*entity.Message, error) {
	var message entity.Message
	err := db.WithContext(ctx).
		Preload("Reactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		Take(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// UpsertReaction keeps at most one reaction per user per message; a later
// call replaces the emoji.
func (repository MessageRepository) UpsertReaction(ctx context.Context, db *gorm.DB, reaction *entity.Reaction) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"emoji", "updated_at"}),
	}).Create(reaction).Error
}

func (repository MessageRepository) DeleteWithReactions(ctx context.Context, db *gorm.DB, messageID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", messageID).Delete(&entity.Reaction{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", messageID).Delete(&entity.Message{}).Error
	})
}
