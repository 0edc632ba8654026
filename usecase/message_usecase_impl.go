package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"messenger-api/config/logger"
	"messenger-api/dto"
	"messenger-api/dto/req"
	"messenger-api/dto/res"
	"messenger-api/entity"
	"messenger-api/enum"
	"messenger-api/exception"
	"messenger-api/repository"
	"messenger-api/security"
	"messenger-api/storage"
)

const MaxImageSize = 5 << 20

type MessageUsecaseImpl struct {
	*repository.MessageRepository
	Users *repository.UserRepository
	*validator.Validate
	*gorm.DB
	Log      *logger.AppLogger
	Notifier Notifier
	Storage  storage.ObjectStore
	now      func() time.Time
}

func NewMessageUsecase(messageRepository *repository.MessageRepository, userRepository *repository.UserRepository, validate *validator.Validate, DB *gorm.DB, log *logger.AppLogger, notifier Notifier, objectStore storage.ObjectStore) MessageUsecase {
	return &MessageUsecaseImpl{
		MessageRepository: messageRepository,
		Users:             userRepository,
		Validate:          validate,
		DB:                DB,
		Log:               log,
		Notifier:          notifier,
		Storage:           objectStore,
		now:               time.Now,
	}
}

func (uc *MessageUsecaseImpl) findMessage(ctx context.Context, messageID string) (*entity.Message, error) {
	message, err := uc.MessageRepository.FindByIdWithReactions(ctx, uc.DB, messageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, exception.NotFound("Message not found")
	}
	if err != nil {
		uc.Log.Http.Error.Error().Err(err).Str("messageId", messageID).Msg("Failed to find message")
		return nil, err
	}
	return message, nil
}

func (uc *MessageUsecaseImpl) SendMessage(ctx context.Context, principal security.Principal, request *req.MessageRequest) (res.MessageResponse, error) {
	if err := uc.Validate.Struct(request); err != nil {
		return res.MessageResponse{}, err
	}

	text := strings.TrimSpace(request.Text)
	image := strings.TrimSpace(request.Image)
	if text == "" && image == "" {
		return res.MessageResponse{}, exception.Validation("Message must have text or an image")
	}
	if request.ReceiverID == principal.UserID {
		return res.MessageResponse{}, exception.Validation("You cannot send a message to yourself")
	}

	exists, err := uc.Users.ExistsById(ctx, uc.DB, request.ReceiverID)
	if err != nil {
		uc.Log.Http.Error.Error().Err(err).Msg("Failed to check receiver")
		return res.MessageResponse{}, err
	}
	if !exists {
		uc.Log.Http.Warning.Warn().Str("receiverId", request.ReceiverID).Msg("Receiver not found")
		return res.MessageResponse{}, exception.NotFound("Receiver not found")
	}

	message := &entity.Message{
		SenderID:   principal.UserID,
		ReceiverID: request.ReceiverID,
		Text:       text,
		Image:      image,
		Status:     enum.MessageStatusSent,
	}
	if err := uc.MessageRepository.Save(ctx, uc.DB, message); err != nil {
		uc.Log.Http.Error.Error().Err(err).Str("senderId", principal.UserID).Msg("Failed to save message")
		return res.MessageResponse{}, err
	}

	response := toMessageResponse(message)
	uc.Notifier.Notify(message.ReceiverID, dto.Event{Type: enum.EventMessageNew, Data: response})

	uc.Log.Http.Info.Info().Str("messageId", message.ID).Str("senderId", message.SenderID).
		Str("receiverId", message.ReceiverID).Msg("Message sent")
	return response, nil
}

// GetMessages returns the conversation between the principal and contactID,
// oldest first.
func (uc *MessageUsecaseImpl) GetMessages(ctx context.Context, principal security.Principal, contactID string) ([]res.MessageResponse, error) {
	contactID = strings.TrimSpace(contactID)
	if contactID == "" {
		return nil, exception.Validation("contactId is required")
	}

	messages, err := uc.MessageRepository.FindConversation(ctx, uc.DB, principal.UserID, contactID)
	if err != nil {
		uc.Log.Http.Error.Error().Err(err).Str("userId", principal.UserID).Msg("Failed to get messages")
		return nil, err
	}

	responses := make([]res.MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, toMessageResponse(&messages[i]))
	}
	return responses, nil
}

func (uc *MessageUsecaseImpl) MarkMessagesAsRead(ctx context.Context, principal security.Principal, request *req.MessageReadRequest) (res.MessageReadResponse, error) {
	if err := uc.Validate.Struct(request); err != nil {
		return res.MessageReadResponse{}, err
	}

	readAt := uc.now().UTC()
	updated, err := uc.MessageRepository.MarkRead(ctx, uc.DB, request.ContactID, principal.UserID, readAt)
	if err != nil {
		uc.Log.Http.Error.Error().Err(err).Str("userId", principal.UserID).Msg("Failed to mark messages as read")
		return res.MessageReadResponse{}, err
	}

	if updated > 0 {
		uc.Notifier.Notify(request.ContactID, dto.Event{
			Type: enum.EventMessageRead,
			Data: dto.MessageReadEvent{
				ReaderID: principal.UserID,
				Updated:  updated,
				ReadAt:   readAt.Format(res.TimeFormat),
			},
		})
	}

	uc.Log.Http.Trace.Trace().Str("userId", principal.UserID).Str("contactId", request.ContactID).
		Int64("updated", updated).Msg("Messages marked as read")
	return res.MessageReadResponse{Updated: updated}, nil
}

func (uc *MessageUsecaseImpl) React(ctx context.Context, principal security.Principal, request *req.ReactionRequest) (res.MessageResponse, error) {
	if err := uc.Validate.Struct(request); err != nil {
		return res.MessageResponse{}, err
	}
	emoji := strings.TrimSpace(request.Reaction)
	if emoji == "" {
		return res.MessageResponse{}, exception.Validation("reaction is required")
	}

	message, err := uc.findMessage(ctx, request.MessageID)
	if err != nil {
		return res.MessageResponse{}, err
	}
	if message.SenderID != principal.UserID && message.ReceiverID != principal.UserID {
		uc.Log.Http.Warning.Warn().Str("userId", principal.UserID).Str("messageId", message.ID).
			Msg("Reaction on a foreign message")
		return res.MessageResponse{}, exception.Forbidden("You are not part of this conversation")
	}

	reaction := &entity.Reaction{MessageID: message.ID, UserID: principal.UserID, Emoji: emoji}
	if err := uc.MessageRepository.UpsertReaction(ctx, uc.DB, reaction); err != nil {
		uc.Log.Http.Error.Error().Err(err).Str("messageId", message.ID).Msg("Failed to save reaction")
		return res.MessageResponse{}, err
	}

	if message, err = uc.findMessage(ctx, message.ID); err != nil {
		return res.MessageResponse{}, err
	}
	response := toMessageResponse(message)
	uc.Notifier.Notify(otherParticipant(message, principal.UserID), dto.Event{Type: enum.EventMessageReaction, Data: response})
	return response, nil
}

func (uc *MessageUsecaseImpl) EditMessage(ctx context.Context, principal security.Principal, messageID string, request *req.EditMessageRequest) (res.MessageResponse, error) {
	if err := uc.Validate.Struct(request); err != nil {
		return res.MessageResponse{}, err
	}

	message, err := uc.findMessage(ctx, messageID)
	if err != nil {
		return res.MessageResponse{}, err
	}
	if message.SenderID != principal.UserID {
		uc.Log.Http.Warning.Warn().Str("userId", principal.UserID).Str("messageId", message.ID).
			Msg("Edit rejected, not the sender")
		return res.MessageResponse{}, exception.Forbidden("Only the sender can edit this message")
	}

	text := strings.TrimSpace(request.Text)
	if text == "" && message.Image == "" {
		return res.MessageResponse{}, exception.Validation("Message must have text or an image")
	}

	if err := uc.MessageRepository.UpdateColumns(ctx, uc.DB, message, map[string]any{"text": text}); err != nil {
		uc.Log.Http.Error.Error().Err(err).Str("messageId", message.ID).Msg("Failed to edit message")
		return res.MessageResponse{}, err
	}
	if message, err = uc.findMessage(ctx, message.ID); err != nil {
		return res.MessageResponse{}, err
	}

	response := toMessageResponse(message)
	uc.Notifier.Notify(message.ReceiverID, dto.Event{Type: enum.EventMessageUpdated, Data: response})
	return response, nil
}

func (uc *MessageUsecaseImpl) DeleteMessage(ctx context.Context, principal security.Principal, messageID string) error {
	message, err := uc.findMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if message.SenderID != principal.UserID {
		uc.Log.Http.Warning.Warn().Str("userId", principal.UserID).Str("messageId", message.ID).
			Msg("Delete rejected, not the sender")
		return exception.Forbidden("Only the sender can delete this message")
	}

	if err := uc.MessageRepository.DeleteWithReactions(ctx, uc.DB, message.ID); err != nil {
		uc.Log.Http.Error.Error().Err(err).Str("messageId", message.ID).Msg("Failed to delete message")
		return err
	}

	if message.Image != "" && uc.Storage != nil {
		if key, ok := uc.Storage.KeyFromURL(message.Image); ok {
			if err := uc.Storage.Delete(ctx, key); err != nil {
				uc.Log.Http.Warning.Warn().Err(err).Str("key", key).Msg("Failed to delete message image")
			}
		}
	}

	uc.Notifier.Notify(message.ReceiverID, dto.Event{
		Type: enum.EventMessageDeleted,
		Data: dto.MessageDeletedEvent{MessageID: message.ID, SenderID: message.SenderID},
	})
	uc.Log.Http.Info.Info().Str("messageId", message.ID).Msg("Message deleted")
	return nil
}

func (uc *MessageUsecaseImpl) UploadImage(ctx context.Context, principal security.Principal, filename, contentType string, size int64, body io.Reader) (res.UploadResponse, error) {
	if uc.Storage == nil {
		return res.UploadResponse{}, exception.Unavailable("Image upload is not configured", nil)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return res.UploadResponse{}, exception.Validation("Only images can be uploaded")
	}
	if size <= 0 || size > MaxImageSize {
		return res.UploadResponse{}, exception.Validation("Image must be at most 5 MB")
	}

	key := fmt.Sprintf("%s%s/%s%s", storage.MessagePrefix, principal.UserID, uuid.NewString(), strings.ToLower(filepath.Ext(filename)))
	if err := uc.Storage.Put(ctx, key, body, size, contentType); err != nil {
		uc.Log.Http.Error.Error().Err(err).Str("key", key).Msg("Failed to store image")
		return res.UploadResponse{}, exception.Unavailable("Failed to store image", err)
	}
	url, err := uc.Storage.URL(ctx, key)
	if err != nil {
		return res.UploadResponse{}, exception.Unavailable("Failed to resolve image url", err)
	}

	uc.Log.Http.Info.Info().Str("userId", principal.UserID).Str("key", key).Int64("size", size).Msg("Image uploaded")
	return res.UploadResponse{URL: url}, nil
}

func otherParticipant(message *entity.Message, userID string) string {
	if message.SenderID == userID {
		return message.ReceiverID
	}
	return message.SenderID
}
