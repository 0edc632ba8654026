package usecase

import (
	"context"
	"io"

	"messenger-api/dto/req"
	"messenger-api/dto/res"
	"messenger-api/security"
)

type MessageUsecase interface {
	SendMessage(ctx context.Context, principal security.Principal, request *req.MessageRequest) (res.MessageResponse, error)
	GetMessages(ctx context.Context, principal security.Principal, contactID string) ([]res.MessageResponse, error)
	MarkMessagesAsRead(ctx context.Context, principal security.Principal, request *req.MessageReadRequest) (res.MessageReadResponse, error)
	React(ctx context.Context, principal security.Principal, request *req.ReactionRequest) (res.MessageResponse, error)
	EditMessage(ctx context.Context, principal security.Principal, messageID string, request *req.EditMessageRequest) (res.MessageResponse, error)
	DeleteMessage(ctx context.Context, principal security.Principal, messageID string) error
	UploadImage(ctx context.Context, principal security.Principal, filename, contentType string, size int64, body io.Reader) (res.UploadResponse, error)
}
