package usecase

import (
	"context"
	"errors"
	"sort"

	"github.com/go-playground/validator/v10"
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
)

type ContactUsecaseImpl struct {
	*repository.ContactRepository
	Users    *repository.UserRepository
	Messages *repository.MessageRepository
	*validator.Validate
	*gorm.DB
	Log      *logger.AppLogger
	Notifier Notifier
}

func NewContactUsecase(contactRepository *repository.ContactRepository, userRepository *repository.UserRepository, messageRepository *repository.MessageRepository, validate *validator.Validate, DB *gorm.DB, log *logger.AppLogger, notifier Notifier) ContactUsecase {
	return &ContactUsecaseImpl{
		ContactRepository: contactRepository,
		Users:             userRepository,
		Messages:          messageRepository,
		Validate:          validate,
		DB:                DB,
		Log:               log,
		Notifier:          notifier,
	}
}

func (uc *ContactUsecaseImpl) resolveTarget(ctx context.Context, request *req.ContactRequest) (*entity.User, error) {
	if request.ContactID != "" {
		var user entity.User
		err := uc.Users.FindById(ctx, uc.DB, &user, request.ContactID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, exception.NotFound("User not found")
		}
		if err != nil {
			return nil, err
		}
		return &user, nil
	}

	email, err := security.NormalizeEmail(request.Email)
	if err != nil {
		return nil, err
	}
	user, err := uc.Users.FindByEmail(ctx, uc.DB, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, exception.NotFound("User not found")
	}
	return user, nil
}

func (uc *ContactUsecaseImpl) AddContact(ctx context.Context, principal security.Principal, request *req.ContactRequest) (res.UserResponse, error) {
	if err := uc.Validate.Struct(request); err != nil {
		return res.UserResponse{}, err
	}

	target, err := uc.resolveTarget(ctx, request)
	if err != nil {
		uc.Log.Http.Warning.Warn().Err(err).Str("userId", principal.UserID).Msg("Contact target not resolved")
		return res.UserResponse{}, err
	}
	if target.ID == principal.UserID {
		return res.UserResponse{}, exception.Validation("You cannot add yourself as a contact")
	}

	exists, err := uc.ContactRepository.IsContact(ctx, uc.DB, principal.UserID, target.ID)
	if err != nil {
		uc.Log.Http.Error.Error().Err(err).Msg("Failed to check contact")
		return res.UserResponse{}, err
	}
	if exists {
		return res.UserResponse{}, exception.Conflict("Contact already exists")
	}

	if err := uc.ContactRepository.CreateMutual(ctx, uc.DB, principal.UserID, target.ID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return res.UserResponse{}, exception.Conflict("Contact already exists")
		}
		uc.Log.Http.Error.Error().Err(err).Str("userId", principal.UserID).Str("contactId", target.ID).
			Msg("Failed to create contact")
		return res.UserResponse{}, err
	}

	var owner entity.User
	if err := uc.Users.FindById(ctx, uc.DB, &owner, principal.UserID); err == nil {
		uc.Notifier.Notify(target.ID, dto.Event{Type: enum.EventContactNew, Data: toUserResponse(&owner)})
	}

	uc.Log.Http.Info.Info().Str("userId", principal.UserID).Str("contactId", target.ID).Msg("Contact added")
	return toUserResponse(target), nil
}

// GetContacts lists the contacts of the principal, most recent conversation
// first; contacts without messages keep the order they were added in.
func (uc *ContactUsecaseImpl) GetContacts(ctx context.Context, principal security.Principal) ([]res.ContactResponse, error) {
	contacts, err := uc.ContactRepository.FindAllByOwner(ctx, uc.DB, principal.UserID)
	if err != nil {
		uc.Log.Http.Error.Error().Err(err).Str("userId", principal.UserID).Msg("Failed to get contacts")
		return nil, err
	}

	contactIDs := make([]string, 0, len(contacts))
	for i := range contacts {
		contactIDs = append(contactIDs, contacts[i].ContactID)
	}
	lastMessages, err := uc.Messages.FindLastMessages(ctx, uc.DB, principal.UserID, contactIDs)
	if err != nil {
		uc.Log.Http.Error.Error().Err(err).Str("userId", principal.UserID).Msg("Failed to get last messages")
		return nil, err
	}
	unread, err := uc.Messages.CountUnreadBySender(ctx, uc.DB, principal.UserID, contactIDs)
	if err != nil {
		uc.Log.Http.Error.Error().Err(err).Str("userId", principal.UserID).Msg("Failed to count unread messages")
		return nil, err
	}

	type ranked struct {
		response res.ContactResponse
		lastAt   int64
	}
	items := make([]ranked, 0, len(contacts))
	for i := range contacts {
		contact := &contacts[i]
		item := ranked{response: res.ContactResponse{
			UserResponse: toUserResponse(&contact.ContactUser),
			UnreadCount:  unread[contact.ContactID],
		}}
		if lastMessage := lastMessages[contact.ContactID]; lastMessage != nil {
			response := toMessageResponse(lastMessage)
			item.response.LastMessage = &response
			item.lastAt = lastMessage.CreatedAt.UnixNano()
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].lastAt > items[j].lastAt
	})

	responses := make([]res.ContactResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, item.response)
	}

	uc.Log.Http.Trace.Trace().Str("userId", principal.UserID).Int("contactCount", len(responses)).Msg("Contacts listed")
	return responses, nil
}
