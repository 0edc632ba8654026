package usecase

import (
	"context"

	"messenger-api/dto/req"
	"messenger-api/dto/res"
	"messenger-api/security"
)

type ContactUsecase interface {
	AddContact(ctx context.Context, principal security.Principal, request *req.ContactRequest) (res.UserResponse, error)
	GetContacts(ctx context.Context, principal security.Principal) ([]res.ContactResponse, error)
}
