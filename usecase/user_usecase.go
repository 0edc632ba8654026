package usecase

import (
	"context"

	"messenger-api/dto/req"
	"messenger-api/dto/res"
	"messenger-api/security"
)

type UserUsecase interface {
	GetCurrentUser(ctx context.Context, principal security.Principal) (res.UserResponse, error)
	UpdateProfile(ctx context.Context, principal security.Principal, request *req.EditProfileRequest) (res.UserResponse, error)
	SendOtp(ctx context.Context, principal security.Principal, request *req.SendOtpRequest) (res.LoginResponse, error)
	UpdateEmail(ctx context.Context, principal security.Principal, request *req.UpdateEmailRequest) (res.UserResponse, error)
	DeleteAccount(ctx context.Context, principal security.Principal) error
}
