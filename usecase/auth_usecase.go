package usecase

import (
	"context"

	"messenger-api/dto/req"
	"messenger-api/dto/res"
)

type AuthUsecase interface {
	Login(ctx context.Context, request *req.LoginRequest) (res.LoginResponse, error)
	Verify(ctx context.Context, request *req.VerifyRequest) (res.AuthResponse, error)
	OAuthSession(ctx context.Context, request *req.OAuthRequest) (res.AuthResponse, error)
}
