package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"messenger-api/config/logger"
	"messenger-api/dto/req"
	"messenger-api/dto/res"
	"messenger-api/entity"
	"messenger-api/repository"
	"messenger-api/security"
)

type AuthUsecaseImpl struct {
	*repository.UserRepository
	*validator.Validate
	*gorm.DB
	Log *logger.AppLogger
	*security.JWT
	Otp *OtpIssuer
}

func NewAuthUsecase(userRepository *repository.UserRepository, validate *validator.Validate, DB *gorm.DB, log *logger.AppLogger, JWT *security.JWT, otp *OtpIssuer) AuthUsecase {
	return &AuthUsecaseImpl{UserRepository: userRepository, Validate: validate, DB: DB, Log: log, JWT: JWT, Otp: otp}
}

func (uc *AuthUsecaseImpl) Login(ctx context.Context, request *req.LoginRequest) (res.LoginResponse, error) {
	if err := uc.Validate.Struct(request); err != nil {
		uc.Log.Http.Warning.Warn().Err(err).Msg("Invalid login request")
		return res.LoginResponse{}, err
	}
	email, err := security.NormalizeEmail(request.Email)
	if err != nil {
		return res.LoginResponse{}, err
	}

	if err := uc.Otp.Issue(ctx, email); err != nil {
		return res.LoginResponse{}, err
	}
	return res.LoginResponse{Email: email}, nil
}

func (uc *AuthUsecaseImpl) Verify(ctx context.Context, request *req.VerifyRequest) (res.AuthResponse, error) {
	if err := uc.Validate.Struct(request); err != nil {
		uc.Log.Http.Warning.Warn().Err(err).Msg("Invalid verify request")
		return res.AuthResponse{}, err
	}
	email, err := security.NormalizeEmail(request.Email)
	if err != nil {
		return res.AuthResponse{}, err
	}

	if err := uc.Otp.Verify(ctx, email, request.Otp); err != nil {
		return res.AuthResponse{}, err
	}

	user, err := uc.findOrCreateVerified(ctx, email, "")
	if err != nil {
		return res.AuthResponse{}, err
	}
	return uc.session(user)
}

func (uc *AuthUsecaseImpl) OAuthSession(ctx context.Context, request *req.OAuthRequest) (res.AuthResponse, error) {
	if err := uc.Validate.Struct(request); err != nil {
		return res.AuthResponse{}, err
	}
	email, err := security.NormalizeEmail(request.Email)
	if err != nil {
		return res.AuthResponse{}, err
	}

	user, err := uc.findOrCreateVerified(ctx, email, strings.TrimSpace(request.Avatar))
	if err != nil {
		return res.AuthResponse{}, err
	}
	return uc.session(user)
}

// findOrCreateVerified resolves the user for a proven email address. A user
// that exists but was never verified gets the flag set now.
func (uc *AuthUsecaseImpl) findOrCreateVerified(ctx context.Context, email, avatar string) (*entity.User, error) {
	user, err := uc.UserRepository.FindByEmail(ctx, uc.DB, email)
	if err != nil {
		uc.Log.Http.Error.Error().Err(err).Msg("Failed to find user by email")
		return nil, err
	}

	if user == nil {
		user = &entity.User{Email: email, Avatar: avatar, IsVerified: true}
		if err := uc.UserRepository.Save(ctx, uc.DB, user); err != nil {
			// lost a race with a concurrent verify for the same address
			if existing, findErr := uc.UserRepository.FindByEmail(ctx, uc.DB, email); findErr == nil && existing != nil {
				return existing, nil
			}
			uc.Log.Http.Error.Error().Err(err).Msg("Failed to create user")
			return nil, err
		}
		uc.Log.Http.Info.Info().Str("userId", user.ID).Msg("User created")
		return user, nil
	}

	if !user.IsVerified {
		if err := uc.UserRepository.UpdateColumns(ctx, uc.DB, user, map[string]any{"is_verified": true}); err != nil {
			uc.Log.Http.Error.Error().Err(err).Str("userId", user.ID).Msg("Failed to mark user verified")
			return nil, err
		}
		user.IsVerified = true
	}
	return user, nil
}

func (uc *AuthUsecaseImpl) session(user *entity.User) (res.AuthResponse, error) {
	token, err := uc.JWT.GenerateToken(user)
	if err != nil {
		uc.Log.Http.Error.Error().Err(err).Str("userId", user.ID).Msg("Failed to generate token")
		return res.AuthResponse{}, errors.Join(errors.New("generate token"), err)
	}
	uc.Log.Http.Info.Info().Str("userId", user.ID).Msg("Session issued")
	return res.AuthResponse{User: toUserResponse(user), Token: token}, nil
}
