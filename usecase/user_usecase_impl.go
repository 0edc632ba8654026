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
	"messenger-api/exception"
	"messenger-api/repository"
	"messenger-api/security"
)

type UserUsecaseImpl struct {
	*repository.UserRepository
	*validator.Validate
	*gorm.DB
	Log *logger.AppLogger
	Otp *OtpIssuer
}

func NewUserUsecase(userRepository *repository.UserRepository, validate *validator.Validate, DB *gorm.DB, log *logger.AppLogger, otp *OtpIssuer) UserUsecase {
	return &UserUsecaseImpl{UserRepository: userRepository, Validate: validate, DB: DB, Log: log, Otp: otp}
}

func (uc *UserUsecaseImpl) findUser(ctx context.Context, userID string) (*entity.User, error) {
	var user entity.User
	if err := uc.UserRepository.FindById(ctx, uc.DB, &user, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			uc.Log.Http.Warning.Warn().Str("userId", userID).Msg("User not found")
			return nil, exception.NotFound("User not found")
		}
		uc.Log.Http.Error.Error().Err(err).Str("userId", userID).Msg("Failed to find user")
		return nil, err
	}
	return &user, nil
}

func (uc *UserUsecaseImpl) GetCurrentUser(ctx context.Context, principal security.Principal) (res.UserResponse, error) {
	uc.Log.Http.Trace.Trace().Str("userId", principal.UserID).Msg("GetCurrentUser started")

	user, err := uc.findUser(ctx, principal.UserID)
	if err != nil {
		return res.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (uc *UserUsecaseImpl) UpdateProfile(ctx context.Context, principal security.Principal, request *req.EditProfileRequest) (res.UserResponse, error) {
	if err := uc.Validate.Struct(request); err != nil {
		return res.UserResponse{}, err
	}

	user, err := uc.findUser(ctx, principal.UserID)
	if err != nil {
		return res.UserResponse{}, err
	}

	columns := map[string]any{}
	if request.FirstName != nil {
		columns["first_name"] = strings.TrimSpace(*request.FirstName)
	}
	if request.LastName != nil {
		columns["last_name"] = strings.TrimSpace(*request.LastName)
	}
	if request.Bio != nil {
		columns["bio"] = strings.TrimSpace(*request.Bio)
	}
	if request.Avatar != nil {
		columns["avatar"] = strings.TrimSpace(*request.Avatar)
	}
	if len(columns) == 0 {
		return toUserResponse(user), nil
	}

	if err := uc.UserRepository.UpdateColumns(ctx, uc.DB, user, columns); err != nil {
		uc.Log.Http.Error.Error().Err(err).Str("userId", user.ID).Msg("Failed to update profile")
		return res.UserResponse{}, err
	}
	if user, err = uc.findUser(ctx, user.ID); err != nil {
		return res.UserResponse{}, err
	}

	uc.Log.Http.Info.Info().Str("userId", user.ID).Int("fields", len(columns)).Msg("Profile updated")
	return toUserResponse(user), nil
}

// SendOtp issues a code to the address the user wants to switch to, or to
// their current one when no address is given.
func (uc *UserUsecaseImpl) SendOtp(ctx context.Context, principal security.Principal, request *req.SendOtpRequest) (res.LoginResponse, error) {
	if err := uc.Validate.Struct(request); err != nil {
		return res.LoginResponse{}, err
	}

	target := request.Email
	if strings.TrimSpace(target) == "" {
		user, err := uc.findUser(ctx, principal.UserID)
		if err != nil {
			return res.LoginResponse{}, err
		}
		target = user.Email
	}
	email, err := security.NormalizeEmail(target)
	if err != nil {
		return res.LoginResponse{}, err
	}

	if err := uc.Otp.Issue(ctx, email); err != nil {
		return res.LoginResponse{}, err
	}
	return res.LoginResponse{Email: email}, nil
}

func (uc *UserUsecaseImpl) UpdateEmail(ctx context.Context, principal security.Principal, request *req.UpdateEmailRequest) (res.UserResponse, error) {
	if err := uc.Validate.Struct(request); err != nil {
		return res.UserResponse{}, err
	}
	email, err := security.NormalizeEmail(request.Email)
	if err != nil {
		return res.UserResponse{}, err
	}

	user, err := uc.findUser(ctx, principal.UserID)
	if err != nil {
		return res.UserResponse{}, err
	}
	if user.Email == email {
		return toUserResponse(user), nil
	}

	owner, err := uc.UserRepository.FindByEmail(ctx, uc.DB, email)
	if err != nil {
		return res.UserResponse{}, err
	}
	if owner != nil {
		return res.UserResponse{}, exception.Conflict("Email is already in use")
	}

	if err := uc.Otp.Verify(ctx, email, request.Otp); err != nil {
		return res.UserResponse{}, err
	}

	if err := uc.UserRepository.UpdateColumns(ctx, uc.DB, user, map[string]any{"email": email, "is_verified": true}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return res.UserResponse{}, exception.Conflict("Email is already in use")
		}
		uc.Log.Http.Error.Error().Err(err).Str("userId", user.ID).Msg("Failed to update email")
		return res.UserResponse{}, err
	}
	if user, err = uc.findUser(ctx, user.ID); err != nil {
		return res.UserResponse{}, err
	}

	uc.Log.Http.Info.Info().Str("userId", user.ID).Str("email", security.MaskEmail(email)).Msg("Email updated")
	return toUserResponse(user), nil
}

func (uc *UserUsecaseImpl) DeleteAccount(ctx context.Context, principal security.Principal) error {
	if _, err := uc.findUser(ctx, principal.UserID); err != nil {
		return err
	}
	if err := uc.UserRepository.DeleteAccount(ctx, uc.DB, principal.UserID); err != nil {
		uc.Log.Http.Error.Error().Err(err).Str("userId", principal.UserID).Msg("Failed to delete account")
		return err
	}
	uc.Log.Http.Info.Info().Str("userId", principal.UserID).Msg("Account deleted")
	return nil
}
