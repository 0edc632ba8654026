package req

// EditProfileRequest only touches the fields that are present in the body.
type EditProfileRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	Bio       *string `json:"bio" validate:"omitempty,max=500"`
	Avatar    *string `json:"avatar" validate:"omitempty,url"`
}

type SendOtpRequest struct {
	Email string `json:"email" validate:"omitempty,email,max=255"`
}

type UpdateEmailRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Otp   string `json:"otp" validate:"required,len=6,numeric"`
}
