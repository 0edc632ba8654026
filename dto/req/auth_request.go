package req

type LoginRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type VerifyRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Otp   string `json:"otp" validate:"required,len=6,numeric"`
}

type OAuthRequest struct {
	Email  string `json:"email" validate:"required,email,max=255"`
	Avatar string `json:"avatar" validate:"omitempty,url"`
}
