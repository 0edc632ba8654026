package req

type ContactRequest struct {
	ContactID string `json:"contactId" validate:"required_without=Email"`
	Email     string `json:"email" validate:"omitempty,email,max=255"`
}
