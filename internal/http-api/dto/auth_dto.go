package dto

// SignupRequest starts registration or requests a new confirmation code
type SignupRequest struct {
	Email string `json:"email" binding:"required,email,max=254"`
}

type SignupResponse struct {
	Email string `json:"email"`
}

type TokenRequest struct {
	Email            string `json:"email" binding:"required,email,max=254"`
	ConfirmationCode string `json:"confirmation_code" binding:"required,max=30"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
