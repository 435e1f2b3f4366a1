package dto

// SignupRequest asks for a confirmation code to be mailed
type SignupRequest struct {
	Username string `json:"username" binding:"required,max=150,username,notme"`
	Email    string `json:"email" binding:"required,email,max=254"`
}

type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest exchanges a confirmation code for an access token
type TokenRequest struct {
	Username         string `json:"username" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
