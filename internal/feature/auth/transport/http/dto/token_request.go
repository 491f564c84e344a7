package dto

// TokenReq represents the form-encoded body of POST /token.
// The username field carries the email address.
type TokenReq struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// TokenRes is returned on successful login.
type TokenRes struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
