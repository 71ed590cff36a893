package auth

import "time"

// GoogleTokenRequest — access token, полученный клиентом по
// implicit-flow (response_type=token) и присланный нам напрямую.
type GoogleTokenRequest struct {
	AccessToken string `json:"access_token"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	UserID      string `json:"user_id"`
}

type MeResponse struct {
	UserID           string `json:"user_id"`
	Email            string `json:"email,omitempty"`
	Name             string `json:"name,omitempty"`
	FitnessConnected bool   `json:"fitness_connected"`
}

// googleUserInfo — ответ Google userinfo endpoint.
type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type userProfile struct {
	Email     string
	Name      string
	UpdatedAt time.Time
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
