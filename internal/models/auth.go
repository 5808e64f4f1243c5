package models

// TelegramLoginRequest is the body of POST /auth/telegram.
type TelegramLoginRequest struct {
	InitData string `json:"init_data" validate:"required"`
}

// AuthResponse is returned once per login and carries the session token.
type AuthResponse struct {
	Token string `json:"token" validate:"required"`
	User  User   `json:"user"`
}
