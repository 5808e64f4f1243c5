package api

import (
	"context"
	"net/http"

	"github.com/noah-isme/attendance-client/internal/models"
)

// AuthAPI covers the login endpoint.
type AuthAPI struct {
	c Doer
}

// LoginWithTelegram exchanges Mini App init data for a bearer token.
func (a *AuthAPI) LoginWithTelegram(ctx context.Context, initData string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	body := models.TelegramLoginRequest{InitData: initData}
	if err := a.c.Do(ctx, http.MethodPost, "/auth/telegram", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
