package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-client/internal/models"
	appErrors "github.com/noah-isme/attendance-client/pkg/errors"
	"github.com/noah-isme/attendance-client/pkg/response"
	"github.com/noah-isme/attendance-client/pkg/session"
)

// Authenticator logs a session in with Telegram init data.
type Authenticator interface {
	Login(ctx context.Context, initData string) (*models.AuthResponse, error)
}

// AuthenticatorFactory builds an Authenticator bound to sess.
type AuthenticatorFactory func(sess *session.Session) (Authenticator, error)

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	newAuth AuthenticatorFactory
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(newAuth AuthenticatorFactory) *AuthHandler {
	return &AuthHandler{newAuth: newAuth}
}

// Telegram godoc
// @Summary Log in with Telegram Mini App init data
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.TelegramLoginRequest true "Init data"
// @Success 200 {object} response.Envelope
// @Router /api/auth/telegram [post]
func (h *AuthHandler) Telegram(c *gin.Context) {
	var req models.TelegramLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload"))
		return
	}

	auth, err := h.newAuth(session.New(nil))
	if err != nil {
		response.Error(c, err)
		return
	}
	res, err := auth.Login(c.Request.Context(), req.InitData)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
