package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-client/internal/models"
	appErrors "github.com/noah-isme/attendance-client/pkg/errors"
	"github.com/noah-isme/attendance-client/pkg/session"
)

type telegramAuthenticator interface {
	LoginWithTelegram(ctx context.Context, initData string) (*models.AuthResponse, error)
}

// AuthService owns the login lifecycle of one session.
type AuthService struct {
	auth      telegramAuthenticator
	session   *session.Session
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(auth telegramAuthenticator, sess *session.Session, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{auth: auth, session: sess, validator: validate, logger: logger}
}

// Login exchanges Telegram init data for a token and stores it, together
// with the returned user, in the session.
func (s *AuthService) Login(ctx context.Context, initData string) (*models.AuthResponse, error) {
	req := models.TelegramLoginRequest{InitData: initData}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "init data is required")
	}

	res, err := s.auth.LoginWithTelegram(ctx, initData)
	if err != nil {
		return nil, err
	}

	s.session.SetToken(res.Token)
	if err := s.session.SetUser(res.User); err != nil {
		s.logger.Warn("cache logged-in user", zap.Error(err))
	}
	s.logger.Info("logged in", zap.Int64("user_id", res.User.ID), zap.String("role", string(res.User.Role)))
	return res, nil
}

// Logout drops the token and cached user.
func (s *AuthService) Logout() {
	s.session.ClearToken()
}

// CurrentUser returns the cached user of the active session.
func (s *AuthService) CurrentUser() (*models.User, error) {
	if s.session.Token() == "" {
		return nil, appErrors.ErrNoSession
	}
	var user models.User
	if !s.session.User(&user) {
		return nil, appErrors.Clone(appErrors.ErrNoSession, "no cached user for session")
	}
	return &user, nil
}
