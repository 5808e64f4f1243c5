package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-client/internal/middleware"
	appErrors "github.com/noah-isme/attendance-client/pkg/errors"
	"github.com/noah-isme/attendance-client/pkg/session"
)

func sessionFromContext(c *gin.Context) (*session.Session, error) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return nil, appErrors.ErrNoSession
	}
	return sess, nil
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be a positive integer")
	}
	return id, nil
}
