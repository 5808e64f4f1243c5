package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bearerRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Bearer(), func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, sess.Token())
	})
	return r
}

func serve(r http.Handler, authorization string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	r.ServeHTTP(rec, req)
	return rec
}

func TestBearerAttachesSession(t *testing.T) {
	rec := serve(bearerRouter(), "Bearer opaque-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "opaque-token", rec.Body.String())
}

func TestBearerRejectsMissingOrMalformed(t *testing.T) {
	r := bearerRouter()
	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer ").Code)
}

func TestBearerRejectsExpiredJWT(t *testing.T) {
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	rec := serve(bearerRouter(), "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token expired")
}

type recordedRequest struct {
	method, path string
	status       int
}

type fakeHTTPObserver struct {
	seen []recordedRequest
}

func (f *fakeHTTPObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	f.seen = append(f.seen, recordedRequest{method, path, status})
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	obs := &fakeHTTPObserver{}
	r := gin.New()
	r.Use(Metrics(obs))
	r.GET("/api/dashboard/students/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/students/42", nil))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, []recordedRequest{
		{http.MethodGet, "/api/dashboard/students/:id", http.StatusNoContent},
		{http.MethodGet, "unmatched", http.StatusNotFound},
	}, obs.seen)
}
