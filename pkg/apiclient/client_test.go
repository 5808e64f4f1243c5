package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-client/pkg/config"
	appErrors "github.com/noah-isme/attendance-client/pkg/errors"
	"github.com/noah-isme/attendance-client/pkg/middleware/requestid"
	"github.com/noah-isme/attendance-client/pkg/session"
)

type captured struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []captured
	status   int
	body     string
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, captured{
		Method: r.Method,
		Path:   r.URL.RequestURI(),
		Header: r.Header.Clone(),
		Body:   raw,
	})
	status, body := f.status, f.body
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (f *fakeBackend) last(t *testing.T) captured {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

type recordingObserver struct {
	mu     sync.Mutex
	routes []string
	status []int
}

func (o *recordingObserver) ObserveUpstreamRequest(method, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes = append(o.routes, method+" "+route)
	o.status = append(o.status, status)
}

type shaped struct {
	Token string `json:"token" validate:"required"`
	Count int    `json:"count" validate:"gte=0"`
}

func newTestClient(t *testing.T, backend *fakeBackend, mutate ...func(*Options)) (*Client, *session.Session) {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	sess := session.New(session.NewMemoryStore())
	opts := Options{
		BaseURL:             srv.URL + "/api/v1",
		Session:             sess,
		DefaultHeaders:      map[string]string{"ngrok-skip-browser-warning": "true"},
		ClearOnUnauthorized: true,
	}
	for _, m := range mutate {
		m(&opts)
	}
	client, err := New(opts)
	require.NoError(t, err)
	return client, sess
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func TestNewRequiresBaseURLAndSession(t *testing.T) {
	_, err := New(Options{Session: session.New(nil)})
	assert.Error(t, err)
	_, err = New(Options{BaseURL: "http://example.test"})
	assert.Error(t, err)
}

func TestAuthorizationHeaderFollowsToken(t *testing.T) {
	backend := &fakeBackend{body: `{}`}
	client, sess := newTestClient(t, backend)
	ctx := context.Background()

	require.NoError(t, client.Get(ctx, "/admin/stats", nil))
	assert.Empty(t, backend.last(t).Header.Get("Authorization"))

	sess.SetToken("abc")
	require.NoError(t, client.Get(ctx, "/admin/stats", nil))
	assert.Equal(t, "Bearer abc", backend.last(t).Header.Get("Authorization"))

	sess.ClearToken()
	require.NoError(t, client.Get(ctx, "/admin/stats", nil))
	assert.Empty(t, backend.last(t).Header.Get("Authorization"))
}

func TestDefaultHeadersAndURL(t *testing.T) {
	backend := &fakeBackend{body: `{}`}
	client, _ := newTestClient(t, backend)

	err := client.Get(context.Background(), "/teacher/groups", nil,
		WithHeader("Content-Type", "text/plain"),
		WithHeader("X-Trace", "1"),
	)
	require.NoError(t, err)

	req := backend.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/v1/teacher/groups", req.Path)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Len(t, req.Header.Values("Content-Type"), 1)
	assert.Equal(t, "true", req.Header.Get("ngrok-skip-browser-warning"))
	assert.Equal(t, "1", req.Header.Get("X-Trace"))
	assert.NotEmpty(t, req.Header.Get(requestid.Header))
}

func TestRequestIDPropagatesFromContext(t *testing.T) {
	backend := &fakeBackend{body: `{}`}
	client, _ := newTestClient(t, backend)

	ctx := requestid.WithValue(context.Background(), "req-123")
	require.NoError(t, client.Get(ctx, "/admin/stats", nil))
	assert.Equal(t, "req-123", backend.last(t).Header.Get(requestid.Header))
}

func TestBodyEncoding(t *testing.T) {
	backend := &fakeBackend{body: `{}`}
	client, _ := newTestClient(t, backend)
	ctx := context.Background()

	require.NoError(t, client.Post(ctx, "/auth/telegram", map[string]string{"init_data": "x"}, nil))
	req := backend.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.JSONEq(t, `{"init_data":"x"}`, string(req.Body))

	require.NoError(t, client.Post(ctx, "/auth/telegram", nil, nil))
	assert.Empty(t, backend.last(t).Body)

	require.NoError(t, client.Delete(ctx, "/admin/groups/4", nil))
	req = backend.last(t)
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Empty(t, req.Body)
}

func TestWrappersFixMethod(t *testing.T) {
	backend := &fakeBackend{body: `{}`}
	client, _ := newTestClient(t, backend)
	ctx := context.Background()

	require.NoError(t, client.Put(ctx, "/admin/teachers/1", map[string]int{"a": 1}, nil))
	assert.Equal(t, http.MethodPut, backend.last(t).Method)
	require.NoError(t, client.Patch(ctx, "/admin/students/1/group", map[string]int{"group_id": 2}, nil))
	assert.Equal(t, http.MethodPatch, backend.last(t).Method)
}

func TestSuccessDecodesAndValidates(t *testing.T) {
	backend := &fakeBackend{body: `{"token":"t","count":3}`}
	client, _ := newTestClient(t, backend)

	var out shaped
	require.NoError(t, client.Get(context.Background(), "/x", &out))
	assert.Equal(t, shaped{Token: "t", Count: 3}, out)
}

func TestNoContentLeavesOutUntouched(t *testing.T) {
	backend := &fakeBackend{status: http.StatusNoContent}
	client, _ := newTestClient(t, backend)

	var out shaped
	require.NoError(t, client.Delete(context.Background(), "/admin/students/1", &out))
	assert.Equal(t, shaped{}, out)
}

func TestErrorMessages(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"detail string", http.StatusBadRequest, `{"detail":"X"}`, "X"},
		{"detail list", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required","loc":["body","name"]},{"msg":"too short"}]}`, "field required; too short"},
		{"message field", http.StatusConflict, `{"message":"already exists"}`, "already exists"},
		{"error field", http.StatusForbidden, `{"error":"forbidden"}`, "forbidden"},
		{"non json", http.StatusBadGateway, `<html>bad gateway</html>`, "HTTP 502"},
		{"empty", http.StatusNotFound, ``, "HTTP 404"},
		{"no message field", http.StatusInternalServerError, `{"code":1}`, "HTTP 500"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			backend := &fakeBackend{status: tc.status, body: tc.body}
			client, _ := newTestClient(t, backend)

			err := client.Get(context.Background(), "/admin/stats", nil)
			require.Error(t, err)
			assert.Equal(t, tc.message, err.Error())
			assert.Equal(t, appErrors.KindHTTP, appErrors.KindOf(err))
			assert.Equal(t, tc.status, appErrors.StatusOf(err))
		})
	}
}

func TestUnauthorizedClearsSession(t *testing.T) {
	backend := &fakeBackend{status: http.StatusUnauthorized, body: `{"detail":"Invalid token"}`}
	client, sess := newTestClient(t, backend)
	sess.SetToken("stale")

	err := client.Get(context.Background(), "/admin/stats", nil)
	require.Error(t, err)
	assert.Equal(t, "Invalid token", err.Error())
	assert.Equal(t, "", sess.Token())
}

func TestUnauthorizedKeepsSessionWhenDisabled(t *testing.T) {
	backend := &fakeBackend{status: http.StatusUnauthorized}
	client, sess := newTestClient(t, backend, func(o *Options) { o.ClearOnUnauthorized = false })
	sess.SetToken("kept")

	require.Error(t, client.Get(context.Background(), "/admin/stats", nil))
	assert.Equal(t, "kept", sess.Token())
}

func TestExpiredTokenIsClearedBeforeSend(t *testing.T) {
	backend := &fakeBackend{body: `{}`}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	client, sess := newTestClient(t, backend, func(o *Options) { o.Now = func() time.Time { return now } })

	sess.SetToken(signedToken(t, now.Add(-time.Minute)))
	require.NoError(t, client.Get(context.Background(), "/admin/stats", nil))
	assert.Empty(t, backend.last(t).Header.Get("Authorization"))
	assert.Equal(t, "", sess.Token())

	fresh := signedToken(t, now.Add(time.Hour))
	sess.SetToken(fresh)
	require.NoError(t, client.Get(context.Background(), "/admin/stats", nil))
	assert.Equal(t, "Bearer "+fresh, backend.last(t).Header.Get("Authorization"))
}

func TestMalformedBodyIsDecodeError(t *testing.T) {
	backend := &fakeBackend{body: `{"token":`}
	client, _ := newTestClient(t, backend)

	var out shaped
	err := client.Get(context.Background(), "/x", &out)
	require.Error(t, err)
	assert.Equal(t, appErrors.KindDecode, appErrors.KindOf(err))
}

func TestShapeMismatchIsDetected(t *testing.T) {
	backend := &fakeBackend{body: `{"count":-1}`}
	client, _ := newTestClient(t, backend)

	var out shaped
	err := client.Get(context.Background(), "/x", &out)
	require.Error(t, err)
	assert.Equal(t, appErrors.KindShape, appErrors.KindOf(err))
	assert.Contains(t, err.Error(), "invalid response shape")
}

func TestShapeValidationCoversSlices(t *testing.T) {
	backend := &fakeBackend{body: `[{"token":"a"},{"token":""}]`}
	client, _ := newTestClient(t, backend)

	var out []shaped
	err := client.Get(context.Background(), "/x", &out)
	require.Error(t, err)
	assert.True(t, appErrors.IsKind(err, appErrors.KindShape))

	backend.body = `null`
	out = nil
	require.NoError(t, client.Get(context.Background(), "/x", &out))
	assert.Nil(t, out)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := New(Options{BaseURL: url + "/api/v1", Session: session.New(nil)})
	require.NoError(t, err)

	err = client.Get(context.Background(), "/admin/stats", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.KindTransport, appErrors.KindOf(err))
}

func TestCancelledContextIsTransportFailure(t *testing.T) {
	backend := &fakeBackend{body: `{}`}
	client, _ := newTestClient(t, backend)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Get(ctx, "/admin/stats", nil)
	require.Error(t, err)
	assert.True(t, appErrors.IsKind(err, appErrors.KindTransport))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestObserverReceivesRouteTemplate(t *testing.T) {
	backend := &fakeBackend{body: `{}`}
	obs := &recordingObserver{}
	client, _ := newTestClient(t, backend, func(o *Options) { o.Observer = obs })

	require.NoError(t, client.Get(context.Background(), "/admin/students/42/attendance?page=1&size=30", nil))
	assert.Equal(t, []string{"GET /admin/students/:id/attendance"}, obs.routes)
	assert.Equal(t, []int{http.StatusOK}, obs.status)
}

func TestIdenticalGetsReturnIdenticalData(t *testing.T) {
	backend := &fakeBackend{body: `{"token":"t","count":1}`}
	client, _ := newTestClient(t, backend)

	var first, second shaped
	require.NoError(t, client.Get(context.Background(), "/x", &first))
	require.NoError(t, client.Get(context.Background(), "/x", &second))
	assert.Equal(t, first, second)
}

func TestRouteTemplate(t *testing.T) {
	assert.Equal(t, "/admin/teachers/:id", RouteTemplate("/admin/teachers/7"))
	assert.Equal(t, "/admin/students", RouteTemplate("/admin/students?page=2&size=15"))
	assert.Equal(t, "/teacher/groups/:id/students", RouteTemplate("/teacher/groups/3/students"))
}

func TestErrorMessageHelper(t *testing.T) {
	assert.Equal(t, "", errorMessage(nil))
	assert.Equal(t, "", errorMessage([]byte(`[]`)))
	raw, _ := json.Marshal(map[string]interface{}{"detail": 5, "message": "fallback"})
	assert.Equal(t, "fallback", errorMessage(raw))
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.APIConfig{
		Origin:              "https://backend.test/",
		Prefix:              "/api/v1",
		TunnelHeader:        "ngrok-skip-browser-warning",
		TunnelHeaderValue:   "true",
		Timeout:             5 * time.Second,
		ClearTokenOnUnauthz: true,
	})
	assert.Equal(t, "https://backend.test/api/v1", opts.BaseURL)
	assert.Equal(t, map[string]string{"ngrok-skip-browser-warning": "true"}, opts.DefaultHeaders)
	assert.Equal(t, 5*time.Second, opts.HTTPClient.Timeout)
	assert.True(t, opts.ClearOnUnauthorized)
}

func TestBodylessSuccessReusesConnection(t *testing.T) {
	backend := &fakeBackend{body: `{"detail":"Student deleted","id":42}`}
	var conns int32
	srv := httptest.NewUnstartedServer(backend)
	srv.Config.ConnState = func(_ net.Conn, state http.ConnState) {
		if state == http.StateNew {
			atomic.AddInt32(&conns, 1)
		}
	}
	srv.Start()
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL, Session: session.New(nil)})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Delete(context.Background(), "/admin/students/42", nil))
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&conns))
}
