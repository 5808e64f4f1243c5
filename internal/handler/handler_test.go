package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-client/internal/middleware"
	"github.com/noah-isme/attendance-client/internal/models"
	"github.com/noah-isme/attendance-client/internal/service"
	appErrors "github.com/noah-isme/attendance-client/pkg/errors"
	"github.com/noah-isme/attendance-client/pkg/session"
)

type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      map[string]interface{} `json:"error"`
	Pagination map[string]interface{} `json:"pagination"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

type fakeDashboard struct {
	stats   *models.AdminStats
	screen  *models.StudentsScreen
	student *models.StudentProfile
	teacher *models.TeacherProfile
	groups  *models.GroupsScreen
	group   *models.GroupProfile
	err     error

	lastQuery models.StudentsQuery
	lastID    int64
	lastPage  int
}

func (f *fakeDashboard) Overview(context.Context) (*models.AdminStats, error) {
	return f.stats, f.err
}

func (f *fakeDashboard) StudentsScreen(_ context.Context, q models.StudentsQuery) (*models.StudentsScreen, error) {
	f.lastQuery = q
	return f.screen, f.err
}

func (f *fakeDashboard) StudentProfile(_ context.Context, id int64) (*models.StudentProfile, error) {
	f.lastID = id
	return f.student, f.err
}

func (f *fakeDashboard) TeacherProfile(_ context.Context, id int64) (*models.TeacherProfile, error) {
	f.lastID = id
	return f.teacher, f.err
}

func (f *fakeDashboard) GroupsScreen(_ context.Context, page int) (*models.GroupsScreen, error) {
	f.lastPage = page
	return f.groups, f.err
}

func (f *fakeDashboard) GroupProfile(_ context.Context, id int64) (*models.GroupProfile, error) {
	f.lastID = id
	return f.group, f.err
}

func dashboardRouter(fake *fakeDashboard, tokens *[]string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewDashboardHandler(func(sess *session.Session) (DashboardReader, error) {
		if tokens != nil {
			*tokens = append(*tokens, sess.Token())
		}
		return fake, nil
	})
	r := gin.New()
	g := r.Group("/api/dashboard", middleware.Bearer())
	g.GET("/overview", h.Overview)
	g.GET("/students", h.Students)
	g.GET("/students/:id", h.Student)
	g.GET("/teachers/:id", h.Teacher)
	g.GET("/groups", h.Groups)
	g.GET("/groups/:id", h.Group)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer caller-token")
	r.ServeHTTP(rec, req)
	return rec
}

func TestDashboardOverviewUsesCallerToken(t *testing.T) {
	var tokens []string
	r := dashboardRouter(&fakeDashboard{stats: &models.AdminStats{TotalStudents: 143}}, &tokens)

	rec := get(r, "/api/dashboard/overview")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"caller-token"}, tokens)
	assert.JSONEq(t, `{"total_teachers":0,"total_students":143,"total_groups":0,"today_attendance_rate":0}`, string(decodeEnvelope(t, rec).Data))
}

func TestDashboardStudentsBindsQuery(t *testing.T) {
	fake := &fakeDashboard{screen: &models.StudentsScreen{Total: 73, Page: 2, Size: 15, Pages: 5}}
	r := dashboardRouter(fake, nil)

	rec := get(r, "/api/dashboard/students?page=2&size=15&group_id=3&status=active&search=ali")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StudentsQuery{Page: 2, Size: 15, GroupID: 3, Status: models.StudentActive, Search: "ali"}, fake.lastQuery)
	assert.Equal(t, float64(5), decodeEnvelope(t, rec).Pagination["pages"])
}

func TestDashboardStudentsRejectsUnknownStatus(t *testing.T) {
	r := dashboardRouter(&fakeDashboard{}, nil)
	rec := get(r, "/api/dashboard/students?status=left")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(r, "/api/dashboard/students?page=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardStudentsCapsPageSize(t *testing.T) {
	fake := &fakeDashboard{screen: &models.StudentsScreen{Page: 1, Size: 100}}
	r := dashboardRouter(fake, nil)

	rec := get(r, "/api/dashboard/students?size=500")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.StudentsQuery{}, fake.lastQuery)

	rec = get(r, "/api/dashboard/students?size=100")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100, fake.lastQuery.Size)
}

func TestDashboardGroupsReportsPageSize(t *testing.T) {
	fake := &fakeDashboard{groups: &models.GroupsScreen{Total: 45, Page: 2, Size: 20, Pages: 3}}
	r := dashboardRouter(fake, nil)

	rec := get(r, "/api/dashboard/groups?page=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, fake.lastPage)
	pagination := decodeEnvelope(t, rec).Pagination
	assert.Equal(t, float64(20), pagination["size"])
	assert.Equal(t, float64(3), pagination["pages"])
}

func TestDashboardProfilesParseID(t *testing.T) {
	fake := &fakeDashboard{
		student: &models.StudentProfile{Summary: models.AttendanceSummary{Percent: 80, Level: models.LevelGood}},
		teacher: &models.TeacherProfile{Teacher: models.User{ID: 2}},
	}
	r := dashboardRouter(fake, nil)

	rec := get(r, "/api/dashboard/students/7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), fake.lastID)

	rec = get(r, "/api/dashboard/teachers/2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), fake.lastID)

	rec = get(r, "/api/dashboard/students/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardGroupDetail(t *testing.T) {
	fake := &fakeDashboard{group: &models.GroupProfile{
		Group:       models.Group{ID: 7, Name: "B2", TeacherID: 2},
		TeacherName: "Olim Karimov",
		Students:    []models.Student{{ID: 1, FirstName: "Ali"}},
		Total:       1,
	}}
	r := dashboardRouter(fake, nil)

	rec := get(r, "/api/dashboard/groups/7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), fake.lastID)
	var profile models.GroupProfile
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &profile))
	assert.Equal(t, "Olim Karimov", profile.TeacherName)
	assert.Len(t, profile.Students, 1)

	rec = get(r, "/api/dashboard/groups/0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardMapsBackendErrors(t *testing.T) {
	r := dashboardRouter(&fakeDashboard{err: appErrors.HTTPStatus(http.StatusNotFound, "Student not found")}, nil)
	rec := get(r, "/api/dashboard/students/9")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Student not found", decodeEnvelope(t, rec).Error["message"])

	r = dashboardRouter(&fakeDashboard{err: appErrors.Shape(assert.AnError)}, nil)
	rec = get(r, "/api/dashboard/groups?page=2")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDashboardRequiresBearer(t *testing.T) {
	r := dashboardRouter(&fakeDashboard{}, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/overview", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type fakeAuthenticator struct {
	res      *models.AuthResponse
	err      error
	initData string
}

func (f *fakeAuthenticator) Login(_ context.Context, initData string) (*models.AuthResponse, error) {
	f.initData = initData
	return f.res, f.err
}

func TestAuthHandlerTelegram(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeAuthenticator{res: &models.AuthResponse{Token: "tok", User: models.User{ID: 1}}}
	h := NewAuthHandler(func(*session.Session) (Authenticator, error) { return fake, nil })
	r := gin.New()
	r.POST("/api/auth/telegram", h.Telegram)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/telegram", strings.NewReader(`{"init_data":"query_id=1"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "query_id=1", fake.initData)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"token":"tok"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/telegram", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeExporter struct {
	res    *service.ExportResult
	err    error
	format string
}

func (f *fakeExporter) StudentAttendance(_ context.Context, _ int64, format string) (*service.ExportResult, error) {
	f.format = format
	return f.res, f.err
}

func TestExportHandlerStreamsFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeExporter{res: &service.ExportResult{
		Filename:    "attendance-student-7-20250201.csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        []byte("Date,Status,Note\n"),
	}}
	h := NewExportHandler(func(*session.Session) (AttendanceExporter, error) { return fake, nil })
	r := gin.New()
	r.GET("/api/exports/students/:id/attendance", middleware.Bearer(), h.StudentAttendance)

	rec := get(r, "/api/exports/students/7/attendance?format=csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", fake.format)
	assert.Equal(t, `attachment; filename="attendance-student-7-20250201.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Date,Status,Note\n", rec.Body.String())

	fake.err = appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	rec = get(r, "/api/exports/students/7/attendance?format=xlsx")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(service.NewMetricsService(), "https://backend.example.com/api/v1")
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/metrics", h.Prometheus)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"backend":"https://backend.example.com/api/v1"`)
	assert.Contains(t, rec.Body.String(), `"requests_total"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "goroutines_total")

	rec = httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	NewMetricsHandler(nil, "").Prometheus(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
