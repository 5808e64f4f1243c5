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

// DashboardReader composes admin screens.
type DashboardReader interface {
	Overview(ctx context.Context) (*models.AdminStats, error)
	StudentsScreen(ctx context.Context, q models.StudentsQuery) (*models.StudentsScreen, error)
	StudentProfile(ctx context.Context, id int64) (*models.StudentProfile, error)
	TeacherProfile(ctx context.Context, id int64) (*models.TeacherProfile, error)
	GroupsScreen(ctx context.Context, page int) (*models.GroupsScreen, error)
	GroupProfile(ctx context.Context, id int64) (*models.GroupProfile, error)
}

// DashboardFactory builds a DashboardReader acting as sess.
type DashboardFactory func(sess *session.Session) (DashboardReader, error)

// DashboardHandler wires dashboard compositions to HTTP endpoints.
type DashboardHandler struct {
	newDashboard DashboardFactory
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(newDashboard DashboardFactory) *DashboardHandler {
	return &DashboardHandler{newDashboard: newDashboard}
}

func (h *DashboardHandler) dashboard(c *gin.Context) (DashboardReader, bool) {
	sess, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	svc, err := h.newDashboard(sess)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return svc, true
}

// Overview godoc
// @Summary Admin counters
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /api/dashboard/overview [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	svc, ok := h.dashboard(c)
	if !ok {
		return
	}
	stats, err := svc.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Students godoc
// @Summary Students screen with group and search filters
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param size query int false "Page size (max 100)"
// @Param group_id query int false "Group ID"
// @Param status query string false "Student status"
// @Param payment_status query string false "Payment status"
// @Param search query string false "Name or username"
// @Success 200 {object} response.Envelope
// @Router /api/dashboard/students [get]
func (h *DashboardHandler) Students(c *gin.Context) {
	var q models.StudentsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	if (q.Status != "" && !q.Status.Valid()) || (q.PaymentStatus != "" && !q.PaymentStatus.Valid()) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown status filter"))
		return
	}

	svc, ok := h.dashboard(c)
	if !ok {
		return
	}
	screen, err := svc.StudentsScreen(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, screen, &models.Pagination{
		Page:  screen.Page,
		Size:  screen.Size,
		Total: screen.Total,
		Pages: screen.Pages,
	})
}

// Student godoc
// @Summary Student profile with attendance summary
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /api/dashboard/students/{id} [get]
func (h *DashboardHandler) Student(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	svc, ok := h.dashboard(c)
	if !ok {
		return
	}
	profile, err := svc.StudentProfile(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Teacher godoc
// @Summary Teacher profile with assigned groups
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /api/dashboard/teachers/{id} [get]
func (h *DashboardHandler) Teacher(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	svc, ok := h.dashboard(c)
	if !ok {
		return
	}
	profile, err := svc.TeacherProfile(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Groups godoc
// @Summary Groups screen with teacher names
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /api/dashboard/groups [get]
func (h *DashboardHandler) Groups(c *gin.Context) {
	var q struct {
		Page int `form:"page"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid page"))
		return
	}
	svc, ok := h.dashboard(c)
	if !ok {
		return
	}
	screen, err := svc.GroupsScreen(c.Request.Context(), q.Page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, screen, &models.Pagination{
		Page:  screen.Page,
		Size:  screen.Size,
		Total: screen.Total,
		Pages: screen.Pages,
	})
}

// Group godoc
// @Summary Group detail with teacher name and members
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /api/dashboard/groups/{id} [get]
func (h *DashboardHandler) Group(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	svc, ok := h.dashboard(c)
	if !ok {
		return
	}
	profile, err := svc.GroupProfile(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}
