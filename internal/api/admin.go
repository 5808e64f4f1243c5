package api

import (
	"context"
	"net/http"

	"github.com/noah-isme/attendance-client/internal/models"
)

const (
	teachersPath = "/admin/teachers"
	studentsPath = "/admin/students"
	groupsPath   = "/admin/groups"
)

// AdminAPI covers the administrator CRUD endpoints and dashboard stats.
type AdminAPI struct {
	c     Doer
	sizes PageSizes
}

// StudentListParams filters GET /admin/students. Zero values are omitted,
// except Page and Size which default to 1 and the configured size.
type StudentListParams struct {
	Page          int
	Size          int
	GroupID       int64
	Status        models.StudentStatus
	PaymentStatus models.PaymentStatus
	Search        string
}

// Teachers

func (a *AdminAPI) GetTeachers(ctx context.Context, page, size int) (*models.PaginatedResponse[models.User], error) {
	var q query
	q.page(page, size, a.sizes.Teachers)

	var out models.PaginatedResponse[models.User]
	if err := a.c.Do(ctx, http.MethodGet, q.path(teachersPath), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) GetTeacher(ctx context.Context, id int64) (*models.User, error) {
	var out models.User
	if err := a.c.Do(ctx, http.MethodGet, idPath(teachersPath, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) CreateTeacher(ctx context.Context, req models.TeacherCreate) (*models.User, error) {
	var out models.User
	if err := a.c.Do(ctx, http.MethodPost, teachersPath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) UpdateTeacher(ctx context.Context, id int64, req models.TeacherUpdate) (*models.User, error) {
	var out models.User
	if err := a.c.Do(ctx, http.MethodPut, idPath(teachersPath, id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) DeleteTeacher(ctx context.Context, id int64) error {
	return a.c.Do(ctx, http.MethodDelete, idPath(teachersPath, id), nil, nil)
}

// Students

// GetStudents lists students. Parameters are sent in the order page, size,
// group_id, status, payment_status, search.
func (a *AdminAPI) GetStudents(ctx context.Context, params StudentListParams) (*models.PaginatedResponse[models.Student], error) {
	var q query
	q.page(params.Page, params.Size, a.sizes.Students)
	q.setIfInt("group_id", params.GroupID)
	q.setIfString("status", string(params.Status))
	q.setIfString("payment_status", string(params.PaymentStatus))
	q.setIfString("search", params.Search)

	var out models.PaginatedResponse[models.Student]
	if err := a.c.Do(ctx, http.MethodGet, q.path(studentsPath), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	var out models.Student
	if err := a.c.Do(ctx, http.MethodGet, idPath(studentsPath, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) CreateStudent(ctx context.Context, req models.StudentCreate) (*models.Student, error) {
	var out models.Student
	if err := a.c.Do(ctx, http.MethodPost, studentsPath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) UpdateStudent(ctx context.Context, id int64, req models.StudentUpdate) (*models.Student, error) {
	var out models.Student
	if err := a.c.Do(ctx, http.MethodPut, idPath(studentsPath, id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AssignGroup moves a student into groupID.
func (a *AdminAPI) AssignGroup(ctx context.Context, studentID, groupID int64) (*models.Student, error) {
	var out models.Student
	body := models.GroupAssignment{GroupID: groupID}
	if err := a.c.Do(ctx, http.MethodPatch, idPath(studentsPath, studentID, "group"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) DeleteStudent(ctx context.Context, id int64) error {
	return a.c.Do(ctx, http.MethodDelete, idPath(studentsPath, id), nil, nil)
}

func (a *AdminAPI) GetStudentAttendance(ctx context.Context, studentID int64, page, size int) (*models.PaginatedResponse[models.AttendanceRecord], error) {
	var q query
	q.page(page, size, a.sizes.StudentAttendance)

	var out models.PaginatedResponse[models.AttendanceRecord]
	if err := a.c.Do(ctx, http.MethodGet, q.path(idPath(studentsPath, studentID, "attendance")), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Groups

func (a *AdminAPI) GetGroups(ctx context.Context, page, size int) (*models.PaginatedResponse[models.Group], error) {
	var q query
	q.page(page, size, a.sizes.Groups)

	var out models.PaginatedResponse[models.Group]
	if err := a.c.Do(ctx, http.MethodGet, q.path(groupsPath), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	var out models.Group
	if err := a.c.Do(ctx, http.MethodGet, idPath(groupsPath, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) CreateGroup(ctx context.Context, req models.GroupCreate) (*models.Group, error) {
	var out models.Group
	if err := a.c.Do(ctx, http.MethodPost, groupsPath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) UpdateGroup(ctx context.Context, id int64, req models.GroupUpdate) (*models.Group, error) {
	var out models.Group
	if err := a.c.Do(ctx, http.MethodPut, idPath(groupsPath, id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminAPI) DeleteGroup(ctx context.Context, id int64) error {
	return a.c.Do(ctx, http.MethodDelete, idPath(groupsPath, id), nil, nil)
}

// GetStats returns the dashboard counters.
func (a *AdminAPI) GetStats(ctx context.Context) (*models.AdminStats, error) {
	var out models.AdminStats
	if err := a.c.Do(ctx, http.MethodGet, "/admin/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
