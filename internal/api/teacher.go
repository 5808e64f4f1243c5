package api

import (
	"context"
	"net/http"

	"github.com/noah-isme/attendance-client/internal/models"
)

// TeacherAPI covers the endpoints available to a logged-in teacher.
type TeacherAPI struct {
	c     Doer
	sizes PageSizes
}

func (t *TeacherAPI) GetMyGroups(ctx context.Context) ([]models.Group, error) {
	var out []models.Group
	if err := t.c.Do(ctx, http.MethodGet, "/teacher/groups", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *TeacherAPI) GetGroupStudents(ctx context.Context, groupID int64) ([]models.Student, error) {
	var out []models.Student
	if err := t.c.Do(ctx, http.MethodGet, idPath("/teacher/groups", groupID, "students"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitAttendance posts the marks of one group for one date.
func (t *TeacherAPI) SubmitAttendance(ctx context.Context, groupID int64, date string, records []models.AttendanceMark) error {
	body := models.AttendanceSubmission{GroupID: groupID, Date: date, Records: records}
	return t.c.Do(ctx, http.MethodPost, "/teacher/attendance", body, nil)
}

// GetAttendanceHistory lists past marks, optionally for one group. groupID 0
// means every group of the teacher.
func (t *TeacherAPI) GetAttendanceHistory(ctx context.Context, groupID int64, page, size int) (*models.PaginatedResponse[models.AttendanceRecord], error) {
	var q query
	q.setIfInt("group_id", groupID)
	q.page(page, size, t.sizes.TeacherHistory)

	var out models.PaginatedResponse[models.AttendanceRecord]
	if err := t.c.Do(ctx, http.MethodGet, q.path("/teacher/attendance/history"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckTodayAttendance returns the marks already submitted for groupID on
// date. A JSON null from the backend yields a nil slice.
func (t *TeacherAPI) CheckTodayAttendance(ctx context.Context, groupID int64, date string) ([]models.AttendanceRecord, error) {
	var q query
	q.setInt("group_id", groupID)
	q.set("date", date)

	var out []models.AttendanceRecord
	if err := t.c.Do(ctx, http.MethodGet, q.path("/teacher/attendance/check"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
