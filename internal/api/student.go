package api

import (
	"context"
	"net/http"

	"github.com/noah-isme/attendance-client/internal/models"
)

// StudentAPI covers the endpoints available to a logged-in student.
type StudentAPI struct {
	c     Doer
	sizes PageSizes
}

func (s *StudentAPI) GetMyAttendance(ctx context.Context, page, size int) (*models.PaginatedResponse[models.AttendanceRecord], error) {
	var q query
	q.page(page, size, s.sizes.OwnAttendance)

	var out models.PaginatedResponse[models.AttendanceRecord]
	if err := s.c.Do(ctx, http.MethodGet, q.path("/student/attendance"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *StudentAPI) GetMyStats(ctx context.Context) (*models.AttendanceStats, error) {
	var out models.AttendanceStats
	if err := s.c.Do(ctx, http.MethodGet, "/student/attendance/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *StudentAPI) GetMyGroup(ctx context.Context) (*models.Group, error) {
	var out models.Group
	if err := s.c.Do(ctx, http.MethodGet, "/student/group", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
