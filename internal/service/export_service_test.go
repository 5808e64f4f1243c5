package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-client/internal/models"
	appErrors "github.com/noah-isme/attendance-client/pkg/errors"
)

type countingRecorder struct {
	formats []string
}

func (r *countingRecorder) RecordExport(format string) {
	r.formats = append(r.formats, format)
}

func historyOf(n int) []models.AttendanceRecord {
	out := make([]models.AttendanceRecord, n)
	for i := range out {
		status := models.AttendancePresent
		if i%4 == 3 {
			status = models.AttendanceAbsent
		}
		out[i] = models.AttendanceRecord{StudentID: 7, Date: fmt.Sprintf("2025-01-%02d", i%28+1), Status: status}
	}
	return out
}

func TestExportServiceCSVFetchesAllPages(t *testing.T) {
	admin := &fakeAdmin{
		student:    &models.Student{ID: 7, FirstName: "Ali", LastName: "Valiyev"},
		attendance: historyOf(8),
	}
	recorder := &countingRecorder{}
	svc := NewExportService(admin, recorder, nil, ExportConfig{PageSize: 3})
	svc.now = func() time.Time { return time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC) }

	res, err := svc.StudentAttendance(context.Background(), 7, "csv")
	require.NoError(t, err)

	assert.Equal(t, "attendance-student-7-20250201.csv", res.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", res.ContentType)
	assert.Equal(t, 8, res.Rows)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, admin.attendanceCall)
	assert.Equal(t, []string{"csv"}, recorder.formats)

	body := string(res.Data)
	assert.True(t, strings.HasPrefix(body, "Date,Status,Note\n2025-01-01,present,\n"))
	assert.Contains(t, body, "Attendance,75% (warning)")
}

func TestExportServicePDF(t *testing.T) {
	admin := &fakeAdmin{student: &models.Student{ID: 7, FirstName: "Ali"}, attendance: historyOf(2)}
	svc := NewExportService(admin, nil, nil, ExportConfig{})

	res, err := svc.StudentAttendance(context.Background(), 7, "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", res.ContentType)
	assert.True(t, strings.HasSuffix(res.Filename, ".pdf"))
	assert.True(t, bytes.HasPrefix(res.Data, []byte("%PDF-")))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	admin := &fakeAdmin{}
	svc := NewExportService(admin, nil, nil, ExportConfig{})

	_, err := svc.StudentAttendance(context.Background(), 7, "xlsx")
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.StatusOf(err))
	assert.Empty(t, admin.attendanceCall)
}

func TestExportServiceStopsAtMaxPages(t *testing.T) {
	admin := &fakeAdmin{student: &models.Student{ID: 7}, attendance: historyOf(10)}
	svc := NewExportService(admin, nil, nil, ExportConfig{PageSize: 2, MaxPages: 2})

	res, err := svc.StudentAttendance(context.Background(), 7, "csv")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Rows)
}

func TestExportServicePropagatesBackendError(t *testing.T) {
	backendErr := appErrors.HTTPStatus(404, "Student not found")
	svc := NewExportService(&fakeAdmin{err: backendErr}, nil, nil, ExportConfig{})

	_, err := svc.StudentAttendance(context.Background(), 7, "csv")
	assert.Same(t, backendErr, err)
}
