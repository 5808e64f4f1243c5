package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-client/internal/models"
	appErrors "github.com/noah-isme/attendance-client/pkg/errors"
	"github.com/noah-isme/attendance-client/pkg/export"
)

type attendanceSource interface {
	GetStudent(ctx context.Context, id int64) (*models.Student, error)
	GetStudentAttendance(ctx context.Context, studentID int64, page, size int) (*models.PaginatedResponse[models.AttendanceRecord], error)
}

type exportRecorder interface {
	RecordExport(format string)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	PageSize int
	// MaxPages bounds how many history pages one export may fetch.
	MaxPages int
}

// ExportResult is a rendered file ready to be written or streamed.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// ExportService renders attendance history into downloadable files.
type ExportService struct {
	source   attendanceSource
	recorder exportRecorder
	logger   *zap.Logger
	now      func() time.Time
	cfg      ExportConfig
}

// NewExportService constructs an ExportService. recorder may be nil.
func NewExportService(source attendanceSource, recorder exportRecorder, logger *zap.Logger, cfg ExportConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 50
	}
	return &ExportService{source: source, recorder: recorder, logger: logger, now: time.Now, cfg: cfg}
}

// StudentAttendance exports the full attendance history of one student as
// CSV or PDF.
func (s *ExportService) StudentAttendance(ctx context.Context, studentID int64, format string) (*ExportResult, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported export format")
	}

	student, err := s.source.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	records, err := s.history(ctx, studentID)
	if err != nil {
		return nil, err
	}

	summary := models.SummarizeAttendance(records)
	report := export.Report{
		Title: "Attendance report",
		Meta: []export.Field{
			{Label: "Student", Value: student.FullName()},
			{Label: "Student ID", Value: strconv.FormatInt(student.ID, 10)},
			{Label: "Generated", Value: s.now().Format("2006-01-02 15:04")},
		},
		Columns: []export.Column{
			{Key: "date", Label: "Date", Width: 2},
			{Key: "status", Label: "Status", Width: 1.5},
			{Key: "note", Label: "Note", Width: 4},
		},
		Summary: []export.Field{
			{Label: "Total", Value: strconv.Itoa(summary.Total)},
			{Label: "Present", Value: strconv.Itoa(summary.Present)},
			{Label: "Absent", Value: strconv.Itoa(summary.Absent)},
			{Label: "Late", Value: strconv.Itoa(summary.Late)},
			{Label: "Attendance", Value: fmt.Sprintf("%d%% (%s)", summary.Percent, summary.Level)},
		},
	}
	for _, r := range records {
		report.Rows = append(report.Rows, map[string]string{
			"date":   r.Date,
			"status": string(r.Status),
			"note":   models.StringValue(r.Note),
		})
	}

	data, err := export.RendererFor(f).Render(report)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	if s.recorder != nil {
		s.recorder.RecordExport(string(f))
	}
	s.logger.Info("attendance exported",
		zap.Int64("student_id", studentID),
		zap.String("format", string(f)),
		zap.Int("rows", len(records)),
	)

	return &ExportResult{
		Filename:    fmt.Sprintf("attendance-student-%d-%s%s", studentID, s.now().Format("20060102"), f.Extension()),
		ContentType: f.ContentType(),
		Data:        data,
		Rows:        len(records),
	}, nil
}

func (s *ExportService) history(ctx context.Context, studentID int64) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	for page := 1; page <= s.cfg.MaxPages; page++ {
		res, err := s.source.GetStudentAttendance(ctx, studentID, page, s.cfg.PageSize)
		if err != nil {
			return nil, err
		}
		records = append(records, res.Items...)
		if len(res.Items) == 0 || len(records) >= res.Total {
			return records, nil
		}
	}
	s.logger.Warn("attendance export truncated", zap.Int64("student_id", studentID), zap.Int("rows", len(records)))
	return records, nil
}
