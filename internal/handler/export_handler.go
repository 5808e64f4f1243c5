package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-client/internal/service"
	"github.com/noah-isme/attendance-client/pkg/response"
	"github.com/noah-isme/attendance-client/pkg/session"
)

// AttendanceExporter renders student attendance files.
type AttendanceExporter interface {
	StudentAttendance(ctx context.Context, studentID int64, format string) (*service.ExportResult, error)
}

// ExporterFactory builds an AttendanceExporter acting as sess.
type ExporterFactory func(sess *session.Session) (AttendanceExporter, error)

// ExportHandler serves report downloads.
type ExportHandler struct {
	newExporter ExporterFactory
}

// NewExportHandler constructs the handler.
func NewExportHandler(newExporter ExporterFactory) *ExportHandler {
	return &ExportHandler{newExporter: newExporter}
}

// StudentAttendance godoc
// @Summary Download a student's attendance history
// @Tags Exports
// @Produce text/csv,application/pdf
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /api/exports/students/{id}/attendance [get]
func (h *ExportHandler) StudentAttendance(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	sess, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	exporter, err := h.newExporter(sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	res, err := exporter.StudentAttendance(c.Request.Context(), id, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, res.Filename, res.ContentType, res.Data)
}
