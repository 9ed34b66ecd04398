package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dsewell/school-scheduler-api/internal/models"
	appErrors "github.com/dsewell/school-scheduler-api/pkg/errors"
	"github.com/dsewell/school-scheduler-api/pkg/export"
)

// ExportFormat enumerates supported timetable export encodings.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type scheduleProvider interface {
	GetTeacherSchedule(ctx context.Context, teacherID string) ([]models.ScheduleEntry, error)
	GetStudentSchedule(ctx context.Context, studentID string) ([]models.ScheduleEntry, error)
}

type tableRenderer interface {
	Render(table export.Table) ([]byte, error)
}

// ExportResult carries a rendered timetable ready to stream to the client.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders teacher and student timetables as CSV or PDF.
type ExportService struct {
	schedules scheduleProvider
	csv       tableRenderer
	pdf       tableRenderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(schedules scheduleProvider, csv, pdf tableRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{schedules: schedules, csv: csv, pdf: pdf, logger: logger}
}

// TeacherTimetable renders the teacher's schedule in the requested format.
func (s *ExportService) TeacherTimetable(ctx context.Context, teacherID string, format ExportFormat) (*ExportResult, error) {
	entries, err := s.schedules.GetTeacherSchedule(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Teacher Timetable %s", teacherID)
	return s.render(scheduleTable(title, entries), fmt.Sprintf("teacher-timetable-%s", teacherID), format)
}

// StudentTimetable renders the student's schedule in the requested format.
func (s *ExportService) StudentTimetable(ctx context.Context, studentID string, format ExportFormat) (*ExportResult, error) {
	entries, err := s.schedules.GetStudentSchedule(ctx, studentID)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Student Timetable %s", studentID)
	return s.render(scheduleTable(title, entries), fmt.Sprintf("student-timetable-%s", studentID), format)
}

func (s *ExportService) render(table export.Table, baseName string, format ExportFormat) (*ExportResult, error) {
	stamp := time.Now().UTC().Format("20060102-150405")
	switch format {
	case ExportFormatCSV:
		data, err := s.csv.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("%s-%s.csv", baseName, stamp),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case ExportFormatPDF:
		data, err := s.pdf.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("%s-%s.pdf", baseName, stamp),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func scheduleTable(title string, entries []models.ScheduleEntry) export.Table {
	table := export.Table{
		Title:   title,
		Headers: []string{"Day", "Start", "End", "Class", "Subject", "Room", "Teacher"},
	}
	for _, entry := range entries {
		table.Rows = append(table.Rows, []string{
			models.DayName(entry.DayOfWeek),
			entry.StartTime,
			entry.EndTime,
			entry.ClassName,
			entry.Subject,
			entry.Room,
			entry.TeacherName,
		})
	}
	return table
}
