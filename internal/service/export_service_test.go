package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsewell/school-scheduler-api/internal/models"
	appErrors "github.com/dsewell/school-scheduler-api/pkg/errors"
)

type mockScheduleProvider struct {
	entries []models.ScheduleEntry
}

func (m *mockScheduleProvider) GetTeacherSchedule(ctx context.Context, teacherID string) ([]models.ScheduleEntry, error) {
	return m.entries, nil
}

func (m *mockScheduleProvider) GetStudentSchedule(ctx context.Context, studentID string) ([]models.ScheduleEntry, error) {
	return m.entries, nil
}

func scheduleEntries() []models.ScheduleEntry {
	return []models.ScheduleEntry{
		{
			TimeSlot:    models.TimeSlot{ID: "slot-1", ClassID: "class-1", DayOfWeek: 0, StartTime: "09:00", EndTime: "10:00"},
			ClassName:   "Algebra I",
			Subject:     "Math",
			Room:        "101",
			TeacherID:   "teacher-1",
			TeacherName: "Tom",
		},
	}
}

func TestExportServiceTeacherTimetableCSV(t *testing.T) {
	svc := NewExportService(&mockScheduleProvider{entries: scheduleEntries()}, nil, nil, nil)

	result, err := svc.TeacherTimetable(context.Background(), "teacher-1", ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Data)
	assert.Contains(t, body, "Day,Start,End,Class,Subject,Room,Teacher")
	assert.Contains(t, body, "Monday,09:00,10:00,Algebra I,Math,101,Tom")
}

func TestExportServiceStudentTimetablePDF(t *testing.T) {
	svc := NewExportService(&mockScheduleProvider{entries: scheduleEntries()}, nil, nil, nil)

	result, err := svc.StudentTimetable(context.Background(), "student-1", ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(result.Data), "%PDF"))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(&mockScheduleProvider{}, nil, nil, nil)

	_, err := svc.TeacherTimetable(context.Background(), "teacher-1", ExportFormat("xlsx"))
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}
