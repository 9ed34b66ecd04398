package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dsewell/school-scheduler-api/internal/service"
	"github.com/dsewell/school-scheduler-api/pkg/response"
)

// ScheduleHandler exposes read-only timetable views and exports.
type ScheduleHandler struct {
	scheduler *service.SchedulingService
	exports   *service.ExportService
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(scheduler *service.SchedulingService, exports *service.ExportService) *ScheduleHandler {
	return &ScheduleHandler{scheduler: scheduler, exports: exports}
}

// TeacherSchedule godoc
// @Summary Teacher schedule
// @Description All slots taught by the teacher, ordered by day then start time
// @Tags Schedules
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedules/teachers/{id} [get]
func (h *ScheduleHandler) TeacherSchedule(c *gin.Context) {
	entries, err := h.scheduler.GetTeacherSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, nil)
}

// StudentSchedule godoc
// @Summary Student schedule
// @Description Slots of the student's enrolled classes, ordered by day then start time
// @Tags Schedules
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedules/students/{id} [get]
func (h *ScheduleHandler) StudentSchedule(c *gin.Context) {
	entries, err := h.scheduler.GetStudentSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, nil)
}

// ExportTeacherSchedule godoc
// @Summary Export teacher timetable
// @Description Download the teacher's timetable as CSV or PDF
// @Tags Schedules
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Teacher ID"
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /schedules/teachers/{id}/export [get]
func (h *ScheduleHandler) ExportTeacherSchedule(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.exports.TeacherTimetable(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	streamExport(c, result)
}

// ExportStudentSchedule godoc
// @Summary Export student timetable
// @Description Download the student's timetable as CSV or PDF
// @Tags Schedules
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /schedules/students/{id}/export [get]
func (h *ScheduleHandler) ExportStudentSchedule(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.exports.StudentTimetable(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	streamExport(c, result)
}

func streamExport(c *gin.Context, result *service.ExportResult) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
