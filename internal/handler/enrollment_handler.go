package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dsewell/school-scheduler-api/internal/models"
	"github.com/dsewell/school-scheduler-api/internal/service"
	appErrors "github.com/dsewell/school-scheduler-api/pkg/errors"
	"github.com/dsewell/school-scheduler-api/pkg/response"
)

type enrollmentLister interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
}

// EnrollmentHandler exposes enrollment endpoints through the engine.
type EnrollmentHandler struct {
	scheduler *service.SchedulingService
	repo      enrollmentLister
}

// NewEnrollmentHandler creates a new enrollment handler.
func NewEnrollmentHandler(scheduler *service.SchedulingService, repo enrollmentLister) *EnrollmentHandler {
	return &EnrollmentHandler{scheduler: scheduler, repo: repo}
}

// List godoc
// @Summary List enrollments
// @Description List enrollments filtered by student or class
// @Tags Enrollments
// @Produce json
// @Param student_id query string false "Student filter"
// @Param class_id query string false "Class filter"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	var filter models.EnrollmentFilter

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}
	filter.StudentID = c.Query("student_id")
	filter.ClassID = c.Query("class_id")

	enrollments, total, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments"))
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	response.JSON(c, http.StatusOK, enrollments, &models.Pagination{Page: page, PageSize: size, TotalCount: total})
}

// Create godoc
// @Summary Enroll student
// @Description Enroll a student into a class after capacity and conflict checks
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.CreateEnrollmentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req service.CreateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	enrollment, err := h.scheduler.CreateEnrollment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, enrollment)
}

// Delete godoc
// @Summary Drop enrollment
// @Description Remove an enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	if err := h.scheduler.DeleteEnrollment(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
