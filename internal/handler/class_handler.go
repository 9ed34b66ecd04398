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

type classSlotLister interface {
	ListByClass(ctx context.Context, classID string) ([]models.TimeSlot, error)
}

// ClassHandler handles class CRUD and slot listing endpoints.
type ClassHandler struct {
	service   *service.ClassService
	scheduler *service.SchedulingService
	slots     classSlotLister
}

// NewClassHandler creates a new class handler.
func NewClassHandler(svc *service.ClassService, scheduler *service.SchedulingService, slots classSlotLister) *ClassHandler {
	return &ClassHandler{service: svc, scheduler: scheduler, slots: slots}
}

// List godoc
// @Summary List classes
// @Description List classes with pagination and filtering
// @Tags Classes
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param subject query string false "Subject filter"
// @Param teacher_id query string false "Teacher filter"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	var filter models.ClassFilter

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}

	filter.Subject = c.Query("subject")
	filter.TeacherID = c.Query("teacher_id")
	filter.Search = c.Query("search")
	filter.SortBy = c.Query("sort_by")
	filter.SortOrder = c.Query("sort_order")

	classes, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, classes, pagination)
}

// Get godoc
// @Summary Get class
// @Description Get class detail
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, class, nil)
}

// Create godoc
// @Summary Create class
// @Description Create a new class owned by a teacher
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.CreateClassRequest true "Create class payload"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	class, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, class)
}

// Update godoc
// @Summary Update class
// @Description Update class details
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.UpdateClassRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	var req service.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	class, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, class, nil)
}

// ListSlots godoc
// @Summary List class time slots
// @Description List the weekly time slots assigned to a class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id}/time-slots [get]
func (h *ClassHandler) ListSlots(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.service.Get(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	slots, err := h.slots.ListByClass(c.Request.Context(), id)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time slots"))
		return
	}

	response.JSON(c, http.StatusOK, slots, nil)
}

// Delete godoc
// @Summary Delete class
// @Description Delete a class; force cascades slots and enrollments
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Param force query bool false "Cascade dependent records"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))
	if err := h.scheduler.DeleteClass(c.Request.Context(), c.Param("id"), force); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
