package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dsewell/school-scheduler-api/internal/service"
	appErrors "github.com/dsewell/school-scheduler-api/pkg/errors"
	"github.com/dsewell/school-scheduler-api/pkg/response"
)

// TimeSlotHandler exposes slot assignment and removal through the engine.
type TimeSlotHandler struct {
	scheduler *service.SchedulingService
}

// NewTimeSlotHandler creates a new time slot handler.
func NewTimeSlotHandler(scheduler *service.SchedulingService) *TimeSlotHandler {
	return &TimeSlotHandler{scheduler: scheduler}
}

// Assign godoc
// @Summary Assign time slot
// @Description Assign a weekly time slot to a class after conflict checks
// @Tags TimeSlots
// @Accept json
// @Produce json
// @Param payload body service.AssignTimeSlotRequest true "Assign payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /time-slots [post]
func (h *TimeSlotHandler) Assign(c *gin.Context) {
	var req service.AssignTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	slot, err := h.scheduler.AssignTimeSlot(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, slot)
}

// Delete godoc
// @Summary Delete time slot
// @Description Remove a weekly time slot from its class
// @Tags TimeSlots
// @Produce json
// @Param id path string true "Time slot ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /time-slots/{id} [delete]
func (h *TimeSlotHandler) Delete(c *gin.Context) {
	if err := h.scheduler.DeleteTimeSlot(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
