package service

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/dsewell/school-scheduler-api/internal/models"
)

type conflictSlotReader interface {
	ListByTeacherAndDayTx(ctx context.Context, tx *sqlx.Tx, teacherID string, day int) ([]models.TimeSlot, error)
	ListByRoomAndDayTx(ctx context.Context, tx *sqlx.Tx, room string, day int) ([]models.TimeSlot, error)
	ListByStudentAndDayTx(ctx context.Context, tx *sqlx.Tx, studentID string, day int, excludeClassID string) ([]models.TimeSlot, error)
}

type conflictEnrollmentReader interface {
	CountByClassTx(ctx context.Context, tx *sqlx.Tx, classID string) (int, error)
}

// ConflictChecker evaluates the scheduling invariants against committed
// state. All queries run inside the caller's transaction so the engine's
// check-then-act sequence stays atomic.
type ConflictChecker struct {
	slots       conflictSlotReader
	enrollments conflictEnrollmentReader
	logger      *zap.Logger
}

// NewConflictChecker constructs a ConflictChecker.
func NewConflictChecker(slots conflictSlotReader, enrollments conflictEnrollmentReader, logger *zap.Logger) *ConflictChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictChecker{slots: slots, enrollments: enrollments, logger: logger}
}

// TeacherConflict returns the first committed slot taught by the teacher that
// overlaps the proposed interval, or nil when the teacher is free.
func (c *ConflictChecker) TeacherConflict(ctx context.Context, tx *sqlx.Tx, teacherID string, interval models.Interval, excludeSlotID string) (*models.SlotConflict, error) {
	existing, err := c.slots.ListByTeacherAndDayTx(ctx, tx, teacherID, interval.Day)
	if err != nil {
		return nil, err
	}
	return firstOverlap(existing, interval, excludeSlotID, models.ConflictTeacher), nil
}

// RoomConflict returns the first committed slot booked in the room that
// overlaps the proposed interval. Room comparison is exact and
// case-sensitive; it happens in the store query.
func (c *ConflictChecker) RoomConflict(ctx context.Context, tx *sqlx.Tx, room string, interval models.Interval, excludeSlotID string) (*models.SlotConflict, error) {
	existing, err := c.slots.ListByRoomAndDayTx(ctx, tx, room, interval.Day)
	if err != nil {
		return nil, err
	}
	return firstOverlap(existing, interval, excludeSlotID, models.ConflictRoom), nil
}

// StudentConflict returns the first slot of the student's enrolled classes
// that overlaps the proposed interval, ignoring the class being enrolled into.
func (c *ConflictChecker) StudentConflict(ctx context.Context, tx *sqlx.Tx, studentID string, interval models.Interval, excludeClassID string) (*models.SlotConflict, error) {
	existing, err := c.slots.ListByStudentAndDayTx(ctx, tx, studentID, interval.Day, excludeClassID)
	if err != nil {
		return nil, err
	}
	return firstOverlap(existing, interval, "", models.ConflictStudent), nil
}

// CapacityExceeded reports whether the class has no seats left.
func (c *ConflictChecker) CapacityExceeded(ctx context.Context, tx *sqlx.Tx, class *models.Class) (bool, error) {
	count, err := c.enrollments.CountByClassTx(ctx, tx, class.ID)
	if err != nil {
		return false, err
	}
	return count >= class.Capacity, nil
}

func firstOverlap(existing []models.TimeSlot, interval models.Interval, excludeSlotID, dimension string) *models.SlotConflict {
	for _, slot := range existing {
		if excludeSlotID != "" && slot.ID == excludeSlotID {
			continue
		}
		if slot.Interval().Overlaps(interval) {
			return &models.SlotConflict{
				TimeSlotID: slot.ID,
				ClassID:    slot.ClassID,
				DayOfWeek:  slot.DayOfWeek,
				StartTime:  slot.StartTime,
				EndTime:    slot.EndTime,
				Dimension:  dimension,
			}
		}
	}
	return nil
}
