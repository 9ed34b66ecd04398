package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dsewell/school-scheduler-api/internal/models"
)

const slotColumns = `id, class_id, day_of_week, start_time, end_time, created_at, updated_at`

const scheduleEntryColumns = `ts.id, ts.class_id, ts.day_of_week, ts.start_time, ts.end_time, ts.created_at, ts.updated_at,
        c.name AS class_name, c.subject, c.room, c.teacher_id, u.name AS teacher_name`

// TimeSlotRepository provides persistence for weekly time slots.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a new time slot repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// FindByID loads a time slot by id.
func (r *TimeSlotRepository) FindByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	return findSlot(ctx, r.db, id)
}

// FindByIDTx loads a time slot by id within a transaction.
func (r *TimeSlotRepository) FindByIDTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.TimeSlot, error) {
	return findSlot(ctx, tx, id)
}

func findSlot(ctx context.Context, q sqlx.QueryerContext, id string) (*models.TimeSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM time_slots WHERE id = $1 LIMIT 1`, slotColumns)
	var slot models.TimeSlot
	if err := sqlx.GetContext(ctx, q, &slot, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find time slot by id: %w", err)
	}
	return &slot, nil
}

// ListByClass returns slots for a class ordered by day/time.
func (r *TimeSlotRepository) ListByClass(ctx context.Context, classID string) ([]models.TimeSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM time_slots WHERE class_id = $1 ORDER BY day_of_week ASC, start_time ASC`, slotColumns)
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, classID); err != nil {
		return nil, fmt.Errorf("list time slots by class: %w", err)
	}
	return slots, nil
}

// ListByClassTx returns a class's slots within a transaction.
func (r *TimeSlotRepository) ListByClassTx(ctx context.Context, tx *sqlx.Tx, classID string) ([]models.TimeSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM time_slots WHERE class_id = $1 ORDER BY day_of_week ASC, start_time ASC`, slotColumns)
	var slots []models.TimeSlot
	if err := tx.SelectContext(ctx, &slots, query, classID); err != nil {
		return nil, fmt.Errorf("list time slots by class: %w", err)
	}
	return slots, nil
}

// ListByTeacherAndDayTx returns slots taught by a teacher on a given day,
// scoped to the caller's transaction. Teacher ownership is derived through
// the owning class.
func (r *TimeSlotRepository) ListByTeacherAndDayTx(ctx context.Context, tx *sqlx.Tx, teacherID string, day int) ([]models.TimeSlot, error) {
	const query = `SELECT ts.id, ts.class_id, ts.day_of_week, ts.start_time, ts.end_time, ts.created_at, ts.updated_at
        FROM time_slots ts
        JOIN classes c ON c.id = ts.class_id
        WHERE c.teacher_id = $1 AND ts.day_of_week = $2`
	var slots []models.TimeSlot
	if err := tx.SelectContext(ctx, &slots, query, teacherID, day); err != nil {
		return nil, fmt.Errorf("list time slots by teacher and day: %w", err)
	}
	return slots, nil
}

// ListByRoomAndDayTx returns slots booked in a room on a given day. Room
// matching is case-sensitive exact string equality.
func (r *TimeSlotRepository) ListByRoomAndDayTx(ctx context.Context, tx *sqlx.Tx, room string, day int) ([]models.TimeSlot, error) {
	const query = `SELECT ts.id, ts.class_id, ts.day_of_week, ts.start_time, ts.end_time, ts.created_at, ts.updated_at
        FROM time_slots ts
        JOIN classes c ON c.id = ts.class_id
        WHERE c.room = $1 AND ts.day_of_week = $2`
	var slots []models.TimeSlot
	if err := tx.SelectContext(ctx, &slots, query, room, day); err != nil {
		return nil, fmt.Errorf("list time slots by room and day: %w", err)
	}
	return slots, nil
}

// ListByStudentAndDayTx returns slots of every class the student is enrolled
// in on a given day, optionally excluding one class.
func (r *TimeSlotRepository) ListByStudentAndDayTx(ctx context.Context, tx *sqlx.Tx, studentID string, day int, excludeClassID string) ([]models.TimeSlot, error) {
	query := `SELECT ts.id, ts.class_id, ts.day_of_week, ts.start_time, ts.end_time, ts.created_at, ts.updated_at
        FROM time_slots ts
        JOIN enrollments e ON e.class_id = ts.class_id
        WHERE e.student_id = $1 AND ts.day_of_week = $2`
	args := []interface{}{studentID, day}
	if excludeClassID != "" {
		query += fmt.Sprintf(" AND ts.class_id <> $%d", len(args)+1)
		args = append(args, excludeClassID)
	}
	var slots []models.TimeSlot
	if err := tx.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, fmt.Errorf("list time slots by student and day: %w", err)
	}
	return slots, nil
}

// TeacherSchedule returns a teacher's slots joined with class info, ordered
// by day then start time.
func (r *TimeSlotRepository) TeacherSchedule(ctx context.Context, teacherID string) ([]models.ScheduleEntry, error) {
	query := fmt.Sprintf(`SELECT %s
        FROM time_slots ts
        JOIN classes c ON c.id = ts.class_id
        JOIN users u ON u.id = c.teacher_id
        WHERE c.teacher_id = $1
        ORDER BY ts.day_of_week ASC, ts.start_time ASC`, scheduleEntryColumns)
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, teacherID); err != nil {
		return nil, fmt.Errorf("teacher schedule: %w", err)
	}
	return entries, nil
}

// StudentSchedule returns the slots of every class the student is enrolled
// in, joined with class info, ordered by day then start time.
func (r *TimeSlotRepository) StudentSchedule(ctx context.Context, studentID string) ([]models.ScheduleEntry, error) {
	query := fmt.Sprintf(`SELECT %s
        FROM time_slots ts
        JOIN enrollments e ON e.class_id = ts.class_id
        JOIN classes c ON c.id = ts.class_id
        JOIN users u ON u.id = c.teacher_id
        WHERE e.student_id = $1
        ORDER BY ts.day_of_week ASC, ts.start_time ASC`, scheduleEntryColumns)
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID); err != nil {
		return nil, fmt.Errorf("student schedule: %w", err)
	}
	return entries, nil
}

// CreateTx stores a new time slot within a transaction.
func (r *TimeSlotRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, slot *models.TimeSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now

	const query = `INSERT INTO time_slots (id, class_id, day_of_week, start_time, end_time, created_at, updated_at)
        VALUES (:id, :class_id, :day_of_week, :start_time, :end_time, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}
	return nil
}

// DeleteTx removes a time slot within a transaction.
func (r *TimeSlotRepository) DeleteTx(ctx context.Context, tx *sqlx.Tx, id string) (bool, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM time_slots WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete time slot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete time slot rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteByClassTx removes all slots owned by a class within a transaction.
func (r *TimeSlotRepository) DeleteByClassTx(ctx context.Context, tx *sqlx.Tx, classID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM time_slots WHERE class_id = $1`, classID); err != nil {
		return fmt.Errorf("delete time slots by class: %w", err)
	}
	return nil
}
