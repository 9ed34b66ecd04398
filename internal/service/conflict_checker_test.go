package service

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsewell/school-scheduler-api/internal/models"
)

type mockConflictSlotReader struct {
	teacherSlots map[string][]models.TimeSlot
	roomSlots    map[string][]models.TimeSlot
	studentSlots map[string][]models.TimeSlot
}

func (m *mockConflictSlotReader) ListByTeacherAndDayTx(ctx context.Context, tx *sqlx.Tx, teacherID string, day int) ([]models.TimeSlot, error) {
	return slotsOnDay(m.teacherSlots[teacherID], day), nil
}

func (m *mockConflictSlotReader) ListByRoomAndDayTx(ctx context.Context, tx *sqlx.Tx, room string, day int) ([]models.TimeSlot, error) {
	return slotsOnDay(m.roomSlots[room], day), nil
}

func (m *mockConflictSlotReader) ListByStudentAndDayTx(ctx context.Context, tx *sqlx.Tx, studentID string, day int, excludeClassID string) ([]models.TimeSlot, error) {
	var out []models.TimeSlot
	for _, slot := range slotsOnDay(m.studentSlots[studentID], day) {
		if excludeClassID != "" && slot.ClassID == excludeClassID {
			continue
		}
		out = append(out, slot)
	}
	return out, nil
}

func slotsOnDay(slots []models.TimeSlot, day int) []models.TimeSlot {
	var out []models.TimeSlot
	for _, slot := range slots {
		if slot.DayOfWeek == day {
			out = append(out, slot)
		}
	}
	return out
}

type mockConflictEnrollmentReader struct {
	counts map[string]int
}

func (m *mockConflictEnrollmentReader) CountByClassTx(ctx context.Context, tx *sqlx.Tx, classID string) (int, error) {
	return m.counts[classID], nil
}

func slot(id, classID string, day int, start, end string) models.TimeSlot {
	return models.TimeSlot{ID: id, ClassID: classID, DayOfWeek: day, StartTime: start, EndTime: end}
}

func TestTeacherConflictDetectsOverlap(t *testing.T) {
	slots := &mockConflictSlotReader{
		teacherSlots: map[string][]models.TimeSlot{
			"teacher-1": {slot("slot-1", "class-1", 0, "09:00", "10:00")},
		},
	}
	checker := NewConflictChecker(slots, &mockConflictEnrollmentReader{}, nil)

	interval, err := models.NewInterval(0, "09:30", "10:30")
	require.NoError(t, err)

	conflict, err := checker.TeacherConflict(context.Background(), nil, "teacher-1", interval, "")
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, "slot-1", conflict.TimeSlotID)
	assert.Equal(t, models.ConflictTeacher, conflict.Dimension)
}

func TestTeacherConflictAllowsTouchingEndpoints(t *testing.T) {
	slots := &mockConflictSlotReader{
		teacherSlots: map[string][]models.TimeSlot{
			"teacher-1": {slot("slot-1", "class-1", 0, "09:00", "10:00")},
		},
	}
	checker := NewConflictChecker(slots, &mockConflictEnrollmentReader{}, nil)

	interval, err := models.NewInterval(0, "10:00", "11:00")
	require.NoError(t, err)

	conflict, err := checker.TeacherConflict(context.Background(), nil, "teacher-1", interval, "")
	require.NoError(t, err)
	assert.Nil(t, conflict)
}

func TestTeacherConflictIgnoresExcludedSlot(t *testing.T) {
	slots := &mockConflictSlotReader{
		teacherSlots: map[string][]models.TimeSlot{
			"teacher-1": {slot("slot-1", "class-1", 0, "09:00", "10:00")},
		},
	}
	checker := NewConflictChecker(slots, &mockConflictEnrollmentReader{}, nil)

	interval, err := models.NewInterval(0, "09:00", "10:00")
	require.NoError(t, err)

	conflict, err := checker.TeacherConflict(context.Background(), nil, "teacher-1", interval, "slot-1")
	require.NoError(t, err)
	assert.Nil(t, conflict)
}

func TestRoomConflictDetectsOverlap(t *testing.T) {
	slots := &mockConflictSlotReader{
		roomSlots: map[string][]models.TimeSlot{
			"101": {slot("slot-2", "class-2", 3, "13:00", "14:00")},
		},
	}
	checker := NewConflictChecker(slots, &mockConflictEnrollmentReader{}, nil)

	interval, err := models.NewInterval(3, "13:30", "15:00")
	require.NoError(t, err)

	conflict, err := checker.RoomConflict(context.Background(), nil, "101", interval, "")
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, models.ConflictRoom, conflict.Dimension)
}

func TestStudentConflictSkipsEnrollingClass(t *testing.T) {
	slots := &mockConflictSlotReader{
		studentSlots: map[string][]models.TimeSlot{
			"student-1": {
				slot("slot-3", "class-3", 1, "09:00", "10:00"),
				slot("slot-4", "class-4", 1, "09:00", "10:00"),
			},
		},
	}
	checker := NewConflictChecker(slots, &mockConflictEnrollmentReader{}, nil)

	interval, err := models.NewInterval(1, "09:30", "10:30")
	require.NoError(t, err)

	conflict, err := checker.StudentConflict(context.Background(), nil, "student-1", interval, "class-3")
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, "slot-4", conflict.TimeSlotID)
	assert.Equal(t, models.ConflictStudent, conflict.Dimension)
}

func TestCapacityExceeded(t *testing.T) {
	enrollments := &mockConflictEnrollmentReader{counts: map[string]int{"class-1": 2}}
	checker := NewConflictChecker(&mockConflictSlotReader{}, enrollments, nil)
	class := &models.Class{ID: "class-1", Capacity: 2}

	full, err := checker.CapacityExceeded(context.Background(), nil, class)
	require.NoError(t, err)
	assert.True(t, full)

	class.Capacity = 3
	full, err = checker.CapacityExceeded(context.Background(), nil, class)
	require.NoError(t, err)
	assert.False(t, full)
}
