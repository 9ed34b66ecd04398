package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/dsewell/school-scheduler-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func newSlotFixture() *models.TimeSlot {
	return &models.TimeSlot{ClassID: "class-1", DayOfWeek: 0, StartTime: "09:00", EndTime: "10:00"}
}

func slotRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "class_id", "day_of_week", "start_time", "end_time", "created_at", "updated_at"}).
		AddRow("slot-1", "class-1", 0, "09:00", "10:00", now, now)
}

func TestTimeSlotRepositoryListByTeacherAndDayTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	mock.ExpectBegin()
	tx, err := db.Beginx()
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("JOIN classes c ON c.id = ts.class_id")).
		WithArgs("teacher-1", 0).
		WillReturnRows(slotRows())

	slots, err := repo.ListByTeacherAndDayTx(context.Background(), tx, "teacher-1", 0)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	require.Equal(t, "slot-1", slots[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeSlotRepositoryListByStudentAndDayTxExcludesClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	mock.ExpectBegin()
	tx, err := db.Beginx()
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("AND ts.class_id <> $3")).
		WithArgs("student-1", 2, "class-9").
		WillReturnRows(slotRows())

	slots, err := repo.ListByStudentAndDayTx(context.Background(), tx, "student-1", 2, "class-9")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeSlotRepositoryCreateTxAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	mock.ExpectBegin()
	tx, err := db.Beginx()
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO time_slots")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	slot := newSlotFixture()
	require.NoError(t, repo.CreateTx(context.Background(), tx, slot))
	require.NotEmpty(t, slot.ID)
	require.False(t, slot.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeSlotRepositoryDeleteTxReportsMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	mock.ExpectBegin()
	tx, err := db.Beginx()
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM time_slots WHERE id = $1")).
		WithArgs("slot-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.DeleteTx(context.Background(), tx, "slot-1")
	require.NoError(t, err)
	require.False(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeSlotRepositoryTeacherScheduleOrdersResults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "class_id", "day_of_week", "start_time", "end_time", "created_at", "updated_at",
		"class_name", "subject", "room", "teacher_id", "teacher_name",
	}).AddRow("slot-1", "class-1", 0, "09:00", "10:00", now, now, "Algebra I", "Math", "101", "teacher-1", "Tom")

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY ts.day_of_week ASC, ts.start_time ASC")).
		WithArgs("teacher-1").
		WillReturnRows(rows)

	entries, err := repo.TeacherSchedule(context.Background(), "teacher-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Algebra I", entries[0].ClassName)
	require.NoError(t, mock.ExpectationsWereMet())
}
