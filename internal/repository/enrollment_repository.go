package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dsewell/school-scheduler-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments filtered by the provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	base := `FROM enrollments e
LEFT JOIN users s ON s.id = e.student_id
LEFT JOIN classes c ON c.id = e.class_id`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("e.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT e.id, e.student_id, e.class_id, e.created_at,
        COALESCE(s.name, '') AS student_name, COALESCE(c.name, '') AS class_name
        %s ORDER BY e.created_at DESC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// FindByIDTx returns an enrollment by its ID within a transaction.
func (r *EnrollmentRepository) FindByIDTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, class_id, created_at FROM enrollments WHERE id = $1 LIMIT 1`
	var enrollment models.Enrollment
	if err := tx.GetContext(ctx, &enrollment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment by id: %w", err)
	}
	return &enrollment, nil
}

// ExistsTx checks whether the (student, class) pair is already enrolled,
// scoped to the caller's transaction.
func (r *EnrollmentRepository) ExistsTx(ctx context.Context, tx *sqlx.Tx, studentID, classID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE student_id = $1 AND class_id = $2 LIMIT 1`
	var exists int
	if err := tx.GetContext(ctx, &exists, query, studentID, classID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment exists: %w", err)
	}
	return true, nil
}

// CountByClassTx returns the committed enrollment count for a class.
func (r *EnrollmentRepository) CountByClassTx(ctx context.Context, tx *sqlx.Tx, classID string) (int, error) {
	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM enrollments WHERE class_id = $1`, classID); err != nil {
		return 0, fmt.Errorf("count class enrollments: %w", err)
	}
	return count, nil
}

// CountByStudentTx returns the number of enrollments held by a student.
func (r *EnrollmentRepository) CountByStudentTx(ctx context.Context, tx *sqlx.Tx, studentID string) (int, error) {
	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM enrollments WHERE student_id = $1`, studentID); err != nil {
		return 0, fmt.Errorf("count student enrollments: %w", err)
	}
	return count, nil
}

// CreateTx persists a new enrollment record within a transaction.
func (r *EnrollmentRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO enrollments (id, student_id, class_id, created_at)
        VALUES (:id, :student_id, :class_id, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// DeleteTx removes an enrollment within a transaction.
func (r *EnrollmentRepository) DeleteTx(ctx context.Context, tx *sqlx.Tx, id string) (bool, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete enrollment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete enrollment rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteByClassTx removes all enrollments for a class within a transaction.
func (r *EnrollmentRepository) DeleteByClassTx(ctx context.Context, tx *sqlx.Tx, classID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE class_id = $1`, classID); err != nil {
		return fmt.Errorf("delete enrollments by class: %w", err)
	}
	return nil
}

// DeleteByStudentTx removes all enrollments held by a student.
func (r *EnrollmentRepository) DeleteByStudentTx(ctx context.Context, tx *sqlx.Tx, studentID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE student_id = $1`, studentID); err != nil {
		return fmt.Errorf("delete enrollments by student: %w", err)
	}
	return nil
}
