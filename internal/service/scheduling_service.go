package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/dsewell/school-scheduler-api/internal/models"
	"github.com/dsewell/school-scheduler-api/pkg/database"
	appErrors "github.com/dsewell/school-scheduler-api/pkg/errors"
)

type schedulingUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByIDTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.User, error)
	DeleteTx(ctx context.Context, tx *sqlx.Tx, id string) (bool, error)
}

type schedulingClassRepository interface {
	FindByIDTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Class, error)
	ListIDsByTeacherTx(ctx context.Context, tx *sqlx.Tx, teacherID string) ([]string, error)
	DeleteTx(ctx context.Context, tx *sqlx.Tx, id string) (bool, error)
}

type schedulingSlotRepository interface {
	conflictSlotReader
	FindByIDTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.TimeSlot, error)
	ListByClassTx(ctx context.Context, tx *sqlx.Tx, classID string) ([]models.TimeSlot, error)
	CreateTx(ctx context.Context, tx *sqlx.Tx, slot *models.TimeSlot) error
	DeleteTx(ctx context.Context, tx *sqlx.Tx, id string) (bool, error)
	DeleteByClassTx(ctx context.Context, tx *sqlx.Tx, classID string) error
	TeacherSchedule(ctx context.Context, teacherID string) ([]models.ScheduleEntry, error)
	StudentSchedule(ctx context.Context, studentID string) ([]models.ScheduleEntry, error)
}

type schedulingEnrollmentRepository interface {
	conflictEnrollmentReader
	FindByIDTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Enrollment, error)
	ExistsTx(ctx context.Context, tx *sqlx.Tx, studentID, classID string) (bool, error)
	CountByStudentTx(ctx context.Context, tx *sqlx.Tx, studentID string) (int, error)
	CreateTx(ctx context.Context, tx *sqlx.Tx, enrollment *models.Enrollment) error
	DeleteTx(ctx context.Context, tx *sqlx.Tx, id string) (bool, error)
	DeleteByClassTx(ctx context.Context, tx *sqlx.Tx, classID string) error
	DeleteByStudentTx(ctx context.Context, tx *sqlx.Tx, studentID string) error
}

// AssignTimeSlotRequest proposes a weekly slot for a class.
type AssignTimeSlotRequest struct {
	ClassID   string `json:"class_id" validate:"required"`
	DayOfWeek int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// CreateEnrollmentRequest proposes enrolling a student into a class.
type CreateEnrollmentRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	ClassID   string `json:"class_id" validate:"required"`
}

// SchedulingService is the timetable consistency and enrollment engine. Every
// mutating operation runs validate, re-check and write as one serializable
// transaction, so no committed state can violate the scheduling invariants.
type SchedulingService struct {
	db          *sqlx.DB
	users       schedulingUserRepository
	classes     schedulingClassRepository
	slots       schedulingSlotRepository
	enrollments schedulingEnrollmentRepository
	checker     *ConflictChecker
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	txTimeout   time.Duration
}

// NewSchedulingService constructs the engine.
func NewSchedulingService(
	db *sqlx.DB,
	users schedulingUserRepository,
	classes schedulingClassRepository,
	slots schedulingSlotRepository,
	enrollments schedulingEnrollmentRepository,
	checker *ConflictChecker,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	txTimeout time.Duration,
) *SchedulingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if txTimeout <= 0 {
		txTimeout = 5 * time.Second
	}
	return &SchedulingService{
		db:          db,
		users:       users,
		classes:     classes,
		slots:       slots,
		enrollments: enrollments,
		checker:     checker,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		txTimeout:   txTimeout,
	}
}

// AssignTimeSlot validates and commits one proposed weekly slot for a class.
// Teacher availability is checked before room availability.
func (s *SchedulingService) AssignTimeSlot(ctx context.Context, req AssignTimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}
	interval, err := models.NewInterval(req.DayOfWeek, req.StartTime, req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	slot := &models.TimeSlot{
		ClassID:   req.ClassID,
		DayOfWeek: interval.Day,
		StartTime: interval.Start,
		EndTime:   interval.End,
	}

	err = s.withTx(ctx, func(txCtx context.Context, tx *sqlx.Tx) error {
		class, err := s.classes.FindByIDTx(txCtx, tx, req.ClassID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "class not found")
			}
			return s.storeError(err, "failed to load class")
		}

		conflict, err := s.checker.TeacherConflict(txCtx, tx, class.TeacherID, interval, "")
		if err != nil {
			return s.storeError(err, "failed to check teacher conflicts")
		}
		if conflict != nil {
			return conflictError(appErrors.ErrTeacherDoubleBooked, *conflict)
		}

		conflict, err = s.checker.RoomConflict(txCtx, tx, class.Room, interval, "")
		if err != nil {
			return s.storeError(err, "failed to check room conflicts")
		}
		if conflict != nil {
			return conflictError(appErrors.ErrRoomDoubleBooked, *conflict)
		}

		return s.slots.CreateTx(txCtx, tx, slot)
	})
	s.record("assign_time_slot", err)
	if err != nil {
		return nil, err
	}
	s.invalidateSchedules(ctx)
	return slot, nil
}

// CreateEnrollment validates and commits one proposed enrollment.
func (s *SchedulingService) CreateEnrollment(ctx context.Context, req CreateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	enrollment := &models.Enrollment{StudentID: req.StudentID, ClassID: req.ClassID}

	err := s.withTx(ctx, func(txCtx context.Context, tx *sqlx.Tx) error {
		student, err := s.users.FindByIDTx(txCtx, tx, req.StudentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "student not found")
			}
			return s.storeError(err, "failed to load student")
		}
		if student.Role != models.RoleStudent {
			return appErrors.Clone(appErrors.ErrInvalidRole, fmt.Sprintf("user %s has role %s, not student", student.ID, student.Role))
		}

		class, err := s.classes.FindByIDTx(txCtx, tx, req.ClassID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "class not found")
			}
			return s.storeError(err, "failed to load class")
		}

		exists, err := s.enrollments.ExistsTx(txCtx, tx, req.StudentID, req.ClassID)
		if err != nil {
			return s.storeError(err, "failed to check enrollment")
		}
		if exists {
			return appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
		}

		full, err := s.checker.CapacityExceeded(txCtx, tx, class)
		if err != nil {
			return s.storeError(err, "failed to check class capacity")
		}
		if full {
			return appErrors.Clone(appErrors.ErrCapacityFull, fmt.Sprintf("class %s is at capacity %d", class.ID, class.Capacity))
		}

		classSlots, err := s.slots.ListByClassTx(txCtx, tx, req.ClassID)
		if err != nil {
			return s.storeError(err, "failed to load class slots")
		}
		for _, slot := range classSlots {
			conflict, err := s.checker.StudentConflict(txCtx, tx, req.StudentID, slot.Interval(), req.ClassID)
			if err != nil {
				return s.storeError(err, "failed to check student conflicts")
			}
			if conflict != nil {
				return conflictError(appErrors.ErrStudentScheduleConflict, *conflict)
			}
		}

		return s.enrollments.CreateTx(txCtx, tx, enrollment)
	})
	s.record("create_enrollment", err)
	if err != nil {
		return nil, err
	}
	s.invalidateSchedules(ctx)
	return enrollment, nil
}

// DeleteTimeSlot removes one slot. A second delete of the same id reports
// NotFound and leaves the store unchanged.
func (s *SchedulingService) DeleteTimeSlot(ctx context.Context, id string) error {
	err := s.withTx(ctx, func(txCtx context.Context, tx *sqlx.Tx) error {
		deleted, err := s.slots.DeleteTx(txCtx, tx, id)
		if err != nil {
			return s.storeError(err, "failed to delete time slot")
		}
		if !deleted {
			return appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil
	})
	s.record("delete_time_slot", err)
	if err != nil {
		return err
	}
	s.invalidateSchedules(ctx)
	return nil
}

// DeleteEnrollment removes one enrollment, idempotent at the store level.
func (s *SchedulingService) DeleteEnrollment(ctx context.Context, id string) error {
	err := s.withTx(ctx, func(txCtx context.Context, tx *sqlx.Tx) error {
		deleted, err := s.enrollments.DeleteTx(txCtx, tx, id)
		if err != nil {
			return s.storeError(err, "failed to delete enrollment")
		}
		if !deleted {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil
	})
	s.record("delete_enrollment", err)
	if err != nil {
		return err
	}
	s.invalidateSchedules(ctx)
	return nil
}

// DeleteClass removes a class. Without force it rejects when the class still
// owns slots or enrollments; with force the cascade happens in one
// transaction.
func (s *SchedulingService) DeleteClass(ctx context.Context, id string, force bool) error {
	err := s.withTx(ctx, func(txCtx context.Context, tx *sqlx.Tx) error {
		if _, err := s.classes.FindByIDTx(txCtx, tx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "class not found")
			}
			return s.storeError(err, "failed to load class")
		}
		if !force {
			enrolled, err := s.enrollments.CountByClassTx(txCtx, tx, id)
			if err != nil {
				return s.storeError(err, "failed to count enrollments")
			}
			slots, err := s.slots.ListByClassTx(txCtx, tx, id)
			if err != nil {
				return s.storeError(err, "failed to load class slots")
			}
			if enrolled > 0 || len(slots) > 0 {
				return appErrors.Clone(appErrors.ErrHasDependents, "class has time slots or enrollments")
			}
		}
		return s.cascadeDeleteClass(txCtx, tx, id)
	})
	s.record("delete_class", err)
	if err != nil {
		return err
	}
	s.invalidateSchedules(ctx)
	return nil
}

// DeleteUser removes a user. Teachers with classes and students with
// enrollments require force; the cascade is transitive and atomic.
func (s *SchedulingService) DeleteUser(ctx context.Context, id string, force bool) error {
	err := s.withTx(ctx, func(txCtx context.Context, tx *sqlx.Tx) error {
		user, err := s.users.FindByIDTx(txCtx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "user not found")
			}
			return s.storeError(err, "failed to load user")
		}

		switch user.Role {
		case models.RoleTeacher:
			classIDs, err := s.classes.ListIDsByTeacherTx(txCtx, tx, id)
			if err != nil {
				return s.storeError(err, "failed to list teacher classes")
			}
			if len(classIDs) > 0 && !force {
				return appErrors.Clone(appErrors.ErrHasDependents, "teacher still owns classes")
			}
			for _, classID := range classIDs {
				if err := s.cascadeDeleteClass(txCtx, tx, classID); err != nil {
					return err
				}
			}
		case models.RoleStudent:
			count, err := s.enrollments.CountByStudentTx(txCtx, tx, id)
			if err != nil {
				return s.storeError(err, "failed to count student enrollments")
			}
			if count > 0 && !force {
				return appErrors.Clone(appErrors.ErrHasDependents, "student still has enrollments")
			}
			if err := s.enrollments.DeleteByStudentTx(txCtx, tx, id); err != nil {
				return s.storeError(err, "failed to delete student enrollments")
			}
		}

		deleted, err := s.users.DeleteTx(txCtx, tx, id)
		if err != nil {
			return s.storeError(err, "failed to delete user")
		}
		if !deleted {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil
	})
	s.record("delete_user", err)
	if err != nil {
		return err
	}
	s.invalidateSchedules(ctx)
	return nil
}

// GetTeacherSchedule returns the teacher's slots joined with class info,
// ordered by day of week then start time.
func (s *SchedulingService) GetTeacherSchedule(ctx context.Context, teacherID string) ([]models.ScheduleEntry, error) {
	return s.schedule(ctx, teacherID, models.RoleTeacher, s.slots.TeacherSchedule)
}

// GetStudentSchedule returns the slots of the student's enrolled classes,
// ordered by day of week then start time.
func (s *SchedulingService) GetStudentSchedule(ctx context.Context, studentID string) ([]models.ScheduleEntry, error) {
	return s.schedule(ctx, studentID, models.RoleStudent, s.slots.StudentSchedule)
}

func (s *SchedulingService) schedule(ctx context.Context, userID string, role models.UserRole, load func(context.Context, string) ([]models.ScheduleEntry, error)) ([]models.ScheduleEntry, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", role))
		}
		return nil, s.storeError(err, "failed to load user")
	}
	if user.Role != role {
		return nil, appErrors.Clone(appErrors.ErrInvalidRole, fmt.Sprintf("user %s has role %s, not %s", user.ID, user.Role, role))
	}

	cacheKey := ScheduleCacheKey(role, userID)
	var cached []models.ScheduleEntry
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	entries, err := load(ctx, userID)
	if err != nil {
		return nil, s.storeError(err, "failed to load schedule")
	}
	_ = s.cache.Set(ctx, cacheKey, entries, 0)
	return entries, nil
}

func (s *SchedulingService) cascadeDeleteClass(ctx context.Context, tx *sqlx.Tx, classID string) error {
	if err := s.enrollments.DeleteByClassTx(ctx, tx, classID); err != nil {
		return s.storeError(err, "failed to delete class enrollments")
	}
	if err := s.slots.DeleteByClassTx(ctx, tx, classID); err != nil {
		return s.storeError(err, "failed to delete class slots")
	}
	deleted, err := s.classes.DeleteTx(ctx, tx, classID)
	if err != nil {
		return s.storeError(err, "failed to delete class")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	return nil
}

// withTx runs fn as one serializable transaction with the engine's timeout.
// Serialization failures, deadlocks and timeouts surface as Busy so callers
// can retry.
func (s *SchedulingService) withTx(ctx context.Context, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		s.metrics.ObserveTxDuration(time.Since(start))
	}()

	tx, err := s.db.BeginTxx(txCtx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return s.storeError(err, "failed to begin transaction")
	}

	if err := fn(txCtx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return s.storeError(err, "failed to commit transaction")
	}
	return nil
}

// storeError classifies a store failure into the engine's error kinds.
func (s *SchedulingService) storeError(err error, message string) error {
	switch {
	case database.IsSerializationFailure(err) || errors.Is(err, context.DeadlineExceeded):
		return appErrors.Wrap(err, appErrors.ErrBusy.Code, appErrors.ErrBusy.Status, appErrors.ErrBusy.Message)
	case database.IsUniqueViolation(err):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, message)
	case database.IsConnectionError(err) || errors.Is(err, driver.ErrBadConn):
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}
}

func (s *SchedulingService) record(operation string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "committed"
	if err != nil {
		outcome = appErrors.FromError(err).Code
	}
	s.metrics.RecordSchedulingDecision(operation, outcome)
}

func (s *SchedulingService) invalidateSchedules(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, scheduleCachePattern); err != nil {
		s.logger.Warn("failed to invalidate schedule cache", zap.Error(err))
	}
}

func conflictError(kind *appErrors.Error, conflict models.SlotConflict) error {
	message := fmt.Sprintf("%s conflict with slot %s on %s %s-%s",
		conflict.Dimension, conflict.TimeSlotID, models.DayName(conflict.DayOfWeek), conflict.StartTime, conflict.EndTime)
	domainErr := &models.SlotConflictError{Dimension: conflict.Dimension, Message: message, Conflict: conflict}
	return appErrors.Wrap(domainErr, kind.Code, kind.Status, message)
}
