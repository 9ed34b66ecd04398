package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dsewell/school-scheduler-api/internal/models"
	appErrors "github.com/dsewell/school-scheduler-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
}

type classUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// CreateClassRequest represents payload for creating classes.
type CreateClassRequest struct {
	Name        string `json:"name" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	TeacherID   string `json:"teacher_id" validate:"required"`
	Room        string `json:"room" validate:"required"`
	Capacity    int    `json:"capacity" validate:"required,min=1"`
	Description string `json:"description"`
}

// UpdateClassRequest carries partial class changes.
type UpdateClassRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Subject     *string `json:"subject" validate:"omitempty,min=1"`
	TeacherID   *string `json:"teacher_id" validate:"omitempty,min=1"`
	Room        *string `json:"room" validate:"omitempty,min=1"`
	Capacity    *int    `json:"capacity" validate:"omitempty,min=1"`
	Description *string `json:"description"`
}

// ClassService handles class management workflows. Deletes go through the
// scheduling engine because they cascade into slots and enrollments.
type ClassService struct {
	repo      classRepository
	users     classUserReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService creates an instance of ClassService.
func NewClassService(repo classRepository, users classUserReader, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{repo: repo, users: users, validator: validate, logger: logger}
}

// List returns paginated classes with teacher names and enrollment counts.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, *models.Pagination, error) {
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	pagination := &models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}

	return classes, pagination, nil
}

// Get returns a class by ID.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// Create adds a new class owned by an existing teacher.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create class payload")
	}

	if err := s.requireTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	class := &models.Class{
		Name:        req.Name,
		Subject:     req.Subject,
		TeacherID:   req.TeacherID,
		Room:        req.Room,
		Capacity:    req.Capacity,
		Description: req.Description,
	}

	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}

	return class, nil
}

// Update modifies the class attributes provided in the request.
func (s *ClassService) Update(ctx context.Context, id string, req UpdateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update class payload")
	}

	class, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.TeacherID != nil && *req.TeacherID != class.TeacherID {
		if err := s.requireTeacher(ctx, *req.TeacherID); err != nil {
			return nil, err
		}
		class.TeacherID = *req.TeacherID
	}
	if req.Name != nil {
		class.Name = *req.Name
	}
	if req.Subject != nil {
		class.Subject = *req.Subject
	}
	if req.Room != nil {
		class.Room = *req.Room
	}
	if req.Capacity != nil {
		class.Capacity = *req.Capacity
	}
	if req.Description != nil {
		class.Description = *req.Description
	}

	if err := s.repo.Update(ctx, class); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}

	return class, nil
}

func (s *ClassService) requireTeacher(ctx context.Context, teacherID string) error {
	teacher, err := s.users.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if teacher.Role != models.RoleTeacher {
		return appErrors.Clone(appErrors.ErrInvalidRole, fmt.Sprintf("user %s has role %s, not teacher", teacher.ID, teacher.Role))
	}
	return nil
}
