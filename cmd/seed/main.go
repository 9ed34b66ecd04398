package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dsewell/school-scheduler-api/internal/models"
	"github.com/dsewell/school-scheduler-api/internal/repository"
	"github.com/dsewell/school-scheduler-api/internal/service"
	"github.com/dsewell/school-scheduler-api/pkg/config"
	"github.com/dsewell/school-scheduler-api/pkg/database"
	appErrors "github.com/dsewell/school-scheduler-api/pkg/errors"
	"github.com/dsewell/school-scheduler-api/pkg/logger"
)

const busyRetries = 3

type seedUser struct {
	name     string
	email    string
	password string
	role     models.UserRole
}

type seedClass struct {
	name         string
	subject      string
	teacherEmail string
	room         string
	capacity     int
	slots        []service.AssignTimeSlotRequest
	students     []string
}

var seedUsers = []seedUser{
	{"Alice Admin", "admin@school.test", "admin123", models.RoleAdmin},
	{"Tom Teacher", "tom@school.test", "teacher123", models.RoleTeacher},
	{"Tina Teacher", "tina@school.test", "teacher123", models.RoleTeacher},
	{"Sam Student", "sam@school.test", "student123", models.RoleStudent},
	{"Sara Student", "sara@school.test", "student123", models.RoleStudent},
	{"Steve Student", "steve@school.test", "student123", models.RoleStudent},
}

var seedClasses = []seedClass{
	{
		name: "Algebra I", subject: "Math", teacherEmail: "tom@school.test", room: "101", capacity: 30,
		slots: []service.AssignTimeSlotRequest{
			{DayOfWeek: 0, StartTime: "09:00", EndTime: "10:00"},
			{DayOfWeek: 2, StartTime: "09:00", EndTime: "10:00"},
		},
		students: []string{"sam@school.test", "sara@school.test"},
	},
	{
		name: "Biology", subject: "Science", teacherEmail: "tina@school.test", room: "102", capacity: 25,
		slots: []service.AssignTimeSlotRequest{
			{DayOfWeek: 0, StartTime: "10:00", EndTime: "11:30"},
		},
		students: []string{"sam@school.test", "steve@school.test"},
	},
	{
		name: "World History", subject: "History", teacherEmail: "tom@school.test", room: "103", capacity: 30,
		slots: []service.AssignTimeSlotRequest{
			{DayOfWeek: 1, StartTime: "13:00", EndTime: "14:00"},
		},
		students: []string{"sara@school.test", "steve@school.test"},
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	validate := validator.New()
	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	slotRepo := repository.NewTimeSlotRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	checker := service.NewConflictChecker(slotRepo, enrollmentRepo, logr)
	scheduler := service.NewSchedulingService(db, userRepo, classRepo, slotRepo, enrollmentRepo, checker, nil, nil, validate, logr, cfg.Engine.TxTimeout)

	ctx := context.Background()

	usersByEmail := make(map[string]*models.User)
	for _, su := range seedUsers {
		user, err := ensureUser(ctx, userRepo, su)
		if err != nil {
			logr.Sugar().Fatalw("failed to seed user", "email", su.email, "error", err)
		}
		usersByEmail[su.email] = user
	}

	for _, sc := range seedClasses {
		teacher, ok := usersByEmail[sc.teacherEmail]
		if !ok {
			logr.Sugar().Fatalw("seed class references unknown teacher", "class", sc.name, "teacher", sc.teacherEmail)
		}

		class, created, err := ensureClass(ctx, classRepo, sc, teacher.ID)
		if err != nil {
			logr.Sugar().Fatalw("failed to seed class", "class", sc.name, "error", err)
		}
		if !created {
			logr.Info("class already seeded", zap.String("class", sc.name))
			continue
		}

		for _, slot := range sc.slots {
			slot.ClassID = class.ID
			if err := withBusyRetry(func() error {
				_, err := scheduler.AssignTimeSlot(ctx, slot)
				return err
			}); err != nil {
				logr.Sugar().Fatalw("failed to seed time slot", "class", sc.name, "error", err)
			}
		}

		for _, email := range sc.students {
			student, ok := usersByEmail[email]
			if !ok {
				logr.Sugar().Fatalw("seed class references unknown student", "class", sc.name, "student", email)
			}
			if err := withBusyRetry(func() error {
				_, err := scheduler.CreateEnrollment(ctx, service.CreateEnrollmentRequest{StudentID: student.ID, ClassID: class.ID})
				return err
			}); err != nil {
				if appErrors.HasCode(err, appErrors.ErrAlreadyEnrolled) {
					continue
				}
				logr.Sugar().Fatalw("failed to seed enrollment", "class", sc.name, "student", email, "error", err)
			}
		}

		logr.Info("class seeded", zap.String("class", sc.name), zap.Int("slots", len(sc.slots)), zap.Int("students", len(sc.students)))
	}

	logr.Info("seed complete", zap.Int("users", len(seedUsers)), zap.Int("classes", len(seedClasses)))
}

func ensureUser(ctx context.Context, repo *repository.UserRepository, su seedUser) (*models.User, error) {
	if existing, err := repo.FindByEmail(ctx, su.email); err == nil {
		return existing, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         su.name,
		Email:        su.email,
		PasswordHash: string(hash),
		Role:         su.role,
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func ensureClass(ctx context.Context, repo *repository.ClassRepository, sc seedClass, teacherID string) (*models.Class, bool, error) {
	existing, _, err := repo.List(ctx, models.ClassFilter{Search: sc.name, TeacherID: teacherID})
	if err != nil {
		return nil, false, err
	}
	for i := range existing {
		if existing[i].Name == sc.name {
			return &existing[i].Class, false, nil
		}
	}

	class := &models.Class{
		Name:      sc.name,
		Subject:   sc.subject,
		TeacherID: teacherID,
		Room:      sc.room,
		Capacity:  sc.capacity,
	}
	if err := repo.Create(ctx, class); err != nil {
		return nil, false, err
	}
	return class, true, nil
}

func withBusyRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt <= busyRetries; attempt++ {
		if err = fn(); err == nil || !appErrors.HasCode(err, appErrors.ErrBusy) {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * 100 * time.Millisecond)
	}
	return err
}
