package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"coursehub/course-service/internal/app/courses/entity"
	"coursehub/course-service/internal/app/courses/infrastructure"
	"coursehub/course-service/internal/app/courses/repository"
	"coursehub/pkg/logger"
	"coursehub/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnrollmentService обрабатывает записи на курсы и прогресс прохождения
// courseRepo нужен только для инкремента денормализованного счетчика students
type EnrollmentService struct {
	enrollmentRepo repository.EnrollmentRepository
	courseRepo     repository.CourseRepository
	cache          infrastructure.CourseCache
	publisher      infrastructure.MessagePublisher
	now            func() time.Time
}

func NewEnrollmentService(
	enrollmentRepo repository.EnrollmentRepository,
	courseRepo repository.CourseRepository,
	cache infrastructure.CourseCache,
	publisher infrastructure.MessagePublisher,
) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		cache:          cache,
		publisher:      publisher,
		now:            time.Now,
	}
}

// Enroll записывает пользователя на курс
//  1. Проверяет отсутствие записи (userId, courseId)
//  2. Вставляет запись {progress: 0, completed: false, status: active}
//  3. Увеличивает students курса на 1 (best-effort, не атомарно со вставкой)
func (s *EnrollmentService) Enroll(ctx context.Context, identity *entity.Identity, req *entity.EnrollRequest) (*entity.Enrollment, error) {
	courseID, err := primitive.ObjectIDFromHex(req.CourseID)
	if err != nil {
		metrics.EnrollmentsRejected.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidCourseID
	}
	// Один курс - одна строка: hex в верхнем регистре обходил бы уникальный индекс
	courseKey := courseID.Hex()

	_, err = s.enrollmentRepo.GetByUserAndCourse(ctx, identity.UID, courseKey)
	switch {
	case err == nil:
		metrics.EnrollmentsRejected.WithLabelValues("duplicate").Inc()
		return nil, ErrAlreadyEnrolled
	case !errors.Is(err, repository.ErrEnrollmentNotFound):
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}

	enrollment := &entity.Enrollment{
		UserID:      identity.UID,
		UserEmail:   identity.Email,
		CourseID:    courseKey,
		CourseName:  req.CourseName,
		CoursePrice: req.CoursePrice,
		CourseImage: req.CourseImage,
		EnrolledAt:  s.now(),
		Progress:    0,
		Completed:   false,
		Status:      entity.EnrollmentStatusActive,
	}

	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		// Параллельный запрос успел вставить ту же пару
		if errors.Is(err, repository.ErrDuplicateEnrollment) {
			metrics.EnrollmentsRejected.WithLabelValues("duplicate").Inc()
			return nil, ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}
	metrics.EnrollmentsCreated.Inc()

	if err := s.courseRepo.IncrementStudents(ctx, courseID, 1); err != nil {
		// Запись уже создана, счетчик отстанет до следующего прогона reconciler
		metrics.StudentCounterFailures.Inc()
		logger.Warn().
			Err(err).
			Str("course_id", courseKey).
			Str("enrollment_id", enrollment.ID.Hex()).
			Msg("Failed to increment course students counter")
	}

	invalidateCourses(ctx, s.cache)
	publishEvent(ctx, s.publisher, entity.CourseEvent{
		EventType:    entity.EventEnrollmentCreated,
		CourseID:     courseKey,
		EnrollmentID: enrollment.ID.Hex(),
		UserID:       identity.UID,
		Timestamp:    enrollment.EnrolledAt,
	})

	return enrollment, nil
}

// GetMyEnrollments возвращает записи пользователя, последние первыми
func (s *EnrollmentService) GetMyEnrollments(ctx context.Context, userID string) ([]entity.Enrollment, error) {
	enrollments, err := s.enrollmentRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollments: %w", err)
	}
	return enrollments, nil
}

// CheckEnrollment возвращает запись или nil, если пользователь не записан
func (s *EnrollmentService) CheckEnrollment(ctx context.Context, userID, courseID string) (*entity.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByUserAndCourse(ctx, userID, canonicalCourseID(courseID))
	if err != nil {
		if errors.Is(err, repository.ErrEnrollmentNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return enrollment, nil
}

// UpdateProgress выставляет progress и completed как есть и обновляет lastAccessed
// completed=true не блокирует дальнейшие обновления
func (s *EnrollmentService) UpdateProgress(ctx context.Context, userID string, req *entity.UpdateProgressRequest) error {
	err := s.enrollmentRepo.UpdateProgress(ctx, userID, canonicalCourseID(req.CourseID), req.Progress, req.Completed, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrEnrollmentNotFound) {
			return ErrEnrollmentNotFound
		}
		return fmt.Errorf("failed to update progress: %w", err)
	}

	metrics.ProgressUpdates.WithLabelValues(strconv.FormatBool(req.Completed)).Inc()
	return nil
}

// canonicalCourseID приводит валидный ObjectID к hex в нижнем регистре,
// остальные строки возвращает как есть
func canonicalCourseID(courseID string) string {
	if oid, err := primitive.ObjectIDFromHex(courseID); err == nil {
		return oid.Hex()
	}
	return courseID
}
