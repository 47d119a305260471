package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coursehub/course-service/internal/app/courses/entity"
	"coursehub/course-service/internal/app/courses/infrastructure"
	"coursehub/course-service/internal/app/courses/repository"
	"coursehub/pkg/logger"
	"coursehub/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CourseService обрабатывает бизнес-логику курсов
// cache и publisher опциональны (nil - выключено)
type CourseService struct {
	courseRepo repository.CourseRepository
	cache      infrastructure.CourseCache
	publisher  infrastructure.MessagePublisher
	cacheTTL   time.Duration
	now        func() time.Time
}

func NewCourseService(
	courseRepo repository.CourseRepository,
	cache infrastructure.CourseCache,
	publisher infrastructure.MessagePublisher,
	cacheTTL time.Duration,
) *CourseService {
	return &CourseService{
		courseRepo: courseRepo,
		cache:      cache,
		publisher:  publisher,
		cacheTTL:   cacheTTL,
		now:        time.Now,
	}
}

// CreateCourse сохраняет курс с серверными значениями по умолчанию:
// rating=0, reviews=0, students=0, bestseller=false, createdAt=updatedAt=now
func (s *CourseService) CreateCourse(ctx context.Context, req *entity.CreateCourseRequest) (*entity.Course, error) {
	now := s.now()
	course := &entity.Course{
		Title:         req.Title,
		Instructor:    req.Instructor,
		Category:      req.Category,
		Image:         req.Image,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Duration:      req.Duration,
		Lessons:       req.Lessons,
		Level:         req.Level,
		Description:   req.Description,
		Tags:          req.Tags,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	metrics.CoursesCreated.Inc()

	invalidateCourses(ctx, s.cache)
	publishEvent(ctx, s.publisher, entity.CourseEvent{
		EventType: entity.EventCourseCreated,
		CourseID:  course.ID.Hex(),
		Timestamp: now,
	})

	return course, nil
}

// GetAllCourses возвращает курсы, новые первыми
// Сначала проверяет кеш Redis, при промахе читает MongoDB и кеширует результат.
// Версия кеша читается до MongoDB: если между чтением и записью прошла
// инвалидация, снимок в кеш не попадет
func (s *CourseService) GetAllCourses(ctx context.Context) ([]entity.Course, error) {
	var version int64
	cacheable := false

	if s.cache != nil {
		courses, err := s.cache.GetCourses(ctx)
		if err == nil && len(courses) > 0 {
			return courses, nil
		}
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to read courses cache")
		}

		version, err = s.cache.Version(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to read courses cache version")
		} else {
			cacheable = true
		}
	}

	courses, err := s.courseRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get courses: %w", err)
	}

	if cacheable && len(courses) > 0 {
		if err := s.cache.SetCourses(ctx, courses, s.cacheTTL, version); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache courses")
		}
	}

	return courses, nil
}

// GetCourse получает курс по hex ObjectID
// Некорректный ID отклоняется до обращения к MongoDB
func (s *CourseService) GetCourse(ctx context.Context, id string) (*entity.Course, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidCourseID
	}

	course, err := s.courseRepo.GetByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return course, nil
}
