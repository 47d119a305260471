package processor

import (
	"context"
	"errors"
	"fmt"

	"coursehub/course-service/internal/app/courses/infrastructure"
	"coursehub/course-service/internal/app/courses/repository"
	"coursehub/pkg/logger"
	"coursehub/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// StudentCountReconciler пересчитывает денормализованный счетчик students
// по коллекции enrollments и исправляет расхождения
type StudentCountReconciler struct {
	cron           *cron.Cron
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	cache          infrastructure.CourseCache // nil - кеш выключен
}

func NewStudentCountReconciler(
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	cache infrastructure.CourseCache,
) *StudentCountReconciler {
	l := logger.Get()
	c := cron.New(cron.WithLogger(cron.PrintfLogger(&l)))

	return &StudentCountReconciler{
		cron:           c,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		cache:          cache,
	}
}

// Reconcile выполняет один проход и возвращает число исправленных курсов
// Ошибка SetStudents по одному курсу не останавливает проход.
// Счетчик пишется только поверх прочитанного значения: курс, изменившийся
// во время прохода, пропускается до следующего запуска
func (r *StudentCountReconciler) Reconcile(ctx context.Context) (int, error) {
	// Счетчики читаются раньше записей: $inc, прошедший между чтениями,
	// меняет students, и условный SetStudents его не перезапишет
	courses, err := r.courseRepo.GetAll(ctx)
	if err != nil {
		metrics.ReconcilerRuns.WithLabelValues("failed").Inc()
		return 0, fmt.Errorf("failed to get courses: %w", err)
	}

	counts, err := r.enrollmentRepo.CountByCourse(ctx)
	if err != nil {
		metrics.ReconcilerRuns.WithLabelValues("failed").Inc()
		return 0, fmt.Errorf("failed to count enrollments: %w", err)
	}

	repaired := 0
	var errs []error
	for _, course := range courses {
		expected := counts[course.ID.Hex()]
		if course.Students == expected {
			continue
		}

		if err := r.courseRepo.SetStudents(ctx, course.ID, course.Students, expected); err != nil {
			if errors.Is(err, repository.ErrStudentsChanged) {
				logger.Debug().Str("course_id", course.ID.Hex()).Msg("Students counter changed during reconciliation, skipped")
				continue
			}
			errs = append(errs, fmt.Errorf("course %s: %w", course.ID.Hex(), err))
			continue
		}

		repaired++
		metrics.ReconcilerRepairs.Inc()
		logger.Info().
			Str("course_id", course.ID.Hex()).
			Int("stored", course.Students).
			Int("actual", expected).
			Msg("Student counter repaired")
	}

	if repaired > 0 && r.cache != nil {
		if err := r.cache.DeleteCourses(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to invalidate courses cache after reconciliation")
		}
	}

	if len(errs) > 0 {
		metrics.ReconcilerRuns.WithLabelValues("failed").Inc()
		return repaired, fmt.Errorf("failed to repair student counters: %w", errors.Join(errs...))
	}

	metrics.ReconcilerRuns.WithLabelValues("success").Inc()
	return repaired, nil
}

// Start регистрирует задачу по cron-расписанию и сразу делает первый проход
func (r *StudentCountReconciler) Start(ctx context.Context, schedule string) error {
	_, err := r.cron.AddFunc(schedule, func() {
		r.run(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", schedule, err)
	}

	r.cron.Start()
	logger.Info().Str("schedule", schedule).Msg("Student count reconciler started")

	r.run(ctx)
	return nil
}

func (r *StudentCountReconciler) run(ctx context.Context) {
	repaired, err := r.Reconcile(ctx)
	if err != nil {
		logger.Error().Err(err).Int("repaired", repaired).Msg("Student count reconciliation failed")
		return
	}
	logger.Debug().Int("repaired", repaired).Msg("Student count reconciliation completed")
}

// Stop ждет завершения запущенных задач
func (r *StudentCountReconciler) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Student count reconciler stopped")
}

func (r *StudentCountReconciler) Entries() []cron.Entry {
	return r.cron.Entries()
}
