package repository

import (
	"context"
	"time"

	"coursehub/course-service/internal/app/courses/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CourseRepository определяет методы для работы с курсами в MongoDB
type CourseRepository interface {
	Create(ctx context.Context, course *entity.Course) error
	GetAll(ctx context.Context) ([]entity.Course, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Course, error)
	IncrementStudents(ctx context.Context, id primitive.ObjectID, delta int) error
	SetStudents(ctx context.Context, id primitive.ObjectID, observed, students int) error
}

// EnrollmentRepository определяет методы для работы с записями на курсы
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *entity.Enrollment) error
	GetByUserAndCourse(ctx context.Context, userID, courseID string) (*entity.Enrollment, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.Enrollment, error)
	UpdateProgress(ctx context.Context, userID, courseID string, progress float64, completed bool, accessedAt time.Time) error
	CountByCourse(ctx context.Context) (map[string]int, error)
}
