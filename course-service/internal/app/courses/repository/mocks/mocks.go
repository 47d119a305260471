package mocks

import (
	"context"
	"time"

	"coursehub/course-service/internal/app/courses/entity"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockCourseRepository мок для CourseRepository
type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) Create(ctx context.Context, course *entity.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseRepository) GetAll(ctx context.Context) ([]entity.Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Course), args.Error(1)
}

func (m *MockCourseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Course), args.Error(1)
}

func (m *MockCourseRepository) IncrementStudents(ctx context.Context, id primitive.ObjectID, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *MockCourseRepository) SetStudents(ctx context.Context, id primitive.ObjectID, observed, students int) error {
	args := m.Called(ctx, id, observed, students)
	return args.Error(0)
}

// MockEnrollmentRepository мок для EnrollmentRepository
type MockEnrollmentRepository struct {
	mock.Mock
}

func (m *MockEnrollmentRepository) Create(ctx context.Context, enrollment *entity.Enrollment) error {
	args := m.Called(ctx, enrollment)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) GetByUserAndCourse(ctx context.Context, userID, courseID string) (*entity.Enrollment, error) {
	args := m.Called(ctx, userID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Enrollment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) UpdateProgress(ctx context.Context, userID, courseID string, progress float64, completed bool, accessedAt time.Time) error {
	args := m.Called(ctx, userID, courseID, progress, completed, accessedAt)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) CountByCourse(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

// MockCourseCache мок для CourseCache
type MockCourseCache struct {
	mock.Mock
}

func (m *MockCourseCache) GetCourses(ctx context.Context) ([]entity.Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Course), args.Error(1)
}

func (m *MockCourseCache) Version(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCourseCache) SetCourses(ctx context.Context, courses []entity.Course, ttl time.Duration, version int64) error {
	args := m.Called(ctx, courses, ttl, version)
	return args.Error(0)
}

func (m *MockCourseCache) DeleteCourses(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCourseCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockMessagePublisher мок для Kafka MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
