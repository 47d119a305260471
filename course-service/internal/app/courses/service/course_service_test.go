package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"coursehub/course-service/internal/app/courses/entity"
	"coursehub/course-service/internal/app/courses/repository"
	"coursehub/course-service/internal/app/courses/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestCourseRequest() *entity.CreateCourseRequest {
	return &entity.CreateCourseRequest{
		Title:         "Go for Backend Developers",
		Instructor:    "Jane Doe",
		Category:      "Programming",
		Image:         "https://cdn.example.com/go.png",
		Price:         49.99,
		OriginalPrice: 99.99,
		Duration:      "12 hours",
		Lessons:       42,
		Level:         "Intermediate",
		Description:   "Build production services in Go",
		Tags:          []string{"go", "backend"},
	}
}

func newTestCourseService(repo *mocks.MockCourseRepository, cache *mocks.MockCourseCache, publisher *mocks.MockMessagePublisher) *CourseService {
	svc := NewCourseService(repo, nil, nil, time.Hour)
	if cache != nil {
		svc.cache = cache
	}
	if publisher != nil {
		svc.publisher = publisher
	}
	return svc
}

// ==================== CreateCourse ====================

func TestCourseService_CreateCourse_Defaults(t *testing.T) {
	// Arrange
	ctx := context.Background()
	courseRepo := new(mocks.MockCourseRepository)
	cache := new(mocks.MockCourseCache)
	publisher := new(mocks.MockMessagePublisher)

	insertedID := primitive.NewObjectID()
	courseRepo.On("Create", ctx, mock.AnythingOfType("*entity.Course")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Course).ID = insertedID
		}).
		Return(nil)
	cache.On("DeleteCourses", ctx).Return(nil)
	publisher.On("PublishMessage", ctx, insertedID.Hex(), mock.Anything).Return(nil)

	fixedNow := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestCourseService(courseRepo, cache, publisher)
	svc.now = func() time.Time { return fixedNow }

	req := newTestCourseRequest()

	// Act
	course, err := svc.CreateCourse(ctx, req)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, insertedID, course.ID)
	assert.Equal(t, req.Title, course.Title)
	assert.Equal(t, req.Instructor, course.Instructor)
	assert.Equal(t, req.Tags, course.Tags)
	assert.Equal(t, req.OriginalPrice, course.OriginalPrice)
	assert.Equal(t, float64(0), course.Rating)
	assert.Equal(t, 0, course.Reviews)
	assert.Equal(t, 0, course.Students)
	assert.False(t, course.Bestseller)
	assert.Equal(t, fixedNow, course.CreatedAt)
	assert.Equal(t, fixedNow, course.UpdatedAt)

	require.Len(t, publisher.Messages, 1)
	assert.Contains(t, string(publisher.Messages[0]), entity.EventCourseCreated)

	courseRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestCourseService_CreateCourse_RepoError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	courseRepo := new(mocks.MockCourseRepository)
	cache := new(mocks.MockCourseCache)
	courseRepo.On("Create", ctx, mock.AnythingOfType("*entity.Course")).Return(errors.New("db error"))

	svc := newTestCourseService(courseRepo, cache, nil)

	// Act
	course, err := svc.CreateCourse(ctx, newTestCourseRequest())

	// Assert
	assert.Nil(t, course)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create course")
	cache.AssertNotCalled(t, "DeleteCourses", mock.Anything)
}

func TestCourseService_CreateCourse_SideEffectErrorsIgnored(t *testing.T) {
	// Arrange
	ctx := context.Background()
	courseRepo := new(mocks.MockCourseRepository)
	cache := new(mocks.MockCourseCache)
	publisher := new(mocks.MockMessagePublisher)

	courseRepo.On("Create", ctx, mock.AnythingOfType("*entity.Course")).Return(nil)
	cache.On("DeleteCourses", ctx).Return(errors.New("redis error"))
	publisher.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(errors.New("kafka error"))

	svc := newTestCourseService(courseRepo, cache, publisher)

	// Act
	course, err := svc.CreateCourse(ctx, newTestCourseRequest())

	// Assert - ошибки кеша и Kafka не должны прерывать выполнение
	require.NoError(t, err)
	assert.NotNil(t, course)
}

// ==================== GetAllCourses ====================

func TestCourseService_GetAllCourses_WithoutCache(t *testing.T) {
	// Arrange
	ctx := context.Background()
	courseRepo := new(mocks.MockCourseRepository)
	now := time.Now()
	stored := []entity.Course{
		{ID: primitive.NewObjectID(), Title: "Newest", CreatedAt: now},
		{ID: primitive.NewObjectID(), Title: "Oldest", CreatedAt: now.Add(-time.Hour)},
	}
	courseRepo.On("GetAll", ctx).Return(stored, nil)

	svc := newTestCourseService(courseRepo, nil, nil)

	// Act
	courses, err := svc.GetAllCourses(ctx)

	// Assert - порядок репозитория сохраняется
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "Newest", courses[0].Title)
	assert.Equal(t, "Oldest", courses[1].Title)
}

func TestCourseService_GetAllCourses_CacheHit(t *testing.T) {
	// Arrange
	ctx := context.Background()
	courseRepo := new(mocks.MockCourseRepository)
	cache := new(mocks.MockCourseCache)
	cached := []entity.Course{{ID: primitive.NewObjectID(), Title: "Cached"}}
	cache.On("GetCourses", ctx).Return(cached, nil)

	svc := newTestCourseService(courseRepo, cache, nil)

	// Act
	courses, err := svc.GetAllCourses(ctx)

	// Assert - репозиторий НЕ должен вызываться при cache hit
	require.NoError(t, err)
	assert.Equal(t, cached, courses)
	courseRepo.AssertNotCalled(t, "GetAll", mock.Anything)
}

func TestCourseService_GetAllCourses_CacheMiss(t *testing.T) {
	// Arrange
	ctx := context.Background()
	courseRepo := new(mocks.MockCourseRepository)
	cache := new(mocks.MockCourseCache)
	stored := []entity.Course{{ID: primitive.NewObjectID(), Title: "From Mongo"}}

	cache.On("GetCourses", ctx).Return(nil, nil)
	cache.On("Version", ctx).Return(int64(3), nil)
	courseRepo.On("GetAll", ctx).Return(stored, nil)
	cache.On("SetCourses", ctx, stored, time.Hour, int64(3)).Return(nil)

	svc := newTestCourseService(courseRepo, cache, nil)

	// Act
	courses, err := svc.GetAllCourses(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, stored, courses)
	cache.AssertExpectations(t)
}

func TestCourseService_GetAllCourses_CacheErrorFallsBackToRepo(t *testing.T) {
	// Arrange
	ctx := context.Background()
	courseRepo := new(mocks.MockCourseRepository)
	cache := new(mocks.MockCourseCache)
	stored := []entity.Course{{ID: primitive.NewObjectID(), Title: "From Mongo"}}

	cache.On("GetCourses", ctx).Return(nil, errors.New("redis down"))
	cache.On("Version", ctx).Return(int64(0), errors.New("redis down"))
	courseRepo.On("GetAll", ctx).Return(stored, nil)

	svc := newTestCourseService(courseRepo, cache, nil)

	// Act
	courses, err := svc.GetAllCourses(ctx)

	// Assert - без версии снимок не кешируется
	require.NoError(t, err)
	assert.Equal(t, stored, courses)
	cache.AssertNotCalled(t, "SetCourses", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCourseService_GetAllCourses_RepoError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	courseRepo := new(mocks.MockCourseRepository)
	courseRepo.On("GetAll", ctx).Return(nil, errors.New("db error"))

	svc := newTestCourseService(courseRepo, nil, nil)

	// Act
	courses, err := svc.GetAllCourses(ctx)

	// Assert
	assert.Nil(t, courses)
	assert.Error(t, err)
}

// ==================== GetCourse ====================

func TestCourseService_GetCourse_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	courseRepo := new(mocks.MockCourseRepository)
	expected := &entity.Course{ID: primitive.NewObjectID(), Title: "Go"}
	courseRepo.On("GetByID", ctx, expected.ID).Return(expected, nil)

	svc := newTestCourseService(courseRepo, nil, nil)

	// Act
	course, err := svc.GetCourse(ctx, expected.ID.Hex())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, expected, course)
}

func TestCourseService_GetCourse_InvalidID(t *testing.T) {
	// Arrange
	ctx := context.Background()
	courseRepo := new(mocks.MockCourseRepository)
	svc := newTestCourseService(courseRepo, nil, nil)

	for _, id := range []string{"abc", "", "zzzzzzzzzzzzzzzzzzzzzzzz", "65f1c0ffee"} {
		// Act
		course, err := svc.GetCourse(ctx, id)

		// Assert - до MongoDB запрос не доходит
		assert.Nil(t, course)
		assert.ErrorIs(t, err, ErrInvalidCourseID)
	}
	courseRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestCourseService_GetCourse_NotFound(t *testing.T) {
	// Arrange
	ctx := context.Background()
	courseRepo := new(mocks.MockCourseRepository)
	id := primitive.NewObjectID()
	courseRepo.On("GetByID", ctx, id).Return(nil, repository.ErrCourseNotFound)

	svc := newTestCourseService(courseRepo, nil, nil)

	// Act
	course, err := svc.GetCourse(ctx, id.Hex())

	// Assert
	assert.Nil(t, course)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseService_GetCourse_RepoError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	courseRepo := new(mocks.MockCourseRepository)
	id := primitive.NewObjectID()
	courseRepo.On("GetByID", ctx, id).Return(nil, errors.New("connection reset"))

	svc := newTestCourseService(courseRepo, nil, nil)

	// Act
	course, err := svc.GetCourse(ctx, id.Hex())

	// Assert
	assert.Nil(t, course)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCourseNotFound)
}
