package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coursehub/course-service/internal/app/courses/entity"
	"coursehub/pkg/logger"
	"coursehub/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	metricsService    = "course-service"
	coursesCollection = "courses"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrCourseNotFound = errors.New("course not found")
	// Курс удален или его счетчик изменился после чтения
	ErrStudentsChanged = errors.New("course students counter changed")
)

type courseRepository struct {
	collection *mongo.Collection
}

// NewCourseRepository создает репозиторий курсов
// Создает индекс по createdAt для сортировки списка курсов
func NewCourseRepository(db *mongo.Database) CourseRepository {
	collection := db.Collection(coursesCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("created_at_idx"),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		// Индекс может уже существовать, работа без него возможна
		logger.Warn().Err(err).Str("collection", coursesCollection).Msg("Failed to create index on createdAt")
	}

	return &courseRepository{collection: collection}
}

// Create сохраняет курс и проставляет ID, назначенный MongoDB
func (r *courseRepository) Create(ctx context.Context, course *entity.Course) error {
	defer metrics.NewDbTimer(metricsService, metrics.DbOpInsert, coursesCollection).ObserveDuration()

	result, err := r.collection.InsertOne(ctx, course)
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpInsert)
		return fmt.Errorf("failed to create course: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		course.ID = oid
	}

	return nil
}

// GetAll возвращает все курсы, новые первыми
func (r *courseRepository) GetAll(ctx context.Context) ([]entity.Course, error) {
	defer metrics.NewDbTimer(metricsService, metrics.DbOpFind, coursesCollection).ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpFind)
		return nil, fmt.Errorf("failed to find courses: %w", err)
	}
	defer cursor.Close(ctx)

	courses := make([]entity.Course, 0)
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, fmt.Errorf("failed to decode courses: %w", err)
	}

	return courses, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Course, error) {
	defer metrics.NewDbTimer(metricsService, metrics.DbOpFind, coursesCollection).ObserveDuration()

	var course entity.Course
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&course)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCourseNotFound
		}
		metrics.RecordDbError(metricsService, metrics.DbOpFind)
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return &course, nil
}

// IncrementStudents атомарно изменяет счетчик students на delta
func (r *courseRepository) IncrementStudents(ctx context.Context, id primitive.ObjectID, delta int) error {
	defer metrics.NewDbTimer(metricsService, metrics.DbOpUpdate, coursesCollection).ObserveDuration()

	update := bson.M{"$inc": bson.M{"students": delta}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpUpdate)
		return fmt.Errorf("failed to increment students: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrCourseNotFound
	}

	return nil
}

// SetStudents заменяет счетчик students, только если он все еще равен observed
// Параллельный $inc после чтения reconciler дает ErrStudentsChanged
func (r *courseRepository) SetStudents(ctx context.Context, id primitive.ObjectID, observed, students int) error {
	defer metrics.NewDbTimer(metricsService, metrics.DbOpUpdate, coursesCollection).ObserveDuration()

	filter := bson.M{"_id": id, "students": observed}
	update := bson.M{"$set": bson.M{"students": students}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpUpdate)
		return fmt.Errorf("failed to set students: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrStudentsChanged
	}

	return nil
}
