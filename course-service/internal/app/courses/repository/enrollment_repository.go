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

const enrollmentsCollection = "enrollments"

var (
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrDuplicateEnrollment = errors.New("enrollment already exists")
)

type enrollmentRepository struct {
	collection *mongo.Collection
}

// NewEnrollmentRepository создает репозиторий записей на курсы
// Уникальный индекс (userId, courseId) закрывает гонку между проверкой и вставкой
func NewEnrollmentRepository(db *mongo.Database) EnrollmentRepository {
	collection := db.Collection(enrollmentsCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "courseId", Value: 1}},
			Options: options.Index().SetName("user_course_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "enrolledAt", Value: -1}},
			Options: options.Index().SetName("user_enrolled_at_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// Без уникального индекса остается только проверка в service layer
		logger.Warn().Err(err).Str("collection", enrollmentsCollection).Msg("Failed to create enrollment indexes")
	}

	return &enrollmentRepository{collection: collection}
}

// Create сохраняет запись на курс
// Возвращает ErrDuplicateEnrollment при нарушении уникального индекса
func (r *enrollmentRepository) Create(ctx context.Context, enrollment *entity.Enrollment) error {
	defer metrics.NewDbTimer(metricsService, metrics.DbOpInsert, enrollmentsCollection).ObserveDuration()

	result, err := r.collection.InsertOne(ctx, enrollment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEnrollment
		}
		metrics.RecordDbError(metricsService, metrics.DbOpInsert)
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		enrollment.ID = oid
	}

	return nil
}

func (r *enrollmentRepository) GetByUserAndCourse(ctx context.Context, userID, courseID string) (*entity.Enrollment, error) {
	defer metrics.NewDbTimer(metricsService, metrics.DbOpFind, enrollmentsCollection).ObserveDuration()

	filter := bson.M{"userId": userID, "courseId": courseID}

	var enrollment entity.Enrollment
	if err := r.collection.FindOne(ctx, filter).Decode(&enrollment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEnrollmentNotFound
		}
		metrics.RecordDbError(metricsService, metrics.DbOpFind)
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	return &enrollment, nil
}

// GetByUserID возвращает записи пользователя, последние первыми
func (r *enrollmentRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Enrollment, error) {
	defer metrics.NewDbTimer(metricsService, metrics.DbOpFind, enrollmentsCollection).ObserveDuration()

	filter := bson.M{"userId": userID}
	opts := options.Find().SetSort(bson.D{{Key: "enrolledAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpFind)
		return nil, fmt.Errorf("failed to find enrollments: %w", err)
	}
	defer cursor.Close(ctx)

	enrollments := make([]entity.Enrollment, 0)
	if err := cursor.All(ctx, &enrollments); err != nil {
		return nil, fmt.Errorf("failed to decode enrollments: %w", err)
	}

	return enrollments, nil
}

// UpdateProgress выставляет progress, completed и lastAccessed, enrolledAt не трогает
func (r *enrollmentRepository) UpdateProgress(ctx context.Context, userID, courseID string, progress float64, completed bool, accessedAt time.Time) error {
	defer metrics.NewDbTimer(metricsService, metrics.DbOpUpdate, enrollmentsCollection).ObserveDuration()

	filter := bson.M{"userId": userID, "courseId": courseID}
	update := bson.M{
		"$set": bson.M{
			"progress":     progress,
			"completed":    completed,
			"lastAccessed": accessedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpUpdate)
		return fmt.Errorf("failed to update enrollment progress: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrEnrollmentNotFound
	}

	return nil
}

// CountByCourse возвращает количество записей по каждому courseId
func (r *enrollmentRepository) CountByCourse(ctx context.Context) (map[string]int, error) {
	defer metrics.NewDbTimer(metricsService, metrics.DbOpAggregate, enrollmentsCollection).ObserveDuration()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$courseId"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpAggregate)
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		CourseID string `bson:"_id"`
		Count    int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode enrollment counts: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.CourseID] = row.Count
	}

	return counts, nil
}
