package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coursehub/course-service/internal/app/courses/entity"
	"coursehub/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	coursesCacheKey   = "courses:all"
	coursesVersionKey = "courses:version"
	metricsService    = "course-service"
	metricsPrefix     = "courses"
)

var errStaleSnapshot = errors.New("courses snapshot is stale")

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache подключается к Redis и проверяет соединение через PING
func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// NewRedisCacheWithClient оборачивает готовый клиент
func NewRedisCacheWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Version возвращает текущую версию списка курсов (0, если ключа нет)
// Версию нужно прочитать до чтения MongoDB и передать в SetCourses
func (r *RedisCache) Version(ctx context.Context) (int64, error) {
	version, err := r.client.Get(ctx, coursesVersionKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		metrics.RecordRedisError(metricsService, metrics.RedisOpGet)
		return 0, fmt.Errorf("failed to get courses cache version: %w", err)
	}
	return version, nil
}

// SetCourses кеширует снимок, только если версия не менялась с момента его чтения
// Устаревший снимок молча отбрасывается
func (r *RedisCache) SetCourses(ctx context.Context, courses []entity.Course, ttl time.Duration, version int64) error {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	data, err := json.Marshal(courses)
	if err != nil {
		return fmt.Errorf("failed to marshal courses: %w", err)
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, coursesVersionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleSnapshot
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, coursesCacheKey, data, ttl)
			return nil
		})
		return err
	}, coursesVersionKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, errStaleSnapshot), errors.Is(err, redis.TxFailedErr):
		return nil
	default:
		metrics.RecordRedisError(metricsService, metrics.RedisOpSet)
		return fmt.Errorf("failed to set courses in cache: %w", err)
	}
}

func (r *RedisCache) GetCourses(ctx context.Context) ([]entity.Course, error) {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := r.client.Get(ctx, coursesCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(metricsService, metricsPrefix)
			return nil, nil
		}
		metrics.RecordRedisError(metricsService, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get courses from cache: %w", err)
	}

	var courses []entity.Course
	if err := json.Unmarshal(data, &courses); err != nil {
		return nil, fmt.Errorf("failed to unmarshal courses: %w", err)
	}

	metrics.RecordCacheHit(metricsService, metricsPrefix)
	return courses, nil
}

func (r *RedisCache) DeleteCourses(ctx context.Context) error {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	// Сдвиг версии отменяет запись снимков, прочитанных до этого момента
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, coursesVersionKey)
		pipe.Del(ctx, coursesCacheKey)
		return nil
	})
	if err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete courses from cache: %w", err)
	}
	return nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
