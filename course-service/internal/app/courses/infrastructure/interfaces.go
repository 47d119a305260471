package infrastructure

import (
	"context"
	"time"

	"coursehub/course-service/internal/app/courses/entity"
)

// IdentityVerifier проверяет bearer токен во внешнем identity provider
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*entity.Identity, error)
}

// CourseCache кеш списка курсов (Redis)
// GetCourses возвращает nil, nil при промахе
// SetCourses пишет снимок только если Version не изменилась после его чтения,
// DeleteCourses сдвигает версию
type CourseCache interface {
	GetCourses(ctx context.Context) ([]entity.Course, error)
	Version(ctx context.Context) (int64, error)
	SetCourses(ctx context.Context, courses []entity.Course, ttl time.Duration, version int64) error
	DeleteCourses(ctx context.Context) error
	Close() error
}

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
