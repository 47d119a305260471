package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"coursehub/course-service/internal/app/courses/entity"
	"coursehub/course-service/internal/app/courses/infrastructure"
	"coursehub/pkg/logger"

	"github.com/google/uuid"
)

// publishEvent отправляет событие в Kafka с ключом = CourseID
// Ошибки только логируются: запись в MongoDB уже выполнена
func publishEvent(ctx context.Context, publisher infrastructure.MessagePublisher, event entity.CourseEvent) {
	if publisher == nil {
		return
	}

	event.EventID = uuid.NewString()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := sendEvent(ctx, publisher, event); err != nil {
		logger.Warn().
			Err(err).
			Str("event_type", event.EventType).
			Str("course_id", event.CourseID).
			Msg("Failed to publish course event")
	}
}

func sendEvent(ctx context.Context, publisher infrastructure.MessagePublisher, event entity.CourseEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal course event: %w", err)
	}

	if err := publisher.PublishMessage(ctx, event.CourseID, data); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}

// invalidateCourses сбрасывает кеш списка курсов, ошибки не критичны
func invalidateCourses(ctx context.Context, cache infrastructure.CourseCache) {
	if cache == nil {
		return
	}
	if err := cache.DeleteCourses(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate courses cache")
	}
}
