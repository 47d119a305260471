package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Labels: service, method, path, status
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
// Пример: histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

// HttpRequestsInFlight - текущее количество обрабатываемых запросов
var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// MongoDB Метрики
// =============================================================================

// DbQueryDuration - время выполнения операций с коллекциями
var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "collection"},
)

// DbErrors - счётчик ошибок базы данных
var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Redis Метрики
// =============================================================================

var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"service", "key_prefix"},
)

var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"service", "key_prefix"},
)

var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"},
)

var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka Метрики
// =============================================================================

var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"},
)

// =============================================================================
// Business Метрики
// =============================================================================

// CoursesCreated - созданные курсы
var CoursesCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "courses_created_total",
		Help: "Total number of courses created",
	},
)

// EnrollmentsCreated - записи на курсы
var EnrollmentsCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "enrollments_created_total",
		Help: "Total number of enrollments created",
	},
)

// EnrollmentsRejected - отклоненные повторные записи
var EnrollmentsRejected = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "enrollments_rejected_total",
		Help: "Total number of rejected enrollment attempts",
	},
	[]string{"reason"}, // duplicate, invalid
)

// StudentCounterFailures - неудачные инкременты счетчика студентов после записи на курс
// Ненулевое значение означает расхождение students с реальным числом записей
var StudentCounterFailures = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "enrollment_counter_increment_failures_total",
		Help: "Total number of failed course student counter increments",
	},
)

// ProgressUpdates - обновления прогресса прохождения курса
var ProgressUpdates = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "enrollment_progress_updates_total",
		Help: "Total number of enrollment progress updates",
	},
	[]string{"completed"},
)

// ReconcilerRepairs - курсы, у которых reconciler исправил счетчик студентов
var ReconcilerRepairs = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "reconciler_repairs_total",
		Help: "Total number of course student counters repaired by the reconciler",
	},
)

// ReconcilerRuns - запуски reconciler
var ReconcilerRuns = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reconciler_runs_total",
		Help: "Total number of reconciler runs",
	},
	[]string{"status"}, // success, failed
)
