package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AuthModeFirebase = "firebase"
	AuthModeHMAC     = "hmac"
)

// Config содержит все настройки Course Service
type Config struct {
	Server     ServerConfig
	MongoDB    MongoDBConfig
	Auth       AuthConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Reconciler ReconcilerConfig
}

type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 4000)

	// CourseCreatePublic открывает POST /api/addcourse без токена
	CourseCreatePublic bool
	AllowOrigins       []string
}

type MongoDBConfig struct {
	URI      string // URI подключения к MongoDB
	Database string // Имя базы данных
}

// AuthConfig - настройки проверки bearer токенов
// firebase: ID токены Firebase Authentication (RS256, ключи Google)
// hmac: HS256 токены с общим секретом для локальной разработки
type AuthConfig struct {
	Mode            string
	CredentialsFile string // service account JSON (из него берется project_id)
	ProjectID       string
	JWTSecret       string
}

// RedisConfig - кеш списка курсов. Пустой Host отключает кеширование
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// KafkaConfig - публикация событий COURSE_CREATED и ENROLLMENT_CREATED
// Пустой список брокеров отключает публикацию
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// ReconcilerConfig - cron выражение пересчета счетчика студентов. Пустое - выключено
type ReconcilerConfig struct {
	Schedule string
}

// LoadENV загружает переменные из .env, если GO_ENV не production
// Отсутствие файла не считается ошибкой
func LoadENV() error {
	if os.Getenv("GO_ENV") == "production" {
		return nil
	}
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load()
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL value: %w", err)
	}

	coursePublic, err := strconv.ParseBool(getEnv("COURSE_CREATE_PUBLIC", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid COURSE_CREATE_PUBLIC value: %w", err)
	}

	authMode := strings.ToLower(getEnv("AUTH_MODE", AuthModeFirebase))
	if authMode != AuthModeFirebase && authMode != AuthModeHMAC {
		return nil, fmt.Errorf("invalid AUTH_MODE value: %q", authMode)
	}

	return &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "0.0.0.0"),
			Port:               getEnv("PORT", "4000"),
			CourseCreatePublic: coursePublic,
			AllowOrigins:       splitList(getEnv("CORS_ALLOW_ORIGINS", "*")),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "courseManagementDb"),
		},
		Auth: AuthConfig{
			Mode:            authMode,
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", "firebase-adminsdk.json"),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			JWTSecret:       getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			TTL:      cacheTTL,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "course_events"),
		},
		Reconciler: ReconcilerConfig{
			Schedule: getEnv("RECONCILE_SCHEDULE", ""),
		},
	}, nil
}

// Address возвращает адрес сервера в формате host:port
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

func (c *KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
