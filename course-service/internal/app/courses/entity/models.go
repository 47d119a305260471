package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course - документ коллекции courses
// rating, reviews, students и bestseller выставляются сервером при создании
type Course struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title         string             `json:"title" bson:"title"`
	Instructor    string             `json:"instructor" bson:"instructor"`
	Category      string             `json:"category" bson:"category"`
	Image         string             `json:"image" bson:"image"`
	Price         float64            `json:"price" bson:"price"`
	OriginalPrice float64            `json:"originalPrice" bson:"originalPrice"`
	Duration      string             `json:"duration" bson:"duration"`
	Lessons       int                `json:"lessons" bson:"lessons"`
	Level         string             `json:"level" bson:"level"`
	Description   string             `json:"description" bson:"description"`
	Tags          []string           `json:"tags" bson:"tags"`
	Rating        float64            `json:"rating" bson:"rating"`
	Reviews       int                `json:"reviews" bson:"reviews"`
	Students      int                `json:"students" bson:"students"` // Денормализованный счетчик записей
	Bestseller    bool               `json:"bestseller" bson:"bestseller"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type EnrollmentStatus string

const (
	EnrollmentStatusActive EnrollmentStatus = "active"
)

// Enrollment - запись пользователя на курс
// Пара (UserID, CourseID) уникальна, см. индекс user_course_unique
type Enrollment struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID      string             `json:"userId" bson:"userId"` // uid из identity provider
	UserEmail   string             `json:"userEmail" bson:"userEmail"`
	CourseID    string             `json:"courseId" bson:"courseId"` // hex ObjectID курса
	CourseName  string             `json:"courseName" bson:"courseName"`
	CoursePrice float64            `json:"coursePrice" bson:"coursePrice"`
	CourseImage string             `json:"courseImage" bson:"courseImage"`
	EnrolledAt  time.Time          `json:"enrolledAt" bson:"enrolledAt"`
	// nil до первого обновления прогресса
	LastAccessed *time.Time       `json:"lastAccessed" bson:"lastAccessed"`
	Progress     float64          `json:"progress" bson:"progress"`
	Completed    bool             `json:"completed" bson:"completed"`
	Status       EnrollmentStatus `json:"status" bson:"status"`
}

// Identity - проверенная личность пользователя из bearer токена
type Identity struct {
	UID   string
	Email string
}

const (
	EventCourseCreated     = "COURSE_CREATED"
	EventEnrollmentCreated = "ENROLLMENT_CREATED"
)

// CourseEvent - событие, публикуемое в Kafka после успешной записи
type CourseEvent struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	CourseID     string    `json:"course_id"`
	EnrollmentID string    `json:"enrollment_id,omitempty"`
	UserID       string    `json:"user_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
