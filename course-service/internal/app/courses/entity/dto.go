package entity

// CreateCourseRequest - тело POST /api/addcourse
// Поля не валидируются: отсутствующие сохраняются нулевыми значениями
type CreateCourseRequest struct {
	Title         string   `json:"title"`
	Instructor    string   `json:"instructor"`
	Category      string   `json:"category"`
	Image         string   `json:"image"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"originalPrice"`
	Duration      string   `json:"duration"`
	Lessons       int      `json:"lessons"`
	Level         string   `json:"level"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
}

// EnrollRequest - тело POST /api/enroll
// courseName, coursePrice и courseImage копируются в запись как снимок на момент записи
type EnrollRequest struct {
	CourseID    string  `json:"courseId" validate:"required"`
	CourseName  string  `json:"courseName"`
	CoursePrice float64 `json:"coursePrice"`
	CourseImage string  `json:"courseImage"`
}

// UpdateProgressRequest - тело PUT /api/enrollment/progress
// Диапазон и монотонность progress не проверяются
type UpdateProgressRequest struct {
	CourseID  string  `json:"courseId" validate:"required"`
	Progress  float64 `json:"progress"`
	Completed bool    `json:"completed"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CourseListResponse struct {
	Success bool     `json:"success"`
	Total   int      `json:"total"`
	Data    []Course `json:"data"`
}

type CourseResponse struct {
	Success bool    `json:"success"`
	Data    *Course `json:"data"`
}

type EnrollResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    *Enrollment `json:"data"`
}

type EnrollmentListResponse struct {
	Success bool         `json:"success"`
	Total   int          `json:"total"`
	Data    []Enrollment `json:"data"`
}

type CheckEnrollmentResponse struct {
	Success    bool        `json:"success"`
	IsEnrolled bool        `json:"isEnrolled"`
	Enrollment *Enrollment `json:"enrollment"`
}
