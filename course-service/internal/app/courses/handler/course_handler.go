package handler

import (
	"errors"
	"net/http"

	"coursehub/course-service/internal/app/courses/entity"
	"coursehub/course-service/internal/app/courses/service"
	"coursehub/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CourseHandler обрабатывает HTTP запросы каталога курсов
type CourseHandler struct {
	courseService *service.CourseService
}

// NewCourseHandler создает новый обработчик курсов
func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
	}
}

// CreateCourse обрабатывает POST /api/addcourse
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req entity.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.MessageResponse{Message: "Invalid request body"})
		return
	}

	course, err := h.courseService.CreateCourse(c.Request.Context(), &req)
	if err != nil {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Failed to create course")
		c.JSON(http.StatusInternalServerError, entity.MessageResponse{Message: "Error creating course"})
		return
	}

	logger.Info().Str("course_id", course.ID.Hex()).Str("title", course.Title).Msg("Course created")
	c.JSON(http.StatusCreated, entity.MessageResponse{Message: "Course added successfully"})
}

// GetAllCourses обрабатывает GET /api/allcourse
func (h *CourseHandler) GetAllCourses(c *gin.Context) {
	courses, err := h.courseService.GetAllCourses(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Failed to fetch courses")
		c.JSON(http.StatusInternalServerError, entity.StatusResponse{Success: false, Message: "Error fetching courses"})
		return
	}

	c.JSON(http.StatusOK, entity.CourseListResponse{
		Success: true,
		Total:   len(courses),
		Data:    courses,
	})
}

// GetCourse обрабатывает GET /api/course/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseService.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCourseID):
			c.JSON(http.StatusBadRequest, entity.StatusResponse{Success: false, Message: "Invalid course ID"})
		case errors.Is(err, service.ErrCourseNotFound):
			c.JSON(http.StatusNotFound, entity.StatusResponse{Success: false, Message: "Course not found"})
		default:
			logger.Error().Err(err).Str("path", c.FullPath()).Msg("Failed to fetch course")
			c.JSON(http.StatusInternalServerError, entity.StatusResponse{Success: false, Message: "Error fetching course"})
		}
		return
	}

	c.JSON(http.StatusOK, entity.CourseResponse{Success: true, Data: course})
}
