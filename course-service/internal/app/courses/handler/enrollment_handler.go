package handler

import (
	"errors"
	"net/http"

	"coursehub/course-service/internal/app/courses/entity"
	"coursehub/course-service/internal/app/courses/service"
	"coursehub/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// EnrollmentHandler обрабатывает записи на курсы текущего пользователя
// Все маршруты требуют Authenticate
type EnrollmentHandler struct {
	enrollmentService *service.EnrollmentService
	validator         *validator.Validate
}

func NewEnrollmentHandler(enrollmentService *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollmentService: enrollmentService,
		validator:         validator.New(),
	}
}

// Enroll обрабатывает POST /api/enroll
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.MessageResponse{Message: "Unauthorized - Missing Token"})
		return
	}

	var req entity.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.StatusResponse{Success: false, Message: "Invalid request body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.StatusResponse{Success: false, Message: "courseId is required"})
		return
	}

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), identity, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCourseID):
			c.JSON(http.StatusBadRequest, entity.StatusResponse{Success: false, Message: "Invalid course ID"})
		case errors.Is(err, service.ErrAlreadyEnrolled):
			c.JSON(http.StatusBadRequest, entity.StatusResponse{Success: false, Message: "Already enrolled in this course"})
		default:
			logger.Error().Err(err).Str("path", c.FullPath()).Str("user_id", identity.UID).Msg("Failed to enroll")
			c.JSON(http.StatusInternalServerError, entity.StatusResponse{Success: false, Message: "Error enrolling in course"})
		}
		return
	}

	c.JSON(http.StatusCreated, entity.EnrollResponse{
		Success: true,
		Message: "Enrolled successfully",
		Data:    enrollment,
	})
}

// GetMyEnrollments обрабатывает GET /api/my-enrollments
func (h *EnrollmentHandler) GetMyEnrollments(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.MessageResponse{Message: "Unauthorized - Missing Token"})
		return
	}

	enrollments, err := h.enrollmentService.GetMyEnrollments(c.Request.Context(), identity.UID)
	if err != nil {
		logger.Error().Err(err).Str("path", c.FullPath()).Str("user_id", identity.UID).Msg("Failed to fetch enrollments")
		c.JSON(http.StatusInternalServerError, entity.StatusResponse{Success: false, Message: "Error fetching enrollments"})
		return
	}

	c.JSON(http.StatusOK, entity.EnrollmentListResponse{
		Success: true,
		Total:   len(enrollments),
		Data:    enrollments,
	})
}

// CheckEnrollment обрабатывает GET /api/check-enrollment/:courseId
func (h *EnrollmentHandler) CheckEnrollment(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.MessageResponse{Message: "Unauthorized - Missing Token"})
		return
	}

	enrollment, err := h.enrollmentService.CheckEnrollment(c.Request.Context(), identity.UID, c.Param("courseId"))
	if err != nil {
		logger.Error().Err(err).Str("path", c.FullPath()).Str("user_id", identity.UID).Msg("Failed to check enrollment")
		c.JSON(http.StatusInternalServerError, entity.StatusResponse{Success: false, Message: "Error checking enrollment"})
		return
	}

	c.JSON(http.StatusOK, entity.CheckEnrollmentResponse{
		Success:    true,
		IsEnrolled: enrollment != nil,
		Enrollment: enrollment,
	})
}

// UpdateProgress обрабатывает PUT /api/enrollment/progress
func (h *EnrollmentHandler) UpdateProgress(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.MessageResponse{Message: "Unauthorized - Missing Token"})
		return
	}

	var req entity.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.StatusResponse{Success: false, Message: "Invalid request body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.StatusResponse{Success: false, Message: "courseId is required"})
		return
	}

	if err := h.enrollmentService.UpdateProgress(c.Request.Context(), identity.UID, &req); err != nil {
		if errors.Is(err, service.ErrEnrollmentNotFound) {
			c.JSON(http.StatusNotFound, entity.StatusResponse{Success: false, Message: "Enrollment not found"})
			return
		}
		logger.Error().Err(err).Str("path", c.FullPath()).Str("user_id", identity.UID).Msg("Failed to update progress")
		c.JSON(http.StatusInternalServerError, entity.StatusResponse{Success: false, Message: "Error updating progress"})
		return
	}

	c.JSON(http.StatusOK, entity.StatusResponse{Success: true, Message: "Progress updated successfully"})
}
