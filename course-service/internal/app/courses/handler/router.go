package handler

import (
	"net/http"
	"slices"

	"coursehub/pkg/logger"
	"coursehub/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "course-service"

// Route - одна строка таблицы маршрутов
// Auth=true оборачивает обработчик в AuthMiddleware.Authenticate
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Auth    bool
}

// RouterOptions управляет поведением роутера, которое задается конфигурацией
type RouterOptions struct {
	// CourseCreatePublic снимает аутентификацию с POST /api/addcourse
	CourseCreatePublic bool
	AllowOrigins       []string
}

// Routes возвращает таблицу API маршрутов сервиса
func Routes(courseHandler *CourseHandler, enrollmentHandler *EnrollmentHandler, opts RouterOptions) []Route {
	return []Route{
		{http.MethodPost, "/api/addcourse", courseHandler.CreateCourse, !opts.CourseCreatePublic},
		{http.MethodGet, "/api/allcourse", courseHandler.GetAllCourses, false},
		{http.MethodGet, "/api/course/:id", courseHandler.GetCourse, false},

		{http.MethodPost, "/api/enroll", enrollmentHandler.Enroll, true},
		{http.MethodGet, "/api/my-enrollments", enrollmentHandler.GetMyEnrollments, true},
		{http.MethodGet, "/api/check-enrollment/:courseId", enrollmentHandler.CheckEnrollment, true},
		{http.MethodPut, "/api/enrollment/progress", enrollmentHandler.UpdateProgress, true},
	}
}

// SetupRoutes настраивает все маршруты Course Service с использованием Gin
func SetupRoutes(courseHandler *CourseHandler, enrollmentHandler *EnrollmentHandler, authMiddleware *AuthMiddleware, opts RouterOptions) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))
	router.Use(cors.New(corsConfig(opts.AllowOrigins)))

	// Liveness
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Course Management API is running successfully!")
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	for _, route := range Routes(courseHandler, enrollmentHandler, opts) {
		if route.Auth {
			router.Handle(route.Method, route.Path, authMiddleware.Authenticate(), route.Handler)
			continue
		}
		router.Handle(route.Method, route.Path, route.Handler)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        300,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}

	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
