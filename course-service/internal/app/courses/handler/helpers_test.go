package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"coursehub/course-service/internal/app/courses/infrastructure/identity"
	"coursehub/course-service/internal/app/courses/repository/mocks"
	"coursehub/course-service/internal/app/courses/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret-key"
	testUID    = "firebase-uid-1"
	testEmail  = "student@example.com"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Хелперы для создания тестового окружения

type testEnv struct {
	router         *gin.Engine
	courseRepo     *mocks.MockCourseRepository
	enrollmentRepo *mocks.MockEnrollmentRepository
	verifier       *identity.HMACVerifier
}

func setupTestRouter(opts RouterOptions) *testEnv {
	courseRepo := new(mocks.MockCourseRepository)
	enrollmentRepo := new(mocks.MockEnrollmentRepository)
	verifier := identity.NewHMACVerifier(testSecret)

	courseService := service.NewCourseService(courseRepo, nil, nil, time.Minute)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, nil, nil)

	router := SetupRoutes(
		NewCourseHandler(courseService),
		NewEnrollmentHandler(enrollmentService),
		NewAuthMiddleware(verifier),
		opts,
	)

	return &testEnv{
		router:         router,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		verifier:       verifier,
	}
}

func (e *testEnv) token(t *testing.T) string {
	t.Helper()
	token, err := e.verifier.Sign(identity.HMACClaims{
		UserID: testUID,
		Email:  testEmail,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reader = bytes.NewBuffer(nil)
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
