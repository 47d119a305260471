package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"coursehub/course-service/internal/app/courses/entity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, token string) (*entity.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Identity), args.Error(1)
}

func newProtectedRouter(verifier *mockVerifier, handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.GET("/protected", NewAuthMiddleware(verifier).Authenticate(), handler)
	return router
}

// ==================== Authenticate Tests ====================

func TestAuthMiddleware_Authenticate_Success(t *testing.T) {
	// Arrange
	verifier := new(mockVerifier)
	verifier.On("Verify", mock.Anything, "good-token").Return(&entity.Identity{UID: testUID, Email: testEmail}, nil)

	router := newProtectedRouter(verifier, func(c *gin.Context) {
		identity, ok := identityFromContext(c)
		assert.True(t, ok)
		assert.Equal(t, testUID, identity.UID)
		assert.Equal(t, testEmail, identity.Email)
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	verifier.AssertExpectations(t)
}

func TestAuthMiddleware_Authenticate_MissingOrMalformedHeader(t *testing.T) {
	testCases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"no bearer prefix", "good-token"},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"empty token", "Bearer "},
		{"extra parts", "Bearer a b"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			verifier := new(mockVerifier)
			router := newProtectedRouter(verifier, func(c *gin.Context) {
				t.Error("Handler should not be called")
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			// Act
			router.ServeHTTP(rec, req)

			// Assert
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"message":"Unauthorized - Missing Token"}`, rec.Body.String())
			verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthMiddleware_Authenticate_RejectedToken(t *testing.T) {
	// Arrange
	verifier := new(mockVerifier)
	verifier.On("Verify", mock.Anything, "bad-token").Return(nil, errors.New("token expired"))

	router := newProtectedRouter(verifier, func(c *gin.Context) {
		t.Error("Handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid or expired token"}`, rec.Body.String())
}
