package handler

import (
	"net/http"
	"strings"

	"coursehub/course-service/internal/app/courses/entity"
	"coursehub/course-service/internal/app/courses/infrastructure"
	"coursehub/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
)

// AuthMiddleware проверяет bearer-токен через внешнего провайдера идентичности
type AuthMiddleware struct {
	verifier infrastructure.IdentityVerifier
}

func NewAuthMiddleware(verifier infrastructure.IdentityVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// Authenticate пропускает запрос дальше только с валидным токеном
// Нет заголовка или он не вида "Bearer <token>" - 401, провайдер не вызывается
// Провайдер отклонил токен - 403
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.MessageResponse{Message: "Unauthorized - Missing Token"})
			return
		}

		identity, err := m.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			logger.Debug().Err(err).Str("path", c.FullPath()).Msg("Token rejected")
			c.AbortWithStatusJSON(http.StatusForbidden, entity.MessageResponse{Message: "Invalid or expired token"})
			return
		}

		c.Set(ctxUserID, identity.UID)
		c.Set(ctxEmail, identity.Email)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// identityFromContext собирает идентичность, положенную Authenticate
func identityFromContext(c *gin.Context) (*entity.Identity, bool) {
	uid := c.GetString(ctxUserID)
	if uid == "" {
		return nil, false
	}
	return &entity.Identity{UID: uid, Email: c.GetString(ctxEmail)}, true
}
