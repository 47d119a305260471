package identity

import (
	"context"
	"errors"
	"fmt"

	"coursehub/course-service/internal/app/courses/entity"

	"github.com/golang-jwt/jwt/v5"
)

// HMACClaims - claims HS256 токена для локальной разработки
// uid берется из user_id, а при его отсутствии из sub
type HMACClaims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// HMACVerifier проверяет HS256 токены с общим секретом
type HMACVerifier struct {
	secretKey []byte
}

func NewHMACVerifier(secretKey string) *HMACVerifier {
	return &HMACVerifier{secretKey: []byte(secretKey)}
}

func (v *HMACVerifier) Verify(_ context.Context, tokenString string) (*entity.Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&HMACClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.secretKey, nil
		},
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*HMACClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	uid := claims.UserID
	if uid == "" {
		uid = claims.Subject
	}
	if uid == "" {
		return nil, ErrInvalidToken
	}

	return &entity.Identity{UID: uid, Email: claims.Email}, nil
}

// Sign выпускает HS256 токен тем же секретом (dev-утилиты и тесты)
func (v *HMACVerifier) Sign(claims HMACClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secretKey)
}
