package identity

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"coursehub/course-service/internal/app/courses/entity"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// Публичные сертификаты, которыми Firebase подписывает ID токены
	GoogleCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

	issuerPrefix       = "https://securetoken.google.com/"
	defaultCertsMaxAge = time.Hour
)

// FirebaseClaims - claims ID токена Firebase Authentication
type FirebaseClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// FirebaseVerifier проверяет ID токены Firebase без Admin SDK:
// подпись RS256 по ключу из kid, aud = projectID, iss = securetoken.google.com/projectID
type FirebaseVerifier struct {
	projectID string
	certsURL  string
	client    *resty.Client
	now       func() time.Time

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time
}

type FirebaseOption func(*FirebaseVerifier)

// WithCertsURL подменяет адрес сертификатов (тесты, эмулятор)
func WithCertsURL(url string) FirebaseOption {
	return func(v *FirebaseVerifier) {
		v.certsURL = url
	}
}

func WithClock(now func() time.Time) FirebaseOption {
	return func(v *FirebaseVerifier) {
		v.now = now
	}
}

func NewFirebaseVerifier(projectID string, opts ...FirebaseOption) *FirebaseVerifier {
	v := &FirebaseVerifier{
		projectID: projectID,
		certsURL:  GoogleCertsURL,
		client:    resty.New().SetTimeout(10 * time.Second),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ProjectIDFromCredentials читает project_id из service account JSON
func ProjectIDFromCredentials(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read credentials file: %w", err)
	}

	var account struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(data, &account); err != nil {
		return "", fmt.Errorf("failed to parse credentials file: %w", err)
	}
	if account.ProjectID == "" {
		return "", errors.New("credentials file has no project_id")
	}

	return account.ProjectID, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, tokenString string) (*entity.Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&FirebaseClaims{},
		func(token *jwt.Token) (interface{}, error) {
			kid, _ := token.Header["kid"].(string)
			if kid == "" {
				return nil, errors.New("token has no kid header")
			}
			return v.publicKey(ctx, kid)
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer(issuerPrefix+v.projectID),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*FirebaseClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &entity.Identity{UID: claims.Subject, Email: claims.Email}, nil
}

// publicKey возвращает ключ по kid, при необходимости обновляя набор сертификатов
func (v *FirebaseVerifier) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	fresh := v.now().Before(v.expiresAt)
	v.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}

	if err := v.refreshKeys(ctx); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	if key, ok := v.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("unknown key id %q", kid)
}

func (v *FirebaseVerifier) refreshKeys(ctx context.Context) error {
	resp, err := v.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(v.certsURL)
	if err != nil {
		return fmt.Errorf("failed to fetch public certificates: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("unexpected status fetching certificates: %d", resp.StatusCode())
	}

	var certs map[string]string
	if err := json.Unmarshal(resp.Body(), &certs); err != nil {
		return fmt.Errorf("failed to decode certificates: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pemCert := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemCert))
		if err != nil {
			return fmt.Errorf("failed to parse certificate %q: %w", kid, err)
		}
		keys[kid] = key
	}

	v.mu.Lock()
	v.keys = keys
	v.expiresAt = v.now().Add(cacheMaxAge(resp.Header().Get("Cache-Control")))
	v.mu.Unlock()

	return nil
}

// cacheMaxAge достает max-age из Cache-Control, Google ротирует ключи по нему
func cacheMaxAge(header string) time.Duration {
	for _, directive := range strings.Split(header, ",") {
		directive = strings.TrimSpace(directive)
		if !strings.HasPrefix(directive, "max-age=") {
			continue
		}
		seconds, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age="))
		if err != nil || seconds <= 0 {
			break
		}
		return time.Duration(seconds) * time.Second
	}
	return defaultCertsMaxAge
}
