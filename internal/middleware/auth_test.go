package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// stubBlacklist is an in-memory cache.TokenBlacklist for tests.
type stubBlacklist struct {
	revoked map[string]bool
}

func (b *stubBlacklist) Invalidate(ctx context.Context, tokenID string, ttl time.Duration) error {
	if b.revoked == nil {
		b.revoked = map[string]bool{}
	}
	b.revoked[tokenID] = true
	return nil
}

func (b *stubBlacklist) IsInvalidated(ctx context.Context, tokenID string) (bool, error) {
	return b.revoked[tokenID], nil
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func customerClaims(subject uuid.UUID) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  subject.String(),
		"role": "customer",
		"jti":  uuid.NewString(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

func TestBearerAuth_ValidToken(t *testing.T) {
	subject := uuid.New()
	claims := customerClaims(subject)
	token := signToken(t, claims)

	var got Principal
	handler := BearerAuth(testSecret, &stubBlacklist{}, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		require.True(t, ok)
		got = p
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/customers/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, subject, got.ID)
	assert.Equal(t, RoleCustomer, got.Role)
	assert.Equal(t, claims["jti"], got.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), got.ExpiresAt, 5*time.Second)
}

func TestBearerAuth_MissingToken(t *testing.T) {
	handler := BearerAuth(testSecret, &stubBlacklist{}, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/customers/cart", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_ExpiredToken(t *testing.T) {
	claims := customerClaims(uuid.New())
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	token := signToken(t, claims)

	handler := BearerAuth(testSecret, &stubBlacklist{}, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/customers/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_WrongSecret(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, customerClaims(uuid.New()))
	signed, err := token.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	handler := BearerAuth(testSecret, &stubBlacklist{}, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/customers/cart", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_RevokedToken(t *testing.T) {
	claims := customerClaims(uuid.New())
	jti := claims["jti"].(string)
	token := signToken(t, claims)

	blacklist := &stubBlacklist{}
	require.NoError(t, blacklist.Invalidate(context.Background(), jti, time.Hour))

	handler := BearerAuth(testSecret, blacklist, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/customers/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")
}

func TestBearerAuth_InvalidRole(t *testing.T) {
	claims := customerClaims(uuid.New())
	claims["role"] = "admin"
	token := signToken(t, claims)

	handler := BearerAuth(testSecret, &stubBlacklist{}, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/customers/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_OpenPaths(t *testing.T) {
	for _, path := range []string{"/health", "/payments/confirm"} {
		t.Run(path, func(t *testing.T) {
			handlerCalled := false
			handler := BearerAuth(testSecret, &stubBlacklist{}, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, path, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.True(t, handlerCalled)
		})
	}
}
