package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/circlekitchen/backend/internal/logger"
	"github.com/pageza/circlekitchen/backend/internal/mocks"
	"github.com/pageza/circlekitchen/backend/internal/types"
)

func authRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/", mw, func(c *gin.Context) {
		c.String(http.StatusOK, "user=%s", UserID(c))
	})
	return r
}

func request(r http.Handler, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	validator := new(mocks.MockAuthService)
	validator.On("ValidateToken", "good").Return(&types.TokenClaims{UserID: "user-1"}, nil)
	validator.On("ValidateToken", mock.Anything).Return(nil, errors.New("expired"))
	r := authRouter(AuthMiddleware(validator))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid token", "Bearer good", http.StatusOK, "user=user-1"},
		{"missing header", "", http.StatusUnauthorized, "missing authorization header"},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, "invalid authorization header format"},
		{"empty token", "Bearer ", http.StatusUnauthorized, "invalid authorization header format"},
		{"rejected token", "Bearer bad", http.StatusUnauthorized, "invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := map[string]string{}
			if tt.header != "" {
				header["Authorization"] = tt.header
			}
			w := request(r, header)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	validator := new(mocks.MockAuthService)
	validator.On("ValidateToken", "good").Return(&types.TokenClaims{UserID: "user-1"}, nil)
	validator.On("ValidateToken", mock.Anything).Return(nil, errors.New("expired"))
	r := authRouter(OptionalAuth(validator))

	w := request(r, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user=", w.Body.String())

	w = request(r, map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, "user=user-1", w.Body.String())

	w = request(r, map[string]string{"Authorization": "Bearer bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminToken(t *testing.T) {
	t.Run("should require the configured token", func(t *testing.T) {
		r := authRouter(AdminToken("s3cret"))

		assert.Equal(t, http.StatusOK, request(r, map[string]string{AdminTokenHeader: "s3cret"}).Code)
		assert.Equal(t, http.StatusUnauthorized, request(r, map[string]string{AdminTokenHeader: "guess"}).Code)
		assert.Equal(t, http.StatusUnauthorized, request(r, nil).Code)
	})

	t.Run("should disable admin routes without a token", func(t *testing.T) {
		r := authRouter(AdminToken(""))
		assert.Equal(t, http.StatusNotFound, request(r, map[string]string{AdminTokenHeader: ""}).Code)
	})
}

func TestRequestLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(logger.NewForTests()))
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = logger.RequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := request(r, map[string]string{RequestIDHeader: "abc"})
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc", seen)

	w = request(r, nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}
