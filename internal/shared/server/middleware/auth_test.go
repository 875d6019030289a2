package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"applygen-backend/internal/shared/auth"
)

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth("dev"))
	router.OPTIONS("/api/v1/batches", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/batches", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := "test-secret"
	token, err := auth.SignJWT([]byte(secret), auth.Claims{Email: "a@example.com", RegisteredClaims: jwt.RegisteredClaims{Subject: "user-7"}})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	router := gin.New()
	router.Use(Auth(secret))
	router.GET("/api/v1/batches", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": UserIDFromContext(c), "guest": IsGuest(c), "email": UserEmailFromContext(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/batches", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); !strings.Contains(body, `"user":"user-7"`) || !strings.Contains(body, `"guest":false`) {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestAuthRejectsBadTokenAndMissingIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth("test-secret", "/api/v1/health"))
	router.GET("/api/v1/batches", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/v1/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		path   string
		header string
		value  string
		want   int
	}{
		{"invalid bearer", "/api/v1/batches", "Authorization", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "/api/v1/batches", "Authorization", "Basic abc", http.StatusUnauthorized},
		{"no identity", "/api/v1/batches", "", "", http.StatusUnauthorized},
		{"guest", "/api/v1/batches", "X-Guest-Id", "g1", http.StatusOK},
		{"public path", "/api/v1/health", "", "", http.StatusOK},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.Code)
			}
		})
	}
}
