package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func testService() *Service {
	return NewService(Config{Username: "admin", Password: "s3cret", Secret: "signing-key", TokenTTL: time.Hour})
}

func TestLoginAndValidate(t *testing.T) {
	svc := testService()
	token, err := svc.Login("admin", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Username != "admin" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := svc.Login("admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials got %v", err)
	}
	if _, err := svc.Validate(token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken got %v", err)
	}

	other := NewService(Config{Username: "admin", Password: "s3cret", Secret: "another-key"})
	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token signed with a different key must be rejected, got %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	svc := testService()
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }
	token, err := svc.Login("admin", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	svc.now = time.Now
	if _, err := svc.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestDisabledService(t *testing.T) {
	svc := NewService(Config{Username: "admin", Password: "pw"})
	if svc.Enabled() {
		t.Fatalf("service without secret should be disabled")
	}
	if _, err := svc.Login("admin", "pw"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled got %v", err)
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := testService()
	token, err := svc.Login("admin", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	router := gin.New()
	router.GET("/private", svc.Middleware(), func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, claims.Username)
	})

	disabled := gin.New()
	disabled.GET("/private", NewService(Config{}).Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		router *gin.Engine
		target string
		header string
		want   int
	}{
		{"bearer header", router, "/private", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", router, "/private", "bearer " + token, http.StatusOK},
		{"query token", router, "/private?token=" + token, "", http.StatusOK},
		{"missing token", router, "/private", "", http.StatusUnauthorized},
		{"bad token", router, "/private", "Bearer nope", http.StatusUnauthorized},
		{"not configured", disabled, "/private", "Bearer " + token, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			tc.router.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}
