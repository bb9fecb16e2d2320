// Package auth issues and checks the bearer tokens that protect the lead admin routes.
package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrDisabled           = errors.New("admin access is not configured")
)

const (
	issuer          = "vision-fit-guide"
	DefaultTokenTTL = 12 * time.Hour
	claimsKey       = "admin_claims"
)

// Config holds the admin credentials and signing secret.
type Config struct {
	Username string
	Password string
	Secret   string
	TokenTTL time.Duration
}

// AdminClaims identifies the signed-in administrator.
type AdminClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service validates admin credentials and HS256 tokens.
type Service struct {
	username string
	password string
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewService builds a Service. Without a secret, username and password it stays
// disabled and every call returns ErrDisabled.
func NewService(cfg Config) *Service {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Service{
		username: strings.TrimSpace(cfg.Username),
		password: cfg.Password,
		secret:   []byte(cfg.Secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Enabled reports whether admin routes can be used.
func (s *Service) Enabled() bool {
	return s != nil && len(s.secret) > 0 && s.username != "" && s.password != ""
}

// Login checks credentials and returns a signed token.
func (s *Service) Login(username, password string) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(s.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	if !userOK || !passOK {
		return "", ErrInvalidCredentials
	}
	now := s.now()
	claims := &AdminClaims{
		Username: s.username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   s.username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate parses an admin token and returns its claims.
func (s *Service) Validate(tokenString string) (*AdminClaims, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Middleware rejects requests without a valid admin token. The token is read from the
// Authorization header, or from the token query parameter for websocket upgrades.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.Enabled() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": ErrDisabled.Error()})
			return
		}
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = strings.TrimSpace(c.Query("token"))
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims, err := s.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by Middleware.
func ClaimsFrom(c *gin.Context) (*AdminClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*AdminClaims)
	return claims, ok
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
