package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmledger/internal/domain/models"
)

const principalKey = "principal"

// Claims is the bearer token payload understood by the API.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 bearer tokens and exposes the caller as a Principal.
type Authenticator struct {
	secret []byte
	issuer string
	logger *zap.Logger
}

// NewAuthenticator constructs the middleware factory.
func NewAuthenticator(secret, issuer string, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{secret: []byte(secret), issuer: issuer, logger: logger}
}

// Require rejects requests without a valid bearer token.
func (a *Authenticator) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := a.authenticate(c.GetHeader("Authorization"))
		if err != nil {
			a.logger.Debug("request rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "authentication required",
			})
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

func (a *Authenticator) authenticate(header string) (models.Principal, error) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
		return models.Principal{}, errors.New("missing bearer token")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return models.Principal{}, fmt.Errorf("parse token: %w", err)
	}
	if claims.Subject == "" {
		return models.Principal{}, errors.New("token has no subject")
	}

	role := models.RoleOperator
	if strings.EqualFold(claims.Role, string(models.RoleAdmin)) {
		role = models.RoleAdmin
	}

	return models.Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   role,
	}, nil
}

// PrincipalFrom returns the caller stored by Require.
func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	principal, ok := value.(models.Principal)
	return principal, ok
}

// SignToken issues a token for principal. It is used by tooling and tests.
func SignToken(secret, issuer string, principal models.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: principal.Email,
		Name:  principal.Name,
		Role:  string(principal.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
