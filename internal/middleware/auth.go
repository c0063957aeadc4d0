// Package middleware provides the HTTP middleware of the highlights API:
// authentication, rate limiting, request logging, metrics and tracing.
package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"blizz/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Token issuer and audience written into and required from every JWT.
const (
	TokenIssuer   = "highlights-api"
	TokenAudience = "highlights-client"
)

var (
	errMissingToken = errors.New("authorization required")
	errInvalidToken = errors.New("invalid or expired token")
	errRevokedToken = errors.New("token has been revoked")
)

// Authenticator issues and verifies HS256 access tokens.
type Authenticator struct {
	secret []byte
	rdb    *redis.Client
}

// NewAuthenticator returns an Authenticator. rdb is optional and only used
// for the revocation blacklist.
func NewAuthenticator(secret string, rdb *redis.Client) *Authenticator {
	return &Authenticator{secret: []byte(secret), rdb: rdb}
}

// IssueToken signs an access token for userID.
func (a *Authenticator) IssueToken(userID uint, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": TokenIssuer,
		"aud": TokenAudience,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
		"jti": uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseToken validates tokenString and returns its subject.
func (a *Authenticator) ParseToken(ctx context.Context, tokenString string) (uint, error) {
	if tokenString == "" {
		return 0, errMissingToken
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return a.secret, nil
	}, jwt.WithIssuer(TokenIssuer), jwt.WithAudience(TokenAudience))
	if err != nil || !token.Valid {
		return 0, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, errInvalidToken
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return 0, errInvalidToken
	}

	if jti, ok := claims["jti"].(string); ok && jti != "" && a.rdb != nil {
		revoked, err := a.rdb.Exists(ctx, "blacklist:"+jti).Result()
		if err == nil && revoked > 0 {
			return 0, errRevokedToken
		}
	}

	return uint(userID), nil
}

// Required rejects requests without a valid bearer token with 401 and stores
// the caller in c.Locals("userID") otherwise.
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := a.ParseToken(c.UserContext(), BearerToken(c))
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(err.Error()))
		}
		setUser(c, userID)
		return c.Next()
	}
}

// Optional identifies the caller when a valid token is present and lets
// anonymous requests through untouched.
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID, err := a.ParseToken(c.UserContext(), BearerToken(c)); err == nil {
			setUser(c, userID)
		}
		return c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) string {
	parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func setUser(c *fiber.Ctx, userID uint) {
	c.Locals("userID", userID)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}
