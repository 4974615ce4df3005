// Package middleware provides request context, logging, authentication,
// rate limiting, tracing and metrics middleware for the application.
package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"fittlyfans/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenIssuer   = "fittlyfans-api"
	TokenAudience = "fittlyfans-client"

	principalLocal = "principal"
)

var (
	ErrTokenMissing = errors.New("token not provided")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Principal is the authenticated caller attached to every protected request.
type Principal struct {
	UserID uint
	Name   string
	Email  string
	Role   models.Role
}

// IsAdmin reports whether the caller holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == models.RoleAdmin
}

// HasRole reports whether the caller holds any of the given roles.
func (p *Principal) HasRole(roles ...models.Role) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// CanActFor reports whether the caller is the given user or an admin.
func (p *Principal) CanActFor(userID uint) bool {
	return p != nil && (p.UserID == userID || p.IsAdmin())
}

// TokenManager issues and verifies HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a manager signing with secret; tokens live for ttl.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of the manager that reads time from now.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	cp := *m
	cp.now = now
	return &cp
}

// TTL returns the token lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for userID and returns it with its expiry.
func (m *TokenManager) Issue(userID uint) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": TokenIssuer,
		"aud": TokenAudience,
		"exp": exp.Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse verifies signature, issuer, audience and expiry and returns the subject user id.
func (m *TokenManager) Parse(tokenString string) (uint, error) {
	if tokenString == "" {
		return 0, ErrTokenMissing
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}
	if !token.Valid {
		return 0, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrTokenInvalid
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, ErrTokenInvalid
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return 0, ErrTokenInvalid
	}
	return uint(userID), nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// PrincipalResolver loads the principal for a verified token subject.
// It returns a NOT_FOUND AppError when the user no longer exists.
type PrincipalResolver func(ctx context.Context, userID uint) (*Principal, error)

// Authenticate verifies the bearer token, resolves the user and attaches the
// Principal to both the fiber locals and the user context.
func Authenticate(tokens *TokenManager, resolve PrincipalResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := BearerToken(c.Get(fiber.HeaderAuthorization))
		if tokenString == "" && websocketUpgrade(c) {
			// Browsers cannot set headers on websocket handshakes.
			tokenString = c.Query("token")
		}

		userID, err := tokens.Parse(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(err.Error()))
		}

		principal, err := resolve(c.UserContext(), userID)
		if err != nil {
			var appErr *models.AppError
			if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("user not found"))
			}
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}

		c.Locals("userID", principal.UserID)
		c.Locals(principalLocal, principal)
		ctx := context.WithValue(c.UserContext(), UserIDKey, principal.UserID)
		ctx = context.WithValue(ctx, principalKey, principal)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

func websocketUpgrade(c *fiber.Ctx) bool {
	return strings.EqualFold(c.Get(fiber.HeaderUpgrade), "websocket")
}

// CurrentPrincipal returns the principal attached by Authenticate, or nil.
func CurrentPrincipal(c *fiber.Ctx) *Principal {
	p, _ := c.Locals(principalLocal).(*Principal)
	return p
}

// WithPrincipal returns a fiber handler that attaches p; used by tests and internal tooling.
func WithPrincipal(p *Principal) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", p.UserID)
		c.Locals(principalLocal, p)
		c.SetUserContext(context.WithValue(c.UserContext(), principalKey, p))
		return c.Next()
	}
}

// PrincipalFrom returns the principal stored in ctx, or nil.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}
