package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fittlyfans/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func resolverFor(users map[uint]*Principal) PrincipalResolver {
	return func(_ context.Context, userID uint) (*Principal, error) {
		if p, ok := users[userID]; ok {
			return p, nil
		}
		return nil, models.NewNotFoundError("User", userID)
	}
}

func TestTokenManager_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Unix(1_700_000_000, 0)
	tm := NewTokenManager(testSecret, time.Hour).WithClock(fixedClock(issuedAt))

	token, exp, err := tm.Issue(42)
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(time.Hour), exp)

	tests := []struct {
		name    string
		at      time.Time
		wantErr error
	}{
		{"at issue", issuedAt, nil},
		{"one second before expiry", exp.Add(-time.Second), nil},
		{"one second after expiry", exp.Add(time.Second), ErrTokenExpired},
		{"a day later", exp.Add(24 * time.Hour), ErrTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := tm.WithClock(fixedClock(tt.at)).Parse(token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(42), userID)
		})
	}
}

func TestTokenManager_RejectsTamperedTokens(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	token, _, err := tm.Issue(7)
	require.NoError(t, err)

	flipped := []byte(token)
	sig := strings.LastIndex(token, ".") + 1
	if flipped[sig] == 'A' {
		flipped[sig] = 'B'
	} else {
		flipped[sig] = 'A'
	}

	_, err = tm.Parse(string(flipped))
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = NewTokenManager("another-secret-another-secret-1234", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = tm.Parse("")
	assert.ErrorIs(t, err, ErrTokenMissing)
}

func TestTokenManager_RejectsForeignClaims(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	sign := func(claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return s
	}
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"wrong issuer", jwt.MapClaims{"sub": "1", "iss": "someone-else", "aud": TokenAudience, "exp": exp}},
		{"wrong audience", jwt.MapClaims{"sub": "1", "iss": TokenIssuer, "aud": "mobile", "exp": exp}},
		{"no expiry", jwt.MapClaims{"sub": "1", "iss": TokenIssuer, "aud": TokenAudience}},
		{"non numeric subject", jwt.MapClaims{"sub": "ana", "iss": TokenIssuer, "aud": TokenAudience, "exp": exp}},
		{"zero subject", jwt.MapClaims{"sub": "0", "iss": TokenIssuer, "aud": TokenAudience, "exp": exp}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tm.Parse(sign(tt.claims))
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer abc"))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken("Bearer"))
	assert.Equal(t, "", BearerToken(""))
}

func TestAuthenticate(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	users := map[uint]*Principal{
		123: {UserID: 123, Name: "Ana", Email: "ana@example.com", Role: models.RoleTrainer},
	}

	app := fiber.New()
	app.Get("/test", Authenticate(tm, resolverFor(users)), func(c *fiber.Ctx) error {
		p := CurrentPrincipal(c)
		fromCtx := PrincipalFrom(c.UserContext())
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"userID":  p.UserID,
			"role":    p.Role,
			"sameCtx": fromCtx == p,
		})
	})

	valid, _, err := tm.Issue(123)
	require.NoError(t, err)
	unknown, _, err := tm.Issue(999)
	require.NoError(t, err)
	expired, _, err := tm.WithClock(fixedClock(time.Now().Add(-2 * time.Hour))).Issue(123)
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedError  string
	}{
		{"Happy Path", "Bearer " + valid, http.StatusOK, ""},
		{"Missing Header", "", http.StatusUnauthorized, "token not provided"},
		{"Basic Scheme", "Basic " + valid, http.StatusUnauthorized, "token not provided"},
		{"Malformed Token", "Bearer not-a-jwt", http.StatusUnauthorized, "invalid token"},
		{"Expired Token", "Bearer " + expired, http.StatusUnauthorized, "token expired"},
		{"Unknown User", "Bearer " + unknown, http.StatusUnauthorized, "user not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
				assert.Equal(t, models.CodeUnauthorized, body["code"])
				return
			}
			assert.EqualValues(t, 123, body["userID"])
			assert.Equal(t, "trainer", body["role"])
			assert.Equal(t, true, body["sameCtx"])
		})
	}
}

func TestAuthenticate_ResolverFailureIs500(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	failing := func(context.Context, uint) (*Principal, error) {
		return nil, errors.New("db down")
	}

	app := fiber.New()
	app.Get("/test", Authenticate(tm, failing), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	token, _, err := tm.Issue(1)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotContains(t, body.Error, "db down")
}

func TestAuthenticate_WebsocketQueryToken(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	users := map[uint]*Principal{5: {UserID: 5, Role: models.RoleSubscriber}}

	app := fiber.New()
	app.Get("/ws", Authenticate(tm, resolverFor(users)), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	token, _, err := tm.Issue(5)
	require.NoError(t, err)

	plain := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	resp, err := app.Test(plain)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "query token only honoured on upgrade")

	upgrade := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	upgrade.Header.Set("Upgrade", "websocket")
	upgrade.Header.Set("Connection", "Upgrade")
	resp, err = app.Test(upgrade)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestPrincipal_Permissions(t *testing.T) {
	admin := &Principal{UserID: 1, Role: models.RoleAdmin}
	trainer := &Principal{UserID: 2, Role: models.RoleTrainer}
	var nobody *Principal

	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.CanActFor(99))
	assert.False(t, trainer.IsAdmin())
	assert.True(t, trainer.CanActFor(2))
	assert.False(t, trainer.CanActFor(3))
	assert.True(t, trainer.HasRole(models.RoleSubscriber, models.RoleTrainer))
	assert.False(t, trainer.HasRole(models.RoleAdmin))
	assert.False(t, nobody.CanActFor(1))
	assert.False(t, nobody.HasRole(models.RoleGeneric))
}
