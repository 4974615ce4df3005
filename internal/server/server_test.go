package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"fittlyfans/internal/config"
	"fittlyfans/internal/database"
	"fittlyfans/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "server-test-secret-0123456789abcdef0123"

type testEnv struct {
	server *Server
	app    *fiber.App
	db     *gorm.DB
	cfg    *config.Config
}

// newTestEnv wires a full server over a private sqlite database. rdb may be nil.
func newTestEnv(t *testing.T, rdb *redis.Client) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Env:              "test",
		Port:             "0",
		DBDriver:         "sqlite",
		DBPath:           filepath.Join(dir, "server.db"),
		JWTSecret:        testSecret,
		JWTExpirySeconds: 3600,
		UploadDir:        filepath.Join(dir, "uploads"),
		MaxVideoUploadMB: 1,
		MaxImageUploadMB: 1,
	}
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{Migrate: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	return &testEnv{server: s, app: s.App(), db: db, cfg: cfg}
}

// do sends a JSON request and decodes the response into out when non-nil.
func (e *testEnv) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.send(t, req, out)
}

func (e *testEnv) send(t *testing.T, req *http.Request, out any) int {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// upload posts a single-file multipart form.
func (e *testEnv) upload(t *testing.T, path, token, field, filename string, data []byte, out any) int {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return e.send(t, req, out)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

type account struct {
	Token string
	User  models.User
}

// register creates an account through the API and returns its token.
func (e *testEnv) register(t *testing.T, name string, role models.Role) account {
	t.Helper()
	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	status := e.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name":     name,
		"email":    name + "@example.com",
		"password": "Passw0rd!",
		"role":     role,
	}, &resp)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, resp.Token)
	return account{Token: resp.Token, User: resp.User}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)

	var live map[string]any
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/live", "", nil, &live))
	assert.Equal(t, "up", live["status"])

	var ready struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/ready", "", nil, &ready))
	assert.Equal(t, "healthy", ready.Status)
	assert.Equal(t, "healthy", ready.Checks["database"])
	assert.Equal(t, "disabled", ready.Checks["redis"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodGet, "/api/auth/me", "", nil, nil)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "http_requests_total")
}

func TestReadiness_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	env := newTestEnv(t, rdb)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/ready", "", nil, nil))

	mr.Close()
	var ready struct {
		Checks map[string]string `json:"checks"`
	}
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodGet, "/health/ready", "", nil, &ready))
	assert.Equal(t, "unhealthy", ready.Checks["redis"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t, nil)

	paths := []string{"/api/auth/me", "/api/users", "/api/exercises", "/api/payments/mine", "/api/messages/unread"}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			var body models.ErrorResponse
			assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, p, "", nil, &body))
			assert.Equal(t, models.CodeUnauthorized, body.Code)
		})
	}
}

func TestBadJSONIs400(t *testing.T) {
	env := newTestEnv(t, nil)
	acc := env.register(t, "ana", models.RoleTrainer)

	req := httptest.NewRequest(http.MethodPost, "/api/routines", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+acc.Token)

	var body models.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, env.send(t, req, &body))
	assert.Equal(t, "Invalid request body", body.Error)
}

func TestBadPathIDIs400(t *testing.T) {
	env := newTestEnv(t, nil)
	acc := env.register(t, "ana", models.RoleGeneric)

	var body models.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/users/abc", acc.Token, nil, &body))
	assert.Equal(t, "Invalid ID", body.Error)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/content/user/0", acc.Token, nil, &body))
	assert.Equal(t, "Invalid user ID", body.Error)
}

func TestNotFoundIs404(t *testing.T) {
	env := newTestEnv(t, nil)
	acc := env.register(t, "ana", models.RoleGeneric)

	var body models.ErrorResponse
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/routines/999", acc.Token, nil, &body))
	assert.Equal(t, models.CodeNotFound, body.Code)
}
