//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-notes-api/internal/config"
	"go-notes-api/internal/database"
	"go-notes-api/internal/handler"
	"go-notes-api/internal/middleware"
	"go-notes-api/internal/repository"
	"go-notes-api/internal/router"
	"go-notes-api/internal/service"
)

// openTestDB connects to DATABASE_URL, applies migrations and empties both
// tables. Tests in this package share one database and must not run in
// parallel.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, databaseURL, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx))
	_, err = db.Pool.Exec(ctx, "TRUNCATE notes, users CASCADE")
	require.NoError(t, err)

	return db
}

func newTestServer(t *testing.T) (*httptest.Server, *database.DB) {
	t.Helper()

	db := openTestDB(t)
	cfg := &config.Config{
		RequestTimeout:     10 * time.Second,
		MaxRequestBodySize: 1 << 20,
		JWTSecret:          "integration-secret-integration-secret",
		JWTIssuer:          "go-notes-api",
		JWTAccessTTL:       time.Hour,
		BcryptCost:         bcrypt.MinCost,
		CORSOrigins:        []string{"http://localhost:5173"},
		RateLimitRPM:       1000,
		AuthRateLimitRPM:   1000,
	}

	authService, err := service.NewAuthService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAccessTTL, cfg.BcryptCost, repository.NewUserRepository(db.Pool))
	require.NoError(t, err)

	server := httptest.NewServer(router.New(cfg, middleware.NewAuthMiddleware(authService), router.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		Note:   handler.NewNoteHandler(service.NewNoteService(repository.NewNoteRepository(db.Pool))),
		Health: handler.NewHealthHandler(db),
	}))
	t.Cleanup(server.Close)

	return server, db
}

func countUsers(t *testing.T, db *database.DB) int {
	t.Helper()

	count, err := repository.NewUserRepository(db.Pool).Count(context.Background())
	require.NoError(t, err)
	return count
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doJSON(t *testing.T, method string, url string, payload any, accessToken string) (int, envelope) {
	t.Helper()

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp.StatusCode, parsed
}

func registerAndLogin(t *testing.T, baseURL string, username string, email string, password string) string {
	t.Helper()

	status, _ := doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/register", map[string]string{
		"username": username, "email": email, "password": password,
	}, "")
	require.Equal(t, http.StatusCreated, status)

	status, parsed := doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/login", map[string]string{
		"email": email, "password": password,
	}, "")
	require.Equal(t, http.StatusOK, status)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(parsed.Data, &login))
	require.NotEmpty(t, login.Token)
	return login.Token
}
