package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"mvp-tweet/internal/config"
	"mvp-tweet/internal/database"
	"mvp-tweet/internal/middleware"
	"mvp-tweet/internal/presence"
	"mvp-tweet/internal/util"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testJWTSecret = "mvp_tweet_test_jwt_secret_key_1234567890"
	testIssuer    = "mvp-tweet"
)

type testEnv struct {
	store   *database.Store
	tracker *presence.Tracker
	router  *gin.Engine
}

// setupTestStore opens a migrated SQLite file under t.TempDir.
func setupTestStore(t *testing.T) *database.Store {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "handler.db")})
	if err != nil {
		t.Fatalf("database.Init: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return database.NewStore(db)
}

// setupMockStore puts gorm on top of sqlmock so store failures can be forced.
func setupMockStore(t *testing.T) (*database.Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	mock.MatchExpectationsInOrder(false)
	// the sqlite dialector probes the server version while opening
	mock.ExpectQuery("select sqlite_version").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("3.45.0"))

	db, err := gorm.Open(sqlite.Dialector{DriverName: sqlite.DriverName, Conn: sqlDB}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return database.NewStore(db), mock
}

// newTestEnv wires the handlers the same way the router does.
func newTestEnv(t *testing.T, store *database.Store) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tracker := presence.New()
	r := gin.New()
	api := r.Group("/api")

	auth := NewAuthHandler(store, tracker, testJWTSecret, testIssuer, 1, bcrypt.MinCost)
	api.POST("/register", auth.Register)
	api.POST("/login", auth.Login)
	api.POST("/logout", auth.Logout)

	posts := NewPostHandler(store)
	api.GET("/posts", posts.ListPosts)

	users := NewUserHandler(store, tracker)
	api.GET("/users", users.ListUsers)
	api.GET("/active-users", users.ListActiveUsers)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(testJWTSecret, testIssuer))
	protected.POST("/posts", posts.CreatePost)
	protected.GET("/me", GetMe)

	export := NewExportHandler(store)
	export.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	protected.GET("/export/csv", export.ExportCSV)
	protected.GET("/export/xlsx", export.ExportXLSX)

	return &testEnv{store: store, tracker: tracker, router: r}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json.Marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

func (e *testEnv) register(t *testing.T, username, password, email string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, http.MethodPost, "/api/register", map[string]string{
		"username": username,
		"password": password,
		"email":    email,
	}, "")
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	mustStatus(t, resp.Code, http.StatusOK)
	token, _ := decodeObject(t, resp)["token"].(string)
	if token == "" {
		t.Fatalf("login returned no token: %s", resp.Body.String())
	}
	return token
}

func decodeObject(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("json.Unmarshal(%s): %v", resp.Body.String(), err)
	}
	return out
}

func mustStatus(t *testing.T, actual int, expected int) {
	t.Helper()
	if actual != expected {
		t.Fatalf("expected status %d, got %d", expected, actual)
	}
}

func mustMessage(t *testing.T, resp *httptest.ResponseRecorder, want string) {
	t.Helper()
	if got, _ := decodeObject(t, resp)["message"].(string); got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
}

func tokenFor(t *testing.T, userID uint, username string) string {
	t.Helper()
	token, err := util.GenerateToken(testJWTSecret, testIssuer, userID, username, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}
