package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mvp-tweet/internal/config"
	"mvp-tweet/internal/database"
	"mvp-tweet/internal/middleware"
	"mvp-tweet/internal/presence"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "router_test_secret_key_0123456789abcdef"

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	dir := t.TempDir()

	public := filepath.Join(dir, "public")
	if err := os.MkdirAll(filepath.Join(public, "static"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for name, body := range map[string]string{
		"index.html":     "<title>login</title>",
		"dashboard.html": "<title>feed</title>",
		"static/app.js":  "console.log('ok')",
	} {
		if err := os.WriteFile(filepath.Join(public, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: gin.TestMode, PublicDir: public},
		Database: config.DatabaseConfig{Path: filepath.Join(dir, "tweet.db")},
		JWT:      config.JWTConfig{Secret: testSecret, Issuer: "mvp-tweet", ExpireHours: 1},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		t.Fatalf("database.Init: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	return SetupRouter(cfg, database.NewStore(db), presence.New())
}

func call(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestEndToEndFlow(t *testing.T) {
	r := setupRouter(t)

	w := call(t, r, http.MethodPost, "/api/register", "", map[string]string{
		"username": "alice", "password": "pw1", "email": "a@x.com",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status %d body %s", w.Code, w.Body.String())
	}

	w = call(t, r, http.MethodPost, "/api/login", "", map[string]string{
		"username": "alice", "password": "pw1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", w.Code, w.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil || login.Token == "" {
		t.Fatalf("login body %s: %v", w.Body.String(), err)
	}

	w = call(t, r, http.MethodPost, "/api/posts", login.Token, map[string]string{"content": "hi"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create post: status %d body %s", w.Code, w.Body.String())
	}

	w = call(t, r, http.MethodGet, "/api/posts", "", nil)
	var feed []struct {
		ID        uint   `json:"id"`
		Username  string `json:"username"`
		Content   string `json:"content"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &feed); err != nil {
		t.Fatalf("feed body %s: %v", w.Body.String(), err)
	}
	if len(feed) != 1 || feed[0].Username != "alice" || feed[0].Content != "hi" || feed[0].Timestamp == "" {
		t.Fatalf("feed = %+v", feed)
	}

	w = call(t, r, http.MethodGet, "/api/active-users", "", nil)
	if strings.TrimSpace(w.Body.String()) != `["alice"]` {
		t.Fatalf("active users = %s", w.Body.String())
	}

	w = call(t, r, http.MethodPost, "/api/logout", "", map[string]string{"username": "alice"})
	if w.Code != http.StatusOK {
		t.Fatalf("logout: status %d", w.Code)
	}
	w = call(t, r, http.MethodGet, "/api/active-users", "", nil)
	if strings.TrimSpace(w.Body.String()) != `[]` {
		t.Fatalf("active users after logout = %s", w.Body.String())
	}
}

func TestProtectedRoutes(t *testing.T) {
	r := setupRouter(t)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer not.a.jwt", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(`{"content":"hi"}`))
		req.Header.Set("Content-Type", "application/json")
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Errorf("%s: status %d, want %d", tc.name, w.Code, tc.want)
		}
	}
}

func TestStaticAndHealth(t *testing.T) {
	r := setupRouter(t)

	for path, want := range map[string]string{
		"/":              "login",
		"/dashboard":     "feed",
		"/static/app.js": "console.log",
	} {
		w := call(t, r, http.MethodGet, path, "", nil)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), want) {
			t.Errorf("GET %s: status %d body %q", path, w.Code, w.Body.String())
		}
	}

	w := call(t, r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("health: status %d body %s", w.Code, w.Body.String())
	}
	if w.Header().Get(middleware.RequestIDHeaderName) == "" {
		t.Error("responses should carry a request id")
	}
}

func TestUnknownAPIRouteIsJSON(t *testing.T) {
	r := setupRouter(t)

	w := call(t, r, http.MethodGet, "/api/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		t.Errorf("content type = %q", w.Header().Get("Content-Type"))
	}
}
