package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newRequestIDRouter(seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		*seen = RequestIDFromContext(c)
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	r := newRequestIDRouter(&seen)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ping", nil))

	header := resp.Header().Get(RequestIDHeaderName)
	if _, err := uuid.Parse(header); err != nil {
		t.Fatalf("generated id %q is not a uuid: %v", header, err)
	}
	if seen != header {
		t.Errorf("context id %q != header id %q", seen, header)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	var seen string
	r := newRequestIDRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeaderName, "  client-id-1 ")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if got := resp.Header().Get(RequestIDHeaderName); got != "client-id-1" {
		t.Errorf("header = %q, want client-id-1", got)
	}
	if seen != "client-id-1" {
		t.Errorf("context id = %q", seen)
	}
}

func TestNormalizeRequestIDTruncates(t *testing.T) {
	if got := normalizeRequestID(strings.Repeat("x", 300)); len(got) != 128 {
		t.Errorf("len = %d, want 128", len(got))
	}
}
