package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func signedRouter(t *testing.T, secrets map[string]string) (*gin.Engine, *bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	called := false
	r.GET("/v1/state", NewRequestSignatureMiddleware(secrets, 5*time.Minute), func(c *gin.Context) {
		called = true
		c.Status(http.StatusNoContent)
	})
	return r, &called
}

func TestRequestSignatureMiddleware_AllowsValidSignedRequest(t *testing.T) {
	clientID := "ios-app"
	secret := "top-secret"
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	req := httptest.NewRequest(http.MethodGet, "/v1/state?tab=days", nil)
	req.Header.Set("X-Client-ID", clientID)
	req.Header.Set("X-Timestamp", ts)
	req.Header.Set("X-Signature", "sha256="+signForTest(secret, req.Method, req.URL.Path, req.URL.RawQuery, ts))

	r, called := signedRouter(t, map[string]string{clientID: secret})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if !*called {
		t.Fatalf("expected next handler to be called")
	}
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rr.Code)
	}
}

func TestRequestSignatureMiddleware_Rejects(t *testing.T) {
	secrets := map[string]string{"ios-app": "top-secret"}
	now := time.Now()

	tests := []struct {
		name     string
		clientID string
		secret   string
		ts       time.Time
		unsigned bool
	}{
		{name: "unsigned", unsigned: true},
		{name: "unknown client", clientID: "unknown", secret: "wrong-secret", ts: now},
		{name: "wrong secret", clientID: "ios-app", secret: "wrong-secret", ts: now},
		{name: "stale timestamp", clientID: "ios-app", secret: "top-secret", ts: now.Add(-10 * time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/state", nil)
			if !tt.unsigned {
				ts := strconv.FormatInt(tt.ts.Unix(), 10)
				req.Header.Set("X-Client-ID", tt.clientID)
				req.Header.Set("X-Timestamp", ts)
				req.Header.Set("X-Signature", signForTest(tt.secret, req.Method, req.URL.Path, req.URL.RawQuery, ts))
			}

			r, called := signedRouter(t, secrets)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if *called {
				t.Error("next handler must not run")
			}
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
			}
		})
	}
}

func TestRequestSignatureMiddleware_DisabledWithoutSecrets(t *testing.T) {
	if mw := NewRequestSignatureMiddleware(nil, time.Minute); mw != nil {
		t.Error("expected nil middleware with no clients")
	}
	if mw := NewRequestSignatureMiddleware(map[string]string{" ": "x", "a": " "}, time.Minute); mw != nil {
		t.Error("expected blank entries to be ignored")
	}
}

func signForTest(secret, method, path, rawQuery, ts string) string {
	msg := method + "\n" + path + "\n" + rawQuery + "\n" + ts
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}
