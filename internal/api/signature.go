package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	signatureHeaderClientID  = "X-Client-ID"
	signatureHeaderTimestamp = "X-Timestamp"
	signatureHeaderValue     = "X-Signature"
)

// NewRequestSignatureMiddleware checks an HMAC-SHA256 over method, path,
// query and timestamp. It returns nil when no client has a usable secret,
// leaving the API open.
func NewRequestSignatureMiddleware(clientSecrets map[string]string, maxAge time.Duration) gin.HandlerFunc {
	secretByClient := make(map[string][]byte, len(clientSecrets))
	for clientID, secret := range clientSecrets {
		cleanClientID := strings.TrimSpace(clientID)
		cleanSecret := strings.TrimSpace(secret)
		if cleanClientID == "" || cleanSecret == "" {
			continue
		}
		secretByClient[cleanClientID] = []byte(cleanSecret)
	}
	if len(secretByClient) == 0 {
		return nil
	}
	if maxAge <= 0 {
		maxAge = 5 * time.Minute
	}

	return func(c *gin.Context) {
		r := c.Request
		clientID := strings.TrimSpace(r.Header.Get(signatureHeaderClientID))
		timestamp := strings.TrimSpace(r.Header.Get(signatureHeaderTimestamp))
		signature := strings.TrimSpace(r.Header.Get(signatureHeaderValue))
		signature = strings.TrimPrefix(signature, "sha256=")

		if clientID == "" || timestamp == "" || signature == "" {
			writeJSONError(c, "unauthorized", http.StatusUnauthorized)
			return
		}

		secret, ok := secretByClient[clientID]
		if !ok {
			writeJSONError(c, "unauthorized", http.StatusUnauthorized)
			return
		}

		if !isFreshTimestamp(timestamp, maxAge, time.Now()) {
			writeJSONError(c, "unauthorized", http.StatusUnauthorized)
			return
		}

		signatureBytes, err := hex.DecodeString(signature)
		if err != nil {
			writeJSONError(c, "unauthorized", http.StatusUnauthorized)
			return
		}

		expected := buildSignature(secret, r.Method, r.URL.Path, r.URL.RawQuery, timestamp)
		if !hmac.Equal(signatureBytes, expected) {
			writeJSONError(c, "unauthorized", http.StatusUnauthorized)
			return
		}

		c.Next()
	}
}

func isFreshTimestamp(ts string, maxAge time.Duration, now time.Time) bool {
	epochSeconds, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}
	age := now.Sub(time.Unix(epochSeconds, 0))
	if age < 0 {
		age = -age
	}
	return age <= maxAge
}

func buildSignature(secret []byte, method, path, rawQuery, timestamp string) []byte {
	mac := hmac.New(sha256.New, secret)
	for i, part := range []string{method, path, rawQuery, timestamp} {
		if i > 0 {
			mac.Write([]byte("\n"))
		}
		mac.Write([]byte(part))
	}
	return mac.Sum(nil)
}
