package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"partyshare/party-api/config"
	"partyshare/party-api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens() *security.TokenService {
	return security.NewTokenService(&config.JWT{
		AccessSecret:      "access-secret",
		RefreshSecret:     "refresh-secret",
		AccessExpiration:  time.Minute,
		RefreshExpiration: time.Hour,
	})
}

func protected(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(NewRequestIDMiddleware())

	handlers := append(mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": c.GetString("userID")})
	})
	r.GET("/protected", handlers...)

	return r
}

func get(r http.Handler, cookies ...*http.Cookie) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestRequestID(t *testing.T) {
	w, body := get(protected())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get("X-Request-ID"), 12)
	assert.Equal(t, "", body["userID"])
}

func TestCookieGate(t *testing.T) {
	r := protected(NewCookieGate())

	w, body := get(r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token lifetime expired, please login.", body["error"])
	assert.Equal(t, "unauthenticated", body["kind"])
	assert.NotEmpty(t, body["requestID"])

	w, _ = get(r, &http.Cookie{Name: security.AccessCookie, Value: ""})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Presence only, garbage passes the gate
	w, _ = get(r, &http.Cookie{Name: security.AccessCookie, Value: "garbage"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = get(r, &http.Cookie{Name: security.RefreshCookie, Value: "garbage"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	tokens := newTokens()
	r := protected(NewCookieGate(), NewAuthMiddleware(tokens))

	pair, err := tokens.IssuePair("user-42")
	require.NoError(t, err)

	w, body := get(r, &http.Cookie{Name: security.AccessCookie, Value: pair.AccessToken})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", body["userID"])

	w, body = get(r, &http.Cookie{Name: security.RefreshCookie, Value: pair.RefreshToken})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", body["userID"])

	w, body = get(r, &http.Cookie{Name: security.AccessCookie, Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthenticated", body["kind"])

	// Refresh token presented in the access slot is signed with the wrong secret
	w, _ = get(r, &http.Cookie{Name: security.AccessCookie, Value: pair.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBodySizeLimiter(t *testing.T) {
	r := gin.New()
	r.POST("/", BodySizeLimiter(8), func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			if IsBodyTooLarge(err) {
				AbortBodyTooLarge(c)
				return
			}
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny")))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("way past the limit")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	// Unknown length still gets cut off while reading
	req := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(strings.NewReader("way past the limit")))
	req.ContentLength = -1
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 1, Burst: 2})
	defer l.Close()

	r := protected(l.Middleware())

	codes := []int{}
	for i := 0; i < 3; i++ {
		w, _ := get(r)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
