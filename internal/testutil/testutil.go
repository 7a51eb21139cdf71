// Package testutil builds throwaway dependencies and an HTTP client that
// keeps cookies between requests, for endpoint tests
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"partyshare/party-api/config"
	"partyshare/party-api/db"
	"partyshare/party-api/internal"
	"partyshare/party-api/internal/service"
	"partyshare/party-api/pkg/security"
	"partyshare/party-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// PNG is the smallest payload the photo sniffer accepts as image/png
var PNG = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

const StrongPassword = "Passw0rdX"

func init() {
	gin.SetMode(gin.TestMode)
}

// Config returns a configuration pointing every path into a temp dir
func Config(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()

	return &config.Config{
		App: config.App{LogLevel: "error"},
		JWT: config.JWT{
			AccessSecret:      "test-access-secret",
			RefreshSecret:     "test-refresh-secret",
			AccessExpiration:  15 * time.Minute,
			RefreshExpiration: 7 * 24 * time.Hour,
		},
		Cookie: config.Cookie{
			AccessMaxAge:  15 * time.Minute,
			RefreshMaxAge: 7 * 24 * time.Hour,
		},
		DB: config.DB{
			Driver: "sqlite",
			Name:   filepath.Join(dir, "party.db"),
		},
		Static: config.Static{Dir: filepath.Join(dir, "public")},
		Upload: config.Upload{
			Dir:      filepath.Join(dir, "public", "img", "party"),
			MaxSize:  1 << 20,
			MaxFiles: 3,
		},
		Storage:  config.Storage{Type: "local"},
		Security: config.Security{BodyLimit: 1 << 20},
	}
}

// NewDeps opens a fresh sqlite database and local photo store
func NewDeps(t *testing.T) *internal.Deps {
	t.Helper()

	cfg := Config(t)

	conn, err := db.New(&cfg.DB)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store, err := service.NewLocalStore(cfg.Upload.Dir)
	require.NoError(t, err)

	return &internal.Deps{
		Config: cfg,
		DB:     conn,
		Hasher: security.NewHasher(bcrypt.MinCost),
		Tokens: security.NewTokenService(&cfg.JWT),
		Uploader: service.NewUploader(store, &validators.PhotoRules{
			MaxSize:      cfg.Upload.MaxSize,
			MaxFiles:     cfg.Upload.MaxFiles,
			AllowedTypes: cfg.Upload.AllowedTypes,
		}),
	}
}

// Client sends requests to an in-process handler and behaves like a
// browser with respect to cookies
type Client struct {
	t       *testing.T
	h       http.Handler
	Cookies map[string]*http.Cookie
}

func NewClient(t *testing.T, h http.Handler) *Client {
	return &Client{t: t, h: h, Cookies: map[string]*http.Cookie{}}
}

// Response is a recorded response with its JSON body decoded, if any
type Response struct {
	*httptest.ResponseRecorder
	Body map[string]any
	List []any
}

func (c *Client) Do(req *http.Request) *Response {
	c.t.Helper()

	for _, ck := range c.Cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}

	w := httptest.NewRecorder()
	c.h.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(c.Cookies, ck.Name)
			continue
		}
		c.Cookies[ck.Name] = ck
	}

	r := &Response{ResponseRecorder: w}
	if b := w.Body.Bytes(); len(b) > 0 && b[0] == '[' {
		require.NoError(c.t, json.Unmarshal(b, &r.List))
	} else if len(b) > 0 && b[0] == '{' {
		require.NoError(c.t, json.Unmarshal(b, &r.Body))
	}

	return r
}

func (c *Client) JSON(method, path string, body any) *Response {
	c.t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.Do(req)
}

// Multipart sends fields plus one photos part per entry in photos
func (c *Client) Multipart(method, path string, fields map[string]string, photos ...[]byte) *Response {
	c.t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(c.t, w.WriteField(k, v))
	}

	for i, p := range photos {
		fw, err := w.CreateFormFile("photos", fmt.Sprintf("photo-%d.png", i))
		require.NoError(c.t, err)
		_, err = fw.Write(p)
		require.NoError(c.t, err)
	}

	require.NoError(c.t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.Do(req)
}

// Register signs up a user with a valid password and keeps its cookies
func (c *Client) Register(name, email string) string {
	c.t.Helper()

	r := c.JSON(http.MethodPost, "/api/auth/register", map[string]string{
		"name":            name,
		"email":           email,
		"password":        StrongPassword,
		"confirmPassword": StrongPassword,
	})
	require.Equal(c.t, http.StatusCreated, r.Code, r.Body)

	return r.Body["id"].(string)
}

// Handler returns the handler the client sends requests to
func (c *Client) Handler() http.Handler {
	return c.h
}
