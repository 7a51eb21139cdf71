package app

import (
	"net/http"
	"strings"
	"testing"

	"partyshare/party-api/internal/model"
	"partyshare/party-api/internal/testutil"
	"partyshare/party-api/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*testutil.Client, *API) {
	t.Helper()

	a := NewAPI(testutil.NewDeps(t))
	t.Cleanup(func() {
		if a.limiter != nil {
			a.limiter.Close()
		}
	})

	return testutil.NewClient(t, a.Router), a
}

func register(name, email, password, confirm string) map[string]string {
	return map[string]string{
		"name":            name,
		"email":           email,
		"password":        password,
		"confirmPassword": confirm,
	}
}

func TestRegister(t *testing.T) {
	c, a := newClient(t)

	r := c.JSON(http.MethodPost, "/api/auth/register", register("Alice", "alice@example.com", "Passw0rdX", "Passw0rdX"))
	require.Equal(t, http.StatusCreated, r.Code)

	assert.Nil(t, r.Body["error"])
	assert.Equal(t, "Register completed!", r.Body["message"])
	assert.Equal(t, "Alice", r.Body["name"])
	assert.NotEmpty(t, r.Body["id"])

	require.Contains(t, c.Cookies, security.AccessCookie)
	require.Contains(t, c.Cookies, security.RefreshCookie)

	access := c.Cookies[security.AccessCookie]
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteNoneMode, access.SameSite)
	assert.Equal(t, 15*60, access.MaxAge)
	assert.Equal(t, 7*24*60*60, c.Cookies[security.RefreshCookie].MaxAge)

	// Stored as a bcrypt digest
	var u model.User
	require.NoError(t, a.Deps.DB.Where("email = ?", "alice@example.com").First(&u).Error)
	assert.NotEqual(t, "Passw0rdX", u.Password)

	ok, err := a.Deps.Hasher.VerifyPasswd("Passw0rdX", u.Password)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegister_FormEncoded(t *testing.T) {
	c, _ := newClient(t)

	req := formRequest(http.MethodPost, "/api/auth/register", register("Bob", "bob@example.com", "Passw0rdX", "Passw0rdX"))
	r := c.Do(req)

	assert.Equal(t, http.StatusCreated, r.Code)
	assert.Equal(t, "Bob", r.Body["name"])
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
		msg  string
	}{
		{"missing name", register("", "a@b.co", "Passw0rdX", "Passw0rdX"), "Please fill all the form fields to register."},
		{"missing confirmation", register("A", "a@b.co", "Passw0rdX", ""), "Please fill all the form fields to register."},
		{"bad email", register("A", "not-an-email", "Passw0rdX", "Passw0rdX"), "Invalid email format."},
		{"padded email", register("A", " a@b.co ", "Passw0rdX", "Passw0rdX"), "Invalid email format."},
		{"weak password", register("A", "a@b.co", "password", "password"), "Invalid password format. Password must have at least 8 characters, one uppercase, one lowercase and one digit."},
		{"symbols", register("A", "a@b.co", "Passw0rd!", "Passw0rd!"), "Invalid password format. Password must have at least 8 characters, one uppercase, one lowercase and one digit."},
		{"mismatch", register("A", "a@b.co", "Passw0rdX", "Passw0rdY"), "Please make sure both passwords are equal."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newClient(t)

			r := c.JSON(http.MethodPost, "/api/auth/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, r.Code)
			assert.Equal(t, tt.msg, r.Body["error"])
			assert.Equal(t, "validation", r.Body["kind"])
			assert.NotEmpty(t, r.Body["requestID"])
			assert.Empty(t, c.Cookies)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	c, a := newClient(t)
	c.Register("Alice", "alice@example.com")

	r := c.JSON(http.MethodPost, "/api/auth/register", register("Other", "alice@example.com", "Passw0rdX", "Passw0rdX"))
	assert.Equal(t, http.StatusBadRequest, r.Code)
	assert.Equal(t, "Someone is already using that email.", r.Body["error"])
	assert.Equal(t, "conflict", r.Body["kind"])

	var n int64
	require.NoError(t, a.Deps.DB.Model(&model.User{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestRegister_LongPassword(t *testing.T) {
	c, _ := newClient(t)
	long := "Aa1" + strings.Repeat("b", 80)

	r := c.JSON(http.MethodPost, "/api/auth/register", register("Alice", "alice@example.com", long, long))
	require.Equal(t, http.StatusCreated, r.Code)

	fresh := testutil.NewClient(t, c.Handler())
	r = fresh.JSON(http.MethodPost, "/api/auth/login", map[string]string{"email": "alice@example.com", "password": long})
	assert.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "Login completed!", r.Body["message"])
}

func TestLogin(t *testing.T) {
	c, _ := newClient(t)
	id := c.Register("Alice", "alice@example.com")

	fresh := testutil.NewClient(t, c.Handler())

	r := fresh.JSON(http.MethodPost, "/api/auth/login", map[string]string{"email": "alice@example.com", "password": testutil.StrongPassword})
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "Login completed!", r.Body["message"])
	assert.Equal(t, id, r.Body["id"])
	assert.Equal(t, "Alice", r.Body["name"])
	assert.Contains(t, fresh.Cookies, security.AccessCookie)
	assert.Contains(t, fresh.Cookies, security.RefreshCookie)
}

func TestLogin_Failures(t *testing.T) {
	c, _ := newClient(t)
	c.Register("Alice", "alice@example.com")

	tests := []struct {
		name string
		body map[string]string
		msg  string
	}{
		{"missing password", map[string]string{"email": "alice@example.com"}, "Please insert email and password to login."},
		{"unknown email", map[string]string{"email": "nobody@example.com", "password": testutil.StrongPassword}, "This email is not registered in our database, please register before login."},
		{"wrong password", map[string]string{"email": "alice@example.com", "password": "Wr0ngPassword"}, "Invalid password, please try again."},
		{"padded email", map[string]string{"email": " alice@example.com", "password": testutil.StrongPassword}, "This email is not registered in our database, please register before login."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fresh := testutil.NewClient(t, c.Handler())

			r := fresh.JSON(http.MethodPost, "/api/auth/login", tt.body)
			assert.Equal(t, http.StatusBadRequest, r.Code)
			assert.Equal(t, tt.msg, r.Body["error"])
			assert.Empty(t, fresh.Cookies)
		})
	}
}

func TestLogout(t *testing.T) {
	c, _ := newClient(t)
	c.Register("Alice", "alice@example.com")

	r := c.JSON(http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusOK, r.Code)
	assert.Empty(t, c.Cookies)

	r = c.JSON(http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusUnauthorized, r.Code)
	assert.Equal(t, "Token lifetime expired, please login.", r.Body["error"])
}
