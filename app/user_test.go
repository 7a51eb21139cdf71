package app

import (
	"net/http"
	"strings"
	"testing"

	"partyshare/party-api/internal/model"
	"partyshare/party-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers_FetchAndList(t *testing.T) {
	c, _ := newClient(t)
	aliceID := c.Register("Alice", "alice@example.com")

	bob := testutil.NewClient(t, c.Handler())
	bobID := bob.Register("Bob", "bob@example.com")

	r := c.JSON(http.MethodGet, "/api/users/"+bobID, nil)
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "Bob", r.Body["name"])
	assert.Equal(t, "bob@example.com", r.Body["email"])
	assert.NotContains(t, r.Body, "password")

	r = c.JSON(http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, r.Code)
	require.Len(t, r.List, 2)

	ids := []string{}
	for _, u := range r.List {
		m := u.(map[string]any)
		assert.NotContains(t, m, "password")
		ids = append(ids, m["id"].(string))
	}
	assert.ElementsMatch(t, []string{aliceID, bobID}, ids)

	r = c.JSON(http.MethodGet, "/api/users/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, r.Code)
	assert.Equal(t, "Id is not valid, please try again.", r.Body["error"])
}

func update(name, email, password, confirm string) map[string]string {
	return register(name, email, password, confirm)
}

func TestUsers_Update(t *testing.T) {
	c, a := newClient(t)
	id := c.Register("Alice", "alice@example.com")

	r := c.JSON(http.MethodPut, "/api/users", update("Alicia", "alicia@example.com", "N3wPassword", "N3wPassword"))
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "User updated!", r.Body["message"])

	updated := r.Body["updatedUser"].(map[string]any)
	assert.Equal(t, id, updated["id"])
	assert.Equal(t, "Alicia", updated["name"])
	assert.Equal(t, "alicia@example.com", updated["email"])
	assert.NotContains(t, updated, "password")

	var u model.User
	require.NoError(t, a.Deps.DB.Where("id = ?", id).First(&u).Error)
	ok, err := a.Deps.Hasher.VerifyPasswd("N3wPassword", u.Password)
	require.NoError(t, err)
	assert.True(t, ok)

	// New credentials work, old ones don't
	fresh := testutil.NewClient(t, c.Handler())
	r = fresh.JSON(http.MethodPost, "/api/auth/login", map[string]string{"email": "alicia@example.com", "password": "N3wPassword"})
	assert.Equal(t, http.StatusOK, r.Code)

	r = fresh.JSON(http.MethodPost, "/api/auth/login", map[string]string{"email": "alice@example.com", "password": testutil.StrongPassword})
	assert.Equal(t, http.StatusBadRequest, r.Code)
}

func TestUsers_UpdateValidation(t *testing.T) {
	c, _ := newClient(t)
	c.Register("Alice", "alice@example.com")

	bob := testutil.NewClient(t, c.Handler())
	bob.Register("Bob", "bob@example.com")

	tests := []struct {
		name string
		body map[string]string
		msg  string
	}{
		{"missing name", update(" ", "alice@example.com", "Passw0rdX", "Passw0rdX"), "Please insert your name."},
		{"bad email", update("Alice", "nope", "Passw0rdX", "Passw0rdX"), "Please insert a valid email."},
		{"padded email", update("Alice", "alice@example.com ", "Passw0rdX", "Passw0rdX"), "Please insert a valid email."},
		{"weak password", update("Alice", "alice@example.com", "short", "short"), "Invalid password format. Password must have at least 8 characters, one uppercase, one lowercase and one digit."},
		{"mismatch", update("Alice", "alice@example.com", "Passw0rdX", "Passw0rdZ"), "Please make sure both passwords are equal."},
		{"email taken", update("Alice", "bob@example.com", "Passw0rdX", "Passw0rdX"), "Someone is already using that email."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := c.JSON(http.MethodPut, "/api/users", tt.body)
			assert.Equal(t, http.StatusBadRequest, r.Code)
			assert.Equal(t, tt.msg, r.Body["error"])
		})
	}

	// Keeping your own email is fine
	r := c.JSON(http.MethodPut, "/api/users", update("Alice", "alice@example.com", "Passw0rdX", "Passw0rdX"))
	assert.Equal(t, http.StatusOK, r.Code)
}

func TestUsers_UpdateLongPassword(t *testing.T) {
	c, _ := newClient(t)
	c.Register("Alice", "alice@example.com")
	long := "N3w" + strings.Repeat("x", 90)

	r := c.JSON(http.MethodPut, "/api/users", update("Alice", "alice@example.com", long, long))
	require.Equal(t, http.StatusOK, r.Code)

	fresh := testutil.NewClient(t, c.Handler())
	r = fresh.JSON(http.MethodPost, "/api/auth/login", map[string]string{"email": "alice@example.com", "password": long})
	assert.Equal(t, http.StatusOK, r.Code)
}

func TestUsers_UpdateDeletedCaller(t *testing.T) {
	c, a := newClient(t)
	id := c.Register("Alice", "alice@example.com")

	require.NoError(t, a.Deps.DB.Where("id = ?", id).Delete(&model.User{}).Error)

	r := c.JSON(http.MethodPut, "/api/users", update("Alice", "alice@example.com", "Passw0rdX", "Passw0rdX"))
	assert.Equal(t, http.StatusUnauthorized, r.Code)
	assert.Equal(t, "Access denied.", r.Body["error"])
}
