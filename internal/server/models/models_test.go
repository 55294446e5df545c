package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	r, err = ParseRole("author")
	require.NoError(t, err)
	assert.Equal(t, RoleAuthor, r)

	_, err = ParseRole("editor")
	require.Error(t, err)
	_, err = ParseRole("Admin")
	require.Error(t, err)
}

func TestRole_JSONRoundTripAndRejectsUnknown(t *testing.T) {
	b, err := json.Marshal(struct {
		Role Role `json:"role"`
	}{RoleAdmin})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"admin"}`, string(b))

	var v struct {
		Role Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"role":"author"}`), &v))
	assert.Equal(t, RoleAuthor, v.Role)

	require.Error(t, json.Unmarshal([]byte(`{"role":"root"}`), &v))

	_, err = json.Marshal(struct{ R Role }{RoleUnknown})
	require.Error(t, err)
}

func TestRole_ScanValue(t *testing.T) {
	var r Role
	require.NoError(t, r.Scan("admin"))
	assert.Equal(t, RoleAdmin, r)
	require.NoError(t, r.Scan([]byte("author")))
	assert.Equal(t, RoleAuthor, r)
	require.Error(t, r.Scan(42))
	require.Error(t, r.Scan("superuser"))

	v, err := RoleAuthor.Value()
	require.NoError(t, err)
	assert.Equal(t, "author", v)

	_, err = Role(9).Value()
	require.Error(t, err)
}

func TestUser_PublicStripsSecrets(t *testing.T) {
	u := &User{
		ID:               "u1",
		FullName:         "Ann Author",
		UserName:         "ann",
		PasswordHash:     []byte("$2a$10$hash"),
		Role:             RoleAuthor,
		RefreshTokenHash: "deadbeef",
		CreatedAt:        time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	p := u.Public()
	b, err := json.Marshal(p)
	require.NoError(t, err)

	s := string(b)
	assert.NotContains(t, s, "hash")
	assert.NotContains(t, s, "deadbeef")
	assert.Contains(t, s, `"username":"ann"`)
	assert.Contains(t, s, `"role":"author"`)
	assert.False(t, p.IsAdmin())

	var nilUser *PublicUser
	assert.False(t, nilUser.IsAdmin())
}

func TestParseCommentStatus(t *testing.T) {
	for _, s := range []string{"pending", "approved", "rejected"} {
		got, err := ParseCommentStatus(s)
		require.NoError(t, err)
		assert.Equal(t, CommentStatus(s), got)
	}
	_, err := ParseCommentStatus("spam")
	require.Error(t, err)
}
