package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)

	u, err := f.users.Register(f.ctx, RegisterInput{
		Username:  " alice ",
		Email:     "alice@example.com",
		Password:  "password123",
		FirstName: "Alice",
	})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "password123", u.PasswordHash)
	assert.False(t, u.DateJoined.IsZero())

	t.Run("duplicate username", func(t *testing.T) {
		_, err := f.users.Register(f.ctx, RegisterInput{Username: "alice", Password: "password123"})
		e := requireKind(t, err, Invalid)
		assert.Equal(t, "A user with that username already exists.", e.Fields["username"])
	})

	t.Run("invalid payload", func(t *testing.T) {
		_, err := f.users.Register(f.ctx, RegisterInput{Email: "nope", Password: "short"})
		e := requireKind(t, err, Invalid)
		assert.Equal(t, "This field is required.", e.Fields["username"])
		assert.Equal(t, "Enter a valid email address.", e.Fields["email"])
		assert.Equal(t, "Ensure this field has at least 8 characters.", e.Fields["password"])
	})
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	got, err := f.users.Authenticate(f.ctx, "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	for _, tc := range []struct{ username, password string }{
		{"alice", "wrong-password"},
		{"nobody", "password123"},
		{"", ""},
	} {
		_, err := f.users.Authenticate(f.ctx, tc.username, tc.password)
		e := requireKind(t, err, Unauthorized)
		assert.Equal(t, "Invalid username or password.", e.Detail)
	}
}

func TestUsers(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.user(t, "bob")

	users, err := f.users.ListUsers(f.ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)

	got, err := f.users.GetUser(f.ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	_, err = f.users.GetUser(f.ctx, 999)
	requireKind(t, err, NotFound)

	me, err := f.users.Me(alice)
	require.NoError(t, err)
	assert.Equal(t, alice.Projection(), me)

	_, err = f.users.Me(nil)
	requireKind(t, err, Unauthorized)
}
