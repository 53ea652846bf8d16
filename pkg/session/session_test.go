package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushtracker/rushtracker/pkg/core/model"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "b1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

var president = model.Brother{ID: "b1", Name: "Alex", Position: model.PositionPresident, Frat: "frat-1", IsActive: true}

func TestStore_LoginAndClear(t *testing.T) {
	s := NewStore("")

	_, ok := s.Current()
	assert.False(t, ok)
	_, err := s.Token()
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, s.Login("opaque-token", president))

	rec, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "opaque-token", rec.Token)
	assert.Equal(t, president, rec.Brother)
	assert.True(t, rec.ExpiresAt.IsZero(), "non-JWT tokens carry no expiry")

	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)

	require.NoError(t, s.Clear())
	assert.False(t, s.LoggedIn())
}

func TestStore_LoginRequiresToken(t *testing.T) {
	s := NewStore("")
	assert.Error(t, s.Login("", president))
	assert.False(t, s.LoggedIn())
}

func TestStore_ExpiredTokenIsAbsent(t *testing.T) {
	s := NewStore("")
	exp := time.Now().Add(time.Hour)
	require.NoError(t, s.Login(signedToken(t, exp), president))

	rec, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, exp.Unix(), rec.ExpiresAt.Unix())

	s.now = func() time.Time { return exp.Add(time.Second) }
	_, ok = s.Current()
	assert.False(t, ok)
	_, err := s.Token()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s, err := Open(path)
	require.NoError(t, err)
	assert.False(t, s.LoggedIn())

	require.NoError(t, s.Login("opaque-token", president))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := Open(path)
	require.NoError(t, err)
	b, ok := reopened.Brother()
	require.True(t, ok)
	assert.Equal(t, president, b)

	require.NoError(t, reopened.Clear())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// clearing twice is fine
	require.NoError(t, reopened.Clear())
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := Open(path)
	assert.Error(t, err)
}
