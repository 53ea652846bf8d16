package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/rushtracker/rushtracker/pkg/core/model"
)

const (
	sessionFilePerms = 0600 // Read/write for owner only
	sessionDirPerms  = 0700
)

// ErrNoSession is returned when an authenticated call is attempted while logged out
var ErrNoSession = errors.New("not logged in")

// Record is the persisted identity of the logged-in brother
type Record struct {
	Token     string        `json:"token"`
	Brother   model.Brother `json:"brother"`
	ExpiresAt time.Time     `json:"expiresAt,omitempty"`
}

// Expired reports whether the token expiry has passed at now
func (r Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// Store holds the current session. Login is the only way to set it and Clear the only way to
// drop it. When path is set the record is mirrored to that file.
type Store struct {
	mu      sync.Mutex
	path    string
	current *Record
	now     func() time.Time
}

// NewStore creates an empty store persisting to path; an empty path keeps it in memory
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Open creates a store and loads any record already saved at path.
// A missing file is not an error.
func Open(path string) (*Store, error) {
	s := NewStore(path)
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	if rec.Token != "" {
		s.current = &rec
	}
	return s, nil
}

// Login records a new session. The token expiry is read from its exp claim when it is a JWT.
func (s *Store) Login(token string, brother model.Brother) error {
	if token == "" {
		return fmt.Errorf("cannot start a session without a token")
	}

	rec := &Record{
		Token:     token,
		Brother:   brother,
		ExpiresAt: tokenExpiry(token),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(rec); err != nil {
		return err
	}
	s.current = rec
	return nil
}

// Clear ends the session, used on logout and when the API rejects the token
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// Current returns the active session. An expired session counts as absent.
func (s *Store) Current() (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.Expired(s.now()) {
		return Record{}, false
	}
	return *s.current, true
}

// Brother returns the logged-in brother
func (s *Store) Brother() (model.Brother, bool) {
	rec, ok := s.Current()
	return rec.Brother, ok
}

// LoggedIn reports whether there is a usable session
func (s *Store) LoggedIn() bool {
	_, ok := s.Current()
	return ok
}

// Token implements oauth2.TokenSource so the store can back an oauth2.Transport
func (s *Store) Token() (*oauth2.Token, error) {
	rec, ok := s.Current()
	if !ok {
		return nil, ErrNoSession
	}
	return &oauth2.Token{
		AccessToken: rec.Token,
		TokenType:   "Bearer",
		Expiry:      rec.ExpiresAt,
	}, nil
}

func (s *Store) save(rec *Record) error {
	if s.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), sessionDirPerms); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(s.path, data, sessionFilePerms); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// tokenExpiry reads the exp claim without verifying the signature.
// Returns the zero time for opaque tokens.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
