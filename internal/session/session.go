// Package session keeps the signed-in user of the terminal client on disk.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"predman/internal/domain"
)

// Session is what a successful login leaves behind.
type Session struct {
	UserID string `json:"user_id"`
	Login  string `json:"login"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// FromAuth builds a session out of a register/login response.
func FromAuth(a domain.AuthResponse) Session {
	return Session{UserID: a.ID, Login: a.Login, Email: a.Email, Token: a.Token}
}

// Store is the persisted authentication state. A nil current session means
// nobody is signed in.
type Store struct {
	path string

	mu      sync.RWMutex
	current *Session
	subs    map[int]func(*Session)
	nextSub int
}

// DefaultPath is ~/.config/predman/session.json (or the platform equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "predman", "session.json"), nil
}

// Open reads the session file at path. A missing file is an empty session.
func Open(path string) (*Store, error) {
	s := &Store{path: path, subs: make(map[int]func(*Session))}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	if sess.Token != "" {
		s.current = &sess
	}
	return s, nil
}

// Get returns the current session, ok is false when signed out.
func (s *Store) Get() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// Subscribe registers fn to be called after every login and logout. fn gets
// nil on logout.
func (s *Store) Subscribe(fn func(*Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Login persists sess and makes it current.
func (s *Store) Login(sess Session) error {
	if sess.Token == "" {
		return domain.Invalid("session token is empty")
	}
	raw, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	// write then rename so a crash never leaves half a file behind
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write session: %w", err)
	}

	s.set(&sess)
	return nil
}

// Logout clears the session and removes the file.
func (s *Store) Logout() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	s.set(nil)
	return nil
}

func (s *Store) set(sess *Session) {
	s.mu.Lock()
	s.current = sess
	subs := make([]func(*Session), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		if sess == nil {
			fn(nil)
			continue
		}
		cp := *sess
		fn(&cp)
	}
}
