package auth

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth/gothic"
)

const (
	sessionName   = "storefront_session"
	userIDKey     = "user_id"
	guestTokenKey = "guest_token"
)

// Sessions wraps the cookie store carrying the signed-in user id and the
// opaque guest cart token.
type Sessions struct {
	store *sessions.CookieStore
}

func NewSessions(secret string) *Sessions {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(86400 * 30)
	store.Options.Path = "/"
	store.Options.HttpOnly = true

	// gothic shares the same store for the OAuth handshake state.
	gothic.Store = store

	return &Sessions{store: store}
}

// UserID returns the signed-in user's id, or false for guests.
func (s *Sessions) UserID(r *http.Request) (int64, bool) {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return 0, false
	}
	id, ok := session.Values[userIDKey].(int64)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

func (s *Sessions) SignIn(w http.ResponseWriter, r *http.Request, userID int64) error {
	session, _ := s.store.Get(r, sessionName)
	session.Values[userIDKey] = userID
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Sessions) SignOut(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, sessionName)
	delete(session.Values, userIDKey)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// PeekGuestToken reads the guest cart token without issuing one, so pure
// reads never write session state.
func (s *Sessions) PeekGuestToken(r *http.Request) (string, bool) {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return "", false
	}
	token, ok := session.Values[guestTokenKey].(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// GuestToken returns the browser's guest cart token, issuing and persisting a
// fresh one if the cookie has none. The same token keys both cart reads and
// writes for guests.
func (s *Sessions) GuestToken(w http.ResponseWriter, r *http.Request) (string, error) {
	session, _ := s.store.Get(r, sessionName)
	if token, ok := session.Values[guestTokenKey].(string); ok && token != "" {
		return token, nil
	}

	token := uuid.NewString()
	session.Values[guestTokenKey] = token
	if err := session.Save(r, w); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return token, nil
}
