package main

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"splitbill/pkg/receipt"
	"splitbill/pkg/split"
)

// Session is the ephemeral per-session state: the receipt under review, the
// roster, the item assignments and the computed ledger. Nothing outlives the
// process.
type Session struct {
	Receipt     *receipt.Receipt
	People      []string
	Assignments map[string][]string
	Costs       split.Ledger
}

type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

var store = &sessionStore{sessions: map[string]*Session{}}

func (s *sessionStore) get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *sessionStore) put(id string, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
}

const sessionCookie = "splitbill_session"

// currentSession returns the session bound to the request cookie, creating a
// fresh one (and setting the cookie) when absent or invalid.
func currentSession(c *gin.Context) *Session {
	if tok, err := c.Cookie(sessionCookie); err == nil {
		if id, ok := verifySessionToken(tok); ok {
			if sess, found := store.get(id); found {
				return sess
			}
		}
	}
	id := newSessionID()
	sess := &Session{}
	store.put(id, sess)
	if tok, err := signSessionToken(id); err == nil {
		c.SetCookie(sessionCookie, tok, 86400, "/", "", false, true)
	}
	return sess
}

func newSessionID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func signSessionToken(id string) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": id,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	})
	return t.SignedString(sessionSecret)
}

func verifySessionToken(tok string) (string, bool) {
	t, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return sessionSecret, nil
	})
	if err != nil || !t.Valid {
		return "", false
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	sid, _ := claims["sid"].(string)
	return sid, sid != ""
}
