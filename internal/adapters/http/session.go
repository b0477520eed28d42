package httpadapter

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/kirillkom/mail-check/internal/core/usecase"
)

const sessionCookieName = "mailcheck_session"

// Session is the page state of one browser. It lives only in memory.
type Session struct {
	ID         string
	Controller *usecase.SubmissionController

	mu        sync.Mutex
	feedback  *usecase.FeedbackPanel
	flash     string
	expiresAt time.Time
}

func (s *Session) Feedback() *usecase.FeedbackPanel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedback
}

func (s *Session) SetFeedback(panel *usecase.FeedbackPanel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = panel
}

// SetFlash stores a one-shot message for the next render.
func (s *Session) SetFlash(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flash = message
}

func (s *Session) TakeFlash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	message := s.flash
	s.flash = ""
	return message
}

type SessionStore struct {
	ttl        time.Duration
	now        func() time.Time
	newSession func(id string) *Session

	mu       sync.RWMutex
	sessions map[string]*Session

	stop     chan struct{}
	stopOnce sync.Once
}

// NewSessionStore starts a cleanup loop that runs until Close.
func NewSessionStore(ttl time.Duration, newSession func(id string) *Session) *SessionStore {
	store := newSessionStore(ttl, newSession, time.Now)
	go store.cleanupLoop(time.Minute)
	return store
}

func newSessionStore(ttl time.Duration, newSession func(id string) *Session, now func() time.Time) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionStore{
		ttl:        ttl,
		now:        now,
		newSession: newSession,
		sessions:   make(map[string]*Session),
		stop:       make(chan struct{}),
	}
}

func generateSessionID() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// Get returns the live session for id and extends its expiry.
func (s *SessionStore) Get(id string) *Session {
	if id == "" {
		return nil
	}
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	now := s.now()
	session.mu.Lock()
	expired := now.After(session.expiresAt)
	if !expired {
		session.expiresAt = now.Add(s.ttl)
	}
	session.mu.Unlock()

	if expired {
		s.Delete(id)
		return nil
	}
	return session
}

func (s *SessionStore) Create() (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}
	session := s.newSession(id)
	session.ID = id
	session.expiresAt = s.now().Add(s.ttl)

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()
	return session, nil
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *SessionStore) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *SessionStore) cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		session.mu.Lock()
		expired := now.After(session.expiresAt)
		session.mu.Unlock()
		if expired {
			delete(s.sessions, id)
		}
	}
}

// sessionFor returns the caller's session, creating one and setting the
// cookie when there is none.
func (rt *Router) sessionFor(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if session := rt.sessions.Get(cookie.Value); session != nil {
			return session, nil
		}
	}

	session, err := rt.sessions.Create()
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   rt.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return session, nil
}
