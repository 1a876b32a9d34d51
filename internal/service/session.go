package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	goaway "github.com/TwiN/go-away"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/windoze95/saltybytes-discover/internal/browse"
	"github.com/windoze95/saltybytes-discover/internal/config"
	"github.com/windoze95/saltybytes-discover/internal/logger"
	"github.com/windoze95/saltybytes-discover/internal/models"
	"github.com/windoze95/saltybytes-discover/internal/spoonacular"
	"go.uber.org/zap"
)

// SessionTokenType is the "type" claim of a browsing session token.
const SessionTokenType = "session"

// tokenLifetime bounds how long a session token is accepted. The session
// itself usually expires sooner through the idle sweep.
const tokenLifetime = 24 * time.Hour

// SessionNotFoundError is returned for unknown or expired sessions.
type SessionNotFoundError struct {
	SessionID string
}

// Error returns the error message.
func (e SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %s not found", e.SessionID)
}

// Session is one browser screen's search state: its Controller and the
// similar-recipes widgets mounted on it.
type Session struct {
	ID         string
	Mode       models.SearchMode
	ClientIP   string
	CreatedAt  time.Time
	Controller *browse.Controller

	mu       sync.Mutex
	lastSeen time.Time
	similar  map[int64]*browse.SimilarWidget
}

// Touch marks the session as used now.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen returns the last time the session was used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionService hosts one browse.Controller per browsing session.
type SessionService struct {
	Cfg      *config.Config
	Provider spoonacular.RecipeProvider
	Events   *SearchEventService

	sessions     sync.Map // session ID -> *Session
	onViewChange func(sessionID string, v browse.View)
	onEnd        func(sessionID string)
	now          func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(cfg *config.Config, provider spoonacular.RecipeProvider, events *SearchEventService) *SessionService {
	return &SessionService{
		Cfg:      cfg,
		Provider: provider,
		Events:   events,
		now:      time.Now,
	}
}

// OnViewChange registers fn to receive every controller's view changes.
// It must be called before sessions are created.
func (s *SessionService) OnViewChange(fn func(sessionID string, v browse.View)) {
	s.onViewChange = fn
}

// OnEnd registers fn to be called when a session is deleted or expires.
// It must be called before sessions are created.
func (s *SessionService) OnEnd(fn func(sessionID string)) {
	s.onEnd = fn
}

// CreateSession starts a new session for the given search mode and returns
// it with its signed token.
func (s *SessionService) CreateSession(mode models.SearchMode, clientIP string) (*Session, string, error) {
	if !mode.Valid() {
		return nil, "", &browse.ValidationError{Field: "mode", Message: fmt.Sprintf("unknown search mode %q", mode)}
	}
	strategy, ok := browse.StrategyFor(mode, s.searchCopy(mode))
	if !ok {
		return nil, "", fmt.Errorf("no strategy for search mode %q", mode)
	}
	if s.Cfg.EnvVars.BlockProfaneQueries {
		strategy = strategy.WithFilter(profanityFilter(s.Cfg.Msg().Search.ProfaneQuery))
	}

	now := s.now()
	session := &Session{
		ID:         uuid.New().String(),
		Mode:       mode,
		ClientIP:   clientIP,
		CreatedAt:  now,
		Controller: browse.NewController(strategy, s.Provider),
		lastSeen:   now,
		similar:    make(map[int64]*browse.SimilarWidget),
	}

	if s.Events != nil {
		session.Controller.OnOutcome(func(o browse.Outcome) {
			s.Events.Record(session.ID, session.ClientIP, o)
		})
	}
	if s.onViewChange != nil {
		id := session.ID
		session.Controller.OnChange(func(v browse.View) {
			s.onViewChange(id, v)
		})
	}

	token, err := s.IssueToken(session)
	if err != nil {
		return nil, "", err
	}

	s.sessions.Store(session.ID, session)
	logger.Get().Info("session created",
		zap.String("session_id", session.ID),
		zap.String("mode", string(mode)),
	)
	return session, token, nil
}

// GetSession returns a live session and marks it as used.
func (s *SessionService) GetSession(sessionID string) (*Session, error) {
	val, ok := s.sessions.Load(sessionID)
	if !ok {
		return nil, SessionNotFoundError{SessionID: sessionID}
	}
	session := val.(*Session)
	session.Touch(s.now())
	return session, nil
}

// KeepAlive marks a session as used without returning it, for clients that
// only watch its view. It reports whether the session is still live.
func (s *SessionService) KeepAlive(sessionID string) bool {
	_, err := s.GetSession(sessionID)
	return err == nil
}

// DeleteSession ends a session. Deleting an unknown session is not an
// error.
func (s *SessionService) DeleteSession(sessionID string) {
	if _, loaded := s.sessions.LoadAndDelete(sessionID); loaded {
		logger.Get().Info("session deleted", zap.String("session_id", sessionID))
		s.ended(sessionID)
	}
}

// Count returns the number of live sessions.
func (s *SessionService) Count() int {
	n := 0
	s.sessions.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

// Sweep removes sessions idle for longer than the configured TTL and
// returns how many were removed.
func (s *SessionService) Sweep() int {
	ttl := s.Cfg.EnvVars.SessionTTL
	if ttl <= 0 {
		return 0
	}
	now := s.now()
	removed := 0
	s.sessions.Range(func(key, value interface{}) bool {
		if now.Sub(value.(*Session).LastSeen()) > ttl {
			s.sessions.Delete(key)
			s.ended(key.(string))
			removed++
		}
		return true
	})
	if removed > 0 {
		logger.Get().Info("expired sessions swept", zap.Int("removed", removed))
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *SessionService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *SessionService) ended(sessionID string) {
	if s.onEnd != nil {
		s.onEnd(sessionID)
	}
}

// IssueToken signs a token binding the bearer to one session.
func (s *SessionService) IssueToken(session *Session) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"session_id": session.ID,
		"mode":       string(session.Mode),
		"type":       SessionTokenType,
		"iat":        now.Unix(),
		"exp":        now.Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.Cfg.EnvVars.JwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// MountSimilar returns the session's similar-recipes widget for recipeID,
// creating it on first use.
func (s *SessionService) MountSimilar(session *Session, recipeID int64) *browse.SimilarWidget {
	session.mu.Lock()
	defer session.mu.Unlock()
	if w, ok := session.similar[recipeID]; ok {
		return w
	}
	msgs := s.Cfg.Msg().Similar
	w := browse.NewSimilarWidget(s.Provider, recipeID, browse.DefaultSimilarLimit, browse.Copy{
		Failed: msgs.Failed,
		Empty:  msgs.Empty,
	})
	session.similar[recipeID] = w
	return w
}

// MountedSimilar returns the widget for recipeID if one is mounted.
func (s *SessionService) MountedSimilar(session *Session, recipeID int64) (*browse.SimilarWidget, bool) {
	session.mu.Lock()
	defer session.mu.Unlock()
	w, ok := session.similar[recipeID]
	return w, ok
}

// UnmountSimilar discards the widget so the next mount fetches again.
func (s *SessionService) UnmountSimilar(session *Session, recipeID int64) {
	session.mu.Lock()
	delete(session.similar, recipeID)
	session.mu.Unlock()
}

func (s *SessionService) searchCopy(mode models.SearchMode) browse.Copy {
	msgs := s.Cfg.Msg().Search
	c := browse.Copy{Failed: msgs.Failed, Empty: msgs.EmptyQuery}
	if mode == models.RandomRecipesMode {
		c.Empty = msgs.EmptyCount
	}
	return c
}

// profanityFilter rejects queries the detector flags, with the same
// sanitizing the detector applies to usernames elsewhere.
func profanityFilter(reason string) browse.QueryFilter {
	detector := goaway.NewProfanityDetector().
		WithSanitizeLeetSpeak(true).
		WithSanitizeSpecialCharacters(true).
		WithSanitizeAccents(false)
	return func(text string) string {
		if detector.IsProfane(text) {
			return reason
		}
		return ""
	}
}
