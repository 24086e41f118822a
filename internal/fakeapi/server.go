package fakeapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/tictac/internal/client/models"
	"github.com/dmitrijs2005/tictac/internal/common"
	"github.com/google/uuid"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

type account struct {
	user     models.User
	password string
}

// Server holds the fake backend state. The zero value is not usable; call New.
type Server struct {
	mu       sync.Mutex
	accounts map[string]*account // by email
	refresh  map[string]refreshEntry
	games    map[string]*models.GameSession // by user id
	stats    map[string]*models.GameStats   // by user id

	secret       []byte
	accessTTL    time.Duration
	refreshTTL   time.Duration
	refreshDelay time.Duration
	now          func() time.Time
	gen          atomic.Int64

	refreshCalls atomic.Int32
	rejected     atomic.Int32
}

type Option func(*Server)

func WithAccessTTL(d time.Duration) Option { return func(s *Server) { s.accessTTL = d } }

func WithRefreshTTL(d time.Duration) Option { return func(s *Server) { s.refreshTTL = d } }

// WithRefreshDelay makes /auth/refresh wait before answering.
func WithRefreshDelay(d time.Duration) Option { return func(s *Server) { s.refreshDelay = d } }

func WithClock(now func() time.Time) Option { return func(s *Server) { s.now = now } }

func New(opts ...Option) *Server {
	s := &Server{
		accounts:   make(map[string]*account),
		refresh:    make(map[string]refreshEntry),
		games:      make(map[string]*models.GameSession),
		stats:      make(map[string]*models.GameStats),
		secret:     []byte(uuid.NewString()),
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler serves the API under /api.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/game/start", s.authenticated(s.handleStart))
	mux.HandleFunc("GET /api/game/current", s.authenticated(s.handleCurrent))
	mux.HandleFunc("POST /api/game/move", s.authenticated(s.handleMove))
	mux.HandleFunc("GET /api/game/stats", s.authenticated(s.handleStats))
	return mux
}

// RefreshCalls is the number of /auth/refresh requests received.
func (s *Server) RefreshCalls() int { return int(s.refreshCalls.Load()) }

// Rejected is the number of requests answered 401 for a bad access token.
func (s *Server) Rejected() int { return int(s.rejected.Load()) }

// ExpireAccessTokens invalidates every access token issued so far.
func (s *Server) ExpireAccessTokens() { s.gen.Add(1) }

// RevokeRefreshTokens forgets every refresh token, as a server restart would.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = make(map[string]refreshEntry)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(common.ContentTypeHeaderName, common.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func decode(r *http.Request, v any) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in models.Credentials
	if !decode(r, &in) || in.Email == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[in.Email]; ok {
		writeError(w, http.StatusBadRequest, "User already exists")
		return
	}
	u := models.User{ID: uuid.NewString(), Email: in.Email}
	s.accounts[in.Email] = &account{user: u, password: in.Password}
	writeJSON(w, http.StatusCreated, models.AuthResponse{Message: "User registered successfully", User: u})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in models.Credentials
	if !decode(r, &in) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[in.Email]
	if !ok || acc.password != in.Password {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	access, refresh, err := s.issuePair(acc.user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, models.AuthResponse{
		Message:      "Login successful",
		User:         acc.user,
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)
	if s.refreshDelay > 0 {
		select {
		case <-time.After(s.refreshDelay):
		case <-r.Context().Done():
			return
		}
	}

	var in models.RefreshRequest
	if !decode(r, &in) || in.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.refresh[in.RefreshToken]
	if !ok || s.now().After(entry.expires) {
		delete(s.refresh, in.RefreshToken)
		writeError(w, http.StatusForbidden, "Invalid refresh token")
		return
	}
	delete(s.refresh, in.RefreshToken)

	access, refresh, err := s.issuePair(entry.userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	resp := models.RefreshResponse{AccessToken: access, RefreshToken: refresh}
	if u, ok := s.userByID(entry.userID); ok {
		resp.User = &u
	}
	writeJSON(w, http.StatusOK, resp)
}

// userByID looks up an account; the caller holds s.mu.
func (s *Server) userByID(id string) (models.User, bool) {
	for _, acc := range s.accounts {
		if acc.user.ID == id {
			return acc.user, true
		}
	}
	return models.User{}, false
}

type authedHandler func(w http.ResponseWriter, r *http.Request, userID string)

func (s *Server) authenticated(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(h, common.BearerPrefix)
		if !ok || token == "" {
			s.rejected.Add(1)
			writeError(w, http.StatusUnauthorized, "Access token required")
			return
		}
		userID, err := s.userFromAccess(token)
		if err != nil {
			s.rejected.Add(1)
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		next(w, r, userID)
	}
}
