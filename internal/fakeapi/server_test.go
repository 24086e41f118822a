package fakeapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/tictac/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, h http.Handler, method, path, token string, in, out any) int {
	t.Helper()
	var body bytes.Buffer
	if in != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(in))
	}
	req := httptest.NewRequest(method, path, &body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func login(t *testing.T, h http.Handler) models.AuthResponse {
	t.Helper()
	creds := models.Credentials{Email: "bob@example.com", Password: "secret1"}
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/auth/register", "", creds, nil))
	var resp models.AuthResponse
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/auth/login", "", creds, &resp))
	return resp
}

func TestAuthFlow(t *testing.T) {
	s := New()
	h := s.Handler()

	resp := login(t, h)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bob@example.com", resp.User.Email)

	creds := models.Credentials{Email: "bob@example.com", Password: "nope"}
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/api/auth/login", "", creds, nil))
	creds.Password = "secret1"
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/auth/register", "", creds, nil))

	var refreshed models.RefreshResponse
	code := do(t, h, http.MethodPost, "/api/auth/refresh", "", models.RefreshRequest{RefreshToken: resp.RefreshToken}, &refreshed)
	require.Equal(t, http.StatusOK, code)
	assert.NotEqual(t, resp.AccessToken, refreshed.AccessToken)
	assert.NotEqual(t, resp.RefreshToken, refreshed.RefreshToken)
	require.NotNil(t, refreshed.User)
	assert.Equal(t, resp.User.ID, refreshed.User.ID)

	// the old refresh token was rotated out
	code = do(t, h, http.MethodPost, "/api/auth/refresh", "", models.RefreshRequest{RefreshToken: resp.RefreshToken}, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, 2, s.RefreshCalls())
}

func TestAccessToken_ExpiryAndRevocation(t *testing.T) {
	now := time.Now()
	s := New(WithClock(func() time.Time { return now }), WithAccessTTL(time.Minute))
	h := s.Handler()
	resp := login(t, h)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/game/stats", resp.AccessToken, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/game/stats", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/game/stats", "garbage", nil, nil))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/game/stats", resp.AccessToken, nil, nil))

	var refreshed models.RefreshResponse
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/auth/refresh", "", models.RefreshRequest{RefreshToken: resp.RefreshToken}, &refreshed))
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/game/stats", refreshed.AccessToken, nil, nil))

	s.ExpireAccessTokens()
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/game/stats", refreshed.AccessToken, nil, nil))
	assert.Equal(t, 4, s.Rejected())

	s.RevokeRefreshTokens()
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodPost, "/api/auth/refresh", "", models.RefreshRequest{RefreshToken: refreshed.RefreshToken}, nil))
}

func TestGameFlow(t *testing.T) {
	s := New()
	h := s.Handler()
	token := login(t, h).AccessToken

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/game/current", token, nil, nil))

	var g models.GameResponse
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/game/start", token, models.StartGameRequest{IsComputerFirst: true}, &g))
	assert.Equal(t, models.PlayerX, g.GameSession.Board[0][0])
	assert.True(t, g.GameSession.IsUserTurn())

	// the computer fills row 0 and wins before the last move
	moves := [][2]int{{1, 1}, {2, 1}, {0, 1}}
	for _, m := range moves {
		code := do(t, h, http.MethodPost, "/api/game/move", token, models.MoveRequest{Row: m[0], Col: m[1]}, &g)
		require.Equal(t, http.StatusOK, code)
		if g.GameSession.GameState.IsOver {
			break
		}
	}
	require.True(t, g.GameSession.GameState.IsOver)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/game/move", token, models.MoveRequest{Row: 2, Col: 2}, nil))

	var st models.GameStatsResponse
	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/game/stats", token, nil, &st))
	assert.Equal(t, 1, st.Stats.Wins+st.Stats.Losses+st.Stats.Draws)
}
