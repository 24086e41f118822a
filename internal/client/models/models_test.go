package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentialPair_CompleteAndEmpty(t *testing.T) {
	assert.True(t, CredentialPair{AccessToken: "a", RefreshToken: "r"}.Complete())
	assert.False(t, CredentialPair{AccessToken: "a"}.Complete())
	assert.False(t, CredentialPair{AccessToken: "a"}.Empty())
	assert.True(t, CredentialPair{}.Empty())
}

func TestGameSession_IsUserTurn(t *testing.T) {
	tests := []struct {
		name string
		g    GameSession
		want bool
	}{
		{"user first, X to move", GameSession{CurrentPlayer: PlayerX}, true},
		{"user first, O to move", GameSession{CurrentPlayer: PlayerO}, false},
		{"computer first, O to move", GameSession{CurrentPlayer: PlayerO, IsComputerFirst: true}, true},
		{"game over", GameSession{CurrentPlayer: PlayerX, GameState: GameState{IsOver: true}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.g.IsUserTurn())
		})
	}
}
