package credstore

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/tictac/internal/client/models"
	"github.com/dmitrijs2005/tictac/internal/common"
)

// MemoryBackend keeps values in a map. Its methods never return errors.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryBackend) SetPair(_ context.Context, pair models.CredentialPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[common.AccessTokenKey] = pair.AccessToken
	m.values[common.RefreshTokenKey] = pair.RefreshToken
	return nil
}

func (m *MemoryBackend) DeletePair(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, common.AccessTokenKey)
	delete(m.values, common.RefreshTokenKey)
	return nil
}
