package credstore

import (
	"context"

	"github.com/dmitrijs2005/tictac/internal/client/models"
)

// Backend is a key→string store. Get reports ok=false for missing keys.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// PairBackend is implemented by backends able to write both tokens atomically.
type PairBackend interface {
	Backend
	SetPair(ctx context.Context, pair models.CredentialPair) error
	DeletePair(ctx context.Context) error
}

// Durability describes whether stored credentials survive a restart.
type Durability int

const (
	DurabilityNone Durability = iota
	DurabilityPersistent
)

func (d Durability) String() string {
	if d == DurabilityPersistent {
		return "persistent"
	}
	return "none"
}
