package credstore

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"github.com/dmitrijs2005/tictac/internal/client/models"
	"github.com/dmitrijs2005/tictac/internal/common"
	"github.com/dmitrijs2005/tictac/internal/logging"
)

// Store is the two-tier credential store. It is safe for concurrent use.
type Store struct {
	durable  Backend
	memory   *MemoryBackend
	degraded atomic.Bool
	log      logging.Logger
}

// New builds a Store over durable. A nil durable backend yields a memory-only store.
func New(durable Backend, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{durable: durable, memory: NewMemoryBackend(), log: log}
}

// Open tries to open the SQLite database at dsn. If that fails the error is
// logged and a memory-only Store is returned.
func Open(ctx context.Context, dsn string, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	backend, err := OpenSQLite(ctx, dsn)
	if err != nil {
		log.Warn(ctx, "durable credential store unavailable, using memory",
			"error", &StorageError{Op: "open", Cause: err})
		return New(nil, log)
	}
	return New(backend, log)
}

// Durability reports whether the active tier survives a restart.
func (s *Store) Durability() Durability {
	if s.durable == nil || s.degraded.Load() {
		return DurabilityNone
	}
	return DurabilityPersistent
}

// Close releases the durable backend, if any.
func (s *Store) Close() error {
	if c, ok := s.durable.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Store) useDurable() bool {
	return s.durable != nil && !s.degraded.Load()
}

// degrade handles a durable failure. Context errors belong to the caller:
// they are returned as a StorageError and the durable tier stays active.
// Any other failure switches the store to memory for the rest of the process.
func (s *Store) degrade(ctx context.Context, op, key string, cause error) error {
	err := &StorageError{Op: op, Key: key, Cause: cause}
	if isContextError(ctx, cause) {
		s.log.Debug(ctx, "credential store operation cancelled", "error", err)
		return err
	}
	if s.degraded.CompareAndSwap(false, true) {
		s.log.Warn(ctx, "durable credential store failed, falling back to memory", "error", err)
		return nil
	}
	s.log.Warn(ctx, "credential store error", "error", err)
	return nil
}

func isContextError(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Get returns the value under key; ok is false when it is absent or when ctx
// ended before the durable tier answered.
func (s *Store) Get(ctx context.Context, key string) (string, bool) {
	if s.useDurable() {
		v, ok, err := s.durable.Get(ctx, key)
		if err == nil {
			return v, ok
		}
		if s.degrade(ctx, "get", key, err) != nil {
			return "", false
		}
	}
	v, ok, _ := s.memory.Get(ctx, key)
	return v, ok
}

// Set stores value under key. Durable failures are absorbed by the memory
// tier; only a cancelled or expired ctx is reported.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if s.useDurable() {
		err := s.durable.Set(ctx, key, value)
		if err == nil {
			return nil
		}
		if err := s.degrade(ctx, "set", key, err); err != nil {
			return err
		}
	}
	return s.memory.Set(ctx, key, value)
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if s.useDurable() {
		err := s.durable.Delete(ctx, key)
		if err == nil {
			return nil
		}
		if err := s.degrade(ctx, "delete", key, err); err != nil {
			return err
		}
	}
	return s.memory.Delete(ctx, key)
}

// Pair reads both tokens.
func (s *Store) Pair(ctx context.Context) models.CredentialPair {
	access, _ := s.Get(ctx, common.AccessTokenKey)
	refresh, _ := s.Get(ctx, common.RefreshTokenKey)
	return models.CredentialPair{AccessToken: access, RefreshToken: refresh}
}

// SetPair stores both tokens together.
func (s *Store) SetPair(ctx context.Context, pair models.CredentialPair) error {
	if s.useDurable() {
		err := setPair(ctx, s.durable, pair)
		if err == nil {
			return nil
		}
		if err := s.degrade(ctx, "set_pair", "", err); err != nil {
			return err
		}
	}
	return s.memory.SetPair(ctx, pair)
}

// ClearPair removes both tokens.
func (s *Store) ClearPair(ctx context.Context) error {
	if s.useDurable() {
		err := deletePair(ctx, s.durable)
		if err == nil {
			return nil
		}
		if err := s.degrade(ctx, "delete_pair", "", err); err != nil {
			return err
		}
	}
	return s.memory.DeletePair(ctx)
}

func setPair(ctx context.Context, b Backend, pair models.CredentialPair) error {
	if pb, ok := b.(PairBackend); ok {
		return pb.SetPair(ctx, pair)
	}
	if err := b.Set(ctx, common.AccessTokenKey, pair.AccessToken); err != nil {
		return err
	}
	return b.Set(ctx, common.RefreshTokenKey, pair.RefreshToken)
}

func deletePair(ctx context.Context, b Backend) error {
	if pb, ok := b.(PairBackend); ok {
		return pb.DeletePair(ctx)
	}
	if err := b.Delete(ctx, common.AccessTokenKey); err != nil {
		return err
	}
	return b.Delete(ctx, common.RefreshTokenKey)
}
