// Package account stores the backup fields of accounts behind versioned
// compare-and-swap updates.
package account

import (
	"context"
	"fmt"
	"sync"

	"backupauth/internal/backup/config"
	"backupauth/internal/backup/models"
	id "backupauth/pkg/domain"
	"backupauth/pkg/platform/sentinel"
)

// InMemoryStore keeps account snapshots in a map. The mutation runs outside the
// lock, so concurrent updates race and resolve through the version check exactly
// as they do against Postgres.
type InMemoryStore struct {
	mu       sync.RWMutex
	accounts map[id.AccountID]models.Account
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{accounts: make(map[id.AccountID]models.Account)}
}

func (s *InMemoryStore) Get(ctx context.Context, accountID id.AccountID) (models.Account, error) {
	if err := ctx.Err(); err != nil {
		return models.Account{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(accountID), nil
}

func (s *InMemoryStore) Update(ctx context.Context, accountID id.AccountID, mutate models.Mutation) (models.Account, error) {
	for attempt := 0; attempt < config.MaxUpdateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return models.Account{}, err
		}

		s.mu.RLock()
		current := s.load(accountID)
		s.mu.RUnlock()

		next, changed := mutate(current.Clone())
		if !changed {
			return current, nil
		}

		s.mu.Lock()
		if s.load(accountID).Version != current.Version {
			s.mu.Unlock()
			continue
		}
		next = next.Clone()
		next.ID = accountID
		next.Version = current.Version + 1
		s.accounts[accountID] = next
		s.mu.Unlock()
		return next.Clone(), nil
	}
	return models.Account{}, fmt.Errorf("update account after %d attempts: %w", config.MaxUpdateAttempts, sentinel.ErrConflict)
}

// load must be called with mu held.
func (s *InMemoryStore) load(accountID id.AccountID) models.Account {
	account, ok := s.accounts[accountID]
	if !ok {
		return models.NewAccount(accountID)
	}
	return account.Clone()
}
