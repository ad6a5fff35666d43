// Package metadata remembers the analysis numbers behind buy orders placed
// through the proxy, keyed by market username and order id.
package metadata

import (
	"sync"

	"github.com/samber/lo"

	"wfm_flipper/internal/domain/entity"
)

type Store struct {
	mu    sync.RWMutex
	users map[string]map[string]entity.WTBMetadata
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]map[string]entity.WTBMetadata),
	}
}

func (s *Store) Set(username, orderID string, meta entity.WTBMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, ok := s.users[username]
	if !ok {
		orders = make(map[string]entity.WTBMetadata)
		s.users[username] = orders
	}

	orders[orderID] = meta
}

func (s *Store) Get(username, orderID string) (entity.WTBMetadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, ok := s.users[username][orderID]

	return meta, ok
}

// GetAll returns a copy of every entry stored for username.
func (s *Store) GetAll(username string) map[string]entity.WTBMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Assign(s.users[username])
}

func (s *Store) Delete(username, orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, ok := s.users[username]
	if !ok {
		return
	}

	delete(orders, orderID)

	if len(orders) == 0 {
		delete(s.users, username)
	}
}

func (s *Store) DeleteAll(username string) {
	s.mu.Lock()
	delete(s.users, username)
	s.mu.Unlock()
}
