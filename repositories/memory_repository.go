package repositories

import (
	"canteen-storefront/models"
	"context"
	"sync"
)

// MemoryRepository backs both the session and the durable store in process
// memory. It is used when Redis or Postgres are not configured, and in tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]models.CartState
	tokens   map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions: map[string]models.CartState{},
		tokens:   map[string]string{},
	}
}

func (r *MemoryRepository) LoadCart(_ context.Context, sessionID string) (models.CartState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.sessions[sessionID]
	if !ok {
		return models.CartState{Lines: []models.CartLine{}}, nil
	}
	return state.Clone(), nil
}

func (r *MemoryRepository) SaveCart(_ context.Context, sessionID string, state models.CartState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[sessionID] = state.Clone()
	return nil
}

func (r *MemoryRepository) GetToken(_ context.Context, deviceID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tokens[deviceID], nil
}

func (r *MemoryRepository) SaveToken(_ context.Context, deviceID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[deviceID] = token
	return nil
}

func (r *MemoryRepository) DeleteToken(_ context.Context, deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, deviceID)
	return nil
}

func (r *MemoryRepository) CompareAndDeleteToken(_ context.Context, deviceID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.tokens[deviceID]; ok && current == token {
		delete(r.tokens, deviceID)
	}
	return nil
}
