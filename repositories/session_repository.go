package repositories

import (
	"canteen-storefront/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Field names mirror the keys the storefront keeps per browsing session.
const (
	fieldCanteenID = "selectedCanteenId"
	fieldTable     = "tableNumber"
	fieldItems     = "cartItems"
)

// SessionRepository keeps session-scoped state in a Redis hash whose TTL is
// refreshed on every write, so the cart disappears with an idle session.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{client: client, ttl: ttl}
}

func (r *SessionRepository) key(sessionID string) string {
	return "session:" + sessionID
}

func (r *SessionRepository) LoadCart(ctx context.Context, sessionID string) (models.CartState, error) {
	state := models.CartState{Lines: []models.CartLine{}}

	values, err := r.client.HGetAll(ctx, r.key(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return state, nil
		}
		return state, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	if raw, ok := values[fieldCanteenID]; ok {
		id, err := strconv.Atoi(raw)
		if err == nil {
			state.SelectedCanteenID = &id
		}
	}
	if raw, ok := values[fieldTable]; ok {
		table := raw
		state.TableNumber = &table
	}
	if raw, ok := values[fieldItems]; ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &state.Lines); err != nil {
			return models.CartState{Lines: []models.CartLine{}}, fmt.Errorf("%w: decode cart items: %v", models.ErrCorruptCart, err)
		}
	}

	return state, nil
}

func (r *SessionRepository) SaveCart(ctx context.Context, sessionID string, state models.CartState) error {
	lines := state.Lines
	if lines == nil {
		lines = []models.CartLine{}
	}
	items, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart items: %w", err)
	}

	key := r.key(sessionID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fieldItems, items)

		if state.SelectedCanteenID != nil {
			pipe.HSet(ctx, key, fieldCanteenID, strconv.Itoa(*state.SelectedCanteenID))
		} else {
			pipe.HDel(ctx, key, fieldCanteenID)
		}

		if state.TableNumber != nil {
			pipe.HSet(ctx, key, fieldTable, *state.TableNumber)
		} else {
			pipe.HDel(ctx, key, fieldTable)
		}

		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}
