package services

import (
	"canteen-storefront/models"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidPrice    = errors.New("unit price must not be negative")
)

// CartStore persists the session-scoped cart. Implementations live in
// repositories (Redis, in-memory).
type CartStore interface {
	LoadCart(ctx context.Context, sessionID string) (models.CartState, error)
	SaveCart(ctx context.Context, sessionID string, state models.CartState) error
}

type CartService struct {
	store  CartStore
	logger *zap.Logger
	locks  sessionLocks
}

func NewCartService(store CartStore, logger *zap.Logger) *CartService {
	return &CartService{store: store, logger: logger}
}

// Open loads the cart of a browsing session. A session without stored state
// gets an empty cart.
func (s *CartService) Open(ctx context.Context, sessionID string) (*Cart, error) {
	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("open cart: %w", err)
	}
	return &Cart{sessionID: sessionID, state: state, svc: s}, nil
}

// load reads the stored cart. A corrupt cart is replaced by an empty one so
// the session stays usable.
func (s *CartService) load(ctx context.Context, sessionID string) (models.CartState, error) {
	state, err := s.store.LoadCart(ctx, sessionID)
	if errors.Is(err, models.ErrCorruptCart) {
		s.logger.Warn("discarding corrupt cart", zap.String("session_id", sessionID), zap.Error(err))
		return models.CartState{Lines: []models.CartLine{}}, nil
	}
	if err != nil {
		return models.CartState{}, err
	}
	if state.Lines == nil {
		state.Lines = []models.CartLine{}
	}
	return state, nil
}

// Cart is the order being assembled in one browsing session. Mutations on
// the same session are serialized across requests: each one re-reads the
// stored cart under the session's lock, applies itself and writes through.
type Cart struct {
	sessionID string
	svc       *CartService

	mu    sync.Mutex
	state models.CartState
}

func (c *Cart) State() models.CartState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

func (c *Cart) TotalPrice() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.TotalPrice()
}

// SelectCanteen switches the active canteen. Lines picked from a previously
// selected, different canteen are dropped.
func (c *Cart) SelectCanteen(ctx context.Context, canteenID *int) error {
	return c.mutate(ctx, true, func(state *models.CartState) {
		prev := state.SelectedCanteenID
		if prev != nil && (canteenID == nil || *canteenID != *prev) && len(state.Lines) > 0 {
			c.svc.logger.Info("canteen changed, clearing cart lines",
				zap.String("session_id", c.sessionID),
				zap.Int("previous_canteen_id", *prev),
				zap.Int("dropped_lines", len(state.Lines)))
			state.Lines = []models.CartLine{}
		}

		if canteenID == nil {
			state.SelectedCanteenID = nil
		} else {
			id := *canteenID
			state.SelectedCanteenID = &id
		}
	})
}

func (c *Cart) SelectTable(ctx context.Context, table *string) error {
	return c.mutate(ctx, true, func(state *models.CartState) {
		if table == nil || strings.TrimSpace(*table) == "" {
			state.TableNumber = nil
		} else {
			value := strings.TrimSpace(*table)
			state.TableNumber = &value
		}
	})
}

// AddItem merges the candidate into an existing line with the same menu item
// (quantities add up) or appends it as a new line.
func (c *Cart) AddItem(ctx context.Context, line models.CartLine) error {
	if line.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if line.UnitPrice.IsNegative() {
		return ErrInvalidPrice
	}

	return c.mutate(ctx, true, func(state *models.CartState) {
		if i := indexOf(state.Lines, line.MenuItemID); i >= 0 {
			state.Lines[i].Quantity += line.Quantity
		} else {
			state.Lines = append(state.Lines, line)
		}
	})
}

func (c *Cart) RemoveItem(ctx context.Context, menuItemID int) error {
	return c.mutate(ctx, true, func(state *models.CartState) {
		state.Lines = without(state.Lines, menuItemID)
	})
}

// UpdateQuantity sets an absolute quantity. Zero or less removes the line;
// unknown items are left alone.
func (c *Cart) UpdateQuantity(ctx context.Context, menuItemID, quantity int) error {
	return c.mutate(ctx, true, func(state *models.CartState) {
		if quantity <= 0 {
			state.Lines = without(state.Lines, menuItemID)
		} else if i := indexOf(state.Lines, menuItemID); i >= 0 {
			state.Lines[i].Quantity = quantity
		}
	})
}

// Clear resets lines, canteen and table. It does not read the stored cart,
// so it succeeds even when that cannot be loaded.
func (c *Cart) Clear(ctx context.Context) error {
	return c.mutate(ctx, false, func(state *models.CartState) {
		*state = models.CartState{Lines: []models.CartLine{}}
	})
}

// mutate applies fn under the session lock. With reload set, fn sees the
// latest stored cart rather than the one read when the cart was opened.
func (c *Cart) mutate(ctx context.Context, reload bool, fn func(state *models.CartState)) error {
	unlock := c.svc.locks.lock(c.sessionID)
	defer unlock()

	c.mu.Lock()
	state := c.state.Clone()
	c.mu.Unlock()

	if reload {
		latest, err := c.svc.load(ctx, c.sessionID)
		if err != nil {
			c.svc.logger.Error("failed to reload cart", zap.String("session_id", c.sessionID), zap.Error(err))
			return err
		}
		state = latest
	}

	fn(&state)

	c.mu.Lock()
	c.state = state.Clone()
	c.mu.Unlock()

	if err := c.svc.store.SaveCart(ctx, c.sessionID, state); err != nil {
		c.svc.logger.Error("failed to persist cart", zap.String("session_id", c.sessionID), zap.Error(err))
		return err
	}
	return nil
}

func indexOf(lines []models.CartLine, menuItemID int) int {
	for i, line := range lines {
		if line.MenuItemID == menuItemID {
			return i
		}
	}
	return -1
}

func without(lines []models.CartLine, menuItemID int) []models.CartLine {
	kept := lines[:0]
	for _, line := range lines {
		if line.MenuItemID != menuItemID {
			kept = append(kept, line)
		}
	}
	return kept
}

// sessionLocks hands out one mutex per session id. An entry lives only while
// some request holds or waits for it.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

func (l *sessionLocks) lock(id string) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = map[string]*sessionLock{}
	}
	entry, ok := l.locks[id]
	if !ok {
		entry = &sessionLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.Lock()
	return func() {
		entry.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
