package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrCorruptCart is returned by stores whose saved cart cannot be decoded.
var ErrCorruptCart = errors.New("stored cart is corrupt")

// CartLine is one distinct menu item in the order being assembled. Name and
// UnitPrice are snapshotted when the item is first added.
type CartLine struct {
	MenuItemID int             `json:"menu_item_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartState is the session-scoped order in progress.
type CartState struct {
	SelectedCanteenID *int       `json:"selected_canteen_id"`
	TableNumber       *string    `json:"table_number"`
	Lines             []CartLine `json:"lines"`
}

func (s CartState) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

func (s CartState) ItemCount() int {
	count := 0
	for _, line := range s.Lines {
		count += line.Quantity
	}
	return count
}

func (s CartState) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Clone returns a deep copy so callers cannot alias the container's state.
func (s CartState) Clone() CartState {
	out := CartState{Lines: make([]CartLine, len(s.Lines))}
	copy(out.Lines, s.Lines)
	if s.SelectedCanteenID != nil {
		id := *s.SelectedCanteenID
		out.SelectedCanteenID = &id
	}
	if s.TableNumber != nil {
		table := *s.TableNumber
		out.TableNumber = &table
	}
	return out
}

type CartView struct {
	SelectedCanteenID *int            `json:"selected_canteen_id"`
	TableNumber       *string         `json:"table_number"`
	Lines             []CartLine      `json:"lines"`
	ItemCount         int             `json:"item_count"`
	TotalPrice        decimal.Decimal `json:"total_price"`
}

func (s CartState) View() CartView {
	lines := s.Lines
	if lines == nil {
		lines = []CartLine{}
	}
	return CartView{
		SelectedCanteenID: s.SelectedCanteenID,
		TableNumber:       s.TableNumber,
		Lines:             lines,
		ItemCount:         s.ItemCount(),
		TotalPrice:        s.TotalPrice(),
	}
}
