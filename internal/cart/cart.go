// Package cart holds the per-session melon quantities and the summary that
// joins them against the catalog.
package cart

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"Ubermelon/internal/catalog"
)

var (
	ErrUnknownItemInCart = errors.New("unknown item in cart")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrTotalOverflow     = errors.New("total overflow")
)

// Cart maps melon id to a quantity of at least one. The zero value is an
// empty cart. Add returns a new Cart and leaves the receiver unchanged.
type Cart struct {
	items map[string]int
}

func New() Cart { return Cart{} }

// FromQuantities builds a cart from stored quantities, rejecting anything
// below one.
func FromQuantities(q map[string]int) (Cart, error) {
	if len(q) == 0 {
		return Cart{}, nil
	}

	items := make(map[string]int, len(q))
	for id, n := range q {
		if n < 1 {
			return Cart{}, fmt.Errorf("%w: %s=%d", ErrInvalidQuantity, id, n)
		}
		items[id] = n
	}
	return Cart{items: items}, nil
}

func (c Cart) Add(id string) Cart {
	items := make(map[string]int, len(c.items)+1)
	for k, v := range c.items {
		items[k] = v
	}
	items[id]++
	return Cart{items: items}
}

func (c Cart) Clear() Cart { return Cart{} }

func (c Cart) Quantity(id string) int { return c.items[id] }

func (c Cart) Len() int { return len(c.items) }

func (c Cart) IsEmpty() bool { return len(c.items) == 0 }

// IDs returns the melon ids in the cart, sorted.
func (c Cart) IDs() []string {
	ids := make([]string, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c Cart) Quantities() map[string]int {
	out := make(map[string]int, len(c.items))
	for k, v := range c.items {
		out[k] = v
	}
	return out
}

type LineItem struct {
	Melon      catalog.Melon `json:"melon"`
	Quantity   int           `json:"quantity"`
	TotalCents int64         `json:"total_cents"`
}

func (l LineItem) Total() string { return catalog.FormatCents(l.TotalCents) }

type Summary struct {
	Lines      []LineItem `json:"lines"`
	TotalCents int64      `json:"total_cents"`
}

func (s Summary) Total() string { return catalog.FormatCents(s.TotalCents) }

// Lookup resolves melon ids. *catalog.Catalog satisfies it.
type Lookup interface {
	GetByID(id string) (catalog.Melon, error)
}

// BuildSummary resolves every cart entry and totals it. A single id that
// the lookup does not know fails the whole summary.
func BuildSummary(c Cart, lookup Lookup) (Summary, error) {
	s := Summary{Lines: make([]LineItem, 0, len(c.items))}

	for _, id := range c.IDs() {
		qty := c.items[id]

		m, err := lookup.GetByID(id)
		if errors.Is(err, catalog.ErrNotFound) {
			return Summary{}, fmt.Errorf("%w: %s", ErrUnknownItemInCart, id)
		}
		if err != nil {
			return Summary{}, err
		}

		line, ok := mulCents(m.PriceCents, qty)
		if !ok || s.TotalCents > math.MaxInt64-line {
			return Summary{}, ErrTotalOverflow
		}

		s.Lines = append(s.Lines, LineItem{Melon: m, Quantity: qty, TotalCents: line})
		s.TotalCents += line
	}

	return s, nil
}

func mulCents(price int64, qty int) (int64, bool) {
	if price < 0 || qty < 0 {
		return 0, false
	}
	if price == 0 || qty == 0 {
		return 0, true
	}
	if price > math.MaxInt64/int64(qty) {
		return 0, false
	}
	return price * int64(qty), true
}
