package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound    = errors.New("melon not found")
	ErrDuplicateID = errors.New("duplicate melon id")
	ErrInvalid     = errors.New("invalid melon")
)

type Melon struct {
	ID         string `json:"id" validate:"required,max=64"`
	CommonName string `json:"common_name" validate:"required"`
	PriceCents int64  `json:"price_cents" validate:"gte=0"`
	ImageURL   string `json:"image_url"`
	Color      string `json:"color"`
	Seedless   bool   `json:"seedless"`
}

// Price returns the unit price as a two-digit decimal string.
func (m Melon) Price() string {
	return FormatCents(m.PriceCents)
}

// Catalog is an immutable snapshot of the melons for sale. It is safe for
// concurrent use without locking because nothing mutates it after New.
type Catalog struct {
	sorted []Melon
	byID   map[string]Melon
}

var validate = validator.New()

func New(melons []Melon) (*Catalog, error) {
	c := &Catalog{
		sorted: make([]Melon, 0, len(melons)),
		byID:   make(map[string]Melon, len(melons)),
	}

	for _, m := range melons {
		if err := validate.Struct(m); err != nil {
			return nil, fmt.Errorf("%w: id=%q: %v", ErrInvalid, m.ID, err)
		}
		if _, dup := c.byID[m.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, m.ID)
		}
		c.byID[m.ID] = m
		c.sorted = append(c.sorted, m)
	}

	sort.Slice(c.sorted, func(i, j int) bool { return c.sorted[i].ID < c.sorted[j].ID })
	return c, nil
}

// GetAll returns every melon ordered by id. The slice is a copy.
func (c *Catalog) GetAll() []Melon {
	out := make([]Melon, len(c.sorted))
	copy(out, c.sorted)
	return out
}

func (c *Catalog) GetByID(id string) (Melon, error) {
	m, ok := c.byID[id]
	if !ok {
		return Melon{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m, nil
}

func (c *Catalog) Len() int { return len(c.sorted) }

func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// ParsePrice converts a decimal price such as "2.50" to cents. More than two
// fractional digits or a negative amount is rejected.
func ParsePrice(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("parse price %q: negative", s)
	}

	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("parse price %q: sub-cent precision", s)
	}
	if cents.GreaterThan(decimal.NewFromInt(maxPriceCents)) {
		return 0, fmt.Errorf("parse price %q: out of range", s)
	}
	return cents.IntPart(), nil
}

const maxPriceCents = 1 << 40
