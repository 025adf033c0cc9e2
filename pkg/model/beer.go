package model

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Beer is a single catalog item as exchanged with the beer service.
// ID and the timestamps are assigned by the server; a Beer built for a
// create request carries none of them.
type Beer struct {
	ID             *uuid.UUID      `json:"id,omitempty"`
	BeerName       string          `json:"beerName" validate:"required"`
	BeerStyle      string          `json:"beerStyle" validate:"required"`
	UPC            string          `json:"upc,omitempty"`
	Price          decimal.Decimal `json:"price" validate:"gte=0"`
	QuantityOnHand *int            `json:"quantityOnHand,omitempty" validate:"omitempty,gte=0"`
	CreatedDate    *time.Time      `json:"createdDate,omitempty"`
	LastUpdateDate *time.Time      `json:"lastUpdateDate,omitempty"`
}

// BeerOption customizes a Beer built by NewBeer.
type BeerOption func(*Beer)

// NewBeer builds a Beer with the two required fields set.
func NewBeer(name, style string, opts ...BeerOption) Beer {
	b := Beer{BeerName: name, BeerStyle: style}
	for _, opt := range opts {
		if opt != nil {
			opt(&b)
		}
	}
	return b
}

func WithID(id uuid.UUID) BeerOption {
	return func(b *Beer) { b.ID = &id }
}

func WithUPC(upc string) BeerOption {
	return func(b *Beer) { b.UPC = upc }
}

func WithPrice(price decimal.Decimal) BeerOption {
	return func(b *Beer) { b.Price = price }
}

func WithQuantityOnHand(qty int) BeerOption {
	return func(b *Beer) { b.QuantityOnHand = &qty }
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// gte on a decimal only needs the sign, so the float view is precise enough.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Validate checks the constraints a create or update payload must satisfy.
// Blank names and styles are treated as missing.
func (b Beer) Validate() error {
	probe := b
	probe.BeerName = strings.TrimSpace(b.BeerName)
	probe.BeerStyle = strings.TrimSpace(b.BeerStyle)
	if err := validate.Struct(probe); err != nil {
		return fmt.Errorf("invalid beer: %w", err)
	}
	return nil
}

// Equal reports whether both records carry the same values, comparing the
// price by numeric value and timestamps as instants.
func (b Beer) Equal(o Beer) bool {
	return equalPtr(b.ID, o.ID, func(x, y uuid.UUID) bool { return x == y }) &&
		b.BeerName == o.BeerName &&
		b.BeerStyle == o.BeerStyle &&
		b.UPC == o.UPC &&
		b.Price.Equal(o.Price) &&
		equalPtr(b.QuantityOnHand, o.QuantityOnHand, func(x, y int) bool { return x == y }) &&
		equalPtr(b.CreatedDate, o.CreatedDate, time.Time.Equal) &&
		equalPtr(b.LastUpdateDate, o.LastUpdateDate, time.Time.Equal)
}

func equalPtr[T any](a, b *T, eq func(T, T) bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return eq(*a, *b)
}

// MarshalJSON renders the price as a bare JSON number carrying its exact
// decimal digits.
func (b Beer) MarshalJSON() ([]byte, error) {
	type plain Beer
	return json.Marshal(struct {
		plain
		Price json.Number `json:"price"`
	}{
		plain: plain(b),
		Price: json.Number(b.Price.String()),
	})
}
