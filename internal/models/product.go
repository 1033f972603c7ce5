// internal/models/product.go
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        string          `json:"id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gte=0"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StockValue is quantity × price.
func (p Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

func (p Product) InStock() bool {
	return p.Quantity > 0
}

// Products is the full products collection, in insertion order.
type Products []Product

// IndexByName returns the index of the product whose name matches
// case-insensitively, or -1.
func (ps Products) IndexByName(name string) int {
	name = strings.TrimSpace(name)
	for i := range ps {
		if strings.EqualFold(strings.TrimSpace(ps[i].Name), name) {
			return i
		}
	}
	return -1
}

func (ps Products) IndexByID(id string) int {
	for i := range ps {
		if ps[i].ID == id {
			return i
		}
	}
	return -1
}

func (ps Products) Clone() Products {
	if ps == nil {
		return nil
	}
	out := make(Products, len(ps))
	copy(out, ps)
	return out
}
