// internal/models/sale.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SaleStatus string

const (
	SaleStatusPending SaleStatus = "PENDING"
	SaleStatusPaid    SaleStatus = "PAID"
)

type Sale struct {
	ID          string          `json:"id" validate:"required"`
	ClientName  string          `json:"client" validate:"required"`
	ProductID   string          `json:"product_id" validate:"required"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Total       decimal.Decimal `json:"total" validate:"gte=0"`
	Date        time.Time       `json:"date"`
	Status      SaleStatus      `json:"status" validate:"required,oneof=PENDING PAID"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
}

func (s Sale) IsPending() bool {
	return s.Status == SaleStatusPending
}

func (s Sale) IsPaid() bool {
	return s.Status == SaleStatusPaid
}

// SaleTotal prices quantity units at unitPrice.
func SaleTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Sales is the full sales collection, in insertion order.
type Sales []Sale

func (ss Sales) IndexByID(id string) int {
	for i := range ss {
		if ss[i].ID == id {
			return i
		}
	}
	return -1
}

// Owned returns the sales whose ids appear in ids, in collection order.
func (ss Sales) Owned(ids []string) Sales {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	var out Sales
	for _, s := range ss {
		if _, ok := set[s.ID]; ok {
			out = append(out, s)
		}
	}
	return out
}

func (ss Sales) Clone() Sales {
	if ss == nil {
		return nil
	}
	out := make(Sales, len(ss))
	copy(out, ss)
	return out
}
