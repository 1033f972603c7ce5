// internal/models/client.go
package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Client is keyed by name; there is no separate identifier.
type Client struct {
	Name      string          `json:"name" validate:"required"`
	SaleIDs   []string        `json:"sales"`
	TotalDebt decimal.Decimal `json:"total_debt" validate:"gte=0"`
	TotalPaid decimal.Decimal `json:"total_paid" validate:"gte=0"`
}

func NewClient(name string) Client {
	return Client{
		Name:      name,
		SaleIDs:   []string{},
		TotalDebt: decimal.Zero,
		TotalPaid: decimal.Zero,
	}
}

func (c Client) HasDebt() bool {
	return c.TotalDebt.IsPositive()
}

func (c Client) Owns(saleID string) bool {
	for _, id := range c.SaleIDs {
		if id == saleID {
			return true
		}
	}
	return false
}

// Clients is the full clients collection keyed by client name.
type Clients map[string]Client

// Names returns the client names in lexical order.
func (cs Clients) Names() []string {
	names := make([]string, 0, len(cs))
	for name := range cs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (cs Clients) Clone() Clients {
	if cs == nil {
		return nil
	}
	out := make(Clients, len(cs))
	for name, c := range cs {
		c.SaleIDs = append([]string(nil), c.SaleIDs...)
		out[name] = c
	}
	return out
}
