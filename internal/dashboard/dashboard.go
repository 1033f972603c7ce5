// internal/dashboard/dashboard.go
//
// Package dashboard derives summary views from already-fetched collections.
// Every function is pure and never mutates its input.
package dashboard

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/javajoker/sales-ledger/internal/models"
)

const (
	DefaultLowStockThreshold = 5
	DefaultRecentSales       = 5
)

type StockStatus string

const (
	StockLow    StockStatus = "LOW"
	StockNormal StockStatus = "NORMAL"
)

// Snapshot is one fetch of every collection.
type Snapshot struct {
	Products models.Products
	Sales    models.Sales
	Clients  models.Clients
}

type Totals struct {
	SalesValue decimal.Decimal `json:"sales_value"`
	Debt       decimal.Decimal `json:"debt"`
	Collected  decimal.Decimal `json:"collected"`
	StockValue decimal.Decimal `json:"stock_value"`
}

type StockLine struct {
	Product models.Product  `json:"product"`
	Value   decimal.Decimal `json:"value"`
	Status  StockStatus     `json:"status"`
}

type Options struct {
	LowStockThreshold int
	RecentSales       int
}

func DefaultOptions() Options {
	return Options{
		LowStockThreshold: DefaultLowStockThreshold,
		RecentSales:       DefaultRecentSales,
	}
}

type Summary struct {
	Totals   Totals          `json:"totals"`
	LowStock models.Products `json:"low_stock"`
	Recent   models.Sales    `json:"recent"`
}

func ComputeTotals(sales models.Sales, products models.Products) Totals {
	totals := Totals{
		SalesValue: decimal.Zero,
		Debt:       decimal.Zero,
		Collected:  decimal.Zero,
		StockValue: decimal.Zero,
	}
	for _, s := range sales {
		totals.SalesValue = totals.SalesValue.Add(s.Total)
		switch {
		case s.IsPending():
			totals.Debt = totals.Debt.Add(s.Total)
		case s.IsPaid():
			totals.Collected = totals.Collected.Add(s.Total)
		}
	}
	for _, p := range products {
		totals.StockValue = totals.StockValue.Add(p.StockValue())
	}
	return totals
}

// LowStock returns products with quantity <= threshold, in collection order.
func LowStock(products models.Products, threshold int) models.Products {
	out := models.Products{}
	for _, p := range products {
		if p.Quantity <= threshold {
			out = append(out, p)
		}
	}
	return out
}

// RecentSales returns the last n sales in insertion order, most recent first.
func RecentSales(sales models.Sales, n int) models.Sales {
	if n <= 0 {
		return models.Sales{}
	}
	if n > len(sales) {
		n = len(sales)
	}
	out := make(models.Sales, 0, n)
	for i := len(sales) - 1; i >= len(sales)-n; i-- {
		out = append(out, sales[i])
	}
	return out
}

func StockReport(products models.Products, threshold int) []StockLine {
	lines := make([]StockLine, 0, len(products))
	for _, p := range products {
		status := StockNormal
		if p.Quantity <= threshold {
			status = StockLow
		}
		lines = append(lines, StockLine{Product: p, Value: p.StockValue(), Status: status})
	}
	return lines
}

// SalesHistory returns every sale ordered by date, newest first. Sales with
// equal dates keep reverse insertion order.
func SalesHistory(sales models.Sales) models.Sales {
	out := RecentSales(sales, len(sales))
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// Debtors returns clients that still owe money, sorted by name.
func Debtors(clients models.Clients) []models.Client {
	out := []models.Client{}
	for _, name := range clients.Names() {
		if c := clients[name]; c.HasDebt() {
			out = append(out, c)
		}
	}
	return out
}

func Build(s Snapshot, opts Options) Summary {
	return Summary{
		Totals:   ComputeTotals(s.Sales, s.Products),
		LowStock: LowStock(s.Products, opts.LowStockThreshold),
		Recent:   RecentSales(s.Sales, opts.RecentSales),
	}
}
