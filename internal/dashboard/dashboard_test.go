package dashboard

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/sales-ledger/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sale(id string, total string, status models.SaleStatus, date time.Time) models.Sale {
	return models.Sale{ID: id, ClientName: "Alice", ProductID: "p1", Quantity: 1, UnitPrice: dec(total), Total: dec(total), Status: status, Date: date}
}

func TestComputeTotals(t *testing.T) {
	now := time.Now()
	sales := models.Sales{
		sale("s1", "6.00", models.SaleStatusPaid, now),
		sale("s2", "8.00", models.SaleStatusPending, now),
		sale("s3", "1.50", models.SaleStatusPending, now),
	}
	products := models.Products{
		{ID: "p1", Name: "Widget", Quantity: 3, Price: dec("2.00")},
		{ID: "p2", Name: "Gadget", Quantity: 0, Price: dec("9.99")},
	}

	totals := ComputeTotals(sales, products)
	assert.True(t, totals.SalesValue.Equal(dec("15.50")))
	assert.True(t, totals.Debt.Equal(dec("9.50")))
	assert.True(t, totals.Collected.Equal(dec("6")))
	assert.True(t, totals.StockValue.Equal(dec("6")))
}

func TestComputeTotalsOfNothingIsZero(t *testing.T) {
	totals := ComputeTotals(nil, nil)
	assert.True(t, totals.SalesValue.IsZero())
	assert.True(t, totals.StockValue.IsZero())
}

func TestLowStockBoundaryIsInclusive(t *testing.T) {
	products := models.Products{
		{ID: "a", Quantity: 6},
		{ID: "b", Quantity: 5},
		{ID: "c", Quantity: 0},
	}

	low := LowStock(products, DefaultLowStockThreshold)
	require.Len(t, low, 2)
	assert.Equal(t, "b", low[0].ID)
	assert.Equal(t, "c", low[1].ID)
}

func TestRecentSalesMostRecentFirst(t *testing.T) {
	now := time.Now()
	var sales models.Sales
	for _, id := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		sales = append(sales, sale(id, "1", models.SaleStatusPending, now))
	}

	recent := RecentSales(sales, DefaultRecentSales)
	ids := make([]string, 0, len(recent))
	for _, s := range recent {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"7", "6", "5", "4", "3"}, ids)

	assert.Len(t, RecentSales(sales[:2], 5), 2)
	assert.Empty(t, RecentSales(sales, 0))
}

func TestRecentSalesDoesNotAliasInput(t *testing.T) {
	sales := models.Sales{sale("1", "1", models.SaleStatusPending, time.Now())}
	recent := RecentSales(sales, 1)
	recent[0].ID = "changed"
	assert.Equal(t, "1", sales[0].ID)
}

func TestStockReport(t *testing.T) {
	lines := StockReport(models.Products{
		{ID: "a", Quantity: 2, Price: dec("1.25")},
		{ID: "b", Quantity: 10, Price: dec("3")},
	}, 5)

	require.Len(t, lines, 2)
	assert.Equal(t, StockLow, lines[0].Status)
	assert.True(t, lines[0].Value.Equal(dec("2.5")))
	assert.Equal(t, StockNormal, lines[1].Status)
}

func TestSalesHistoryNewestFirst(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	sales := models.Sales{
		sale("old", "1", models.SaleStatusPaid, base),
		sale("new", "1", models.SaleStatusPending, base.Add(48*time.Hour)),
		sale("mid", "1", models.SaleStatusPending, base.Add(24*time.Hour)),
	}

	history := SalesHistory(sales)
	assert.Equal(t, "new", history[0].ID)
	assert.Equal(t, "mid", history[1].ID)
	assert.Equal(t, "old", history[2].ID)
}

func TestDebtorsSortedByName(t *testing.T) {
	clients := models.Clients{
		"Carol": {Name: "Carol", TotalDebt: dec("3")},
		"Alice": {Name: "Alice", TotalDebt: dec("1")},
		"Bob":   {Name: "Bob", TotalDebt: decimal.Zero},
	}

	debtors := Debtors(clients)
	require.Len(t, debtors, 2)
	assert.Equal(t, "Alice", debtors[0].Name)
	assert.Equal(t, "Carol", debtors[1].Name)
}

func TestBuild(t *testing.T) {
	summary := Build(Snapshot{
		Products: models.Products{{ID: "p1", Quantity: 5, Price: dec("2")}},
		Sales:    models.Sales{sale("s1", "4", models.SaleStatusPending, time.Now())},
	}, DefaultOptions())

	assert.True(t, summary.Totals.Debt.Equal(dec("4")))
	assert.Len(t, summary.LowStock, 1)
	assert.Len(t, summary.Recent, 1)
}
