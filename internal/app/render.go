// internal/app/render.go
package app

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/javajoker/sales-ledger/internal/dashboard"
	"github.com/javajoker/sales-ledger/internal/i18n"
	"github.com/javajoker/sales-ledger/internal/ledger"
	"github.com/javajoker/sales-ledger/internal/models"
)

const dateLayout = "2006-01-02 15:04"

type translateFunc func(key string, args ...interface{}) string

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func writeLine(w io.Writer, s string) {
	fmt.Fprintln(w, s)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

type saleRow struct {
	ID       string
	Date     time.Time
	Client   string
	Product  string
	Quantity int
	Total    decimal.Decimal
	Status   models.SaleStatus
}

func rowFromSale(s *models.Sale) saleRow {
	return saleRow{
		ID:       s.ID,
		Date:     s.Date,
		Client:   s.ClientName,
		Product:  s.ProductName,
		Quantity: s.Quantity,
		Total:    s.Total,
		Status:   s.Status,
	}
}

func statusLabel(t translateFunc, status models.SaleStatus) string {
	if status == models.SaleStatusPaid {
		return t(i18n.KeySalePaid)
	}
	return t(i18n.KeySalePending)
}

func renderSales(w io.Writer, t translateFunc, rows []saleRow) {
	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tCLIENT\tPRODUCT\tQTY\tTOTAL\tSTATUS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.Date.Local().Format(dateLayout), r.Client, r.Product, r.Quantity, money(r.Total), statusLabel(t, r.Status))
	}
	tw.Flush()
}

func renderProducts(w io.Writer, products models.Products) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.ID, p.Name, p.Quantity, money(p.Price))
	}
	tw.Flush()
}

func renderStock(w io.Writer, t translateFunc, lines []dashboard.StockLine) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tVALUE\tSTATUS")
	for _, l := range lines {
		label := t(i18n.KeyStockNormal)
		if l.Status == dashboard.StockLow {
			label = t(i18n.KeyStockLow)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			l.Product.ID, l.Product.Name, l.Product.Quantity, money(l.Product.Price), money(l.Value), label)
	}
	tw.Flush()
}

func renderClients(w io.Writer, clients []models.Client) {
	tw := newTable(w)
	fmt.Fprintln(tw, "CLIENT\tDEBT\tPAID\tSALES")
	for _, c := range clients {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", c.Name, money(c.TotalDebt), money(c.TotalPaid), len(c.SaleIDs))
	}
	tw.Flush()
}

func renderDashboard(w io.Writer, t translateFunc, s dashboard.Summary) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Total sales\t%s\n", money(s.Totals.SalesValue))
	fmt.Fprintf(tw, "Outstanding debt\t%s\n", money(s.Totals.Debt))
	fmt.Fprintf(tw, "Collected\t%s\n", money(s.Totals.Collected))
	fmt.Fprintf(tw, "Stock value\t%s\n", money(s.Totals.StockValue))
	tw.Flush()

	if len(s.LowStock) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, t(i18n.KeyStockLow)+":")
		renderProducts(w, s.LowStock)
	}
	if len(s.Recent) > 0 {
		fmt.Fprintln(w)
		rows := make([]saleRow, 0, len(s.Recent))
		for i := range s.Recent {
			rows = append(rows, rowFromSale(&s.Recent[i]))
		}
		renderSales(w, t, rows)
	}
}

func renderStatement(w io.Writer, t translateFunc, st *ledger.Statement) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Client\t%s\n", st.Client.Name)
	fmt.Fprintf(tw, "Debt\t%s\n", money(st.Client.TotalDebt))
	fmt.Fprintf(tw, "Paid\t%s\n", money(st.Client.TotalPaid))
	if st.Drifted() {
		fmt.Fprintf(tw, "Debt from sales\t%s\n", money(st.ComputedDebt))
		fmt.Fprintf(tw, "Paid from sales\t%s\n", money(st.ComputedPaid))
	}
	tw.Flush()

	fmt.Fprintln(w)
	rows := make([]saleRow, 0, len(st.Sales))
	for i := range st.Sales {
		rows = append(rows, rowFromSale(&st.Sales[i]))
	}
	renderSales(w, t, rows)
}

func renderCorrections(w io.Writer, corrections []ledger.Correction) {
	tw := newTable(w)
	fmt.Fprintln(tw, "CLIENT\tDEBT BEFORE\tDEBT AFTER\tPAID BEFORE\tPAID AFTER\tSALES ADDED")
	for _, c := range corrections {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			c.ClientName, money(c.DebtBefore), money(c.DebtAfter), money(c.PaidBefore), money(c.PaidAfter), c.SalesAdded)
	}
	tw.Flush()
}
