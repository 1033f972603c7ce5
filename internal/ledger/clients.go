// internal/ledger/clients.go
package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/sales-ledger/internal/dashboard"
	"github.com/javajoker/sales-ledger/internal/models"
)

// Settlement reports what SettlePayment did. A zero Amount with no settled
// sales means there was nothing to settle.
type Settlement struct {
	ClientName   string
	Amount       decimal.Decimal
	SalesSettled int
	SettledAt    time.Time
}

// SettlePayment marks every PENDING sale of the client PAID and moves the
// whole outstanding debt into the paid total. An unknown client is a no-op.
func (s *Service) SettlePayment(ctx context.Context, clientName string) (*Settlement, error) {
	clientName = strings.TrimSpace(clientName)
	if clientName == "" {
		return nil, &ValidationError{Field: "client", Message: "client is required"}
	}

	clients, clientsVersion, err := s.store.Clients(ctx)
	if err != nil {
		return nil, storeError("fetch clients", err)
	}
	client, ok := clients[clientName]
	if !ok {
		return &Settlement{ClientName: clientName, Amount: decimal.Zero}, nil
	}

	sales, salesVersion, err := s.store.Sales(ctx)
	if err != nil {
		return nil, storeError("fetch sales", err)
	}

	now := s.now()
	sales = sales.Clone()
	var settled []string
	for i := range sales {
		if sales[i].IsPending() && client.Owns(sales[i].ID) {
			paidAt := now
			sales[i].Status = models.SaleStatusPaid
			sales[i].PaidAt = &paidAt
			settled = append(settled, sales[i].ID)
		}
	}

	result := &Settlement{
		ClientName:   clientName,
		Amount:       client.TotalDebt,
		SalesSettled: len(settled),
		SettledAt:    now,
	}
	if len(settled) == 0 && client.TotalDebt.IsZero() {
		result.Amount = decimal.Zero
		return result, nil
	}

	tx := newSaga("settle_payment", s.log)
	if _, err := s.store.SaveSales(ctx, sales, s.expected(salesVersion)); err != nil {
		return nil, storeError("save sales", err)
	}
	tx.compensate("reopen_sales", func(ctx context.Context) error {
		return s.reopenSales(ctx, settled)
	})

	clients = clients.Clone()
	client.TotalPaid = client.TotalPaid.Add(client.TotalDebt)
	client.TotalDebt = decimal.Zero
	clients[clientName] = client
	if _, err := s.store.SaveClients(ctx, clients, s.expected(clientsVersion)); err != nil {
		return nil, tx.abort(ctx, storeError("save clients", err))
	}

	s.log.WithFields(logrus.Fields{
		"client": clientName,
		"amount": result.Amount.String(),
		"sales":  result.SalesSettled,
	}).Info("Payment settled")
	return result, nil
}

func (s *Service) reopenSales(ctx context.Context, ids []string) error {
	sales, version, err := s.store.Sales(ctx)
	if err != nil {
		return storeError("fetch sales", err)
	}
	reopen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		reopen[id] = struct{}{}
	}
	sales = sales.Clone()
	for i := range sales {
		if _, ok := reopen[sales[i].ID]; ok {
			sales[i].Status = models.SaleStatusPending
			sales[i].PaidAt = nil
		}
	}
	if _, err := s.store.SaveSales(ctx, sales, s.expected(version)); err != nil {
		return storeError("save sales", err)
	}
	return nil
}

// Statement is one client's account as recorded and as recomputed from sales.
type Statement struct {
	Client       models.Client
	Sales        models.Sales
	ComputedDebt decimal.Decimal
	ComputedPaid decimal.Decimal
}

// Drifted reports whether the stored totals disagree with the sale list.
func (st Statement) Drifted() bool {
	return !st.Client.TotalDebt.Equal(st.ComputedDebt) || !st.Client.TotalPaid.Equal(st.ComputedPaid)
}

func (s *Service) ClientStatement(ctx context.Context, clientName string) (*Statement, error) {
	clientName = strings.TrimSpace(clientName)
	clients, _, err := s.store.Clients(ctx)
	if err != nil {
		return nil, storeError("fetch clients", err)
	}
	client, ok := clients[clientName]
	if !ok {
		return nil, &NotFoundError{Entity: "client", Key: clientName}
	}
	sales, _, err := s.store.Sales(ctx)
	if err != nil {
		return nil, storeError("fetch sales", err)
	}

	owned := sales.Owned(client.SaleIDs)
	debt, paid := sumByStatus(owned)
	return &Statement{
		Client:       client,
		Sales:        owned,
		ComputedDebt: debt,
		ComputedPaid: paid,
	}, nil
}

// Debtors lists clients that still owe money, sorted by name.
func (s *Service) Debtors(ctx context.Context) ([]models.Client, error) {
	clients, _, err := s.store.Clients(ctx)
	if err != nil {
		return nil, storeError("fetch clients", err)
	}
	return dashboard.Debtors(clients), nil
}

// Correction is one client whose stored totals were rewritten.
type Correction struct {
	ClientName string
	DebtBefore decimal.Decimal
	DebtAfter  decimal.Decimal
	PaidBefore decimal.Decimal
	PaidAfter  decimal.Decimal
	SalesAdded int
}

// ReconcileClientDebt recomputes every client's debt and paid totals from
// the sales collection. Sales are attributed by client name, so a sale whose
// debt accrual never happened is attached to its client (created if needed).
// Clients are written back only when something changed.
func (s *Service) ReconcileClientDebt(ctx context.Context) ([]Correction, error) {
	clients, version, err := s.store.Clients(ctx)
	if err != nil {
		return nil, storeError("fetch clients", err)
	}
	sales, _, err := s.store.Sales(ctx)
	if err != nil {
		return nil, storeError("fetch sales", err)
	}

	byClient := make(map[string]models.Sales)
	for _, sale := range sales {
		byClient[sale.ClientName] = append(byClient[sale.ClientName], sale)
	}

	clients = clients.Clone()
	if clients == nil {
		clients = models.Clients{}
	}
	for name := range byClient {
		if _, ok := clients[name]; !ok {
			clients[name] = models.NewClient(name)
		}
	}

	var corrections []Correction
	for _, name := range clients.Names() {
		client := clients[name]
		owned := byClient[name]
		debt, paid := sumByStatus(owned)

		added := 0
		for _, sale := range owned {
			if !client.Owns(sale.ID) {
				client.SaleIDs = append(client.SaleIDs, sale.ID)
				added++
			}
		}

		if added == 0 && client.TotalDebt.Equal(debt) && client.TotalPaid.Equal(paid) {
			continue
		}
		corrections = append(corrections, Correction{
			ClientName: name,
			DebtBefore: client.TotalDebt,
			DebtAfter:  debt,
			PaidBefore: client.TotalPaid,
			PaidAfter:  paid,
			SalesAdded: added,
		})
		client.TotalDebt = debt
		client.TotalPaid = paid
		clients[name] = client
	}

	if len(corrections) == 0 {
		return nil, nil
	}
	if _, err := s.store.SaveClients(ctx, clients, s.expected(version)); err != nil {
		return nil, storeError("save clients", err)
	}
	s.log.WithField("clients", len(corrections)).Warn("Client balances reconciled")
	return corrections, nil
}

func sumByStatus(sales models.Sales) (pending, paid decimal.Decimal) {
	pending, paid = decimal.Zero, decimal.Zero
	for _, sale := range sales {
		switch sale.Status {
		case models.SaleStatusPending:
			pending = pending.Add(sale.Total)
		case models.SaleStatusPaid:
			paid = paid.Add(sale.Total)
		}
	}
	return pending, paid
}
