package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/javajoker/sales-ledger/internal/models"
)

func (s *LedgerTestSuite) sellToAlice(quantities ...int) {
	widget := s.addWidget()
	for _, q := range quantities {
		_, err := s.service.RegisterSale(s.ctx, SaleInput{ClientName: "Alice", ProductID: widget.ID, Quantity: q})
		s.Require().NoError(err)
	}
}

func (s *LedgerTestSuite) TestSettleUnknownClientIsNoop() {
	settlement, err := s.service.SettlePayment(s.ctx, "Nobody")
	s.Require().NoError(err)
	s.True(settlement.Amount.IsZero())
	s.Zero(settlement.SalesSettled)
	s.NotContains(s.store.calls, "SaveSales")
	s.NotContains(s.store.calls, "SaveClients")
}

func (s *LedgerTestSuite) TestSettleOnlyTouchesOwnSales() {
	widget := s.addWidget()
	_, err := s.service.RegisterSale(s.ctx, SaleInput{ClientName: "Alice", ProductID: widget.ID, Quantity: 1})
	s.Require().NoError(err)
	_, err = s.service.RegisterSale(s.ctx, SaleInput{ClientName: "Bob", ProductID: widget.ID, Quantity: 1})
	s.Require().NoError(err)

	_, err = s.service.SettlePayment(s.ctx, "Alice")
	s.Require().NoError(err)

	for _, sale := range s.sales() {
		if sale.ClientName == "Bob" {
			s.Equal(models.SaleStatusPending, sale.Status)
			s.Nil(sale.PaidAt)
		} else {
			s.Equal(models.SaleStatusPaid, sale.Status)
		}
	}
	s.True(s.clients()["Bob"].TotalDebt.Equal(dec("2")))
}

func (s *LedgerTestSuite) TestSettleTwiceHasNothingToDo() {
	s.sellToAlice(2)
	_, err := s.service.SettlePayment(s.ctx, "Alice")
	s.Require().NoError(err)

	settlement, err := s.service.SettlePayment(s.ctx, "Alice")
	s.Require().NoError(err)
	s.True(settlement.Amount.IsZero())
	s.Zero(settlement.SalesSettled)
	s.True(s.clients()["Alice"].TotalPaid.Equal(dec("4")))
}

func (s *LedgerTestSuite) TestClientsWriteFailureReopensSales() {
	s.sellToAlice(1, 2)
	s.store.failNext("SaveClients", errInjected)

	_, err := s.service.SettlePayment(s.ctx, "Alice")
	s.Require().ErrorIs(err, errInjected)

	for _, sale := range s.sales() {
		s.Equal(models.SaleStatusPending, sale.Status)
		s.Nil(sale.PaidAt)
	}
	alice := s.clients()["Alice"]
	s.True(alice.TotalDebt.Equal(dec("6")))
	s.True(alice.TotalPaid.IsZero())
}

func (s *LedgerTestSuite) TestSettleRequiresClientName() {
	_, err := s.service.SettlePayment(s.ctx, "  ")
	s.ErrorIs(err, ErrValidation)
}

func (s *LedgerTestSuite) TestClientStatement() {
	s.sellToAlice(1, 2)

	st, err := s.service.ClientStatement(s.ctx, "Alice")
	s.Require().NoError(err)
	s.Len(st.Sales, 2)
	s.True(st.ComputedDebt.Equal(dec("6")))
	s.False(st.Drifted())

	_, err = s.service.ClientStatement(s.ctx, "Nobody")
	s.ErrorIs(err, ErrNotFound)
}

func (s *LedgerTestSuite) TestDebtors() {
	s.sellToAlice(1)
	s.Require().NoError(s.service.AccrueClientDebt(s.ctx, "Bob", models.Sale{ID: "x", Total: decimal.Zero}))

	debtors, err := s.service.Debtors(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(debtors, 1)
	s.Equal("Alice", debtors[0].Name)
}

func (s *LedgerTestSuite) TestReconcileIsNoopWhenConsistent() {
	s.sellToAlice(1, 2)
	_, err := s.service.SettlePayment(s.ctx, "Alice")
	s.Require().NoError(err)
	s.sellToAlice(1)

	saves := countCalls(s.store.calls, "SaveClients")
	corrections, err := s.service.ReconcileClientDebt(s.ctx)
	s.Require().NoError(err)
	s.Empty(corrections)
	s.Equal(saves, countCalls(s.store.calls, "SaveClients"))
}

func (s *LedgerTestSuite) TestReconcileFixesDriftedTotals() {
	s.sellToAlice(1, 2)

	clients := s.clients()
	alice := clients["Alice"]
	alice.TotalDebt = dec("100")
	clients["Alice"] = alice
	_, err := s.store.SaveClients(s.ctx, clients, models.AnyVersion)
	s.Require().NoError(err)

	corrections, err := s.service.ReconcileClientDebt(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(corrections, 1)
	s.True(corrections[0].DebtBefore.Equal(dec("100")))
	s.True(corrections[0].DebtAfter.Equal(dec("6")))
	s.True(s.clients()["Alice"].TotalDebt.Equal(dec("6")))
}

func (s *LedgerTestSuite) TestReconcileAttachesOrphanSales() {
	orphan := models.Sale{
		ID: "orphan", ClientName: "Carol", ProductID: "p", Quantity: 1,
		UnitPrice: dec("3"), Total: dec("3"), Status: models.SaleStatusPending,
	}
	_, err := s.store.SaveSales(s.ctx, models.Sales{orphan}, models.AnyVersion)
	s.Require().NoError(err)

	corrections, err := s.service.ReconcileClientDebt(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(corrections, 1)
	s.Equal(1, corrections[0].SalesAdded)

	carol := s.clients()["Carol"]
	s.Equal([]string{"orphan"}, carol.SaleIDs)
	s.True(carol.TotalDebt.Equal(dec("3")))
}

func (s *LedgerTestSuite) TestSnapshot() {
	s.sellToAlice(4)

	snap, err := s.service.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Len(snap.Products, 1)
	s.Len(snap.Sales, 1)
	s.Len(snap.Clients, 1)
}

func countCalls(calls []string, op string) int {
	n := 0
	for _, c := range calls {
		if c == op {
			n++
		}
	}
	return n
}
