package ledger

import (
	"github.com/sirupsen/logrus"

	"github.com/javajoker/sales-ledger/internal/gateway"
	"github.com/javajoker/sales-ledger/internal/models"
)

func (s *LedgerTestSuite) TestWorkedExample() {
	widget := s.addWidget()

	sale, err := s.service.RegisterSale(s.ctx, SaleInput{ClientName: "Alice", ProductID: widget.ID, Quantity: 3})
	s.Require().NoError(err)
	s.Equal(7, s.products()[0].Quantity)
	s.True(sale.Total.Equal(dec("6.00")))
	s.Equal(models.SaleStatusPending, sale.Status)
	s.Equal("Widget", sale.ProductName)
	s.True(s.clients()["Alice"].TotalDebt.Equal(dec("6.00")))

	_, err = s.service.RegisterSale(s.ctx, SaleInput{ClientName: "Alice", ProductID: widget.ID, Quantity: 4})
	s.Require().NoError(err)
	s.Equal(3, s.products()[0].Quantity)
	s.True(s.clients()["Alice"].TotalDebt.Equal(dec("14.00")))

	_, err = s.service.RegisterSale(s.ctx, SaleInput{ClientName: "Alice", ProductID: widget.ID, Quantity: 10})
	s.Require().ErrorIs(err, ErrInsufficientStock)
	var stockErr *InsufficientStockError
	s.Require().ErrorAs(err, &stockErr)
	s.Equal(3, stockErr.Available)
	s.Equal(3, s.products()[0].Quantity)
	s.Len(s.sales(), 2)

	settlement, err := s.service.SettlePayment(s.ctx, "Alice")
	s.Require().NoError(err)
	s.True(settlement.Amount.Equal(dec("14.00")))
	s.Equal(2, settlement.SalesSettled)

	for _, sale := range s.sales() {
		s.Equal(models.SaleStatusPaid, sale.Status)
		s.Require().NotNil(sale.PaidAt)
		s.True(settlement.SettledAt.Equal(*sale.PaidAt))
	}
	alice := s.clients()["Alice"]
	s.True(alice.TotalDebt.IsZero())
	s.True(alice.TotalPaid.Equal(dec("14.00")))
	s.Equal([]string{"id-2", "id-3"}, alice.SaleIDs)
}

func (s *LedgerTestSuite) TestRegisterSaleValidation() {
	cases := []struct {
		input SaleInput
		field string
	}{
		{SaleInput{ClientName: " ", ProductID: "p", Quantity: 1}, "client"},
		{SaleInput{ClientName: "Alice", ProductID: "", Quantity: 1}, "product_id"},
		{SaleInput{ClientName: "Alice", ProductID: "p", Quantity: -1}, "quantity"},
	}
	for _, tc := range cases {
		_, err := s.service.RegisterSale(s.ctx, tc.input)
		var verr *ValidationError
		s.Require().ErrorAs(err, &verr)
		s.Equal(tc.field, verr.Field)
	}
	s.Empty(s.store.calls)
}

func (s *LedgerTestSuite) TestRegisterSaleUnknownProduct() {
	s.addWidget()

	_, err := s.service.RegisterSale(s.ctx, SaleInput{ClientName: "Alice", ProductID: "nope", Quantity: 1})
	s.ErrorIs(err, ErrNotFound)
	s.Empty(s.sales())
	s.Empty(s.clients())
}

func (s *LedgerTestSuite) TestRegisterSaleExactStockEmptiesProduct() {
	widget := s.addWidget()

	_, err := s.service.RegisterSale(s.ctx, SaleInput{ClientName: "Alice", ProductID: widget.ID, Quantity: 10})
	s.Require().NoError(err)
	s.Zero(s.products()[0].Quantity)
}

func (s *LedgerTestSuite) TestSalesWriteFailureRestoresStock() {
	widget := s.addWidget()
	s.store.failNext("SaveSales", errInjected)

	_, err := s.service.RegisterSale(s.ctx, SaleInput{ClientName: "Alice", ProductID: widget.ID, Quantity: 3})
	s.Require().ErrorIs(err, ErrTransport)
	s.ErrorIs(err, errInjected)

	s.Equal(10, s.products()[0].Quantity)
	s.Empty(s.sales())
	s.Empty(s.clients())
}

func (s *LedgerTestSuite) TestDebtAccrualFailureUndoesSaleAndStock() {
	widget := s.addWidget()
	s.store.failNext("SaveClients", errInjected)

	_, err := s.service.RegisterSale(s.ctx, SaleInput{ClientName: "Alice", ProductID: widget.ID, Quantity: 3})
	s.Require().Error(err)

	s.Equal(10, s.products()[0].Quantity)
	s.Empty(s.sales())
	s.Empty(s.clients())
}

func (s *LedgerTestSuite) TestDebtAccrualConflictIsReported() {
	widget := s.addWidget()
	s.store.failNext("SaveClients", &gateway.Error{Status: 409, Code: "CONFLICT"})

	_, err := s.service.RegisterSale(s.ctx, SaleInput{ClientName: "Alice", ProductID: widget.ID, Quantity: 3})
	s.ErrorIs(err, ErrConcurrentModification)
	s.Equal(10, s.products()[0].Quantity)
}

func (s *LedgerTestSuite) TestFailedCompensationIsJoinedAndLogged() {
	widget := s.addWidget()
	s.store.failNext("SaveSales", errInjected)
	// The decrement goes through, the restock does not.
	s.store.failNext("SaveProducts", nil, errInjected)

	_, err := s.service.RegisterSale(s.ctx, SaleInput{ClientName: "Alice", ProductID: widget.ID, Quantity: 3})
	s.Require().Error(err)
	s.Contains(err.Error(), "undo restock")

	s.Equal(7, s.products()[0].Quantity)

	var logged bool
	for _, e := range s.hook.AllEntries() {
		if e.Level == logrus.ErrorLevel && e.Data["step"] == "restock" {
			logged = true
		}
	}
	s.True(logged)
}

func (s *LedgerTestSuite) TestDebtAccrualKeepsOtherClients() {
	widget := s.addWidget()

	_, err := s.service.RegisterSale(s.ctx, SaleInput{ClientName: "Alice", ProductID: widget.ID, Quantity: 1})
	s.Require().NoError(err)
	_, err = s.service.RegisterSale(s.ctx, SaleInput{ClientName: "Bob", ProductID: widget.ID, Quantity: 2})
	s.Require().NoError(err)

	clients := s.clients()
	s.Len(clients, 2)
	s.True(clients["Alice"].TotalDebt.Equal(dec("2")))
	s.True(clients["Bob"].TotalDebt.Equal(dec("4")))
}

func (s *LedgerTestSuite) TestAccrueClientDebtIgnoresDuplicateSale() {
	sale := models.Sale{ID: "s1", ClientName: "Alice", Total: dec("5")}

	s.Require().NoError(s.service.AccrueClientDebt(s.ctx, "Alice", sale))
	s.Require().NoError(s.service.AccrueClientDebt(s.ctx, "Alice", sale))

	alice := s.clients()["Alice"]
	s.True(alice.TotalDebt.Equal(dec("5")))
	s.Equal([]string{"s1"}, alice.SaleIDs)
}
