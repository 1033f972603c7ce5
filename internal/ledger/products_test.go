package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
)

func (s *LedgerTestSuite) TestAddProductCreatesNewEntry() {
	p := s.addWidget()

	s.Equal("id-1", p.ID)
	s.Equal(10, p.Quantity)
	s.Equal(p.CreatedAt, p.UpdatedAt)

	products := s.products()
	s.Require().Len(products, 1)
	s.Equal("Widget", products[0].Name)
}

func (s *LedgerTestSuite) TestRestockMatchesNameCaseInsensitively() {
	first := s.addWidget()

	p, err := s.service.AddOrRestockProduct(s.ctx, ProductInput{Name: "  wIDGET ", Quantity: 5, Price: dec("3.50")})
	s.Require().NoError(err)

	s.Equal(first.ID, p.ID)
	s.Equal(15, p.Quantity)
	s.True(p.Price.Equal(dec("3.5")), "price is overwritten by the last call")
	s.True(p.UpdatedAt.After(first.UpdatedAt))
	s.Equal(first.CreatedAt, p.CreatedAt)
	s.Len(s.products(), 1)
}

func (s *LedgerTestSuite) TestAddProductValidatesBeforeFetching() {
	cases := []struct {
		input ProductInput
		field string
	}{
		{ProductInput{Name: "  ", Quantity: 1, Price: dec("1")}, "name"},
		{ProductInput{Name: "Widget", Quantity: 0, Price: dec("1")}, "quantity"},
		{ProductInput{Name: "Widget", Quantity: 1, Price: decimal.Zero}, "price"},
		{ProductInput{Name: "Widget", Quantity: 1, Price: dec("-2")}, "price"},
	}
	for _, tc := range cases {
		_, err := s.service.AddOrRestockProduct(s.ctx, tc.input)
		s.Require().ErrorIs(err, ErrValidation)

		var verr *ValidationError
		s.Require().True(errors.As(err, &verr))
		s.Equal(tc.field, verr.Field)
	}
	s.Empty(s.store.calls)
}

func (s *LedgerTestSuite) TestAddProductSurfacesTransportErrors() {
	s.store.failNext("SaveProducts", errInjected)

	_, err := s.service.AddOrRestockProduct(s.ctx, ProductInput{Name: "Widget", Quantity: 1, Price: dec("1")})
	s.ErrorIs(err, ErrTransport)
	s.ErrorIs(err, errInjected)
	s.Empty(s.products())
}

func (s *LedgerTestSuite) TestAddProductDetectsConcurrentWrite() {
	s.addWidget()
	svc := NewService(newStaleView(s.store, 1), discardLogger())

	_, err := svc.AddOrRestockProduct(s.ctx, ProductInput{Name: "Widget", Quantity: 1, Price: dec("1")})
	s.ErrorIs(err, ErrConcurrentModification)
	s.ErrorIs(err, ErrTransport)
	s.Equal(10, s.products()[0].Quantity)
}

func (s *LedgerTestSuite) TestLastWriteWinsSkipsVersionCheck() {
	s.addWidget()
	svc := NewService(newStaleView(s.store, 1), discardLogger(), WithLastWriteWins())

	_, err := svc.AddOrRestockProduct(s.ctx, ProductInput{Name: "Widget", Quantity: 1, Price: dec("1")})
	s.NoError(err)
}

func (s *LedgerTestSuite) TestSellableProductsSkipsEmptyStock() {
	s.addWidget()
	_, err := s.service.AddOrRestockProduct(s.ctx, ProductInput{Name: "Gadget", Quantity: 1, Price: dec("5")})
	s.Require().NoError(err)
	gadget := s.products()[1]
	_, err = s.service.RegisterSale(s.ctx, SaleInput{ClientName: "Bob", ProductID: gadget.ID, Quantity: 1})
	s.Require().NoError(err)

	sellable, err := s.service.SellableProducts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(sellable, 1)
	s.Equal("Widget", sellable[0].Name)
}

func (s *LedgerTestSuite) TestPreviewSaleTotal() {
	p := s.addWidget()

	total, err := s.service.PreviewSaleTotal(s.ctx, p.ID, 3)
	s.Require().NoError(err)
	s.True(total.Equal(dec("6")))

	total, err = s.service.PreviewSaleTotal(s.ctx, "missing", 3)
	s.Require().NoError(err)
	s.True(total.IsZero())

	total, err = s.service.PreviewSaleTotal(s.ctx, p.ID, 0)
	s.Require().NoError(err)
	s.True(total.IsZero())
}
