package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/sales-ledger/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type LedgerTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memStore
	service *Service
	hook    *test.Hook
	now     time.Time
	ids     int
}

func (s *LedgerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = newMemStore()
	s.now = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	s.ids = 0

	var log *logrus.Logger
	log, s.hook = test.NewNullLogger()
	s.service = NewService(s.store, log,
		WithClock(func() time.Time {
			s.now = s.now.Add(time.Second)
			return s.now
		}),
		WithIDGenerator(func() string {
			s.ids++
			return fmt.Sprintf("id-%d", s.ids)
		}),
	)
}

func (s *LedgerTestSuite) addWidget() *models.Product {
	p, err := s.service.AddOrRestockProduct(s.ctx, ProductInput{Name: "Widget", Quantity: 10, Price: dec("2.00")})
	s.Require().NoError(err)
	return p
}

func (s *LedgerTestSuite) products() models.Products {
	p, _, err := s.store.Products(s.ctx)
	s.Require().NoError(err)
	return p
}

func (s *LedgerTestSuite) sales() models.Sales {
	sales, _, err := s.store.Sales(s.ctx)
	s.Require().NoError(err)
	return sales
}

func (s *LedgerTestSuite) clients() models.Clients {
	c, _, err := s.store.Clients(s.ctx)
	s.Require().NoError(err)
	return c
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}
