// internal/ledger/service.go
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/sales-ledger/internal/dashboard"
	"github.com/javajoker/sales-ledger/internal/gateway"
	"github.com/javajoker/sales-ledger/internal/models"
	"github.com/javajoker/sales-ledger/internal/utils"
)

// Store is the remote collection store. Every Save replaces the whole
// collection; expected guards it unless it is models.AnyVersion.
type Store interface {
	Products(ctx context.Context) (models.Products, models.Version, error)
	Sales(ctx context.Context) (models.Sales, models.Version, error)
	Clients(ctx context.Context) (models.Clients, models.Version, error)
	SaveProducts(ctx context.Context, products models.Products, expected models.Version) (models.Version, error)
	SaveSales(ctx context.Context, sales models.Sales, expected models.Version) (models.Version, error)
	SaveClients(ctx context.Context, clients models.Clients, expected models.Version) (models.Version, error)
}

// Service runs the ledger workflows against a Store. Each operation
// re-fetches the collections it touches; nothing is cached between calls.
type Service struct {
	store         Store
	now           func() time.Time
	newID         func() string
	log           *logrus.Entry
	lastWriteWins bool
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithLastWriteWins sends every write without a version check.
func WithLastWriteWins() Option {
	return func(s *Service) { s.lastWriteWins = true }
}

func NewService(store Store, log *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
		log:   log.WithField("component", "ledger"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) expected(v models.Version) models.Version {
	if s.lastWriteWins {
		return models.AnyVersion
	}
	return v
}

// storeError classifies a failed store call.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gateway.ErrConflict) && !errors.Is(err, ErrConcurrentModification) {
		err = errors.Join(ErrConcurrentModification, err)
	}
	return &TransportError{Op: op, Err: err}
}

// validate maps validator failures to the first offending field.
func validate(input interface{}) error {
	err := utils.ValidateStruct(input)
	if err == nil {
		return nil
	}
	if fields := utils.GetValidationErrors(err); len(fields) > 0 {
		return &ValidationError{Field: fields[0].Field, Message: fields[0].Message}
	}
	return &ValidationError{Field: "input", Message: err.Error()}
}

// Snapshot fetches every collection once.
func (s *Service) Snapshot(ctx context.Context) (dashboard.Snapshot, error) {
	products, _, err := s.store.Products(ctx)
	if err != nil {
		return dashboard.Snapshot{}, storeError("fetch products", err)
	}
	sales, _, err := s.store.Sales(ctx)
	if err != nil {
		return dashboard.Snapshot{}, storeError("fetch sales", err)
	}
	clients, _, err := s.store.Clients(ctx)
	if err != nil {
		return dashboard.Snapshot{}, storeError("fetch clients", err)
	}
	return dashboard.Snapshot{Products: products, Sales: sales, Clients: clients}, nil
}
