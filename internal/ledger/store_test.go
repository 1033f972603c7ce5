package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/sales-ledger/internal/gateway"
	"github.com/javajoker/sales-ledger/internal/models"
)

var errInjected = errors.New("injected store failure")

// memStore is an in-memory Store that round-trips through JSON like the
// real gateway and enforces version checks like the server.
type memStore struct {
	mu       sync.Mutex
	data     map[models.CollectionName][]byte
	versions map[models.CollectionName]models.Version
	// failures maps an operation name to the errors returned by its next calls.
	failures map[string][]error
	calls    []string
}

func newMemStore() *memStore {
	return &memStore{
		data:     make(map[models.CollectionName][]byte),
		versions: make(map[models.CollectionName]models.Version),
		failures: make(map[string][]error),
	}
}

// failNext makes the next call of op return err. A nil err lets that call through.
func (m *memStore) failNext(op string, errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = append(m.failures[op], errs...)
}

func (m *memStore) injected(op string) error {
	m.calls = append(m.calls, op)
	queue := m.failures[op]
	if len(queue) == 0 {
		return nil
	}
	m.failures[op] = queue[1:]
	return queue[0]
}

func (m *memStore) load(op string, name models.CollectionName, into interface{}) (models.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected(op); err != nil {
		return 0, err
	}
	if raw, ok := m.data[name]; ok {
		if err := json.Unmarshal(raw, into); err != nil {
			return 0, err
		}
	}
	return m.versions[name], nil
}

func (m *memStore) save(op string, name models.CollectionName, value interface{}, expected models.Version) (models.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected(op); err != nil {
		return 0, err
	}
	if expected.Checked() && expected != m.versions[name] {
		return 0, &gateway.Error{Status: 409, Code: "CONFLICT", Message: "stale version"}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return 0, err
	}
	m.data[name] = raw
	m.versions[name]++
	return m.versions[name], nil
}

func (m *memStore) Products(ctx context.Context) (models.Products, models.Version, error) {
	var out models.Products
	v, err := m.load("Products", models.CollectionProducts, &out)
	return out, v, err
}

func (m *memStore) Sales(ctx context.Context) (models.Sales, models.Version, error) {
	var out models.Sales
	v, err := m.load("Sales", models.CollectionSales, &out)
	return out, v, err
}

func (m *memStore) Clients(ctx context.Context) (models.Clients, models.Version, error) {
	out := models.Clients{}
	v, err := m.load("Clients", models.CollectionClients, &out)
	return out, v, err
}

func (m *memStore) SaveProducts(ctx context.Context, p models.Products, expected models.Version) (models.Version, error) {
	return m.save("SaveProducts", models.CollectionProducts, p, expected)
}

func (m *memStore) SaveSales(ctx context.Context, s models.Sales, expected models.Version) (models.Version, error) {
	return m.save("SaveSales", models.CollectionSales, s, expected)
}

func (m *memStore) SaveClients(ctx context.Context, c models.Clients, expected models.Version) (models.Version, error) {
	return m.save("SaveClients", models.CollectionClients, c, expected)
}

// staleView reports product versions lagging the real store, as if another
// session wrote right after our fetch.
type staleView struct {
	*memStore
	lag models.Version
}

func newStaleView(m *memStore, lag models.Version) *staleView {
	return &staleView{memStore: m, lag: lag}
}

func (v *staleView) Products(ctx context.Context) (models.Products, models.Version, error) {
	p, version, err := v.memStore.Products(ctx)
	return p, version - v.lag, err
}

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
