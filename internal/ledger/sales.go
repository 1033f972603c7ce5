// internal/ledger/sales.go
package ledger

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/sales-ledger/internal/models"
)

type SaleInput struct {
	ClientName string `json:"client" validate:"notblank"`
	ProductID  string `json:"product_id" validate:"notblank"`
	Quantity   int    `json:"quantity" validate:"gt=0"`
}

// RegisterSale decrements stock, records a PENDING sale and accrues the
// client's debt. When recording the sale or the debt fails, the writes that
// already went through are undone.
func (s *Service) RegisterSale(ctx context.Context, in SaleInput) (*models.Sale, error) {
	in.ClientName = strings.TrimSpace(in.ClientName)
	in.ProductID = strings.TrimSpace(in.ProductID)
	if err := validate(&in); err != nil {
		return nil, err
	}

	products, productsVersion, err := s.store.Products(ctx)
	if err != nil {
		return nil, storeError("fetch products", err)
	}
	i := products.IndexByID(in.ProductID)
	if i < 0 {
		return nil, &NotFoundError{Entity: "product", Key: in.ProductID}
	}
	product := products[i]
	if in.Quantity > product.Quantity {
		return nil, &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   in.Quantity,
			Available:   product.Quantity,
		}
	}

	tx := newSaga("register_sale", s.log)

	products = products.Clone()
	products[i].Quantity -= in.Quantity
	products[i].UpdatedAt = s.now()
	if _, err := s.store.SaveProducts(ctx, products, s.expected(productsVersion)); err != nil {
		return nil, storeError("save products", err)
	}
	tx.compensate("restock", func(ctx context.Context) error {
		return s.adjustStock(ctx, product.ID, in.Quantity)
	})

	sale := models.Sale{
		ID:          s.newID(),
		ClientName:  in.ClientName,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    in.Quantity,
		UnitPrice:   product.Price,
		Total:       models.SaleTotal(in.Quantity, product.Price),
		Date:        s.now(),
		Status:      models.SaleStatusPending,
	}

	sales, salesVersion, err := s.store.Sales(ctx)
	if err != nil {
		return nil, tx.abort(ctx, storeError("fetch sales", err))
	}
	sales = append(sales.Clone(), sale)
	if _, err := s.store.SaveSales(ctx, sales, s.expected(salesVersion)); err != nil {
		return nil, tx.abort(ctx, storeError("save sales", err))
	}
	tx.compensate("remove_sale", func(ctx context.Context) error {
		return s.removeSale(ctx, sale.ID)
	})

	if err := s.AccrueClientDebt(ctx, sale.ClientName, sale); err != nil {
		return nil, tx.abort(ctx, err)
	}

	s.log.WithFields(logrus.Fields{
		"sale":     sale.ID,
		"client":   sale.ClientName,
		"product":  sale.ProductID,
		"quantity": sale.Quantity,
		"total":    sale.Total.String(),
	}).Info("Sale registered")
	return &sale, nil
}

// AccrueClientDebt attaches sale to the named client, creating the client on
// first use, and adds the sale total to its debt.
func (s *Service) AccrueClientDebt(ctx context.Context, clientName string, sale models.Sale) error {
	clients, version, err := s.store.Clients(ctx)
	if err != nil {
		return storeError("fetch clients", err)
	}

	clients = clients.Clone()
	if clients == nil {
		clients = models.Clients{}
	}
	client, ok := clients[clientName]
	if !ok {
		client = models.NewClient(clientName)
	}
	if client.Owns(sale.ID) {
		return nil
	}
	client.SaleIDs = append(client.SaleIDs, sale.ID)
	client.TotalDebt = client.TotalDebt.Add(sale.Total)
	clients[clientName] = client

	if _, err := s.store.SaveClients(ctx, clients, s.expected(version)); err != nil {
		return storeError("save clients", err)
	}
	return nil
}

// adjustStock adds delta units back to a product, re-reading the current
// collection first.
func (s *Service) adjustStock(ctx context.Context, productID string, delta int) error {
	products, version, err := s.store.Products(ctx)
	if err != nil {
		return storeError("fetch products", err)
	}
	i := products.IndexByID(productID)
	if i < 0 {
		return &NotFoundError{Entity: "product", Key: productID}
	}
	products = products.Clone()
	products[i].Quantity += delta
	products[i].UpdatedAt = s.now()
	if _, err := s.store.SaveProducts(ctx, products, s.expected(version)); err != nil {
		return storeError("save products", err)
	}
	return nil
}

func (s *Service) removeSale(ctx context.Context, saleID string) error {
	sales, version, err := s.store.Sales(ctx)
	if err != nil {
		return storeError("fetch sales", err)
	}
	i := sales.IndexByID(saleID)
	if i < 0 {
		return nil
	}
	kept := make(models.Sales, 0, len(sales)-1)
	kept = append(kept, sales[:i]...)
	kept = append(kept, sales[i+1:]...)
	if _, err := s.store.SaveSales(ctx, kept, s.expected(version)); err != nil {
		return storeError("save sales", err)
	}
	return nil
}
