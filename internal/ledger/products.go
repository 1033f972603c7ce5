// internal/ledger/products.go
package ledger

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/sales-ledger/internal/models"
)

type ProductInput struct {
	Name     string          `json:"name" validate:"notblank"`
	Quantity int             `json:"quantity" validate:"gt=0"`
	Price    decimal.Decimal `json:"price" validate:"gt=0"`
}

// AddOrRestockProduct upserts by case-insensitive name. A match gains the
// quantity and takes the new price; otherwise a new product is appended.
func (s *Service) AddOrRestockProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(&in); err != nil {
		return nil, err
	}

	products, version, err := s.store.Products(ctx)
	if err != nil {
		return nil, storeError("fetch products", err)
	}

	now := s.now()
	products = products.Clone()
	i := products.IndexByName(in.Name)
	if i >= 0 {
		products[i].Quantity += in.Quantity
		products[i].Price = in.Price
		products[i].UpdatedAt = now
	} else {
		products = append(products, models.Product{
			ID:        s.newID(),
			Name:      in.Name,
			Quantity:  in.Quantity,
			Price:     in.Price,
			CreatedAt: now,
			UpdatedAt: now,
		})
		i = len(products) - 1
	}

	if _, err := s.store.SaveProducts(ctx, products, s.expected(version)); err != nil {
		return nil, storeError("save products", err)
	}

	product := products[i]
	s.log.WithFields(logrus.Fields{
		"product":  product.ID,
		"name":     product.Name,
		"quantity": product.Quantity,
		"restock":  !product.CreatedAt.Equal(now),
	}).Info("Product saved")
	return &product, nil
}

// SellableProducts lists products that still have stock.
func (s *Service) SellableProducts(ctx context.Context) (models.Products, error) {
	products, _, err := s.store.Products(ctx)
	if err != nil {
		return nil, storeError("fetch products", err)
	}
	out := models.Products{}
	for _, p := range products {
		if p.InStock() {
			out = append(out, p)
		}
	}
	return out, nil
}

// PreviewSaleTotal prices a prospective sale. Unknown products and
// non-positive quantities preview as zero.
func (s *Service) PreviewSaleTotal(ctx context.Context, productID string, quantity int) (decimal.Decimal, error) {
	if productID == "" || quantity <= 0 {
		return decimal.Zero, nil
	}
	products, _, err := s.store.Products(ctx)
	if err != nil {
		return decimal.Zero, storeError("fetch products", err)
	}
	i := products.IndexByID(productID)
	if i < 0 {
		return decimal.Zero, nil
	}
	return models.SaleTotal(quantity, products[i].Price), nil
}
