// internal/services/collection_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/sales-ledger/internal/metrics"
	"github.com/javajoker/sales-ledger/internal/models"
	"github.com/javajoker/sales-ledger/internal/utils"
)

type CollectionService struct {
	backend CollectionBackend
	metrics *metrics.StoreMetrics
	log     *logrus.Entry
}

type ReplaceCollectionRequest struct {
	Items   json.RawMessage `json:"items"`
	Version *int64          `json:"version,omitempty"`
}

// ExpectedVersion maps an absent version to AnyVersion.
func (r *ReplaceCollectionRequest) ExpectedVersion() models.Version {
	if r.Version == nil {
		return models.AnyVersion
	}
	return models.Version(*r.Version)
}

// ReplaceResult is what a successful replace reports back.
type ReplaceResult struct {
	Document  *models.CollectionDocument
	ItemCount int
}

func NewCollectionService(backend CollectionBackend, m *metrics.StoreMetrics, log *logrus.Logger) *CollectionService {
	return &CollectionService{
		backend: backend,
		metrics: m,
		log:     log.WithField("component", "collections"),
	}
}

func (s *CollectionService) Get(ctx context.Context, collection string) (*models.CollectionDocument, error) {
	name, ok := models.ParseCollectionName(collection)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	doc, err := s.backend.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveRead(string(name))
	return doc, nil
}

// Replace validates items against the collection's schema and stores them
// as the new full value of the collection.
func (s *CollectionService) Replace(ctx context.Context, collection string, req *ReplaceCollectionRequest, actor string) (*ReplaceResult, error) {
	name, ok := models.ParseCollectionName(collection)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	items, count, err := normalizeItems(name, req.Items)
	if err != nil {
		s.metrics.ObserveWrite(string(name), metrics.OutcomeInvalid)
		return nil, err
	}

	expected := req.ExpectedVersion()
	doc, err := s.backend.Store(ctx, &models.CollectionDocument{
		Name:      name,
		Items:     items,
		UpdatedBy: actor,
	}, expected)
	if err != nil {
		if errors.Is(err, ErrVersionConflict) {
			s.metrics.ObserveWrite(string(name), metrics.OutcomeConflict)
			s.log.WithFields(logrus.Fields{
				"collection": name,
				"expected":   expected,
				"actor":      actor,
			}).Warn("Rejected stale collection write")
			return nil, err
		}
		s.metrics.ObserveWrite(string(name), metrics.OutcomeError)
		return nil, err
	}

	s.metrics.ObserveWrite(string(name), metrics.OutcomeSuccess)
	s.metrics.ObserveStored(string(name), count, int64(doc.Version))
	s.log.WithFields(logrus.Fields{
		"collection": name,
		"version":    doc.Version,
		"items":      count,
		"actor":      actor,
		"checked":    expected.Checked(),
	}).Info("Collection replaced")

	return &ReplaceResult{Document: doc, ItemCount: count}, nil
}

// normalizeItems decodes raw into the typed collection, validates every
// element and re-encodes it. A missing or null body is an empty collection.
func normalizeItems(name models.CollectionName, raw json.RawMessage) (json.RawMessage, int, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		raw = name.EmptyItems()
	}

	var (
		value interface{}
		count int
		err   error
	)
	switch name {
	case models.CollectionProducts:
		var products models.Products
		if err = decodeStrict(raw, &products); err == nil {
			err = validateProducts(products)
		}
		value, count = products, len(products)
	case models.CollectionSales:
		var sales models.Sales
		if err = decodeStrict(raw, &sales); err == nil {
			err = validateSales(sales)
		}
		value, count = sales, len(sales)
	case models.CollectionClients:
		var clients models.Clients
		if err = decodeStrict(raw, &clients); err == nil {
			err = validateClients(clients)
		}
		value, count = clients, len(clients)
	}
	if err != nil {
		return nil, 0, asPayloadError(name, err)
	}

	if value == nil || count == 0 {
		return name.EmptyItems(), 0, nil
	}
	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode collection %s: %w", name, err)
	}
	return normalized, count, nil
}

func decodeStrict(raw json.RawMessage, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func asPayloadError(name models.CollectionName, err error) error {
	var pe *PayloadError
	if errors.As(err, &pe) {
		pe.Collection = name
		return pe
	}
	if fields := utils.GetValidationErrors(err); len(fields) > 0 {
		return &PayloadError{Collection: name, Fields: fields}
	}
	return &PayloadError{Collection: name, Err: err}
}

func validateProducts(products models.Products) error {
	if err := utils.ValidateSlice(products); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(products))
	for i, p := range products {
		if _, dup := seen[p.ID]; dup {
			return duplicateField(fmt.Sprintf("[%d].id", i), "duplicate product id "+p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func validateSales(sales models.Sales) error {
	if err := utils.ValidateSlice(sales); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(sales))
	for i, s := range sales {
		if _, dup := seen[s.ID]; dup {
			return duplicateField(fmt.Sprintf("[%d].id", i), "duplicate sale id "+s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

func validateClients(clients models.Clients) error {
	if err := utils.ValidateSlice(clients); err != nil {
		return err
	}
	for key, c := range clients {
		if c.Name != key {
			return duplicateField(fmt.Sprintf("[%s].name", key), "client name must match its key")
		}
	}
	return nil
}

func duplicateField(field, message string) *PayloadError {
	return &PayloadError{Fields: []utils.ValidationError{{
		Field:   field,
		Tag:     "unique",
		Message: message,
	}}}
}
