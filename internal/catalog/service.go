package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stockdesk/stockdesk/internal/connectivity"
	"github.com/stockdesk/stockdesk/internal/mirror"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// RepositoryPort abstracts product writes to the remote store.
type RepositoryPort interface {
	Insert(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) error
	Delete(ctx context.Context, id string) error
}

// Service owns product CRUD over the synced collection.
type Service struct {
	conn     *connectivity.State
	repo     RepositoryPort
	mirror   mirror.View[Product]
	validate *validator.Validate
}

// NewService builds the Service.
func NewService(conn *connectivity.State, repo RepositoryPort, m mirror.View[Product]) *Service {
	return &Service{conn: conn, repo: repo, mirror: m, validate: validator.New()}
}

// List returns the current product snapshot (live or cached).
func (s *Service) List(ctx context.Context) []Product {
	return s.mirror.Items()
}

// Loading reports the sync component's loading flag.
func (s *Service) Loading() bool { return s.mirror.Loading() }

// SyncErr reports the sticky subscription error, if any.
func (s *Service) SyncErr() error { return s.mirror.Err() }

// Get finds a product by id in the loaded set.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	for _, p := range s.mirror.Items() {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("product %s: %w", id, shared.ErrNotFound)
}

// Create validates input, enforces SKU uniqueness against the loaded set,
// and writes the product to the remote store.
func (s *Service) Create(ctx context.Context, input ProductInput) (Product, error) {
	if !s.conn.Online() {
		return Product{}, shared.OfflineError("create a product")
	}
	if err := s.validateInput(input); err != nil {
		return Product{}, err
	}
	if s.skuTaken(input.SKU, "") {
		return Product{}, &shared.UniquenessError{Field: "sku", Value: input.SKU}
	}
	now := time.Now().UTC()
	p := Product{
		ID:           uuid.NewString(),
		SKU:          strings.TrimSpace(input.SKU),
		Model:        strings.TrimSpace(input.Model),
		Brand:        input.Brand,
		Category:     input.Category,
		Description:  input.Description,
		ReorderPoint: input.ReorderPoint,
		IsSerialized: input.IsSerialized,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return Product{}, fmt.Errorf("catalog: create product: %w", err)
	}
	return p, nil
}

// Update validates input and writes changed fields to the remote store.
func (s *Service) Update(ctx context.Context, id string, input ProductInput) error {
	if !s.conn.Online() {
		return shared.OfflineError("edit a product")
	}
	if err := s.validateInput(input); err != nil {
		return err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if s.skuTaken(input.SKU, id) {
		return &shared.UniquenessError{Field: "sku", Value: input.SKU}
	}
	current.SKU = strings.TrimSpace(input.SKU)
	current.Model = strings.TrimSpace(input.Model)
	current.Brand = input.Brand
	current.Category = input.Category
	current.Description = input.Description
	current.ReorderPoint = input.ReorderPoint
	current.IsSerialized = input.IsSerialized
	current.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, current); err != nil {
		return fmt.Errorf("catalog: update product: %w", err)
	}
	return nil
}

// Delete removes a product from the remote store.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !s.conn.Online() {
		return shared.OfflineError("delete a product")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("catalog: delete product: %w", err)
	}
	return nil
}

func (s *Service) validateInput(input ProductInput) error {
	if err := s.validate.Struct(input); err != nil {
		issues := &shared.ValidationError{}
		for _, fieldErr := range err.(validator.ValidationErrors) {
			issues.Add("field %s failed %s validation", fieldErr.Field(), fieldErr.Tag())
		}
		return issues
	}
	return nil
}

// skuTaken scans the loaded product set case-insensitively. A race between
// two concurrent clients is not prevented here; the database unique index
// is the backstop.
func (s *Service) skuTaken(sku, excludeID string) bool {
	want := strings.ToLower(strings.TrimSpace(sku))
	for _, p := range s.mirror.Items() {
		if p.ID == excludeID {
			continue
		}
		if strings.ToLower(p.SKU) == want {
			return true
		}
	}
	return false
}
