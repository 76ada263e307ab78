package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ecobazaarx/ecobazaar/internal/domain"
	"github.com/ecobazaarx/ecobazaar/internal/store"
	"github.com/ecobazaarx/ecobazaar/pkg/idx"
)

const (
	// DefaultPageSize bounds unpaged listing requests.
	DefaultPageSize = 20
	// MaxPageSize caps explicit limit parameters.
	MaxPageSize = 100
)

var (
	ErrForbidden       = errors.New("forbidden")
	ErrProductNotFound = errors.New("product_not_found")
)

// ProductService owns the catalogue. Sellers manage their own listings;
// admins may touch anything.
type ProductService struct {
	Store store.Store
}

// ProductParams carries the mutable product fields.
type ProductParams struct {
	Name        string
	Description string
	Category    string
	PricePaise  int64
	CarbonGrams int64
	Stock       int64
	Featured    bool
	ImageURL    string
}

func validateProduct(p ProductParams) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(p.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrValidation)
	}
	if p.PricePaise < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if p.CarbonGrams < 0 {
		return fmt.Errorf("%w: carbon footprint must not be negative", ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrValidation)
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, sellerID string, p ProductParams) (domain.Product, error) {
	if err := validateProduct(p); err != nil {
		return domain.Product{}, err
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:          idx.New().String(),
		SellerID:    sellerID,
		Name:        strings.TrimSpace(p.Name),
		Description: p.Description,
		Category:    strings.TrimSpace(p.Category),
		PricePaise:  p.PricePaise,
		CarbonGrams: p.CarbonGrams,
		Stock:       p.Stock,
		Featured:    p.Featured,
		ImageURL:    p.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Store.Products().CreateProduct(ctx, product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.Store.Products().GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, err
	}
	return product, nil
}

// List pages through the catalogue. Limits outside [1, MaxPageSize]
// collapse to the defaults.
func (s *ProductService) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	products, err := s.Store.Products().ListProducts(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Store.Products().CountProducts(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Update rewrites a listing. Only the owning seller or an admin may
// modify it.
func (s *ProductService) Update(ctx context.Context, actorID string, actorRole domain.Role, id string, p ProductParams) (domain.Product, error) {
	if err := validateProduct(p); err != nil {
		return domain.Product{}, err
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if actorRole != domain.RoleAdmin && existing.SellerID != actorID {
		return domain.Product{}, ErrForbidden
	}

	existing.Name = strings.TrimSpace(p.Name)
	existing.Description = p.Description
	existing.Category = strings.TrimSpace(p.Category)
	existing.PricePaise = p.PricePaise
	existing.CarbonGrams = p.CarbonGrams
	existing.Stock = p.Stock
	existing.Featured = p.Featured
	existing.ImageURL = p.ImageURL
	existing.UpdatedAt = time.Now().UTC()

	if err := s.Store.Products().UpdateProduct(ctx, existing); err != nil {
		return domain.Product{}, err
	}
	return existing, nil
}

func (s *ProductService) Delete(ctx context.Context, actorID string, actorRole domain.Role, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if actorRole != domain.RoleAdmin && existing.SellerID != actorID {
		return ErrForbidden
	}

	if err := s.Store.Products().DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

// Stats aggregates catalogue and paid-order figures for one seller.
func (s *ProductService) Stats(ctx context.Context, sellerID string) (domain.SellerStats, error) {
	return s.Store.Products().SellerStats(ctx, sellerID)
}
