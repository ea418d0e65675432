package service

import (
	"context"
	"strings"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
	"github.com/Mr-Shodiyorov/admin-page/internal/events"
	"github.com/Mr-Shodiyorov/admin-page/internal/metrics"
	"github.com/Mr-Shodiyorov/admin-page/internal/repository"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/text/cases"
)

// GenderAll disables the gender filter.
const GenderAll = "all"

// Filter narrows the product list the way the storefront search box does.
type Filter struct {
	// Query matches title or brand, ignoring case
	Query string
	// Gender is a gender tag, empty or GenderAll for every product
	Gender string
}

type ProductService interface {
	ListProducts(ctx context.Context, filter Filter) (domain.Products, error)
	GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error)
	CreateProduct(ctx context.Context, payload domain.Payload) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id domain.ProductID, payload domain.Payload) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id domain.ProductID) error
}

type productService struct {
	repo     repository.ProductRepository
	eventBus *events.EventBus[any]
	logger   hclog.Logger
}

func NewProductService(repo repository.ProductRepository, eventBus *events.EventBus[any], logger hclog.Logger) ProductService {
	return &productService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *productService) ListProducts(ctx context.Context, filter Filter) (domain.Products, error) {
	s.logger.Debug("Getting products", "query", filter.Query, "gender", filter.Gender)

	products, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Unable to get products", "error", err)
		return nil, &domain.FetchError{Err: err}
	}

	return filter.apply(products), nil
}

func (f Filter) apply(products domain.Products) domain.Products {
	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(f.Query))
	gender := strings.TrimSpace(f.Gender)

	filtered := make(domain.Products, 0, len(products))
	for _, p := range products {
		if gender != "" && gender != GenderAll && string(p.Gender) != gender {
			continue
		}
		if query != "" &&
			!strings.Contains(fold.String(p.Title), query) &&
			!strings.Contains(fold.String(p.Brand), query) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

func (s *productService) GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	s.logger.Debug("Getting product by ID", "id", id)

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Unable to get the product by ID", "id", id, "error", err)
		return nil, err
	}

	return product, nil
}

func (s *productService) CreateProduct(ctx context.Context, payload domain.Payload) (*domain.Product, error) {
	s.logger.Debug("Adding new product", "title", payload.Title)

	product, err := s.repo.Create(ctx, payload)
	metrics.RecordMutation("create", err)
	if err != nil {
		s.logger.Error("Unable to add product", "title", payload.Title, "error", err)
		return nil, err
	}

	s.eventBus.Publish(events.ProductAdded{ProductID: product.ID, Title: product.Title})
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id domain.ProductID, payload domain.Payload) (*domain.Product, error) {
	s.logger.Debug("Updating product", "id", id)

	product, err := s.repo.Update(ctx, id, payload)
	metrics.RecordMutation("update", err)
	if err != nil {
		s.logger.Error("Unable to update product", "id", id, "error", err)
		return nil, err
	}

	s.eventBus.Publish(events.ProductUpdated{ProductID: id})
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id domain.ProductID) error {
	s.logger.Debug("Deleting product", "id", id)

	err := s.repo.Delete(ctx, id)
	metrics.RecordMutation("delete", err)
	if err != nil {
		s.logger.Error("Unable to delete product", "id", id, "error", err)
		return err
	}

	s.eventBus.Publish(events.ProductDeleted{ProductID: id})
	return nil
}
