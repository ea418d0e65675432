package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
	"github.com/Mr-Shodiyorov/admin-page/internal/supabase"
	"github.com/hashicorp/go-hclog"
)

const restPath = "/rest/v1/"

type postgrestProductRepository struct {
	client *supabase.Client
	table  string
	logger hclog.Logger
}

// NewPostgRESTProductRepository reads and writes the products table through
// the hosted REST API.
func NewPostgRESTProductRepository(client *supabase.Client, logger hclog.Logger) ProductRepository {
	return &postgrestProductRepository{client: client, table: "products", logger: logger}
}

func (r *postgrestProductRepository) List(ctx context.Context) (domain.Products, error) {
	req, err := r.client.NewRequest(ctx, http.MethodGet, restPath+r.table+"?select=*&order=created_at.desc", nil)
	if err != nil {
		return nil, err
	}

	var products domain.Products
	if err := r.client.DoJSON(req, &products); err != nil {
		return nil, r.wrap("list", err)
	}
	if products == nil {
		products = domain.Products{}
	}
	return products, nil
}

func (r *postgrestProductRepository) GetByID(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	req, err := r.client.NewRequest(ctx, http.MethodGet, r.byID(id)+"&select=*", nil)
	if err != nil {
		return nil, err
	}

	var products domain.Products
	if err := r.client.DoJSON(req, &products); err != nil {
		return nil, r.wrap("get", err)
	}
	if len(products) == 0 {
		return nil, domain.ErrProductNotFound
	}
	return products[0], nil
}

func (r *postgrestProductRepository) Create(ctx context.Context, payload domain.Payload) (*domain.Product, error) {
	req, err := r.client.NewRequest(ctx, http.MethodPost, restPath+r.table, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", "return=representation")

	var products domain.Products
	if err := r.client.DoJSON(req, &products); err != nil {
		return nil, r.wrap("create", err)
	}
	if len(products) == 0 {
		return nil, &domain.PersistenceError{Op: "create", Message: "store returned no row"}
	}
	return products[0], nil
}

func (r *postgrestProductRepository) Update(ctx context.Context, id domain.ProductID, payload domain.Payload) (*domain.Product, error) {
	req, err := r.client.NewRequest(ctx, http.MethodPatch, r.byID(id), payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", "return=representation")

	var products domain.Products
	if err := r.client.DoJSON(req, &products); err != nil {
		return nil, r.wrap("update", err)
	}
	if len(products) == 0 {
		return nil, domain.ErrProductNotFound
	}
	return products[0], nil
}

func (r *postgrestProductRepository) Delete(ctx context.Context, id domain.ProductID) error {
	req, err := r.client.NewRequest(ctx, http.MethodDelete, r.byID(id), nil)
	if err != nil {
		return err
	}
	if err := r.client.DoJSON(req, nil); err != nil {
		return r.wrap("delete", err)
	}
	return nil
}

func (r *postgrestProductRepository) byID(id domain.ProductID) string {
	return restPath + r.table + "?id=eq." + url.QueryEscape(id.String())
}

// wrap turns a failed call into a PersistenceError carrying the store's
// status and message.
func (r *postgrestProductRepository) wrap(op string, err error) error {
	r.logger.Error("Store request failed", "op", op, "error", err)

	var status *supabase.StatusError
	if errors.As(err, &status) {
		return &domain.PersistenceError{Op: op, Status: status.Status, Message: status.Message}
	}
	return &domain.PersistenceError{Op: op, Message: fmt.Sprint(err)}
}
