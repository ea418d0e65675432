package repository

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
)

type memoryProductRepository struct {
	products []*domain.Product
	lastID   int
	now      func() time.Time
	mutex    sync.RWMutex
}

// NewMemoryProductRepository keeps products in process memory. Seed products
// are listed in the given order, before anything created later.
func NewMemoryProductRepository(seed ...*domain.Product) ProductRepository {
	r := &memoryProductRepository{now: time.Now}
	for i := len(seed) - 1; i >= 0; i-- {
		p := seed[i].Clone()
		if p.ID == "" {
			p.ID = r.nextID()
		} else if n, err := strconv.Atoi(p.ID.String()); err == nil && n > r.lastID {
			r.lastID = n
		}
		r.products = append(r.products, p)
	}
	return r
}

func (r *memoryProductRepository) List(ctx context.Context) (domain.Products, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	products := make(domain.Products, 0, len(r.products))
	for i := len(r.products) - 1; i >= 0; i-- {
		products = append(products, r.products[i].Clone())
	}
	return products, nil
}

func (r *memoryProductRepository) GetByID(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		return r.products[i].Clone(), nil
	}
	return nil, domain.ErrProductNotFound
}

func (r *memoryProductRepository) Create(ctx context.Context, payload domain.Payload) (*domain.Product, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	product := &domain.Product{ID: r.nextID(), CreatedAt: r.now().UTC()}
	payload.ApplyTo(product)
	r.products = append(r.products, product)
	return product.Clone(), nil
}

func (r *memoryProductRepository) Update(ctx context.Context, id domain.ProductID, payload domain.Payload) (*domain.Product, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, domain.ErrProductNotFound
	}
	payload.ApplyTo(r.products[i])
	return r.products[i].Clone(), nil
}

func (r *memoryProductRepository) Delete(ctx context.Context, id domain.ProductID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.ErrProductNotFound
	}
	r.products = append(r.products[:i], r.products[i+1:]...)
	return nil
}

func (r *memoryProductRepository) indexOf(id domain.ProductID) int {
	for i, p := range r.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *memoryProductRepository) nextID() domain.ProductID {
	r.lastID++
	return domain.ProductID(strconv.Itoa(r.lastID))
}
