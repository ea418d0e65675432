package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
	"github.com/Mr-Shodiyorov/admin-page/internal/events"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repository.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context) (domain.Products, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Products), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, payload domain.Payload) (*domain.Product, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, id domain.ProductID, payload domain.Payload) (*domain.Product, error) {
	args := m.Called(ctx, id, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id domain.ProductID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newProductService(repo *MockProductRepository) (ProductService, *events.EventBus[any]) {
	bus := events.NewEventBus[any]()
	return NewProductService(repo, bus, hclog.NewNullLogger()), bus
}

func catalog() domain.Products {
	return domain.Products{
		{ID: "1", Title: "Sauvage", Brand: "Dior", Gender: domain.GenderMen},
		{ID: "2", Title: "J'adore", Brand: "Dior", Gender: domain.GenderWomen},
		{ID: "3", Title: "Aventus", Brand: "Creed", Gender: domain.GenderMen},
		{ID: "4", Title: "Черная орхидея", Brand: "Tom Ford", Gender: domain.GenderUnisex},
	}
}

func ids(products domain.Products) []domain.ProductID {
	out := make([]domain.ProductID, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestProductService_ListProductsFilters(t *testing.T) {
	testCases := []struct {
		name   string
		filter Filter
		want   []domain.ProductID
	}{
		{"No filter", Filter{}, []domain.ProductID{"1", "2", "3", "4"}},
		{"All genders", Filter{Gender: GenderAll}, []domain.ProductID{"1", "2", "3", "4"}},
		{"Brand ignoring case", Filter{Query: "dIoR"}, []domain.ProductID{"1", "2"}},
		{"Title substring", Filter{Query: " vent "}, []domain.ProductID{"3"}},
		{"Cyrillic title", Filter{Query: "ЧЕРНАЯ"}, []domain.ProductID{"4"}},
		{"Gender and query", Filter{Query: "dior", Gender: "men"}, []domain.ProductID{"1"}},
		{"Unknown gender", Filter{Gender: "robots"}, []domain.ProductID{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockProductRepository)
			repo.On("List", mock.Anything).Return(catalog(), nil).Once()
			svc, _ := newProductService(repo)

			products, err := svc.ListProducts(context.Background(), tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(products))
			repo.AssertExpectations(t)
		})
	}
}

func TestProductService_ListFailureIsFetchError(t *testing.T) {
	repo := new(MockProductRepository)
	repo.On("List", mock.Anything).Return(nil, io.ErrUnexpectedEOF).Once()
	svc, _ := newProductService(repo)

	_, err := svc.ListProducts(context.Background(), Filter{})

	var ferr *domain.FetchError
	require.ErrorAs(t, err, &ferr)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestProductService_MutationsPublishEvents(t *testing.T) {
	repo := new(MockProductRepository)
	svc, bus := newProductService(repo)
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	payload := domain.Payload{Title: "Aventus", Brand: "Creed"}
	repo.On("Create", mock.Anything, payload).Return(&domain.Product{ID: "9", Title: "Aventus"}, nil).Once()
	repo.On("Update", mock.Anything, domain.ProductID("9"), payload).Return(&domain.Product{ID: "9"}, nil).Once()
	repo.On("Delete", mock.Anything, domain.ProductID("9")).Return(nil).Once()

	_, err := svc.CreateProduct(context.Background(), payload)
	require.NoError(t, err)
	_, err = svc.UpdateProduct(context.Background(), "9", payload)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteProduct(context.Background(), "9"))

	assert.Equal(t, events.ProductAdded{ProductID: "9", Title: "Aventus"}, <-sub)
	assert.Equal(t, events.ProductUpdated{ProductID: "9"}, <-sub)
	assert.Equal(t, events.ProductDeleted{ProductID: "9"}, <-sub)
	repo.AssertExpectations(t)
}

func TestProductService_FailedMutationPublishesNothing(t *testing.T) {
	repo := new(MockProductRepository)
	svc, bus := newProductService(repo)
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	rejected := &domain.PersistenceError{Op: "delete", Status: 409, Message: "still referenced"}
	repo.On("Delete", mock.Anything, domain.ProductID("9")).Return(rejected).Once()
	repo.On("GetByID", mock.Anything, domain.ProductID("8")).Return(nil, domain.ErrProductNotFound).Once()

	assert.ErrorIs(t, svc.DeleteProduct(context.Background(), "9"), rejected)
	_, err := svc.GetProduct(context.Background(), "8")
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))
	assert.Empty(t, sub)
}
