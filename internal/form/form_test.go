package form

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
	"github.com/Mr-Shodiyorov/admin-page/internal/draft"
	"github.com/Mr-Shodiyorov/admin-page/internal/pricing"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProducts struct {
	mock.Mock
}

func (m *MockProducts) GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProducts) CreateProduct(ctx context.Context, payload domain.Payload) (*domain.Product, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProducts) UpdateProduct(ctx context.Context, id domain.ProductID, payload domain.Payload) (*domain.Product, error) {
	args := m.Called(ctx, id, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProducts) DeleteProduct(ctx context.Context, id domain.ProductID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) UploadImages(ctx context.Context, files []domain.ImageFile, capacity int) ([]string, error) {
	args := m.Called(ctx, files, capacity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func newManager(products *MockProducts, uploader *MockUploader) *Manager {
	r := draft.NewReconciler(domain.SchemaVariants, pricing.Replace, domain.NewValidation())
	return NewManager(products, uploader, r, hclog.NewNullLogger())
}

func title(s string) *string {
	return &s
}

func TestEditor_SubmitCreatesAndClosesSession(t *testing.T) {
	products := new(MockProducts)
	m := newManager(products, new(MockUploader))

	e := m.OpenAdd()
	_, err := e.Apply(domain.DraftPatch{Title: title("Aventus"), Brand: title("Creed")})
	require.NoError(t, err)
	_, err = e.AddVariant("50", "100", "20")
	require.NoError(t, err)

	created := &domain.Product{ID: "1", Title: "Aventus"}
	products.On("CreateProduct", mock.Anything, mock.MatchedBy(func(p domain.Payload) bool {
		return p.Title == "Aventus" && len(p.Variants) == 1 && p.Variants[0].FinalPrice == 80
	})).Return(created, nil).Once()

	product, err := m.Submit(context.Background(), e.ID())
	require.NoError(t, err)
	assert.Equal(t, created, product)
	assert.Equal(t, StateClosed, e.Snapshot().State)

	_, err = m.Editor(e.ID())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	products.AssertExpectations(t)
}

func TestEditor_ValidationFailureKeepsDraft(t *testing.T) {
	products := new(MockProducts)
	m := newManager(products, new(MockUploader))

	e := m.OpenAdd()
	_, err := e.Apply(domain.DraftPatch{Brand: title("Creed")})
	require.NoError(t, err)

	_, err = m.Submit(context.Background(), e.ID())

	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	snap := e.Snapshot()
	assert.Equal(t, StateAdding, snap.State)
	assert.Equal(t, "Creed", snap.Draft.Brand)
	assert.Equal(t, err, snap.Err)
	products.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestEditor_PersistenceFailureReturnsToEditing(t *testing.T) {
	products := new(MockProducts)
	m := newManager(products, new(MockUploader))

	products.On("GetProduct", mock.Anything, domain.ProductID("9")).
		Return(&domain.Product{ID: "9", Title: "Sauvage", Brand: "Dior"}, nil).Once()
	e, err := m.OpenEdit(context.Background(), "9")
	require.NoError(t, err)

	rejected := &domain.PersistenceError{Op: "update", Status: 400, Message: "bad column"}
	products.On("UpdateProduct", mock.Anything, domain.ProductID("9"), mock.Anything).Return(nil, rejected).Once()

	_, err = m.Submit(context.Background(), e.ID())
	assert.ErrorIs(t, err, rejected)

	snap := e.Snapshot()
	assert.Equal(t, StateEditing, snap.State)
	assert.Equal(t, "Sauvage", snap.Draft.Title)

	_, err = m.Editor(e.ID())
	assert.NoError(t, err, "failed submit keeps the session")
	products.AssertExpectations(t)
}

func TestEditor_BusyWhileSubmitting(t *testing.T) {
	products := new(MockProducts)
	m := newManager(products, new(MockUploader))
	release := make(chan struct{})

	products.On("CreateProduct", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(&domain.Product{ID: "1"}, nil).Once()

	e := m.OpenAdd()
	_, err := e.Apply(domain.DraftPatch{Title: title("A"), Brand: title("B")})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := e.Submit(context.Background())
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool {
		return e.Snapshot().State == StateSubmitting
	}, time.Second, time.Millisecond)

	_, err = e.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrBusy)
	_, err = e.Apply(domain.DraftPatch{Title: title("changed")})
	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.ErrorIs(t, e.Close(), domain.ErrBusy)

	close(release)
	wg.Wait()

	assert.Equal(t, StateClosed, e.Snapshot().State)
	_, err = e.Apply(domain.DraftPatch{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	products.AssertNumberOfCalls(t, "CreateProduct", 1)
}

func TestEditor_AttachImagesRespectsCapacity(t *testing.T) {
	uploader := new(MockUploader)
	m := newManager(new(MockProducts), uploader)
	e := m.OpenAdd()

	batch := make([]domain.ImageFile, 5)
	uploader.On("UploadImages", mock.Anything, batch, 3).Return([]string{"u1", "u2"}, nil).Once()
	uploader.On("UploadImages", mock.Anything, batch, 1).Return([]string{"u3"}, nil).Once()

	for i := 0; i < 3; i++ {
		_, err := e.AttachImages(context.Background(), batch)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"u1", "u2", "u3"}, e.Snapshot().Draft.Images)
	uploader.AssertExpectations(t)
}

func TestEditor_FailedUploadAppendsNothing(t *testing.T) {
	uploader := new(MockUploader)
	m := newManager(new(MockProducts), uploader)
	e := m.OpenAdd()

	failure := &domain.UploadError{File: "b.png", Uploaded: 1, Err: errors.New("boom")}
	uploader.On("UploadImages", mock.Anything, mock.Anything, 3).Return(nil, failure).Once()

	_, err := e.AttachImages(context.Background(), make([]domain.ImageFile, 2))

	var uerr *domain.UploadError
	require.ErrorAs(t, err, &uerr)
	snap := e.Snapshot()
	assert.Empty(t, snap.Draft.Images)
	assert.False(t, snap.Uploading)
	assert.Equal(t, StateAdding, snap.State)
}

func TestEditor_BusyWhileUploading(t *testing.T) {
	uploader := new(MockUploader)
	m := newManager(new(MockProducts), uploader)
	e := m.OpenAdd()
	release := make(chan struct{})

	uploader.On("UploadImages", mock.Anything, mock.Anything, 3).
		Run(func(mock.Arguments) { <-release }).
		Return([]string{"u1"}, nil).Once()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := e.AttachImages(context.Background(), make([]domain.ImageFile, 1))
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool { return e.Snapshot().Uploading }, time.Second, time.Millisecond)

	_, err := e.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrBusy)
	_, err = e.RemoveImage(0)
	assert.ErrorIs(t, err, domain.ErrBusy)

	close(release)
	<-done
	assert.Equal(t, []string{"u1"}, e.Snapshot().Draft.Images)
}

func TestEditor_Volumes(t *testing.T) {
	e := newManager(new(MockProducts), new(MockUploader)).OpenAdd()

	for _, raw := range []domain.RawNumber{"50", "x", "30", "-5", "50", "100"} {
		_, err := e.AddVolume(raw)
		require.NoError(t, err)
	}
	assert.Equal(t, []int{30, 50, 100}, e.Snapshot().Draft.MLSizes)

	snap, err := e.RemoveVolume(50)
	require.NoError(t, err)
	assert.Equal(t, []int{30, 100}, snap.Draft.MLSizes)
}

func TestEditor_VariantsAndImages(t *testing.T) {
	e := newManager(new(MockProducts), new(MockUploader)).OpenAdd()

	_, err := e.AddVariant("abc", "10", "0")
	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	_, err = e.AddVariant("30", "10", "0")
	require.NoError(t, err)
	snap, err := e.AddVariant("50", "20", "50")
	require.NoError(t, err)
	assert.Len(t, snap.Preview.Variants, 2)

	snap, err = e.RemoveVariant(0)
	require.NoError(t, err)
	require.Len(t, snap.Draft.Variants, 1)
	assert.Equal(t, 10.0, snap.Draft.Variants[0].FinalPrice)

	snap, err = e.RemoveImage(4)
	require.NoError(t, err)
	assert.Empty(t, snap.Draft.Images)
}

func TestManager_UnknownSessions(t *testing.T) {
	m := newManager(new(MockProducts), new(MockUploader))

	_, err := m.Editor("nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, m.Discard("nope"), domain.ErrSessionNotFound)
	assert.ErrorIs(t, m.ConfirmDelete(context.Background(), "nope"), domain.ErrSessionNotFound)
	assert.ErrorIs(t, m.CancelDelete("nope"), domain.ErrSessionNotFound)
}

func TestManager_OpenEditMissingProduct(t *testing.T) {
	products := new(MockProducts)
	m := newManager(products, new(MockUploader))
	products.On("GetProduct", mock.Anything, domain.ProductID("404")).Return(nil, domain.ErrProductNotFound).Once()

	_, err := m.OpenEdit(context.Background(), "404")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestDeleter_FailureKeepsConfirmationOpen(t *testing.T) {
	products := new(MockProducts)
	m := newManager(products, new(MockUploader))

	products.On("GetProduct", mock.Anything, domain.ProductID("3")).Return(&domain.Product{ID: "3"}, nil)
	products.On("DeleteProduct", mock.Anything, domain.ProductID("3")).Return(errors.New("offline")).Once()
	products.On("DeleteProduct", mock.Anything, domain.ProductID("3")).Return(nil).Once()

	d, err := m.OpenDelete(context.Background(), "3")
	require.NoError(t, err)

	assert.Error(t, m.ConfirmDelete(context.Background(), d.ID()))
	assert.Equal(t, StateConfirmingDelete, d.Snapshot().State)

	require.NoError(t, m.ConfirmDelete(context.Background(), d.ID()))
	assert.Equal(t, StateClosed, d.Snapshot().State)
	products.AssertExpectations(t)
}

func TestDeleter_CancelRefusedWhileDeleting(t *testing.T) {
	products := new(MockProducts)
	m := newManager(products, new(MockUploader))
	release := make(chan struct{})

	products.On("GetProduct", mock.Anything, domain.ProductID("3")).Return(&domain.Product{ID: "3"}, nil)
	products.On("DeleteProduct", mock.Anything, domain.ProductID("3")).
		Run(func(mock.Arguments) { <-release }).
		Return(nil).Once()

	d, err := m.OpenDelete(context.Background(), "3")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- m.ConfirmDelete(context.Background(), d.ID()) }()

	require.Eventually(t, func() bool { return d.Snapshot().State == StateDeleting }, time.Second, time.Millisecond)
	assert.ErrorIs(t, m.CancelDelete(d.ID()), domain.ErrBusy)
	assert.ErrorIs(t, d.Confirm(context.Background()), domain.ErrBusy)

	close(release)
	assert.NoError(t, <-done)
}

func TestManager_DeleteClosesEditorsOfProduct(t *testing.T) {
	products := new(MockProducts)
	m := newManager(products, new(MockUploader))

	products.On("GetProduct", mock.Anything, domain.ProductID("5")).Return(&domain.Product{ID: "5"}, nil)
	products.On("GetProduct", mock.Anything, domain.ProductID("6")).Return(&domain.Product{ID: "6"}, nil)
	products.On("DeleteProduct", mock.Anything, domain.ProductID("5")).Return(nil).Once()

	target, err := m.OpenEdit(context.Background(), "5")
	require.NoError(t, err)
	other, err := m.OpenEdit(context.Background(), "6")
	require.NoError(t, err)

	d, err := m.OpenDelete(context.Background(), "5")
	require.NoError(t, err)
	require.NoError(t, m.ConfirmDelete(context.Background(), d.ID()))

	assert.Equal(t, StateClosed, target.Snapshot().State)
	_, err = m.Editor(target.ID())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = m.Editor(other.ID())
	assert.NoError(t, err)
	_, err = m.Deleter(d.ID())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func TestManager_SweepDropsIdleSessions(t *testing.T) {
	products := new(MockProducts)
	m := newManager(products, new(MockUploader))
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	m.now = clock.Now

	products.On("GetProduct", mock.Anything, domain.ProductID("7")).Return(&domain.Product{ID: "7"}, nil)

	idle := m.OpenAdd()
	active := m.OpenAdd()
	deletion, err := m.OpenDelete(context.Background(), "7")
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	_, err = m.Editor(active.ID())
	require.NoError(t, err)

	clock.Advance(15 * time.Minute)
	assert.Equal(t, 2, m.Sweep(30*time.Minute))

	_, err = m.Editor(idle.ID())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = m.Deleter(deletion.ID())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Equal(t, StateClosed, idle.Snapshot().State)

	_, err = m.Editor(active.ID())
	assert.NoError(t, err)
	assert.Equal(t, 0, m.Sweep(30*time.Minute))
}

func TestManager_SweepKeepsSessionsWithWorkInFlight(t *testing.T) {
	uploader := new(MockUploader)
	m := newManager(new(MockProducts), uploader)
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	m.now = clock.Now

	e := m.OpenAdd()
	release := make(chan struct{})
	uploader.On("UploadImages", mock.Anything, mock.Anything, 3).
		Run(func(mock.Arguments) { <-release }).
		Return([]string{"u1"}, nil).Once()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := e.AttachImages(context.Background(), make([]domain.ImageFile, 1))
		assert.NoError(t, err)
	}()
	require.Eventually(t, func() bool { return e.Snapshot().Uploading }, time.Second, time.Millisecond)

	clock.Advance(time.Hour)
	assert.Equal(t, 0, m.Sweep(30*time.Minute))

	close(release)
	<-done
	assert.Equal(t, 1, m.Sweep(30*time.Minute))
	_, err := m.Editor(e.ID())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_RunStopsWithContext(t *testing.T) {
	m := newManager(new(MockProducts), new(MockUploader))
	m.OpenAdd()

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		m.Run(ctx, time.Millisecond, 0)
	}()

	require.Eventually(t, func() bool {
		m.mutex.Lock()
		defer m.mutex.Unlock()
		return len(m.editors) == 0
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
