package form

import (
	"context"
	"sync"
	"time"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
	"github.com/Mr-Shodiyorov/admin-page/internal/draft"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// Products is the slice of the product service the forms need.
type Products interface {
	Writer
	Remover
	GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error)
}

// Manager keeps the open form sessions, keyed by a random id. A session
// nobody touched for a while is dropped by Sweep.
type Manager struct {
	products   Products
	uploader   Uploader
	reconciler *draft.Reconciler
	logger     hclog.Logger
	now        func() time.Time

	editors  map[string]*Editor
	deleters map[string]*Deleter
	touched  map[string]time.Time
	mutex    sync.Mutex
}

func NewManager(products Products, uploader Uploader, reconciler *draft.Reconciler, logger hclog.Logger) *Manager {
	return &Manager{
		products:   products,
		uploader:   uploader,
		reconciler: reconciler,
		logger:     logger,
		now:        time.Now,
		editors:    make(map[string]*Editor),
		deleters:   make(map[string]*Deleter),
		touched:    make(map[string]time.Time),
	}
}

// OpenAdd opens a form on an empty draft.
func (m *Manager) OpenAdd() *Editor {
	e := newEditor(uuid.NewString(), "", m.reconciler.ToDraft(nil), m.reconciler, m.products, m.uploader)
	m.register(e)
	m.logger.Debug("Opened add form", "session", e.id)
	return e
}

// OpenEdit opens a form seeded from the stored product.
func (m *Manager) OpenEdit(ctx context.Context, id domain.ProductID) (*Editor, error) {
	product, err := m.products.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	e := newEditor(uuid.NewString(), product.ID, m.reconciler.ToDraft(product), m.reconciler, m.products, m.uploader)
	m.register(e)
	m.logger.Debug("Opened edit form", "session", e.id, "product", id)
	return e, nil
}

func (m *Manager) register(e *Editor) {
	m.mutex.Lock()
	m.editors[e.id] = e
	m.touched[e.id] = m.now()
	m.mutex.Unlock()
}

// Editor looks a form up and marks it as used.
func (m *Manager) Editor(sid string) (*Editor, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	e, ok := m.editors[sid]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	m.touched[sid] = m.now()
	return e, nil
}

// Submit submits the form and drops the session once the store accepted it.
func (m *Manager) Submit(ctx context.Context, sid string) (*domain.Product, error) {
	e, err := m.Editor(sid)
	if err != nil {
		return nil, err
	}

	product, err := e.Submit(ctx)
	if err != nil {
		return nil, err
	}
	m.forget(sid)
	return product, nil
}

// Discard closes a form without saving.
func (m *Manager) Discard(sid string) error {
	e, err := m.Editor(sid)
	if err != nil {
		return err
	}
	if err := e.Close(); err != nil {
		return err
	}
	m.forget(sid)
	return nil
}

func (m *Manager) forget(sid string) {
	m.mutex.Lock()
	delete(m.editors, sid)
	delete(m.touched, sid)
	m.mutex.Unlock()
}

// OpenDelete asks for confirmation before deleting a product.
func (m *Manager) OpenDelete(ctx context.Context, id domain.ProductID) (*Deleter, error) {
	if _, err := m.products.GetProduct(ctx, id); err != nil {
		return nil, err
	}

	d := newDeleter(uuid.NewString(), id, m.products)
	m.mutex.Lock()
	m.deleters[d.id] = d
	m.touched[d.id] = m.now()
	m.mutex.Unlock()
	return d, nil
}

func (m *Manager) Deleter(sid string) (*Deleter, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	d, ok := m.deleters[sid]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	m.touched[sid] = m.now()
	return d, nil
}

// ConfirmDelete deletes the product and closes every open form editing it.
func (m *Manager) ConfirmDelete(ctx context.Context, sid string) error {
	d, err := m.Deleter(sid)
	if err != nil {
		return err
	}
	if err := d.Confirm(ctx); err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.deleters, sid)
	delete(m.touched, sid)
	for id, e := range m.editors {
		if e.Target() != d.Target() {
			continue
		}
		if err := e.Close(); err != nil {
			m.logger.Warn("Unable to close form of deleted product", "session", id, "error", err)
			continue
		}
		delete(m.editors, id)
		delete(m.touched, id)
	}
	return nil
}

func (m *Manager) CancelDelete(sid string) error {
	d, err := m.Deleter(sid)
	if err != nil {
		return err
	}
	if err := d.Cancel(); err != nil {
		return err
	}

	m.mutex.Lock()
	delete(m.deleters, sid)
	delete(m.touched, sid)
	m.mutex.Unlock()
	return nil
}

// Sweep closes the sessions untouched for longer than idle and returns how
// many were dropped. Sessions with an upload, submit or delete in flight
// are kept.
func (m *Manager) Sweep(idle time.Duration) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	cutoff := m.now().Add(-idle)
	dropped := 0
	for sid, e := range m.editors {
		if !m.touched[sid].Before(cutoff) {
			continue
		}
		if err := e.Close(); err != nil {
			continue
		}
		delete(m.editors, sid)
		delete(m.touched, sid)
		dropped++
	}
	for sid, d := range m.deleters {
		if !m.touched[sid].Before(cutoff) {
			continue
		}
		if err := d.Cancel(); err != nil {
			continue
		}
		delete(m.deleters, sid)
		delete(m.touched, sid)
		dropped++
	}
	return dropped
}

// Run sweeps idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(idle); n > 0 {
				m.logger.Info("Dropped idle form sessions", "count", n)
			}
		}
	}
}
