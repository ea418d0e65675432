package form

import (
	"context"
	"sync"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
)

// Remover deletes products from the store.
type Remover interface {
	DeleteProduct(ctx context.Context, id domain.ProductID) error
}

type DeleteSnapshot struct {
	ID        string           `json:"id"`
	State     State            `json:"state"`
	ProductID domain.ProductID `json:"product_id"`
	Err       error            `json:"-"`
}

// Deleter is one open delete confirmation.
type Deleter struct {
	id      string
	target  domain.ProductID
	state   State
	lastErr error
	remover Remover
	mutex   sync.Mutex
}

func newDeleter(id string, target domain.ProductID, r Remover) *Deleter {
	return &Deleter{id: id, target: target, state: StateConfirmingDelete, remover: r}
}

func (d *Deleter) ID() string {
	return d.id
}

func (d *Deleter) Target() domain.ProductID {
	return d.target
}

func (d *Deleter) Snapshot() DeleteSnapshot {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return DeleteSnapshot{ID: d.id, State: d.state, ProductID: d.target, Err: d.lastErr}
}

// Confirm deletes the product. A failure leaves the confirmation open so
// it can be retried.
func (d *Deleter) Confirm(ctx context.Context) error {
	d.mutex.Lock()
	switch d.state {
	case StateDeleting:
		d.mutex.Unlock()
		return domain.ErrBusy
	case StateClosed:
		d.mutex.Unlock()
		return domain.ErrInvalidTransition
	}
	d.state = StateDeleting
	d.lastErr = nil
	d.mutex.Unlock()

	err := d.remover.DeleteProduct(ctx, d.target)

	d.mutex.Lock()
	defer d.mutex.Unlock()
	if err != nil {
		d.state = StateConfirmingDelete
		d.lastErr = err
		return err
	}
	d.state = StateClosed
	return nil
}

func (d *Deleter) Cancel() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.state == StateDeleting {
		return domain.ErrBusy
	}
	d.state = StateClosed
	return nil
}
