// Package form holds the server side of the admin modals: add/edit forms
// and delete confirmations, each with at most one mutation in flight.
package form

import (
	"context"
	"sync"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
	"github.com/Mr-Shodiyorov/admin-page/internal/draft"
	"github.com/Mr-Shodiyorov/admin-page/internal/pricing"
)

type State string

const (
	StateClosed           State = "closed"
	StateAdding           State = "adding"
	StateEditing          State = "editing"
	StateValidating       State = "validating"
	StateSubmitting       State = "submitting"
	StateConfirmingDelete State = "confirming_delete"
	StateDeleting         State = "deleting"
)

// Writer persists submitted payloads.
type Writer interface {
	CreateProduct(ctx context.Context, payload domain.Payload) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id domain.ProductID, payload domain.Payload) (*domain.Product, error)
}

// Uploader stores picked images and returns their public URLs.
type Uploader interface {
	UploadImages(ctx context.Context, files []domain.ImageFile, capacity int) ([]string, error)
}

// Snapshot is a consistent copy of an editor's state.
type Snapshot struct {
	ID        string           `json:"id"`
	State     State            `json:"state"`
	ProductID domain.ProductID `json:"product_id,omitempty"`
	Uploading bool             `json:"uploading"`
	Draft     domain.Draft     `json:"draft"`
	Preview   draft.Preview    `json:"preview"`
	Err       error            `json:"-"`
}

// Editor is one open add or edit form.
type Editor struct {
	id         string
	target     domain.ProductID
	mode       State
	state      State
	uploading  bool
	draft      domain.Draft
	lastErr    error
	reconciler *draft.Reconciler
	writer     Writer
	uploader   Uploader
	mutex      sync.Mutex
}

func newEditor(id string, target domain.ProductID, d domain.Draft, r *draft.Reconciler, w Writer, u Uploader) *Editor {
	mode := StateAdding
	if target != "" {
		mode = StateEditing
	}
	return &Editor{
		id:         id,
		target:     target,
		mode:       mode,
		state:      mode,
		draft:      d,
		reconciler: r,
		writer:     w,
		uploader:   u,
	}
}

func (e *Editor) ID() string {
	return e.id
}

// Target is the product being edited, empty for an add form.
func (e *Editor) Target() domain.ProductID {
	return e.target
}

func (e *Editor) Snapshot() Snapshot {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.snapshot()
}

func (e *Editor) snapshot() Snapshot {
	d := e.draft.Clone()
	return Snapshot{
		ID:        e.id,
		State:     e.state,
		ProductID: e.target,
		Uploading: e.uploading,
		Draft:     d,
		Preview:   e.reconciler.Preview(d),
		Err:       e.lastErr,
	}
}

// editable must be called with the mutex held.
func (e *Editor) editable() error {
	switch {
	case e.state == StateClosed:
		return domain.ErrInvalidTransition
	case e.uploading || e.state != e.mode:
		return domain.ErrBusy
	}
	return nil
}

func (e *Editor) mutate(fn func(d *domain.Draft) error) (Snapshot, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if err := e.editable(); err != nil {
		return Snapshot{}, err
	}
	if err := fn(&e.draft); err != nil {
		return Snapshot{}, err
	}
	return e.snapshot(), nil
}

// Apply copies changed scalar inputs onto the draft.
func (e *Editor) Apply(patch domain.DraftPatch) (Snapshot, error) {
	return e.mutate(func(d *domain.Draft) error {
		patch.ApplyTo(d)
		return nil
	})
}

func (e *Editor) AddVariant(volume, originalPrice, discount domain.RawNumber) (Snapshot, error) {
	return e.mutate(func(d *domain.Draft) error {
		table, err := pricing.NewTable(d.Variants, e.reconciler.Policy()).Add(volume, originalPrice, discount)
		if err != nil {
			return err
		}
		d.Variants = table.Rows()
		return nil
	})
}

func (e *Editor) RemoveVariant(index int) (Snapshot, error) {
	return e.mutate(func(d *domain.Draft) error {
		d.Variants = pricing.NewTable(d.Variants, e.reconciler.Policy()).Remove(index).Rows()
		return nil
	})
}

// AddVolume adds a volume chip. Invalid input is dropped silently.
func (e *Editor) AddVolume(raw domain.RawNumber) (Snapshot, error) {
	return e.mutate(func(d *domain.Draft) error {
		if v, ok := pricing.Volume(raw); ok {
			d.MLSizes = pricing.NormalizeSizes(append(d.MLSizes, v))
		}
		return nil
	})
}

func (e *Editor) RemoveVolume(volume int) (Snapshot, error) {
	return e.mutate(func(d *domain.Draft) error {
		kept := make([]int, 0, len(d.MLSizes))
		for _, v := range d.MLSizes {
			if v != volume {
				kept = append(kept, v)
			}
		}
		d.MLSizes = kept
		return nil
	})
}

func (e *Editor) RemoveImage(index int) (Snapshot, error) {
	return e.mutate(func(d *domain.Draft) error {
		if index < 0 || index >= len(d.Images) {
			return nil
		}
		d.Images = append(d.Images[:index:index], d.Images[index+1:]...)
		return nil
	})
}

// AttachImages uploads a picker batch. Only as many files as there are free
// image slots are taken; the form is locked while the uploads run.
func (e *Editor) AttachImages(ctx context.Context, files []domain.ImageFile) (Snapshot, error) {
	e.mutex.Lock()
	if err := e.editable(); err != nil {
		e.mutex.Unlock()
		return Snapshot{}, err
	}
	capacity := domain.MaxImages - len(e.draft.Images)
	if capacity <= 0 || len(files) == 0 {
		defer e.mutex.Unlock()
		return e.snapshot(), nil
	}
	e.uploading = true
	e.lastErr = nil
	e.mutex.Unlock()

	urls, err := e.uploader.UploadImages(ctx, files, capacity)

	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.uploading = false
	if err != nil {
		e.lastErr = err
		return Snapshot{}, err
	}
	if e.state != StateClosed {
		e.draft.Images = draft.ClampImages(append(e.draft.Images, urls...))
	}
	return e.snapshot(), nil
}

// Submit validates the draft and writes it to the store. On failure the
// form goes back to editing with the draft untouched.
func (e *Editor) Submit(ctx context.Context) (*domain.Product, error) {
	e.mutex.Lock()
	if err := e.editable(); err != nil {
		e.mutex.Unlock()
		return nil, err
	}

	e.state = StateValidating
	payload, err := e.reconciler.ToPayload(e.draft)
	if err != nil {
		e.state = e.mode
		e.lastErr = err
		e.mutex.Unlock()
		return nil, err
	}
	e.state = StateSubmitting
	e.lastErr = nil
	e.mutex.Unlock()

	var product *domain.Product
	if e.mode == StateEditing {
		product, err = e.writer.UpdateProduct(ctx, e.target, payload)
	} else {
		product, err = e.writer.CreateProduct(ctx, payload)
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()
	if err != nil {
		e.state = e.mode
		e.lastErr = err
		return nil, err
	}
	e.state = StateClosed
	return product, nil
}

// Close discards the form. It is refused while a mutation is in flight.
func (e *Editor) Close() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.uploading || e.state == StateValidating || e.state == StateSubmitting {
		return domain.ErrBusy
	}
	e.state = StateClosed
	return nil
}
