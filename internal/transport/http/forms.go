package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
	"github.com/Mr-Shodiyorov/admin-page/internal/form"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
)

// DraftResponse is a form snapshot with the last failure spelled out.
type DraftResponse struct {
	form.Snapshot
	Error string `json:"error,omitempty"`
}

type DeletionResponse struct {
	form.DeleteSnapshot
	Error string `json:"error,omitempty"`
}

type openRequest struct {
	ProductID domain.ProductID `json:"product_id"`
}

type variantRequest struct {
	Volume          domain.RawNumber `json:"volume"`
	OriginalPrice   domain.RawNumber `json:"original_price"`
	DiscountPercent domain.RawNumber `json:"discount_percent"`
}

type volumeRequest struct {
	Volume domain.RawNumber `json:"volume"`
}

// FormHandler serves the admin add, edit and delete dialogs.
type FormHandler struct {
	forms     *form.Manager
	respond   *Responder
	maxUpload int64
	logger    hclog.Logger
}

func NewFormHandler(forms *form.Manager, respond *Responder, maxUpload int64, logger hclog.Logger) *FormHandler {
	return &FormHandler{forms: forms, respond: respond, maxUpload: maxUpload, logger: logger}
}

func (h *FormHandler) draft(w http.ResponseWriter, r *http.Request, status int, snap form.Snapshot) {
	h.respond.JSON(w, status, DraftResponse{Snapshot: snap, Error: h.respond.Message(r, snap.Err)})
}

// editor runs fn against the session named in the path.
func (h *FormHandler) editor(w http.ResponseWriter, r *http.Request, fn func(e *form.Editor) (form.Snapshot, error)) {
	e, err := h.forms.Editor(mux.Vars(r)["sid"])
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	snap, err := fn(e)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.draft(w, r, http.StatusOK, snap)
}

func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return badRequest(err)
	}
	return nil
}

func pathIndex(r *http.Request, name string) (int, error) {
	i, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		return 0, badRequest(err)
	}
	return i, nil
}

// OpenDraft handles POST /admin/drafts
//
// swagger:route POST /admin/drafts forms openDraft
//
// Opens an add form, or an edit form when product_id is given.
//
// Responses:
//
//	201: draftResponse
//	404: errorResponse
func (h *FormHandler) OpenDraft(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := decode(r, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}

	var e *form.Editor
	if req.ProductID == "" {
		e = h.forms.OpenAdd()
	} else {
		var err error
		if e, err = h.forms.OpenEdit(r.Context(), req.ProductID); err != nil {
			h.respond.Error(w, r, err)
			return
		}
	}

	h.draft(w, r, http.StatusCreated, e.Snapshot())
}

// GetDraft handles GET /admin/drafts/{sid}
//
// swagger:route GET /admin/drafts/{sid} forms getDraft
//
// Responses:
//
//	200: draftResponse
//	404: errorResponse
func (h *FormHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	h.editor(w, r, func(e *form.Editor) (form.Snapshot, error) {
		return e.Snapshot(), nil
	})
}

// PatchDraft handles PATCH /admin/drafts/{sid}
//
// swagger:route PATCH /admin/drafts/{sid} forms patchDraft
//
// Changes scalar form inputs. Derived prices are returned in the preview.
//
// Responses:
//
//	200: draftResponse
//	409: errorResponse
//	422: validationErrorResponse
func (h *FormHandler) PatchDraft(w http.ResponseWriter, r *http.Request) {
	patch, ok := r.Context().Value(ContextKeyPatch).(*domain.DraftPatch)
	if !ok {
		h.respond.Error(w, r, badRequest(errors.New("missing patch")))
		return
	}

	h.editor(w, r, func(e *form.Editor) (form.Snapshot, error) {
		return e.Apply(*patch)
	})
}

// DiscardDraft handles DELETE /admin/drafts/{sid}
//
// swagger:route DELETE /admin/drafts/{sid} forms discardDraft
//
// Responses:
//
//	204: noContentResponse
//	409: errorResponse
func (h *FormHandler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.forms.Discard(mux.Vars(r)["sid"]); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddVariant handles POST /admin/drafts/{sid}/variants
//
// swagger:route POST /admin/drafts/{sid}/variants forms addVariant
//
// Responses:
//
//	200: draftResponse
//	422: validationErrorResponse
func (h *FormHandler) AddVariant(w http.ResponseWriter, r *http.Request) {
	var req variantRequest
	if err := decode(r, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.editor(w, r, func(e *form.Editor) (form.Snapshot, error) {
		return e.AddVariant(req.Volume, req.OriginalPrice, req.DiscountPercent)
	})
}

// RemoveVariant handles DELETE /admin/drafts/{sid}/variants/{index}
//
// swagger:route DELETE /admin/drafts/{sid}/variants/{index} forms removeVariant
//
// Responses:
//
//	200: draftResponse
func (h *FormHandler) RemoveVariant(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.editor(w, r, func(e *form.Editor) (form.Snapshot, error) {
		return e.RemoveVariant(index)
	})
}

// AddVolume handles POST /admin/drafts/{sid}/volumes
//
// swagger:route POST /admin/drafts/{sid}/volumes forms addVolume
//
// Adds a volume chip. Values that are not positive are ignored.
//
// Responses:
//
//	200: draftResponse
func (h *FormHandler) AddVolume(w http.ResponseWriter, r *http.Request) {
	var req volumeRequest
	if err := decode(r, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.editor(w, r, func(e *form.Editor) (form.Snapshot, error) {
		return e.AddVolume(req.Volume)
	})
}

// RemoveVolume handles DELETE /admin/drafts/{sid}/volumes/{volume}
//
// swagger:route DELETE /admin/drafts/{sid}/volumes/{volume} forms removeVolume
//
// Responses:
//
//	200: draftResponse
func (h *FormHandler) RemoveVolume(w http.ResponseWriter, r *http.Request) {
	volume, err := pathIndex(r, "volume")
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.editor(w, r, func(e *form.Editor) (form.Snapshot, error) {
		return e.RemoveVolume(volume)
	})
}

// UploadImages handles POST /admin/drafts/{sid}/images
//
// swagger:route POST /admin/drafts/{sid}/images forms uploadImages
//
// Uploads the files of the multipart field "files". Only as many as there
// are free image slots are stored.
//
// Responses:
//
//	200: draftResponse
//	409: errorResponse
//	422: validationErrorResponse
//	502: errorResponse
func (h *FormHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	files, err := h.readFiles(w, r)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.editor(w, r, func(e *form.Editor) (form.Snapshot, error) {
		return e.AttachImages(r.Context(), files)
	})
}

func (h *FormHandler) readFiles(w http.ResponseWriter, r *http.Request) ([]domain.ImageFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload*int64(domain.MaxImages+2)+1<<20)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.logger.Error("Unable to parse multipart form", "error", err)
		return nil, badRequest(err)
	}

	headers := r.MultipartForm.File["files"]
	files := make([]domain.ImageFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, badRequest(err)
		}
		content, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
		f.Close()
		if err != nil {
			return nil, badRequest(err)
		}
		files = append(files, domain.ImageFile{Name: fh.Filename, Content: content})
	}
	return files, nil
}

// RemoveImage handles DELETE /admin/drafts/{sid}/images/{index}
//
// swagger:route DELETE /admin/drafts/{sid}/images/{index} forms removeImage
//
// Responses:
//
//	200: draftResponse
func (h *FormHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.editor(w, r, func(e *form.Editor) (form.Snapshot, error) {
		return e.RemoveImage(index)
	})
}

// SubmitDraft handles POST /admin/drafts/{sid}/submit
//
// swagger:route POST /admin/drafts/{sid}/submit forms submitDraft
//
// Validates the draft and writes it to the store. The session is closed on
// success and kept, with its draft, on failure.
//
// Responses:
//
//	200: productResponse
//	409: errorResponse
//	422: validationErrorResponse
//	502: errorResponse
func (h *FormHandler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	product, err := h.forms.Submit(r.Context(), mux.Vars(r)["sid"])
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.JSON(w, http.StatusOK, product)
}

// OpenDeletion handles POST /admin/deletions
//
// swagger:route POST /admin/deletions forms openDeletion
//
// Asks for confirmation before deleting product_id.
//
// Responses:
//
//	201: deletionResponse
//	404: errorResponse
func (h *FormHandler) OpenDeletion(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := decode(r, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	if req.ProductID == "" {
		h.respond.Error(w, r, domain.NewValidationError("product_id", "required", "product_id is required"))
		return
	}

	d, err := h.forms.OpenDelete(r.Context(), req.ProductID)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.JSON(w, http.StatusCreated, DeletionResponse{DeleteSnapshot: d.Snapshot()})
}

// ConfirmDeletion handles POST /admin/deletions/{sid}/confirm
//
// swagger:route POST /admin/deletions/{sid}/confirm forms confirmDeletion
//
// Deletes the product and closes every form editing it.
//
// Responses:
//
//	204: noContentResponse
//	409: errorResponse
//	502: errorResponse
func (h *FormHandler) ConfirmDeletion(w http.ResponseWriter, r *http.Request) {
	if err := h.forms.ConfirmDelete(r.Context(), mux.Vars(r)["sid"]); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelDeletion handles DELETE /admin/deletions/{sid}
//
// swagger:route DELETE /admin/deletions/{sid} forms cancelDeletion
//
// Responses:
//
//	204: noContentResponse
//	409: errorResponse
func (h *FormHandler) CancelDeletion(w http.ResponseWriter, r *http.Request) {
	if err := h.forms.CancelDelete(mux.Vars(r)["sid"]); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
