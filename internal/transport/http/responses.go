package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
	"github.com/Mr-Shodiyorov/admin-page/internal/i18n"
	"github.com/hashicorp/go-hclog"
)

// errBadRequest marks malformed input that never reached the domain.
var errBadRequest = errors.New("bad request")

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

// Responder writes JSON bodies and turns errors into localized responses.
type Responder struct {
	catalog *i18n.Catalog
	locale  *i18n.Locale
	logger  hclog.Logger
}

func NewResponder(catalog *i18n.Catalog, locale *i18n.Locale, logger hclog.Logger) *Responder {
	return &Responder{catalog: catalog, locale: locale, logger: logger}
}

func (rs *Responder) JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		rs.logger.Error("Unable to encode response", "error", err)
	}
}

// Error maps err onto a status code and a message in the request's language.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	status, body := rs.describe(r, err)
	if status >= http.StatusInternalServerError {
		rs.logger.Error("Request failed", "method", r.Method, "url", r.URL.Path, "status", status, "error", err)
	}
	rs.JSON(w, status, body)
}

// Message is the localized text for err, empty for a nil error.
func (rs *Responder) Message(r *http.Request, err error) string {
	if err == nil {
		return ""
	}
	_, body := rs.describe(r, err)
	switch b := body.(type) {
	case ValidationError:
		return b.Message
	case ErrorResponse:
		return b.Message
	}
	return err.Error()
}

func (rs *Responder) describe(r *http.Request, err error) (int, any) {
	tag := rs.locale.Negotiate(r)
	msg := func(key string, args ...any) string {
		return rs.catalog.Sprintf(tag, key, args...)
	}

	var (
		verrs      domain.ValidationErrors
		uploadErr  *domain.UploadError
		persistErr *domain.PersistenceError
		fetchErr   *domain.FetchError
	)
	switch {
	case errors.As(err, &verrs):
		key := i18n.MsgValidation
		if verrs.Has("title") || verrs.Has("brand") {
			key = i18n.MsgTitleBrand
		}
		return http.StatusUnprocessableEntity, ValidationError{
			Message:  msg(key),
			Messages: verrs.Messages(),
			Fields:   verrs,
		}
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, ErrorResponse{Message: msg(i18n.MsgBadRequest)}
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, ErrorResponse{Message: msg(i18n.MsgNotFound)}
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, ErrorResponse{Message: msg(i18n.MsgSessionNotFound)}
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict, ErrorResponse{Message: msg(i18n.MsgBusy)}
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, ErrorResponse{Message: msg(i18n.MsgInvalidTransition)}
	case errors.As(err, &uploadErr):
		return http.StatusBadGateway, ErrorResponse{Message: msg(i18n.MsgUpload, uploadErr.Err.Error())}
	case errors.As(err, &persistErr):
		detail := persistErr.Message
		if persistErr.Status != 0 {
			detail = fmt.Sprintf("%d %s", persistErr.Status, persistErr.Message)
		}
		return http.StatusBadGateway, ErrorResponse{Message: msg(i18n.MsgPersistence, detail), Status: persistErr.Status}
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway, ErrorResponse{Message: msg(i18n.MsgFetch), Retry: msg(i18n.MsgRetry)}
	}
	return http.StatusInternalServerError, ErrorResponse{Message: msg(i18n.MsgInternal)}
}
