// Package http of the catalog admin API
//
// # Documentation for the catalog admin API
//
// Storefront listing, admin product forms and image uploads.
//
// Schemes: http
// BasePath: /
// Version: 1.0.0
//
// Consumes:
// - application/json
// - multipart/form-data
//
// Produces:
// - application/json
//
// swagger:meta
package http

import (
	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
	"github.com/Mr-Shodiyorov/admin-page/internal/form"
)

// NOTE: Types defined here are purely for documentation purposes
// These types are not used by any of the handlers

// Localized error message
// swagger:response errorResponse
type errorResponseWrapper struct {
	// Description of the error
	// in: body
	Body ErrorResponse
}

// Validation errors
// swagger:response validationErrorResponse
type validationErrorResponseWrapper struct {
	// Collection of the errors
	// in: body
	Body ValidationError
}

// A list of products
// swagger:response productsResponse
type productsResponseWrapper struct {
	// Products, newest first
	// in: body
	Body []domain.Product
}

// Data structure representing a single product
// swagger:response productResponse
type productResponseWrapper struct {
	// A single product
	// in: body
	Body domain.Product
}

// State of an open product form
// swagger:response draftResponse
type draftResponseWrapper struct {
	// in: body
	Body DraftResponse
}

// State of an open delete confirmation
// swagger:response deletionResponse
type deletionResponseWrapper struct {
	// in: body
	Body form.DeleteSnapshot
}

// No content response for endpoints that return 204
// swagger:response noContentResponse
type noContentResponseWrapper struct{}

// swagger:parameters getProduct
type productIDParamsWrapper struct {
	// The ID of the product
	// in: path
	// required: true
	ID string `json:"id"`
}

// swagger:parameters listProducts
type listParamsWrapper struct {
	// Matches title or brand, ignoring case
	// in: query
	Q string `json:"q"`

	// Gender tag or "all"
	// in: query
	Gender string `json:"gender"`
}

// swagger:parameters getDraft patchDraft discardDraft addVariant removeVariant addVolume removeVolume uploadImages removeImage submitDraft
type sessionParamsWrapper struct {
	// The ID of the form session
	// in: path
	// required: true
	SID string `json:"sid"`
}

// swagger:parameters patchDraft
type patchParamsWrapper struct {
	// Changed form inputs
	// in: body
	// required: true
	Body domain.DraftPatch
}

// ErrorResponse defines the structure for API error responses
//
// swagger:model
type ErrorResponse struct {
	// The error message in the request's language
	//
	// required: true
	Message string `json:"message"`

	// Status returned by the store, when it rejected the request
	Status int `json:"status,omitempty"`

	// Label of the retry action, set when loading failed
	Retry string `json:"retry,omitempty"`
}

// ValidationError defines the structure for API validation error responses
//
// swagger:model
type ValidationError struct {
	// Summary in the request's language
	//
	// required: true
	Message string `json:"message"`

	// The validation errors
	//
	// required: true
	Messages []string `json:"messages"`

	// Failed fields
	Fields domain.ValidationErrors `json:"fields"`
}
