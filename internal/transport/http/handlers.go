package http

import (
	"net/http"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
	"github.com/Mr-Shodiyorov/admin-page/internal/service"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
)

type ProductHandler struct {
	productService service.ProductService
	respond        *Responder
	logger         hclog.Logger
}

func NewProductHandler(ps service.ProductService, respond *Responder, log hclog.Logger) *ProductHandler {
	return &ProductHandler{
		productService: ps,
		respond:        respond,
		logger:         log,
	}
}

// GetProducts handles GET /products
//
// swagger:route GET /products products listProducts
//
// Returns the products, newest first, optionally filtered.
//
// Responses:
//
//	200: productsResponse
//	502: errorResponse
func (h *ProductHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	filter := service.Filter{
		Query:  r.URL.Query().Get("q"),
		Gender: r.URL.Query().Get("gender"),
	}

	products, err := h.productService.ListProducts(r.Context(), filter)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.respond.JSON(w, http.StatusOK, products)
}

// GetProduct handles GET /products/{id}
//
// swagger:route GET /products/{id} products getProduct
//
// Returns a product by ID.
//
// Responses:
//
//	200: productResponse
//	404: errorResponse
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := domain.ProductID(mux.Vars(r)["id"])

	product, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.respond.JSON(w, http.StatusOK, product)
}
