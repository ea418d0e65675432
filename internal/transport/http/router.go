package http

import (
	"net/http"

	"github.com/Mr-Shodiyorov/admin-page/internal/metrics"
	websocketTransport "github.com/Mr-Shodiyorov/admin-page/internal/transport/websocket"
	"github.com/go-openapi/runtime/middleware"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
)

// Handlers groups everything the router dispatches to. Files is nil unless
// images are stored locally.
type Handlers struct {
	Products  *ProductHandler
	Forms     *FormHandler
	Settings  *SettingsHandler
	Files     *Files
	WebSocket *websocketTransport.Handler
}

func NewRouter(h Handlers, mw *Middleware, swaggerFile string) http.Handler {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(mw.LoggingMiddleware)
	router.Use(mw.CORSMiddleware)
	router.Use(mw.ContentTypeMiddleware)

	// preflight requests only need the CORS headers
	router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Storefront
	router.HandleFunc("/products", h.Products.GetProducts).Methods("GET")
	router.HandleFunc("/products/{id}", h.Products.GetProduct).Methods("GET")
	router.HandleFunc("/pricing/preview", h.Settings.PreviewPrice).Methods("GET")
	router.HandleFunc("/settings/locale", h.Settings.GetLocale).Methods("GET")
	router.HandleFunc("/settings/locale", h.Settings.SetLocale).Methods("PUT")
	router.HandleFunc("/ws", h.WebSocket.HandleWebSocket).Methods("GET")

	// Admin forms
	admin := router.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/drafts", h.Forms.OpenDraft).Methods("POST")
	admin.HandleFunc("/drafts/{sid}", h.Forms.GetDraft).Methods("GET")
	admin.HandleFunc("/drafts/{sid}", h.Forms.DiscardDraft).Methods("DELETE")
	admin.HandleFunc("/drafts/{sid}/variants", h.Forms.AddVariant).Methods("POST")
	admin.HandleFunc("/drafts/{sid}/variants/{index:[0-9]+}", h.Forms.RemoveVariant).Methods("DELETE")
	admin.HandleFunc("/drafts/{sid}/volumes", h.Forms.AddVolume).Methods("POST")
	admin.HandleFunc("/drafts/{sid}/volumes/{volume:[0-9]+}", h.Forms.RemoveVolume).Methods("DELETE")
	admin.HandleFunc("/drafts/{sid}/images", h.Forms.UploadImages).Methods("POST")
	admin.HandleFunc("/drafts/{sid}/images/{index:[0-9]+}", h.Forms.RemoveImage).Methods("DELETE")
	admin.HandleFunc("/drafts/{sid}/submit", h.Forms.SubmitDraft).Methods("POST")
	admin.HandleFunc("/deletions", h.Forms.OpenDeletion).Methods("POST")
	admin.HandleFunc("/deletions/{sid}/confirm", h.Forms.ConfirmDeletion).Methods("POST")
	admin.HandleFunc("/deletions/{sid}", h.Forms.CancelDeletion).Methods("DELETE")

	// Routes requiring validation middleware (for request body validation)
	patchRouter := admin.Methods("PATCH").Subrouter()
	patchRouter.HandleFunc("/drafts/{sid}", h.Forms.PatchDraft)
	patchRouter.Use(mw.ValidationMiddleware)

	if h.Files != nil {
		router.HandleFunc("/images/{bucket}/{path:.+}", h.Files.GetFile).Methods("GET")
	}

	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// Serve the swagger.yaml file
	router.HandleFunc("/swagger.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		http.ServeFile(w, r, swaggerFile)
	}).Methods("GET")

	// Configure the Redoc middleware to point to the correct SpecURL
	swaggerOpts := middleware.RedocOpts{SpecURL: "/swagger.yaml"}
	router.Handle("/docs", middleware.Redoc(swaggerOpts, nil)).Methods("GET")

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(mw.Logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true})),
		handlers.PrintRecoveryStack(true),
	)
	return recovery(handlers.CompressHandler(router))
}
