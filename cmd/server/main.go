package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
	"github.com/Mr-Shodiyorov/admin-page/internal/draft"
	"github.com/Mr-Shodiyorov/admin-page/internal/events"
	"github.com/Mr-Shodiyorov/admin-page/internal/form"
	"github.com/Mr-Shodiyorov/admin-page/internal/i18n"
	"github.com/Mr-Shodiyorov/admin-page/internal/pricing"
	"github.com/Mr-Shodiyorov/admin-page/internal/repository"
	"github.com/Mr-Shodiyorov/admin-page/internal/service"
	"github.com/Mr-Shodiyorov/admin-page/internal/storage"
	"github.com/Mr-Shodiyorov/admin-page/internal/supabase"
	httpTransport "github.com/Mr-Shodiyorov/admin-page/internal/transport/http"
	websocketTransport "github.com/Mr-Shodiyorov/admin-page/internal/transport/websocket"
	"github.com/hashicorp/go-hclog"
	"github.com/nicholasjackson/env"
)

// Environment variables
var (
	bindAddress = env.String("BIND_ADDRESS", false,
		":9090", "Bind address for the server")
	logLevel = env.String("LOG_LEVEL", false,
		"debug", "Log output level for the server [debug, info, trace]")

	storeBackend = env.String("STORE_BACKEND", false,
		"postgrest", "Product store [postgrest, sqlite, postgres, memory]")
	databaseDSN = env.String("DATABASE_DSN", false,
		"catalog.db", "DSN of the sqlite or postgres product store")
	supabaseURL = env.String("SUPABASE_URL", false,
		"", "Base URL of the hosted backend")
	supabaseKey = env.String("SUPABASE_KEY", false,
		"", "Anonymous API key of the hosted backend")
	apiRateLimit = env.Int("API_RATE_LIMIT", false,
		10, "Requests per second sent to the hosted backend, 0 for no limit")

	storageBackend = env.String("STORAGE_BACKEND", false,
		"supabase", "Image storage [supabase, local]")
	storageBucket = env.String("STORAGE_BUCKET", false,
		"product-images", "Bucket product images are stored in")
	storageBasePath = env.String("STORAGE_BASE_PATH", false,
		"./imagestore", "Directory of the local image storage")
	publicBaseURL = env.String("PUBLIC_BASE_URL", false,
		"http://localhost:9090", "Public URL of this server, used for locally stored images")
	maxUploadBytes = env.Int("MAX_UPLOAD_BYTES", false,
		5<<20, "Largest accepted image in bytes")
	uploadCleanup = env.Bool("UPLOAD_CLEANUP", false,
		true, "Remove the already stored images of a batch that failed")

	pricingSchema = env.String("PRICING_SCHEMA", false,
		"variants", "Pricing columns written to the store [variants, flat]")
	duplicateVolumes = env.String("DUPLICATE_VOLUMES", false,
		"replace", "Handling of a variant added for an existing volume [replace, append]")
	defaultLocale = env.String("DEFAULT_LOCALE", false,
		"en", "UI language used when a request does not ask for one [en, uz, ru]")
	corsOrigins = env.String("CORS_ORIGINS", false,
		"http://localhost:5173", "Comma separated origins allowed to call the API")
	swaggerFile = env.String("SWAGGER_FILE", false,
		"./swagger.yaml", "Path of the API description served at /swagger.yaml")
	formIdleMinutes = env.Int("FORM_IDLE_MINUTES", false,
		60, "Minutes an untouched form session is kept open, 0 keeps them until closed")
)

func main() {
	env.Parse()

	// Initialize the logger
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "catalog-admin",
		Level: hclog.LevelFromString(*logLevel),
	})

	// Create a standard logger for the HTTP server
	standardLogger := logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true})

	// Initialize the event bus - this will be shared between services
	eventBus := events.NewEventBus[any]()
	defer eventBus.Close()

	var client *supabase.Client
	if *storeBackend == "postgrest" || *storageBackend == "supabase" {
		if *supabaseURL == "" || *supabaseKey == "" {
			logger.Error("SUPABASE_URL and SUPABASE_KEY are required", "store", *storeBackend, "storage", *storageBackend)
			os.Exit(1)
		}
		client = supabase.NewClient(*supabaseURL, *supabaseKey, *apiRateLimit, logger.Named("supabase"))
	}

	prodRep, err := newRepository(client, logger)
	if err != nil {
		logger.Error("Unable to create product store", "backend", *storeBackend, "error", err)
		os.Exit(1)
	}

	var (
		store storage.Storage
		local *storage.Local
	)
	switch *storageBackend {
	case "supabase":
		store = storage.NewSupabase(client)
	case "local":
		local, err = storage.NewLocal(*storageBasePath, strings.TrimRight(*publicBaseURL, "/"), *maxUploadBytes)
		if err != nil {
			logger.Error("Unable to create local storage", "path", *storageBasePath, "error", err)
			os.Exit(1)
		}
		store = local
	default:
		logger.Error("Unknown storage backend", "backend", *storageBackend)
		os.Exit(1)
	}

	schema := domain.Schema(*pricingSchema)
	if schema != domain.SchemaVariants && schema != domain.SchemaFlat {
		logger.Error("Unknown pricing schema", "schema", *pricingSchema)
		os.Exit(1)
	}
	policy, err := pricing.ParseDuplicatePolicy(*duplicateVolumes)
	if err != nil {
		logger.Error("Invalid duplicate volume policy", "error", err)
		os.Exit(1)
	}

	locale, err := i18n.NewLocale(*defaultLocale, eventBus)
	if err != nil {
		logger.Error("Invalid default locale", "error", err)
		os.Exit(1)
	}

	// Services
	ps := service.NewProductService(prodRep, eventBus, logger.Named("product-service"))
	is := service.NewImageService(store, service.ImageOptions{
		Bucket:   *storageBucket,
		MaxBytes: *maxUploadBytes,
		Cleanup:  *uploadCleanup,
	}, logger.Named("image-service"))

	validator := domain.NewValidation()
	reconciler := draft.NewReconciler(schema, policy, validator)
	forms := form.NewManager(ps, is, reconciler, logger.Named("forms"))

	// Drop forms abandoned without a discard, e.g. a closed browser tab
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if *formIdleMinutes > 0 {
		go forms.Run(sweepCtx, time.Minute, time.Duration(*formIdleMinutes)*time.Minute)
	}

	cors := httpTransport.DefaultCORSConfig()
	cors.AllowedOrigins = splitList(*corsOrigins)

	respond := httpTransport.NewResponder(i18n.NewCatalog(), locale, logger.Named("http"))
	handlers := httpTransport.Handlers{
		Products: httpTransport.NewProductHandler(ps, respond, logger.Named("http-handler")),
		Forms:    httpTransport.NewFormHandler(forms, respond, int64(*maxUploadBytes), logger.Named("form-handler")),
		Settings: httpTransport.NewSettingsHandler(locale, respond),
		WebSocket: websocketTransport.NewHandler(logger.Named("websocket-handler"), eventBus, func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || cors.Allows(origin)
		}),
	}
	if local != nil {
		handlers.Files = httpTransport.NewFiles(logger.Named("files"), local)
	}

	mw := httpTransport.NewMiddleware(logger, validator, respond, cors)
	router := httpTransport.NewRouter(handlers, mw, *swaggerFile)

	// Create the HTTP Server
	server := &http.Server{
		Addr:         *bindAddress,
		Handler:      router,
		ErrorLog:     standardLogger,
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	// Start the server in a new goroutine
	go func() {
		logger.Info("Starting server",
			"bind_address", *bindAddress,
			"store", *storeBackend,
			"storage", *storageBackend,
			"schema", schema,
			"duplicates", policy,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Error starting server", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down server")
	stopSweep()

	// Context for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down server", "error", err)
	}
}

func newRepository(client *supabase.Client, logger hclog.Logger) (repository.ProductRepository, error) {
	switch *storeBackend {
	case "postgrest":
		return repository.NewPostgRESTProductRepository(client, logger.Named("postgrest")), nil
	case "sqlite", "postgres":
		db, err := repository.OpenDatabase(*storeBackend, *databaseDSN)
		if err != nil {
			return nil, err
		}
		return repository.NewGORMProductRepository(db), nil
	case "memory":
		return repository.NewMemoryProductRepository(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", *storeBackend)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
