package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/cors"

	"github.com/versely/versely/internal/adapters/secondary/printview"
	"github.com/versely/versely/internal/domain/entities"
	"github.com/versely/versely/internal/domain/ports"
	"github.com/versely/versely/internal/domain/services"
)

// Server exposes the library, editing pipeline, flows, and live display
// over HTTP. It doubles as the persistence endpoint that remote devices
// sync through.
type Server struct {
	server      *http.Server
	connMgr     *ConnectionManager
	store       ports.Store
	library     *services.LibraryService
	flows       *services.FlowService
	presenter   *services.PresenterService
	regenerator ports.Regenerator
	printer     *printview.Renderer
	sanitizer   *bluemonday.Policy
	config      *entities.ServerConfig
	logger      *slog.Logger
	mu          sync.RWMutex
	running     bool
}

// NewServer creates a new HTTP server.
// config must not be nil.
func NewServer(
	store ports.Store,
	library *services.LibraryService,
	flows *services.FlowService,
	regenerator ports.Regenerator,
	config *entities.ServerConfig,
	logger *slog.Logger,
) *Server {
	if config == nil {
		panic("server config cannot be nil - provide a valid ServerConfig")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		connMgr:     NewConnectionManager(),
		store:       store,
		library:     library,
		flows:       flows,
		regenerator: regenerator,
		printer:     printview.NewRenderer(),
		sanitizer:   slidePolicy(),
		config:      config,
		logger:      logger.With("component", "http-server"),
	}
}

// SetPresenter wires the presenter service. The presenter broadcasts
// through this server, so it is constructed after it; call this before
// Start.
func (s *Server) SetPresenter(presenter *services.PresenterService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presenter = presenter
}

// slidePolicy builds the sanitizer applied to slide HTML arriving over the
// wire. Slide bodies carry inline styles, so those survive.
func slidePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("style", "class").Globally()
	return p
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}

	go s.connMgr.Run(ctx)

	router := s.setupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.GetCORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	handler := c.Handler(router)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      handler,
		ReadTimeout:  s.config.GetReadTimeout(),
		WriteTimeout: s.config.GetWriteTimeout(),
		IdleTimeout:  60 * s.config.GetReadTimeout() / 15,
	}
	s.running = true
	s.mu.Unlock()

	go func() {
		s.logger.Info("http server starting", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.connMgr.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.GetShutdownTimeout())
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.running = false
	return nil
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() http.Handler {
	r := mux.NewRouter()

	// WebSocket endpoint for displays and operator consoles
	r.HandleFunc("/ws", s.handleWebSocket)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// Collections, one route family per kind
	for _, kind := range entities.CollectionKinds {
		s.registerCollectionRoutes(api, kind)
	}
	api.HandleFunc("/songs/import", s.handleImportSong).Methods(http.MethodPost)

	// Slides
	api.HandleFunc("/slides", s.handleListSlides).Methods(http.MethodGet)
	api.HandleFunc("/slides/{id}", s.handleGetSlide).Methods(http.MethodGet)
	api.HandleFunc("/slides/{id}", s.handlePutSlide).Methods(http.MethodPut)
	api.HandleFunc("/slides/{id}", s.handleDeleteSlide).Methods(http.MethodDelete)

	// Text content
	api.HandleFunc("/content", s.handlePutContent).Methods(http.MethodPost)
	api.HandleFunc("/content/{key}", s.handleGetContent).Methods(http.MethodGet)
	api.HandleFunc("/content/{key}", s.handleDeleteContent).Methods(http.MethodDelete)

	// Flows
	api.HandleFunc("/flows", s.handleListFlows).Methods(http.MethodGet)
	api.HandleFunc("/flows", s.handleCreateFlow).Methods(http.MethodPost)
	api.HandleFunc("/flows/{id}", s.handleGetFlow).Methods(http.MethodGet)
	api.HandleFunc("/flows/{id}", s.handleDeleteFlow).Methods(http.MethodDelete)
	api.HandleFunc("/flows/{id}/items", s.handleAddFlowItem).Methods(http.MethodPost)
	api.HandleFunc("/flows/{id}/items/{itemID}", s.handleRemoveFlowItem).Methods(http.MethodDelete)
	api.HandleFunc("/flows/{id}/reorder", s.handleReorderFlow).Methods(http.MethodPost)
	api.HandleFunc("/flows/{id}/print", s.handlePrintFlow).Methods(http.MethodGet)

	// Live display
	api.HandleFunc("/display/state", s.handleDisplayState).Methods(http.MethodGet)
	api.HandleFunc("/display/show", s.handleDisplayShow).Methods(http.MethodPost)
	api.HandleFunc("/display/navigate", s.handleDisplayNavigate).Methods(http.MethodPost)
	api.HandleFunc("/display/blank", s.handleDisplayBlank).Methods(http.MethodPost)
	api.HandleFunc("/display/cycle", s.handleDisplayCycle).Methods(http.MethodPost)

	// Apply middleware in order: security -> rate limiting -> logging -> recovery
	handler := securityHeadersMiddleware(r)
	handler = rateLimitMiddleware(handler)
	handler = loggingMiddleware(handler, s.logger)
	handler = recoveryMiddleware(handler, s.logger)

	return handler
}

// registerCollectionRoutes wires the CRUD family for one collection kind.
func (s *Server) registerCollectionRoutes(api *mux.Router, kind entities.CollectionKind) {
	base := "/" + kindPath(kind)

	api.HandleFunc(base, s.listCollectionsHandler(kind)).Methods(http.MethodGet)
	api.HandleFunc(base, s.createCollectionHandler(kind)).Methods(http.MethodPost)
	api.HandleFunc(base+"/{id}", s.getCollectionHandler(kind)).Methods(http.MethodGet)
	api.HandleFunc(base+"/{id}", s.updateCollectionHandler(kind)).Methods(http.MethodPut)
	api.HandleFunc(base+"/{id}", s.deleteCollectionHandler(kind)).Methods(http.MethodDelete)
	api.HandleFunc(base+"/{id}/background", s.backgroundHandler(kind)).Methods(http.MethodPost)

	if kind == entities.KindSermon {
		api.HandleFunc(base+"/{id}/regenerate", s.regenerateSermonHandler()).Methods(http.MethodPost)
	}
}

// kindPath maps a collection kind to its URL segment.
func kindPath(kind entities.CollectionKind) string {
	switch kind {
	case entities.KindSermon:
		return "sermons"
	case entities.KindAssetDeck:
		return "decks"
	default:
		return "songs"
	}
}

var _ ports.DisplayBroadcaster = (*Server)(nil)
