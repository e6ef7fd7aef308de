package server

import (
	"context"
	"net/http"
	"time"

	"pathscategories/resolver/internal/config"
	"pathscategories/resolver/internal/domain"
	"pathscategories/resolver/internal/service"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// CategoryService is the part of service.Service the handlers depend on
type CategoryService interface {
	Snapshot() *service.Snapshot
	Refresh(ctx context.Context) (*service.Snapshot, error)
	Breadcrumbs(id domain.CategoryID) ([]domain.Breadcrumb, error)
	Select(ctx context.Context, req service.SelectRequest) (domain.SelectionPayload, string, error)
	CurrentSelection(ctx context.Context, itemSlug, fieldName string) (domain.SelectionPayload, bool, error)
	RenameItem(ctx context.Context, oldSlug, newSlug, fieldName, fieldType string) (domain.SelectionPayload, bool, error)
}

type Server struct {
	service  CategoryService
	validate *validator.Validate
	cfg      config.ServerConfig
}

func New(svc CategoryService, cfg config.ServerConfig) *Server {
	return &Server{
		service:  svc,
		validate: validator.New(),
		cfg:      cfg,
	}
}

// Routes configures all routes and middleware
func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", s.health)

	router.Route("/categories", func(r chi.Router) {
		r.Get("/", s.getTree)
		r.Get("/options", s.getOptions)
		r.Post("/refresh", s.refresh)
		r.Get("/{categoryID}/breadcrumbs", s.getBreadcrumbs)
	})

	router.Route("/items/{itemSlug}/fields/{fieldName}", func(r chi.Router) {
		r.Get("/selection", s.getSelection)
		r.Post("/selection", s.postSelection)
		r.Post("/rename", s.renameItem)
	})

	return router
}

// ListenAndServe serves until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("🌐 HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.ShutdownTimeout)*time.Second)
	defer cancel()

	log.Info("🛑 Shutting down HTTP server...")
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": chimiddleware.GetReqID(r.Context()),
		}).Debug("Handled request")
	})
}
