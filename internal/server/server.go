package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/promptgate/apiserver/config"
	"github.com/promptgate/apiserver/internal/auth"
	"github.com/promptgate/apiserver/internal/db"
	"github.com/promptgate/apiserver/internal/handlers"
	"github.com/promptgate/apiserver/internal/llm"
	"github.com/promptgate/apiserver/internal/logger"
	"github.com/promptgate/apiserver/internal/services"
	"github.com/promptgate/apiserver/internal/store"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	log        *zap.Logger
}

// New constructs a Server. The schema is migrated here, before the listener
// opens; any failure aborts startup.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	mode := logger.ProductionMode
	if os.Getenv("ENV") == "dev" {
		mode = logger.DevelopmentMode
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(dbConn); err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	userService := services.NewUserService(userRepo)

	hasher := auth.NewHasher(cfg.BcryptCost)
	issuer, err := auth.NewIssuer(cfg.JWTSecret)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	openaiClient, err := llm.NewOpenAIClient(cfg.OpenAI)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	gateway := llm.New(openaiClient)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	router.Use(requestLogger(log))

	router.Get("/healthz", handlers.Healthz)
	router.Route("/api", func(r chi.Router) {
		handlers.AuthRouter(r, userService, hasher, issuer, log)
		handlers.CompletionRouter(r, gateway, log)
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		log:        log,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.log.Info("listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	_ = s.log.Sync()
	return s.httpServer.Close()
}
