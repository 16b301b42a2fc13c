package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"wp-engine/engine"
	"wp-engine/mlb"
)

type Server struct {
	router     *mux.Router
	httpServer *http.Server
	config     *Config
	mlb        *mlb.Client
	respCache  *QueryCache
	limiter    *RateLimiter
	tables     *engine.TableCache
}

type Config struct {
	Port          string
	LogLevel      string
	CORSOrigins   []string
	DefaultRPG    float64
	CacheTTL      time.Duration
	RatePerMinute int
	RateBurst     int
	MLBBaseURL    string
}

func NewConfig() *Config {
	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("default_runs_per_game", engine.MLB.RunsPerGame)
	v.SetDefault("cache_ttl", "30s")
	v.SetDefault("rate_per_minute", 120)
	v.SetDefault("rate_burst", 30)
	v.SetDefault("mlb_api_base_url", mlb.DefaultBaseURL)
	v.AutomaticEnv()

	return &Config{
		Port:          v.GetString("port"),
		LogLevel:      v.GetString("log_level"),
		CORSOrigins:   strings.Split(v.GetString("cors_origins"), ","),
		DefaultRPG:    v.GetFloat64("default_runs_per_game"),
		CacheTTL:      v.GetDuration("cache_ttl"),
		RatePerMinute: v.GetInt("rate_per_minute"),
		RateBurst:     v.GetInt("rate_burst"),
		MLBBaseURL:    v.GetString("mlb_api_base_url"),
	}
}

func NewServer(config *Config) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		config:    config,
		mlb:       mlb.NewClient(config.MLBBaseURL),
		respCache: NewQueryCache(),
		limiter:   NewRateLimiter(config.RatePerMinute, config.RateBurst),
		tables:    engine.NewTableCache(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/", s.handleIndex).Methods("GET")

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/wp", s.handleWP).Methods("GET")
	api.HandleFunc("/wp/play", s.handleWPA).Methods("GET")
	api.HandleFunc("/re24", s.handleRE24).Methods("GET")
	api.HandleFunc("/wp/scenario", s.handleScenario).Methods("GET")
	api.HandleFunc("/games/today", s.handleGamesToday).Methods("GET")
	api.HandleFunc("/wp/live/{gamePk}", s.handleLiveWP).Methods("GET")
	api.HandleFunc("/metrics", s.handleMetrics).Methods("GET")

	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.rateLimitMiddleware)
	s.router.Use(s.metricsMiddleware)
}

// handler wraps the router with the outer middleware stack: panic recovery,
// response compression, and CORS.
func (s *Server) handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return handlers.RecoveryHandler()(handlers.CompressHandler(c.Handler(s.router)))
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Info().Str("port", s.config.Port).Msg("starting win probability engine")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Middleware

type contextKey string

const requestIDKey contextKey = "request_id"

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, r)

		requestID, _ := r.Context().Value(requestIDKey).(string)
		log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", lrw.statusCode).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientID(r)) {
			writeError(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		appMetrics.IncrementRequests()
		next.ServeHTTP(w, r)
		appMetrics.AddResponseTime(time.Since(start))
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func main() {
	config := NewConfig()
	setupLogging(config.LogLevel)

	server := NewServer(config)

	// Periodic sweep of expired response-cache entries.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			server.respCache.CleanExpired()
		}
	}()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatal().Err(err).Msg("shutdown failed")
		}
	}()

	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}
