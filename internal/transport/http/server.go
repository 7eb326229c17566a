package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/config"
	sloghttp "github.com/samber/slog-http"
)

// NoticeFeed renders recent operator notices as a feed.
type NoticeFeed interface {
	GenerateFeed(baseURL string) *feeds.Feed
}

// Server serves health, metrics, the operator feed and, in webhook mode, Telegram updates.
type Server struct {
	cfg     *config.Config
	notices NoticeFeed
	webhook http.Handler
	logger  *slog.Logger
	server  *http.Server
}

// New creates a new HTTP server. webhook may be nil when the bot uses long polling.
func New(cfg *config.Config, notices NoticeFeed, webhook http.Handler) *Server {
	s := &Server{
		cfg:     cfg,
		notices: notices,
		webhook: webhook,
		logger:  slog.Default(),
	}
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// SetLogger sets the logger. Call it before Start.
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
	s.server.Handler = s.Handler()
}

// Handler builds the routed handler with access logging and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /ops/feed.atom", s.handleNoticeFeed)
	if s.webhook != nil {
		mux.Handle("POST "+s.cfg.WebhookPath(), s.webhook)
	}

	handler := sloghttp.Recovery(mux)
	return sloghttp.New(s.logger)(handler)
}

// Start starts the HTTP server and blocks until it is shut down
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", "addr", s.server.Addr, "webhook", s.webhook != nil)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
// A Start that runs after Shutdown returns immediately.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleNoticeFeed(w http.ResponseWriter, r *http.Request) {
	token := s.cfg.OpsFeedToken
	if token == "" {
		http.NotFound(w, r)
		return
	}
	if subtle.ConstantTimeCompare([]byte(r.URL.Query().Get("token")), []byte(token)) != 1 {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	baseURL := fmt.Sprintf("%s://%s", getScheme(r), r.Host)
	atom, err := s.notices.GenerateFeed(baseURL).ToAtom()
	if err != nil {
		s.logger.Error("Error converting notices to Atom", "error", err)
		http.Error(w, "Failed to generate feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(atom))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
