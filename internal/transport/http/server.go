package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/lo"
	sloghttp "github.com/samber/slog-http"

	channelDomain "github.com/reshetovitsme/channel-relay/internal/modules/channel/domain"
	feedService "github.com/reshetovitsme/channel-relay/internal/modules/feed/service"
	monitorService "github.com/reshetovitsme/channel-relay/internal/modules/monitor/service"
	"github.com/reshetovitsme/channel-relay/internal/shared/config"
	apperrors "github.com/reshetovitsme/channel-relay/internal/shared/errors"
)

// Monitor is what the status endpoint reports on
type Monitor interface {
	Status() monitorService.Status
}

// PendingCounter reports how many posts wait for decisions
type PendingCounter interface {
	PendingCount() int
}

// SourceLister lists every tracked source
type SourceLister interface {
	GetAllSources(ctx context.Context) ([]*channelDomain.SourceChannel, error)
}

// Server exposes health, monitor status and per-owner RSS feeds
type Server struct {
	cfg         *config.Config
	feedService *feedService.Service
	monitor     Monitor
	pending     PendingCounter
	sources     SourceLister
	logger      *slog.Logger
	server      *http.Server
}

// New creates a new HTTP server
func New(cfg *config.Config, feedService *feedService.Service, monitor Monitor, pending PendingCounter, sources SourceLister) *Server {
	return &Server{
		cfg:         cfg,
		feedService: feedService,
		monitor:     monitor,
		pending:     pending,
		sources:     sources,
		logger:      slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Handler builds the routed handler with access logging and panic recovery
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rss/{ownerID}", s.handleRSSFeed)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := sloghttp.Recovery(mux)
	return sloghttp.New(s.logger)(handler)
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.cfg.HTTPPort)
	s.logger.Info("HTTP server starting", "addr", addr)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleRSSFeed(w http.ResponseWriter, r *http.Request) {
	ownerID, err := strconv.ParseInt(r.PathValue("ownerID"), 10, 64)
	if err != nil {
		http.Error(w, "Owner channel ID must be a number", http.StatusBadRequest)
		return
	}

	feed, err := s.feedService.GenerateFeed(r.Context(), ownerID)
	if errors.Is(err, apperrors.ErrOwnerNotFound) {
		http.Error(w, "Owner channel not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("Error generating feed", "owner_id", ownerID, "error", err)
		http.Error(w, "Failed to generate feed", http.StatusInternalServerError)
		return
	}

	rss, err := feed.ToRss()
	if err != nil {
		s.logger.Error("Error converting feed to RSS", "error", err)
		http.Error(w, "Failed to generate RSS", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rss))
}

type sourceStatus struct {
	Identifier     string `json:"identifier"`
	Status         string `json:"status"`
	Reason         string `json:"reason,omitempty"`
	LastSeenPostID int64  `json:"last_seen_post_id"`
}

type statusResponse struct {
	monitorService.Status
	PendingPosts int            `json:"pending_posts"`
	Sources      []sourceStatus `json:"sources"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sources, err := s.sources.GetAllSources(r.Context())
	if err != nil {
		s.logger.Error("Error listing sources", "error", err)
		http.Error(w, "Failed to read status", http.StatusInternalServerError)
		return
	}

	resp := statusResponse{
		Status:       s.monitor.Status(),
		PendingPosts: s.pending.PendingCount(),
		Sources: lo.Map(sources, func(src *channelDomain.SourceChannel, _ int) sourceStatus {
			return sourceStatus{
				Identifier:     src.Display(),
				Status:         src.Status.String(),
				Reason:         src.StatusReason,
				LastSeenPostID: src.LastSeenPostID,
			}
		}),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("Error writing status", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
