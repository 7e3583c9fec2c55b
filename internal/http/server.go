package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/seogyeonga/auction-radar/internal/domain"
	"github.com/seogyeonga/auction-radar/internal/logger"
	"github.com/seogyeonga/auction-radar/internal/metrics"
	"github.com/seogyeonga/auction-radar/internal/scoring"
	"github.com/seogyeonga/auction-radar/internal/storage"
)

// ListingRepository is the listing store as seen by the API.
type ListingRepository interface {
	Create(ctx context.Context, l domain.Listing) (domain.Listing, error)
	Get(ctx context.Context, id string) (domain.Listing, bool, error)
	GetByCaseNo(ctx context.Context, caseNo string) (domain.Listing, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, f storage.ListFilter) ([]domain.Listing, int, error)
	Stats(ctx context.Context) (storage.Stats, error)
	Districts(ctx context.Context) ([]string, error)
	Dongs(ctx context.Context, gugun string) ([]string, error)
	AddFavorite(ctx context.Context, userID, listingID string) (bool, error)
	RemoveFavorite(ctx context.Context, userID, listingID string) (bool, error)
	Favorites(ctx context.Context, userID string) ([]domain.Listing, error)
}

// ViewCache caches rendered listing views. Optional.
type ViewCache interface {
	Get(ctx context.Context, id string) (domain.ListingView, bool, error)
	Set(ctx context.Context, v domain.ListingView) error
	Invalidate(ctx context.Context, ids ...string) error
}

type Server struct {
	Engine *scoring.Engine
	Repo   ListingRepository
	Cache  ViewCache
	log    *zap.Logger
}

func NewServer(engine *scoring.Engine, repo ListingRepository, cache ViewCache, log *zap.Logger) *Server {
	return &Server{Engine: engine, Repo: repo, Cache: cache, log: logger.Component(log, "http")}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/assess", s.handleAssess)
	r.Get("/recommendations", s.handleRecommendations)
	r.Get("/stats", s.handleStats)
	r.Get("/districts", s.handleDistricts)
	r.Get("/districts/{gugun}/dongs", s.handleDongs)

	r.Route("/users/{uid}/favorites", func(r chi.Router) {
		r.Get("/", s.handleFavoritesList)
		r.Put("/{id}", s.handleFavoriteAdd)
		r.Delete("/{id}", s.handleFavoriteRemove)
	})

	r.Route("/listings", func(r chi.Router) {
		r.Get("/", s.handleListingsList)
		r.Post("/", s.handleListingCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleListingGet)
			r.Delete("/", s.handleListingDelete)
			r.Get("/report", s.handleListingReport)
			r.Get("/prompt", s.handleListingPrompt)
		})
	})
	return r
}

// observe logs each request and records its duration by route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseLimitOffset(r *http.Request, defLimit, defOffset int) (int, int) {
	q := r.URL.Query()

	limit := defLimit
	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 {
		limit = defLimit
	}
	// safety cap
	if limit > 200 {
		limit = 200
	}

	offset := defOffset
	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = defOffset
	}

	return limit, offset
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	body := map[string]string{"error": code}
	if details != "" {
		body["details"] = details
	}
	writeJSON(w, status, body)
}

func (s *Server) internalError(w http.ResponseWriter, msg string, err error) {
	s.log.Error(msg, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal", "")
}

func writeText(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType+"; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
