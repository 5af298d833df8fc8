package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/jupiterclapton/reelfeed/internal/core/domain"
	"github.com/jupiterclapton/reelfeed/internal/core/ports"
	"github.com/jupiterclapton/reelfeed/internal/core/services"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Server expose les trois feeds en HTTP. L'authentification vit dans la
// gateway en amont, qui injecte l'identité via X-User-ID.
type Server struct {
	feed            ports.FeedService
	recommendations ports.RecommendationService
}

func NewServer(feed ports.FeedService, recommendations ports.RecommendationService) *Server {
	return &Server{feed: feed, recommendations: recommendations}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/feed", s.handleMainFeed)
		r.Get("/feed/following", s.handleFollowingFeed)
		r.Get("/feed/recommended", s.handleRecommendedFeed)

		// Route interne (non exposée par la gateway) : purge des batchs
		r.Post("/internal/recommendations/{userID}/invalidate", s.handleInvalidate)
	})
	return r
}

func (s *Server) handleMainFeed(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	cursor := r.URL.Query().Get("cursor")
	limit := parseLimit(r.URL.Query().Get("limit"))

	page, err := s.feed.MainFeed(r.Context(), userID, cursor, limit)
	if err != nil {
		writeServiceError(w, "main feed", err)
		return
	}
	writePage(w, page)
}

func (s *Server) handleFollowingFeed(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	cursor := r.URL.Query().Get("cursor")
	limit := parseLimit(r.URL.Query().Get("limit"))

	page, err := s.feed.FollowingFeed(r.Context(), userID, cursor, limit)
	if err != nil {
		writeServiceError(w, "following feed", err)
		return
	}
	writePage(w, page)
}

func (s *Server) handleRecommendedFeed(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"))

	// Le curseur du feed recommandé encode "batch:offset"
	batchNumber, offset, err := services.DecodeBatchCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cursor")
		return
	}

	page, err := s.recommendations.RecommendedFeed(r.Context(), userID, batchNumber, offset, limit)
	if err != nil {
		writeServiceError(w, "recommended feed", err)
		return
	}
	writePage(w, page)
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user id")
		return
	}
	if err := s.recommendations.Invalidate(r.Context(), userID); err != nil {
		writeServiceError(w, "invalidate", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// parseLimit borne le limit à [1, 100], défaut 20 (valeur absente ou invalide)
func parseLimit(raw string) int {
	if raw == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultLimit
	}
	if n < 1 {
		return 1
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

func writeServiceError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, domain.ErrInvalidCursor) {
		writeError(w, http.StatusBadRequest, "invalid cursor")
		return
	}
	slog.Error("Feed request failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writePage(w http.ResponseWriter, page *domain.FeedPage) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toFeedResponse(page)); err != nil {
		slog.Error("Failed to encode feed page", "error", err)
	}
}
