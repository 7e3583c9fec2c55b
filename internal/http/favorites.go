package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type FavoritesResponse struct {
	UserID string           `json:"user_id"`
	Items  []ListingSummary `json:"items"`
}

func (s *Server) handleFavoritesList(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	listings, err := s.Repo.Favorites(r.Context(), uid)
	if err != nil {
		s.internalError(w, "list favorites", err)
		return
	}

	items := make([]ListingSummary, 0, len(listings))
	for _, l := range listings {
		items = append(items, summarize(l))
	}
	writeJSON(w, http.StatusOK, FavoritesResponse{UserID: uid, Items: items})
}

// handleFavoriteAdd is idempotent: 201 when the listing was added, 200 when
// it was already watched.
func (s *Server) handleFavoriteAdd(w http.ResponseWriter, r *http.Request) {
	l, ok := s.loadListing(w, r)
	if !ok {
		return
	}
	added, err := s.Repo.AddFavorite(r.Context(), chi.URLParam(r, "uid"), l.ID)
	if err != nil {
		s.internalError(w, "add favorite", err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]string{"status": "watching", "listing_id": l.ID})
}

func (s *Server) handleFavoriteRemove(w http.ResponseWriter, r *http.Request) {
	removed, err := s.Repo.RemoveFavorite(r.Context(), chi.URLParam(r, "uid"), chi.URLParam(r, "id"))
	if err != nil {
		s.internalError(w, "remove favorite", err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) handleDongs(w http.ResponseWriter, r *http.Request) {
	gugun := chi.URLParam(r, "gugun")
	d, err := s.Repo.Dongs(r.Context(), gugun)
	if err != nil {
		s.internalError(w, "list dongs", err)
		return
	}
	if d == nil {
		d = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"gugun": gugun, "dongs": d})
}
