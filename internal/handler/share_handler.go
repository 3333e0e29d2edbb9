package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"draftshare/internal/auth"
	"draftshare/internal/domain"
	"draftshare/internal/service"
)

type ShareHandler struct {
	grantService *service.GrantService
	baseURL      string
}

type createShareRequest struct {
	ContentID string `json:"content_id"`
	Expires   int    `json:"expires"`
	Measure   string `json:"measure"`
}

type extendShareRequest struct {
	Expires int    `json:"expires"`
	Measure string `json:"measure"`
}

func NewShareHandler(grantService *service.GrantService, baseURL string) *ShareHandler {
	return &ShareHandler{grantService: grantService, baseURL: baseURL}
}

func (h *ShareHandler) shareURL(grant *domain.Grant) string {
	return fmt.Sprintf("%s/v1/content/%s?share=%s", h.baseURL, grant.ContentID, grant.Token)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrContentNotFound):
		http.Error(w, "Content not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrContentPublished):
		http.Error(w, "Content is already published", http.StatusConflict)
	case errors.Is(err, domain.ErrStoreUnavailable):
		http.Error(w, "Storage unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *ShareHandler) CreateShare(w http.ResponseWriter, r *http.Request) {
	log.Printf("[CreateShare] Processing new share request")

	userID, err := auth.VerifyToken(r)
	if err != nil {
		log.Printf("[CreateShare] Authentication failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[CreateShare] Failed to decode request body: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	contentID, err := uuid.Parse(req.ContentID)
	if err != nil {
		log.Printf("[CreateShare] Invalid content ID: %v", err)
		http.Error(w, "Invalid content ID", http.StatusBadRequest)
		return
	}

	grant, err := h.grantService.Create(r.Context(), userID, contentID,
		service.DurationSpec{Expires: req.Expires, Measure: req.Measure})
	if err != nil {
		log.Printf("[CreateShare] Failed to create share: %v", err)
		writeServiceError(w, err)
		return
	}

	response := struct {
		ContentID string `json:"content_id"`
		Token     string `json:"token"`
		ExpiresAt int64  `json:"expires_at"`
		URL       string `json:"url"`
	}{
		ContentID: grant.ContentID,
		Token:     grant.Token,
		ExpiresAt: grant.ExpiresAt,
		URL:       h.shareURL(grant),
	}

	log.Printf("[CreateShare] Successfully created share for content %s", grant.ContentID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

func (h *ShareHandler) ListShares(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	grants, err := h.grantService.ListGrants(r.Context(), userID)
	if err != nil {
		log.Printf("[ListShares] Failed to list shares: %v", err)
		writeServiceError(w, err)
		return
	}

	now := time.Now().Unix()
	type shareItem struct {
		ContentID string `json:"content_id"`
		Token     string `json:"token"`
		ExpiresAt int64  `json:"expires_at"`
		ExpiresIn string `json:"expires_in"`
		URL       string `json:"url"`
	}

	items := make([]shareItem, 0, len(grants))
	for _, grant := range grants {
		items = append(items, shareItem{
			ContentID: grant.ContentID,
			Token:     grant.Token,
			ExpiresAt: grant.ExpiresAt,
			ExpiresIn: service.FriendlyDelta(grant.ExpiresAt - now),
			URL:       h.shareURL(&grant),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func (h *ShareHandler) ExtendShare(w http.ResponseWriter, r *http.Request) {
	log.Printf("[ExtendShare] Processing extend request")

	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token := chi.URLParam(r, "token")
	if token == "" {
		http.Error(w, "Token is required", http.StatusBadRequest)
		return
	}

	var req extendShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ExtendShare] Failed to decode request body: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err = h.grantService.Extend(r.Context(), userID, token,
		service.DurationSpec{Expires: req.Expires, Measure: req.Measure})
	if err != nil {
		log.Printf("[ExtendShare] Failed to extend share: %v", err)
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ShareHandler) DeleteShare(w http.ResponseWriter, r *http.Request) {
	log.Printf("[DeleteShare] Processing delete request")

	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token := chi.URLParam(r, "token")
	if token == "" {
		http.Error(w, "Token is required", http.StatusBadRequest)
		return
	}

	if err := h.grantService.Delete(r.Context(), userID, token); err != nil {
		log.Printf("[DeleteShare] Failed to delete share: %v", err)
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ShareHandler) ListOwnedContent(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	owned, err := h.grantService.ListOwned(r.Context(), userID)
	if err != nil {
		log.Printf("[ListOwnedContent] Failed to list owned content: %v", err)
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(owned)
}
