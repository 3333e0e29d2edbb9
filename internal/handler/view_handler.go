package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"draftshare/internal/domain"
	"draftshare/internal/service"
)

// ViewHandler обслуживает анонимный просмотр записи. Опубликованные записи
// отдаются как есть; неопубликованные — только через AccessResolver по
// действующему токену из query-параметра share.
type ViewHandler struct {
	contents service.ContentProvider
	resolver *service.AccessResolver
}

func NewViewHandler(contents service.ContentProvider, resolver *service.AccessResolver) *ViewHandler {
	return &ViewHandler{contents: contents, resolver: resolver}
}

func (h *ViewHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	contentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid content ID", http.StatusBadRequest)
		return
	}

	content, err := h.contents.GetPublishedByID(r.Context(), contentID)
	if err != nil && !errors.Is(err, domain.ErrContentNotFound) {
		log.Printf("[GetContent] Failed to get content: %v", err)
		writeServiceError(w, err)
		return
	}

	// Публичный запрос ничего не нашёл: запись либо не существует,
	// либо не опубликована. Токен может открыть второй случай.
	if content == nil {
		token := r.URL.Query().Get("share")
		content, err = h.resolver.ResolveViewable(r.Context(), contentID, token)
		if err != nil {
			log.Printf("[GetContent] Failed to resolve shared content: %v", err)
			writeServiceError(w, err)
			return
		}
		if content == nil {
			http.Error(w, "Content not found", http.StatusNotFound)
			return
		}
		log.Printf("[GetContent] Serving unpublished content %s via share token", contentID)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(content)
}
