package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/LoosePrince/Huisheen/internal/domain/auth"
	"github.com/LoosePrince/Huisheen/internal/domain/notification"
	"github.com/LoosePrince/Huisheen/internal/handler/http/middleware"
	"github.com/LoosePrince/Huisheen/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ExternalHandler interface {
	Auth(w http.ResponseWriter, r *http.Request)
	ListNotifications(w http.ResponseWriter, r *http.Request)
	MarkRead(w http.ResponseWriter, r *http.Request)
	MarkReadBatch(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
}

type ExternalHandlerImpl struct {
	authService         auth.Service
	notificationService notification.Service
}

func NewExternalHandler(authService auth.Service, notificationService notification.Service) ExternalHandler {
	return &ExternalHandlerImpl{
		authService:         authService,
		notificationService: notificationService,
	}
}

// Auth implements ExternalHandler. A valid notify code buys a 30-day bearer
// token scoped to the code's owner.
func (h *ExternalHandlerImpl) Auth(w http.ResponseWriter, r *http.Request) {
	var req auth.ExchangeNotifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.authService.ExchangeNotifyCode(r.Context(), req)
	if err != nil {
		slog.Warn("External auth rejected", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// ListNotifications implements ExternalHandler.
func (h *ExternalHandlerImpl) ListNotifications(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ExternalClaimsFromContext(r.Context())

	req := notification.ExternalListRequest{
		UserID:   claims.UserID,
		Type:     r.URL.Query().Get("type"),
		Priority: r.URL.Query().Get("priority"),
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			response.BadRequest(w, "Invalid limit", nil)
			return
		}
		req.Limit = n
	}
	if since := r.URL.Query().Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			response.BadRequest(w, "Invalid since timestamp, expected RFC3339", nil)
			return
		}
		req.Since = &t
	}

	resp, err := h.notificationService.ListUnread(r.Context(), req)
	if err != nil {
		slog.Error("ListNotifications service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// MarkRead implements ExternalHandler.
func (h *ExternalHandlerImpl) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ExternalClaimsFromContext(r.Context())
	id := chi.URLParam(r, "id")

	resp, err := h.notificationService.MarkRead(r.Context(), id, claims.UserID)
	if err != nil {
		slog.Error("MarkRead service error", "error", err, "notification_id", id)
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// MarkReadBatch implements ExternalHandler. An empty id list marks everything
// read.
func (h *ExternalHandlerImpl) MarkReadBatch(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ExternalClaimsFromContext(r.Context())

	var req notification.MarkReadBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	marked, err := h.notificationService.MarkReadBatch(r.Context(), claims.UserID, req)
	if err != nil {
		slog.Error("MarkReadBatch service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]int{"marked": marked})
}

// Delete implements ExternalHandler.
func (h *ExternalHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ExternalClaimsFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.notificationService.Delete(r.Context(), id, claims.UserID); err != nil {
		slog.Error("Delete service error", "error", err, "notification_id", id)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Notification deleted", nil)
}

// Stats implements ExternalHandler.
func (h *ExternalHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ExternalClaimsFromContext(r.Context())

	resp, err := h.notificationService.Stats(r.Context(), claims.UserID)
	if err != nil {
		slog.Error("Stats service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}
