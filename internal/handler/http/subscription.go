package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/LoosePrince/Huisheen/internal/domain/subscription"
	"github.com/LoosePrince/Huisheen/internal/handler/http/middleware"
	"github.com/LoosePrince/Huisheen/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type SubscriptionHandler interface {
	SubscribePassive(w http.ResponseWriter, r *http.Request)
	SubscribeActive(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	SetStatus(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	TriggerPoll(w http.ResponseWriter, r *http.Request)
}

type SubscriptionHandlerImpl struct {
	subscriptionService subscription.Service
}

func NewSubscriptionHandler(subscriptionService subscription.Service) SubscriptionHandler {
	return &SubscriptionHandlerImpl{subscriptionService: subscriptionService}
}

// SubscribePassive implements SubscriptionHandler.
func (h *SubscriptionHandlerImpl) SubscribePassive(w http.ResponseWriter, r *http.Request) {
	var req subscription.SubscribePassiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	resp, err := h.subscriptionService.SubscribePassive(r.Context(), userID, req)
	if err != nil {
		slog.Error("SubscribePassive service error", "error", err)
		response.HandleError(w, err)
		return
	}

	if resp.Updated {
		response.SuccessWithMessage(w, "Subscription updated", resp)
		return
	}
	response.Created(w, "Subscription created", resp)
}

// SubscribeActive implements SubscriptionHandler. This endpoint is called by
// the third party holding a notify code, not by the signed-in owner.
func (h *SubscriptionHandlerImpl) SubscribeActive(w http.ResponseWriter, r *http.Request) {
	var req subscription.SubscribeActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.subscriptionService.SubscribeActive(r.Context(), req)
	if err != nil {
		slog.Error("SubscribeActive service error", "error", err)
		response.HandleError(w, err)
		return
	}

	if resp.Updated {
		response.SuccessWithMessage(w, "Subscription updated, new token issued", resp)
		return
	}
	response.Created(w, "Subscription created", resp)
}

// List implements SubscriptionHandler.
func (h *SubscriptionHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	subs, err := h.subscriptionService.List(r.Context(), userID)
	if err != nil {
		slog.Error("List subscriptions service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, subs)
}

// SetStatus implements SubscriptionHandler.
func (h *SubscriptionHandlerImpl) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req subscription.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	id := chi.URLParam(r, "id")
	userID := middleware.UserIDFromContext(r.Context())

	if err := h.subscriptionService.SetActiveFlag(r.Context(), id, userID, req.IsActive); err != nil {
		slog.Error("SetStatus service error", "error", err, "subscription_id", id)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Subscription status updated", nil)
}

// Delete implements SubscriptionHandler.
func (h *SubscriptionHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := middleware.UserIDFromContext(r.Context())

	if err := h.subscriptionService.Delete(r.Context(), id, userID); err != nil {
		slog.Error("Delete subscription service error", "error", err, "subscription_id", id)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Subscription deleted", nil)
}

// TriggerPoll implements SubscriptionHandler.
func (h *SubscriptionHandlerImpl) TriggerPoll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := middleware.UserIDFromContext(r.Context())

	resp, err := h.subscriptionService.TriggerManualPoll(r.Context(), id, userID)
	if err != nil {
		slog.Error("TriggerPoll service error", "error", err, "subscription_id", id)
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}
