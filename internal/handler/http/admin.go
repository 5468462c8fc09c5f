package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/LoosePrince/Huisheen/internal/domain/subscription"
	"github.com/LoosePrince/Huisheen/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AdminHandler interface {
	SetServiceStatus(w http.ResponseWriter, r *http.Request)
}

type AdminHandlerImpl struct {
	subscriptionService subscription.Service
}

func NewAdminHandler(subscriptionService subscription.Service) AdminHandler {
	return &AdminHandlerImpl{subscriptionService: subscriptionService}
}

// SetServiceStatus implements AdminHandler. It is the operator kill switch:
// flipping it off silences every subscription on the service host at once.
func (h *AdminHandlerImpl) SetServiceStatus(w http.ResponseWriter, r *http.Request) {
	var req subscription.SetServiceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	serviceHost := chi.URLParam(r, "serviceHost")

	affected, err := h.subscriptionService.SetServiceStatus(r.Context(), serviceHost, req)
	if err != nil {
		slog.Error("SetServiceStatus service error", "error", err, "service_host", serviceHost)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Service status updated", map[string]interface{}{
		"serviceHost": serviceHost,
		"isActive":    req.IsActive,
		"affected":    affected,
	})
}
