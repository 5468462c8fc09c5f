package http

import (
	"log/slog"
	"net/http"

	"github.com/LoosePrince/Huisheen/internal/domain/auth"
	"github.com/LoosePrince/Huisheen/internal/handler/http/middleware"
	"github.com/LoosePrince/Huisheen/internal/handler/http/response"
)

type UserHandler interface {
	NotifyCode(w http.ResponseWriter, r *http.Request)
}

type UserHandlerImpl struct {
	authService auth.Service
}

func NewUserHandler(authService auth.Service) UserHandler {
	return &UserHandlerImpl{authService: authService}
}

// NotifyCode implements UserHandler. Each call rotates the code, so handing
// it out invalidates whatever was issued before.
func (h *UserHandlerImpl) NotifyCode(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	resp, err := h.authService.GenerateNotifyCode(r.Context(), userID)
	if err != nil {
		slog.Error("NotifyCode service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}
