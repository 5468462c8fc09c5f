package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/LoosePrince/Huisheen/internal/domain/notification"
	"github.com/LoosePrince/Huisheen/internal/handler/http/middleware"
	"github.com/LoosePrince/Huisheen/internal/handler/http/response"
	"github.com/LoosePrince/Huisheen/internal/pkg/token"
)

type NotificationHandler interface {
	Receive(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
	SSEToken(w http.ResponseWriter, r *http.Request)
}

type NotificationHandlerImpl struct {
	notificationService notification.Service
	tokenService        token.Service
}

func NewNotificationHandler(notificationService notification.Service, tokenService token.Service) NotificationHandler {
	return &NotificationHandlerImpl{
		notificationService: notificationService,
		tokenService:        tokenService,
	}
}

// Receive implements NotificationHandler. This is the public active-ingestion
// endpoint; the subscription token inside the body is the only credential.
func (h *NotificationHandlerImpl) Receive(w http.ResponseWriter, r *http.Request) {
	var req notification.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.notificationService.IngestPush(r.Context(), req)
	if err != nil {
		slog.Warn("Receive push rejected", "error", err)
		response.HandleError(w, err)
		return
	}

	if resp.Duplicate {
		response.SuccessWithMessage(w, "Notification already received", resp)
		return
	}
	response.Created(w, "Notification received", resp)
}

// SSEToken implements NotificationHandler. Stream connections cannot carry an
// Authorization header, so the client trades its access token for a
// short-lived query-parameter token first.
func (h *NotificationHandlerImpl) SSEToken(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	tok, expiresIn, err := h.tokenService.GenerateSSEToken(userID)
	if err != nil {
		slog.Error("SSEToken generation error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, notification.SSETokenResponse{
		Token:     tok,
		ExpiresIn: expiresIn,
	})
}

// Stream implements NotificationHandler.
func (h *NotificationHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokenService.ValidateSSEToken(r.URL.Query().Get("token"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	events, cleanup := h.notificationService.Subscribe(r.Context(), userID)
	defer cleanup()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(ev.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Event, data)
			flusher.Flush()
		}
	}
}
