// Package api provides HTTP handlers for the bot endpoints.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"quotebot/internal/calls"
	"quotebot/internal/dialog"
	"quotebot/internal/domain"
	"quotebot/internal/transport"

	"github.com/go-chi/chi/v5"
)

// Handler serves the inbound message and call-event endpoints.
type Handler struct {
	dialog  *dialog.Service
	greeter *calls.Greeter
}

// NewHandler creates a new Handler.
func NewHandler(dialogService *dialog.Service, greeter *calls.Greeter) *Handler {
	return &Handler{
		dialog:  dialogService,
		greeter: greeter,
	}
}

// RegisterRoutes registers the bot endpoints on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/messages", h.handleMessage)
	r.Post("/api/calls", h.handleCallEvent)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var activity transport.Activity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		Error(w, http.StatusBadRequest, "invalid activity payload")
		return
	}

	// Non-message activities (typing, conversation updates) are
	// acknowledged without a turn.
	if activity.Type != "message" || activity.Conversation.ID == "" {
		JSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	ref := domain.ConversationRef{
		ConversationID: activity.Conversation.ID,
		ActivityID:     activity.ID,
		ServiceURL:     activity.ServiceURL,
		BotID:          activity.Recipient.ID,
		UserID:         activity.From.ID,
	}

	if err := h.dialog.HandleMessage(r.Context(), ref, activity.Text); err != nil {
		slog.Error("Turn processing failed", "conversation_id", ref.ConversationID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type callEvent struct {
	Event string `json:"event"`
	Data  struct {
		CallConnectionID string `json:"callConnectionId"`
	} `json:"data"`
}

// handleCallEvent acknowledges every call notification with 200. Only
// CallConnected triggers the greeter; its failures are logged, not
// surfaced to the telephony platform.
func (h *Handler) handleCallEvent(w http.ResponseWriter, r *http.Request) {
	var event callEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		slog.Warn("Malformed call event payload", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	if event.Event == "CallConnected" {
		if err := h.greeter.Greet(r.Context(), event.Data.CallConnectionID); err != nil {
			slog.Error("Greeting playback failed",
				"call_connection_id", event.Data.CallConnectionID, "error", err)
		}
	}

	w.WriteHeader(http.StatusOK)
}
