package adaptor

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"service-marketplace/internal/realtime"
	"service-marketplace/internal/usecase"
	"service-marketplace/pkg/utils"

	"go.uber.org/zap"
)

// heartbeatInterval keeps idle proxies from closing the stream.
const heartbeatInterval = 25 * time.Second

type NotificationHandler struct {
	service usecase.NotificationService
	stream  realtime.Subscriber
	log     *zap.Logger
}

func NewNotificationHandler(service usecase.NotificationService, stream realtime.Subscriber, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		stream:  stream,
		log:     log.With(zap.String("handler", "notification")),
	}
}

// ListNotifications handles GET /api/notifications
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	notifications, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		handleServiceError(h.log, w, err, "list notifications")
		return
	}

	utils.ResponseSuccess(w, "Notifications retrieved", notifications)
}

// Stream handles GET /api/notifications/stream as server-sent events
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok || h.stream == nil {
		utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "Live updates are not available", nil, nil)
		return
	}

	events, stop, err := h.stream.Subscribe(r.Context(), userID)
	if err != nil {
		h.log.Error("Failed to subscribe", zap.Error(err), zap.String("user_id", userID.String()))
		utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "Live updates are not available", nil, nil)
		return
	}
	defer stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				return
			}
			if err := writeEvent(w, ev); err != nil {
				h.log.Debug("Stream closed", zap.Error(err), zap.String("user_id", userID.String()))
				return
			}
			flusher.Flush()
		}
	}
}

// writeEvent writes one SSE frame: the event name, then the payload as JSON.
func writeEvent(w http.ResponseWriter, ev realtime.Event) error {
	data, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", ev.Name, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)
	return err
}
