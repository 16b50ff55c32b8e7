package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/threadly-dev/threadly/backend/internal/service"
	"github.com/threadly-dev/threadly/shared/config"
	"github.com/threadly-dev/threadly/shared/logger"
)

type Handler struct {
	user      service.UserService
	community service.CommunityService
	thread    service.ThreadService
	feed      service.FeedService
	activity  service.ActivityService
	health    HealthChecker
	text      TextProcessor
	cfg       *config.Config
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// TextProcessor strips markup from incoming text and renders stored text for display.
type TextProcessor interface {
	Render(text string) string
	StripHTML(text string) string
}

func New(
	user service.UserService,
	community service.CommunityService,
	thread service.ThreadService,
	feed service.FeedService,
	activity service.ActivityService,
	health HealthChecker,
	text TextProcessor,
	cfg *config.Config,
) *Handler {
	return &Handler{
		user:      user,
		community: community,
		thread:    thread,
		feed:      feed,
		activity:  activity,
		health:    health,
		text:      text,
		cfg:       cfg,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes before writing so an encoding failure can still
// change the status code.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
