package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/agendazap/agendazap/internal/dialog"
	"github.com/agendazap/agendazap/internal/messaging"
	"github.com/agendazap/agendazap/internal/observability/metrics"
	"github.com/agendazap/agendazap/pkg/logging"
)

// conversationRouter is the slice of dialog.Router the webhook needs.
type conversationRouter interface {
	HandleMessage(ctx context.Context, from, text, profileName string) (dialog.Result, error)
}

// WebhookHandler receives inbound chat messages, runs them through the
// dialogue router and pushes the reply back over the messaging channel.
type WebhookHandler struct {
	dialog       conversationRouter
	channel      messaging.Channel
	deliveryWait time.Duration
	logger       *logging.Logger
	metrics      *metrics.WebhookMetrics
}

type WebhookConfig struct {
	Dialog       conversationRouter
	Channel      messaging.Channel
	DeliveryWait time.Duration
	Logger       *logging.Logger
	Metrics      *metrics.WebhookMetrics
}

func NewWebhookHandler(cfg WebhookConfig) *WebhookHandler {
	if cfg.Dialog == nil {
		panic("handlers: dialog router required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.DeliveryWait <= 0 {
		cfg.DeliveryWait = 15 * time.Second
	}
	return &WebhookHandler{
		dialog:       cfg.Dialog,
		channel:      cfg.Channel,
		deliveryWait: cfg.DeliveryWait,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
	}
}

type webhookReply struct {
	Reply string `json:"reply"`
	SID   string `json:"sid,omitempty"`
}

// Handle processes one inbound message. Twilio posts form-encoded Body/From/
// ProfileName; the JSON shape with text/sessionId serves direct integrations.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	text, from, profileName, ok := parseInbound(r)
	if !ok {
		http.Error(w, "Requisição inválida.", http.StatusBadRequest)
		return
	}

	result, err := h.dialog.HandleMessage(r.Context(), from, text, profileName)
	if err != nil {
		h.logger.WithSession(from).Error("webhook dialogue failed", "error", err)
		h.metrics.ObserveInbound(result.Intent, "error")
		writeJSON(w, http.StatusOK, apiResponse{Success: false, Error: strPtr(dialog.MsgGeneralError)})
		return
	}

	h.metrics.ObserveInbound(result.Intent, "ok")
	h.metrics.ObserveReplyLatency(result.Intent, time.Since(start).Seconds())

	// Delivery is best effort. The reply is already committed to the caller;
	// a channel failure must not turn a handled message into an error.
	var sid string
	if h.channel != nil {
		sid, err = h.channel.Send(r.Context(), from, result.Reply)
		if err != nil {
			h.logger.WithSession(from).Error("reply delivery failed", "error", err)
		} else if _, err := h.channel.WaitForDelivery(r.Context(), sid, h.deliveryWait); err != nil {
			h.logger.WithSession(from).Warn("delivery status unresolved", "sid", sid, "error", err)
		}
	}

	respondOK(w, webhookReply{Reply: result.Reply, SID: sid})
}

func parseInbound(r *http.Request) (text, from, profileName string, ok bool) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var body struct {
			Text        string `json:"text"`
			SessionID   string `json:"sessionId"`
			ProfileName string `json:"profileName"`
		}
		if err := decodeJSON(r, &body); err != nil {
			return "", "", "", false
		}
		text, from, profileName = body.Text, body.SessionID, body.ProfileName
	} else {
		if err := r.ParseForm(); err != nil {
			return "", "", "", false
		}
		text = r.PostFormValue("Body")
		from = r.PostFormValue("From")
		profileName = r.PostFormValue("ProfileName")
	}
	if profileName == "" {
		profileName = "Cliente"
	}
	if strings.TrimSpace(text) == "" || strings.TrimSpace(from) == "" {
		return "", "", "", false
	}
	return text, from, profileName, true
}

func strPtr(s string) *string {
	return &s
}
