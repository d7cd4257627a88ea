package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/config"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/events"
)

// NotificationService handles delivering auth notifications (OTP codes,
// verification links) for domain events. Mail sending is stubbed: codes
// are logged and optionally forwarded to a webhook.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	httpClient *http.Client
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// RegisterHandlers subscribes to auth events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleMailEvent)
	n.dispatcher.Subscribe(events.EventOTPRequested, n.handleMailEvent)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handleMailEvent)
	n.dispatcher.Subscribe(events.EventPasswordChanged, n.handleInfoEvent)
	n.dispatcher.Subscribe(events.EventUserVerified, n.handleInfoEvent)
}

func (n *NotificationService) handleMailEvent(ctx context.Context, event events.Event) error {
	n.logger.Info("auth notification",
		zap.String("type", string(event.Type)),
		zap.String("email", event.Email))
	n.sendEmailStub(event)
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) handleInfoEvent(ctx context.Context, event events.Event) error {
	n.logger.Info("auth event",
		zap.String("type", string(event.Type)),
		zap.String("email", event.Email))
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailStub(event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", event.Email),
		zap.String("event_type", string(event.Type)),
		zap.Any("payload", event.Payload))
}

func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Debug("webhook delivery failed", zap.Error(err))
		return
	}
	_ = resp.Body.Close()
}
