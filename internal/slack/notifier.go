package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"tone-drift/internal/domain"
)

// Client publica mensajes JSON en webhooks y response_url de Slack.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Post envia el mensaje. Errores de red o respuestas no 2xx se reportan como ErrNotifierUnreachable.
func (c *Client) Post(ctx context.Context, url string, msg Message) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("%w: empty url", domain.ErrNotifierUnreachable)
	}
	if msg.Text == "" && len(msg.Blocks) == 0 {
		return errors.New("slack message requires text or blocks")
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal slack message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotifierUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", domain.ErrNotifierUnreachable, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	c.logger.Debug("slack message sent", zap.Int("status", resp.StatusCode))
	return nil
}

// Respond publica una respuesta en el response_url de una interaccion o comando.
func (c *Client) Respond(ctx context.Context, responseURL string, msg Message) error {
	return c.Post(ctx, responseURL, msg)
}

type NotifierOptions struct {
	MentionUserIDs []string
	MentionChannel string
}

// WebhookNotifier envia los avisos de drift al incoming webhook configurado.
type WebhookNotifier struct {
	client     *Client
	webhookURL string
	opts       NotifierOptions
	logger     *zap.Logger
}

func NewWebhookNotifier(client *Client, webhookURL string, opts NotifierOptions, logger *zap.Logger) *WebhookNotifier {
	return &WebhookNotifier{client: client, webhookURL: webhookURL, opts: opts, logger: logger}
}

func (n *WebhookNotifier) ProposeCorrection(ctx context.Context, proposal domain.CorrectionProposal) error {
	if proposal.Token == "" {
		return fmt.Errorf("notify brand %s: proposal without token", proposal.BrandID)
	}
	msg := DriftAlert(proposal, n.opts.MentionUserIDs, n.opts.MentionChannel)
	if err := n.client.Post(ctx, n.webhookURL, msg); err != nil {
		return fmt.Errorf("notify brand %s: %w", proposal.BrandID, err)
	}
	n.logger.Info("tone drift alert sent",
		zap.String("brand_id", proposal.BrandID),
		zap.Int("drifted", proposal.DriftedCount),
	)
	return nil
}

// DisabledNotifier se usa cuando no hay webhook configurado; cada aviso falla con el motivo.
type DisabledNotifier struct {
	reason string
}

func NewDisabledNotifier(reason string) *DisabledNotifier {
	return &DisabledNotifier{reason: reason}
}

func (n *DisabledNotifier) ProposeCorrection(_ context.Context, proposal domain.CorrectionProposal) error {
	reason := n.reason
	if reason == "" {
		reason = "slack notifier disabled"
	}
	return fmt.Errorf("notify brand %s: %w: %s", proposal.BrandID, domain.ErrNotifierUnreachable, reason)
}
