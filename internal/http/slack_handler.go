package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tone-drift/internal/domain"
	"tone-drift/internal/service"
	"tone-drift/internal/slack"
)

// slackResponder publica en el response_url de una interaccion.
type slackResponder interface {
	Respond(ctx context.Context, responseURL string, msg slack.Message) error
}

// SlackHandler recibe los botones del aviso de drift y el comando /tone-reject.
type SlackHandler struct {
	logger        *zap.Logger
	approvals     *service.ApprovalService
	responder     slackResponder
	signingSecret string
}

func NewSlackHandler(logger *zap.Logger, approvals *service.ApprovalService, responder slackResponder, signingSecret string) *SlackHandler {
	return &SlackHandler{
		logger:        logger,
		approvals:     approvals,
		responder:     responder,
		signingSecret: signingSecret,
	}
}

// VerifyRequest valida X-Slack-Signature. Sin signing secret no se verifica.
func (h *SlackHandler) VerifyRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.signingSecret == "" {
			c.Next()
			return
		}
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		err = slack.VerifySignature(h.signingSecret, c.GetHeader(slack.HeaderTimestamp), c.GetHeader(slack.HeaderSignature), body, time.Now())
		if err != nil {
			h.logger.Warn("slack signature rejected", zap.Error(err), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid slack signature"})
			return
		}
		c.Next()
	}
}

// Interact maneja POST /slack/interact (approve_signature_update / reject_signature_update).
func (h *SlackHandler) Interact(c *gin.Context) {
	in, err := slack.ParseInteraction(c.PostForm("payload"))
	if err != nil {
		h.logger.Warn("invalid slack interaction", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad payload"})
		return
	}
	action, ok := in.FirstAction()
	if !ok {
		c.Status(http.StatusOK)
		return
	}

	ctx := c.Request.Context()
	var reply slack.Message
	switch action.ActionID {
	case slack.ActionApprove:
		sig, err := h.approvals.Approve(ctx, action.Value, in.User.ID)
		if err != nil {
			reply = h.proposalErrorReply(err)
			break
		}
		reply = slack.Reply(fmt.Sprintf("✅ Approved tone signature for `%s`", sig.BrandID))
	case slack.ActionReject:
		brandID, err := h.approvals.BeginRejection(ctx, action.Value, in.User.ID)
		if err != nil {
			reply = h.proposalErrorReply(err)
			break
		}
		reply = slack.Reply(fmt.Sprintf("📝 Please reply with your rejection comment for `%s` using `%s <comment>`.", brandID, slack.CommandToneReject))
	default:
		h.logger.Warn("unknown slack action", zap.String("action_id", action.ActionID))
		c.Status(http.StatusOK)
		return
	}

	if in.ResponseURL != "" {
		// Sin verificacion de firma el payload no es confiable: solo se responde a Slack.
		if h.signingSecret == "" && !slack.IsResponseURL(in.ResponseURL) {
			h.logger.Warn("unverified interaction with foreign response_url ignored", zap.String("response_url", in.ResponseURL))
			c.Status(http.StatusOK)
			return
		}
		if err := h.responder.Respond(ctx, in.ResponseURL, reply); err != nil {
			h.logger.Warn("slack response_url failed", zap.Error(err))
		}
	}
	c.Status(http.StatusOK)
}

// Command maneja POST /slack/commands. La respuesta va en el cuerpo (efimera).
func (h *SlackHandler) Command(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad payload"})
		return
	}
	cmd, err := slack.SlashCommandFromForm(c.Request.PostForm)
	if err != nil {
		h.logger.Warn("invalid slack command", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad payload"})
		return
	}

	switch cmd.Command {
	case slack.CommandToneReject:
		if cmd.Text == "" {
			c.JSON(http.StatusOK, slack.Reply(fmt.Sprintf("Usage: `%s <comment>`", slack.CommandToneReject)))
			return
		}
		rej, err := h.approvals.CaptureRejectionComment(c.Request.Context(), cmd.UserID, cmd.Text)
		switch {
		case errors.Is(err, domain.ErrNoPendingRejection):
			c.JSON(http.StatusOK, slack.Reply("ℹ️ You have no pending rejection. Press *Reject with Comment* on a drift alert first."))
		case err != nil:
			h.logger.Error("capture rejection comment failed", zap.Error(err))
			c.JSON(http.StatusOK, slack.Reply(fmt.Sprintf("❌ Error processing `%s`", cmd.Command)))
		default:
			c.JSON(http.StatusOK, slack.Reply(fmt.Sprintf("🗒️ Rejection recorded for `%s`.", rej.BrandID)))
		}
	default:
		c.JSON(http.StatusOK, slack.Reply(fmt.Sprintf("❓ Unknown command: `%s`", cmd.Command)))
	}
}

func (h *SlackHandler) proposalErrorReply(err error) slack.Message {
	switch {
	case errors.Is(err, service.ErrProposalExpired):
		return slack.Reply("⌛ This tone signature proposal has expired.")
	case errors.Is(err, domain.ErrProposalInvalid):
		return slack.Reply("⚠️ This proposal is no longer valid. It was already handled or superseded by a newer one.")
	default:
		h.logger.Error("slack proposal action failed", zap.Error(err))
		return slack.Reply("❌ Could not process the proposal, please try again later.")
	}
}
