package slack

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"tone-drift/internal/domain"
)

func proposalFixture() domain.CorrectionProposal {
	return domain.CorrectionProposal{
		BrandID:      "acme",
		Traits:       domain.ToneTraits{Tone: "Warm", LanguageStyle: "Plain", Formality: "Low", FormsOfAddress: "you", EmotionalAppeal: "Care"},
		DriftedCount: 3,
		Token:        "signed-token",
	}
}

func TestWebhookNotifier_ProposeCorrection(t *testing.T) {
	var got Message
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(NewClient(time.Second, zap.NewNop()), srv.URL, NotifierOptions{MentionUserIDs: []string{"U1", " ", "U2"}}, zap.NewNop())
	if err := n.ProposeCorrection(context.Background(), proposalFixture()); err != nil {
		t.Fatalf("propose: %v", err)
	}

	if contentType != "application/json" {
		t.Fatalf("unexpected content type %q", contentType)
	}
	if got.Text != "<@U1> <@U2> 📢 *Tone Drift Detected* for brand `acme`" {
		t.Fatalf("unexpected text %q", got.Text)
	}
	if len(got.Blocks) != 2 || !strings.Contains(got.Blocks[0].Text.Text, `"tone": "Warm"`) {
		t.Fatalf("unexpected blocks %+v", got.Blocks)
	}
	buttons := got.Blocks[1].Elements
	if len(buttons) != 2 || buttons[0].ActionID != ActionApprove || buttons[1].ActionID != ActionReject {
		t.Fatalf("unexpected buttons %+v", buttons)
	}
	if buttons[0].Value != "signed-token" || buttons[1].Value != "signed-token" {
		t.Fatalf("expected token on both buttons, got %+v", buttons)
	}
}

func TestWebhookNotifier_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid_token", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(time.Second, zap.NewNop())
	n := NewWebhookNotifier(client, srv.URL, NotifierOptions{}, zap.NewNop())
	err := n.ProposeCorrection(context.Background(), proposalFixture())
	if !errors.Is(err, domain.ErrNotifierUnreachable) || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected unreachable error with status, got %v", err)
	}

	down := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	down.Close()
	n = NewWebhookNotifier(client, down.URL, NotifierOptions{}, zap.NewNop())
	if err := n.ProposeCorrection(context.Background(), proposalFixture()); !errors.Is(err, domain.ErrNotifierUnreachable) {
		t.Fatalf("expected unreachable error on closed server, got %v", err)
	}

	p := proposalFixture()
	p.Token = ""
	if err := n.ProposeCorrection(context.Background(), p); err == nil {
		t.Fatalf("expected error for proposal without token")
	}
}

func TestDisabledNotifier(t *testing.T) {
	err := NewDisabledNotifier("slack webhook not configured").ProposeCorrection(context.Background(), proposalFixture())
	if !errors.Is(err, domain.ErrNotifierUnreachable) || !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestMentionPrefix(t *testing.T) {
	if got := mentionPrefix(nil, "#brand-ops"); got != "#brand-ops " {
		t.Fatalf("expected channel mention, got %q", got)
	}
	if got := mentionPrefix([]string{"U1"}, "#brand-ops"); got != "<@U1> " {
		t.Fatalf("expected user mentions to win, got %q", got)
	}
	if got := mentionPrefix(nil, ""); got != "" {
		t.Fatalf("expected no mention, got %q", got)
	}
}

func TestClient_RespondRequiresContent(t *testing.T) {
	client := NewClient(time.Second, zap.NewNop())
	if err := client.Respond(context.Background(), "http://example.invalid", Message{}); err == nil {
		t.Fatalf("expected error for empty message")
	}
	if err := client.Respond(context.Background(), "", Reply("hi")); !errors.Is(err, domain.ErrNotifierUnreachable) {
		t.Fatalf("expected error for empty url, got %v", err)
	}
}
