package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"tone-drift/internal/domain"
	"tone-drift/internal/llm"
)

func newApprovalFixture(t *testing.T) (*ApprovalService, *memSignatureRepo, *memRejectionRepo) {
	t.Helper()
	sigs := newMemSignatureRepo(domain.ToneSignature{
		ID:      "sig-acme",
		BrandID: "acme",
		Traits:  domain.ToneTraits{Tone: "Formal"},
		Metrics: domain.TextMetrics{WordCount: 12},
	})
	rejections := &memRejectionRepo{}
	tone := NewToneService(&llm.MockClient{}, sigs, &memEvaluationRepo{}, time.Second, zap.NewNop())
	svc := NewApprovalService(
		NewProposalTokenService("secret", time.Hour),
		NewMemoryProposalStore(),
		NewMemoryPendingRejectionStore(),
		tone,
		rejections,
		time.Minute,
		zap.NewNop(),
	)
	return svc, sigs, rejections
}

func TestApprovalService_ApproveReplacesSignatureOnce(t *testing.T) {
	svc, sigs, _ := newApprovalFixture(t)
	ctx := context.Background()
	current, _ := sigs.GetByBrand(ctx, "acme")

	proposal, err := svc.IssueProposal(ctx, current, domain.ToneTraits{Tone: "Warm", Classification: "Empathetic"}, 3)
	if err != nil {
		t.Fatalf("issue proposal: %v", err)
	}
	if proposal.Metrics.WordCount != 12 {
		t.Fatalf("expected metrics snapshot carried forward, got %+v", proposal.Metrics)
	}

	saved, err := svc.Approve(ctx, proposal.Token, "U1")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if saved.Traits.Tone != "Warm" || saved.Traits.Formality != "" {
		t.Fatalf("expected wholesale replacement, got %+v", saved.Traits)
	}
	if saved.Metrics.WordCount != 12 || saved.ID != "sig-acme" {
		t.Fatalf("unexpected saved signature %+v", saved)
	}

	if _, err := svc.Approve(ctx, proposal.Token, "U1"); !errors.Is(err, domain.ErrProposalInvalid) {
		t.Fatalf("expected token to be single-use, got %v", err)
	}
	if sigs.upserts != 1 {
		t.Fatalf("expected one upsert, got %d", sigs.upserts)
	}
}

func TestApprovalService_NewerProposalSupersedesOlder(t *testing.T) {
	svc, sigs, _ := newApprovalFixture(t)
	ctx := context.Background()
	current, _ := sigs.GetByBrand(ctx, "acme")

	older, err := svc.IssueProposal(ctx, current, domain.ToneTraits{Tone: "Old"}, 1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	newer, err := svc.IssueProposal(ctx, current, domain.ToneTraits{Tone: "New"}, 2)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.Approve(ctx, older.Token, "U1"); !errors.Is(err, domain.ErrProposalInvalid) {
		t.Fatalf("expected superseded token rejected, got %v", err)
	}
	saved, err := svc.Approve(ctx, newer.Token, "U1")
	if err != nil {
		t.Fatalf("approve newer: %v", err)
	}
	if saved.Traits.Tone != "New" {
		t.Fatalf("expected newer proposal applied, got %+v", saved.Traits)
	}
}

func TestApprovalService_RejectFlowCapturesComment(t *testing.T) {
	svc, sigs, rejections := newApprovalFixture(t)
	ctx := context.Background()
	current, _ := sigs.GetByBrand(ctx, "acme")

	proposal, err := svc.IssueProposal(ctx, current, domain.ToneTraits{Tone: "Warm"}, 1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.CaptureRejectionComment(ctx, "U9", "too casual"); !errors.Is(err, domain.ErrNoPendingRejection) {
		t.Fatalf("expected no pending rejection, got %v", err)
	}

	brandID, err := svc.BeginRejection(ctx, proposal.Token, "U9")
	if err != nil || brandID != "acme" {
		t.Fatalf("begin rejection: %q %v", brandID, err)
	}
	if _, err := svc.Approve(ctx, proposal.Token, "U1"); !errors.Is(err, domain.ErrProposalInvalid) {
		t.Fatalf("rejected proposal must not be approvable, got %v", err)
	}

	if _, err := svc.CaptureRejectionComment(ctx, "U9", "   "); err == nil {
		t.Fatalf("expected empty comment error")
	}
	rej, err := svc.CaptureRejectionComment(ctx, "U9", " too casual for us ")
	if err != nil {
		t.Fatalf("capture comment: %v", err)
	}
	if rej.BrandID != "acme" || rej.Reviewer != "U9" || rej.Comment != "too casual for us" {
		t.Fatalf("unexpected rejection %+v", rej)
	}
	if len(rejections.items) != 1 {
		t.Fatalf("expected one rejection logged, got %d", len(rejections.items))
	}
	if sigs.upserts != 0 {
		t.Fatalf("rejection must not touch the signature")
	}

	list, err := svc.ListRejections(ctx, "acme")
	if err != nil || len(list) != 1 {
		t.Fatalf("list rejections: %v %v", list, err)
	}
	empty, err := svc.ListRejections(ctx, "other")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v %v", empty, err)
	}
}

func TestApprovalService_InvalidTokens(t *testing.T) {
	svc, _, _ := newApprovalFixture(t)
	ctx := context.Background()

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := svc.Approve(ctx, tok, "U1"); !errors.Is(err, domain.ErrProposalInvalid) {
			t.Fatalf("expected ErrProposalInvalid for %q, got %v", tok, err)
		}
	}

	other := NewProposalTokenService("other-secret", time.Hour)
	forged, err := other.Sign("acme", "jti-1", time.Now().UTC())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.BeginRejection(ctx, forged, "U1"); !errors.Is(err, domain.ErrProposalInvalid) {
		t.Fatalf("expected forged token rejected, got %v", err)
	}
}
