package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tone-drift/internal/domain"
	"tone-drift/internal/repository"
)

// ApprovalNotifier publica una propuesta de correccion para revision humana (fire-and-forget).
type ApprovalNotifier interface {
	ProposeCorrection(ctx context.Context, proposal domain.CorrectionProposal) error
}

type signatureReplacer interface {
	ReplaceSignature(ctx context.Context, brandID string, traits domain.ToneTraits, metrics domain.TextMetrics) (domain.ToneSignature, error)
}

// ApprovalService implementa el protocolo aprobar/rechazar de las propuestas de correccion.
type ApprovalService struct {
	tokens     *ProposalTokenService
	proposals  ProposalStore
	pending    PendingRejectionStore
	signatures signatureReplacer
	rejections repository.RejectionRepository
	commentTTL time.Duration
	logger     *zap.Logger
}

func NewApprovalService(
	tokens *ProposalTokenService,
	proposals ProposalStore,
	pending PendingRejectionStore,
	signatures signatureReplacer,
	rejections repository.RejectionRepository,
	commentTTL time.Duration,
	logger *zap.Logger,
) *ApprovalService {
	if proposals == nil {
		proposals = NewMemoryProposalStore()
	}
	if pending == nil {
		pending = NewMemoryPendingRejectionStore()
	}
	if commentTTL <= 0 {
		commentTTL = 30 * time.Minute
	}
	return &ApprovalService{
		tokens:     tokens,
		proposals:  proposals,
		pending:    pending,
		signatures: signatures,
		rejections: rejections,
		commentTTL: commentTTL,
		logger:     logger,
	}
}

// IssueProposal registra la propuesta de la marca y devuelve su token firmado.
// Una propuesta anterior de la misma marca queda invalidada.
func (s *ApprovalService) IssueProposal(ctx context.Context, sig domain.ToneSignature, traits domain.ToneTraits, drifted int) (domain.CorrectionProposal, error) {
	proposal, err := s.DraftProposal(sig, traits, drifted)
	if err != nil {
		return domain.CorrectionProposal{}, err
	}
	if err := s.StoreProposal(ctx, proposal); err != nil {
		return domain.CorrectionProposal{}, err
	}
	return proposal, nil
}

// DraftProposal firma la propuesta sin registrarla: su token todavia no se puede consumir
// y la propuesta vigente de la marca sigue valida.
func (s *ApprovalService) DraftProposal(sig domain.ToneSignature, traits domain.ToneTraits, drifted int) (domain.CorrectionProposal, error) {
	now := time.Now().UTC()
	token, err := s.tokens.Sign(sig.BrandID, uuid.NewString(), now)
	if err != nil {
		return domain.CorrectionProposal{}, fmt.Errorf("sign proposal for brand %s: %w", sig.BrandID, err)
	}
	return domain.CorrectionProposal{
		BrandID:      sig.BrandID,
		Traits:       traits,
		Metrics:      sig.Metrics,
		DriftedCount: drifted,
		Token:        token,
		CreatedAt:    now,
	}, nil
}

// StoreProposal registra un borrador y reemplaza la propuesta anterior de la marca.
func (s *ApprovalService) StoreProposal(ctx context.Context, proposal domain.CorrectionProposal) error {
	claims, err := s.tokens.Parse(proposal.Token)
	if err != nil {
		return fmt.Errorf("store proposal for brand %s: %w", proposal.BrandID, err)
	}
	if claims.BrandID != proposal.BrandID {
		return fmt.Errorf("store proposal for brand %s: %w", proposal.BrandID, domain.ErrProposalInvalid)
	}
	if err := s.proposals.Put(ctx, claims.ID, proposal, s.tokens.TTL()); err != nil {
		return fmt.Errorf("store proposal for brand %s: %w", proposal.BrandID, err)
	}
	return nil
}

// Approve valida el token del boton, consume la propuesta y la persiste.
func (s *ApprovalService) Approve(ctx context.Context, token, reviewer string) (domain.ToneSignature, error) {
	proposal, err := s.consume(ctx, token)
	if err != nil {
		return domain.ToneSignature{}, err
	}
	s.logger.Info("signature update approved",
		zap.String("brand_id", proposal.BrandID),
		zap.String("reviewer", reviewer),
	)
	return s.OnApprove(ctx, proposal.BrandID, proposal)
}

// OnApprove reemplaza la firma de la marca completa por la propuesta.
func (s *ApprovalService) OnApprove(ctx context.Context, brandID string, proposal domain.CorrectionProposal) (domain.ToneSignature, error) {
	saved, err := s.signatures.ReplaceSignature(ctx, brandID, proposal.Traits, proposal.Metrics)
	if err != nil {
		return domain.ToneSignature{}, fmt.Errorf("apply approved proposal for brand %s: %w", brandID, err)
	}
	return saved, nil
}

// BeginRejection consume la propuesta y deja al revisor pendiente de enviar su comentario.
func (s *ApprovalService) BeginRejection(ctx context.Context, token, reviewer string) (string, error) {
	reviewer = strings.TrimSpace(reviewer)
	if reviewer == "" {
		return "", errors.New("begin rejection: reviewer is required")
	}
	proposal, err := s.consume(ctx, token)
	if err != nil {
		return "", err
	}
	if err := s.pending.Put(ctx, reviewer, proposal.BrandID, s.commentTTL); err != nil {
		return "", fmt.Errorf("begin rejection for brand %s: %w", proposal.BrandID, err)
	}
	return proposal.BrandID, nil
}

// CaptureRejectionComment cierra el rechazo pendiente del revisor con su comentario.
func (s *ApprovalService) CaptureRejectionComment(ctx context.Context, reviewer, comment string) (domain.Rejection, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return domain.Rejection{}, errors.New("rejection comment is empty")
	}
	brandID, err := s.pending.Take(ctx, reviewer)
	if err != nil {
		return domain.Rejection{}, err
	}
	return s.OnReject(ctx, brandID, reviewer, comment)
}

// OnReject agrega el rechazo al log de auditoria. No se reintenta la correccion.
func (s *ApprovalService) OnReject(ctx context.Context, brandID, reviewer, comment string) (domain.Rejection, error) {
	rej := domain.Rejection{
		ID:        uuid.NewString(),
		BrandID:   brandID,
		Reviewer:  strings.TrimSpace(reviewer),
		Comment:   strings.TrimSpace(comment),
		CreatedAt: time.Now().UTC(),
	}
	saved, err := s.rejections.Append(ctx, rej)
	if err != nil {
		return domain.Rejection{}, fmt.Errorf("append rejection for brand %s: %w", brandID, err)
	}
	s.logger.Info("signature update rejected",
		zap.String("brand_id", brandID),
		zap.String("reviewer", rej.Reviewer),
	)
	return saved, nil
}

func (s *ApprovalService) ListRejections(ctx context.Context, brandID string) ([]domain.Rejection, error) {
	out, err := s.rejections.List(ctx, strings.TrimSpace(brandID))
	if err != nil {
		return nil, fmt.Errorf("list rejections: %w", err)
	}
	if out == nil {
		out = []domain.Rejection{}
	}
	return out, nil
}

func (s *ApprovalService) consume(ctx context.Context, token string) (domain.CorrectionProposal, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return domain.CorrectionProposal{}, err
	}
	proposal, err := s.proposals.Take(ctx, claims.BrandID, claims.ID)
	if err != nil {
		return domain.CorrectionProposal{}, err
	}
	if proposal.BrandID != claims.BrandID {
		return domain.CorrectionProposal{}, domain.ErrProposalInvalid
	}
	return proposal, nil
}
