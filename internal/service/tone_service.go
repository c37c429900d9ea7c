package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"tone-drift/internal/domain"
	"tone-drift/internal/llm"
	"tone-drift/internal/nlp"
	"tone-drift/internal/repository"
)

const (
	correctionTemperature = 0.3
	detectCandidates      = 5
)

// ToneService orquesta analisis, reescritura y evaluacion de tono contra la firma de cada marca.
type ToneService struct {
	llmClient     llm.LLMClient
	signatures    repository.SignatureRepository
	evaluations   repository.EvaluationRepository
	analyzer      nlp.Analyzer
	normalizer    ScoreNormalizer
	oracleTimeout time.Duration
	logger        *zap.Logger
}

func NewToneService(
	llmClient llm.LLMClient,
	signatures repository.SignatureRepository,
	evaluations repository.EvaluationRepository,
	oracleTimeout time.Duration,
	logger *zap.Logger,
) *ToneService {
	if oracleTimeout <= 0 {
		oracleTimeout = 30 * time.Second
	}
	return &ToneService{
		llmClient:     llmClient,
		signatures:    signatures,
		evaluations:   evaluations,
		analyzer:      nlp.DefaultAnalyzer,
		normalizer:    DefaultScoreNormalizer,
		oracleTimeout: oracleTimeout,
		logger:        logger,
	}
}

// RewriteResult es la salida de RewriteWithEvaluation.
type RewriteResult struct {
	RewrittenText string            `json:"rewritten_text"`
	Evaluation    domain.Evaluation `json:"evaluation"`
}

// BrandMatch es la marca mas parecida a un texto libre.
type BrandMatch struct {
	Match      string `json:"match"`
	Confidence string `json:"confidence"`
}

// AnalyzeText deriva metricas y una firma de tono sin persistir nada.
func (s *ToneService) AnalyzeText(ctx context.Context, text string) (domain.ToneSignature, error) {
	if strings.TrimSpace(text) == "" {
		return domain.ToneSignature{}, fmt.Errorf("analyze text: empty text")
	}
	metrics := s.analyzer.Analyze(text)

	raw, err := s.generate(ctx, buildSignaturePrompt(text, metrics), llm.Options{})
	if err != nil {
		return domain.ToneSignature{}, fmt.Errorf("analyze text: %w", err)
	}
	traits, err := parseOracleJSON[domain.ToneTraits](raw)
	if err != nil {
		s.logger.Warn("signature response not parseable", zap.Error(err))
		return domain.ToneSignature{}, fmt.Errorf("analyze text: %w", err)
	}

	return domain.ToneSignature{
		Traits:  withTraitDefaults(traits),
		Metrics: metrics,
	}, nil
}

// AnalyzeAndSave analiza el texto y reemplaza la firma de la marca. brandID vacio genera uno nuevo.
func (s *ToneService) AnalyzeAndSave(ctx context.Context, text, brandID string) (domain.ToneSignature, error) {
	analysis, err := s.AnalyzeText(ctx, text)
	if err != nil {
		return domain.ToneSignature{}, err
	}

	brandID = strings.TrimSpace(brandID)
	if brandID == "" {
		brandID = uuid.NewString()
	}
	return s.ReplaceSignature(ctx, brandID, analysis.Traits, analysis.Metrics)
}

// ReplaceSignature escribe la firma completa conservando id y created_at si ya existia.
func (s *ToneService) ReplaceSignature(ctx context.Context, brandID string, traits domain.ToneTraits, metrics domain.TextMetrics) (domain.ToneSignature, error) {
	now := time.Now().UTC()
	sig := domain.ToneSignature{
		ID:        uuid.NewString(),
		BrandID:   brandID,
		Traits:    traits,
		Metrics:   metrics,
		CreatedAt: now,
		UpdatedAt: now,
	}

	existing, err := s.signatures.GetByBrand(ctx, brandID)
	switch {
	case err == nil:
		sig.ID = existing.ID
		sig.CreatedAt = existing.CreatedAt
	case !errors.Is(err, pgx.ErrNoRows):
		return domain.ToneSignature{}, fmt.Errorf("get signature %s: %w", brandID, err)
	}

	saved, err := s.signatures.Upsert(ctx, sig)
	if err != nil {
		return domain.ToneSignature{}, fmt.Errorf("upsert signature %s: %w", brandID, err)
	}
	s.logger.Info("tone signature saved", zap.String("brand_id", brandID))
	return saved, nil
}

func (s *ToneService) GetSignature(ctx context.Context, brandID string) (domain.ToneSignature, error) {
	sig, err := s.signatures.GetByBrand(ctx, brandID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ToneSignature{}, fmt.Errorf("brand %s: %w", brandID, domain.ErrSignatureNotFound)
		}
		return domain.ToneSignature{}, fmt.Errorf("get signature %s: %w", brandID, err)
	}
	return sig, nil
}

func (s *ToneService) ListBrands(ctx context.Context) ([]string, error) {
	ids, err := s.signatures.ListBrandIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// RewriteText reescribe el texto con la firma de la marca. Sin firma no hay reescritura.
func (s *ToneService) RewriteText(ctx context.Context, brandID, text string) (string, error) {
	sig, err := s.GetSignature(ctx, brandID)
	if err != nil {
		return "", err
	}
	return s.rewrite(ctx, sig, text)
}

func (s *ToneService) rewrite(ctx context.Context, sig domain.ToneSignature, text string) (string, error) {
	raw, err := s.generate(ctx, buildRewritePrompt(sig.Traits, text), llm.Options{})
	if err != nil {
		return "", fmt.Errorf("rewrite for brand %s: %w", sig.BrandID, err)
	}
	rewritten := cleanRewrite(raw)
	if rewritten == "" {
		return "", fmt.Errorf("rewrite for brand %s: %w: empty rewrite", sig.BrandID, domain.ErrMalformedOracleResponse)
	}
	return rewritten, nil
}

// EvaluateTone puntua la reescritura y la agrega al historial de la marca.
// Una respuesta no parseable del oraculo se registra con etiquetas Unknown (score 0).
func (s *ToneService) EvaluateTone(ctx context.Context, brandID, original, rewritten string) (domain.Evaluation, error) {
	sig, err := s.GetSignature(ctx, brandID)
	if err != nil {
		return domain.Evaluation{}, err
	}

	start := time.Now()
	raw, err := s.generate(ctx, buildEvaluationPrompt(sig, original, rewritten), llm.Options{})
	latency := time.Since(start)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("evaluate tone for brand %s: %w", brandID, err)
	}

	qualitative, err := parseOracleJSON[domain.QualitativeEvaluation](raw)
	if err != nil {
		s.logger.Warn("evaluation response not parseable, scoring as unknown",
			zap.String("brand_id", brandID),
			zap.Error(err),
		)
		qualitative = domain.QualitativeEvaluation{}
	}
	qualitative = withEvaluationDefaults(qualitative)

	score, points := s.normalizer.Normalize(qualitative)
	ev := domain.Evaluation{
		ID:             uuid.NewString(),
		BrandID:        brandID,
		OriginalText:   original,
		RewrittenText:  rewritten,
		Qualitative:    qualitative,
		AccuracyPoints: points,
		Score:          score,
		LatencyMs:      latency.Milliseconds(),
		CreatedAt:      time.Now().UTC(),
	}

	saved, err := s.evaluations.Append(ctx, ev)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("append evaluation for brand %s: %w", brandID, err)
	}
	return saved, nil
}

func (s *ToneService) RewriteWithEvaluation(ctx context.Context, brandID, text string) (RewriteResult, error) {
	sig, err := s.GetSignature(ctx, brandID)
	if err != nil {
		return RewriteResult{}, err
	}
	rewritten, err := s.rewrite(ctx, sig, text)
	if err != nil {
		return RewriteResult{}, err
	}
	ev, err := s.EvaluateTone(ctx, brandID, text, rewritten)
	if err != nil {
		return RewriteResult{}, err
	}
	return RewriteResult{RewrittenText: rewritten, Evaluation: ev}, nil
}

// DetectBrand preselecciona marcas por distancia de metricas (pgvector) y deja que el oraculo elija.
// Si el oraculo devuelve una marca fuera de los candidatos se usa la mas cercana con confianza low.
func (s *ToneService) DetectBrand(ctx context.Context, text string) (BrandMatch, error) {
	input, err := s.AnalyzeText(ctx, text)
	if err != nil {
		return BrandMatch{}, err
	}

	candidates, err := s.signatures.NearestByMetrics(ctx, input.Metrics, detectCandidates)
	if err != nil {
		s.logger.Warn("nearest signature lookup failed, using full list", zap.Error(err))
		candidates = nil
	}
	if len(candidates) == 0 {
		candidates, err = s.signatures.ListAll(ctx)
		if err != nil {
			return BrandMatch{}, fmt.Errorf("list signatures: %w", err)
		}
	}
	if len(candidates) == 0 {
		return BrandMatch{}, domain.ErrNoBrands
	}

	raw, err := s.generate(ctx, buildDetectBrandPrompt(input.Traits, candidates), llm.Options{})
	if err != nil {
		return BrandMatch{}, fmt.Errorf("detect brand: %w", err)
	}
	match, err := parseOracleJSON[BrandMatch](raw)
	if err != nil {
		return BrandMatch{}, fmt.Errorf("detect brand: %w", err)
	}

	match.Match = strings.TrimSpace(match.Match)
	for _, c := range candidates {
		if c.BrandID == match.Match {
			match.Confidence = normalizeConfidence(match.Confidence)
			return match, nil
		}
	}
	return BrandMatch{Match: candidates[0].BrandID, Confidence: "low"}, nil
}

// SuggestSignatureCorrection pide al oraculo, en modo con esquema, una firma que corrija el drift.
func (s *ToneService) SuggestSignatureCorrection(ctx context.Context, sig domain.ToneSignature, drifted []domain.Evaluation) (domain.ToneTraits, error) {
	if len(drifted) == 0 {
		return domain.ToneTraits{}, fmt.Errorf("suggest correction for brand %s: no drifted evaluations", sig.BrandID)
	}

	octx, cancel := context.WithTimeout(ctx, s.oracleTimeout)
	defer cancel()

	raw, err := s.llmClient.GenerateStructured(octx, buildCorrectionPrompt(sig, drifted), correctionSchema, llm.Temperature(correctionTemperature))
	if err != nil {
		return domain.ToneTraits{}, fmt.Errorf("suggest correction for brand %s: %w", sig.BrandID, classifyOracleErr(octx, err))
	}
	traits, err := decodeStructured[domain.ToneTraits](raw)
	if err != nil {
		return domain.ToneTraits{}, fmt.Errorf("suggest correction for brand %s: %w", sig.BrandID, err)
	}
	if missing := missingTraitFields(traits); len(missing) > 0 {
		return domain.ToneTraits{}, fmt.Errorf("suggest correction for brand %s: %w: missing %s",
			sig.BrandID, domain.ErrMalformedOracleResponse, strings.Join(missing, ", "))
	}
	if strings.TrimSpace(traits.Classification) == "" {
		traits.Classification = sig.Traits.Classification
	}
	return traits, nil
}

func (s *ToneService) generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	octx, cancel := context.WithTimeout(ctx, s.oracleTimeout)
	defer cancel()

	out, err := s.llmClient.Generate(octx, prompt, opts)
	if err != nil {
		return "", classifyOracleErr(octx, err)
	}
	return out, nil
}

func classifyOracleErr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrOracleTimeout, err)
	}
	return err
}

func withTraitDefaults(t domain.ToneTraits) domain.ToneTraits {
	t.Tone = orDefault(t.Tone, domain.LabelUnknown)
	t.LanguageStyle = orDefault(t.LanguageStyle, domain.LabelUnknown)
	t.Formality = orDefault(t.Formality, domain.LabelUnknown)
	t.FormsOfAddress = orDefault(t.FormsOfAddress, domain.LabelUnknown)
	t.EmotionalAppeal = orDefault(t.EmotionalAppeal, domain.LabelUnknown)
	t.Classification = orDefault(t.Classification, domain.LabelUnclassified)
	return t
}

func withEvaluationDefaults(q domain.QualitativeEvaluation) domain.QualitativeEvaluation {
	q.Fluency = orDefault(q.Fluency, domain.LabelUnknown)
	q.Authenticity = orDefault(q.Authenticity, domain.LabelUnknown)
	q.ToneAlignment = orDefault(q.ToneAlignment, domain.LabelUnknown)
	q.Readability = orDefault(q.Readability, domain.LabelUnknown)
	if q.Strengths == nil {
		q.Strengths = []string{}
	}
	if q.Suggestions == nil {
		q.Suggestions = []string{}
	}
	return q
}

func missingTraitFields(t domain.ToneTraits) []string {
	var missing []string
	for name, v := range map[string]string{
		"tone":             t.Tone,
		"language_style":   t.LanguageStyle,
		"formality":        t.Formality,
		"forms_of_address": t.FormsOfAddress,
		"emotional_appeal": t.EmotionalAppeal,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

func normalizeConfidence(c string) string {
	switch strings.ToLower(strings.TrimSpace(c)) {
	case "high":
		return "high"
	case "medium":
		return "medium"
	default:
		return "low"
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
