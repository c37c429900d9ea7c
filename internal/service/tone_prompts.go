package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"tone-drift/internal/domain"
	"tone-drift/internal/llm"
)

const signaturePromptTemplate = `You are a branding expert and linguist.
Analyze the following text and return a tone-of-voice signature as JSON.

In addition to tone fields, classify the overall tone into one of the following:
Professional, Conversational, Empathetic, Inspirational, Assertive, Playful

Respond ONLY with valid JSON:
{
  "tone": "...",
  "language_style": "...",
  "formality": "...",
  "forms_of_address": "...",
  "emotional_appeal": "...",
  "classification": "..."
}

Context:
%s

Text:
"""%s"""
`

const rewritePromptTemplate = `Rewrite the following text using the tone-of-voice signature provided below:

Tone: %s
Language Style: %s
Formality: %s
Forms of Address: %s
Emotional Appeal: %s

Original text:
"""%s"""

Respond ONLY with the rewritten version.
`

const evaluationPromptTemplate = `You are an expert tone-of-voice evaluator.

Given a brand's tone signature and two versions of a message (original + rewritten), assess how well the rewritten text matches the brand's tone and overall quality.

Return ONLY a JSON object like:
{
  "fluency": "High | Medium | Low",
  "authenticity": "High | Medium | Low",
  "tone_alignment": "High | Medium | Low",
  "readability": "Excellent | Good | Poor",
  "strengths": ["..."],
  "suggestions": ["..."]
}

Tone Signature:
%s

Original Text:
"""%s"""

Rewritten Text:
"""%s"""
`

const correctionPromptTemplate = `You maintain the tone-of-voice signature for brand "%s".
Recent rewrites produced with the current signature were judged to have LOW tone alignment.
Propose a corrected signature that would have produced on-brand rewrites for these examples.
Keep fields that are not implicated by the failures.

Current signature:
%s

Drifted examples:
%s
`

const detectBrandPromptTemplate = `Compare the following tone-of-voice input with existing brand tone profiles and return the best match.

Input:
%s

Profiles:
%s

Respond ONLY with:
{ "match": "brandId", "confidence": "high | medium | low" }
`

// correctionSchema restringe la respuesta de correccion a los campos de ToneTraits.
var correctionSchema = llm.Schema{
	Name:        "propose_tone_signature",
	Description: "Return the corrected tone-of-voice signature for the brand.",
	Properties: map[string]any{
		"tone":             map[string]any{"type": "string"},
		"language_style":   map[string]any{"type": "string"},
		"formality":        map[string]any{"type": "string"},
		"forms_of_address": map[string]any{"type": "string"},
		"emotional_appeal": map[string]any{"type": "string"},
		"classification": map[string]any{
			"type": "string",
			"enum": []string{"Professional", "Conversational", "Empathetic", "Inspirational", "Assertive", "Playful"},
		},
	},
	Required: []string{"tone", "language_style", "formality", "forms_of_address", "emotional_appeal"},
}

func buildSignaturePrompt(text string, metrics domain.TextMetrics) string {
	return fmt.Sprintf(signaturePromptTemplate, prettyJSON(metrics), text)
}

func buildRewritePrompt(traits domain.ToneTraits, text string) string {
	return fmt.Sprintf(rewritePromptTemplate,
		traits.Tone, traits.LanguageStyle, traits.Formality, traits.FormsOfAddress, traits.EmotionalAppeal, text)
}

func buildEvaluationPrompt(sig domain.ToneSignature, original, rewritten string) string {
	return fmt.Sprintf(evaluationPromptTemplate, prettyJSON(sig.Traits), original, rewritten)
}

// driftExample es la terna que se envia al oraculo por cada evaluacion con drift.
type driftExample struct {
	Original    string `json:"original"`
	Rewritten   string `json:"rewritten"`
	Suggestions string `json:"suggestions"`
}

func buildCorrectionPrompt(sig domain.ToneSignature, drifted []domain.Evaluation) string {
	examples := make([]driftExample, 0, len(drifted))
	for _, ev := range drifted {
		examples = append(examples, driftExample{
			Original:    ev.OriginalText,
			Rewritten:   ev.RewrittenText,
			Suggestions: strings.Join(ev.Qualitative.Suggestions, "; "),
		})
	}
	return fmt.Sprintf(correctionPromptTemplate, sig.BrandID, prettyJSON(sig.Traits), prettyJSON(examples))
}

type brandProfile struct {
	BrandID string `json:"brand_id"`
	domain.ToneTraits
}

func buildDetectBrandPrompt(input domain.ToneTraits, candidates []domain.ToneSignature) string {
	profiles := make([]brandProfile, 0, len(candidates))
	for _, c := range candidates {
		profiles = append(profiles, brandProfile{BrandID: c.BrandID, ToneTraits: c.Traits})
	}
	return fmt.Sprintf(detectBrandPromptTemplate, prettyJSON(input), prettyJSON(profiles))
}

func prettyJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
