package domain

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

// Etiquetas cualitativas que devuelve el oraculo al evaluar una reescritura.
const (
	LevelHigh   = "High"
	LevelMedium = "Medium"
	LevelLow    = "Low"

	ReadabilityExcellent = "Excellent"
	ReadabilityGood      = "Good"
	ReadabilityPoor      = "Poor"

	LabelUnknown        = "Unknown"
	LabelUnclassified   = "Unclassified"
	MetricsVectorLength = 8
)

// TextMetrics son rasgos linguisticos deterministas extraidos de un texto.
type TextMetrics struct {
	WordCount            int       `json:"word_count"`
	SentenceCount        int       `json:"sentence_count"`
	ReadabilityScore     float64   `json:"readability_score"`
	Sentiment            Sentiment `json:"sentiment"`
	UsesFirstPerson      bool      `json:"uses_first_person"`
	UsesSecondPerson     bool      `json:"uses_second_person"`
	UsesPassiveVoice     bool      `json:"uses_passive_voice"` // nunca se calcula
	EmojiCount           int       `json:"emoji_count"`
	ExclamationCount     int       `json:"exclamation_count"`
	QuestionCount        int       `json:"question_count"`
	AvgWordLength        float64   `json:"avg_word_length"`
	HasHashtags          bool      `json:"has_hashtags"`
	HasMentions          bool      `json:"has_mentions"`
	PunctuationDensity   float64   `json:"punctuation_density"`
	EmphaticCapitalWords int       `json:"emphatic_capital_words"`
}

// Vector proyecta las metricas numericas a un embedding fijo para busqueda por similitud.
// Las escalas se acercan a [0,1] para que ninguna dimension domine la distancia L2.
func (m TextMetrics) Vector() pgvector.Vector {
	words := float64(m.WordCount)
	if words < 1 {
		words = 1
	}
	sentences := float64(m.SentenceCount)
	if sentences < 1 {
		sentences = 1
	}
	sentiment := float32(0)
	switch m.Sentiment {
	case SentimentPositive:
		sentiment = 1
	case SentimentNegative:
		sentiment = -1
	}
	return pgvector.NewVector([]float32{
		float32(m.ReadabilityScore / 100),
		float32(words / sentences / 40),
		float32(m.AvgWordLength / 10),
		float32(m.PunctuationDensity),
		sentiment,
		boolToFloat(m.UsesFirstPerson),
		boolToFloat(m.UsesSecondPerson),
		float32(float64(m.EmojiCount+m.ExclamationCount+m.EmphaticCapitalWords) / words),
	})
}

func boolToFloat(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

// ToneTraits es la parte cualitativa de una firma de tono.
type ToneTraits struct {
	Tone            string `json:"tone"`
	LanguageStyle   string `json:"language_style"`
	Formality       string `json:"formality"`
	FormsOfAddress  string `json:"forms_of_address"`
	EmotionalAppeal string `json:"emotional_appeal"`
	Classification  string `json:"classification,omitempty"`
}

// ToneSignature es la huella de voz activa de una marca (una por brand_id).
type ToneSignature struct {
	ID        string      `json:"id"`
	BrandID   string      `json:"brand_id"`
	Traits    ToneTraits  `json:"traits"`
	Metrics   TextMetrics `json:"metrics"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// QualitativeEvaluation es el juicio ordinal del oraculo antes de normalizarlo.
type QualitativeEvaluation struct {
	Fluency       string   `json:"fluency"`
	Authenticity  string   `json:"authenticity"`
	ToneAlignment string   `json:"tone_alignment"`
	Readability   string   `json:"readability"`
	Strengths     []string `json:"strengths"`
	Suggestions   []string `json:"suggestions"`
}

type AccuracyPoints struct {
	Fluency       int `json:"fluency"`
	Authenticity  int `json:"authenticity"`
	ToneAlignment int `json:"tone_alignment"`
	Readability   int `json:"readability"`
}

// Evaluation es una comparacion puntuada original vs reescrito. Inmutable una vez creada.
type Evaluation struct {
	ID             string                `json:"id"`
	BrandID        string                `json:"brand_id"`
	OriginalText   string                `json:"original_text"`
	RewrittenText  string                `json:"rewritten_text"`
	Qualitative    QualitativeEvaluation `json:"evaluation"`
	AccuracyPoints AccuracyPoints        `json:"accuracy_points"`
	Score          float64               `json:"score"`
	LatencyMs      int64                 `json:"latency_ms"`
	CreatedAt      time.Time             `json:"created_at"`
}

// CorrectionProposal es una firma corregida pendiente de aprobacion humana.
type CorrectionProposal struct {
	BrandID      string      `json:"brand_id"`
	Traits       ToneTraits  `json:"traits"`
	Metrics      TextMetrics `json:"metrics"`
	DriftedCount int         `json:"drifted_count"`
	Token        string      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
}

type Rejection struct {
	ID        string    `json:"id"`
	BrandID   string    `json:"brand_id"`
	Reviewer  string    `json:"reviewer"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type Feedback struct {
	ID           string    `json:"id"`
	EvaluationID string    `json:"evaluation_id"`
	UserID       string    `json:"user_id"`
	Helpful      bool      `json:"helpful"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

type FeedbackSummary struct {
	EvaluationID string `json:"evaluation_id"`
	Helpful      int    `json:"helpful"`
	NotHelpful   int    `json:"not_helpful"`
}

// ScoreStats resume el historial de puntuaciones de una marca.
type ScoreStats struct {
	BrandID      string  `json:"brand_id"`
	Count        int     `json:"count"`
	Average      float64 `json:"average"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	DriftedCount int     `json:"drifted_count"`
}

type ChartPoint struct {
	At    time.Time `json:"at"`
	Score float64   `json:"score"`
}

// MatrixRow es una fila de la matriz de evaluaciones: etiquetas, puntos y score.
type MatrixRow struct {
	EvaluationID  string         `json:"evaluation_id"`
	BrandID       string         `json:"brand_id"`
	Fluency       string         `json:"fluency"`
	Authenticity  string         `json:"authenticity"`
	ToneAlignment string         `json:"tone_alignment"`
	Readability   string         `json:"readability"`
	Points        AccuracyPoints `json:"points"`
	Score         float64        `json:"score"`
	Drifted       bool           `json:"drifted"`
	CreatedAt     time.Time      `json:"created_at"`
}

// TraitScore agrega los scores obtenidos bajo un valor concreto de un rasgo de la firma.
type TraitScore struct {
	Trait        string  `json:"trait"`
	Value        string  `json:"value"`
	Evaluations  int     `json:"evaluations"`
	AverageScore float64 `json:"average_score"`
}

// ChartPreview resume los ultimos puntos de la serie de una marca.
type ChartPreview struct {
	BrandID string       `json:"brand_id"`
	Points  []ChartPoint `json:"points"`
	Total   int          `json:"total"`
	Average float64      `json:"average"`
	Latest  float64      `json:"latest"`
	Trend   float64      `json:"trend"`
}

type ReviewerRejections struct {
	Reviewer string `json:"reviewer"`
	Count    int    `json:"count"`
}
