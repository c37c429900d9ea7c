package nlp

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"tone-drift/internal/domain"
)

const (
	positiveThreshold = 0.2
	negativeThreshold = -0.2
)

var (
	firstPersonPronouns  = map[string]struct{}{"i": {}, "we": {}, "me": {}, "us": {}, "my": {}, "our": {}}
	secondPersonPronouns = map[string]struct{}{"you": {}, "your": {}}

	hashtagRe     = regexp.MustCompile(`#\w+`)
	mentionRe     = regexp.MustCompile(`@\w+`)
	capsWordRe    = regexp.MustCompile(`\b[A-Z]{2,}\b`)
	punctuationRe = regexp.MustCompile(`[.,!?;:]`)
)

// Analyzer extrae metricas linguisticas de un texto. No tiene estado: es seguro usarlo
// desde varias goroutines.
type Analyzer struct{}

// DefaultAnalyzer permite uso directo sin instanciar.
var DefaultAnalyzer = Analyzer{}

// Analyze nunca falla; un texto vacio devuelve conteos en cero y sentimiento neutral.
func (Analyzer) Analyze(text string) domain.TextMetrics {
	sentences := splitSentences(text)
	words := wordTokens(text)

	totalWords := len(words)
	syllables := 0
	letters := 0
	usesFirst, usesSecond := false, false
	for _, w := range words {
		syllables += CountSyllables(w)
		letters += utf8.RuneCountInString(w)
		lower := pronounStem(w)
		if _, ok := firstPersonPronouns[lower]; ok {
			usesFirst = true
		}
		if _, ok := secondPersonPronouns[lower]; ok {
			usesSecond = true
		}
	}

	readability := 0.0
	avgWordLength := 0.0
	if totalWords > 0 {
		readability = fleschReadingEase(totalWords, maxInt(len(sentences), 1), syllables)
		avgWordLength = float64(letters) / float64(totalWords)
	}

	nonSpace := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			nonSpace++
		}
	}
	punctuation := len(punctuationRe.FindAllStringIndex(text, -1))
	density := 0.0
	if nonSpace > 0 {
		density = float64(punctuation) / float64(nonSpace)
	}

	return domain.TextMetrics{
		WordCount:            totalWords,
		SentenceCount:        len(sentences),
		ReadabilityScore:     round(readability, 2),
		Sentiment:            classifySentiment(Polarity(sentences)),
		UsesFirstPerson:      usesFirst,
		UsesSecondPerson:     usesSecond,
		UsesPassiveVoice:     false,
		EmojiCount:           countEmoji(text),
		ExclamationCount:     strings.Count(text, "!"),
		QuestionCount:        strings.Count(text, "?"),
		AvgWordLength:        round(avgWordLength, 2),
		HasHashtags:          hashtagRe.MatchString(text),
		HasMentions:          mentionRe.MatchString(text),
		PunctuationDensity:   round(density, 3),
		EmphaticCapitalWords: len(capsWordRe.FindAllStringIndex(text, -1)),
	}
}

// pronounStem baja a minusculas y corta la contraccion: "You're" -> "you", "I'm" -> "i".
func pronounStem(word string) string {
	lower := strings.ToLower(word)
	if i := strings.IndexAny(lower, "'’"); i > 0 {
		return lower[:i]
	}
	return lower
}

// fleschReadingEase no se recorta a [0,100]; textos patologicos pueden salirse del rango.
func fleschReadingEase(words, sentences, syllables int) float64 {
	w := float64(maxInt(words, 1))
	s := float64(maxInt(sentences, 1))
	return 206.835 - 1.015*(w/s) - 84.6*(float64(syllables)/w)
}

func classifySentiment(score float64) domain.Sentiment {
	switch {
	case score > positiveThreshold:
		return domain.SentimentPositive
	case score < negativeThreshold:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
