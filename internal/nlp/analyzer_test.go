package nlp

import (
	"testing"

	"tone-drift/internal/domain"
)

func TestAnalyzeSimpleSentence(t *testing.T) {
	m := DefaultAnalyzer.Analyze("The cat sat.")

	if m.WordCount != 3 || m.SentenceCount != 1 {
		t.Fatalf("expected 3 words / 1 sentence, got %d / %d", m.WordCount, m.SentenceCount)
	}
	if m.ReadabilityScore != 119.19 {
		t.Fatalf("expected readability 119.19, got %v", m.ReadabilityScore)
	}
	if m.AvgWordLength != 3 {
		t.Fatalf("expected avg word length 3, got %v", m.AvgWordLength)
	}
	if m.PunctuationDensity != 0.1 {
		t.Fatalf("expected punctuation density 0.1, got %v", m.PunctuationDensity)
	}
	if m.Sentiment != domain.SentimentNeutral {
		t.Fatalf("expected neutral sentiment, got %s", m.Sentiment)
	}
	if m.UsesPassiveVoice {
		t.Fatalf("passive voice is never computed")
	}
}

func TestAnalyzeSurfaceFeatures(t *testing.T) {
	m := DefaultAnalyzer.Analyze("We LOVE our new app! Do you? #launch @team 🚀")

	if m.WordCount != 7 {
		t.Fatalf("expected hashtags and mentions excluded from words, got %d", m.WordCount)
	}
	if !m.UsesFirstPerson || !m.UsesSecondPerson {
		t.Fatalf("expected first and second person, got %+v", m)
	}
	if !m.HasHashtags || !m.HasMentions {
		t.Fatalf("expected hashtag and mention flags, got %+v", m)
	}
	if m.EmojiCount != 1 {
		t.Fatalf("expected 1 emoji, got %d", m.EmojiCount)
	}
	if m.ExclamationCount != 1 || m.QuestionCount != 1 {
		t.Fatalf("expected 1 exclamation and 1 question, got %d/%d", m.ExclamationCount, m.QuestionCount)
	}
	if m.EmphaticCapitalWords != 1 {
		t.Fatalf("expected 1 emphatic caps word, got %d", m.EmphaticCapitalWords)
	}
}

func TestAnalyzePronounsInContractions(t *testing.T) {
	m := DefaultAnalyzer.Analyze("You're going to love it.")
	if !m.UsesSecondPerson || m.UsesFirstPerson {
		t.Fatalf("expected second person only, got first=%v second=%v", m.UsesFirstPerson, m.UsesSecondPerson)
	}
	if m.WordCount != 5 {
		t.Fatalf("expected contraction counted as one word, got %d", m.WordCount)
	}

	m = DefaultAnalyzer.Analyze("I’m thrilled. We're here for it.")
	if !m.UsesFirstPerson || m.UsesSecondPerson {
		t.Fatalf("expected first person only, got first=%v second=%v", m.UsesFirstPerson, m.UsesSecondPerson)
	}

	if DefaultAnalyzer.Analyze("Yours truly, the team.").UsesSecondPerson {
		t.Fatalf("expected possessive pronoun outside the set to be ignored")
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	for _, text := range []string{"", "   \n\t "} {
		m := DefaultAnalyzer.Analyze(text)
		want := domain.TextMetrics{Sentiment: domain.SentimentNeutral}
		if m != want {
			t.Fatalf("expected zero metrics for %q, got %+v", text, m)
		}
	}
}

func TestAnalyzeSentiment(t *testing.T) {
	cases := []struct {
		text string
		want domain.Sentiment
	}{
		{"I love this great product.", domain.SentimentPositive},
		{"This is terrible and awful.", domain.SentimentNegative},
		{"This is not good.", domain.SentimentNegative},
		{"The box is on the table.", domain.SentimentNeutral},
		{"We don't hate it.", domain.SentimentPositive},
	}
	for _, tc := range cases {
		if got := DefaultAnalyzer.Analyze(tc.text).Sentiment; got != tc.want {
			t.Fatalf("%q: expected %s, got %s", tc.text, tc.want, got)
		}
	}
}

func TestAnalyzeInvariants(t *testing.T) {
	inputs := []string{
		"",
		"!!!???...",
		"🚀🚀🚀",
		"#only @handles",
		"a",
		"ALL CAPS SHOUTING IS FUN!!!",
		"Version 2.5 is out. Try it!",
		"Numbers 123 456 789.",
		"Ünïcödé wörds änd accents, très bien.",
	}
	for _, in := range inputs {
		m := DefaultAnalyzer.Analyze(in)
		if m.WordCount < 0 || m.SentenceCount < 0 || m.EmojiCount < 0 || m.ExclamationCount < 0 ||
			m.QuestionCount < 0 || m.EmphaticCapitalWords < 0 {
			t.Fatalf("%q: negative count in %+v", in, m)
		}
		if m.PunctuationDensity < 0 || m.PunctuationDensity > 1 {
			t.Fatalf("%q: punctuation density out of range: %v", in, m.PunctuationDensity)
		}
		if again := DefaultAnalyzer.Analyze(in); again != m {
			t.Fatalf("%q: expected identical metrics, got %+v vs %+v", in, m, again)
		}
	}
}

func TestSplitSentencesKeepsDecimals(t *testing.T) {
	got := splitSentences("Version 2.5 is out. Try it!")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %q", len(got), got)
	}
}

func TestCountSyllables(t *testing.T) {
	cases := map[string]int{
		"cat":         1,
		"the":         1,
		"rewrite":     2,
		"table":       2,
		"hoped":       1,
		"yellow":      2,
		"readability": 5,
		"Rhythm":      1,
	}
	for word, want := range cases {
		if got := CountSyllables(word); got != want {
			t.Fatalf("%s: expected %d syllables, got %d", word, want, got)
		}
	}
}
