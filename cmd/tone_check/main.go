package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"tone-drift/internal/config"
	"tone-drift/internal/llm"
	"tone-drift/internal/service"
)

const (
	colorGreen  = "\033[32m"
	colorCyan   = "\033[36m"
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

// Scenario es un texto de entrada que el oraculo debe llevar al tono de la marca semilla.
type Scenario struct {
	Name  string
	Input string
}

const seedText = `At Northwind we believe banking should feel human. We answer every question with care, ` +
	`we explain our fees in plain words, and we never rush you. Your money, your pace.`

var scenarios = []Scenario{
	{Name: "Jerga", Input: "yo!! ur card is blocked lol, call us asap 🔥🔥"},
	{Name: "Legal", Input: "Pursuant to clause 4.2, the account holder shall remit outstanding balances forthwith."},
	{Name: "Neutro", Input: "Your statement for March is available in the app."},
	{Name: "Queja", Input: "We regret to inform you that your request has been denied."},
}

func main() {
	minScore := flag.Float64("min-score", 0.6, "average score below which the check fails")
	flag.Parse()

	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	var oracle llm.LLMClient
	if cfg.LLMProvider == config.LLMProviderAnthropic {
		oracle = llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.LLMTemperature)
	} else {
		oracle = llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTemperature, cfg.OracleTimeout, log.Default())
	}

	signatures := newMemorySignatureRepo()
	evaluations := &memoryEvaluationRepo{}
	toneSvc := service.NewToneService(oracle, signatures, evaluations, cfg.OracleTimeout, zap.NewNop())

	sig, err := toneSvc.AnalyzeAndSave(ctx, seedText, "northwind-check")
	if err != nil {
		log.Fatalf("seed signature failed: %v", err)
	}
	fmt.Printf("%s[Firma]%s tone=%s style=%s formality=%s address=%s appeal=%s (%s)\n\n",
		colorCyan, colorReset, sig.Traits.Tone, sig.Traits.LanguageStyle, sig.Traits.Formality,
		sig.Traits.FormsOfAddress, sig.Traits.EmotionalAppeal, sig.Traits.Classification)

	var results []scenarioResult
	for _, sc := range scenarios {
		fmt.Printf("%s[%s]%s %s\n", colorCyan, sc.Name, colorReset, sc.Input)
		start := time.Now()
		res, err := toneSvc.RewriteWithEvaluation(ctx, sig.BrandID, sc.Input)
		if err != nil {
			fmt.Printf("%s  error:%s %v\n\n", colorYellow, colorReset, err)
			results = append(results, scenarioResult{Name: sc.Name, Err: err})
			continue
		}
		fmt.Printf("%s  rewrite:%s %s\n", colorGreen, colorReset, res.RewrittenText)
		fmt.Printf("  score %.2f | alignment %s | fluency %s | %s\n\n",
			res.Evaluation.Score, res.Evaluation.Qualitative.ToneAlignment, res.Evaluation.Qualitative.Fluency,
			time.Since(start).Round(time.Millisecond))
		results = append(results, scenarioResult{Name: sc.Name, Evaluation: res.Evaluation})
	}

	sum := summarize(results)
	fmt.Println("==== Resumen ====")
	fmt.Printf("Promedio: %.2f | drift: %d/%d | errores: %d\n", sum.Average, sum.Drifted, sum.Scored, sum.Failed)

	if !sum.Passes(*minScore) {
		fmt.Printf("%sFALLA%s: promedio por debajo de %.2f o escenarios sin evaluar\n", colorYellow, colorReset, *minScore)
		os.Exit(1)
	}
}
