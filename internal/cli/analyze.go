package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/regintel/riskscan/internal/govern"
	"github.com/regintel/riskscan/internal/model"
	"github.com/regintel/riskscan/internal/pipeline"
	"github.com/regintel/riskscan/internal/render"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	maxBytes    int64
	noFooter    bool
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.xlsx>",
	Short: "Analyze a single risk register workbook",
	Long: `Analyze reads one spreadsheet and produces a risk report:
- Select the sheet that most resembles a risk register
- Resolve hazard, activity, observation and score columns
- Classify every finding on the Fine-Kinney bands
- Rank the top risks and summarize the distribution
- Optionally add an AI-written summary, gaps and action plan

Example:
  riskscan analyze register.xlsx
  riskscan analyze register.xlsx --json report.json --md report.md
  riskscan analyze register.xlsx --llm --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Limits
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().Int64Var(&maxBytes, "max-bytes", 12*1024*1024, "max workbook bytes to accept")

	// LLM flags
	analyzeCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable AI summary generation")
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Limits.MaxFileBytes = maxBytes

	// Local runs are not governed by the resolver.
	cfg.Entitlement.AllowAll = true

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel

		switch llmProvider {
		case "openai":
			if cfg.LLM.APIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "ollama":
			// Ollama doesn't need an API key
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	} else {
		cfg.LLM.Provider = ""
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", path)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintf(os.Stderr, "AI: %v\n", llmEnabled)
		fmt.Fprintln(os.Stderr)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read workbook: %w", err)
	}

	log := newLogger(cfg)
	pipe := pipeline.New(cfg, log)
	limiter := govern.NewRateLimiter(cfg.Limits.RateMaxRequests, cfg.Limits.RateWindow)
	governor := govern.NewGovernor(cfg, limiter, govern.StaticEntitler(true), pipe, log)

	env := governor.Process(ctx, govern.Request{
		Identity: "local",
		FileName: path,
		Data:     data,
	})
	if env.Error != nil {
		return fmt.Errorf("analysis failed: %s", env.Error.Message)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Selected sheet: %s\n", env.PrimarySheetName)
		fmt.Fprintf(os.Stderr, "✓ Findings: %d (%d scored)\n",
			env.Analysis.Stats.TotalFindings, env.Analysis.Stats.ScoredFindings)
		if env.Analysis.AIUsed {
			fmt.Fprintf(os.Stderr, "✓ AI summary generated\n")
		}
		fmt.Fprintln(os.Stderr)
	}

	renderer := render.NewRenderer(!noFooter)
	if outJSON != "" {
		if err := renderer.RenderJSON(env, outJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Printf("✓ Wrote JSON: %s\n", outJSON)
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(env, outMD); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Printf("✓ Wrote Markdown: %s\n", outMD)
	}
	renderer.RenderSummary(env)

	return nil
}

// newLogger builds the process logger from configuration.
func newLogger(cfg *model.Config) hclog.Logger {
	level := hclog.LevelFromString(cfg.Log.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	if verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "riskscan",
		Level:  level,
		Output: os.Stderr,
	})
}
