package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/gatherer/config"
	"github.com/mohammad-safakhou/gatherer/internal/extract"
	"github.com/mohammad-safakhou/gatherer/internal/fetch"
	"github.com/mohammad-safakhou/gatherer/internal/helpers"
	"github.com/mohammad-safakhou/gatherer/internal/pipeline"
	"github.com/mohammad-safakhou/gatherer/internal/youtube"
	openai_provider "github.com/mohammad-safakhou/gatherer/provider/openai"
)

func fetchCMD(configPath *string) *cobra.Command {
	var output string
	var interactive bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Process all configured sources and write one record per source",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			if output != "" {
				cfg.Pipeline.OutputPath = output
			}
			return runFetch(cmd.Context(), cfg, interactive)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (overrides config, - for stdout)")
	cmd.Flags().BoolVar(&interactive, "interactive", true, "prompt for manual content when automation fails")
	return cmd
}

func watchCMD(configPath *string) *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run fetch on a cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			if schedule == "" {
				schedule = cfg.Pipeline.Schedule
			}
			if schedule == "" {
				return fmt.Errorf("no schedule configured: set pipeline.schedule or --schedule")
			}
			expr, err := cronexpr.Parse(schedule)
			if err != nil {
				return fmt.Errorf("invalid schedule %q: %w", schedule, err)
			}

			logger := newLogger("[WATCH] ")
			ctx := cmd.Context()
			for {
				next := expr.Next(time.Now())
				if next.IsZero() {
					return fmt.Errorf("schedule %q has no future run", schedule)
				}
				logger.Printf("next run at %s", next.Format(time.RFC3339))
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Until(next)):
				}
				// Scheduled runs are unattended; manual fallback prompts
				// would stall the loop.
				if err := runFetch(ctx, cfg, false); err != nil {
					logger.Printf("run failed: %v", err)
				}
			}
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron expression (overrides config)")
	return cmd
}

func runFetch(ctx context.Context, cfg *config.Config, interactive bool) error {
	logger := newLogger("[PIPELINE] ")

	out, closeOut, err := openOutput(cfg.Pipeline.OutputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	llm := openai_provider.NewClient(
		cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model,
		cfg.LLM.Temperature, cfg.LLM.MaxTokens, cfg.LLM.Timeout,
	)

	deps := pipeline.Deps{
		Renderer:  fetch.Renderer{Timeout: cfg.Fetch.Timeout, UserAgent: cfg.Fetch.UserAgent},
		Extractor: extract.NewPrompter(llm, cfg.Pipeline.ArticleLimit, newLogger("[EXTRACT] ")),
		YouTube: &youtube.Client{
			APIKey:     cfg.YouTube.APIKey,
			HTTPClient: httpClientFor(cfg.YouTube.Timeout),
			Logger:     newLogger("[YOUTUBE] "),
		},
		Sanitize: helpers.SanitizeText,
		Pace:     pipeline.WaitPacer(cfg.Pipeline.PacingDelay),
		Logger:   logger,
		Now:      time.Now,
	}
	if interactive {
		deps.Prompt = stdinPrompt(bufio.NewReader(os.Stdin), os.Stderr)
	}

	if err := pipeline.Run(ctx, cfg, deps, out); err != nil {
		return err
	}
	logger.Printf("processed %d sources", len(cfg.Sources))
	return nil
}

// stdinPrompt asks the operator for substitute content. Input ends at the
// first empty line; supplying nothing skips the source.
func stdinPrompt(in *bufio.Reader, msgs io.Writer) func(sourceName, reason string) string {
	return func(sourceName, reason string) string {
		fmt.Fprintf(msgs, "automatic extraction failed for %q: %s\n", sourceName, reason)
		fmt.Fprintf(msgs, "paste substitute content, end with an empty line (empty input skips):\n")

		var lines []string
		for {
			line, err := in.ReadString('\n')
			line = strings.TrimRight(line, "\r\n")
			if line != "" {
				lines = append(lines, line)
			}
			if err != nil || line == "" {
				break
			}
		}
		return strings.Join(lines, "\n")
	}
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening output %q: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
