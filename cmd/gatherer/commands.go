package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/gatherer/config"
	"github.com/mohammad-safakhou/gatherer/internal/content"
	"github.com/mohammad-safakhou/gatherer/internal/fetch"
	"github.com/mohammad-safakhou/gatherer/internal/pipeline"
	"github.com/mohammad-safakhou/gatherer/internal/region"
	"github.com/mohammad-safakhou/gatherer/internal/summarize"
	"github.com/mohammad-safakhou/gatherer/internal/youtube"
	openai_provider "github.com/mohammad-safakhou/gatherer/provider/openai"
)

func transcriptCMD(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "transcript <video-url>",
		Short: "Print the caption transcript of a YouTube video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			videoID, err := youtube.VideoID(args[0])
			if err != nil {
				return err
			}
			yt := &youtube.Client{
				APIKey:     cfg.YouTube.APIKey,
				HTTPClient: httpClientFor(cfg.YouTube.Timeout),
				Logger:     newLogger("[YOUTUBE] "),
			}
			segments, err := yt.Transcript(cmd.Context(), videoID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(segments, " "))
			return nil
		},
	}
}

func summarizeCMD(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <url>",
		Short: "Summarize a webpage or a YouTube video transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			text, err := sourceText(cmd, cfg, args[0])
			if err != nil {
				return err
			}

			llm := openai_provider.NewClient(
				cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model,
				cfg.LLM.Temperature, cfg.LLM.MaxTokens, cfg.LLM.Timeout,
			)
			s := summarize.NewSummarizer(llm, cfg.LLM.MaxContextChars, newLogger("[SUMMARIZE] "))
			summary, err := s.Summarize(ctx, text)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

// sourceText resolves a URL to summarizable text: caption segments for
// video URLs, readable article text for everything else.
func sourceText(cmd *cobra.Command, cfg *config.Config, rawURL string) (string, error) {
	if videoID, err := youtube.VideoID(rawURL); err == nil {
		yt := &youtube.Client{
			APIKey:     cfg.YouTube.APIKey,
			HTTPClient: httpClientFor(cfg.YouTube.Timeout),
			Logger:     newLogger("[YOUTUBE] "),
		}
		segments, err := yt.Transcript(cmd.Context(), videoID)
		if err != nil {
			return "", err
		}
		return strings.Join(segments, " "), nil
	}

	renderer := fetch.Renderer{Timeout: cfg.Fetch.Timeout, UserAgent: cfg.Fetch.UserAgent}
	html, err := renderer.Render(cmd.Context(), rawURL)
	if err != nil {
		return "", err
	}
	text, err := fetch.ArticleText(html, rawURL, cfg.Fetch.MaxChars)
	if err != nil || text == "" {
		// Readability can come up empty on sparse pages; the cleaned
		// whole-page text still gives the model something to work with.
		return content.Clean(html), nil
	}
	return text, nil
}

func categorizeCMD(configPath *string) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Assign a geographic category to every item in a results file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return err
			}

			in, closeIn, err := openInput(input)
			if err != nil {
				return err
			}
			defer closeIn()
			out, closeOut, err := openOutput(output)
			if err != nil {
				return err
			}
			defer closeOut()

			llm := openai_provider.NewClient(
				cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model,
				cfg.LLM.Temperature, cfg.LLM.MaxTokens, cfg.LLM.Timeout,
			)
			cat := region.NewCategorizer(llm, newLogger("[REGION] "))

			enc := json.NewEncoder(out)
			scanner := bufio.NewScanner(in)
			scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				var record pipeline.Record
				if err := json.Unmarshal([]byte(line), &record); err != nil {
					return fmt.Errorf("decoding record: %w", err)
				}
				for i := range record.Items {
					category, err := cat.Categorize(cmd.Context(), record.Items[i].Title, record.SourceName)
					if err != nil {
						return err
					}
					record.Items[i].Region = category
				}
				if err := enc.Encode(record); err != nil {
					return fmt.Errorf("encoding record: %w", err)
				}
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "articles.jsonl", "results file to annotate (- for stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "destination (- for stdout)")
	return cmd
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening input %q: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
