package semantic

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/report.html
var htmlTemplate string

//go:embed templates/styles.css
var cssStyles string

// AnalyzeCmd runs the pipeline over a comments JSON file and writes
// report.md plus report.html for analysts who want the results without
// standing up the HTTP service.
func AnalyzeCmd(cfg Config) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [comments.json]",
		Short: "Analyze a comments file and generate a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read comments file: %w", err)
			}

			var req AnalyzeRequest
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("failed to parse comments file: %w", err)
			}

			embedder, closeEmbedder, err := NewEmbedderFromConfig(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeEmbedder(); err != nil {
					log.Printf("Failed to close embedding cache: %v", err)
				}
			}()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.EmbedTimeout)
			defer cancel()

			result, err := NewAnalyzer(embedder).Analyze(ctx, req.Comments, req.Organizations)
			if err != nil {
				return err
			}

			if err := WriteReportFiles(result, cfg.ReportDir); err != nil {
				return err
			}
			log.Printf("Report generated: %s", filepath.Join(cfg.ReportDir, "report.md"))
			log.Printf("HTML report generated: %s", filepath.Join(cfg.ReportDir, "report.html"))
			return nil
		},
	}
}

// CleanCmd removes generated artifacts: reports and the embedding cache.
func CleanCmd(cfg Config) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove generated reports and the embedding cache",
		Run: func(cmd *cobra.Command, args []string) {
			targets := []string{
				filepath.Join(cfg.ReportDir, "report.md"),
				filepath.Join(cfg.ReportDir, "report.html"),
			}
			if cfg.CachePath != "" {
				targets = append(targets, cfg.CachePath)
			}
			for _, target := range targets {
				if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
					log.Printf("Failed to remove %s: %v", target, err)
				}
			}
			log.Println("Cleaned reports and embedding cache.")
		},
	}
}

// WriteReportFiles renders the markdown report and its HTML version
// into dir.
func WriteReportFiles(result *AnalyzeResult, dir string) error {
	markdown := FormatReport(result)
	if err := os.WriteFile(filepath.Join(dir, "report.md"), []byte(markdown), 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	htmlContent, err := RenderHTMLReport(markdown)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "report.html"), []byte(htmlContent), 0644); err != nil {
		return fmt.Errorf("failed to write HTML file: %w", err)
	}
	return nil
}

// FormatReport renders an analysis result as a markdown report.
func FormatReport(result *AnalyzeResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Comment Analysis Report\n\n")
	fmt.Fprintf(&b, "%d comments from %d organizations, %d themes identified.\n\n",
		result.TotalComments, result.TotalOrganizations, len(result.Themes))

	fmt.Fprintf(&b, "## Themes\n\n")
	for _, theme := range result.Themes {
		fmt.Fprintf(&b, "### %s (%d comments)\n\n", theme.ThemeName, theme.CommentCount)
		if len(theme.Keywords) > 0 {
			fmt.Fprintf(&b, "**Keywords:** %s\n\n", strings.Join(theme.Keywords, ", "))
		}
		fmt.Fprintf(&b, "> %s\n\n", theme.RepresentativeComment)
	}

	if len(result.OrganizationInsights) > 0 {
		fmt.Fprintf(&b, "## Organizations\n\n")
		fmt.Fprintf(&b, "| Organization | Comments | Coherence | Top Keywords |\n")
		fmt.Fprintf(&b, "|---|---|---|---|\n")
		for _, org := range sortedOrgKeys(result.OrganizationInsights) {
			profile := result.OrganizationInsights[org]
			fmt.Fprintf(&b, "| %s | %d | %.3f | %s |\n",
				org, profile.CommentCount, profile.CoherenceScore, strings.Join(profile.TopKeywords, ", "))
		}
		fmt.Fprintf(&b, "\n")
	}

	if len(result.SimilarCommentPairs) > 0 {
		fmt.Fprintf(&b, "## Near-Duplicate Comments\n\n")
		for _, pair := range result.SimilarCommentPairs {
			fmt.Fprintf(&b, "- (%.3f) %q / %q\n", pair.Similarity, pair.CommentA, pair.CommentB)
		}
		fmt.Fprintf(&b, "\n")
	}

	fmt.Fprintf(&b, "## Consensus Signal\n\n")
	fmt.Fprintf(&b, "**%s** (mean variance %.4f)\n\n*%s.*\n",
		result.SentimentDistribution.Pattern,
		result.SentimentDistribution.Variance,
		result.SentimentDistribution.Note)

	return b.String()
}

// RenderHTMLReport converts the markdown report into a standalone HTML
// document with embedded styles.
func RenderHTMLReport(markdownContent string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Linkify,
			extension.Strikethrough,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(markdownContent), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML template: %w", err)
	}

	data := struct {
		Title string
		Date  string
		Body  template.HTML
		CSS   template.CSS
	}{
		Title: "Comment Analysis Report",
		Date:  time.Now().Format("2 January 2006"),
		Body:  template.HTML(buf.String()),
		CSS:   template.CSS(cssStyles),
	}

	var result bytes.Buffer
	if err := tmpl.Execute(&result, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return result.String(), nil
}

func sortedOrgKeys(insights map[string]OrganizationProfile) []string {
	keys := make([]string, 0, len(insights))
	for org := range insights {
		keys = append(keys, org)
	}
	// Deterministic report output across runs.
	sort.Strings(keys)
	return keys
}
