package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/helmcode/devcompanion/pkg/analyzer"
	"github.com/helmcode/devcompanion/pkg/config"
	"github.com/helmcode/devcompanion/pkg/formatter"
	"github.com/helmcode/devcompanion/pkg/language"
	"github.com/helmcode/devcompanion/pkg/snapshot"
)

// inlineName labels code passed with --code.
const inlineName = "<inline>"

// maxParallelAnalyses bounds concurrent model calls for multi-file runs.
const maxParallelAnalyses = 4

var (
	analyzeCode       string
	analyzeGlobs      []string
	analyzeLanguage   string
	analyzeProvider   string
	analyzeModel      string
	analyzeOffline    bool
	analyzeOutput     string
	analyzeSave       bool
	analyzeMessage    string
	analyzeConfigPath string
)

type input struct {
	name     string
	path     string
	language string
	code     string
}

func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [FILE...]",
		Short: "Review code with a hosted model or the offline heuristic engine",
		Long: `Review source files or an inline snippet. Each input gets an explanation,
potential issues, suggestions, concept tags and suggested test cases.

When no API key is configured (or --offline is set) the built-in heuristic
engine answers instead of a hosted model.

Examples:
  # Review a file
  devcompanion analyze src/sum.js

  # Review every Go file under internal/ and store a snapshot of each
  devcompanion analyze --glob 'internal/**/*.go' --save -m "before refactor"

  # Review an inline snippet offline
  devcompanion analyze --code 'const a = 10; const b = 5; console.log(a + b);' --offline

  # Machine-readable output
  devcompanion analyze main.py -o json`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringVar(&analyzeCode, "code", "", "Inline code to analyze")
	cmd.Flags().StringArrayVar(&analyzeGlobs, "glob", nil, "Glob pattern of files to analyze, relative to the current directory (supports **)")
	cmd.Flags().StringVarP(&analyzeLanguage, "language", "l", "", "Language label (defaults to detection from the file extension, then JavaScript)")
	cmd.Flags().StringVar(&analyzeProvider, "provider", "", "LLM provider (gemini, claude, openai). Defaults to auto-detect from env")
	cmd.Flags().StringVar(&analyzeModel, "model", "", "LLM model to use (overrides default)")
	cmd.Flags().BoolVar(&analyzeOffline, "offline", false, "Skip the hosted model and use the heuristic engine")
	cmd.Flags().StringVarP(&analyzeOutput, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")
	cmd.Flags().BoolVar(&analyzeSave, "save", false, "Store a snapshot of each analyzed file")
	cmd.Flags().StringVarP(&analyzeMessage, "message", "m", "", "Commit message for saved snapshots")
	cmd.Flags().StringVar(&analyzeConfigPath, "config", config.DefaultPath, "Path to config file")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if !formatter.ValidFormat(analyzeOutput) {
		return fmt.Errorf("unsupported output format %q (use human, json or yaml)", analyzeOutput)
	}

	inputs, err := collectInputs(args, analyzeGlobs, analyzeCode, analyzeLanguage)
	if err != nil {
		return err
	}

	cfg, logger, err := loadRuntime(analyzeConfigPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	a, err := newAnalyzer(ctx, cfg, analyzeProvider, analyzeModel, analyzeOffline, logger)
	if err != nil {
		return err
	}

	mode := "offline heuristic engine"
	if a.Online() {
		mode = "hosted model"
	}
	printHeader("🔍 DevCompanion Code Review",
		fmt.Sprintf("📝 Inputs: %d", len(inputs)),
		fmt.Sprintf("🧠 Engine: %s", mode),
	)

	s := newSpinner(fmt.Sprintf(" Analyzing %d input(s)...", len(inputs)))
	s.Start()
	reports, err := analyzeAll(ctx, a, inputs)
	s.Stop()
	if err != nil {
		return err
	}
	printSuccess("Analysis complete")

	if analyzeSave {
		if err := saveReports(ctx, cfg.Store.Path, inputs, reports, logger); err != nil {
			return err
		}
	}

	return formatter.DisplayReports(cmd.OutOrStdout(), compactReports(reports), analyzeOutput)
}

// analyzeAll reviews inputs concurrently and keeps their order. Empty inputs
// leave a nil Analysis in their slot.
func analyzeAll(ctx context.Context, a *analyzer.Analyzer, inputs []input) ([]formatter.Report, error) {
	reports := make([]formatter.Report, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelAnalyses)
	for i, in := range inputs {
		g.Go(func() error {
			result, err := a.Analyze(gctx, in.code, in.language)
			if errors.Is(err, analyzer.ErrEmptyCode) {
				printWarning(fmt.Sprintf("Skipping %s: no code", in.name))
				return nil
			}
			if err != nil {
				return fmt.Errorf("analyze %s: %w", in.name, err)
			}
			reports[i] = formatter.Report{
				File:     in.path,
				Language: language.Normalize(in.language),
				Source:   result.Source,
				Model:    result.Model,
				Analysis: result.Analysis,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func saveReports(ctx context.Context, dbPath string, inputs []input, reports []formatter.Report, logger *zap.Logger) error {
	store, err := snapshot.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer store.Close()

	for i, in := range inputs {
		if in.path == "" || reports[i].Analysis == nil {
			continue
		}
		content := in.code
		snap, err := store.Save(ctx, &snapshot.Payload{
			Filename:      filepath.Base(in.path),
			Path:          filepath.ToSlash(filepath.Dir(in.path)),
			Content:       &content,
			Language:      reports[i].Language,
			CommitMessage: analyzeMessage,
			Analysis:      reports[i].Analysis,
		})
		if err != nil {
			return fmt.Errorf("save snapshot for %s: %w", in.path, err)
		}
		logger.Debug("snapshot saved", zap.String("id", snap.ID), zap.Int("version", snap.Version))
		reports[i].Snapshot = snap
	}
	printSuccess(fmt.Sprintf("Snapshots saved to %s", dbPath))
	return nil
}

func compactReports(reports []formatter.Report) []formatter.Report {
	out := reports[:0]
	for _, r := range reports {
		if r.Analysis != nil {
			out = append(out, r)
		}
	}
	return out
}

// collectInputs resolves FILE arguments, glob patterns and inline code into
// a de-duplicated list. An explicit language applies to every input.
func collectInputs(files, globs []string, code, lang string) ([]input, error) {
	var inputs []input
	if code != "" {
		inputs = append(inputs, input{name: inlineName, language: language.Normalize(lang), code: code})
	}

	paths := append([]string{}, files...)
	for _, pattern := range globs {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			printWarning(fmt.Sprintf("No files match %s", pattern))
		}
		paths = append(paths, matches...)
	}

	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		clean := filepath.Clean(path)
		if seen[clean] {
			continue
		}
		seen[clean] = true

		data, err := os.ReadFile(clean)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", clean, err)
		}
		inputs = append(inputs, input{
			name:     clean,
			path:     clean,
			language: detectLanguage(clean, lang),
			code:     string(data),
		})
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("nothing to analyze: pass FILE arguments, --glob or --code")
	}
	return inputs, nil
}

func detectLanguage(path, override string) string {
	if strings.TrimSpace(override) != "" {
		return language.Normalize(override)
	}
	if detected := language.FromPath(path); detected != "" {
		return detected
	}
	return language.Default
}
