package cmd

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/helmcode/devcompanion/pkg/analyzer"
	"github.com/helmcode/devcompanion/pkg/config"
	"github.com/helmcode/devcompanion/pkg/llm"
	"github.com/helmcode/devcompanion/pkg/logging"
)

// loadRuntime reads the config file and builds the logger every command uses.
func loadRuntime(configPath string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := loadLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func loadLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// newAnalyzer connects to the configured model, or returns an offline
// analyzer when offline is set or no API key is available.
func newAnalyzer(ctx context.Context, cfg *config.Config, provider, model string, offline bool, logger *zap.Logger) (*analyzer.Analyzer, error) {
	opts := []analyzer.Option{
		analyzer.WithLogger(logger),
		analyzer.WithTimeout(cfg.GetLLMTimeout()),
	}
	if offline {
		return analyzer.New(opts...), nil
	}

	client, err := llm.CreateFromConfig(ctx, cfg.LLM, provider, model)
	if errors.Is(err, llm.ErrNoAPIKey) {
		logger.Info("no LLM API key configured, using heuristic engine", zap.String("provider", cfg.LLM.Provider))
		return analyzer.New(opts...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return analyzer.NewWithLLM(client, opts...), nil
}
