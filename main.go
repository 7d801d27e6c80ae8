package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/helmcode/devcompanion/cmd"
)

var (
	version = "v0.1.0" // Overwritten at build time
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "devcompanion",
		Short: "AI-assisted code review with an offline fallback",
		Long: `devcompanion reviews source code with a hosted model (Gemini, Claude or
OpenAI) and falls back to a built-in heuristic engine when no model is
available. It also keeps versioned snapshots of files and serves both
features over an HTTP API.`,
		SilenceUsage: true,
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(
		cmd.NewAnalyzeCmd(),
		cmd.NewServeCmd(),
		cmd.NewSnapshotsCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("devcompanion version %s\n", version)
		},
	}
}
