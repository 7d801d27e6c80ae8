package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/helmcode/devcompanion/pkg/config"
	"github.com/helmcode/devcompanion/pkg/formatter"
	"github.com/helmcode/devcompanion/pkg/model"
	"github.com/helmcode/devcompanion/pkg/snapshot"
)

var (
	snapshotsConfigPath string
	snapshotsOutput     string

	snapshotsFile   string
	snapshotsLatest bool
	snapshotsLimit  int

	snapshotPath     string
	snapshotLanguage string
	snapshotMessage  string
	snapshotTags     []string
	snapshotAnalyze  bool
	snapshotOffline  bool
)

func NewSnapshotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Save and browse versioned code snapshots",
		Long: `Snapshots store a file's content as a new version each time it is saved,
optionally together with its analysis.

Examples:
  # List the 50 most recent snapshots
  devcompanion snapshots list

  # Show every version of a file (matches path or filename)
  devcompanion snapshots list --file sum.js

  # Save a new version with a review attached
  devcompanion snapshots save src/sum.js --analyze -m "add validation"`,
	}

	cmd.PersistentFlags().StringVar(&snapshotsConfigPath, "config", config.DefaultPath, "Path to config file")
	cmd.PersistentFlags().StringVarP(&snapshotsOutput, "output", "o", formatter.FormatHuman, "Output format (human, json, yaml)")

	cmd.AddCommand(newSnapshotsListCmd(), newSnapshotsGetCmd(), newSnapshotsSaveCmd())
	return cmd
}

func newSnapshotsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots",
		Args:  cobra.NoArgs,
		RunE:  runSnapshotsList,
	}
	cmd.Flags().StringVar(&snapshotsFile, "file", "", "Only versions whose path or filename equals this value")
	cmd.Flags().BoolVar(&snapshotsLatest, "latest", false, "Show only the most recently created snapshot")
	cmd.Flags().IntVar(&snapshotsLimit, "limit", snapshot.MaxRecent, "Maximum number of snapshots to list")
	return cmd
}

func newSnapshotsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a snapshot with its content",
		Args:  cobra.ExactArgs(1),
		RunE:  runSnapshotsGet,
	}
}

func newSnapshotsSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save FILE",
		Short: "Store the current content of FILE as its next version",
		Args:  cobra.ExactArgs(1),
		RunE:  runSnapshotsSave,
	}
	cmd.Flags().StringVar(&snapshotPath, "path", "", "Logical path of the file (defaults to its directory)")
	cmd.Flags().StringVarP(&snapshotLanguage, "language", "l", "", "Language label (defaults to detection from the file extension)")
	cmd.Flags().StringVarP(&snapshotMessage, "message", "m", "", "Commit message (defaults to Auto-save vN)")
	cmd.Flags().StringArrayVar(&snapshotTags, "tag", nil, "Tag to attach (repeatable)")
	cmd.Flags().BoolVar(&snapshotAnalyze, "analyze", false, "Attach an analysis of the content")
	cmd.Flags().BoolVar(&snapshotOffline, "offline", false, "Use the heuristic engine for --analyze")
	return cmd
}

// openStore loads the config and opens the snapshot database it names.
func openStore() (*config.Config, *snapshot.SQLiteStore, error) {
	if !formatter.ValidFormat(snapshotsOutput) {
		return nil, nil, fmt.Errorf("unsupported output format %q (use human, json or yaml)", snapshotsOutput)
	}
	cfg, err := config.Load(snapshotsConfigPath)
	if err != nil {
		return nil, nil, err
	}
	store, err := snapshot.OpenSQLite(cfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	return cfg, store, nil
}

func runSnapshotsList(cmd *cobra.Command, args []string) error {
	_, store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	if snapshotsLatest {
		snap, err := store.Latest(ctx)
		if errors.Is(err, snapshot.ErrNotFound) {
			return fmt.Errorf("no snapshots stored yet")
		}
		if err != nil {
			return err
		}
		return formatter.DisplaySnapshot(cmd.OutOrStdout(), snap, snapshotsOutput)
	}

	var snaps []*model.Snapshot
	if snapshotsFile != "" {
		snaps, err = store.ListByFile(ctx, snapshotsFile)
	} else {
		snaps, err = store.Recent(ctx, snapshotsLimit)
	}
	if err != nil {
		return err
	}
	return formatter.DisplaySnapshots(cmd.OutOrStdout(), snaps, snapshotsOutput)
}

func runSnapshotsGet(cmd *cobra.Command, args []string) error {
	_, store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.Get(cmd.Context(), args[0])
	if errors.Is(err, snapshot.ErrNotFound) {
		return fmt.Errorf("snapshot %s not found", args[0])
	}
	if err != nil {
		return err
	}
	return formatter.DisplaySnapshot(cmd.OutOrStdout(), snap, snapshotsOutput)
}

func runSnapshotsSave(cmd *cobra.Command, args []string) error {
	file := filepath.Clean(args[0])
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	cfg, store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	content := string(data)
	payload := &snapshot.Payload{
		Filename:      filepath.Base(file),
		Path:          snapshotPath,
		Content:       &content,
		Language:      detectLanguage(file, snapshotLanguage),
		CommitMessage: snapshotMessage,
		Tags:          snapshotTags,
	}
	if payload.Path == "" {
		payload.Path = filepath.ToSlash(filepath.Dir(file))
	}

	ctx := cmd.Context()
	if snapshotAnalyze {
		logger, err := loadLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		a, err := newAnalyzer(ctx, cfg, "", "", snapshotOffline, logger)
		if err != nil {
			return err
		}
		s := newSpinner(" Analyzing " + file + "...")
		s.Start()
		result, err := a.Analyze(ctx, content, payload.Language)
		s.Stop()
		if err != nil {
			printWarning(fmt.Sprintf("Saving without analysis: %v", err))
		} else {
			payload.Analysis = result.Analysis
			printSuccess(fmt.Sprintf("Analysis complete (%s)", result.Source))
		}
	}

	snap, err := store.Save(ctx, payload)
	if err != nil {
		return err
	}

	printSuccess(fmt.Sprintf("Saved %s/%s as v%d", snap.Path, snap.Filename, snap.Version))
	if snap.Unchanged {
		printWarning("Content is identical to the previous version")
	}
	return formatter.DisplaySnapshot(cmd.OutOrStdout(), snap, snapshotsOutput)
}
