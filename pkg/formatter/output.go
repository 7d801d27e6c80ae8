package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/helmcode/devcompanion/pkg/analyzer"
	"github.com/helmcode/devcompanion/pkg/model"
)

// Output formats accepted by the CLI.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Report is one analyzed input together with where its analysis came from.
type Report struct {
	File     string                `json:"file,omitempty" yaml:"file,omitempty"`
	Language string                `json:"language" yaml:"language"`
	Source   string                `json:"source" yaml:"source"`
	Model    string                `json:"model,omitempty" yaml:"model,omitempty"`
	Analysis *model.AnalysisResult `json:"analysis" yaml:"analysis"`
	Snapshot *model.Snapshot       `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
}

// ValidFormat reports whether format is one of the supported outputs.
func ValidFormat(format string) bool {
	switch format {
	case FormatHuman, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// DisplayReports writes reports in the given format. Machine formats emit a
// single object for one report and a list otherwise.
func DisplayReports(w io.Writer, reports []Report, format string) error {
	switch format {
	case FormatJSON, FormatYAML:
		var v any = reports
		if len(reports) == 1 {
			v = reports[0]
		}
		return encode(w, v, format)
	case FormatHuman:
		fallthrough
	default:
		for i := range reports {
			displayReport(w, &reports[i])
		}
		footer(w)
	}
	return nil
}

// DisplaySnapshot writes one snapshot including its content.
func DisplaySnapshot(w io.Writer, snap *model.Snapshot, format string) error {
	switch format {
	case FormatJSON, FormatYAML:
		return encode(w, snap, format)
	default:
		displaySnapshot(w, snap)
	}
	return nil
}

// DisplaySnapshots writes a snapshot listing without file contents in
// human mode.
func DisplaySnapshots(w io.Writer, snaps []*model.Snapshot, format string) error {
	switch format {
	case FormatJSON, FormatYAML:
		return encode(w, snaps, format)
	default:
		displaySnapshotTable(w, snaps)
	}
	return nil
}

func encode(w io.Writer, v any, format string) error {
	if format == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func displayReport(w io.Writer, r *Report) {
	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	magenta := color.New(color.FgMagenta, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(w)
	if r.File != "" {
		white.Fprintf(w, "📄 %s\n", r.File)
	}
	fmt.Fprintf(w, "🗂  Language: %s\n", r.Language)
	fmt.Fprintf(w, "%s\n\n", sourceLine(r))

	a := r.Analysis
	if a == nil {
		return
	}

	cyan.Fprintln(w, "📖 EXPLANATION:")
	fmt.Fprintf(w, "%s\n\n", wrapText(a.Explanation, 80, "   "))

	if len(a.Issues) > 0 {
		yellow.Fprintln(w, "⚠️  ISSUES:")
		for i, issue := range a.Issues {
			fmt.Fprintf(w, "   %d. %s\n", i+1, issue)
		}
		fmt.Fprintln(w)
	}

	if len(a.Suggestions) > 0 {
		green.Fprintln(w, "💡 SUGGESTIONS:")
		for i, suggestion := range a.Suggestions {
			fmt.Fprintf(w, "   %d. %s\n", i+1, suggestion)
		}
		fmt.Fprintln(w)
	}

	if len(a.ConceptTags) > 0 {
		magenta.Fprintln(w, "🏷  CONCEPTS:")
		fmt.Fprintf(w, "   %s\n\n", strings.Join(a.ConceptTags, " · "))
	}

	if len(a.TestCases) > 0 {
		white.Fprintln(w, "🧪 TEST CASES:")
		for i, tc := range a.TestCases {
			fmt.Fprintf(w, "   %d. %s\n", i+1, tc.Description)
			fmt.Fprintf(w, "      Input:    %s\n", compactJSON(tc.Input))
			fmt.Fprintf(w, "      Expected: %s\n", color.CyanString(compactJSON(tc.ExpectedOutput)))
		}
		fmt.Fprintln(w)
	}

	if r.Snapshot != nil {
		green.Fprintf(w, "💾 Saved snapshot %s (v%d)", r.Snapshot.ID, r.Snapshot.Version)
		if r.Snapshot.Unchanged {
			fmt.Fprint(w, color.HiBlackString(" content unchanged since previous version"))
		}
		fmt.Fprintln(w)
	}
}

func sourceLine(r *Report) string {
	switch r.Source {
	case analyzer.SourceLLM:
		return fmt.Sprintf("🤖 Source: model (%s)", r.Model)
	case analyzer.SourceHeuristic:
		return "🧮 Source: " + color.YellowString("heuristic engine (offline)")
	default:
		return "🗄  Source: stored with snapshot"
	}
}

func displaySnapshot(w io.Writer, snap *model.Snapshot) {
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w)
	cyan.Fprintf(w, "📸 %s/%s v%d\n", snap.Path, snap.Filename, snap.Version)
	fmt.Fprintf(w, "   ID:       %s\n", snap.ID)
	fmt.Fprintf(w, "   Language: %s\n", snap.Language)
	fmt.Fprintf(w, "   Message:  %s\n", snap.CommitMessage)
	fmt.Fprintf(w, "   Created:  %s\n", snap.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	if len(snap.Tags) > 0 {
		fmt.Fprintf(w, "   Tags:     %s\n", strings.Join(snap.Tags, ", "))
	}
	fmt.Fprintf(w, "   Hash:     %s\n", color.HiBlackString(snap.ContentHash))
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintln(w, snap.Content)
	fmt.Fprintln(w, strings.Repeat("─", 80))

	if snap.Analysis != nil && snap.Analysis.Explanation != "" {
		displayReport(w, &Report{Language: snap.Language, Analysis: snap.Analysis})
	}
}

func displaySnapshotTable(w io.Writer, snaps []*model.Snapshot) {
	if len(snaps) == 0 {
		fmt.Fprintln(w, color.HiBlackString("No snapshots found"))
		return
	}

	bold := color.New(color.Bold)
	bold.Fprintf(w, "%-36s  %-4s  %-40s  %-20s  %s\n", "ID", "VER", "FILE", "CREATED", "MESSAGE")
	for _, s := range snaps {
		fmt.Fprintf(w, "%-36s  %-4d  %-40s  %-20s  %s\n",
			s.ID, s.Version, truncate(s.Path+"/"+s.Filename, 40),
			s.CreatedAt.Local().Format("2006-01-02 15:04:05"), s.CommitMessage)
	}
}

func footer(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintf(w, "💡 %s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return "…" + string(r[len(r)-n+1:])
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		currentLine := indent
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				result.WriteString(currentLine + "\n")
				currentLine = indent + word
			} else if currentLine == indent {
				currentLine += word
			} else {
				currentLine += " " + word
			}
		}

		if currentLine != indent {
			result.WriteString(currentLine + "\n")
		}
	}

	return strings.TrimSuffix(result.String(), "\n")
}
