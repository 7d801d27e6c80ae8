package formatter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/helmcode/devcompanion/pkg/analyzer"
	"github.com/helmcode/devcompanion/pkg/heuristic"
	"github.com/helmcode/devcompanion/pkg/model"
)

func sampleReport() Report {
	return Report{
		File:     "src/sum.js",
		Language: "JavaScript",
		Source:   analyzer.SourceHeuristic,
		Analysis: heuristic.Analyze("const a = 10; const b = 5; console.log(a + b);", "JavaScript"),
	}
}

func TestDisplayReports_Human(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DisplayReports(&buf, []Report{sampleReport()}, FormatHuman))

	out := buf.String()
	for _, want := range []string{"src/sum.js", "EXPLANATION", "ISSUES", "SUGGESTIONS", "CONCEPTS", "TEST CASES", "heuristic engine", `{"num1":10,"num2":5}`} {
		assert.Contains(t, out, want)
	}
}

func TestDisplayReports_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DisplayReports(&buf, []Report{sampleReport()}, FormatJSON))

	var single map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &single))
	assert.Equal(t, "src/sum.js", single["file"])
	assert.Equal(t, "heuristic", single["source"])
	assert.NotContains(t, single, "model")

	buf.Reset()
	require.NoError(t, DisplayReports(&buf, []Report{sampleReport(), sampleReport()}, FormatJSON))
	var many []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &many))
	assert.Len(t, many, 2)
}

func TestDisplayReports_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DisplayReports(&buf, []Report{sampleReport()}, FormatYAML))

	var out map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
	analysis := out["analysis"].(map[string]any)
	assert.Contains(t, analysis, "conceptTags")
	assert.Contains(t, analysis, "testCases")
}

func TestDisplaySnapshots(t *testing.T) {
	snaps := []*model.Snapshot{{
		ID:            "0b7e",
		Filename:      "sum.js",
		Path:          "src",
		Version:       3,
		CommitMessage: "Auto-save v3",
		CreatedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	require.NoError(t, DisplaySnapshots(&buf, snaps, FormatHuman))
	assert.Contains(t, buf.String(), "src/sum.js")
	assert.Contains(t, buf.String(), "Auto-save v3")

	buf.Reset()
	require.NoError(t, DisplaySnapshots(&buf, nil, FormatHuman))
	assert.Contains(t, buf.String(), "No snapshots found")

	buf.Reset()
	require.NoError(t, DisplaySnapshots(&buf, snaps, FormatJSON))
	assert.True(t, strings.HasPrefix(buf.String(), "["))
}

func TestDisplaySnapshot(t *testing.T) {
	snap := &model.Snapshot{
		ID:       "abc",
		Filename: "a.py",
		Path:     "pkg",
		Content:  "x = 1",
		Language: "Python",
		Version:  1,
		Tags:     []string{"demo"},
		Analysis: &model.AnalysisResult{Explanation: "Assigns x."},
	}

	var buf bytes.Buffer
	require.NoError(t, DisplaySnapshot(&buf, snap, FormatHuman))
	out := buf.String()
	assert.Contains(t, out, "pkg/a.py v1")
	assert.Contains(t, out, "x = 1")
	assert.Contains(t, out, "Assigns x.")
	assert.Contains(t, out, "stored with snapshot")
}

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat("human"))
	assert.True(t, ValidFormat("yaml"))
	assert.False(t, ValidFormat("xml"))
}

func TestWrapText(t *testing.T) {
	out := wrapText(strings.Repeat("word ", 30), 20, "  ")
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), 20)
		assert.True(t, strings.HasPrefix(line, "  "))
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "…6789", truncate("0123456789", 5))
}
