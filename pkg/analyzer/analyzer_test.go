package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/helmcode/devcompanion/pkg/heuristic"
)

type fakeLLM struct {
	reply   string
	err     error
	block   bool
	prompts []string
}

func (f *fakeLLM) Chat(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func (f *fakeLLM) GetModel() string { return "fake-1" }

const validReply = `{"explanation":"Adds numbers.","issues":[],"suggestions":["Add tests"],"conceptTags":["Python","Arithmetic"],"testCases":[]}`

func TestAnalyze_EmptyCode(t *testing.T) {
	a := New()
	for _, code := range []string{"", "   ", "\n\t"} {
		_, err := a.Analyze(context.Background(), code, "JavaScript")
		assert.ErrorIs(t, err, ErrEmptyCode)
	}
}

func TestAnalyze_Offline(t *testing.T) {
	a := New()
	assert.False(t, a.Online())

	res, err := a.Analyze(context.Background(), "let x = 1;", "")
	require.NoError(t, err)

	assert.Equal(t, SourceHeuristic, res.Source)
	assert.Empty(t, res.Model)
	assert.Equal(t, heuristic.Analyze("let x = 1;", "JavaScript"), res.Analysis)
}

func TestAnalyze_UsesModel(t *testing.T) {
	fake := &fakeLLM{reply: "```json\n" + validReply + "\n```"}
	a := NewWithLLM(fake)
	assert.True(t, a.Online())

	res, err := a.Analyze(context.Background(), "print(1 + 2)", "python")
	require.NoError(t, err)

	assert.Equal(t, SourceLLM, res.Source)
	assert.Equal(t, "fake-1", res.Model)
	assert.Equal(t, "Adds numbers.", res.Analysis.Explanation)
	assert.Equal(t, []string{"Add tests"}, res.Analysis.Suggestions)

	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "Language: Python")
	assert.Contains(t, fake.prompts[0], "print(1 + 2)")
}

func TestAnalyze_FallsBack(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeLLM
	}{
		{"chat error", &fakeLLM{err: errors.New("503 overloaded")}},
		{"unparseable reply", &fakeLLM{reply: "Sure! Here is my review."}},
		{"empty reply", &fakeLLM{reply: ""}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			a := NewWithLLM(tc.llm, WithLogger(zap.New(core)))

			res, err := a.Analyze(context.Background(), "const a = 1 + 2;", "JavaScript")
			require.NoError(t, err)

			assert.Equal(t, SourceHeuristic, res.Source)
			assert.Equal(t, heuristic.Analyze("const a = 1 + 2;", "JavaScript"), res.Analysis)
			require.Equal(t, 1, logs.Len())
			assert.Equal(t, "fake-1", logs.All()[0].ContextMap()["model"])
		})
	}
}

func TestAnalyze_TimeoutFallsBack(t *testing.T) {
	a := NewWithLLM(&fakeLLM{block: true}, WithTimeout(20*time.Millisecond))

	start := time.Now()
	res, err := a.Analyze(context.Background(), "x = 1", "Python")
	require.NoError(t, err)

	assert.Equal(t, SourceHeuristic, res.Source)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestOptionsIgnoreZeroValues(t *testing.T) {
	a := NewWithLLM(nil, WithTimeout(0), WithLogger(nil))
	assert.Equal(t, DefaultTimeout, a.timeout)
	assert.NotNil(t, a.logger)
}
