package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "JavaScript"},
		{"   ", "JavaScript"},
		{"javascript", "JavaScript"},
		{"js", "JavaScript"},
		{"JS", "JavaScript"},
		{"ts", "TypeScript"},
		{"python", "Python"},
		{"cpp", "C++"},
		{"csharp", "C#"},
		{"golang", "Go"},
		{" kotlin ", "Kotlin"},
		{"Elixir", "Elixir"},
		{"  Haskell ", "Haskell"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestFromPath(t *testing.T) {
	assert.Equal(t, "Go", FromPath("cmd/main.go"))
	assert.Equal(t, "TypeScript", FromPath("src/App.TSX"))
	assert.Equal(t, "C++", FromPath("engine.cc"))
	assert.Equal(t, "", FromPath("README.md"))
	assert.Equal(t, "", FromPath("Makefile"))
}

func TestSupportedIsACopy(t *testing.T) {
	labels := Supported()
	labels[0] = "changed"

	assert.Equal(t, "JavaScript", Supported()[0])
	for _, label := range Supported() {
		assert.Equal(t, label, Normalize(label), "every supported label must normalize to itself")
	}
}
