package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bastiangx/pinserve/pkg/detect"
	"github.com/bastiangx/pinserve/pkg/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, sg *suggest.Suggester, opts Options, input string) string {
	t.Helper()
	var out bytes.Buffer
	h := NewInputHandler(sg, &out, opts)
	require.NoError(t, h.Start(context.Background(), strings.NewReader(input)))
	return out.String()
}

func TestInputHandlerVerdicts(t *testing.T) {
	out := runCLI(t, nil, Options{ShowTrace: true}, "你好\n你好hello\nhello world\n\nnihao\n")

	assert.Contains(t, out, "chinese")
	assert.Contains(t, out, "mixed")
	assert.Contains(t, out, "invalid")
	assert.Contains(t, out, detect.InvalidInputMessage)
	assert.Contains(t, out, "pinyin")
	assert.Contains(t, out, "coverage 5/5 (1.00), 2 syllables: ni · hao")
}

func TestInputHandlerCandidates(t *testing.T) {
	var asked string
	sg := suggest.New(suggest.ConverterFunc(func(_ context.Context, text string, limit int) []string {
		asked = text
		all := []string{"你好", "拟好", "你"}
		return all[:min(limit, len(all))]
	}))
	out := runCLI(t, sg, Options{Limit: 2}, "Nǐ hǎo\n")

	assert.Equal(t, "nihao", asked)
	assert.Contains(t, out, "Found 2 candidates")
	assert.Contains(t, out, "你好")
	assert.Contains(t, out, "拟好")
	assert.NotContains(t, out, "coverage", "trace is off")
}

func TestInputHandlerNoCandidates(t *testing.T) {
	sg := suggest.New(suggest.ConverterFunc(func(context.Context, string, int) []string { return nil }))
	out := runCLI(t, sg, Options{}, "nihao\n")
	assert.Contains(t, out, "No candidates for 'nihao'")
}

func TestInputHandlerPartialSyllableHint(t *testing.T) {
	out := runCLI(t, nil, Options{}, "zh\n")
	assert.Contains(t, out, "'zh' starts a syllable")

	out = runCLI(t, nil, Options{}, "hello\n")
	assert.NotContains(t, out, "starts a syllable")
}

func TestInputHandlerStats(t *testing.T) {
	out := runCLI(t, nil, Options{}, ":stats\n")
	assert.Contains(t, out, "no cache in use")

	stats := func() map[string]int { return map[string]int{"cacheHits": 3, "cacheMisses": 1} }
	out = runCLI(t, nil, Options{Stats: stats}, "nihao\n:stats\n:nope\n")
	assert.Contains(t, out, "cacheHits")
	assert.Contains(t, out, "requests")
	assert.Contains(t, out, "unknown command :nope")
}

func TestPartialSyllable(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"zh", "zh"},
		{"ni zho", "zho"},
		{"ni", ""},
		{"qx", ""},
		{"你zh", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, partialSyllable(tt.in), tt.in)
	}
}
