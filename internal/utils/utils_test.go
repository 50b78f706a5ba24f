package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateFilter(t *testing.T) {
	f := NewCandidateFilter("nihao")
	var kept []string
	for _, c := range []string{"你好", "NiHao", "你好", "拟好", "nihao"} {
		if f.ShouldInclude(c) {
			kept = append(kept, c)
		}
	}
	assert.Equal(t, []string{"你好", "拟好"}, kept)
}

func TestIsValidCandidate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"你好", true},
		{"ni hao", true},
		{"你2", true},
		{"", false},
		{"123", false},
		{"你好!", false},
		{"a\tb", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidCandidate(tt.in), tt.in)
	}
}

func TestCreateRankList(t *testing.T) {
	assert.Equal(t, []uint16{1, 2, 3}, CreateRankList(3))
	assert.Empty(t, CreateRankList(0))
	assert.Empty(t, CreateRankList(-1))
}

func TestTOMLHelpers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.toml")

	type doc struct {
		Name  string `toml:"name"`
		Count int    `toml:"count"`
	}
	require.NoError(t, SaveTOMLFile(doc{Name: "pin", Count: 3}, path))

	var back doc
	require.NoError(t, LoadTOMLFile(path, &back))
	assert.Equal(t, doc{Name: "pin", Count: 3}, back)

	require.NoError(t, os.WriteFile(path, []byte("[sec]\nn = 4\nb = true\ns = \"v\"\n"), 0644))
	raw, err := ParseTOMLWithRecovery(path)
	require.NoError(t, err)
	sec, ok := ExtractSection(raw, "sec")
	require.True(t, ok)

	n, ok := ExtractInt64(sec, "n")
	assert.True(t, ok)
	assert.Equal(t, 4, n)
	b, ok := ExtractBool(sec, "b")
	assert.True(t, ok)
	assert.True(t, b)
	s, ok := ExtractString(sec, "s")
	assert.True(t, ok)
	assert.Equal(t, "v", s)

	_, ok = ExtractString(sec, "n")
	assert.False(t, ok)
	_, ok = ExtractSection(raw, "missing")
	assert.False(t, ok)
}

func TestDirHelpers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	assert.False(t, FileExists(dir))
	res := CheckDirStatus(dir)
	assert.True(t, res.Exists)
	assert.True(t, res.Writable)
	assert.NoError(t, res.Error)
	assert.True(t, FileExists(dir))
	assert.Equal(t, "unknown", GetAbsolutePath(""))
}
