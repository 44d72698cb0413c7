package concepts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutputStripsCodeFence(t *testing.T) {
	fenced, err := ParseOutput("```json\n{\"A\":\"x\"}\n```")
	require.NoError(t, err)
	plain, err := ParseOutput(`{"A":"x"}`)
	require.NoError(t, err)

	assert.Equal(t, plain, fenced)
	assert.Equal(t, []Record{{Term: "A", Definition: "x"}}, fenced)
}

func TestParseOutputDropsLeadingText(t *testing.T) {
	got, err := ParseOutput("Here are the concepts:\n{\"Graph\": \"vertices and edges\",\n \"Tree\": \"acyclic graph\"}")
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{Term: "Graph", Definition: "vertices and edges"},
		{Term: "Tree", Definition: "acyclic graph"},
	}, got)
}

func TestParseOutputKeepsModelOrder(t *testing.T) {
	got, err := ParseOutput(`{"zeta": "1", "alpha": "2", "mid": "3"}`)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "zeta", got[0].Term)
	assert.Equal(t, "alpha", got[1].Term)
	assert.Equal(t, "mid", got[2].Term)
}

func TestParseOutputRepeatedKeyKeepsFirstPositionLastValue(t *testing.T) {
	got, err := ParseOutput(`{"A": "first", "B": "b", "A": "second"}`)
	require.NoError(t, err)
	assert.Equal(t, []Record{{Term: "A", Definition: "second"}, {Term: "B", Definition: "b"}}, got)
}

func TestParseOutputNonStringDefinition(t *testing.T) {
	got, err := ParseOutput(`{"Pi": 3.14, "Steps": ["a", "b"]}`)
	require.NoError(t, err)
	assert.Equal(t, []Record{{Term: "Pi", Definition: "3.14"}, {Term: "Steps", Definition: `["a","b"]`}}, got)
}

func TestParseOutputEmptyObject(t *testing.T) {
	got, err := ParseOutput("{}")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseOutputFailures(t *testing.T) {
	for _, raw := range []string{
		"",
		"no json here",
		`["A", "x"]`,
		`{"A": "x"`,
		`{"A": "x"} trailing`,
		`{"A": "x"}{"B": "y"}`,
	} {
		_, err := ParseOutput(raw)
		assert.ErrorIs(t, err, ErrMalformedOutput, raw)
	}
}

func TestCleanOutput(t *testing.T) {
	assert.Equal(t, `{"A":"x"}`, CleanOutput("```json\n{\"A\":\"x\"}\n```"))
	assert.Equal(t, `{"A": "line one two"}`, CleanOutput("noise {\"A\": \"line one\n two\"}"))
	assert.Equal(t, "no brace", CleanOutput("no brace"))
}
