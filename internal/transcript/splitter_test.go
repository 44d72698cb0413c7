package transcript

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitterPacksWordsUpToChunkSize(t *testing.T) {
	s := NewSplitter(10, 0)
	assert.Equal(t, []string{"hello", "world foo", "bar"}, s.Split("hello world foo bar"))
}

func TestSplitterFallsBackToCharacters(t *testing.T) {
	s := NewSplitter(5, 0)
	assert.Equal(t, []string{"abcde", "fghij", "kl"}, s.Split("abcdefghijkl"))
}

func TestSplitterPrefersParagraphBreaks(t *testing.T) {
	s := NewSplitter(12, 0)
	got := s.Split("first part\n\nsecond part")
	assert.Equal(t, []string{"first part", "second part"}, got)
}

func TestSplitterShortTextIsOneChunk(t *testing.T) {
	s := NewSplitter(1000, 0)
	assert.Equal(t, []string{"just a few words"}, s.Split("  just a few words  "))
}

func TestSplitterEmptyText(t *testing.T) {
	s := NewSplitter(1000, 0)
	assert.Empty(t, s.Split(""))
	assert.Empty(t, s.Split("   "))
}

func TestSplitterRespectsLimitAndKeepsAllWords(t *testing.T) {
	words := make([]string, 0, 600)
	for i := 0; i < 600; i++ {
		words = append(words, "word"+strings.Repeat("x", i%7))
	}
	text := strings.Join(words, " ")

	chunks := NewSplitter(100, 0).Split(text)
	var rebuilt []string
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 100)
		rebuilt = append(rebuilt, strings.Fields(c)...)
	}
	assert.Equal(t, words, rebuilt)
}

func TestSplitterCountsCodePoints(t *testing.T) {
	// Each "é" is two bytes but one character.
	text := strings.Repeat("é", 8)
	assert.Equal(t, []string{"éééé", "éééé"}, NewSplitter(4, 0).Split(text))
}
