package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVideoURL(t *testing.T) {
	valid := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":     "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ":                    "dQw4w9WgXcQ",
		"http://youtube.com/watch?v=dQw4w9WgXcQ&t=42":     "dQw4w9WgXcQ",
		"  https://www.youtube.com/watch?v=dQw4w9WgXcQ  ": "dQw4w9WgXcQ",
	}
	for in, want := range valid {
		got, err := ParseVideoURL(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	invalid := []string{
		"",
		"dQw4w9WgXcQ",
		"ftp://youtube.com/watch?v=dQw4w9WgXcQ",
		"https://example.com/some/page?x=1",
		"https://",
	}
	for _, in := range invalid {
		_, err := ParseVideoURL(in)
		assert.ErrorIs(t, err, ErrInvalidURL, in)
	}
}
