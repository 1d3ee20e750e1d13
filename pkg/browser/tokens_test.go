package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("short", 100))
	assert.Equal(t, "abc", truncateRunes("abcdef", 3))
	assert.Equal(t, "", truncateRunes("", 10))

	// Truncation counts runes, not bytes.
	assert.Equal(t, "héllo", truncateRunes("héllo wörld", 5))
}

func TestTruncateTokens_ShortTextUnchanged(t *testing.T) {
	text := "A short page."
	assert.Equal(t, text, truncateTokens(text, DefaultContentTokens))
}

func TestTruncateTokens_LongTextShrinks(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 2000)
	truncated := truncateTokens(text, 50)
	assert.Less(t, len(truncated), len(text))
}
