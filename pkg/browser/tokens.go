package browser

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// truncateTokens trims text to at most maxTokens tokens using the
// cl100k_base encoding. If the encoding cannot be loaded, it falls back
// to a rune-count approximation (~4 runes per token) so extraction
// still works offline.
func truncateTokens(text string, maxTokens int) string {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err == nil {
			encoding = enc
		}
	})

	if encoding == nil {
		return truncateRunes(text, maxTokens*4)
	}

	tokens := encoding.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return encoding.Decode(tokens[:maxTokens])
}

// truncateRunes trims text to at most maxRunes runes.
func truncateRunes(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes])
}
