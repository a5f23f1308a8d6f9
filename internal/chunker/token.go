package chunker

import (
	"strings"
	"sync"
)

// TokenCounter reports the token count of a text. It must be pure:
// equal inputs give equal outputs.
type TokenCounter func(text string) int

// EstimateTokens gives a rough token count from the word count.
// Exact tokenization is not required for chunk sizing; callers that
// need model-exact budgets can inject their own TokenCounter.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	// Roughly 1.33 tokens per word for English text.
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// CachedCounter memoizes a TokenCounter by exact text. Safe for
// concurrent use. Purely an optimization: splitting recounts heading
// prefixes and overlap fragments, which repeat a lot.
func CachedCounter(count TokenCounter) TokenCounter {
	var cache sync.Map
	return func(text string) int {
		if v, ok := cache.Load(text); ok {
			return v.(int)
		}
		n := count(text)
		cache.Store(text, n)
		return n
	}
}
