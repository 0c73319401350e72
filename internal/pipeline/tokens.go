package pipeline

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter counts tokens with a tiktoken encoding. The encoding is loaded
// on first use; if it cannot be loaded the counter falls back to
// EstimateTokens.
type TokenCounter struct {
	encoding string
	once     sync.Once
	encoder  *tiktoken.Tiktoken
}

func NewTokenCounter(encoding string) *TokenCounter {
	return &TokenCounter{encoding: encoding}
}

func (c *TokenCounter) load() {
	enc, err := tiktoken.GetEncoding(c.encoding)
	if err != nil {
		slog.Warn("tiktoken encoding unavailable, using word-based estimate", "encoding", c.encoding, "error", err)
		return
	}
	c.encoder = enc
}

// Count counts tokens using tiktoken, fallback to word-based estimate.
func (c *TokenCounter) Count(text string) int {
	c.once.Do(c.load)
	if c.encoder != nil {
		return len(c.encoder.Encode(text, nil, nil))
	}
	return EstimateTokens(text)
}

// EstimateTokens approximates a token count from the number of words.
func EstimateTokens(text string) int {
	return int(float64(len(strings.Fields(text))) * 1.33)
}
