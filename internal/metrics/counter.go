package metrics

import (
	"bytes"
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Counter provides methods for counting bytes, tokens, and lines in text
type Counter interface {
	// Count returns the number of bytes, tokens, and lines in the given text
	Count(text string) (bytes, tokens, lines int)
}

// Estimator names accepted by NewCounter.
const (
	EstimatorSimple   = "simple"
	EstimatorTiktoken = "tiktoken"
)

// DefaultTiktokenModel is the encoding model used by the tiktoken estimator.
const DefaultTiktokenModel = "gpt-3.5-turbo"

// NewCounter returns the Counter registered under name.
func NewCounter(name string) (Counter, error) {
	switch name {
	case "", EstimatorSimple:
		return SimpleCounter{}, nil
	case EstimatorTiktoken:
		return NewTiktokenCounter(DefaultTiktokenModel)
	default:
		return nil, fmt.Errorf("unknown token estimator: %s", name)
	}
}

// SimpleCounter estimates tokens as bytes/4
type SimpleCounter struct{}

func (SimpleCounter) Count(text string) (int, int, int) {
	return len(text), len(text) / 4, countLines(text)
}

// TiktokenCounter counts tokens with a model's BPE encoding.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCounter loads the encoding for model once up front.
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("unsupported model for tiktoken: %s: %w", model, err)
	}
	return &TiktokenCounter{encoding: enc}, nil
}

func (c *TiktokenCounter) Count(text string) (int, int, int) {
	tokens := c.encoding.Encode(text, nil, nil)
	return len(text), len(tokens), countLines(text)
}

// countLines counts newline terminated lines plus a trailing partial line.
func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := bytes.Count([]byte(text), []byte{'\n'})
	if text[len(text)-1] != '\n' {
		n++
	}
	return n
}
