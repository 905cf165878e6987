// Package engine is the in-process inference engine behind tokprobe: a
// context-pooled linear language model that turns a token batch into the
// next-token logits of its last position.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/samcharles93/tokprobe/internal/tensor"
	"github.com/samcharles93/tokprobe/internal/tokenizer"
)

var (
	ErrEmptyBatch      = errors.New("engine: empty token batch")
	ErrContextOverflow = errors.New("engine: batch exceeds context window")
	ErrTokenOutOfRange = errors.New("engine: token id out of range")
	ErrClosed          = errors.New("engine: model is closed")
)

// DefaultDecay is used when config.json carries no decay.
const DefaultDecay = 0.9

// ctxCheckEvery is how many pooled tokens pass between context checks.
const ctxCheckEvery = 256

// Config is the model's config.json.
type Config struct {
	VocabSize     int     `json:"vocab_size"`
	HiddenSize    int     `json:"hidden_size"`
	ContextLength int     `json:"context_length"`
	Decay         float64 `json:"decay"`
}

func (c Config) validate() error {
	switch {
	case c.VocabSize <= 0:
		return fmt.Errorf("vocab_size must be positive, got %d", c.VocabSize)
	case c.HiddenSize <= 0:
		return fmt.Errorf("hidden_size must be positive, got %d", c.HiddenSize)
	case c.ContextLength <= 0:
		return fmt.Errorf("context_length must be positive, got %d", c.ContextLength)
	case c.Decay < 0 || c.Decay > 1:
		return fmt.Errorf("decay must be in [0, 1], got %g", c.Decay)
	}
	return nil
}

// Model holds the weights and tokenizer of a loaded model.
//
// The hidden state for a batch t_0..t_{n-1} is the decay-weighted mean of the
// token embeddings, with weight decay^(n-1-i) on t_i, and the logits are
// lm_head * h + bias. Decode is safe for concurrent use; Close waits for
// in-flight calls.
type Model struct {
	cfg Config
	tok tokenizer.Tokenizer

	mu     sync.RWMutex
	embed  tensor.Mat // [V x H]
	head   tensor.Mat // [V x H]
	bias   []float32  // [V] or nil
	closed bool
}

func newModel(cfg Config, tok tokenizer.Tokenizer, embed, head tensor.Mat, bias []float32) (*Model, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if tok.VocabSize() > cfg.VocabSize {
		return nil, fmt.Errorf("tokenizer vocabulary (%d) larger than model vocabulary (%d)", tok.VocabSize(), cfg.VocabSize)
	}
	for name, m := range map[string]tensor.Mat{"embed_tokens.weight": embed, "lm_head.weight": head} {
		if m.R != cfg.VocabSize || m.C != cfg.HiddenSize {
			return nil, fmt.Errorf("%s: shape [%d %d], want [%d %d]", name, m.R, m.C, cfg.VocabSize, cfg.HiddenSize)
		}
	}
	if bias != nil && len(bias) != cfg.VocabSize {
		return nil, fmt.Errorf("lm_head.bias: length %d, want %d", len(bias), cfg.VocabSize)
	}
	return &Model{cfg: cfg, tok: tok, embed: embed, head: head, bias: bias}, nil
}

func (m *Model) Config() Config { return m.cfg }

func (m *Model) ContextSize() int { return m.cfg.ContextLength }

func (m *Model) VocabSize() int { return m.cfg.VocabSize }

func (m *Model) Tokenizer() tokenizer.Tokenizer { return m.tok }

// Tokenize encodes text. addSpecial adds the tokenizer's BOS/EOS markers.
// Special-token literals inside text are encoded as plain text, so user
// input can never inject a control token.
func (m *Model) Tokenize(text string, addSpecial bool) ([]int, error) {
	return m.tok.Encode(text, addSpecial, false)
}

// TokenPiece returns the surface text of a token, or "" for an unknown id.
func (m *Model) TokenPiece(id int) string {
	return m.tok.Piece(id)
}

// Decode runs one forward pass over tokens and returns the logits for the
// position after the last token. The slice has VocabSize entries and is owned
// by the caller.
func (m *Model) Decode(ctx context.Context, tokens []int) ([]float32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	if len(tokens) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(tokens) > m.cfg.ContextLength {
		return nil, fmt.Errorf("%w: %d tokens, window %d", ErrContextOverflow, len(tokens), m.cfg.ContextLength)
	}
	for i, t := range tokens {
		if t < 0 || t >= m.cfg.VocabSize {
			return nil, fmt.Errorf("%w: %d at position %d", ErrTokenOutOfRange, t, i)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := make([]float32, m.cfg.HiddenSize)
	var norm float64
	w := 1.0
	for i := len(tokens) - 1; i >= 0; i-- {
		if (len(tokens)-1-i)%ctxCheckEvery == ctxCheckEvery-1 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if w == 0 {
			break
		}
		row := m.embed.Row(tokens[i])
		wf := float32(w)
		for j, v := range row {
			h[j] += wf * v
		}
		norm += w
		w *= m.cfg.Decay
	}
	inv := float32(1 / norm)
	for j := range h {
		h[j] *= inv
	}

	logits := make([]float32, m.cfg.VocabSize)
	tensor.MatVec(logits, &m.head, h)
	for i, b := range m.bias {
		logits[i] += b
	}
	return logits, nil
}

// Close releases the weights. It is safe to call more than once.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.embed = tensor.Mat{}
	m.head = tensor.Mat{}
	m.bias = nil
	return nil
}
