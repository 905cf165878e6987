// Package probe reports the probability a model assigns to each token of a
// set of target strings at the position right after a prompt.
package probe

//go:generate mockgen -destination=mocks/mock_engine.go -package=mocks . Engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samcharles93/tokprobe/internal/logger"
	"github.com/samcharles93/tokprobe/internal/logits"
)

// MaxTopK bounds Request.TopK.
const MaxTopK = 100

// Tokenizer turns text into token ids.
type Tokenizer interface {
	Tokenize(text string, addSpecial bool) ([]int, error)
}

// Engine is the inference backend a Service drives. *engine.Model
// implements it.
type Engine interface {
	Tokenizer
	TokenPiece(id int) string
	Decode(ctx context.Context, tokens []int) ([]float32, error)
	ContextSize() int
	VocabSize() int
}

type Request struct {
	Prompt  string
	Targets string // comma-separated target strings
	TopK    int    // when > 0, also report the TopK most likely tokens
}

type TokenProb struct {
	ID          int     `json:"id"`
	Token       string  `json:"token"`
	Probability float64 `json:"probability"`
	LogProb     float64 `json:"logprob"`
}

type Result struct {
	Tokens       []TokenProb `json:"tokens"`
	Top          []TokenProb `json:"top,omitempty"`
	PromptTokens int         `json:"prompt_tokens"`
}

// Service runs probes against one engine. Calls into the engine are
// serialised, so a Service may be shared by concurrent handlers.
type Service struct {
	engine Engine
	log    logger.Logger

	mu sync.Mutex
}

func NewService(engine Engine, log logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{engine: engine, log: log}
}

// Probe tokenizes the prompt with special markers, decodes it once and looks
// up the softmax probability of every token the targets tokenize to. Result
// tokens are in target order and keep duplicates.
func (s *Service) Probe(ctx context.Context, req Request) (*Result, error) {
	switch {
	case req.Prompt == "":
		return nil, newInvalidRequest("prompt is required")
	case req.Targets == "":
		return nil, newInvalidRequest("target_chars is required")
	case req.TopK < 0 || req.TopK > MaxTopK:
		return nil, newInvalidRequest(fmt.Sprintf("top_k must be between 0 and %d", MaxTopK))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	tokens, err := s.engine.Tokenize(req.Prompt, true)
	if err != nil {
		return nil, newInvalidRequest(fmt.Sprintf("tokenize prompt: %v", err))
	}
	if n, limit := len(tokens), s.engine.ContextSize(); n > limit {
		return nil, fmt.Errorf("%w: %d tokens, context window is %d", ErrPromptTooLong, n, limit)
	}

	raw, err := s.engine.Decode(ctx, tokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	probs := logits.Softmax(raw)
	logProbs := logits.LogSoftmax(raw)

	ids, err := ParseTargets(s.engine, req.Targets)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Tokens:       make([]TokenProb, 0, len(ids)),
		PromptTokens: len(tokens),
	}
	for _, id := range ids {
		if id < 0 || id >= len(probs) {
			return nil, fmt.Errorf("%w: target token %d outside a vocabulary of %d", ErrDecode, id, len(probs))
		}
		res.Tokens = append(res.Tokens, s.tokenProb(id, probs[id], logProbs[id]))
	}
	if req.TopK > 0 {
		for _, c := range logits.TopK(probs, req.TopK) {
			res.Top = append(res.Top, s.tokenProb(c.ID, c.Probability, logProbs[c.ID]))
		}
	}

	s.log.Debug("probe complete",
		"prompt_tokens", len(tokens),
		"target_tokens", len(ids),
		"elapsed", time.Since(start),
	)
	return res, nil
}

func (s *Service) tokenProb(id int, p, logp float64) TokenProb {
	return TokenProb{ID: id, Token: s.engine.TokenPiece(id), Probability: p, LogProb: logp}
}
