package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/samcharles93/tokprobe/internal/tensor"
)

// stubTokenizer maps each byte of the text to its value modulo vocab.
type stubTokenizer struct{ vocab int }

func (s stubTokenizer) Encode(text string, _, _ bool) ([]int, error) {
	ids := make([]int, 0, len(text))
	for _, b := range []byte(text) {
		ids = append(ids, int(b)%s.vocab)
	}
	return ids, nil
}
func (s stubTokenizer) Decode(ids []int) (string, error) { return "", nil }
func (s stubTokenizer) Piece(id int) string              { return string(rune('a' + id)) }
func (s stubTokenizer) VocabSize() int                   { return s.vocab }

func mustMat(t *testing.T, r, c int, data ...float32) tensor.Mat {
	t.Helper()
	m, err := tensor.NewMatFromData(r, c, data)
	if err != nil {
		t.Fatalf("mat: %v", err)
	}
	return m
}

// identityModel has V=3, H=3 with identity embeddings and head, so the
// logits equal the pooled hidden state plus bias.
func identityModel(t *testing.T, decay float64, bias []float32) *Model {
	t.Helper()
	eye := func() tensor.Mat { return mustMat(t, 3, 3, 1, 0, 0, 0, 1, 0, 0, 0, 1) }
	m, err := newModel(Config{VocabSize: 3, HiddenSize: 3, ContextLength: 8, Decay: decay},
		stubTokenizer{vocab: 3}, eye(), eye(), bias)
	if err != nil {
		t.Fatalf("newModel: %v", err)
	}
	return m
}

func assertClose(t *testing.T, got, want []float32) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length: got %d want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-5 {
			t.Fatalf("index %d: got %v want %v (all %v)", i, got[i], want[i], got)
		}
	}
}

func TestDecodePoolsWithDecay(t *testing.T) {
	t.Parallel()

	m := identityModel(t, 0.5, nil)
	// weights: token 0 -> 0.25, token 1 -> 0.5, token 2 -> 1; norm 1.75.
	got, err := m.Decode(context.Background(), []int{0, 1, 2})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	assertClose(t, got, []float32{0.25 / 1.75, 0.5 / 1.75, 1 / 1.75})
}

func TestDecodeUniformDecayIsMean(t *testing.T) {
	t.Parallel()

	m := identityModel(t, 1, []float32{1, 0, -1})
	got, err := m.Decode(context.Background(), []int{0, 0, 1, 2})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	assertClose(t, got, []float32{0.5 + 1, 0.25, 0.25 - 1})
}

func TestDecodeZeroDecayUsesLastToken(t *testing.T) {
	t.Parallel()

	m := identityModel(t, 0, nil)
	got, err := m.Decode(context.Background(), []int{2, 2, 1})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	assertClose(t, got, []float32{0, 1, 0})
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	m := identityModel(t, 0.5, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		tokens []int
		want   error
	}{
		{"empty", nil, ErrEmptyBatch},
		{"overflow", make([]int, 9), ErrContextOverflow},
		{"negative id", []int{0, -1}, ErrTokenOutOfRange},
		{"id past vocab", []int{3}, ErrTokenOutOfRange},
	}
	for _, tc := range cases {
		if _, err := m.Decode(ctx, tc.tokens); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, err, tc.want)
		}
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := m.Decode(canceled, []int{0}); !errors.Is(err, context.Canceled) {
		t.Fatalf("canceled: got %v", err)
	}
}

func TestDecodeAtContextLimit(t *testing.T) {
	t.Parallel()

	m := identityModel(t, 0.5, nil)
	if _, err := m.Decode(context.Background(), make([]int, m.ContextSize())); err != nil {
		t.Fatalf("full window should decode: %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	m := identityModel(t, 0.5, nil)
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := m.Decode(context.Background(), []int{0}); !errors.Is(err, ErrClosed) {
		t.Fatalf("decode after close: got %v", err)
	}
}

func TestNewModelValidatesShapes(t *testing.T) {
	t.Parallel()

	eye := mustMat(t, 3, 3, 1, 0, 0, 0, 1, 0, 0, 0, 1)
	wide := mustMat(t, 3, 2, 1, 0, 0, 1, 0, 0)
	cfg := Config{VocabSize: 3, HiddenSize: 3, ContextLength: 4, Decay: 0.5}

	if _, err := newModel(cfg, stubTokenizer{vocab: 3}, eye, wide, nil); err == nil {
		t.Fatalf("expected lm_head shape error")
	}
	if _, err := newModel(cfg, stubTokenizer{vocab: 3}, eye, eye, []float32{1}); err == nil {
		t.Fatalf("expected bias length error")
	}
	if _, err := newModel(cfg, stubTokenizer{vocab: 4}, eye, eye, nil); err == nil {
		t.Fatalf("expected tokenizer larger than model error")
	}
	bad := cfg
	bad.Decay = 1.5
	if _, err := newModel(bad, stubTokenizer{vocab: 3}, eye, eye, nil); err == nil {
		t.Fatalf("expected decay range error")
	}
}

func TestToyIsDeterministic(t *testing.T) {
	t.Parallel()

	a, err := NewToy(ToyConfig{Seed: 7})
	if err != nil {
		t.Fatalf("toy: %v", err)
	}
	b, err := NewToy(ToyConfig{Seed: 7})
	if err != nil {
		t.Fatalf("toy: %v", err)
	}
	tokens, err := a.Tokenize("hello", true)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if tokens[0] != 256 || len(tokens) != 6 {
		t.Fatalf("toy tokens: %v", tokens)
	}

	la, err := a.Decode(context.Background(), tokens)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	lb, err := b.Decode(context.Background(), tokens)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(la) != a.VocabSize() {
		t.Fatalf("logits length: got %d want %d", len(la), a.VocabSize())
	}
	assertClose(t, la, lb)
	if a.TokenPiece('h') != "h" {
		t.Fatalf("piece: got %q", a.TokenPiece('h'))
	}
}
