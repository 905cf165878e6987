package engine

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/samcharles93/tokprobe/internal/safetensors"
	"github.com/samcharles93/tokprobe/internal/tensor"
	"github.com/samcharles93/tokprobe/internal/tokenizer"
)

// ToyConfig describes a random-weight model over the byte-level tokenizer.
// Zero fields take the defaults below.
type ToyConfig struct {
	Hidden  int
	Context int
	Decay   float64
	Seed    int64
}

const (
	defaultToyHidden  = 32
	defaultToyContext = 512
)

func (c ToyConfig) withDefaults() ToyConfig {
	if c.Hidden <= 0 {
		c.Hidden = defaultToyHidden
	}
	if c.Context <= 0 {
		c.Context = defaultToyContext
	}
	if c.Decay == 0 {
		c.Decay = DefaultDecay
	}
	return c
}

// NewToy builds a deterministic model: the same ToyConfig always yields the
// same weights and therefore the same logits.
func NewToy(cfg ToyConfig) (*Model, error) {
	cfg = cfg.withDefaults()
	tok := tokenizer.NewByteLevel()
	vocab := tok.VocabSize()

	embed := tensor.NewMat(vocab, cfg.Hidden)
	head := tensor.NewMat(vocab, cfg.Hidden)
	tensor.FillRand(&embed, cfg.Seed+11, 2)
	tensor.FillRand(&head, cfg.Seed+23, 2)
	bias := make([]float32, vocab)

	return newModel(Config{
		VocabSize:     vocab,
		HiddenSize:    cfg.Hidden,
		ContextLength: cfg.Context,
		Decay:         cfg.Decay,
	}, tok, embed, head, bias)
}

// ExportToy writes the NewToy model for cfg to dir as a loadable model
// directory.
func ExportToy(dir string, cfg ToyConfig) error {
	m, err := NewToy(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	cfgJSON, err := json.MarshalIndent(m.cfg, "", "  ")
	if err != nil {
		return err
	}
	tokJSON, tokCfg, err := tokenizer.ByteLevelJSON()
	if err != nil {
		return err
	}
	files := map[string][]byte{
		ConfigFile:          cfgJSON,
		TokenizerFile:       tokJSON,
		TokenizerConfigFile: tokCfg,
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	V, H := m.cfg.VocabSize, m.cfg.HiddenSize
	return safetensors.WriteF32(filepath.Join(dir, WeightsFile), map[string]safetensors.F32Tensor{
		tensorEmbed: {Shape: []int{V, H}, Data: m.embed.Data},
		tensorHead:  {Shape: []int{V, H}, Data: m.head.Data},
		tensorBias:  {Shape: []int{V}, Data: m.bias},
	})
}
