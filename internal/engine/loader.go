package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/samcharles93/tokprobe/internal/safetensors"
	"github.com/samcharles93/tokprobe/internal/tensor"
	"github.com/samcharles93/tokprobe/internal/tokenizer"
)

// File names inside a model directory.
const (
	ConfigFile          = "config.json"
	WeightsFile         = "model.safetensors"
	TokenizerFile       = "tokenizer.json"
	TokenizerConfigFile = "tokenizer_config.json"
)

// Tensor names read from WeightsFile.
const (
	tensorEmbed = "embed_tokens.weight"
	tensorHead  = "lm_head.weight"
	tensorBias  = "lm_head.bias"
)

// Loader loads a model directory. The tokenizer paths override the files
// inside the directory when set.
type Loader struct {
	TokenizerJSONPath   string
	TokenizerConfigPath string

	// Progress, when set, is called as weight bytes are decoded.
	Progress func(done, total int64)
}

// Load reads config.json, model.safetensors and the tokenizer from dir.
// maxContext > 0 caps the context window below the configured length.
func (l Loader) Load(dir string, maxContext int) (*Model, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("model path is required")
	}

	cfg, err := ReadConfig(filepath.Join(dir, ConfigFile))
	if err != nil {
		return nil, err
	}
	if maxContext > 0 && maxContext < cfg.ContextLength {
		cfg.ContextLength = maxContext
	}

	tokPath := l.TokenizerJSONPath
	if tokPath == "" {
		tokPath = filepath.Join(dir, TokenizerFile)
	}
	tokCfgPath := l.TokenizerConfigPath
	if tokCfgPath == "" {
		tokCfgPath = filepath.Join(dir, TokenizerConfigFile)
	}
	tok, err := tokenizer.LoadHFTokenizer(tokPath, tokCfgPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	embed, head, bias, err := l.loadWeights(filepath.Join(dir, WeightsFile), cfg)
	if err != nil {
		return nil, err
	}
	return newModel(cfg, tok, embed, head, bias)
}

// ReadConfig parses a model config.json. A missing decay defaults to
// DefaultDecay.
func ReadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load model config: %w", err)
	}
	cfg := Config{Decay: DefaultDecay}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (l Loader) loadWeights(path string, cfg Config) (embed, head tensor.Mat, bias []float32, err error) {
	st, err := safetensors.Open(path)
	if err != nil {
		return tensor.Mat{}, tensor.Mat{}, nil, fmt.Errorf("open weights: %w", err)
	}
	defer st.Close()

	names := []string{tensorEmbed, tensorHead}
	if _, ok := st.Tensor(tensorBias); ok {
		names = append(names, tensorBias)
	}
	var total, done int64
	for _, name := range names {
		info, ok := st.Tensor(name)
		if !ok {
			return tensor.Mat{}, tensor.Mat{}, nil, fmt.Errorf("%w: %s", safetensors.ErrTensorNotFound, name)
		}
		total += info.End - info.Start
	}
	report := func(name string) {
		if l.Progress == nil {
			return
		}
		info, _ := st.Tensor(name)
		done += info.End - info.Start
		l.Progress(done, total)
	}

	readMat := func(name string) (tensor.Mat, error) {
		data, info, err := st.ReadTensorF32(name)
		if err != nil {
			return tensor.Mat{}, err
		}
		if len(info.Shape) != 2 {
			return tensor.Mat{}, fmt.Errorf("%s: expected 2-D tensor, got shape %v", name, info.Shape)
		}
		m, err := tensor.NewMatFromData(info.Shape[0], info.Shape[1], data)
		if err != nil {
			return tensor.Mat{}, fmt.Errorf("%s: %w", name, err)
		}
		report(name)
		return m, nil
	}

	if embed, err = readMat(tensorEmbed); err != nil {
		return tensor.Mat{}, tensor.Mat{}, nil, err
	}
	if head, err = readMat(tensorHead); err != nil {
		return tensor.Mat{}, tensor.Mat{}, nil, err
	}
	if len(names) == 3 {
		data, info, err := st.ReadTensorF32(tensorBias)
		if err != nil {
			return tensor.Mat{}, tensor.Mat{}, nil, err
		}
		if len(info.Shape) != 1 || info.Shape[0] != cfg.VocabSize {
			return tensor.Mat{}, tensor.Mat{}, nil, fmt.Errorf("%s: shape %v, want [%d]", tensorBias, info.Shape, cfg.VocabSize)
		}
		bias = data
		report(tensorBias)
	}
	return embed, head, bias, nil
}
