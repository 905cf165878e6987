package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/samcharles93/tokprobe/internal/engine"
	"github.com/samcharles93/tokprobe/internal/logger"
)

// loadModel builds the model selected by the common model flags. With
// showProgress a bar tracks weight decoding on stderr.
func loadModel(ctx context.Context, showProgress bool) (*engine.Model, error) {
	log := logger.FromContext(ctx)

	if useToy {
		m, err := engine.NewToy(engine.ToyConfig{Seed: toySeed, Context: int(maxContext)})
		if err != nil {
			return nil, err
		}
		log.Debug("toy model ready", "vocab", m.VocabSize(), "context", m.ContextSize())
		return m, nil
	}

	path, err := resolveModelPath(modelPath, modelsPath, os.Stderr)
	if err != nil {
		return nil, err
	}
	loader := engine.Loader{
		TokenizerJSONPath:   tokenizerJSONPath,
		TokenizerConfigPath: tokenizerConfig,
	}
	if showProgress {
		loader.Progress = newLoadProgress(os.Stderr)
	}

	start := time.Now()
	m, err := loader.Load(path, int(maxContext))
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	log.Info("model loaded",
		"path", path,
		"vocab", m.VocabSize(),
		"context", m.ContextSize(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return m, nil
}

func newLoadProgress(w io.Writer) func(done, total int64) {
	var bar *progressbar.ProgressBar
	return func(done, total int64) {
		if bar == nil {
			bar = progressbar.NewOptions64(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan]Loading weights[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					_, _ = fmt.Fprintln(w)
				}),
			)
		}
		_ = bar.Set64(done)
	}
}

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	faintColor  = color.New(color.Faint)
)
