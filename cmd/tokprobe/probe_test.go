package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/samcharles93/tokprobe/internal/engine"
	"github.com/samcharles93/tokprobe/internal/probe"
)

func newToyProbeService(t *testing.T) *probe.Service {
	t.Helper()
	m, err := engine.NewToy(engine.ToyConfig{Context: 32})
	if err != nil {
		t.Fatalf("toy: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return probe.NewService(m, nil)
}

func TestRunProbeText(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := runProbe(context.Background(), &out, newToyProbeService(t), probe.Request{Prompt: "Hello", Targets: "a,bc"}, false)
	if err != nil {
		t.Fatalf("runProbe: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", out.String())
	}
	for i, prefix := range []string{"Token 97: prob = ", "Token 98: prob = ", "Token 99: prob = "} {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Fatalf("line %d: %q", i, lines[i])
		}
	}
}

func TestRunProbeJSON(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := runProbe(context.Background(), &out, newToyProbeService(t), probe.Request{Prompt: "Hello", Targets: "z", TopK: 3}, true)
	if err != nil {
		t.Fatalf("runProbe: %v", err)
	}
	var res probe.Result
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v (%s)", err, out.String())
	}
	if len(res.Tokens) != 1 || res.Tokens[0].ID != 'z' || len(res.Top) != 3 || res.PromptTokens != 6 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRunProbeTooLong(t *testing.T) {
	t.Parallel()

	err := runProbe(context.Background(), &bytes.Buffer{}, newToyProbeService(t),
		probe.Request{Prompt: strings.Repeat("x", 64), Targets: "a"}, false)
	if !errors.Is(err, probe.ErrPromptTooLong) {
		t.Fatalf("expected ErrPromptTooLong, got %v", err)
	}
	if exitCode(err) != 2 {
		t.Fatalf("exit code: got %d", exitCode(err))
	}
	if exitCode(probe.ErrDecode) != 1 {
		t.Fatalf("decode failures should exit 1")
	}
}
