package safetensors

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
)

// writeRaw writes a safetensors file with an arbitrary header and data length.
func writeRaw(t *testing.T, path string, header map[string]any, dataLen int) {
	t.Helper()
	hb, err := json.Marshal(header)
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	buf := make([]byte, 8, 8+len(hb)+dataLen)
	binary.LittleEndian.PutUint64(buf, uint64(len(hb)))
	buf = append(buf, hb...)
	buf = append(buf, make([]byte, dataLen)...)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func openT(t *testing.T, path string) *File {
	t.Helper()
	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWriteThenReadF32(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "model.safetensors")
	err := WriteF32(path, map[string]F32Tensor{
		"b.weight": {Shape: []int{2, 2}, Data: []float32{1, 2, 3, 4}},
		"a.bias":   {Shape: []int{3}, Data: []float32{-1, 0, 1.5}},
	})
	if err != nil {
		t.Fatalf("WriteF32: %v", err)
	}

	f := openT(t, path)
	if names := f.Names(); len(names) != 2 || names[0] != "a.bias" || names[1] != "b.weight" {
		t.Fatalf("unexpected names: %v", names)
	}
	got, info, err := f.ReadTensorF32("b.weight")
	if err != nil {
		t.Fatalf("ReadTensorF32: %v", err)
	}
	if info.DType != "F32" || len(info.Shape) != 2 {
		t.Fatalf("unexpected info: %+v", info)
	}
	for i, want := range []float32{1, 2, 3, 4} {
		if got[i] != want {
			t.Fatalf("b.weight[%d] = %v, want %v", i, got[i], want)
		}
	}
	bias, _, err := f.ReadTensorF32("a.bias")
	if err != nil {
		t.Fatalf("ReadTensorF32 bias: %v", err)
	}
	if bias[2] != 1.5 {
		t.Fatalf("a.bias[2] = %v", bias[2])
	}
}

func TestWriteF32RejectsShapeMismatch(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bad.safetensors")
	err := WriteF32(path, map[string]F32Tensor{"x": {Shape: []int{2, 2}, Data: []float32{1}}})
	if err == nil {
		t.Fatal("expected shape mismatch error")
	}
}

func TestOpenNonexistentFile(t *testing.T) {
	t.Parallel()
	if _, err := Open(filepath.Join(t.TempDir(), "missing.safetensors")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestOpenTruncatedHeader(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "short.safetensors")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); !errors.Is(err, ErrCorruptFile) {
		t.Fatalf("expected ErrCorruptFile, got %v", err)
	}
}

func TestOpenHeaderLongerThanFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "liar.safetensors")
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1<<20)
	if err := os.WriteFile(path, buf[:], 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); !errors.Is(err, ErrCorruptFile) {
		t.Fatalf("expected ErrCorruptFile, got %v", err)
	}
}

func TestOpenRejectsOffsetsOutsideData(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "oob.safetensors")
	writeRaw(t, path, map[string]any{
		"w": map[string]any{"dtype": "F32", "shape": []int{4}, "data_offsets": []int64{0, 16}},
	}, 8)
	if _, err := Open(path); !errors.Is(err, ErrCorruptFile) {
		t.Fatalf("expected ErrCorruptFile, got %v", err)
	}
}

func TestMetadataIgnored(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "meta.safetensors")
	writeRaw(t, path, map[string]any{
		"__metadata__": map[string]string{"format": "pt"},
		"w":            map[string]any{"dtype": "F32", "shape": []int{1}, "data_offsets": []int64{0, 4}},
	}, 4)
	f := openT(t, path)
	if len(f.Tensors) != 1 {
		t.Fatalf("expected metadata to be dropped, got %d tensors", len(f.Tensors))
	}
}

func TestTensorNotFound(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "one.safetensors")
	if err := WriteF32(path, map[string]F32Tensor{"w": {Shape: []int{1}, Data: []float32{1}}}); err != nil {
		t.Fatal(err)
	}
	f := openT(t, path)
	if _, _, err := f.ReadTensor("nope"); !errors.Is(err, ErrTensorNotFound) {
		t.Fatalf("expected ErrTensorNotFound, got %v", err)
	}
}

func TestReadTensorHalfPrecision(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	// 1.0 in bf16 is 0x3F80, in f16 0x3C00; -2.0 is 0xC000 in both.
	cases := []struct {
		dtype string
		words []uint16
	}{
		{"BF16", []uint16{0x3F80, 0xC000}},
		{"F16", []uint16{0x3C00, 0xC000}},
	}
	for _, tc := range cases {
		path := filepath.Join(dir, tc.dtype+".safetensors")
		hb, _ := json.Marshal(map[string]any{
			"w": map[string]any{"dtype": tc.dtype, "shape": []int{2}, "data_offsets": []int64{0, 4}},
		})
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, uint64(len(hb)))
		buf = append(buf, hb...)
		for _, w := range tc.words {
			buf = binary.LittleEndian.AppendUint16(buf, w)
		}
		if err := os.WriteFile(path, buf, 0o644); err != nil {
			t.Fatal(err)
		}
		f := openT(t, path)
		got, _, err := f.ReadTensorF32("w")
		if err != nil {
			t.Fatalf("%s: %v", tc.dtype, err)
		}
		if got[0] != 1 || got[1] != -2 {
			t.Fatalf("%s: got %v, want [1 -2]", tc.dtype, got)
		}
	}
}

func TestReadTensorUnsupportedDType(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "i8.safetensors")
	writeRaw(t, path, map[string]any{
		"w": map[string]any{"dtype": "I8", "shape": []int{4}, "data_offsets": []int64{0, 4}},
	}, 4)
	f := openT(t, path)
	if _, _, err := f.ReadTensorF32("w"); err == nil {
		t.Fatal("expected unsupported dtype error")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "c.safetensors")
	if err := WriteF32(path, map[string]F32Tensor{"w": {Shape: []int{1}, Data: []float32{1}}}); err != nil {
		t.Fatal(err)
	}
	f, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestNumElements(t *testing.T) {
	t.Parallel()
	if n, err := numElements([]int{2, 3, 4}); err != nil || n != 24 {
		t.Fatalf("numElements = %d, %v", n, err)
	}
	for _, shape := range [][]int{nil, {0}, {-1, 2}, {math.MaxInt, 2}} {
		if _, err := numElements(shape); err == nil {
			t.Fatalf("expected error for shape %v", shape)
		}
	}
}
