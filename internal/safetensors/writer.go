package safetensors

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sort"

	json "github.com/goccy/go-json"
)

// F32Tensor is an in-memory tensor for WriteF32.
type F32Tensor struct {
	Shape []int
	Data  []float32
}

// WriteF32 writes tensors to path as an F32 safetensors file. Tensors are
// laid out in lexical name order so output is reproducible.
func WriteF32(path string, tensors map[string]F32Tensor) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]tensorHeader, len(names))
	var off int64
	for _, name := range names {
		t := tensors[name]
		n, err := numElements(t.Shape)
		if err != nil {
			return fmt.Errorf("tensor %s: %w", name, err)
		}
		if n != len(t.Data) {
			return fmt.Errorf("tensor %s: shape %v needs %d values, have %d", name, t.Shape, n, len(t.Data))
		}
		end := off + int64(n)*4
		header[name] = tensorHeader{DType: "F32", Shape: t.Shape, DataOffsets: []int64{off, end}}
		off = end
	}
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], uint64(len(headerBytes)))
	_, _ = w.Write(scratch[:])
	_, _ = w.Write(headerBytes)
	for _, name := range names {
		for _, v := range tensors[name].Data {
			binary.LittleEndian.PutUint32(scratch[:4], math.Float32bits(v))
			_, _ = w.Write(scratch[:4])
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
