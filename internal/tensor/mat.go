package tensor

import (
	"errors"
	"math/rand"
)

// Mat is a dense row-major matrix of float32 values.
//
// R and C are the row and column counts. Stride is the distance in elements
// between the starts of two consecutive rows; it equals C for matrices built
// here. Out-of-range indices panic.
type Mat struct {
	R, C   int
	Stride int
	Data   []float32
}

var (
	ErrNegativeDim    = errors.New("tensor: negative dimension")
	ErrShapeMismatch  = errors.New("tensor: data length does not match shape")
	ErrMatrixTooLarge = errors.New("tensor: matrix too large")
)

// NewMat allocates a zeroed r x c matrix.
func NewMat(r, c int) Mat {
	if r < 0 || c < 0 {
		panic(ErrNegativeDim)
	}
	return Mat{R: r, C: c, Stride: c, Data: make([]float32, r*c)}
}

// NewMatFromData wraps data as an r x c matrix without copying.
func NewMatFromData(r, c int, data []float32) (Mat, error) {
	if r < 0 || c < 0 {
		return Mat{}, ErrNegativeDim
	}
	n := r * c
	if r != 0 && n/r != c {
		return Mat{}, ErrMatrixTooLarge
	}
	if len(data) != n {
		return Mat{}, ErrShapeMismatch
	}
	return Mat{R: r, C: c, Stride: c, Data: data}, nil
}

// Row returns a view of row i. Writes through the slice update the matrix.
func (m *Mat) Row(i int) []float32 {
	if i < 0 || i >= m.R {
		panic("tensor: row index out of range")
	}
	start := i * m.Stride
	return m.Data[start : start+m.C]
}

// FillRand fills m with reproducible values in roughly (-scale/2, scale/2).
// The same seed always yields the same matrix.
func FillRand(m *Mat, seed int64, scale float32) {
	rng := rand.New(rand.NewSource(seed))
	for i := range m.Data {
		m.Data[i] = (rng.Float32() - 0.5) * scale
	}
}
