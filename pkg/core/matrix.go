// Package core is the dense linear-algebra kernel: row-major matrices,
// products, Gauss–Jordan inversion, the ridge pseudoinverse and power
// iteration with deflation. Everything runs on the calling goroutine.
package core

import "math"

// Matrix is a dense row-major matrix.
type Matrix struct {
	R, C int
	Data []float64
}

// NewMatrix allocates a zero matrix.
func NewMatrix(r, c int) *Matrix {
	return &Matrix{R: r, C: c, Data: make([]float64, r*c)}
}

// Identity returns the n×n identity.
func Identity(n int) *Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m.Data[i*n+i] = 1
	}
	return m
}

// FromSlice creates a Matrix from a nested slice (copies the data).
func FromSlice(a [][]float64) (*Matrix, error) {
	r := len(a)
	if r == 0 {
		return &Matrix{}, nil
	}
	c := len(a[0])
	m := NewMatrix(r, c)
	for i, row := range a {
		if len(row) != c {
			return nil, ErrRagged
		}
		copy(m.Data[i*c:(i+1)*c], row)
	}
	return m, nil
}

// ToSlice copies the matrix into a nested slice.
func (m *Matrix) ToSlice() [][]float64 {
	out := make([][]float64, m.R)
	for i := range out {
		out[i] = make([]float64, m.C)
		copy(out[i], m.Data[i*m.C:(i+1)*m.C])
	}
	return out
}

// At returns element (i, j).
func (m *Matrix) At(i, j int) float64 { return m.Data[i*m.C+j] }

// Set sets element (i, j).
func (m *Matrix) Set(i, j int, v float64) { m.Data[i*m.C+j] = v }

// Clone deep-copies the matrix.
func (m *Matrix) Clone() *Matrix {
	n := &Matrix{R: m.R, C: m.C, Data: make([]float64, len(m.Data))}
	copy(n.Data, m.Data)
	return n
}

// Transpose returns mᵀ.
func (m *Matrix) Transpose() *Matrix {
	t := NewMatrix(m.C, m.R)
	for i := 0; i < m.R; i++ {
		for j := 0; j < m.C; j++ {
			t.Data[j*t.C+i] = m.Data[i*m.C+j]
		}
	}
	return t
}

// Dot computes the inner product of two vectors (shape (n,1) or (1,n)).
func Dot(a, b *Matrix) (float64, error) {
	if !(a.R == 1 || a.C == 1) || !(b.R == 1 || b.C == 1) {
		return 0, ErrNotVector
	}
	if len(a.Data) != len(b.Data) {
		return 0, ErrDimensionMismatch
	}
	return dot(a.Data, b.Data), nil
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// Norm is the Euclidean norm of v.
func Norm(v []float64) float64 { return math.Sqrt(dot(v, v)) }

// MatMul returns A·B.
func MatMul(A, B *Matrix) (*Matrix, error) {
	if A.C != B.R {
		return nil, ErrDimensionMismatch
	}
	C := NewMatrix(A.R, B.C)
	for i := 0; i < A.R; i++ {
		for k := 0; k < A.C; k++ {
			ai := A.Data[i*A.C+k]
			for j := 0; j < B.C; j++ {
				C.Data[i*C.C+j] += ai * B.Data[k*B.C+j]
			}
		}
	}
	return C, nil
}

// TMul returns Aᵀ·B without materialising the transpose.
func TMul(A, B *Matrix) (*Matrix, error) {
	if A.R != B.R {
		return nil, ErrDimensionMismatch
	}
	C := NewMatrix(A.C, B.C)
	for k := 0; k < A.R; k++ {
		for i := 0; i < A.C; i++ {
			aki := A.Data[k*A.C+i]
			for j := 0; j < B.C; j++ {
				C.Data[i*C.C+j] += aki * B.Data[k*B.C+j]
			}
		}
	}
	return C, nil
}

// MulVec returns A·v.
func MulVec(A *Matrix, v []float64) ([]float64, error) {
	if A.C != len(v) {
		return nil, ErrDimensionMismatch
	}
	out := make([]float64, A.R)
	for i := 0; i < A.R; i++ {
		out[i] = dot(A.Data[i*A.C:(i+1)*A.C], v)
	}
	return out, nil
}

// Add returns A + B (element-wise).
func Add(A, B *Matrix) (*Matrix, error) {
	if A.R != B.R || A.C != B.C {
		return nil, ErrDimensionMismatch
	}
	C := NewMatrix(A.R, A.C)
	for i := range A.Data {
		C.Data[i] = A.Data[i] + B.Data[i]
	}
	return C, nil
}

// Sub returns A - B (element-wise).
func Sub(A, B *Matrix) (*Matrix, error) {
	if A.R != B.R || A.C != B.C {
		return nil, ErrDimensionMismatch
	}
	C := NewMatrix(A.R, A.C)
	for i := range A.Data {
		C.Data[i] = A.Data[i] - B.Data[i]
	}
	return C, nil
}

// Scale returns s*A.
func Scale(A *Matrix, s float64) *Matrix {
	C := NewMatrix(A.R, A.C)
	for i, v := range A.Data {
		C.Data[i] = s * v
	}
	return C
}

// Apply applies f element-wise in place.
func (m *Matrix) Apply(f func(float64) float64) {
	for i := range m.Data {
		m.Data[i] = f(m.Data[i])
	}
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	out := make([]float64, m.C)
	copy(out, m.Data[i*m.C:(i+1)*m.C])
	return out
}

// Col returns a copy of column j.
func (m *Matrix) Col(j int) []float64 {
	out := make([]float64, m.R)
	for i := 0; i < m.R; i++ {
		out[i] = m.Data[i*m.C+j]
	}
	return out
}

// AugmentBias prepends a column of ones, the design matrix of a model
// with an intercept.
func AugmentBias(X [][]float64) *Matrix {
	n := len(X)
	p := 0
	if n > 0 {
		p = len(X[0])
	}
	m := NewMatrix(n, p+1)
	for i, row := range X {
		m.Data[i*(p+1)] = 1
		copy(m.Data[i*(p+1)+1:(i+1)*(p+1)], row)
	}
	return m
}
