package core

import "math"

// PivotEpsilon is the magnitude below which a Gauss–Jordan pivot is treated
// as zero.
const PivotEpsilon = 1e-12

// DefaultRidge is the λ used by PseudoInverse when the caller passes λ <= 0.
const DefaultRidge = 1e-8

// Inverse inverts a square matrix by Gauss–Jordan elimination with partial
// pivoting. A pivot smaller than PivotEpsilon leaves its column unreduced
// and elimination continues, so a singular input yields a finite but
// meaningless result. Use InverseStrict when that is not acceptable.
func Inverse(A *Matrix) (*Matrix, error) {
	inv, _, err := gaussJordan(A)
	return inv, err
}

// InverseStrict is Inverse that reports ErrSingular instead of skipping a
// vanishing pivot.
func InverseStrict(A *Matrix) (*Matrix, error) {
	inv, skipped, err := gaussJordan(A)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		return nil, ErrSingular
	}
	return inv, nil
}

func gaussJordan(A *Matrix) (*Matrix, int, error) {
	if A.R != A.C {
		return nil, 0, ErrNonSquare
	}
	n := A.R
	a := A.Clone()
	inv := Identity(n)
	skipped := 0
	for col := 0; col < n; col++ {
		pivot := col
		best := math.Abs(a.At(col, col))
		for r := col + 1; r < n; r++ {
			if v := math.Abs(a.At(r, col)); v > best {
				best, pivot = v, r
			}
		}
		if best < PivotEpsilon {
			skipped++
			continue
		}
		if pivot != col {
			swapRows(a, pivot, col)
			swapRows(inv, pivot, col)
		}
		p := a.At(col, col)
		for j := 0; j < n; j++ {
			a.Data[col*n+j] /= p
			inv.Data[col*n+j] /= p
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			f := a.At(r, col)
			if f == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				a.Data[r*n+j] -= f * a.Data[col*n+j]
				inv.Data[r*n+j] -= f * inv.Data[col*n+j]
			}
		}
	}
	return inv, skipped, nil
}

func swapRows(m *Matrix, i, j int) {
	ri := m.Data[i*m.C : (i+1)*m.C]
	rj := m.Data[j*m.C : (j+1)*m.C]
	for k := range ri {
		ri[k], rj[k] = rj[k], ri[k]
	}
}

// PseudoInverse returns the ridge-stabilised left inverse (AᵀA + λI)⁻¹·Aᵀ.
// λ <= 0 selects DefaultRidge.
func PseudoInverse(A *Matrix, lambda float64) (*Matrix, error) {
	if lambda <= 0 {
		lambda = DefaultRidge
	}
	ata, err := TMul(A, A)
	if err != nil {
		return nil, err
	}
	for i := 0; i < ata.R; i++ {
		ata.Data[i*ata.C+i] += lambda
	}
	inv, err := Inverse(ata)
	if err != nil {
		return nil, err
	}
	return MatMul(inv, A.Transpose())
}

// ColumnMeans returns the mean of each column.
func ColumnMeans(X *Matrix) []float64 {
	means := make([]float64, X.C)
	if X.R == 0 {
		return means
	}
	for i := 0; i < X.R; i++ {
		for j := 0; j < X.C; j++ {
			means[j] += X.Data[i*X.C+j]
		}
	}
	for j := range means {
		means[j] /= float64(X.R)
	}
	return means
}

// Covariance returns the p×p sample covariance of the columns of X
// (denominator n−1) together with the column means.
func Covariance(X *Matrix) (*Matrix, []float64, error) {
	if X.R < 2 {
		return nil, nil, ErrDimensionMismatch
	}
	means := ColumnMeans(X)
	Z := X.Clone()
	for i := 0; i < Z.R; i++ {
		for j := 0; j < Z.C; j++ {
			Z.Data[i*Z.C+j] -= means[j]
		}
	}
	cov, err := TMul(Z, Z)
	if err != nil {
		return nil, nil, err
	}
	inv := 1 / float64(X.R-1)
	for i := range cov.Data {
		cov.Data[i] *= inv
	}
	return cov, means, nil
}

// PowerIterations is the fixed number of sweeps per eigenvector.
const PowerIterations = 100

// Eigen is one eigenpair extracted by PowerIteration.
type Eigen struct {
	Value  float64
	Vector []float64
}

// PowerIteration extracts the k dominant eigenpairs of the symmetric matrix
// C. Each vector starts from draws of init, is renormalised on every one of
// PowerIterations sweeps, and is then deflated out of C as C ← C − λvvᵀ with
// λ = vᵀCv. There is no tolerance-based early stop. C is not modified.
func PowerIteration(C *Matrix, k int, init func() float64) ([]Eigen, error) {
	if C.R != C.C {
		return nil, ErrNonSquare
	}
	p := C.R
	if k > p {
		k = p
	}
	work := C.Clone()
	out := make([]Eigen, 0, k)
	for comp := 0; comp < k; comp++ {
		v := make([]float64, p)
		for j := range v {
			v[j] = init()
		}
		normalizeInPlace(v)
		for it := 0; it < PowerIterations; it++ {
			w, _ := MulVec(work, v)
			if Norm(w) == 0 {
				break
			}
			normalizeInPlace(w)
			v = w
		}
		cv, _ := MulVec(work, v)
		lambda := dot(v, cv)
		out = append(out, Eigen{Value: lambda, Vector: v})
		for i := 0; i < p; i++ {
			for j := 0; j < p; j++ {
				work.Data[i*p+j] -= lambda * v[i] * v[j]
			}
		}
	}
	return out, nil
}

func normalizeInPlace(v []float64) {
	n := Norm(v)
	if n == 0 {
		return
	}
	for i := range v {
		v[i] /= n
	}
}
