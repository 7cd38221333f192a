package core_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"statml/pkg/core"
)

func mustMatrix(t *testing.T, a [][]float64) *core.Matrix {
	t.Helper()
	m, err := core.FromSlice(a)
	require.NoError(t, err)
	return m
}

func requireClose(t *testing.T, want, got *core.Matrix, tol float64) {
	t.Helper()
	require.Equal(t, want.R, got.R)
	require.Equal(t, want.C, got.C)
	for i := range want.Data {
		require.InDelta(t, want.Data[i], got.Data[i], tol, "element %d", i)
	}
}

func TestFromSliceRagged(t *testing.T) {
	t.Parallel()
	_, err := core.FromSlice([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, core.ErrRagged)
	empty, err := core.FromSlice(nil)
	require.NoError(t, err)
	require.Equal(t, 0, empty.R)
}

func TestMatMulAndTranspose(t *testing.T) {
	t.Parallel()
	A := mustMatrix(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	B := mustMatrix(t, [][]float64{{7, 8}, {9, 10}, {11, 12}})
	C, err := core.MatMul(A, B)
	require.NoError(t, err)
	requireClose(t, mustMatrix(t, [][]float64{{58, 64}, {139, 154}}), C, 0)

	_, err = core.MatMul(A, A)
	require.ErrorIs(t, err, core.ErrDimensionMismatch)

	At := A.Transpose()
	require.Equal(t, [][]float64{{1, 4}, {2, 5}, {3, 6}}, At.ToSlice())

	// AᵀA through TMul matches the explicit product.
	viaT, err := core.TMul(A, A)
	require.NoError(t, err)
	explicit, err := core.MatMul(At, A)
	require.NoError(t, err)
	requireClose(t, explicit, viaT, 1e-12)
}

func TestElementwiseAndVectors(t *testing.T) {
	t.Parallel()
	A := mustMatrix(t, [][]float64{{1, 2}, {3, 4}})
	sum, err := core.Add(A, A)
	require.NoError(t, err)
	require.Equal(t, core.Scale(A, 2).Data, sum.Data)
	diff, err := core.Sub(A, A)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 0, 0}, diff.Data)

	d, err := core.Dot(mustMatrix(t, [][]float64{{1, 2, 3}}), mustMatrix(t, [][]float64{{4}, {5}, {6}}))
	require.NoError(t, err)
	require.Equal(t, 32.0, d)
	_, err = core.Dot(A, A)
	require.ErrorIs(t, err, core.ErrNotVector)

	require.Equal(t, []float64{2, 4}, A.Col(1))
	require.Equal(t, []float64{3, 4}, A.Row(1))
	aug := core.AugmentBias([][]float64{{5}, {6}})
	require.Equal(t, [][]float64{{1, 5}, {1, 6}}, aug.ToSlice())
}

func TestInverseAgainstGonum(t *testing.T) {
	t.Parallel()
	a := [][]float64{{4, 7, 2}, {3, 6, 1}, {2, 5, 3}}
	A := mustMatrix(t, a)
	inv, err := core.InverseStrict(A)
	require.NoError(t, err)

	var want mat.Dense
	require.NoError(t, want.Inverse(mat.NewDense(3, 3, A.Data)))
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			require.InDelta(t, want.At(i, j), inv.At(i, j), 1e-10)
		}
	}

	id, err := core.MatMul(A, inv)
	require.NoError(t, err)
	requireClose(t, core.Identity(3), id, 1e-10)
}

func TestInverseNeedsPivoting(t *testing.T) {
	t.Parallel()
	A := mustMatrix(t, [][]float64{{0, 1}, {1, 0}})
	inv, err := core.InverseStrict(A)
	require.NoError(t, err)
	requireClose(t, A, inv, 0)
}

func TestInverseSingular(t *testing.T) {
	t.Parallel()
	S := mustMatrix(t, [][]float64{{1, 2}, {2, 4}})
	inv, err := core.Inverse(S)
	require.NoError(t, err, "lenient inverse skips the vanishing pivot")
	for _, v := range inv.Data {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
	_, err = core.InverseStrict(S)
	require.ErrorIs(t, err, core.ErrSingular)
	_, err = core.Inverse(mustMatrix(t, [][]float64{{1, 2, 3}}))
	require.ErrorIs(t, err, core.ErrNonSquare)
}

func TestPseudoInverseIsLeftInverse(t *testing.T) {
	t.Parallel()
	A := mustMatrix(t, [][]float64{{1, 1}, {1, 2}, {1, 3}, {1, 4}})
	P, err := core.PseudoInverse(A, 0)
	require.NoError(t, err)
	require.Equal(t, 2, P.R)
	require.Equal(t, 4, P.C)
	I, err := core.MatMul(P, A)
	require.NoError(t, err)
	requireClose(t, core.Identity(2), I, 1e-6)
}

func TestCovarianceAgainstGonum(t *testing.T) {
	t.Parallel()
	rows := [][]float64{{2, 1, 0}, {3, 5, 1}, {4, 2, 2}, {8, 7, 1}, {1, 0, 4}}
	X := mustMatrix(t, rows)
	cov, means, err := core.Covariance(X)
	require.NoError(t, err)
	require.InDelta(t, 3.6, means[0], 1e-12)

	var want mat.SymDense
	stat.CovarianceMatrix(&want, mat.NewDense(5, 3, X.Data), nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			require.InDelta(t, want.At(i, j), cov.At(i, j), 1e-12)
		}
	}
}

func seq() func() float64 {
	vals := []float64{0.31, 0.72, 0.18, 0.55, 0.93, 0.47}
	i := 0
	return func() float64 {
		v := vals[i%len(vals)]
		i++
		return v
	}
}

func TestPowerIterationAgainstEigenSym(t *testing.T) {
	t.Parallel()
	data := []float64{4, 1, 0, 1, 3, 1, 0, 1, 2}
	C := &core.Matrix{R: 3, C: 3, Data: data}
	pairs, err := core.PowerIteration(C, 3, seq())
	require.NoError(t, err)
	require.Len(t, pairs, 3)

	var es mat.EigenSym
	require.True(t, es.Factorize(mat.NewSymDense(3, data), true))
	values := es.Values(nil) // ascending
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	for k, pair := range pairs {
		idx := 2 - k
		require.InDelta(t, values[idx], pair.Value, 1e-6, "eigenvalue %d", k)
		require.InDelta(t, 1.0, core.Norm(pair.Vector), 1e-12)
		d := 0.0
		for j := 0; j < 3; j++ {
			d += pair.Vector[j] * vecs.At(j, idx)
		}
		require.InDelta(t, 1.0, math.Abs(d), 1e-6, "eigenvector %d", k)
	}
	// Deflation keeps the components orthogonal.
	for a := 0; a < 3; a++ {
		for b := a + 1; b < 3; b++ {
			d := 0.0
			for j := 0; j < 3; j++ {
				d += pairs[a].Vector[j] * pairs[b].Vector[j]
			}
			require.InDelta(t, 0.0, d, 1e-6)
		}
	}
	require.Equal(t, data, C.Data, "input matrix must not be modified")
}
