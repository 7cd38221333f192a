package stats

import (
	"math"
	"sort"
)

// CleanSequence is a sequence that holds only finite values. Primitives in
// this package clean their input themselves; callers that need to know how
// many entries were dropped call Clean directly.
type CleanSequence []float64

// Clean drops NaN and ±Inf entries and reports how many were removed.
func Clean(x []float64) (CleanSequence, int) {
	out := make(CleanSequence, 0, len(x))
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out, len(x) - len(out)
}

// CleanPairs drops positions where either x or y is not finite, keeping the
// pairing intact. Lengths must match.
func CleanPairs(x, y []float64) (CleanSequence, CleanSequence, error) {
	if len(x) != len(y) {
		return nil, nil, ErrLengthMismatch
	}
	cx := make(CleanSequence, 0, len(x))
	cy := make(CleanSequence, 0, len(y))
	for i := range x {
		if !finite(x[i]) || !finite(y[i]) {
			continue
		}
		cx = append(cx, x[i])
		cy = append(cy, y[i])
	}
	return cx, cy, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func clean(x []float64) CleanSequence {
	c, _ := Clean(x)
	return c
}

// Sum returns the sum of all finite elements.
func Sum(x []float64) float64 {
	s := 0.0
	for _, v := range clean(x) {
		s += v
	}
	return s
}

// Mean computes the average of a slice; NaN when empty.
func Mean(x []float64) float64 {
	c := clean(x)
	if len(c) == 0 {
		return math.NaN()
	}
	return sum(c) / float64(len(c))
}

func sum(c CleanSequence) float64 {
	s := 0.0
	for _, v := range c {
		s += v
	}
	return s
}

// centralMoments returns the mean and the second to fourth central sums.
func centralMoments(c CleanSequence) (mean, s2, s3, s4 float64) {
	mean = sum(c) / float64(len(c))
	for _, v := range c {
		d := v - mean
		d2 := d * d
		s2 += d2
		s3 += d2 * d
		s4 += d2 * d2
	}
	return mean, s2, s3, s4
}

// Variance is the sample variance (denominator n−1); NaN for n<2.
func Variance(x []float64) float64 {
	c := clean(x)
	if len(c) < 2 {
		return math.NaN()
	}
	_, s2, _, _ := centralMoments(c)
	return s2 / float64(len(c)-1)
}

// PopVariance is the population variance (denominator n); NaN when empty.
func PopVariance(x []float64) float64 {
	c := clean(x)
	if len(c) == 0 {
		return math.NaN()
	}
	_, s2, _, _ := centralMoments(c)
	return s2 / float64(len(c))
}

// Std is the sample standard deviation.
func Std(x []float64) float64 { return math.Sqrt(Variance(x)) }

// PopStd is the population standard deviation.
func PopStd(x []float64) float64 { return math.Sqrt(PopVariance(x)) }

// Skewness is the adjusted Fisher–Pearson coefficient G1; NaN for n<3 or
// a constant sequence.
func Skewness(x []float64) float64 {
	c := clean(x)
	n := float64(len(c))
	if n < 3 {
		return math.NaN()
	}
	_, s2, s3, _ := centralMoments(c)
	m2, m3 := s2/n, s3/n
	if m2 == 0 {
		return math.NaN()
	}
	g1 := m3 / math.Pow(m2, 1.5)
	return g1 * math.Sqrt(n*(n-1)) / (n - 2)
}

// Kurtosis is the adjusted excess kurtosis G2; NaN for n<4 or a constant
// sequence.
func Kurtosis(x []float64) float64 {
	c := clean(x)
	n := float64(len(c))
	if n < 4 {
		return math.NaN()
	}
	_, s2, _, s4 := centralMoments(c)
	m2, m4 := s2/n, s4/n
	if m2 == 0 {
		return math.NaN()
	}
	g2 := m4/(m2*m2) - 3
	return ((n+1)*g2 + 6) * (n - 1) / ((n - 2) * (n - 3))
}

// MomentShape returns the moment-based (biased) skewness and excess
// kurtosis used by the Jarque–Bera statistic. Both are NaN for a constant
// or empty sequence.
func MomentShape(x []float64) (skew, kurt float64) {
	c := clean(x)
	n := float64(len(c))
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	_, s2, s3, s4 := centralMoments(c)
	m2, m3, m4 := s2/n, s3/n, s4/n
	if m2 == 0 {
		return math.NaN(), math.NaN()
	}
	return m3 / math.Pow(m2, 1.5), m4/(m2*m2) - 3
}

// Min returns the smallest finite value; NaN when empty.
func Min(x []float64) float64 {
	lo, _ := MinMax(x)
	return lo
}

// Max returns the largest finite value; NaN when empty.
func Max(x []float64) float64 {
	_, hi := MinMax(x)
	return hi
}

// MinMax returns the minimum and maximum values in the slice.
func MinMax(x []float64) (float64, float64) {
	c := clean(x)
	if len(c) == 0 {
		return math.NaN(), math.NaN()
	}
	lo, hi := c[0], c[0]
	for _, v := range c[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func sorted(x []float64) CleanSequence {
	c := clean(x)
	sort.Float64s(c)
	return c
}

// Median returns the median value of the slice (allocates a copy).
func Median(x []float64) float64 {
	c := sorted(x)
	n := len(c)
	if n == 0 {
		return math.NaN()
	}
	mid := n >> 1
	if n&1 == 0 {
		return (c[mid-1] + c[mid]) * 0.5
	}
	return c[mid]
}

// Quantile returns the q-th quantile by linear interpolation between order
// statistics at index (n−1)·q. q outside [0, 1] is an error.
func Quantile(x []float64, q float64) (float64, error) {
	if math.IsNaN(q) || q < 0 || q > 1 {
		return math.NaN(), ErrQuantileRange
	}
	c := sorted(x)
	if len(c) == 0 {
		return math.NaN(), nil
	}
	return quantileSorted(c, q), nil
}

func quantileSorted(c CleanSequence, q float64) float64 {
	n := len(c)
	pos := float64(n-1) * q
	lower := int(math.Floor(pos))
	if lower >= n-1 {
		return c[n-1]
	}
	frac := pos - float64(lower)
	return c[lower] + frac*(c[lower+1]-c[lower])
}

// Percentile returns the p-th percentile value of the slice (0 <= p <= 100).
// p is clamped into range.
func Percentile(x []float64, p float64) float64 {
	c := sorted(x)
	if len(c) == 0 {
		return math.NaN()
	}
	return quantileSorted(c, math.Min(math.Max(p, 0), 100)/100)
}

// IQR is the interquartile range Q3 − Q1.
func IQR(x []float64) float64 {
	c := sorted(x)
	if len(c) == 0 {
		return math.NaN()
	}
	return quantileSorted(c, 0.75) - quantileSorted(c, 0.25)
}

// Mode returns the most frequent value in the slice; the earliest value wins ties.
func Mode(x []float64) float64 {
	c := clean(x)
	if len(c) == 0 {
		return math.NaN()
	}
	counts := make(map[float64]int, len(c))
	maxCount := 0
	mode := c[0]
	for _, v := range c {
		counts[v]++
		if counts[v] > maxCount {
			maxCount = counts[v]
			mode = v
		}
	}
	return mode
}

// Covariance is the sample covariance of paired values; NaN for n<2 or
// mismatched lengths.
func Covariance(x, y []float64) float64 {
	cx, cy, err := CleanPairs(x, y)
	if err != nil || len(cx) < 2 {
		return math.NaN()
	}
	mx, my := sum(cx)/float64(len(cx)), sum(cy)/float64(len(cy))
	s := 0.0
	for i := range cx {
		s += (cx[i] - mx) * (cy[i] - my)
	}
	return s / float64(len(cx)-1)
}

// Pearson computes the Pearson correlation coefficient; NaN for n<2,
// mismatched lengths or a constant input.
func Pearson(x, y []float64) float64 {
	cx, cy, err := CleanPairs(x, y)
	if err != nil || len(cx) < 2 {
		return math.NaN()
	}
	return pearson(cx, cy)
}

func pearson(x, y CleanSequence) float64 {
	n := float64(len(x))
	mx, my := sum(x)/n, sum(y)/n
	var sxy, sxx, syy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}
	r := sxy / math.Sqrt(sxx*syy)
	return math.Max(-1, math.Min(1, r))
}

// Ranks returns 1-based ranks with tied values sharing their midrank. The
// input is used as-is; NaN entries sort first.
func Ranks(x []float64) []float64 {
	n := len(x)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return less(x[idx[a]], x[idx[b]]) })
	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i + 1
		for j < n && x[idx[j]] == x[idx[i]] {
			j++
		}
		// positions i..j-1 hold ordinals i+1..j
		mid := float64(i+1+j) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = mid
		}
		i = j
	}
	return ranks
}

func less(a, b float64) bool {
	return a < b || (math.IsNaN(a) && !math.IsNaN(b))
}

// Spearman is the Pearson correlation of the midrank vectors.
func Spearman(x, y []float64) float64 {
	cx, cy, err := CleanPairs(x, y)
	if err != nil || len(cx) < 2 {
		return math.NaN()
	}
	return pearson(Ranks(cx), Ranks(cy))
}

// KendallTau is Kendall's tau-a: (concordant − discordant) / (n(n−1)/2).
// Tied pairs count as neither.
func KendallTau(x, y []float64) float64 {
	cx, cy, err := CleanPairs(x, y)
	if err != nil || len(cx) < 2 {
		return math.NaN()
	}
	n := len(cx)
	var concordant, discordant int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := sign(cx[i]-cx[j]) * sign(cy[i]-cy[j])
			switch {
			case s > 0:
				concordant++
			case s < 0:
				discordant++
			}
		}
	}
	return float64(concordant-discordant) / (0.5 * float64(n) * float64(n-1))
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
