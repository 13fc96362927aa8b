package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"moodlens/domain/core"
	"moodlens/domain/dataset"
)

// Method selects the correlation coefficient
type Method string

const (
	Pearson  Method = "pearson"
	Spearman Method = "spearman"
	Kendall  Method = "kendall"
)

// ParseMethod accepts any letter case; the empty string means Pearson
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return Pearson, nil
	case Pearson, Spearman, Kendall:
		return m, nil
	}
	return "", core.NewConfigError("method", fmt.Sprintf("unknown correlation method %q", s))
}

// CorrelationMatrix is symmetric with an exact unit diagonal. Pairs involving a
// constant column are undefined.
type CorrelationMatrix struct {
	Method Method         `json:"method"`
	Fields []string       `json:"fields"`
	Count  int            `json:"count"`
	Values [][]core.Value `json:"values"`
}

// At looks up the coefficient for two fields
func (m CorrelationMatrix) At(a, b string) (core.Value, bool) {
	i, j := indexOf(m.Fields, a), indexOf(m.Fields, b)
	if i < 0 || j < 0 {
		return core.None(), false
	}
	return m.Values[i][j], true
}

// Correlate computes the pairwise matrix over at least two numeric fields
func Correlate(view dataset.View, fields []string, method Method) (CorrelationMatrix, error) {
	if len(fields) < 2 {
		return CorrelationMatrix{}, core.NewConfigError("fields", "correlation needs at least two numeric fields")
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f] {
			return CorrelationMatrix{}, core.NewConfigError("fields", fmt.Sprintf("duplicate field %q", f))
		}
		seen[f] = true
	}
	method, err := ParseMethod(string(method))
	if err != nil {
		return CorrelationMatrix{}, err
	}

	cols := make([][]float64, len(fields))
	for i, f := range fields {
		col, err := view.Numeric(f)
		if err != nil {
			return CorrelationMatrix{}, err
		}
		cols[i] = col
	}
	n := view.Len()
	if n < 2 {
		return CorrelationMatrix{}, core.NewInsufficientDataError("correlation", n, 2)
	}

	k := len(fields)
	constant := make([]bool, k)
	for i, col := range cols {
		constant[i] = isConstant(col)
	}

	var coef func(i, j int) float64
	switch method {
	case Kendall:
		coef = func(i, j int) float64 { return KendallTauB(cols[i], cols[j]) }
	default:
		if method == Spearman {
			for i := range cols {
				cols[i] = Ranks(cols[i])
			}
		}
		x := mat.NewDense(n, k, nil)
		for j, col := range cols {
			x.SetCol(j, col)
		}
		var corr mat.SymDense
		stat.CorrelationMatrix(&corr, x, nil)
		coef = func(i, j int) float64 { return corr.At(i, j) }
	}

	values := make([][]core.Value, k)
	for i := range values {
		values[i] = make([]core.Value, k)
		values[i][i] = core.Some(1)
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			v := core.None()
			if !constant[i] && !constant[j] {
				v = core.Some(clamp(coef(i, j), -1, 1))
			}
			values[i][j], values[j][i] = v, v
		}
	}

	return CorrelationMatrix{Method: method, Fields: append([]string(nil), fields...), Count: n, Values: values}, nil
}

// Ranks assigns 1-based ranks, averaging over ties
func Ranks(data []float64) []float64 {
	n := len(data)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return data[order[a]] < data[order[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i + 1
		for j < n && data[order[j]] == data[order[i]] {
			j++
		}
		// positions i..j-1 share the mean of ranks i+1..j
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}
	return ranks
}

// KendallTauB is the tie-corrected Kendall coefficient, computed with Knight's
// O(n log n) merge-sort algorithm. gonum's stat.Kendall is tau-a.
func KendallTauB(x, y []float64) float64 {
	n := len(x)
	if n != len(y) || n < 2 {
		return math.NaN()
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		if x[idx[a]] != x[idx[b]] {
			return x[idx[a]] < x[idx[b]]
		}
		return y[idx[a]] < y[idx[b]]
	})

	n0 := float64(n) * float64(n-1) / 2
	var tiesX, tiesXY float64
	for i := 0; i < n; {
		j := i + 1
		for j < n && x[idx[j]] == x[idx[i]] {
			j++
		}
		tiesX += pairs(j - i)
		for a := i; a < j; {
			b := a + 1
			for b < j && y[idx[b]] == y[idx[a]] {
				b++
			}
			tiesXY += pairs(b - a)
			a = b
		}
		i = j
	}

	ys := make([]float64, n)
	for i, k := range idx {
		ys[i] = y[k]
	}
	swaps := float64(mergeCount(ys, make([]float64, n)))

	var tiesY float64
	for i := 0; i < n; {
		j := i + 1
		for j < n && ys[j] == ys[i] {
			j++
		}
		tiesY += pairs(j - i)
		i = j
	}

	num := n0 - tiesX - tiesY + tiesXY - 2*swaps
	den := math.Sqrt((n0 - tiesX) * (n0 - tiesY))
	return num / den
}

// mergeCount sorts a in place and returns the number of strict inversions
func mergeCount(a, buf []float64) int {
	if len(a) < 2 {
		return 0
	}
	mid := len(a) / 2
	count := mergeCount(a[:mid], buf[:mid]) + mergeCount(a[mid:], buf[mid:])

	i, j, k := 0, mid, 0
	for i < mid && j < len(a) {
		if a[j] < a[i] {
			buf[k] = a[j]
			count += mid - i
			j++
		} else {
			buf[k] = a[i]
			i++
		}
		k++
	}
	k += copy(buf[k:], a[i:mid])
	copy(buf[k:], a[j:])
	copy(a, buf[:len(a)])
	return count
}

func pairs(t int) float64 { return float64(t) * float64(t-1) / 2 }

func isConstant(col []float64) bool {
	for _, v := range col[1:] {
		if v != col[0] {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Max(lo, math.Min(hi, v))
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
