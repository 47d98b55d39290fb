package engine

import (
	"fmt"
	"math"
	"sort"
)

// MissingKey labels the group of rows whose grouping value is null.
const MissingKey = "(missing)"

// Group is the set of rows sharing one value of a grouping column.
type Group struct {
	Key  string
	Rows []int
}

// GroupIndices splits all rows of col by value, in order of first appearance.
func GroupIndices(col Column) []Group {
	pos := make(map[string]int)
	groups := make([]Group, 0)
	for i := 0; i < col.Len(); i++ {
		key := MissingKey
		if !col.IsNull(i) {
			key = col.String(i)
		}
		g, ok := pos[key]
		if !ok {
			g = len(groups)
			pos[key] = g
			groups = append(groups, Group{Key: key})
		}
		groups[g].Rows = append(groups[g].Rows, i)
	}
	return groups
}

// Sum is the total of a numeric column for one distinct value of another.
type Sum struct {
	Key   string
	X     any
	Total float64
	Count int
}

// SumBy totals y per distinct x over rows, keeping x order of first appearance.
// Rows where either value is null are skipped.
func SumBy(x, y Column, rows []int) ([]Sum, error) {
	if !y.Numeric() {
		return nil, fmt.Errorf("%w: %q", ErrNotNumeric, y.Name())
	}
	pos := make(map[string]int)
	out := make([]Sum, 0)
	for _, i := range rows {
		if x.IsNull(i) {
			continue
		}
		v, ok := y.Float(i)
		if !ok {
			continue
		}
		key := x.String(i)
		p, seen := pos[key]
		if !seen {
			p = len(out)
			pos[key] = p
			out = append(out, Sum{Key: key, X: x.Value(i)})
		}
		out[p].Total += v
		out[p].Count++
	}
	return out, nil
}

// CountBy counts rows per distinct value of col, in order of first appearance.
func CountBy(col Column, rows []int) []Sum {
	pos := make(map[string]int)
	out := make([]Sum, 0)
	for _, i := range rows {
		if col.IsNull(i) {
			continue
		}
		key := col.String(i)
		p, seen := pos[key]
		if !seen {
			p = len(out)
			pos[key] = p
			out = append(out, Sum{Key: key, X: col.Value(i)})
		}
		out[p].Total++
		out[p].Count++
	}
	return out
}

// Floats collects the non-null numeric values of col over rows.
func Floats(col Column, rows []int) ([]float64, error) {
	if !col.Numeric() {
		return nil, fmt.Errorf("%w: %q", ErrNotNumeric, col.Name())
	}
	out := make([]float64, 0, len(rows))
	for _, i := range rows {
		if v, ok := col.Float(i); ok && !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Bins are equal-width histogram buckets over [Min, Max].
type Bins struct {
	Min, Max float64
	Width    float64
	N        int
}

// NewBins spans values with n equal-width bins. A zero-width range gets one unit of width.
func NewBins(values []float64, n int) Bins {
	if n <= 0 {
		n = 1
	}
	if len(values) == 0 {
		return Bins{Min: 0, Max: 1, Width: 1 / float64(n), N: n}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	return Bins{Min: lo, Max: hi, Width: (hi - lo) / float64(n), N: n}
}

// Count buckets values; the maximum falls into the last bin, values outside the range are dropped.
func (b Bins) Count(values []float64) []int {
	counts := make([]int, b.N)
	for _, v := range values {
		if v < b.Min || v > b.Max {
			continue
		}
		i := int((v - b.Min) / b.Width)
		if i >= b.N {
			i = b.N - 1
		}
		counts[i]++
	}
	return counts
}

// Lower returns the left edge of bin i.
func (b Bins) Lower(i int) float64 { return b.Min + float64(i)*b.Width }

// BoxStats summarizes a distribution the way a box-and-whisker plot draws it.
type BoxStats struct {
	Min, Q1, Median, Q3, Max float64
	LowerWhisker             float64
	UpperWhisker             float64
	Outliers                 []float64
	N                        int
}

// Quartiles computes box statistics with linearly interpolated quantiles.
// Whiskers reach the furthest values within 1.5 IQR of the box.
func Quartiles(values []float64) BoxStats {
	if len(values) == 0 {
		return BoxStats{}
	}
	s := make([]float64, len(values))
	copy(s, values)
	sort.Float64s(s)

	st := BoxStats{
		Min:    s[0],
		Max:    s[len(s)-1],
		Q1:     quantile(s, 0.25),
		Median: quantile(s, 0.5),
		Q3:     quantile(s, 0.75),
		N:      len(s),
	}
	iqr := st.Q3 - st.Q1
	lo, hi := st.Q1-1.5*iqr, st.Q3+1.5*iqr
	st.LowerWhisker, st.UpperWhisker = st.Q1, st.Q3
	for _, v := range s {
		if v >= lo {
			st.LowerWhisker = math.Min(v, st.Q1)
			break
		}
	}
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] <= hi {
			st.UpperWhisker = math.Max(s[i], st.Q3)
			break
		}
	}
	for _, v := range s {
		if v < lo || v > hi {
			st.Outliers = append(st.Outliers, v)
		}
	}
	return st
}

// quantile expects sorted input.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	i := int(math.Floor(pos))
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(i)
	return sorted[i] + frac*(sorted[i+1]-sorted[i])
}
