// Package mechanics computes the query/key arithmetic shown in the expanded
// neuron view.
package mechanics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Products returns the elementwise product of query with every key.
func Products(query []float64, keys [][]float64) [][]float64 {
	out := make([][]float64, len(keys))
	for i, k := range keys {
		out[i] = make([]float64, len(query))
		floats.MulTo(out[i], query, k)
	}
	return out
}

// ScaledDots returns q.k / sqrt(len(q)) for every key.
func ScaledDots(query []float64, keys [][]float64) []float64 {
	out := make([]float64, len(keys))
	if len(query) == 0 {
		return out
	}
	scale := math.Sqrt(float64(len(query)))
	for i, k := range keys {
		out[i] = floats.Dot(query, k) / scale
	}
	return out
}

// Visible reports whether key row key takes part in the computation for
// query row query. Without bidirectional attention a query sees itself and
// every earlier token.
func Visible(query, key int, bidirectional bool) bool {
	return bidirectional || key <= query
}

// Mask returns Visible for every key row 0..n-1.
func Mask(query, n int, bidirectional bool) []bool {
	m := make([]bool, n)
	for i := range m {
		m[i] = Visible(query, i, bidirectional)
	}
	return m
}

// ElementOpacity maps a vector component to a fill opacity in [0, 1).
func ElementOpacity(v float64) float64 {
	return math.Tanh(math.Abs(v) / 4)
}

// DotBorderOpacity maps a dot product to its cell border opacity, never
// below 0.35 so small values keep a visible outline.
func DotBorderOpacity(v float64) float64 {
	return math.Max(math.Tanh(math.Abs(v)/2), .35)
}

// Fill picks pos for non-negative values and neg otherwise.
func Fill(v float64, pos, neg string) string {
	if v >= 0 {
		return pos
	}
	return neg
}

// Computation is the full breakdown of one query row.
type Computation struct {
	Query    int         `json:"query"`
	Products [][]float64 `json:"products"`
	Dots     []float64   `json:"dots"`
	Softmax  []float64   `json:"softmax"`
	Visible  []bool      `json:"visible"`
}

// Compute builds the breakdown for query row index. attnRow supplies the
// softmax weights the model actually produced for that row.
func Compute(queries, keys [][]float64, attnRow []float64, index int, bidirectional bool) Computation {
	q := queries[index]
	return Computation{
		Query:    index,
		Products: Products(q, keys),
		Dots:     ScaledDots(q, keys),
		Softmax:  append([]float64(nil), attnRow...),
		Visible:  Mask(index, len(keys), bidirectional),
	}
}
