package dataset

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	herrors "github.com/r3d91ll/heddle/pkg/errors"
)

// Sentence-pair filter names.
const (
	FilterAll = "all"
	FilterAA  = "aa" // sentence A -> sentence A
	FilterAB  = "ab" // sentence A -> sentence B
	FilterBA  = "ba" // sentence B -> sentence A
	FilterBB  = "bb" // sentence B -> sentence B
)

var byteMarkers = strings.NewReplacer("Ġ", " ", "▁", " ")

// PrettifyTokens replaces byte-pair space markers with plain spaces.
func PrettifyTokens(tokens []string) []string {
	if tokens == nil {
		return nil
	}
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = byteMarkers.Replace(t)
	}
	return out
}

// SentencePair derives the all/aa/ab/ba/bb filters from a self-attention
// tensor over a concatenated sentence pair. Sentence B starts at index
// sentenceBStart.
func SentencePair(tokens []string, attn Tensor4, sentenceBStart int) (*Dataset, error) {
	n := len(tokens)
	if sentenceBStart <= 0 || sentenceBStart >= n {
		return nil, herrors.ValidationInvalid("sentence_b_start", fmt.Sprint(sentenceBStart),
			fmt.Sprintf("must be within (0, %d)", n))
	}

	a := [2]int{0, sentenceBStart}
	b := [2]int{sentenceBStart, n}
	slices := []struct {
		name     string
		from, to [2]int
	}{
		{FilterAll, [2]int{0, n}, [2]int{0, n}},
		{FilterAA, a, a},
		{FilterAB, a, b},
		{FilterBA, b, a},
		{FilterBB, b, b},
	}

	om := orderedmap.New[string, *Filter]()
	for _, s := range slices {
		om.Set(s.name, &Filter{
			Name:        s.name,
			LeftTokens:  tokens[s.from[0]:s.from[1]],
			RightTokens: tokens[s.to[0]:s.to[1]],
			Attention:   window(attn, s.from, s.to),
		})
	}
	return New(om)
}

// window slices every head matrix to rows [from) and columns [to).
// Malformed input is passed through so New reports it.
func window(attn Tensor4, from, to [2]int) Tensor4 {
	out := make(Tensor4, len(attn))
	for l, layer := range attn {
		out[l] = make([][][]float64, len(layer))
		for h, matrix := range layer {
			if len(matrix) < from[1] {
				out[l][h] = matrix
				continue
			}
			rows := make([][]float64, 0, from[1]-from[0])
			for _, row := range matrix[from[0]:from[1]] {
				if len(row) < to[1] {
					rows = append(rows, row)
					continue
				}
				rows = append(rows, row[to[0]:to[1]])
			}
			out[l][h] = rows
		}
	}
	return out
}
