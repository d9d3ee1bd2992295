// Package dataset holds the read-only attention tensors a visualization is
// built from.
//
// A Dataset is a set of named filters kept in the order the host supplied
// them. Each filter owns its own token sequences, attention tensor and
// optional query/key vectors. Tensors are indexed [layer][head][from][to];
// vectors are indexed [layer][head][token][component].
package dataset

import (
	"fmt"
	"math"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	herrors "github.com/r3d91ll/heddle/pkg/errors"
)

// Tensor4 is a four-dimensional float tensor.
type Tensor4 = [][][][]float64

// Filter is one named view over the model output.
type Filter struct {
	Name        string   `json:"-"`
	LeftTokens  []string `json:"left_text"`
	RightTokens []string `json:"right_text"`
	Attention   Tensor4  `json:"attn"`
	Queries     Tensor4  `json:"queries,omitempty"`
	Keys        Tensor4  `json:"keys,omitempty"`
}

// HasVectors reports whether the filter carries query/key vectors.
func (f *Filter) HasVectors() bool {
	return len(f.Queries) > 0 && len(f.Keys) > 0
}

// Shape describes the dimensions of a filter.
type Shape struct {
	NumLayers  int `json:"num_layers"`
	NumHeads   int `json:"num_heads"`
	LeftLen    int `json:"left_len"`
	RightLen   int `json:"right_len"`
	VectorSize int `json:"vector_size,omitempty"`
}

// Empty reports whether either token sequence is empty.
func (s Shape) Empty() bool {
	return s.LeftLen == 0 || s.RightLen == 0
}

// MaxLen returns the longer of the two sequence lengths.
func (s Shape) MaxLen() int {
	if s.LeftLen > s.RightLen {
		return s.LeftLen
	}
	return s.RightLen
}

// Dataset is an ordered, validated collection of filters.
type Dataset struct {
	filters     *orderedmap.OrderedMap[string, *Filter]
	shapes      map[string]Shape
	layerLabels []int
	headLabels  []int
}

// New validates filters and returns a Dataset over them. The map is not
// copied; callers must not mutate it afterwards.
func New(filters *orderedmap.OrderedMap[string, *Filter]) (*Dataset, error) {
	if filters == nil || filters.Len() == 0 {
		return nil, herrors.NewWithSuggestions(herrors.ErrNoFilters, herrors.CategoryData,
			"dataset has no filters")
	}

	ds := &Dataset{
		filters: filters,
		shapes:  make(map[string]Shape, filters.Len()),
	}
	numLayers, numHeads := -1, -1
	for pair := filters.Oldest(); pair != nil; pair = pair.Next() {
		f := pair.Value
		if f == nil {
			return nil, herrors.MalformedTensor(pair.Key, -1, -1, "filter is null")
		}
		f.Name = pair.Key
		shape, err := validate(f)
		if err != nil {
			return nil, err
		}
		ds.shapes[f.Name] = shape
		if numLayers < 0 {
			numLayers, numHeads = shape.NumLayers, shape.NumHeads
		} else if shape.NumLayers != numLayers || shape.NumHeads != numHeads {
			return nil, herrors.MalformedTensor(f.Name, -1, -1,
				fmt.Sprintf("filter is %dx%d layers x heads, first filter is %dx%d",
					shape.NumLayers, shape.NumHeads, numLayers, numHeads))
		}
	}

	ds.layerLabels = identity(numLayers)
	ds.headLabels = identity(numHeads)
	return ds, nil
}

// FromFilters builds a Dataset from filters in argument order.
func FromFilters(filters ...*Filter) (*Dataset, error) {
	om := orderedmap.New[string, *Filter]()
	for _, f := range filters {
		if f == nil {
			continue
		}
		om.Set(f.Name, f)
	}
	return New(om)
}

// GetFilter returns the named filter.
func (d *Dataset) GetFilter(name string) (*Filter, error) {
	f, ok := d.filters.Get(name)
	if !ok {
		return nil, herrors.InvalidFilter(name).
			WithContext("available", fmt.Sprint(d.FilterNames()))
	}
	return f, nil
}

// Shape returns the dimensions of the named filter.
func (d *Dataset) Shape(name string) (Shape, error) {
	s, ok := d.shapes[name]
	if !ok {
		return Shape{}, herrors.InvalidFilter(name)
	}
	return s, nil
}

// HasFilter reports whether name is a known filter.
func (d *Dataset) HasFilter(name string) bool {
	_, ok := d.shapes[name]
	return ok
}

// FilterNames returns filter names in host order.
func (d *Dataset) FilterNames() []string {
	names := make([]string, 0, d.filters.Len())
	for pair := d.filters.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// FirstFilter returns the first filter name in host order.
func (d *Dataset) FirstFilter() string {
	return d.filters.Oldest().Key
}

// DefaultFilter returns preferred if it names a filter, otherwise the first.
func (d *Dataset) DefaultFilter(preferred string) string {
	if preferred != "" && d.HasFilter(preferred) {
		return preferred
	}
	return d.FirstFilter()
}

// LayerLabel returns the display number for layer position i.
func (d *Dataset) LayerLabel(i int) int {
	if i >= 0 && i < len(d.layerLabels) {
		return d.layerLabels[i]
	}
	return i
}

// HeadLabel returns the display number for head position i.
func (d *Dataset) HeadLabel(i int) int {
	if i >= 0 && i < len(d.headLabels) {
		return d.headLabels[i]
	}
	return i
}

// Subset returns a dataset restricted to the given layer and head positions.
// A nil or empty slice keeps every index on that axis. Display labels keep
// the original numbering.
//
// Out-of-range positions are dropped and the first one is reported as a
// recovered INVALID_LAYER_INDEX or INVALID_HEAD_INDEX alongside the usable
// subset. An axis left with no valid position keeps every index.
func (d *Dataset) Subset(layers, heads []int) (*Dataset, error) {
	if len(layers) == 0 && len(heads) == 0 {
		return d, nil
	}
	first, _ := d.Shape(d.FirstFilter())

	var recovered error
	layers, bad := inRange(layers, first.NumLayers)
	if len(bad) > 0 {
		recovered = herrors.InvalidLayerIndex(bad[0], first.NumLayers).
			WithContext("dropped", fmt.Sprint(bad)).MarkRecovered()
	}
	heads, bad = inRange(heads, first.NumHeads)
	if len(bad) > 0 && recovered == nil {
		recovered = herrors.InvalidHeadIndex(bad[0], first.NumHeads).
			WithContext("dropped", fmt.Sprint(bad)).MarkRecovered()
	}
	if len(layers) == 0 {
		layers = identity(first.NumLayers)
	}
	if len(heads) == 0 {
		heads = identity(first.NumHeads)
	}

	om := orderedmap.New[string, *Filter]()
	for pair := d.filters.Oldest(); pair != nil; pair = pair.Next() {
		f := pair.Value
		om.Set(pair.Key, &Filter{
			Name:        f.Name,
			LeftTokens:  f.LeftTokens,
			RightTokens: f.RightTokens,
			Attention:   pick(f.Attention, layers, heads),
			Queries:     pick(f.Queries, layers, heads),
			Keys:        pick(f.Keys, layers, heads),
		})
	}
	sub, err := New(om)
	if err != nil {
		return nil, err
	}
	sub.layerLabels = make([]int, len(layers))
	for i, l := range layers {
		sub.layerLabels[i] = d.LayerLabel(l)
	}
	sub.headLabels = make([]int, len(heads))
	for i, h := range heads {
		sub.headLabels[i] = d.HeadLabel(h)
	}
	return sub, recovered
}

// inRange splits ids into positions valid for an axis of length n and the
// rejected rest.
func inRange(ids []int, n int) (valid, bad []int) {
	for _, id := range ids {
		if id < 0 || id >= n {
			bad = append(bad, id)
			continue
		}
		valid = append(valid, id)
	}
	return valid, bad
}

func pick(t Tensor4, layers, heads []int) Tensor4 {
	if len(t) == 0 {
		return nil
	}
	out := make(Tensor4, len(layers))
	for i, l := range layers {
		out[i] = make([][][]float64, len(heads))
		for j, h := range heads {
			out[i][j] = t[l][h]
		}
	}
	return out
}

func identity(n int) []int {
	if n < 0 {
		n = 0
	}
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return ids
}

// validate checks tensor and vector dimensions against the token sequences.
func validate(f *Filter) (Shape, error) {
	shape := Shape{
		NumLayers: len(f.Attention),
		LeftLen:   len(f.LeftTokens),
		RightLen:  len(f.RightTokens),
	}
	if shape.NumLayers > 0 {
		shape.NumHeads = len(f.Attention[0])
		if shape.NumHeads == 0 {
			return shape, herrors.MalformedTensor(f.Name, 0, -1, "layer has no heads")
		}
	}

	for l, layer := range f.Attention {
		if len(layer) != shape.NumHeads {
			return shape, herrors.MalformedTensor(f.Name, l, -1,
				fmt.Sprintf("layer has %d heads, want %d", len(layer), shape.NumHeads))
		}
		for h, matrix := range layer {
			if len(matrix) != shape.LeftLen {
				return shape, herrors.MalformedTensor(f.Name, l, h,
					fmt.Sprintf("attention has %d positions, while number of tokens is %d", len(matrix), shape.LeftLen))
			}
			for i, row := range matrix {
				if len(row) != shape.RightLen {
					return shape, herrors.MalformedTensor(f.Name, l, h,
						fmt.Sprintf("row %d has %d columns, want %d", i, len(row), shape.RightLen))
				}
				for j, w := range row {
					if math.IsNaN(w) || math.IsInf(w, 0) {
						return shape, herrors.MalformedTensor(f.Name, l, h,
							fmt.Sprintf("weight at (%d, %d) is not finite", i, j))
					}
				}
			}
		}
	}

	if len(f.Queries) == 0 && len(f.Keys) == 0 {
		return shape, nil
	}
	if len(f.Queries) == 0 || len(f.Keys) == 0 {
		return shape, herrors.MalformedVectors(f.Name, -1, -1, "queries and keys must be supplied together")
	}
	size := -1
	check := func(part string, t Tensor4, tokens int) error {
		if len(t) != shape.NumLayers {
			return herrors.MalformedVectors(f.Name, -1, -1,
				fmt.Sprintf("%s has %d layers, want %d", part, len(t), shape.NumLayers))
		}
		for l, layer := range t {
			if len(layer) != shape.NumHeads {
				return herrors.MalformedVectors(f.Name, l, -1,
					fmt.Sprintf("%s layer has %d heads, want %d", part, len(layer), shape.NumHeads))
			}
			for h, vectors := range layer {
				if len(vectors) != tokens {
					return herrors.MalformedVectors(f.Name, l, h,
						fmt.Sprintf("%s has %d vectors, want %d", part, len(vectors), tokens))
				}
				for i, v := range vectors {
					if size < 0 {
						size = len(v)
					}
					if len(v) != size || size == 0 {
						return herrors.MalformedVectors(f.Name, l, h,
							fmt.Sprintf("%s vector %d has size %d, want %d", part, i, len(v), size))
					}
				}
			}
		}
		return nil
	}
	if err := check("queries", f.Queries, shape.LeftLen); err != nil {
		return shape, err
	}
	if err := check("keys", f.Keys, shape.RightLen); err != nil {
		return shape, err
	}
	if size > 0 {
		shape.VectorSize = size
	}
	return shape, nil
}
