package dataset

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	herrors "github.com/r3d91ll/heddle/pkg/errors"
)

// uniform returns a tensor where every row spreads weight evenly.
func uniform(layers, heads, left, right int) Tensor4 {
	t := make(Tensor4, layers)
	for l := range t {
		t[l] = make([][][]float64, heads)
		for h := range t[l] {
			t[l][h] = make([][]float64, left)
			for i := range t[l][h] {
				row := make([]float64, right)
				for j := range row {
					row[j] = 1 / float64(right)
				}
				t[l][h][i] = row
			}
		}
	}
	return t
}

func vectors(layers, heads, tokens, size int) Tensor4 {
	t := make(Tensor4, layers)
	for l := range t {
		t[l] = make([][][]float64, heads)
		for h := range t[l] {
			t[l][h] = make([][]float64, tokens)
			for i := range t[l][h] {
				t[l][h][i] = make([]float64, size)
			}
		}
	}
	return t
}

// -----------------------------------------------------------------------------
// Validation Tests
// -----------------------------------------------------------------------------

func TestNew_Shape(t *testing.T) {
	ds, err := FromFilters(&Filter{
		Name:        "all",
		LeftTokens:  []string{"a", "b", "c"},
		RightTokens: []string{"a", "b"},
		Attention:   uniform(2, 4, 3, 2),
		Queries:     vectors(2, 4, 3, 8),
		Keys:        vectors(2, 4, 2, 8),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := ds.Shape("all")
	if err != nil {
		t.Fatalf("Shape failed: %v", err)
	}
	want := Shape{NumLayers: 2, NumHeads: 4, LeftLen: 3, RightLen: 2, VectorSize: 8}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("shape mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		reason string
	}{
		{
			name: "ragged heads",
			filter: &Filter{
				LeftTokens: []string{"a"}, RightTokens: []string{"a"},
				Attention: Tensor4{{{{1}}, {{1}}}, {{{1}}}},
			},
			reason: "layer has 1 heads, want 2",
		},
		{
			name: "layer without heads",
			filter: &Filter{
				LeftTokens: []string{"a"}, RightTokens: []string{"a"},
				Attention: Tensor4{{}},
				Queries:   Tensor4{{}},
				Keys:      Tensor4{{}},
			},
			reason: "layer has no heads",
		},
		{
			name: "wrong row count",
			filter: &Filter{
				LeftTokens: []string{"a", "b"}, RightTokens: []string{"a"},
				Attention: uniform(1, 1, 3, 1),
			},
			reason: "attention has 3 positions, while number of tokens is 2",
		},
		{
			name: "wrong column count",
			filter: &Filter{
				LeftTokens: []string{"a"}, RightTokens: []string{"a", "b"},
				Attention: Tensor4{{{{1}}}},
			},
			reason: "row 0 has 1 columns, want 2",
		},
		{
			name: "keys without queries",
			filter: &Filter{
				LeftTokens: []string{"a"}, RightTokens: []string{"a"},
				Attention: uniform(1, 1, 1, 1),
				Keys:      vectors(1, 1, 1, 4),
			},
			reason: "supplied together",
		},
		{
			name: "inconsistent vector size",
			filter: &Filter{
				LeftTokens: []string{"a"}, RightTokens: []string{"a"},
				Attention: uniform(1, 1, 1, 1),
				Queries:   vectors(1, 1, 1, 4),
				Keys:      vectors(1, 1, 1, 3),
			},
			reason: "keys vector 0 has size 3, want 4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.filter.Name = "all"
			_, err := FromFilters(tt.filter)
			if !herrors.IsCode(err, herrors.ErrMalformedTensor) {
				t.Fatalf("expected %s, got %v", herrors.ErrMalformedTensor, err)
			}
			if !strings.Contains(err.Error(), tt.reason) {
				t.Errorf("expected reason %q in %q", tt.reason, err.Error())
			}
			he, _ := herrors.AsHeddleError(err)
			if he.Context["filter"] != "all" {
				t.Errorf("expected filter context, got %v", he.Context)
			}
		})
	}
}

func TestNew_NoFilters(t *testing.T) {
	_, err := FromFilters()
	if !herrors.IsCode(err, herrors.ErrNoFilters) {
		t.Errorf("expected %s, got %v", herrors.ErrNoFilters, err)
	}
}

func TestNew_EmptySequenceIsValid(t *testing.T) {
	ds, err := FromFilters(&Filter{Name: "all", Attention: uniform(1, 2, 0, 0)})
	if err != nil {
		t.Fatalf("empty sequences should load: %v", err)
	}
	s, _ := ds.Shape("all")
	if !s.Empty() {
		t.Error("expected empty shape")
	}
}

func TestGetFilter_Unknown(t *testing.T) {
	ds, _ := FromFilters(&Filter{Name: "all", LeftTokens: []string{"a"}, RightTokens: []string{"a"}, Attention: uniform(1, 1, 1, 1)})
	_, err := ds.GetFilter("nope")
	if !herrors.IsCode(err, herrors.ErrInvalidFilter) {
		t.Errorf("expected %s, got %v", herrors.ErrInvalidFilter, err)
	}
	if got := ds.DefaultFilter("nope"); got != "all" {
		t.Errorf("expected fallback to first filter, got %q", got)
	}
}

// -----------------------------------------------------------------------------
// Params Tests
// -----------------------------------------------------------------------------

const pairJSON = `{
  "view": "model",
  "filters": {
    "zz": {"left_text": ["x"], "right_text": ["y"], "attn": [[[[1]]]]},
    "aa": {"left_text": ["Ġhi"], "right_text": ["▁there"], "attn": [[[[1]]]]}
  },
  "default_filter": "aa"
}`

func TestLoad_PreservesFilterOrder(t *testing.T) {
	p, err := Load(strings.NewReader(pairJSON), Defaults{Prettify: true, Bidirectional: true})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff([]string{"zz", "aa"}, p.Data.FilterNames()); diff != "" {
		t.Errorf("filter order mismatch (-want +got):\n%s", diff)
	}
	if p.Data.DefaultFilter(p.DefaultFilter) != "aa" {
		t.Errorf("expected default filter aa")
	}
	f, _ := p.Data.GetFilter("aa")
	if f.LeftTokens[0] != " hi" || f.RightTokens[0] != " there" {
		t.Errorf("expected prettified tokens, got %q %q", f.LeftTokens[0], f.RightTokens[0])
	}
	if !strings.HasPrefix(p.RootDivID, "heddle-") || len(p.RootDivID) != len("heddle-")+32 {
		t.Errorf("unexpected generated root id %q", p.RootDivID)
	}
	if p.DisplayMode != ModeLight || !p.IsBidirectional() {
		t.Errorf("expected defaults applied, got %q %v", p.DisplayMode, p.IsBidirectional())
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"bad json", `{"filters": [`, herrors.ErrIOUnmarshalFailed},
		{"bad view", `{"view": "pie", "filters": {}}`, herrors.ErrValidationInvalidValue},
		{"bad mode", `{"display_mode": "sepia", "filters": {}}`, herrors.ErrValidationInvalidValue},
		{"no filters", `{"view": "head"}`, herrors.ErrValidationRequired},
		{"empty filters", `{"filters": {}}`, herrors.ErrNoFilters},
		{"neuron without vectors", `{"view": "neuron", "filters": {"all": {"left_text": ["a"], "right_text": ["a"], "attn": [[[[1]]]]}}}`, herrors.ErrMissingVectors},
		{"bad sentence split", `{"tokens": ["a", "b"], "attention": [[[[1, 0], [0, 1]]]], "sentence_b_start": 2}`, herrors.ErrValidationInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.body), Defaults{})
			if !herrors.IsCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile("/nonexistent/params.json", Defaults{})
	if !herrors.IsCode(err, herrors.ErrIOFileNotFound) {
		t.Errorf("expected %s, got %v", herrors.ErrIOFileNotFound, err)
	}
}

// -----------------------------------------------------------------------------
// Subset and Sentence Pair Tests
// -----------------------------------------------------------------------------

func TestSubset_KeepsLabels(t *testing.T) {
	attn := uniform(4, 6, 2, 2)
	attn[2][5][0][0] = 0.9
	ds, err := FromFilters(&Filter{Name: "all", LeftTokens: []string{"a", "b"}, RightTokens: []string{"a", "b"}, Attention: attn})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sub, err := ds.Subset([]int{1, 2}, []int{5})
	if err != nil {
		t.Fatalf("Subset failed: %v", err)
	}
	s, _ := sub.Shape("all")
	if s.NumLayers != 2 || s.NumHeads != 1 {
		t.Errorf("expected 2x1 subset, got %dx%d", s.NumLayers, s.NumHeads)
	}
	if sub.LayerLabel(1) != 2 || sub.HeadLabel(0) != 5 {
		t.Errorf("expected original labels, got layer %d head %d", sub.LayerLabel(1), sub.HeadLabel(0))
	}
	f, _ := sub.GetFilter("all")
	if f.Attention[1][0][0][0] != 0.9 {
		t.Errorf("expected subset to index the original tensor")
	}

}

func TestSubset_DropsOutOfRange(t *testing.T) {
	ds, err := FromFilters(&Filter{Name: "all", LeftTokens: []string{"a"}, RightTokens: []string{"a"}, Attention: uniform(4, 6, 1, 1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name          string
		layers, heads []int
		code          string
		wantLayers    []int
		wantHeads     []int
	}{
		{"bad head", nil, []int{6}, herrors.ErrInvalidHeadIndex, []int{0, 1, 2, 3}, []int{0, 1, 2, 3, 4, 5}},
		{"bad layer kept rest", []int{-1, 3, 9}, []int{2}, herrors.ErrInvalidLayerIndex, []int{3}, []int{2}},
		{"layer reported first", []int{4}, []int{7, 1}, herrors.ErrInvalidLayerIndex, []int{0, 1, 2, 3}, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := ds.Subset(tt.layers, tt.heads)
			if !herrors.IsCode(err, tt.code) || !herrors.IsRecovered(err) {
				t.Fatalf("expected recovered %s, got %v", tt.code, err)
			}
			if sub == nil {
				t.Fatal("expected a usable subset")
			}
			s, _ := sub.Shape("all")
			var layers, heads []int
			for i := 0; i < s.NumLayers; i++ {
				layers = append(layers, sub.LayerLabel(i))
			}
			for i := 0; i < s.NumHeads; i++ {
				heads = append(heads, sub.HeadLabel(i))
			}
			if diff := cmp.Diff(tt.wantLayers, layers); diff != "" {
				t.Errorf("layer labels mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantHeads, heads); diff != "" {
				t.Errorf("head labels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_ClampsIncludeLists(t *testing.T) {
	body := `{"include_layers": [0, 5], "filters": {"all": {"left_text": ["a"], "right_text": ["a"], "attn": [[[[1]]]]}}}`
	p, err := Load(strings.NewReader(body), Defaults{})
	if err != nil {
		t.Fatalf("expected out-of-range layers to be clamped, got %v", err)
	}
	s, _ := p.Data.Shape("all")
	if s.NumLayers != 1 || s.NumHeads != 1 {
		t.Errorf("expected 1x1 dataset, got %dx%d", s.NumLayers, s.NumHeads)
	}
	if !herrors.IsCode(p.Recovered, herrors.ErrInvalidLayerIndex) || !herrors.IsRecovered(p.Recovered) {
		t.Errorf("expected recovered %s, got %v", herrors.ErrInvalidLayerIndex, p.Recovered)
	}
	he, _ := herrors.AsHeddleError(p.Recovered)
	if he.Context["dropped"] != "[5]" {
		t.Errorf("expected dropped context, got %v", he.Context)
	}

	p, err = Load(strings.NewReader(pairJSON), Defaults{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Recovered != nil {
		t.Errorf("expected no recovered error without include lists, got %v", p.Recovered)
	}
}

func TestLoad_SentencePair(t *testing.T) {
	body := `{
  "tokens": ["[CLS]", "Ġthe", "[SEP]", "cat", "[SEP]"],
  "attention": [[[[1, 0, 0, 0, 0], [0, 1, 0, 0, 0], [0, 0, 1, 0, 0], [0, 0, 0, 1, 0], [0, 0, 0, 0, 1]]]],
  "sentence_b_start": 3,
  "default_filter": "ab"
}`
	p, err := Load(strings.NewReader(body), Defaults{Prettify: true})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff([]string{"all", "aa", "ab", "ba", "bb"}, p.Data.FilterNames()); diff != "" {
		t.Errorf("filter names mismatch (-want +got):\n%s", diff)
	}
	s, _ := p.Data.Shape(FilterAB)
	if s.LeftLen != 3 || s.RightLen != 2 {
		t.Errorf("expected 3x2 ab filter, got %dx%d", s.LeftLen, s.RightLen)
	}
	aa, _ := p.Data.GetFilter(FilterAA)
	if aa.LeftTokens[1] != " the" {
		t.Errorf("expected prettified tokens, got %q", aa.LeftTokens)
	}
	if p.Data.DefaultFilter(p.DefaultFilter) != FilterAB {
		t.Errorf("expected default filter ab")
	}

	// Without a split the sequence loads as a single filter.
	body = `{"tokens": ["a", "b"], "attention": [[[[1, 0], [0.5, 0.5]]]]}`
	p, err = Load(strings.NewReader(body), Defaults{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff([]string{FilterAll}, p.Data.FilterNames()); diff != "" {
		t.Errorf("filter names mismatch (-want +got):\n%s", diff)
	}
}

func TestSentencePair(t *testing.T) {
	tokens := []string{"[CLS]", "the", "cat", "[SEP]", "sat", "[SEP]"}
	ds, err := SentencePair(tokens, uniform(1, 2, 6, 6), 4)
	if err != nil {
		t.Fatalf("SentencePair failed: %v", err)
	}

	if diff := cmp.Diff([]string{"all", "aa", "ab", "ba", "bb"}, ds.FilterNames()); diff != "" {
		t.Errorf("filter names mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		filter      string
		left, right int
	}{
		{FilterAll, 6, 6},
		{FilterAA, 4, 4},
		{FilterAB, 4, 2},
		{FilterBA, 2, 4},
		{FilterBB, 2, 2},
	}
	for _, tt := range tests {
		s, err := ds.Shape(tt.filter)
		if err != nil {
			t.Fatalf("Shape(%s) failed: %v", tt.filter, err)
		}
		if s.LeftLen != tt.left || s.RightLen != tt.right {
			t.Errorf("%s: expected %dx%d, got %dx%d", tt.filter, tt.left, tt.right, s.LeftLen, s.RightLen)
		}
	}
	ba, _ := ds.GetFilter(FilterBA)
	if ba.LeftTokens[0] != "sat" || ba.RightTokens[0] != "[CLS]" {
		t.Errorf("unexpected ba tokens: %v -> %v", ba.LeftTokens, ba.RightTokens)
	}

	if _, err := SentencePair(tokens, uniform(1, 1, 6, 6), 0); !herrors.IsCode(err, herrors.ErrValidationInvalidValue) {
		t.Errorf("expected %s, got %v", herrors.ErrValidationInvalidValue, err)
	}
}

func TestPrettifyTokens(t *testing.T) {
	got := PrettifyTokens([]string{"Ġthe", "▁cat", "sat"})
	want := []string{" the", " cat", "sat"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if PrettifyTokens(nil) != nil {
		t.Error("expected nil for nil input")
	}
}
