package dataset

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	herrors "github.com/r3d91ll/heddle/pkg/errors"
)

// View kinds.
const (
	ViewHead   = "head"
	ViewModel  = "model"
	ViewNeuron = "neuron"
)

// Display modes.
const (
	ModeLight = "light"
	ModeDark  = "dark"
)

// Params is the per-instance input object supplied by the host.
type Params struct {
	View          string                                  `json:"view"`
	Filters       *orderedmap.OrderedMap[string, *Filter] `json:"filters"`
	DefaultFilter string                                  `json:"default_filter,omitempty"`
	IncludeLayers []int                                   `json:"include_layers,omitempty"`
	IncludeHeads  []int                                   `json:"include_heads,omitempty"`
	Layer         *int                                    `json:"layer,omitempty"`
	Head          *int                                    `json:"head,omitempty"`
	Heads         []int                                   `json:"heads,omitempty"`
	DisplayMode   string                                  `json:"display_mode,omitempty"`
	RootDivID     string                                  `json:"root_div_id,omitempty"`
	Bidirectional *bool                                   `json:"bidirectional,omitempty"`

	// Tokens and Attention describe a single self-attention sequence, used
	// when Filters is absent. SentenceBStart splits it into the all, aa, ab,
	// ba and bb filters.
	Tokens         []string `json:"tokens,omitempty"`
	Attention      Tensor4  `json:"attention,omitempty"`
	SentenceBStart *int     `json:"sentence_b_start,omitempty"`

	// Data is the validated dataset, restricted to IncludeLayers/IncludeHeads.
	Data *Dataset `json:"-"`

	// Recovered holds the problem found while restricting Data, if any.
	Recovered error `json:"-"`
}

// Defaults fills fields the host left unset.
type Defaults struct {
	View          string
	DisplayMode   string
	Bidirectional bool
	Prettify      bool
}

// Load decodes, validates and prepares instance parameters from r.
func Load(r io.Reader, def Defaults) (*Params, error) {
	var p Params
	dec := json.NewDecoder(r)
	if err := dec.Decode(&p); err != nil {
		return nil, herrors.Wrap(err, herrors.ErrIOUnmarshalFailed, herrors.CategoryIO,
			"failed to decode visualization parameters")
	}
	if err := p.Prepare(def); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadFile reads parameters from a JSON file.
func LoadFile(path string, def Defaults) (*Params, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, herrors.IOFileNotFound(path)
		}
		return nil, herrors.Wrap(err, herrors.ErrIOReadFailed, herrors.CategoryIO, "failed to open parameters").
			WithContext("path", path)
	}
	defer f.Close()

	p, err := Load(f, def)
	if err != nil {
		if he, ok := herrors.AsHeddleError(err); ok && !he.HasContext() {
			he.WithContext("path", path)
		}
		return nil, err
	}
	return p, nil
}

// Prepare applies defaults, validates enumerations and builds Data. Layer or
// head positions dropped from the include lists leave a recovered error in
// Recovered; Prepare itself still succeeds.
func (p *Params) Prepare(def Defaults) error {
	if p.View == "" {
		p.View = def.View
	}
	if p.View == "" {
		p.View = ViewHead
	}
	switch p.View {
	case ViewHead, ViewModel, ViewNeuron:
	default:
		return herrors.ValidationInvalid("view", p.View, "must be head, model or neuron")
	}

	if p.DisplayMode == "" {
		p.DisplayMode = def.DisplayMode
	}
	if p.DisplayMode == "" {
		p.DisplayMode = ModeLight
	}
	if p.DisplayMode != ModeLight && p.DisplayMode != ModeDark {
		return herrors.ValidationInvalid("display_mode", p.DisplayMode, "must be light or dark")
	}

	if p.Bidirectional == nil {
		b := def.Bidirectional
		p.Bidirectional = &b
	}
	if p.RootDivID == "" {
		p.RootDivID = NewRootID()
	}

	var ds *Dataset
	var err error
	switch {
	case p.Filters != nil:
		if def.Prettify {
			for pair := p.Filters.Oldest(); pair != nil; pair = pair.Next() {
				if pair.Value == nil {
					continue
				}
				pair.Value.LeftTokens = PrettifyTokens(pair.Value.LeftTokens)
				pair.Value.RightTokens = PrettifyTokens(pair.Value.RightTokens)
			}
		}
		ds, err = New(p.Filters)
	case p.Attention != nil:
		ds, err = p.fromSequence(def.Prettify)
	default:
		return herrors.ValidationRequired("filters")
	}
	if err != nil {
		return err
	}

	sub, err := ds.Subset(p.IncludeLayers, p.IncludeHeads)
	if err != nil && !herrors.IsRecovered(err) {
		return err
	}
	p.Data, p.Recovered = sub, err

	if p.View == ViewNeuron {
		f, _ := sub.GetFilter(sub.DefaultFilter(p.DefaultFilter))
		if !f.HasVectors() {
			return herrors.MissingVectors(f.Name)
		}
	}
	return nil
}

// fromSequence builds filters from Tokens and Attention.
func (p *Params) fromSequence(prettify bool) (*Dataset, error) {
	tokens := p.Tokens
	if prettify {
		tokens = PrettifyTokens(tokens)
	}
	if p.SentenceBStart != nil {
		return SentencePair(tokens, p.Attention, *p.SentenceBStart)
	}
	return FromFilters(&Filter{
		Name:        FilterAll,
		LeftTokens:  tokens,
		RightTokens: tokens,
		Attention:   p.Attention,
	})
}

// IsBidirectional reports the attention direction setting.
func (p *Params) IsBidirectional() bool {
	return p.Bidirectional == nil || *p.Bidirectional
}

// NewRootID returns a fresh container id.
func NewRootID() string {
	return "heddle-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
