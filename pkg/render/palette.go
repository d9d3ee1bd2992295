package render

import "github.com/r3d91ll/heddle/pkg/dataset"

// Palette holds the colours of one display mode.
type Palette struct {
	Name           string
	Background     string
	Text           string
	SelectedText   string
	TokenHover     string // head view hovered token background
	HighlightLeft  string // neuron view hovered query token
	HighlightRight string // neuron view attended key tokens
	ThumbHighlight string // model view selected thumbnail
	Positive       string
	Negative       string
	Attention      string
	Connector      string
	VectorBorder   string
	Icon           string
}

// Light is the default palette.
var Light = Palette{
	Name:           dataset.ModeLight,
	Background:     "white",
	Text:           "#202020",
	SelectedText:   "black",
	TokenHover:     "lightgray",
	HighlightLeft:  "#e5e5e5",
	HighlightRight: "#478be8",
	ThumbHighlight: "#F5F5F5",
	Positive:       "#0c36d8",
	Negative:       "#ff6318",
	Attention:      "blue",
	Connector:      "blue",
	VectorBorder:   "#EEE",
	Icon:           "#888",
}

// Dark is the palette for dark hosts.
var Dark = Palette{
	Name:           dataset.ModeDark,
	Background:     "black",
	Text:           "#ccc",
	SelectedText:   "white",
	TokenHover:     "#555",
	HighlightLeft:  "#1b86cd",
	HighlightRight: "#1b86cd",
	ThumbHighlight: "#222",
	Positive:       "#2090dd",
	Negative:       "#ff6318",
	Attention:      "#2994de",
	Connector:      "#2994de",
	VectorBorder:   "#444",
	Icon:           "white",
}

// PaletteFor returns the palette for a display mode, Light for anything
// other than "dark".
func PaletteFor(mode string) Palette {
	if mode == dataset.ModeDark {
		return Dark
	}
	return Light
}
