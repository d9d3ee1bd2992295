package export

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"

	"github.com/r3d91ll/heddle/pkg/dataset"
	"github.com/r3d91ll/heddle/pkg/heads"
	"github.com/r3d91ll/heddle/pkg/render"
	"github.com/r3d91ll/heddle/pkg/state"
)

// PNGConfig specifies options for heatmap rasterization.
type PNGConfig struct {
	// Scale is the edge length in pixels of one attention cell.
	// Default: 4
	Scale int

	// Gap is the number of background cells between tiles in the model view.
	// Default: 1
	Gap int

	// Palette supplies the background and ink colours.
	// If nil, Light is used.
	Palette *render.Palette
}

// DefaultPNGConfig returns the default heatmap options.
func DefaultPNGConfig() *PNGConfig {
	return &PNGConfig{Scale: 4, Gap: 1}
}

// Tiles returns the attention matrices the current view displays, as a grid
// of [from][to] matrices. The head view shows one matrix averaged over the
// active heads, the neuron view the selected head, and the model view every
// layer and head.
func Tiles(s *state.State) [][][][]float64 {
	shape := s.Shape()
	if shape.Empty() {
		return nil
	}
	attn := s.ActiveFilter().Attention

	switch s.View {
	case dataset.ViewModel:
		grid := make([][][][]float64, shape.NumLayers)
		for l := range grid {
			grid[l] = attn[l]
		}
		return grid
	case dataset.ViewNeuron:
		return [][][][]float64{{attn[s.Layer][s.Head]}}
	}

	m := make([][]float64, shape.LeftLen)
	for i := range m {
		m[i] = make([]float64, shape.RightLen)
		for j := range m[i] {
			m[i][j] = heads.Aggregate(attn[s.Layer], s.Heads, i, j)
		}
	}
	return [][][][]float64{{m}}
}

// Heatmap rasterizes Tiles(s). Each weight becomes one cell blended from the
// background towards the palette's positive colour, and the image is then
// scaled up with nearest-neighbour sampling so cells stay crisp.
func Heatmap(s *state.State, cfg *PNGConfig) image.Image {
	if cfg == nil {
		cfg = DefaultPNGConfig()
	}
	palette := render.Light
	if cfg.Palette != nil {
		palette = *cfg.Palette
	}
	bg := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if palette.Name == dataset.ModeDark {
		bg = color.RGBA{A: 255}
	}
	ink, ok := heads.RGBA(palette.Positive)
	if !ok {
		ink = color.RGBA{B: 255, A: 255}
	}

	tiles := Tiles(s)
	shape := s.Shape()
	rows := len(tiles)
	cols := 0
	if rows > 0 {
		cols = len(tiles[0])
	}
	gap := max(cfg.Gap, 0)
	w := cols*shape.RightLen + max(cols-1, 0)*gap
	h := rows*shape.LeftLen + max(rows-1, 0)*gap
	base := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	draw.Draw(base, base.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	for r, row := range tiles {
		for c, m := range row {
			x0 := c * (shape.RightLen + gap)
			y0 := r * (shape.LeftLen + gap)
			for i, weights := range m {
				for j, v := range weights {
					base.SetRGBA(x0+j, y0+i, blend(bg, ink, v))
				}
			}
		}
	}

	scale := max(cfg.Scale, 1)
	if scale == 1 {
		return base
	}
	b := base.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), base, b, draw.Src, nil)
	return dst
}

// WritePNG encodes Heatmap(s, cfg) to w.
func WritePNG(w io.Writer, s *state.State, cfg *PNGConfig) error {
	return png.Encode(w, Heatmap(s, cfg))
}

// blend mixes from towards to by t, clamped to [0, 1].
func blend(from, to color.RGBA, t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return color.RGBA{R: mix(from.R, to.R), G: mix(from.G, to.G), B: mix(from.B, to.B), A: 255}
}
