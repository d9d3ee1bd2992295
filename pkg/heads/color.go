package heads

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// category10 is the categorical palette used for per-head colours.
var category10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Color returns the colour of head i.
func Color(i int) string {
	if i < 0 {
		i = -i
	}
	return category10[i%len(category10)]
}

// Lighten returns a paler version of a #rrggbb colour: lightness moves 60%
// of the way to white and saturation drops by the same amount. Unparseable
// input is returned unchanged.
func Lighten(color string) string {
	r, g, b, ok := parseHex(color)
	if !ok {
		return color
	}
	h, s, l := rgbToHSL(r, g, b)
	inc := (1 - l) * 0.6
	l += inc
	s = math.Max(s-inc, 0)
	r, g, b = hslToRGB(h, s, l)
	return toHex(r, g, b)
}

// RGBA converts a #rgb or #rrggbb colour. ok is false for anything else.
func RGBA(c string) (color.RGBA, bool) {
	r, g, b, ok := parseHex(c)
	if !ok {
		return color.RGBA{}, false
	}
	to8 := func(v float64) uint8 { return uint8(math.Round(v * 255)) }
	return color.RGBA{R: to8(r), G: to8(g), B: to8(b), A: 255}, true
}

func parseHex(c string) (r, g, b float64, ok bool) {
	c = strings.TrimPrefix(c, "#")
	if len(c) == 3 {
		c = string([]byte{c[0], c[0], c[1], c[1], c[2], c[2]})
	}
	if len(c) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(c, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return float64(v>>16&0xff) / 255, float64(v>>8&0xff) / 255, float64(v&0xff) / 255, true
}

func toHex(r, g, b float64) string {
	c := func(v float64) int {
		return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	return fmt.Sprintf("#%02x%02x%02x", c(r), c(g), c(b))
}

func rgbToHSL(r, g, b float64) (h, s, l float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l = (max + min) / 2
	d := max - min
	if d == 0 {
		return 0, 0, l
	}
	if l < 0.5 {
		s = d / (max + min)
	} else {
		s = d / (2 - max - min)
	}
	switch max {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h * 60, s, l
}

func hslToRGB(h, s, l float64) (r, g, b float64) {
	if s == 0 {
		return l, l, l
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	hk := h / 360
	return hueToRGB(p, q, hk+1.0/3), hueToRGB(p, q, hk), hueToRGB(p, q, hk-1.0/3)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}
