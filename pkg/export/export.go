// Package export writes snapshots of a mounted visualization to files: the
// retained scene as SVG and the displayed attention as a PNG heatmap.
package export

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	herrors "github.com/r3d91ll/heddle/pkg/errors"
	"github.com/r3d91ll/heddle/pkg/render"
	"github.com/r3d91ll/heddle/pkg/state"
)

// Format is an export file format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ValidFormats returns the supported format names.
func ValidFormats() []string {
	return []string{string(FormatSVG), string(FormatPNG)}
}

// ParseFormat parses a format name or file extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.TrimPrefix(strings.ToLower(s), ".")) {
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", herrors.ExportInvalidFormat(s, ValidFormats())
}

// Extension returns the file extension, with the dot.
func (f Format) Extension() string { return "." + string(f) }

// ContentType returns the MIME type.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Source is a mounted visualization that can be exported.
type Source interface {
	State() *state.State
	Scene() *render.SVGScene
	Palette() render.Palette
}

// Write encodes src as format to w. cfg only applies to PNG output and may
// be nil.
func Write(w io.Writer, format Format, src Source, cfg *PNGConfig) error {
	switch format {
	case FormatSVG:
		_, err := src.Scene().WriteTo(w)
		return err
	case FormatPNG:
		if cfg == nil {
			cfg = DefaultPNGConfig()
		}
		c := *cfg
		if c.Palette == nil {
			p := src.Palette()
			c.Palette = &p
		}
		return WritePNG(w, src.State(), &c)
	}
	return herrors.ExportInvalidFormat(string(format), ValidFormats())
}

// WriteFile writes src to dir/name plus the format extension, creating dir
// when needed, and returns the written path.
func WriteFile(dir, name string, format Format, src Source, cfg *PNGConfig) (string, error) {
	path := filepath.Join(dir, name+format.Extension())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", herrors.ExportWriteFailed(path, string(format), err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", herrors.ExportWriteFailed(path, string(format), err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := Write(bw, format, src, cfg); err != nil {
		if he, ok := herrors.AsHeddleError(err); ok && he.Code == herrors.ErrExportInvalidFormat {
			return "", err
		}
		return "", herrors.ExportWriteFailed(path, string(format), err)
	}
	if err := bw.Flush(); err != nil {
		return "", herrors.ExportWriteFailed(path, string(format), err)
	}
	return path, nil
}
