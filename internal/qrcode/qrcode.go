// Package qrcode renders QR symbols to PNG files, optionally with a logo
// composited over the center.
package qrcode

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // logo decoding
	"image/png"
	"os"

	goqrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"

	"github.com/alnah/go-letterpdf/internal/fileutil"
)

const (
	// logoNum/logoDen is the logo side relative to the symbol side.
	logoNum = 2
	logoDen = 9
	// logoAlpha is the logo opacity (90%).
	logoAlpha = 230
)

// Generator encodes payloads into QR images.
type Generator struct {
	level    Level
	logoPath string
}

// Option configures a Generator.
type Option func(*Generator)

// WithLevel sets the error correction level.
func WithLevel(l Level) Option {
	return func(g *Generator) { g.level = l }
}

// WithLogo overlays the PNG or JPEG image at path on every symbol.
// An empty path disables the overlay.
func WithLogo(path string) Option {
	return func(g *Generator) { g.logoPath = path }
}

// New creates a Generator. The default level is LevelHigh with no logo.
func New(opts ...Option) *Generator {
	g := &Generator{level: DefaultLevel}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Image returns the symbol for payload on a white width x height canvas.
// The symbol is square: it fills the smaller side and is centered.
func (g *Generator) Image(payload string, width, height int) (image.Image, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	code, err := goqrcode.New(payload, g.level.recovery())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	side := min(width, height)
	symbol := code.Image(side)
	if got := symbol.Bounds().Dx(); got > side {
		// go-qrcode grows the image instead of shrinking modules below 1px.
		return nil, fmt.Errorf("%w: payload needs at least %dpx, got %dpx", ErrInvalidSize, got, side)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	origin := image.Pt((width-side)/2, (height-side)/2)
	area := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(side, side))}
	draw.Draw(canvas, area, symbol, symbol.Bounds().Min, draw.Src)

	if g.logoPath != "" {
		if err := g.overlayLogo(canvas, area); err != nil {
			return nil, err
		}
	}

	return canvas, nil
}

// Encode returns the PNG bytes of the symbol without touching the disk.
func (g *Generator) Encode(payload string, width, height int) ([]byte, error) {
	img, err := g.Image(payload, width, height)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// Generate writes the PNG symbol to outputPath, replacing any existing file
// and creating missing parent directories.
func (g *Generator) Generate(ctx context.Context, payload string, width, height int, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := g.Encode(payload, width, height)
	if err != nil {
		return err
	}

	if err := fileutil.WriteFile(outputPath, data); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// overlayLogo scales the logo to 2/9 of area and blends it at the center.
func (g *Generator) overlayLogo(dst draw.Image, area image.Rectangle) error {
	logo, err := loadLogo(g.logoPath)
	if err != nil {
		return err
	}

	w := area.Dx() * logoNum / logoDen
	h := area.Dy() * logoNum / logoDen
	if w == 0 || h == 0 {
		return nil
	}

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), logo, logo.Bounds(), draw.Src, nil)

	origin := image.Pt(area.Min.X+(area.Dx()-w)/2, area.Min.Y+(area.Dy()-h)/2)
	target := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w, h))}
	mask := image.NewUniform(color.Alpha{A: logoAlpha})
	draw.DrawMask(dst, target, scaled, image.Point{}, mask, image.Point{}, draw.Over)

	return nil
}

func loadLogo(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLogoRead, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLogoDecode, path, err)
	}
	return img, nil
}
