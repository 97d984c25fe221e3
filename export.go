package starmap

import (
	"bytes"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	// exportSuperSample is the linear resolution multiplier for stills.
	exportSuperSample = 4

	// exportTraitDelay is the per-trait GIF frame delay in hundredths of a
	// second. The overview frame is shown for twice this.
	exportTraitDelay = 80

	exportBranding = "starmap"
	exportContact  = "phanxgames.github.io/starmap"
)

// Exporter re-renders the interactive scene at alternate resolutions and
// point sets. It draws through the same FrameRenderer and color gradients as
// the live view, then composites overlay text (branding, legend, captions)
// that the interactive renderer never draws.
type Exporter struct {
	renderer *FrameRenderer
	traits   []Trait
}

// NewExporter creates an exporter drawing through the given renderer.
// traits is the caption catalogue for animated exports.
func NewExporter(renderer *FrameRenderer, traits []Trait) *Exporter {
	return &Exporter{renderer: renderer, traits: traits}
}

// scaledViewport returns a copy of vp for a surface k times larger, with
// padding and text metrics scaled proportionally so the scene composition
// is identical.
func scaledViewport(vp *Viewport, k float64) *Viewport {
	return &Viewport{
		Scale:   vp.Scale,
		OffsetX: vp.OffsetX * k,
		OffsetY: vp.OffsetY * k,
		Width:   vp.Width * k,
		Height:  vp.Height * k,
		pad:     plotPadding * k,
		uiScale: k,
	}
}

// RenderStill renders the frame at exportSuperSample times the interactive
// resolution and returns it PNG-encoded. An empty point set aborts before
// any rendering.
func (e *Exporter) RenderStill(f Frame) ([]byte, error) {
	if len(f.Points) == 0 {
		return nil, fmt.Errorf("export still: no points to render")
	}

	k := float64(exportSuperSample)
	vp := scaledViewport(f.Viewport, k)
	base := f.PointSize
	if base <= 0 {
		base = basePointRadius
	}

	big := f
	big.Viewport = vp
	big.PointSize = base * k
	// Interactive chrome is not part of an export; lasso and tour overlays
	// are anchored to interactive screen coordinates anyway.
	big.Hovered = nil
	big.Lasso = nil
	big.Tour = nil

	surface := ebiten.NewImage(int(vp.Width), int(vp.Height))
	defer surface.Deallocate()
	e.renderer.Draw(surface, big)
	e.drawStillOverlays(surface, &big)

	img := readImage(surface)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("export still: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// drawStillOverlays composites branding, the layer legend (in layer color
// mode only), and the contact line. These never appear in interactive frames.
func (e *Exporter) drawStillOverlays(dst *ebiten.Image, f *Frame) {
	k := f.Viewport.textScale()
	margin := 12 * k

	face := labelFace(16 * k)
	op := &text.DrawOptions{}
	op.GeoM.Translate(margin, margin)
	op.ColorScale.ScaleWithColor(ColorWhite.toRGBA())
	text.Draw(dst, exportBranding, face, op)

	if f.ColorMode == ColorModeLayer && !f.Heatmap.Active && !f.TraitWalk.Active {
		e.drawLayerLegend(dst, f, margin)
	}

	contactFace := labelFace(11 * k)
	w, h := text.Measure(exportContact, contactFace, 0)
	cop := &text.DrawOptions{}
	cop.GeoM.Translate(f.Viewport.Width-w-margin, f.Viewport.Height-h-margin)
	cop.ColorScale.ScaleWithColor(colorNeutral.toRGBA())
	text.Draw(dst, exportContact, contactFace, cop)
}

// drawLayerLegend draws a swatch-and-name row per layer, bottom-left.
func (e *Exporter) drawLayerLegend(dst *ebiten.Image, f *Frame, margin float64) {
	k := f.Viewport.textScale()
	face := labelFace(12 * k)
	_, lineH := text.Measure("Physical", face, 0)
	rowH := lineH + 4*k
	y := f.Viewport.Height - margin - rowH*NumLayers
	for l := Layer(0); l < NumLayers; l++ {
		swatch := 8 * k
		vector.DrawFilledCircle(dst, float32(margin+swatch), float32(y+rowH/2),
			float32(swatch/2), l.Color().toRGBA(), true)
		op := &text.DrawOptions{}
		op.GeoM.Translate(margin+swatch*2+4*k, y+(rowH-lineH)/2)
		op.ColorScale.ScaleWithColor(ColorWhite.toRGBA())
		text.Draw(dst, l.String(), face, op)
		y += rowH
	}
}

// traitWalkFrame plans one animated-export frame: the color state the
// renderer draws with, the caption, and the GIF delay in hundredths of a
// second.
type traitWalkFrame struct {
	ColorMode ColorMode
	TraitWalk TraitWalkState
	Caption   string
	Delay     int
}

// traitWalkFrames builds the NumTraits+1 frame plan: an overview frame of
// all points colored by dominant layer at double delay, then one frame per
// trait bit captioned "<Layer>: <Name>". Bits missing from the catalogue
// get a numbered placeholder name.
func traitWalkFrames(traits []Trait) []traitWalkFrame {
	byBit := make(map[int]Trait, len(traits))
	for _, tr := range traits {
		byBit[tr.Bit] = tr
	}

	frames := make([]traitWalkFrame, 0, NumTraits+1)
	frames = append(frames, traitWalkFrame{
		ColorMode: ColorModeLayer,
		Caption:   "All Entities",
		Delay:     exportTraitDelay * 2,
	})
	for bit := 1; bit <= NumTraits; bit++ {
		tr, ok := byBit[bit]
		if !ok {
			tr = Trait{Bit: bit, Name: fmt.Sprintf("Trait %d", bit), Layer: TraitLayer(bit)}
		}
		frames = append(frames, traitWalkFrame{
			TraitWalk: TraitWalkState{Active: true, Bit: bit},
			Caption:   tr.Layer.String() + ": " + tr.Name,
			Delay:     exportTraitDelay,
		})
	}
	return frames
}

// RenderTraitWalk renders the animated export, one GIF frame per entry of
// the traitWalkFrames plan. No points or an empty trait catalogue aborts
// the whole export without partial output.
func (e *Exporter) RenderTraitWalk(f Frame) ([]byte, error) {
	if len(f.Points) == 0 {
		return nil, fmt.Errorf("export trait walk: no points to render")
	}
	if len(e.traits) == 0 {
		return nil, fmt.Errorf("export trait walk: no trait catalogue loaded")
	}

	w := int(f.Viewport.Width)
	h := int(f.Viewport.Height)
	surface := ebiten.NewImage(w, h)
	defer surface.Deallocate()

	anim := &gif.GIF{}
	for _, fr := range traitWalkFrames(e.traits) {
		g := f
		g.Hovered = nil
		g.Lasso = nil
		g.Tour = nil
		g.ColorMode = fr.ColorMode
		g.Heatmap = HeatmapState{}
		g.TraitWalk = fr.TraitWalk

		e.renderer.Draw(surface, g)
		drawCaption(surface, fr.Caption, f.Viewport)

		img := readImage(surface)
		pal := image.NewPaletted(img.Bounds(), palette.Plan9)
		draw.Draw(pal, img.Bounds(), img, image.Point{}, draw.Src)
		anim.Image = append(anim.Image, pal)
		anim.Delay = append(anim.Delay, fr.Delay)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, fmt.Errorf("export trait walk: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// drawCaption draws centered overlay text along the bottom padding band.
func drawCaption(dst *ebiten.Image, caption string, vp *Viewport) {
	face := labelFace(14 * vp.textScale())
	w, h := text.Measure(caption, face, 0)
	op := &text.DrawOptions{}
	op.GeoM.Translate((vp.Width-w)/2, vp.Height-plotPadding+(plotPadding-h)/2)
	op.ColorScale.ScaleWithColor(ColorWhite.toRGBA())
	text.Draw(dst, caption, face, op)
}

// readImage captures an ebiten image as straight-alpha NRGBA.
func readImage(src *ebiten.Image) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	pixels := make([]byte, 4*w*h)
	src.ReadPixels(pixels)

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(pixels); i += 4 {
		r, g, bl, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			bl = uint8(min(int(bl)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = bl
		img.Pix[i+3] = a
	}
	return img
}

// --- File helpers ---

// ExportFilename builds a timestamped export file name from the projection
// type, e.g. "umap_20060102_150405.png". The projection is sanitized for
// file-system safety.
func ExportFilename(projection, ext string, t time.Time) string {
	return fmt.Sprintf("%s_%s.%s", sanitizeName(projection), t.Format("20060102_150405"), ext)
}

// WriteExport writes an export byte buffer into dir with a timestamped name
// and returns the full path.
func WriteExport(dir, projection, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("write export: mkdir %s: %w", dir, err)
	}
	path := dir + "/" + ExportFilename(projection, ext, time.Now())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// sanitizeName replaces characters that are unsafe in file names with
// underscores and falls back to "export" for empty strings.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "export"
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
