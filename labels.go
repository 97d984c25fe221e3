package starmap

import (
	"bytes"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	baseLabelFontSize = 12.0
	minLabelFontSize  = 10.0
	maxLabelFontSize  = 18.0
	labelPadX         = 6.0
	labelPadY         = 3.0
	// labelMargin is the clearance required between placed label boxes.
	labelMargin = 4.0
)

// labelFaceSource backs every text face in the package (labels, captions,
// export overlays).
var labelFaceSource *text.GoTextFaceSource

func init() {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		// The typeface is embedded; a parse failure is a build defect.
		panic("starmap: parse embedded typeface: " + err.Error())
	}
	labelFaceSource = s
}

// labelFace returns a text face at the given pixel size.
func labelFace(size float64) *text.GoTextFace {
	return &text.GoTextFace{Source: labelFaceSource, Size: size}
}

// PlacedLabel is one cluster label that survived declutter. X and Y are the
// screen-space center of the text; Box is the padded bounding box used for
// overlap testing.
type PlacedLabel struct {
	Cluster  Cluster
	X, Y     float64
	FontSize float64
	Opacity  float64
	Box      Rect
}

// LayoutLabels places cluster labels greedily by descending cluster size
// (ties keep input order): project the centroid, skip if offscreen, and skip
// any label whose padded box would come within labelMargin of an already
// placed box. No relocation is attempted; the skip is the whole declutter
// strategy, so the result is deterministic for a given cluster set and
// transform.
func LayoutLabels(clusters []Cluster, vp *Viewport) []PlacedLabel {
	if len(clusters) == 0 {
		return nil
	}

	order := make([]int, len(clusters))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return clusters[order[a]].Size > clusters[order[b]].Size
	})

	maxSize := 0
	for i := range clusters {
		if clusters[i].Size > maxSize {
			maxSize = clusters[i].Size
		}
	}
	if maxSize == 0 {
		maxSize = 1
	}

	surface := Rect{Width: vp.Width, Height: vp.Height}
	placed := make([]PlacedLabel, 0, len(clusters))
	for _, idx := range order {
		c := &clusters[idx]
		sx, sy := vp.DataToScreen(c.CentroidX, c.CentroidY)
		if !surface.Contains(sx, sy) {
			continue
		}

		weight := float64(c.Size) / float64(maxSize)
		fontSize := baseLabelFontSize * math.Sqrt(vp.Scale) * (1 + 0.3*weight)
		fontSize = math.Max(minLabelFontSize, math.Min(fontSize, maxLabelFontSize))
		fontSize *= vp.textScale()

		padX := labelPadX * vp.textScale()
		padY := labelPadY * vp.textScale()
		w, h := text.Measure(c.Label, labelFace(fontSize), 0)
		box := Rect{
			X:      sx - w/2 - padX,
			Y:      sy - h/2 - padY,
			Width:  w + 2*padX,
			Height: h + 2*padY,
		}
		if overlapsPlaced(placed, box) {
			continue
		}
		placed = append(placed, PlacedLabel{
			Cluster:  *c,
			X:        sx,
			Y:        sy,
			FontSize: fontSize,
			Opacity:  0.6 + 0.4*weight,
			Box:      box,
		})
	}
	return placed
}

// overlapsPlaced tests box, grown by labelMargin, against every placed box.
func overlapsPlaced(placed []PlacedLabel, box Rect) bool {
	grown := Rect{
		X:      box.X - labelMargin,
		Y:      box.Y - labelMargin,
		Width:  box.Width + 2*labelMargin,
		Height: box.Height + 2*labelMargin,
	}
	for i := range placed {
		if grown.Intersects(placed[i].Box) {
			return true
		}
	}
	return false
}
