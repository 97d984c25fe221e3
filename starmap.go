package starmap

import (
	"math/bits"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at draw submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// Vec2 is a 2D vector used for positions, offsets, and polygon vertices
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// whitePixel is a 1x1 white image used to fill solid-color triangles.
var whitePixel *ebiten.Image

func init() {
	whitePixel = ebiten.NewImage(1, 1)
	whitePixel.Fill(ColorWhite.toRGBA())
}

// toRGBA converts a starmap Color to a color.RGBA (premultiplied).
func (c Color) toRGBA() colorRGBA {
	return colorRGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// withAlpha returns the color with its alpha multiplied by a.
func (c Color) withAlpha(a float64) Color {
	c.A *= a
	return c
}

// colorRGBA implements the color.Color interface for image fills.
type colorRGBA struct {
	R, G, B, A uint8
}

func (c colorRGBA) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	a = uint32(c.A) * 0x101
	return
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// --- Classification codes ---

// NumTraits is the number of boolean classification bits in a code.
const NumTraits = 32

// Layer identifies one of the four 8-bit trait groups of a code.
type Layer uint8

const (
	LayerPhysical   Layer = iota // bits 1-8 (most significant byte)
	LayerFunctional              // bits 9-16
	LayerAbstract                // bits 17-24
	LayerSocial                  // bits 25-32 (least significant byte)

	// NumLayers is the number of trait layers in a code.
	NumLayers = 4
)

// String returns the layer's display name.
func (l Layer) String() string {
	switch l {
	case LayerPhysical:
		return "Physical"
	case LayerFunctional:
		return "Functional"
	case LayerAbstract:
		return "Abstract"
	case LayerSocial:
		return "Social"
	default:
		return "Unknown"
	}
}

// ParseCode parses an 8-hex-digit classification code into a 32-bit trait
// mask. Returns ok=false for anything that is not exactly 8 hex characters;
// callers treat a failed parse as the zero mask, which degrades to the
// Physical layer and a zero trait count rather than failing.
func ParseCode(code string) (mask uint32, ok bool) {
	if len(code) != 8 {
		return 0, false
	}
	v, err := strconv.ParseUint(code, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

// TraitCount returns the number of active trait bits in a mask.
func TraitCount(mask uint32) int {
	return bits.OnesCount32(mask)
}

// HammingDistance returns the number of differing bits between two masks.
func HammingDistance(a, b uint32) int {
	return bits.OnesCount32(a ^ b)
}

// DominantLayer returns the layer segment with the highest active-bit count.
// Ties resolve to the first segment in Physical, Functional, Abstract,
// Social order, so the zero mask reports Physical.
func DominantLayer(mask uint32) Layer {
	best := LayerPhysical
	bestCount := -1
	for l := 0; l < NumLayers; l++ {
		seg := uint8(mask >> (24 - 8*l))
		if c := bits.OnesCount8(seg); c > bestCount {
			best = Layer(l)
			bestCount = c
		}
	}
	return best
}

// TraitMaskBit returns the mask with only trait bit set. Bits are 1-based:
// bit 1 is the most significant bit (the first trait of the Physical layer),
// bit 32 the least significant. Out-of-range bits return the zero mask.
func TraitMaskBit(bit int) uint32 {
	if bit < 1 || bit > NumTraits {
		return 0
	}
	return 1 << (NumTraits - bit)
}

// HasTrait reports whether the 1-based trait bit is set in the mask.
func HasTrait(mask uint32, bit int) bool {
	return mask&TraitMaskBit(bit) != 0
}

// TraitLayer returns the layer a 1-based trait bit belongs to.
func TraitLayer(bit int) Layer {
	if bit < 1 || bit > NumTraits {
		return LayerPhysical
	}
	return Layer((bit - 1) / 8)
}

// --- Catalogue data model ---

// Point is one entity placed in the projected space. X and Y are normalized
// data coordinates in [-1, 1]. Code is the entity's 8-hex-digit
// classification code; a malformed code is treated as the zero mask.
//
// Points are immutable snapshots supplied by the host and replaced wholesale
// when the projection changes.
type Point struct {
	ID   string
	Name string
	Code string
	X, Y float64
}

// Mask returns the point's parsed 32-bit trait mask, or the zero mask when
// the code is malformed.
func (p *Point) Mask() uint32 {
	m, _ := ParseCode(p.Code)
	return m
}

// Cluster is a labeled group of points with a precomputed centroid in data
// coordinates. Size is the number of member points.
type Cluster struct {
	ID        string
	CentroidX float64
	CentroidY float64
	Label     string
	Size      int
}

// TourStop is one highlighted entity in a guided tour, with narration text
// supplied by the host.
type TourStop struct {
	X, Y      float64
	Name      string
	Narration string
	Code      string
}

// Tour is an externally generated ordered sequence of stops with framing
// text. A usable tour has at least one stop.
type Tour struct {
	Introduction string
	Stops        []TourStop
	Conclusion   string
}

// Trait describes one classification bit for captions and legends. Bit is
// 1-based. The catalogue is presentation data only; classification logic
// derives everything from the code mask.
type Trait struct {
	Bit   int
	Name  string
	Layer Layer
}
