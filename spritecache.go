package starmap

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// SpriteVariant distinguishes the rendered forms a point sprite can take.
type SpriteVariant uint8

const (
	SpriteNormal SpriteVariant = iota // plain filled disc
	SpriteRinged                      // disc with a highlight ring, used for found points
)

// spriteRadius is the radius in pixels sprites are rasterized at. Sprites
// are drawn scaled, so one rasterization serves every zoom level.
const spriteRadius = 16.0

// spriteKey addresses one cached sprite by everything rasterizeSprite
// consumes, so a hit is always pixel-identical to a fresh rasterization.
type spriteKey struct {
	variant SpriteVariant
	clr     Color
}

// SpriteCache is a content-addressed cache of rasterized point sprites,
// keyed by render variant and resolved color. The distinct colors in play
// are bounded by the layer palette and the 33-step gradients, so the cache
// stays small; the engine still calls Clear on dataset swaps to release
// texture memory.
type SpriteCache struct {
	sprites map[spriteKey]*ebiten.Image
}

// NewSpriteCache creates an empty cache.
func NewSpriteCache() *SpriteCache {
	return &SpriteCache{sprites: make(map[spriteKey]*ebiten.Image)}
}

// Len returns the number of cached sprites.
func (c *SpriteCache) Len() int {
	return len(c.sprites)
}

// Clear evicts every cached sprite and releases its texture memory.
func (c *SpriteCache) Clear() {
	for k, img := range c.sprites {
		img.Deallocate()
		delete(c.sprites, k)
	}
}

// Get returns the sprite for (variant, clr), rasterizing it on first use.
// Repeated calls with the same variant and color return the identical image;
// a different color is a different key, never a recolored hit.
func (c *SpriteCache) Get(variant SpriteVariant, clr Color) *ebiten.Image {
	key := spriteKey{variant: variant, clr: clr}
	if img, ok := c.sprites[key]; ok {
		return img
	}
	img := rasterizeSprite(variant, clr)
	c.sprites[key] = img
	return img
}

// rasterizeSprite draws one sprite image at spriteRadius resolution.
func rasterizeSprite(variant SpriteVariant, clr Color) *ebiten.Image {
	size := int(spriteRadius * 2)
	img := ebiten.NewImage(size, size)
	cx := float32(spriteRadius)
	vector.DrawFilledCircle(img, cx, cx, float32(spriteRadius-2), clr.toRGBA(), true)
	if variant == SpriteRinged {
		vector.StrokeCircle(img, cx, cx, float32(spriteRadius-1), 2, ColorWhite.toRGBA(), true)
	}
	return img
}
