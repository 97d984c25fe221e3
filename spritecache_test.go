package starmap

import "testing"

func TestSpriteCacheMemoizes(t *testing.T) {
	c := NewSpriteCache()
	a := c.Get(SpriteNormal, ColorWhite)
	b := c.Get(SpriteNormal, ColorWhite)
	if a != b {
		t.Error("repeated Get should return the identical image")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestSpriteCacheVariantsAreDistinct(t *testing.T) {
	c := NewSpriteCache()
	plain := c.Get(SpriteNormal, ColorWhite)
	ringed := c.Get(SpriteRinged, ColorWhite)
	if plain == ringed {
		t.Error("variants should rasterize separately")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestSpriteCacheColorsAreDistinct(t *testing.T) {
	// A cache hit must never hand back a sprite rasterized in another
	// color; the trait-walk export recolors every point per frame through
	// this cache without any eviction in between.
	c := NewSpriteCache()
	lit := c.Get(SpriteNormal, LayerPhysical.Color())
	dim := c.Get(SpriteNormal, colorDimmed)
	if lit == dim {
		t.Error("distinct colors should rasterize separately")
	}
	if again := c.Get(SpriteNormal, LayerPhysical.Color()); again != lit {
		t.Error("returning to a prior color should hit its original sprite")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestSpriteCacheClear(t *testing.T) {
	c := NewSpriteCache()
	c.Get(SpriteNormal, ColorWhite)
	c.Get(SpriteNormal, colorNeutral)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len = %d after Clear, want 0", c.Len())
	}
}
