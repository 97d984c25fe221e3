package starmap

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// debugHUD draws a small FPS/workload readout in the top-left corner when
// debug mode is on. The text refreshes every ~0.5 seconds to stay readable.
type debugHUD struct {
	img       *ebiten.Image
	sinceText float64
}

func newDebugHUD() *debugHUD {
	// 168x48 fits three DebugPrint lines.
	return &debugHUD{img: ebiten.NewImage(168, 48)}
}

func (h *debugHUD) update(dt float64, stats frameStats, total, sprites int) {
	h.sinceText += dt
	if h.sinceText < 0.5 {
		return
	}
	h.sinceText = 0

	h.img.Clear()
	// Semi-transparent background for readability.
	h.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(h.img, fmt.Sprintf(
		"FPS: %.1f TPS: %.1f\npoints: %d/%d sprites: %d\nfilter: %v draw: %v",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		stats.filtered, total, sprites,
		stats.filterTime.Round(10*time.Microsecond),
		stats.drawTime.Round(10*time.Microsecond)))
}

func (h *debugHUD) draw(dst *ebiten.Image) {
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(4, 4)
	dst.DrawImage(h.img, &op)
}
