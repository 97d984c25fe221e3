// Package starmap is an interactive 2D scatter-map engine for [Ebitengine].
//
// Starmap renders large sets of coded entities projected onto the unit
// square: viewport pan/zoom, layer and trait-count filtering, freehand lasso
// selection, cluster labeling, guided tour animation, and still/animated
// export.
//
// Full documentation and examples are available at:
//
// https://phanxgames.github.io/starmap/
//
// # Quick start
//
// Create an [Engine], load a dataset, and drive it from your [ebiten.Game]:
//
//	eng := starmap.NewEngine(1280, 800)
//	eng.SetDataset(points, clusters)
//	eng.OnSelect = func(id string) { fmt.Println("selected", id) }
//
//	type Game struct{ eng *starmap.Engine }
//
//	func (g *Game) Update() error {
//		cx, cy := ebiten.CursorPosition()
//		g.eng.HandlePointerMove(float64(cx), float64(cy))
//		// ... forward press/release/wheel ...
//		g.eng.Update(1.0 / float64(ebiten.TPS()))
//		return nil
//	}
//	func (g *Game) Draw(s *ebiten.Image)       { g.eng.Draw(s) }
//	func (g *Game) Layout(w, h int) (int, int) { return w, h }
//
// # Entity codes
//
// Every entity carries a 32-bit trait code written as 8 hex characters. The
// four bytes map to the Physical, Functional, Abstract, and Social layers;
// [DominantLayer] picks the layer with the most active bits. [ParseCode],
// [TraitCount], and [HammingDistance] operate on the raw mask.
//
// # Interaction
//
// Plain drags pan, the wheel zooms about the cursor, Shift-drags capture a
// lasso polygon, and clicks select (or set the heatmap reference when
// [Engine.SetHeatmapMode] is on). One interaction owns the viewport at a
// time; see [Engine.Mode].
//
// # Tours and export
//
// [Engine.StartTour] plays a scripted tour of stops with eased zoom and fly
// transitions (tweens via [gween]). [Engine.ExportStill] renders a
// supersampled PNG of the current scene and [Engine.ExportTraitWalk] renders
// an animated GIF stepping through all 32 traits.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package starmap
