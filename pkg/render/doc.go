// Package render draws tile layouts.
//
// Layouts are drawn with github.com/tdewolff/canvas to SVG, PNG or PDF, or
// exported as JSON. Canvas units are millimeters; [WithScale] sets how many
// millimeters one room meter takes (default 100).
//
// Cells of approximate patterns (Herringbone, Diagonal) are drawn rotated
// at their pitch positions. Everything outside the room is masked, so the
// drawing always shows the room rectangle only.
//
// # Usage
//
//	rec, _ := tile.ComputeLayout(room, spec, tile.Grid)
//	svg, err := render.Render(render.FormatSVG, rec, render.WithScale(50))
//
// [RenderAll] draws several formats of one record concurrently.
package render
