// Package tile computes tile layouts for rectangular rooms.
//
// Given a [Room] in meters, a [TileSpec] with tile size in centimeters and
// joint spacing in millimeters, and a [Pattern], the package determines how
// many tiles are needed, how many must be cut, and where each tile sits.
//
// # Pipeline
//
// [ComputeLayout] runs the whole calculation:
//
//  1. [Normalize] converts all measurements to meters ([Dimensions]).
//  2. [Count] runs the pattern strategy selected by a closed switch.
//  3. [Aggregate] adds area, contingency and estimate fields ([LayoutResult]).
//  4. [GenerateCells] re-derives the ordered [Cell] list from the same inputs.
//
// Steps 2-3 and step 4 depend only on the normalized dimensions, so they can
// never disagree about axis counts. For [Grid] the cell classification is
// cross-checked against the perimeter counts before a [Record] is returned.
//
// # Policy
//
// The 0.7 footprint factor used for Herringbone and Diagonal pitch, the
// whole-tile ratios and the per-pattern waste factors are empirical
// approximations, not exact trigonometric packing. They live in [Policy]
// and can be overridden with [WithPolicy]. The 10% purchase contingency is
// fixed ([ContingencyPercent]).
//
// # Concurrency
//
// Every function in this package is pure. Records are freshly allocated per
// call and never shared, so concurrent calls need no coordination.
//
// # Errors
//
// Failures are always one of three codes from pkg/errors:
// INVALID_DIMENSION, UNSUPPORTED_PATTERN or DEGENERATE_LAYOUT.
package tile
