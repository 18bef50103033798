package tile

import (
	"strings"

	"github.com/matzehuels/tilecalc/pkg/errors"
)

// Pattern is a tile layout pattern. The set is closed: only the four
// constants below are valid.
type Pattern string

// Supported patterns.
const (
	Grid        Pattern = "grid"        // straight rows and columns
	Brick       Pattern = "brick"       // running bond, rows offset by half a tile
	Herringbone Pattern = "herringbone" // interlocked pairs at 45 degrees
	Diagonal    Pattern = "diagonal"    // grid rotated 45 degrees to the walls
)

// Patterns lists every supported pattern in display order.
var Patterns = []Pattern{Grid, Brick, Herringbone, Diagonal}

// ParsePattern converts user input to a Pattern. Matching ignores case and
// surrounding whitespace. Unknown names fail with UNSUPPORTED_PATTERN; there
// is no default.
func ParsePattern(s string) (Pattern, error) {
	p := Pattern(strings.ToLower(strings.TrimSpace(s)))
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// Validate reports whether p is one of the supported patterns.
func (p Pattern) Validate() error {
	switch p {
	case Grid, Brick, Herringbone, Diagonal:
		return nil
	default:
		return errors.New(errors.ErrCodeUnsupportedPattern,
			"unsupported pattern %q (must be one of: grid, brick, herringbone, diagonal)", string(p))
	}
}

// Title returns the display name, e.g. "Herringbone".
func (p Pattern) Title() string {
	if p == "" {
		return ""
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}

// Rectangular reports whether tiles are placed on the axis-aligned grid.
// Cell lists for other patterns are visual approximations.
func (p Pattern) Rectangular() bool {
	return p == Grid || p == Brick
}

// String implements fmt.Stringer.
func (p Pattern) String() string {
	return string(p)
}
