package toast

import "strings"

// Kind is the semantic category of a notification. It drives the color
// scheme, icon, and sound used by renderers.
type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindWarning
	KindError
)

// KindNames maps kinds to their canonical lowercase names.
var KindNames = map[Kind]string{
	KindInfo:    "info",
	KindSuccess: "success",
	KindWarning: "warning",
	KindError:   "error",
}

func (k Kind) String() string {
	if name, ok := KindNames[k]; ok {
		return name
	}
	return "info"
}

// ParseKind parses a kind name case-insensitively. Unknown or empty names
// report ok=false and the Info default, which callers treat as a
// normalization, not an error.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success":
		return KindSuccess, true
	case "info":
		return KindInfo, true
	case "warning", "warn":
		return KindWarning, true
	case "error":
		return KindError, true
	default:
		return KindInfo, false
	}
}

// Anchor is the screen corner notifications stack from.
type Anchor int

const (
	AnchorTopRight Anchor = iota
	AnchorTopLeft
	AnchorBottomRight
	AnchorBottomLeft
)

// AnchorNames maps anchors to their canonical names.
var AnchorNames = map[Anchor]string{
	AnchorTopRight:    "top-right",
	AnchorTopLeft:     "top-left",
	AnchorBottomRight: "bottom-right",
	AnchorBottomLeft:  "bottom-left",
}

func (a Anchor) String() string {
	if name, ok := AnchorNames[a]; ok {
		return name
	}
	return "top-right"
}

// ParseAnchor parses an anchor name. Unknown or empty names report ok=false
// and the TopRight default.
func ParseAnchor(s string) (Anchor, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top-right":
		return AnchorTopRight, true
	case "top-left":
		return AnchorTopLeft, true
	case "bottom-right":
		return AnchorBottomRight, true
	case "bottom-left":
		return AnchorBottomLeft, true
	default:
		return AnchorTopRight, false
	}
}

// IsBottom returns true for anchors at the bottom of the screen.
func (a Anchor) IsBottom() bool {
	return a == AnchorBottomLeft || a == AnchorBottomRight
}

// Direction is the growth direction of a notification stack.
type Direction int

const (
	// GrowDown stacks notifications downward from the anchor.
	GrowDown Direction = iota
	// GrowUp stacks notifications upward from the anchor.
	GrowUp
)

// Growth returns the stack growth direction for the anchor: bottom anchors
// grow upward, top anchors grow downward.
func (a Anchor) Growth() Direction {
	if a.IsBottom() {
		return GrowUp
	}
	return GrowDown
}

// DefaultGap is the spacing between stacked notifications, in render units.
const DefaultGap = 8

// StackOffsets computes the offset of each stacked notification from the
// anchor given the rendered height of every member, in stacking order.
// Each offset is the cumulative sum of the preceding heights plus gap
// spacing. GrowUp negates the offsets so they extend away from a bottom
// anchor. The result is a pure function of the inputs.
func StackOffsets(heights []int, gap int, dir Direction) []int {
	offsets := make([]int, len(heights))
	sum := 0
	for i, h := range heights {
		offsets[i] = sum
		sum += h + gap
	}
	if dir == GrowUp {
		for i := range offsets {
			offsets[i] = -offsets[i]
		}
	}
	return offsets
}
