package game

import "math/rand"

// Color identifies a bubble family. The label is what the frontend renders
// and what event payloads carry.
type Color string

const (
	Red    Color = "Red"
	Purple Color = "Purple"
	Green  Color = "Green"
	Blue   Color = "Blue"
	Yellow Color = "Yellow"
)

// Palette lists every playable color in a stable order. Code that has to
// break ties between colors walks this slice front to back.
var Palette = []Color{Red, Purple, Green, Blue, Yellow}

// basePoints is the per-bubble score before any cluster bonus.
var basePoints = map[Color]int{
	Red:    100,
	Purple: 110,
	Green:  90,
	Blue:   80,
	Yellow: 70,
}

// colorHex maps each color to its render value, used when the board is
// rasterized for the advisor.
var colorHex = map[Color]uint32{
	Red:    0xE74C3C,
	Purple: 0x9B59B6,
	Green:  0x2ECC71,
	Blue:   0x3498DB,
	Yellow: 0xF1C40F,
}

// BasePoints reports the per-bubble value of c. Unknown colors score zero.
func (c Color) BasePoints() int {
	return basePoints[c]
}

// RGB returns the 0xRRGGBB render value of c.
func (c Color) RGB() uint32 {
	return colorHex[c]
}

// Valid reports whether c is one of the playable colors.
func (c Color) Valid() bool {
	_, ok := basePoints[c]
	return ok
}

// ParseColor maps a wire label to a Color.
func ParseColor(s string) (Color, bool) {
	c := Color(s)
	return c, c.Valid()
}

// RandomColor draws a color from the palette using the given source, so
// board generation stays reproducible under a fixed seed.
func RandomColor(rng *rand.Rand) Color {
	return Palette[rng.Intn(len(Palette))]
}
