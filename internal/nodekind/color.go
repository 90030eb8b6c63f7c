package nodekind

import "fmt"

// Color is a linear RGBA colour.
type Color struct {
	R, G, B, A float32
}

func rgb(r, g, b float32) Color { return Color{R: r, G: g, B: b, A: 1} }

var (
	BodyMainQuest  = rgb(0.24, 0.055, 0.715)
	BodySideQuest  = rgb(0.1, 0.05, 0.2)
	BodyEventQuest = rgb(0.0, 0.07, 0.4)
	BodyDefault    = rgb(0.15, 0.15, 0.15)
	BodyRoot       = Color{R: 0.5, G: 0.5, B: 0.5, A: 0.1}
	BodyError      = rgb(1, 0, 0)

	PathMainQuest  = rgb(0.9, 0.2, 0.15)
	PathSideQuest  = rgb(1.0, 0.7, 0.0)
	PathEventQuest = rgb(0.13, 0.03, 0.4)
	PinDefault     = rgb(0.02, 0.02, 0.02)
)

// Hex renders the colour as #rrggbb, ignoring alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
