package render

import "image"

// Heights of the chrome bars drawn above and below the canvas.
const (
	TopBarHeight    = 24
	BottomBarHeight = 24
)

// CanvasRect returns the part of a window of the given size that shows the
// image. Without chrome the canvas covers the whole window.
func CanvasRect(window image.Point, chrome bool) image.Rectangle {
	r := image.Rectangle{Max: window}
	if !chrome {
		return r
	}
	r.Min.Y = TopBarHeight
	r.Max.Y -= BottomBarHeight
	if r.Max.Y < r.Min.Y {
		r.Max.Y = r.Min.Y
	}
	return r
}
