package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/xrayview/internal/annotation"
	"github.com/example/xrayview/internal/theme"
	"github.com/example/xrayview/internal/tool"
)

func fillRect(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

func drawRect(dst draw.Image, r image.Rectangle, c color.Color, thick int) {
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thick), c)
	fillRect(dst, image.Rect(r.Min.X, r.Max.Y-thick, r.Max.X, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+thick, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Max.X-thick, r.Min.Y, r.Max.X, r.Max.Y), c)
}

func barText(dst draw.Image, x, y int, s string, c color.Color) int {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: basicfont.Face7x13, Dot: fixed.P(x, y)}
	d.DrawString(s)
	return d.Dot.X.Ceil()
}

func measureBar(s string) int {
	return (&font.Drawer{Face: basicfont.Face7x13}).MeasureString(s).Ceil()
}

func drawTopBar(dst draw.Image, width int, st Status, th *theme.Theme) {
	draw.Draw(dst, image.Rect(0, 0, width, TopBarHeight), image.NewUniform(th.BarBackground), image.Point{}, draw.Src)
	parts := []string{"XrayView"}
	if st.Count > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d", st.Index+1, st.Count))
	}
	if st.Title != "" {
		parts = append(parts, st.Title)
	}
	if st.Category != "" {
		parts = append(parts, st.Category)
	}
	if st.Notes != "" {
		parts = append(parts, st.Notes)
	}
	barText(dst, 4, 16, strings.Join(parts, "  |  "), th.BarText)
}

func drawBottomBar(dst draw.Image, width, height int, active tool.Tool, st Status, th *theme.Theme) {
	top := height - BottomBarHeight
	draw.Draw(dst, image.Rect(0, top, width, height), image.NewUniform(th.BarBackground), image.Point{}, draw.Src)
	x := 4
	y := top + 16
	for i, t := range tool.All {
		label := fmt.Sprintf("%d:%s", i+1, t)
		w := measureBar(label)
		if t == active {
			fillRect(dst, image.Rect(x-2, top+3, x+w+2, height-3), th.Accent)
			barText(dst, x, y, label, annotation.ContrastColor(th.Accent))
		} else {
			barText(dst, x, y, label, th.BarText)
		}
		x += w + 10
	}

	var info []string
	info = append(info, fmt.Sprintf("%.0f%%", st.Zoom*100))
	if st.Rotation != 0 {
		info = append(info, fmt.Sprintf("%d°", int(st.Rotation)))
	}
	if st.Calibration != "" {
		info = append(info, st.Calibration)
	}
	if st.Preset != "" {
		info = append(info, st.Preset)
	}
	if st.Filters != "" && st.Filters != "none" {
		info = append(info, st.Filters)
	}
	info = append(info, "h:help")
	right := strings.Join(info, "  ")
	rx := width - measureBar(right) - 6
	if rx < x {
		rx = x
	}
	barText(dst, rx, y, right, th.BarText)
}

// drawMessage shows a transient message centred over the window.
func drawMessage(dst draw.Image, bounds image.Rectangle, face font.Face, msg string, th *theme.Theme) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.MessageText), Face: face}
	w := d.MeasureString(msg).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	descent := face.Metrics().Descent.Ceil()
	px := bounds.Min.X + (bounds.Dx()-w)/2
	py := bounds.Min.Y + (bounds.Dy()-ascent-descent)/2 + ascent
	rect := image.Rect(px-10, py-ascent-8, px+w+10, py+descent+8)
	fillRect(dst, rect, th.MessageBackground)
	drawRect(dst, rect, th.Foreground, 2)
	d.Dot = fixed.P(px, py)
	d.DrawString(msg)
}

// drawPrompt shows the calibration prompt along the bottom of the canvas.
func drawPrompt(dst draw.Image, canvas image.Rectangle, face font.Face, text string, th *theme.Theme) {
	d := &font.Drawer{Face: face}
	w := d.MeasureString(text).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	descent := face.Metrics().Descent.Ceil()
	px := canvas.Min.X + (canvas.Dx()-w)/2
	py := canvas.Max.Y - descent - 16
	rect := image.Rect(px-8, py-ascent-6, px+w+8, py+descent+6)
	fillRect(dst, rect, th.MessageBackground)
	drawRect(dst, rect, th.Calibration, 1)
	d.Dst = dst
	d.Src = image.NewUniform(th.MessageText)
	d.Dot = fixed.P(px, py)
	d.DrawString(text)
}

// drawHelp lists the keyboard shortcuts in two columns over a dimmed window.
func drawHelp(dst draw.Image, bounds image.Rectangle, face font.Face, lines []HelpLine, th *theme.Theme) {
	fillRect(dst, bounds, th.HelpBackground)
	lineH := face.Metrics().Height.Ceil() + 4
	keyW := 0
	for _, l := range lines {
		if w := font.MeasureString(face, l.Keys).Ceil(); w > keyW {
			keyW = w
		}
	}
	d := &font.Drawer{Dst: dst, Face: face}
	x := bounds.Min.X + 32
	y := bounds.Min.Y + 32 + lineH
	d.Src = image.NewUniform(th.Accent)
	d.Dot = fixed.P(x, y)
	d.DrawString("Keyboard shortcuts")
	y += lineH * 3 / 2
	for _, l := range lines {
		if y > bounds.Max.Y-8 {
			break
		}
		d.Src = image.NewUniform(th.Accent)
		d.Dot = fixed.P(x, y)
		d.DrawString(l.Keys)
		d.Src = image.NewUniform(th.Foreground)
		d.Dot = fixed.P(x+keyW+24, y)
		d.DrawString(l.Action)
		y += lineH
	}
}

func promptText(pv tool.Preview) string {
	switch {
	case pv.PromptOpen:
		return "Real distance in mm: " + pv.Prompt + "|  (Enter to confirm, Esc to cancel)"
	case len(pv.CalibrationPoints) == 1:
		return "Calibration: click the second point"
	default:
		return "Calibration: click the first point of a known distance"
	}
}
