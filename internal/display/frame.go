// Package display binds the screens to a physical SSD1306/SH1106 OLED
// over i2c, drawing through an offscreen grayscale canvas. A Memory
// surface backs tests and headless development.
package display

import (
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/dfajtai/good-moode/internal/domain"
)

// canvasFrame implements domain.Frame on an image canvas using
// x/image font rendering.
type canvasFrame struct {
	img   draw.Image
	faces faceSet
}

func (f *canvasFrame) DrawText(x, y int, text string, size domain.FontSize) {
	face := f.faces.face(size)
	d := &font.Drawer{
		Dst:  f.img,
		Src:  image.White,
		Face: face,
	}
	// Frame coordinates address the top of the glyph box; the drawer
	// wants a baseline.
	baseline := y + face.Metrics().Ascent.Ceil()
	d.Dot = fixed.P(x, baseline)
	d.DrawString(text)
}

func (f *canvasFrame) MeasureText(text string, size domain.FontSize) int {
	return font.MeasureString(f.faces.face(size), text).Ceil()
}

func (f *canvasFrame) FillRect(x, y, w, h int) {
	draw.Draw(f.img, image.Rect(x, y, x+w, y+h), image.White, image.Point{}, draw.Src)
}
