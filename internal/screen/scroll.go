package screen

import "github.com/dfajtai/good-moode/internal/domain"

// drawScrolled draws one line of text. Text that fits is drawn
// statically at the base position; wider text is drawn twice, offset by
// the wrap period, so the line scrolls left seamlessly forever. The
// offset is an unbounded counter reduced modulo the wrap period here at
// draw time.
func drawScrolled(f domain.Frame, text string, x, y, width, offset, gap int, size domain.FontSize) {
	w := f.MeasureText(text, size)
	if w <= width {
		f.DrawText(x, y, text, size)
		return
	}
	period := w + gap
	sx := -(offset % period) + x
	f.DrawText(sx, y, text, size)
	f.DrawText(sx+period, y, text, size)
}
